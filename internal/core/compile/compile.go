// Copyright 2026 The CLIPS-Go Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package compile lowers a parsed DefRule's left-hand side into the rete
// network: alpha tests and memories for intra-pattern constraints, joins
// (and NOT/NCC/test nodes) for inter-pattern constraints, and a
// production node at the tail of each fully-expanded conjunction. It is
// the only package that understands both clips/ast and internal/core/rete.
package compile

import (
	"fmt"
	"strconv"

	"clips.dev/go/clips/ast"
	"clips.dev/go/clips/errors"
	"clips.dev/go/clips/token"
	"clips.dev/go/internal/core/rete"
)

// FuncEval evaluates a (test ...) CE's expression, or an OpTestCall
// constraint's call, against the bindings visible at the point it
// appears. resolve looks up a pattern-bound variable by name.
type FuncEval func(expr ast.Expr, resolve func(name string) (rete.Value, bool)) (bool, error)

// binding records where a pattern variable was first bound: how many
// levels up from the current frontier token its defining WME sits, and
// which field of that WME it names. whole is set for a variable bound to
// an entire fact (?f <- (t ...)) rather than one of its fields; such a
// binding cannot be used in a join test (spec: a whole-fact variable
// addresses the fact for RHS retraction/modification, not a value).
type binding struct {
	depth int
	field rete.FieldRef
	whole bool
}

// NodeIDPair names a join and the beta memory immediately downstream of
// it: the unit the compiler shares between rules with an identical LHS
// prefix (spec §4.4, node sharing / Testable Property 5).
type NodeIDPair struct {
	Join   rete.NodeID
	Memory rete.NodeID
}

// Compiler holds everything rule compilation needs beyond the network
// itself.
type Compiler struct {
	net      *rete.Network
	sink     rete.AgendaSink
	funcEval FuncEval

	joinCache map[string]NodeIDPair

	// productions records, per ProductionNode id, the variable bindings and
	// token-tree depth in effect where that production was attached. An
	// engine firing an activation uses this to resolve a RHS's ?var
	// references against the activation's token (rete.Activation.Node
	// names which production fired), via ResolveVar.
	productions map[rete.NodeID]productionEnv

	// ruleNodes records, per (module, rule) key, every node id this rule's
	// compilation touched, in creation/retain order: a freshly built node
	// the first time it is needed, or an existing shared node's id again
	// each later rule that reuses it via joinCache. An engine's Clear
	// (spec §4.8) walks this to call DeleteNode once per (node, rule)
	// pair — matching the Retain this list records — taking rules
	// last-registered first and each rule's ids in the order recorded here.
	ruleNodes map[string][]rete.NodeID
}

type productionEnv struct {
	depth    int
	bindings map[string]binding
}

func NewCompiler(net *rete.Network, sink rete.AgendaSink, funcEval FuncEval) *Compiler {
	return &Compiler{
		net:         net,
		sink:        sink,
		funcEval:    funcEval,
		joinCache:   map[string]NodeIDPair{},
		productions: map[rete.NodeID]productionEnv{},
		ruleNodes:   map[string][]rete.NodeID{},
	}
}

func ruleKey(module, rule string) string { return module + "\x00" + rule }

// RuleNodes returns every node id CompileRule touched for (module, rule),
// in creation/retain order.
func (c *Compiler) RuleNodes(module, rule string) []rete.NodeID {
	return c.ruleNodes[ruleKey(module, rule)]
}

// track records id as belonging to ctx's rule and returns it unchanged, so
// it can wrap a NewNodeID()/Retain call inline at each call site.
func (c *Compiler) track(ctx *ruleCtx, id rete.NodeID) rete.NodeID {
	k := ruleKey(ctx.module, ctx.rule)
	c.ruleNodes[k] = append(c.ruleNodes[k], id)
	return id
}

// ResolveVar resolves name against the token tree at t, using the
// bindings recorded for the production node that activated (spec §4.7's
// "bindings-view" over the token). Reports false if node is not a known
// production or name was never bound on its LHS.
func (c *Compiler) ResolveVar(node rete.NodeID, t rete.TokenID, name string) (rete.Value, bool) {
	env, ok := c.productions[node]
	if !ok {
		return rete.Value{}, false
	}
	b, ok := env.bindings[name]
	if !ok || b.whole {
		return rete.Value{}, false
	}
	return c.net.Resolve(t, rete.BindingAddress{LevelsUp: env.depth - b.depth, Field: b.field})
}

type ruleCtx struct {
	rule     string
	module   string
	salience int
	compiler *Compiler
}

// CompileRule lowers rule into the network. It may produce more than one
// ProductionNode — one per branch of a top-level (or ...) — all reporting
// the same rule/module/salience to the agenda, which is free to treat
// them as one rule with several ways to match.
func (c *Compiler) CompileRule(rule ast.DefRule) error {
	salience := 0
	if rule.Declarations.HasSalience {
		salience = rule.Declarations.Salience
	}
	ctx := &ruleCtx{rule: rule.Name, module: rule.Module, salience: salience, compiler: c}
	return c.compileSeq(rule.LHS, 0, rete.DummyNodeID, 0, map[string]binding{}, ctx)
}

func (ctx *ruleCtx) attachProduction(parent rete.NodeID, depth int, bindings map[string]binding) {
	net := ctx.compiler.net
	id := ctx.compiler.track(ctx, net.NewNodeID())
	prod := net.NewProductionNode(id, ctx.rule, ctx.module, ctx.salience, ctx.compiler.sink)
	net.AddNode(parent, prod)
	ctx.compiler.productions[id] = productionEnv{depth: depth, bindings: cloneBindings(bindings)}
}

// compileSeq compiles ces[i:] in order, threading the current left-parent
// node, token-tree depth and variable bindings. Reaching the end of the
// slice attaches a production node under parent.
func (c *Compiler) compileSeq(ces []ast.CE, i int, parent rete.NodeID, depth int, bindings map[string]binding, ctx *ruleCtx) error {
	if i >= len(ces) {
		ctx.attachProduction(parent, depth, bindings)
		return nil
	}

	switch v := ces[i].(type) {
	case ast.AndCE:
		spliced := append(append([]ast.CE{}, v.CEs...), ces[i+1:]...)
		return c.compileSeq(spliced, 0, parent, depth, bindings, ctx)

	case ast.OrCE:
		for _, alt := range v.CEs {
			branch := append([]ast.CE{alt}, ces[i+1:]...)
			if err := c.compileSeq(branch, 0, parent, depth, cloneBindings(bindings), ctx); err != nil {
				return err
			}
		}
		return nil

	case ast.AssignedPatternCE:
		bindings[v.Var] = binding{depth: depth + 1, whole: true}
		wrapped := append([]ast.CE{v.CE}, ces[i+1:]...)
		return c.compileSeq(wrapped, 0, parent, depth, bindings, ctx)

	case ast.OrderedPatternCE:
		shape := "o:" + strconv.Itoa(len(v.Fields))
		return c.compilePositive(shape, orderedFields(v.Fields), ces, i, parent, depth, bindings, ctx)

	case ast.TemplatePatternCE:
		shape := "t:" + v.Template
		return c.compilePositive(shape, templateFields(v.Slots), ces, i, parent, depth, bindings, ctx)

	case ast.NotCE:
		return c.compileNot(v, ces, i, parent, depth, bindings, ctx)

	case ast.TestCE:
		return c.compileTest(v, ces, i, parent, depth, bindings, ctx)

	default:
		return errors.Newf(errors.RuleCompilationError, token.NoPos, "compile: unsupported condition element %T", ces[i])
	}
}

// fieldSpec is the compiler's normalized view of one pattern field: its
// WME address, its constant/test constraints, and the variable it binds
// (if any) — ordered-fact FieldConstraint and template SlotConstraint
// reduced to the same shape.
type fieldSpec struct {
	field rete.FieldRef
	cons  []ast.Constraint
	vr    string
}

func orderedFields(fields []ast.FieldConstraint) []fieldSpec {
	out := make([]fieldSpec, len(fields))
	for i, f := range fields {
		out[i] = fieldSpec{field: rete.FieldRef{Ordered: true, Index: i}, cons: f.Constraints, vr: f.Var}
	}
	return out
}

func templateFields(slots []ast.SlotConstraint) []fieldSpec {
	out := make([]fieldSpec, len(slots))
	for i, s := range slots {
		out[i] = fieldSpec{field: rete.FieldRef{Slot: s.Slot}, cons: s.Constraints, vr: s.Var}
	}
	return out
}

// compilePositive handles one OrderedPatternCE/TemplatePatternCE: builds
// (or shares) the alpha memory for shape+literal tests, builds (or
// shares) a join from parent against that memory with cross-pattern
// variable-equality tests, attaches a beta memory, records this
// pattern's variable bindings at the new depth, and continues.
func (c *Compiler) compilePositive(shape string, fields []fieldSpec, ces []ast.CE, i int, parent rete.NodeID, depth int, bindings map[string]binding, ctx *ruleCtx) error {
	alphaTests, joinTests, err := c.buildTests(fields, bindings, depth)
	if err != nil {
		return err
	}
	amID := c.net.EnsureMemory(shape, alphaTests)
	key := joinCacheKey(parent, amID, joinTests)

	var memID rete.NodeID
	if pair, ok := c.joinCache[key]; ok {
		c.net.Retain(pair.Join)
		c.net.Retain(pair.Memory)
		c.track(ctx, pair.Join)
		c.track(ctx, pair.Memory)
		memID = pair.Memory
	} else {
		joinID := c.track(ctx, c.net.NewNodeID())
		join := c.net.NewJoinNode(joinID, parent, amID, joinTests)
		c.net.AddNode(parent, join)
		c.net.AttachRightSuccessor(amID, joinID)

		bmID := c.track(ctx, c.net.NewNodeID())
		bm := c.net.NewBetaMemoryNode(bmID, joinID)
		c.net.AddNode(joinID, bm)

		memID = bmID
		c.joinCache[key] = NodeIDPair{Join: joinID, Memory: bmID}
	}

	newDepth := depth + 1
	for _, f := range fields {
		if f.vr != "" {
			if _, already := bindings[f.vr]; !already {
				bindings[f.vr] = binding{depth: newDepth, field: f.field}
			}
		}
	}
	return c.compileSeq(ces, i+1, memID, newDepth, bindings, ctx)
}

// buildTests classifies every field's constraints, plus implicit
// cross-pattern variable-equality constraints, into alpha tests (pure
// constant, evaluated independent of any token) and join tests (need the
// current token).
func (c *Compiler) buildTests(fields []fieldSpec, bindings map[string]binding, depth int) ([]rete.AlphaTest, []rete.JoinTest, error) {
	var alphaTests []rete.AlphaTest
	var joinTests []rete.JoinTest

	for _, f := range fields {
		for _, con := range f.cons {
			at, jt, isAlpha, err := c.compileConstraint(f.field, con, bindings, depth)
			if err != nil {
				return nil, nil, err
			}
			if isAlpha {
				alphaTests = append(alphaTests, at)
			} else {
				joinTests = append(joinTests, jt)
			}
		}
		if f.vr == "" {
			continue
		}
		if prior, ok := bindings[f.vr]; ok && !prior.whole {
			joinTests = append(joinTests, rete.JoinTest{
				Op: rete.TestEq, HasLeft: true,
				Left:  rete.BindingAddress{LevelsUp: depth - prior.depth, Field: prior.field},
				Field: f.field,
			})
		}
	}
	return alphaTests, joinTests, nil
}

// compileConstraint lowers one Constraint against field into either an
// alpha test (pure constant) or a join test (needs the current token, via
// a predicate closure for OpTestCall).
func (c *Compiler) compileConstraint(field rete.FieldRef, con ast.Constraint, bindings map[string]binding, depth int) (rete.AlphaTest, rete.JoinTest, bool, error) {
	switch con.Op {
	case ast.OpEq, ast.OpNeq, ast.OpLt, ast.OpLte, ast.OpGt, ast.OpGte:
		lit, err := rete.FromAST(con.Literal)
		if err != nil {
			return rete.AlphaTest{}, rete.JoinTest{}, false, err
		}
		return rete.AlphaTest{Field: field, Op: alphaOpFromAST(con.Op), Literal: lit}, rete.JoinTest{}, true, nil

	case ast.OpTypeIs:
		return rete.AlphaTest{Field: field, IsType: true, Kind: con.Type}, rete.JoinTest{}, true, nil

	case ast.OpTestCall:
		call := con.Call
		funcEval := c.funcEval
		jt := rete.JoinTest{Field: field, Predicate: func(net *rete.Network, t rete.TokenID, _ *rete.WME) bool {
			ok, err := funcEval(*call, resolverFor(net, t, bindings, depth))
			return err == nil && ok
		}}
		return rete.AlphaTest{}, jt, false, nil

	default:
		return rete.AlphaTest{}, rete.JoinTest{}, false, errors.Newf(errors.RuleCompilationError, token.NoPos, "compile: unknown constraint op %v", con.Op)
	}
}

func alphaOpFromAST(op ast.ConstraintOp) rete.JoinTestOp {
	switch op {
	case ast.OpEq:
		return rete.TestEq
	case ast.OpNeq:
		return rete.TestNeq
	case ast.OpLt:
		return rete.TestLt
	case ast.OpLte:
		return rete.TestLte
	case ast.OpGt:
		return rete.TestGt
	case ast.OpGte:
		return rete.TestGte
	}
	return rete.TestEq
}

// resolverFor builds the variable-resolution function a FuncEval call
// needs, closed over the token currently under test. depth is the token
// depth at the point in the network this predicate is attached (every
// token it ever runs against has that same depth, since the predicate's
// node sits at one fixed position in the beta network), so a bound
// variable's LevelsUp is always depth minus the depth it was bound at.
func resolverFor(net *rete.Network, t rete.TokenID, bindings map[string]binding, depth int) func(string) (rete.Value, bool) {
	return func(name string) (rete.Value, bool) {
		b, ok := bindings[name]
		if !ok || b.whole {
			return rete.Value{}, false
		}
		return net.Resolve(t, rete.BindingAddress{LevelsUp: depth - b.depth, Field: b.field})
	}
}

func joinCacheKey(parent rete.NodeID, am rete.AlphaMemID, tests []rete.JoinTest) string {
	s := fmt.Sprintf("%d|%d", parent, am)
	for _, jt := range tests {
		s += fmt.Sprintf("|%d,%d,%d,%t,%s,%s,%s", jt.Op, jt.Left.LevelsUp, jt.Left.Field.Index, jt.HasLeft, jt.Left.Field.Slot, jt.Field.Slot, jt.Literal.String())
	}
	return s
}

// patternShapeFields reduces a single positive pattern CE to its alpha
// shape key and field list, the common step shared by compilePositive and
// the single-pattern form of compileNot.
func patternShapeFields(ce ast.CE) (string, []fieldSpec, bool) {
	switch v := ce.(type) {
	case ast.OrderedPatternCE:
		return "o:" + strconv.Itoa(len(v.Fields)), orderedFields(v.Fields), true
	case ast.TemplatePatternCE:
		return "t:" + v.Template, templateFields(v.Slots), true
	default:
		return "", nil, false
	}
}

func posOf(ce ast.CE) token.Position {
	switch v := ce.(type) {
	case ast.OrderedPatternCE:
		return v.Pos
	case ast.TemplatePatternCE:
		return v.Pos
	case ast.AndCE:
		return v.Pos
	case ast.OrCE:
		return v.Pos
	case ast.NotCE:
		return v.Pos
	case ast.TestCE:
		return v.Pos
	case ast.AssignedPatternCE:
		return v.Pos
	default:
		return token.NoPos
	}
}

// compileNot handles (not <CE>). When inner reduces to an (and ...) of
// more than one condition element it is a negated conjunction (NCC,
// spec §4.5): an independent partner circuit is built, rooted at the NCC
// node itself, with its own join chain mirroring compilePositive, ending
// at an NCCPartnerNode. Otherwise inner must be a single positive
// pattern, lowered straight into a NotNode. Neither form advances depth
// or binds new pattern variables: both forward the same owning token
// they received rather than minting a new one.
func (c *Compiler) compileNot(v ast.NotCE, ces []ast.CE, i int, parent rete.NodeID, depth int, bindings map[string]binding, ctx *ruleCtx) error {
	inner := v.Inner
	if and, ok := inner.(ast.AndCE); ok {
		if len(and.CEs) == 1 {
			inner = and.CEs[0]
		} else {
			return c.compileNCC(and.CEs, ces, i, parent, depth, bindings, ctx)
		}
	}

	shape, fields, ok := patternShapeFields(inner)
	if !ok {
		return errors.Newf(errors.RuleCompilationError, posOf(inner), "compile: (not ...) requires a single pattern or a conjunction of patterns")
	}
	alphaTests, joinTests, err := c.buildTests(fields, bindings, depth)
	if err != nil {
		return err
	}
	amID := c.net.EnsureMemory(shape, alphaTests)

	notID := c.track(ctx, c.net.NewNodeID())
	not := c.net.NewNotNode(notID, parent, amID, joinTests)
	c.net.AddNode(parent, not)
	c.net.AttachRightSuccessor(amID, notID)

	return c.compileSeq(ces, i+1, notID, depth, bindings, ctx)
}

// compileNCC lowers the CEs of a negated conjunction into an independent
// partner circuit: a join chain rooted at the NCC node itself (so its
// output becomes, by construction, a Children entry of the owning token —
// see NCCNode's doc comment), terminated by an NCCPartnerNode attached
// directly to the last join (findNCCOwnerNode recovers the owning NCC
// node by looking for an NCCPartnerNode among that join's children, so no
// beta memory may sit between them). circuitLength is len(inner): one
// ancestor hop per join in the circuit.
//
// The circuit's own join chain is never shared via joinCache — a partner
// circuit's prefix starts at an NCC node, never a legal LHS prefix for
// another rule — so it is built directly rather than through
// compilePositive.
func (c *Compiler) compileNCC(inner []ast.CE, ces []ast.CE, i int, parent rete.NodeID, depth int, bindings map[string]binding, ctx *ruleCtx) error {
	nccID := c.track(ctx, c.net.NewNodeID())
	partnerEntryID := c.track(ctx, c.net.NewNodeID())
	ncc := c.net.NewNCCNode(nccID, partnerEntryID)
	// Registration is deferred: ncc isn't replayed against parent's
	// existing tokens (see ReplayNode below) until the partner circuit
	// built below actually exists, since NCCNode.LeftActivate seeds
	// partnerEntryID immediately on every replayed token.
	c.net.AddNodeDeferredReplay(parent, ncc)

	circuitBindings := cloneBindings(bindings)
	circuitParent := nccID
	circuitDepth := 0
	for ci, ce := range inner {
		shape, fields, ok := patternShapeFields(ce)
		if !ok {
			return errors.Newf(errors.RuleCompilationError, posOf(ce), "compile: (not (and ...)) members must be patterns")
		}
		alphaTests, joinTests, err := c.buildTests(fields, circuitBindings, circuitDepth)
		if err != nil {
			return err
		}
		amID := c.net.EnsureMemory(shape, alphaTests)

		var joinID rete.NodeID
		if ci == 0 {
			joinID = partnerEntryID
		} else {
			joinID = c.track(ctx, c.net.NewNodeID())
		}
		join := c.net.NewJoinNode(joinID, circuitParent, amID, joinTests)
		if ci == 0 {
			// partnerEntryID is seeded by hand (NCCNode.LeftActivate), never
			// as a generic child of the NCC node; see AddPartnerEntry.
			c.net.AddPartnerEntry(circuitParent, join)
		} else {
			c.net.AddNode(circuitParent, join)
		}
		c.net.AttachRightSuccessor(amID, joinID)

		circuitDepth++
		for _, f := range fields {
			if f.vr != "" {
				if _, already := circuitBindings[f.vr]; !already {
					circuitBindings[f.vr] = binding{depth: circuitDepth, field: f.field}
				}
			}
		}

		if ci < len(inner)-1 {
			bmID := c.track(ctx, c.net.NewNodeID())
			bm := c.net.NewBetaMemoryNode(bmID, joinID)
			c.net.AddNode(joinID, bm)
			circuitParent = bmID
		} else {
			partnerID := c.track(ctx, c.net.NewNodeID())
			partner := c.net.NewNCCPartnerNode(partnerID, nccID, len(inner))
			c.net.AddNode(joinID, partner)
		}
	}

	// The partner circuit now exists end to end, so it is safe to replay
	// parent's existing tokens into ncc (deferred above).
	c.net.ReplayNode(parent, nccID)

	return c.compileSeq(ces, i+1, nccID, depth, bindings, ctx)
}

// compileTest handles a (test <expr>) CE: a pure filter on the current
// frontier token, evaluated via funcEval and forwarded unchanged on
// success. It advances neither depth nor bindings.
func (c *Compiler) compileTest(v ast.TestCE, ces []ast.CE, i int, parent rete.NodeID, depth int, bindings map[string]binding, ctx *ruleCtx) error {
	expr := v.Expr
	funcEval := c.funcEval
	predicate := func(net *rete.Network, t rete.TokenID) bool {
		ok, err := funcEval(expr, resolverFor(net, t, bindings, depth))
		return err == nil && ok
	}

	testID := c.track(ctx, c.net.NewNodeID())
	tn := c.net.NewTestNode(testID, predicate)
	c.net.AddNode(parent, tn)

	return c.compileSeq(ces, i+1, testID, depth, bindings, ctx)
}

func cloneBindings(b map[string]binding) map[string]binding {
	out := make(map[string]binding, len(b))
	for k, v := range b {
		out[k] = v
	}
	return out
}
