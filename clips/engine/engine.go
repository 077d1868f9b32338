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

// Package engine wires the scope registry, the compiled rete network, the
// agenda and the function-library host into the one assert/retract/run/
// reset/clear surface spec.md §6 describes an embedder driving. None of
// its collaborators import it back: Engine is purely additive composition
// over internal/core/{compile,rete,agenda} and clips/{scope,function}.
package engine

import (
	"fmt"

	"clips.dev/go/clips/ast"
	"clips.dev/go/clips/errors"
	"clips.dev/go/clips/function"
	"clips.dev/go/clips/scope"
	"clips.dev/go/clips/token"
	"clips.dev/go/internal/core/agenda"
	"clips.dev/go/internal/core/compile"
	"clips.dev/go/internal/core/rete"
)

// Engine is one running session: the scope registry, the compiled
// network, the agenda, and the function-library host a rule's RHS
// resolves calls against.
type Engine struct {
	Scopes    *scope.Registry
	Net       *rete.Network
	Agenda    *agenda.Agenda
	Functions *function.Registry

	compiler *compile.Compiler
	cmp      agenda.Comparator

	nextFact rete.FactID
	live     map[rete.FactID]bool

	rules     []ast.DefRule // registration order, for Clear
	ruleByKey map[string]*ast.DefRule

	defFacts []ast.DefFacts // registration order, for Reset
}

// New returns an Engine with an empty scope registry and network, its
// function host seeded with the native builtin set (clips/function's
// RegisterBuiltins), firing activations in cmp order (agenda.Default if
// nil).
func New(cmp agenda.Comparator) *Engine {
	if cmp == nil {
		cmp = agenda.Default
	}
	e := &Engine{
		Functions: function.NewRegistry(),
		cmp:       cmp,
		nextFact:  1,
		live:      map[rete.FactID]bool{},
		ruleByKey: map[string]*ast.DefRule{},
	}
	if err := function.RegisterBuiltins(e.Functions); err != nil {
		panic(fmt.Sprintf("clips/engine: registering builtins: %v", err))
	}
	e.reinit()
	return e
}

// reinit (re)builds the scope registry, network, agenda and compiler from
// scratch, leaving Functions and the registration bookkeeping untouched.
// Used by New and by Clear.
func (e *Engine) reinit() {
	e.Scopes = scope.NewRegistry()
	e.Net = rete.NewNetwork()
	e.Agenda = agenda.New(e.Net, e.cmp)
	e.compiler = compile.NewCompiler(e.Net, e.Agenda, e.evalPredicate)
}

// evalPredicate is the compiler's FuncEval: it evaluates a (test ...) CE
// or an OpTestCall constraint's call through the system function host.
// Only ?SYSTEM? builtins are reachable from a join/test predicate — a
// user DefFunction has no home module to resolve against at compile time,
// since compile.FuncEval carries no module parameter (SPEC_FULL.md's
// function-library wiring stops at the builtin set for LHS predicates;
// see DESIGN.md).
func (e *Engine) evalPredicate(expr ast.Expr, resolve func(string) (rete.Value, bool)) (bool, error) {
	ev := function.NewEvaluator(e.Functions, function.SystemModule)
	return ev.Predicate(expr, resolve)
}

// Load installs a batch of top-level constructs, in order: each
// DefModule/DefTemplate/DefFunction/DefGlobal is registered into its
// scope (spec §4.1), each DefFacts body is remembered for the next
// Reset, and each DefRule is registered with the agenda and compiled
// into the network.
func (e *Engine) Load(items []interface{}) error {
	for _, it := range items {
		if err := e.loadOne(it); err != nil {
			return err
		}
	}
	return nil
}

func (e *Engine) loadOne(it interface{}) error {
	switch v := it.(type) {
	case ast.DefModule:
		_, err := e.Scopes.RegisterScope(v)
		return err

	case ast.DefTemplate:
		sc, ok := e.Scopes.Scope(v.Module)
		if !ok {
			return errors.Newf(errors.UnknownModule, v.Pos, "unknown module %q", v.Module)
		}
		_, err := sc.AddDefinition(ast.KindTemplate, v.Name, v)
		return err

	case ast.DefFunction:
		sc, ok := e.Scopes.Scope(v.Module)
		if !ok {
			return errors.Newf(errors.UnknownModule, v.Pos, "unknown module %q", v.Module)
		}
		_, err := sc.AddDefinition(ast.KindFunction, v.Name, v)
		return err

	case ast.DefGlobal:
		sc, ok := e.Scopes.Scope(v.Module)
		if !ok {
			return errors.Newf(errors.UnknownModule, v.Pos, "unknown module %q", v.Module)
		}
		_, err := sc.AddDefinition(ast.KindGlobal, v.Name, v)
		return err

	case ast.DefFacts:
		if _, ok := e.Scopes.Scope(v.Module); !ok {
			return errors.Newf(errors.UnknownModule, v.Pos, "unknown module %q", v.Module)
		}
		e.defFacts = append(e.defFacts, v)
		return nil

	case ast.DefRule:
		e.Agenda.RegisterRule(v.Module, v.Name, v.Declarations.AutoFocus)
		if err := e.compiler.CompileRule(v); err != nil {
			return err
		}
		e.rules = append(e.rules, v)
		e.ruleByKey[ruleKey(v.Module, v.Name)] = &e.rules[len(e.rules)-1]
		return nil

	default:
		return errors.Newf(errors.Other, token.NoPos, "clips/engine: unsupported top-level construct %T", it)
	}
}

func ruleKey(module, rule string) string { return module + "\x00" + rule }

// Assert inserts an ordered or template-shaped fact into working memory,
// allocating it a fresh fact-id. Fact-ids are never coalesced or reused
// (SPEC_FULL.md §C.1): retracting fact 3 and asserting a new fact still
// hands out 4, not 3 again.
func (e *Engine) Assert(template string, ordered []rete.Value, slots map[string]rete.Value) rete.FactID {
	id := e.nextFact
	e.nextFact++
	e.Net.Assert(&rete.Fact{ID: id, Template: template, Ordered: ordered, Slots: slots})
	e.live[id] = true
	return id
}

// AssertLiteral elaborates a parsed fact literal and asserts it.
func (e *Engine) AssertLiteral(fl ast.FactLiteral) (rete.FactID, error) {
	if fl.Template != "" {
		slots := make(map[string]rete.Value, len(fl.Slots))
		for k, v := range fl.Slots {
			rv, err := rete.FromAST(v)
			if err != nil {
				return 0, err
			}
			slots[k] = rv
		}
		return e.Assert(fl.Template, nil, slots), nil
	}
	ordered := make([]rete.Value, len(fl.Ordered))
	for i, v := range fl.Ordered {
		rv, err := rete.FromAST(v)
		if err != nil {
			return 0, err
		}
		ordered[i] = rv
	}
	return e.Assert("", ordered, nil), nil
}

// Retract removes the fact with id from working memory, reporting false
// if it was already gone.
func (e *Engine) Retract(id rete.FactID) bool {
	if !e.Net.Retract(id) {
		return false
	}
	delete(e.live, id)
	return true
}

// Fire pops the next activation (per the agenda's focus stack and
// comparator) and runs its RHS: each action is resolved against the
// firing token's bindings (spec §4.7's bindings-view) and evaluated
// through the function-library host. It reports the fired rule's name
// and true, or false if the conflict set is empty.
func (e *Engine) Fire() (string, bool, error) {
	entry, ok := e.Agenda.Pop()
	if !ok {
		return "", false, nil
	}
	resolve := func(name string) (rete.Value, bool) {
		return e.compiler.ResolveVar(entry.Node, entry.Token, name)
	}
	ev := function.NewEvaluator(e.Functions, entry.Module)
	rule := e.ruleByKey[ruleKey(entry.Module, entry.Rule)]
	var rhs []ast.Action
	if rule != nil {
		rhs = rule.RHS
	}
	for _, act := range rhs {
		if err := e.runAction(act, ev, resolve); err != nil {
			return entry.Rule, true, err
		}
	}
	return entry.Rule, true, nil
}

// runAction evaluates one RHS statement for its side effects, discarding
// any result. Only ast.FuncCall is a defined Action shape (spec §6); a
// RHS assert/retract is resolved only as an ordinary function call through
// the host, not as a distinguished AST node. The builtin set registers no
// assert or retract function, so such a call fails as an undefined
// function unless an embedder has registered one (see DESIGN.md).
func (e *Engine) runAction(act ast.Action, ev *function.Evaluator, resolve function.Resolver) error {
	call, ok := act.(ast.FuncCall)
	if !ok {
		return errors.Newf(errors.Other, token.NoPos, "clips/engine: unsupported RHS action %T", act)
	}
	_, err := ev.Eval(call, resolve)
	return err
}

// Run fires activations in agenda order until the conflict set is empty
// or limit activations have fired (limit < 0 for unbounded), returning
// the number fired.
func (e *Engine) Run(limit int) (int, error) {
	fired := 0
	for limit < 0 || fired < limit {
		_, ok, err := e.Fire()
		if err != nil {
			return fired, err
		}
		if !ok {
			break
		}
		fired++
	}
	return fired, nil
}

// Reset discards every fact currently in working memory, then asserts
// every registered deffacts body in registration order (SPEC_FULL.md
// §C.4). Compiled rules, templates and scopes survive: only working
// memory and the focus stack are affected.
func (e *Engine) Reset() error {
	for id := range e.live {
		e.Net.Retract(id)
	}
	e.live = map[rete.FactID]bool{}
	e.Agenda.ClearFocusStack()
	for _, df := range e.defFacts {
		for _, fl := range df.Facts {
			if _, err := e.AssertLiteral(fl); err != nil {
				return err
			}
		}
	}
	return nil
}

// Clear discards all working memory, every compiled rule's network nodes
// (spec §4.8's deletion, refcounted so a shared LHS prefix is torn down
// only once every rule sharing it is gone), and every scope — leaving an
// Engine equivalent to one just returned by New, except that Functions
// (the system host, not scope data) and the fact-id counter are kept as
// is, so later fact ids continue from where they were.
func (e *Engine) Clear() {
	for i := len(e.rules) - 1; i >= 0; i-- {
		r := e.rules[i]
		for _, id := range e.compiler.RuleNodes(r.Module, r.Name) {
			e.Net.DeleteNode(id)
		}
	}
	e.rules = nil
	e.ruleByKey = map[string]*ast.DefRule{}
	e.defFacts = nil
	e.live = map[rete.FactID]bool{}
	e.reinit()
}
