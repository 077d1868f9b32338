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

package compile

import (
	"testing"

	"github.com/go-quicktest/qt"

	"clips.dev/go/clips/ast"
	"clips.dev/go/internal/core/rete"
)

type recordingSink struct {
	activated   []rete.Activation
	deactivated int
}

func (s *recordingSink) Activate(a rete.Activation)                   { s.activated = append(s.activated, a) }
func (s *recordingSink) Deactivate(module, rule string, t rete.TokenID) { s.deactivated++ }

func noFuncs(ast.Expr, func(string) (rete.Value, bool)) (bool, error) { return true, nil }

func blockFact(id rete.FactID, color string) *rete.Fact {
	return &rete.Fact{ID: id, Template: "block", Slots: map[string]rete.Value{"color": rete.Symbol(color)}}
}

// TestSinglePatternRuleFires compiles (defrule r1 (block (color red)) =>)
// and confirms a matching fact activates it, a non-matching fact does not,
// and retraction deactivates it (mirrors spec §8 scenario S1).
func TestSinglePatternRuleFires(t *testing.T) {
	net := rete.NewNetwork()
	sink := &recordingSink{}
	c := NewCompiler(net, sink, noFuncs)

	rule := ast.DefRule{
		Name:   "r1",
		Module: "MAIN",
		LHS: []ast.CE{
			ast.TemplatePatternCE{
				Template: "block",
				Slots: []ast.SlotConstraint{
					{Slot: "color", Constraints: []ast.Constraint{{Op: ast.OpEq, Literal: ast.Value{Kind: ast.KindSymbol, Symbol: "red"}}}},
				},
			},
		},
	}
	qt.Assert(t, qt.IsNil(c.CompileRule(rule)))

	net.Assert(blockFact(1, "red"))
	qt.Assert(t, qt.HasLen(sink.activated, 1))

	net.Assert(blockFact(2, "blue"))
	qt.Assert(t, qt.HasLen(sink.activated, 1))

	net.Retract(1)
	qt.Assert(t, qt.Equals(sink.deactivated, 1))
}

// TestTwoPatternJoinSharesPrefix compiles two rules whose first pattern is
// identical, confirming the compiler's joinCache shares the alpha memory
// and join/beta-memory pair rather than constructing duplicates (spec §4.4
// node sharing, Testable Property 5), and that asserting the shared fact
// after both rules are compiled activates both.
func TestTwoPatternJoinSharesPrefix(t *testing.T) {
	net := rete.NewNetwork()
	sink := &recordingSink{}
	c := NewCompiler(net, sink, noFuncs)

	mkRule := func(name string) ast.DefRule {
		return ast.DefRule{
			Name:   name,
			Module: "MAIN",
			LHS: []ast.CE{
				ast.TemplatePatternCE{
					Template: "block",
					Slots: []ast.SlotConstraint{
						{Slot: "color", Constraints: []ast.Constraint{{Op: ast.OpEq, Literal: ast.Value{Kind: ast.KindSymbol, Symbol: "red"}}}},
					},
				},
			},
		}
	}
	qt.Assert(t, qt.IsNil(c.CompileRule(mkRule("r1"))))
	qt.Assert(t, qt.IsNil(c.CompileRule(mkRule("r2"))))
	qt.Assert(t, qt.HasLen(c.joinCache, 1))

	net.Assert(blockFact(1, "red"))
	qt.Assert(t, qt.HasLen(sink.activated, 2))
}

// TestNegatedPatternBlocksOnMatch compiles (defrule r1 (not (block (color
// red))) =>) and confirms the rule fires on an empty working memory and
// retracts when a matching fact is asserted (spec §8 scenario S3).
func TestNegatedPatternBlocksOnMatch(t *testing.T) {
	net := rete.NewNetwork()
	sink := &recordingSink{}
	c := NewCompiler(net, sink, noFuncs)

	rule := ast.DefRule{
		Name:   "r1",
		Module: "MAIN",
		LHS: []ast.CE{
			ast.NotCE{Inner: ast.TemplatePatternCE{
				Template: "block",
				Slots: []ast.SlotConstraint{
					{Slot: "color", Constraints: []ast.Constraint{{Op: ast.OpEq, Literal: ast.Value{Kind: ast.KindSymbol, Symbol: "red"}}}},
				},
			}},
		},
	}
	qt.Assert(t, qt.IsNil(c.CompileRule(rule)))
	qt.Assert(t, qt.HasLen(sink.activated, 1))

	net.Assert(blockFact(1, "red"))
	qt.Assert(t, qt.Equals(sink.deactivated, 1))
}

// TestNegatedConjunctionBlocksOnlyWhenBothMatch compiles (defrule r1 (not
// (and (block (color red)) (block (color blue)))) =>) and confirms the
// rule stays active until BOTH facts are present together (spec §4.5 NCC,
// §8 scenario S4).
func TestNegatedConjunctionBlocksOnlyWhenBothMatch(t *testing.T) {
	net := rete.NewNetwork()
	sink := &recordingSink{}
	c := NewCompiler(net, sink, noFuncs)

	rule := ast.DefRule{
		Name:   "r1",
		Module: "MAIN",
		LHS: []ast.CE{
			ast.NotCE{Inner: ast.AndCE{CEs: []ast.CE{
				ast.TemplatePatternCE{Template: "block", Slots: []ast.SlotConstraint{
					{Slot: "color", Constraints: []ast.Constraint{{Op: ast.OpEq, Literal: ast.Value{Kind: ast.KindSymbol, Symbol: "red"}}}},
				}},
				ast.TemplatePatternCE{Template: "block", Slots: []ast.SlotConstraint{
					{Slot: "color", Constraints: []ast.Constraint{{Op: ast.OpEq, Literal: ast.Value{Kind: ast.KindSymbol, Symbol: "blue"}}}},
				}},
			}}},
		},
	}
	qt.Assert(t, qt.IsNil(c.CompileRule(rule)))
	qt.Assert(t, qt.HasLen(sink.activated, 1))

	net.Assert(blockFact(1, "red"))
	qt.Assert(t, qt.Equals(sink.deactivated, 0), qt.Commentf("only one half of the conjunction matched"))

	net.Assert(blockFact(2, "blue"))
	qt.Assert(t, qt.Equals(sink.deactivated, 1), qt.Commentf("both halves now match, NCC result count 0->1"))

	net.Retract(2)
	qt.Assert(t, qt.HasLen(sink.activated, 2), qt.Commentf("NCC result count 1->0 re-propagates"))
}
