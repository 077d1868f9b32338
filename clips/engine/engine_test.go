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

package engine_test

import (
	"testing"

	"github.com/go-quicktest/qt"

	"clips.dev/go/clips/ast"
	"clips.dev/go/clips/engine"
	"clips.dev/go/internal/core/rete"
)

func mainModule() ast.DefModule { return ast.DefModule{Name: "MAIN"} }

func blockTemplate() ast.DefTemplate {
	return ast.DefTemplate{Module: "MAIN", Name: "block", Slots: []ast.Slot{{Name: "color"}}}
}

// colorRule matches every "block" fact whose color slot equals color,
// binding ?c to the slot so the RHS can exercise bound-variable resolution.
// Its RHS calls a builtin with the bound value purely to prove Fire resolves
// and evaluates it; engine.Fire does not support assert/retract as a
// distinguished RHS action (see engine.go's runAction doc comment).
func colorRule(name, color string) ast.DefRule {
	return ast.DefRule{
		Module: "MAIN",
		Name:   name,
		LHS: []ast.CE{ast.TemplatePatternCE{
			Template: "block",
			Slots: []ast.SlotConstraint{
				{Slot: "color", Var: "c", Constraints: []ast.Constraint{
					{Op: ast.OpEq, Literal: ast.Value{Kind: ast.KindSymbol, Symbol: color}},
				}},
			},
		}},
		RHS: []ast.Action{
			ast.FuncCall{Name: "eq", Args: []ast.Expr{ast.VarRef{Name: "c"}, ast.Value{Kind: ast.KindSymbol, Symbol: color}}},
		},
	}
}

func blockLiteral(color string) ast.FactLiteral {
	return ast.FactLiteral{Template: "block", Slots: map[string]ast.Value{"color": {Kind: ast.KindSymbol, Symbol: color}}}
}

func newLoadedEngine(t *testing.T) *engine.Engine {
	t.Helper()
	e := engine.New(nil)
	err := e.Load([]interface{}{
		mainModule(),
		blockTemplate(),
		colorRule("red-rule", "red"),
	})
	qt.Assert(t, qt.IsNil(err))
	return e
}

func TestAssertActivatesMatchingRuleOnly(t *testing.T) {
	e := newLoadedEngine(t)

	e.Assert("block", nil, map[string]rete.Value{})
	qt.Assert(t, qt.Equals(e.Agenda.Len(), 0), qt.Commentf("a block without a color slot value never satisfies the slot-eq test"))
}

func TestFireRunsMatchingActivationAndResolvesBoundVariable(t *testing.T) {
	e := newLoadedEngine(t)

	id, err := e.AssertLiteral(blockLiteral("red"))
	qt.Assert(t, qt.IsNil(err))
	qt.Assert(t, qt.Equals(e.Agenda.Len(), 1))

	rule, fired, err := e.Fire()
	qt.Assert(t, qt.IsNil(err))
	qt.Assert(t, qt.IsTrue(fired))
	qt.Assert(t, qt.Equals(rule, "red-rule"))
	qt.Assert(t, qt.Equals(e.Agenda.Len(), 0))

	_, stillThere := e.Net.Fact(id)
	qt.Assert(t, qt.IsTrue(stillThere), qt.Commentf("firing a rule whose RHS never retracts must leave the fact in place"))
}

func TestFireIgnoresNonMatchingFact(t *testing.T) {
	e := newLoadedEngine(t)
	_, err := e.AssertLiteral(blockLiteral("blue"))
	qt.Assert(t, qt.IsNil(err))

	_, fired, err := e.Fire()
	qt.Assert(t, qt.IsNil(err))
	qt.Assert(t, qt.IsFalse(fired))
}

func TestRunFiresUntilConflictSetEmpty(t *testing.T) {
	e := newLoadedEngine(t)
	_, err := e.AssertLiteral(blockLiteral("red"))
	qt.Assert(t, qt.IsNil(err))
	_, err = e.AssertLiteral(blockLiteral("red"))
	qt.Assert(t, qt.IsNil(err))

	n, err := e.Run(-1)
	qt.Assert(t, qt.IsNil(err))
	qt.Assert(t, qt.Equals(n, 2))
	qt.Assert(t, qt.Equals(e.Agenda.Len(), 0))
}

// TestResetAssertsDeffactsInRegistrationOrder confirms Reset discards
// existing working memory and then (re-)asserts every registered deffacts
// body (SPEC_FULL.md §C.4), leaving the matching rule's activation pending.
func TestResetAssertsDeffactsInRegistrationOrder(t *testing.T) {
	e := engine.New(nil)
	err := e.Load([]interface{}{
		mainModule(),
		blockTemplate(),
		colorRule("red-rule", "red"),
		ast.DefFacts{Module: "MAIN", Name: "initial", Facts: []ast.FactLiteral{blockLiteral("red"), blockLiteral("blue")}},
	})
	qt.Assert(t, qt.IsNil(err))
	qt.Assert(t, qt.Equals(e.Agenda.Len(), 0), qt.Commentf("deffacts is only asserted by Reset, not by Load"))

	qt.Assert(t, qt.IsNil(e.Reset()))
	qt.Assert(t, qt.Equals(e.Agenda.Len(), 1), qt.Commentf("only the red block should activate red-rule"))

	qt.Assert(t, qt.IsNil(e.Reset()))
	qt.Assert(t, qt.Equals(e.Agenda.Len(), 1), qt.Commentf("a second Reset must not accumulate duplicate activations"))
}

// TestClearRemovesCompiledRulesAndScopes confirms Clear tears the compiled
// network and scope registry down far enough that a fact which used to
// activate a rule no longer does, and the module it was declared in is
// gone.
func TestClearRemovesCompiledRulesAndScopes(t *testing.T) {
	e := newLoadedEngine(t)
	_, err := e.AssertLiteral(blockLiteral("red"))
	qt.Assert(t, qt.IsNil(err))
	qt.Assert(t, qt.Equals(e.Agenda.Len(), 1))

	e.Clear()

	_, ok := e.Scopes.Scope("MAIN")
	qt.Assert(t, qt.IsFalse(ok))
	qt.Assert(t, qt.Equals(e.Agenda.Len(), 0))

	qt.Assert(t, qt.IsNil(e.Load([]interface{}{mainModule(), blockTemplate()})))
	_, err = e.AssertLiteral(blockLiteral("red"))
	qt.Assert(t, qt.IsNil(err))
	qt.Assert(t, qt.Equals(e.Agenda.Len(), 0), qt.Commentf("red-rule was discarded by Clear and never reloaded"))
}
