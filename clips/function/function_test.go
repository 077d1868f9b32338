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

package function_test

import (
	"testing"

	"github.com/go-quicktest/qt"

	"clips.dev/go/clips/ast"
	"clips.dev/go/clips/function"
	"clips.dev/go/internal/core/rete"
)

func newRegistry(t *testing.T) *function.Registry {
	t.Helper()
	r := function.NewRegistry()
	qt.Assert(t, qt.IsNil(function.RegisterBuiltins(r)))
	return r
}

func TestArithmeticBuiltinsFoldLeftToRight(t *testing.T) {
	r := newRegistry(t)
	plus, ok := r.Lookup(function.SystemModule, "+")
	qt.Assert(t, qt.IsTrue(ok))

	got, err := plus.Handler([]rete.Value{rete.Integer(1), rete.Integer(2), rete.Integer(3)})
	qt.Assert(t, qt.IsNil(err))
	c, ok := rete.Compare(got, rete.Integer(6))
	qt.Assert(t, qt.IsTrue(ok))
	qt.Assert(t, qt.Equals(c, 0))
}

func TestUnaryMinusNegates(t *testing.T) {
	r := newRegistry(t)
	minus, ok := r.Lookup(function.SystemModule, "-")
	qt.Assert(t, qt.IsTrue(ok))

	got, err := minus.Handler([]rete.Value{rete.Integer(5)})
	qt.Assert(t, qt.IsNil(err))
	c, ok := rete.Compare(got, rete.Integer(-5))
	qt.Assert(t, qt.IsTrue(ok))
	qt.Assert(t, qt.Equals(c, 0))
}

func TestComparatorChainsPairwise(t *testing.T) {
	r := newRegistry(t)
	lt, ok := r.Lookup(function.SystemModule, "<")
	qt.Assert(t, qt.IsTrue(ok))

	got, err := lt.Handler([]rete.Value{rete.Integer(1), rete.Integer(2), rete.Integer(3)})
	qt.Assert(t, qt.IsNil(err))
	qt.Assert(t, qt.IsTrue(function.Truthy(got)))

	got, err = lt.Handler([]rete.Value{rete.Integer(1), rete.Integer(5), rete.Integer(3)})
	qt.Assert(t, qt.IsNil(err))
	qt.Assert(t, qt.IsFalse(function.Truthy(got)))
}

func TestConstraintRejectsWrongArityAndType(t *testing.T) {
	c := function.Constraint{MinArity: 2, MaxArity: 2, Types: [][]ast.ValueKind{{ast.KindInteger}, {ast.KindInteger}}}

	qt.Assert(t, qt.IsNil(c.Check([]rete.Value{rete.Integer(1), rete.Integer(2)})))
	qt.Assert(t, qt.IsNotNil(c.Check([]rete.Value{rete.Integer(1)})))
	qt.Assert(t, qt.IsNotNil(c.Check([]rete.Value{rete.Integer(1), rete.String("x")})))
}

func TestEvaluatorResolvesVarRefAndCallsFunction(t *testing.T) {
	r := newRegistry(t)
	eval := function.NewEvaluator(r, "MAIN")

	resolve := func(name string) (rete.Value, bool) {
		if name == "x" {
			return rete.Integer(3), true
		}
		return rete.Value{}, false
	}

	expr := ast.FuncCall{Name: ">", Args: []ast.Expr{ast.VarRef{Name: "x"}, ast.Value{Kind: ast.KindInteger, Integer: 1}}}
	ok, err := eval.Predicate(expr, resolve)
	qt.Assert(t, qt.IsNil(err))
	qt.Assert(t, qt.IsTrue(ok))
}

func TestEvaluatorUnboundVariableErrors(t *testing.T) {
	r := newRegistry(t)
	eval := function.NewEvaluator(r, "MAIN")

	_, err := eval.Eval(ast.VarRef{Name: "missing"}, func(string) (rete.Value, bool) { return rete.Value{}, false })
	qt.Assert(t, qt.IsNotNil(err))
}
