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

package function

import (
	"clips.dev/go/clips/ast"
	"clips.dev/go/clips/errors"
	"clips.dev/go/clips/token"
	"clips.dev/go/internal/core/rete"

	"github.com/cockroachdb/apd/v3"
)

// arithCtx is the decimal context every arithmetic builtin shares, mirroring
// the teacher's own package-level apd.Context for CUE's number evaluation
// (internal/core/adt/binop.go).
var arithCtx apd.Context

func init() {
	arithCtx = apd.BaseContext
	arithCtx.Precision = 32
}

var numericTypes = []ast.ValueKind{ast.KindInteger, ast.KindFloat}

func numericOf(v rete.Value) *apd.Decimal {
	if v.Kind == ast.KindInteger {
		return apd.New(v.Int, 0)
	}
	return v.Dec
}

// RegisterBuiltins installs the deterministic native builtin set
// (SPEC_FULL.md §B.6) into r under SystemModule: the arithmetic operators
// and order comparators spec.md §8's scenarios exercise, plus the boolean
// combinators a (test ...) CE's body is built from.
func RegisterBuiltins(r *Registry) error {
	for _, def := range builtins() {
		if err := r.Register(def); err != nil {
			return err
		}
	}
	return nil
}

func builtins() []*FunctionDefinition {
	one := apd.New(1, 0)
	return []*FunctionDefinition{
		arithFn("+", func(acc, d *apd.Decimal) { arithCtx.Add(acc, acc, d) }, apd.New(0, 0), nil),
		arithFn("-", func(acc, d *apd.Decimal) { arithCtx.Sub(acc, acc, d) }, nil,
			func(acc *apd.Decimal) { arithCtx.Neg(acc, acc) }),
		arithFn("*", func(acc, d *apd.Decimal) { arithCtx.Mul(acc, acc, d) }, apd.New(1, 0), nil),
		arithFn("/", func(acc, d *apd.Decimal) { arithCtx.Quo(acc, acc, d) }, nil,
			func(acc *apd.Decimal) { arithCtx.Quo(acc, one, acc) }),
		cmpFn("<", func(c int) bool { return c < 0 }),
		cmpFn("<=", func(c int) bool { return c <= 0 }),
		cmpFn(">", func(c int) bool { return c > 0 }),
		cmpFn(">=", func(c int) bool { return c >= 0 }),
		{
			Module: SystemModule, Name: "eq", ResultType: ast.KindSymbol,
			Constraints: Constraint{MinArity: 2, MaxArity: 2},
			Deterministic: true,
			Handler: func(args []rete.Value) (rete.Value, error) {
				return boolValue(rete.Equal(args[0], args[1])), nil
			},
		},
		{
			Module: SystemModule, Name: "neq", ResultType: ast.KindSymbol,
			Constraints: Constraint{MinArity: 2, MaxArity: 2},
			Deterministic: true,
			Handler: func(args []rete.Value) (rete.Value, error) {
				return boolValue(!rete.Equal(args[0], args[1])), nil
			},
		},
		{
			Module: SystemModule, Name: "and", ResultType: ast.KindSymbol,
			Constraints: Constraint{MinArity: 0, MaxArity: -1},
			Deterministic: true,
			Handler: func(args []rete.Value) (rete.Value, error) {
				for _, a := range args {
					if !Truthy(a) {
						return boolValue(false), nil
					}
				}
				return boolValue(true), nil
			},
		},
		{
			Module: SystemModule, Name: "or", ResultType: ast.KindSymbol,
			Constraints: Constraint{MinArity: 0, MaxArity: -1},
			Deterministic: true,
			Handler: func(args []rete.Value) (rete.Value, error) {
				for _, a := range args {
					if Truthy(a) {
						return boolValue(true), nil
					}
				}
				return boolValue(false), nil
			},
		},
		{
			Module: SystemModule, Name: "not", ResultType: ast.KindSymbol,
			Constraints: Constraint{MinArity: 1, MaxArity: 1},
			Deterministic: true,
			Handler: func(args []rete.Value) (rete.Value, error) {
				return boolValue(!Truthy(args[0])), nil
			},
		},
	}
}

func boolValue(b bool) rete.Value {
	if b {
		return rete.Symbol("TRUE")
	}
	return rete.Symbol("FALSE")
}

// arithFn builds a variadic arithmetic builtin folding op left to right
// over its arguments. identity seeds the accumulator for a commutative
// operator (+, *) so a single argument passes through unchanged; - and /
// have no such identity and instead apply unary to a lone argument
// (negation, reciprocal), matching CLIPS's unary (- x)/(/ x) forms.
func arithFn(name string, op func(acc, d *apd.Decimal), identity *apd.Decimal, unary func(acc *apd.Decimal)) *FunctionDefinition {
	return &FunctionDefinition{
		Module: SystemModule, Name: name, ResultType: ast.KindFloat,
		Constraints:   Constraint{MinArity: 1, MaxArity: -1, Types: [][]ast.ValueKind{numericTypes}},
		Deterministic: true,
		Handler: func(args []rete.Value) (rete.Value, error) {
			var acc apd.Decimal
			switch {
			case identity != nil:
				acc.Set(identity)
				for _, a := range args {
					op(&acc, numericOf(a))
				}
			case len(args) == 1:
				acc.Set(numericOf(args[0]))
				if unary != nil {
					unary(&acc)
				}
			default:
				acc.Set(numericOf(args[0]))
				for _, a := range args[1:] {
					op(&acc, numericOf(a))
				}
			}
			return rete.Value{Kind: ast.KindFloat, Dec: &acc}, nil
		},
	}
}

func cmpFn(name string, accept func(cmp int) bool) *FunctionDefinition {
	return &FunctionDefinition{
		Module: SystemModule, Name: name, ResultType: ast.KindSymbol,
		Constraints:   Constraint{MinArity: 2, MaxArity: -1, Types: [][]ast.ValueKind{numericTypes}},
		Deterministic: true,
		Handler: func(args []rete.Value) (rete.Value, error) {
			for i := 1; i < len(args); i++ {
				c, ok := rete.Compare(args[i-1], args[i])
				if !ok {
					return rete.Value{}, errors.Newf(errors.FunctionArityOrType, token.NoPos, "%s: non-numeric argument", name)
				}
				if !accept(c) {
					return boolValue(false), nil
				}
			}
			return boolValue(true), nil
		},
	}
}
