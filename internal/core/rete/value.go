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

// Package rete implements the Rete discrimination network: the alpha
// network (intra-pattern filtering), the beta network (inter-pattern
// joins with variable binding propagation), negation (NOT/NCC), test
// nodes, and terminal production activation.
package rete

import (
	"fmt"

	"clips.dev/go/clips/ast"

	"github.com/cockroachdb/apd/v3"
)

// Value is a typed atom as seen by the network, after a collaborator has
// elaborated an ast.Value's decimal literal text into an exact
// [apd.Decimal]. Using apd rather than float64 keeps integer/float
// comparisons faithful to CLIPS's exact-decimal arithmetic rather than
// picking up binary floating-point drift (see SPEC_FULL.md §B.6).
type Value struct {
	Kind   ast.ValueKind
	Symbol string
	Str    string
	Int    int64
	Dec    *apd.Decimal
	Multi  []Value
}

// Symbol, String, Integer and Float build atoms of the corresponding kind.
func Symbol(s string) Value { return Value{Kind: ast.KindSymbol, Symbol: s} }
func String(s string) Value { return Value{Kind: ast.KindString, Str: s} }
func Integer(i int64) Value { return Value{Kind: ast.KindInteger, Int: i} }

// Float builds a float atom from a decimal literal, e.g. "3.14".
func Float(literal string) (Value, error) {
	d, _, err := apd.NewFromString(literal)
	if err != nil {
		return Value{}, fmt.Errorf("invalid float literal %q: %w", literal, err)
	}
	return Value{Kind: ast.KindFloat, Dec: d}, nil
}

// FromAST elaborates a parsed ast.Value into a runtime Value.
func FromAST(v ast.Value) (Value, error) {
	switch v.Kind {
	case ast.KindSymbol:
		return Symbol(v.Symbol), nil
	case ast.KindString:
		return String(v.Str), nil
	case ast.KindInteger:
		return Integer(v.Integer), nil
	case ast.KindFloat:
		return Float(v.Float)
	case ast.KindMultifield:
		out := make([]Value, len(v.Multifield))
		for i, e := range v.Multifield {
			rv, err := FromAST(e)
			if err != nil {
				return Value{}, err
			}
			out[i] = rv
		}
		return Value{Kind: ast.KindMultifield, Multi: out}, nil
	default:
		return Value{}, fmt.Errorf("unknown value kind %v", v.Kind)
	}
}

// Equal reports whether a and b are the same atom: same kind and same
// content.
func Equal(a, b Value) bool {
	if a.Kind != b.Kind {
		return false
	}
	switch a.Kind {
	case ast.KindSymbol:
		return a.Symbol == b.Symbol
	case ast.KindString:
		return a.Str == b.Str
	case ast.KindInteger:
		return a.Int == b.Int
	case ast.KindFloat:
		return a.Dec.Cmp(b.Dec) == 0
	case ast.KindMultifield:
		if len(a.Multi) != len(b.Multi) {
			return false
		}
		for i := range a.Multi {
			if !Equal(a.Multi[i], b.Multi[i]) {
				return false
			}
		}
		return true
	default:
		return false
	}
}

// numeric reports the numeric value of a, for ordering comparisons.
func numeric(a Value) (*apd.Decimal, bool) {
	switch a.Kind {
	case ast.KindInteger:
		return apd.New(a.Int, 0), true
	case ast.KindFloat:
		return a.Dec, true
	default:
		return nil, false
	}
}

// Compare orders two numeric atoms, returning -1, 0 or 1. ok is false if
// either atom is not numeric.
func Compare(a, b Value) (cmp int, ok bool) {
	da, ok1 := numeric(a)
	db, ok2 := numeric(b)
	if !ok1 || !ok2 {
		return 0, false
	}
	return da.Cmp(db), true
}

func (v Value) String() string {
	switch v.Kind {
	case ast.KindSymbol:
		return v.Symbol
	case ast.KindString:
		return fmt.Sprintf("%q", v.Str)
	case ast.KindInteger:
		return fmt.Sprintf("%d", v.Int)
	case ast.KindFloat:
		return v.Dec.String()
	case ast.KindMultifield:
		return fmt.Sprintf("%v", v.Multi)
	default:
		return "<invalid>"
	}
}
