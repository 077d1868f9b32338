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

package rete

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"clips.dev/go/clips/ast"
)

// TestFromASTElaboratesEveryNonFloatKind is a table-driven structural
// comparison, in the style of the teacher's adt validate_test.go: a slice
// of (input, want) pairs diffed with cmp.Diff rather than hand-rolled
// field-by-field assertions. Float is left out of this table (Value.Dec,
// an *apd.Decimal, doesn't implement the Equal method cmp needs).
func TestFromASTElaboratesEveryNonFloatKind(t *testing.T) {
	tests := []struct {
		name string
		in   ast.Value
		want Value
	}{
		{
			name: "symbol",
			in:   ast.Value{Kind: ast.KindSymbol, Symbol: "red"},
			want: Value{Kind: ast.KindSymbol, Symbol: "red"},
		},
		{
			name: "string",
			in:   ast.Value{Kind: ast.KindString, Str: "hello"},
			want: Value{Kind: ast.KindString, Str: "hello"},
		},
		{
			name: "integer",
			in:   ast.Value{Kind: ast.KindInteger, Integer: 42},
			want: Value{Kind: ast.KindInteger, Int: 42},
		},
		{
			name: "multifield",
			in: ast.Value{Kind: ast.KindMultifield, Multifield: []ast.Value{
				{Kind: ast.KindSymbol, Symbol: "a"},
				{Kind: ast.KindInteger, Integer: 1},
			}},
			want: Value{Kind: ast.KindMultifield, Multi: []Value{
				{Kind: ast.KindSymbol, Symbol: "a"},
				{Kind: ast.KindInteger, Int: 1},
			}},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, err := FromAST(tc.in)
			if err != nil {
				t.Fatalf("FromAST: %v", err)
			}
			if diff := cmp.Diff(tc.want, got); diff != "" {
				t.Errorf("FromAST(%v) mismatch (-want +got):\n%s", tc.in, diff)
			}
		})
	}
}
