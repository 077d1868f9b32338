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

import "clips.dev/go/clips/ast"

// BindingAddress is the classical Rete (levels-up, field) form: instead of
// storing a per-token variable map, a test names how many ancestors to
// walk up from a token and which field of that ancestor's WME to read
// (spec §3 "Variable binding").
type BindingAddress struct {
	LevelsUp int
	Field    FieldRef
}

// Resolve reads the bound value addressed by a, starting from token t.
func (net *Network) Resolve(t TokenID, a BindingAddress) (Value, bool) {
	anc := net.Nth(t, a.LevelsUp)
	tok := net.tokens[anc]
	if tok.Wme == InvalidWmeID {
		return Value{}, false
	}
	w := net.wmes[tok.Wme]
	return w.Fact.Field(a.Field)
}

// JoinTestOp is the comparison operator a join test applies between a
// token-bound value and a candidate WME's field (spec §4.4).
type JoinTestOp int

const (
	TestEq JoinTestOp = iota
	TestNeq
	TestLt
	TestLte
	TestGt
	TestGte
)

// JoinTest compares one field of the candidate WME against either a value
// already bound earlier in the token (Left) or a literal (Literal).
type JoinTest struct {
	Op       JoinTestOp
	Left     BindingAddress
	HasLeft  bool
	Literal  Value
	Field    FieldRef // field on the candidate (right-side) WME
	Predicate func(net *Network, t TokenID, w *WME) bool // for OpTestCall; nil otherwise
}

// evaluate runs the test against left-token t and candidate WME w.
func (jt JoinTest) evaluate(net *Network, t TokenID, w *WME) bool {
	if jt.Predicate != nil {
		return jt.Predicate(net, t, w)
	}
	rv, ok := w.Fact.Field(jt.Field)
	if !ok {
		return false
	}
	var lv Value
	if jt.HasLeft {
		v, ok := net.Resolve(t, jt.Left)
		if !ok {
			return false
		}
		lv = v
	} else {
		lv = jt.Literal
	}
	switch jt.Op {
	case TestEq:
		return Equal(lv, rv)
	case TestNeq:
		return !Equal(lv, rv)
	case TestLt, TestLte, TestGt, TestGte:
		c, ok := Compare(lv, rv)
		if !ok {
			return false
		}
		switch jt.Op {
		case TestLt:
			return c < 0
		case TestLte:
			return c <= 0
		case TestGt:
			return c > 0
		case TestGte:
			return c >= 0
		}
	}
	return false
}

// passesAll reports whether every test in tests accepts (t, w).
func passesAll(net *Network, tests []JoinTest, t TokenID, w *WME) bool {
	for _, jt := range tests {
		if !jt.evaluate(net, t, w) {
			return false
		}
	}
	return true
}

// opFromAST converts an ast.ConstraintOp to a JoinTestOp, for the
// compiler (ast's OpTypeIs/OpTestCall have no JoinTestOp equivalent; they
// are handled separately at the alpha level or via Predicate).
func opFromAST(op ast.ConstraintOp) (JoinTestOp, bool) {
	switch op {
	case ast.OpEq:
		return TestEq, true
	case ast.OpNeq:
		return TestNeq, true
	case ast.OpLt:
		return TestLt, true
	case ast.OpLte:
		return TestLte, true
	case ast.OpGt:
		return TestGt, true
	case ast.OpGte:
		return TestGte, true
	default:
		return 0, false
	}
}
