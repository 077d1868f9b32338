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

// Package ast defines the construct AST the parser (out of scope for this
// module) is expected to hand to [clips.dev/go/internal/core/compile]. The
// concrete grammar and lexer that produce these values live outside this
// repository; this package only fixes the shape of the interface.
package ast

import "clips.dev/go/clips/token"

// SlotKind distinguishes single- from multifield slots in a deftemplate.
type SlotKind int

const (
	SingleSlot SlotKind = iota
	MultiSlot
)

// Slot is one field of a DefTemplate.
type Slot struct {
	Name        string
	Kind        SlotKind
	Constraints []Constraint
}

// ConstraintOp enumerates the intra-pattern constraint operators alpha
// testing supports (spec §4.3).
type ConstraintOp int

const (
	OpEq ConstraintOp = iota
	OpNeq
	OpLt
	OpLte
	OpGt
	OpGte
	OpTypeIs
	OpTestCall
)

// Constraint is one literal/type/test term of a slot's constraint
// expression. Term may combine with siblings via And/Or (spec §4.3).
type Constraint struct {
	Op      ConstraintOp
	Literal Value       // for OpEq/OpNeq/Op<cmp>
	Type    ValueKind   // for OpTypeIs
	Call    *FuncCall   // for OpTestCall
	And     []Constraint
	Or      []Constraint
}

// DefTemplate declares a named, slot-shaped fact schema.
type DefTemplate struct {
	Pos    token.Position
	Module string
	Name   string
	Slots  []Slot
}

// DefFacts declares a batch of facts asserted on reset.
type DefFacts struct {
	Pos     token.Position
	Module  string
	Name    string
	Comment string
	Facts   []FactLiteral
}

// FactLiteral is either an ordered tuple or a template-shaped fact literal.
type FactLiteral struct {
	Template string // "" for an ordered fact
	Ordered  []Value
	Slots    map[string]Value
}

// Declarations carries a rule's (declare ...) block.
type Declarations struct {
	Salience   int
	HasSalience bool
	AutoFocus  bool
}

// DefRule declares a production rule.
type DefRule struct {
	Pos          token.Position
	Module       string
	Name         string
	Comment      string
	Declarations Declarations
	LHS          []CE
	RHS          []Action
}

// DefFunction declares a user function by its parameter names and body
// actions (spec §6).
type DefFunction struct {
	Pos    token.Position
	Module string
	Name   string
	Params []string
	Body   []Action
}

// DefGlobal declares a ?*name* bound to an initializer expression.
type DefGlobal struct {
	Pos         token.Position
	Module      string
	Name        string
	Initializer Expr
}

// ImportKind distinguishes the def-kind an import/export promise governs.
type ImportKind int

const (
	KindTemplate ImportKind = iota
	KindFunction
	KindGlobal
)

func (k ImportKind) String() string {
	switch k {
	case KindTemplate:
		return "template"
	case KindFunction:
		return "function"
	case KindGlobal:
		return "global"
	default:
		return "unknown"
	}
}

// PromiseAll and PromiseNone are the ?ALL / ?NONE sentinel names used in
// ScopeImport.Name / ScopeExport.Names.
const (
	PromiseAll  = "?ALL"
	PromiseNone = "?NONE"
)

// ScopeImport is one (source-module, kind, name|?ALL|?NONE) import triple.
type ScopeImport struct {
	Source string
	Kind   ImportKind
	Name   string // PromiseAll, PromiseNone, or an explicit name
}

// ScopeExport is one kind's export promise: either PromiseAll, PromiseNone,
// or an explicit name set.
type ScopeExport struct {
	Kind  ImportKind
	All   bool
	None  bool
	Names []string // explicit names when !All && !None
}

// DefModule declares a named scope and its import/export promises.
type DefModule struct {
	Pos     token.Position
	Name    string
	Imports []ScopeImport
	Exports []ScopeExport
}

// CE is a left-hand-side conditional element.
type CE interface{ ceNode() }

// OrderedPatternCE matches an ordered (unnamed) fact.
type OrderedPatternCE struct {
	Pos    token.Position
	Fields []FieldConstraint
}

// TemplatePatternCE matches a template-shaped fact.
type TemplatePatternCE struct {
	Pos      token.Position
	Template string
	Slots    []SlotConstraint
}

// FieldConstraint binds/constrains one positional field of an ordered
// pattern.
type FieldConstraint struct {
	Var         string // "" if unbound
	Constraints []Constraint
}

// SlotConstraint binds/constrains one named slot of a template pattern.
type SlotConstraint struct {
	Slot        string
	Var         string
	Constraints []Constraint
}

// AssignedPatternCE binds a whole fact to a variable: (?f <- (t ...)).
type AssignedPatternCE struct {
	Pos token.Position
	Var string
	CE  CE
}

// AndCE is an explicit (and ...) conjunction of conditional elements.
type AndCE struct {
	Pos token.Position
	CEs []CE
}

// OrCE is a (or ...) disjunction, expanded at compile time into one join
// chain per branch (spec §4.4 sharing still applies per branch).
type OrCE struct {
	Pos token.Position
	CEs []CE
}

// NotCE negates a single conditional element (spec §4.5 NOT node) or, when
// Inner is an AndCE with more than one member, a negated conjunction (NCC).
type NotCE struct {
	Pos   token.Position
	Inner CE
}

// TestCE inserts an arbitrary predicate test (spec §4.6).
type TestCE struct {
	Pos  token.Position
	Expr Expr
}

func (OrderedPatternCE) ceNode()  {}
func (TemplatePatternCE) ceNode() {}
func (AssignedPatternCE) ceNode() {}
func (AndCE) ceNode()             {}
func (OrCE) ceNode()              {}
func (NotCE) ceNode()             {}
func (TestCE) ceNode()            {}

// Action is one RHS statement; out of scope for this module beyond the
// FuncCall shape needed to invoke the function-library collaborator.
type Action interface{ actionNode() }

// FuncCall is a call to a builtin or user DefFunction.
type FuncCall struct {
	Pos  token.Position
	Name string
	Args []Expr
}

func (FuncCall) actionNode() {}

// Expr is an RHS/test expression: a literal, a bound variable reference, or
// a FuncCall.
type Expr interface{ exprNode() }

func (Value) exprNode()    {}
func (VarRef) exprNode()   {}
func (FuncCall) exprNode() {}

// VarRef references a pattern-bound variable (?x) or a global (?*x*).
type VarRef struct {
	Name   string
	Global bool
}

// ValueKind is the runtime type tag of a Value atom (spec §3).
type ValueKind int

const (
	KindSymbol ValueKind = iota
	KindString
	KindInteger
	KindFloat
	KindMultifield
)

// Value is one typed atom.
type Value struct {
	Kind       ValueKind
	Symbol     string
	Str        string
	Integer    int64
	Float      string // decimal literal text; parsed with apd on use
	Multifield []Value
}
