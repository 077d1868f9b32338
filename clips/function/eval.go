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
)

// Resolver looks up a pattern-bound variable's current value by name,
// closed over one token of the beta network. It is a type alias (not a
// defined type) so a Resolver value is interchangeable with
// compile.FuncEval's own resolve parameter without an adapter closure.
type Resolver = func(name string) (rete.Value, bool)

// Evaluator reduces a parsed expression tree to a single atom, resolving
// ast.VarRef through a Resolver and ast.FuncCall through a Host. It is the
// engine's one implementation of the function-library collaborator
// boundary spec §6 names; compile.Compiler is handed Evaluator.Predicate
// as its FuncEval.
type Evaluator struct {
	Host Host
	// Module is the calling rule's home module: an unqualified call is
	// resolved there first, falling back to SystemModule.
	Module string
}

// NewEvaluator returns an Evaluator resolving calls against host on behalf
// of a rule declared in module.
func NewEvaluator(host Host, module string) *Evaluator {
	return &Evaluator{Host: host, Module: module}
}

// Eval evaluates expr, resolving pattern-bound variables via resolve.
func (e *Evaluator) Eval(expr ast.Expr, resolve Resolver) (rete.Value, error) {
	switch v := expr.(type) {
	case ast.Value:
		return rete.FromAST(v)
	case ast.VarRef:
		val, ok := resolve(v.Name)
		if !ok {
			return rete.Value{}, errors.Newf(errors.FunctionArityOrType, token.NoPos, "unbound variable ?%s", v.Name)
		}
		return val, nil
	case ast.FuncCall:
		return e.call(v, resolve)
	default:
		return rete.Value{}, errors.Newf(errors.Other, token.NoPos, "function: unsupported expression %T", expr)
	}
}

func (e *Evaluator) call(call ast.FuncCall, resolve Resolver) (rete.Value, error) {
	args := make([]rete.Value, len(call.Args))
	for i, a := range call.Args {
		v, err := e.Eval(a, resolve)
		if err != nil {
			return rete.Value{}, err
		}
		args[i] = v
	}
	def, ok := e.Host.Lookup(e.Module, call.Name)
	if !ok {
		def, ok = e.Host.Lookup(SystemModule, call.Name)
	}
	if !ok {
		return rete.Value{}, errors.Newf(errors.FunctionArityOrType, call.Pos, "undefined function %s", call.Name)
	}
	if err := def.Constraints.Check(args); err != nil {
		return rete.Value{}, err
	}
	return def.Handler(args)
}

// Predicate adapts Eval to the boolean-returning shape a (test ...) CE and
// a predicate join test both need: a CLIPS expression is false only when
// it evaluates to the symbol FALSE, true for every other result (including
// TRUE and any non-boolean atom), matching real CLIPS's convention.
func (e *Evaluator) Predicate(expr ast.Expr, resolve Resolver) (bool, error) {
	v, err := e.Eval(expr, resolve)
	if err != nil {
		return false, err
	}
	return Truthy(v), nil
}

// Truthy reports whether v counts as true in a boolean context.
func Truthy(v rete.Value) bool {
	return !(v.Kind == ast.KindSymbol && v.Symbol == "FALSE")
}
