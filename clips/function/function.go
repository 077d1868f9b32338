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

// Package function implements the function-library collaborator interface
// spec.md §6 names: a FunctionDefinition the engine can check a call site
// against and invoke, without ever needing to know how the call is
// actually carried out. Two concrete hosts satisfy it (SPEC_FULL.md §B.6):
// a native Go builtin set (builtin.go) and an optional WASM extern host
// (wasm.go) grounded on cue/interpreter/wasm.
package function

import (
	"clips.dev/go/clips/ast"
	"clips.dev/go/clips/errors"
	"clips.dev/go/clips/token"
	"clips.dev/go/internal/core/rete"
)

// SystemModule is the module every built-in function is registered under
// (spec §6: `FunctionDefinition{module = "?SYSTEM?", ...}`).
const SystemModule = "?SYSTEM?"

// Handler evaluates one call's already-elaborated argument atoms to a
// result atom. The engine never inspects a Handler's implementation, only
// a FunctionDefinition's Constraints and Deterministic flag (spec §6).
type Handler func(args []rete.Value) (rete.Value, error)

// Constraint is the argument-shape predicate a call site is checked
// against before its Handler ever runs: a minimum/maximum arity and a
// per-position set of acceptable kinds (spec §6's "constraints is a list
// of argument predicates"). MaxArity < 0 means unbounded. A Types entry
// shorter than the actual argument count has its last element reused for
// every remaining position, so a single trailing entry can describe a
// variadic function's repeated argument shape; a nil Types is
// unconstrained.
type Constraint struct {
	MinArity int
	MaxArity int
	Types    [][]ast.ValueKind
}

// Check reports a FunctionArityOrType error if args does not satisfy c.
func (c Constraint) Check(args []rete.Value) error {
	if len(args) < c.MinArity || (c.MaxArity >= 0 && len(args) > c.MaxArity) {
		return errors.Newf(errors.FunctionArityOrType, token.NoPos,
			"wrong number of arguments: got %d, want between %d and %d", len(args), c.MinArity, c.MaxArity)
	}
	for i, a := range args {
		allowed := c.typesAt(i)
		if len(allowed) == 0 {
			continue
		}
		ok := false
		for _, k := range allowed {
			if k == a.Kind {
				ok = true
				break
			}
		}
		if !ok {
			return errors.Newf(errors.FunctionArityOrType, token.NoPos, "argument %d: unexpected type", i+1)
		}
	}
	return nil
}

func (c Constraint) typesAt(i int) []ast.ValueKind {
	switch {
	case i < len(c.Types):
		return c.Types[i]
	case len(c.Types) > 0:
		return c.Types[len(c.Types)-1]
	default:
		return nil
	}
}

// FunctionDefinition is the collaborator record spec §6 names.
type FunctionDefinition struct {
	Module     string
	Name       string
	ResultType ast.ValueKind
	Handler    Handler
	Constraints Constraint
	// Deterministic marks a pure, side-effect-free function as eligible
	// for alpha-test hoisting (spec §6's "determinism flag"); WASM-hosted
	// functions never set this (SPEC_FULL.md §B.6).
	Deterministic bool
}

// Host resolves a (module, name) call to its definition. The engine and
// compiler depend only on this interface, never on a concrete host (spec
// §6: "the engine is not required to know a handler's implementation").
type Host interface {
	Lookup(module, name string) (*FunctionDefinition, bool)
}

// Registry is a Host backed by a plain map, shared by every concrete host
// in this package so native and WASM-backed definitions resolve through
// one lookup.
type Registry struct {
	defs map[string]*FunctionDefinition
}

// NewRegistry returns an empty Registry.
func NewRegistry() *Registry {
	return &Registry{defs: map[string]*FunctionDefinition{}}
}

func regKey(module, name string) string { return module + "\x00" + name }

// Register adds def, failing if module/name is already registered
// (definitions are added once, per spec's scope Lifecycles: "may only be
// added ... never silently mutated").
func (r *Registry) Register(def *FunctionDefinition) error {
	k := regKey(def.Module, def.Name)
	if _, exists := r.defs[k]; exists {
		return errors.Newf(errors.ScopeDefinitionConflict, token.NoPos,
			"function %s::%s already registered", def.Module, def.Name)
	}
	r.defs[k] = def
	return nil
}

// Lookup implements Host.
func (r *Registry) Lookup(module, name string) (*FunctionDefinition, bool) {
	d, ok := r.defs[regKey(module, name)]
	return d, ok
}
