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

package scope

import (
	"strings"

	"clips.dev/go/clips/ast"
	"clips.dev/go/clips/errors"
	"clips.dev/go/clips/token"

	"github.com/google/uuid"
	"golang.org/x/mod/module"
)

// Registry is the engine-context value hosting every registered Scope. It
// replaces the global ModulesManager singleton the derivation of this
// spec used (design notes §9): callers thread a *Registry explicitly
// instead of reaching for process-wide state.
type Registry struct {
	scopes  map[string]*Scope
	current string
}

// NewRegistry returns an empty Registry with no current scope.
func NewRegistry() *Registry {
	return &Registry{scopes: map[string]*Scope{}}
}

// Scope returns the named scope, if registered.
func (r *Registry) Scope(name string) (*Scope, bool) {
	s, ok := r.scopes[name]
	return s, ok
}

// CurrentScope returns the scope last selected by SwitchScope, or false if
// none has been selected yet.
func (r *Registry) CurrentScope() (*Scope, bool) {
	if r.current == "" {
		return nil, false
	}
	return r.Scope(r.current)
}

// SwitchScope changes the current scope. It fails if name is not
// registered.
func (r *Registry) SwitchScope(name string) error {
	if _, ok := r.scopes[name]; !ok {
		return errors.Newf(errors.UnknownModule, token.NoPos, "no such module %q", name)
	}
	r.current = name
	return nil
}

// validModuleName reports whether name is an acceptable module
// identifier, using the same path-syntax checker the teacher corpus uses
// to validate module paths, relaxed to CLIPS's bare-identifier module
// names (SPEC_FULL.md §B.8).
func validModuleName(name string) bool {
	if name == "" {
		return false
	}
	// module.CheckPath requires a dotted host component; CLIPS module
	// names are bare identifiers, so we check the simpler per-path-element
	// rule it applies (module.CheckPathWithoutVersion would still reject
	// bare names), falling back to a direct character class check for
	// those that don't look like dotted paths.
	if strings.Contains(name, "/") || strings.Contains(name, ".") {
		return module.CheckPath(name) == nil
	}
	for _, r := range name {
		if !(r == '-' || r == '_' || (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9')) {
			return false
		}
	}
	return true
}

// RegisterScope constructs a new Scope per spec §4.1: validate imports,
// subscribe to ?ALL sources, then merge — all-or-nothing. On any failure,
// every subscription made in phase 2 is undone and no partial scope is
// installed.
func (r *Registry) RegisterScope(def ast.DefModule) (*Scope, error) {
	if !validModuleName(def.Name) {
		return nil, errors.Newf(errors.RuleCompilationError, def.Pos, "invalid module name %q", def.Name)
	}
	if _, exists := r.scopes[def.Name]; exists {
		return nil, errors.Newf(errors.ScopeDefinitionConflict, def.Pos, "module %q already registered", def.Name)
	}

	s := newScope(def.Name)
	for _, e := range def.Exports {
		s.exports[e.Kind] = NewExport(e)
	}
	s.importSpecs = append([]ast.ScopeImport(nil), def.Imports...)

	pending := newKindedMap()
	var subs []pendingSubscription

	// Phase 1: validate each import and collect pending definitions,
	// honoring ?NONE's "erase prior imports from that module for that
	// kind" (I2) as imports are processed left to right.
	for _, imp := range def.Imports {
		src, ok := r.scopes[imp.Source]
		if !ok {
			r.rollback(subs)
			return nil, errors.Newf(errors.ScopeDefinitionNotFound, def.Pos,
				"module %q imports from unknown module %q", def.Name, imp.Source)
		}

		switch imp.Name {
		case ast.PromiseNone:
			for name, d := range pending[imp.Kind] {
				if d.Module == imp.Source {
					delete(pending[imp.Kind], name)
				}
			}
			continue

		case ast.PromiseAll:
			for name, d := range src.Exportable(imp.Kind) {
				if existing, ok := pending.get(imp.Kind, name); ok && !sameIdentity(existing, d) {
					r.rollback(subs)
					return nil, errors.Newf(errors.ScopeDefinitionConflict, def.Pos,
						"module %q: %s %q imported from both %s and %s with different definitions",
						def.Name, imp.Kind, name, existing.Module, d.Module)
				}
				pending.set(imp.Kind, name, d)
			}
			// Phase 2: subscribe for late-bound future definitions (I3).
			id := uuid.New()
			src.subscribers = append(src.subscribers, subscriber{id: id, target: s, kind: imp.Kind})
			subs = append(subs, pendingSubscription{id: id, source: src})

		default:
			exportable := src.Exportable(imp.Kind)
			d, ok := exportable[imp.Name]
			if !ok {
				r.rollback(subs)
				return nil, errors.Newf(errors.ScopeDefinitionNotFound, def.Pos,
					"module %q: %s %q not exported by module %q", def.Name, imp.Kind, imp.Name, imp.Source)
			}
			if existing, ok := pending.get(imp.Kind, imp.Name); ok && !sameIdentity(existing, d) {
				r.rollback(subs)
				return nil, errors.Newf(errors.ScopeDefinitionConflict, def.Pos,
					"module %q: %s %q imported from both %s and %s with different definitions",
					def.Name, imp.Kind, imp.Name, existing.Module, d.Module)
			}
			pending.set(imp.Kind, imp.Name, d)
		}
	}

	// Phase 3: merge pending into the scope's imported table.
	for kind, names := range pending {
		for name, d := range names {
			s.imported.set(kind, name, d)
		}
	}

	r.scopes[def.Name] = s
	return s, nil
}

// pendingSubscription records a subscription placed on a source scope
// during an in-progress RegisterScope call, so it can be undone if the
// call ultimately fails.
type pendingSubscription struct {
	id     uuid.UUID
	source *Scope
}

// rollback undoes subscriptions recorded during a failed RegisterScope
// call.
func (r *Registry) rollback(subs []pendingSubscription) {
	for _, undo := range subs {
		src := undo.source
		kept := src.subscribers[:0]
		for _, existing := range src.subscribers {
			if existing.id != undo.id {
				kept = append(kept, existing)
			}
		}
		src.subscribers = kept
	}
}

// Resolve looks up a possibly-qualified "Module::name" reference against
// the given scope (bare names resolve within it), enforcing that a
// qualified reference is actually exported by its owning module.
func (r *Registry) Resolve(from *Scope, kind ast.ImportKind, qualifiedOrBare string) (*Definition, error) {
	if mod, name, ok := strings.Cut(qualifiedOrBare, "::"); ok {
		src, exists := r.Scope(mod)
		if !exists {
			return nil, errors.Newf(errors.UnknownModule, token.NoPos, "no such module %q", mod)
		}
		if d, ok := src.Exportable(kind)[name]; ok {
			return d, nil
		}
		return nil, errors.Newf(errors.ScopeDefinitionNotFound, token.NoPos,
			"%s %q not exported by module %q", kind, name, mod)
	}
	if d, ok := from.Resolve(kind, qualifiedOrBare); ok {
		return d, nil
	}
	return nil, errors.Newf(errors.ScopeDefinitionNotFound, token.NoPos,
		"%s %q not found in module %q", kind, qualifiedOrBare, from.Name)
}
