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

// Package scope implements the module/scope registry of spec §4.1: named
// namespaces hosting templates, functions and globals, wired together by
// import/export promises, late-bound via an explicit per-(module,kind)
// subscription list rather than the observer pattern the derivation this
// spec is drawn from uses (see design notes §9).
package scope

import (
	"clips.dev/go/clips/ast"
	"clips.dev/go/clips/errors"
	"clips.dev/go/clips/token"

	"github.com/google/uuid"
)

// kindedMap is a (kind, name) -> *Definition table, used for both a
// scope's local declarations and its merged import set.
type kindedMap map[ast.ImportKind]map[string]*Definition

func newKindedMap() kindedMap {
	return kindedMap{
		ast.KindTemplate: {},
		ast.KindFunction: {},
		ast.KindGlobal:   {},
	}
}

func (m kindedMap) get(kind ast.ImportKind, name string) (*Definition, bool) {
	d, ok := m[kind][name]
	return d, ok
}

func (m kindedMap) set(kind ast.ImportKind, name string, def *Definition) {
	m[kind][name] = def
}

// subscriber records that a scope imported ?ALL of some kind from this
// scope and must be notified of future additions of that kind.
type subscriber struct {
	id     uuid.UUID
	target *Scope
	kind   ast.ImportKind
}

// Scope is one named module: a registry of local and imported templates,
// functions and globals, plus the export promises governing what it offers
// to importers.
type Scope struct {
	Name string

	local    kindedMap
	imported kindedMap

	exports map[ast.ImportKind]Export

	// importSpecs records the import triples this scope was constructed
	// with. Nothing reads it back: RegisterScope rejects a second
	// registration under the same module name with ScopeDefinitionConflict,
	// even when the import set is identical.
	importSpecs []ast.ScopeImport

	// subscribers lists every scope that holds a ?ALL import from this
	// scope, keyed implicitly by subscriber.kind.
	subscribers []subscriber
}

func newScope(name string) *Scope {
	return &Scope{
		Name:     name,
		local:    newKindedMap(),
		imported: newKindedMap(),
		exports:  map[ast.ImportKind]Export{},
	}
}

// Exportable returns the set of this scope's definitions of kind that are
// currently exportable under its export promise — local declarations and
// imports alike, since a scope may re-export what it imports.
func (s *Scope) Exportable(kind ast.ImportKind) map[string]*Definition {
	ex, ok := s.exports[kind]
	if !ok {
		ex = defaultExport()
	}
	out := map[string]*Definition{}
	for name, def := range s.local[kind] {
		if ex.CanExport(name) {
			out[name] = def
		}
	}
	for name, def := range s.imported[kind] {
		if _, have := out[name]; !have && ex.CanExport(name) {
			out[name] = def
		}
	}
	return out
}

// resolveLocal looks up name in this scope's local-then-imported tables,
// without handling a qualified "Module::name" form (that's Registry's job).
func (s *Scope) resolveLocal(kind ast.ImportKind, name string) (*Definition, bool) {
	if d, ok := s.local.get(kind, name); ok {
		return d, true
	}
	return s.imported.get(kind, name)
}

// AddDefinition declares a new local construct in the scope (spec §4.1
// add_definition). It enforces I1 (no same-kind-and-name collision, local
// or imported) and then synchronously propagates the addition to every
// ?ALL subscriber (I3), applying the identical conflict/idempotence rule
// at each subscriber (I4).
func (s *Scope) AddDefinition(kind ast.ImportKind, name string, body interface{}) (*Definition, error) {
	if existing, ok := s.resolveLocal(kind, name); ok {
		if _, isLocal := s.local.get(kind, name); isLocal {
			return nil, errors.Newf(errors.TemplateRedefined, token.NoPos,
				"%s %q already declared in module %s", kind, name, s.Name)
		}
		return nil, errors.Newf(errors.ScopeDefinitionConflict, token.NoPos,
			"%s %q already imported into module %s from %s", kind, name, s.Name, existing.Module)
	}

	def := &Definition{Kind: kind, Module: s.Name, Name: name, Body: body}
	s.local.set(kind, name, def)

	var errs errors.List
	ex, ok := s.exports[kind]
	if !ok {
		ex = defaultExport()
	}
	if ex.CanExport(name) {
		for _, sub := range s.subscribers {
			if sub.kind != kind {
				continue
			}
			errs = errs.Append(sub.target.receiveImport(kind, name, def))
		}
	}
	return def, errs.Err()
}

// receiveImport applies an incoming ?ALL-propagated definition using the
// same conflict/idempotence rule as a direct import (I4): identical
// identity is a no-op, a differing identity for the same (kind, name) is
// fatal.
func (s *Scope) receiveImport(kind ast.ImportKind, name string, def *Definition) error {
	if existing, ok := s.imported.get(kind, name); ok {
		if sameIdentity(existing, def) {
			return nil
		}
		return errors.Newf(errors.ScopeDefinitionConflict, token.NoPos,
			"module %s: %s %q imported from both %s and %s with different definitions",
			s.Name, kind, name, existing.Module, def.Module)
	}
	if existing, ok := s.local.get(kind, name); ok {
		if sameIdentity(existing, def) {
			return nil
		}
		return errors.Newf(errors.ScopeDefinitionConflict, token.NoPos,
			"module %s: %s %q locally declared conflicts with import from %s",
			s.Name, kind, name, def.Module)
	}
	s.imported.set(kind, name, def)
	return nil
}

// Resolve looks up a bare name of the given kind in this scope (local
// declarations take precedence over imports, which cannot collide by I1
// anyway).
func (s *Scope) Resolve(kind ast.ImportKind, name string) (*Definition, bool) {
	return s.resolveLocal(kind, name)
}
