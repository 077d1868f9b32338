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

package scope_test

import (
	"testing"

	"github.com/go-quicktest/qt"

	"clips.dev/go/clips/ast"
	"clips.dev/go/clips/errors"
	"clips.dev/go/clips/scope"
)

func mustRegister(t *testing.T, r *scope.Registry, def ast.DefModule) *scope.Scope {
	t.Helper()
	s, err := r.RegisterScope(def)
	qt.Assert(t, qt.IsNil(err))
	return s
}

// TestAddDefinitionRejectsSameKindNameCollision exercises invariant I1: a
// scope may not declare two same-kind definitions under one name; this
// test covers a collision with another local declaration.
func TestAddDefinitionRejectsSameKindNameCollision(t *testing.T) {
	r := scope.NewRegistry()
	s := mustRegister(t, r, ast.DefModule{Name: "MAIN"})

	_, err := s.AddDefinition(ast.KindTemplate, "block", ast.DefTemplate{Name: "block"})
	qt.Assert(t, qt.IsNil(err))

	_, err = s.AddDefinition(ast.KindTemplate, "block", ast.DefTemplate{Name: "block"})
	qt.Assert(t, qt.IsTrue(errors.Is(err, errors.TemplateRedefined)))
}

// TestAllPromiseImportsFutureDefinitions exercises invariant I3: a scope
// importing ?ALL of a kind from another scope sees a definition added to
// that scope *after* the import was registered, not just definitions that
// existed at import time.
func TestAllPromiseImportsFutureDefinitions(t *testing.T) {
	r := scope.NewRegistry()
	src := mustRegister(t, r, ast.DefModule{Name: "LIB", Exports: []ast.ScopeExport{{Kind: ast.KindTemplate, All: true}}})
	dst := mustRegister(t, r, ast.DefModule{
		Name:    "APP",
		Imports: []ast.ScopeImport{{Source: "LIB", Kind: ast.KindTemplate, Name: ast.PromiseAll}},
	})

	_, ok := dst.Resolve(ast.KindTemplate, "widget")
	qt.Assert(t, qt.IsFalse(ok))

	_, err := src.AddDefinition(ast.KindTemplate, "widget", ast.DefTemplate{Name: "widget"})
	qt.Assert(t, qt.IsNil(err))

	d, ok := dst.Resolve(ast.KindTemplate, "widget")
	qt.Assert(t, qt.IsTrue(ok))
	qt.Assert(t, qt.Equals(d.Module, "LIB"))
}

// TestAllPromiseConflictAtSubscriberIsFatal exercises invariant I4: a
// definition propagated to a ?ALL subscriber that collides with something
// already local to the subscriber (and isn't identical) fails the add,
// exactly like a direct import conflict would.
func TestAllPromiseConflictAtSubscriberIsFatal(t *testing.T) {
	r := scope.NewRegistry()
	src := mustRegister(t, r, ast.DefModule{Name: "LIB", Exports: []ast.ScopeExport{{Kind: ast.KindTemplate, All: true}}})
	dst := mustRegister(t, r, ast.DefModule{
		Name:    "APP",
		Imports: []ast.ScopeImport{{Source: "LIB", Kind: ast.KindTemplate, Name: ast.PromiseAll}},
	})

	_, err := dst.AddDefinition(ast.KindTemplate, "widget", ast.DefTemplate{Name: "widget-local"})
	qt.Assert(t, qt.IsNil(err))

	_, err = src.AddDefinition(ast.KindTemplate, "widget", ast.DefTemplate{Name: "widget-lib"})
	qt.Assert(t, qt.IsTrue(errors.Is(err, errors.ScopeDefinitionConflict)))
}

// TestNonePromiseErasesPriorImportsFromThatModule exercises I2: a ?NONE
// import clause erases imports of that kind already queued from that
// source, processed left to right.
func TestNonePromiseErasesPriorImportsFromThatModule(t *testing.T) {
	r := scope.NewRegistry()
	mustRegister(t, r, ast.DefModule{Name: "LIB", Exports: []ast.ScopeExport{{Kind: ast.KindTemplate, All: true}}})
	src2 := mustRegister(t, r, ast.DefModule{Name: "LIB2", Exports: []ast.ScopeExport{{Kind: ast.KindTemplate, All: true}}})
	_, err := src2.AddDefinition(ast.KindTemplate, "widget", ast.DefTemplate{Name: "widget"})
	qt.Assert(t, qt.IsNil(err))

	dst, err := r.RegisterScope(ast.DefModule{
		Name: "APP",
		Imports: []ast.ScopeImport{
			{Source: "LIB", Kind: ast.KindTemplate, Name: ast.PromiseAll},
			{Source: "LIB", Kind: ast.KindTemplate, Name: ast.PromiseNone},
			{Source: "LIB2", Kind: ast.KindTemplate, Name: ast.PromiseAll},
		},
	})
	qt.Assert(t, qt.IsNil(err))

	d, ok := dst.Resolve(ast.KindTemplate, "widget")
	qt.Assert(t, qt.IsTrue(ok))
	qt.Assert(t, qt.Equals(d.Module, "LIB2"))
}

// TestRegisterScopeRollsBackOnUnknownImportSource confirms a failed
// RegisterScope call (importing ?ALL from one real module and a second,
// nonexistent one) installs no scope and leaves the real module still
// accepting new definitions.
func TestRegisterScopeRollsBackOnUnknownImportSource(t *testing.T) {
	r := scope.NewRegistry()
	src := mustRegister(t, r, ast.DefModule{Name: "LIB", Exports: []ast.ScopeExport{{Kind: ast.KindTemplate, All: true}}})

	_, err := r.RegisterScope(ast.DefModule{
		Name: "APP",
		Imports: []ast.ScopeImport{
			{Source: "LIB", Kind: ast.KindTemplate, Name: ast.PromiseAll},
			{Source: "GHOST", Kind: ast.KindTemplate, Name: ast.PromiseAll},
		},
	})
	qt.Assert(t, qt.IsTrue(errors.Is(err, errors.ScopeDefinitionNotFound)))

	_, ok := r.Scope("APP")
	qt.Assert(t, qt.IsFalse(ok))

	_, err = src.AddDefinition(ast.KindTemplate, "widget", ast.DefTemplate{Name: "widget"})
	qt.Assert(t, qt.IsNil(err), qt.Commentf("LIB must not still be holding a subscription for the scope that failed to register"))
}

// TestRegisterScopeRejectsDuplicateModuleName and
// TestQualifiedResolveRequiresExport cover the remaining direct-import
// surface: re-registering a module name is rejected outright, and a
// qualified Module::name reference is only honored if the named module
// actually exports that definition.
func TestRegisterScopeRejectsDuplicateModuleName(t *testing.T) {
	r := scope.NewRegistry()
	mustRegister(t, r, ast.DefModule{Name: "MAIN"})
	_, err := r.RegisterScope(ast.DefModule{Name: "MAIN"})
	qt.Assert(t, qt.IsTrue(errors.Is(err, errors.ScopeDefinitionConflict)))
}

func TestQualifiedResolveRequiresExport(t *testing.T) {
	r := scope.NewRegistry()
	src := mustRegister(t, r, ast.DefModule{Name: "LIB"})
	_, err := src.AddDefinition(ast.KindTemplate, "widget", ast.DefTemplate{Name: "widget"})
	qt.Assert(t, qt.IsNil(err))

	dst := mustRegister(t, r, ast.DefModule{Name: "APP"})
	_, err = r.Resolve(dst, ast.KindTemplate, "LIB::widget")
	qt.Assert(t, qt.IsTrue(errors.Is(err, errors.ScopeDefinitionNotFound)), qt.Commentf("LIB never declared an export promise, so its default is ?NONE"))
}
