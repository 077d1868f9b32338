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

import "clips.dev/go/clips/ast"

// Definition is one named construct (template, function or global) hosted
// by a Scope. Body is the opaque AST payload (an ast.DefTemplate,
// ast.DefFunction or ast.DefGlobal value); the scope registry never interprets
// it, only compares identity.
type Definition struct {
	Kind   ast.ImportKind
	Module string // module that originally declared this definition
	Name   string
	Body   interface{}
}

// sameIdentity implements spec invariant I4: two definitions that
// originate from the same module, with the same name and the same body,
// are considered identical for the purposes of import conflict checking.
// Distinct re-declarations (even if structurally equal by accident) are
// never produced by add_definition twice for the same name without first
// hitting TemplateRedefined, so pointer equality of the definition itself
// is the identity test: every Definition is constructed exactly once, at
// add_definition time, and propagated by reference from then on.
func sameIdentity(a, b *Definition) bool {
	if a == b {
		return true
	}
	if a == nil || b == nil {
		return false
	}
	return a.Kind == b.Kind && a.Module == b.Module && a.Name == b.Name && a.Body == b.Body
}
