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

// Export models the ?ALL / ?NONE / Named export promise for one definition
// kind as a sum type (design notes §9), rather than mixing the sentinel
// into the name map the way the source this spec derives from does.
type Export struct {
	all   bool
	none  bool
	names map[string]bool
}

// NewExport builds an Export from a parsed ast.ScopeExport.
func NewExport(e ast.ScopeExport) Export {
	switch {
	case e.All:
		return Export{all: true}
	case e.None:
		return Export{none: true}
	default:
		names := make(map[string]bool, len(e.Names))
		for _, n := range e.Names {
			names[n] = true
		}
		return Export{names: names}
	}
}

// defaultExport is the promise assumed for a kind with no explicit
// (export ...) clause: export nothing.
func defaultExport() Export { return Export{none: true} }

// CanExport reports whether name is exportable under this promise.
func (e Export) CanExport(name string) bool {
	switch {
	case e.all:
		return true
	case e.none:
		return false
	default:
		return e.names[name]
	}
}
