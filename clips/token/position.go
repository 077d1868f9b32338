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

// Package token defines source positions used to annotate AST constructs and
// errors produced by the engine. The grammar and lexer that populate these
// positions are out of scope for this module; collaborators fill them in.
package token

import "fmt"

// Position describes an arbitrary, printable source position.
//
// A Position is valid if Line > 0.
type Position struct {
	Filename string
	Offset   int
	Line     int
	Column   int
}

// IsValid reports whether the position is valid.
func (p Position) IsValid() bool { return p.Line > 0 }

func (p Position) String() string {
	if !p.IsValid() {
		return "-"
	}
	s := p.Filename
	if s == "" {
		s = "<input>"
	}
	return fmt.Sprintf("%s:%d:%d", s, p.Line, p.Column)
}

// NoPos is the zero value for Position; it is not valid.
var NoPos = Position{}
