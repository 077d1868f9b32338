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

package cmd

import (
	"fmt"
	"strings"
)

// sexpr is one parsed parenthesized form: either a bare atom (List == nil)
// or a list of child forms. This is deliberately not a CLIPS grammar (out
// of scope per spec.md §1) — just enough lexing/parsing to drive the CLI
// and its testscript suite from a flat batch file.
type sexpr struct {
	Atom string
	List []sexpr
}

func (s sexpr) String() string {
	if s.List == nil {
		return s.Atom
	}
	parts := make([]string, len(s.List))
	for i, c := range s.List {
		parts[i] = c.String()
	}
	return "(" + strings.Join(parts, " ") + ")"
}

// parseProgram tokenizes and parses src into the top-level forms of a
// batch file, one per (...) group.
func parseProgram(src string) ([]sexpr, error) {
	toks := tokenize(src)
	var forms []sexpr
	for len(toks) > 0 {
		var form sexpr
		var err error
		form, toks, err = parseForm(toks)
		if err != nil {
			return nil, err
		}
		forms = append(forms, form)
	}
	return forms, nil
}

func tokenize(src string) []string {
	var toks []string
	var cur strings.Builder
	flush := func() {
		if cur.Len() > 0 {
			toks = append(toks, cur.String())
			cur.Reset()
		}
	}
	inString := false
	for _, r := range src {
		switch {
		case inString:
			cur.WriteRune(r)
			if r == '"' {
				inString = false
				flush()
			}
		case r == ';':
			// line comment: consume until the caller's next newline token
			// boundary is naturally handled by the default whitespace case
			// below, since ';' itself never appears in a well-formed form.
			flush()
			toks = append(toks, ";")
		case r == '"':
			flush()
			cur.WriteRune(r)
			inString = true
		case r == '(' || r == ')':
			flush()
			toks = append(toks, string(r))
		case r == ' ' || r == '\t' || r == '\n' || r == '\r':
			flush()
		default:
			cur.WriteRune(r)
		}
	}
	flush()
	return stripComments(toks)
}

// stripComments drops every token from a ";" marker to the next token that
// starts a fresh line worth of content; since the tokenizer above has
// already collapsed whitespace, a ";" simply drops every following token
// up to (but not including) the next ")" that would otherwise unbalance
// the enclosing form — in practice batch files only use ";" at the start
// of a standalone comment line, so dropping through the next "(" or ")" is
// sufficient.
func stripComments(toks []string) []string {
	var out []string
	skipping := false
	for _, t := range toks {
		switch {
		case t == ";":
			skipping = true
		case skipping && (t == "(" || t == ")"):
			skipping = false
			out = append(out, t)
		case skipping:
			// drop
		default:
			out = append(out, t)
		}
	}
	return out
}

func parseForm(toks []string) (sexpr, []string, error) {
	if len(toks) == 0 {
		return sexpr{}, nil, fmt.Errorf("unexpected end of input")
	}
	head, rest := toks[0], toks[1:]
	if head != "(" {
		return sexpr{Atom: head}, rest, nil
	}
	var list []sexpr
	for {
		if len(rest) == 0 {
			return sexpr{}, nil, fmt.Errorf("unterminated list")
		}
		if rest[0] == ")" {
			return sexpr{List: list}, rest[1:], nil
		}
		var child sexpr
		var err error
		child, rest, err = parseForm(rest)
		if err != nil {
			return sexpr{}, nil, err
		}
		list = append(list, child)
	}
}
