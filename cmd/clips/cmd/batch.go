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
	"strconv"
	"strings"

	"clips.dev/go/clips/ast"
	"clips.dev/go/clips/engine"
)

// isVar reports whether atom names a bound variable (?name) rather than a
// literal.
func isVar(atom string) (string, bool) {
	if strings.HasPrefix(atom, "?") && len(atom) > 1 {
		return atom[1:], true
	}
	return "", false
}

// atomValue elaborates a literal atom into an ast.Value: a quoted string,
// an integer, or (the default) a bare symbol.
func atomValue(atom string) ast.Value {
	if strings.HasPrefix(atom, `"`) && strings.HasSuffix(atom, `"`) && len(atom) >= 2 {
		return ast.Value{Kind: ast.KindString, Str: atom[1 : len(atom)-1]}
	}
	if n, err := strconv.ParseInt(atom, 10, 64); err == nil {
		return ast.Value{Kind: ast.KindInteger, Integer: n}
	}
	return ast.Value{Kind: ast.KindSymbol, Symbol: atom}
}

// buildFactLiteral reads a (TEMPLATE slot1 val1 slot2 val2 ...) form.
func buildFactLiteral(form sexpr) (ast.FactLiteral, error) {
	if len(form.List) == 0 || form.List[0].List != nil {
		return ast.FactLiteral{}, fmt.Errorf("malformed fact literal %s", form)
	}
	template := form.List[0].Atom
	rest := form.List[1:]
	if len(rest)%2 != 0 {
		return ast.FactLiteral{}, fmt.Errorf("fact literal %s has an odd number of slot/value tokens", form)
	}
	slots := map[string]ast.Value{}
	for i := 0; i < len(rest); i += 2 {
		slots[rest[i].Atom] = atomValue(rest[i+1].Atom)
	}
	return ast.FactLiteral{Template: template, Slots: slots}, nil
}

// buildPattern reads a (TEMPLATE slot1 val-or-?var slot2 val-or-?var ...)
// LHS pattern: a bare symbol/integer slot value becomes an OpEq constraint,
// a ?var becomes an unconstrained binding. Combining both on one slot in
// this minimal reader isn't supported.
func buildPattern(form sexpr) (ast.TemplatePatternCE, error) {
	if len(form.List) == 0 || form.List[0].List != nil {
		return ast.TemplatePatternCE{}, fmt.Errorf("malformed pattern %s", form)
	}
	template := form.List[0].Atom
	rest := form.List[1:]
	if len(rest)%2 != 0 {
		return ast.TemplatePatternCE{}, fmt.Errorf("pattern %s has an odd number of slot/value tokens", form)
	}
	var slots []ast.SlotConstraint
	for i := 0; i < len(rest); i += 2 {
		slot := rest[i].Atom
		val := rest[i+1].Atom
		if name, ok := isVar(val); ok {
			slots = append(slots, ast.SlotConstraint{Slot: slot, Var: name})
			continue
		}
		slots = append(slots, ast.SlotConstraint{
			Slot:        slot,
			Constraints: []ast.Constraint{{Op: ast.OpEq, Literal: atomValue(val)}},
		})
	}
	return ast.TemplatePatternCE{Template: template, Slots: slots}, nil
}

// buildExpr reads one RHS expression atom/form: a ?var reference, or a
// (func arg ...) call; bare atoms are literal values.
func buildExpr(form sexpr) (ast.Expr, error) {
	if form.List == nil {
		if name, ok := isVar(form.Atom); ok {
			return ast.VarRef{Name: name}, nil
		}
		return atomValue(form.Atom), nil
	}
	if len(form.List) == 0 || form.List[0].List != nil {
		return nil, fmt.Errorf("malformed expression %s", form)
	}
	call := ast.FuncCall{Name: form.List[0].Atom}
	for _, a := range form.List[1:] {
		arg, err := buildExpr(a)
		if err != nil {
			return nil, err
		}
		call.Args = append(call.Args, arg)
	}
	return call, nil
}

// buildDefine translates one defmodule/deftemplate/deffacts/defrule form
// into its ast type, ready for engine.Load.
func buildDefine(form sexpr) (interface{}, error) {
	if len(form.List) == 0 || form.List[0].List != nil {
		return nil, fmt.Errorf("malformed top-level form %s", form)
	}
	head := form.List[0].Atom
	args := form.List[1:]

	switch head {
	case "defmodule":
		if len(args) != 1 {
			return nil, fmt.Errorf("defmodule wants exactly one name, got %s", form)
		}
		return ast.DefModule{Name: args[0].Atom}, nil

	case "deftemplate":
		if len(args) < 2 {
			return nil, fmt.Errorf("deftemplate wants MODULE NAME [slot...], got %s", form)
		}
		t := ast.DefTemplate{Module: args[0].Atom, Name: args[1].Atom}
		for _, s := range args[2:] {
			t.Slots = append(t.Slots, ast.Slot{Name: s.Atom})
		}
		return t, nil

	case "deffacts":
		if len(args) < 2 {
			return nil, fmt.Errorf("deffacts wants MODULE NAME [fact...], got %s", form)
		}
		df := ast.DefFacts{Module: args[0].Atom, Name: args[1].Atom}
		for _, f := range args[2:] {
			fl, err := buildFactLiteral(f)
			if err != nil {
				return nil, err
			}
			df.Facts = append(df.Facts, fl)
		}
		return df, nil

	case "defrule":
		if len(args) < 3 {
			return nil, fmt.Errorf("defrule wants MODULE NAME pattern... => action..., got %s", form)
		}
		r := ast.DefRule{Module: args[0].Atom, Name: args[1].Atom}
		i := 2
		for ; i < len(args); i++ {
			if args[i].List == nil && args[i].Atom == "=>" {
				break
			}
			pat, err := buildPattern(args[i])
			if err != nil {
				return nil, err
			}
			r.LHS = append(r.LHS, pat)
		}
		if i == len(args) {
			return nil, fmt.Errorf("defrule %s is missing its => separator", form)
		}
		for _, a := range args[i+1:] {
			expr, err := buildExpr(a)
			if err != nil {
				return nil, err
			}
			call, ok := expr.(ast.FuncCall)
			if !ok {
				return nil, fmt.Errorf("defrule %s RHS action %s is not a function call", form, a)
			}
			r.RHS = append(r.RHS, call)
		}
		return r, nil

	default:
		return nil, nil // not a define form; let the executor try it as an action
	}
}

var defineHeads = map[string]bool{
	"defmodule": true, "deftemplate": true, "deffacts": true, "defrule": true,
}

// loadFile parses src and loads every defmodule/deftemplate/deffacts/
// defrule form into e, returning the remaining forms (the action
// directives) for the caller to execute.
func loadFile(e *engine.Engine, src string) ([]sexpr, error) {
	forms, err := parseProgram(src)
	if err != nil {
		return nil, err
	}
	var actions []sexpr
	for _, f := range forms {
		if f.List == nil || f.List[0].List != nil {
			return nil, fmt.Errorf("malformed top-level form %s", f)
		}
		if !defineHeads[f.List[0].Atom] {
			actions = append(actions, f)
			continue
		}
		def, err := buildDefine(f)
		if err != nil {
			return nil, err
		}
		if err := e.Load([]interface{}{def}); err != nil {
			return nil, fmt.Errorf("loading %s: %w", f, err)
		}
	}
	return actions, nil
}
