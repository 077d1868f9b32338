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
	"io"
	"strconv"

	"clips.dev/go/clips/engine"
	"clips.dev/go/internal/core/rete"
)

// runDirective executes one parsed (assert ...)/(retract ...)/(run ...)/
// (reset)/(clear) action form against e, writing human-readable output to
// w. It is the shared core behind both `clips load` (a whole script) and
// the single-shot `clips assert|retract|run|reset|clear` subcommands (one
// directive appended to a loaded scenario).
func runDirective(e *engine.Engine, w io.Writer, form sexpr) error {
	if form.List == nil || form.List[0].List != nil {
		return fmt.Errorf("malformed directive %s", form)
	}
	head := form.List[0].Atom
	args := form.List[1:]

	switch head {
	case "assert":
		if len(args) != 1 {
			return fmt.Errorf("assert wants exactly one fact literal, got %s", form)
		}
		fl, err := buildFactLiteral(args[0])
		if err != nil {
			return err
		}
		id, err := e.AssertLiteral(fl)
		if err != nil {
			return err
		}
		fmt.Fprintf(w, "<Fact-%d>\n", id)
		return nil

	case "retract":
		if len(args) != 1 {
			return fmt.Errorf("retract wants exactly one fact-id, got %s", form)
		}
		n, err := strconv.ParseInt(args[0].Atom, 10, 64)
		if err != nil {
			return fmt.Errorf("retract: %w", err)
		}
		if !e.Retract(rete.FactID(n)) {
			return fmt.Errorf("retract: fact %d is not in working memory", n)
		}
		fmt.Fprintf(w, "retracted %d\n", n)
		return nil

	case "run":
		limit := -1
		if len(args) == 1 {
			n, err := strconv.Atoi(args[0].Atom)
			if err != nil {
				return fmt.Errorf("run: %w", err)
			}
			limit = n
		}
		for {
			rule, fired, err := e.Fire()
			if err != nil {
				return err
			}
			if !fired {
				break
			}
			fmt.Fprintf(w, "FIRE %s\n", rule)
			if limit > 0 {
				limit--
				if limit == 0 {
					break
				}
			}
		}
		return nil

	case "reset":
		if err := e.Reset(); err != nil {
			return err
		}
		fmt.Fprintln(w, "reset")
		return nil

	case "clear":
		e.Clear()
		fmt.Fprintln(w, "clear")
		return nil

	default:
		return fmt.Errorf("unknown directive %s", form)
	}
}
