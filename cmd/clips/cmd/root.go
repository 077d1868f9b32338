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

// Package cmd implements the clips CLI: a thin REPL-style driver over
// clips/engine, grounded on cmd/cue's cobra wiring (SPEC_FULL.md §B.7).
package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"clips.dev/go/clips/config"
	"clips.dev/go/clips/engine"
)

var stdout = os.Stdout
var stderr = os.Stderr

// New builds the root cobra command.
func New(args []string) *cobra.Command {
	root := &cobra.Command{
		Use:           "clips",
		Short:         "clips drives a rule engine session from a batch file",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().String("load", "", "batch file defining modules, templates, rules and deffacts")
	root.PersistentFlags().String("profile", "", "YAML config profile (see clips/config)")

	root.AddCommand(
		newLoadCmd(),
		newAssertCmd(),
		newRetractCmd(),
		newRunCmd(),
		newResetCmd(),
		newClearCmd(),
	)
	root.SetArgs(args)
	return root
}

// Main runs the clips CLI and returns a process exit code.
func Main() int {
	cmd := New(os.Args[1:])
	if err := cmd.Execute(); err != nil {
		fmt.Fprintln(stderr, err)
		return 1
	}
	return 0
}

// buildEngine constructs an Engine from the --profile and --load flags
// shared by every subcommand: a profile (if given) supplies the
// comparator/trace/wasm configuration, and the batch file (if given)
// populates modules, templates, rules and deffacts. It returns the
// remaining action forms found in the batch file, for newLoadCmd to run.
func buildEngine(cmd *cobra.Command) (*engine.Engine, []sexpr, error) {
	profilePath, _ := cmd.Flags().GetString("profile")
	loadPath, _ := cmd.Flags().GetString("load")

	var e *engine.Engine
	if profilePath != "" {
		cfg, err := config.LoadProfile(profilePath)
		if err != nil {
			return nil, nil, err
		}
		e, err = cfg.NewEngine()
		if err != nil {
			return nil, nil, err
		}
	} else {
		// config.New() with no WasmModule options never fails to build.
		e, _ = config.New().NewEngine()
	}

	var actions []sexpr
	if loadPath != "" {
		data, err := os.ReadFile(loadPath)
		if err != nil {
			return nil, nil, err
		}
		actions, err = loadFile(e, string(data))
		if err != nil {
			return nil, nil, err
		}
	}
	return e, actions, nil
}

func newLoadCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "load",
		Short: "load a batch file's definitions and run any action directives it contains",
		RunE: func(cmd *cobra.Command, args []string) error {
			e, actions, err := buildEngine(cmd)
			if err != nil {
				return err
			}
			if err := e.Reset(); err != nil {
				return err
			}
			for _, a := range actions {
				if err := runDirective(e, cmd.OutOrStdout(), a); err != nil {
					return err
				}
			}
			return nil
		},
	}
}

func newAssertCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "assert FACT",
		Short: "assert one additional fact literal after loading --load and resetting",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			e, _, err := buildEngine(cmd)
			if err != nil {
				return err
			}
			if err := e.Reset(); err != nil {
				return err
			}
			form, err := parseOneForm(args[0])
			if err != nil {
				return err
			}
			return runDirective(e, cmd.OutOrStdout(), sexpr{List: []sexpr{{Atom: "assert"}, form}})
		},
	}
}

func newRetractCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "retract FACT-ID",
		Short: "retract one fact by id after loading --load and resetting",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			e, _, err := buildEngine(cmd)
			if err != nil {
				return err
			}
			if err := e.Reset(); err != nil {
				return err
			}
			form := sexpr{List: []sexpr{{Atom: "retract"}, {Atom: args[0]}}}
			return runDirective(e, cmd.OutOrStdout(), form)
		},
	}
}

func newRunCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "run [limit]",
		Short: "reset working memory to the loaded deffacts and fire activations",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			e, _, err := buildEngine(cmd)
			if err != nil {
				return err
			}
			if err := e.Reset(); err != nil {
				return err
			}
			form := sexpr{List: []sexpr{{Atom: "run"}}}
			if len(args) == 1 {
				form.List = append(form.List, sexpr{Atom: args[0]})
			}
			return runDirective(e, cmd.OutOrStdout(), form)
		},
	}
}

func newResetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "reset",
		Short: "load --load's definitions and assert its deffacts",
		RunE: func(cmd *cobra.Command, args []string) error {
			e, _, err := buildEngine(cmd)
			if err != nil {
				return err
			}
			return runDirective(e, cmd.OutOrStdout(), sexpr{List: []sexpr{{Atom: "reset"}}})
		},
	}
}

func newClearCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "load --load's definitions, then immediately discard them",
		RunE: func(cmd *cobra.Command, args []string) error {
			e, _, err := buildEngine(cmd)
			if err != nil {
				return err
			}
			return runDirective(e, cmd.OutOrStdout(), sexpr{List: []sexpr{{Atom: "clear"}}})
		},
	}
}

// parseOneForm parses src as exactly one top-level form, for a single
// command-line argument like `(block (color red))`.
func parseOneForm(src string) (sexpr, error) {
	forms, err := parseProgram(src)
	if err != nil {
		return sexpr{}, err
	}
	if len(forms) != 1 {
		return sexpr{}, fmt.Errorf("expected exactly one form, got %d", len(forms))
	}
	return forms[0], nil
}
