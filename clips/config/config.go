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

// Package config builds an [engine.Engine] from either functional options
// (mirroring cuecontext.New's Option pattern) or a YAML profile file
// (SPEC_FULL.md §B.4). The fact-identity policy (§C.1) is intentionally
// absent from both: it is a fixed engine invariant, never user-visible
// configuration.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"clips.dev/go/clips/engine"
	"clips.dev/go/clips/function"
	"clips.dev/go/internal/core/agenda"
	"clips.dev/go/internal/trace"
)

// wasmModule names one .wasm file to load into the engine's function host
// at construction time, and the CLIPS-name -> exported-symbol mapping to
// register its functions under.
type wasmModule struct {
	Path    string
	Module  string
	Exports map[string]string
}

// Config collects the options an Engine is built from.
type Config struct {
	comparator agenda.Comparator
	trace      trace.Level
	wasm       []wasmModule
}

// Option configures a Config, applied in New.
type Option struct{ apply func(*Config) }

// Comparator selects the agenda's conflict-resolution comparator
// (agenda.Default if never set).
func Comparator(cmp agenda.Comparator) Option {
	return Option{func(c *Config) { c.comparator = cmp }}
}

// TraceLevel sets the network's activation tracer verbosity.
func TraceLevel(lvl trace.Level) Option {
	return Option{func(c *Config) { c.trace = lvl }}
}

// WasmModule queues a compiled .wasm file to be loaded into the engine's
// function registry at construction time, registering exports[name] under
// module::name for every entry of exports.
func WasmModule(path, module string, exports map[string]string) Option {
	return Option{func(c *Config) {
		c.wasm = append(c.wasm, wasmModule{Path: path, Module: module, Exports: exports})
	}}
}

// New builds a Config from options, with agenda.Default and tracing off
// as the baseline.
func New(options ...Option) *Config {
	c := &Config{comparator: agenda.Default, trace: trace.Off}
	for _, o := range options {
		o.apply(c)
	}
	return c
}

// NewEngine constructs an engine.Engine from c: the comparator and trace
// level take effect immediately, and any configured WASM modules are
// compiled, instantiated and registered into the engine's function host
// before NewEngine returns.
func (c *Config) NewEngine() (*engine.Engine, error) {
	e := engine.New(c.comparator)
	e.Net.Tracer.Level = c.trace

	if len(c.wasm) == 0 {
		return e, nil
	}
	host := function.NewWasmHost()
	for _, m := range c.wasm {
		if err := host.Load(m.Path, m.Module, m.Exports, e.Functions); err != nil {
			host.Close()
			return nil, fmt.Errorf("clips/config: loading wasm module %s: %w", m.Path, err)
		}
	}
	return e, nil
}

// profile is the YAML-serializable form of a Config (SPEC_FULL.md §B.4):
// a named profile file an embedder or cmd/clips can point the engine at,
// parallel to New's functional options.
type profile struct {
	Comparator string `yaml:"comparator"`
	Trace      string `yaml:"trace"`
	Wasm       []struct {
		Path    string            `yaml:"path"`
		Module  string            `yaml:"module"`
		Exports map[string]string `yaml:"exports"`
	} `yaml:"wasm"`
}

// LoadProfile reads a YAML configuration profile from path and returns the
// Config it describes.
func LoadProfile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("clips/config: %w", err)
	}
	var p profile
	if err := yaml.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("clips/config: parsing %s: %w", path, err)
	}

	var opts []Option
	switch p.Comparator {
	case "", "default":
		opts = append(opts, Comparator(agenda.Default))
	case "mea":
		opts = append(opts, Comparator(agenda.MEA{}))
	default:
		return nil, fmt.Errorf("clips/config: unknown comparator %q", p.Comparator)
	}

	lvl, err := traceLevelFromString(p.Trace)
	if err != nil {
		return nil, err
	}
	opts = append(opts, TraceLevel(lvl))

	for _, w := range p.Wasm {
		opts = append(opts, WasmModule(w.Path, w.Module, w.Exports))
	}

	return New(opts...), nil
}

func traceLevelFromString(s string) (trace.Level, error) {
	switch s {
	case "", "off":
		return trace.Off, nil
	case "propagation":
		return trace.Propagation, nil
	case "verbose":
		return trace.Verbose, nil
	default:
		return trace.Off, fmt.Errorf("clips/config: unknown trace level %q", s)
	}
}
