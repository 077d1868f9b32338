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

package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/go-quicktest/qt"

	"clips.dev/go/clips/config"
	"clips.dev/go/internal/core/agenda"
	"clips.dev/go/internal/trace"
)

func TestNewDefaults(t *testing.T) {
	c := config.New()
	e, err := c.NewEngine()
	qt.Assert(t, qt.IsNil(err))
	qt.Assert(t, qt.IsNotNil(e))
	qt.Assert(t, qt.Equals(e.Net.Tracer.Level, trace.Off))
}

func TestTraceLevelOption(t *testing.T) {
	c := config.New(config.TraceLevel(trace.Verbose))
	e, err := c.NewEngine()
	qt.Assert(t, qt.IsNil(err))
	qt.Assert(t, qt.Equals(e.Net.Tracer.Level, trace.Verbose))
}

func TestComparatorOption(t *testing.T) {
	c := config.New(config.Comparator(agenda.MEA{}))
	e, err := c.NewEngine()
	qt.Assert(t, qt.IsNil(err))
	qt.Assert(t, qt.IsNotNil(e.Agenda))
}

func TestLoadProfileParsesComparatorAndTrace(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "profile.yaml")
	qt.Assert(t, qt.IsNil(os.WriteFile(path, []byte("comparator: mea\ntrace: propagation\n"), 0o644)))

	c, err := config.LoadProfile(path)
	qt.Assert(t, qt.IsNil(err))
	e, err := c.NewEngine()
	qt.Assert(t, qt.IsNil(err))
	qt.Assert(t, qt.Equals(e.Net.Tracer.Level, trace.Propagation))
}

func TestLoadProfileDefaultsOnEmptyFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "empty.yaml")
	qt.Assert(t, qt.IsNil(os.WriteFile(path, []byte(""), 0o644)))

	c, err := config.LoadProfile(path)
	qt.Assert(t, qt.IsNil(err))
	e, err := c.NewEngine()
	qt.Assert(t, qt.IsNil(err))
	qt.Assert(t, qt.Equals(e.Net.Tracer.Level, trace.Off))
}

func TestLoadProfileRejectsUnknownComparator(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "bad.yaml")
	qt.Assert(t, qt.IsNil(os.WriteFile(path, []byte("comparator: bogus\n"), 0o644)))

	_, err := config.LoadProfile(path)
	qt.Assert(t, qt.IsNotNil(err))
}

func TestLoadProfileRejectsUnknownTraceLevel(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "bad.yaml")
	qt.Assert(t, qt.IsNil(os.WriteFile(path, []byte("trace: extremely-loud\n"), 0o644)))

	_, err := config.LoadProfile(path)
	qt.Assert(t, qt.IsNotNil(err))
}

func TestLoadProfileMissingFile(t *testing.T) {
	_, err := config.LoadProfile(filepath.Join(t.TempDir(), "missing.yaml"))
	qt.Assert(t, qt.IsNotNil(err))
}

func TestWasmModuleOptionFailsOnUnreadablePath(t *testing.T) {
	c := config.New(config.WasmModule("/nonexistent/module.wasm", "EXT", map[string]string{"add": "add"}))
	_, err := c.NewEngine()
	qt.Assert(t, qt.IsNotNil(err), qt.Commentf("a missing wasm file must surface as a load error, not a panic"))
}
