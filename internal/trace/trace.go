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

// Package trace is the engine's node-activation tracer. It mirrors the
// nesting-depth / entry-counter scheme the evaluator core it's modeled on
// uses for its own eval log (see internal/core/adt/log.go in the reference
// corpus): formatting only happens when tracing is enabled, so disabled
// call sites pay no allocation cost for their arguments.
package trace

import (
	"fmt"
	"log"
	"strings"
)

func init() {
	log.SetFlags(0)
}

// Level controls trace verbosity. Zero disables tracing entirely.
type Level int

const (
	Off Level = iota
	Propagation
	Verbose
)

// Tracer logs the trace lines the network emits for one engine session:
// fact assertion and retraction, and node deletion. Individual node
// activations and token creation/removal are not logged. The zero value
// is a disabled Tracer.
type Tracer struct {
	Level Level

	nest  int
	logID int
}

// Enabled reports whether the tracer will produce output.
func (t *Tracer) Enabled() bool { return t != nil && t.Level != Off }

// Logf logs one trace line. Callers must guard with Enabled to avoid paying
// for argument formatting when tracing is disabled.
func (t *Tracer) Logf(format string, args ...interface{}) {
	if t == nil || t.Level == Off {
		return
	}
	t.logID++
	w := &strings.Builder{}
	fmt.Fprintf(w, "%4d ", t.logID)
	for i := 0; i < t.nest; i++ {
		w.WriteString("... ")
	}
	fmt.Fprintf(w, format, args...)
	_ = log.Output(2, w.String())
}

// Enter logs format and increases nesting for the scope of the returned
// Exit function, e.g. `defer t.Enter("join %d", id)()`.
func (t *Tracer) Enter(format string, args ...interface{}) func() {
	if t == nil || t.Level == Off {
		return func() {}
	}
	t.Logf(format, args...)
	t.nest++
	return func() { t.nest-- }
}
