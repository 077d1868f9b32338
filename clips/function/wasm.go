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

package function

import (
	"context"
	"fmt"
	"os"

	"github.com/tetratelabs/wazero"
	"github.com/tetratelabs/wazero/api"
	"github.com/tetratelabs/wazero/imports/wasi_snapshot_preview1"

	"clips.dev/go/clips/ast"
	"clips.dev/go/internal/core/rete"
)

// WasmHost loads compiled `.wasm` modules and exposes their exported
// functions as FunctionDefinitions, the WASM extern host SPEC_FULL.md
// §B.6 names (grounded on cue/interpreter/wasm: one wazero.Runtime per
// host, one compiled-and-instantiated module per loaded file, its
// exported functions resolved once at Load time rather than per call).
// Only integer atoms cross the boundary: CLIPS's richer value kinds
// (strings, multifields) have no WASM ABI mapping here, matching
// cue/interpreter/wasm's own numeric-only calling convention.
type WasmHost struct {
	ctx     context.Context
	runtime wazero.Runtime
}

// NewWasmHost returns a WasmHost ready to Load modules into.
func NewWasmHost() *WasmHost {
	ctx := context.Background()
	rt := wazero.NewRuntime(ctx)
	wasi_snapshot_preview1.MustInstantiate(ctx, rt)
	return &WasmHost{ctx: ctx, runtime: rt}
}

// Close tears down every module this host has instantiated.
func (h *WasmHost) Close() error {
	return h.runtime.Close(h.ctx)
}

// Load compiles and instantiates the `.wasm` file at path, then registers
// every entry of exports (a CLIPS function name mapped to the module's
// exported Wasm function name) into r under module, as a
// non-deterministic FunctionDefinition (WASM-hosted functions are never
// eligible for alpha-test hoisting, spec §6's determinism flag).
func (h *WasmHost) Load(path, module string, exports map[string]string, r *Registry) error {
	buf, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("clips/function: read %s: %w", path, err)
	}
	compiled, err := h.runtime.CompileModule(h.ctx, buf)
	if err != nil {
		return fmt.Errorf("clips/function: compile %s: %w", path, err)
	}
	inst, err := h.runtime.InstantiateModule(h.ctx, compiled, wazero.NewModuleConfig().WithName(path))
	if err != nil {
		return fmt.Errorf("clips/function: instantiate %s: %w", path, err)
	}
	for clipsName, wasmName := range exports {
		fn := inst.ExportedFunction(wasmName)
		if fn == nil {
			return fmt.Errorf("clips/function: %s has no exported function %q", path, wasmName)
		}
		err := r.Register(&FunctionDefinition{
			Module: module, Name: clipsName, ResultType: ast.KindInteger,
			Constraints:   Constraint{MinArity: 0, MaxArity: -1, Types: [][]ast.ValueKind{{ast.KindInteger}}},
			Deterministic: false,
			Handler:       wasmHandler(h.ctx, fn),
		})
		if err != nil {
			return err
		}
	}
	return nil
}

func wasmHandler(ctx context.Context, fn api.Function) Handler {
	return func(args []rete.Value) (rete.Value, error) {
		in := make([]uint64, len(args))
		for i, a := range args {
			in[i] = api.EncodeI64(a.Int)
		}
		out, err := fn.Call(ctx, in...)
		if err != nil {
			return rete.Value{}, fmt.Errorf("clips/function: wasm call failed: %w", err)
		}
		if len(out) == 0 {
			return rete.Value{}, nil
		}
		return rete.Integer(api.DecodeI64(out[0])), nil
	}
}
