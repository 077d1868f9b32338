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

package rete

import "strconv"

// FactID uniquely and monotonically identifies an asserted fact.
type FactID uint64

// Fact is an ordered or template-shaped tuple of typed atoms (spec §3).
// Once constructed a Fact is never mutated; retraction removes it from
// Working Memory rather than changing its content.
type Fact struct {
	ID       FactID
	Template string // "" for an ordered fact
	Ordered  []Value
	Slots    map[string]Value
}

// FieldRef addresses one field of a Fact: either a positional index (for
// ordered facts) or a slot name (for template facts).
type FieldRef struct {
	Slot    string
	Index   int
	Ordered bool
}

// Field resolves a FieldRef against the fact, reporting false if the
// field does not apply to this fact's shape.
func (f *Fact) Field(ref FieldRef) (Value, bool) {
	if ref.Ordered {
		if ref.Index < 0 || ref.Index >= len(f.Ordered) {
			return Value{}, false
		}
		return f.Ordered[ref.Index], true
	}
	v, ok := f.Slots[ref.Slot]
	return v, ok
}

// Shape identifies the pattern family a fact belongs to, used to select
// the alpha network's root: the template name, or a synthetic key for
// ordered facts keyed by arity.
func (f *Fact) Shape() string {
	if f.Template != "" {
		return "t:" + f.Template
	}
	return "o:" + strconv.Itoa(len(f.Ordered))
}
