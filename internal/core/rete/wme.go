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

// WME is a fact as seen by the network. Equality is by FactID. WMEs are
// owned by Working Memory; the AlphaMems slice is a non-owning
// back-reference used only for retraction fan-out (spec §3).
type WME struct {
	ID        WmeID
	FactID    FactID
	Fact      *Fact
	AlphaMems []AlphaMemID
}
