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

// The network's cyclic references (token <-> NCC partner, WME <-> alpha
// memory, node <-> child) are modeled as stable integer handles into a
// per-Network arena rather than pointer cycles, per design notes §9:
// back-edges are plain handles, never owning references, and deletion
// walks handles and clears arena slots instead of relying on a GC to
// collect a cycle.

// NodeID identifies a node in the beta network's arena.
type NodeID uint64

// TokenID identifies a token in the network's arena.
type TokenID uint64

// WmeID identifies a working-memory element.
type WmeID uint64

// AlphaMemID identifies an alpha memory.
type AlphaMemID uint64

// DummyNodeID is the beta-memory-like node that owns the single dummy top
// token (TokenID 0): the initial partial match of length 0.
const DummyNodeID NodeID = 0

// DummyTokenID is the empty token every join chain starts from.
const DummyTokenID TokenID = 0

// InvalidNodeID, InvalidTokenID, InvalidWmeID and InvalidAlphaMemID mark
// an absent handle explicitly rather than overloading zero, since zero is
// also the dummy node/token's id.
const (
	InvalidNodeID     NodeID     = ^NodeID(0)
	InvalidTokenID    TokenID    = ^TokenID(0)
	InvalidWmeID      WmeID      = ^WmeID(0)
	InvalidAlphaMemID AlphaMemID = ^AlphaMemID(0)
)
