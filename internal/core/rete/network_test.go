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

import (
	"testing"

	"github.com/go-quicktest/qt"
)

// recordingSink is a minimal AgendaSink used to observe activation
// lifecycle without pulling in the agenda package (which itself depends
// on rete).
type recordingSink struct {
	activated   []Activation
	deactivated int
}

func (s *recordingSink) Activate(a Activation)                    { s.activated = append(s.activated, a) }
func (s *recordingSink) Deactivate(module, rule string, t TokenID) { s.deactivated++ }

func wantColor(color string) Value { return Symbol(color) }

// buildSingleJoinRule wires: dummy -> join(shape "t:block", field "color"
// literal red) -> beta memory -> production. This is S1 from spec §8: a
// single template pattern with one literal constraint.
func buildSingleJoinRule(t *testing.T, net *Network, sink AgendaSink) (joinID NodeID, prodID NodeID) {
	t.Helper()
	amID := net.EnsureMemory("t:block", nil)

	joinID = net.NewNodeID()
	join := net.NewJoinNode(joinID, DummyNodeID, amID, []JoinTest{
		{Op: TestEq, Field: FieldRef{Slot: "color"}, Literal: wantColor("red")},
	})
	net.AddNode(DummyNodeID, join)
	net.AttachRightSuccessor(amID, joinID)

	bmID := net.NewNodeID()
	bm := net.NewBetaMemoryNode(bmID, joinID)
	net.AddNode(joinID, bm)

	prodID = net.NewNodeID()
	prod := net.NewProductionNode(prodID, "r1", "MAIN", 0, sink)
	net.AddNode(bmID, prod)

	return joinID, prodID
}

func TestSingleJoinAssertRetract(t *testing.T) {
	net := NewNetwork()
	sink := &recordingSink{}
	buildSingleJoinRule(t, net, sink)

	f := &Fact{ID: 1, Template: "block", Slots: map[string]Value{"color": wantColor("red")}}
	wid := net.Assert(f)
	qt.Assert(t, qt.Equals(len(sink.activated), 1))

	f2 := &Fact{ID: 2, Template: "block", Slots: map[string]Value{"color": wantColor("blue")}}
	net.Assert(f2)
	qt.Assert(t, qt.Equals(len(sink.activated), 1), qt.Commentf("non-matching fact must not activate"))

	net.Retract(f.ID)
	qt.Assert(t, qt.Equals(sink.deactivated, 1))
	_ = wid
}

// TestNotNodeTogglesOnBlockingWme covers S3: a (not (block (color red)))
// condition blocks exactly while a matching WME exists.
func TestNotNodeTogglesOnBlockingWme(t *testing.T) {
	net := NewNetwork()
	sink := &recordingSink{}
	amID := net.EnsureMemory("t:block", nil)

	notID := net.NewNodeID()
	not := net.NewNotNode(notID, DummyNodeID, amID, []JoinTest{
		{Op: TestEq, Field: FieldRef{Slot: "color"}, Literal: wantColor("red")},
	})
	net.AddNode(DummyNodeID, not)
	net.AttachRightSuccessor(amID, notID)

	prodID := net.NewNodeID()
	prod := net.NewProductionNode(prodID, "r-not", "MAIN", 0, sink)
	net.AddNode(notID, prod)
	_ = not

	// Nothing asserted yet: the NOT is satisfied immediately, because
	// AddNode seeds a newly attached child with every token its parent
	// (here, the dummy node) already holds.
	qt.Assert(t, qt.Equals(len(sink.activated), 1))

	f := &Fact{ID: 1, Template: "block", Slots: map[string]Value{"color": wantColor("red")}}
	net.Assert(f)
	qt.Assert(t, qt.Equals(sink.deactivated, 1), qt.Commentf("asserting the blocking fact must retract the activation"))

	net.Retract(f.ID)
	qt.Assert(t, qt.Equals(len(sink.activated), 2), qt.Commentf("retracting the blocker must re-activate"))
}

// TestRemoveTokenCascades covers S2: retracting an ancestor WME must
// retract every descendant token and deactivate every production that
// depended on it, recursively.
func TestRemoveTokenCascades(t *testing.T) {
	net := NewNetwork()
	sink := &recordingSink{}
	buildSingleJoinRule(t, net, sink)

	f := &Fact{ID: 1, Template: "block", Slots: map[string]Value{"color": wantColor("red")}}
	net.Assert(f)
	qt.Assert(t, qt.Equals(len(sink.activated), 1))
	qt.Assert(t, qt.Equals(sink.deactivated, 0))

	net.Retract(f.ID)
	qt.Assert(t, qt.Equals(sink.deactivated, 1))

	// The token arena must not retain anything from the retracted chain.
	qt.Assert(t, qt.Equals(len(net.tokens), 1), qt.Commentf("only the dummy token should remain"))
}
