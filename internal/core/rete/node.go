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

// Node is implemented by every beta-network node kind (BetaMemoryNode,
// JoinNode, NotNode, NCCNode, NCCPartnerNode, TestNode, ProductionNode).
// Each kind is a distinct concrete type rather than one struct carrying a
// kind tag and a union of per-kind fields: this is the same sum-type-via-
// interface idiom the evaluator this network is modeled on uses for its
// own node hierarchy (adt.Node), and it keeps each node's propagation
// logic next to the state it actually owns.
type Node interface {
	ID() NodeID
}

// LeftActivatable is implemented by every node that can receive a token
// from its left parent (spec §4.4: all beta-network nodes).
type LeftActivatable interface {
	Node
	// LeftActivate is called when a new token becomes available from this
	// node's left parent.
	LeftActivate(net *Network, t TokenID)
	// LeftRetract is called when a previously-available token from this
	// node's left parent is no longer available (either the token itself
	// was destroyed, or a NOT/NCC ancestor toggled from propagating to
	// blocked).
	LeftRetract(net *Network, t TokenID)
}

// RightActivatable is implemented by nodes with a right parent (Join,
// Not): an alpha memory.
type RightActivatable interface {
	Node
	RightActivate(net *Network, w WmeID)
	RightRetract(net *Network, w WmeID)
}

// nodeBase is embedded by every concrete node type for its id and
// registered children (left-successors), activated in registration order
// per spec §4.4's ordering guarantee.
type nodeBase struct {
	id       NodeID
	children []NodeID
}

func (n *nodeBase) ID() NodeID { return n.id }

func (n *nodeBase) addChild(id NodeID) { n.children = append(n.children, id) }

// propagateLeft forwards t to every registered child, in registration
// order, completing each child's full fan-out before moving to the next
// (spec §4.4: "a node completes its fan-out before control returns to the
// caller").
func (net *Network) propagateLeft(children []NodeID, t TokenID) {
	for _, c := range children {
		net.leftActivatable(c).LeftActivate(net, t)
	}
}

func (net *Network) retractLeft(children []NodeID, t TokenID) {
	for _, c := range children {
		net.leftActivatable(c).LeftRetract(net, t)
	}
}
