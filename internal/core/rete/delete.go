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

// DeleteNode removes one rule's reference to id. When id's refcount
// reaches zero (no other rule shares it as a common LHS prefix) it is
// actually torn down: every token it currently holds is retracted, every
// still-live child is deleted first (deepest-first, spec §4.8), and it is
// unregistered from its parent and any alpha memory it was a
// right-successor of.
//
// An NCC node's partner node is always deleted before the NCC node
// itself, since the partner circuit has no meaning once its owner is
// gone.
func (net *Network) DeleteNode(id NodeID) {
	net.refs[id]--
	if net.refs[id] > 0 {
		return
	}
	n, ok := net.nodes[id]
	if !ok {
		return
	}
	net.Tracer.Logf("delete node %d", id)
	if ncc, ok := n.(*NCCNode); ok {
		net.DeleteNode(ncc.partnerEntry)
	}
	for _, c := range append([]NodeID(nil), childrenOf(n)...) {
		net.DeleteNode(c)
	}
	for _, t := range net.tokensOf(n) {
		net.RemoveToken(t)
	}
	net.detachFromAlphaMemory(id)
	if parent, ok := net.parentOf[id]; ok {
		net.removeChildOf(parent, id)
		delete(net.parentOf, id)
	}
	delete(net.nodes, id)
	delete(net.refs, id)
}

// tokensOf returns every token currently produced by/held at n, so that
// deleting n can retract them before the node itself disappears. Join and
// NCC-partner nodes keep no bookkeeping of their own (spec §4.5: tokens
// passing through mint nothing new), so their tokens are recovered from
// wherever they are actually tracked: a Join's children of its left
// parent's tokens, a partner node's owning NCC's result lists.
func (net *Network) tokensOf(n interface{}) []TokenID {
	switch v := n.(type) {
	case *BetaMemoryNode:
		return append([]TokenID(nil), v.tokens...)
	case *NotNode:
		return append([]TokenID(nil), v.tokens...)
	case *TestNode:
		return append([]TokenID(nil), v.passing...)
	case *ProductionNode:
		return v.Tokens(net)
	case *NCCNode:
		return v.Tokens(net)
	case *JoinNode:
		return v.Tokens(net)
	case *NCCPartnerNode:
		if ncc, ok := net.nodes[v.ncc].(*NCCNode); ok {
			return ncc.allPartnerTokens()
		}
	}
	return nil
}

func (net *Network) removeChildOf(parent, child NodeID) {
	switch p := net.nodes[parent].(type) {
	case *BetaMemoryNode:
		p.children = removeNodeID(p.children, child)
	case *JoinNode:
		p.children = removeNodeID(p.children, child)
	case *NotNode:
		p.children = removeNodeID(p.children, child)
	case *NCCNode:
		p.children = removeNodeID(p.children, child)
	case *NCCPartnerNode:
		p.children = removeNodeID(p.children, child)
	case *TestNode:
		p.children = removeNodeID(p.children, child)
	case *ProductionNode:
		p.children = removeNodeID(p.children, child)
	}
}

// detachFromAlphaMemory removes id from the successor list of whichever
// alpha memory it was attached to as a right-input (Join, Not). Other
// node kinds have no right input and this is a no-op for them.
func (net *Network) detachFromAlphaMemory(id NodeID) {
	var amID AlphaMemID
	switch n := net.nodes[id].(type) {
	case *JoinNode:
		amID = n.alphaMem
	case *NotNode:
		amID = n.alphaMem
	default:
		return
	}
	am, ok := net.alphaMems[amID]
	if !ok {
		return
	}
	am.successors = removeNodeID(am.successors, id)
}
