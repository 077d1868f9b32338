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

// Package rete implements the matching network described in spec §3-§5:
// an alpha network for intra-pattern discrimination, a beta network of
// joins/negations/negated-conjunctions/tests/productions for inter-
// pattern joins, and the token tree that ties a complete match back to
// the working-memory elements it was built from.
package rete

import (
	"fmt"

	"clips.dev/go/internal/trace"
)

// Network is the arena that owns every node, token, WME and alpha memory.
// Cross-references between them are stable integer handles rather than
// pointers, so that cyclic structures (token <-> NCC partner, node <->
// child, WME <-> alpha memory) can be torn down by clearing arena slots
// instead of relying on a GC to break a cycle (design notes §9).
type Network struct {
	nodes map[NodeID]interface{}
	nextNode NodeID

	tokens    map[TokenID]*Token
	nextToken TokenID

	wmes    map[WmeID]*WME
	nextWme WmeID

	alphaMems    map[AlphaMemID]*AlphaMemory
	nextAlphaMem AlphaMemID

	alpha *AlphaNetwork

	facts   map[FactID]*Fact
	factWme map[FactID]WmeID

	// refs and parentOf support node-level deletion (spec §4.8): a node
	// shared as the common prefix of several rules' LHS is deleted only
	// once every rule that shares it has been removed.
	refs     map[NodeID]int
	parentOf map[NodeID]NodeID

	Tracer *trace.Tracer
}

// NewNetwork returns an empty network, with only the dummy top node and
// dummy top token populated (the zero-length partial match every join
// chain starts from).
func NewNetwork() *Network {
	net := &Network{
		nodes:     map[NodeID]interface{}{},
		nextNode:  1,
		tokens:    map[TokenID]*Token{},
		nextToken: 1,
		wmes:      map[WmeID]*WME{},
		nextWme:   1,
		alphaMems: map[AlphaMemID]*AlphaMemory{},
		alpha:     newAlphaNetwork(),
		facts:     map[FactID]*Fact{},
		factWme:   map[FactID]WmeID{},
		refs:      map[NodeID]int{},
		parentOf:  map[NodeID]NodeID{},
		Tracer:    &trace.Tracer{},
	}
	dummyNode := &BetaMemoryNode{nodeBase: nodeBase{id: DummyNodeID}}
	net.nodes[DummyNodeID] = dummyNode
	dummyTok := &Token{ID: DummyTokenID, Parent: InvalidTokenID, Wme: InvalidWmeID, Node: DummyNodeID, NCCOwner: InvalidTokenID}
	net.tokens[DummyTokenID] = dummyTok
	dummyNode.tokens = append(dummyNode.tokens, DummyTokenID)
	return net
}

// --- node registration -----------------------------------------------

func (net *Network) newNodeID() NodeID {
	id := net.nextNode
	net.nextNode++
	return id
}

// AddNode registers a fully constructed node under its own id (the caller
// must have built it with that id via NewNodeID) and, if parent is valid,
// appends it as a left-successor of parent in registration order.
func (net *Network) AddNode(parent NodeID, n interface{}) {
	net.AddNodeDeferredReplay(parent, n)
	net.ReplayNode(parent, n.(Node).ID())
}

// AddNodeDeferredReplay registers n exactly like AddNode (child linkage,
// refcount, parentOf) but does not replay parent's existing tokens into
// it. Use it when n's own downstream wiring (e.g. an NCC node's partner
// circuit) is not yet safe to activate; the caller must call ReplayNode
// once that wiring exists.
func (net *Network) AddNodeDeferredReplay(parent NodeID, n interface{}) {
	id := n.(Node).ID()
	net.nodes[id] = n
	net.refs[id] = 1
	if parent != InvalidNodeID {
		net.addChildOf(parent, id)
		net.parentOf[id] = parent
	}
}

// ReplayNode runs the parent-token replay step of AddNode for id, deferred
// by an earlier AddNodeDeferredReplay call: a node attached after its
// parent already holds tokens (a rule compiled against facts already in
// working memory) must see those tokens immediately, the left-side
// analogue of AttachRightSuccessor's WME replay.
func (net *Network) ReplayNode(parent, id NodeID) {
	if parent == InvalidNodeID {
		return
	}
	if ts, ok := net.nodes[parent].(tokenStore); ok {
		for _, t := range ts.Tokens(net) {
			net.leftActivatable(id).LeftActivate(net, t)
		}
	}
}

// AddPartnerEntry registers n as the first join of an NCC node's partner
// circuit. Unlike AddNode, it does not add n as a generic child of ncc:
// NCCNode.LeftActivate seeds it by hand on every owner token, so sweeping
// it into ncc's children as well would make propagateLeft/retractLeft (see
// NCCNode.addResult) activate and retract it a second time — for a rule
// whose negated conjunction's first alpha memory already has matching
// WMEs, that second retract tears down the token addResult just produced
// and triggers an unbounded RemoveToken/removeResult/propagateLeft cascade.
func (net *Network) AddPartnerEntry(ncc NodeID, n interface{}) {
	id := n.(Node).ID()
	net.nodes[id] = n
	net.refs[id] = 1
	net.parentOf[id] = ncc
}

// Retain marks id as shared by one more rule's compiled LHS, so that
// DeleteNode must be called once per sharer before the node is actually
// torn down. The compiler calls this whenever it reuses an existing
// join/beta-memory pair as the common prefix of a new rule, instead of building
// a duplicate (spec §4.3/§4.4, node sharing).
func (net *Network) Retain(id NodeID) { net.refs[id]++ }

// NewNodeID allocates the id a new node should be constructed with, before
// it is registered via AddNode. Handed out up front so a node's own
// fields (e.g. JoinNode.leftParent referencing a sibling under
// construction) can be wired before AddNode runs.
func (net *Network) NewNodeID() NodeID { return net.newNodeID() }

func (net *Network) addChildOf(parent, child NodeID) {
	switch p := net.nodes[parent].(type) {
	case *BetaMemoryNode:
		p.addChild(child)
	case *JoinNode:
		p.addChild(child)
	case *NotNode:
		p.addChild(child)
	case *NCCNode:
		p.addChild(child)
	case *NCCPartnerNode:
		p.addChild(child)
	case *TestNode:
		p.addChild(child)
	case *ProductionNode:
		p.addChild(child)
	default:
		panic(fmt.Sprintf("rete: unknown node kind registered for %d", parent))
	}
}

func (net *Network) leftActivatable(id NodeID) LeftActivatable {
	return net.nodes[id].(LeftActivatable)
}

func (net *Network) rightActivatable(id NodeID) RightActivatable {
	return net.nodes[id].(RightActivatable)
}

func (net *Network) tokenStoreOf(id NodeID) tokenStore {
	return net.nodes[id].(tokenStore)
}

func (net *Network) newAlphaMemID() AlphaMemID {
	id := net.nextAlphaMem
	net.nextAlphaMem++
	return id
}

// --- token arena --------------------------------------------------------

func (net *Network) newToken(parent TokenID, wme WmeID, node NodeID) TokenID {
	id := net.nextToken
	net.nextToken++
	net.tokens[id] = &Token{ID: id, Parent: parent, Wme: wme, Node: node, NCCOwner: InvalidTokenID}
	if p := net.tokens[parent]; p != nil {
		p.Children = append(p.Children, id)
	}
	return id
}

// forgetProduced destroys every child of t that nodeID itself produced,
// leaving t (and any children produced by a sibling node, such as an
// NCC node's partner circuit) untouched. This is the mechanism behind
// both ordinary LeftRetract propagation and a NOT/NCC node's
// blocked<->open toggle (spec §4.5): the filter by producing node is
// exactly what keeps an NCC's partner-circuit bookkeeping alive while its
// outer continuation is torn down.
func (net *Network) forgetProduced(nodeID NodeID, t TokenID) {
	tok := net.tokens[t]
	if tok == nil {
		return
	}
	var kept []TokenID
	for _, c := range tok.Children {
		if ct := net.tokens[c]; ct != nil && ct.Node == nodeID {
			net.RemoveToken(c)
		} else {
			kept = append(kept, c)
		}
	}
	tok.Children = kept
}

// RemoveToken permanently destroys t: every descendant (recursively,
// regardless of which node produced it), every bookkeeping entry any node
// keeps about t (spec §4.8's "retract all tokens it has emitted,
// recursively, via produced-by back-pointers"), and t's own arena slot.
func (net *Network) RemoveToken(t TokenID) {
	tok := net.tokens[t]
	if tok == nil {
		return
	}
	children := tok.Children
	tok.Children = nil
	for _, c := range children {
		net.RemoveToken(c)
	}
	for _, nid := range tok.StoredIn {
		if owner, ok := net.nodes[nid].(tokenOwner); ok {
			owner.forgetToken(net, t)
		}
	}
	if tok.NCCOwner != InvalidTokenID {
		if owner, ok := net.findNCCOwnerNode(t); ok {
			owner.removeResult(net, tok.NCCOwner, t)
		}
	}
	if tok.Parent != InvalidTokenID && tok.Parent != t {
		if p := net.tokens[tok.Parent]; p != nil {
			p.Children = removeTokenID(p.Children, t)
		}
	}
	delete(net.tokens, t)
}

// findNCCOwnerNode recovers the NCCNode a partner token t belongs to, by
// walking to the node that produced the last join of its partner circuit
// and following that join's NCCPartnerNode successor back to its owning
// NCC. Partner tokens are always produced directly under an
// NCCPartnerNode (tok.Node is the last join; its sole child is the
// NCCPartnerNode), so the owning NCC is recovered from that
// NCCPartnerNode's ncc field.
func (net *Network) findNCCOwnerNode(t TokenID) (*NCCNode, bool) {
	tok := net.tokens[t]
	if tok == nil {
		return nil, false
	}
	producer, ok := net.nodes[tok.Node]
	if !ok {
		return nil, false
	}
	for _, cid := range childrenOf(producer) {
		if pn, ok := net.nodes[cid].(*NCCPartnerNode); ok {
			if ncc, ok := net.nodes[pn.ncc].(*NCCNode); ok {
				return ncc, true
			}
		}
	}
	return nil, false
}

func childrenOf(n interface{}) []NodeID {
	switch v := n.(type) {
	case *BetaMemoryNode:
		return v.children
	case *JoinNode:
		return v.children
	case *NotNode:
		return v.children
	case *NCCNode:
		return v.children
	case *NCCPartnerNode:
		return v.children
	case *TestNode:
		return v.children
	case *ProductionNode:
		return v.children
	}
	return nil
}

// --- working memory -----------------------------------------------------

// Assert inserts fact into working memory, drives it through the alpha
// network and every registered successor's beta-network propagation, and
// returns the WME handle. The network reaches quiescence before Assert
// returns (spec §5: no interleaving of assert/retract with propagation).
func (net *Network) Assert(fact *Fact) WmeID {
	id := net.nextWme
	net.nextWme++
	w := &WME{ID: id, FactID: fact.ID, Fact: fact}
	net.wmes[id] = w
	net.facts[fact.ID] = fact
	net.factWme[fact.ID] = id
	net.Tracer.Logf("assert %s", fact.Shape())
	net.assertToAlpha(w)
	return id
}

// Retract removes the WME for factID from working memory, retracting
// every token chain it participated in.
func (net *Network) Retract(factID FactID) bool {
	wid, ok := net.factWme[factID]
	if !ok {
		return false
	}
	w := net.wmes[wid]
	net.Tracer.Logf("retract %s", w.Fact.Shape())
	net.retractFromAlpha(w)
	delete(net.wmes, wid)
	delete(net.facts, factID)
	delete(net.factWme, factID)
	return true
}

// Fact returns the fact asserted under id, if still present.
func (net *Network) Fact(id FactID) (*Fact, bool) {
	f, ok := net.facts[id]
	return f, ok
}
