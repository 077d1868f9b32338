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

// tokenStore is implemented by every node kind that can serve as a join's
// left parent: it exposes the token set the join iterates on
// RightActivate, and lets AddNode seed a newly attached child with
// whatever tokens already exist (a rule sharing an already-populated
// prefix with an earlier one). A join computes this on demand, since
// unlike a beta memory it keeps no bookkeeping of its own.
type tokenStore interface {
	Node
	Tokens(net *Network) []TokenID
}

// tokenOwner is implemented by node kinds that keep bookkeeping keyed by a
// token's own identity (as opposed to Children, which every token has
// regardless of which node produced it). RemoveToken dispatches to every
// node a token is StoredIn so that bookkeeping is forgotten alongside the
// arena slot.
type tokenOwner interface {
	Node
	forgetToken(net *Network, t TokenID)
}

// BetaMemoryNode stores every token it has received and forwards new ones
// to its registered children (further joins), per spec §4.4.
type BetaMemoryNode struct {
	nodeBase
	tokens []TokenID
}

// NewBetaMemoryNode constructs a beta memory under id (allocated via
// Network.NewNodeID), seeding it with every token its left parent already
// holds (a memory attached after matches already exist must still see
// them).
func (net *Network) NewBetaMemoryNode(id NodeID, leftParent NodeID) *BetaMemoryNode {
	n := &BetaMemoryNode{nodeBase: nodeBase{id: id}}
	for _, t := range net.tokenStoreOf(leftParent).Tokens(net) {
		n.tokens = append(n.tokens, t)
		net.tokens[t].StoredIn = append(net.tokens[t].StoredIn, id)
	}
	return n
}

func (n *BetaMemoryNode) Tokens(net *Network) []TokenID { return n.tokens }

func (n *BetaMemoryNode) LeftActivate(net *Network, t TokenID) {
	n.tokens = append(n.tokens, t)
	net.tokens[t].StoredIn = append(net.tokens[t].StoredIn, n.id)
	net.propagateLeft(n.children, t)
}

func (n *BetaMemoryNode) LeftRetract(net *Network, t TokenID) {
	net.forgetProduced(n.id, t)
}

func (n *BetaMemoryNode) forgetToken(net *Network, t TokenID) {
	n.tokens = removeTokenID(n.tokens, t)
}

// JoinNode combines a left parent's tokens with a right alpha memory's
// WMEs, applying its join tests to each candidate pair (spec §4.4). It is
// both left- and right-activatable.
type JoinNode struct {
	nodeBase
	leftParent NodeID
	alphaMem   AlphaMemID
	tests      []JoinTest
}

// NewJoinNode constructs a join under id, between leftParent's token
// store and the WMEs of alphaMem. The caller is responsible for both
// registering it as a child of leftParent (AddNode) and attaching it as a
// right-successor of alphaMem (AttachRightSuccessor) — the two
// activation sources a join has, per spec §4.4.
func (net *Network) NewJoinNode(id, leftParent NodeID, alphaMem AlphaMemID, tests []JoinTest) *JoinNode {
	return &JoinNode{nodeBase: nodeBase{id: id}, leftParent: leftParent, alphaMem: alphaMem, tests: tests}
}

func (n *JoinNode) LeftActivate(net *Network, t TokenID) {
	am := net.alphaMems[n.alphaMem]
	for _, wid := range am.wmes {
		w := net.wmes[wid]
		if passesAll(net, n.tests, t, w) {
			child := net.newToken(t, wid, n.id)
			net.propagateLeft(n.children, child)
		}
	}
}

func (n *JoinNode) LeftRetract(net *Network, t TokenID) {
	net.forgetProduced(n.id, t)
}

func (n *JoinNode) RightActivate(net *Network, wid WmeID) {
	w := net.wmes[wid]
	for _, t := range net.tokenStoreOf(n.leftParent).Tokens(net) {
		if passesAll(net, n.tests, t, w) {
			child := net.newToken(t, wid, n.id)
			net.propagateLeft(n.children, child)
		}
	}
}

func (n *JoinNode) RightRetract(net *Network, wid WmeID) {
	for _, t := range net.tokenStoreOf(n.leftParent).Tokens(net) {
		tok := net.tokens[t]
		if tok == nil {
			continue
		}
		for _, c := range append([]TokenID(nil), tok.Children...) {
			ct := net.tokens[c]
			if ct != nil && ct.Node == n.id && ct.Wme == wid {
				net.RemoveToken(c)
			}
		}
	}
}

// Tokens computes the set of tokens this join has produced, on demand: a
// join keeps no bookkeeping of its own (spec §4.4), so its output is
// recovered by filtering its left parent's tokens' Children by producing
// node. Used when another rule attaches a new child to a join shared as a
// common LHS prefix and that child must see matches already produced.
func (n *JoinNode) Tokens(net *Network) []TokenID {
	var out []TokenID
	for _, t := range net.tokenStoreOf(n.leftParent).Tokens(net) {
		if tok := net.tokens[t]; tok != nil {
			for _, c := range tok.Children {
				if ct := net.tokens[c]; ct != nil && ct.Node == n.id {
					out = append(out, c)
				}
			}
		}
	}
	return out
}

func removeTokenID(s []TokenID, id TokenID) []TokenID {
	for i, v := range s {
		if v == id {
			return append(s[:i], s[i+1:]...)
		}
	}
	return s
}

func removeNodeID(s []NodeID, id NodeID) []NodeID {
	for i, v := range s {
		if v == id {
			return append(s[:i], s[i+1:]...)
		}
	}
	return s
}
