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

// NotNode implements a (not <CE>) condition element: a token propagates
// exactly while zero WMEs in its alpha memory satisfy the join tests
// against it (spec §4.5). Unlike Join, it mints no new token — the
// left-parent token itself propagates through, carrying no WME
// contribution of its own.
type NotNode struct {
	nodeBase
	leftParent NodeID
	alphaMem   AlphaMemID
	tests      []JoinTest
	counts     map[TokenID]int
	tokens     []TokenID
}

// NewNotNode constructs a NOT node under id, between leftParent's token
// store and the WMEs of am. As with JoinNode, the caller must both
// register it as a child of leftParent and attach it as a right-successor
// of am.
func (net *Network) NewNotNode(id, leftParent NodeID, am AlphaMemID, tests []JoinTest) *NotNode {
	return &NotNode{
		nodeBase:   nodeBase{id: id},
		leftParent: leftParent,
		alphaMem:   am,
		tests:      tests,
		counts:     map[TokenID]int{},
	}
}

// Tokens returns only the tokens currently propagating (zero blocking
// WMEs); a blocked token is not visible to children or replay.
func (n *NotNode) Tokens(net *Network) []TokenID {
	var out []TokenID
	for _, t := range n.tokens {
		if n.counts[t] == 0 {
			out = append(out, t)
		}
	}
	return out
}

// LeftActivate records t and counts its current right-matches; t
// propagates only if that count is zero.
func (n *NotNode) LeftActivate(net *Network, t TokenID) {
	count := 0
	am := net.alphaMems[n.alphaMem]
	for _, wid := range am.wmes {
		if passesAll(net, n.tests, t, net.wmes[wid]) {
			count++
		}
	}
	n.counts[t] = count
	n.tokens = append(n.tokens, t)
	net.tokens[t].StoredIn = append(net.tokens[t].StoredIn, n.id)
	if count == 0 {
		net.propagateLeft(n.children, t)
	}
}

func (n *NotNode) LeftRetract(net *Network, t TokenID) {
	net.forgetProduced(n.id, t)
}

func (n *NotNode) forgetToken(net *Network, t TokenID) {
	delete(n.counts, t)
	n.tokens = removeTokenID(n.tokens, t)
}

// RightActivate increments every blocking token's count; a 0->1
// transition retracts whatever that token had propagated.
func (n *NotNode) RightActivate(net *Network, wid WmeID) {
	w := net.wmes[wid]
	for _, t := range n.tokens {
		if !passesAll(net, n.tests, t, w) {
			continue
		}
		n.counts[t]++
		if n.counts[t] == 1 {
			net.retractLeft(n.children, t)
		}
	}
}

// RightRetract decrements every token the removed WME had been blocking;
// a 1->0 transition re-propagates it.
func (n *NotNode) RightRetract(net *Network, wid WmeID) {
	w := net.wmes[wid]
	for _, t := range n.tokens {
		if !passesAll(net, n.tests, t, w) {
			continue
		}
		n.counts[t]--
		if n.counts[t] == 0 {
			net.propagateLeft(n.children, t)
		}
	}
}
