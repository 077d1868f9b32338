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

// TestNode evaluates a side-effect-free predicate against a token alone
// (a (test ...) CE, spec §4.6) and forwards it unchanged when it passes.
// It mints no new token: the same token continues into its children,
// consistent with it being a pure filter rather than a binding source.
type TestNode struct {
	nodeBase
	predicate func(net *Network, t TokenID) bool
	passing   []TokenID
}

// NewTestNode constructs a test node under id, evaluating predicate
// against every token it receives.
func (net *Network) NewTestNode(id NodeID, predicate func(net *Network, t TokenID) bool) *TestNode {
	return &TestNode{nodeBase: nodeBase{id: id}, predicate: predicate}
}

func (n *TestNode) Tokens(net *Network) []TokenID { return n.passing }

func (n *TestNode) LeftActivate(net *Network, t TokenID) {
	if !n.predicate(net, t) {
		return
	}
	n.passing = append(n.passing, t)
	net.tokens[t].StoredIn = append(net.tokens[t].StoredIn, n.id)
	net.propagateLeft(n.children, t)
}

func (n *TestNode) LeftRetract(net *Network, t TokenID) {
	net.forgetProduced(n.id, t)
}

func (n *TestNode) forgetToken(net *Network, t TokenID) {
	n.passing = removeTokenID(n.passing, t)
}
