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

// Activation is one complete match of a rule's LHS: a token together with
// the rule it completes. The agenda orders activations and pops them for
// firing (spec §5).
type Activation struct {
	Token    TokenID
	Node     NodeID // the ProductionNode that activated, for binding resolution at fire time
	Rule     string
	Module   string
	Salience int
	Seq      uint64 // assertion-recency tiebreak, assigned by the agenda on registration
}

// AgendaSink receives activation lifecycle events from a ProductionNode.
// rete does not depend on the agenda package directly (it would be a
// backwards import, rete -> agenda, when compile/engine wire agenda ->
// rete); the engine supplies this at network construction time.
type AgendaSink interface {
	Activate(a Activation)
	Deactivate(module, rule string, t TokenID)
}

// ProductionNode is the terminal node of a rule's LHS: every token that
// reaches it is a complete match, registered with the agenda as an
// activation and deregistered on retraction (spec §4.7).
type ProductionNode struct {
	nodeBase
	rule     string
	module   string
	salience int
	sink     AgendaSink
	active   map[TokenID]bool
}

// NewProductionNode constructs a rule's terminal node under id.
func (net *Network) NewProductionNode(id NodeID, rule, module string, salience int, sink AgendaSink) *ProductionNode {
	return &ProductionNode{
		nodeBase: nodeBase{id: id},
		rule:     rule,
		module:   module,
		salience: salience,
		sink:     sink,
		active:   map[TokenID]bool{},
	}
}

func (n *ProductionNode) Tokens(net *Network) []TokenID {
	out := make([]TokenID, 0, len(n.active))
	for t := range n.active {
		out = append(out, t)
	}
	return out
}

func (n *ProductionNode) LeftActivate(net *Network, t TokenID) {
	n.active[t] = true
	net.tokens[t].StoredIn = append(net.tokens[t].StoredIn, n.id)
	n.sink.Activate(Activation{Token: t, Node: n.id, Rule: n.rule, Module: n.module, Salience: n.salience})
}

func (n *ProductionNode) LeftRetract(net *Network, t TokenID) {
	n.forgetToken(net, t)
}

func (n *ProductionNode) forgetToken(net *Network, t TokenID) {
	if n.active[t] {
		delete(n.active, t)
		n.sink.Deactivate(n.module, n.rule, t)
	}
}
