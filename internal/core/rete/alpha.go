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
	"strconv"

	"clips.dev/go/clips/ast"
)

// AlphaTest is a single intra-pattern constant test, applied to one WME
// field independent of any token (spec §4.3). A type test (ast.OpTypeIs)
// sets IsType instead of Op/Literal.
type AlphaTest struct {
	Field   FieldRef
	Op      JoinTestOp
	Literal Value
	IsType  bool
	Kind    ast.ValueKind
}

func (t AlphaTest) accepts(w *WME) bool {
	v, ok := w.Fact.Field(t.Field)
	if !ok {
		return false
	}
	if t.IsType {
		return v.Kind == t.Kind
	}
	switch t.Op {
	case TestEq:
		return Equal(v, t.Literal)
	case TestNeq:
		return !Equal(v, t.Literal)
	case TestLt, TestLte, TestGt, TestGte:
		c, ok := Compare(v, t.Literal)
		if !ok {
			return false
		}
		switch t.Op {
		case TestLt:
			return c < 0
		case TestLte:
			return c <= 0
		case TestGt:
			return c > 0
		case TestGte:
			return c >= 0
		}
	}
	return false
}

func (t AlphaTest) key() string {
	if t.IsType {
		return t.Field.Slot + "#" + strconv.Itoa(t.Field.Index) + "#type#" + strconv.Itoa(int(t.Kind))
	}
	return t.Field.Slot + "#" + strconv.Itoa(t.Field.Index) + "#" + strconv.Itoa(int(t.Op)) + "#" + t.Literal.String()
}

// AlphaMemory holds every WME currently matching the chain of tests from
// the shape root down to this trie node, and the right-successors (Join,
// Not) registered against it (spec §4.3).
type AlphaMemory struct {
	id         AlphaMemID
	wmes       []WmeID
	successors []NodeID
}

func (am *AlphaMemory) ID() AlphaMemID { return am.id }

// WMEs returns the WMEs currently in this alpha memory, for a join's
// RightActivate-time iteration and for a newly attached join's initial
// seeding.
func (am *AlphaMemory) WMEs() []WmeID { return am.wmes }

// alphaNode is one trie node: reached from its parent by a single
// AlphaTest, sharing that prefix with every sibling chain that begins with
// the same tests (spec §4.3, node sharing).
type alphaNode struct {
	test     AlphaTest
	children map[string]*alphaNode
	mem      *AlphaMemID // non-nil once this trie node has been materialized into a memory
}

func newAlphaNode(test AlphaTest) *alphaNode {
	return &alphaNode{test: test, children: map[string]*alphaNode{}}
}

// alphaRoot is the entry trie node for one fact shape (template name or
// ordered-fact arity), with no test of its own: every WME of that shape
// reaches it.
type alphaRoot struct {
	mem      *AlphaMemID
	children map[string]*alphaNode
}

func newAlphaRoot() *alphaRoot { return &alphaRoot{children: map[string]*alphaNode{}} }

// AlphaNetwork dispatches asserted/retracted WMEs into the discrimination
// trie keyed by fact shape (spec §4.3).
type AlphaNetwork struct {
	roots map[string]*alphaRoot
}

func newAlphaNetwork() *AlphaNetwork {
	return &AlphaNetwork{roots: map[string]*alphaRoot{}}
}

// EnsureMemory walks/extends the trie for shape, along the given ordered
// chain of tests, and returns the AlphaMemID of the memory at the chain's
// last node (the shape root's memory when tests is empty), materializing
// and sharing it. Intermediate trie nodes are created as needed but get no
// memory of their own from this call.
func (net *Network) EnsureMemory(shape string, tests []AlphaTest) AlphaMemID {
	root, ok := net.alpha.roots[shape]
	if !ok {
		root = newAlphaRoot()
		net.alpha.roots[shape] = root
	}
	if len(tests) == 0 {
		return net.materializeRoot(root)
	}
	children := root.children
	var node *alphaNode
	for i, t := range tests {
		k := t.key()
		n, ok := children[k]
		if !ok {
			n = newAlphaNode(t)
			children[k] = n
		}
		node = n
		if i == len(tests)-1 {
			break
		}
		children = node.children
	}
	return net.materializeNode(node)
}

func (net *Network) materializeRoot(root *alphaRoot) AlphaMemID {
	if root.mem != nil {
		return *root.mem
	}
	id := net.newAlphaMemID()
	am := &AlphaMemory{id: id}
	net.alphaMems[id] = am
	root.mem = &id
	return id
}

func (net *Network) materializeNode(n *alphaNode) AlphaMemID {
	if n.mem != nil {
		return *n.mem
	}
	id := net.newAlphaMemID()
	am := &AlphaMemory{id: id}
	net.alphaMems[id] = am
	n.mem = &id
	return id
}

// AttachRightSuccessor registers node as a right-successor of the alpha
// memory, and immediately right-activates it for every WME already in the
// memory (a join/not attached after assertions have already happened must
// still see them).
func (net *Network) AttachRightSuccessor(amID AlphaMemID, node NodeID) {
	am := net.alphaMems[amID]
	am.successors = append(am.successors, node)
	for _, w := range am.wmes {
		net.rightActivatable(node).RightActivate(net, w)
	}
}

// assertToAlpha pushes a newly asserted WME through every trie branch of
// its shape, inserting it into each matching alpha memory and
// right-activating every registered successor, in registration order.
func (net *Network) assertToAlpha(w *WME) {
	root, ok := net.alpha.roots[w.Fact.Shape()]
	if !ok {
		return
	}
	if root.mem != nil {
		net.insertIntoAlphaMem(*root.mem, w)
	}
	net.walkAlphaChildren(root.children, w)
}

func (net *Network) walkAlphaChildren(children map[string]*alphaNode, w *WME) {
	for _, n := range children {
		if !n.test.accepts(w) {
			continue
		}
		if n.mem != nil {
			net.insertIntoAlphaMem(*n.mem, w)
		}
		net.walkAlphaChildren(n.children, w)
	}
}

func (net *Network) insertIntoAlphaMem(id AlphaMemID, w *WME) {
	am := net.alphaMems[id]
	am.wmes = append(am.wmes, w.ID)
	w.AlphaMems = append(w.AlphaMems, id)
	for _, s := range am.successors {
		net.rightActivatable(s).RightActivate(net, w.ID)
	}
}

// retractFromAlpha removes w from every alpha memory it was inserted into
// and right-retracts every registered successor of each, in the same
// order the memories were recorded on the WME.
func (net *Network) retractFromAlpha(w *WME) {
	for _, id := range w.AlphaMems {
		am := net.alphaMems[id]
		am.wmes = removeWmeID(am.wmes, w.ID)
		for _, s := range am.successors {
			net.rightActivatable(s).RightRetract(net, w.ID)
		}
	}
}

func removeWmeID(s []WmeID, id WmeID) []WmeID {
	for i, v := range s {
		if v == id {
			return append(s[:i], s[i+1:]...)
		}
	}
	return s
}
