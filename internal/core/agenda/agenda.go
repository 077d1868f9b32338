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

// Package agenda implements the conflict set and its firing order (spec
// §4.7): an AgendaSink that collects a ProductionNode's activations and
// deactivations, a pluggable Comparator that orders the conflict set for
// firing, and a module focus stack implementing auto-focus.
package agenda

import "clips.dev/go/internal/core/rete"

// Entry is one activation sitting in the conflict set, enriched with the
// registration order of the rule it completes (the default comparator's
// final tiebreak; spec §4.7's "rule-registration-order").
type Entry struct {
	rete.Activation
	Order uint64
}

// Comparator orders two conflict-set entries. Less(a, b) reports whether a
// should fire before b. The agenda keeps this pluggable (spec's Non-goal
// excludes shipping a library of conflict-resolution strategies, but not
// the hook itself): an embedder can substitute breadth, depth, LEX, random,
// or any other strategy without touching the network or compiler.
type Comparator interface {
	Less(net *rete.Network, a, b Entry) bool
}

// Default is the comparator spec.md §4.7 mandates: salience descending,
// then assertion-recency descending (the most recently completed match
// fires first), then rule-registration-order ascending (among activations
// tied on both, the rule that was defined first fires first).
var Default Comparator = defaultComparator{}

type defaultComparator struct{}

func (defaultComparator) Less(_ *rete.Network, a, b Entry) bool {
	if a.Salience != b.Salience {
		return a.Salience > b.Salience
	}
	if a.Seq != b.Seq {
		return a.Seq > b.Seq
	}
	return a.Order < b.Order
}

// MEA is a means-ends-analysis-style comparator: after salience, it compares
// the two activations' bound fact-id vectors lexicographically (the
// activation built from the most recently asserted facts, read oldest
// pattern to newest, wins), falling back to Default's recency/order
// tiebreak only when the vectors are equal (spec SPEC_FULL.md §C.2). It
// exists to exercise the Comparator hook end to end, not as the engine's
// default.
type MEA struct{}

func (MEA) Less(net *rete.Network, a, b Entry) bool {
	if a.Salience != b.Salience {
		return a.Salience > b.Salience
	}
	av, bv := net.TokenFacts(a.Token), net.TokenFacts(b.Token)
	if c := compareFactVectors(av, bv); c != 0 {
		return c > 0
	}
	return Default.Less(net, a, b)
}

func compareFactVectors(a, b []rete.FactID) int {
	for i := 0; i < len(a) && i < len(b); i++ {
		if a[i] != b[i] {
			if a[i] > b[i] {
				return 1
			}
			return -1
		}
	}
	switch {
	case len(a) > len(b):
		return 1
	case len(a) < len(b):
		return -1
	default:
		return 0
	}
}

// mainModule is the module focused by default when an engine starts, CLIPS's
// documented initial state.
const mainModule = "MAIN"

// Agenda is the conflict set plus firing order for one engine. It
// implements rete.AgendaSink, so a compiled ProductionNode can report
// straight into it.
type Agenda struct {
	net *rete.Network
	cmp Comparator

	pending []Entry
	seq     uint64

	order      map[string]uint64
	nextOrder  uint64
	autoFocus  map[string]bool
	focusStack []string
	lastFired  string
}

// New returns an agenda ordering its conflict set with cmp (Default if nil),
// reading fact bindings for comparators that need them from net.
func New(net *rete.Network, cmp Comparator) *Agenda {
	if cmp == nil {
		cmp = Default
	}
	return &Agenda{
		net:        net,
		cmp:        cmp,
		order:      map[string]uint64{},
		autoFocus:  map[string]bool{},
		focusStack: []string{mainModule},
	}
}

func ruleKey(module, rule string) string { return module + "\x00" + rule }

// RegisterRule assigns module/rule a stable registration order and records
// its auto-focus declaration, ahead of any activation. The engine calls
// this once per rule at compile time; a rule activated without having been
// registered first (a test wiring a ProductionNode directly) is registered
// lazily with auto-focus off.
func (a *Agenda) RegisterRule(module, rule string, autoFocus bool) {
	key := ruleKey(module, rule)
	if _, ok := a.order[key]; ok {
		return
	}
	a.order[key] = a.nextOrder
	a.nextOrder++
	a.autoFocus[key] = autoFocus
}

// Activate implements rete.AgendaSink: it adds the activation to the
// conflict set, stamping it with an assertion-recency sequence number, and,
// if the rule was declared with auto-focus, pushes its module onto the
// focus stack (SPEC_FULL.md §C.3).
func (a *Agenda) Activate(act rete.Activation) {
	key := ruleKey(act.Module, act.Rule)
	a.RegisterRule(act.Module, act.Rule, false)
	a.seq++
	act.Seq = a.seq
	if a.autoFocus[key] {
		a.pushFocus(act.Module)
	}
	a.pending = append(a.pending, Entry{Activation: act, Order: a.order[key]})
}

// Deactivate implements rete.AgendaSink: it removes a no-longer-valid
// activation from the conflict set, if it is still pending (it may already
// have been fired and popped).
func (a *Agenda) Deactivate(module, rule string, t rete.TokenID) {
	for i, e := range a.pending {
		if e.Token == t && e.Module == module && e.Rule == rule {
			a.pending = append(a.pending[:i], a.pending[i+1:]...)
			return
		}
	}
}

func (a *Agenda) pushFocus(module string) {
	if len(a.focusStack) > 0 && a.focusStack[len(a.focusStack)-1] == module {
		return
	}
	a.focusStack = append(a.focusStack, module)
}

// currentFocus returns the module at the top of the focus stack, popping
// any focus with nothing left pending in it first (control returns to the
// module beneath once the focused module's agenda is exhausted).
func (a *Agenda) currentFocus() string {
	for len(a.focusStack) > 1 && !a.hasPendingIn(a.focusStack[len(a.focusStack)-1]) {
		a.focusStack = a.focusStack[:len(a.focusStack)-1]
	}
	return a.focusStack[len(a.focusStack)-1]
}

func (a *Agenda) hasPendingIn(module string) bool {
	for _, e := range a.pending {
		if e.Module == module {
			return true
		}
	}
	return false
}

// Peek returns the activation that would fire next, without removing it
// from the conflict set. Only activations in the module currently at the
// top of the focus stack are eligible.
func (a *Agenda) Peek() (Entry, bool) {
	focus := a.currentFocus()
	best := -1
	for i, e := range a.pending {
		if e.Module != focus {
			continue
		}
		if best == -1 || a.cmp.Less(a.net, e, a.pending[best]) {
			best = i
		}
	}
	if best == -1 {
		return Entry{}, false
	}
	return a.pending[best], true
}

// Pop removes and returns the activation Peek would have returned. Firing
// an activation whose module differs from the previously fired one pushes
// that module onto the focus stack (CLIPS's documented cross-module focus
// behavior, independent of any rule's own auto-focus declaration).
func (a *Agenda) Pop() (Entry, bool) {
	focus := a.currentFocus()
	best := -1
	for i, e := range a.pending {
		if e.Module != focus {
			continue
		}
		if best == -1 || a.cmp.Less(a.net, e, a.pending[best]) {
			best = i
		}
	}
	if best == -1 {
		return Entry{}, false
	}
	e := a.pending[best]
	a.pending = append(a.pending[:best], a.pending[best+1:]...)
	if a.lastFired != "" && a.lastFired != e.Module {
		a.pushFocus(e.Module)
	}
	a.lastFired = e.Module
	return e, true
}

// Len reports the number of activations currently in the conflict set,
// across every module (not just the focused one).
func (a *Agenda) Len() int { return len(a.pending) }

// Focus returns the module currently at the top of the focus stack.
func (a *Agenda) Focus() string { return a.currentFocus() }

// ClearFocusStack resets the focus stack to just MAIN, for `reset`/`clear`.
func (a *Agenda) ClearFocusStack() {
	a.focusStack = []string{mainModule}
	a.lastFired = ""
}
