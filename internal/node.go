package internal

import (
	"sort"

	mapset "github.com/deckarep/golang-set/v2"
)

// Kind identifies what a Node represents. A single struct backs sources,
// derivations and scopes, per the spec's "single polymorphic Node record"
// data model.
type Kind int

const (
	KindScope Kind = iota
	KindSource
	KindDerivation
)

func (k Kind) String() string {
	switch k {
	case KindSource:
		return "source"
	case KindDerivation:
		return "derivation"
	default:
		return "scope"
	}
}

// DirtyFunc decides whether a new value differs from the previous one and
// therefore should trigger invalidation. The default is identity
// inequality, applied by the caller (package flux) before Node ever sees
// the values, since Node itself is untyped.
type DirtyFunc func(old, next any) bool

// Node unifies sources, derivations, effects and scopes. Which fields are
// meaningful depends on Kind: a plain scope has no compute/value, a source
// has a value but no compute, a derivation has both.
type Node struct {
	rt   *Runtime
	Kind Kind
	seq  uint64

	// Label is either a caller-supplied id or a generated one; used only
	// for diagnostics and cyclic-dependency error trails.
	Label string

	value   any
	compute func(*Node) any
	isDirty func(old, next any) bool

	fallback    any
	hasFallback bool

	dirty    bool
	disposed bool
	running  bool // on the compute stack; used for cycle detection
	ran      bool // has completed at least one run attempt

	lastErr any

	isEffect bool

	observers    mapset.Set[*Node]
	dependencies mapset.Set[*Node]

	parent   *Node
	children mapset.Set[*Node]

	disposal   []disposalEntry
	disposalID uint64

	context map[any]any
}

type disposalEntry struct {
	id uint64
	fn func()
}

// NewNode creates a bare node owned by parent (nil for a detached root).
// kind and compute are set by the caller depending on what's being built.
func (rt *Runtime) NewNode(kind Kind, parent *Node) *Node {
	n := &Node{
		rt:           rt,
		Kind:         kind,
		seq:          rt.nextSeq(),
		observers:    mapset.NewSet[*Node](),
		dependencies: mapset.NewSet[*Node](),
		children:     mapset.NewSet[*Node](),
		context:      make(map[any]any),
		parent:       parent,
	}
	n.Label = label(kind, n.seq)
	if parent != nil {
		parent.children.Add(n)
	}
	return n
}

// NewScopeNode creates an ownership-only node (a root, an owner, or a
// plain scope) with no value and no compute body.
func (rt *Runtime) NewScopeNode(parent *Node) *Node {
	return rt.NewNode(KindScope, parent)
}

// NewSourceNode creates a writable node seeded with initial. isDirty
// decides whether a write actually changes the value.
func (rt *Runtime) NewSourceNode(parent *Node, initial any, isDirty DirtyFunc) *Node {
	n := rt.NewNode(KindSource, parent)
	n.value = initial
	n.ran = true
	n.isDirty = isDirty
	return n
}

// NewDerivationNode creates a dirty, not-yet-run computed or effect node.
// The caller is responsible for priming effects (reading them once).
func (rt *Runtime) NewDerivationNode(parent *Node, compute func(*Node) any, isDirty DirtyFunc, isEffect bool) *Node {
	n := rt.NewNode(KindDerivation, parent)
	n.compute = compute
	n.isDirty = isDirty
	n.isEffect = isEffect
	n.dirty = true
	return n
}

func (n *Node) SetFallback(v any) {
	n.fallback = v
	n.hasFallback = true
}

func (n *Node) SetLabel(id string) {
	if id != "" {
		n.Label = id
	}
}

// Seq returns the node's creation order, used to keep sibling notification
// order deterministic.
func (n *Node) Seq() uint64 { return n.seq }

func (n *Node) Disposed() bool  { return n.disposed }
func (n *Node) Dirty() bool     { return n.dirty }
func (n *Node) Parent() *Node   { return n.parent }
func (n *Node) IsEffect() bool  { return n.isEffect }
func (n *Node) SetEffect(v bool) { n.isEffect = v }

func (n *Node) Observers() []*Node    { return n.observers.ToSlice() }
func (n *Node) Dependencies() []*Node { return n.dependencies.ToSlice() }
func (n *Node) Children() []*Node     { return n.children.ToSlice() }

// Value returns the node's last computed or assigned value without any
// tracking side effects. Safe to call after disposal.
func (n *Node) Value() any { return n.value }

// --- tracking -------------------------------------------------------------

// trackRead links the ambient current observer (if any) to dep, in both
// directions. Both directions are materialized deliberately - see
// DESIGN.md - rather than only the observers direction the spec describes
// as sufficient.
func (n *Node) trackRead() {
	t := n.rt.Tracker
	if !t.ShouldTrack() {
		return
	}
	sub := t.currentObserver
	if sub == n || n.disposed {
		return
	}
	n.observers.Add(sub)
	sub.dependencies.Add(n)
}

// --- source semantics ------------------------------------------------------

// ReadSource returns a source's current value, registering a dependency
// link if invoked during a tracked execution.
func (n *Node) ReadSource() any {
	n.trackRead()
	return n.value
}

// WriteSource stores next if it differs from the current value (per
// isDirty), enqueueing every observer to the scheduler. A write to a
// disposed source is a silent no-op.
func (n *Node) WriteSource(next any) {
	if n.disposed {
		return
	}
	if n.ran && !n.isDirty(n.value, next) {
		return
	}
	n.value = next
	n.ran = true
	n.notifyObservers()
}

// --- derivation semantics ---------------------------------------------------

// ReadDerivation implements the five-step read semantics of spec §4.3.
func (n *Node) ReadDerivation() any {
	n.trackRead()

	if n.running {
		panic(newCyclicError(n.rt.Tracker.trail(n)))
	}

	if !n.dirty {
		return n.value
	}
	if n.disposed {
		return n.value
	}

	n.recompute()
	return n.value
}

// recompute runs a derivation's body under full tracking, applying the
// error-handling and dirty-predicate rules of §4.3 and §4.4.
func (n *Node) recompute() {
	n.disposeChildren()
	n.runDisposalCallbacks()
	n.clearErrorHandlers()
	n.clearDependencies()

	t := n.rt.Tracker
	t.pushCompute(n)
	n.running = true

	var result any
	var caught any
	func() {
		defer func() {
			if r := recover(); r != nil {
				caught = r
			}
		}()
		t.Compute(n, n, func() {
			result = n.compute(n)
		})
	}()

	n.running = false
	t.popCompute()

	if caught != nil {
		// Cyclic-dependency errors bypass fallback/handler-chain treatment
		// entirely and propagate straight to the caller that triggered the
		// recompute, per the cycle-detection contract.
		if cyc, ok := caught.(*CyclicDependencyError); ok {
			panic(cyc)
		}
		n.handleComputeError(caught)
		return
	}

	changed := !n.ran || n.isDirty(n.value, result)
	n.ran = true
	n.value = result
	n.dirty = false
	n.lastErr = nil

	if changed {
		n.notifyObservers()
	}
}

func (n *Node) handleComputeError(caught any) {
	firstRun := !n.ran
	n.ran = true
	n.dirty = false
	n.lastErr = caught

	if firstRun && n.hasFallback {
		n.value = n.fallback
	}
	// otherwise n.value already holds the previous value - leave it alone.

	dispatchError(n, caught)
}

// notifyObservers enqueues every observer to the scheduler, marking it
// dirty, in deterministic (creation-order) order.
func (n *Node) notifyObservers() {
	obs := n.observers.ToSlice()
	sort.Slice(obs, func(i, j int) bool { return obs[i].seq < obs[j].seq })
	for _, o := range obs {
		if o.disposed {
			n.observers.Remove(o) // lazily prune stale links
			continue
		}
		o.dirty = true
		n.rt.Scheduler.Enqueue(o)
	}
}

// clearDependencies drops every dependency link this node currently holds,
// removing itself from each dependency's observer set. Called before each
// recompute since dependencies are rediscovered dynamically on every run.
func (n *Node) clearDependencies() {
	deps := n.dependencies.ToSlice()
	n.dependencies.Clear()
	for _, dep := range deps {
		dep.observers.Remove(n)
	}
}

// --- scope / disposal -------------------------------------------------------

// AddDisposal registers fn to run when n's current run ends (recompute or
// permanent disposal) and returns an id that RemoveDisposal can use to
// cancel it early.
func (n *Node) AddDisposal(fn func()) uint64 {
	n.disposalID++
	id := n.disposalID
	n.disposal = append(n.disposal, disposalEntry{id: id, fn: fn})
	return id
}

func (n *Node) RemoveDisposal(id uint64) {
	for i, d := range n.disposal {
		if d.id == id {
			n.disposal = append(n.disposal[:i], n.disposal[i+1:]...)
			return
		}
	}
}

func (n *Node) runDisposalCallbacks() {
	cbs := n.disposal
	n.disposal = nil
	for _, d := range cbs {
		d.fn()
	}
}

func (n *Node) disposeChildren() {
	kids := n.children.ToSlice()
	n.children.Clear()
	for _, c := range kids {
		c.Dispose()
	}
}

// Dispose tears down n and its entire subtree: children first, then this
// node's own disposal callbacks, then its links. Idempotent.
func (n *Node) Dispose() {
	if n.disposed {
		return
	}
	n.disposeChildren()
	n.runDisposalCallbacks()

	if n.parent != nil {
		n.parent.children.Remove(n)
	}

	deps := n.dependencies.ToSlice()
	n.dependencies.Clear()
	for _, dep := range deps {
		dep.observers.Remove(n)
	}

	obs := n.observers.ToSlice()
	n.observers.Clear()
	for _, o := range obs {
		o.dependencies.Remove(n)
	}

	n.disposed = true

	for _, h := range n.rt.disposeHooks {
		h(n)
	}
}

// --- context -----------------------------------------------------------------

func (n *Node) SetContext(key, value any) {
	n.context[key] = value
}

func (n *Node) GetContext(key any) (any, bool) {
	for s := n; s != nil; s = s.parent {
		if v, ok := s.context[key]; ok {
			return v, true
		}
	}
	return nil, false
}
