// Package flux is the public surface of a fine-grained reactive graph:
// sources, computed derivations, effects, and the scope tree that owns and
// disposes all three. The graph engine itself lives in the internal
// package; this package is generics and ergonomics on top of it.
package flux

import (
	"github.com/wovengraph/flux/internal"
)

// as converts v, which may be nil (a node that never ran), into T's zero
// value rather than panicking on a failed assertion.
func as[T any](v any) T {
	if v == nil {
		var zero T
		return zero
	}
	return v.(T)
}

// hasNode is satisfied by every wrapper type in this package (Source,
// Computed, Readonly) and lets ScopeOf/Dispose reach the underlying node
// through an any boundary.
type hasNode interface {
	rawNode() *internal.Node
}

// Observable is implemented by every reactive readable value. IsObservable
// identifies one through an any boundary the same way the pack's
// alien.isSignalAware() identifies a signal-aware value.
type Observable interface {
	isObservable()
}

// Subject is an Observable that can also be written to.
type Subject interface {
	Observable
	isSubject()
}

// IsObservable reports whether x is a reactive readable value.
func IsObservable(x any) bool {
	_, ok := x.(Observable)
	return ok
}

// IsSubject reports whether x is a writable source.
func IsSubject(x any) bool {
	_, ok := x.(Subject)
	return ok
}

// Root creates a detached scope, runs init under it, and returns init's
// value. init receives a dispose function the caller is responsible for
// invoking to reclaim the scope and everything created under it.
func Root[T any](init func(dispose func()) T) T {
	rt := internal.GetRuntime()
	node := rt.NewScopeNode(nil)

	var result T
	rt.Tracker.Compute(node, nil, func() {
		result = init(node.Dispose)
	})
	return result
}

// Scope is a handle onto a scope node: a carrier of context, error
// handlers, and disposal - but not itself a reactive value.
type Scope struct {
	node *internal.Node
}

func (s Scope) Valid() bool { return s.node != nil }

// OnDispose registers fn on this scope's disposal set and returns a handle
// that, when invoked, runs fn immediately and removes it from the set.
func (s Scope) OnDispose(fn func()) func() {
	if s.node == nil {
		return func() {}
	}
	return onDispose(s.node, fn)
}

func (s Scope) OnError(fn func(any)) {
	if s.node != nil {
		s.node.AddErrorHandler(fn)
	}
}

func (s Scope) SetContext(key, value any) {
	if s.node != nil {
		s.node.SetContext(key, value)
	}
}

func (s Scope) GetContext(key any) (any, bool) {
	if s.node == nil {
		return nil, false
	}
	return s.node.GetContext(key)
}

// Dispose synchronously tears down the scope and its whole subtree.
func (s Scope) Dispose() {
	if s.node != nil {
		s.node.Dispose()
	}
}

// GetScope returns a handle on the currently active scope, or the zero
// Scope (Valid() == false) if nothing is currently running under one.
func GetScope() Scope {
	return Scope{node: internal.GetRuntime().Tracker.CurrentScope()}
}

// ScopeOf returns x's owning scope - the scope that was active when x was
// created - or the zero Scope if x carries no node of its own.
func ScopeOf(x any) Scope {
	hn, ok := x.(hasNode)
	if !ok || hn.rawNode() == nil {
		return Scope{}
	}
	return Scope{node: hn.rawNode().Parent()}
}

func onDispose(scope *internal.Node, fn func()) func() {
	var id uint64
	ran := false
	wrapped := func() {
		if ran {
			return
		}
		ran = true
		fn()
	}
	id = scope.AddDisposal(wrapped)
	return func() {
		scope.RemoveDisposal(id)
		wrapped()
	}
}

// OnDispose registers fn on the current scope's disposal set. Outside of
// any scope it is a no-op and returns a handle that does nothing.
func OnDispose(fn func()) func() {
	return GetScope().OnDispose(fn)
}

// OnError registers fn as an error handler on the current scope. It is a
// no-op outside of any scope.
func OnError(fn func(any)) {
	GetScope().OnError(fn)
}

// SetContext writes key on the current scope. It is a no-op outside of any
// scope.
func SetContext(key, value any) {
	GetScope().SetContext(key, value)
}

// GetContext walks the current scope's parent chain looking for key.
func GetContext(key any) (any, bool) {
	return GetScope().GetContext(key)
}

// Dispose synchronously disposes x and its subtree. x must be a Scope or
// something carrying a node (Source, Computed, or a value wrapping one);
// anything else is a no-op.
func Dispose(x any) {
	if s, ok := x.(Scope); ok {
		s.Dispose()
		return
	}
	if hn, ok := x.(hasNode); ok && hn.rawNode() != nil {
		hn.rawNode().Dispose()
	}
}

// Peek runs fn without registering any dependency links, but keeps the
// current scope for anything fn creates.
func Peek[T any](fn func() T) T {
	var result T
	internal.GetRuntime().Tracker.Peek(func() { result = fn() })
	return result
}

// Untrack runs fn with both dependency tracking and scope parenting
// suppressed.
func Untrack[T any](fn func() T) T {
	var result T
	internal.GetRuntime().Tracker.Untrack(func() { result = fn() })
	return result
}

// Scoped captures the currently active scope and returns a wrapper that
// re-enters it on every call, without itself being a reactive derivation.
// A panic inside fn is routed through the captured scope's error handler
// chain. It propagates to the wrapper's caller when no scope was active
// at capture time, when no handler in the chain handles it, or when it is
// a cyclic dependency error.
func Scoped(fn func()) func() {
	scope := internal.GetRuntime().Tracker.CurrentScope()
	rt := internal.GetRuntime()
	return func() {
		defer func() {
			if r := recover(); r != nil {
				if _, cyclic := r.(*internal.CyclicDependencyError); cyclic || scope == nil {
					panic(r)
				}
				internal.DispatchError(scope, r)
			}
		}()
		rt.Tracker.Compute(scope, nil, fn)
	}
}

// Tick synchronously flushes the scheduler and returns the current tick
// counter.
func Tick() int {
	return internal.GetRuntime().Scheduler.Tick()
}

// GetScheduler exposes the runtime's scheduler directly, for hosts that
// want to drive flushes from their own microtask queue or inspect the
// pending set.
func GetScheduler() *internal.Scheduler {
	return internal.GetRuntime().Scheduler
}
