// Package internal implements the reactive graph engine: node storage,
// ambient tracking context, the microtask-coalesced scheduler, and the
// scope/context/error machinery. The public surface lives in package flux;
// this package has no knowledge of the generic wrappers built on top of it.
package internal

import "sync/atomic"

// Runtime bundles everything a single reactive graph needs: the ambient
// tracking slots and the scheduler that coalesces invalidations into
// flushes. Most hosts only ever need the package-level Default.
type Runtime struct {
	Tracker   *Tracker
	Scheduler *Scheduler

	seq uint64

	disposeHooks   []func(*Node)
	exhaustedHooks []func(*Node, any)
}

func NewRuntime() *Runtime {
	rt := &Runtime{
		Tracker: NewTracker(),
	}
	rt.Scheduler = NewScheduler(rt)
	return rt
}

// OnNodeDisposed registers fn to run every time a node completes permanent
// disposal (not the disposeChildren/runDisposalCallbacks a recompute runs
// on itself before re-running). The diagnostics logger is the only caller
// today.
func (rt *Runtime) OnNodeDisposed(fn func(*Node)) {
	rt.disposeHooks = append(rt.disposeHooks, fn)
}

// OnHandlerChainExhausted registers fn to run when dispatchError walks all
// the way to the root without finding a handler that completes without
// itself panicking, just before the error re-panics to its caller.
func (rt *Runtime) OnHandlerChainExhausted(fn func(*Node, any)) {
	rt.exhaustedHooks = append(rt.exhaustedHooks, fn)
}

// nextSeq returns a monotonically increasing creation sequence, used to
// order sibling notifications deterministically and to derive stable
// labels for anonymous nodes.
func (rt *Runtime) nextSeq() uint64 {
	return atomic.AddUint64(&rt.seq, 1)
}

// Default is the process-wide runtime. The spec's concurrency model is
// single-threaded cooperative by design (no cross-thread reactivity), so a
// single shared instance - rather than one runtime per goroutine - is the
// correct shape here.
var Default = NewRuntime()

func GetRuntime() *Runtime { return Default }
