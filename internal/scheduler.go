package internal

import "time"

// Scheduler is the microtask-coalesced queue described in spec §4.5: a
// pending set that preserves first-insertion order, drained synchronously
// by Flush, with a tick counter that advances once per flush.
type Scheduler struct {
	rt *Runtime

	pending    []*Node
	pendingSet map[*Node]bool

	served map[*Node]int
	tick   int

	scheduled bool
	flushing  bool

	onFlushHooks []func()

	// Microtask is the host collaborator: when set, Enqueue asks it to
	// schedule a Flush call on the host's next microtask instead of
	// leaving the pending set to be drained by an explicit Tick/Flush
	// call. Nil by default - the runtime has no threads of its own and
	// will not invent one; a host embedding it for an event loop wires
	// this up once at startup.
	Microtask func(func())

	// statsRecorders, populated by AddStatsRecorder, are each fed the
	// duration and node count of every flush - the diagnostics package's
	// FlushStats and structured logger attach independently here.
	statsRecorders []func(time.Duration, int)
}

func NewScheduler(rt *Runtime) *Scheduler {
	return &Scheduler{
		rt:         rt,
		pendingSet: make(map[*Node]bool),
		served:     make(map[*Node]int),
	}
}

// Enqueue adds node to the pending set, preserving first-insertion order,
// and asks the host to schedule a flush if one isn't already pending.
func (s *Scheduler) Enqueue(node *Node) {
	if node.disposed {
		return
	}
	if s.pendingSet[node] {
		return
	}
	s.pendingSet[node] = true
	s.pending = append(s.pending, node)

	if !s.scheduled {
		s.scheduled = true
		if s.Microtask != nil {
			s.Microtask(s.Flush)
		}
	}
}

// Flush synchronously drains the pending set in enqueue order. Nodes
// enqueued while draining (because an earlier node's recompute changed a
// value that dirtied further observers) are processed within this same
// flush, per the ordering guarantee in §4.5.
func (s *Scheduler) Flush() {
	if s.flushing {
		return
	}
	s.flushing = true
	s.scheduled = false
	s.tick++
	processed := 0
	start := time.Now()

	defer func() {
		s.flushing = false
		for _, hook := range s.onFlushHooks {
			hook()
		}
		for _, rec := range s.statsRecorders {
			rec(time.Since(start), processed)
		}
	}()

	for len(s.pending) > 0 {
		node := s.pending[0]
		s.pending = s.pending[1:]
		delete(s.pendingSet, node)
		s.served[node] = s.tick
		processed++

		if !node.disposed {
			node.ReadDerivation()
		}
	}
}

// Served reports whether node was enqueued in the current or most
// recently completed flush.
func (s *Scheduler) Served(node *Node) bool {
	return s.served[node] == s.tick
}

// OnFlush registers a post-flush hook, used in development builds to
// reset any per-flush call-stack bookkeeping.
func (s *Scheduler) OnFlush(cb func()) {
	s.onFlushHooks = append(s.onFlushHooks, cb)
}

// Tick performs a synchronous flush and returns the current tick counter.
func (s *Scheduler) Tick() int {
	s.Flush()
	return s.tick
}

func (s *Scheduler) CurrentTick() int { return s.tick }

// AddStatsRecorder registers fn to be called with the duration and node
// count of every future flush. Multiple recorders can coexist - the
// percentile stats table and the structured logger each attach their own.
func (s *Scheduler) AddStatsRecorder(fn func(time.Duration, int)) {
	s.statsRecorders = append(s.statsRecorders, fn)
}

// Pending reports how many nodes are currently queued, for diagnostics.
func (s *Scheduler) Pending() int { return len(s.pending) }
