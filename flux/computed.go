package flux

import "github.com/wovengraph/flux/internal"

type computedConfig[T any] struct {
	dirty       func(old, next T) bool
	id          string
	fallback    T
	hasFallback bool
}

// ComputedOption configures NewComputed.
type ComputedOption[T any] func(*computedConfig[T])

// WithComputedDirty overrides the default (!=) change predicate used to
// decide whether a recompute's result actually invalidates observers.
func WithComputedDirty[T any](dirty func(old, next T) bool) ComputedOption[T] {
	return func(c *computedConfig[T]) { c.dirty = dirty }
}

// WithComputedID gives the computed a stable label for diagnostics and
// cyclic dependency error trails.
func WithComputedID[T any](id string) ComputedOption[T] {
	return func(c *computedConfig[T]) { c.id = id }
}

// WithFallback supplies the value a computed reports the first time its
// body panics, before it has ever produced a real value. On any later
// panic the previous value is retained instead. The panic still goes
// through the scope's error handlers; if none handles it, it escapes the
// read, and later reads return the stored fallback.
func WithFallback[T any](v T) ComputedOption[T] {
	return func(c *computedConfig[T]) {
		c.fallback = v
		c.hasFallback = true
	}
}

// Computed is a read-only reactive value derived from other reactive
// values: a memo. Its body first runs on the first read after creation.
// After a dependency changes it re-runs on the next scheduler flush, or
// earlier if it is read before that flush.
type Computed[T any] struct {
	node *internal.Node
}

// NewComputed creates a computed value. body is not run until the computed
// is first read.
func NewComputed[T comparable](body func() T, opts ...ComputedOption[T]) *Computed[T] {
	cfg := computedConfig[T]{dirty: func(old, next T) bool { return old != next }}
	for _, opt := range opts {
		opt(&cfg)
	}

	rt := internal.GetRuntime()
	scope := rt.Tracker.CurrentScope()
	node := rt.NewDerivationNode(scope, func(*internal.Node) any {
		return body()
	}, func(old, next any) bool {
		return cfg.dirty(as[T](old), as[T](next))
	}, false)
	node.SetLabel(cfg.id)
	if cfg.hasFallback {
		node.SetFallback(cfg.fallback)
	}

	return &Computed[T]{node: node}
}

// Read returns the computed's current value, recomputing first if it is
// dirty. Registers a dependency link if called during a tracked
// computation.
func (c *Computed[T]) Read() T {
	return as[T](c.node.ReadDerivation())
}

func (c *Computed[T]) rawNode() *internal.Node { return c.node }
func (c *Computed[T]) isObservable()           {}
