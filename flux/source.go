package flux

import "github.com/wovengraph/flux/internal"

type sourceConfig[T any] struct {
	dirty func(old, next T) bool
	id    string
}

// SourceOption configures NewSource.
type SourceOption[T any] func(*sourceConfig[T])

// WithSourceDirty overrides the default (!=) change predicate a source uses
// to decide whether a write actually invalidates its observers.
func WithSourceDirty[T any](dirty func(old, next T) bool) SourceOption[T] {
	return func(c *sourceConfig[T]) { c.dirty = dirty }
}

// WithSourceID gives the source a stable label for diagnostics and cyclic
// dependency error trails, instead of a generated one.
func WithSourceID[T any](id string) SourceOption[T] {
	return func(c *sourceConfig[T]) { c.id = id }
}

// Source is a writable reactive value: your typical signal.
type Source[T any] struct {
	node *internal.Node
}

// NewSource creates a source seeded with initial, owned by the currently
// active scope (detached if there is none).
func NewSource[T comparable](initial T, opts ...SourceOption[T]) *Source[T] {
	cfg := sourceConfig[T]{dirty: func(old, next T) bool { return old != next }}
	for _, opt := range opts {
		opt(&cfg)
	}

	rt := internal.GetRuntime()
	scope := rt.Tracker.CurrentScope()
	node := rt.NewSourceNode(scope, initial, func(old, next any) bool {
		return cfg.dirty(as[T](old), as[T](next))
	})
	node.SetLabel(cfg.id)

	return &Source[T]{node: node}
}

// Read returns the source's current value, registering a dependency link
// if called during a tracked computation.
func (s *Source[T]) Read() T {
	return as[T](s.node.ReadSource())
}

// Write stores v if it differs from the current value per the source's
// dirty predicate, enqueueing every dependent derivation for the next
// flush. Writing a disposed source is a silent no-op.
func (s *Source[T]) Write(v T) {
	s.node.WriteSource(v)
}

// Next derives the next value from the current one and writes it, without
// tracking a dependency on itself.
func (s *Source[T]) Next(fn func(T) T) {
	s.Write(fn(as[T](s.node.Value())))
}

func (s *Source[T]) rawNode() *internal.Node { return s.node }
func (s *Source[T]) isObservable()           {}
func (s *Source[T]) isSubject()              {}
