package flux

import "github.com/wovengraph/flux/internal"

// reader is satisfied by Source and Computed: anything with a plain Read.
type reader[T any] interface {
	Read() T
}

// Readonly forwards reads to a wrapped reactive value while reporting as
// Observable without Subject - a write-hiding view, not a copy.
type Readonly[T any] struct {
	read func() T
	node *internal.Node
}

// NewReadonly wraps o, hiding any write surface it might have.
func NewReadonly[T any](o reader[T]) *Readonly[T] {
	var node *internal.Node
	if hn, ok := o.(hasNode); ok {
		node = hn.rawNode()
	}
	return &Readonly[T]{read: o.Read, node: node}
}

func (r *Readonly[T]) Read() T { return r.read() }

func (r *Readonly[T]) rawNode() *internal.Node { return r.node }
func (r *Readonly[T]) isObservable()           {}
