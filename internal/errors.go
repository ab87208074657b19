package internal

import (
	"fmt"
	"strings"
)

// CyclicDependencyError is raised synchronously when a derivation re-enters
// itself while on the compute stack. It is never routed through the error
// handler chain - it propagates straight to the caller, per spec §4.7/§7.
type CyclicDependencyError struct {
	Trail []string
}

func newCyclicError(trail []string) *CyclicDependencyError {
	return &CyclicDependencyError{Trail: trail}
}

func (e *CyclicDependencyError) Error() string {
	return fmt.Sprintf("cyclic dependency detected: %s", strings.Join(e.Trail, " -> "))
}

// errorHandlersKey is the reserved context key OnError stores its handler
// slice under. It is a value of an unexported empty-struct type, so no key
// built outside this package can collide with it.
type errorHandlersKeyType struct{}

var errorHandlersKey = errorHandlersKeyType{}

// AddErrorHandler registers fn on scope's own handler bag (not walked up -
// OnError always attaches to the *current* scope, per §4.6).
func (n *Node) AddErrorHandler(fn func(any)) {
	handlers, _ := n.context[errorHandlersKey].([]func(any))
	n.context[errorHandlersKey] = append(handlers, fn)
}

func (n *Node) errorHandlers() []func(any) {
	handlers, _ := n.context[errorHandlersKey].([]func(any))
	return handlers
}

// clearErrorHandlers resets the handlers buffered on this node's own scope
// before each recompute, per §4.3 step 4 ("clear buffered error
// handlers"); a re-run re-registers whatever handlers its body calls
// OnError with.
func (n *Node) clearErrorHandlers() {
	delete(n.context, errorHandlersKey)
}

// dispatchError walks the scope chain starting at n looking for a scope
// with registered handlers. The first scope that has any invokes all of
// them; if one of them panics, the search resumes from that scope's
// parent, exactly as if that scope had had no handlers. If the walk
// reaches the root with nothing handling the error, it re-panics so it
// escapes to whichever read or flush triggered the recompute.
// DispatchError is the exported entry point into dispatchError, for callers
// outside this package that catch a panic themselves (the scope(fn)
// re-entry wrapper) and need to route it through the same handler chain a
// derivation's own recompute would use.
func DispatchError(n *Node, caught any) {
	dispatchError(n, caught)
}

func dispatchError(n *Node, caught any) {
	for scope := n; scope != nil; scope = scope.parent {
		handlers := scope.errorHandlers()
		if len(handlers) == 0 {
			continue
		}

		handled := true
		func() {
			defer func() {
				if r := recover(); r != nil {
					handled = false
				}
			}()
			for _, h := range handlers {
				h(caught)
			}
		}()

		if handled {
			return
		}
	}

	for _, h := range n.rt.exhaustedHooks {
		h(n, caught)
	}
	panic(caught)
}
