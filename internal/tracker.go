package internal

// Tracker holds the two ambient slots the engine needs during any tracked
// execution: the node whose dependencies are being recorded (current
// observer) and the node that owns newly created reactive entities
// (current scope). Compute, Peek and Untrack are the only ways these slots
// change, and every exit path - normal or panicking - restores them.
type Tracker struct {
	tracking        bool
	currentObserver *Node
	currentScope    *Node

	computeStack []*Node
}

func NewTracker() *Tracker {
	return &Tracker{tracking: true}
}

// Compute saves both ambient slots, installs scope/observer for the
// duration of body, and restores the previous slots on every exit path.
func (t *Tracker) Compute(scope, observer *Node, body func()) {
	prevScope, prevObserver, prevTracking := t.currentScope, t.currentObserver, t.tracking
	t.currentScope = scope
	t.currentObserver = observer
	t.tracking = true
	defer func() {
		t.currentScope = prevScope
		t.currentObserver = prevObserver
		t.tracking = prevTracking
	}()
	body()
}

// Peek runs fn with the current observer cleared (reads inside fn do not
// register dependencies) but leaves the current scope untouched, so nodes
// created inside are still owned by the enclosing scope.
func (t *Tracker) Peek(fn func()) {
	prevObserver, prevTracking := t.currentObserver, t.tracking
	t.currentObserver = nil
	t.tracking = false
	defer func() {
		t.currentObserver = prevObserver
		t.tracking = prevTracking
	}()
	fn()
}

// Untrack runs fn with both ambient slots cleared: no dependency links and
// no scope ownership for anything created inside.
func (t *Tracker) Untrack(fn func()) {
	prevScope, prevObserver, prevTracking := t.currentScope, t.currentObserver, t.tracking
	t.currentScope = nil
	t.currentObserver = nil
	t.tracking = false
	defer func() {
		t.currentScope = prevScope
		t.currentObserver = prevObserver
		t.tracking = prevTracking
	}()
	fn()
}

func (t *Tracker) ShouldTrack() bool {
	return t.tracking && t.currentObserver != nil
}

func (t *Tracker) CurrentScope() *Node    { return t.currentScope }
func (t *Tracker) CurrentObserver() *Node { return t.currentObserver }

func (t *Tracker) pushCompute(n *Node) {
	t.computeStack = append(t.computeStack, n)
}

func (t *Tracker) popCompute() {
	t.computeStack = t.computeStack[:len(t.computeStack)-1]
}

// trail returns the chain of labels from the bottom of the compute stack
// down to the re-entered node, for the cyclic-dependency error message.
func (t *Tracker) trail(reentered *Node) []string {
	labels := make([]string, 0, len(t.computeStack)+1)
	for _, n := range t.computeStack {
		labels = append(labels, n.Label)
	}
	labels = append(labels, reentered.Label)
	return labels
}
