package agentrt

import "context"

// Tick is the contract every node in the tree satisfies: given a context
// (for cancellation) and the tree's shared Blackboard, produce a Status.
// A Running result means the node expects to be ticked again, with its
// internal state intact, before either terminal outcome is reached.
type Tick func(ctx context.Context, bb *Blackboard) (Status, error)

// Node is a named, resettable, halt-able unit of tick logic. Composites
// hold child Nodes; the Builder assembles Nodes into a Tree.
type Node interface {
	// Name identifies the node for logging, debugging, and event topics.
	// It need not be unique.
	Name() string
	// Tick advances the node once.
	Tick(ctx context.Context, bb *Blackboard) (Status, error)
	// Halt aborts any in-progress Running state, releasing resources held
	// by a suspended tick (a pending future, a spawned goroutine). Halt
	// must be safe to call on a node that is not currently Running.
	Halt()
}

// Leaf wraps a Tick function and a name into a minimal Node. Leaf has no
// Running state of its own to halt; Halt is a no-op. Use it directly for
// synchronous actions and conditions; for suspending leaves use Future or
// CoroutineTask (actions.go), which implement Halt themselves.
type Leaf struct {
	name string
	fn   Tick
}

// NewLeaf returns a Leaf named name that delegates ticking to fn.
func NewLeaf(name string, fn Tick) *Leaf {
	return &Leaf{name: name, fn: fn}
}

func (l *Leaf) Name() string { return l.name }

func (l *Leaf) Tick(ctx context.Context, bb *Blackboard) (Status, error) {
	return l.fn(ctx, bb)
}

func (l *Leaf) Halt() {}

// baseNode factors the name field shared by every composite/decorator
// implementation in this package.
type baseNode struct {
	name string
}

func (b baseNode) Name() string { return b.name }
