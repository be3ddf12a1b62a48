package agentrt

import (
	"context"
	"fmt"
)

// Tree binds a root Node to a shared Blackboard and EventBus, and is the
// unit external callers drive: construct one with New, then call Tick in
// a loop.
type Tree struct {
	Root       Node
	Blackboard *Blackboard
	Events     *EventBus

	metrics *Metrics
}

// New assembles a Tree from a root node. A nil Blackboard or EventBus is
// replaced with a fresh instance, mirroring the rest of this package's
// nil-means-default convention.
func New(root Node, opts ...TreeOption) *Tree {
	t := &Tree{Root: root}
	for _, opt := range opts {
		opt(t)
	}
	if t.Blackboard == nil {
		t.Blackboard = NewBlackboard()
	}
	if t.Events == nil {
		t.Events = NewEventBus()
	}
	return t
}

// TreeOption configures a Tree at construction time.
type TreeOption func(*Tree)

// WithBlackboard attaches an existing Blackboard instead of a fresh one,
// letting multiple trees share state.
func WithBlackboard(bb *Blackboard) TreeOption {
	return func(t *Tree) { t.Blackboard = bb }
}

// WithEventBus attaches an existing EventBus instead of a fresh one.
func WithEventBus(bus *EventBus) TreeOption {
	return func(t *Tree) { t.Events = bus }
}

// Tick descends the tree once from the root and publishes a "node.tick"
// event carrying the resulting Status. A nil root ticks to Failure with
// ErrNilRoot.
func (t *Tree) Tick(ctx context.Context) (Status, error) {
	if t.Root == nil {
		return Failure, ErrNilRoot
	}
	status, err := t.Root.Tick(ctx, t.Blackboard)
	t.Events.Publish(Event{Topic: "node.tick", NodeName: t.Root.Name(), Status: status, Data: err})
	return status, err
}

// Halt propagates Halt to the root, aborting any in-progress Running
// subtree. Call this when abandoning a tree mid-tick, e.g. on shutdown.
func (t *Tree) Halt() {
	if t.Root != nil {
		t.Root.Halt()
	}
}

// ErrNilRoot is returned by Tree.Tick when the tree has no root node.
var ErrNilRoot = fmt.Errorf("agentrt: tree has no root node")
