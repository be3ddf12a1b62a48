package agentrt

import "context"

// Condition is a side-effect-free predicate over the Blackboard, used by
// Conditional, While, ConditionalSequence, and Switch.
type Condition func(ctx context.Context, bb *Blackboard) bool

// Conditional picks a branch the first time it is ticked while not
// already mid-branch: cond true selects Then, cond false selects Else
// (or, with no Else, reports Failure immediately without touching
// either child). Once a branch is chosen it keeps ticking that same
// branch — cond is not re-evaluated — until the branch reaches a
// terminal Status; only then does the next Tick re-evaluate cond.
type Conditional struct {
	baseNode
	cond   Condition
	then   Node
	els    Node
	active Node
}

// NewConditional builds a Conditional with no Else branch: a false cond
// reports Failure.
func NewConditional(name string, cond Condition, then Node) *Conditional {
	return &Conditional{baseNode: baseNode{name}, cond: cond, then: then}
}

// NewConditionalElse builds a Conditional with both branches.
func NewConditionalElse(name string, cond Condition, then, els Node) *Conditional {
	return &Conditional{baseNode: baseNode{name}, cond: cond, then: then, els: els}
}

func (n *Conditional) Tick(ctx context.Context, bb *Blackboard) (Status, error) {
	if n.active == nil {
		switch {
		case n.cond(ctx, bb):
			n.active = n.then
		case n.els != nil:
			n.active = n.els
		default:
			return Failure, nil
		}
	}
	status, err := n.active.Tick(ctx, bb)
	if status != Running {
		n.active = nil
	}
	return status, err
}

func (n *Conditional) Halt() {
	if n.active != nil {
		n.active.Halt()
		n.active = nil
	}
}

// While re-checks cond on every tick, including while its child is
// Running: while cond holds it ticks the child once and reports the
// child's Status; once cond is false, the child is halted (even
// mid-run) and While reports Success.
type While struct {
	baseNode
	cond  Condition
	child Node
}

func NewWhile(name string, cond Condition, child Node) *While {
	return &While{baseNode: baseNode{name}, cond: cond, child: child}
}

func (n *While) Tick(ctx context.Context, bb *Blackboard) (Status, error) {
	if !n.cond(ctx, bb) {
		n.child.Halt()
		return Success, nil
	}
	return n.child.Tick(ctx, bb)
}

func (n *While) Halt() { n.child.Halt() }

// For ticks child once per iteration in [0, count), exposing the current
// iteration index to the child through the blackboard under indexKey. It
// returns Running until all iterations have completed with Success, and
// Failure as soon as one iteration fails (aborting the loop without
// running later iterations). A non-positive count succeeds immediately.
type For struct {
	baseNode
	count    int
	indexKey string
	child    Node
	cursor   int
}

func NewFor(name string, count int, indexKey string, child Node) *For {
	return &For{baseNode: baseNode{name}, count: count, indexKey: indexKey, child: child}
}

func (n *For) Tick(ctx context.Context, bb *Blackboard) (Status, error) {
	if n.count <= 0 {
		return Success, nil
	}
	for n.cursor < n.count {
		if n.indexKey != "" {
			Set(bb, n.indexKey, n.cursor)
		}
		status, err := n.child.Tick(ctx, bb)
		if err != nil {
			n.cursor = 0
			return status, err
		}
		switch status {
		case Running:
			return Running, nil
		case Failure:
			n.cursor = 0
			return Failure, nil
		default: // Success
			n.cursor++
		}
	}
	n.cursor = 0
	return Success, nil
}

func (n *For) Halt() {
	n.child.Halt()
	n.cursor = 0
}

// SwitchCase pairs a comparable key with the node to run when Switch's
// selector returns that key.
type SwitchCase struct {
	Key  any
	Node Node
}

// Switch evaluates selector and ticks the case whose Key equals the
// result, or Default if no case matches. A miss with no Default set is a
// structural error (CannotHappenError), not a Failure: it means the tree
// was assembled with a selector that can produce a value no case
// accounts for.
type Switch struct {
	baseNode
	selector func(ctx context.Context, bb *Blackboard) any
	cases    []SwitchCase
	Default  Node
	active   Node
}

func NewSwitch(name string, selector func(ctx context.Context, bb *Blackboard) any, cases []SwitchCase, def Node) *Switch {
	return &Switch{baseNode: baseNode{name}, selector: selector, cases: cases, Default: def}
}

func (n *Switch) Tick(ctx context.Context, bb *Blackboard) (Status, error) {
	key := n.selector(ctx, bb)
	var chosen Node
	for _, c := range n.cases {
		if c.Key == key {
			chosen = c.Node
			break
		}
	}
	if chosen == nil {
		chosen = n.Default
	}
	if chosen == nil {
		return Failure, &CannotHappenError{NodeName: n.name, Reason: "no case matched and no default set"}
	}
	if n.active != nil && n.active != chosen {
		n.active.Halt()
	}
	n.active = chosen
	return chosen.Tick(ctx, bb)
}

func (n *Switch) Halt() {
	if n.active != nil {
		n.active.Halt()
		n.active = nil
	}
}

// ConditionalSequence pairs a Condition with each child: a false
// condition skips that step (treated as vacuously satisfied, continuing
// to the next pair) rather than failing the whole sequence. A child that
// runs and fails still fails the ConditionalSequence, same as Sequence.
type ConditionalSequence struct {
	baseNode
	conds    []Condition
	children []Node
	cursor   int
}

func NewConditionalSequence(name string, conds []Condition, children []Node) *ConditionalSequence {
	return &ConditionalSequence{baseNode: baseNode{name}, conds: conds, children: children}
}

func (n *ConditionalSequence) Tick(ctx context.Context, bb *Blackboard) (Status, error) {
	for n.cursor < len(n.children) {
		if n.conds[n.cursor] != nil && !n.conds[n.cursor](ctx, bb) {
			n.cursor++
			continue
		}
		status, err := n.children[n.cursor].Tick(ctx, bb)
		if err != nil {
			n.cursor = 0
			return status, err
		}
		switch status {
		case Success:
			n.cursor++
			continue
		case Running:
			return Running, nil
		default:
			n.cursor = 0
			return Failure, nil
		}
	}
	n.cursor = 0
	return Success, nil
}

func (n *ConditionalSequence) Halt() {
	if n.cursor < len(n.children) {
		n.children[n.cursor].Halt()
	}
	n.cursor = 0
}

// ReactiveSequence behaves like Sequence but re-evaluates from the first
// child on every tick instead of resuming at a remembered cursor. If a
// different child ends up Running than the one Running on the previous
// tick, the previous one is halted — this is what lets earlier,
// higher-priority children preempt a lower-priority one that had started
// running.
type ReactiveSequence struct {
	baseNode
	children  []Node
	lastRunAt int
}

func NewReactiveSequence(name string, children ...Node) *ReactiveSequence {
	return &ReactiveSequence{baseNode: baseNode{name}, children: children, lastRunAt: -1}
}

func (n *ReactiveSequence) Tick(ctx context.Context, bb *Blackboard) (Status, error) {
	if len(n.children) == 0 {
		return Success, nil
	}
	for i, child := range n.children {
		status, err := child.Tick(ctx, bb)
		if err != nil {
			n.resetFrom(0)
			return status, err
		}
		switch status {
		case Success:
			continue
		case Running:
			if n.lastRunAt != -1 && n.lastRunAt != i {
				n.children[n.lastRunAt].Halt()
			}
			n.lastRunAt = i
			return Running, nil
		default: // Failure
			n.resetFrom(0)
			return Failure, nil
		}
	}
	n.resetFrom(0)
	return Success, nil
}

func (n *ReactiveSequence) resetFrom(_ int) {
	if n.lastRunAt != -1 {
		n.children[n.lastRunAt].Halt()
	}
	n.lastRunAt = -1
}

func (n *ReactiveSequence) Halt() { n.resetFrom(0) }

// DynamicSelector behaves like Selector but re-evaluates from the first
// child on every tick, so a higher-priority child that starts succeeding
// again immediately preempts whichever lower-priority child was Running.
type DynamicSelector struct {
	baseNode
	children  []Node
	lastRunAt int
}

func NewDynamicSelector(name string, children ...Node) *DynamicSelector {
	return &DynamicSelector{baseNode: baseNode{name}, children: children, lastRunAt: -1}
}

func (n *DynamicSelector) Tick(ctx context.Context, bb *Blackboard) (Status, error) {
	if len(n.children) == 0 {
		return Failure, nil
	}
	for i, child := range n.children {
		status, err := child.Tick(ctx, bb)
		if err != nil {
			n.resetFrom(0)
			return status, err
		}
		switch status {
		case Failure:
			continue
		case Running:
			if n.lastRunAt != -1 && n.lastRunAt != i {
				n.children[n.lastRunAt].Halt()
			}
			n.lastRunAt = i
			return Running, nil
		default: // Success
			n.resetFrom(0)
			return Success, nil
		}
	}
	n.resetFrom(0)
	return Failure, nil
}

func (n *DynamicSelector) resetFrom(_ int) {
	if n.lastRunAt != -1 {
		n.children[n.lastRunAt].Halt()
	}
	n.lastRunAt = -1
}

func (n *DynamicSelector) Halt() { n.resetFrom(0) }

// Subtree lazily builds its wrapped Node from factory on first Tick,
// letting large trees be assembled from named, independently-built
// pieces without paying construction cost for branches never reached.
type Subtree struct {
	baseNode
	factory func() Node
	built   Node
}

func NewSubtree(name string, factory func() Node) *Subtree {
	return &Subtree{baseNode: baseNode{name}, factory: factory}
}

func (n *Subtree) Tick(ctx context.Context, bb *Blackboard) (Status, error) {
	if n.built == nil {
		n.built = n.factory()
	}
	return n.built.Tick(ctx, bb)
}

func (n *Subtree) Halt() {
	if n.built != nil {
		n.built.Halt()
	}
}
