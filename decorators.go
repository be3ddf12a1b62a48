package agentrt

import (
	"context"
	"time"
)

// decorator factors the single-child embedding shared by every node in
// this file.
type decorator struct {
	baseNode
	child Node
}

func (d decorator) Halt() { d.child.Halt() }

// Inverter swaps Success and Failure; Running passes through unchanged.
type Inverter struct{ decorator }

func NewInverter(name string, child Node) *Inverter {
	return &Inverter{decorator{baseNode{name}, child}}
}

func (n *Inverter) Tick(ctx context.Context, bb *Blackboard) (Status, error) {
	status, err := n.child.Tick(ctx, bb)
	if err != nil {
		return status, err
	}
	switch status {
	case Success:
		return Failure, nil
	case Failure:
		return Success, nil
	default:
		return status, nil
	}
}

// Succeeder reports Success once its child reaches any terminal status;
// Running still passes through so the child gets to finish.
type Succeeder struct{ decorator }

func NewSucceeder(name string, child Node) *Succeeder {
	return &Succeeder{decorator{baseNode{name}, child}}
}

func (n *Succeeder) Tick(ctx context.Context, bb *Blackboard) (Status, error) {
	status, err := n.child.Tick(ctx, bb)
	if status == Running {
		return Running, err
	}
	return Success, err
}

// Failer reports Failure once its child reaches any terminal status;
// Running still passes through.
type Failer struct{ decorator }

func NewFailer(name string, child Node) *Failer {
	return &Failer{decorator{baseNode{name}, child}}
}

func (n *Failer) Tick(ctx context.Context, bb *Blackboard) (Status, error) {
	status, err := n.child.Tick(ctx, bb)
	if status == Running {
		return Running, err
	}
	return Failure, err
}

// Repeat re-runs its child count times, reporting Success only once the
// final iteration has itself succeeded. A child Failure at any iteration
// is reported immediately as the Repeat's own Failure. A non-positive
// count makes Repeat succeed immediately without ticking its child.
type Repeat struct {
	decorator
	count     int
	completed int
}

func NewRepeat(name string, count int, child Node) *Repeat {
	return &Repeat{decorator: decorator{baseNode{name}, child}, count: count}
}

func (n *Repeat) Tick(ctx context.Context, bb *Blackboard) (Status, error) {
	if n.count <= 0 {
		return Success, nil
	}
	status, err := n.child.Tick(ctx, bb)
	if err != nil {
		n.completed = 0
		return status, err
	}
	switch status {
	case Running:
		return Running, nil
	case Failure:
		n.completed = 0
		return Failure, nil
	default: // Success
		n.completed++
		if n.completed >= n.count {
			n.completed = 0
			return Success, nil
		}
		return Running, nil
	}
}

func (n *Repeat) Halt() {
	n.child.Halt()
	n.completed = 0
}

// Retry re-runs its child up to maxAttempts times on Failure, reporting
// Success as soon as one attempt succeeds, and Failure only after
// maxAttempts consecutive failed attempts.
type Retry struct {
	decorator
	maxAttempts int
	attempts    int
}

func NewRetry(name string, maxAttempts int, child Node) *Retry {
	if maxAttempts < 1 {
		maxAttempts = 1
	}
	return &Retry{decorator: decorator{baseNode{name}, child}, maxAttempts: maxAttempts}
}

func (n *Retry) Tick(ctx context.Context, bb *Blackboard) (Status, error) {
	status, err := n.child.Tick(ctx, bb)
	if err != nil {
		n.attempts = 0
		return status, err
	}
	switch status {
	case Running:
		return Running, nil
	case Success:
		n.attempts = 0
		return Success, nil
	default: // Failure
		n.attempts++
		if n.attempts >= n.maxAttempts {
			n.attempts = 0
			return Failure, nil
		}
		return Running, nil
	}
}

func (n *Retry) Halt() {
	n.child.Halt()
	n.attempts = 0
}

// Timeout fails its child if it has not reached a terminal status within
// duration of the Timeout's first tick since its last reset. On timeout,
// the child is halted.
type Timeout struct {
	decorator
	duration time.Duration
	clock    Clock
	deadline time.Time
	started  bool
}

func NewTimeout(name string, duration time.Duration, clock Clock, child Node) *Timeout {
	return &Timeout{decorator: decorator{baseNode{name}, child}, duration: duration, clock: clockOrDefault(clock)}
}

func (n *Timeout) Tick(ctx context.Context, bb *Blackboard) (Status, error) {
	now := n.clock.Now()
	if !n.started {
		n.started = true
		n.deadline = now.Add(n.duration)
	}
	if now.After(n.deadline) {
		n.child.Halt()
		n.started = false
		return Failure, nil
	}
	status, err := n.child.Tick(ctx, bb)
	if status != Running {
		n.started = false
	}
	return status, err
}

func (n *Timeout) Halt() {
	n.child.Halt()
	n.started = false
}

// Cooldown refuses to re-enter its child (returning Failure instantly)
// until duration has passed since the child's last terminal tick.
type Cooldown struct {
	decorator
	duration  time.Duration
	clock     Clock
	lastTerm  time.Time
	hasLast   bool
}

func NewCooldown(name string, duration time.Duration, clock Clock, child Node) *Cooldown {
	return &Cooldown{decorator: decorator{baseNode{name}, child}, duration: duration, clock: clockOrDefault(clock)}
}

func (n *Cooldown) Tick(ctx context.Context, bb *Blackboard) (Status, error) {
	now := n.clock.Now()
	if n.hasLast && now.Sub(n.lastTerm) < n.duration {
		return Failure, nil
	}
	status, err := n.child.Tick(ctx, bb)
	if status != Running {
		n.lastTerm = now
		n.hasLast = true
	}
	return status, err
}

// MemoryPolicy selects which terminal statuses a Memory decorator latches
// across ticks instead of re-evaluating the child.
type MemoryPolicy int

const (
	// MemorizeSuccess skips re-ticking once the child has succeeded,
	// until Halt is called.
	MemorizeSuccess MemoryPolicy = iota
	// MemorizeFailure skips re-ticking once the child has failed.
	MemorizeFailure
	// MemorizeEither skips re-ticking once the child reaches any
	// terminal status.
	MemorizeEither
)

// Memory latches a terminal child result per its MemoryPolicy, returning
// the latched Status on every subsequent tick without re-invoking the
// child, until Halt resets it. This mirrors a reactive tree's need to
// avoid re-running an already-committed action every tick.
type Memory struct {
	decorator
	policy  MemoryPolicy
	latched bool
	result  Status
}

func NewMemory(name string, policy MemoryPolicy, child Node) *Memory {
	return &Memory{decorator: decorator{baseNode{name}, child}, policy: policy}
}

func (n *Memory) Tick(ctx context.Context, bb *Blackboard) (Status, error) {
	if n.latched {
		return n.result, nil
	}
	status, err := n.child.Tick(ctx, bb)
	if err != nil {
		return status, err
	}
	shouldLatch := false
	switch n.policy {
	case MemorizeSuccess:
		shouldLatch = status == Success
	case MemorizeFailure:
		shouldLatch = status == Failure
	case MemorizeEither:
		shouldLatch = status == Success || status == Failure
	}
	if shouldLatch {
		n.latched = true
		n.result = status
	}
	return status, nil
}

func (n *Memory) Halt() {
	n.child.Halt()
	n.latched = false
}

// Debounce suppresses a child Success that arrives within window of the
// previous reported Success, reporting Running instead. Failure, Running
// and errors pass through unchanged and are never suppressed. It exists
// to keep a
// reactive condition from re-firing an action every single tick once it
// starts being true.
type Debounce struct {
	decorator
	window       time.Duration
	clock        Clock
	lastSuccess  time.Time
	hasSuccess   bool
}

func NewDebounce(name string, window time.Duration, clock Clock, child Node) *Debounce {
	return &Debounce{decorator: decorator{baseNode{name}, child}, window: window, clock: clockOrDefault(clock)}
}

func (n *Debounce) Tick(ctx context.Context, bb *Blackboard) (Status, error) {
	status, err := n.child.Tick(ctx, bb)
	if err != nil || status != Success {
		return status, err
	}
	now := n.clock.Now()
	if n.hasSuccess && now.Sub(n.lastSuccess) < n.window {
		return Running, nil
	}
	n.lastSuccess = now
	n.hasSuccess = true
	return Success, nil
}

func (n *Debounce) Halt() {
	n.child.Halt()
	n.hasSuccess = false
}
