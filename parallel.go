package agentrt

import (
	"context"
	"sync"
)

// ParallelPolicy selects one of the two common Parallel threshold shapes.
type ParallelPolicy int

const (
	// RequireAll succeeds only once every child has succeeded, and fails
	// as soon as any one child fails.
	RequireAll ParallelPolicy = iota
	// RequireOne succeeds as soon as any one child succeeds, and fails
	// only once every child has failed.
	RequireOne
)

// Parallel ticks every not-yet-terminal child on each tick (concurrently,
// via its Executor), and compares the running success/failure counts
// against configured thresholds. It returns Running until one threshold
// is reached, at which point it halts any children still Running and
// returns the corresponding terminal Status. It also returns Failure (and
// halts children still Running) as soon as so many children have failed
// that the success threshold can no longer be reached. Children that have already
// reached a terminal Status are not re-ticked on subsequent calls — only
// a terminal Parallel result (Success or Failure) clears that memory.
type Parallel struct {
	baseNode
	children         []Node
	successThreshold int
	failureThreshold int
	executor         Executor

	mu      sync.Mutex
	results []Status
}

// NewParallel builds a Parallel from one of the two standard policies.
func NewParallel(name string, policy ParallelPolicy, executor Executor, children ...Node) (*Parallel, error) {
	n := len(children)
	switch policy {
	case RequireAll:
		return NewParallelThreshold(name, n, 1, executor, children...)
	case RequireOne:
		return NewParallelThreshold(name, 1, n, executor, children...)
	default:
		return nil, &ConstructionError{Component: "Parallel(" + name + ")", Reason: "unknown policy"}
	}
}

// NewParallelThreshold builds a Parallel with explicit success/failure
// thresholds. Both must be at least 1 and at most len(children); a zero
// or out-of-range threshold is a construction error, per the same
// validation the teacher's threshold-based composites apply.
func NewParallelThreshold(name string, successThreshold, failureThreshold int, executor Executor, children ...Node) (*Parallel, error) {
	n := len(children)
	if n == 0 {
		return nil, &ConstructionError{Component: "Parallel(" + name + ")", Reason: "no children"}
	}
	if successThreshold < 1 || successThreshold > n {
		return nil, &ConstructionError{Component: "Parallel(" + name + ")", Reason: "successThreshold out of range"}
	}
	if failureThreshold < 1 || failureThreshold > n {
		return nil, &ConstructionError{Component: "Parallel(" + name + ")", Reason: "failureThreshold out of range"}
	}
	return &Parallel{
		baseNode:         baseNode{name: name},
		children:         children,
		successThreshold: successThreshold,
		failureThreshold: failureThreshold,
		executor:         executor,
		results:          make([]Status, n),
	}, nil
}

func (p *Parallel) Tick(ctx context.Context, bb *Blackboard) (Status, error) {
	p.mu.Lock()
	if p.results == nil {
		p.results = make([]Status, len(p.children))
	}

	var successCount, failureCount int
	pending := make([]int, 0, len(p.children))
	for i, st := range p.results {
		switch st {
		case Success:
			successCount++
		case Failure:
			failureCount++
		default:
			pending = append(pending, i)
		}
	}
	p.mu.Unlock()

	var tickErr error
	executorOrDefault(p.executor).BulkEarlyStop(ctx, len(pending), func(j int) bool {
		i := pending[j]
		status, err := p.children[i].Tick(ctx, bb)

		p.mu.Lock()
		defer p.mu.Unlock()
		if err != nil {
			if tickErr == nil {
				tickErr = err
			}
			return true
		}
		p.results[i] = status
		switch status {
		case Success:
			successCount++
		case Failure:
			failureCount++
		}
		return successCount >= p.successThreshold || failureCount >= p.failureThreshold ||
			len(p.children)-failureCount < p.successThreshold
	})

	if tickErr != nil {
		p.reset()
		return Failure, tickErr
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	switch {
	case successCount >= p.successThreshold:
		p.haltPendingLocked()
		p.resetLocked()
		return Success, nil
	case failureCount >= p.failureThreshold:
		p.haltPendingLocked()
		p.resetLocked()
		return Failure, nil
	case len(p.children)-failureCount < p.successThreshold:
		// Too many children have failed for the success threshold to be met.
		p.haltPendingLocked()
		p.resetLocked()
		return Failure, nil
	default:
		return Running, nil
	}
}

// haltPendingLocked halts every child not yet at a terminal Status. Must
// be called with p.mu held.
func (p *Parallel) haltPendingLocked() {
	for i, st := range p.results {
		if st != Success && st != Failure {
			p.children[i].Halt()
		}
	}
}

func (p *Parallel) resetLocked() {
	p.results = make([]Status, len(p.children))
}

func (p *Parallel) reset() {
	p.mu.Lock()
	p.resetLocked()
	p.mu.Unlock()
}

func (p *Parallel) Halt() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.haltPendingLocked()
	p.resetLocked()
}
