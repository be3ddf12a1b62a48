package agentrt

import (
	"context"

	"github.com/kestrelrun/agentrt/internal/workerpool"
)

// Executor is the concurrency abstraction behind Parallel; the Future
// built by NewFutureFunc and CoroutineTask start their own goroutines
// instead. Parallel uses BulkEarlyStop to fan a fixed-size batch of independent tick calls out across workers; the
// companion datalog package defines its own, structurally identical
// Executor for join/extend/aggregate fan-out. A single implementation in
// internal/workerpool backs both.
type Executor interface {
	// Bulk runs fn(i) for every i in [0,n), blocking until all n calls
	// return. fn must be safe to call concurrently with itself.
	Bulk(ctx context.Context, n int, fn func(i int))
	// BulkEarlyStop runs fn(i) for i in [0,n) but may skip remaining
	// indices once fn reports stop==true for some index — used by
	// Parallel to avoid ticking children once the node's outcome is
	// already determined. There is no ordering guarantee on which
	// indices run before a stop is observed.
	BulkEarlyStop(ctx context.Context, n int, fn func(i int) (stop bool))
}

// inlineExecutor runs every call on the caller's goroutine, in index
// order. It is the default Executor when none is supplied, and is the
// right choice for trees with no genuinely parallel leaves (most trees):
// it has zero synchronization overhead and keeps tick() deterministic and
// single-threaded end to end.
type inlineExecutor struct{}

// InlineExecutor is the package default Executor.
var InlineExecutor Executor = inlineExecutor{}

func (inlineExecutor) Bulk(_ context.Context, n int, fn func(i int)) {
	for i := 0; i < n; i++ {
		fn(i)
	}
}

func (inlineExecutor) BulkEarlyStop(_ context.Context, n int, fn func(i int) (stop bool)) {
	for i := 0; i < n; i++ {
		if fn(i) {
			return
		}
	}
}

// poolExecutor adapts *workerpool.Pool to the Executor interface.
type poolExecutor struct{ pool *workerpool.Pool }

// NewPoolExecutor returns an Executor backed by a bounded goroutine pool,
// for trees whose Parallel nodes have leaves worth running concurrently
// (blocking I/O, CPU-bound work). A concurrency of 0 means unlimited.
func NewPoolExecutor(concurrency int) Executor {
	return poolExecutor{pool: workerpool.New(concurrency)}
}

func (e poolExecutor) Bulk(ctx context.Context, n int, fn func(i int)) {
	e.pool.Bulk(ctx, n, fn)
}

func (e poolExecutor) BulkEarlyStop(ctx context.Context, n int, fn func(i int) (stop bool)) {
	e.pool.BulkEarlyStop(ctx, n, fn)
}

// executorOrDefault returns e if non-nil, otherwise InlineExecutor.
func executorOrDefault(e Executor) Executor {
	if e == nil {
		return InlineExecutor
	}
	return e
}
