package datalog

import (
	"context"

	"github.com/kestrelrun/agentrt/internal/workerpool"
)

// Executor is datalog's local, structurally-identical twin of
// agentrt.Executor: both are implemented by internal/workerpool, but
// each package defines its own interface so that importing one never
// pulls in the other.
type Executor interface {
	Bulk(ctx context.Context, n int, fn func(i int))
	BulkEarlyStop(ctx context.Context, n int, fn func(i int) (stop bool))
}

type inlineExecutor struct{}

// InlineExecutor runs every call on the caller's goroutine, in order. It
// is the package default, appropriate for the common case of relations
// too small for fan-out to pay for itself.
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

type poolExecutor struct{ pool *workerpool.Pool }

// NewPoolExecutor returns an Executor backed by a bounded goroutine pool,
// worthwhile once relations and join batches grow large enough that
// parallel sort/merge/join/extend/aggregate chunks beat the
// synchronization overhead. A concurrency of 0 means unlimited.
func NewPoolExecutor(concurrency int) Executor {
	return poolExecutor{pool: workerpool.New(concurrency)}
}

func (e poolExecutor) Bulk(ctx context.Context, n int, fn func(i int)) {
	e.pool.Bulk(ctx, n, fn)
}

func (e poolExecutor) BulkEarlyStop(ctx context.Context, n int, fn func(i int) (stop bool)) {
	e.pool.BulkEarlyStop(ctx, n, fn)
}

func executorOrDefault(e Executor) Executor {
	if e == nil {
		return InlineExecutor
	}
	return e
}
