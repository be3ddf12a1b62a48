// Package workerpool is the single concurrency implementation shared by
// agentrt.Executor and datalog's Executor: a semaphore-bounded fan-out
// over golang.org/x/sync, so every bulk operation in this module — a
// Parallel node ticking its children, a Datalog join proposing across
// chunks — goes through the same pool rather than spawning its own
// goroutines ad hoc.
package workerpool

import (
	"context"
	"sync/atomic"

	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/semaphore"
)

// Pool runs bulk work with at most the concurrency given to New in
// flight at once. The zero value has unlimited concurrency; use New to cap it.
type Pool struct {
	sem *semaphore.Weighted
}

// New returns a Pool that runs at most concurrency calls at a time. A
// concurrency of 0 or less means unlimited.
func New(concurrency int) *Pool {
	if concurrency <= 0 {
		return &Pool{}
	}
	return &Pool{sem: semaphore.NewWeighted(int64(concurrency))}
}

// Bulk runs fn(i) for every i in [0,n), blocking until every started
// call has returned. fn has no error return and Bulk returns none
// (matching the Executor contract); once ctx is canceled, indices not
// yet started are skipped. Panics inside fn are not recovered, matching
// plain goroutine semantics.
func (p *Pool) Bulk(ctx context.Context, n int, fn func(i int)) {
	if n <= 0 {
		return
	}
	g, gctx := errgroup.WithContext(ctx)
	for i := 0; i < n; i++ {
		i := i
		if p.sem != nil {
			if err := p.sem.Acquire(ctx, 1); err != nil {
				break
			}
		}
		g.Go(func() error {
			if p.sem != nil {
				defer p.sem.Release(1)
			}
			select {
			case <-gctx.Done():
				return gctx.Err()
			default:
			}
			fn(i)
			return nil
		})
	}
	_ = g.Wait()
}

// BulkEarlyStop runs fn(i) for i in [0,n), skipping indices not yet
// started once any call reports stop==true. There is no ordering
// guarantee on which indices run before a stop is observed — callers
// that need deterministic early-stop behavior should use InlineExecutor
// instead.
func (p *Pool) BulkEarlyStop(ctx context.Context, n int, fn func(i int) (stop bool)) {
	if n <= 0 {
		return
	}
	var stopped int32
	g, gctx := errgroup.WithContext(ctx)
	for i := 0; i < n; i++ {
		i := i
		if atomic.LoadInt32(&stopped) != 0 {
			break
		}
		if p.sem != nil {
			if err := p.sem.Acquire(ctx, 1); err != nil {
				break
			}
		}
		g.Go(func() error {
			if p.sem != nil {
				defer p.sem.Release(1)
			}
			if atomic.LoadInt32(&stopped) != 0 {
				return nil
			}
			select {
			case <-gctx.Done():
				return nil
			default:
			}
			if fn(i) {
				atomic.StoreInt32(&stopped, 1)
			}
			return nil
		})
	}
	_ = g.Wait()
}
