package datalog

import (
	"context"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// DefaultMaxIterations is the ceiling Iteration applies when constructed
// with maxIterations <= 0.
const DefaultMaxIterations = 1_000_000

// changeable is satisfied by *Variable[T] for any T, letting Iteration
// hold a heterogeneous set of variables — Go methods can't introduce
// their own type parameters, so Iteration can't be generic over a single
// T the way a real fixpoint program always mixes several tuple shapes.
type changeable interface {
	Changed() bool
	Reset()
}

// Iteration manages the set of Variables driving one fixpoint
// computation and caps how many rounds Changed will run before refusing
// to report further progress — a runaway rule set that never converges
// stops consuming CPU instead of spinning forever.
type Iteration struct {
	vars          []changeable
	iterCount     int
	maxIterations int
	log           zerolog.Logger
}

// IterationOption configures an Iteration at construction time.
type IterationOption func(*Iteration)

// WithIterationLogger overrides the logger used to trace the fixpoint
// loop. Defaults to the global zerolog logger.
func WithIterationLogger(logger zerolog.Logger) IterationOption {
	return func(it *Iteration) { it.log = logger }
}

// NewIteration returns an empty Iteration. maxIterations <= 0 means
// DefaultMaxIterations.
func NewIteration(maxIterations int, opts ...IterationOption) *Iteration {
	if maxIterations <= 0 {
		maxIterations = DefaultMaxIterations
	}
	it := &Iteration{maxIterations: maxIterations, log: log.Logger}
	for _, opt := range opts {
		opt(it)
	}
	return it
}

// IterationVariable creates a Variable[T] and registers it with it, so
// that it.Changed() also advances this variable. Go has no way to attach
// a type-parameterized "Variable" method to Iteration itself, hence the
// free-function form.
func IterationVariable[T Tuple[T]](it *Iteration, ctx context.Context, exec Executor) *Variable[T] {
	v := NewVariable[T](ctx, exec)
	it.vars = append(it.vars, v)
	return v
}

// Changed advances every managed variable one semi-naive step and
// reports whether any of them produced new facts. Once current_iteration
// reaches the configured ceiling, Changed stops advancing variables and
// returns false without raising — the caller decides whether hitting the
// cap means success or failure.
func (it *Iteration) Changed() bool {
	if it.iterCount >= it.maxIterations {
		it.log.Debug().Int("iteration", it.iterCount).Msg("iteration ceiling reached, fixpoint loop stopping")
		return false
	}
	it.iterCount++
	any := false
	for _, v := range it.vars {
		if v.Changed() {
			any = true
		}
	}
	it.log.Debug().Int("iteration", it.iterCount).Bool("changed", any).Msg("fixpoint step")
	return any
}

// CurrentIteration returns the number of Changed calls that have run.
func (it *Iteration) CurrentIteration() int { return it.iterCount }

// MaxIterations returns the configured ceiling.
func (it *Iteration) MaxIterations() int { return it.maxIterations }

// Reset resets every managed variable and the iteration counter, without
// forgetting which variables are registered.
func (it *Iteration) Reset() {
	it.iterCount = 0
	for _, v := range it.vars {
		v.Reset()
	}
}
