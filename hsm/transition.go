package hsm

import (
	"context"
	"time"

	"github.com/kestrelrun/agentrt"
)

// TransitionKind classifies how a StateTransition participates in
// evaluation. Valid transitions are evaluated and may fire; Ignored
// transitions are documented no-ops (Tick drops them before evaluating
// anything, so their condition never runs and they never fire);
// CannotHappen transitions assert a condition the builder believes can
// never hold — firing one is a hard error.
type TransitionKind int

const (
	Valid TransitionKind = iota
	Ignored
	CannotHappen
)

func (k TransitionKind) String() string {
	switch k {
	case Ignored:
		return "ignored"
	case CannotHappen:
		return "cannot-happen"
	default:
		return "valid"
	}
}

// StateTransition is one outgoing edge from a state. Cond is the user
// condition (nil means always-true). A transition with HasDuration set
// only becomes eligible once its source state has been current for at
// least Duration; one with HasWeight or HasProbability set participates
// in the weighted/probabilistic draw instead of plain priority matching.
type StateTransition struct {
	From string
	To   string
	Kind TransitionKind

	Priority int
	Cond     SMCondition
	Action   StateAction

	// EntryPoint names a target entry point (see SMState.EntryPoint)
	// instead of entering To via its default initial configuration.
	EntryPoint string

	HasDuration bool
	Duration    time.Duration

	HasWeight      bool
	Weight         float64
	HasProbability bool
	Probability    float64
}

func (t *StateTransition) weight() float64 {
	if t.HasWeight {
		return t.Weight
	}
	return 1
}

func (t *StateTransition) isWeighted() bool {
	return t.HasWeight || t.HasProbability
}

// conditionHolds evaluates Cond, treating nil as always-true.
func (t *StateTransition) conditionHolds(ctx context.Context, bb *agentrt.Blackboard) bool {
	if t.Cond == nil {
		return true
	}
	return t.Cond(ctx, bb)
}

// timerSatisfied reports whether t's timed window (if any) has elapsed
// since since (the source state's entry time).
func (t *StateTransition) timerSatisfied(now, since time.Time) bool {
	if !t.HasDuration {
		return true
	}
	return now.Sub(since) >= t.Duration
}

// transitionInfoLabel is the DebugInfo.TransitionInfo value for t.
func (t *StateTransition) transitionInfoLabel() string {
	switch {
	case t.HasProbability:
		return "probabilistic"
	case t.HasWeight:
		return "weighted"
	case t.HasDuration:
		return "timed"
	default:
		return "condition"
	}
}
