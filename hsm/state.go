package hsm

import (
	"context"

	"github.com/kestrelrun/agentrt"
)

// StateAction runs on a state's entry, update, or exit.
type StateAction func(ctx context.Context, bb *agentrt.Blackboard)

// SMCondition evaluates a guard or transition condition against the
// machine's blackboard. A nil SMCondition is treated as always-true.
type SMCondition func(ctx context.Context, bb *agentrt.Blackboard) bool

// SMState is one named state in a tick-driven StateMachine. Use
// NewSMState for a plain state or NewCompositeState for one that owns
// a nested inner machine and/or orthogonal regions.
type SMState struct {
	Name     string
	OnEnter  StateAction
	OnUpdate StateAction
	OnExit   StateAction

	// OnGuard runs against this state when it is the *target* of a
	// candidate transition. A false result cancels the transition
	// entirely: the source state remains current and the machine does
	// not attempt the next-priority candidate until the following tick.
	OnGuard SMCondition

	// inner, history and regions make this state composite. inner is
	// nil for a plain leaf state.
	inner    *StateMachine
	history  HistoryPolicy
	historyH *historyRecord
	regions  []*Region

	// entryPoints/exitPoints map named entry/exit points to substate
	// names inside inner, populated by the builder's EntryPoint/ExitPoint.
	entryPoints map[string]string
	exitPoints  map[string]string

	transitions []*StateTransition
}

// NewSMState creates a plain (non-composite) state.
func NewSMState(name string) *SMState {
	return &SMState{Name: name}
}

// NewCompositeState creates a state whose entry/exit dispatch into inner
// according to policy, and whose update ticks inner plus every region.
func NewCompositeState(name string, policy HistoryPolicy, inner *StateMachine, regions ...*Region) *SMState {
	return &SMState{
		Name:    name,
		inner:   inner,
		history: policy,
		regions: regions,
	}
}

// IsComposite reports whether s owns a nested inner machine.
func (s *SMState) IsComposite() bool { return s.inner != nil }

// EntryPoint names a substate of s's inner machine as a forced entry
// target: a transition into s via this named point enters inner
// normally and then force-transitions to the named substate.
func (s *SMState) EntryPoint(point, substate string) *SMState {
	if s.entryPoints == nil {
		s.entryPoints = make(map[string]string)
	}
	s.entryPoints[point] = substate
	return s
}

// ExitPoint names a substate of s's inner machine whose activation
// should be treated as this composite state being ready to exit via
// point. Exit points are bookkeeping for the builder's fluent surface;
// the routing itself is expressed as ordinary transitions out of the
// composite state.
func (s *SMState) ExitPoint(point, substate string) *SMState {
	if s.exitPoints == nil {
		s.exitPoints = make(map[string]string)
	}
	s.exitPoints[point] = substate
	return s
}

func (s *SMState) runEnter(ctx context.Context, bb *agentrt.Blackboard, viaEntryPoint string) {
	if s.OnEnter != nil {
		s.OnEnter(ctx, bb)
	}
	if !s.IsComposite() {
		return
	}
	if target, ok := s.entryPoints[viaEntryPoint]; viaEntryPoint != "" && ok {
		s.inner.enterInitial(ctx)
		_ = s.inner.forceTransition(ctx, target)
	} else if s.history != NoHistory && s.historyH != nil {
		s.inner.restoreHistory(ctx, s.historyH)
	} else {
		s.inner.enterInitial(ctx)
	}
	for _, r := range s.regions {
		r.machine.enterInitial(ctx)
	}
}

func (s *SMState) runUpdate(ctx context.Context, bb *agentrt.Blackboard) error {
	if s.OnUpdate != nil {
		s.OnUpdate(ctx, bb)
	}
	if s.IsComposite() {
		if err := s.inner.Tick(ctx); err != nil {
			return err
		}
		for _, r := range s.regions {
			if err := r.machine.Tick(ctx); err != nil {
				return err
			}
		}
	}
	return nil
}

func (s *SMState) runExit(ctx context.Context, bb *agentrt.Blackboard) {
	if s.IsComposite() {
		if s.history != NoHistory {
			s.historyH = recordHistory(s.inner, s.history)
		}
		s.inner.exitCurrent(ctx)
		for _, r := range s.regions {
			r.machine.exitCurrent(ctx)
		}
	}
	if s.OnExit != nil {
		s.OnExit(ctx, bb)
	}
}
