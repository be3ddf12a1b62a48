package hsm

import "time"

// Builder assembles a StateMachine with a fluent, stack-free API: each
// State/CompositeState call shifts focus to that state for the
// following OnEnter/OnUpdate/OnExit/OnGuard/TransitionTo calls, and each
// TransitionTo/TransitionToAfter call shifts focus to that transition
// for the following WithPriority/WithWeight/WithProbability/WithAction/
// IgnoreEvent/CannotHappen calls. The zero value is not usable; use
// NewBuilder.
type Builder struct {
	sm                *StateMachine
	current           *SMState
	currentTransition *StateTransition
	err               error
}

// NewBuilder starts a fresh Builder for a machine named name.
func NewBuilder(name string, opts ...SMOption) *Builder {
	return &Builder{sm: NewStateMachine(name, opts...)}
}

// fail records the first construction error seen; once set, every
// subsequent call is a no-op so the whole chain can be written without
// a check after each link, with Build surfacing the error.
func (b *Builder) fail(component, reason string) {
	if b.err == nil {
		b.err = &ConstructionError{Machine: b.sm.Name(), Reason: component + ": " + reason}
	}
}

// Initial designates name as the machine's initial state. name must
// already have been added via State or CompositeState.
func (b *Builder) Initial(name string) *Builder {
	if b.err != nil {
		return b
	}
	if err := b.sm.SetInitialState(name); err != nil {
		b.fail("Initial", err.Error())
	}
	return b
}

// State adds a plain leaf state and focuses the builder on it.
func (b *Builder) State(name string) *Builder {
	if b.err != nil {
		return b
	}
	s := NewSMState(name)
	if err := b.sm.AddState(s); err != nil {
		b.fail("State", err.Error())
		return b
	}
	b.current = s
	b.currentTransition = nil
	return b
}

// CompositeState adds a state owning a nested inner machine, entered
// and exited according to policy, and focuses the builder on it. Use
// Region afterward to attach orthogonal regions.
func (b *Builder) CompositeState(name string, policy HistoryPolicy, inner *StateMachine) *Builder {
	if b.err != nil {
		return b
	}
	s := NewCompositeState(name, policy, inner)
	if err := b.sm.AddState(s); err != nil {
		b.fail("CompositeState", err.Error())
		return b
	}
	b.current = s
	b.currentTransition = nil
	return b
}

// Region attaches an orthogonal region to the focused composite state.
func (b *Builder) Region(name string, inner *StateMachine) *Builder {
	if b.err != nil {
		return b
	}
	if b.current == nil || !b.current.IsComposite() {
		b.fail("Region", "Region called with no focused composite state")
		return b
	}
	b.current.AddRegion(NewRegion(name, inner))
	return b
}

// EntryPoint names a substate of the focused composite state's inner
// machine as the target of a forced entry via point.
func (b *Builder) EntryPoint(point, substate string) *Builder {
	if b.err != nil {
		return b
	}
	if b.current == nil || !b.current.IsComposite() {
		b.fail("EntryPoint", "EntryPoint called with no focused composite state")
		return b
	}
	b.current.EntryPoint(point, substate)
	return b
}

// ExitPoint names a substate of the focused composite state's inner
// machine as corresponding to an outer exit point.
func (b *Builder) ExitPoint(point, substate string) *Builder {
	if b.err != nil {
		return b
	}
	if b.current == nil || !b.current.IsComposite() {
		b.fail("ExitPoint", "ExitPoint called with no focused composite state")
		return b
	}
	b.current.ExitPoint(point, substate)
	return b
}

// OnEnter sets the focused state's entry action.
func (b *Builder) OnEnter(fn StateAction) *Builder {
	if b.err != nil {
		return b
	}
	if b.current == nil {
		b.fail("OnEnter", "OnEnter called with no focused state")
		return b
	}
	b.current.OnEnter = fn
	return b
}

// OnUpdate sets the focused state's per-tick update action.
func (b *Builder) OnUpdate(fn StateAction) *Builder {
	if b.err != nil {
		return b
	}
	if b.current == nil {
		b.fail("OnUpdate", "OnUpdate called with no focused state")
		return b
	}
	b.current.OnUpdate = fn
	return b
}

// OnExit sets the focused state's exit action.
func (b *Builder) OnExit(fn StateAction) *Builder {
	if b.err != nil {
		return b
	}
	if b.current == nil {
		b.fail("OnExit", "OnExit called with no focused state")
		return b
	}
	b.current.OnExit = fn
	return b
}

// OnGuard sets the condition evaluated against the focused state
// whenever it is the target of a candidate transition.
func (b *Builder) OnGuard(fn SMCondition) *Builder {
	if b.err != nil {
		return b
	}
	if b.current == nil {
		b.fail("OnGuard", "OnGuard called with no focused state")
		return b
	}
	b.current.OnGuard = fn
	return b
}

// TransitionTo adds a transition from the focused state to to, guarded
// by cond (nil means always-true), and focuses the builder on it.
func (b *Builder) TransitionTo(to string, cond SMCondition) *Builder {
	if b.err != nil {
		return b
	}
	if b.current == nil {
		b.fail("TransitionTo", "TransitionTo called with no focused state")
		return b
	}
	t := &StateTransition{From: b.current.Name, To: to, Cond: cond}
	if err := b.sm.AddTransition(t); err != nil {
		b.fail("TransitionTo", err.Error())
		return b
	}
	b.currentTransition = t
	return b
}

// TransitionToAfter adds a timed transition from the focused state to
// to, eligible once the focused state has been current for at least d,
// additionally guarded by cond (nil means always-true once the timer
// elapses).
func (b *Builder) TransitionToAfter(to string, d time.Duration, cond SMCondition) *Builder {
	b.TransitionTo(to, cond)
	if b.err != nil {
		return b
	}
	b.currentTransition.HasDuration = true
	b.currentTransition.Duration = d
	return b
}

func (b *Builder) requireTransition(component string) bool {
	if b.currentTransition == nil {
		b.fail(component, component+" called with no focused transition")
		return false
	}
	return true
}

// WithPriority sets the focused transition's evaluation priority; ties
// fall back to declaration order. Higher fires first.
func (b *Builder) WithPriority(p int) *Builder {
	if b.err != nil || !b.requireTransition("WithPriority") {
		return b
	}
	b.currentTransition.Priority = p
	return b
}

// WithWeight marks the focused transition as a participant in the
// weighted draw among simultaneously-fireable weighted/probabilistic
// transitions, with relative weight w (default 1 if never set).
func (b *Builder) WithWeight(w float64) *Builder {
	if b.err != nil || !b.requireTransition("WithWeight") {
		return b
	}
	b.currentTransition.HasWeight = true
	b.currentTransition.Weight = w
	return b
}

// WithProbability adds a Bernoulli(p) filter the focused transition
// must pass each tick before it is eligible for the weighted draw.
func (b *Builder) WithProbability(p float64) *Builder {
	if b.err != nil || !b.requireTransition("WithProbability") {
		return b
	}
	b.currentTransition.HasProbability = true
	b.currentTransition.Probability = p
	return b
}

// WithAction sets an action run when the focused transition fires,
// after the source state's exit and before the target state's entry.
func (b *Builder) WithAction(fn StateAction) *Builder {
	if b.err != nil || !b.requireTransition("WithAction") {
		return b
	}
	b.currentTransition.Action = fn
	return b
}

// IgnoreEvent marks the focused transition Ignored: Tick skips it without
// evaluating its condition, so it never fires.
func (b *Builder) IgnoreEvent() *Builder {
	if b.err != nil || !b.requireTransition("IgnoreEvent") {
		return b
	}
	b.currentTransition.Kind = Ignored
	return b
}

// CannotHappen marks the focused transition as an assertion: Tick
// returns a CannotHappenError if it is ever the one selected to fire.
func (b *Builder) CannotHappen() *Builder {
	if b.err != nil || !b.requireTransition("CannotHappen") {
		return b
	}
	b.currentTransition.Kind = CannotHappen
	return b
}

// Build validates and returns the assembled StateMachine.
func (b *Builder) Build() (*StateMachine, error) {
	if b.err != nil {
		return nil, b.err
	}
	if b.sm.initial == "" {
		return nil, &ConstructionError{Machine: b.sm.Name(), Reason: "no initial state set"}
	}
	return b.sm, nil
}
