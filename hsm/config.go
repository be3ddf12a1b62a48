package hsm

import "github.com/kestrelrun/agentrt"

// SMOption configures a StateMachine at construction time.
type SMOption func(*StateMachine)

// WithBlackboard injects a pre-built blackboard instead of a fresh one,
// letting a composite state's region share scoping conventions with its
// owner while still keeping its own key namespace.
func WithBlackboard(bb *agentrt.Blackboard) SMOption {
	return func(sm *StateMachine) { sm.blackboard = bb }
}

// WithClock injects a Clock for timed transitions; defaults to RealClock.
func WithClock(c agentrt.Clock) SMOption {
	return func(sm *StateMachine) { sm.clock = c }
}
