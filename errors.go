package agentrt

import "errors"

// CannotHappenError marks a structural assertion violated at tick time —
// not a recoverable condition like a failed guard, but a programmer error
// in how the tree was assembled (Switch returns one when no case matches
// and no default is set). Seeing one of these
// means a construction-time check should have caught the problem and
// didn't; callers should treat it as fatal to that tick, not retry it.
type CannotHappenError struct {
	NodeName string
	Reason   string
}

func (e *CannotHappenError) Error() string {
	return "agentrt: cannot happen in " + e.NodeName + ": " + e.Reason
}

// ConstructionError wraps a failure that occurred while assembling a tree
// (a Builder method, a node constructor) rather than while ticking one.
type ConstructionError struct {
	Component string
	Reason    string
}

func (e *ConstructionError) Error() string {
	return "agentrt: cannot construct " + e.Component + ": " + e.Reason
}

// Sentinel errors for conditions callers commonly want to match with
// errors.Is rather than inspect by type.
var (
	// ErrHalted names the halted-node condition. No node in this package
	// returns it: a node ticked after Halt starts a fresh invocation.
	ErrHalted = errors.New("agentrt: node halted")
	// ErrEmptyComposite names the condition of a Sequence or Selector
	// with no children. Neither returns nor publishes it: an empty
	// Sequence succeeds vacuously and an empty Selector fails vacuously,
	// both with a nil error.
	ErrEmptyComposite = errors.New("agentrt: composite has no children")
)
