package agentrt

// Status is the tick-result enumeration. Every node tick produces exactly
// one of these four values; Success and Failure are terminal for that node
// invocation, Running is a suspension point that must be resumed by a later
// tick of the same node, and Idle is only ever observed as a node's resting
// lifecycle value, never returned by tick itself.
type Status int

const (
	// Idle means the node has not been ticked since its last reset.
	Idle Status = iota
	// Running means the node suspended and expects to be ticked again.
	Running
	// Success is a terminal, positive tick result.
	Success
	// Failure is a terminal, negative tick result.
	Failure
)

func (s Status) String() string {
	switch s {
	case Idle:
		return "Idle"
	case Running:
		return "Running"
	case Success:
		return "Success"
	case Failure:
		return "Failure"
	default:
		return "Unknown"
	}
}

// lifecycleState names a node's own resting/active classification,
// distinct from the Status a tick returns. No node in this package stores
// or consults one; each node keeps its in-progress state in its own
// fields. See SPEC_FULL.md's "Supplemented features" note on why this is
// a separate, smaller enum from Status (ported from bonsai's NodeState,
// which has Idle/Running/Halted and is not the same axis as tick Status).
type lifecycleState int

const (
	lifecycleIdle lifecycleState = iota
	lifecycleRunning
	lifecycleHalted
)
