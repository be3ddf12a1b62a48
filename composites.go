package agentrt

import "context"

// Sequence ticks its children in order, stopping and returning Running or
// Failure at the first child that does not Succeed. It returns Success
// only once every child has returned Success on this or a prior resumed
// tick. An empty Sequence succeeds vacuously (see ErrEmptyComposite).
//
// A Sequence remembers which child is currently Running across ticks: a
// resumed tick re-ticks that child directly rather than re-ticking
// earlier, already-succeeded children.
type Sequence struct {
	baseNode
	children []Node
	cursor   int
}

// NewSequence builds a Sequence named name over children, ticked in the
// given order.
func NewSequence(name string, children ...Node) *Sequence {
	return &Sequence{baseNode: baseNode{name: name}, children: children}
}

func (s *Sequence) Tick(ctx context.Context, bb *Blackboard) (Status, error) {
	if len(s.children) == 0 {
		return Success, nil
	}
	for s.cursor < len(s.children) {
		status, err := s.children[s.cursor].Tick(ctx, bb)
		if err != nil {
			s.cursor = 0
			return status, err
		}
		switch status {
		case Success:
			s.cursor++
			continue
		case Running:
			return Running, nil
		default: // Failure
			s.cursor = 0
			return Failure, nil
		}
	}
	s.cursor = 0
	return Success, nil
}

func (s *Sequence) Halt() {
	if s.cursor < len(s.children) {
		s.children[s.cursor].Halt()
	}
	s.cursor = 0
}

// Selector ticks its children in order, stopping and returning Running or
// Success at the first child that does not Fail. It returns Failure only
// once every child has returned Failure. An empty Selector fails
// vacuously.
//
// Like Sequence, a Selector remembers which child is Running and resumes
// there rather than re-evaluating earlier, already-failed children.
type Selector struct {
	baseNode
	children []Node
	cursor   int
}

// NewSelector builds a Selector named name over children, ticked in the
// given order.
func NewSelector(name string, children ...Node) *Selector {
	return &Selector{baseNode: baseNode{name: name}, children: children}
}

func (s *Selector) Tick(ctx context.Context, bb *Blackboard) (Status, error) {
	if len(s.children) == 0 {
		return Failure, nil
	}
	for s.cursor < len(s.children) {
		status, err := s.children[s.cursor].Tick(ctx, bb)
		if err != nil {
			s.cursor = 0
			return status, err
		}
		switch status {
		case Failure:
			s.cursor++
			continue
		case Running:
			return Running, nil
		default: // Success
			s.cursor = 0
			return Success, nil
		}
	}
	s.cursor = 0
	return Failure, nil
}

func (s *Selector) Halt() {
	if s.cursor < len(s.children) {
		s.children[s.cursor].Halt()
	}
	s.cursor = 0
}
