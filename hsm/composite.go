package hsm

// AddRegion attaches an additional orthogonal region to a composite
// state after construction, used by Builder.Region.
func (s *SMState) AddRegion(r *Region) *SMState {
	s.regions = append(s.regions, r)
	return s
}

// Inner returns the nested machine owned by a composite state, or nil
// for a plain state.
func (s *SMState) Inner() *StateMachine { return s.inner }

// History returns the composite state's configured history policy.
func (s *SMState) History() HistoryPolicy { return s.history }
