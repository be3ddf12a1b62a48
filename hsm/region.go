package hsm

// Region is one orthogonal branch of a composite state: an independent
// StateMachine with its own private blackboard, ticked once per update
// of the owning composite state alongside its inner machine. Regions
// within the same composite state do not interact with each other.
type Region struct {
	name    string
	machine *StateMachine
}

// NewRegion wraps machine as a named orthogonal region. machine should
// not be shared with another Region or composite state.
func NewRegion(name string, machine *StateMachine) *Region {
	return &Region{name: name, machine: machine}
}

// Name returns the region's name, as used by StateMachine.RegionNames
// and RegionCurrentState on the owning composite state's machine.
func (r *Region) Name() string { return r.name }

// regionNames returns the names of s's orthogonal regions in
// declaration order, or nil if s is not composite or has none.
func (s *SMState) regionNames() []string {
	if len(s.regions) == 0 {
		return nil
	}
	names := make([]string, len(s.regions))
	for i, r := range s.regions {
		names[i] = r.name
	}
	return names
}

// regionCurrentState returns the current state name of the named
// region, if s owns one by that name.
func (s *SMState) regionCurrentState(name string) (string, bool) {
	for _, r := range s.regions {
		if r.name == name {
			return r.machine.CurrentStateName(), r.machine.current != ""
		}
	}
	return "", false
}

// RegionNames reports the orthogonal region names of sm's current
// state, or nil if the current state is not composite or has none.
func (sm *StateMachine) RegionNames() []string {
	sm.mu.RLock()
	defer sm.mu.RUnlock()
	st := sm.states[sm.current]
	if st == nil {
		return nil
	}
	return st.regionNames()
}

// RegionCurrentState reports the current state name of the named
// region belonging to sm's current (composite) state.
func (sm *StateMachine) RegionCurrentState(name string) (string, bool) {
	sm.mu.RLock()
	defer sm.mu.RUnlock()
	st := sm.states[sm.current]
	if st == nil {
		return "", false
	}
	return st.regionCurrentState(name)
}

