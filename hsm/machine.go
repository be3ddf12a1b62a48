package hsm

import (
	"context"
	"math/rand/v2"
	"sort"
	"sync"
	"time"

	"github.com/kestrelrun/agentrt"
)

const (
	defaultStateHistoryCap      = 100
	defaultTransitionHistoryCap = 1000
)

// TransitionRecord is one entry in a StateMachine's transition history,
// recorded only while history is enabled via EnableTransitionHistory.
type TransitionRecord struct {
	From      string
	To        string
	Timestamp time.Time
}

// StateMachine is a tick-driven hierarchical state machine: construct it
// with AddState/AddTransition/SetInitialState (or via Builder), then
// call Tick once per step. It is not safe for concurrent Tick calls from
// multiple goroutines, matching Tree's single-ticker contract; reads of
// history/current state are safe to call from other goroutines.
type StateMachine struct {
	name string
	mu   sync.RWMutex

	states   map[string]*SMState
	initial  string
	current  string
	previous string

	enteredAt map[string]time.Time

	blackboard *agentrt.Blackboard
	clock      agentrt.Clock

	stateHistory      []string
	transitionHistory []TransitionRecord
	historyEnabled    bool

	debugCb DebugCallback
}

// NewStateMachine creates an empty, unstarted StateMachine named name.
func NewStateMachine(name string, opts ...SMOption) *StateMachine {
	sm := &StateMachine{
		name:      name,
		states:    make(map[string]*SMState),
		enteredAt: make(map[string]time.Time),
	}
	for _, opt := range opts {
		opt(sm)
	}
	if sm.blackboard == nil {
		sm.blackboard = agentrt.NewBlackboard()
	}
	if sm.clock == nil {
		sm.clock = agentrt.RealClock{}
	}
	return sm
}

// Name returns the machine's name, used in error messages and DebugInfo.
func (sm *StateMachine) Name() string { return sm.name }

// Blackboard returns the machine's private blackboard.
func (sm *StateMachine) Blackboard() *agentrt.Blackboard { return sm.blackboard }

// AddState registers s. A nil state is a construction error.
func (sm *StateMachine) AddState(s *SMState) error {
	if s == nil {
		return &ConstructionError{Machine: sm.name, Reason: "nil state"}
	}
	sm.mu.Lock()
	defer sm.mu.Unlock()
	sm.states[s.Name] = s
	return nil
}

// AddTransition registers t on its source state. Both From and To must
// already have been added via AddState; a nil transition or unknown
// endpoint is a construction error.
func (sm *StateMachine) AddTransition(t *StateTransition) error {
	if t == nil {
		return &ConstructionError{Machine: sm.name, Reason: "nil transition"}
	}
	sm.mu.Lock()
	defer sm.mu.Unlock()
	from, ok := sm.states[t.From]
	if !ok {
		return &ConstructionError{Machine: sm.name, Reason: "transition from unknown state " + t.From}
	}
	if _, ok := sm.states[t.To]; !ok {
		return &ConstructionError{Machine: sm.name, Reason: "transition to unknown state " + t.To}
	}
	from.transitions = append(from.transitions, t)
	return nil
}

// SetInitialState designates name as the state entered by the first
// Tick. An empty or unknown name is a construction error.
func (sm *StateMachine) SetInitialState(name string) error {
	sm.mu.Lock()
	defer sm.mu.Unlock()
	if name == "" {
		return &ConstructionError{Machine: sm.name, Reason: "empty initial state name"}
	}
	if _, ok := sm.states[name]; !ok {
		return &ConstructionError{Machine: sm.name, Reason: "unknown initial state " + name}
	}
	sm.initial = name
	return nil
}

// CurrentState returns the machine's current state, if any.
func (sm *StateMachine) CurrentState() (*SMState, bool) {
	sm.mu.RLock()
	defer sm.mu.RUnlock()
	st, ok := sm.states[sm.current]
	return st, ok
}

// CurrentStateName returns the name of the current state, or "" if the
// machine has not yet ticked for the first time.
func (sm *StateMachine) CurrentStateName() string {
	sm.mu.RLock()
	defer sm.mu.RUnlock()
	return sm.current
}

// PreviousState returns the state the machine was in immediately before
// its last transition.
func (sm *StateMachine) PreviousState() (*SMState, bool) {
	sm.mu.RLock()
	defer sm.mu.RUnlock()
	st, ok := sm.states[sm.previous]
	return st, ok
}

// EnableTransitionHistory turns transition history recording on or off.
func (sm *StateMachine) EnableTransitionHistory(enabled bool) {
	sm.mu.Lock()
	defer sm.mu.Unlock()
	sm.historyEnabled = enabled
}

// SetDebugCallback installs cb to receive lifecycle/transition
// notifications from future Tick calls. Pass nil to remove it.
func (sm *StateMachine) SetDebugCallback(cb DebugCallback) {
	sm.mu.Lock()
	defer sm.mu.Unlock()
	sm.debugCb = cb
}

// StateHistory returns a copy of the entered-state name log, oldest
// first, capped at the most recent 100 entries.
func (sm *StateMachine) StateHistory() []string {
	sm.mu.RLock()
	defer sm.mu.RUnlock()
	out := make([]string, len(sm.stateHistory))
	copy(out, sm.stateHistory)
	return out
}

// TransitionHistory returns a copy of the recorded transition log,
// oldest first, capped at the most recent 1000 entries. Empty unless
// EnableTransitionHistory(true) was called.
func (sm *StateMachine) TransitionHistory() []TransitionRecord {
	sm.mu.RLock()
	defer sm.mu.RUnlock()
	out := make([]TransitionRecord, len(sm.transitionHistory))
	copy(out, sm.transitionHistory)
	return out
}

// Reset returns the machine to its unstarted state: no current state,
// all timers cleared, history logs cleared. It does not clear the
// blackboard or the debug callback.
func (sm *StateMachine) Reset() {
	sm.mu.Lock()
	defer sm.mu.Unlock()
	sm.current = ""
	sm.previous = ""
	sm.enteredAt = make(map[string]time.Time)
	sm.stateHistory = nil
	sm.transitionHistory = nil
	for _, st := range sm.states {
		st.historyH = nil
	}
}

func (sm *StateMachine) emit(info DebugInfo) {
	if sm.debugCb != nil {
		info.Machine = sm.name
		info.Timestamp = sm.clock.Now()
		sm.debugCb(info)
	}
}

func (sm *StateMachine) recordStateEntered(name string) {
	sm.stateHistory = append(sm.stateHistory, name)
	if len(sm.stateHistory) > defaultStateHistoryCap {
		sm.stateHistory = sm.stateHistory[len(sm.stateHistory)-defaultStateHistoryCap:]
	}
}

func (sm *StateMachine) recordTransition(from, to string) {
	if !sm.historyEnabled {
		return
	}
	sm.transitionHistory = append(sm.transitionHistory, TransitionRecord{From: from, To: to, Timestamp: sm.clock.Now()})
	if len(sm.transitionHistory) > defaultTransitionHistoryCap {
		sm.transitionHistory = sm.transitionHistory[len(sm.transitionHistory)-defaultTransitionHistoryCap:]
	}
}

// enterInitial enters the machine's configured initial state. Used both
// by the top-level first Tick and by composite states dispatching into
// a fresh inner machine.
func (sm *StateMachine) enterInitial(ctx context.Context) {
	sm.mu.Lock()
	defer sm.mu.Unlock()
	sm.enterLocked(ctx, sm.initial, "")
}

func (sm *StateMachine) enterLocked(ctx context.Context, name, viaEntryPoint string) {
	st := sm.states[name]
	sm.current = name
	sm.enteredAt[name] = sm.clock.Now()
	sm.recordStateEntered(name)
	if st != nil {
		st.runEnter(ctx, sm.blackboard, viaEntryPoint)
	}
	sm.emit(DebugInfo{Kind: StateEntered, State: name})
}

// exitCurrent runs the current state's exit hooks without selecting a
// new state, used when an owning composite state itself exits.
func (sm *StateMachine) exitCurrent(ctx context.Context) {
	sm.mu.Lock()
	defer sm.mu.Unlock()
	if sm.current == "" {
		return
	}
	st := sm.states[sm.current]
	if st != nil {
		st.runExit(ctx, sm.blackboard)
	}
	delete(sm.enteredAt, sm.current)
	sm.emit(DebugInfo{Kind: StateExited, State: sm.current})
}

// restoreHistory re-enters the state recorded in rec, recursing into
// nested composites when rec carries deep-history children.
func (sm *StateMachine) restoreHistory(ctx context.Context, rec *historyRecord) {
	sm.mu.Lock()
	target := rec.state
	if _, ok := sm.states[target]; !ok {
		target = sm.initial
	}
	st := sm.states[target]
	if st != nil && st.IsComposite() && rec.inner != nil {
		st.historyH = rec.inner
	}
	sm.enterLocked(ctx, target, "")
	sm.mu.Unlock()
}

// forceTransition enters target directly, bypassing guard evaluation,
// used for named entry points and TransitionToPrevious.
func (sm *StateMachine) forceTransition(ctx context.Context, target string) error {
	sm.mu.Lock()
	if _, ok := sm.states[target]; !ok {
		sm.mu.Unlock()
		return &ConstructionError{Machine: sm.name, Reason: "unknown state " + target}
	}
	from := sm.current
	var fromState *SMState
	if from != "" {
		fromState = sm.states[from]
	}
	sm.mu.Unlock()

	if fromState != nil {
		fromState.runExit(ctx, sm.blackboard)
	}

	sm.mu.Lock()
	sm.previous = from
	sm.recordTransition(from, target)
	sm.enterLocked(ctx, target, "")
	sm.mu.Unlock()
	return nil
}

// TransitionToPrevious force-transitions from the current state back to
// the previous one, bypassing ordinary guard/condition evaluation.
func (sm *StateMachine) TransitionToPrevious() error {
	sm.mu.RLock()
	target := sm.previous
	sm.mu.RUnlock()
	if target == "" {
		return &ConstructionError{Machine: sm.name, Reason: "no previous state to transition to"}
	}
	return sm.forceTransition(context.Background(), target)
}

// Tick advances the machine by one step, implementing:
//  1. if there is no current state, enter the initial state and return.
//  2. invoke the current state's onUpdate.
//  3. collect outgoing transitions, dropping Ignored ones and raising a
//     CannotHappenError if a CannotHappen transition is the one that
//     would fire.
//  4. evaluate transitions in descending priority: plain (non-weighted,
//     non-probabilistic) transitions with a true condition take
//     precedence over weighted/probabilistic ones; among weighted or
//     probabilistic candidates that pass their timer/condition/Bernoulli
//     filter, a single weighted draw picks the one that fires.
//  5. on fire, run the target's onGuard; a false guard cancels the
//     transition entirely for this tick (no exit/enter takes effect,
//     the current state is unchanged, and no other candidate is tried
//     until the next Tick). Otherwise exit the source, run the
//     transition's action, and enter the target.
func (sm *StateMachine) Tick(ctx context.Context) error {
	sm.mu.Lock()
	if sm.current == "" {
		sm.enterLocked(ctx, sm.initial, "")
		sm.mu.Unlock()
		return nil
	}
	current := sm.current
	st := sm.states[current]
	sm.mu.Unlock()

	if st == nil {
		return nil
	}
	if err := st.runUpdate(ctx, sm.blackboard); err != nil {
		return err
	}
	sm.emit(DebugInfo{Kind: StateUpdated, State: current})

	sm.mu.RLock()
	enteredAt := sm.enteredAt[current]
	candidates := make([]*StateTransition, 0, len(st.transitions))
	for _, t := range st.transitions {
		if t.Kind == Ignored {
			continue
		}
		candidates = append(candidates, t)
	}
	sm.mu.RUnlock()

	sort.SliceStable(candidates, func(i, j int) bool { return candidates[i].Priority > candidates[j].Priority })

	now := sm.clock.Now()
	var plain, weighted []*StateTransition
	for _, t := range candidates {
		sm.emit(DebugInfo{Kind: TransitionEvaluated, From: t.From, To: t.To, TransitionInfo: t.transitionInfoLabel()})
		if !t.timerSatisfied(now, enteredAt) {
			continue
		}
		if !t.conditionHolds(ctx, sm.blackboard) {
			continue
		}
		if t.isWeighted() {
			if t.HasProbability && rand.Float64() >= t.Probability {
				continue
			}
			weighted = append(weighted, t)
			continue
		}
		plain = append(plain, t)
	}

	chosen := sm.pickTransition(plain, weighted)
	if chosen == nil {
		return nil
	}
	if chosen.Kind == CannotHappen {
		return &CannotHappenError{Machine: sm.name, From: chosen.From, To: chosen.To}
	}
	return sm.fire(ctx, chosen)
}

// pickTransition applies the plain-before-weighted precedence rule:
// the highest-priority plain candidate with a true condition wins; only
// when there are none does a single weighted draw over weighted pick.
func (sm *StateMachine) pickTransition(plain, weighted []*StateTransition) *StateTransition {
	if len(plain) > 0 {
		return plain[0]
	}
	if len(weighted) == 0 {
		return nil
	}
	total := 0.0
	for _, t := range weighted {
		total += t.weight()
	}
	if total <= 0 {
		return weighted[0]
	}
	r := rand.Float64() * total
	for _, t := range weighted {
		r -= t.weight()
		if r <= 0 {
			return t
		}
	}
	return weighted[len(weighted)-1]
}

func (sm *StateMachine) fire(ctx context.Context, t *StateTransition) error {
	sm.mu.RLock()
	targetState := sm.states[t.To]
	sm.mu.RUnlock()

	guardPassed := true
	if targetState != nil && targetState.OnGuard != nil {
		guardPassed = targetState.OnGuard(ctx, sm.blackboard)
	}
	if !guardPassed {
		sm.emit(DebugInfo{Kind: TransitionRejected, From: t.From, To: t.To, TransitionInfo: t.transitionInfoLabel(), GuardPassed: false})
		return nil
	}

	sm.mu.RLock()
	sourceState := sm.states[t.From]
	sm.mu.RUnlock()
	if sourceState != nil {
		sourceState.runExit(ctx, sm.blackboard)
		sm.emit(DebugInfo{Kind: StateExited, State: t.From})
	}
	if t.Action != nil {
		t.Action(ctx, sm.blackboard)
	}

	sm.mu.Lock()
	sm.previous = t.From
	sm.recordTransition(t.From, t.To)
	sm.enterLocked(ctx, t.To, t.EntryPoint)
	sm.mu.Unlock()

	sm.emit(DebugInfo{Kind: TransitionTaken, From: t.From, To: t.To, TransitionInfo: t.transitionInfoLabel(), GuardPassed: true})
	return nil
}
