package agentrt

import (
	"sync"

	"github.com/google/uuid"
)

// BlackboardEventKind enumerates the observable blackboard operations.
type BlackboardEventKind int

const (
	// BlackboardSet fires after a value is stored.
	BlackboardSet BlackboardEventKind = iota
	// BlackboardGetHit fires after a read that found a value of the requested type.
	BlackboardGetHit
	// BlackboardGetMiss fires after a read that found nothing, or found a
	// value of a different type than requested.
	BlackboardGetMiss
	// BlackboardRemove fires after a key is removed.
	BlackboardRemove
	// BlackboardClear fires after the innermost scope is cleared.
	BlackboardClear
)

func (k BlackboardEventKind) String() string {
	switch k {
	case BlackboardSet:
		return "Set"
	case BlackboardGetHit:
		return "Get(hit)"
	case BlackboardGetMiss:
		return "Get(miss)"
	case BlackboardRemove:
		return "Remove"
	case BlackboardClear:
		return "Clear"
	default:
		return "Unknown"
	}
}

// BlackboardEvent is delivered, in issue order, to an observer registered
// via Blackboard.SetObserver.
type BlackboardEvent struct {
	Kind BlackboardEventKind
	Key  string
}

// BlackboardObserver receives blackboard events. It must not block or
// re-enter the blackboard in a way that deadlocks; the store always
// releases its internal lock before invoking the observer. A panicking
// observer only loses further delivery for the remainder of the
// operation that triggered it — see Blackboard.notify.
type BlackboardObserver func(BlackboardEvent)

// scopeEntry is the type-erased, scope-tagged storage cell for one key.
type scopeEntry struct {
	value any
}

// Blackboard is a concurrent, scoped key/value store with observer
// notifications. The zero value is not usable; construct with
// NewBlackboard. Scope push/pop (ScopeGuard) is not meant to be shared
// across goroutines: only the writer that pushed a scope should pop it.
type Blackboard struct {
	mu       sync.RWMutex
	id       uuid.UUID
	scopes   []map[string]scopeEntry
	observer BlackboardObserver
}

// NewBlackboard creates an empty Blackboard with a single base scope.
func NewBlackboard() *Blackboard {
	return &Blackboard{
		id:     uuid.New(),
		scopes: []map[string]scopeEntry{make(map[string]scopeEntry)},
	}
}

// ID returns a stable identifier for this blackboard instance, useful for
// correlating log lines across concurrently-ticked trees.
func (b *Blackboard) ID() uuid.UUID { return b.id }

// SetObserver installs cb as the sole observer, replacing any previous one.
// Pass nil to stop observing.
func (b *Blackboard) SetObserver(cb BlackboardObserver) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.observer = cb
}

func (b *Blackboard) notify(evt BlackboardEvent) {
	b.mu.RLock()
	cb := b.observer
	b.mu.RUnlock()
	if cb == nil {
		return
	}
	defer func() { _ = recover() }() // an observer must not crash the core
	cb(evt)
}

// Set stores v under key in the innermost scope, tagged by its runtime
// type. A later Get[U] with U != T will report the key absent.
func Set[T any](b *Blackboard, key string, v T) {
	b.mu.Lock()
	top := b.scopes[len(b.scopes)-1]
	top[key] = scopeEntry{value: v}
	b.mu.Unlock()
	b.notify(BlackboardEvent{Kind: BlackboardSet, Key: key})
}

// Get returns the innermost-defined value for key, if any, cast to T. A
// missing key or a type mismatch both report ok=false — no panic, no
// error.
func Get[T any](b *Blackboard, key string) (value T, ok bool) {
	b.mu.RLock()
	var raw any
	found := false
	for i := len(b.scopes) - 1; i >= 0; i-- {
		if e, exists := b.scopes[i][key]; exists {
			raw, found = e.value, true
			break
		}
	}
	b.mu.RUnlock()

	if found {
		if v, cast := raw.(T); cast {
			b.notify(BlackboardEvent{Kind: BlackboardGetHit, Key: key})
			return v, true
		}
	}
	b.notify(BlackboardEvent{Kind: BlackboardGetMiss, Key: key})
	var zero T
	return zero, false
}

// Has reports whether key is defined in any visible scope, regardless of
// its value's type.
func (b *Blackboard) Has(key string) bool {
	b.mu.RLock()
	defer b.mu.RUnlock()
	for i := len(b.scopes) - 1; i >= 0; i-- {
		if _, ok := b.scopes[i][key]; ok {
			return true
		}
	}
	return false
}

// Remove deletes key from the innermost scope that defines it.
func (b *Blackboard) Remove(key string) {
	b.mu.Lock()
	for i := len(b.scopes) - 1; i >= 0; i-- {
		if _, ok := b.scopes[i][key]; ok {
			delete(b.scopes[i], key)
			break
		}
	}
	b.mu.Unlock()
	b.notify(BlackboardEvent{Kind: BlackboardRemove, Key: key})
}

// Clear empties the innermost scope only; outer scopes are untouched.
func (b *Blackboard) Clear() {
	b.mu.Lock()
	b.scopes[len(b.scopes)-1] = make(map[string]scopeEntry)
	b.mu.Unlock()
	b.notify(BlackboardEvent{Kind: BlackboardClear})
}

// ScopeGuard releases the scope it was returned for. Release is idempotent;
// calling it more than once after the first has no further effect.
type ScopeGuard struct {
	b       *Blackboard
	depth   int
	release sync.Once
}

// PushScope opens a new overlay scope: writes made while it is live shadow
// outer bindings for the same key. Releasing the returned guard restores
// the prior bindings for exactly the keys this scope wrote, leaving
// everything else untouched. Scope guards form a stack; release them in
// LIFO order (releasing one out of order truncates every scope pushed
// after it).
func (b *Blackboard) PushScope() *ScopeGuard {
	b.mu.Lock()
	b.scopes = append(b.scopes, make(map[string]scopeEntry))
	depth := len(b.scopes)
	b.mu.Unlock()
	return &ScopeGuard{b: b, depth: depth}
}

// Release pops this scope (and any scope pushed after it, which would
// otherwise be left dangling) back to the state before PushScope was
// called.
func (g *ScopeGuard) Release() {
	g.release.Do(func() {
		g.b.mu.Lock()
		if g.depth <= len(g.b.scopes) && g.depth > 1 {
			g.b.scopes = g.b.scopes[:g.depth-1]
		}
		g.b.mu.Unlock()
	})
}
