package datalog

import (
	"bytes"
	"context"
	"fmt"
	"sort"

	"github.com/vmihailenco/msgpack/v5"
)

// Tuple is the element type a Relation stores: it must be totally
// ordered and comparable by the engine's own rules, not Go's built-in
// ==, so composite keys (e.g. a struct with a slice field) can still
// participate.
type Tuple[T any] interface {
	// Less reports whether the receiver sorts strictly before other.
	Less(other T) bool
	// Equal reports whether the receiver and other are the same tuple.
	Equal(other T) bool
}

// relationChunkSize is the from-slice parallel sort chunk size, carried
// over unchanged from the original implementation's 2048-tuple chunks.
const relationChunkSize = 2048

// Relation is an immutable, sorted, deduplicated set of tuples. The zero
// value is the empty relation. Relations are cheap to copy (a Relation
// value only holds a slice header over shared backing data) and are
// never mutated in place — every operation that changes membership
// returns a new Relation.
type Relation[T Tuple[T]] struct {
	data []T
}

// FromSlice builds a Relation from an unsorted, possibly duplicate slice,
// sorting (in parallel via exec, above relationChunkSize elements) and
// then deduplicating. data is consumed; callers must not use it
// afterward.
func FromSlice[T Tuple[T]](ctx context.Context, exec Executor, data []T) Relation[T] {
	if len(data) == 0 {
		return Relation[T]{}
	}
	exec = executorOrDefault(exec)
	n := len(data)
	if n > relationChunkSize {
		nchunks := (n + relationChunkSize - 1) / relationChunkSize
		exec.Bulk(ctx, nchunks, func(i int) {
			lo := i * relationChunkSize
			hi := lo + relationChunkSize
			if hi > n {
				hi = n
			}
			chunk := data[lo:hi]
			sort.Slice(chunk, func(a, b int) bool { return chunk[a].Less(chunk[b]) })
		})
		data = mergeChunks(data, relationChunkSize)
	} else {
		sort.Slice(data, func(a, b int) bool { return data[a].Less(data[b]) })
	}
	return Relation[T]{data: deduplicate(data)}
}

// mergeChunks reduces adjacent, already-sorted chunks of size chunkSize
// into one sorted slice by repeated pairwise merging: each pass merges
// neighbouring runs two at a time and doubles the run width, until a
// single run remains.
func mergeChunks[T Tuple[T]](data []T, chunkSize int) []T {
	n := len(data)
	for width := chunkSize; width < n; width *= 2 {
		buf := make([]T, 0, n)
		lo := 0
		for lo+width < n {
			mid := lo + width
			hi := mid + width
			if hi > n {
				hi = n
			}
			buf = append(buf, twoWayMerge(data[lo:mid], data[mid:hi])...)
			lo = hi
		}
		buf = append(buf, data[lo:]...)
		data = buf
	}
	return data
}

func twoWayMerge[T Tuple[T]](a, b []T) []T {
	result := make([]T, 0, len(a)+len(b))
	i, j := 0, 0
	for i < len(a) && j < len(b) {
		if a[i].Less(b[j]) {
			result = append(result, a[i])
			i++
		} else {
			result = append(result, b[j])
			j++
		}
	}
	result = append(result, a[i:]...)
	result = append(result, b[j:]...)
	return result
}

// deduplicate removes consecutive duplicates from an already-sorted
// slice, in place, returning the trimmed slice.
func deduplicate[T Tuple[T]](v []T) []T {
	if len(v) == 0 {
		return v
	}
	write := 0
	for read := 1; read < len(v); read++ {
		if !v[read].Equal(v[write]) {
			write++
			v[write] = v[read]
		}
	}
	return v[:write+1]
}

// Merge two-pointer merges two already-sorted Relations, deduplicating
// tuples equal under Equal.
func Merge[T Tuple[T]](a, b Relation[T]) Relation[T] {
	if a.Empty() {
		return b
	}
	if b.Empty() {
		return a
	}
	ae, be := a.data, b.data
	result := make([]T, 0, len(ae)+len(be))
	i, j := 0, 0
	for i < len(ae) && j < len(be) {
		switch {
		case ae[i].Less(be[j]):
			result = append(result, ae[i])
			i++
		case be[j].Less(ae[i]):
			result = append(result, be[j])
			j++
		default:
			result = append(result, ae[i])
			i++
			j++
		}
	}
	result = append(result, ae[i:]...)
	result = append(result, be[j:]...)
	return Relation[T]{data: result}
}

// Elements returns the relation's tuples in sorted order. The returned
// slice must not be mutated by the caller.
func (r Relation[T]) Elements() []T { return r.data }

// Size returns the number of tuples in the relation.
func (r Relation[T]) Size() int { return len(r.data) }

// Empty reports whether the relation has no tuples.
func (r Relation[T]) Empty() bool { return len(r.data) == 0 }

// relationEnvelope is the msgpack-serializable form of a Relation, used
// by Save/Load in place of the original's raw-memory "STLREL" format —
// msgpack already gives a portable, self-describing binary encoding, so
// there is no reason to hand-roll one.
type relationEnvelope[T any] struct {
	Tuples []T
}

// Save encodes the relation as msgpack.
func (r Relation[T]) Save() ([]byte, error) {
	var buf bytes.Buffer
	if err := msgpack.NewEncoder(&buf).Encode(relationEnvelope[T]{Tuples: r.data}); err != nil {
		return nil, fmt.Errorf("datalog: save relation: %w", err)
	}
	return buf.Bytes(), nil
}

// Load decodes a relation previously produced by Save. The decoded
// tuples are assumed already sorted and deduplicated (as Save only ever
// persists a Relation in that state) and are not re-validated.
func Load[T Tuple[T]](in []byte) (Relation[T], error) {
	var env relationEnvelope[T]
	if err := msgpack.NewDecoder(bytes.NewReader(in)).Decode(&env); err != nil {
		return Relation[T]{}, fmt.Errorf("datalog: load relation: %w", err)
	}
	return Relation[T]{data: env.Tuples}, nil
}
