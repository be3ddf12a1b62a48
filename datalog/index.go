package datalog

import (
	"cmp"
	"sort"
)

// SecondaryIndex groups tuples by a derived Key, maintaining each bucket
// in Tuple order and the key set itself in sorted order so GetRange can
// answer inclusive range queries without a full scan. Go has no built-in
// ordered map, so the sorted key slice stands in for the original's
// std::map iteration order.
type SecondaryIndex[T Tuple[T], Key cmp.Ordered] struct {
	keyOf   func(T) Key
	buckets map[Key][]T
	keys    []Key
}

// NewSecondaryIndex builds an index over rel, grouping by keyOf. Each
// bucket is sorted by Tuple order (matching Relation's own ordering), and
// the keys are sorted ascending.
func NewSecondaryIndex[T Tuple[T], Key cmp.Ordered](rel Relation[T], keyOf func(T) Key) *SecondaryIndex[T, Key] {
	idx := &SecondaryIndex[T, Key]{keyOf: keyOf, buckets: make(map[Key][]T)}
	idx.InsertSlice(rel.Elements())
	return idx
}

// Get returns the bucket for key, or nil if key is absent. The returned
// slice must not be mutated by the caller.
func (idx *SecondaryIndex[T, Key]) Get(key Key) []T {
	return idx.buckets[key]
}

// GetRange returns the buckets for every key in [lo, hi], in ascending
// key order.
func (idx *SecondaryIndex[T, Key]) GetRange(lo, hi Key) [][]T {
	start := sort.Search(len(idx.keys), func(i int) bool { return idx.keys[i] >= lo })
	var out [][]T
	for i := start; i < len(idx.keys) && idx.keys[i] <= hi; i++ {
		out = append(out, idx.buckets[idx.keys[i]])
	}
	return out
}

// Insert adds a single tuple to the index.
func (idx *SecondaryIndex[T, Key]) Insert(t T) {
	idx.InsertSlice([]T{t})
}

// InsertSlice adds ts to the index, inserting each into its bucket at the
// position that keeps the bucket sorted and registering any newly-seen
// key in the sorted key slice.
func (idx *SecondaryIndex[T, Key]) InsertSlice(ts []T) {
	for _, t := range ts {
		k := idx.keyOf(t)
		bucket, ok := idx.buckets[k]
		if !ok {
			idx.insertKey(k)
		}
		pos := sort.Search(len(bucket), func(i int) bool { return !bucket[i].Less(t) })
		bucket = append(bucket, t)
		copy(bucket[pos+1:], bucket[pos:])
		bucket[pos] = t
		idx.buckets[k] = bucket
	}
}

func (idx *SecondaryIndex[T, Key]) insertKey(k Key) {
	pos := sort.Search(len(idx.keys), func(i int) bool { return idx.keys[i] >= k })
	idx.keys = append(idx.keys, k)
	copy(idx.keys[pos+1:], idx.keys[pos:])
	idx.keys[pos] = k
}

// Empty reports whether the index holds no tuples.
func (idx *SecondaryIndex[T, Key]) Empty() bool { return len(idx.keys) == 0 }

// Size returns the total number of tuples across every bucket.
func (idx *SecondaryIndex[T, Key]) Size() int {
	n := 0
	for _, b := range idx.buckets {
		n += len(b)
	}
	return n
}

// NumKeys returns the number of distinct keys in the index.
func (idx *SecondaryIndex[T, Key]) NumKeys() int { return len(idx.keys) }
