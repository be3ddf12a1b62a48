package datalog

import (
	"cmp"
	"context"
	"math"
	"sort"
)

// CountUnbounded is the sentinel Leaper.Count return value meaning "no
// constraint from this leaper" — used by FilterAnti to signal pass-
// through (nothing excluded) the way a real candidate count never would.
const CountUnbounded = math.MaxUint64

// Leaper constrains which Val candidates are valid continuations of a
// given prefix tuple, for use in a leapfrog-trie multi-way join via
// ExtendInto. Leapers are sorted cheapest-first by Count, then walked in
// a propose/intersect loop until they all agree on a value.
//
// Clone exists because ExtendInto processes chunks of source tuples
// concurrently, and a Leaper with any internal scratch state needs its
// own copy per chunk.
type Leaper[Prefix any, Val any] interface {
	// Count estimates how many Val candidates exist for prefix — cheap
	// leapers sort first. Return CountUnbounded for "no constraint".
	Count(prefix Prefix) uint64
	// Propose writes the smallest candidate value for prefix. ok is
	// false if there are no candidates.
	Propose(prefix Prefix) (val Val, ok bool)
	// Intersect advances val to the first candidate this leaper accepts
	// that is >= val. ok is false if no such value exists.
	Intersect(prefix Prefix, val Val) (advanced Val, ok bool)
	// Clone returns an independent copy for use by a concurrent chunk.
	Clone() Leaper[Prefix, Val]
}

// keyRange locates the contiguous sub-slice of a sorted slice whose
// extracted key equals k, using gallop search to find the start and a
// linear scan to find the end (equal-key runs in a join are small
// relative to the relation, so a scan beats a second gallop call here).
func keyRange[T any, K cmp.Ordered](elems []T, k K, keyOf func(T) K) []T {
	lo := gallopIndex(elems, k, keyOf)
	if lo >= len(elems) || keyOf(elems[lo]) != k {
		return nil
	}
	hi := lo
	for hi < len(elems) && keyOf(elems[hi]) == k {
		hi++
	}
	return elems[lo:hi]
}

// ExtendWith is a semi-join Leaper: for a prefix, it proposes Val values
// drawn from a sorted source slice whose key matches prefixKey(prefix).
// source must already be sorted by srcKey, then by srcVal within each key
// — the same order FromSlice(...).Elements() produces when Tuple.Less
// compares key before value.
type ExtendWith[Prefix any, Key cmp.Ordered, Val cmp.Ordered, Source any] struct {
	source    []Source
	prefixKey func(Prefix) Key
	srcKey    func(Source) Key
	srcVal    func(Source) Val
}

// NewExtendWith builds an ExtendWith leaper over a pre-sorted source.
func NewExtendWith[Prefix any, Key cmp.Ordered, Val cmp.Ordered, Source any](
	source []Source, prefixKey func(Prefix) Key, srcKey func(Source) Key, srcVal func(Source) Val,
) *ExtendWith[Prefix, Key, Val, Source] {
	return &ExtendWith[Prefix, Key, Val, Source]{source: source, prefixKey: prefixKey, srcKey: srcKey, srcVal: srcVal}
}

func (e *ExtendWith[Prefix, Key, Val, Source]) Count(prefix Prefix) uint64 {
	return uint64(len(keyRange(e.source, e.prefixKey(prefix), e.srcKey)))
}

func (e *ExtendWith[Prefix, Key, Val, Source]) Propose(prefix Prefix) (Val, bool) {
	r := keyRange(e.source, e.prefixKey(prefix), e.srcKey)
	var zero Val
	if len(r) == 0 {
		return zero, false
	}
	return e.srcVal(r[0]), true
}

func (e *ExtendWith[Prefix, Key, Val, Source]) Intersect(prefix Prefix, val Val) (Val, bool) {
	r := keyRange(e.source, e.prefixKey(prefix), e.srcKey)
	if len(r) == 0 {
		return val, false
	}
	idx := sort.Search(len(r), func(i int) bool { return e.srcVal(r[i]) >= val })
	if idx == len(r) {
		return val, false
	}
	return e.srcVal(r[idx]), true
}

func (e *ExtendWith[Prefix, Key, Val, Source]) Clone() Leaper[Prefix, Val] {
	cp := *e
	return &cp
}

// FilterAnti is an anti-join Leaper: it never proposes values of its own,
// and Intersect rejects exactly the values present in its source for the
// matching key, passing everything else through.
type FilterAnti[Prefix any, Key cmp.Ordered, Val cmp.Ordered, Source any] struct {
	source    []Source
	prefixKey func(Prefix) Key
	srcKey    func(Source) Key
	srcVal    func(Source) Val
}

// NewFilterAnti builds a FilterAnti leaper over a pre-sorted source.
func NewFilterAnti[Prefix any, Key cmp.Ordered, Val cmp.Ordered, Source any](
	source []Source, prefixKey func(Prefix) Key, srcKey func(Source) Key, srcVal func(Source) Val,
) *FilterAnti[Prefix, Key, Val, Source] {
	return &FilterAnti[Prefix, Key, Val, Source]{source: source, prefixKey: prefixKey, srcKey: srcKey, srcVal: srcVal}
}

func (f *FilterAnti[Prefix, Key, Val, Source]) Count(prefix Prefix) uint64 {
	if len(keyRange(f.source, f.prefixKey(prefix), f.srcKey)) == 0 {
		return CountUnbounded
	}
	return 0
}

func (f *FilterAnti[Prefix, Key, Val, Source]) Propose(Prefix) (Val, bool) {
	var zero Val
	return zero, false
}

func (f *FilterAnti[Prefix, Key, Val, Source]) Intersect(prefix Prefix, val Val) (Val, bool) {
	r := keyRange(f.source, f.prefixKey(prefix), f.srcKey)
	if len(r) == 0 {
		return val, true
	}
	idx := sort.Search(len(r), func(i int) bool { return f.srcVal(r[i]) >= val })
	if idx == len(r) {
		return val, true
	}
	if f.srcVal(r[idx]) == val {
		return val, false
	}
	return val, true
}

func (f *FilterAnti[Prefix, Key, Val, Source]) Clone() Leaper[Prefix, Val] {
	cp := *f
	return &cp
}

// ExtendAnti is a Leaper combining a base source with an exclude source:
// it proposes/intersects values present in base but not in exclude, for
// the matching key on both sides.
type ExtendAnti[Prefix any, Key cmp.Ordered, Val cmp.Ordered, Source any, Exclude any] struct {
	base, exclude   []Source
	excludeList     []Exclude
	prefixKey       func(Prefix) Key
	srcKey          func(Source) Key
	srcVal          func(Source) Val
	exclKey         func(Exclude) Key
	exclVal         func(Exclude) Val
}

// NewExtendAnti builds an ExtendAnti leaper over pre-sorted base and
// exclude sources.
func NewExtendAnti[Prefix any, Key cmp.Ordered, Val cmp.Ordered, Source any, Exclude any](
	base []Source, exclude []Exclude,
	prefixKey func(Prefix) Key, srcKey func(Source) Key, srcVal func(Source) Val,
	exclKey func(Exclude) Key, exclVal func(Exclude) Val,
) *ExtendAnti[Prefix, Key, Val, Source, Exclude] {
	return &ExtendAnti[Prefix, Key, Val, Source, Exclude]{
		base: base, excludeList: exclude,
		prefixKey: prefixKey, srcKey: srcKey, srcVal: srcVal, exclKey: exclKey, exclVal: exclVal,
	}
}

func (x *ExtendAnti[Prefix, Key, Val, Source, Exclude]) ranges(prefix Prefix) (base []Source, excl []Exclude) {
	k := x.prefixKey(prefix)
	return keyRange(x.base, k, x.srcKey), keyRange(x.excludeList, k, x.exclKey)
}

func (x *ExtendAnti[Prefix, Key, Val, Source, Exclude]) Count(prefix Prefix) uint64 {
	base, excl := x.ranges(prefix)
	if len(base) > len(excl) {
		return uint64(len(base) - len(excl))
	}
	return 0
}

func (x *ExtendAnti[Prefix, Key, Val, Source, Exclude]) excluded(excl []Exclude, v Val) bool {
	idx := sort.Search(len(excl), func(i int) bool { return x.exclVal(excl[i]) >= v })
	return idx < len(excl) && x.exclVal(excl[idx]) == v
}

func (x *ExtendAnti[Prefix, Key, Val, Source, Exclude]) Propose(prefix Prefix) (Val, bool) {
	base, excl := x.ranges(prefix)
	for _, t := range base {
		v := x.srcVal(t)
		if !x.excluded(excl, v) {
			return v, true
		}
	}
	var zero Val
	return zero, false
}

func (x *ExtendAnti[Prefix, Key, Val, Source, Exclude]) Intersect(prefix Prefix, val Val) (Val, bool) {
	base, excl := x.ranges(prefix)
	idx := sort.Search(len(base), func(i int) bool { return x.srcVal(base[i]) >= val })
	for ; idx < len(base); idx++ {
		v := x.srcVal(base[idx])
		if !x.excluded(excl, v) {
			return v, true
		}
	}
	return val, false
}

func (x *ExtendAnti[Prefix, Key, Val, Source, Exclude]) Clone() Leaper[Prefix, Val] {
	cp := *x
	return &cp
}

// leapfrogChunkSize is the number of source tuples each concurrent
// ExtendInto task processes, carried over unchanged from the original
// implementation.
const leapfrogChunkSize = 128

// ExtendInto performs a parallel leapfrog-trie multi-way join: for every
// tuple in source, it sorts leapers cheapest-first by Count, proposes an
// initial candidate from the cheapest, and repeatedly intersects across
// every leaper — advancing via next — until one rejects, emitting
// combine(prefix, val) for each value every leaper accepted. Work is
// chunked in groups of leapfrogChunkSize tuples, each chunk cloning its
// own leapers, and chunks run concurrently via exec.
func ExtendInto[Source any, Output Tuple[Output], Val any](
	ctx context.Context, exec Executor,
	source []Source, leapers []Leaper[Source, Val],
	combine func(Source, Val) Output, next func(Val) Val,
	output *Variable[Output],
) {
	n := len(source)
	if n == 0 || len(leapers) == 0 {
		return
	}
	numChunks := (n + leapfrogChunkSize - 1) / leapfrogChunkSize
	results := make([][]Output, numChunks)

	processChunk := func(chunk []Source, local []Leaper[Source, Val]) []Output {
		var out []Output
		for _, prefix := range chunk {
			sort.Slice(local, func(a, b int) bool { return local[a].Count(prefix) < local[b].Count(prefix) })
			val, ok := local[0].Propose(prefix)
			if !ok {
				continue
			}
			for {
				allAccept := true
				for _, lp := range local {
					v, accepted := lp.Intersect(prefix, val)
					if !accepted {
						allAccept = false
						break
					}
					val = v
				}
				if !allAccept {
					break
				}
				out = append(out, combine(prefix, val))
				val = next(val)
			}
		}
		return out
	}

	executorOrDefault(exec).Bulk(ctx, numChunks, func(ci int) {
		lo := ci * leapfrogChunkSize
		hi := lo + leapfrogChunkSize
		if hi > n {
			hi = n
		}
		local := make([]Leaper[Source, Val], len(leapers))
		for i, lp := range leapers {
			local[i] = lp.Clone()
		}
		results[ci] = processChunk(source[lo:hi], local)
	})

	for _, r := range results {
		if len(r) > 0 {
			output.InsertSlice(r)
		}
	}
}
