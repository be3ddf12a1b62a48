package datalog

import (
	"cmp"
	"context"
	"sort"
)

// aggregateChunkSize is the number of input tuples each concurrent
// extraction task handles, carried over unchanged from the original.
const aggregateChunkSize = 256

// Group is one {Key, AggVal} result of Aggregate.
type Group[Key any, AggVal any] struct {
	Key   Key
	Value AggVal
}

// Aggregate groups input tuples by a Key (via keyOf), extracts an AggVal
// per tuple (via valOf), and folds each group with fold starting from
// identity. Extraction is chunked in groups of aggregateChunkSize and run
// concurrently via exec; the extracted pairs are then merged, sorted by
// Key, and folded serially over each equal-key run. The result is sorted
// by Key.
func Aggregate[T any, Key cmp.Ordered, AggVal any](
	ctx context.Context, exec Executor,
	input []T, keyOf func(T) Key, valOf func(T) AggVal, fold func(acc, v AggVal) AggVal, identity AggVal,
) []Group[Key, AggVal] {
	n := len(input)
	if n == 0 {
		return nil
	}

	numChunks := (n + aggregateChunkSize - 1) / aggregateChunkSize
	localVecs := make([][]Group[Key, AggVal], numChunks)

	extractChunk := func(ci int) {
		lo := ci * aggregateChunkSize
		hi := lo + aggregateChunkSize
		if hi > n {
			hi = n
		}
		vec := make([]Group[Key, AggVal], 0, hi-lo)
		for i := lo; i < hi; i++ {
			vec = append(vec, Group[Key, AggVal]{Key: keyOf(input[i]), Value: valOf(input[i])})
		}
		localVecs[ci] = vec
	}

	executorOrDefault(exec).Bulk(ctx, numChunks, extractChunk)

	pairs := make([]Group[Key, AggVal], 0, n)
	for _, lv := range localVecs {
		pairs = append(pairs, lv...)
	}

	sort.Slice(pairs, func(a, b int) bool { return pairs[a].Key < pairs[b].Key })

	result := make([]Group[Key, AggVal], 0, len(pairs))
	i := 0
	for i < len(pairs) {
		curKey := pairs[i].Key
		acc := identity
		for i < len(pairs) && pairs[i].Key == curKey {
			acc = fold(acc, pairs[i].Value)
			i++
		}
		result = append(result, Group[Key, AggVal]{Key: curKey, Value: acc})
	}
	return result
}
