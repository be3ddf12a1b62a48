package datalog

import "cmp"

// mergeJoin performs a sort-merge join over two sorted slices that share
// a common, orderable Key: for every matching pair where keyLeft(l) ==
// keyRight(r), it calls combine(l, r) and appends the result to out.
func mergeJoin[L, R, Result any, K cmp.Ordered](left []L, right []R, keyLeft func(L) K, keyRight func(R) K, combine func(L, R) Result, out *[]Result) {
	if len(left) == 0 || len(right) == 0 {
		return
	}
	li, ri := 0, 0
	for li < len(left) && ri < len(right) {
		lk, rk := keyLeft(left[li]), keyRight(right[ri])
		switch {
		case lk < rk:
			li += gallopIndex(left[li:], rk, keyLeft)
		case rk < lk:
			ri += gallopIndex(right[ri:], lk, keyRight)
		default:
			lend := li
			for lend < len(left) && keyLeft(left[lend]) == lk {
				lend++
			}
			rend := ri
			for rend < len(right) && keyRight(right[rend]) == rk {
				rend++
			}
			for a := li; a < lend; a++ {
				for b := ri; b < rend; b++ {
					*out = append(*out, combine(left[a], right[b]))
				}
			}
			li, ri = lend, rend
		}
	}
}

// gallopIndex returns the index of the first element of s whose key is
// not less than target, found via a doubling-window overshoot (phase 1)
// followed by a bounded binary search (phase 2).
func gallopIndex[T any, K cmp.Ordered](s []T, target K, key func(T) K) int {
	lo, hi, step := 0, 0, 1
	for hi < len(s) && key(s[hi]) < target {
		lo = hi
		hi += step
		step *= 2
	}
	if hi > len(s) {
		hi = len(s)
	}
	for lo < hi {
		mid := lo + (hi-lo)/2
		if key(s[mid]) < target {
			lo = mid + 1
		} else {
			hi = mid
		}
	}
	return lo
}

// JoinInto performs the semi-naive binary join between two Variables,
// sharing Key K, combining matches with combine and inserting the results
// into output. Three passes run — stable(left)×recent(right),
// recent(left)×stable(right), recent(left)×recent(right) — which is
// exactly the set of pairs that could not already have been produced by
// an earlier iteration, the semi-naive invariant that keeps each fixpoint
// step proportional to new facts rather than the whole relation so far.
// The three passes run concurrently via exec when it is non-nil.
func JoinInto[T1 Tuple[T1], T2 Tuple[T2], Result Tuple[Result], K cmp.Ordered](
	exec Executor,
	left *Variable[T1], right *Variable[T2], output *Variable[Result],
	keyLeft func(T1) K, keyRight func(T2) K, combine func(T1, T2) Result,
) {
	sl := left.Stable().Elements()
	rl := left.Recent().Elements()
	sr := right.Stable().Elements()
	rr := right.Recent().Elements()

	buffers := make([][]Result, 3)
	executorOrDefault(exec).Bulk(output.ctx, 3, func(i int) {
		switch i {
		case 0:
			mergeJoin(sl, rr, keyLeft, keyRight, combine, &buffers[0])
		case 1:
			mergeJoin(rl, sr, keyLeft, keyRight, combine, &buffers[1])
		case 2:
			mergeJoin(rl, rr, keyLeft, keyRight, combine, &buffers[2])
		}
	})
	for _, buf := range buffers {
		if len(buf) > 0 {
			output.InsertSlice(buf)
		}
	}
}

// hasKey reports whether a sorted slice contains an element whose key
// equals target.
func hasKey[T any, K cmp.Ordered](s []T, target K, key func(T) K) bool {
	idx := gallopIndex(s, target, key)
	return idx < len(s) && key(s[idx]) == target
}

// JoinAnti emits tuples from left's recent delta for which no matching
// tuple exists in right (checked against both right.Stable and
// right.Recent), inserting survivors into output.
func JoinAnti[T1 Tuple[T1], T2 Tuple[T2], K cmp.Ordered](
	left *Variable[T1], right *Variable[T2], output *Variable[T1],
	keyLeft func(T1) K, keyRight func(T2) K,
) {
	sr := right.Stable().Elements()
	rr := right.Recent().Elements()

	out := make([]T1, 0)
	for _, t := range left.Recent().Elements() {
		k := keyLeft(t)
		if !hasKey(sr, k, keyRight) && !hasKey(rr, k, keyRight) {
			out = append(out, t)
		}
	}
	if len(out) > 0 {
		output.InsertSlice(out)
	}
}
