// Package datalog is a semi-naive Datalog evaluation engine: tuples live
// in immutable, sorted, deduplicated Relations; Variables accumulate new
// tuples across fixpoint iterations in a three-layer stable/recent/to-add
// model; joins and leapfrog-trie extends only ever compare a batch's
// "recent" delta against the other side's "stable" history, which is
// what keeps each fixpoint iteration's cost proportional to new facts
// instead of the whole relation.
//
// Every fan-out point (sort, join, extend, aggregate) goes through an
// Executor, exactly like the companion agentrt package, so both can share
// the internal/workerpool implementation without either importing the
// other.
package datalog
