package datalog_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kestrelrun/agentrt/datalog"
)

func sortedEdges(es []edge) []edge {
	ctx := context.Background()
	return datalog.FromSlice[edge](ctx, nil, append([]edge(nil), es...)).Elements()
}

func TestExtendWithProposesAndIntersects(t *testing.T) {
	source := sortedEdges([]edge{{1, 10}, {1, 20}, {2, 30}})

	ext := datalog.NewExtendWith[int, int, int, edge](source,
		func(p int) int { return p },
		func(e edge) int { return e.From },
		func(e edge) int { return e.To },
	)

	assert.Equal(t, uint64(2), ext.Count(1))
	v, ok := ext.Propose(1)
	require.True(t, ok)
	assert.Equal(t, 10, v)

	v2, ok := ext.Intersect(1, 15)
	require.True(t, ok)
	assert.Equal(t, 20, v2)

	_, ok = ext.Intersect(1, 21)
	assert.False(t, ok)

	assert.Equal(t, uint64(0), ext.Count(99))
}

func TestFilterAntiPassesThroughUnlessExcluded(t *testing.T) {
	source := sortedEdges([]edge{{1, 10}})
	f := datalog.NewFilterAnti[int, int, int, edge](source,
		func(p int) int { return p },
		func(e edge) int { return e.From },
		func(e edge) int { return e.To },
	)

	assert.Equal(t, uint64(0), f.Count(1))
	assert.Equal(t, datalog.CountUnbounded, f.Count(2))

	_, accepted := f.Intersect(1, 10)
	assert.False(t, accepted)

	v, ok := f.Intersect(1, 11)
	assert.True(t, ok)
	assert.Equal(t, 11, v)
}

func TestExtendAntiExcludesMatchingPairs(t *testing.T) {
	base := sortedEdges([]edge{{1, 10}, {1, 20}, {1, 30}})
	exclude := sortedEdges([]edge{{1, 20}})

	x := datalog.NewExtendAnti[int, int, int, edge, edge](base, exclude,
		func(p int) int { return p },
		func(e edge) int { return e.From },
		func(e edge) int { return e.To },
		func(e edge) int { return e.From },
		func(e edge) int { return e.To },
	)

	v, ok := x.Propose(1)
	require.True(t, ok)
	assert.Equal(t, 10, v)

	v2, ok := x.Intersect(1, 11)
	require.True(t, ok)
	assert.Equal(t, 30, v2)
}

func TestExtendIntoLeapfrogJoin(t *testing.T) {
	ctx := context.Background()
	a := sortedEdges([]edge{{1, 10}, {1, 20}, {2, 30}})
	b := sortedEdges([]edge{{1, 20}, {1, 25}, {2, 30}})

	leaperA := datalog.NewExtendWith[int, int, int, edge](a, func(p int) int { return p }, func(e edge) int { return e.From }, func(e edge) int { return e.To })
	leaperB := datalog.NewExtendWith[int, int, int, edge](b, func(p int) int { return p }, func(e edge) int { return e.From }, func(e edge) int { return e.To })

	source := []int{1, 2}
	output := datalog.NewVariable[edge](ctx, nil)

	datalog.ExtendInto[int, edge, int](ctx, nil, source,
		[]datalog.Leaper[int, int]{leaperA, leaperB},
		func(prefix int, val int) edge { return edge{prefix, val} },
		func(v int) int { return v + 1 },
		output,
	)

	require.True(t, output.Changed())
	assert.ElementsMatch(t, []edge{{1, 20}, {2, 30}}, output.Stable().Elements())
}
