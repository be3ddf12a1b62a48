package datalog_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kestrelrun/agentrt/datalog"
)

func TestVariableChangedLifecycle(t *testing.T) {
	v := datalog.NewVariable[pair](context.Background(), nil)

	assert.False(t, v.Changed(), "no pending inserts: Changed must be false")

	v.InsertSlice([]pair{{1, 1}, {2, 2}})
	require.True(t, v.Changed())
	assert.Equal(t, 2, v.Recent().Size())
	assert.Equal(t, 2, v.Stable().Size())

	// Re-inserting already-stable facts contributes nothing new.
	v.Insert(pair{1, 1})
	assert.False(t, v.Changed())
	assert.True(t, v.Recent().Empty())

	// A mix of old and new facts: only the new ones should surface.
	v.InsertSlice([]pair{{1, 1}, {3, 3}})
	require.True(t, v.Changed())
	assert.Equal(t, []pair{{3, 3}}, v.Recent().Elements())
	assert.Equal(t, 3, v.Stable().Size())
}

func TestVariableCompleteDrainsWithoutDedupingAgainstStable(t *testing.T) {
	v := datalog.NewVariable[pair](context.Background(), nil)
	v.Insert(pair{1, 1})
	require.True(t, v.Changed())

	v.Insert(pair{2, 2})
	result := v.Complete()

	assert.Equal(t, []pair{{1, 1}, {2, 2}}, result.Elements())
}

func TestVariableReset(t *testing.T) {
	v := datalog.NewVariable[pair](context.Background(), nil)
	v.Insert(pair{1, 1})
	v.Changed()
	v.Reset()

	assert.Equal(t, 0, v.TotalSize())
	assert.True(t, v.Stable().Empty())
}

func TestVariableTotalSize(t *testing.T) {
	v := datalog.NewVariable[pair](context.Background(), nil)
	v.InsertSlice([]pair{{1, 1}})
	v.Changed()
	v.Insert(pair{2, 2}) // queued, not yet promoted

	assert.Equal(t, 2, v.TotalSize())
}
