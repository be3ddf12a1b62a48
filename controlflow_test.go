package agentrt_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kestrelrun/agentrt"
)

func TestConditionalLatchesChosenBranchUntilTerminal(t *testing.T) {
	condCalls := 0
	cond := func(ctx context.Context, bb *agentrt.Blackboard) bool {
		condCalls++
		return true
	}

	// then-branch reports Running on its first tick, Success on its second.
	ticks := 0
	then := &haltableNode{
		tick: func(ctx context.Context, bb *agentrt.Blackboard) (agentrt.Status, error) {
			ticks++
			if ticks < 2 {
				return agentrt.Running, nil
			}
			return agentrt.Success, nil
		},
	}

	n := agentrt.NewConditional("c", cond, then)
	bb := agentrt.NewBlackboard()

	status, err := n.Tick(context.Background(), bb)
	require.NoError(t, err)
	assert.Equal(t, agentrt.Running, status)
	assert.Equal(t, 1, condCalls, "cond evaluated once to pick the branch")

	// Still mid-branch: cond must not be re-evaluated while Running.
	status, err = n.Tick(context.Background(), bb)
	require.NoError(t, err)
	assert.Equal(t, agentrt.Success, status)
	assert.Equal(t, 1, condCalls, "cond must not be re-evaluated until the branch terminates")

	// Branch terminated: the next Tick re-evaluates cond.
	_, err = n.Tick(context.Background(), bb)
	require.NoError(t, err)
	assert.Equal(t, 2, condCalls)
}

func TestConditionalElseBranch(t *testing.T) {
	flag := false
	cond := func(ctx context.Context, bb *agentrt.Blackboard) bool { return flag }
	then := agentrt.NewAction("then", func(ctx context.Context, bb *agentrt.Blackboard) error { return nil })
	els := agentrt.NewAction("else", func(ctx context.Context, bb *agentrt.Blackboard) error { return assert.AnError })

	n := agentrt.NewConditionalElse("c", cond, then, els)
	bb := agentrt.NewBlackboard()

	status, err := n.Tick(context.Background(), bb)
	require.Error(t, err)
	assert.Equal(t, agentrt.Failure, status)

	flag = true
	status, err = n.Tick(context.Background(), bb)
	require.NoError(t, err)
	assert.Equal(t, agentrt.Success, status)
}

func TestConditionalNoElseFailsWithoutTouchingAnything(t *testing.T) {
	cond := func(ctx context.Context, bb *agentrt.Blackboard) bool { return false }
	then := agentrt.NewAction("then", func(ctx context.Context, bb *agentrt.Blackboard) error {
		t.Fatal("then must not run when cond is false")
		return nil
	})

	n := agentrt.NewConditional("c", cond, then)
	status, err := n.Tick(context.Background(), agentrt.NewBlackboard())
	require.NoError(t, err)
	assert.Equal(t, agentrt.Failure, status)
}

func TestConditionalHaltClearsActiveBranch(t *testing.T) {
	halted := false
	running := &haltableNode{
		tick: func(ctx context.Context, bb *agentrt.Blackboard) (agentrt.Status, error) {
			return agentrt.Running, nil
		},
		halt: func() { halted = true },
	}
	cond := func(ctx context.Context, bb *agentrt.Blackboard) bool { return true }

	n := agentrt.NewConditional("c", cond, running)
	_, _ = n.Tick(context.Background(), agentrt.NewBlackboard())
	n.Halt()

	assert.True(t, halted)
}

// haltableNode is a minimal agentrt.Node double for exercising Halt
// propagation without depending on a concrete leaf type's own semantics.
type haltableNode struct {
	tick func(ctx context.Context, bb *agentrt.Blackboard) (agentrt.Status, error)
	halt func()
}

func (h *haltableNode) Name() string { return "haltable" }
func (h *haltableNode) Tick(ctx context.Context, bb *agentrt.Blackboard) (agentrt.Status, error) {
	return h.tick(ctx, bb)
}
func (h *haltableNode) Halt() {
	if h.halt != nil {
		h.halt()
	}
}
