package core

import (
	"testing"

	"github.com/kestrelrun/agentrt/hsm/internal/primitives"
)

func TestComputeLCCA(t *testing.T) {
	tests := []struct {
		source, target, lcca string
	}{
		{"a.b.c", "a.b.d", "a.b"},
		{"a.b", "a.c", "a"},
		{"a", "b", ""},
		{"a.b.c", "a.b.c", "a.b.c"},
	}
	for _, tt := range tests {
		if got := computeLCCA(tt.source, tt.target); got != tt.lcca {
			t.Errorf("computeLCCA(%q, %q) = %q, want %q", tt.source, tt.target, got, tt.lcca)
		}
	}
}

func TestGetAncestors(t *testing.T) {
	tests := []struct {
		path string
		want []string
	}{
		{"a", []string{"a"}},
		{"a.b", []string{"a", "a.b"}},
		{"a.b.c", []string{"a", "a.b", "a.b.c"}},
	}
	for _, tt := range tests {
		if got := getAncestors(tt.path); !equalStringSlices(got, tt.want) {
			t.Errorf("getAncestors(%q) = %v, want %v", tt.path, got, tt.want)
		}
	}
}

func TestResolveInitialLeaf(t *testing.T) {
	child1 := primitives.NewStateConfig("child1", primitives.Atomic)
	child2 := primitives.NewStateConfig("child2", primitives.Atomic)
	compound := primitives.NewStateConfig("compound", primitives.Compound).
		WithInitial("child1").
		WithChildren([]*primitives.StateConfig{child1, child2})

	config := primitives.MachineConfig{
		States: map[string]*primitives.StateConfig{"compound": compound},
	}

	if got := resolveInitialLeaf(&config, "compound"); got != "compound.child1" {
		t.Errorf("resolveInitialLeaf(compound) = %q, want compound.child1", got)
	}
}

func TestSelectAmongTopPriorityDeterministicWithoutProbability(t *testing.T) {
	candidates := []candidateTransition{
		{sourcePath: "a", trans: primitives.TransitionConfig{Target: "x"}, priority: 5},
		{sourcePath: "b", trans: primitives.TransitionConfig{Target: "y"}, priority: 5},
		{sourcePath: "c", trans: primitives.TransitionConfig{Target: "z"}, priority: 1},
	}
	got := selectAmongTopPriority(candidates)
	if got.trans.Target != "x" {
		t.Errorf("selectAmongTopPriority() = %q, want first top-priority candidate %q", got.trans.Target, "x")
	}
}

func TestSelectAmongTopPriorityIgnoresLowerTier(t *testing.T) {
	candidates := []candidateTransition{
		{sourcePath: "a", trans: primitives.TransitionConfig{Target: "only"}, priority: 9},
		{sourcePath: "b", trans: primitives.TransitionConfig{Target: "never", Weight: 1000}, priority: 1},
	}
	got := selectAmongTopPriority(candidates)
	if got.trans.Target != "only" {
		t.Errorf("selectAmongTopPriority() = %q, want %q (lower-priority tier must never win)", got.trans.Target, "only")
	}
}

func TestSelectAmongTopPriorityWeightedRespectsZeroWeight(t *testing.T) {
	candidates := []candidateTransition{
		{sourcePath: "a", trans: primitives.TransitionConfig{Target: "dead", Weight: 0}, priority: 3},
		{sourcePath: "b", trans: primitives.TransitionConfig{Target: "alive", Weight: 5}, priority: 3},
	}
	// alive's Weight makes the tier probabilistic; dead sets neither
	// Weight nor Probability, so its selection weight is zero and it must
	// never be drawn, with no fixed seed needed.
	for i := 0; i < 200; i++ {
		got := selectAmongTopPriority(candidates)
		if got.trans.Target != "alive" {
			t.Fatalf("selectAmongTopPriority() = %q, want %q (zero-weight candidate must never win)", got.trans.Target, "alive")
		}
	}
}
