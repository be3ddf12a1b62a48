package builder

import (
	"time"

	"github.com/kestrelrun/agentrt"
)

// Invert queues an Inverter to wrap the next node in the current frame.
func (b *Builder) Invert(name string) *Builder {
	return b.Decorate(name, func(child agentrt.Node) agentrt.Node {
		return agentrt.NewInverter(name, child)
	})
}

// ForceSuccess queues a Succeeder.
func (b *Builder) ForceSuccess(name string) *Builder {
	return b.Decorate(name, func(child agentrt.Node) agentrt.Node {
		return agentrt.NewSucceeder(name, child)
	})
}

// ForceFailure queues a Failer.
func (b *Builder) ForceFailure(name string) *Builder {
	return b.Decorate(name, func(child agentrt.Node) agentrt.Node {
		return agentrt.NewFailer(name, child)
	})
}

// Repeat queues a Repeat decorator running its child count times.
func (b *Builder) Repeat(name string, count int) *Builder {
	return b.Decorate(name, func(child agentrt.Node) agentrt.Node {
		return agentrt.NewRepeat(name, count, child)
	})
}

// Retry queues a Retry decorator allowing up to maxAttempts.
func (b *Builder) Retry(name string, maxAttempts int) *Builder {
	return b.Decorate(name, func(child agentrt.Node) agentrt.Node {
		return agentrt.NewRetry(name, maxAttempts, child)
	})
}

// Timeout queues a Timeout decorator. A nil clock uses RealClock.
func (b *Builder) Timeout(name string, d time.Duration, clock agentrt.Clock) *Builder {
	return b.Decorate(name, func(child agentrt.Node) agentrt.Node {
		return agentrt.NewTimeout(name, d, clock, child)
	})
}

// Cooldown queues a Cooldown decorator.
func (b *Builder) Cooldown(name string, d time.Duration, clock agentrt.Clock) *Builder {
	return b.Decorate(name, func(child agentrt.Node) agentrt.Node {
		return agentrt.NewCooldown(name, d, clock, child)
	})
}

// Memory queues a Memory decorator with the given latch policy.
func (b *Builder) Memory(name string, policy agentrt.MemoryPolicy) *Builder {
	return b.Decorate(name, func(child agentrt.Node) agentrt.Node {
		return agentrt.NewMemory(name, policy, child)
	})
}

// Debounce queues a Debounce decorator.
func (b *Builder) Debounce(name string, window time.Duration, clock agentrt.Clock) *Builder {
	return b.Decorate(name, func(child agentrt.Node) agentrt.Node {
		return agentrt.NewDebounce(name, window, clock, child)
	})
}
