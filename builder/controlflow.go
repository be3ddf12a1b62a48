package builder

import (
	"context"

	"github.com/kestrelrun/agentrt"
)

// Action appends a synchronous leaf built from fn.
func (b *Builder) Action(name string, fn agentrt.ActionFunc) *Builder {
	if b.err != nil {
		return b
	}
	b.append(agentrt.NewAction(name, fn))
	return b
}

// ActionAsync appends a leaf that runs fn on its own goroutine, reporting
// Running until fn returns.
func (b *Builder) ActionAsync(name string, fn func(ctx context.Context, bb *agentrt.Blackboard) error) *Builder {
	if b.err != nil {
		return b
	}
	b.append(agentrt.NewFutureFunc(name, fn))
	return b
}

// ActionTask appends a resumable coroutine leaf: fn reads from resume
// once per logical step and sends Running on yield to suspend, finally
// sending a terminal Status.
func (b *Builder) ActionTask(name string, fn func(ctx context.Context, bb *agentrt.Blackboard, resume <-chan struct{}, yield chan<- agentrt.Status)) *Builder {
	if b.err != nil {
		return b
	}
	b.append(agentrt.NewCoroutineTask(name, fn))
	return b
}

// Subtree appends a lazily-built node: factory runs at most once, on the
// first Tick, letting large trees defer construction of branches that
// may never be reached.
func (b *Builder) Subtree(name string, factory func() agentrt.Node) *Builder {
	if b.err != nil {
		return b
	}
	b.append(agentrt.NewSubtree(name, factory))
	return b
}

// Condition opens a branch node: cond picks Then (the next node
// appended) or, after a call to Else, the node appended there. With no
// Else, a false cond reports Failure. Close with End.
func (b *Builder) Condition(name string, cond agentrt.Condition) *Builder {
	if b.err != nil {
		return b
	}
	b.stack = append(b.stack, &frame{kind: frameCondition, name: name, cond: cond})
	return b
}

// Else switches a Condition frame from collecting the then-branch to
// collecting the else-branch. It is only valid directly inside a
// Condition frame opened by the matching Condition call.
func (b *Builder) Else() *Builder {
	if b.err != nil {
		return b
	}
	top := b.top()
	if top == nil || top.kind != frameCondition {
		b.fail("Builder.Else", "Else called outside an open Condition frame")
		return b
	}
	if top.thenNode == nil {
		b.fail("Builder.Else", "condition "+top.name+" switched to Else with no then-branch node yet")
		return b
	}
	top.elseActive = true
	return b
}

// WhileLoop opens a node that re-ticks its single child every Tick as
// long as cond holds, resetting the child and reporting Success the
// moment cond turns false. Close with End.
func (b *Builder) WhileLoop(name string, cond agentrt.Condition) *Builder {
	if b.err != nil {
		return b
	}
	b.stack = append(b.stack, &frame{kind: frameWhile, name: name, cond: cond})
	return b
}

// ForLoop opens a node that ticks its single child once per iteration in
// [0, count), publishing the iteration index to the blackboard under
// indexKey (ignored if empty). Close with End.
func (b *Builder) ForLoop(name string, count int, indexKey string) *Builder {
	if b.err != nil {
		return b
	}
	b.stack = append(b.stack, &frame{kind: frameFor, name: name, count: count, indexKey: indexKey})
	return b
}

// SwitchNode opens a node that ticks whichever case's node matches
// selector's result, or DefaultCase's node if none match. Populate cases
// with AddCase, the fallback with DefaultCase, then close with End.
func (b *Builder) SwitchNode(name string, selector func(ctx context.Context, bb *agentrt.Blackboard) any) *Builder {
	if b.err != nil {
		return b
	}
	b.stack = append(b.stack, &frame{kind: frameSwitch, name: name, selector: selector})
	return b
}

// AddCase registers the next appended node as the branch selected when
// SwitchNode's selector returns key. Must be called directly inside an
// open SwitchNode frame, once per case.
func (b *Builder) AddCase(key any) *Builder {
	if b.err != nil {
		return b
	}
	top := b.top()
	if top == nil || top.kind != frameSwitch {
		b.fail("Builder.AddCase", "AddCase called outside an open SwitchNode frame")
		return b
	}
	if top.hasCaseOpen {
		b.fail("Builder.AddCase", "switchNode "+top.name+" has a case still pending a node")
		return b
	}
	top.inDefault = false
	top.hasCaseOpen = true
	top.pendingCase = key
	return b
}

// DefaultCase registers the next appended node as SwitchNode's fallback
// branch, run when no case key matches.
func (b *Builder) DefaultCase() *Builder {
	if b.err != nil {
		return b
	}
	top := b.top()
	if top == nil || top.kind != frameSwitch {
		b.fail("Builder.DefaultCase", "DefaultCase called outside an open SwitchNode frame")
		return b
	}
	if top.hasCaseOpen {
		b.fail("Builder.DefaultCase", "switchNode "+top.name+" has a case still pending a node")
		return b
	}
	top.inDefault = true
	return b
}

// ConditionalSequence opens a Sequence-like node where each child may be
// paired with a precondition via When; a false precondition skips that
// step (treated as vacuously satisfied) instead of failing the whole
// node. Close with End.
func (b *Builder) ConditionalSequence(name string) *Builder {
	if b.err != nil {
		return b
	}
	b.stack = append(b.stack, &frame{kind: frameConditionalSequence, name: name})
	return b
}

// When sets the precondition for the next node appended to an open
// ConditionalSequence frame. Omit the call (or pass nil) to mean "always
// run" for that step.
func (b *Builder) When(cond agentrt.Condition) *Builder {
	if b.err != nil {
		return b
	}
	top := b.top()
	if top == nil || top.kind != frameConditionalSequence {
		b.fail("Builder.When", "When called outside an open ConditionalSequence frame")
		return b
	}
	top.pendingCond = cond
	return b
}
