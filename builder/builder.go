// Package builder provides a fluent, stack-machine API for assembling
// behaviour trees, in the spirit of the option-pattern helpers it grew
// out of: every call returns the Builder itself so a tree reads top to
// bottom as nesting, closed off with End.
package builder

import (
	"context"
	"fmt"

	"github.com/kestrelrun/agentrt"
)

// frame is one entry in the builder's construction stack: a composite or
// decorator awaiting its children/child, plus whatever pending decorator
// should wrap the very next node appended to this frame.
type frame struct {
	kind     frameKind
	name     string
	children []agentrt.Node

	// pending is a decorator factory queued by a Decorate-family call:
	// it wraps the next single node appended to the CURRENT frame,
	// then clears. End requires this be nil when the frame closes (and
	// Build refuses any frame still open) — a dangling pending decorator with no child is a
	// construction error, the fluent-API equivalent of an unmatched
	// open paren.
	pendingDecorator func(agentrt.Node) agentrt.Node
	pendingName      string

	// frameCondition: cond plus the then/else slots; Else switches
	// which slot the next appended child lands in.
	cond       agentrt.Condition
	thenNode   agentrt.Node
	elsNode    agentrt.Node
	elseActive bool

	// frameWhile / frameFor
	count    int
	indexKey string

	// frameSwitch
	selector     func(ctx context.Context, bb *agentrt.Blackboard) any
	cases        []agentrt.SwitchCase
	def          agentrt.Node
	inDefault    bool
	hasCaseOpen  bool
	pendingCase  any

	// frameConditionalSequence: conds runs parallel to children; a
	// pending cond (set by When) applies to the next appended child,
	// then clears back to "always run".
	conds       []agentrt.Condition
	pendingCond agentrt.Condition
}

type frameKind int

const (
	frameSequence frameKind = iota
	frameSelector
	frameReactiveSequence
	frameDynamicSelector
	frameParallel
	frameCondition
	frameWhile
	frameFor
	frameSwitch
	frameConditionalSequence
)

// Builder assembles a tree via nested Sequence/Selector/Parallel/decorator
// calls. The zero value is not usable; use New.
type Builder struct {
	stack          []*frame
	parallelPolicy []parallelSpec
	root           agentrt.Node
	err            error
}

// New starts a fresh Builder.
func New() *Builder {
	return &Builder{}
}

// fail records the first construction error seen; once set, every
// subsequent call becomes a no-op so the whole chain can be written
// without an error check after each link, with Build surfacing it.
func (b *Builder) fail(component, reason string) {
	if b.err == nil {
		b.err = &agentrt.ConstructionError{Component: component, Reason: reason}
	}
}

func (b *Builder) top() *frame {
	if len(b.stack) == 0 {
		return nil
	}
	return b.stack[len(b.stack)-1]
}

// append attaches node to the current frame (applying any pending
// decorator first), or — if the stack is empty — makes node the root,
// which only Build() can later retrieve.
func (b *Builder) append(node agentrt.Node) {
	top := b.top()
	if top == nil {
		if b.root != nil {
			b.fail("Builder", "a root node was already produced; wrap multiple nodes in a composite")
			return
		}
		b.root = node
		return
	}
	if top.pendingDecorator != nil {
		node = top.pendingDecorator(node)
		top.pendingDecorator, top.pendingName = nil, ""
	}
	switch top.kind {
	case frameCondition:
		if top.elseActive {
			if top.elsNode != nil {
				b.fail("Builder.Condition", "else branch already has a node")
				return
			}
			top.elsNode = node
		} else {
			if top.thenNode != nil {
				b.fail("Builder.Condition", "then branch already has a node")
				return
			}
			top.thenNode = node
		}
	case frameSwitch:
		switch {
		case top.inDefault:
			if top.def != nil {
				b.fail("Builder.Switch", "defaultCase already has a node")
				return
			}
			top.def = node
		case top.hasCaseOpen:
			top.cases = append(top.cases, agentrt.SwitchCase{Key: top.pendingCase, Node: node})
			top.hasCaseOpen = false
		default:
			b.fail("Builder.Switch", "node added with no open addCase/defaultCase")
			return
		}
	case frameConditionalSequence:
		top.children = append(top.children, node)
		top.conds = append(top.conds, top.pendingCond)
		top.pendingCond = nil
	default:
		top.children = append(top.children, node)
	}
}

func (b *Builder) open(kind frameKind, name string) *Builder {
	if b.err != nil {
		return b
	}
	b.stack = append(b.stack, &frame{kind: kind, name: name})
	return b
}

// Sequence opens a Sequence composite named name; children follow until
// the matching End.
func (b *Builder) Sequence(name string) *Builder { return b.open(frameSequence, name) }

// Selector opens a Selector composite named name.
func (b *Builder) Selector(name string) *Builder { return b.open(frameSelector, name) }

// ReactiveSequence opens a ReactiveSequence composite named name.
func (b *Builder) ReactiveSequence(name string) *Builder {
	return b.open(frameReactiveSequence, name)
}

// DynamicSelector opens a DynamicSelector composite named name.
func (b *Builder) DynamicSelector(name string) *Builder {
	return b.open(frameDynamicSelector, name)
}

// Parallel opens a Parallel composite named name with the given policy;
// the executor may be nil to use the package default.
func (b *Builder) Parallel(name string, policy agentrt.ParallelPolicy, executor agentrt.Executor) *Builder {
	if b.err != nil {
		return b
	}
	b.stack = append(b.stack, &frame{kind: frameParallel, name: name})
	b.parallelPolicy = append(b.parallelPolicy, parallelSpec{policy: policy, executor: executor})
	return b
}

type parallelSpec struct {
	policy   agentrt.ParallelPolicy
	executor agentrt.Executor
}

// Leaf appends a ready-made Node (typically built with NewAction,
// NewFuture, NewCoroutineTask, or a hand-written Node) as a child of the
// current frame.
func (b *Builder) Leaf(node agentrt.Node) *Builder {
	if b.err != nil {
		return b
	}
	b.append(node)
	return b
}

// Decorate queues factory to wrap the next single node appended to the
// current frame — either a Leaf call or a nested composite's End. Only
// one decorator may be pending at a time per frame; nesting decorators
// is done by calling Decorate again inside a just-opened composite, or
// by composing factory closures yourself.
func (b *Builder) Decorate(name string, factory func(child agentrt.Node) agentrt.Node) *Builder {
	if b.err != nil {
		return b
	}
	top := b.top()
	if top == nil {
		b.fail("Builder."+name, "Decorate called with no open frame")
		return b
	}
	if top.pendingDecorator != nil {
		b.fail("Builder."+name, "a decorator is already pending on this frame ("+top.pendingName+"); give it its child first")
		return b
	}
	top.pendingDecorator = factory
	top.pendingName = name
	return b
}

// End closes the most recently opened composite, attaching the finished
// node as a child of whatever frame is now on top (or leaving it as the
// pending root, if the stack is now empty).
func (b *Builder) End() *Builder {
	if b.err != nil {
		return b
	}
	if len(b.stack) == 0 {
		b.fail("Builder.End", "End called with no open frame")
		return b
	}
	top := b.stack[len(b.stack)-1]
	if top.pendingDecorator != nil {
		b.fail("Builder.End", "frame "+top.name+" closed with a decorator ("+top.pendingName+") still pending a child")
		return b
	}

	var node agentrt.Node
	switch top.kind {
	case frameSequence:
		node = agentrt.NewSequence(top.name, top.children...)
	case frameSelector:
		node = agentrt.NewSelector(top.name, top.children...)
	case frameReactiveSequence:
		node = agentrt.NewReactiveSequence(top.name, top.children...)
	case frameDynamicSelector:
		node = agentrt.NewDynamicSelector(top.name, top.children...)
	case frameParallel:
		spec := b.parallelPolicy[len(b.parallelPolicy)-1]
		b.parallelPolicy = b.parallelPolicy[:len(b.parallelPolicy)-1]
		p, err := agentrt.NewParallel(top.name, spec.policy, spec.executor, top.children...)
		if err != nil {
			b.fail("Builder.End", err.Error())
			return b
		}
		node = p
	case frameCondition:
		if top.thenNode == nil {
			b.fail("Builder.End", "condition "+top.name+" closed with no then-branch node")
			return b
		}
		if top.elsNode != nil {
			node = agentrt.NewConditionalElse(top.name, top.cond, top.thenNode, top.elsNode)
		} else {
			node = agentrt.NewConditional(top.name, top.cond, top.thenNode)
		}
	case frameWhile:
		if len(top.children) != 1 {
			b.fail("Builder.End", "whileLoop "+top.name+" closed with no child node")
			return b
		}
		node = agentrt.NewWhile(top.name, top.cond, top.children[0])
	case frameFor:
		if len(top.children) != 1 {
			b.fail("Builder.End", "forLoop "+top.name+" closed with no child node")
			return b
		}
		node = agentrt.NewFor(top.name, top.count, top.indexKey, top.children[0])
	case frameSwitch:
		if top.hasCaseOpen {
			b.fail("Builder.End", "switchNode "+top.name+" closed with addCase still pending a node")
			return b
		}
		if top.inDefault && top.def == nil {
			b.fail("Builder.End", "switchNode "+top.name+" closed with defaultCase still pending a node")
			return b
		}
		node = agentrt.NewSwitch(top.name, top.selector, top.cases, top.def)
	case frameConditionalSequence:
		node = agentrt.NewConditionalSequence(top.name, top.conds, top.children)
	default:
		b.fail("Builder.End", fmt.Sprintf("unknown frame kind %d", top.kind))
		return b
	}

	b.stack = b.stack[:len(b.stack)-1]
	if len(b.stack) == 0 {
		b.root = node
		return b
	}
	b.append(node)
	return b
}

// Build finalizes the tree and returns its root node. It fails if any
// frame is still open, any decorator is still pending, or no root was
// ever produced.
func (b *Builder) Build() (agentrt.Node, error) {
	if b.err != nil {
		return nil, b.err
	}
	if len(b.stack) != 0 {
		return nil, &agentrt.ConstructionError{Component: "Builder.Build", Reason: fmt.Sprintf("%d frame(s) still open", len(b.stack))}
	}
	if b.root == nil {
		return nil, &agentrt.ConstructionError{Component: "Builder.Build", Reason: "no root node was produced"}
	}
	return b.root, nil
}
