// Package agentrt is a runtime for hierarchical agent behaviour: small
// reactive units (nodes) compose into a single tickable tree. Composite
// nodes (Sequence, Selector, Parallel) choose and coordinate children;
// decorators wrap a single child and transform its result; leaves observe
// or mutate a shared Blackboard and publish events on a Tree's EventBus.
//
// A Tree owns exactly one root Node, a Blackboard, and an EventBus. Ticking
// the tree descends the node graph once and returns a terminal Status, or
// Running if some node suspended.
//
// The companion packages hsm and datalog are independent subsystems: hsm
// implements a hierarchical state machine with composite states, guards,
// and timed/weighted/probabilistic transitions; datalog implements a
// semi-naive Datalog engine over immutable sorted relations. datalog does
// not import this package and is usable standalone; hsm imports it for
// the shared Blackboard type.
package agentrt
