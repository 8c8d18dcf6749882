package api

// Plan is the synchronous authoring flavor of a suspendable computation: an
// explicit tree of request / nested / passthrough nodes that the
// interpreter folds against an environment, with no goroutine involved.
// Plans are built with Pure, Request, Sub, Yield and combined with Bind,
// Map, Then, Catch and Ensure.
//
// Unlike a Program, a Plan is an immutable description; SyncSequence opens
// a fresh one-shot stepping of it each time, so the same Plan value may be
// run repeatedly.
type Plan[A any] struct {
	node planNode
}

func (p Plan[A]) phantomResult() A { panic("weft: phantom") }

// SyncSequence opens a fresh stepping of the plan.
func (p Plan[A]) SyncSequence() SyncSequence {
	return &planSequence{cur: p.node}
}

// Pure lifts a value into a plan that completes immediately.
func Pure[A any](v A) Plan[A] {
	return Plan[A]{node: pureNode{v: v}}
}

// Fail returns a plan that terminates with err.
func Fail[A any](err error) Plan[A] {
	return Plan[A]{node: errNode{err: err}}
}

// Request suspends on a service request for tok and completes with the
// implementation resolved from the environment.
func Request[T any](tok Token[T]) Plan[T] {
	return Plan[T]{node: bindNode{
		src: yieldNode{payload: tok},
		f: func(v any) planNode {
			impl, ok := coerce[T](v)
			if !ok {
				return errNode{err: &ResolutionTypeError{
					Reason: "implementation for " + tok.TokenName() + " has unexpected type",
					Value:  v,
				}}
			}
			return pureNode{v: impl}
		},
	}}
}

// Sub suspends on a nested computation and completes with its final value.
func Sub[R any](sub Typed[R]) Plan[R] {
	return Plan[R]{node: bindNode{
		src: yieldNode{payload: sub},
		f: func(v any) planNode {
			r, ok := coerce[R](v)
			if !ok {
				return errNode{err: &ResolutionTypeError{Reason: "nested result has unexpected type", Value: v}}
			}
			return pureNode{v: r}
		},
	}}
}

// Yield suspends on a passthrough value; the interpreter answers with the
// value unchanged.
func Yield(v any) Plan[any] {
	return Plan[any]{node: yieldNode{payload: v}}
}

// Bind sequences two plans, feeding the result of p to f.
func Bind[A, B any](p Plan[A], f func(A) Plan[B]) Plan[B] {
	return Plan[B]{node: bindNode{
		src: p.node,
		f: func(v any) planNode {
			a, ok := coerce[A](v)
			if !ok {
				return errNode{err: &ResolutionTypeError{Reason: "bound value has unexpected type", Value: v}}
			}
			return f(a).node
		},
	}}
}

// Map transforms the result of p with f.
func Map[A, B any](p Plan[A], f func(A) B) Plan[B] {
	return Bind(p, func(a A) Plan[B] {
		return Pure(f(a))
	})
}

// Then sequences two plans, discarding the result of the first.
func Then[A, B any](p Plan[A], next Plan[B]) Plan[B] {
	return Bind(p, func(A) Plan[B] {
		return next
	})
}

// Catch runs h when p, or an error injected while p is suspended, fails.
func Catch[A any](p Plan[A], h func(error) Plan[A]) Plan[A] {
	return Plan[A]{node: catchNode{
		src: p.node,
		h: func(err error) planNode {
			return h(err).node
		},
	}}
}

// Ensure runs fin when p finishes, whether it completes or fails. The error
// path includes errors injected while p is suspended, so cleanup survives
// aborted runs.
func Ensure[A any](p Plan[A], fin func()) Plan[A] {
	return Plan[A]{node: ensureNode{src: p.node, fin: fin}}
}

type planNode interface{ isPlanNode() }

type pureNode struct{ v any }

type errNode struct{ err error }

type yieldNode struct{ payload any }

type bindNode struct {
	src planNode
	f   func(any) planNode
}

type catchNode struct {
	src planNode
	h   func(error) planNode
}

type ensureNode struct {
	src planNode
	fin func()
}

func (pureNode) isPlanNode()   {}
func (errNode) isPlanNode()    {}
func (yieldNode) isPlanNode()  {}
func (bindNode) isPlanNode()   {}
func (catchNode) isPlanNode()  {}
func (ensureNode) isPlanNode() {}

// planFrame is one entry of the pending-continuation stack. Exactly one
// field is set.
type planFrame struct {
	onValue func(any) planNode
	onError func(error) planNode
	fin     func()
}

// planSequence folds a plan's node tree iteratively, suspending at yield
// nodes. The explicit frame stack keeps stepping flat regardless of plan
// depth.
type planSequence struct {
	cur      planNode
	stack    []planFrame
	started  bool
	finished bool
}

func (q *planSequence) ResumeSync(v any) Step {
	if q.finished {
		panic("weft: sequence transitioned after completion")
	}
	if q.started {
		q.cur = pureNode{v: v}
	}
	q.started = true
	return q.step()
}

func (q *planSequence) ThrowIntoSync(err error) Step {
	if q.finished {
		panic("weft: sequence transitioned after completion")
	}
	q.started = true
	q.cur = errNode{err: err}
	return q.step()
}

func (q *planSequence) step() Step {
	for {
		switch n := q.cur.(type) {
		case bindNode:
			q.stack = append(q.stack, planFrame{onValue: n.f})
			q.cur = n.src
		case catchNode:
			q.stack = append(q.stack, planFrame{onError: n.h})
			q.cur = n.src
		case ensureNode:
			q.stack = append(q.stack, planFrame{fin: n.fin})
			q.cur = n.src
		case yieldNode:
			return Pending(n.payload)
		case pureNode:
			next, done := q.deliverValue(n.v)
			if done {
				q.finished = true
				return Completed(n.v)
			}
			q.cur = next
		case errNode:
			next, done := q.deliverError(n.err)
			if done {
				q.finished = true
				return Failed(n.err)
			}
			q.cur = next
		default:
			q.finished = true
			return Failed(&ResolutionTypeError{Reason: "malformed plan node", Value: q.cur})
		}
	}
}

// deliverValue pops frames until a bind consumes the value. Ensure frames
// run on the way out; catch frames are discarded on success.
func (q *planSequence) deliverValue(v any) (planNode, bool) {
	for len(q.stack) > 0 {
		f := q.pop()
		switch {
		case f.fin != nil:
			f.fin()
		case f.onValue != nil:
			return f.onValue(v), false
		}
	}
	return nil, true
}

// deliverError pops frames until a catch consumes the error. Ensure frames
// run during unwinding; bind frames are discarded.
func (q *planSequence) deliverError(err error) (planNode, bool) {
	for len(q.stack) > 0 {
		f := q.pop()
		switch {
		case f.fin != nil:
			f.fin()
		case f.onError != nil:
			return f.onError(err), false
		}
	}
	return nil, true
}

func (q *planSequence) pop() planFrame {
	f := q.stack[len(q.stack)-1]
	q.stack = q.stack[:len(q.stack)-1]
	return f
}
