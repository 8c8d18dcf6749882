package api

import (
	"context"
	"sync/atomic"
)

// Program is the asynchronous authoring flavor of a suspendable
// computation. The body is ordinary control-flow Go code: it requests
// capabilities with Resolve, delegates to nested computations with Subrun,
// and forwards protocol extensions with Scope.Emit. Each of those calls is
// a suspension point answered by the interpreter.
//
// A Program is constructed fresh per invocation of business logic and is
// never reused: opening its sequence a second time panics. The interpreter
// owns the only reference capable of resuming it.
type Program[R any] struct {
	name   string
	body   func(s *Scope) (R, error)
	opened atomic.Uintptr
}

// NewProgram creates a program with the given name. The name is used for
// run records and logging only; it plays no part in resolution.
func NewProgram[R any](name string, body func(s *Scope) (R, error)) *Program[R] {
	if body == nil {
		panic("weft: program " + name + " has nil body")
	}
	return &Program[R]{name: name, body: body}
}

// Name returns the program's display name.
func (p *Program[R]) Name() string { return p.name }

func (p *Program[R]) phantomResult() R { panic("weft: phantom") }

// Sequence opens the suspension protocol, starting the body lazily on the
// first Resume. Programs are one-shot; a second call panics.
func (p *Program[R]) Sequence() Sequence {
	if p.opened.Add(1) != 1 {
		panic("weft: program " + p.name + " driven twice")
	}
	return newCoroutine(func(s *Scope) (any, error) {
		return p.body(s)
	})
}

// Scope is the body's handle for suspending. It is valid only for the
// duration of the body invocation that received it.
type Scope struct {
	c *coroutine
}

// Context returns the context of the run currently driving this program.
// Bodies doing their own blocking work between suspension points should
// honor it.
func (s *Scope) Context() context.Context { return s.c.ctx }

// Emit yields v as a passthrough value. The interpreter resumes the body
// with v unchanged; protocols layered outside service resolution interpose
// here.
func (s *Scope) Emit(v any) (any, error) {
	return s.c.suspend(v)
}

// Resolve suspends the program on a service request for tok and returns
// the implementation the interpreter resolved from the environment. An
// injected failure (cancellation, an aborted run) is returned as the error,
// so deferred cleanup in the body runs normally.
func Resolve[T any](s *Scope, tok Token[T]) (T, error) {
	var zero T
	v, err := s.c.suspend(tok)
	if err != nil {
		return zero, err
	}
	impl, ok := coerce[T](v)
	if !ok {
		return zero, &ResolutionTypeError{
			Reason: "implementation for " + tok.TokenName() + " has unexpected type",
			Value:  v,
		}
	}
	return impl, nil
}

// Subrun suspends the program on a nested computation and returns its final
// value. The interpreter drives sub to completion against the same
// environment; a failure of sub becomes the error returned here.
func Subrun[R any](s *Scope, sub Typed[R]) (R, error) {
	var zero R
	v, err := s.c.suspend(sub)
	if err != nil {
		return zero, err
	}
	r, ok := coerce[R](v)
	if !ok {
		return zero, &ResolutionTypeError{Reason: "nested result has unexpected type", Value: v}
	}
	return r, nil
}

type resumption struct {
	value any
	err   error
}

type outcome struct {
	value      any
	err        error
	panicked   bool
	panicValue any
}

// coroutine runs a program body in its own goroutine and exposes it
// through the Sequence protocol. Control alternates strictly between the
// interpreter and the body: the body owns control from a resumption until
// its next yield, so the unsynchronized ctx field is safe (channel handoff
// orders the accesses).
type coroutine struct {
	body    func(*Scope) (any, error)
	ctx     context.Context
	yields  chan any
	resumes chan resumption
	done    chan outcome

	started  bool
	finished bool
}

func newCoroutine(body func(*Scope) (any, error)) *coroutine {
	return &coroutine{
		body:    body,
		yields:  make(chan any),
		resumes: make(chan resumption),
		done:    make(chan outcome, 1),
	}
}

// suspend parks the body on a yielded payload until the interpreter
// answers.
func (c *coroutine) suspend(payload any) (any, error) {
	c.yields <- payload
	r := <-c.resumes
	return r.value, r.err
}

func (c *coroutine) Resume(ctx context.Context, v any) Step {
	return c.transition(ctx, resumption{value: v})
}

func (c *coroutine) ThrowInto(ctx context.Context, err error) Step {
	if !c.started {
		// Nothing to unwind: the body never ran.
		c.finished = true
		return Failed(err)
	}
	return c.transition(ctx, resumption{err: err})
}

func (c *coroutine) transition(ctx context.Context, r resumption) Step {
	if c.finished {
		panic("weft: sequence transitioned after completion")
	}
	c.ctx = ctx
	if !c.started {
		c.started = true
		go c.run()
	} else {
		c.resumes <- r
	}
	select {
	case p := <-c.yields:
		return Pending(p)
	case out := <-c.done:
		c.finished = true
		if out.panicked {
			// The interpreter does not catch body failures; a panic
			// surfaces in the caller of Run with its value intact.
			panic(out.panicValue)
		}
		if out.err != nil {
			return Failed(out.err)
		}
		return Completed(out.value)
	}
}

func (c *coroutine) run() {
	defer func() {
		if r := recover(); r != nil {
			c.done <- outcome{panicked: true, panicValue: r}
		}
	}()
	v, err := c.body(&Scope{c: c})
	c.done <- outcome{value: v, err: err}
}
