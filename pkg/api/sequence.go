package api

import "context"

// Step is one transition of a suspended computation: either a pending
// yielded payload, or a terminal value / error.
type Step struct {
	// Payload is the yielded value while the computation is suspended.
	// It is meaningful only when Done is false.
	Payload any

	// Value carries the final result when Done is true and Err is nil.
	Value any

	// Err carries the terminal error when Done is true.
	Err error

	// Done reports whether the computation has finished.
	Done bool
}

// Pending returns a suspended step carrying payload.
func Pending(payload any) Step {
	return Step{Payload: payload}
}

// Completed returns a terminal step carrying the final value.
func Completed(v any) Step {
	return Step{Value: v, Done: true}
}

// Failed returns a terminal step carrying err.
func Failed(err error) Step {
	return Step{Err: err, Done: true}
}

// Sequence is the asynchronous suspension protocol the interpreter drives.
// The first transition is Resume(ctx, nil); each subsequent Resume answers
// the previously yielded payload. Calls may block while the underlying
// computation runs (it is free to do I/O between suspension points).
//
// A Sequence is one-shot: transitioning after a terminal Step panics.
type Sequence interface {
	// Resume starts the computation or delivers the answer to the pending
	// suspension, and runs until the next suspension or completion.
	Resume(ctx context.Context, v any) Step

	// ThrowInto delivers err into the computation's own error channel at
	// the pending suspension, so cleanup local to the computation runs,
	// and advances to the next suspension or completion.
	ThrowInto(ctx context.Context, err error) Step
}

// SyncSequence is the synchronous flavor of the suspension protocol.
// Transitions never block and take no context.
type SyncSequence interface {
	ResumeSync(v any) Step
	ThrowIntoSync(err error) Step
}

// Suspendable is a computation that can open the asynchronous suspension
// protocol. Program values implement it.
type Suspendable interface {
	Sequence() Sequence
}

// SyncSuspendable is a computation that can open the synchronous suspension
// protocol. Plan values implement it.
type SyncSuspendable interface {
	SyncSequence() SyncSequence
}

// Typed marks a computation whose final value has static type R. It lets
// Subrun and Run recover the result type of a nested computation. The
// method is a phantom marker and is never called.
type Typed[R any] interface {
	phantomResult() R
}

// AsSequence opens the suspension protocol of program. A value implementing
// both flavors is opened asynchronously: an async-declared computation must
// always run under the asynchronous protocol. A value implementing neither,
// or answering with a nil sequence, yields a ResolutionTypeError.
func AsSequence(program any) (Sequence, error) {
	switch p := program.(type) {
	case Suspendable:
		seq := p.Sequence()
		if seq == nil {
			return nil, &ResolutionTypeError{Reason: "nil sequence", Value: program}
		}
		return seq, nil
	case SyncSuspendable:
		seq := p.SyncSequence()
		if seq == nil {
			return nil, &ResolutionTypeError{Reason: "nil sync sequence", Value: program}
		}
		return Lift(seq), nil
	}
	return nil, &ResolutionTypeError{Reason: "value is not a suspendable computation", Value: program}
}

// Lift adapts a synchronous computation to the asynchronous protocol.
// Each synchronous suspension point becomes exactly one asynchronous
// suspension point, resume values are forwarded unchanged, and an injected
// error is delivered through ThrowIntoSync so Catch/Ensure logic inside the
// computation observes it rather than being bypassed.
func Lift(s SyncSequence) Sequence {
	return &lifted{s: s}
}

type lifted struct {
	s SyncSequence
}

func (l *lifted) Resume(ctx context.Context, v any) Step {
	return l.s.ResumeSync(v)
}

func (l *lifted) ThrowInto(ctx context.Context, err error) Step {
	return l.s.ThrowIntoSync(err)
}

// coerce converts a protocol-level value to T. A nil protocol value stands
// for "completed with the zero value" and coerces to any T.
func coerce[T any](v any) (T, bool) {
	if v == nil {
		var zero T
		return zero, true
	}
	t, ok := v.(T)
	return t, ok
}

// IsSuspendable reports whether v can be driven by the interpreter, either
// natively or through Lift. The interpreter classifies yielded payloads
// with this check after TokenRef and before passthrough.
func IsSuspendable(v any) bool {
	switch v.(type) {
	case Suspendable, SyncSuspendable:
		return true
	}
	return false
}
