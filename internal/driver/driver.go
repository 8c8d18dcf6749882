package driver

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/weftlabs/weft/internal/journal"
	"github.com/weftlabs/weft/pkg/api"
)

// Driver is the interpreter control loop: it drives a suspendable
// computation to completion against an environment, resolving each service
// request by name and composing nested computations by recursive
// invocation.
//
// A Driver holds no per-run state; one Driver may serve any number of
// concurrent runs. Each run is single-threaded and cooperative: suspensions
// are answered strictly in yield order, never two at a time.
type Driver struct {
	observer api.RunObserver
	journal  journal.Store
}

// Option configures a Driver.
type Option func(*Driver)

// WithObserver attaches a run observer.
func WithObserver(obs api.RunObserver) Option {
	return func(d *Driver) {
		if obs != nil {
			d.observer = obs
		}
	}
}

// WithJournal attaches a run journal. Every run is recorded on start and
// updated on completion; a journal write failure on start fails the run.
func WithJournal(store journal.Store) Option {
	return func(d *Driver) {
		d.journal = store
	}
}

// New creates a Driver. With no options it observes nothing and journals
// nothing.
func New(opts ...Option) *Driver {
	d := &Driver{observer: api.NoopObserver{}}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Run drives program against env and returns its final value, or the first
// failure. program must be a Program, a Plan, or any other value
// implementing the suspension protocol; synchronous computations are
// accepted transparently.
//
// Failure semantics: the only error Run originates is
// ServiceNotProvidedError (and, defensively, ResolutionTypeError for
// protocol violations). Everything else - errors from program bodies, from
// environment implementations, from nested runs, and ctx cancellation - is
// propagated with identity preserved: no wrapping, no catching, no retry.
func (d *Driver) Run(ctx context.Context, program any, env api.Environment) (any, error) {
	return d.run(ctx, program, env, "")
}

func (d *Driver) run(ctx context.Context, program any, env api.Environment, parent string) (any, error) {
	rec := &api.RunRecord{
		ID:        uuid.NewString(),
		Program:   programName(program),
		Parent:    parent,
		Status:    api.RunRunning,
		StartedAt: time.Now(),
	}

	d.observer.OnRunStart(ctx, rec)

	if d.journal != nil {
		if err := d.journal.SaveRun(rec); err != nil {
			return d.fail(ctx, rec, err)
		}
	}

	seq, err := api.AsSequence(program)
	if err != nil {
		return d.fail(ctx, rec, err)
	}

	if cerr := ctx.Err(); cerr != nil {
		drain(ctx, seq, cerr)
		return d.fail(ctx, rec, cerr)
	}

	step := seq.Resume(ctx, nil)

	for !step.Done {
		// Every suspension point is a cancellation point. The ctx error
		// is thrown into the program so cleanup local to it runs, then
		// the run fails with that error.
		if cerr := ctx.Err(); cerr != nil {
			drain(ctx, seq, cerr)
			return d.fail(ctx, rec, cerr)
		}

		// Payload classification happens in fixed order: service
		// request, then nested computation, then passthrough.
		switch payload := step.Payload.(type) {
		case api.TokenRef:
			name := payload.TokenName()
			impl, ok := env.Lookup(name)
			if !ok {
				nerr := api.NewServiceNotProvidedError(name)
				d.observer.OnResolve(ctx, rec, name, 0, nerr)
				// The program is never resumed with a value; it is
				// only unwound so its deferred cleanup runs. The
				// run's failure is the driver's own error.
				drain(ctx, seq, nerr)
				return d.fail(ctx, rec, nerr)
			}
			start := time.Now()
			step = seq.Resume(ctx, impl)
			rec.Resolves++
			d.observer.OnResolve(ctx, rec, name, time.Since(start), nil)

		default:
			if api.IsSuspendable(payload) {
				d.observer.OnSubrun(ctx, rec, programName(payload))
				out, err := d.run(ctx, payload, env, rec.ID)
				if err != nil {
					drain(ctx, seq, err)
					return d.fail(ctx, rec, err)
				}
				step = seq.Resume(ctx, out)
				break
			}
			// Passthrough: forwarded back unchanged.
			step = seq.Resume(ctx, payload)
		}
	}

	if step.Err != nil {
		return d.fail(ctx, rec, step.Err)
	}

	rec.Status = api.RunCompleted
	rec.Output = step.Value
	rec.FinishedAt = time.Now()
	if d.journal != nil {
		_ = d.journal.UpdateRun(rec)
	}
	d.observer.OnRunCompleted(ctx, rec)

	return step.Value, nil
}

func (d *Driver) fail(ctx context.Context, rec *api.RunRecord, err error) (any, error) {
	rec.Status = api.RunFailed
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		rec.Status = api.RunCancelled
	}
	rec.Err = err
	rec.FinishedAt = time.Now()
	if d.journal != nil {
		_ = d.journal.UpdateRun(rec)
	}
	d.observer.OnRunFailed(ctx, rec, err)
	return nil, err
}

// drain injects err into a suspended computation and steps it until it
// terminates, so cleanup local to the computation runs. Whatever the
// computation makes of the injection is discarded; the run's failure stays
// the caller's err.
func drain(ctx context.Context, seq api.Sequence, err error) {
	for step := seq.ThrowInto(ctx, err); !step.Done; step = seq.ThrowInto(ctx, err) {
	}
}

func programName(p any) string {
	if n, ok := p.(interface{ Name() string }); ok {
		return n.Name()
	}
	return ""
}
