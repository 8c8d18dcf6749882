package worker

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/weftlabs/weft/internal/driver"
	"github.com/weftlabs/weft/internal/registry"
	"github.com/weftlabs/weft/internal/taskqueue"
	"github.com/weftlabs/weft/pkg/api"
)

// Config tunes worker behavior.
type Config struct {
	// DefaultRetry applies to submissions that carry no retry policy of
	// their own. nil means a single attempt.
	DefaultRetry *api.RetryPolicy
}

// Worker pulls run submissions from a Queue and executes them through a
// Driver, building a fresh program per attempt from the registry. Retries
// are a worker concern only; the interpreter never retries, and wiring
// defects (ServiceNotProvidedError) are never retried here either.
type Worker struct {
	driver   *driver.Driver
	registry *registry.Registry
	queue    taskqueue.Queue
	base     api.Environment
	cfg      Config
}

// New creates a Worker with default config. base is the environment every
// submission runs against.
func New(d *driver.Driver, reg *registry.Registry, q taskqueue.Queue, base api.Environment) *Worker {
	return NewWithConfig(d, reg, q, base, Config{})
}

// NewWithConfig creates a Worker with the given config.
func NewWithConfig(d *driver.Driver, reg *registry.Registry, q taskqueue.Queue, base api.Environment, cfg Config) *Worker {
	return &Worker{
		driver:   d,
		registry: reg,
		queue:    q,
		base:     base,
		cfg:      cfg,
	}
}

// Base returns the environment submissions run against.
func (w *Worker) Base() api.Environment {
	return w.base
}

// Submit enqueues a run of the named handler. It does NOT run the handler
// itself; that is done by ProcessOne.
func (w *Worker) Submit(ctx context.Context, handler string, input any) error {
	return w.queue.Enqueue(ctx, taskqueue.Submission{
		ID:         uuid.NewString(),
		Handler:    handler,
		Input:      input,
		EnqueuedAt: time.Now(),
	})
}

// SubmitWithRetry enqueues a run carrying its own retry policy.
func (w *Worker) SubmitWithRetry(ctx context.Context, handler string, input any, retry api.RetryPolicy) error {
	r := retry
	return w.queue.Enqueue(ctx, taskqueue.Submission{
		ID:         uuid.NewString(),
		Handler:    handler,
		Input:      input,
		Retry:      &r,
		EnqueuedAt: time.Now(),
	})
}

// ProcessOne blocks for the next submission and executes it. It returns
// (true, err) once a submission was obtained and processed (err being the
// final run failure, if any), or (false, err) if the wait itself failed.
func (w *Worker) ProcessOne(ctx context.Context) (bool, error) {
	sub, err := w.queue.Dequeue(ctx)
	if err != nil {
		return false, err
	}

	def, err := w.registry.Get(sub.Handler)
	if err != nil {
		return true, err
	}

	policy := sub.Retry
	if policy == nil {
		policy = w.cfg.DefaultRetry
	}

	maxAttempts := 1
	var (
		backoff    time.Duration
		maxBackoff time.Duration
		multiplier float64
	)
	if policy != nil {
		if policy.MaxAttempts > 0 {
			maxAttempts = policy.MaxAttempts
		}
		backoff = policy.InitialBackoff
		maxBackoff = policy.MaxBackoff
		multiplier = policy.BackoffMultiplier
		if multiplier <= 0 {
			multiplier = 2.0
		}
	}

	var lastErr error

	for attempt := 1; attempt <= maxAttempts; attempt++ {
		// Each attempt is a fresh program and a fresh run.
		_, err := w.driver.Run(ctx, def.New(sub.Input), w.base)
		if err == nil {
			return true, nil
		}

		if _, ok := api.IsServiceNotProvided(err); ok {
			// Wiring defect: retrying cannot help.
			return true, err
		}

		lastErr = err

		if attempt == maxAttempts {
			break
		}

		if backoff > 0 {
			delay := backoff
			if maxBackoff > 0 && delay > maxBackoff {
				delay = maxBackoff
			}

			select {
			case <-ctx.Done():
				return true, ctx.Err()
			case <-time.After(delay):
			}

			next := time.Duration(float64(backoff) * multiplier)
			if maxBackoff > 0 && next > maxBackoff {
				backoff = maxBackoff
			} else {
				backoff = next
			}
		}
	}

	return true, lastErr
}
