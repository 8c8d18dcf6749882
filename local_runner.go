package weft

import (
	"context"
	"errors"
	"log"
	"sync"

	"github.com/weftlabs/weft/internal/driver"
	"github.com/weftlabs/weft/internal/journal"
	"github.com/weftlabs/weft/internal/registry"
	"github.com/weftlabs/weft/internal/taskqueue"
	"github.com/weftlabs/weft/pkg/worker"
)

// LocalRunner bundles a handler registry, an in-memory journaled driver, an
// in-memory submission queue, and a Worker to provide a simple "local
// runner" for development and debugging.
//
// Typical usage:
//
//	runner := weft.NewLocalRunner(env)
//	weft.NewHandler("getUser").Program(body).MustRegister(runner.Registry)
//
//	// Synchronous run (no queue/worker involved):
//	out, err := runner.Run(ctx, "getUser", input)
//
//	// Asynchronous run:
//	_ = runner.StartWorkers(ctx, 2)
//	_ = runner.SubmitAsync(ctx, "getUser", input)
//	...
//	runner.Stop()
type LocalRunner struct {
	// Registry holds the runner's handler definitions.
	Registry *Registry

	// Driver is the journaled interpreter used for every run.
	Driver *Driver

	// Queue is the in-memory submission queue used by the Worker.
	Queue taskqueue.Queue

	// Worker processes submissions from Queue using Driver.
	Worker *worker.Worker

	journal *journal.InMemoryStore

	mu      sync.Mutex
	cancel  context.CancelFunc
	wg      sync.WaitGroup
	running bool
}

// NewLocalRunner constructs a LocalRunner whose runs resolve against base.
//
// This is intended for local development, tests, and simple single-process
// deployments.
func NewLocalRunner(base Environment) *LocalRunner {
	store := journal.NewInMemoryStore()
	d := driver.New(driver.WithJournal(store))
	reg := registry.New()
	q := taskqueue.NewInMemoryQueue(1024)
	w := worker.New(d, reg, q, base)

	return &LocalRunner{
		Registry: reg,
		Driver:   d,
		Queue:    q,
		Worker:   w,
		journal:  store,
	}
}

// StartWorkers starts 'concurrency' worker goroutines that continuously call
// Worker.ProcessOne(ctx) until the context is cancelled via Stop.
//
// If StartWorkers is called more than once without Stop, it returns an error.
func (r *LocalRunner) StartWorkers(ctx context.Context, concurrency int) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.running {
		return errors.New("weft: LocalRunner already started")
	}

	if concurrency <= 0 {
		concurrency = 1
	}

	ctx, cancel := context.WithCancel(ctx)
	r.cancel = cancel
	r.running = true

	r.wg.Add(concurrency)
	for i := 0; i < concurrency; i++ {
		go func() {
			defer r.wg.Done()

			for {
				processed, err := r.Worker.ProcessOne(ctx)
				if err != nil {
					// For local runner we treat cancellation as a clean shutdown signal.
					if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
						return
					}
					// For other errors, log and keep going so a single bad submission
					// doesn't kill the worker loop.
					log.Printf("weft: local runner worker error: %v", err)
					continue
				}
				if !processed {
					// This only happens if ctx was cancelled before a submission was
					// obtained. Loop will exit on next Dequeue when err == context.Canceled.
					continue
				}
			}
		}()
	}

	return nil
}

// Stop cancels all worker goroutines started by StartWorkers and waits
// for them to exit.
func (r *LocalRunner) Stop() {
	r.mu.Lock()
	if !r.running {
		r.mu.Unlock()
		return
	}
	cancel := r.cancel
	r.running = false
	r.cancel = nil
	r.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	r.wg.Wait()
}

// Run invokes the named handler synchronously and returns its final value.
// The handler must already be registered on LocalRunner.Registry.
func (r *LocalRunner) Run(ctx context.Context, handler string, input any) (any, error) {
	def, err := r.Registry.Get(handler)
	if err != nil {
		return nil, err
	}
	return r.Driver.Run(ctx, def.New(input), r.Worker.Base())
}

// SubmitAsync enqueues a run of the named handler. A worker started via
// StartWorkers picks it up.
func (r *LocalRunner) SubmitAsync(ctx context.Context, handler string, input any) error {
	return r.Worker.Submit(ctx, handler, input)
}

// GetRun returns the journal record of a run by id.
func (r *LocalRunner) GetRun(id string) (*RunRecord, error) {
	return r.journal.GetRun(id)
}

// Runs lists journal records matching the filter.
func (r *LocalRunner) Runs(filter journal.RunFilter) ([]*RunRecord, error) {
	return r.journal.ListRuns(filter)
}
