// Package taskqueue carries asynchronous run submissions from application
// code to workers.
package taskqueue

import (
	"context"
	"time"

	"github.com/weftlabs/weft/pkg/api"
)

// Submission is a request to execute a registered handler asynchronously.
type Submission struct {
	// ID identifies the submission, primarily for logging. Optional.
	ID string

	// Handler names the registered handler definition to execute.
	Handler string

	// Input is passed to the handler's program factory.
	Input any

	// Retry, if non-nil, controls worker-level retries for this
	// submission. The interpreter itself never retries.
	Retry *api.RetryPolicy

	EnqueuedAt time.Time
}

// Queue is a simple async submission queue interface.
type Queue interface {
	// Enqueue adds a submission to the queue. It should respect ctx for
	// cancellation.
	Enqueue(ctx context.Context, sub Submission) error

	// Dequeue removes and returns the next submission, blocking until one
	// is available or the context is cancelled.
	Dequeue(ctx context.Context) (*Submission, error)

	// Len returns the approximate number of submissions queued.
	Len() int
}
