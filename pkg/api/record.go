package api

import "time"

// RunStatus is the lifecycle state of a single interpreter run.
type RunStatus string

const (
	RunPending   RunStatus = "PENDING"
	RunRunning   RunStatus = "RUNNING"
	RunCompleted RunStatus = "COMPLETED"
	RunFailed    RunStatus = "FAILED"
	RunCancelled RunStatus = "CANCELLED"
)

// RunRecord describes one invocation of the interpreter. The driver fills
// it in as the run progresses and hands it to observers and the journal.
// Observers must treat it as read-only.
type RunRecord struct {
	// ID uniquely identifies the run.
	ID string

	// Program is the display name of the driven computation, when it has
	// one ("" for anonymous plans).
	Program string

	// Parent is the ID of the enclosing run for nested computations,
	// "" for top-level runs.
	Parent string

	Status RunStatus

	// Output holds the final value once Status is RunCompleted.
	Output any

	// Err holds the propagated failure once Status is RunFailed or
	// RunCancelled.
	Err error

	// Resolves counts service requests answered so far.
	Resolves int

	StartedAt  time.Time
	FinishedAt time.Time
}
