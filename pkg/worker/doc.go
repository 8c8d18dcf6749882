// Package worker executes queued run submissions in the background.
//
// A Worker pairs a submission queue with the interpreter: Submit enqueues
// a handler name and input, and ProcessOne dequeues, builds a fresh
// program from the handler registry, and drives it against the worker's
// base environment. Submission-level retry policies re-run the handler
// with a fresh program on failure; results and failures land in the
// driver's run journal.
//
// Applications typically run one or more workers as background goroutines;
// LocalRunner in the root package does exactly that.
package worker
