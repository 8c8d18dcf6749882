package api

import "time"

// RetryPolicy controls how an asynchronous run submission is retried when
// it fails. Retries happen strictly outside the interpreter: each attempt
// builds a fresh program and invokes a fresh run. The interpreter itself
// never retries, and wiring defects (ServiceNotProvidedError) are never
// retried at any level.
//
// MaxAttempts includes the first attempt. For example:
//
//	MaxAttempts = 1 => no retries (just the initial call)
//	MaxAttempts = 3 => initial call + up to 2 retries
type RetryPolicy struct {
	MaxAttempts int

	// InitialBackoff is the delay before the first retry. If zero,
	// retries happen immediately.
	InitialBackoff time.Duration

	// MaxBackoff caps the per-attempt delay. Zero means no cap.
	MaxBackoff time.Duration

	// BackoffMultiplier grows the delay each attempt. Values <= 0 default
	// to 2.0.
	BackoffMultiplier float64
}
