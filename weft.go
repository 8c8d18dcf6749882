package weft

import (
	"context"
	"database/sql"

	"github.com/weftlabs/weft/internal/driver"
	"github.com/weftlabs/weft/internal/journal"
	"github.com/weftlabs/weft/internal/registry"
	"github.com/weftlabs/weft/pkg/api"
)

// Re-export key types so users don't need to dig into pkg/api.

type (
	Token[T any]         = api.Token[T]
	TokenRef             = api.TokenRef
	Environment          = api.Environment
	Step                 = api.Step
	Sequence             = api.Sequence
	SyncSequence         = api.SyncSequence
	Suspendable          = api.Suspendable
	SyncSuspendable      = api.SyncSuspendable
	Typed[R any]         = api.Typed[R]
	Program[R any]       = api.Program[R]
	Plan[A any]          = api.Plan[A]
	Scope                = api.Scope
	RunRecord            = api.RunRecord
	RunStatus            = api.RunStatus
	RunObserver          = api.RunObserver
	NoopObserver         = api.NoopObserver
	CompositeObserver    = api.CompositeObserver
	LoggingObserver      = api.LoggingObserver
	BasicMetrics         = api.BasicMetrics
	BasicMetricsSnapshot = api.BasicMetricsSnapshot
	HandlerDefinition    = api.HandlerDefinition
	RetryPolicy          = api.RetryPolicy

	ServiceNotProvidedError = api.ServiceNotProvidedError
	ResolutionTypeError     = api.ResolutionTypeError
)

// Driver is the interpreter control loop; Registry stores handler
// definitions for transports and workers.
type (
	Driver       = driver.Driver
	DriverOption = driver.Option
	Registry     = registry.Registry
)

// Re-export run status values for convenience.

const (
	RunPending   = api.RunPending
	RunRunning   = api.RunRunning
	RunCompleted = api.RunCompleted
	RunFailed    = api.RunFailed
	RunCancelled = api.RunCancelled
)

// Re-export common helpers.

var (
	MergeEnvironments     = api.MergeEnvironments
	AsSequence            = api.AsSequence
	Lift                  = api.Lift
	IsServiceNotProvided  = api.IsServiceNotProvided
	IsResolutionTypeError = api.IsResolutionTypeError
	NewLoggingObserver    = api.NewLoggingObserver
	NewCompositeObserver  = api.NewCompositeObserver
	WithObserver          = driver.WithObserver
)

// NewToken creates a named capability token with contract shape T.
func NewToken[T any](name string) Token[T] {
	return api.NewToken[T](name)
}

// Provide returns a single-entry Environment binding tok to impl.
func Provide[T any](tok Token[T], impl T) Environment {
	return api.Provide(tok, impl)
}

// NewProgram creates an asynchronous-flavor program. See api.NewProgram.
func NewProgram[R any](name string, body func(s *Scope) (R, error)) *Program[R] {
	return api.NewProgram(name, body)
}

// Resolve suspends the program on a service request for tok.
func Resolve[T any](s *Scope, tok Token[T]) (T, error) {
	return api.Resolve(s, tok)
}

// Subrun suspends the program on a nested computation.
func Subrun[R any](s *Scope, sub Typed[R]) (R, error) {
	return api.Subrun(s, sub)
}

// Plan combinators, re-exported from pkg/api.

func Pure[A any](v A) Plan[A]                          { return api.Pure(v) }
func Fail[A any](err error) Plan[A]                    { return api.Fail[A](err) }
func Request[T any](tok Token[T]) Plan[T]              { return api.Request(tok) }
func Sub[R any](sub Typed[R]) Plan[R]                  { return api.Sub(sub) }
func Yield(v any) Plan[any]                            { return api.Yield(v) }
func Bind[A, B any](p Plan[A], f func(A) Plan[B]) Plan[B] { return api.Bind(p, f) }
func Map[A, B any](p Plan[A], f func(A) B) Plan[B]     { return api.Map(p, f) }
func Then[A, B any](p Plan[A], next Plan[B]) Plan[B]   { return api.Then(p, next) }
func Catch[A any](p Plan[A], h func(error) Plan[A]) Plan[A] { return api.Catch(p, h) }
func Ensure[A any](p Plan[A], fin func()) Plan[A]      { return api.Ensure(p, fin) }

// Driver constructors
// These wrap the internal/driver package so external callers never need to
// import internal packages.

// NewDriver creates a Driver. With no options it observes nothing and
// journals nothing.
func NewDriver(opts ...DriverOption) *Driver {
	return driver.New(opts...)
}

// WithInMemoryJournal records every run in a process-local journal.
func WithInMemoryJournal() DriverOption {
	return driver.WithJournal(journal.NewInMemoryStore())
}

// WithSQLiteJournal records every run in the given SQLite database. The
// *sql.DB must use a SQLite driver such as "modernc.org/sqlite".
func WithSQLiteJournal(db *sql.DB) (DriverOption, error) {
	store, err := journal.NewSQLiteStore(db)
	if err != nil {
		return nil, err
	}
	return driver.WithJournal(store), nil
}

// NewRegistry creates an empty handler registry.
func NewRegistry() *Registry {
	return registry.New()
}

var defaultDriver = driver.New()

// Run drives program against env using a plain driver and returns its
// final value, asserted to R. Synchronous computations (plans) are
// accepted transparently.
func Run[R any](ctx context.Context, program any, env Environment) (R, error) {
	return RunWith[R](ctx, defaultDriver, program, env)
}

// RunWith is Run against an explicitly configured Driver.
func RunWith[R any](ctx context.Context, d *Driver, program any, env Environment) (R, error) {
	var zero R
	out, err := d.Run(ctx, program, env)
	if err != nil {
		return zero, err
	}
	if out == nil {
		return zero, nil
	}
	r, ok := out.(R)
	if !ok {
		return zero, &ResolutionTypeError{Reason: "run result has unexpected type", Value: out}
	}
	return r, nil
}
