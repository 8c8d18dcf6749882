// Package weft is an effect-program interpreter for Go: it drives
// suspendable computations, authored independently of their dependencies,
// against a caller-supplied environment of implementations.
//
// Weft is the runtime core of a declarative request-handling toolkit.
// Application code describes WHAT it needs (named capability tokens) and
// the interpreter wires in HOW at invocation time, one suspension at a
// time. Nested computations compose transparently, and a run either
// produces the program's final value or propagates the first failure
// untouched.
//
// # Core Concepts
//
// The weft programming model is intentionally small:
//
//  1. Token
//  2. Environment
//  3. Program / Plan
//  4. Driver
//  5. LocalRunner
//
// # Token
//
// A Token is a named capability descriptor with a compile-time contract
// shape:
//
//	var Logger = weft.NewToken[app.Logger]("Logger")
//	var Database = weft.NewToken[app.Database]("Database")
//
// Tokens are plain values compared by name. Creating one registers
// nothing.
//
// # Environment
//
// An Environment maps token names to concrete implementations. The caller
// of Run assembles it, optionally merging partial environments by shallow
// override:
//
//	env := weft.MergeEnvironments(baseEnv, weft.Provide(Database, db))
//
// The interpreter treats it as read-only and performs structural wiring
// only; implementation shapes are not validated, and an incomplete
// implementation fails at first use.
//
// # Program and Plan
//
// Business logic comes in two flavors sharing one suspension protocol.
// A Program is ordinary control-flow code suspended through a Scope:
//
//	p := weft.NewProgram("getUser", func(s *weft.Scope) (User, error) {
//	    log, err := weft.Resolve(s, Logger)
//	    if err != nil {
//	        return User{}, err
//	    }
//	    db, err := weft.Resolve(s, Database)
//	    if err != nil {
//	        return User{}, err
//	    }
//	    log.Info("loading user")
//	    return db.FindUser(s.Context(), id)
//	})
//
// A Plan is a purely synchronous description built from combinators
// (Pure, Request, Sub, Bind, Map, Catch, Ensure); the interpreter accepts
// both transparently and always prefers the asynchronous protocol when a
// value offers both.
//
// # Driver
//
// Run drives a computation to completion:
//
//	user, err := weft.Run[User](ctx, p, env)
//
// Each yielded token is resolved by name; a missing entry fails the run
// with ServiceNotProvidedError, the only error the interpreter itself
// originates. Nested computations are driven recursively against the same
// environment. The context is checked at every suspension point, so
// cancellation unwinds the program and fails the run with the context
// error.
//
// Drivers also take observers (logging via log/slog, metrics) and a run
// journal (in-memory or SQLite) recording every run's outcome.
//
// # LocalRunner
//
// LocalRunner bundles a registry of declarative handler definitions, a
// journaled driver, a submission queue, and background workers into a
// single process-local helper for development, tests, and simple
// deployments. Handlers are declared with the fluent builder:
//
//	weft.NewHandler("getUser").
//	    Description("Load a user by id").
//	    Uses(Logger, Database).
//	    Program(getUserBody).
//	    MustRegister(runner.Registry)
//
// For examples, see the /examples directory.
package weft
