package api

import (
	"context"
	"log/slog"
	"sync/atomic"
	"time"
)

// RunObserver receives callbacks from the interpreter for logging and
// metrics.
//
// Implementations should be fast and non-blocking; heavy work should be
// done asynchronously so as not to delay runs.
type RunObserver interface {
	// OnRunStart is called once per run, before the program is first
	// resumed. Nested runs report their own start with Parent set.
	OnRunStart(ctx context.Context, rec *RunRecord)

	// OnRunCompleted is called when a run reaches RunCompleted.
	OnRunCompleted(ctx context.Context, rec *RunRecord)

	// OnRunFailed is called when a run transitions to RunFailed or
	// RunCancelled.
	OnRunFailed(ctx context.Context, rec *RunRecord, err error)

	// OnResolve is called after a service request is answered and the
	// program has run to its next suspension point. duration covers that
	// span. err is non-nil only for a missing environment entry.
	OnResolve(ctx context.Context, rec *RunRecord, token string, duration time.Duration, err error)

	// OnSubrun is called when the run suspends on a nested computation,
	// before the nested run starts.
	OnSubrun(ctx context.Context, rec *RunRecord, program string)
}

// NoopObserver is a RunObserver that does nothing.
// It is used as the default when no observer is configured.
type NoopObserver struct{}

func (NoopObserver) OnRunStart(ctx context.Context, rec *RunRecord)             {}
func (NoopObserver) OnRunCompleted(ctx context.Context, rec *RunRecord)         {}
func (NoopObserver) OnRunFailed(ctx context.Context, rec *RunRecord, err error) {}
func (NoopObserver) OnResolve(ctx context.Context, rec *RunRecord, token string, d time.Duration, err error) {
}
func (NoopObserver) OnSubrun(ctx context.Context, rec *RunRecord, program string) {}

// CompositeObserver fans out events to multiple observers.
type CompositeObserver struct {
	observers []RunObserver
}

// NewCompositeObserver creates a RunObserver that forwards events to each
// non-nil observer in obs.
func NewCompositeObserver(obs ...RunObserver) RunObserver {
	filtered := make([]RunObserver, 0, len(obs))
	for _, o := range obs {
		if o != nil {
			filtered = append(filtered, o)
		}
	}
	if len(filtered) == 0 {
		return NoopObserver{}
	}
	if len(filtered) == 1 {
		return filtered[0]
	}
	return &CompositeObserver{observers: filtered}
}

func (c *CompositeObserver) OnRunStart(ctx context.Context, rec *RunRecord) {
	for _, o := range c.observers {
		o.OnRunStart(ctx, rec)
	}
}

func (c *CompositeObserver) OnRunCompleted(ctx context.Context, rec *RunRecord) {
	for _, o := range c.observers {
		o.OnRunCompleted(ctx, rec)
	}
}

func (c *CompositeObserver) OnRunFailed(ctx context.Context, rec *RunRecord, err error) {
	for _, o := range c.observers {
		o.OnRunFailed(ctx, rec, err)
	}
}

func (c *CompositeObserver) OnResolve(ctx context.Context, rec *RunRecord, token string, d time.Duration, err error) {
	for _, o := range c.observers {
		o.OnResolve(ctx, rec, token, d, err)
	}
}

func (c *CompositeObserver) OnSubrun(ctx context.Context, rec *RunRecord, program string) {
	for _, o := range c.observers {
		o.OnSubrun(ctx, rec, program)
	}
}

// LoggingObserver writes structured logs using log/slog.
type LoggingObserver struct {
	Logger *slog.Logger
}

// NewLoggingObserver creates a RunObserver that logs run lifecycle events
// using the provided slog.Logger. If logger is nil, slog.Default() is used.
func NewLoggingObserver(logger *slog.Logger) RunObserver {
	if logger == nil {
		logger = slog.Default()
	}
	return &LoggingObserver{Logger: logger}
}

func (o *LoggingObserver) OnRunStart(ctx context.Context, rec *RunRecord) {
	o.Logger.InfoContext(ctx, "run_start",
		slog.String("program", rec.Program),
		slog.String("run_id", rec.ID),
		slog.String("parent_id", rec.Parent),
	)
}

func (o *LoggingObserver) OnRunCompleted(ctx context.Context, rec *RunRecord) {
	o.Logger.InfoContext(ctx, "run_completed",
		slog.String("program", rec.Program),
		slog.String("run_id", rec.ID),
		slog.Int("resolves", rec.Resolves),
	)
}

func (o *LoggingObserver) OnRunFailed(ctx context.Context, rec *RunRecord, err error) {
	o.Logger.ErrorContext(ctx, "run_failed",
		slog.String("program", rec.Program),
		slog.String("run_id", rec.ID),
		slog.String("status", string(rec.Status)),
		slog.Any("error", err),
	)
}

func (o *LoggingObserver) OnResolve(ctx context.Context, rec *RunRecord, token string, d time.Duration, err error) {
	level := slog.LevelDebug
	if err != nil {
		level = slog.LevelError
	}
	o.Logger.Log(ctx, level, "resolve",
		slog.String("program", rec.Program),
		slog.String("run_id", rec.ID),
		slog.String("token", token),
		slog.Duration("duration", d),
		slog.Any("error", err),
	)
}

func (o *LoggingObserver) OnSubrun(ctx context.Context, rec *RunRecord, program string) {
	o.Logger.DebugContext(ctx, "subrun",
		slog.String("program", rec.Program),
		slog.String("run_id", rec.ID),
		slog.String("subprogram", program),
	)
}

// BasicMetrics collects simple counters and aggregate resolution durations.
// It implements RunObserver, and can be combined with LoggingObserver via
// NewCompositeObserver.
type BasicMetrics struct {
	NoopObserver

	runsStarted          atomic.Int64
	runsCompleted        atomic.Int64
	runsFailed           atomic.Int64
	resolves             atomic.Int64
	totalResolveDuration atomic.Int64 // nanoseconds
}

// BasicMetricsSnapshot is an immutable snapshot of BasicMetrics.
type BasicMetricsSnapshot struct {
	RunsStarted   int64
	RunsCompleted int64
	RunsFailed    int64
	PendingRuns   int64

	Resolves           int64
	AvgResolveDuration time.Duration
}

func (m *BasicMetrics) OnRunStart(ctx context.Context, rec *RunRecord) {
	m.runsStarted.Add(1)
}

func (m *BasicMetrics) OnRunCompleted(ctx context.Context, rec *RunRecord) {
	m.runsCompleted.Add(1)
}

func (m *BasicMetrics) OnRunFailed(ctx context.Context, rec *RunRecord, err error) {
	m.runsFailed.Add(1)
}

func (m *BasicMetrics) OnResolve(ctx context.Context, rec *RunRecord, token string, d time.Duration, err error) {
	// Only successful resolutions count toward the average.
	if err == nil {
		m.resolves.Add(1)
		m.totalResolveDuration.Add(d.Nanoseconds())
	}
}

// Snapshot returns a snapshot of the current metrics.
func (m *BasicMetrics) Snapshot() BasicMetricsSnapshot {
	started := m.runsStarted.Load()
	completed := m.runsCompleted.Load()
	failed := m.runsFailed.Load()
	resolves := m.resolves.Load()
	totalNs := m.totalResolveDuration.Load()

	var avg time.Duration
	if resolves > 0 {
		avg = time.Duration(totalNs / resolves)
	}

	return BasicMetricsSnapshot{
		RunsStarted:        started,
		RunsCompleted:      completed,
		RunsFailed:         failed,
		PendingRuns:        started - completed - failed,
		Resolves:           resolves,
		AvgResolveDuration: avg,
	}
}
