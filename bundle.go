package weft

import (
	"database/sql"

	"github.com/weftlabs/weft/internal/driver"
	"github.com/weftlabs/weft/internal/journal"
	"github.com/weftlabs/weft/internal/registry"
	"github.com/weftlabs/weft/internal/taskqueue"
	workerpkg "github.com/weftlabs/weft/pkg/worker"
)

// WorkerBundle wires together a registry, a durable journaled Driver, a
// durable submission queue, and a Worker that consumes from that queue.
//
// For now, we only provide a SQLite-backed bundle.
type WorkerBundle struct {
	Registry *Registry
	Driver   *Driver
	Worker   *workerpkg.Worker

	// queue is kept unexported for now; it is primarily useful for internal
	// inspection and tests. The public API focuses on Registry and Worker.
	queue taskqueue.Queue
}

// NewSQLiteBundle constructs a durable Driver + Queue + Worker combo sharing
// the same SQLite database. Run records and queued submissions are persisted
// in the provided *sql.DB.
//
// Typical usage:
//
//	db, _ := sql.Open("sqlite", "file:weft.db?_journal=WAL")
//	bundle, err := weft.NewSQLiteBundle(db, env, worker.Config{})
//	// register handlers on bundle.Registry
//	// enqueue work via bundle.Worker
func NewSQLiteBundle(db *sql.DB, base Environment, cfg workerpkg.Config) (*WorkerBundle, error) {
	store, err := journal.NewSQLiteStore(db)
	if err != nil {
		return nil, err
	}
	d := driver.New(driver.WithJournal(store))

	q, err := taskqueue.NewSQLiteQueue(db)
	if err != nil {
		return nil, err
	}

	reg := registry.New()
	w := workerpkg.NewWithConfig(d, reg, q, base, cfg)

	return &WorkerBundle{
		Registry: reg,
		Driver:   d,
		Worker:   w,
		queue:    q,
	}, nil
}
