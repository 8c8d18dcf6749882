package journal

import (
	"database/sql"
	"errors"
	"time"

	"github.com/weftlabs/weft/pkg/api"
)

// SQLiteStore is a Store backed by SQLite.
//
// It expects an *sql.DB that uses a SQLite driver (for example,
// "modernc.org/sqlite"). The caller is responsible for importing the
// driver, e.g.:
//
//	import _ "modernc.org/sqlite"
type SQLiteStore struct {
	db *sql.DB
}

// Ensure SQLiteStore implements Store.
var _ Store = (*SQLiteStore)(nil)

// NewSQLiteStore initializes the required schema in the given database and
// returns a new SQLiteStore.
func NewSQLiteStore(db *sql.DB) (*SQLiteStore, error) {
	s := &SQLiteStore{db: db}
	if err := s.initSchema(); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *SQLiteStore) initSchema() error {
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS runs (
			id TEXT PRIMARY KEY,
			program TEXT NOT NULL,
			parent TEXT NOT NULL DEFAULT '',
			status TEXT NOT NULL,
			output BLOB,
			error TEXT,
			resolves INTEGER NOT NULL DEFAULT 0,
			started_at INTEGER NOT NULL,
			finished_at INTEGER NOT NULL DEFAULT 0
		);`,
	)
	return err
}

func (s *SQLiteStore) SaveRun(rec *api.RunRecord) error {
	output, err := EncodeValue(rec.Output)
	if err != nil {
		return err
	}

	_, err = s.db.Exec(`
		INSERT INTO runs (id, program, parent, status, output, error, resolves, started_at, finished_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.ID,
		rec.Program,
		rec.Parent,
		string(rec.Status),
		output,
		errString(rec.Err),
		rec.Resolves,
		rec.StartedAt.UnixNano(),
		unixOrZero(rec.FinishedAt),
	)
	return err
}

func (s *SQLiteStore) UpdateRun(rec *api.RunRecord) error {
	output, err := EncodeValue(rec.Output)
	if err != nil {
		return err
	}

	res, err := s.db.Exec(`
		UPDATE runs
		SET program = ?, parent = ?, status = ?, output = ?, error = ?, resolves = ?, started_at = ?, finished_at = ?
		WHERE id = ?`,
		rec.Program,
		rec.Parent,
		string(rec.Status),
		output,
		errString(rec.Err),
		rec.Resolves,
		rec.StartedAt.UnixNano(),
		unixOrZero(rec.FinishedAt),
		rec.ID,
	)
	if err != nil {
		return err
	}

	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrRunNotFound
	}
	return nil
}

func (s *SQLiteStore) GetRun(id string) (*api.RunRecord, error) {
	row := s.db.QueryRow(`
		SELECT id, program, parent, status, output, error, resolves, started_at, finished_at
		FROM runs WHERE id = ?`, id)

	rec, err := scanRun(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrRunNotFound
	}
	return rec, err
}

func (s *SQLiteStore) ListRuns(filter RunFilter) ([]*api.RunRecord, error) {
	query := `
		SELECT id, program, parent, status, output, error, resolves, started_at, finished_at
		FROM runs WHERE 1=1`
	var args []any

	if filter.Program != "" {
		query += " AND program = ?"
		args = append(args, filter.Program)
	}
	if filter.Status != "" {
		query += " AND status = ?"
		args = append(args, string(filter.Status))
	}

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []*api.RunRecord
	for rows.Next() {
		rec, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, rec)
	}
	return result, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

// scanRun rebuilds a record from a row. Error identity does not survive
// persistence: the stored message comes back as an opaque error.
func scanRun(row rowScanner) (*api.RunRecord, error) {
	var (
		rec        api.RunRecord
		status     string
		output     []byte
		errStr     string
		startedAt  int64
		finishedAt int64
	)

	if err := row.Scan(&rec.ID, &rec.Program, &rec.Parent, &status, &output, &errStr, &rec.Resolves, &startedAt, &finishedAt); err != nil {
		return nil, err
	}

	rec.Status = api.RunStatus(status)
	rec.StartedAt = time.Unix(0, startedAt)
	if finishedAt != 0 {
		rec.FinishedAt = time.Unix(0, finishedAt)
	}
	if errStr != "" {
		rec.Err = errors.New(errStr)
	}

	out, err := DecodeValue(output)
	if err != nil {
		return nil, err
	}
	rec.Output = out

	return &rec, nil
}

func errString(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}

func unixOrZero(t time.Time) int64 {
	if t.IsZero() {
		return 0
	}
	return t.UnixNano()
}
