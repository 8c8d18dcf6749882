package taskqueue

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/gob"
	"errors"
	"time"

	"github.com/weftlabs/weft/pkg/api"
)

// SQLiteQueue is a persistent submission queue backed by SQLite. It is safe
// for concurrent use for our purposes, using simple FIFO semantics based on
// an auto-incrementing row id.
type SQLiteQueue struct {
	db           *sql.DB
	pollInterval time.Duration
}

// NewSQLiteQueue initializes the submissions table in the given DB and
// returns a new queue.
func NewSQLiteQueue(db *sql.DB) (*SQLiteQueue, error) {
	q := &SQLiteQueue{
		db:           db,
		pollInterval: 20 * time.Millisecond,
	}
	if err := q.initSchema(); err != nil {
		return nil, err
	}
	return q, nil
}

func (q *SQLiteQueue) initSchema() error {
	_, err := q.db.Exec(`
		CREATE TABLE IF NOT EXISTS submissions (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			submission_id TEXT,
			handler TEXT NOT NULL,
			input BLOB,
			retry BLOB,
			enqueued_at INTEGER NOT NULL
		);
	`)
	return err
}

// Ensure SQLiteQueue implements Queue.
var _ Queue = (*SQLiteQueue)(nil)

func (q *SQLiteQueue) Enqueue(ctx context.Context, sub Submission) error {
	inputBytes, err := encodePayload(sub.Input)
	if err != nil {
		return err
	}

	var retryBytes []byte
	if sub.Retry != nil {
		retryBytes, err = encodeRetry(*sub.Retry)
		if err != nil {
			return err
		}
	}

	enqueuedAt := sub.EnqueuedAt
	if enqueuedAt.IsZero() {
		enqueuedAt = time.Now()
	}

	_, err = q.db.ExecContext(ctx, `
		INSERT INTO submissions (submission_id, handler, input, retry, enqueued_at)
		VALUES (?, ?, ?, ?, ?)`,
		sub.ID,
		sub.Handler,
		inputBytes,
		retryBytes,
		enqueuedAt.UnixNano(),
	)
	return err
}

func (q *SQLiteQueue) Dequeue(ctx context.Context) (*Submission, error) {
	for {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}

		tx, err := q.db.BeginTx(ctx, nil)
		if err != nil {
			return nil, err
		}

		var (
			id          int64
			subID       sql.NullString
			handler     string
			input       []byte
			retry       []byte
			enqueuedInt int64
		)

		row := tx.QueryRowContext(ctx, `
			SELECT id, submission_id, handler, input, retry, enqueued_at
			FROM submissions
			ORDER BY id
			LIMIT 1`)
		err = row.Scan(&id, &subID, &handler, &input, &retry, &enqueuedInt)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				_ = tx.Rollback()
				// Nothing available: sleep a bit and retry.
				select {
				case <-ctx.Done():
					return nil, ctx.Err()
				case <-time.After(q.pollInterval):
					continue
				}
			}
			_ = tx.Rollback()
			return nil, err
		}

		// Delete the row we just claimed.
		if _, err := tx.ExecContext(ctx, `DELETE FROM submissions WHERE id = ?`, id); err != nil {
			_ = tx.Rollback()
			return nil, err
		}

		if err := tx.Commit(); err != nil {
			return nil, err
		}

		decoded, err := decodePayload(input)
		if err != nil {
			return nil, err
		}

		sub := &Submission{
			Handler:    handler,
			Input:      decoded,
			EnqueuedAt: time.Unix(0, enqueuedInt),
		}
		if subID.Valid {
			sub.ID = subID.String
		}
		if len(retry) > 0 {
			policy, err := decodeRetry(retry)
			if err != nil {
				return nil, err
			}
			sub.Retry = &policy
		}

		return sub, nil
	}
}

func (q *SQLiteQueue) Len() int {
	var n int
	err := q.db.QueryRow(`SELECT COUNT(*) FROM submissions`).Scan(&n)
	if err != nil {
		return 0
	}
	return n
}

// encodePayload serializes arbitrary Go values using encoding/gob.
// Callers must ensure that values are gob-encodable and that their
// concrete types have been registered with gob.Register where needed.
func encodePayload(v any) ([]byte, error) {
	if v == nil {
		return nil, nil
	}
	var buf bytes.Buffer
	enc := gob.NewEncoder(&buf)
	var iv = v
	if err := enc.Encode(&iv); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// decodePayload deserializes gob-encoded data back into an `any`.
func decodePayload(data []byte) (any, error) {
	if len(data) == 0 {
		return nil, nil
	}
	buf := bytes.NewBuffer(data)
	dec := gob.NewDecoder(buf)
	var iv any
	if err := dec.Decode(&iv); err != nil {
		return nil, err
	}
	return iv, nil
}

func encodeRetry(p api.RetryPolicy) ([]byte, error) {
	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(p); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func decodeRetry(data []byte) (api.RetryPolicy, error) {
	var p api.RetryPolicy
	if err := gob.NewDecoder(bytes.NewBuffer(data)).Decode(&p); err != nil {
		return api.RetryPolicy{}, err
	}
	return p, nil
}
