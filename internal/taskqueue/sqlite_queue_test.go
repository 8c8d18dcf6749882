package taskqueue

import (
	"context"
	"database/sql"
	"encoding/gob"
	"errors"
	"testing"
	"time"

	_ "modernc.org/sqlite"

	"github.com/weftlabs/weft/pkg/api"
)

type sampleInput struct {
	ID string
}

func init() {
	gob.Register(sampleInput{})
}

func newTestSQLiteQueue(t *testing.T) *SQLiteQueue {
	t.Helper()

	db, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		t.Fatalf("sql.Open failed: %v", err)
	}

	t.Cleanup(func() {
		_ = db.Close()
	})

	q, err := NewSQLiteQueue(db)
	if err != nil {
		t.Fatalf("NewSQLiteQueue failed: %v", err)
	}
	return q
}

func TestSQLiteQueueRoundTrip(t *testing.T) {
	q := newTestSQLiteQueue(t)
	ctx := context.Background()

	sub := Submission{
		ID:      "s1",
		Handler: "getUser",
		Input:   sampleInput{ID: "u-42"},
		Retry: &api.RetryPolicy{
			MaxAttempts:    3,
			InitialBackoff: 10 * time.Millisecond,
		},
		EnqueuedAt: time.Now(),
	}
	if err := q.Enqueue(ctx, sub); err != nil {
		t.Fatalf("Enqueue failed: %v", err)
	}

	if q.Len() != 1 {
		t.Fatalf("expected Len 1, got %d", q.Len())
	}

	got, err := q.Dequeue(ctx)
	if err != nil {
		t.Fatalf("Dequeue failed: %v", err)
	}

	if got.ID != "s1" || got.Handler != "getUser" {
		t.Fatalf("unexpected submission: %+v", got)
	}
	in, ok := got.Input.(sampleInput)
	if !ok || in.ID != "u-42" {
		t.Fatalf("expected input to round-trip, got %v", got.Input)
	}
	if got.Retry == nil || got.Retry.MaxAttempts != 3 || got.Retry.InitialBackoff != 10*time.Millisecond {
		t.Fatalf("expected retry policy to round-trip, got %+v", got.Retry)
	}

	if q.Len() != 0 {
		t.Fatalf("expected empty queue after dequeue, got Len %d", q.Len())
	}
}

func TestSQLiteQueueFIFO(t *testing.T) {
	q := newTestSQLiteQueue(t)
	ctx := context.Background()

	for _, id := range []string{"1", "2", "3"} {
		if err := q.Enqueue(ctx, Submission{ID: id, Handler: "h"}); err != nil {
			t.Fatalf("Enqueue %s failed: %v", id, err)
		}
	}

	for _, want := range []string{"1", "2", "3"} {
		got, err := q.Dequeue(ctx)
		if err != nil {
			t.Fatalf("Dequeue failed: %v", err)
		}
		if got.ID != want {
			t.Fatalf("expected %q, got %q", want, got.ID)
		}
	}
}

func TestSQLiteQueueDequeueRespectsContext(t *testing.T) {
	q := newTestSQLiteQueue(t)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_, err := q.Dequeue(ctx)
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected DeadlineExceeded, got %v", err)
	}
}

func TestSQLiteQueueNilInputAndRetry(t *testing.T) {
	q := newTestSQLiteQueue(t)
	ctx := context.Background()

	if err := q.Enqueue(ctx, Submission{ID: "s1", Handler: "h"}); err != nil {
		t.Fatalf("Enqueue failed: %v", err)
	}

	got, err := q.Dequeue(ctx)
	if err != nil {
		t.Fatalf("Dequeue failed: %v", err)
	}
	if got.Input != nil || got.Retry != nil {
		t.Fatalf("expected nil input and retry, got %+v", got)
	}
}
