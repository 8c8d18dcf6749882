package taskqueue

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestInMemoryQueueEnqueueDequeueOrder(t *testing.T) {
	q := NewInMemoryQueue(8)

	ctx := context.Background()

	for _, id := range []string{"1", "2", "3"} {
		if err := q.Enqueue(ctx, Submission{ID: id, Handler: "getUser"}); err != nil {
			t.Fatalf("Enqueue %s failed: %v", id, err)
		}
	}

	if q.Len() != 3 {
		t.Fatalf("expected Len 3, got %d", q.Len())
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

	if q.Len() != 0 {
		t.Fatalf("expected empty queue, got Len %d", q.Len())
	}
}

func TestInMemoryQueueDequeueRespectsContext(t *testing.T) {
	q := NewInMemoryQueue(1)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Millisecond)
	defer cancel()

	_, err := q.Dequeue(ctx)
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected DeadlineExceeded, got %v", err)
	}
}

func TestInMemoryQueueBlockingHandoff(t *testing.T) {
	q := NewInMemoryQueue(1)
	ctx := context.Background()

	done := make(chan *Submission, 1)
	go func() {
		sub, err := q.Dequeue(ctx)
		if err != nil {
			t.Errorf("Dequeue failed: %v", err)
		}
		done <- sub
	}()

	if err := q.Enqueue(ctx, Submission{ID: "1", Handler: "getUser"}); err != nil {
		t.Fatalf("Enqueue failed: %v", err)
	}

	select {
	case sub := <-done:
		if sub == nil || sub.ID != "1" {
			t.Fatalf("unexpected submission: %+v", sub)
		}
	case <-time.After(time.Second):
		t.Fatalf("expected blocked Dequeue to receive the submission")
	}
}
