package journal

import (
	"database/sql"
	"encoding/gob"
	"errors"
	"testing"
	"time"

	_ "modernc.org/sqlite"

	"github.com/weftlabs/weft/pkg/api"
)

type sampleOutput struct {
	Msg string
	N   int
}

func init() {
	gob.Register(sampleOutput{})
}

func newTestSQLiteStore(t *testing.T) *SQLiteStore {
	t.Helper()

	db, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		t.Fatalf("sql.Open failed: %v", err)
	}

	t.Cleanup(func() {
		_ = db.Close()
	})

	store, err := NewSQLiteStore(db)
	if err != nil {
		t.Fatalf("NewSQLiteStore failed: %v", err)
	}

	return store
}

func TestSQLiteStoreSaveGetUpdate(t *testing.T) {
	store := newTestSQLiteStore(t)

	started := time.Now()
	rec := &api.RunRecord{
		ID:        "r1",
		Program:   "getUser",
		Status:    api.RunRunning,
		StartedAt: started,
	}

	if err := store.SaveRun(rec); err != nil {
		t.Fatalf("SaveRun failed: %v", err)
	}

	got, err := store.GetRun("r1")
	if err != nil {
		t.Fatalf("GetRun failed: %v", err)
	}
	if got.Program != "getUser" || got.Status != api.RunRunning {
		t.Fatalf("unexpected record: %+v", got)
	}
	if !got.StartedAt.Equal(started) {
		t.Fatalf("expected StartedAt to round-trip, got %v", got.StartedAt)
	}
	if !got.FinishedAt.IsZero() {
		t.Fatalf("expected zero FinishedAt, got %v", got.FinishedAt)
	}

	rec.Status = api.RunCompleted
	rec.Output = sampleOutput{Msg: "hello", N: 7}
	rec.Resolves = 2
	rec.FinishedAt = time.Now()

	if err := store.UpdateRun(rec); err != nil {
		t.Fatalf("UpdateRun failed: %v", err)
	}

	got, err = store.GetRun("r1")
	if err != nil {
		t.Fatalf("GetRun after update failed: %v", err)
	}
	if got.Status != api.RunCompleted || got.Resolves != 2 {
		t.Fatalf("unexpected updated record: %+v", got)
	}
	out, ok := got.Output.(sampleOutput)
	if !ok || out.Msg != "hello" || out.N != 7 {
		t.Fatalf("expected output to round-trip, got %v", got.Output)
	}
	if got.FinishedAt.IsZero() {
		t.Fatalf("expected FinishedAt to be set")
	}
}

func TestSQLiteStoreErrorMessageSurvives(t *testing.T) {
	store := newTestSQLiteStore(t)

	rec := &api.RunRecord{
		ID:        "r1",
		Program:   "failing",
		Status:    api.RunFailed,
		Err:       errors.New("boom"),
		StartedAt: time.Now(),
	}
	if err := store.SaveRun(rec); err != nil {
		t.Fatalf("SaveRun failed: %v", err)
	}

	got, err := store.GetRun("r1")
	if err != nil {
		t.Fatalf("GetRun failed: %v", err)
	}
	// Identity does not survive persistence; the message does.
	if got.Err == nil || got.Err.Error() != "boom" {
		t.Fatalf("expected stored error message, got %v", got.Err)
	}
}

func TestSQLiteStoreNotFound(t *testing.T) {
	store := newTestSQLiteStore(t)

	if _, err := store.GetRun("nope"); !errors.Is(err, ErrRunNotFound) {
		t.Fatalf("expected ErrRunNotFound, got %v", err)
	}
	err := store.UpdateRun(&api.RunRecord{ID: "nope", StartedAt: time.Now()})
	if !errors.Is(err, ErrRunNotFound) {
		t.Fatalf("expected ErrRunNotFound, got %v", err)
	}
}

func TestSQLiteStoreListFilters(t *testing.T) {
	store := newTestSQLiteStore(t)

	seed := []*api.RunRecord{
		{ID: "a", Program: "getUser", Status: api.RunCompleted, StartedAt: time.Now()},
		{ID: "b", Program: "getUser", Status: api.RunFailed, StartedAt: time.Now()},
		{ID: "c", Program: "listUsers", Status: api.RunCompleted, StartedAt: time.Now()},
	}
	for _, rec := range seed {
		if err := store.SaveRun(rec); err != nil {
			t.Fatalf("SaveRun failed: %v", err)
		}
	}

	all, err := store.ListRuns(RunFilter{})
	if err != nil || len(all) != 3 {
		t.Fatalf("expected 3 records, got %d (err=%v)", len(all), err)
	}

	byProgram, _ := store.ListRuns(RunFilter{Program: "getUser"})
	if len(byProgram) != 2 {
		t.Fatalf("expected 2 getUser records, got %d", len(byProgram))
	}

	byBoth, _ := store.ListRuns(RunFilter{Program: "getUser", Status: api.RunFailed})
	if len(byBoth) != 1 || byBoth[0].ID != "b" {
		t.Fatalf("unexpected filtered result: %+v", byBoth)
	}
}

func TestCodecNilRoundTrip(t *testing.T) {
	data, err := EncodeValue(nil)
	if err != nil {
		t.Fatalf("EncodeValue failed: %v", err)
	}
	if data != nil {
		t.Fatalf("expected nil encoding for nil value")
	}

	v, err := DecodeValue(nil)
	if err != nil || v != nil {
		t.Fatalf("expected nil decode, got %v (err=%v)", v, err)
	}
}
