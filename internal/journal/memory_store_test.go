package journal

import (
	"errors"
	"testing"
	"time"

	"github.com/weftlabs/weft/pkg/api"
)

func TestInMemoryStoreSaveGet(t *testing.T) {
	s := NewInMemoryStore()

	rec := &api.RunRecord{
		ID:        "r1",
		Program:   "getUser",
		Status:    api.RunRunning,
		StartedAt: time.Now(),
	}
	if err := s.SaveRun(rec); err != nil {
		t.Fatalf("SaveRun failed: %v", err)
	}

	got, err := s.GetRun("r1")
	if err != nil {
		t.Fatalf("GetRun failed: %v", err)
	}
	if got.Program != "getUser" || got.Status != api.RunRunning {
		t.Fatalf("unexpected record: %+v", got)
	}
}

func TestInMemoryStoreCopiesRecords(t *testing.T) {
	s := NewInMemoryStore()

	rec := &api.RunRecord{ID: "r1", Program: "p", Status: api.RunRunning}
	if err := s.SaveRun(rec); err != nil {
		t.Fatalf("SaveRun failed: %v", err)
	}

	// The driver keeps mutating its record after SaveRun; the stored copy
	// must not change until UpdateRun.
	rec.Status = api.RunCompleted
	rec.Output = 42

	got, err := s.GetRun("r1")
	if err != nil {
		t.Fatalf("GetRun failed: %v", err)
	}
	if got.Status != api.RunRunning || got.Output != nil {
		t.Fatalf("expected stored copy to be unchanged, got %+v", got)
	}

	if err := s.UpdateRun(rec); err != nil {
		t.Fatalf("UpdateRun failed: %v", err)
	}
	got, _ = s.GetRun("r1")
	if got.Status != api.RunCompleted || got.Output.(int) != 42 {
		t.Fatalf("expected updated record, got %+v", got)
	}
}

func TestInMemoryStoreUpdateMissing(t *testing.T) {
	s := NewInMemoryStore()

	err := s.UpdateRun(&api.RunRecord{ID: "nope"})
	if !errors.Is(err, ErrRunNotFound) {
		t.Fatalf("expected ErrRunNotFound, got %v", err)
	}

	if _, err := s.GetRun("nope"); !errors.Is(err, ErrRunNotFound) {
		t.Fatalf("expected ErrRunNotFound, got %v", err)
	}
}

func TestInMemoryStoreListFilters(t *testing.T) {
	s := NewInMemoryStore()

	seed := []*api.RunRecord{
		{ID: "a", Program: "getUser", Status: api.RunCompleted},
		{ID: "b", Program: "getUser", Status: api.RunFailed},
		{ID: "c", Program: "listUsers", Status: api.RunCompleted},
	}
	for _, rec := range seed {
		if err := s.SaveRun(rec); err != nil {
			t.Fatalf("SaveRun failed: %v", err)
		}
	}

	all, err := s.ListRuns(RunFilter{})
	if err != nil || len(all) != 3 {
		t.Fatalf("expected 3 records, got %d (err=%v)", len(all), err)
	}

	byProgram, _ := s.ListRuns(RunFilter{Program: "getUser"})
	if len(byProgram) != 2 {
		t.Fatalf("expected 2 getUser records, got %d", len(byProgram))
	}

	byBoth, _ := s.ListRuns(RunFilter{Program: "getUser", Status: api.RunFailed})
	if len(byBoth) != 1 || byBoth[0].ID != "b" {
		t.Fatalf("unexpected filtered result: %+v", byBoth)
	}
}
