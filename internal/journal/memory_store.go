package journal

import (
	"sync"

	"github.com/weftlabs/weft/pkg/api"
)

// InMemoryStore is a goroutine-safe Store backed by a map. Records are
// copied on the way in and out: the driver keeps mutating its record after
// SaveRun, and concurrent runs share one store.
type InMemoryStore struct {
	mu   sync.RWMutex
	runs map[string]api.RunRecord
}

// NewInMemoryStore creates a new InMemoryStore.
func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{
		runs: make(map[string]api.RunRecord),
	}
}

// Ensure InMemoryStore implements the interface.
var _ Store = (*InMemoryStore)(nil)

func (s *InMemoryStore) SaveRun(rec *api.RunRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.runs[rec.ID] = *rec
	return nil
}

func (s *InMemoryStore) UpdateRun(rec *api.RunRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.runs[rec.ID]; !ok {
		return ErrRunNotFound
	}

	s.runs[rec.ID] = *rec
	return nil
}

func (s *InMemoryStore) GetRun(id string) (*api.RunRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rec, ok := s.runs[id]
	if !ok {
		return nil, ErrRunNotFound
	}

	return &rec, nil
}

func (s *InMemoryStore) ListRuns(filter RunFilter) ([]*api.RunRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []*api.RunRecord

	for id := range s.runs {
		rec := s.runs[id]
		if filter.Program != "" && rec.Program != filter.Program {
			continue
		}
		if filter.Status != "" && rec.Status != filter.Status {
			continue
		}
		result = append(result, &rec)
	}

	return result, nil
}
