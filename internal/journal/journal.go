package journal

import (
	"errors"

	"github.com/weftlabs/weft/pkg/api"
)

// ErrRunNotFound is returned when a run record is not found.
var ErrRunNotFound = errors.New("run not found")

// RunFilter selects run records from a store.
// Empty string / zero status mean "no filter" for that field.
type RunFilter struct {
	Program string
	Status  api.RunStatus
}

// Store persists run records. The driver saves a record when a run starts
// and updates it on every terminal transition; transports and tools read
// them back for inspection.
type Store interface {
	SaveRun(rec *api.RunRecord) error
	UpdateRun(rec *api.RunRecord) error
	GetRun(id string) (*api.RunRecord, error)
	ListRuns(filter RunFilter) ([]*api.RunRecord, error)
}
