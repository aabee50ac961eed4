package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"csvpilot/domain/core"
	apperrors "csvpilot/internal/errors"
	"csvpilot/ports"
)

// RunRepository keeps run records in process memory. It is the default
// registry when no database is configured; records do not survive restarts.
type RunRepository struct {
	mu      sync.RWMutex
	records map[core.RunID]ports.RunRecord
}

// NewRunRepository creates an empty in-memory run repository
func NewRunRepository() *RunRepository {
	return &RunRepository{records: make(map[core.RunID]ports.RunRecord)}
}

// SaveRun stores one run summary; saving the same run id again overwrites
func (r *RunRepository) SaveRun(_ context.Context, record ports.RunRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.records[record.RunID] = record
	return nil
}

// GetRun retrieves one run by id
func (r *RunRepository) GetRun(_ context.Context, runID core.RunID) (*ports.RunRecord, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	record, ok := r.records[runID]
	if !ok {
		return nil, apperrors.NotFound(fmt.Sprintf("run %s", runID))
	}
	return &record, nil
}

// ListRuns returns runs newest first, optionally scoped to a session
func (r *RunRepository) ListRuns(_ context.Context, filters ports.RunFilters) ([]ports.RunRecord, error) {
	r.mu.RLock()
	records := make([]ports.RunRecord, 0, len(r.records))
	for _, record := range r.records {
		if filters.SessionID != "" && record.SessionID != filters.SessionID {
			continue
		}
		records = append(records, record)
	}
	r.mu.RUnlock()

	sort.Slice(records, func(i, j int) bool {
		return records[j].StartedAt.Before(records[i].StartedAt)
	})

	if filters.Offset > 0 {
		if filters.Offset >= len(records) {
			return []ports.RunRecord{}, nil
		}
		records = records[filters.Offset:]
	}
	if filters.Limit > 0 && filters.Limit < len(records) {
		records = records[:filters.Limit]
	}
	return records, nil
}
