package ports

import (
	"context"

	"csvpilot/domain/analysis"
	"csvpilot/domain/core"
)

// RunRecord is the persisted summary of one workflow invocation
type RunRecord struct {
	RunID       core.RunID             `json:"runId" db:"run_id"`
	SessionID   core.SessionID         `json:"sessionId" db:"session_id"`
	DatasetID   core.DatasetID         `json:"datasetId" db:"dataset_id"`
	FilePath    string                 `json:"filePath" db:"file_path"`
	OutputsRoot string                 `json:"outputsRoot" db:"outputs_root"`
	Stages      []analysis.StageReport `json:"stages" db:"-"`
	StartedAt   core.Timestamp         `json:"startedAt" db:"started_at"`
	FinishedAt  core.Timestamp         `json:"finishedAt" db:"finished_at"`
}

// RunFilters narrows run listing
type RunFilters struct {
	SessionID core.SessionID
	Limit     int
	Offset    int
}

// RunRepository records workflow runs for later inspection. Recording is
// best-effort from the orchestrator's point of view: a storage failure never
// fails the workflow.
type RunRepository interface {
	SaveRun(ctx context.Context, record RunRecord) error
	GetRun(ctx context.Context, runID core.RunID) (*RunRecord, error)
	ListRuns(ctx context.Context, filters RunFilters) ([]RunRecord, error)
}
