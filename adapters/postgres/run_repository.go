package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"csvpilot/domain/analysis"
	"csvpilot/domain/core"
	apperrors "csvpilot/internal/errors"
	"csvpilot/ports"

	"github.com/jmoiron/sqlx"
)

// RunRepositoryImpl implements RunRepository for PostgreSQL
type RunRepositoryImpl struct {
	db *sqlx.DB
}

// NewRunRepository creates a new PostgreSQL run repository
func NewRunRepository(db *sqlx.DB) *RunRepositoryImpl {
	return &RunRepositoryImpl{db: db}
}

// InitSchema creates the runs table when it does not exist yet
func (r *RunRepositoryImpl) InitSchema(ctx context.Context) error {
	_, err := r.db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS workflow_runs (
			run_id       TEXT PRIMARY KEY,
			session_id   TEXT NOT NULL,
			dataset_id   TEXT NOT NULL,
			file_path    TEXT NOT NULL,
			outputs_root TEXT NOT NULL,
			stages       JSONB NOT NULL DEFAULT '[]',
			started_at   TIMESTAMPTZ NOT NULL,
			finished_at  TIMESTAMPTZ NOT NULL
		);
		CREATE INDEX IF NOT EXISTS idx_workflow_runs_session ON workflow_runs (session_id, started_at DESC);
	`)
	return err
}

// SaveRun persists one run summary; saving the same run id again overwrites
func (r *RunRepositoryImpl) SaveRun(ctx context.Context, record ports.RunRecord) error {
	stages, err := json.Marshal(record.Stages)
	if err != nil {
		return fmt.Errorf("failed to encode stages: %w", err)
	}

	_, err = r.db.ExecContext(ctx, `
		INSERT INTO workflow_runs (run_id, session_id, dataset_id, file_path, outputs_root, stages, started_at, finished_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (run_id) DO UPDATE SET
			stages = EXCLUDED.stages,
			finished_at = EXCLUDED.finished_at
	`, record.RunID, record.SessionID, record.DatasetID, record.FilePath, record.OutputsRoot,
		stages, record.StartedAt.Time(), record.FinishedAt.Time())
	return err
}

// GetRun retrieves one run by id
func (r *RunRepositoryImpl) GetRun(ctx context.Context, runID core.RunID) (*ports.RunRecord, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT run_id, session_id, dataset_id, file_path, outputs_root, stages, started_at, finished_at
		FROM workflow_runs
		WHERE run_id = $1
	`, runID)

	record, err := scanRun(row)
	if err == sql.ErrNoRows {
		return nil, apperrors.NotFound(fmt.Sprintf("run %s", runID))
	}
	if err != nil {
		return nil, err
	}
	return record, nil
}

// ListRuns returns runs newest first, optionally scoped to a session
func (r *RunRepositoryImpl) ListRuns(ctx context.Context, filters ports.RunFilters) ([]ports.RunRecord, error) {
	query := `
		SELECT run_id, session_id, dataset_id, file_path, outputs_root, stages, started_at, finished_at
		FROM workflow_runs
	`
	args := []interface{}{}
	if filters.SessionID != "" {
		query += " WHERE session_id = $1"
		args = append(args, filters.SessionID)
	}
	query += " ORDER BY started_at DESC"
	if filters.Limit > 0 {
		query += fmt.Sprintf(" LIMIT $%d", len(args)+1)
		args = append(args, filters.Limit)
	}
	if filters.Offset > 0 {
		query += fmt.Sprintf(" OFFSET $%d", len(args)+1)
		args = append(args, filters.Offset)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	records := make([]ports.RunRecord, 0)
	for rows.Next() {
		record, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, *record)
	}
	return records, rows.Err()
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanRun(row rowScanner) (*ports.RunRecord, error) {
	var record ports.RunRecord
	var stages []byte
	var startedAt, finishedAt time.Time

	err := row.Scan(
		&record.RunID,
		&record.SessionID,
		&record.DatasetID,
		&record.FilePath,
		&record.OutputsRoot,
		&stages,
		&startedAt,
		&finishedAt,
	)
	if err != nil {
		return nil, err
	}

	record.Stages = make([]analysis.StageReport, 0)
	if len(stages) > 0 {
		if err := json.Unmarshal(stages, &record.Stages); err != nil {
			return nil, fmt.Errorf("failed to decode stages: %w", err)
		}
	}
	record.StartedAt = core.NewTimestamp(startedAt)
	record.FinishedAt = core.NewTimestamp(finishedAt)
	return &record, nil
}
