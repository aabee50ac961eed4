package ports

import (
	"context"

	"csvpilot/domain/analysis"
	"csvpilot/domain/core"
)

// SessionContext is the state a session accumulates between requests:
// follow-up visualize/train calls reuse the selector output of the most
// recent analysis instead of recomputing it.
type SessionContext struct {
	SessionID      core.SessionID           `json:"sessionId"`
	DatasetID      core.DatasetID           `json:"datasetId"`
	FilePath       string                   `json:"filePath"`
	SelectorResult *analysis.SelectorResult `json:"selectorResult,omitempty"`
	LastRunID      core.RunID               `json:"lastRunId,omitempty"`
	UpdatedAt      core.Timestamp           `json:"updatedAt"`
}

// SessionStore keeps per-session context with a bounded lifetime. Entries
// expire after the configured TTL; Get on an expired or unknown session
// returns ok=false, never an error.
type SessionStore interface {
	Get(ctx context.Context, id core.SessionID) (*SessionContext, bool)
	Put(ctx context.Context, sc SessionContext) error
	Delete(ctx context.Context, id core.SessionID) error
}
