package analysis

import (
	"csvpilot/domain/core"
)

// StageName identifies one workflow stage
type StageName string

const (
	StageProfile     StageName = "profile"
	StageCorrelation StageName = "correlation"
	StageSelect      StageName = "select"
	StageVisualize   StageName = "visualize"
	StagePreprocess  StageName = "preprocess"
	StageTrain       StageName = "train"
)

// StageStatus is the outcome of one stage within a workflow run
type StageStatus string

const (
	StageCompleted StageStatus = "completed"
	StageSkipped   StageStatus = "skipped"
	StageFailed    StageStatus = "failed"
)

// StageReport records what happened to one stage, so callers can tell
// "attempted and failed" from "not attempted" instead of inferring it from
// absent fields
type StageReport struct {
	Stage  StageName   `json:"stage"`
	Status StageStatus `json:"status"`
	Error  string      `json:"error,omitempty"`
}

// TrainingResult is what the external trainer hands back
type TrainingResult struct {
	ReportPath string `json:"reportPath"`
	ModelPath  string `json:"modelPath,omitempty"`
}

// PreprocessResult is what the preprocessing applier hands back
type PreprocessResult struct {
	PreprocessedFilePath string   `json:"preprocessedFilePath"`
	Messages             []string `json:"messages,omitempty"`
}

// WorkflowResult aggregates every stage's output for one invocation.
// Optional fields are nil/empty when their stage was skipped or failed; the
// Stages list says which. Assembled once, never mutated afterward.
type WorkflowResult struct {
	FilePath                     string               `json:"filePath"`
	DatasetID                    core.DatasetID       `json:"datasetId"`
	SessionID                    core.SessionID       `json:"sessionId"`
	RunID                        core.RunID           `json:"runId"`
	ColumnStats                  []ColumnStat         `json:"columnStats"`
	CorrelationResults           *CorrelationResult   `json:"correlationResults,omitempty"`
	SelectedColumns              []string             `json:"selectedColumns"`
	RecommendedPairs             []PairRecommendation `json:"recommendedPairs"`
	PreprocessingRecommendations []PreprocessStep     `json:"preprocessingRecommendations"`
	TargetColumn                 string               `json:"targetColumn,omitempty"`
	ProblemType                  ProblemType          `json:"problemType,omitempty"`
	ModelRecommendation          *ModelRecommendation `json:"mlModelRecommendation,omitempty"`
	ChartPaths                   []string             `json:"chartPaths"`
	PreprocessedFilePath         string               `json:"preprocessedFilePath,omitempty"`
	MLResult                     *TrainingResult      `json:"mlResultPath,omitempty"`
	ReportPath                   string               `json:"reportPath,omitempty"`
	OutputsRoot                  string               `json:"outputsRoot,omitempty"`
	Stages                       []StageReport        `json:"stages"`
	StartedAt                    core.Timestamp       `json:"startedAt"`
	FinishedAt                   core.Timestamp       `json:"finishedAt"`
}

// StageOutcome returns the report for one stage, if the stage was reached
func (r *WorkflowResult) StageOutcome(name StageName) (StageReport, bool) {
	for _, s := range r.Stages {
		if s.Stage == name {
			return s, true
		}
	}
	return StageReport{}, false
}
