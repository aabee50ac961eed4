package workflow

import (
	"context"
	"fmt"
	"log"

	"csvpilot/domain/analysis"
	"csvpilot/domain/core"
	"csvpilot/internal/config"
	"csvpilot/internal/correlation"
	"csvpilot/internal/profile"
	"csvpilot/internal/report"
	"csvpilot/internal/selector"
	"csvpilot/internal/session"
	"csvpilot/ports"
)

// Request carries the caller's inputs for one workflow invocation
type Request struct {
	FilePath  string
	User      string
	SessionID core.SessionID
	Hint      *analysis.Hint
}

// Orchestrator runs the fixed analysis pipeline: profile, correlate, select,
// visualize, preprocess, train. Profiling is the only fatal stage; everything
// downstream is best-effort and reported per stage, so one broken collaborator
// degrades the result instead of erasing it.
type Orchestrator struct {
	cfg          *config.Config
	reader       ports.TabularReader
	profiler     *profile.Profiler
	engine       *correlation.Engine
	selector     *selector.Selector
	visualizer   ports.Visualizer
	preprocessor ports.Preprocessor
	trainer      ports.ModelTrainer
	reporter     *report.Writer
	runs         ports.RunRepository
	sessions     ports.SessionStore
}

// NewOrchestrator wires the pipeline. The visualizer, preprocessor and
// trainer may be nil; their stages are then skipped.
func NewOrchestrator(
	cfg *config.Config,
	reader ports.TabularReader,
	profiler *profile.Profiler,
	engine *correlation.Engine,
	sel *selector.Selector,
	visualizer ports.Visualizer,
	preprocessor ports.Preprocessor,
	trainer ports.ModelTrainer,
	runs ports.RunRepository,
	sessions ports.SessionStore,
) *Orchestrator {
	return &Orchestrator{
		cfg:          cfg,
		reader:       reader,
		profiler:     profiler,
		engine:       engine,
		selector:     sel,
		visualizer:   visualizer,
		preprocessor: preprocessor,
		trainer:      trainer,
		reporter:     report.NewWriter(),
		runs:         runs,
		sessions:     sessions,
	}
}

// Run executes the full pipeline for one file. The returned result is always
// complete for the stages that ran; the Stages list records what happened to
// each. The only errors returned are a missing file path and a profiling
// failure.
func (o *Orchestrator) Run(ctx context.Context, req Request) (*analysis.WorkflowResult, error) {
	if req.FilePath == "" {
		return nil, fmt.Errorf("%w: file path", core.ErrMissingInput)
	}

	if o.cfg.Pipeline.WorkflowTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, o.cfg.Pipeline.WorkflowTimeout)
		defer cancel()
	}

	scope := session.DeriveScope(req.FilePath, req.User, req.SessionID)
	outputDir, err := scope.EnsureOutputDir(o.cfg.Paths.OutputsDir)
	if err != nil {
		return nil, err
	}

	result := &analysis.WorkflowResult{
		FilePath:    req.FilePath,
		DatasetID:   scope.DatasetID,
		SessionID:   scope.SessionID,
		RunID:       scope.RunID,
		ChartPaths:  []string{},
		OutputsRoot: session.NormalizeArtifactPath(o.cfg.Paths.OutputsDir, outputDir),
		Stages:      make([]analysis.StageReport, 0, 6),
		StartedAt:   core.Now(),
	}
	log.Printf("[Workflow] run=%s dataset=%s session=%s file=%s", scope.RunID, scope.DatasetID, scope.SessionID, req.FilePath)

	// Stage 1: profile. The only fatal stage; nothing downstream can run
	// without column statistics.
	table, err := o.reader.ReadTable(ctx, req.FilePath)
	var columnStats []analysis.ColumnStat
	if err == nil {
		columnStats, err = o.profiler.ProfileTable(table)
	}
	if err != nil {
		result.Stages = append(result.Stages, failed(analysis.StageProfile, err))
		result.FinishedAt = core.Now()
		return result, core.NewStageError(string(analysis.StageProfile), err)
	}
	result.ColumnStats = columnStats
	result.Stages = append(result.Stages, completed(analysis.StageProfile))

	// Stage 2: correlation, over the strictly numeric columns only
	result.Stages = append(result.Stages, o.runCorrelation(table, result))

	// Stage 3: selection. Pure derivation, cannot fail.
	selectorResult := o.selector.Select(columnStats, result.CorrelationResults, req.Hint)
	result.SelectedColumns = selectorResult.SelectedColumns
	result.RecommendedPairs = selectorResult.RecommendedPairs
	result.PreprocessingRecommendations = selectorResult.PreprocessingRecommendations
	result.TargetColumn = selectorResult.TargetColumn
	result.ProblemType = selectorResult.ProblemType
	result.ModelRecommendation = selectorResult.ModelRecommendation
	result.Stages = append(result.Stages, completed(analysis.StageSelect))

	// Stage 4: visualization
	result.Stages = append(result.Stages, o.runVisualize(ctx, req.FilePath, &selectorResult, outputDir, result))

	// Stage 5: preprocessing. On success the cleaned file feeds training.
	trainInput := req.FilePath
	result.Stages = append(result.Stages, o.runPreprocess(ctx, req.FilePath, &selectorResult, outputDir, result, &trainInput))

	// Stage 6: training
	result.Stages = append(result.Stages, o.runTrain(ctx, trainInput, &selectorResult, outputDir, result))

	result.FinishedAt = core.Now()
	o.writeReport(result, outputDir)
	o.recordRun(ctx, result)
	o.updateSession(ctx, scope, req.FilePath, &selectorResult)

	log.Printf("[Workflow] run=%s finished: %s", scope.RunID, summarizeStages(result.Stages))
	return result, nil
}

func (o *Orchestrator) runCorrelation(table *analysis.Table, result *analysis.WorkflowResult) analysis.StageReport {
	numeric := table.NumericColumns()
	if len(numeric) == 0 {
		return skipped(analysis.StageCorrelation, "no numeric columns")
	}
	corr, err := o.engine.Correlate(numeric, correlation.Options{
		Method:    analysis.CorrMethod(o.cfg.Pipeline.CorrMethod),
		DropNA:    true,
		Threshold: o.cfg.Pipeline.CorrThreshold,
	})
	if err != nil {
		return failed(analysis.StageCorrelation, err)
	}
	result.CorrelationResults = corr
	return completed(analysis.StageCorrelation)
}

func (o *Orchestrator) runVisualize(ctx context.Context, filePath string, sel *analysis.SelectorResult, outputDir string, result *analysis.WorkflowResult) analysis.StageReport {
	if o.visualizer == nil {
		return skipped(analysis.StageVisualize, "no visualizer configured")
	}
	if len(sel.RecommendedPairs) == 0 {
		return skipped(analysis.StageVisualize, "no pairs to plot")
	}
	paths, err := o.visualizer.Visualize(ctx, filePath, sel.Visualization(), outputDir)
	if err != nil {
		return failed(analysis.StageVisualize, err)
	}
	result.ChartPaths = paths
	return completed(analysis.StageVisualize)
}

func (o *Orchestrator) runPreprocess(ctx context.Context, filePath string, sel *analysis.SelectorResult, outputDir string, result *analysis.WorkflowResult, trainInput *string) analysis.StageReport {
	if o.preprocessor == nil {
		return skipped(analysis.StagePreprocess, "no preprocessor configured")
	}
	if len(sel.PreprocessingRecommendations) == 0 {
		return skipped(analysis.StagePreprocess, "nothing to preprocess")
	}
	pre, err := o.preprocessor.Apply(ctx, filePath, sel.PreprocessingRecommendations, outputDir)
	if err != nil {
		// Training falls back to the original file
		return failed(analysis.StagePreprocess, err)
	}
	*trainInput = pre.PreprocessedFilePath
	result.PreprocessedFilePath = session.NormalizeArtifactPath(o.cfg.Paths.OutputsDir, pre.PreprocessedFilePath)
	return completed(analysis.StagePreprocess)
}

func (o *Orchestrator) runTrain(ctx context.Context, filePath string, sel *analysis.SelectorResult, outputDir string, result *analysis.WorkflowResult) analysis.StageReport {
	if o.trainer == nil {
		return skipped(analysis.StageTrain, "no trainer configured")
	}
	if sel.TargetColumn == "" || sel.ProblemType == "" {
		return skipped(analysis.StageTrain, "no resolvable target")
	}
	training, err := o.trainer.Train(ctx, filePath, sel.Training(), outputDir)
	if err != nil {
		return failed(analysis.StageTrain, err)
	}
	result.MLResult = training
	return completed(analysis.StageTrain)
}

func (o *Orchestrator) writeReport(result *analysis.WorkflowResult, outputDir string) {
	path, err := o.reporter.Write(result, outputDir)
	if err != nil {
		log.Printf("[Workflow] report generation failed: %v", err)
		return
	}
	result.ReportPath = session.NormalizeArtifactPath(o.cfg.Paths.OutputsDir, path)
}

// recordRun persists the run summary. Best-effort: storage failures are
// logged, never surfaced.
func (o *Orchestrator) recordRun(ctx context.Context, result *analysis.WorkflowResult) {
	if o.runs == nil {
		return
	}
	record := ports.RunRecord{
		RunID:       result.RunID,
		SessionID:   result.SessionID,
		DatasetID:   result.DatasetID,
		FilePath:    result.FilePath,
		OutputsRoot: result.OutputsRoot,
		Stages:      result.Stages,
		StartedAt:   result.StartedAt,
		FinishedAt:  result.FinishedAt,
	}
	if err := o.runs.SaveRun(ctx, record); err != nil {
		log.Printf("[Workflow] failed to record run %s: %v", result.RunID, err)
	}
}

func (o *Orchestrator) updateSession(ctx context.Context, scope session.RunScope, filePath string, sel *analysis.SelectorResult) {
	if o.sessions == nil {
		return
	}
	err := o.sessions.Put(ctx, ports.SessionContext{
		SessionID:      scope.SessionID,
		DatasetID:      scope.DatasetID,
		FilePath:       filePath,
		SelectorResult: sel,
		LastRunID:      scope.RunID,
	})
	if err != nil {
		log.Printf("[Workflow] failed to update session %s: %v", scope.SessionID, err)
	}
}

func completed(stage analysis.StageName) analysis.StageReport {
	return analysis.StageReport{Stage: stage, Status: analysis.StageCompleted}
}

func skipped(stage analysis.StageName, reason string) analysis.StageReport {
	return analysis.StageReport{Stage: stage, Status: analysis.StageSkipped, Error: reason}
}

func failed(stage analysis.StageName, err error) analysis.StageReport {
	return analysis.StageReport{Stage: stage, Status: analysis.StageFailed, Error: err.Error()}
}

func summarizeStages(stages []analysis.StageReport) string {
	s := ""
	for i, st := range stages {
		if i > 0 {
			s += " "
		}
		s += fmt.Sprintf("%s=%s", st.Stage, st.Status)
	}
	return s
}
