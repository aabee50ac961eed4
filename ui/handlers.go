package ui

import (
	"encoding/json"
	"fmt"
	"io"
	"io/fs"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"csvpilot/domain/analysis"
	"csvpilot/domain/core"
	"csvpilot/internal/correlation"
	apperrors "csvpilot/internal/errors"
	"csvpilot/internal/preprocess"
	"csvpilot/internal/session"
	"csvpilot/internal/workflow"
	"csvpilot/ports"
)

// toolRequest is the shared request shape of the single-tool endpoints. The
// caller names either a file or a session; a session implies the file of its
// most recent analysis.
type toolRequest struct {
	FilePath  string `json:"filePath,omitempty"`
	SessionID string `json:"sessionId,omitempty"`
	User      string `json:"user,omitempty"`

	// Summarize
	Column string `json:"column,omitempty"`

	// Correlate
	Method    string   `json:"method,omitempty"`
	Threshold *float64 `json:"threshold,omitempty"`
	DropNA    *bool    `json:"dropna,omitempty"`

	// Select / workflow hints
	TargetColumn   string `json:"targetColumn,omitempty"`
	ProblemType    string `json:"problemType,omitempty"`
	TargetStrategy string `json:"targetStrategy,omitempty"`

	// Preprocess extras
	RemoveOutliers    []string `json:"removeOutliers,omitempty"`
	VarianceThreshold *float64 `json:"varianceThreshold,omitempty"`
	GenerateFeature   []string `json:"generateFeature,omitempty"`
	FeatureMethod     string   `json:"featureMethod,omitempty"`
}

func (req *toolRequest) extras() preprocess.Extras {
	return preprocess.Extras{
		OutlierColumns:    req.RemoveOutliers,
		VarianceThreshold: req.VarianceThreshold,
		FeatureColumns:    req.GenerateFeature,
		FeatureMethod:     preprocess.FeatureMethod(req.FeatureMethod),
	}
}

func (req *toolRequest) hint() *analysis.Hint {
	if req.TargetColumn == "" && req.ProblemType == "" && req.TargetStrategy == "" {
		return nil
	}
	return &analysis.Hint{
		TargetColumn:   req.TargetColumn,
		ProblemType:    analysis.ProblemType(req.ProblemType),
		TargetStrategy: analysis.TargetStrategy(req.TargetStrategy),
	}
}

func decodeRequest(r *http.Request, req *toolRequest) error {
	if err := json.NewDecoder(r.Body).Decode(req); err != nil {
		return apperrors.InvalidInput("request body must be valid JSON")
	}
	return nil
}

// resolveFile returns the file the request refers to, plus the session
// context when one exists
func (a *App) resolveFile(r *http.Request, req *toolRequest) (string, *ports.SessionContext, error) {
	var sc *ports.SessionContext
	if req.SessionID != "" {
		if found, ok := a.deps.Sessions.Get(r.Context(), core.SessionID(req.SessionID)); ok {
			sc = found
		}
	}
	if req.FilePath != "" {
		return req.FilePath, sc, nil
	}
	if sc != nil && sc.FilePath != "" {
		return sc.FilePath, sc, nil
	}
	return "", nil, fmt.Errorf("%w: file path", core.ErrMissingInput)
}

// handleUpload stores a multipart file under the uploads directory and
// returns the derived dataset and session identity
func (a *App) handleUpload(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(64 << 20); err != nil {
		writeError(w, apperrors.InvalidInput("multipart form required"))
		return
	}
	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, apperrors.InvalidInput("form field 'file' is required"))
		return
	}
	defer file.Close()

	if err := os.MkdirAll(a.deps.Config.Paths.UploadsDir, 0o755); err != nil {
		writeError(w, err)
		return
	}

	// Base strips any path components a hostile client sends; the ID prefix
	// keeps same-named uploads from clobbering each other
	name := fmt.Sprintf("%s_%s", core.NewID(), filepath.Base(header.Filename))
	dest := filepath.Join(a.deps.Config.Paths.UploadsDir, name)

	out, err := os.Create(dest)
	if err != nil {
		writeError(w, err)
		return
	}
	defer out.Close()
	if _, err := io.Copy(out, file); err != nil {
		writeError(w, err)
		return
	}

	scope := session.DeriveScope(dest, r.FormValue("user"), "")
	writeJSON(w, http.StatusCreated, map[string]any{
		"filePath":  dest,
		"datasetId": scope.DatasetID,
		"sessionId": scope.SessionID,
	})
}

// handleWorkflow runs the full pipeline
func (a *App) handleWorkflow(w http.ResponseWriter, r *http.Request) {
	var req toolRequest
	if err := decodeRequest(r, &req); err != nil {
		writeError(w, err)
		return
	}

	result, err := a.deps.Orchestrator.Run(r.Context(), workflow.Request{
		FilePath:  req.FilePath,
		User:      req.User,
		SessionID: core.SessionID(req.SessionID),
		Hint:      req.hint(),
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (a *App) handleProfile(w http.ResponseWriter, r *http.Request) {
	var req toolRequest
	if err := decodeRequest(r, &req); err != nil {
		writeError(w, err)
		return
	}
	filePath, _, err := a.resolveFile(r, &req)
	if err != nil {
		writeError(w, err)
		return
	}

	columnStats, err := a.deps.Profiler.Profile(r.Context(), filePath)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"columnStats": columnStats})
}

func (a *App) handleColumns(w http.ResponseWriter, r *http.Request) {
	var req toolRequest
	if err := decodeRequest(r, &req); err != nil {
		writeError(w, err)
		return
	}
	filePath, _, err := a.resolveFile(r, &req)
	if err != nil {
		writeError(w, err)
		return
	}

	columns, err := a.deps.Profiler.Columns(r.Context(), filePath)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"columns": columns})
}

func (a *App) handleSummarize(w http.ResponseWriter, r *http.Request) {
	var req toolRequest
	if err := decodeRequest(r, &req); err != nil {
		writeError(w, err)
		return
	}
	if req.Column == "" {
		writeError(w, apperrors.InvalidInput("column is required"))
		return
	}
	filePath, _, err := a.resolveFile(r, &req)
	if err != nil {
		writeError(w, err)
		return
	}

	summary, err := a.deps.Profiler.SummarizeColumn(r.Context(), filePath, req.Column)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"summary": summary})
}

func (a *App) handleCorrelate(w http.ResponseWriter, r *http.Request) {
	var req toolRequest
	if err := decodeRequest(r, &req); err != nil {
		writeError(w, err)
		return
	}
	filePath, _, err := a.resolveFile(r, &req)
	if err != nil {
		writeError(w, err)
		return
	}

	table, err := a.deps.Reader.ReadTable(r.Context(), filePath)
	if err != nil {
		writeError(w, err)
		return
	}

	opts := correlation.Options{
		Method:    analysis.CorrMethod(req.Method),
		DropNA:    true,
		Threshold: a.deps.Config.Pipeline.CorrThreshold,
	}
	if opts.Method == "" {
		opts.Method = analysis.CorrMethod(a.deps.Config.Pipeline.CorrMethod)
	}
	if req.Threshold != nil {
		opts.Threshold = *req.Threshold
	}
	if req.DropNA != nil {
		opts.DropNA = *req.DropNA
	}

	result, err := a.deps.CorrelationEngine.Correlate(table.NumericColumns(), opts)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// handleSelect profiles the file, derives the selector result and caches it
// on the session so later visualize/train calls reuse it
func (a *App) handleSelect(w http.ResponseWriter, r *http.Request) {
	var req toolRequest
	if err := decodeRequest(r, &req); err != nil {
		writeError(w, err)
		return
	}
	filePath, _, err := a.resolveFile(r, &req)
	if err != nil {
		writeError(w, err)
		return
	}

	result, scope, err := a.deriveSelection(r, &req, filePath)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"sessionId":      scope.SessionID,
		"selectorResult": result,
	})
}

func (a *App) handleVisualize(w http.ResponseWriter, r *http.Request) {
	var req toolRequest
	if err := decodeRequest(r, &req); err != nil {
		writeError(w, err)
		return
	}
	filePath, sel, scope, err := a.selectionFor(r, &req)
	if err != nil {
		writeError(w, err)
		return
	}

	outputDir, err := scope.EnsureOutputDir(a.deps.Config.Paths.OutputsDir)
	if err != nil {
		writeError(w, err)
		return
	}
	charts, err := a.deps.Visualizer.Visualize(r.Context(), filePath, sel.Visualization(), outputDir)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"sessionId":  scope.SessionID,
		"runId":      scope.RunID,
		"chartPaths": charts,
	})
}

func (a *App) handlePreprocess(w http.ResponseWriter, r *http.Request) {
	var req toolRequest
	if err := decodeRequest(r, &req); err != nil {
		writeError(w, err)
		return
	}
	filePath, sel, scope, err := a.selectionFor(r, &req)
	if err != nil {
		writeError(w, err)
		return
	}

	outputDir, err := scope.EnsureOutputDir(a.deps.Config.Paths.OutputsDir)
	if err != nil {
		writeError(w, err)
		return
	}
	result, err := a.deps.Applier.ApplyWithExtras(r.Context(), filePath, sel.PreprocessingRecommendations, req.extras(), outputDir)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"sessionId":            scope.SessionID,
		"runId":                scope.RunID,
		"preprocessedFilePath": session.NormalizeArtifactPath(a.deps.Config.Paths.OutputsDir, result.PreprocessedFilePath),
		"messages":             result.Messages,
	})
}

func (a *App) handleTrain(w http.ResponseWriter, r *http.Request) {
	var req toolRequest
	if err := decodeRequest(r, &req); err != nil {
		writeError(w, err)
		return
	}
	filePath, sel, scope, err := a.selectionFor(r, &req)
	if err != nil {
		writeError(w, err)
		return
	}
	if sel.TargetColumn == "" || sel.ProblemType == "" {
		writeError(w, apperrors.InvalidInput("no resolvable target column; run select with a target hint first"))
		return
	}

	outputDir, err := scope.EnsureOutputDir(a.deps.Config.Paths.OutputsDir)
	if err != nil {
		writeError(w, err)
		return
	}
	result, err := a.deps.Trainer.Train(r.Context(), filePath, sel.Training(), outputDir)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"sessionId":    scope.SessionID,
		"runId":        scope.RunID,
		"mlResultPath": result,
	})
}

func (a *App) handleListRuns(w http.ResponseWriter, r *http.Request) {
	filters := ports.RunFilters{
		SessionID: core.SessionID(r.URL.Query().Get("sessionId")),
		Limit:     queryInt(r, "limit", 50),
		Offset:    queryInt(r, "offset", 0),
	}
	runs, err := a.deps.Runs.ListRuns(r.Context(), filters)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"runs": runs})
}

func (a *App) handleGetRun(w http.ResponseWriter, r *http.Request) {
	runID, err := core.ParseRunID(chi.URLParam(r, "runID"))
	if err != nil {
		writeError(w, apperrors.InvalidInput(err.Error()))
		return
	}
	record, err := a.deps.Runs.GetRun(r.Context(), runID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, record)
}

// handleListArtifacts lists the files a finished run produced, as web-servable
// paths under /outputs
func (a *App) handleListArtifacts(w http.ResponseWriter, r *http.Request) {
	runID, err := core.ParseRunID(chi.URLParam(r, "runID"))
	if err != nil {
		writeError(w, apperrors.InvalidInput(err.Error()))
		return
	}
	record, err := a.deps.Runs.GetRun(r.Context(), runID)
	if err != nil {
		writeError(w, err)
		return
	}

	// OutputsRoot is stored in normalized form; rebase it onto the
	// configured outputs directory to walk the filesystem
	rel := strings.TrimPrefix(record.OutputsRoot, "outputs/")
	runDir := filepath.Join(a.deps.Config.Paths.OutputsDir, filepath.FromSlash(rel))

	artifacts := []string{}
	err = filepath.WalkDir(runDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil || d.IsDir() {
			return err
		}
		artifacts = append(artifacts, session.NormalizeArtifactPath(a.deps.Config.Paths.OutputsDir, path))
		return nil
	})
	if err != nil && !os.IsNotExist(err) {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"runId":     record.RunID,
		"artifacts": artifacts,
	})
}

func (a *App) handleGetSession(w http.ResponseWriter, r *http.Request) {
	sessionID, err := core.ParseSessionID(chi.URLParam(r, "sessionID"))
	if err != nil {
		writeError(w, apperrors.InvalidInput(err.Error()))
		return
	}
	sc, ok := a.deps.Sessions.Get(r.Context(), sessionID)
	if !ok {
		writeError(w, apperrors.NotFound(fmt.Sprintf("session %s", sessionID)))
		return
	}
	writeJSON(w, http.StatusOK, sc)
}

func (a *App) handleDeleteSession(w http.ResponseWriter, r *http.Request) {
	sessionID, err := core.ParseSessionID(chi.URLParam(r, "sessionID"))
	if err != nil {
		writeError(w, apperrors.InvalidInput(err.Error()))
		return
	}
	if err := a.deps.Sessions.Delete(r.Context(), sessionID); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// deriveSelection computes a fresh selector result for the file and caches it
// on the session
func (a *App) deriveSelection(r *http.Request, req *toolRequest, filePath string) (*analysis.SelectorResult, session.RunScope, error) {
	scope := session.DeriveScope(filePath, req.User, core.SessionID(req.SessionID))

	table, err := a.deps.Reader.ReadTable(r.Context(), filePath)
	if err != nil {
		return nil, scope, err
	}
	columnStats, err := a.deps.Profiler.ProfileTable(table)
	if err != nil {
		return nil, scope, err
	}

	var corr *analysis.CorrelationResult
	if numeric := table.NumericColumns(); len(numeric) > 0 {
		corr, _ = a.deps.CorrelationEngine.Correlate(numeric, correlation.Options{
			Method:    analysis.CorrMethod(a.deps.Config.Pipeline.CorrMethod),
			DropNA:    true,
			Threshold: a.deps.Config.Pipeline.CorrThreshold,
		})
	}

	result := a.deps.Selector.Select(columnStats, corr, req.hint())
	if err := a.deps.Sessions.Put(r.Context(), ports.SessionContext{
		SessionID:      scope.SessionID,
		DatasetID:      scope.DatasetID,
		FilePath:       filePath,
		SelectorResult: &result,
	}); err != nil {
		return nil, scope, err
	}
	return &result, scope, nil
}

// selectionFor returns the selector result a follow-up tool call should use:
// the session's cached one when present, otherwise a fresh derivation
func (a *App) selectionFor(r *http.Request, req *toolRequest) (string, *analysis.SelectorResult, session.RunScope, error) {
	filePath, sc, err := a.resolveFile(r, req)
	if err != nil {
		return "", nil, session.RunScope{}, err
	}

	if sc != nil && sc.SelectorResult != nil && (req.FilePath == "" || req.FilePath == sc.FilePath) {
		scope := session.DeriveScope(filePath, req.User, sc.SessionID)
		return filePath, sc.SelectorResult, scope, nil
	}

	sel, scope, err := a.deriveSelection(r, req, filePath)
	return filePath, sel, scope, err
}

func queryInt(r *http.Request, key string, fallback int) int {
	if v := r.URL.Query().Get(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}
