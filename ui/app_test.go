package ui

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"csvpilot/domain/core"
	"csvpilot/internal/config"
	"csvpilot/internal/container"
	"csvpilot/ports"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestApp(t *testing.T) *App {
	t.Helper()
	cfg := &config.Config{
		Server: config.ServerConfig{Port: "0"},
		Paths: config.PathConfig{
			UploadsDir: t.TempDir(),
			OutputsDir: t.TempDir(),
		},
		Python: config.PythonConfig{
			Binary:        "python3",
			ScriptsDir:    "scripts",
			MaxConcurrent: 1,
			Timeout:       time.Minute,
		},
		Pipeline: config.PipelineConfig{
			CorrMethod:      "pearson",
			CorrThreshold:   0.5,
			WorkflowTimeout: time.Minute,
		},
		Session: config.SessionConfig{TTL: time.Hour},
	}
	deps, err := container.New(cfg)
	require.NoError(t, err)
	t.Cleanup(func() { deps.Close() })
	return NewApp(deps)
}

func writeCSV(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "data.csv")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func postJSON(t *testing.T, app *App, path string, body map[string]any) *httptest.ResponseRecorder {
	t.Helper()
	payload, err := json.Marshal(body)
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	app.Router().ServeHTTP(rec, req)
	return rec
}

func TestHealthEndpoint(t *testing.T) {
	app := newTestApp(t)
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	app.Router().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"ok"`)
}

func TestProfileEndpoint(t *testing.T) {
	app := newTestApp(t)
	path := writeCSV(t, "price,grade\n10,a\n20,b\n")

	rec := postJSON(t, app, "/api/tools/profile", map[string]any{"filePath": path})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var resp struct {
		ColumnStats []struct {
			Column string `json:"column"`
			Dtype  string `json:"dtype"`
		} `json:"columnStats"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Len(t, resp.ColumnStats, 2)
	assert.Equal(t, "numeric", resp.ColumnStats[0].Dtype)
	assert.Equal(t, "categorical", resp.ColumnStats[1].Dtype)
}

func TestProfileEndpointRequiresFile(t *testing.T) {
	app := newTestApp(t)
	rec := postJSON(t, app, "/api/tools/profile", map[string]any{})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "INVALID_INPUT")
}

func TestProfileEndpointMissingFileIs400(t *testing.T) {
	app := newTestApp(t)
	rec := postJSON(t, app, "/api/tools/profile", map[string]any{"filePath": "no/such.csv"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestSummarizeUnknownColumnIs422(t *testing.T) {
	app := newTestApp(t)
	path := writeCSV(t, "a\n1\n")

	rec := postJSON(t, app, "/api/tools/summarize", map[string]any{"filePath": path, "column": "ghost"})
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
}

func TestCorrelateEndpoint(t *testing.T) {
	app := newTestApp(t)
	path := writeCSV(t, "x,y\n1,2\n2,4\n3,6\n")

	rec := postJSON(t, app, "/api/tools/correlate", map[string]any{"filePath": path, "threshold": 0.9})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var resp struct {
		Matrix    map[string]map[string]float64 `json:"correlationMatrix"`
		HighPairs []struct {
			Col1 string  `json:"col1"`
			Col2 string  `json:"col2"`
			Corr float64 `json:"corr"`
		} `json:"highCorrPairs"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, 1.0, resp.Matrix["x"]["y"])
	require.Len(t, resp.HighPairs, 1)
}

func TestSelectEndpointCachesSession(t *testing.T) {
	app := newTestApp(t)
	path := writeCSV(t, "height,weight,grade\n150,50,a\n160,60,b\n")

	rec := postJSON(t, app, "/api/tools/select", map[string]any{"filePath": path})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var resp struct {
		SessionID      string `json:"sessionId"`
		SelectorResult struct {
			SelectedColumns []string `json:"selectedColumns"`
			TargetColumn    string   `json:"targetColumn"`
		} `json:"selectorResult"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.NotEmpty(t, resp.SessionID)
	assert.Equal(t, []string{"height", "weight", "grade"}, resp.SelectorResult.SelectedColumns)
	assert.Equal(t, "grade", resp.SelectorResult.TargetColumn)

	// The cached session is retrievable and carries the file path
	req := httptest.NewRequest(http.MethodGet, "/api/sessions/"+resp.SessionID, nil)
	getRec := httptest.NewRecorder()
	app.Router().ServeHTTP(getRec, req)
	require.Equal(t, http.StatusOK, getRec.Code)
	assert.Contains(t, getRec.Body.String(), "selectorResult")
}

func TestGetUnknownSessionIs404(t *testing.T) {
	app := newTestApp(t)
	req := httptest.NewRequest(http.MethodGet, "/api/sessions/sess_ghost", nil)
	rec := httptest.NewRecorder()
	app.Router().ServeHTTP(rec, req)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestListRunsEmpty(t *testing.T) {
	app := newTestApp(t)
	req := httptest.NewRequest(http.MethodGet, "/api/runs", nil)
	rec := httptest.NewRecorder()
	app.Router().ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"runs":[]}`, rec.Body.String())
}

func TestPreprocessEndpointWithExtras(t *testing.T) {
	app := newTestApp(t)
	path := writeCSV(t, "v,w\n10,1\n11,2\n12,3\n13,4\n14,5\n1000,6\n")

	rec := postJSON(t, app, "/api/tools/preprocess", map[string]any{
		"filePath":        path,
		"removeOutliers":  []string{"v"},
		"generateFeature": []string{"v", "w"},
		"featureMethod":   "sum",
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var resp struct {
		PreprocessedFilePath string   `json:"preprocessedFilePath"`
		Messages             []string `json:"messages"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Contains(t, resp.PreprocessedFilePath, "outputs/")
	assert.Contains(t, resp.Messages, "removed 1 outlier rows")
	assert.Contains(t, resp.Messages, `generated feature "sum_v_w"`)
}

func TestListArtifactsForRun(t *testing.T) {
	app := newTestApp(t)
	runDir := filepath.Join(app.deps.Config.Paths.OutputsDir, "u", "ds_x", "sess_y", "runs", "run_z")
	require.NoError(t, os.MkdirAll(runDir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(runDir, "chart.png"), []byte("png"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(runDir, "report.md"), []byte("# run"), 0o644))

	record := ports.RunRecord{
		RunID:       core.RunID("run_z"),
		SessionID:   core.SessionID("sess_y"),
		DatasetID:   core.DatasetID("ds_x"),
		FilePath:    "data.csv",
		OutputsRoot: "outputs/u/ds_x/sess_y/runs/run_z",
		StartedAt:   core.Now(),
		FinishedAt:  core.Now(),
	}
	require.NoError(t, app.deps.Runs.SaveRun(context.Background(), record))

	req := httptest.NewRequest(http.MethodGet, "/api/runs/run_z/artifacts", nil)
	rec := httptest.NewRecorder()
	app.Router().ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var resp struct {
		RunID     string   `json:"runId"`
		Artifacts []string `json:"artifacts"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "run_z", resp.RunID)
	assert.ElementsMatch(t, []string{
		"outputs/u/ds_x/sess_y/runs/run_z/chart.png",
		"outputs/u/ds_x/sess_y/runs/run_z/report.md",
	}, resp.Artifacts)
}

func TestGetUnknownRunIs404(t *testing.T) {
	app := newTestApp(t)
	req := httptest.NewRequest(http.MethodGet, "/api/runs/run_ghost", nil)
	rec := httptest.NewRecorder()
	app.Router().ServeHTTP(rec, req)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
