package python

import (
	"context"
	"encoding/json"
	"fmt"

	"csvpilot/domain/analysis"
	"csvpilot/internal/session"
)

const visualizeScript = "visualize_from_json.py"

// Visualizer renders chart images through the bundled matplotlib script
type Visualizer struct {
	runner      *Runner
	outputsRoot string
}

// NewVisualizer creates a visualizer over the shared runner
func NewVisualizer(runner *Runner, outputsRoot string) *Visualizer {
	return &Visualizer{runner: runner, outputsRoot: outputsRoot}
}

type visualizeOutput struct {
	Charts []string `json:"charts"`
	Error  string   `json:"error,omitempty"`
}

// Visualize plots every recommended pair and returns the chart paths in the
// web-servable outputs/ form
func (v *Visualizer) Visualize(ctx context.Context, filePath string, projection analysis.VisualizationProjection, outputDir string) ([]string, error) {
	specPath, err := writeProjection(outputDir, "visualization_spec.json", projection)
	if err != nil {
		return nil, err
	}

	stdout, err := v.runner.Run(ctx, visualizeScript,
		"--data", filePath,
		"--spec", specPath,
		"--out", outputDir,
	)
	if err != nil {
		return nil, err
	}

	var out visualizeOutput
	if err := json.Unmarshal(stdout, &out); err != nil {
		return nil, fmt.Errorf("visualizer returned malformed output: %w", err)
	}
	if out.Error != "" {
		return nil, fmt.Errorf("visualizer reported: %s", out.Error)
	}

	charts := make([]string, 0, len(out.Charts))
	for _, p := range out.Charts {
		charts = append(charts, session.NormalizeArtifactPath(v.outputsRoot, p))
	}
	return charts, nil
}
