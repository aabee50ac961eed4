package python

import (
	"context"
	"encoding/json"
	"fmt"

	"csvpilot/domain/analysis"
	"csvpilot/internal/session"
)

const trainScript = "train_model.py"

// Trainer trains and evaluates the recommended model through the bundled
// scikit-learn script
type Trainer struct {
	runner      *Runner
	outputsRoot string
}

// NewTrainer creates a trainer over the shared runner
func NewTrainer(runner *Runner, outputsRoot string) *Trainer {
	return &Trainer{runner: runner, outputsRoot: outputsRoot}
}

type trainOutput struct {
	ReportPath string `json:"reportPath"`
	ModelPath  string `json:"modelPath,omitempty"`
	Error      string `json:"error,omitempty"`
}

// Train fits the recommended model against the dataset and returns the paths
// of the evaluation report and the serialized model
func (t *Trainer) Train(ctx context.Context, filePath string, projection analysis.TrainingProjection, outputDir string) (*analysis.TrainingResult, error) {
	specPath, err := writeProjection(outputDir, "training_spec.json", projection)
	if err != nil {
		return nil, err
	}

	stdout, err := t.runner.Run(ctx, trainScript,
		"--data", filePath,
		"--spec", specPath,
		"--out", outputDir,
	)
	if err != nil {
		return nil, err
	}

	var out trainOutput
	if err := json.Unmarshal(stdout, &out); err != nil {
		return nil, fmt.Errorf("trainer returned malformed output: %w", err)
	}
	if out.Error != "" {
		return nil, fmt.Errorf("trainer reported: %s", out.Error)
	}
	if out.ReportPath == "" {
		return nil, fmt.Errorf("trainer returned no report path")
	}

	result := &analysis.TrainingResult{
		ReportPath: session.NormalizeArtifactPath(t.outputsRoot, out.ReportPath),
	}
	if out.ModelPath != "" {
		result.ModelPath = session.NormalizeArtifactPath(t.outputsRoot, out.ModelPath)
	}
	return result, nil
}
