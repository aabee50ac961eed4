package ports

import (
	"context"

	"csvpilot/domain/analysis"
)

// Visualizer renders chart images for the recommended column pairs.
// Implementations run an external numeric runtime; ctx cancellation must
// terminate the subprocess, not orphan it. Returned paths are normalized to
// the web-servable outputs/ form.
type Visualizer interface {
	Visualize(ctx context.Context, filePath string, projection analysis.VisualizationProjection, outputDir string) ([]string, error)
}

// ModelTrainer trains and evaluates the recommended model against a dataset.
// Same subprocess and cancellation contract as Visualizer.
type ModelTrainer interface {
	Train(ctx context.Context, filePath string, projection analysis.TrainingProjection, outputDir string) (*analysis.TrainingResult, error)
}

// Preprocessor applies the selector's per-column directives and writes the
// cleaned dataset under outputDir
type Preprocessor interface {
	Apply(ctx context.Context, filePath string, steps []analysis.PreprocessStep, outputDir string) (*analysis.PreprocessResult, error)
}
