package preprocess

import (
	"context"
	"encoding/csv"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	"csvpilot/domain/analysis"
	"csvpilot/ports"
)

// Applier executes preprocessing directives against a tabular file and
// persists the cleaned copy next to the run's other artifacts.
type Applier struct {
	reader ports.TabularReader
}

// NewApplier creates an applier over the given reader
func NewApplier(reader ports.TabularReader) *Applier {
	return &Applier{reader: reader}
}

// Extras are the optional cleaning operations beyond the selector's
// per-column directives
type Extras struct {
	// OutlierColumns lists columns to trim with the 1.5*IQR rule
	OutlierColumns []string
	// VarianceThreshold, when set, drops numeric columns below it
	VarianceThreshold *float64
	// FeatureColumns + FeatureMethod derive one new combined column
	FeatureColumns []string
	FeatureMethod  FeatureMethod
}

// Apply loads the file, runs every directive in order and writes the result
// as preprocessed_<name>.csv under outputDir. Individual directives that
// cannot be applied are reported in Messages rather than failing the whole
// pass; only load and write errors abort.
func (a *Applier) Apply(ctx context.Context, filePath string, steps []analysis.PreprocessStep, outputDir string) (*analysis.PreprocessResult, error) {
	return a.ApplyWithExtras(ctx, filePath, steps, Extras{}, outputDir)
}

// ApplyWithExtras is Apply plus the optional operations: outlier removal runs
// before the per-column directives so fills and scales see clean data;
// variance filtering and feature generation run after them.
func (a *Applier) ApplyWithExtras(ctx context.Context, filePath string, steps []analysis.PreprocessStep, extras Extras, outputDir string) (*analysis.PreprocessResult, error) {
	table, err := a.reader.ReadTable(ctx, filePath)
	if err != nil {
		return nil, err
	}
	ds := NewDataset(table)

	messages := make([]string, 0, len(steps))
	if len(extras.OutlierColumns) > 0 {
		removed, err := ds.RemoveOutliersIQR(extras.OutlierColumns)
		if err != nil {
			messages = append(messages, fmt.Sprintf("outlier removal stopped: %v", err))
		}
		if removed > 0 {
			messages = append(messages, fmt.Sprintf("removed %d outlier rows", removed))
		}
	}

	for _, step := range steps {
		messages = append(messages, a.applyStep(ds, step)...)
	}

	if extras.VarianceThreshold != nil {
		if dropped := ds.DropLowVariance(*extras.VarianceThreshold); len(dropped) > 0 {
			messages = append(messages, fmt.Sprintf("dropped low-variance columns: %s", strings.Join(dropped, ", ")))
		}
	}
	if len(extras.FeatureColumns) > 0 {
		method := extras.FeatureMethod
		if method == "" {
			method = FeatureSum
		}
		name, err := ds.GenerateFeature(extras.FeatureColumns, method)
		if err != nil {
			messages = append(messages, fmt.Sprintf("feature generation skipped: %v", err))
		} else {
			messages = append(messages, fmt.Sprintf("generated feature %q", name))
		}
	}

	base := strings.TrimSuffix(filepath.Base(filePath), filepath.Ext(filePath))
	outPath := filepath.Join(outputDir, fmt.Sprintf("preprocessed_%s.csv", base))
	if err := writeCSV(ds.Table(), outPath); err != nil {
		return nil, err
	}

	log.Printf("[Preprocess] applied %d steps, wrote %s", len(steps), outPath)
	return &analysis.PreprocessResult{
		PreprocessedFilePath: outPath,
		Messages:             messages,
	}, nil
}

func (a *Applier) applyStep(ds *Dataset, step analysis.PreprocessStep) []string {
	messages := make([]string, 0, 3)

	if step.FillNA != "" {
		n, err := ds.FillMissing(step.Column, step.FillNA)
		if err != nil {
			messages = append(messages, fmt.Sprintf("fillna %s on %q skipped: %v", step.FillNA, step.Column, err))
		} else if n > 0 {
			messages = append(messages, fmt.Sprintf("fillna %s on %q touched %d cells", step.FillNA, step.Column, n))
		}
	}
	if step.Normalize != "" {
		if err := ds.Scale(step.Column, step.Normalize); err != nil {
			messages = append(messages, fmt.Sprintf("normalize %s on %q skipped: %v", step.Normalize, step.Column, err))
		} else {
			messages = append(messages, fmt.Sprintf("normalized %q with %s", step.Column, step.Normalize))
		}
	}
	if step.Encoding != "" {
		if err := ds.Encode(step.Column, step.Encoding); err != nil {
			messages = append(messages, fmt.Sprintf("encoding %s on %q skipped: %v", step.Encoding, step.Column, err))
		} else {
			messages = append(messages, fmt.Sprintf("encoded %q with %s", step.Column, step.Encoding))
		}
	}
	return messages
}

func writeCSV(table *analysis.Table, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(table.Header); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}
	for _, row := range table.Rows {
		if err := w.Write(row); err != nil {
			return fmt.Errorf("failed to write row: %w", err)
		}
	}
	w.Flush()
	return w.Error()
}
