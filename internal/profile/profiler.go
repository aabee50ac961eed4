package profile

import (
	"context"
	"fmt"
	"log"
	"math"
	"strconv"
	"strings"
	"time"

	"csvpilot/domain/analysis"
	"csvpilot/domain/core"
	"csvpilot/ports"

	"github.com/montanaflynn/stats"
)

// categoricalCardinalityCap separates categorical from free-text columns
const categoricalCardinalityCap = 30

var datetimeLayouts = []string{
	time.RFC3339,
	"2006-01-02",
	"2006-01-02 15:04:05",
	"01/02/2006",
}

// Profiler produces per-column descriptive statistics for a tabular file
type Profiler struct {
	reader ports.TabularReader
}

// NewProfiler creates a profiler backed by the given reader
func NewProfiler(reader ports.TabularReader) *Profiler {
	return &Profiler{reader: reader}
}

// Profile reads the file and profiles every column in header order.
// Read failures surface the domain input-error taxonomy unchanged.
func (p *Profiler) Profile(ctx context.Context, filePath string) ([]analysis.ColumnStat, error) {
	table, err := p.reader.ReadTable(ctx, filePath)
	if err != nil {
		return nil, err
	}
	return p.ProfileTable(table)
}

// ProfileTable profiles an already-loaded table. Column order in the result
// matches the input header order.
func (p *Profiler) ProfileTable(table *analysis.Table) ([]analysis.ColumnStat, error) {
	columnStats := make([]analysis.ColumnStat, 0, len(table.Header))
	for _, name := range table.Header {
		raw, err := table.Column(name)
		if err != nil {
			return nil, err
		}
		stat, err := profileColumn(name, raw)
		if err != nil {
			return nil, err
		}
		columnStats = append(columnStats, stat)
	}
	log.Printf("[Profiler] profiled %d columns over %d rows", len(columnStats), table.RowCount())
	return columnStats, nil
}

// Columns returns the header of the file, in file order
func (p *Profiler) Columns(ctx context.Context, filePath string) ([]string, error) {
	table, err := p.reader.ReadTable(ctx, filePath)
	if err != nil {
		return nil, err
	}
	return table.Header, nil
}

// SummarizeColumn renders a short text summary of one numeric column.
// Returns a data-shape error when the column is absent or has no numbers.
func (p *Profiler) SummarizeColumn(ctx context.Context, filePath, column string) (string, error) {
	table, err := p.reader.ReadTable(ctx, filePath)
	if err != nil {
		return "", err
	}
	raw, err := table.Column(column)
	if err != nil {
		return "", err
	}

	values := make([]float64, 0, len(raw))
	for _, v := range raw {
		if v == "" {
			continue
		}
		if f, perr := strconv.ParseFloat(v, 64); perr == nil {
			values = append(values, f)
		}
	}
	if len(values) == 0 {
		return "", fmt.Errorf("%w: %q", core.ErrNotNumeric, column)
	}

	mean, _ := stats.Mean(values)
	min, _ := stats.Min(values)
	max, _ := stats.Max(values)
	return fmt.Sprintf("[%s] mean=%.2f min=%g max=%g (n=%d)", column, mean, min, max, len(values)), nil
}

func profileColumn(name string, raw []string) (analysis.ColumnStat, error) {
	missing := 0
	nonMissing := make([]string, 0, len(raw))
	for _, v := range raw {
		if v == "" {
			missing++
			continue
		}
		nonMissing = append(nonMissing, v)
	}

	unique := make(map[string]struct{}, len(nonMissing))
	for _, v := range nonMissing {
		unique[v] = struct{}{}
	}

	dtype, numericValues := classify(nonMissing, len(unique))

	var summary *analysis.NumericSummary
	if dtype == analysis.DTypeNumeric && len(numericValues) > 0 {
		mean, err := stats.Mean(numericValues)
		if err != nil {
			return analysis.ColumnStat{}, err
		}
		// Population standard deviation, matching how the profile is
		// consumed downstream (no Bessel correction)
		std, err := stats.StandardDeviationPopulation(numericValues)
		if err != nil {
			return analysis.ColumnStat{}, err
		}
		min, err := stats.Min(numericValues)
		if err != nil {
			return analysis.ColumnStat{}, err
		}
		max, err := stats.Max(numericValues)
		if err != nil {
			return analysis.ColumnStat{}, err
		}
		summary = &analysis.NumericSummary{Mean: mean, Std: std, Min: min, Max: max}
	}

	return analysis.NewColumnStat(name, dtype, missing, len(unique), summary)
}

// classify decides the column dtype. Numeric is strict: a single non-numeric
// value demotes the whole column.
func classify(nonMissing []string, cardinality int) (analysis.DType, []float64) {
	if len(nonMissing) == 0 {
		return analysis.DTypeText, nil
	}

	numeric := make([]float64, 0, len(nonMissing))
	allNumeric := true
	for _, v := range nonMissing {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
			allNumeric = false
			break
		}
		numeric = append(numeric, f)
	}
	if allNumeric {
		return analysis.DTypeNumeric, numeric
	}

	if allDatetime(nonMissing) {
		return analysis.DTypeDatetime, nil
	}
	if cardinality <= categoricalCardinalityCap {
		return analysis.DTypeCategorical, nil
	}
	return analysis.DTypeText, nil
}

func allDatetime(values []string) bool {
	for _, v := range values {
		if !parsesAsDatetime(strings.TrimSpace(v)) {
			return false
		}
	}
	return true
}

func parsesAsDatetime(v string) bool {
	for _, layout := range datetimeLayouts {
		if _, err := time.Parse(layout, v); err == nil {
			return true
		}
	}
	return false
}
