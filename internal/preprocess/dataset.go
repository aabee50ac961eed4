package preprocess

import (
	"fmt"
	"math"
	"strconv"

	"csvpilot/domain/analysis"
	"csvpilot/domain/core"

	"github.com/montanaflynn/stats"
)

// Dataset is a mutable working copy of a table being cleaned. All operations
// edit in place; WriteCSV persists the result.
type Dataset struct {
	table *analysis.Table
}

// NewDataset wraps a loaded table. Short rows are padded to header width so
// every operation can index cells directly.
func NewDataset(table *analysis.Table) *Dataset {
	width := len(table.Header)
	for i, row := range table.Rows {
		for len(row) < width {
			row = append(row, "")
		}
		table.Rows[i] = row
	}
	return &Dataset{table: table}
}

// Table exposes the current state of the working copy
func (d *Dataset) Table() *analysis.Table { return d.table }

// FillMissing handles missing cells in one column. Drop removes the whole
// row; mean fills with the column mean (numeric cells only); mode fills with
// the most frequent value. Returns how many cells or rows were touched.
func (d *Dataset) FillMissing(column string, strategy analysis.FillStrategy) (int, error) {
	idx, ok := d.table.ColumnIndex(column)
	if !ok {
		return 0, core.NewColumnNotFoundError(column)
	}

	switch strategy {
	case analysis.FillDrop:
		kept := d.table.Rows[:0]
		dropped := 0
		for _, row := range d.table.Rows {
			if cell(row, idx) == "" {
				dropped++
				continue
			}
			kept = append(kept, row)
		}
		d.table.Rows = kept
		return dropped, nil

	case analysis.FillMean:
		values := d.numericColumn(idx)
		if len(values) == 0 {
			return 0, fmt.Errorf("%w: %q", core.ErrNotNumeric, column)
		}
		mean, err := stats.Mean(values)
		if err != nil {
			return 0, err
		}
		return d.fillEmpty(idx, strconv.FormatFloat(mean, 'g', -1, 64)), nil

	case analysis.FillMode:
		freq := make(map[string]int)
		var mode string
		for _, row := range d.table.Rows {
			v := cell(row, idx)
			if v == "" {
				continue
			}
			freq[v]++
			if mode == "" || freq[v] > freq[mode] {
				mode = v
			}
		}
		return d.fillEmpty(idx, mode), nil
	}
	return 0, fmt.Errorf("unknown fill strategy %q", strategy)
}

// Scale normalizes the numeric cells of one column; non-numeric and missing
// cells are left untouched
func (d *Dataset) Scale(column string, method analysis.NormalizeMethod) error {
	idx, ok := d.table.ColumnIndex(column)
	if !ok {
		return core.NewColumnNotFoundError(column)
	}
	values := d.numericColumn(idx)
	if len(values) == 0 {
		return fmt.Errorf("%w: %q", core.ErrNotNumeric, column)
	}

	mean, _ := stats.Mean(values)
	std, _ := stats.StandardDeviationPopulation(values)
	min, _ := stats.Min(values)
	max, _ := stats.Max(values)

	for _, row := range d.table.Rows {
		v := cell(row, idx)
		if v == "" {
			continue
		}
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			continue
		}
		var scaled float64
		switch method {
		case analysis.NormalizeZScore:
			if std == 0 {
				scaled = 0
			} else {
				scaled = (f - mean) / std
			}
		case analysis.NormalizeMinMax:
			if max == min {
				scaled = 0
			} else {
				scaled = (f - min) / (max - min)
			}
		default:
			return fmt.Errorf("unknown normalize method %q", method)
		}
		row[idx] = strconv.FormatFloat(scaled, 'g', -1, 64)
	}
	return nil
}

// Encode converts one non-numeric column. Label maps each distinct value to
// its first-appearance index; onehot replaces the column with one 0/1 column
// per distinct value.
func (d *Dataset) Encode(column string, method analysis.EncodingMethod) error {
	idx, ok := d.table.ColumnIndex(column)
	if !ok {
		return core.NewColumnNotFoundError(column)
	}

	distinct := make([]string, 0)
	seen := make(map[string]int)
	for _, row := range d.table.Rows {
		v := cell(row, idx)
		if _, ok := seen[v]; !ok {
			seen[v] = len(distinct)
			distinct = append(distinct, v)
		}
	}

	switch method {
	case analysis.EncodingLabel:
		for _, row := range d.table.Rows {
			row[idx] = strconv.Itoa(seen[cell(row, idx)])
		}
		return nil

	case analysis.EncodingOneHot:
		header := make([]string, 0, len(d.table.Header)-1+len(distinct))
		header = append(header, d.table.Header[:idx]...)
		header = append(header, d.table.Header[idx+1:]...)
		for _, v := range distinct {
			header = append(header, fmt.Sprintf("%s_%s", column, v))
		}

		rows := make([][]string, len(d.table.Rows))
		for i, row := range d.table.Rows {
			rec := make([]string, 0, len(header))
			rec = append(rec, row[:idx]...)
			rec = append(rec, row[idx+1:]...)
			for _, v := range distinct {
				if cell(row, idx) == v {
					rec = append(rec, "1")
				} else {
					rec = append(rec, "0")
				}
			}
			rows[i] = rec
		}
		d.table.Header = header
		d.table.Rows = rows
		return nil
	}
	return fmt.Errorf("unknown encoding method %q", method)
}

// RemoveOutliersIQR drops rows whose value in any given column falls outside
// [Q1-1.5*IQR, Q3+1.5*IQR]. Returns the number of rows removed.
func (d *Dataset) RemoveOutliersIQR(columns []string) (int, error) {
	removed := 0
	for _, column := range columns {
		idx, ok := d.table.ColumnIndex(column)
		if !ok {
			return removed, core.NewColumnNotFoundError(column)
		}
		values := d.numericColumn(idx)
		if len(values) == 0 {
			continue
		}
		q, err := stats.Quartile(values)
		if err != nil {
			return removed, err
		}
		iqr := q.Q3 - q.Q1
		lower, upper := q.Q1-1.5*iqr, q.Q3+1.5*iqr

		kept := d.table.Rows[:0]
		for _, row := range d.table.Rows {
			f, err := strconv.ParseFloat(cell(row, idx), 64)
			if err != nil || (f >= lower && f <= upper) {
				kept = append(kept, row)
				continue
			}
			removed++
		}
		d.table.Rows = kept
	}
	return removed, nil
}

// DropLowVariance removes numeric columns whose population variance falls
// below the threshold. Non-numeric columns are untouched. Returns the names
// of the dropped columns.
func (d *Dataset) DropLowVariance(threshold float64) []string {
	dropped := make([]string, 0)
	keep := make(map[string]bool, len(d.table.Header))
	for i, name := range d.table.Header {
		keep[name] = true
		values := d.numericColumn(i)
		if len(values) == 0 {
			continue
		}
		variance, err := stats.PopulationVariance(values)
		if err != nil || math.IsNaN(variance) {
			continue
		}
		if variance < threshold {
			keep[name] = false
			dropped = append(dropped, name)
		}
	}
	if len(dropped) == 0 {
		return dropped
	}

	indexes := make([]int, 0, len(d.table.Header))
	header := make([]string, 0, len(d.table.Header))
	for i, name := range d.table.Header {
		if keep[name] {
			indexes = append(indexes, i)
			header = append(header, name)
		}
	}
	for r, row := range d.table.Rows {
		rec := make([]string, 0, len(indexes))
		for _, i := range indexes {
			rec = append(rec, cell(row, i))
		}
		d.table.Rows[r] = rec
	}
	d.table.Header = header
	return dropped
}

// FeatureMethod combines columns into a derived feature
type FeatureMethod string

const (
	FeatureSum  FeatureMethod = "sum"
	FeatureProd FeatureMethod = "prod"
)

// GenerateFeature appends a derived column combining the given columns;
// non-numeric cells contribute the operation's identity element
func (d *Dataset) GenerateFeature(columns []string, method FeatureMethod) (string, error) {
	indexes := make([]int, 0, len(columns))
	name := string(method)
	for _, column := range columns {
		idx, ok := d.table.ColumnIndex(column)
		if !ok {
			return "", core.NewColumnNotFoundError(column)
		}
		indexes = append(indexes, idx)
		name += "_" + column
	}

	d.table.Header = append(d.table.Header, name)
	for i, row := range d.table.Rows {
		acc := 0.0
		if method == FeatureProd {
			acc = 1.0
		}
		for _, idx := range indexes {
			f, err := strconv.ParseFloat(cell(row, idx), 64)
			if err != nil {
				continue
			}
			if method == FeatureProd {
				acc *= f
			} else {
				acc += f
			}
		}
		d.table.Rows[i] = append(row, strconv.FormatFloat(acc, 'g', -1, 64))
	}
	return name, nil
}

func (d *Dataset) fillEmpty(idx int, value string) int {
	filled := 0
	for _, row := range d.table.Rows {
		if idx < len(row) && row[idx] == "" {
			row[idx] = value
			filled++
		}
	}
	return filled
}

func (d *Dataset) numericColumn(idx int) []float64 {
	values := make([]float64, 0, len(d.table.Rows))
	for _, row := range d.table.Rows {
		v := cell(row, idx)
		if v == "" {
			continue
		}
		if f, err := strconv.ParseFloat(v, 64); err == nil && !math.IsNaN(f) {
			values = append(values, f)
		}
	}
	return values
}

func cell(row []string, idx int) string {
	if idx < len(row) {
		return row[idx]
	}
	return ""
}
