package analysis

import (
	"math"
	"strconv"

	"csvpilot/domain/core"
)

// Table is an in-memory tabular file: header plus string records in file
// order. Readers load the whole file; there is no streaming.
type Table struct {
	Header []string
	Rows   [][]string
}

// RowCount returns the number of data rows
func (t *Table) RowCount() int { return len(t.Rows) }

// ColumnIndex returns the position of a named column
func (t *Table) ColumnIndex(name string) (int, bool) {
	for i, h := range t.Header {
		if h == name {
			return i, true
		}
	}
	return -1, false
}

// Column returns the raw values of a named column, padding short rows with
// empty strings
func (t *Table) Column(name string) ([]string, error) {
	idx, ok := t.ColumnIndex(name)
	if !ok {
		return nil, core.NewColumnNotFoundError(name)
	}
	values := make([]string, len(t.Rows))
	for i, row := range t.Rows {
		if idx < len(row) {
			values[i] = row[idx]
		}
	}
	return values, nil
}

// NumericColumns extracts every strictly-numeric column as a float vector,
// keyed by column name. A column qualifies only when all of its non-missing
// values parse as finite numbers; missing cells are dropped from the vector.
func (t *Table) NumericColumns() map[string][]float64 {
	out := make(map[string][]float64)
	for _, name := range t.Header {
		raw, err := t.Column(name)
		if err != nil {
			continue
		}
		vec, ok := parseNumericColumn(raw)
		if ok && len(vec) > 0 {
			out[name] = vec
		}
	}
	return out
}

func parseNumericColumn(raw []string) ([]float64, bool) {
	vec := make([]float64, 0, len(raw))
	for _, v := range raw {
		if v == "" {
			continue
		}
		f, err := strconv.ParseFloat(v, 64)
		if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
			return nil, false
		}
		vec = append(vec, f)
	}
	return vec, true
}
