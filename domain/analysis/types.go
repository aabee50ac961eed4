package analysis

import (
	"fmt"
)

// DType classifies a column for downstream decision logic
type DType string

const (
	DTypeNumeric     DType = "numeric"
	DTypeCategorical DType = "categorical"
	DTypeDatetime    DType = "datetime"
	DTypeText        DType = "text"
)

// IsNumeric reports whether the dtype carries a numeric summary
func (d DType) IsNumeric() bool { return d == DTypeNumeric }

// CorrMethod selects the correlation coefficient
type CorrMethod string

const (
	MethodPearson  CorrMethod = "pearson"
	MethodSpearman CorrMethod = "spearman"
	MethodKendall  CorrMethod = "kendall"
)

// ParseCorrMethod validates a method name, defaulting empty to pearson
func ParseCorrMethod(s string) (CorrMethod, error) {
	switch CorrMethod(s) {
	case "":
		return MethodPearson, nil
	case MethodPearson, MethodSpearman, MethodKendall:
		return CorrMethod(s), nil
	}
	return "", fmt.Errorf("unknown correlation method %q", s)
}

// NumericSummary holds the numeric portion of a column profile.
// Mean and Std are population statistics (divide by n, no Bessel correction).
type NumericSummary struct {
	Mean float64 `json:"mean"`
	Std  float64 `json:"std"`
	Min  float64 `json:"min"`
	Max  float64 `json:"max"`
}

// ColumnStat is the per-column profile produced once per run by the profiler
// and immutable afterward.
//
// Invariants enforced at construction:
//   - Missing + non-missing count == total rows
//   - Numeric is present iff Dtype == numeric and at least one value parsed
type ColumnStat struct {
	Column  string          `json:"column"`
	Dtype   DType           `json:"dtype"`
	Missing int             `json:"missing"`
	Unique  int             `json:"unique"`
	Numeric *NumericSummary `json:"numeric,omitempty"`
}

// NewColumnStat validates the profile invariants at construction time
func NewColumnStat(column string, dtype DType, missing, unique int, numeric *NumericSummary) (ColumnStat, error) {
	if column == "" {
		return ColumnStat{}, fmt.Errorf("column name cannot be empty")
	}
	if missing < 0 || unique < 0 {
		return ColumnStat{}, fmt.Errorf("column %q: negative counts", column)
	}
	if numeric != nil && dtype != DTypeNumeric {
		return ColumnStat{}, fmt.Errorf("column %q: numeric summary on non-numeric dtype %q", column, dtype)
	}
	return ColumnStat{Column: column, Dtype: dtype, Missing: missing, Unique: unique, Numeric: numeric}, nil
}

// CorrelationPair is one strongly-correlated unordered column pair
type CorrelationPair struct {
	Col1 string  `json:"col1"`
	Col2 string  `json:"col2"`
	Corr float64 `json:"corr"`
}

// CorrelationResult holds the full matrix plus the thresholded pair list.
// The matrix is symmetric with diagonal 1.0 by construction; HighPairs holds
// unordered pairs only (a,b and b,a are never both present).
type CorrelationResult struct {
	Method    CorrMethod                    `json:"method"`
	Matrix    map[string]map[string]float64 `json:"correlationMatrix"`
	HighPairs []CorrelationPair             `json:"highCorrPairs"`
}

// At returns the coefficient for a pair of columns
func (r *CorrelationResult) At(a, b string) (float64, bool) {
	row, ok := r.Matrix[a]
	if !ok {
		return 0, false
	}
	v, ok := row[b]
	return v, ok
}
