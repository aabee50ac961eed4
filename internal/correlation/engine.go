package correlation

import (
	"fmt"
	"log"
	"math"
	"sort"

	"csvpilot/domain/analysis"
	"csvpilot/domain/core"

	"gonum.org/v1/gonum/stat"
)

// matrixPrecision is the number of decimals every coefficient is rounded to
// before it enters the matrix, so repeated runs compare stably
const matrixPrecision = 3

// Options configure one correlation computation
type Options struct {
	Method    analysis.CorrMethod
	DropNA    bool
	Threshold float64
}

// Engine computes pairwise correlation matrices over numeric column vectors
type Engine struct{}

// NewEngine creates a correlation engine
func NewEngine() *Engine {
	return &Engine{}
}

// Correlate computes the full pairwise matrix for the given columns and the
// list of unordered pairs at or above the threshold. Column order inside the
// result is the lexical order of the keys so output is deterministic.
func (e *Engine) Correlate(data map[string][]float64, opts Options) (*analysis.CorrelationResult, error) {
	if len(data) == 0 {
		return nil, core.ErrEmptyInput
	}
	method, err := analysis.ParseCorrMethod(string(opts.Method))
	if err != nil {
		return nil, err
	}

	columns := make([]string, 0, len(data))
	for name := range data {
		columns = append(columns, name)
	}
	sort.Strings(columns)

	aligned := alignVectors(columns, data, opts.DropNA)

	matrix := make(map[string]map[string]float64, len(columns))
	for _, name := range columns {
		matrix[name] = map[string]float64{name: 1.0}
	}
	for i := 0; i < len(columns); i++ {
		for j := i + 1; j < len(columns); j++ {
			a, b := columns[i], columns[j]
			corr := round(coefficient(method, aligned[a], aligned[b]))
			// One computation feeds both cells, so symmetry holds by
			// construction
			matrix[a][b] = corr
			matrix[b][a] = corr
		}
	}

	highPairs := make([]analysis.CorrelationPair, 0)
	for i := 0; i < len(columns); i++ {
		for j := i + 1; j < len(columns); j++ {
			a, b := columns[i], columns[j]
			if math.Abs(matrix[a][b]) >= opts.Threshold {
				highPairs = append(highPairs, analysis.CorrelationPair{Col1: a, Col2: b, Corr: matrix[a][b]})
			}
		}
	}

	log.Printf("[Correlation] method=%s columns=%d highPairs=%d", method, len(columns), len(highPairs))
	return &analysis.CorrelationResult{Method: method, Matrix: matrix, HighPairs: highPairs}, nil
}

// alignVectors truncates every vector to the shortest length so row indices
// line up, then either drops rows containing NaN (listwise) or zeroes them
func alignVectors(columns []string, data map[string][]float64, dropNA bool) map[string][]float64 {
	minLen := math.MaxInt
	for _, name := range columns {
		if len(data[name]) < minLen {
			minLen = len(data[name])
		}
	}

	aligned := make(map[string][]float64, len(columns))
	if !dropNA {
		for _, name := range columns {
			vec := make([]float64, minLen)
			for i := 0; i < minLen; i++ {
				if v := data[name][i]; !math.IsNaN(v) {
					vec[i] = v
				}
			}
			aligned[name] = vec
		}
		return aligned
	}

	keep := make([]bool, minLen)
	kept := 0
	for i := 0; i < minLen; i++ {
		keep[i] = true
		for _, name := range columns {
			if math.IsNaN(data[name][i]) {
				keep[i] = false
				break
			}
		}
		if keep[i] {
			kept++
		}
	}
	for _, name := range columns {
		vec := make([]float64, 0, kept)
		for i := 0; i < minLen; i++ {
			if keep[i] {
				vec = append(vec, data[name][i])
			}
		}
		aligned[name] = vec
	}
	return aligned
}

func coefficient(method analysis.CorrMethod, x, y []float64) float64 {
	switch method {
	case analysis.MethodSpearman:
		return spearman(x, y)
	case analysis.MethodKendall:
		return kendall(x, y)
	default:
		return pearson(x, y)
	}
}

// pearson is the product-moment coefficient; a constant column yields 0
// rather than NaN
func pearson(x, y []float64) float64 {
	n := len(x)
	if len(y) < n {
		n = len(y)
	}
	if n == 0 {
		return 0
	}
	x, y = x[:n], y[:n]
	if stat.StdDev(x, nil) == 0 || stat.StdDev(y, nil) == 0 {
		return 0
	}
	r := stat.Correlation(x, y, nil)
	if math.IsNaN(r) {
		return 0
	}
	return r
}

// spearman rank-transforms both vectors (average ranks on ties) and applies
// Pearson to the ranks
func spearman(x, y []float64) float64 {
	n := len(x)
	if len(y) < n {
		n = len(y)
	}
	return pearson(averageRanks(x[:n]), averageRanks(y[:n]))
}

// kendall is tau-a: (concordant - discordant) / totalPairs over all i<j
func kendall(x, y []float64) float64 {
	n := len(x)
	if len(y) < n {
		n = len(y)
	}
	concordant, discordant := 0, 0
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			s := sign(x[i]-x[j]) * sign(y[i]-y[j])
			if s > 0 {
				concordant++
			} else if s < 0 {
				discordant++
			}
		}
	}
	totalPairs := n * (n - 1) / 2
	if totalPairs == 0 {
		return 0
	}
	return float64(concordant-discordant) / float64(totalPairs)
}

func averageRanks(values []float64) []float64 {
	n := len(values)
	idx := make([]int, n)
	for i := range idx {
		idx[i] = i
	}
	sort.SliceStable(idx, func(a, b int) bool { return values[idx[a]] < values[idx[b]] })

	ranks := make([]float64, n)
	for i := 0; i < n; {
		j := i
		for j+1 < n && values[idx[j+1]] == values[idx[i]] {
			j++
		}
		// Ties share the average of the positions they span
		avg := float64(i+j)/2 + 1
		for k := i; k <= j; k++ {
			ranks[idx[k]] = avg
		}
		i = j + 1
	}
	return ranks
}

func sign(v float64) int {
	switch {
	case v > 0:
		return 1
	case v < 0:
		return -1
	}
	return 0
}

func round(v float64) float64 {
	scale := math.Pow10(matrixPrecision)
	return math.Round(v*scale) / scale
}

// String formats the options for logs
func (o Options) String() string {
	return fmt.Sprintf("method=%s dropna=%t threshold=%.2f", o.Method, o.DropNA, o.Threshold)
}
