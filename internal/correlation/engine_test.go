package correlation

import (
	"math"
	"testing"

	"csvpilot/domain/analysis"
	"csvpilot/domain/core"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCorrelateEmptyInput(t *testing.T) {
	e := NewEngine()
	_, err := e.Correlate(map[string][]float64{}, Options{})
	assert.ErrorIs(t, err, core.ErrEmptyInput)
}

func TestCorrelateUnknownMethod(t *testing.T) {
	e := NewEngine()
	_, err := e.Correlate(map[string][]float64{"a": {1, 2}}, Options{Method: "cosine"})
	assert.Error(t, err)
}

func TestMatrixShapeAndSymmetry(t *testing.T) {
	e := NewEngine()
	data := map[string][]float64{
		"a": {1, 2, 3, 4, 5},
		"b": {2, 4, 6, 8, 10},
		"c": {5, 3, 8, 1, 9},
	}

	result, err := e.Correlate(data, Options{Threshold: 0.5})
	require.NoError(t, err)

	for name := range data {
		v, ok := result.At(name, name)
		require.True(t, ok)
		assert.Equal(t, 1.0, v, "diagonal must be exactly 1.0")
	}
	for x := range data {
		for y := range data {
			xy, _ := result.At(x, y)
			yx, _ := result.At(y, x)
			assert.Equal(t, xy, yx, "matrix must be symmetric")
		}
	}

	// Perfectly linear pair
	ab, _ := result.At("a", "b")
	assert.Equal(t, 1.0, ab)
}

func TestConstantColumnYieldsZero(t *testing.T) {
	e := NewEngine()
	result, err := e.Correlate(map[string][]float64{
		"flat": {3, 3, 3, 3},
		"rise": {1, 2, 3, 4},
	}, Options{Threshold: 0.5})
	require.NoError(t, err)

	v, ok := result.At("flat", "rise")
	require.True(t, ok)
	assert.Equal(t, 0.0, v)
	assert.Empty(t, result.HighPairs)
}

func TestHighPairsAreUnorderedAndThresholded(t *testing.T) {
	e := NewEngine()
	result, err := e.Correlate(map[string][]float64{
		"a": {1, 2, 3, 4, 5},
		"b": {2, 4, 6, 8, 10},
		"c": {9, 1, 7, 3, 5},
	}, Options{Threshold: 0.9})
	require.NoError(t, err)

	require.Len(t, result.HighPairs, 1)
	pair := result.HighPairs[0]
	assert.Equal(t, "a", pair.Col1)
	assert.Equal(t, "b", pair.Col2)
	assert.Equal(t, 1.0, pair.Corr)
}

func TestNegativeCorrelationPassesAbsoluteThreshold(t *testing.T) {
	e := NewEngine()
	result, err := e.Correlate(map[string][]float64{
		"up":   {1, 2, 3, 4},
		"down": {4, 3, 2, 1},
	}, Options{Threshold: 0.9})
	require.NoError(t, err)

	require.Len(t, result.HighPairs, 1)
	assert.Equal(t, -1.0, result.HighPairs[0].Corr)
}

func TestCoefficientsRoundedToThreeDecimals(t *testing.T) {
	e := NewEngine()
	result, err := e.Correlate(map[string][]float64{
		"a": {1, 2, 3, 4, 5, 6},
		"b": {2, 1, 4, 3, 7, 5},
	}, Options{})
	require.NoError(t, err)

	v, _ := result.At("a", "b")
	assert.InDelta(t, math.Round(v*1000)/1000, v, 1e-12, "coefficient must carry at most 3 decimals")
}

func TestSpearmanOnMonotonicNonlinearData(t *testing.T) {
	e := NewEngine()
	// y = x^3 is monotonic: rank correlation is exactly 1
	result, err := e.Correlate(map[string][]float64{
		"x": {1, 2, 3, 4, 5},
		"y": {1, 8, 27, 64, 125},
	}, Options{Method: analysis.MethodSpearman})
	require.NoError(t, err)

	v, _ := result.At("x", "y")
	assert.Equal(t, 1.0, v)
	assert.Equal(t, analysis.MethodSpearman, result.Method)
}

func TestKendallTau(t *testing.T) {
	e := NewEngine()
	result, err := e.Correlate(map[string][]float64{
		"x": {1, 2, 3, 4},
		"y": {1, 3, 2, 4},
	}, Options{Method: analysis.MethodKendall})
	require.NoError(t, err)

	// 5 concordant, 1 discordant out of 6 pairs: tau = 4/6
	v, _ := result.At("x", "y")
	assert.Equal(t, 0.667, v)
}

func TestDropNARemovesRowsListwise(t *testing.T) {
	nan := func() float64 { var z float64; return 0 / z }

	e := NewEngine()
	result, err := e.Correlate(map[string][]float64{
		"a": {1, nan(), 3, 4, 5},
		"b": {2, 100, 6, 8, 10},
	}, Options{DropNA: true, Threshold: 0.9})
	require.NoError(t, err)

	// With the NaN row dropped the remaining points are perfectly linear
	v, _ := result.At("a", "b")
	assert.Equal(t, 1.0, v)
}

func TestVectorsOfDifferentLengthsAreTruncated(t *testing.T) {
	e := NewEngine()
	result, err := e.Correlate(map[string][]float64{
		"short": {1, 2, 3},
		"long":  {2, 4, 6, 100, 200},
	}, Options{})
	require.NoError(t, err)

	v, _ := result.At("short", "long")
	assert.Equal(t, 1.0, v)
}
