package profile

import (
	"context"
	"testing"

	"csvpilot/domain/analysis"
	"csvpilot/domain/core"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubReader struct {
	table *analysis.Table
}

func (s stubReader) ReadTable(_ context.Context, _ string) (*analysis.Table, error) {
	return s.table, nil
}

func profileOf(t *testing.T, table *analysis.Table) []analysis.ColumnStat {
	t.Helper()
	p := NewProfiler(nil)
	columnStats, err := p.ProfileTable(table)
	require.NoError(t, err)
	return columnStats
}

func TestProfileNumericColumn(t *testing.T) {
	table := &analysis.Table{
		Header: []string{"value"},
		Rows:   [][]string{{"2"}, {"4"}, {"4"}, {"4"}, {"5"}, {"5"}, {"7"}, {"9"}},
	}

	columnStats := profileOf(t, table)
	require.Len(t, columnStats, 1)

	stat := columnStats[0]
	assert.Equal(t, "value", stat.Column)
	assert.Equal(t, analysis.DTypeNumeric, stat.Dtype)
	assert.Equal(t, 0, stat.Missing)
	assert.Equal(t, 5, stat.Unique)
	require.NotNil(t, stat.Numeric)
	assert.InDelta(t, 5.0, stat.Numeric.Mean, 1e-9)
	// Population standard deviation: sqrt(32/8) = 2 exactly
	assert.InDelta(t, 2.0, stat.Numeric.Std, 1e-9)
	assert.Equal(t, 2.0, stat.Numeric.Min)
	assert.Equal(t, 9.0, stat.Numeric.Max)
}

func TestSingleBadValueDemotesNumericColumn(t *testing.T) {
	table := &analysis.Table{
		Header: []string{"value"},
		Rows:   [][]string{{"1"}, {"2"}, {"3"}, {"oops"}, {"5"}},
	}

	columnStats := profileOf(t, table)
	stat := columnStats[0]
	assert.Equal(t, analysis.DTypeCategorical, stat.Dtype)
	assert.Nil(t, stat.Numeric, "demoted column must carry no numeric summary")
}

func TestNaNStringDemotesNumericColumn(t *testing.T) {
	table := &analysis.Table{
		Header: []string{"value"},
		Rows:   [][]string{{"1"}, {"NaN"}, {"3"}},
	}

	columnStats := profileOf(t, table)
	assert.Equal(t, analysis.DTypeCategorical, columnStats[0].Dtype)
}

func TestMissingCellsAreCountedNotProfiled(t *testing.T) {
	table := &analysis.Table{
		Header: []string{"value"},
		Rows:   [][]string{{"10"}, {""}, {"20"}, {""}},
	}

	stat := profileOf(t, table)[0]
	assert.Equal(t, analysis.DTypeNumeric, stat.Dtype)
	assert.Equal(t, 2, stat.Missing)
	assert.Equal(t, 2, stat.Unique)
	require.NotNil(t, stat.Numeric)
	assert.InDelta(t, 15.0, stat.Numeric.Mean, 1e-9)
}

func TestDatetimeClassification(t *testing.T) {
	table := &analysis.Table{
		Header: []string{"day"},
		Rows:   [][]string{{"2024-01-01"}, {"2024-02-15"}, {"2024-03-31"}},
	}

	assert.Equal(t, analysis.DTypeDatetime, profileOf(t, table)[0].Dtype)
}

func TestHighCardinalityTextClassification(t *testing.T) {
	rows := make([][]string, 0, 40)
	for i := 0; i < 40; i++ {
		rows = append(rows, []string{string(rune('a'+i%26)) + string(rune('a'+i/26)) + "x"})
	}
	table := &analysis.Table{Header: []string{"note"}, Rows: rows}

	assert.Equal(t, analysis.DTypeText, profileOf(t, table)[0].Dtype)
}

func TestAllMissingColumnIsText(t *testing.T) {
	table := &analysis.Table{
		Header: []string{"empty"},
		Rows:   [][]string{{""}, {""}},
	}

	stat := profileOf(t, table)[0]
	assert.Equal(t, analysis.DTypeText, stat.Dtype)
	assert.Equal(t, 2, stat.Missing)
	assert.Equal(t, 0, stat.Unique)
}

func TestSummarizeColumn(t *testing.T) {
	p := NewProfiler(stubReader{table: &analysis.Table{
		Header: []string{"price", "label"},
		Rows:   [][]string{{"10", "a"}, {"20", "b"}, {"30", "c"}},
	}})

	summary, err := p.SummarizeColumn(context.Background(), "any.csv", "price")
	require.NoError(t, err)
	assert.Equal(t, "[price] mean=20.00 min=10 max=30 (n=3)", summary)

	_, err = p.SummarizeColumn(context.Background(), "any.csv", "label")
	assert.ErrorIs(t, err, core.ErrNotNumeric)

	_, err = p.SummarizeColumn(context.Background(), "any.csv", "absent")
	assert.ErrorIs(t, err, core.ErrColumnNotFound)
}

func TestColumns(t *testing.T) {
	p := NewProfiler(stubReader{table: &analysis.Table{
		Header: []string{"x", "y"},
		Rows:   [][]string{{"1", "2"}},
	}})

	columns, err := p.Columns(context.Background(), "any.csv")
	require.NoError(t, err)
	assert.Equal(t, []string{"x", "y"}, columns)
}

func TestProfileOrderMatchesHeaderOrder(t *testing.T) {
	table := &analysis.Table{
		Header: []string{"b", "a", "c"},
		Rows:   [][]string{{"1", "x", "2024-01-01"}},
	}

	columnStats := profileOf(t, table)
	require.Len(t, columnStats, 3)
	assert.Equal(t, "b", columnStats[0].Column)
	assert.Equal(t, "a", columnStats[1].Column)
	assert.Equal(t, "c", columnStats[2].Column)
}
