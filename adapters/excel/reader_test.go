package excel

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"csvpilot/domain/core"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestReadTableCSV(t *testing.T) {
	path := writeFile(t, "data.csv", "name, age\nalice, 30\nbob, 25\n")

	table, err := NewDataReader().ReadTable(context.Background(), path)
	require.NoError(t, err)

	assert.Equal(t, []string{"name", "age"}, table.Header, "header cells are trimmed")
	require.Equal(t, 2, table.RowCount())
	assert.Equal(t, []string{"alice", "30"}, table.Rows[0])
	assert.Equal(t, []string{"bob", "25"}, table.Rows[1])
}

func TestReadTableTSV(t *testing.T) {
	path := writeFile(t, "data.tsv", "a\tb\n1\t2\n3\t4\n")

	table, err := NewDataReader().ReadTable(context.Background(), path)
	require.NoError(t, err)

	assert.Equal(t, []string{"a", "b"}, table.Header, "tab-separated files split on tabs")
	require.Equal(t, 2, table.RowCount())
	assert.Equal(t, []string{"1", "2"}, table.Rows[0])
	assert.Equal(t, []string{"3", "4"}, table.Rows[1])
}

func TestReadTableTxtIsCommaSeparated(t *testing.T) {
	path := writeFile(t, "data.txt", "a,b\n1,2\n")

	table, err := NewDataReader().ReadTable(context.Background(), path)
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, table.Header)
}

func TestReadTableSkipsEmptyRows(t *testing.T) {
	path := writeFile(t, "data.csv", "a,b\n1,2\n,\n3,4\n")

	table, err := NewDataReader().ReadTable(context.Background(), path)
	require.NoError(t, err)
	assert.Equal(t, 2, table.RowCount())
}

func TestReadTablePadsRaggedRows(t *testing.T) {
	path := writeFile(t, "data.csv", "a,b,c\n1,2\n4,5,6\n")

	table, err := NewDataReader().ReadTable(context.Background(), path)
	require.NoError(t, err)
	assert.Equal(t, []string{"1", "2", ""}, table.Rows[0])
}

func TestReadTableMissingPath(t *testing.T) {
	_, err := NewDataReader().ReadTable(context.Background(), "")
	assert.ErrorIs(t, err, core.ErrMissingInput)
}

func TestReadTableFileNotFound(t *testing.T) {
	_, err := NewDataReader().ReadTable(context.Background(), "no/such/file.csv")
	assert.ErrorIs(t, err, core.ErrFileNotFound)
}

func TestReadTableDirectory(t *testing.T) {
	_, err := NewDataReader().ReadTable(context.Background(), t.TempDir())
	assert.ErrorIs(t, err, core.ErrNotATable)
}

func TestReadTableUnsupportedExtension(t *testing.T) {
	path := writeFile(t, "data.parquet", "binary")
	_, err := NewDataReader().ReadTable(context.Background(), path)
	assert.ErrorIs(t, err, core.ErrUnsupported)
}

func TestReadTableEmptyFile(t *testing.T) {
	path := writeFile(t, "data.csv", "")
	_, err := NewDataReader().ReadTable(context.Background(), path)
	assert.ErrorIs(t, err, core.ErrEmptyDataset)
}

func TestReadTableHeaderOnly(t *testing.T) {
	path := writeFile(t, "data.csv", "a,b\n")
	_, err := NewDataReader().ReadTable(context.Background(), path)
	assert.ErrorIs(t, err, core.ErrNoRows)
}

func TestReadTableCancelledContext(t *testing.T) {
	path := writeFile(t, "data.csv", "a\n1\n")
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewDataReader().ReadTable(ctx, path)
	assert.ErrorIs(t, err, context.Canceled)
}
