package excel

import (
	"context"
	"encoding/csv"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	"csvpilot/domain/analysis"
	"csvpilot/domain/core"

	"github.com/xuri/excelize/v2"
)

// DataReader reads CSV and Excel files fully into memory as a Table
type DataReader struct{}

// NewDataReader creates a new data reader that handles both CSV and Excel files
func NewDataReader() *DataReader {
	return &DataReader{}
}

// ReadTable reads the file at filePath. The first row is the header; every
// later row is a data record. Fails with the domain input-error taxonomy so
// callers can tell "not found" from "is a directory" from "no rows".
func (r *DataReader) ReadTable(ctx context.Context, filePath string) (*analysis.Table, error) {
	if strings.TrimSpace(filePath) == "" {
		return nil, core.ErrMissingInput
	}

	info, err := os.Stat(filePath)
	if os.IsNotExist(err) {
		return nil, fmt.Errorf("%w: %s", core.ErrFileNotFound, filePath)
	}
	if err != nil {
		return nil, err
	}
	if info.IsDir() {
		return nil, fmt.Errorf("%w: %s", core.ErrNotATable, filePath)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var rows [][]string
	switch strings.ToLower(filepath.Ext(filePath)) {
	case ".xlsx":
		rows, err = readExcelRows(filePath)
	case ".tsv":
		rows, err = readDelimitedRows(filePath, '\t')
	case ".csv", ".txt", "":
		// .txt is treated as comma-separated
		rows, err = readDelimitedRows(filePath, ',')
	default:
		return nil, fmt.Errorf("%w: %s", core.ErrUnsupported, filepath.Ext(filePath))
	}
	if err != nil {
		return nil, err
	}

	return buildTable(filePath, rows)
}

func readDelimitedRows(filePath string, comma rune) ([][]string, error) {
	file, err := os.Open(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open CSV file: %w", err)
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.Comma = comma
	reader.FieldsPerRecord = -1 // ragged rows are padded later
	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to read CSV file: %w", err)
	}
	return rows, nil
}

func readExcelRows(filePath string) ([][]string, error) {
	f, err := excelize.OpenFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open Excel file: %w", err)
	}
	defer f.Close()

	sheet := f.GetSheetName(0)
	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet %s: %w", sheet, err)
	}
	return rows, nil
}

func buildTable(filePath string, rows [][]string) (*analysis.Table, error) {
	// Fully empty rows are skipped wherever they appear
	filtered := rows[:0]
	for _, row := range rows {
		if !isEmptyRow(row) {
			filtered = append(filtered, row)
		}
	}

	if len(filtered) == 0 {
		return nil, fmt.Errorf("%w: %s", core.ErrEmptyDataset, filePath)
	}

	header := make([]string, len(filtered[0]))
	for i, h := range filtered[0] {
		header[i] = strings.TrimSpace(h)
	}

	if len(filtered) < 2 {
		return nil, fmt.Errorf("%w: %s", core.ErrNoRows, filePath)
	}

	data := make([][]string, 0, len(filtered)-1)
	for _, row := range filtered[1:] {
		record := make([]string, len(header))
		for j := range header {
			if j < len(row) {
				record[j] = strings.TrimSpace(row[j])
			}
		}
		data = append(data, record)
	}

	log.Printf("[DataReader] %s processed (%d columns, %d rows)", filepath.Base(filePath), len(header), len(data))
	return &analysis.Table{Header: header, Rows: data}, nil
}

func isEmptyRow(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}
