package ports

import (
	"context"

	"csvpilot/domain/analysis"
)

// TabularReader loads a delimited or spreadsheet file fully into memory.
// Implementations must fail distinctly for "not found", "is a directory" and
// "no data rows" (see domain/core error sentinels).
type TabularReader interface {
	ReadTable(ctx context.Context, filePath string) (*analysis.Table, error)
}
