package core

import (
	"errors"
	"fmt"
)

// Domain errors - centralized error definitions
var (
	// Input errors - fatal, raised before any pipeline stage runs
	ErrMissingInput  = errors.New("input file path is required")
	ErrFileNotFound  = errors.New("file not found")
	ErrNotATable     = errors.New("path is a directory, not a tabular file")
	ErrEmptyDataset  = errors.New("dataset is empty")
	ErrNoRows        = errors.New("dataset has a header but no data rows")
	ErrEmptyInput    = errors.New("no columns in input data")
	ErrUnsupported   = errors.New("unsupported file type")

	// Data shape errors - propagated from single-tool calls, downgraded
	// inside the workflow
	ErrColumnNotFound = errors.New("column not found")
	ErrNotNumeric     = errors.New("column has no numeric data")

	// Stage errors - always recoverable at the workflow level
	ErrStageFailed = errors.New("pipeline stage failed")
)

// NewColumnNotFoundError reports a request for a column the dataset lacks
func NewColumnNotFoundError(column string) error {
	return fmt.Errorf("%w: %q", ErrColumnNotFound, column)
}

// NewStageError wraps a stage failure with the stage name
func NewStageError(stage string, err error) error {
	return fmt.Errorf("%w: %s: %v", ErrStageFailed, stage, err)
}

// IsInputError reports whether err belongs to the fatal input taxonomy
func IsInputError(err error) bool {
	return errors.Is(err, ErrMissingInput) ||
		errors.Is(err, ErrFileNotFound) ||
		errors.Is(err, ErrNotATable) ||
		errors.Is(err, ErrEmptyDataset) ||
		errors.Is(err, ErrNoRows) ||
		errors.Is(err, ErrEmptyInput) ||
		errors.Is(err, ErrUnsupported)
}

// IsDataShapeError reports whether err is a per-tool data shape problem
func IsDataShapeError(err error) bool {
	return errors.Is(err, ErrColumnNotFound) || errors.Is(err, ErrNotNumeric)
}

// IsStageError reports whether err is a recoverable stage failure
func IsStageError(err error) bool {
	return errors.Is(err, ErrStageFailed)
}
