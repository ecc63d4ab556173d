package core

import (
	"errors"
	"fmt"
)

// Domain errors - centralized error definitions
var (
	ErrNotFound       = errors.New("resource not found")
	ErrColumnNotFound = fmt.Errorf("%w: column", ErrNotFound)
	ErrRowNotFound    = fmt.Errorf("%w: row", ErrNotFound)

	ErrEmptyDataset      = errors.New("dataset has no rows")
	ErrInsufficientData  = errors.New("insufficient data for analysis")
	ErrUnknownStatKind   = errors.New("unknown statistic kind")
	ErrUnknownDataType   = errors.New("unknown data type")
	ErrUnsupportedFormat = errors.New("unsupported file format")
)

// NewColumnNotFoundError reports a column missing from a dataset.
func NewColumnNotFoundError(column string) error {
	return fmt.Errorf("%w %q", ErrColumnNotFound, column)
}

// NewRowNotFoundError reports an out-of-range row index.
func NewRowNotFoundError(index, rowCount int) error {
	return fmt.Errorf("%w: index %d outside [0, %d)", ErrRowNotFound, index, rowCount)
}

// IsNotFoundError reports whether err is any not-found error
func IsNotFoundError(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsInputError reports whether err was caused by caller input rather than the engine.
func IsInputError(err error) bool {
	return errors.Is(err, ErrEmptyDataset) ||
		errors.Is(err, ErrUnknownStatKind) ||
		errors.Is(err, ErrUnknownDataType) ||
		errors.Is(err, ErrUnsupportedFormat) ||
		IsNotFoundError(err)
}
