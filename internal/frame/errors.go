package frame

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrColumnNotFound is matched by every ColumnNotFoundError.
	ErrColumnNotFound = errors.New("column not found")
	// ErrNotNumeric is matched by every NotNumericError.
	ErrNotNumeric = errors.New("column is not numeric")
	// ErrLengthMismatch is matched by every LengthMismatchError.
	ErrLengthMismatch = errors.New("column length mismatch")
	// ErrUnsupportedColumn is returned for column slices Normalize cannot convert.
	ErrUnsupportedColumn = errors.New("unsupported column type")
)

// ColumnNotFoundError indicates a referenced column is absent from the dataset.
type ColumnNotFoundError struct {
	Column    string
	Available []string
}

func (e *ColumnNotFoundError) Error() string {
	if len(e.Available) == 0 {
		return fmt.Sprintf("column not found: %q", e.Column)
	}
	return fmt.Sprintf("column not found: %q (available: %s)", e.Column, strings.Join(e.Available, ", "))
}

func (e *ColumnNotFoundError) Is(target error) bool { return target == ErrColumnNotFound }

// NotNumericError indicates a numeric operation was asked of a categorical column.
type NotNumericError struct{ Column string }

func (e *NotNumericError) Error() string {
	return fmt.Sprintf("column %q is not numeric", e.Column)
}

func (e *NotNumericError) Is(target error) bool { return target == ErrNotNumeric }

// LengthMismatchError indicates columns of a mapping have different lengths.
type LengthMismatchError struct {
	Column    string
	Got, Want int
}

func (e *LengthMismatchError) Error() string {
	return fmt.Sprintf("column %q has %d rows, want %d", e.Column, e.Got, e.Want)
}

func (e *LengthMismatchError) Is(target error) bool { return target == ErrLengthMismatch }

// DuplicateColumnError indicates two columns share a name.
type DuplicateColumnError struct{ Column string }

func (e *DuplicateColumnError) Error() string {
	return fmt.Sprintf("duplicate column %q", e.Column)
}
