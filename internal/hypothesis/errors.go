package hypothesis

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrInvalidConfiguration = errors.New("invalid configuration")
	ErrInsufficientGroups   = errors.New("insufficient groups")
	ErrDegenerateTable      = errors.New("degenerate contingency table")
)

// InvalidConfigurationError reports mutually exclusive or unknown options.
type InvalidConfigurationError struct {
	Option string
	Reason string
}

func (e *InvalidConfigurationError) Error() string {
	if e.Option == "" {
		return fmt.Sprintf("invalid configuration: %s", e.Reason)
	}
	return fmt.Sprintf("invalid configuration for %s: %s", e.Option, e.Reason)
}

func (e *InvalidConfigurationError) Is(target error) bool { return target == ErrInvalidConfiguration }

// InsufficientGroupsError is returned when a grouping column has fewer than two
// distinct non-missing values.
type InsufficientGroupsError struct {
	Column string
	Found  []string
}

func (e *InsufficientGroupsError) Error() string {
	if len(e.Found) == 0 {
		return fmt.Sprintf("column %q has no non-missing values; need 2 groups", e.Column)
	}
	return fmt.Sprintf("column %q has 1 distinct value (%s); need 2 groups", e.Column, e.Found[0])
}

func (e *InsufficientGroupsError) Is(target error) bool { return target == ErrInsufficientGroups }

// DegenerateTableError is returned when a cross-tabulated variable has fewer
// than two categories.
type DegenerateTableError struct {
	Column     string
	Categories []string
}

func (e *DegenerateTableError) Error() string {
	return fmt.Sprintf("column %q has %d categor%s [%s]; need at least 2",
		e.Column, len(e.Categories), plural(len(e.Categories)), strings.Join(e.Categories, ", "))
}

func (e *DegenerateTableError) Is(target error) bool { return target == ErrDegenerateTable }

func plural(n int) string {
	if n == 1 {
		return "y"
	}
	return "ies"
}
