// Package stats holds the statistical routines behind each hypothesis test.
// Every function is pure: it takes slices, returns a statistic and a p-value,
// and reports degenerate input as an error rather than a NaN.
package stats

import "errors"

var (
	// ErrSampleSize is returned when a sample is too small for the test.
	ErrSampleSize = errors.New("sample is too small")
	// ErrDegenerate is returned when input makes the statistic undefined,
	// e.g. constant samples or a zero variance denominator.
	ErrDegenerate = errors.New("degenerate input")
	// ErrDomain is returned when a transform receives values outside its domain.
	ErrDomain = errors.New("value outside transform domain")
	// ErrMismatchedLength is returned when paired samples differ in length.
	ErrMismatchedLength = errors.New("paired samples have different lengths")
)
