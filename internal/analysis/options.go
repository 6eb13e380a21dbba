package analysis

import (
	"fmt"
	"strings"
)

// Options controls how tabular files are loaded and profiled.
type Options struct {
	// MaxRows limits rows loaded; 0 means unlimited.
	MaxRows int
	// SampleRows determines how many example rows to include in the report; 0 disables samples.
	SampleRows int
	// Delimiter for CSV. If 0, chosen from the file extension.
	Delimiter rune
	// Numeric parsing locale. If DecimalSeparator is 0, auto-detect per value.
	DecimalSeparator   rune
	ThousandsSeparator rune // optional; if 0, auto-detect common separators (',' '.' space)
	// Unit normalization: convert values to target units using simple mappings.
	UnitNormalize bool
	UnitTargets   map[string]string // map[fromUnit]toUnit, e.g., {"g/L":"mg/L", "°F":"°C"}
	// GroupBy computes per-group numeric means for the given column names.
	GroupBy []string
	// Correlations computes Pearson correlations among numeric columns.
	Correlations bool
	// Outlier detection via robust Z-score (MAD). If Outliers is true, counts |z|>threshold.
	Outliers         bool
	OutlierThreshold float64
}

// DefaultOptions returns reasonable defaults for loading and profiling.
func DefaultOptions() Options {
	return Options{
		MaxRows:       100000,
		SampleRows:    5,
		UnitNormalize: true,
		UnitTargets: map[string]string{
			"g/L":  "mg/L",
			"ug/L": "mg/L",
			"°F":   "°C",
		},
		Outliers:         true,
		OutlierThreshold: 3.5,
	}
}

// SetSeparators applies the command-line spellings of the CSV delimiter and
// numeric separators. Empty strings leave the current value.
func (o *Options) SetSeparators(delimiter, decimal, thousands string) error {
	switch delimiter {
	case "":
	case ",":
		o.Delimiter = ','
	case "\t", "tab":
		o.Delimiter = '\t'
	case ";":
		o.Delimiter = ';'
	default:
		return fmt.Errorf("unsupported --delimiter: %s", delimiter)
	}
	switch strings.ToLower(strings.TrimSpace(decimal)) {
	case ",", "comma":
		o.DecimalSeparator = ','
	case ".", "dot":
		o.DecimalSeparator = '.'
	case "":
	default:
		return fmt.Errorf("unsupported --decimal: %s (use '.'|'comma')", decimal)
	}
	switch strings.ToLower(thousands) {
	case ",":
		o.ThousandsSeparator = ','
	case ".":
		o.ThousandsSeparator = '.'
	case "space", " ":
		o.ThousandsSeparator = ' '
	case "":
	default:
		return fmt.Errorf("unsupported --thousands: %s (use ','|'.'|'space')", thousands)
	}
	return nil
}
