// Package parser picks a tabular loader by file extension.
package parser

import (
	"errors"
	"fmt"
	"path/filepath"

	"github.com/KaramelBytes/hypocheck/internal/analysis"
)

// ErrUnsupported indicates a file format has no registered loader.
var ErrUnsupported = errors.New("unsupported dataset format")

// Sheet selects a worksheet in workbook formats. Name wins over Index;
// Index is 1-based and zero means the first sheet.
type Sheet struct {
	Name  string
	Index int
}

// Loader reads one tabular format into a dataset.
type Loader interface {
	CanLoad(filename string) bool
	Load(path string, opt analysis.Options, sheet Sheet) (*analysis.Dataset, error)
}

var registry []Loader

// Register adds a loader to the registry. Earlier registrations win.
func Register(l Loader) {
	registry = append(registry, l)
}

// Supported reports whether some loader accepts path.
func Supported(path string) bool {
	return lookup(path) != nil
}

// ParseFile loads path with the first loader that accepts it.
func ParseFile(path string, opt analysis.Options, sheet Sheet) (*analysis.Dataset, error) {
	l := lookup(path)
	if l == nil {
		return nil, fmt.Errorf("%w: %s (use .csv, .tsv, .txt or .xlsx)", ErrUnsupported, filepath.Base(path))
	}
	return l.Load(path, opt, sheet)
}

func lookup(path string) Loader {
	for _, l := range registry {
		if l.CanLoad(path) {
			return l
		}
	}
	return nil
}

func init() {
	Register(csvLoader{})
	Register(xlsxLoader{})
}
