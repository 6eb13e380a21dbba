package parser

import (
	"strings"

	"github.com/KaramelBytes/hypocheck/internal/analysis"
)

type xlsxLoader struct{}

func (xlsxLoader) CanLoad(filename string) bool {
	name := strings.ToLower(filename)
	return strings.HasSuffix(name, ".xlsx") || strings.HasSuffix(name, ".xlsm")
}

func (xlsxLoader) Load(path string, opt analysis.Options, sheet Sheet) (*analysis.Dataset, error) {
	return analysis.LoadXLSX(path, opt, sheet.Name, sheet.Index)
}
