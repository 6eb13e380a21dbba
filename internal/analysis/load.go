// Package analysis loads CSV/TSV/XLSX files into typed tables and profiles
// them.
package analysis

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
	"time"
	"unicode"

	"github.com/KaramelBytes/hypocheck/internal/frame"
)

// Dataset is a loaded table plus what the loader saw on the way in.
type Dataset struct {
	Table *frame.Table
	// Path is the source file; Sheet is set for workbooks.
	Path  string
	Sheet string
	// Rows counts data rows in the file; Processed counts rows loaded.
	Rows      int
	Processed int
	Samples   [][]string
	Warnings  []string
}

// LoadCSV reads a delimited file with a header row.
func LoadCSV(path string, opt Options) (*Dataset, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open csv: %w", err)
	}
	defer f.Close()
	delim := opt.Delimiter
	if delim == 0 {
		delim = sniffDelimiter(path)
	}
	r := csv.NewReader(f)
	r.FieldsPerRecord = -1
	// Leading-space trimming would swallow empty fields when the delimiter is whitespace.
	r.TrimLeadingSpace = !unicode.IsSpace(delim)
	r.Comma = delim

	header, err := r.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("%s: file is empty", filepath.Base(path))
		}
		return nil, fmt.Errorf("read header: %w", err)
	}
	var records [][]string
	row := 0
	for {
		rec, err := r.Read()
		if err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return nil, fmt.Errorf("read row %d: %w", row+1, err)
		}
		row++
		records = append(records, rec)
	}
	return build(path, header, records, opt)
}

// build infers a type per column and assembles the table. A column is numeric
// when every non-empty cell parses as a number; otherwise it is categorical.
func build(path string, header []string, records [][]string, opt Options) (*Dataset, error) {
	ds := &Dataset{Path: path, Rows: len(records)}
	maxRows := opt.MaxRows
	if maxRows <= 0 || maxRows > len(records) {
		maxRows = len(records)
	}
	records = records[:maxRows]
	ds.Processed = len(records)
	if ds.Processed < ds.Rows {
		ds.Warnings = append(ds.Warnings, fmt.Sprintf("processed only %d/%d rows due to MaxRows", ds.Processed, ds.Rows))
	}
	for i := 0; i < len(records) && i < opt.SampleRows; i++ {
		s := make([]string, len(header))
		copy(s, records[i])
		ds.Samples = append(ds.Samples, s)
	}

	b := frame.NewBuilder(filepath.Base(path))
	used := map[string]bool{}
	for j, h := range header {
		raw := strings.TrimSpace(h)
		name, unit := splitUnits(raw)
		if name == "" {
			name = fmt.Sprintf("column_%d", j+1)
		}
		if used[name] && raw != "" && !used[raw] {
			name, unit = raw, ""
		}
		for k := 2; used[name]; k++ {
			name = fmt.Sprintf("%s_%d", name, k)
		}
		used[name] = true

		cells := make([]string, len(records))
		for i, rec := range records {
			if j < len(rec) {
				cells[i] = strings.TrimSpace(rec[j])
			}
		}
		b.AddColumn(inferColumn(name, unit, cells, opt))
	}
	t, err := b.Build()
	if err != nil {
		return nil, err
	}
	ds.Table = t
	return ds, nil
}

func inferColumn(name, unit string, cells []string, opt Options) *frame.Column {
	if unit == "" {
		for _, v := range cells {
			if strings.Contains(v, "%") {
				unit = "%"
				break
			}
		}
	}
	nums := make([]float64, len(cells))
	targetUnit := unit
	seen := 0
	for i, v := range cells {
		if v == "" {
			nums[i] = math.NaN()
			continue
		}
		x, ok := parseNumeric(v, unit, opt)
		if !ok {
			return categoricalColumn(name, cells)
		}
		if opt.UnitNormalize && unit != "" {
			if nx, nu, okc := normalizeUnit(x, unit, opt); okc {
				x = nx
				targetUnit = nu
			}
		}
		nums[i] = x
		seen++
	}
	if seen == 0 {
		return categoricalColumn(name, cells)
	}
	c := &frame.Column{Name: name, Kind: frame.Numeric, Unit: targetUnit, Num: make([]float64, len(nums)), Valid: make([]bool, len(nums))}
	for i, x := range nums {
		if math.IsNaN(x) {
			continue
		}
		c.Num[i] = x
		c.Valid[i] = true
	}
	return c
}

func categoricalColumn(name string, cells []string) *frame.Column {
	c := &frame.Column{Name: name, Kind: frame.Categorical, Cat: make([]string, len(cells)), Valid: make([]bool, len(cells))}
	for i, v := range cells {
		if v == "" {
			continue
		}
		c.Cat[i] = v
		c.Valid[i] = true
	}
	return c
}

func sniffDelimiter(path string) rune {
	if strings.HasSuffix(strings.ToLower(path), ".tsv") {
		return '\t'
	}
	return ','
}

func parseTimeMaybe(s string) (time.Time, bool) {
	layouts := []string{
		time.RFC3339, "2006-01-02", "2006/01/02", "02/01/2006", "01/02/2006",
		"2006-01-02 15:04", "2006-01-02 15:04:05", "1/2/2006 15:04", "1/2/2006 15:04:05",
	}
	for _, l := range layouts {
		if t, err := time.Parse(l, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

func parseNumeric(s string, unit string, opt Options) (float64, bool) {
	raw := strings.TrimSpace(s)
	if strings.Contains(raw, "%") {
		raw = strings.ReplaceAll(raw, "%", "")
	}
	raw = strings.ReplaceAll(raw, "\u00A0", " ")
	raw = strings.TrimSpace(raw)
	dec := opt.DecimalSeparator
	thou := opt.ThousandsSeparator
	if dec == 0 {
		cpos := strings.LastIndex(raw, ",")
		dpos := strings.LastIndex(raw, ".")
		if cpos >= 0 && dpos >= 0 {
			if cpos > dpos {
				dec = ','
				thou = '.'
			} else {
				dec = '.'
				thou = ','
			}
		} else if cpos >= 0 {
			dec = ','
		} else {
			dec = '.'
		}
	}
	if thou == 0 {
		for _, sep := range []rune{',', '.', ' '} {
			if sep != dec {
				raw = strings.ReplaceAll(raw, string(sep), "")
			}
		}
	} else if thou != dec {
		raw = strings.ReplaceAll(raw, string(thou), "")
	}
	if dec != '.' {
		raw = strings.ReplaceAll(raw, string(dec), ".")
	}
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}

func normalizeUnit(x float64, unit string, opt Options) (float64, string, bool) {
	if opt.UnitTargets == nil {
		return x, unit, false
	}
	target, ok := opt.UnitTargets[unit]
	if !ok {
		return x, unit, false
	}
	switch unit + ">" + target {
	case "g/L>mg/L":
		return x * 1000, target, true
	case "ug/L>mg/L":
		return x / 1000, target, true
	case "°F>°C":
		return (x - 32) * 5.0 / 9.0, target, true
	default:
		return x, unit, false
	}
}

var unitPatterns = []struct {
	re   *regexp.Regexp
	pick int
}{
	{regexp.MustCompile(`^(.*)\s*\(([^)]+)\)\s*$`), 2},  // e.g., Alpha (%)
	{regexp.MustCompile(`^(.*)\s*\[([^\]]+)\]\s*$`), 2}, // e.g., Mass [mg/L]
	{regexp.MustCompile(`^(.*?)[_\s-]+(mg/L|g/L|ug/L|°[CF]|Brix|%|ppm|ppb)$`), 2},
}

func splitUnits(name string) (clean string, unit string) {
	s := strings.TrimSpace(name)
	for _, p := range unitPatterns {
		if m := p.re.FindStringSubmatch(s); len(m) >= 3 {
			base := strings.TrimSpace(m[1])
			u := strings.TrimSpace(m[p.pick])
			if base != "" && u != "" {
				return base, u
			}
		}
	}
	return s, ""
}
