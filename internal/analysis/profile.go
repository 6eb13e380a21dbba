package analysis

import (
	"fmt"
	"math"
	"path/filepath"
	"sort"
	"strings"

	"gonum.org/v1/gonum/stat"

	"github.com/KaramelBytes/hypocheck/internal/frame"
	"github.com/KaramelBytes/hypocheck/internal/stats"
)

// Report is a markdown-friendly profile of a loaded dataset.
type Report struct {
	Name      string
	Sheet     string
	Rows      int
	Processed int
	Cols      []ColumnSummary
	Samples   [][]string
	Warnings  []string
	Groups    []GroupResult
	Corr      *CorrMatrix
}

// ColumnSummary captures inferred type and statistics per column.
type ColumnSummary struct {
	Name    string
	Kind    string // numeric|datetime|categorical|text
	Unit    string
	NonNull int
	Missing int
	Unique  int
	// Numeric stats
	Min    float64
	Max    float64
	Mean   float64
	Std    float64
	Median float64
	MAD    float64
	// Outliers (robust Z via MAD)
	OutliersCount    int
	OutliersMaxAbsZ  float64
	OutlierThreshold float64
	// Categorical top values
	TopValues    []CategoryCount
	ExampleTexts []string
}

type CategoryCount struct {
	Value string
	Count int
}

// GroupResult captures aggregated metrics per group key.
type GroupResult struct {
	Key     string
	Size    int
	Metrics map[string]NumSummary // by column name
}

type NumSummary struct {
	Count          int
	Min, Max, Mean float64
}

// CorrMatrix holds a symmetric Pearson correlation matrix across numeric columns.
type CorrMatrix struct {
	Columns []string
	Values  [][]float64 // row-major, Values[i][j]
}

// Describe profiles every column of ds.
func Describe(ds *Dataset, opt Options) *Report {
	t := ds.Table
	rep := &Report{
		Name:      filepath.Base(ds.Path),
		Sheet:     ds.Sheet,
		Rows:      ds.Rows,
		Processed: ds.Processed,
		Samples:   ds.Samples,
		Warnings:  append([]string(nil), ds.Warnings...),
	}
	var numeric []*frame.Column
	for _, c := range t.Columns() {
		rep.Cols = append(rep.Cols, summarize(c, opt))
		if c.Kind == frame.Numeric {
			numeric = append(numeric, c)
		}
	}
	if len(opt.GroupBy) > 0 {
		rep.Groups = groupBy(t, numeric, opt.GroupBy, rep)
	}
	if opt.Correlations && len(numeric) >= 2 {
		rep.Corr = correlations(numeric)
	}
	return rep
}

func summarize(c *frame.Column, opt Options) ColumnSummary {
	s := ColumnSummary{Name: c.Name, Unit: c.Unit}
	for i := 0; i < c.Len(); i++ {
		if c.Missing(i) {
			s.Missing++
		} else {
			s.NonNull++
		}
	}
	if c.Kind == frame.Numeric {
		s.Kind = "numeric"
		vals := frame.Values(c, nil)
		sum, err := stats.Describe(vals)
		if err != nil {
			return s
		}
		s.Min, s.Max, s.Mean, s.Std = sum.Min, sum.Max, sum.Mean, sum.Std
		s.Median, s.MAD = sum.Median, sum.MAD
		if opt.Outliers && len(vals) >= 8 {
			thr := opt.OutlierThreshold
			if thr <= 0 {
				thr = 3.5
			}
			s.OutlierThreshold = thr
			if sum.MAD > 0 {
				for _, v := range vals {
					az := math.Abs(0.6745 * (v - sum.Median) / sum.MAD)
					if az > thr {
						s.OutliersCount++
					}
					if az > s.OutliersMaxAbsZ {
						s.OutliersMaxAbsZ = az
					}
				}
			}
		}
		return s
	}

	counts := map[string]int{}
	dates, long := 0, false
	var examples []string
	for i := 0; i < c.Len(); i++ {
		if c.Missing(i) {
			continue
		}
		v := c.Cat[i]
		counts[v]++
		if _, ok := parseTimeMaybe(v); ok {
			dates++
		}
		if len(v) > 64 {
			long = true
		}
		if len(examples) < 3 {
			examples = append(examples, v)
		}
	}
	s.Unique = len(counts)
	switch {
	case s.NonNull > 0 && dates == s.NonNull:
		s.Kind = "datetime"
	case long:
		s.Kind = "text"
		s.ExampleTexts = examples
	default:
		s.Kind = "categorical"
		tops := make([]CategoryCount, 0, len(counts))
		for k, v := range counts {
			tops = append(tops, CategoryCount{Value: k, Count: v})
		}
		sort.Slice(tops, func(i, j int) bool {
			if tops[i].Count == tops[j].Count {
				return tops[i].Value < tops[j].Value
			}
			return tops[i].Count > tops[j].Count
		})
		if len(tops) > 8 {
			tops = tops[:8]
		}
		s.TopValues = tops
	}
	return s
}

func groupBy(t *frame.Table, numeric []*frame.Column, names []string, rep *Report) []GroupResult {
	var keys []*frame.Column
	for _, name := range names {
		c := lookupFold(t, name)
		if c == nil {
			rep.Warnings = append(rep.Warnings, fmt.Sprintf("group-by column %q not found", name))
			continue
		}
		keys = append(keys, c)
	}
	if len(keys) == 0 {
		return nil
	}
	type acc struct {
		size int
		sum  map[string]float64
		n    map[string]int
		min  map[string]float64
		max  map[string]float64
	}
	groups := map[string]*acc{}
	for i := 0; i < t.NumRows(); i++ {
		parts := make([]string, len(keys))
		for k, c := range keys {
			v := ""
			if !c.Missing(i) {
				v = c.Key(i)
			}
			parts[k] = fmt.Sprintf("%s=%s", c.Name, safeVal(v))
		}
		key := strings.Join(parts, " | ")
		g := groups[key]
		if g == nil {
			g = &acc{sum: map[string]float64{}, n: map[string]int{}, min: map[string]float64{}, max: map[string]float64{}}
			groups[key] = g
		}
		g.size++
		for _, c := range numeric {
			if c.Missing(i) {
				continue
			}
			x := c.Num[i]
			g.sum[c.Name] += x
			g.n[c.Name]++
			if m, ok := g.min[c.Name]; !ok || x < m {
				g.min[c.Name] = x
			}
			if m, ok := g.max[c.Name]; !ok || x > m {
				g.max[c.Name] = x
			}
		}
	}
	out := make([]GroupResult, 0, len(groups))
	for k, g := range groups {
		gr := GroupResult{Key: k, Size: g.size, Metrics: map[string]NumSummary{}}
		for name, n := range g.n {
			gr.Metrics[name] = NumSummary{Count: n, Min: g.min[name], Max: g.max[name], Mean: g.sum[name] / float64(n)}
		}
		out = append(out, gr)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Size == out[j].Size {
			return out[i].Key < out[j].Key
		}
		return out[i].Size > out[j].Size
	})
	if len(out) > 20 {
		out = out[:20]
	}
	return out
}

// correlations computes Pearson r over pairwise complete rows.
func correlations(cols []*frame.Column) *CorrMatrix {
	n := len(cols)
	m := &CorrMatrix{Columns: make([]string, n), Values: make([][]float64, n)}
	for i, c := range cols {
		m.Columns[i] = c.Name
		m.Values[i] = make([]float64, n)
		m.Values[i][i] = 1
	}
	for a := 0; a < n; a++ {
		for b := a + 1; b < n; b++ {
			rows := frame.Complete(cols[a], cols[b])
			var r float64
			if len(rows) >= 2 {
				r = stat.Correlation(frame.Values(cols[a], rows), frame.Values(cols[b], rows), nil)
			}
			if math.IsNaN(r) || math.IsInf(r, 0) {
				r = 0
			}
			r = math.Max(-1, math.Min(1, r))
			m.Values[a][b], m.Values[b][a] = r, r
		}
	}
	return m
}

func lookupFold(t *frame.Table, name string) *frame.Column {
	name = strings.TrimSpace(name)
	for _, c := range t.Columns() {
		if strings.EqualFold(c.Name, name) {
			return c
		}
	}
	return nil
}
