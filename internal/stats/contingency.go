package stats

import (
	"fmt"
	"math"
	"sort"

	"gonum.org/v1/gonum/stat/distuv"
)

// Contingency is a cross-tabulation of counts. Counts[i][j] is the number of
// observations with row label Rows[i] and column label Cols[j].
type Contingency struct {
	Rows   []string    `json:"rows"`
	Cols   []string    `json:"cols"`
	Counts [][]float64 `json:"counts"`
	N      float64     `json:"n"`
}

// Crosstab counts paired observations. Labels are sorted in both dimensions.
func Crosstab(rows, cols []string) (*Contingency, error) {
	if len(rows) != len(cols) {
		return nil, ErrMismatchedLength
	}
	ri := labelIndex(rows)
	ci := labelIndex(cols)
	ct := &Contingency{Rows: sortedLabels(ri), Cols: sortedLabels(ci)}
	for i, l := range ct.Rows {
		ri[l] = i
	}
	for j, l := range ct.Cols {
		ci[l] = j
	}
	ct.Counts = make([][]float64, len(ct.Rows))
	for i := range ct.Counts {
		ct.Counts[i] = make([]float64, len(ct.Cols))
	}
	for k := range rows {
		ct.Counts[ri[rows[k]]][ci[cols[k]]]++
		ct.N++
	}
	return ct, nil
}

// NewContingency wraps an explicit count matrix.
func NewContingency(rows, cols []string, counts [][]float64) (*Contingency, error) {
	if len(counts) != len(rows) {
		return nil, fmt.Errorf("%w: %d count rows for %d labels", ErrMismatchedLength, len(counts), len(rows))
	}
	ct := &Contingency{Rows: rows, Cols: cols, Counts: counts}
	for _, r := range counts {
		if len(r) != len(cols) {
			return nil, fmt.Errorf("%w: %d count cols for %d labels", ErrMismatchedLength, len(r), len(cols))
		}
		for _, v := range r {
			if v < 0 {
				return nil, fmt.Errorf("%w: negative count", ErrDomain)
			}
			ct.N += v
		}
	}
	return ct, nil
}

// ChiSquareResult is the outcome of a chi-squared test of independence.
type ChiSquareResult struct {
	Statistic float64
	DoF       int
	PValue    float64
	Expected  [][]float64
}

// ChiSquare runs Pearson's chi-squared test of independence on ct without
// Yates' continuity correction. A table with zero degrees of freedom yields
// a statistic of 0 and a p-value of 1.
func ChiSquare(ct *Contingency) (ChiSquareResult, error) {
	var res ChiSquareResult
	if ct == nil || ct.N == 0 {
		return res, ErrSampleSize
	}
	r, c := len(ct.Rows), len(ct.Cols)
	rowSum := make([]float64, r)
	colSum := make([]float64, c)
	for i := range ct.Counts {
		for j, v := range ct.Counts[i] {
			rowSum[i] += v
			colSum[j] += v
		}
	}
	res.Expected = make([][]float64, r)
	for i := range res.Expected {
		res.Expected[i] = make([]float64, c)
		for j := range res.Expected[i] {
			e := rowSum[i] * colSum[j] / ct.N
			if e == 0 {
				return res, fmt.Errorf("%w: expected frequency is zero at (%s, %s)", ErrDegenerate, ct.Rows[i], ct.Cols[j])
			}
			res.Expected[i][j] = e
		}
	}
	res.DoF = (r - 1) * (c - 1)
	if res.DoF <= 0 {
		res.DoF = 0
		res.PValue = 1
		return res, nil
	}
	for i := range ct.Counts {
		for j, o := range ct.Counts[i] {
			d := o - res.Expected[i][j]
			res.Statistic += d * d / res.Expected[i][j]
		}
	}
	chi := distuv.ChiSquared{K: float64(res.DoF)}
	res.PValue = clampProb(chi.Survival(res.Statistic))
	return res, nil
}

// CramersV returns sqrt((chi2/n) / (min(rows, cols) - 1)).
func CramersV(chi2, n float64, rows, cols int) (float64, error) {
	k := rows
	if cols < k {
		k = cols
	}
	if k < 2 || n <= 0 {
		return 0, fmt.Errorf("%w: %dx%d table", ErrDegenerate, rows, cols)
	}
	return math.Sqrt((chi2 / n) / float64(k-1)), nil
}

func labelIndex(labels []string) map[string]int {
	m := make(map[string]int)
	for _, l := range labels {
		m[l] = 0
	}
	return m
}

func sortedLabels(m map[string]int) []string {
	out := make([]string, 0, len(m))
	for l := range m {
		out = append(out, l)
	}
	sort.Strings(out)
	return out
}
