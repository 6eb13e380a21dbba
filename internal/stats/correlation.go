package stats

import (
	"math"

	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/gonum/stat/distuv"
)

// PointBiserial returns the correlation between a 0/1 coded variable and a
// continuous one, with the two-sided p-value from Student's t on n-2 df.
func PointBiserial(codes []int, x []float64) (r, p float64, err error) {
	if len(codes) != len(x) {
		return 0, 0, ErrMismatchedLength
	}
	c := make([]float64, len(codes))
	for i, v := range codes {
		c[i] = float64(v)
	}
	return Pearson(c, x)
}

// Pearson returns the Pearson correlation of x and y and its two-sided p-value.
func Pearson(x, y []float64) (r, p float64, err error) {
	if len(x) != len(y) {
		return 0, 0, ErrMismatchedLength
	}
	n := len(x)
	if n < 2 {
		return 0, 0, ErrSampleSize
	}
	if isConstant(x) || isConstant(y) {
		return 0, 0, ErrDegenerate
	}
	r = stat.Correlation(x, y, nil)
	if math.IsNaN(r) {
		return 0, 0, ErrDegenerate
	}
	r = math.Max(-1, math.Min(1, r))
	if n == 2 {
		return r, 1, nil
	}
	if math.Abs(r) == 1 {
		return r, 0, nil
	}
	df := float64(n - 2)
	t := r * math.Sqrt(df/(1-r*r))
	dist := distuv.StudentsT{Mu: 0, Sigma: 1, Nu: df}
	return r, clampProb(2 * dist.Survival(math.Abs(t))), nil
}

func isConstant(x []float64) bool {
	for _, v := range x[1:] {
		if v != x[0] {
			return false
		}
	}
	return true
}
