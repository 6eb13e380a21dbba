package stats

import (
	"fmt"
	"sort"

	mstats "github.com/montanaflynn/stats"
	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/gonum/stat/distuv"
)

// Levene tests the null hypothesis that all groups have equal variances.
// Deviations are taken from each group's median (the Brown-Forsythe variant),
// which stays robust when the data are not normal.
func Levene(groups ...[]float64) (w, p float64, err error) {
	k := len(groups)
	if k < 2 {
		return 0, 0, ErrSampleSize
	}
	var total int
	z := make([][]float64, k)
	zbar := make([]float64, k)
	var grand float64
	for i, g := range groups {
		if len(g) == 0 {
			return 0, 0, fmt.Errorf("%w: group %d is empty", ErrSampleSize, i)
		}
		med, err := mstats.Median(mstats.Float64Data(g))
		if err != nil {
			return 0, 0, fmt.Errorf("median of group %d: %w", i, err)
		}
		z[i] = make([]float64, len(g))
		for j, v := range g {
			d := v - med
			if d < 0 {
				d = -d
			}
			z[i][j] = d
			grand += d
		}
		zbar[i] = stat.Mean(z[i], nil)
		total += len(g)
	}
	if total-k <= 0 {
		return 0, 0, ErrSampleSize
	}
	grand /= float64(total)

	var between, within float64
	for i := range z {
		d := zbar[i] - grand
		between += float64(len(z[i])) * d * d
		for _, v := range z[i] {
			e := v - zbar[i]
			within += e * e
		}
	}
	if within == 0 {
		return 0, 0, fmt.Errorf("%w: zero within-group spread", ErrDegenerate)
	}
	df1 := float64(k - 1)
	df2 := float64(total - k)
	w = (df2 / df1) * between / within
	f := distuv.F{D1: df1, D2: df2}
	return w, clampProb(f.Survival(w)), nil
}

// KruskalWallis runs the Kruskal-Wallis H test on two or more groups, with the
// standard correction for ties.
func KruskalWallis(groups ...[]float64) (h, p float64, err error) {
	k := len(groups)
	if k < 2 {
		return 0, 0, ErrSampleSize
	}
	type obs struct {
		v     float64
		group int
	}
	var pooled []obs
	for i, g := range groups {
		if len(g) == 0 {
			return 0, 0, fmt.Errorf("%w: group %d is empty", ErrSampleSize, i)
		}
		for _, v := range g {
			pooled = append(pooled, obs{v: v, group: i})
		}
	}
	sort.SliceStable(pooled, func(a, b int) bool { return pooled[a].v < pooled[b].v })

	n := len(pooled)
	rankSum := make([]float64, k)
	var ties float64
	for i := 0; i < n; {
		j := i + 1
		for j < n && pooled[j].v == pooled[i].v {
			j++
		}
		// ranks i+1..j share their average
		avg := float64(i+1+j) / 2
		for m := i; m < j; m++ {
			rankSum[pooled[m].group] += avg
		}
		if t := float64(j - i); t > 1 {
			ties += t*t*t - t
		}
		i = j
	}

	fn := float64(n)
	for i, g := range groups {
		h += rankSum[i] * rankSum[i] / float64(len(g))
	}
	h = 12/(fn*(fn+1))*h - 3*(fn+1)
	c := 1 - ties/(fn*fn*fn-fn)
	if c <= 0 {
		return 0, 0, fmt.Errorf("%w: all values are identical", ErrDegenerate)
	}
	h /= c
	if h < 0 {
		// rounding on identical rank sums
		h = 0
	}
	chi := distuv.ChiSquared{K: float64(k - 1)}
	return h, clampProb(chi.Survival(h)), nil
}

// Skewness is the bias-corrected sample skewness (G1).
func Skewness(x []float64) float64 { return stat.Skew(x, nil) }

// ExcessKurtosis is the bias-corrected sample excess kurtosis (G2).
func ExcessKurtosis(x []float64) float64 { return stat.ExKurtosis(x, nil) }
