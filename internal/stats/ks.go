package stats

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/stat/distuv"
)

// KSNormal runs a one-sample Kolmogorov-Smirnov test of x against the standard
// normal distribution. It returns the D statistic and the two-sided p-value.
//
// The p-value uses the limiting Kolmogorov distribution evaluated at
// (sqrt(n) + 0.12 + 0.11/sqrt(n)) * D, Stephens' correction for finite n.
func KSNormal(x []float64) (d, p float64, err error) {
	n := len(x)
	if n == 0 {
		return 0, 0, ErrSampleSize
	}
	s := make([]float64, n)
	copy(s, x)
	for _, v := range s {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return 0, 0, ErrDegenerate
		}
	}
	sort.Float64s(s)

	fn := float64(n)
	for i, v := range s {
		cdf := distuv.UnitNormal.CDF(v)
		if up := float64(i+1)/fn - cdf; up > d {
			d = up
		}
		if lo := cdf - float64(i)/fn; lo > d {
			d = lo
		}
	}
	sn := math.Sqrt(fn)
	p = kolmogorovQ((sn + 0.12 + 0.11/sn) * d)
	return d, clampProb(p), nil
}

// kolmogorovQ is the survival function of the Kolmogorov distribution.
func kolmogorovQ(lambda float64) float64 {
	if lambda <= 0 {
		return 1
	}
	if lambda < 1.18 {
		y := math.Exp(-math.Pi * math.Pi / (8 * lambda * lambda))
		y9 := math.Pow(y, 9)
		cdf := math.Sqrt(2*math.Pi) / lambda * (y + y9 + math.Pow(y, 25) + math.Pow(y, 49))
		return 1 - cdf
	}
	x := math.Exp(-2 * lambda * lambda)
	return 2 * (x - math.Pow(x, 4) + math.Pow(x, 9) - math.Pow(x, 16))
}

func clampProb(p float64) float64 {
	switch {
	case p < 0:
		return 0
	case p > 1:
		return 1
	default:
		return p
	}
}
