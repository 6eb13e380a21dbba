package stats

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/stat/distuv"
)

// normalQuantiles returns n evenly spaced standard normal quantiles.
func normalQuantiles(n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = distuv.UnitNormal.Quantile((float64(i) + 0.5) / float64(n))
	}
	return out
}

// exponentialQuantiles returns n evenly spaced Exp(1) quantiles.
func exponentialQuantiles(n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = -math.Log(1 - (float64(i)+0.5)/float64(n))
	}
	return out
}

func TestKSNormal(t *testing.T) {
	d, p, err := KSNormal(normalQuantiles(400))
	require.NoError(t, err)
	assert.Less(t, d, 0.01)
	assert.Greater(t, p, 0.05)

	d, p, err = KSNormal(exponentialQuantiles(400))
	require.NoError(t, err)
	assert.Greater(t, d, 0.4)
	assert.Less(t, p, 0.05)

	_, _, err = KSNormal(nil)
	assert.ErrorIs(t, err, ErrSampleSize)
	_, _, err = KSNormal([]float64{1, math.NaN()})
	assert.ErrorIs(t, err, ErrDegenerate)
}

func TestKSNormalSinglePoint(t *testing.T) {
	d, p, err := KSNormal([]float64{0})
	require.NoError(t, err)
	assert.InDelta(t, 0.5, d, 1e-12)
	assert.GreaterOrEqual(t, p, 0.0)
	assert.LessOrEqual(t, p, 1.0)
}

func TestKolmogorovQBranchesAgree(t *testing.T) {
	// Both series converge near the switch point.
	lo := kolmogorovQ(1.1799999)
	hi := kolmogorovQ(1.18)
	assert.InDelta(t, lo, hi, 1e-4)
	assert.Equal(t, 1.0, kolmogorovQ(0))
	assert.Less(t, kolmogorovQ(3), 1e-6)
}

func TestLog1p(t *testing.T) {
	out, err := Log1p([]float64{0, math.E - 1})
	require.NoError(t, err)
	assert.InDelta(t, 0, out[0], 1e-12)
	assert.InDelta(t, 1, out[1], 1e-12)

	_, err = Log1p([]float64{-1})
	assert.ErrorIs(t, err, ErrDomain)
}

func TestYeoJohnsonLambdaFormula(t *testing.T) {
	x := []float64{-2, -0.5, 0, 0.5, 3}
	cases := []struct {
		lambda float64
		want   []float64
	}{
		{1, []float64{-2, -0.5, 0, 0.5, 3}},
		{0, []float64{-(math.Pow(3, 2) - 1) / 2, -(math.Pow(1.5, 2) - 1) / 2, 0, math.Log1p(0.5), math.Log1p(3)}},
		{2, []float64{-math.Log1p(2), -math.Log1p(0.5), 0, (math.Pow(1.5, 2) - 1) / 2, (math.Pow(4, 2) - 1) / 2}},
	}
	for _, tc := range cases {
		got := YeoJohnsonLambda(x, tc.lambda)
		for i := range got {
			assert.InDelta(t, tc.want[i], got[i], 1e-9, "lambda=%v i=%d", tc.lambda, i)
		}
	}
}

func TestYeoJohnsonReducesSkew(t *testing.T) {
	x := exponentialQuantiles(200)
	y, lambda, err := YeoJohnson(x)
	require.NoError(t, err)
	require.Len(t, y, len(x))
	assert.Less(t, lambda, 1.0)
	assert.Less(t, math.Abs(Skewness(y)), math.Abs(Skewness(x)))
	// the fitted lambda is a local optimum of the likelihood
	assert.GreaterOrEqual(t, yeoJohnsonLLF(x, lambda)+1e-6, yeoJohnsonLLF(x, lambda+0.1))
	assert.GreaterOrEqual(t, yeoJohnsonLLF(x, lambda)+1e-6, yeoJohnsonLLF(x, lambda-0.1))

	_, _, err = YeoJohnson([]float64{2, 2, 2})
	assert.ErrorIs(t, err, ErrDegenerate)
}

func TestPointBiserial(t *testing.T) {
	codes := []int{0, 0, 0, 0, 1, 1, 1, 1}
	x := []float64{1, 2, 1.5, 2.2, 5, 6, 5.5, 6.1}
	r, p, err := PointBiserial(codes, x)
	require.NoError(t, err)
	assert.Greater(t, r, 0.9)
	assert.Less(t, p, 0.05)

	_, _, err = PointBiserial([]int{0, 1}, []float64{1})
	assert.ErrorIs(t, err, ErrMismatchedLength)
	_, _, err = PointBiserial([]int{0, 0, 0}, []float64{1, 2, 3})
	assert.ErrorIs(t, err, ErrDegenerate)
}

func TestPearsonMatchesTDistribution(t *testing.T) {
	x := []float64{1, 2, 3, 4, 5, 6}
	y := []float64{2, 1, 4, 3, 6, 5}
	r, p, err := Pearson(x, y)
	require.NoError(t, err)
	df := 4.0
	tt := r * math.Sqrt(df/(1-r*r))
	want := 2 * distuv.StudentsT{Mu: 0, Sigma: 1, Nu: df}.Survival(tt)
	assert.InDelta(t, want, p, 1e-12)
}

func TestLevene(t *testing.T) {
	narrow := []float64{9.9, 10.1, 10, 9.95, 10.05, 10.02, 9.98, 10}
	wide := []float64{2, 18, 5, 15, 8, 12, 0, 20}
	w, p, err := Levene(narrow, wide)
	require.NoError(t, err)
	assert.Greater(t, w, 0.0)
	assert.Less(t, p, 0.05)

	same := []float64{1, 2, 3, 4, 5, 6}
	shifted := []float64{11, 12, 13, 14, 15, 16}
	w, p, err = Levene(same, shifted)
	require.NoError(t, err)
	assert.InDelta(t, 0, w, 1e-12)
	assert.InDelta(t, 1, p, 1e-9)

	_, _, err = Levene(same)
	assert.ErrorIs(t, err, ErrSampleSize)
	_, _, err = Levene([]float64{1, 1}, []float64{2, 2})
	assert.ErrorIs(t, err, ErrDegenerate)
}

func TestKruskalWallis(t *testing.T) {
	// Known value: groups without ties, H = 12/(N(N+1)) sum(R^2/n) - 3(N+1).
	a := []float64{1, 2, 3}
	b := []float64{4, 5, 6}
	h, p, err := KruskalWallis(a, b)
	require.NoError(t, err)
	want := 12.0/(6*7)*(36.0/3+225.0/3) - 3*7
	assert.InDelta(t, want, h, 1e-12)
	assert.InDelta(t, distuv.ChiSquared{K: 1}.Survival(want), p, 1e-12)

	// Identical groups give H = 0.
	h, p, err = KruskalWallis([]float64{1, 2, 3}, []float64{1, 2, 3})
	require.NoError(t, err)
	assert.InDelta(t, 0, h, 1e-12)
	assert.InDelta(t, 1, p, 1e-9)

	_, _, err = KruskalWallis([]float64{4, 4}, []float64{4, 4})
	assert.ErrorIs(t, err, ErrDegenerate)
	_, _, err = KruskalWallis([]float64{1}, nil)
	assert.ErrorIs(t, err, ErrSampleSize)
}

func TestChiSquarePerfectAssociation(t *testing.T) {
	ct, err := NewContingency([]string{"a", "b"}, []string{"x", "y"}, [][]float64{{50, 0}, {0, 50}})
	require.NoError(t, err)
	res, err := ChiSquare(ct)
	require.NoError(t, err)
	assert.InDelta(t, 100, res.Statistic, 1e-9)
	assert.Equal(t, 1, res.DoF)
	assert.Less(t, res.PValue, 0.05)

	v, err := CramersV(res.Statistic, ct.N, len(ct.Rows), len(ct.Cols))
	require.NoError(t, err)
	assert.InDelta(t, 1, v, 1e-12)
}

func TestCrosstabSortsLabels(t *testing.T) {
	ct, err := Crosstab([]string{"b", "a", "b", "a"}, []string{"y", "y", "x", "x"})
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, ct.Rows)
	assert.Equal(t, []string{"x", "y"}, ct.Cols)
	assert.Equal(t, [][]float64{{1, 1}, {1, 1}}, ct.Counts)
	assert.Equal(t, 4.0, ct.N)

	res, err := ChiSquare(ct)
	require.NoError(t, err)
	assert.InDelta(t, 0, res.Statistic, 1e-12)
	assert.InDelta(t, 1, res.PValue, 1e-12)

	_, err = CramersV(0, 4, 1, 2)
	assert.ErrorIs(t, err, ErrDegenerate)
}

func TestChiSquareZeroDoF(t *testing.T) {
	ct, err := Crosstab([]string{"a", "a"}, []string{"x", "y"})
	require.NoError(t, err)
	res, err := ChiSquare(ct)
	require.NoError(t, err)
	assert.Equal(t, 0, res.DoF)
	assert.Equal(t, 1.0, res.PValue)
}

func TestDescribe(t *testing.T) {
	s, err := Describe([]float64{1, 2, 3, 4, 100})
	require.NoError(t, err)
	assert.Equal(t, 5, s.N)
	assert.InDelta(t, 22, s.Mean, 1e-12)
	assert.Equal(t, 3.0, s.Median)
	assert.Equal(t, 1.0, s.MAD)
	assert.Equal(t, 1.0, s.Min)
	assert.Equal(t, 100.0, s.Max)

	_, err = Describe(nil)
	assert.ErrorIs(t, err, ErrSampleSize)
}

func TestSkewnessAndKurtosisSigns(t *testing.T) {
	x := exponentialQuantiles(100)
	assert.Greater(t, Skewness(x), 1.0)
	assert.Greater(t, ExcessKurtosis(x), 0.0)
	sym := normalQuantiles(101)
	assert.InDelta(t, 0, Skewness(sym), 1e-9)
}
