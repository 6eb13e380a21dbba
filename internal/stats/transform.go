package stats

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/optimize"
	"gonum.org/v1/gonum/stat"
)

// Log1p returns log(1+v) for every value. Values <= -1 are rejected.
func Log1p(x []float64) ([]float64, error) {
	out := make([]float64, len(x))
	for i, v := range x {
		if v <= -1 || math.IsNaN(v) {
			return nil, fmt.Errorf("%w: log1p(%g)", ErrDomain, v)
		}
		out[i] = math.Log1p(v)
	}
	return out, nil
}

// YeoJohnson applies the Yeo-Johnson power transform with the lambda that
// maximizes the normal log-likelihood of the transformed data.
func YeoJohnson(x []float64) (y []float64, lambda float64, err error) {
	if len(x) < 2 {
		return nil, 0, ErrSampleSize
	}
	first := x[0]
	constant := true
	for _, v := range x {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return nil, 0, ErrDegenerate
		}
		if v != first {
			constant = false
		}
	}
	if constant {
		return nil, 0, ErrDegenerate
	}

	problem := optimize.Problem{
		Func: func(l []float64) float64 {
			llf := yeoJohnsonLLF(x, l[0])
			if math.IsNaN(llf) {
				return math.Inf(1)
			}
			return -llf
		},
	}
	res, err := optimize.Minimize(problem, []float64{0}, nil, &optimize.NelderMead{})
	if res == nil || len(res.X) == 0 || math.IsNaN(res.X[0]) || math.IsInf(res.X[0], 0) {
		if err == nil {
			err = ErrDegenerate
		}
		return nil, 0, fmt.Errorf("yeo-johnson lambda search: %w", err)
	}
	lambda = res.X[0]
	return YeoJohnsonLambda(x, lambda), lambda, nil
}

// YeoJohnsonLambda applies the Yeo-Johnson transform with a fixed lambda.
func YeoJohnsonLambda(x []float64, lambda float64) []float64 {
	const eps = 1e-12
	out := make([]float64, len(x))
	for i, v := range x {
		if v >= 0 {
			if math.Abs(lambda) < eps {
				out[i] = math.Log1p(v)
			} else {
				out[i] = (math.Pow(v+1, lambda) - 1) / lambda
			}
			continue
		}
		if math.Abs(lambda-2) < eps {
			out[i] = -math.Log1p(-v)
		} else {
			out[i] = -(math.Pow(1-v, 2-lambda) - 1) / (2 - lambda)
		}
	}
	return out
}

// yeoJohnsonLLF is the profile log-likelihood of lambda under normality.
func yeoJohnsonLLF(x []float64, lambda float64) float64 {
	n := float64(len(x))
	y := YeoJohnsonLambda(x, lambda)
	v := stat.Variance(y, nil) * (n - 1) / n
	if v <= 0 {
		return math.Inf(-1)
	}
	var jac float64
	for _, xv := range x {
		s := 1.0
		if xv < 0 {
			s = -1
		}
		jac += s * math.Log1p(math.Abs(xv))
	}
	return -n/2*math.Log(v) + (lambda-1)*jac
}
