package stats

import (
	mstats "github.com/montanaflynn/stats"
)

// Summary holds descriptive statistics of a numeric sample.
type Summary struct {
	N      int
	Mean   float64
	Std    float64
	Min    float64
	Max    float64
	Median float64
	MAD    float64
}

// Describe summarizes x. Std is the sample standard deviation (n-1) and is
// zero for a single value.
func Describe(x []float64) (Summary, error) {
	s := Summary{N: len(x)}
	if len(x) == 0 {
		return s, ErrSampleSize
	}
	data := mstats.Float64Data(x)
	var err error
	if s.Mean, err = data.Mean(); err != nil {
		return s, err
	}
	if s.Min, err = data.Min(); err != nil {
		return s, err
	}
	if s.Max, err = data.Max(); err != nil {
		return s, err
	}
	if s.Median, err = data.Median(); err != nil {
		return s, err
	}
	if s.MAD, err = data.MedianAbsoluteDeviation(); err != nil {
		return s, err
	}
	if len(x) > 1 {
		if s.Std, err = data.StandardDeviationSample(); err != nil {
			return s, err
		}
	}
	return s, nil
}
