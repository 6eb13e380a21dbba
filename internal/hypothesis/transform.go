package hypothesis

import (
	"fmt"
	"strings"

	"github.com/KaramelBytes/hypocheck/internal/stats"
)

// Transform selects the variable transform applied before a test.
type Transform int

const (
	Identity Transform = iota
	YeoJohnson
	Log1p
)

func (t Transform) String() string {
	switch t {
	case Identity:
		return "identity"
	case YeoJohnson:
		return "yeo-johnson"
	case Log1p:
		return "log1p"
	default:
		return fmt.Sprintf("transform(%d)", int(t))
	}
}

func (t Transform) MarshalText() ([]byte, error) { return []byte(t.String()), nil }

func (t *Transform) UnmarshalText(b []byte) error {
	v, err := ParseTransform(string(b))
	if err != nil {
		return err
	}
	*t = v
	return nil
}

// TransformFromFlags maps the two boolean switches used on the command line.
// Setting both is rejected.
func TransformFromFlags(yeoJohnson, log1p bool) (Transform, error) {
	switch {
	case yeoJohnson && log1p:
		return Identity, &InvalidConfigurationError{Option: "transform", Reason: "yeo-johnson and log1p cannot both be set"}
	case yeoJohnson:
		return YeoJohnson, nil
	case log1p:
		return Log1p, nil
	}
	return Identity, nil
}

// ParseTransform accepts identity|none, yeo-johnson|yeojohnson and log1p|log.
func ParseTransform(s string) (Transform, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "identity", "none":
		return Identity, nil
	case "yeo-johnson", "yeojohnson":
		return YeoJohnson, nil
	case "log1p", "log":
		return Log1p, nil
	}
	return Identity, &InvalidConfigurationError{Option: "transform", Reason: fmt.Sprintf("unknown transform %q", s)}
}

func (t Transform) validate() error {
	switch t {
	case Identity, YeoJohnson, Log1p:
		return nil
	}
	return &InvalidConfigurationError{Option: "transform", Reason: fmt.Sprintf("unknown transform %d", int(t))}
}

// apply returns a transformed copy of x and, for Yeo-Johnson, the fitted
// lambda. Identity returns x unchanged.
func (t Transform) apply(x []float64) ([]float64, float64, error) {
	switch t {
	case YeoJohnson:
		return stats.YeoJohnson(x)
	case Log1p:
		y, err := stats.Log1p(x)
		return y, 0, err
	case Identity:
		return x, 0, nil
	}
	return nil, 0, t.validate()
}
