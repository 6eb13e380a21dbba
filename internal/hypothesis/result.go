package hypothesis

import (
	"github.com/KaramelBytes/hypocheck/internal/stats"
)

// Alpha is the fixed significance threshold. A p-value equal to Alpha does
// not reject.
const Alpha = 0.05

// Conclusion is the decision on the null hypothesis.
type Conclusion int

const (
	FailToReject Conclusion = iota
	Reject
)

// Decide returns Reject iff p < Alpha.
func Decide(p float64) Conclusion {
	if p < Alpha {
		return Reject
	}
	return FailToReject
}

func (c Conclusion) String() string {
	if c == Reject {
		return "reject"
	}
	return "fail-to-reject"
}

func (c Conclusion) MarshalText() ([]byte, error) { return []byte(c.String()), nil }

// Test names the hypothesis test that produced a result.
type Test string

const (
	TestNormality     Test = "kolmogorov-smirnov"
	TestLevene        Test = "levene"
	TestPointBiserial Test = "point-biserial"
	TestKruskalWallis Test = "kruskal-wallis"
	TestCramersV      Test = "cramers-v"
)

// Title is the human label used in reports.
func (t Test) Title() string {
	switch t {
	case TestNormality:
		return "Kolmogorov-Smirnov Test"
	case TestLevene:
		return "Levene Test"
	case TestPointBiserial:
		return "Point Biserial Test"
	case TestKruskalWallis:
		return "Kruskal-Wallis Test"
	case TestCramersV:
		return "Cramer's V"
	}
	return string(t)
}

// Result is the outcome of a single test.
type Result struct {
	Test           Test       `json:"test"`
	Variables      []string   `json:"variables"`
	Label          string     `json:"label,omitempty"`
	Groups         []string   `json:"groups,omitempty"`
	Transform      Transform  `json:"transform"`
	Lambda         float64    `json:"lambda,omitempty"`
	N              int        `json:"n"`
	Statistic      float64    `json:"statistic"`
	PValue         float64    `json:"p_value"`
	Conclusion     Conclusion `json:"conclusion"`
	Interpretation string     `json:"interpretation"`
	Chart          string     `json:"chart,omitempty"`
	Warnings       []string   `json:"warnings,omitempty"`
	// Error is set on an advisory diagnostic that could not be computed.
	Error          string     `json:"error,omitempty"`
}

// Rejected reports whether the null hypothesis was rejected.
func (r *Result) Rejected() bool { return r.Conclusion == Reject }

func (r *Result) decide(reject, keep string) {
	r.Conclusion = Decide(r.PValue)
	if r.Conclusion == Reject {
		r.Interpretation = reject
	} else {
		r.Interpretation = keep
	}
}

// BiserialResult is a point-biserial correlation with optional assumption
// diagnostics. Diagnostics never change the main result.
type BiserialResult struct {
	Result
	// Classes maps code to label: Classes[0] was encoded as 0.
	Classes     []string  `json:"classes"`
	Diagnostics []*Result `json:"diagnostics,omitempty"`
}

// GroupShape holds descriptive moments for one group.
type GroupShape struct {
	Label    string  `json:"label"`
	N        int     `json:"n"`
	Skewness float64 `json:"skewness"`
	Kurtosis float64 `json:"kurtosis"`
}

// RankResult is a Kruskal-Wallis test with per-group shape descriptors.
type RankResult struct {
	Result
	Shapes []GroupShape `json:"shapes"`
}

// Strength buckets Cramér's V.
type Strength string

const (
	Negligible Strength = "negligible"
	Weak       Strength = "weak"
	Moderate   Strength = "moderate"
	Strong     Strength = "strong"
)

// StrengthOf classifies V with the usual 0.1/0.3/0.5 cut points.
func StrengthOf(v float64) Strength {
	switch {
	case v < 0.1:
		return Negligible
	case v < 0.3:
		return Weak
	case v < 0.5:
		return Moderate
	}
	return Strong
}

// AssociationResult is a chi-squared independence test with Cramér's V.
// Statistic holds chi-squared; CramersV holds the effect size.
type AssociationResult struct {
	Result
	CramersV float64            `json:"cramers_v"`
	Strength Strength           `json:"strength"`
	DoF      int                `json:"dof"`
	Table    *stats.Contingency `json:"contingency,omitempty"`
}
