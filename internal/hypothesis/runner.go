// Package hypothesis runs the exploratory hypothesis tests: normality,
// variance homogeneity, point-biserial correlation, rank comparison of two
// groups and categorical association. Each call normalizes its dataset, applies
// an optional transform, delegates the statistic to package stats and returns
// a structured result. The runner keeps no state between calls.
package hypothesis

import (
	"fmt"
	"math"
	"sort"

	"go.uber.org/zap"

	"github.com/KaramelBytes/hypocheck/internal/frame"
	"github.com/KaramelBytes/hypocheck/internal/stats"
)

// DefaultBins is the histogram bin count when PlotOptions.Bins is unset.
const DefaultBins = 30

// Runner executes hypothesis tests. The zero value is ready to use: it logs
// nowhere and draws no charts.
type Runner struct {
	Logger  *zap.Logger
	Charter Charter
}

// Option configures a Runner.
type Option func(*Runner)

// WithLogger sets the logger used for step and warning messages.
func WithLogger(l *zap.Logger) Option { return func(r *Runner) { r.Logger = l } }

// WithCharter sets the chart renderer used when plotting is requested.
func WithCharter(c Charter) Option { return func(r *Runner) { r.Charter = c } }

// New returns a Runner with a no-op logger unless overridden.
func New(opts ...Option) *Runner {
	r := &Runner{Logger: zap.NewNop()}
	for _, o := range opts {
		o(r)
	}
	return r
}

func (r *Runner) log() *zap.Logger {
	if r == nil || r.Logger == nil {
		return zap.NewNop()
	}
	return r.Logger
}

// PlotOptions controls the optional chart drawn after a test.
type PlotOptions struct {
	Enabled bool
	// Bins is the histogram bin count; zero means DefaultBins.
	Bins int
	// Color names a column whose distinct values become separate series.
	Color string
	// Norm is "percent" (default) or "count" for category bars.
	Norm string
}

func (p PlotOptions) bins() int {
	if p.Bins <= 0 {
		return DefaultBins
	}
	return p.Bins
}

func (p PlotOptions) norm() string {
	if p.Norm == "" {
		return "percent"
	}
	return p.Norm
}

func (p PlotOptions) check(t *frame.Table) error {
	if !p.Enabled {
		return nil
	}
	if p.Color != "" {
		if _, err := t.Column(p.Color); err != nil {
			return err
		}
	}
	switch p.norm() {
	case "percent", "count":
	default:
		return &InvalidConfigurationError{Option: "histnorm", Reason: fmt.Sprintf("unknown normalization %q", p.Norm)}
	}
	return nil
}

// NormalityOptions configures Normality.
type NormalityOptions struct {
	Transform Transform
	Plot      PlotOptions
}

// BiserialOptions configures PointBiserial.
type BiserialOptions struct {
	Transform Transform
	// ValidateAssumptions adds per-group normality and a Levene test as
	// advisory diagnostics. A diagnostic that cannot be computed carries
	// Error instead of aborting the correlation.
	ValidateAssumptions bool
}

// AssociationOptions configures CategoricalAssociation.
type AssociationOptions struct {
	// ShowContingency attaches the cross-tabulation to the result.
	ShowContingency bool
	Plot            PlotOptions
}

// Normality tests whether variable follows a standard normal distribution
// after the chosen transform, using a one-sample Kolmogorov-Smirnov test.
func (r *Runner) Normality(src frame.Source, variable string, opt NormalityOptions) (*Result, error) {
	if err := opt.Transform.validate(); err != nil {
		return nil, err
	}
	t, err := frame.Normalize(src)
	if err != nil {
		return nil, err
	}
	col, err := t.Numeric(variable)
	if err != nil {
		return nil, err
	}
	if err := opt.Plot.check(t); err != nil {
		return nil, err
	}
	rows := frame.Complete(col)
	r.log().Debug("normality", zap.String("variable", variable), zap.Int("n", len(rows)), zap.Stringer("transform", opt.Transform))

	res, y, err := r.ks(frame.Values(col, rows), opt.Transform)
	if err != nil {
		return nil, fmt.Errorf("normality of %s: %w", variable, err)
	}
	res.Variables = []string{variable}
	if opt.Plot.Enabled {
		res.Chart = r.histogram(t, variable, rows, y, opt.Plot)
	}
	return res, nil
}

// GroupVariance runs Levene's test on numeric split by the first two distinct
// values of grouping.
func (r *Runner) GroupVariance(src frame.Source, grouping, numeric string) (*Result, error) {
	t, err := frame.Normalize(src)
	if err != nil {
		return nil, err
	}
	s, err := r.split(t, grouping, numeric)
	if err != nil {
		return nil, err
	}
	return r.levene(s)
}

// PointBiserial correlates a binary variable with a numeric one. The binary
// labels are encoded in first-seen order.
func (r *Runner) PointBiserial(src frame.Source, binary, numeric string, opt BiserialOptions) (*BiserialResult, error) {
	if err := opt.Transform.validate(); err != nil {
		return nil, err
	}
	t, err := frame.Normalize(src)
	if err != nil {
		return nil, err
	}
	s, err := r.split(t, binary, numeric)
	if err != nil {
		return nil, err
	}

	res := &BiserialResult{}
	if opt.ValidateAssumptions {
		for k, label := range s.labels {
			d, _, err := r.ks(s.groups[k], opt.Transform)
			if err != nil {
				d = r.failedDiagnostic(TestNormality, err, zap.String("group", label))
				d.Transform = opt.Transform
				d.N = len(s.groups[k])
			}
			d.Variables = []string{numeric}
			d.Label = label
			res.Diagnostics = append(res.Diagnostics, d)
		}
		lv, err := r.levene(s)
		if err != nil {
			lv = r.failedDiagnostic(TestLevene, err)
			lv.Variables = []string{binary, numeric}
			lv.Groups = s.labels
			lv.N = len(s.values)
		}
		res.Diagnostics = append(res.Diagnostics, lv)
	}

	codes, classes := frame.Encode(s.keys)
	x, lambda, err := opt.Transform.apply(s.values)
	if err != nil {
		return nil, fmt.Errorf("%s transform of %s: %w", opt.Transform, numeric, err)
	}
	r.log().Debug("point-biserial", zap.String("binary", binary), zap.String("numeric", numeric), zap.Int("n", len(x)), zap.Strings("classes", classes))
	corr, p, err := stats.PointBiserial(codes, x)
	if err != nil {
		return nil, fmt.Errorf("point-biserial %s ~ %s: %w", numeric, binary, err)
	}
	res.Result = Result{
		Test:      TestPointBiserial,
		Variables: []string{binary, numeric},
		Groups:    s.labels,
		Transform: opt.Transform,
		Lambda:    lambda,
		N:         len(x),
		Statistic: corr,
		PValue:    p,
		Warnings:  s.warnings(),
	}
	res.Classes = classes
	res.decide("the variables are correlated", "the variables are not correlated")
	return res, nil
}

// RankGroups compares the two groups of numeric defined by grouping with the
// Kruskal-Wallis H test and reports each group's shape.
func (r *Runner) RankGroups(src frame.Source, grouping, numeric string) (*RankResult, error) {
	t, err := frame.Normalize(src)
	if err != nil {
		return nil, err
	}
	s, err := r.split(t, grouping, numeric)
	if err != nil {
		return nil, err
	}
	res := &RankResult{}
	warnings := s.warnings()
	for k, label := range s.labels {
		g := s.groups[k]
		sh := GroupShape{Label: label, N: len(g), Skewness: stats.Skewness(g), Kurtosis: stats.ExcessKurtosis(g)}
		if !finite(sh.Skewness) || !finite(sh.Kurtosis) {
			warnings = append(warnings, fmt.Sprintf("shape of group %q is undefined with n=%d", label, len(g)))
			sh.Skewness, sh.Kurtosis = orZero(sh.Skewness), orZero(sh.Kurtosis)
		}
		res.Shapes = append(res.Shapes, sh)
	}
	r.log().Debug("kruskal-wallis", zap.String("grouping", grouping), zap.String("numeric", numeric), zap.Int("n", len(s.values)))
	h, p, err := stats.KruskalWallis(s.groups[0], s.groups[1])
	if err != nil {
		return nil, fmt.Errorf("kruskal-wallis %s by %s: %w", numeric, grouping, err)
	}
	res.Result = Result{
		Test:      TestKruskalWallis,
		Variables: []string{grouping, numeric},
		Groups:    s.labels,
		N:         len(s.values),
		Statistic: h,
		PValue:    p,
		Warnings:  warnings,
	}
	res.decide("the group medians differ", "the group medians are equal")
	return res, nil
}

// CategoricalAssociation cross-tabulates input (rows) against target
// (columns), runs a chi-squared test of independence without continuity
// correction and reports Cramér's V.
func (r *Runner) CategoricalAssociation(src frame.Source, target, input string, opt AssociationOptions) (*AssociationResult, error) {
	t, err := frame.Normalize(src)
	if err != nil {
		return nil, err
	}
	tc, err := t.Column(target)
	if err != nil {
		return nil, err
	}
	ic, err := t.Column(input)
	if err != nil {
		return nil, err
	}
	if err := opt.Plot.check(t); err != nil {
		return nil, err
	}
	rows := frame.Complete(ic, tc)
	for _, c := range []*frame.Column{tc, ic} {
		if d := frame.Distinct(c, rows); len(d) < 2 {
			return nil, &DegenerateTableError{Column: c.Name, Categories: d}
		}
	}

	ct, err := stats.Crosstab(frame.Keys(ic, rows), frame.Keys(tc, rows))
	if err != nil {
		return nil, err
	}
	r.log().Debug("crosstab", zap.String("input", input), zap.String("target", target), zap.Int("rows", len(ct.Rows)), zap.Int("cols", len(ct.Cols)), zap.Int("n", len(rows)))
	chi, err := stats.ChiSquare(ct)
	if err != nil {
		return nil, fmt.Errorf("chi-squared %s x %s: %w", input, target, err)
	}
	v, err := stats.CramersV(chi.Statistic, float64(len(rows)), len(ct.Rows), len(ct.Cols))
	if err != nil {
		return nil, err
	}
	res := &AssociationResult{
		Result: Result{
			Test:      TestCramersV,
			Variables: []string{target, input},
			N:         len(rows),
			Statistic: chi.Statistic,
			PValue:    chi.PValue,
		},
		CramersV: v,
		Strength: StrengthOf(v),
		DoF:      chi.DoF,
	}
	res.decide("the variables are associated", "no association detected between the variables")
	if opt.ShowContingency {
		res.Table = ct
	}
	if opt.Plot.Enabled {
		res.Chart = r.bars(t, ic, opt.Plot)
	}
	return res, nil
}

// failedDiagnostic records an assumption check that could not be computed.
// The main test still runs.
func (r *Runner) failedDiagnostic(test Test, err error, fields ...zap.Field) *Result {
	r.log().Warn("assumption check skipped", append(fields, zap.String("test", string(test)), zap.Error(err))...)
	return &Result{Test: test, Conclusion: FailToReject, Error: err.Error()}
}

// ks applies tr to x and runs the normality test.
func (r *Runner) ks(x []float64, tr Transform) (*Result, []float64, error) {
	y, lambda, err := tr.apply(x)
	if err != nil {
		return nil, nil, fmt.Errorf("%s transform: %w", tr, err)
	}
	d, p, err := stats.KSNormal(y)
	if err != nil {
		return nil, nil, err
	}
	res := &Result{Test: TestNormality, Transform: tr, Lambda: lambda, N: len(y), Statistic: d, PValue: p}
	res.decide("the variable does not follow a normal distribution", "the variable follows a normal distribution")
	return res, y, nil
}

func (r *Runner) levene(s *split) (*Result, error) {
	w, p, err := stats.Levene(s.groups[0], s.groups[1])
	if err != nil {
		return nil, fmt.Errorf("levene %s by %s: %w", s.numeric, s.grouping, err)
	}
	res := &Result{
		Test:      TestLevene,
		Variables: []string{s.grouping, s.numeric},
		Groups:    s.labels,
		N:         len(s.values),
		Statistic: w,
		PValue:    p,
		Warnings:  s.warnings(),
	}
	res.decide("the group variances differ", "the group variances are equal")
	return res, nil
}

// split holds the rows of numeric that fall in the first two groups of
// grouping. keys and values are aligned by row.
type split struct {
	grouping, numeric string
	labels            []string
	groups            [2][]float64
	keys              []string
	values            []float64
	distinct          int
}

func (s *split) warnings() []string {
	if s.distinct <= 2 {
		return nil
	}
	return []string{fmt.Sprintf("grouping column %q has %d distinct values; only %q and %q are compared",
		s.grouping, s.distinct, s.labels[0], s.labels[1])}
}

func (r *Runner) split(t *frame.Table, grouping, numeric string) (*split, error) {
	g, err := t.Column(grouping)
	if err != nil {
		return nil, err
	}
	x, err := t.Numeric(numeric)
	if err != nil {
		return nil, err
	}
	rows := frame.Complete(g, x)
	distinct := frame.Distinct(g, rows)
	if len(distinct) < 2 {
		return nil, &InsufficientGroupsError{Column: grouping, Found: distinct}
	}
	s := &split{grouping: grouping, numeric: numeric, labels: distinct[:2], distinct: len(distinct)}
	if s.distinct > 2 {
		r.log().Warn("grouping truncated to first two values",
			zap.String("column", grouping), zap.Int("distinct", s.distinct), zap.Strings("compared", s.labels))
	}
	for _, i := range rows {
		k := g.Key(i)
		var slot int
		switch k {
		case s.labels[0]:
			slot = 0
		case s.labels[1]:
			slot = 1
		default:
			continue
		}
		s.groups[slot] = append(s.groups[slot], x.Num[i])
		s.keys = append(s.keys, k)
		s.values = append(s.values, x.Num[i])
	}
	return s, nil
}

func (r *Runner) histogram(t *frame.Table, variable string, rows []int, y []float64, p PlotOptions) string {
	spec := HistogramSpec{Title: "Distribution of " + variable, XLabel: variable, Bins: p.bins()}
	if p.Color == "" {
		spec.Series = []Series{{Label: variable, Values: y}}
	} else {
		c, _ := t.Column(p.Color)
		slot := map[string]int{}
		for j, i := range rows {
			if c.Missing(i) {
				continue
			}
			k := c.Key(i)
			n, ok := slot[k]
			if !ok {
				n = len(spec.Series)
				slot[k] = n
				spec.Series = append(spec.Series, Series{Label: k})
			}
			spec.Series[n].Values = append(spec.Series[n].Values, y[j])
		}
	}
	return r.draw("histogram", func(c Charter) (string, error) { return c.Histogram(spec) })
}

func (r *Runner) bars(t *frame.Table, input *frame.Column, p PlotOptions) string {
	spec := BarSpec{Title: "Distribution of " + input.Name, XLabel: input.Name, Norm: p.norm()}
	cols := []*frame.Column{input}
	if p.Color != "" {
		c, _ := t.Column(p.Color)
		cols = append(cols, c)
	}
	rows := frame.Complete(cols...)
	spec.Categories = frame.Distinct(input, rows)
	sort.Strings(spec.Categories)
	pos := make(map[string]int, len(spec.Categories))
	for i, c := range spec.Categories {
		pos[c] = i
	}
	slot := map[string]int{}
	for _, i := range rows {
		label := input.Name
		if len(cols) > 1 {
			label = cols[1].Key(i)
		}
		n, ok := slot[label]
		if !ok {
			n = len(spec.Series)
			slot[label] = n
			spec.Series = append(spec.Series, Series{Label: label, Values: make([]float64, len(spec.Categories))})
		}
		spec.Series[n].Values[pos[input.Key(i)]]++
	}
	if spec.Norm == "percent" {
		for _, s := range spec.Series {
			var total float64
			for _, v := range s.Values {
				total += v
			}
			for j := range s.Values {
				s.Values[j] = 100 * s.Values[j] / total
			}
		}
	}
	return r.draw("bars", func(c Charter) (string, error) { return c.CategoryBars(spec) })
}

// draw renders a chart. Failures are logged and never fail the test.
func (r *Runner) draw(kind string, fn func(Charter) (string, error)) string {
	if r.Charter == nil {
		r.log().Warn("plot requested but no chart renderer configured", zap.String("chart", kind))
		return ""
	}
	path, err := fn(r.Charter)
	if err != nil {
		r.log().Warn("chart rendering failed", zap.String("chart", kind), zap.Error(err))
		return ""
	}
	r.log().Debug("chart written", zap.String("chart", kind), zap.String("path", path))
	return path
}

func finite(v float64) bool { return !math.IsNaN(v) && !math.IsInf(v, 0) }

func orZero(v float64) float64 {
	if finite(v) {
		return v
	}
	return 0
}
