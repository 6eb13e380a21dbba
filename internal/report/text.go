// Package report renders hypothesis results as console text, Markdown, HTML
// or JSON.
package report

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/KaramelBytes/hypocheck/internal/hypothesis"
	"github.com/KaramelBytes/hypocheck/internal/stats"
)

// Width is the length of the dashed delimiter lines in text output.
const Width = 78

// Rule is a full-width delimiter line.
var Rule = strings.Repeat("-", Width)

// Banner centres title inside a dashed line of Width characters.
func Banner(title string) string {
	pad := Width - len([]rune(title))
	if pad < 2 {
		return title
	}
	left := pad / 2
	return strings.Repeat("-", left) + title + strings.Repeat("-", pad-left)
}

// Text writes v in the fixed console format. v is one of the hypothesis
// result types.
func Text(w io.Writer, v any) error {
	tw := &textWriter{w: w}
	switch r := v.(type) {
	case *hypothesis.Result:
		tw.block(r, "")
	case *hypothesis.BiserialResult:
		tw.biserial(r)
	case *hypothesis.RankResult:
		tw.rank(r)
	case *hypothesis.AssociationResult:
		tw.association(r)
	default:
		return fmt.Errorf("report: unsupported value %T", v)
	}
	return tw.err
}

type textWriter struct {
	w   io.Writer
	err error
}

func (t *textWriter) printf(format string, args ...any) {
	if t.err != nil {
		return
	}
	_, t.err = fmt.Fprintf(t.w, format, args...)
}

// block prints the statistic, p-value and decision sentence. header replaces
// the opening rule when set.
func (t *textWriter) block(r *hypothesis.Result, header string) {
	if header == "" {
		header = Rule
	}
	t.printf("%s\n", header)
	if r.Error != "" {
		t.printf("✗ Check could not be computed: %s\n", r.Error)
		t.printf("%s\n\n", Rule)
		t.footer(r)
		return
	}
	t.printf("statistic=%.3f, p_value=%.3f\n\n", r.Statistic, r.PValue)
	t.printf("%s\n", sentence(r, fmt.Sprintf("%.3f", r.PValue)))
	t.printf("%s\n\n", Rule)
	t.footer(r)
}

func (t *textWriter) footer(r *hypothesis.Result) {
	for _, w := range r.Warnings {
		t.printf("⚠ %s\n", w)
	}
	if r.Chart != "" {
		t.printf("✓ Chart saved to %s\n", r.Chart)
	}
}

func (t *textWriter) biserial(r *hypothesis.BiserialResult) {
	for _, d := range r.Diagnostics {
		switch d.Test {
		case hypothesis.TestNormality:
			t.printf("%s\n", Banner("Kolmogorov Test for y:"+d.Label))
		case hypothesis.TestLevene:
			t.printf("%s\n", Banner("Levene Test"))
		}
		t.block(d, "")
	}
	t.block(&r.Result, Banner("Point Biserial Test"))
}

func (t *textWriter) rank(r *hypothesis.RankResult) {
	t.printf("%s\n", Banner("Skewness and Kurtosis"))
	for _, s := range r.Shapes {
		t.printf("Skewness and kurtosis for y:%s. Skewness=%.3f, Kurtosis=%.3f\n", s.Label, s.Skewness, s.Kurtosis)
	}
	t.printf("%s\n\n", Rule)
	t.block(&r.Result, "")
}

func (t *textWriter) association(r *hypothesis.AssociationResult) {
	if r.Table != nil {
		t.printf("%s\n", Banner(" Contingency Table "))
		t.contingency(r.Table)
		t.printf("%s\n\n", Rule)
	}
	p := fmt.Sprintf("%.5f", r.PValue)
	t.printf("%s\n", Banner(" Cramer's V "))
	t.printf("CramersV: %.3f, chi2:%.3f, p_value:%s\n\n", r.CramersV, r.Statistic, p)
	t.printf("%s\n", sentence(&r.Result, p))
	t.printf("Strength of association: %s\n", r.Strength)
	t.printf("%s\n\n", Rule)
	t.footer(&r.Result)
}

func (t *textWriter) contingency(ct *stats.Contingency) {
	if t.err != nil {
		return
	}
	tab := tabwriter.NewWriter(t.w, 0, 0, 2, ' ', tabwriter.AlignRight)
	fmt.Fprintf(tab, "\t%s\t\n", strings.Join(ct.Cols, "\t"))
	for i, row := range ct.Counts {
		cells := make([]string, len(row))
		for j, v := range row {
			cells[j] = fmt.Sprintf("%g", v)
		}
		fmt.Fprintf(tab, "%s\t%s\t\n", ct.Rows[i], strings.Join(cells, "\t"))
	}
	t.err = tab.Flush()
}

// sentence explains the decision using p as already formatted.
func sentence(r *hypothesis.Result, p string) string {
	var so string
	reject := r.Rejected()
	switch r.Test {
	case hypothesis.TestNormality:
		so = pick(reject, " so the variable\ndoes not follow a normal distribution", " so the variable\nfollows a normal distribution")
	case hypothesis.TestLevene:
		so = pick(reject, "\nso variances_1 != variances_2", "\nso variances_1 = variances_2")
	case hypothesis.TestPointBiserial:
		so = pick(reject, "\nso variables are correlated", "\nso variables are not correlated")
	case hypothesis.TestKruskalWallis:
		so = pick(reject, "\nso we have that medians_1 != medians_2", "\nso we have that medians_1 = medians_2")
	case hypothesis.TestCramersV:
		so = pick(reject, "\nso there is a relationship between the variables.", "\nso there is not a relationship between the variables.")
	default:
		so = " so " + r.Interpretation
	}
	if reject {
		return fmt.Sprintf("Since %s < %.2f you can reject the null hypothesis,%s", p, hypothesis.Alpha, so)
	}
	return fmt.Sprintf("Since %s >= %.2f you cannot reject the null hypothesis,%s", p, hypothesis.Alpha, so)
}

func pick(cond bool, a, b string) string {
	if cond {
		return a
	}
	return b
}
