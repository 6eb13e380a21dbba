package report

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/KaramelBytes/hypocheck/internal/hypothesis"
	"github.com/KaramelBytes/hypocheck/internal/stats"
)

func normalityResult(p float64) *hypothesis.Result {
	return &hypothesis.Result{
		Test:       hypothesis.TestNormality,
		Variables:  []string{"x"},
		N:          10,
		Statistic:  0.1234,
		PValue:     p,
		Conclusion: hypothesis.Decide(p),
	}
}

func TestBanner(t *testing.T) {
	b := Banner("Levene Test")
	if len(b) != Width {
		t.Fatalf("banner len = %d, want %d", len(b), Width)
	}
	if !strings.Contains(b, "-Levene Test-") {
		t.Fatalf("banner = %q", b)
	}
	if len(Rule) != 78 {
		t.Fatalf("rule len = %d, want 78", len(Rule))
	}
}

func TestTextNormality(t *testing.T) {
	var buf bytes.Buffer
	if err := Text(&buf, normalityResult(0.456)); err != nil {
		t.Fatal(err)
	}
	out := buf.String()
	want := Rule + "\n" +
		"statistic=0.123, p_value=0.456\n\n" +
		"Since 0.456 >= 0.05 you cannot reject the null hypothesis, so the variable\n" +
		"follows a normal distribution\n" +
		Rule + "\n\n"
	if out != want {
		t.Fatalf("text output mismatch:\n%s\nwant:\n%s", out, want)
	}

	buf.Reset()
	_ = Text(&buf, normalityResult(0.001))
	if !strings.Contains(buf.String(), "Since 0.001 < 0.05 you can reject the null hypothesis, so the variable\ndoes not follow") {
		t.Fatalf("reject sentence missing:\n%s", buf.String())
	}
}

func TestTextBiserialDiagnosticsFirst(t *testing.T) {
	lev := &hypothesis.Result{Test: hypothesis.TestLevene, PValue: 0.5}
	r := &hypothesis.BiserialResult{
		Result: hypothesis.Result{Test: hypothesis.TestPointBiserial, Statistic: 0.8, PValue: 0.001, Conclusion: hypothesis.Reject},
		Diagnostics: []*hypothesis.Result{
			{Test: hypothesis.TestNormality, Label: "a", PValue: 0.3},
			{Test: hypothesis.TestNormality, Label: "b", PValue: 0.2},
			lev,
		},
	}
	var buf bytes.Buffer
	if err := Text(&buf, r); err != nil {
		t.Fatal(err)
	}
	out := buf.String()
	ia := strings.Index(out, "Kolmogorov Test for y:a")
	ib := strings.Index(out, "Kolmogorov Test for y:b")
	il := strings.Index(out, "Levene Test")
	ip := strings.Index(out, "Point Biserial Test")
	if ia < 0 || ib < ia || il < ib || ip < il {
		t.Fatalf("unexpected section order (%d %d %d %d):\n%s", ia, ib, il, ip, out)
	}
	if !strings.Contains(out, "so variables are correlated") {
		t.Fatalf("missing biserial sentence:\n%s", out)
	}
}

func TestFailedDiagnosticRendered(t *testing.T) {
	r := &hypothesis.BiserialResult{
		Result: hypothesis.Result{Test: hypothesis.TestPointBiserial, Variables: []string{"g", "y"}, Statistic: 1, PValue: 0, Conclusion: hypothesis.Reject},
		Diagnostics: []*hypothesis.Result{
			{Test: hypothesis.TestNormality, Variables: []string{"y"}, Label: "a", PValue: 0.3},
			{Test: hypothesis.TestNormality, Variables: []string{"y"}, Label: "b", PValue: 0.2},
			{Test: hypothesis.TestLevene, Variables: []string{"g", "y"}, Error: "degenerate input: zero within-group spread"},
		},
	}
	var buf bytes.Buffer
	if err := Text(&buf, r); err != nil {
		t.Fatal(err)
	}
	out := buf.String()
	il := strings.Index(out, "Levene Test")
	ie := strings.Index(out, "✗ Check could not be computed: degenerate input: zero within-group spread")
	ip := strings.Index(out, "Point Biserial Test")
	if il < 0 || ie < il || ip < ie {
		t.Fatalf("failed diagnostic not rendered in order (%d %d %d):\n%s", il, ie, ip, out)
	}
	if strings.Count(out, "statistic=") != 3 {
		t.Fatalf("failed diagnostic should not print statistics:\n%s", out)
	}

	var md bytes.Buffer
	if err := Markdown(&md, r); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(md.String(), "#### Levene Test: g × y\n\n> ✗ Check could not be computed: degenerate input") {
		t.Fatalf("markdown missing failed diagnostic:\n%s", md.String())
	}
	var h bytes.Buffer
	if err := HTML(&h, r); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(h.String(), "Check could not be computed") {
		t.Fatalf("html missing failed diagnostic:\n%s", h.String())
	}
}

func TestTextAssociation(t *testing.T) {
	ct, _ := stats.NewContingency([]string{"x", "y"}, []string{"no", "yes"}, [][]float64{{0, 50}, {50, 0}})
	r := &hypothesis.AssociationResult{
		Result:   hypothesis.Result{Test: hypothesis.TestCramersV, Statistic: 100, PValue: 0.0000123, Conclusion: hypothesis.Reject},
		CramersV: 1,
		Strength: hypothesis.Strong,
		DoF:      1,
		Table:    ct,
	}
	var buf bytes.Buffer
	if err := Text(&buf, r); err != nil {
		t.Fatal(err)
	}
	out := buf.String()
	for _, want := range []string{
		"Contingency Table",
		"CramersV: 1.000, chi2:100.000, p_value:0.00001",
		"Since 0.00001 < 0.05 you can reject",
		"so there is a relationship between the variables.",
		"Strength of association: strong",
	} {
		if !strings.Contains(out, want) {
			t.Fatalf("missing %q in:\n%s", want, out)
		}
	}
}

func TestTextRankAndWarnings(t *testing.T) {
	r := &hypothesis.RankResult{
		Result: hypothesis.Result{Test: hypothesis.TestKruskalWallis, PValue: 0.2, Warnings: []string{"only two groups compared"}, Chart: "out.png"},
		Shapes: []hypothesis.GroupShape{{Label: "a", N: 3, Skewness: 0.5}, {Label: "b", N: 4, Kurtosis: -1.25}},
	}
	var buf bytes.Buffer
	if err := Text(&buf, r); err != nil {
		t.Fatal(err)
	}
	out := buf.String()
	for _, want := range []string{
		"Skewness and kurtosis for y:a. Skewness=0.500, Kurtosis=0.000",
		"Skewness and kurtosis for y:b. Skewness=0.000, Kurtosis=-1.250",
		"so we have that medians_1 = medians_2",
		"⚠ only two groups compared",
		"✓ Chart saved to out.png",
	} {
		if !strings.Contains(out, want) {
			t.Fatalf("missing %q in:\n%s", want, out)
		}
	}
}

func TestTextUnsupported(t *testing.T) {
	if err := Text(&bytes.Buffer{}, "nope"); err == nil {
		t.Fatal("expected error for unsupported value")
	}
}

func TestMarkdownAndHTML(t *testing.T) {
	r := normalityResult(0.01)
	r.Transform = hypothesis.YeoJohnson
	r.Lambda = 0.25
	r.Interpretation = "the variable does not follow a normal distribution"
	var md bytes.Buffer
	if err := Markdown(&md, r); err != nil {
		t.Fatal(err)
	}
	out := md.String()
	if !strings.HasPrefix(out, "## Kolmogorov-Smirnov Test: x") {
		t.Fatalf("heading = %q", strings.SplitN(out, "\n", 2)[0])
	}
	if !strings.Contains(out, "| Transform | yeo-johnson (λ=0.2500) |") {
		t.Fatalf("missing transform row:\n%s", out)
	}

	var h bytes.Buffer
	if err := HTML(&h, r); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(h.String(), "<table>") || !strings.Contains(h.String(), "<h2") {
		t.Fatalf("html missing table/heading:\n%s", h.String())
	}
}

func TestJSON(t *testing.T) {
	var buf bytes.Buffer
	if err := Write(&buf, FormatJSON, normalityResult(0.2)); err != nil {
		t.Fatal(err)
	}
	var got map[string]any
	if err := json.Unmarshal(buf.Bytes(), &got); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if got["conclusion"] != "fail-to-reject" || got["transform"] != "identity" || got["test"] != "kolmogorov-smirnov" {
		t.Fatalf("json = %v", got)
	}
}

func TestParseFormat(t *testing.T) {
	cases := map[string]Format{"": FormatText, "md": FormatMarkdown, "HTML": FormatHTML, "json": FormatJSON}
	for in, want := range cases {
		got, err := ParseFormat(in)
		if err != nil || got != want {
			t.Fatalf("ParseFormat(%q) = %v, %v; want %v", in, got, err, want)
		}
	}
	if _, err := ParseFormat("pdf"); err == nil {
		t.Fatal("expected error for pdf")
	}
}
