package report

import (
	"fmt"
	"io"
	"strings"

	"github.com/KaramelBytes/hypocheck/internal/hypothesis"
	"github.com/KaramelBytes/hypocheck/internal/stats"
)

// Markdown writes v as a Markdown section with a metrics table.
func Markdown(w io.Writer, v any) error {
	md, err := renderMarkdown(v)
	if err != nil {
		return err
	}
	_, err = io.WriteString(w, md)
	return err
}

func renderMarkdown(v any) (string, error) {
	var b strings.Builder
	switch r := v.(type) {
	case *hypothesis.Result:
		mdResult(&b, r, "##", nil)
	case *hypothesis.BiserialResult:
		mdResult(&b, &r.Result, "##", [][2]string{{"Encoding", encoding(r.Classes)}})
		if len(r.Diagnostics) > 0 {
			b.WriteString("### Assumption checks\n\n")
			for _, d := range r.Diagnostics {
				mdResult(&b, d, "####", nil)
			}
		}
	case *hypothesis.RankResult:
		mdResult(&b, &r.Result, "##", nil)
		b.WriteString("| Group | N | Skewness | Kurtosis |\n|---|---:|---:|---:|\n")
		for _, s := range r.Shapes {
			b.WriteString(fmt.Sprintf("| %s | %d | %.3f | %.3f |\n", cell(s.Label), s.N, s.Skewness, s.Kurtosis))
		}
		b.WriteString("\n")
	case *hypothesis.AssociationResult:
		mdResult(&b, &r.Result, "##", [][2]string{
			{"Cramér's V", fmt.Sprintf("%.3f (%s)", r.CramersV, r.Strength)},
			{"Degrees of freedom", fmt.Sprintf("%d", r.DoF)},
		})
		if r.Table != nil {
			mdContingency(&b, r.Table)
		}
	default:
		return "", fmt.Errorf("report: unsupported value %T", v)
	}
	return b.String(), nil
}

func mdResult(b *strings.Builder, r *hypothesis.Result, level string, extra [][2]string) {
	title := r.Test.Title()
	if r.Label != "" {
		title += " for " + r.Label
	}
	b.WriteString(fmt.Sprintf("%s %s: %s\n\n", level, title, strings.Join(r.Variables, " × ")))
	if r.Error != "" {
		b.WriteString(fmt.Sprintf("> ✗ Check could not be computed: %s\n\n", r.Error))
		return
	}
	b.WriteString("| Metric | Value |\n|---|---|\n")
	rows := [][2]string{
		{"N", fmt.Sprintf("%d", r.N)},
		{"Statistic", fmt.Sprintf("%.4f", r.Statistic)},
		{"p-value", fmt.Sprintf("%.5f", r.PValue)},
		{"Conclusion", r.Conclusion.String()},
	}
	if r.Transform != hypothesis.Identity {
		t := r.Transform.String()
		if r.Transform == hypothesis.YeoJohnson {
			t = fmt.Sprintf("%s (λ=%.4f)", t, r.Lambda)
		}
		rows = append(rows, [2]string{"Transform", t})
	}
	if len(r.Groups) > 0 {
		rows = append(rows, [2]string{"Groups", strings.Join(r.Groups, ", ")})
	}
	rows = append(rows, extra...)
	for _, kv := range rows {
		b.WriteString(fmt.Sprintf("| %s | %s |\n", kv[0], cell(kv[1])))
	}
	b.WriteString(fmt.Sprintf("\n**Interpretation:** %s.\n\n", r.Interpretation))
	for _, w := range r.Warnings {
		b.WriteString(fmt.Sprintf("> ⚠ %s\n\n", w))
	}
	if r.Chart != "" {
		b.WriteString(fmt.Sprintf("![%s](%s)\n\n", title, r.Chart))
	}
}

func mdContingency(b *strings.Builder, ct *stats.Contingency) {
	b.WriteString("### Contingency table\n\n|  |")
	for _, c := range ct.Cols {
		b.WriteString(" " + cell(c) + " |")
	}
	b.WriteString("\n|---|")
	b.WriteString(strings.Repeat("---:|", len(ct.Cols)))
	b.WriteString("\n")
	for i, row := range ct.Counts {
		b.WriteString("| " + cell(ct.Rows[i]) + " |")
		for _, v := range row {
			b.WriteString(fmt.Sprintf(" %g |", v))
		}
		b.WriteString("\n")
	}
	b.WriteString("\n")
}

func encoding(classes []string) string {
	parts := make([]string, len(classes))
	for i, c := range classes {
		parts[i] = fmt.Sprintf("%s=%d", c, i)
	}
	return strings.Join(parts, ", ")
}

// cell escapes pipes so values cannot break a table row.
func cell(s string) string {
	return strings.ReplaceAll(strings.ReplaceAll(s, "|", "\\|"), "\n", " ")
}
