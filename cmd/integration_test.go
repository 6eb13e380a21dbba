package cmd

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"gonum.org/v1/gonum/stat/distuv"

	"github.com/KaramelBytes/hypocheck/internal/hypothesis"
)

// resetFlags clears values and Changed state that persist between Execute
// calls on the shared command tree.
func resetFlags(c *cobra.Command) {
	reset := func(f *pflag.Flag) {
		if sv, ok := f.Value.(pflag.SliceValue); ok {
			_ = sv.Replace(nil)
		} else {
			_ = f.Value.Set(f.DefValue)
		}
		f.Changed = false
	}
	c.Flags().VisitAll(reset)
	c.PersistentFlags().VisitAll(reset)
	for _, sub := range c.Commands() {
		resetFlags(sub)
	}
}

func execute(args ...string) (string, error) {
	resetFlags(rootCmd)
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return out.String(), err
}

// runCmd is a helper to execute the root command with args.
func runCmd(t *testing.T, args ...string) string {
	t.Helper()
	out, err := execute(args...)
	if err != nil {
		t.Fatalf("command %v failed: %v\n%s", args, err, out)
	}
	return out
}

// isolate points HOME at a temp dir so config and studies stay local.
func isolate(t *testing.T) string {
	t.Helper()
	home := t.TempDir()
	t.Setenv("HOME", home)
	return home
}

// writeDataset writes 200 rows: g alternates a/b, x holds standard normal
// quantiles and c mirrors g.
func writeDataset(t *testing.T, dir string) string {
	t.Helper()
	var b strings.Builder
	b.WriteString("g,x,c\n")
	n := 200
	for i := 0; i < n; i++ {
		g, c := "a", "u"
		if i%2 == 1 {
			g, c = "b", "v"
		}
		x := distuv.UnitNormal.Quantile((float64(i) + 0.5) / float64(n))
		fmt.Fprintf(&b, "%s,%.6f,%s\n", g, x, c)
	}
	p := filepath.Join(dir, "data.csv")
	if err := os.WriteFile(p, []byte(b.String()), 0o644); err != nil {
		t.Fatalf("write dataset: %v", err)
	}
	return p
}

func TestCLI_Init_Add_Normality_RecordsResult(t *testing.T) {
	home := isolate(t)
	data := writeDataset(t, home)

	if out := runCmd(t, "init", "trial", "-d", "integration test"); !strings.Contains(out, "✓ Study initialized") {
		t.Fatalf("init output: %q", out)
	}
	if out := runCmd(t, "add", data, "-s", "trial", "--desc", "pilot"); !strings.Contains(out, "data.csv (200 rows, 3 columns)") {
		t.Fatalf("add output: %q", out)
	}
	out := runCmd(t, "normality", data, "x", "-s", "trial")
	if !strings.Contains(out, "you cannot reject the null hypothesis") || !strings.Contains(out, "follows a normal distribution") {
		t.Fatalf("normality output: %q", out)
	}
	if !strings.Contains(out, "✓ Recorded kolmogorov-smirnov result in study 'trial'") {
		t.Fatalf("missing record line: %q", out)
	}

	list := runCmd(t, "list", "--results", "-s", "trial")
	if !strings.Contains(list, "kolmogorov-smirnov data.csv(x)") || !strings.Contains(list, "fail-to-reject") {
		t.Fatalf("list output: %q", list)
	}
	ds := runCmd(t, "list", "--datasets", "-s", "trial")
	if strings.Count(ds, "data.csv") != 1 {
		t.Fatalf("expected one dataset entry, got %q", ds)
	}
	show := runCmd(t, "study", "show", "-s", "trial", "--format", "markdown")
	if !strings.Contains(show, "# trial") || !strings.Contains(show, "## Results") {
		t.Fatalf("study show output: %q", show)
	}
}

func TestCLI_Biserial_BothTransformsRejected(t *testing.T) {
	home := isolate(t)
	data := writeDataset(t, home)
	_, err := execute("biserial", data, "g", "x", "--yeo-johnson", "--log1p")
	if !errors.Is(err, hypothesis.ErrInvalidConfiguration) {
		t.Fatalf("expected ErrInvalidConfiguration, got %v", err)
	}
}

func TestCLI_Biserial_AssumptionBanners(t *testing.T) {
	home := isolate(t)
	data := writeDataset(t, home)
	out := runCmd(t, "biserial", data, "g", "x", "--test-assumptions")
	for _, want := range []string{"Kolmogorov Test for y:a", "Kolmogorov Test for y:b", "Levene Test", "Point Biserial Test"} {
		if !strings.Contains(out, want) {
			t.Fatalf("missing %q in:\n%s", want, out)
		}
	}
}

func TestCLI_Biserial_TSVMissingCellDegenerateLevene(t *testing.T) {
	home := isolate(t)
	// The last row has an empty x; its z value must not shift into x.
	body := "g\tx\tz\na\t1\t0\nb\t5\t0\na\t1\t0\nb\t5\t0\na\t1\t0\nb\t5\t0\nb\t\t9\n"
	data := filepath.Join(home, "data.tsv")
	if err := os.WriteFile(data, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
	out := runCmd(t, "biserial", data, "g", "x", "--test-assumptions", "--format", "json")
	var got struct {
		N           int     `json:"n"`
		Statistic   float64 `json:"statistic"`
		Conclusion  string  `json:"conclusion"`
		Diagnostics []struct {
			Test  string `json:"test"`
			Error string `json:"error"`
		} `json:"diagnostics"`
	}
	if err := json.Unmarshal([]byte(out), &got); err != nil {
		t.Fatalf("decode %q: %v", out, err)
	}
	if got.N != 6 || got.Statistic < 0.999 || got.Conclusion != "reject" {
		t.Fatalf("unexpected result: %+v", got)
	}
	if len(got.Diagnostics) != 3 || got.Diagnostics[2].Test != "levene" || got.Diagnostics[2].Error == "" {
		t.Fatalf("expected a failed levene diagnostic: %+v", got.Diagnostics)
	}

	text := runCmd(t, "biserial", data, "g", "x", "--test-assumptions")
	if !strings.Contains(text, "✗ Check could not be computed") || !strings.Contains(text, "Point Biserial Test") {
		t.Fatalf("text report missing failed check or main result:\n%s", text)
	}
}

func TestCLI_CramersV_JSON(t *testing.T) {
	home := isolate(t)
	data := writeDataset(t, home)
	out := runCmd(t, "cramers-v", data, "g", "c", "--format", "json", "--show-crosstab")
	var got struct {
		CramersV   float64 `json:"cramers_v"`
		Conclusion string  `json:"conclusion"`
		Strength   string  `json:"strength"`
		Table      any     `json:"contingency"`
	}
	if err := json.Unmarshal([]byte(out), &got); err != nil {
		t.Fatalf("decode %q: %v", out, err)
	}
	if got.CramersV < 0.999 || got.Conclusion != "reject" || got.Strength != "strong" || got.Table == nil {
		t.Fatalf("unexpected result: %+v", got)
	}
}

func TestCLI_Normality_PlotWritesChart(t *testing.T) {
	home := isolate(t)
	data := writeDataset(t, home)
	charts := filepath.Join(home, "charts")
	out := runCmd(t, "normality", data, "x", "--plot", "--chart-dir", charts, "--color", "g", "--bins", "10")
	if !strings.Contains(out, "✓ Chart saved to "+charts) {
		t.Fatalf("missing chart line: %q", out)
	}
	matches, _ := filepath.Glob(filepath.Join(charts, "*.png"))
	if len(matches) != 1 {
		t.Fatalf("expected one png in %s, got %v", charts, matches)
	}
}

func TestCLI_RunPlan_ContinuesAfterFailure(t *testing.T) {
	home := isolate(t)
	writeDataset(t, home)
	plan := `dataset: data.csv
tests:
  - test: normality
    variable: x
  - test: levene
    grouping: g
  - test: kruskal
    grouping: g
    numeric: x
`
	planPath := filepath.Join(home, "plan.yaml")
	if err := os.WriteFile(planPath, []byte(plan), 0o644); err != nil {
		t.Fatal(err)
	}
	out, err := execute("run", planPath)
	if err == nil || !strings.Contains(err.Error(), "1 of 3 steps failed") {
		t.Fatalf("expected one failed step, got %v", err)
	}
	if !strings.Contains(err.Error(), "levene: missing numeric") {
		t.Fatalf("error should name the missing field: %v", err)
	}
	if !strings.Contains(out, "[3/3] kruskal") || !strings.Contains(out, "medians_1 = medians_2") {
		t.Fatalf("later steps should still run:\n%s", out)
	}
}

func TestCLI_ConfigSetShow(t *testing.T) {
	home := isolate(t)
	runCmd(t, "config", "set", "bins", "12")
	if _, err := os.Stat(filepath.Join(home, ".hypocheck", "config.yaml")); err != nil {
		t.Fatalf("config not saved: %v", err)
	}
	out := runCmd(t, "config", "show")
	if !strings.Contains(out, "bins: 12") {
		t.Fatalf("config show: %q", out)
	}
	if _, err := execute("config", "set", "histnorm", "density"); err == nil {
		t.Fatal("expected invalid histnorm to fail")
	}
}
