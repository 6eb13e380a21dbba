package cmd

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/KaramelBytes/hypocheck/internal/frame"
	"github.com/KaramelBytes/hypocheck/internal/hypothesis"
)

func TestLoadPlanResolvesDatasetAgainstPlanDir(t *testing.T) {
	dir := t.TempDir()
	p := filepath.Join(dir, "plan.yaml")
	body := "dataset: data/x.csv\nsheet: Data\ntests:\n  - test: normality\n    variable: y\n    transform: log1p\n"
	if err := os.WriteFile(p, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
	plan, err := LoadPlan(p)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if want := filepath.Join(dir, "data", "x.csv"); plan.Dataset != want {
		t.Fatalf("dataset = %q, want %q", plan.Dataset, want)
	}
	if plan.Sheet != "Data" || len(plan.Steps) != 1 || plan.Steps[0].Transform != "log1p" {
		t.Fatalf("plan = %+v", plan)
	}
}

func TestLoadPlanRejectsEmpty(t *testing.T) {
	p := filepath.Join(t.TempDir(), "plan.yaml")
	if err := os.WriteFile(p, []byte("dataset: x.csv\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadPlan(p); err == nil || !strings.Contains(err.Error(), "no tests") {
		t.Fatalf("expected no tests error, got %v", err)
	}
}

func TestStepExecute(t *testing.T) {
	tbl, err := frame.NewBuilder("t").
		AddCategorical("g", []string{"a", "b", "a", "b", "a", "b"}).
		AddCategorical("c", []string{"u", "v", "u", "v", "u", "v"}).
		AddNumeric("x", []float64{1, 5, 2, 6, 3, 7}).
		Build()
	if err != nil {
		t.Fatal(err)
	}
	r := hypothesis.New()

	res, err := Step{Test: "cramers-v", Target: "g", Input: "c"}.Execute(r, tbl)
	if err != nil {
		t.Fatalf("cramers-v: %v", err)
	}
	if _, ok := res.(*hypothesis.AssociationResult); !ok {
		t.Fatalf("result type = %T", res)
	}
	if _, err := (Step{Test: "kruskal", Grouping: "g", Numeric: "x"}).Execute(r, tbl); err != nil {
		t.Fatalf("kruskal: %v", err)
	}

	cases := []struct {
		name string
		step Step
		want string
	}{
		{"unknown test", Step{Test: "anova"}, "unknown test"},
		{"missing fields", Step{Test: "biserial"}, "biserial: missing binary, numeric"},
		{"bad transform", Step{Test: "normality", Variable: "x", Transform: "sqrt"}, "sqrt"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := tc.step.Execute(r, tbl)
			if err == nil || !strings.Contains(err.Error(), tc.want) {
				t.Fatalf("err = %v, want containing %q", err, tc.want)
			}
		})
	}
}
