package study_test

import (
	"path/filepath"
	"strings"
	"testing"

	"github.com/KaramelBytes/hypocheck/internal/analysis"
	"github.com/KaramelBytes/hypocheck/internal/frame"
	"github.com/KaramelBytes/hypocheck/internal/hypothesis"
	"github.com/KaramelBytes/hypocheck/internal/study"
)

func dataset(t *testing.T, path string) *analysis.Dataset {
	t.Helper()
	tbl, err := frame.NewBuilder("d").
		AddCategorical("g", []string{"a", "b", "a"}).
		AddNumeric("x", []float64{1, 2, 3}).
		Build()
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	return &analysis.Dataset{Table: tbl, Path: path, Rows: 3, Processed: 3}
}

func TestSaveLoadRoundTripKeepsDatasetsAndResults(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "trial")
	s := study.New("trial", "pilot data", dir)
	d := s.AddDataset(dataset(t, "/data/pilot.csv"), "first batch")
	if d.ID == "" || d.Rows != 3 || len(d.Columns) != 2 {
		t.Fatalf("unexpected dataset entry: %+v", d)
	}
	res := &hypothesis.AssociationResult{
		Result: hypothesis.Result{
			Test: hypothesis.TestCramersV, Variables: []string{"g", "x"},
			N: 3, Statistic: 4.2, PValue: 0.01, Conclusion: hypothesis.Reject,
		},
		CramersV: 0.61, Strength: hypothesis.Strong,
	}
	if _, err := s.Record(d.Path, res); err != nil {
		t.Fatalf("record: %v", err)
	}
	if err := s.Save(); err != nil {
		t.Fatalf("save: %v", err)
	}

	got, err := study.Load(dir)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if got.RootDir() != dir || got.Name != "trial" {
		t.Fatalf("loaded = %+v", got)
	}
	if len(got.Datasets) != 1 || got.Datasets[d.ID].Description != "first batch" {
		t.Fatalf("datasets = %+v", got.Datasets)
	}
	if len(got.Results) != 1 {
		t.Fatalf("results = %d, want 1", len(got.Results))
	}
	r := got.Results[0]
	if r.Test != "cramers-v" || r.Conclusion != "reject" || r.Strength != "strong" || r.Transform != "identity" {
		t.Fatalf("record = %+v", r)
	}
}

func TestAddDatasetTwiceKeepsID(t *testing.T) {
	s := study.New("s", "", t.TempDir())
	first := s.AddDataset(dataset(t, "/data/a.csv"), "")
	second := s.AddDataset(dataset(t, "/data/a.csv"), "updated")
	if first.ID != second.ID || len(s.Datasets) != 1 {
		t.Fatalf("expected a single entry, got %d", len(s.Datasets))
	}
	if second.Description != "updated" {
		t.Fatalf("description = %q", second.Description)
	}
}

func TestRecordRejectsUnknownValue(t *testing.T) {
	s := study.New("s", "", t.TempDir())
	if _, err := s.Record("x.csv", "not a result"); err == nil {
		t.Fatal("expected error")
	}
}

func TestLoadMissingStudy(t *testing.T) {
	if _, err := study.Load(t.TempDir()); err == nil || !strings.Contains(err.Error(), "study not found") {
		t.Fatalf("expected not found error, got %v", err)
	}
}

func TestMarkdownListsResultsInOrder(t *testing.T) {
	s := study.New("notes", "", t.TempDir())
	s.AddDataset(dataset(t, "/data/a.csv"), "")
	for _, test := range []hypothesis.Test{hypothesis.TestNormality, hypothesis.TestLevene} {
		if _, err := s.Record("/data/a.csv", &hypothesis.Result{Test: test, Variables: []string{"x"}, PValue: 0.5}); err != nil {
			t.Fatal(err)
		}
	}
	md := s.Markdown()
	if !strings.HasPrefix(md, "# notes\n") {
		t.Fatalf("missing title: %q", md)
	}
	ks := strings.Index(md, "kolmogorov-smirnov")
	lev := strings.Index(md, "| levene |")
	if ks < 0 || lev < 0 || ks > lev {
		t.Fatalf("results out of order:\n%s", md)
	}
	if !strings.Contains(md, "| a.csv |  | 3 | 2 |") {
		t.Fatalf("dataset row missing:\n%s", md)
	}
}
