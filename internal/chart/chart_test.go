package chart

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/KaramelBytes/hypocheck/internal/hypothesis"
)

func TestSlug(t *testing.T) {
	cases := map[string]string{
		"Distribution of Temp (°F)": "distribution-of-temp-f",
		"  ":                        "chart",
		"a/b":                       "a-b",
	}
	for in, want := range cases {
		if got := Slug(in); got != want {
			t.Fatalf("Slug(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestHistogramWritesFile(t *testing.T) {
	dir := t.TempDir()
	r := &Renderer{Dir: filepath.Join(dir, "charts"), Format: "svg"}
	path, err := r.Histogram(hypothesis.HistogramSpec{
		Title:  "Distribution of x",
		XLabel: "x",
		Bins:   5,
		Series: []hypothesis.Series{
			{Label: "a", Values: []float64{1, 2, 2, 3, 4}},
			{Label: "b", Values: []float64{2, 3, 5, 5}},
		},
	})
	if err != nil {
		t.Fatalf("Histogram: %v", err)
	}
	if filepath.Base(path) != "distribution-of-x.svg" {
		t.Fatalf("path = %s", path)
	}
	if st, err := os.Stat(path); err != nil || st.Size() == 0 {
		t.Fatalf("chart not written: %v", err)
	}

	if _, err := r.Histogram(hypothesis.HistogramSpec{Title: "empty"}); err == nil {
		t.Fatal("expected error for empty histogram")
	}
}

func TestCategoryBarsWritesFile(t *testing.T) {
	r := &Renderer{Dir: t.TempDir()}
	path, err := r.CategoryBars(hypothesis.BarSpec{
		Title:      "Distribution of color",
		XLabel:     "color",
		Norm:       "percent",
		Categories: []string{"blue", "red"},
		Series: []hypothesis.Series{
			{Label: "u", Values: []float64{40, 60}},
			{Label: "v", Values: []float64{70, 30}},
		},
	})
	if err != nil {
		t.Fatalf("CategoryBars: %v", err)
	}
	if filepath.Ext(path) != ".png" {
		t.Fatalf("default format should be png, got %s", path)
	}
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("chart not written: %v", err)
	}
}

func TestUnsupportedFormat(t *testing.T) {
	r := &Renderer{Dir: t.TempDir(), Format: "gif"}
	_, err := r.CategoryBars(hypothesis.BarSpec{Categories: []string{"a"}, Series: []hypothesis.Series{{Values: []float64{1}}}})
	if err == nil {
		t.Fatal("expected unsupported format error")
	}
}
