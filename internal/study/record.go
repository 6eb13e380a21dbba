package study

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"
)

// Dataset holds metadata for a file registered in a study.
type Dataset struct {
	ID          string    `json:"id"`
	Path        string    `json:"path"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Sheet       string    `json:"sheet,omitempty"`
	Rows        int       `json:"rows"`
	Columns     []string  `json:"columns"`
	AddedAt     time.Time `json:"added_at"`
}

// Record is one recorded test outcome.
type Record struct {
	ID         string    `json:"id"`
	Test       string    `json:"test"`
	Dataset    string    `json:"dataset"`
	Variables  []string  `json:"variables"`
	Transform  string    `json:"transform"`
	N          int       `json:"n"`
	Statistic  float64   `json:"statistic"`
	PValue     float64   `json:"p_value"`
	Conclusion string    `json:"conclusion"`
	CramersV   float64   `json:"cramers_v,omitempty"`
	Strength   string    `json:"strength,omitempty"`
	RecordedAt time.Time `json:"recorded_at"`
}

// Markdown renders the study as a notebook page: datasets then results in
// the order they were recorded.
func (s *Study) Markdown() string {
	var b strings.Builder
	b.WriteString(fmt.Sprintf("# %s\n\n", s.Name))
	if s.Description != "" {
		b.WriteString(s.Description + "\n\n")
	}
	b.WriteString("## Datasets\n\n")
	if len(s.Datasets) == 0 {
		b.WriteString("(none)\n")
	} else {
		b.WriteString("| Name | Sheet | Rows | Columns | Description |\n| --- | --- | --- | --- | --- |\n")
		for _, d := range s.SortedDatasets() {
			b.WriteString(fmt.Sprintf("| %s | %s | %d | %d | %s |\n", d.Name, d.Sheet, d.Rows, len(d.Columns), d.Description))
		}
	}
	b.WriteString("\n## Results\n\n")
	if len(s.Results) == 0 {
		b.WriteString("(none)\n")
		return b.String()
	}
	b.WriteString("| Test | Dataset | Variables | Transform | N | Statistic | p-value | Conclusion |\n")
	b.WriteString("| --- | --- | --- | --- | --- | --- | --- | --- |\n")
	for _, r := range s.Results {
		stat := fmt.Sprintf("%.3f", r.Statistic)
		if r.Strength != "" {
			stat = fmt.Sprintf("%s (V=%.3f, %s)", stat, r.CramersV, r.Strength)
		}
		b.WriteString(fmt.Sprintf("| %s | %s | %s | %s | %d | %s | %.4f | %s |\n",
			r.Test, filepath.Base(r.Dataset), strings.Join(r.Variables, ", "), r.Transform, r.N, stat, r.PValue, r.Conclusion))
	}
	return b.String()
}
