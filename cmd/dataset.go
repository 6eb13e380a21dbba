package cmd

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/KaramelBytes/hypocheck/internal/analysis"
	"github.com/KaramelBytes/hypocheck/internal/chart"
	"github.com/KaramelBytes/hypocheck/internal/hypothesis"
	"github.com/KaramelBytes/hypocheck/internal/parser"
	"github.com/KaramelBytes/hypocheck/internal/report"
	"github.com/KaramelBytes/hypocheck/internal/study"
	"github.com/KaramelBytes/hypocheck/internal/utils"
)

// loadOptions merges config and flag settings. Flags win.
func loadOptions() (analysis.Options, error) {
	opt := analysis.DefaultOptions()
	if cfg != nil {
		if cfg.MaxRows > 0 {
			opt.MaxRows = cfg.MaxRows
		}
		if err := opt.SetSeparators(cfg.Delimiter, cfg.DecimalSeparator, cfg.ThousandsSeparator); err != nil {
			return opt, fmt.Errorf("config: %w", err)
		}
	}
	if flagMaxRows > 0 {
		opt.MaxRows = flagMaxRows
	}
	if err := opt.SetSeparators(flagDelimiter, flagDecimal, flagThousands); err != nil {
		return opt, err
	}
	return opt, nil
}

func loadDataset(cmd *cobra.Command, path string, opt analysis.Options) (*analysis.Dataset, error) {
	ds, err := parser.ParseFile(path, opt, parser.Sheet{Name: flagSheetName, Index: flagSheetIndex})
	if err != nil {
		return nil, err
	}
	logger.Debug("dataset loaded",
		zap.String("path", path),
		zap.String("sheet", ds.Sheet),
		zap.Int("rows", ds.Processed),
		zap.Strings("columns", ds.Table.Names()))
	for _, w := range ds.Warnings {
		fmt.Fprintf(cmd.ErrOrStderr(), "⚠ %s\n", w)
	}
	return ds, nil
}

// openDataset loads path with the effective options.
func openDataset(cmd *cobra.Command, path string) (*analysis.Dataset, error) {
	opt, err := loadOptions()
	if err != nil {
		return nil, err
	}
	return loadDataset(cmd, path, opt)
}

func outputFormat() (report.Format, error) {
	f := flagFormat
	if f == "" && cfg != nil {
		f = cfg.OutputFormat
	}
	return report.ParseFormat(f)
}

// newRunner wires the logger and, when --plot is set, a chart renderer.
func newRunner(studyDir string) *hypothesis.Runner {
	opts := []hypothesis.Option{hypothesis.WithLogger(logger)}
	if flagPlot {
		opts = append(opts, hypothesis.WithCharter(chartRenderer(studyDir)))
	}
	return hypothesis.New(opts...)
}

func chartRenderer(studyDir string) *chart.Renderer {
	r := &chart.Renderer{Dir: "charts"}
	if cfg != nil {
		r.Format = cfg.ChartFormat
		r.Width = cfg.ChartWidthIn
		r.Height = cfg.ChartHeightIn
		if cfg.ChartDir != "" {
			r.Dir = cfg.ChartDir
		}
	}
	switch {
	case flagChartDir != "":
		r.Dir = flagChartDir
	case studyDir != "":
		r.Dir = filepath.Join(studyDir, "charts")
	}
	return r
}

func plotOptions(norm string) hypothesis.PlotOptions {
	p := hypothesis.PlotOptions{Enabled: flagPlot, Bins: flagBins, Color: flagColor, Norm: norm}
	if cfg != nil {
		if p.Bins <= 0 {
			p.Bins = cfg.Bins
		}
		if p.Norm == "" {
			p.Norm = cfg.HistNorm
		}
	}
	return p
}

func defaultStudiesDir() (string, error) {
	dir := ""
	if cfg != nil {
		dir = cfg.StudiesDir
	}
	if strings.HasPrefix(dir, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home dir: %w", err)
		}
		dir = filepath.Join(home, strings.TrimLeft(strings.TrimPrefix(dir, "~"), `/\`))
	}
	if dir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home dir: %w", err)
		}
		dir = filepath.Join(home, ".hypocheck", "studies")
	}
	dir = filepath.Clean(dir)
	if err := utils.EnsureDir(dir); err != nil {
		return "", err
	}
	return dir, nil
}

// resolveStudyDir maps a study name to its directory. A value that looks
// like a path is walked up to the enclosing study instead.
func resolveStudyDir(name string) (string, error) {
	if name == "" {
		return "", errors.New("study name is required")
	}
	if name == "." || strings.ContainsAny(name, `/\`) {
		return utils.FindStudyRoot(name)
	}
	root, err := defaultStudiesDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(root, name), nil
}

// activeStudy loads the study named by --study, or returns nil when unset.
func activeStudy() (*study.Study, error) {
	if flagStudy == "" {
		return nil, nil
	}
	dir, err := resolveStudyDir(flagStudy)
	if err != nil {
		return nil, err
	}
	return study.Load(dir)
}

// emit renders a result and records it in the active study, if any.
func emit(cmd *cobra.Command, st *study.Study, ds *analysis.Dataset, v any) error {
	f, err := outputFormat()
	if err != nil {
		return err
	}
	if err := report.Write(cmd.OutOrStdout(), f, v); err != nil {
		return err
	}
	if st == nil {
		return nil
	}
	st.AddDataset(ds, "")
	rec, err := st.Record(ds.Path, v)
	if err != nil {
		return err
	}
	if err := st.Save(); err != nil {
		return err
	}
	fmt.Fprintf(cmd.ErrOrStderr(), "✓ Recorded %s result in study '%s'\n", rec.Test, st.Name)
	return nil
}
