package cmd

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/KaramelBytes/hypocheck/internal/analysis"
	"github.com/KaramelBytes/hypocheck/internal/report"
	"github.com/KaramelBytes/hypocheck/internal/study"
)

var (
	descOutputPath  string
	descDescription string
	descSampleRows  int
	descGroupBy     []string
	descCorr        bool
	descOutliers    bool
	descOutlierThr  float64
)

var describeCmd = &cobra.Command{
	Use:   "describe <file>",
	Short: "Profile a CSV/TSV/XLSX dataset: schema, stats, groups and correlations",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		path := args[0]
		opt, err := describeOptions(cmd, descSampleRows, descGroupBy, descCorr, descOutliers, descOutlierThr)
		if err != nil {
			return err
		}
		ds, err := loadDataset(cmd, path, opt)
		if err != nil {
			return err
		}
		rep := analysis.Describe(ds, opt)

		// Decide where to write: --output path, or attach to study, or stdout
		written := false
		if descOutputPath != "" {
			f, err := os.Create(descOutputPath)
			if err != nil {
				return fmt.Errorf("write output: %w", err)
			}
			if err := writeProfile(f, rep); err != nil {
				f.Close()
				return err
			}
			if err := f.Close(); err != nil {
				return fmt.Errorf("write output: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "✓ Wrote profile to %s\n", descOutputPath)
			written = true
		}
		st, err := activeStudy()
		if err != nil {
			return err
		}
		if st != nil {
			out, err := attachProfile(st, ds, rep, descDescription)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "✓ Added profile to study '%s' as %s\n", st.Name, filepath.Base(out))
			written = true
		}
		if !written {
			return writeProfile(cmd.OutOrStdout(), rep)
		}
		return nil
	},
}

// describeOptions applies the profiling flags on top of the loading options.
func describeOptions(cmd *cobra.Command, sampleRows int, groupBy []string, corr, outliers bool, thr float64) (analysis.Options, error) {
	opt, err := loadOptions()
	if err != nil {
		return opt, err
	}
	if sampleRows >= 0 {
		opt.SampleRows = sampleRows
	}
	opt.GroupBy = groupBy
	opt.Correlations = corr
	if cmd.Flags().Changed("outliers") {
		opt.Outliers = outliers
	}
	if thr > 0 {
		opt.OutlierThreshold = thr
	}
	return opt, nil
}

// writeProfile renders a dataset profile. Text and markdown share the
// Markdown form.
func writeProfile(w io.Writer, rep *analysis.Report) error {
	f, err := outputFormat()
	if err != nil {
		return err
	}
	switch f {
	case report.FormatJSON:
		return report.JSON(w, rep)
	case report.FormatHTML:
		_, err = w.Write(report.MarkdownToHTML(rep.Markdown()))
	default:
		_, err = io.WriteString(w, rep.Markdown()+"\n")
	}
	return err
}

// attachProfile registers ds in st and writes its profile under summaries/.
// An existing summary is never overwritten; a numeric suffix is added.
func attachProfile(st *study.Study, ds *analysis.Dataset, rep *analysis.Report, desc string) (string, error) {
	outDir := filepath.Join(st.RootDir(), "summaries")
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return "", err
	}
	base := filepath.Base(ds.Path)
	name := strings.TrimSuffix(base, filepath.Ext(base))
	if ds.Sheet != "" {
		name += "__sheet-" + sheetSlug(ds.Sheet)
	}
	outFile := filepath.Join(outDir, name+".summary.md")
	if _, statErr := os.Stat(outFile); statErr == nil {
		for idx := 2; ; idx++ {
			cand := filepath.Join(outDir, fmt.Sprintf("%s__%d.summary.md", name, idx))
			if _, err := os.Stat(cand); os.IsNotExist(err) {
				outFile = cand
				break
			}
		}
	}
	if err := os.WriteFile(outFile, []byte(rep.Markdown()), 0o644); err != nil {
		return "", fmt.Errorf("write study summary: %w", err)
	}
	if desc == "" {
		desc = "Auto-generated dataset profile"
	}
	st.AddDataset(ds, desc)
	if err := st.Save(); err != nil {
		return "", err
	}
	return outFile, nil
}

func sheetSlug(sheet string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(strings.TrimSpace(sheet)) {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
		} else if r == ' ' || r == '-' || r == '_' {
			b.WriteRune('-')
		}
	}
	s := strings.Trim(b.String(), "-")
	if s == "" {
		s = "sheet"
	}
	return s
}

func init() {
	rootCmd.AddCommand(describeCmd)
	describeCmd.Flags().StringVarP(&descOutputPath, "output", "o", "", "optional path to write the profile")
	describeCmd.Flags().StringVar(&descDescription, "desc", "", "description when attaching to a study")
	describeCmd.Flags().IntVar(&descSampleRows, "sample-rows", 5, "number of sample rows to include")
	describeCmd.Flags().StringSliceVar(&descGroupBy, "group-by", nil, "comma-separated column names to group by (repeatable)")
	describeCmd.Flags().BoolVar(&descCorr, "correlations", false, "compute Pearson correlations among numeric columns")
	describeCmd.Flags().BoolVar(&descOutliers, "outliers", true, "compute robust outlier counts (MAD)")
	describeCmd.Flags().Float64Var(&descOutlierThr, "outlier-threshold", 3.5, "robust |z| threshold for outliers (MAD-based)")
}
