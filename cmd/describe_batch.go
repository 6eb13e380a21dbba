package cmd

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/KaramelBytes/hypocheck/internal/analysis"
	"github.com/KaramelBytes/hypocheck/internal/parser"
	"github.com/KaramelBytes/hypocheck/internal/study"
)

var (
	dbDescription string
	dbSampleRows  int
	dbGroupBy     []string
	dbCorr        bool
	dbOutliers    bool
	dbOutlierThr  float64
	dbOutDir      string
	dbQuiet       bool
	dbFailFast    bool
)

var describeBatchCmd = &cobra.Command{
	Use:   "describe-batch <files...>",
	Short: "Profile multiple CSV/TSV/XLSX files with progress and optional study attachment",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		files := expandInputs(args)
		if len(files) == 0 {
			return errors.New("no input files matched")
		}
		opt, err := describeOptions(cmd, dbSampleRows, dbGroupBy, dbCorr, dbOutliers, dbOutlierThr)
		if err != nil {
			return err
		}
		st, err := activeStudy()
		if err != nil {
			return err
		}
		if dbOutDir != "" {
			if err := os.MkdirAll(dbOutDir, 0o755); err != nil {
				return fmt.Errorf("create output dir: %w", err)
			}
		}

		out := cmd.OutOrStdout()
		total := len(files)
		var errs error
		for i, path := range files {
			if !dbQuiet {
				fmt.Fprintf(out, "[%d/%d] Processing %s...\n", i+1, total, filepath.Base(path))
			}
			if err := describeOne(cmd, path, opt, st); err != nil {
				logger.Warn("describe failed", zap.String("path", path), zap.Error(err))
				fmt.Fprintf(cmd.ErrOrStderr(), "✗ %s: %v\n", filepath.Base(path), err)
				errs = multierr.Append(errs, fmt.Errorf("%s: %w", path, err))
				if dbFailFast {
					break
				}
			}
		}
		if n := len(multierr.Errors(errs)); n > 0 {
			return fmt.Errorf("%d of %d files failed: %w", n, total, errs)
		}
		return nil
	},
}

func describeOne(cmd *cobra.Command, path string, opt analysis.Options, st *study.Study) error {
	ds, err := loadDataset(cmd, path, opt)
	if err != nil {
		return err
	}
	rep := analysis.Describe(ds, opt)
	written := false
	if dbOutDir != "" {
		base := filepath.Base(path)
		outFile := filepath.Join(dbOutDir, strings.TrimSuffix(base, filepath.Ext(base))+".summary.md")
		if err := os.WriteFile(outFile, []byte(rep.Markdown()), 0o644); err != nil {
			return fmt.Errorf("write summary: %w", err)
		}
		written = true
	}
	if st != nil {
		outFile, err := attachProfile(st, ds, rep, dbDescription)
		if err != nil {
			return err
		}
		if !dbQuiet {
			fmt.Fprintf(cmd.OutOrStdout(), "✓ Added profile to study '%s' as %s\n", st.Name, filepath.Base(outFile))
		}
		written = true
	}
	if !written && !dbQuiet {
		return writeProfile(cmd.OutOrStdout(), rep)
	}
	return nil
}

// expandInputs resolves globs, keeps literal paths that exist and drops
// duplicates and files no loader accepts. The result is sorted.
func expandInputs(args []string) []string {
	var files []string
	seen := map[string]struct{}{}
	for _, arg := range args {
		matches, _ := filepath.Glob(arg)
		if len(matches) == 0 {
			// treat as literal path if exists
			if _, err := os.Stat(arg); err == nil {
				matches = []string{arg}
			}
		}
		for _, m := range matches {
			if _, ok := seen[m]; ok || !parser.Supported(m) {
				continue
			}
			seen[m] = struct{}{}
			files = append(files, m)
		}
	}
	sort.Strings(files)
	return files
}

func init() {
	rootCmd.AddCommand(describeBatchCmd)
	describeBatchCmd.Flags().StringVar(&dbDescription, "desc", "", "description when attaching to a study")
	describeBatchCmd.Flags().IntVar(&dbSampleRows, "sample-rows", 5, "number of sample rows to include (0 disables samples)")
	describeBatchCmd.Flags().StringSliceVar(&dbGroupBy, "group-by", nil, "comma-separated column names to group by (repeatable)")
	describeBatchCmd.Flags().BoolVar(&dbCorr, "correlations", false, "compute Pearson correlations among numeric columns")
	describeBatchCmd.Flags().BoolVar(&dbOutliers, "outliers", true, "compute robust outlier counts (MAD)")
	describeBatchCmd.Flags().Float64Var(&dbOutlierThr, "outlier-threshold", 3.5, "robust |z| threshold for outliers (MAD-based)")
	describeBatchCmd.Flags().StringVarP(&dbOutDir, "output-dir", "o", "", "write one <name>.summary.md per file into this directory")
	describeBatchCmd.Flags().BoolVar(&dbQuiet, "quiet", false, "suppress progress and non-essential output")
	describeBatchCmd.Flags().BoolVar(&dbFailFast, "fail-fast", false, "stop at the first file that fails")
}
