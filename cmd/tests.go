package cmd

import (
	"github.com/spf13/cobra"

	"github.com/KaramelBytes/hypocheck/internal/hypothesis"
	"github.com/KaramelBytes/hypocheck/internal/study"
)

var (
	normYeo bool
	normLog bool

	bisYeo         bool
	bisLog         bool
	bisAssumptions bool

	cvShowCrosstab bool
	cvHistNorm     string
)

// testRun holds the runner and active study shared by the test commands.
type testRun struct {
	runner *hypothesis.Runner
	study  *study.Study
}

func prepare() (*testRun, error) {
	st, err := activeStudy()
	if err != nil {
		return nil, err
	}
	dir := ""
	if st != nil {
		dir = st.RootDir()
	}
	return &testRun{runner: newRunner(dir), study: st}, nil
}

var normalityCmd = &cobra.Command{
	Use:   "normality <file> <variable>",
	Short: "Kolmogorov-Smirnov test of a variable against N(0,1)",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		tr, err := hypothesis.TransformFromFlags(normYeo, normLog)
		if err != nil {
			return err
		}
		ds, err := openDataset(cmd, args[0])
		if err != nil {
			return err
		}
		run, err := prepare()
		if err != nil {
			return err
		}
		res, err := run.runner.Normality(ds.Table, args[1], hypothesis.NormalityOptions{
			Transform: tr,
			Plot:      plotOptions(""),
		})
		if err != nil {
			return err
		}
		return emit(cmd, run.study, ds, res)
	},
}

var leveneCmd = &cobra.Command{
	Use:   "levene <file> <grouping> <numeric>",
	Short: "Levene test for equal variances across two groups",
	Args:  cobra.ExactArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		ds, err := openDataset(cmd, args[0])
		if err != nil {
			return err
		}
		run, err := prepare()
		if err != nil {
			return err
		}
		res, err := run.runner.GroupVariance(ds.Table, args[1], args[2])
		if err != nil {
			return err
		}
		return emit(cmd, run.study, ds, res)
	},
}

var biserialCmd = &cobra.Command{
	Use:   "biserial <file> <binary> <numeric>",
	Short: "Point-biserial correlation between a binary and a numeric variable",
	Args:  cobra.ExactArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		tr, err := hypothesis.TransformFromFlags(bisYeo, bisLog)
		if err != nil {
			return err
		}
		ds, err := openDataset(cmd, args[0])
		if err != nil {
			return err
		}
		run, err := prepare()
		if err != nil {
			return err
		}
		res, err := run.runner.PointBiserial(ds.Table, args[1], args[2], hypothesis.BiserialOptions{
			Transform:           tr,
			ValidateAssumptions: bisAssumptions,
		})
		if err != nil {
			return err
		}
		return emit(cmd, run.study, ds, res)
	},
}

var kruskalCmd = &cobra.Command{
	Use:   "kruskal <file> <grouping> <numeric>",
	Short: "Kruskal-Wallis comparison of two groups with skewness and kurtosis",
	Args:  cobra.ExactArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		ds, err := openDataset(cmd, args[0])
		if err != nil {
			return err
		}
		run, err := prepare()
		if err != nil {
			return err
		}
		res, err := run.runner.RankGroups(ds.Table, args[1], args[2])
		if err != nil {
			return err
		}
		return emit(cmd, run.study, ds, res)
	},
}

var cramersCmd = &cobra.Command{
	Use:   "cramers-v <file> <target> <input>",
	Short: "Chi-squared independence test with Cramer's V",
	Args:  cobra.ExactArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		ds, err := openDataset(cmd, args[0])
		if err != nil {
			return err
		}
		run, err := prepare()
		if err != nil {
			return err
		}
		res, err := run.runner.CategoricalAssociation(ds.Table, args[1], args[2], hypothesis.AssociationOptions{
			ShowContingency: cvShowCrosstab,
			Plot:            plotOptions(cvHistNorm),
		})
		if err != nil {
			return err
		}
		return emit(cmd, run.study, ds, res)
	},
}

func init() {
	rootCmd.AddCommand(normalityCmd, leveneCmd, biserialCmd, kruskalCmd, cramersCmd)

	normalityCmd.Flags().BoolVar(&normYeo, "yeo-johnson", false, "apply a Yeo-Johnson transform before testing")
	normalityCmd.Flags().BoolVar(&normLog, "log1p", false, "apply log(1+x) before testing")

	biserialCmd.Flags().BoolVar(&bisYeo, "yeo-johnson", false, "apply a Yeo-Johnson transform to the numeric variable")
	biserialCmd.Flags().BoolVar(&bisLog, "log1p", false, "apply log(1+x) to the numeric variable")
	biserialCmd.Flags().BoolVar(&bisAssumptions, "test-assumptions", false, "also test per-group normality and equal variances")

	cramersCmd.Flags().BoolVar(&cvShowCrosstab, "show-crosstab", false, "print the contingency table")
	cramersCmd.Flags().StringVar(&cvHistNorm, "histnorm", "", "bar chart normalization: percent|count (default from config)")
}
