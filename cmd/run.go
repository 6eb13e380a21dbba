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
	"gopkg.in/yaml.v3"

	"github.com/KaramelBytes/hypocheck/internal/frame"
	"github.com/KaramelBytes/hypocheck/internal/hypothesis"
)

var runFailFast bool

// Plan is a YAML list of tests run against one dataset.
type Plan struct {
	Dataset string `yaml:"dataset"`
	Sheet   string `yaml:"sheet"`
	Steps   []Step `yaml:"tests"`
}

// Step is one test in a plan. Which column fields apply depends on Test.
type Step struct {
	Test      string `yaml:"test"`
	Variable  string `yaml:"variable"`
	Grouping  string `yaml:"grouping"`
	Binary    string `yaml:"binary"`
	Numeric   string `yaml:"numeric"`
	Target    string `yaml:"target"`
	Input     string `yaml:"input"`
	Transform string `yaml:"transform"`

	TestAssumptions bool `yaml:"test_assumptions"`
	ShowCrosstab    bool `yaml:"show_crosstab"`

	Plot     bool   `yaml:"plot"`
	Bins     int    `yaml:"bins"`
	Color    string `yaml:"color"`
	HistNorm string `yaml:"histnorm"`
}

// LoadPlan reads a plan file. A relative dataset path is resolved against
// the plan's directory.
func LoadPlan(path string) (*Plan, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read plan: %w", err)
	}
	var p Plan
	if err := yaml.Unmarshal(b, &p); err != nil {
		return nil, fmt.Errorf("parse plan: %w", err)
	}
	if p.Dataset == "" {
		return nil, errors.New("plan: dataset is required")
	}
	if len(p.Steps) == 0 {
		return nil, errors.New("plan: no tests listed")
	}
	if !filepath.IsAbs(p.Dataset) {
		p.Dataset = filepath.Join(filepath.Dir(path), p.Dataset)
	}
	return &p, nil
}

func (s Step) plot() hypothesis.PlotOptions {
	p := plotOptions(s.HistNorm)
	p.Enabled = p.Enabled || s.Plot
	if s.Bins > 0 {
		p.Bins = s.Bins
	}
	if s.Color != "" {
		p.Color = s.Color
	}
	return p
}

func requireFields(test string, fields map[string]string) error {
	var missing []string
	for k, v := range fields {
		if strings.TrimSpace(v) == "" {
			missing = append(missing, k)
		}
	}
	if len(missing) == 0 {
		return nil
	}
	sort.Strings(missing)
	return fmt.Errorf("%s: missing %s", test, strings.Join(missing, ", "))
}

// Execute runs the step on t and returns one of the hypothesis result types.
func (s Step) Execute(r *hypothesis.Runner, t *frame.Table) (any, error) {
	tr, err := hypothesis.ParseTransform(s.Transform)
	if err != nil {
		return nil, err
	}
	switch strings.ToLower(strings.TrimSpace(s.Test)) {
	case "normality", "ks", string(hypothesis.TestNormality):
		if err := requireFields("normality", map[string]string{"variable": s.Variable}); err != nil {
			return nil, err
		}
		return r.Normality(t, s.Variable, hypothesis.NormalityOptions{Transform: tr, Plot: s.plot()})
	case "levene":
		if err := requireFields("levene", map[string]string{"grouping": s.Grouping, "numeric": s.Numeric}); err != nil {
			return nil, err
		}
		return r.GroupVariance(t, s.Grouping, s.Numeric)
	case "biserial", string(hypothesis.TestPointBiserial):
		if err := requireFields("biserial", map[string]string{"binary": s.Binary, "numeric": s.Numeric}); err != nil {
			return nil, err
		}
		return r.PointBiserial(t, s.Binary, s.Numeric, hypothesis.BiserialOptions{Transform: tr, ValidateAssumptions: s.TestAssumptions})
	case "kruskal", string(hypothesis.TestKruskalWallis):
		if err := requireFields("kruskal", map[string]string{"grouping": s.Grouping, "numeric": s.Numeric}); err != nil {
			return nil, err
		}
		return r.RankGroups(t, s.Grouping, s.Numeric)
	case "cramers-v", "chi2", "chi-square":
		if err := requireFields("cramers-v", map[string]string{"target": s.Target, "input": s.Input}); err != nil {
			return nil, err
		}
		return r.CategoricalAssociation(t, s.Target, s.Input, hypothesis.AssociationOptions{ShowContingency: s.ShowCrosstab, Plot: s.plot()})
	}
	return nil, fmt.Errorf("unknown test %q (use normality|levene|biserial|kruskal|cramers-v)", s.Test)
}

var runPlanCmd = &cobra.Command{
	Use:   "run <plan.yaml>",
	Short: "Run a YAML plan of tests against one dataset",
	Long: `Run executes every test listed in a plan file, for example:

  dataset: harvest.csv
  tests:
    - test: normality
      variable: yield
      transform: yeo-johnson
    - test: cramers-v
      target: grade
      input: plot
      show_crosstab: true

Failed steps are reported and the remaining steps still run unless --fail-fast is set.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		plan, err := LoadPlan(args[0])
		if err != nil {
			return err
		}
		if plan.Sheet != "" && flagSheetName == "" {
			flagSheetName = plan.Sheet
		}
		ds, err := openDataset(cmd, plan.Dataset)
		if err != nil {
			return err
		}
		run, err := prepare()
		if err != nil {
			return err
		}
		for _, s := range plan.Steps {
			if s.Plot && run.runner.Charter == nil {
				dir := ""
				if run.study != nil {
					dir = run.study.RootDir()
				}
				run.runner.Charter = chartRenderer(dir)
				break
			}
		}

		out := cmd.OutOrStdout()
		total := len(plan.Steps)
		var errs error
		for i, s := range plan.Steps {
			fmt.Fprintf(out, "[%d/%d] %s\n", i+1, total, s.Test)
			res, err := s.Execute(run.runner, ds.Table)
			if err == nil {
				err = emit(cmd, run.study, ds, res)
			}
			if err != nil {
				logger.Warn("plan step failed", zap.Int("step", i+1), zap.String("test", s.Test), zap.Error(err))
				fmt.Fprintf(cmd.ErrOrStderr(), "✗ step %d (%s): %v\n", i+1, s.Test, err)
				errs = multierr.Append(errs, fmt.Errorf("step %d (%s): %w", i+1, s.Test, err))
				if runFailFast {
					break
				}
			}
		}
		if n := len(multierr.Errors(errs)); n > 0 {
			return fmt.Errorf("%d of %d steps failed: %w", n, total, errs)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(runPlanCmd)
	runPlanCmd.Flags().BoolVar(&runFailFast, "fail-fast", false, "stop at the first failing step")
}
