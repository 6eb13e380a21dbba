package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	cfgpkg "github.com/KaramelBytes/hypocheck/internal/config"
)

var (
	cfgFile string
	debug   bool

	// Dataset loading
	flagSheetName  string
	flagSheetIndex int
	flagDelimiter  string
	flagDecimal    string
	flagThousands  string
	flagMaxRows    int

	// Output and side effects
	flagFormat   string
	flagStudy    string
	flagPlot     bool
	flagBins     int
	flagColor    string
	flagChartDir string

	// Loaded configuration
	cfg *cfgpkg.Global
	// logger is replaced by loadConfig; commands may use it before that.
	logger = zap.NewNop()
)

var rootCmd = &cobra.Command{
	Use:   "hypocheck",
	Short: "hypocheck: quick hypothesis tests for exploratory data analysis",
	Long: `hypocheck loads CSV/TSV/XLSX datasets and runs the common EDA hypothesis tests
(Kolmogorov-Smirnov normality, Levene, point-biserial, Kruskal-Wallis and
Cramer's V) with a plain-language conclusion at the 0.05 level. Results can be
rendered as text, Markdown, HTML or JSON, charted, and recorded in a study.`,
	SilenceUsage: true,
}

// Execute is the entry point called by main.main()
func Execute() {
	defer func() { _ = logger.Sync() }()
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "✗ Error:", err)
		_ = logger.Sync()
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(loadConfig)

	f := rootCmd.PersistentFlags()
	f.StringVar(&cfgFile, "config", "", "config file (default is ~/.hypocheck/config.yaml)")
	f.BoolVar(&debug, "debug", false, "enable debug logging")
	f.StringVar(&flagFormat, "format", "", "output format: text|markdown|html|json (default from config)")
	f.StringVar(&flagSheetName, "sheet-name", "", "XLSX: sheet name to load")
	f.IntVar(&flagSheetIndex, "sheet-index", 0, "XLSX: 1-based sheet index (used if --sheet-name not provided)")
	f.StringVar(&flagDelimiter, "delimiter", "", "CSV delimiter: ',' | ';' | 'tab'")
	f.StringVar(&flagDecimal, "decimal", "", "decimal separator for numbers: '.'|'comma' (auto-detect if omitted)")
	f.StringVar(&flagThousands, "thousands", "", "thousands separator for numbers: ','|'.'|'space' (auto-detect if omitted)")
	f.IntVar(&flagMaxRows, "max-rows", 0, "maximum rows to load (default from config)")
	f.StringVarP(&flagStudy, "study", "s", "", "study name (or path inside a study) to record results in")
	f.BoolVar(&flagPlot, "plot", false, "draw a chart for tests that support it")
	f.IntVar(&flagBins, "bins", 0, "histogram bins (default from config)")
	f.StringVar(&flagColor, "color", "", "column whose values split the chart into series")
	f.StringVar(&flagChartDir, "chart-dir", "", "directory for charts (default from config, or the study's charts/)")
}

func loadConfig() {
	c, err := cfgpkg.Load(cfgFile)
	if err != nil {
		// Non-fatal: fall back to built-in defaults
		fmt.Fprintf(os.Stderr, "⚠ Warning: failed to load config: %v\n", err)
		c = &cfgpkg.Global{}
	}
	cfg = c

	l, err := newLogger(cfg.LogLevel, debug)
	if err != nil {
		fmt.Fprintf(os.Stderr, "⚠ Warning: %v\n", err)
		return
	}
	logger = l
}

// newLogger builds a console logger on stderr. debug wins over level.
func newLogger(level string, debug bool) (*zap.Logger, error) {
	lvl := zapcore.WarnLevel
	if debug {
		lvl = zapcore.DebugLevel
	} else if level != "" {
		if err := lvl.UnmarshalText([]byte(level)); err != nil {
			return nil, fmt.Errorf("invalid log_level %q: %w", level, err)
		}
	}
	zc := zap.NewDevelopmentConfig()
	zc.Level = zap.NewAtomicLevelAt(lvl)
	zc.DisableStacktrace = true
	zc.OutputPaths = []string{"stderr"}
	return zc.Build()
}
