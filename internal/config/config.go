// Package config loads and saves the global hypocheck settings.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// Global configuration structure.
type Global struct {
	StudiesDir string `mapstructure:"studies_dir" yaml:"studies_dir"`

	// Charts
	ChartDir      string  `mapstructure:"chart_dir" yaml:"chart_dir"`
	ChartFormat   string  `mapstructure:"chart_format" yaml:"chart_format"`
	ChartWidthIn  float64 `mapstructure:"chart_width_in" yaml:"chart_width_in"`
	ChartHeightIn float64 `mapstructure:"chart_height_in" yaml:"chart_height_in"`
	Bins          int     `mapstructure:"bins" yaml:"bins"`
	HistNorm      string  `mapstructure:"histnorm" yaml:"histnorm"`

	OutputFormat string `mapstructure:"output_format" yaml:"output_format"`

	// Loading
	MaxRows            int    `mapstructure:"max_rows" yaml:"max_rows"`
	Delimiter          string `mapstructure:"delimiter" yaml:"delimiter"`
	DecimalSeparator   string `mapstructure:"decimal_separator" yaml:"decimal_separator"`
	ThousandsSeparator string `mapstructure:"thousands_separator" yaml:"thousands_separator"`

	LogLevel string `mapstructure:"log_level" yaml:"log_level"`
}

// Dir returns ~/.hypocheck.
func Dir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve home dir: %w", err)
	}
	return filepath.Join(home, ".hypocheck"), nil
}

// Save writes the given configuration to the cfgFile path. If cfgFile is empty,
// it writes to ~/.hypocheck/config.yaml, creating the directory if necessary.
func Save(c *Global, cfgFile string) error {
	path := cfgFile
	if path == "" {
		dir, err := Dir()
		if err != nil {
			return err
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("mkdir config dir: %w", err)
		}
		path = filepath.Join(dir, "config.yaml")
	}
	b, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshal yaml: %w", err)
	}
	if err := os.WriteFile(path, b, 0o644); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}

// Load loads configuration from file, env, and defaults.
// Precedence: flags (cfgFile) > env > config file > defaults.
func Load(cfgFile string) (*Global, error) {
	v := viper.New()
	v.SetEnvPrefix("HYPOCHECK")
	v.AutomaticEnv()

	v.SetDefault("chart_dir", "charts")
	v.SetDefault("chart_format", "png")
	v.SetDefault("chart_width_in", 8.0)
	v.SetDefault("chart_height_in", 5.0)
	v.SetDefault("bins", 30)
	v.SetDefault("histnorm", "percent")
	v.SetDefault("output_format", "text")
	v.SetDefault("max_rows", 100000)
	v.SetDefault("delimiter", "")
	v.SetDefault("decimal_separator", "")
	v.SetDefault("thousands_separator", "")
	v.SetDefault("log_level", "warn")
	v.SetDefault("studies_dir", "")

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		dir, err := Dir()
		if err != nil {
			return nil, err
		}
		v.AddConfigPath(dir)
		v.SetConfigName("config")
		v.SetConfigType("yaml")
	}
	// optional read
	_ = v.ReadInConfig()

	var c Global
	if err := v.Unmarshal(&c); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	if c.StudiesDir == "" {
		dir, err := Dir()
		if err != nil {
			return nil, err
		}
		c.StudiesDir = filepath.Join(dir, "studies")
	}
	return &c, nil
}

// Keys lists the settable configuration keys in sorted order.
func Keys() []string {
	keys := make([]string, 0, len(setters))
	for k := range setters {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Set assigns one key from its string form, validating enumerated values.
func (c *Global) Set(key, value string) error {
	set, ok := setters[strings.ToLower(strings.TrimSpace(key))]
	if !ok {
		return fmt.Errorf("unknown config key %q (known: %s)", key, strings.Join(Keys(), ", "))
	}
	if err := set(c, strings.TrimSpace(value)); err != nil {
		return fmt.Errorf("%s: %w", key, err)
	}
	return nil
}

func oneOf(v string, allowed ...string) error {
	for _, a := range allowed {
		if v == a {
			return nil
		}
	}
	return fmt.Errorf("invalid value %q (use %s)", v, strings.Join(allowed, "|"))
}

var setters = map[string]func(*Global, string) error{
	"studies_dir": func(c *Global, v string) error { c.StudiesDir = v; return nil },
	"chart_dir":   func(c *Global, v string) error { c.ChartDir = v; return nil },
	"chart_format": func(c *Global, v string) error {
		if err := oneOf(v, "png", "svg"); err != nil {
			return err
		}
		c.ChartFormat = v
		return nil
	},
	"chart_width_in":  positiveFloat(func(c *Global, f float64) { c.ChartWidthIn = f }),
	"chart_height_in": positiveFloat(func(c *Global, f float64) { c.ChartHeightIn = f }),
	"bins":            positiveInt(func(c *Global, n int) { c.Bins = n }),
	"max_rows":        positiveInt(func(c *Global, n int) { c.MaxRows = n }),
	"histnorm": func(c *Global, v string) error {
		if err := oneOf(v, "percent", "count"); err != nil {
			return err
		}
		c.HistNorm = v
		return nil
	},
	"output_format": func(c *Global, v string) error {
		if err := oneOf(v, "text", "markdown", "html", "json"); err != nil {
			return err
		}
		c.OutputFormat = v
		return nil
	},
	"delimiter":           func(c *Global, v string) error { c.Delimiter = v; return nil },
	"decimal_separator":   func(c *Global, v string) error { c.DecimalSeparator = v; return nil },
	"thousands_separator": func(c *Global, v string) error { c.ThousandsSeparator = v; return nil },
	"log_level": func(c *Global, v string) error {
		if err := oneOf(v, "debug", "info", "warn", "error"); err != nil {
			return err
		}
		c.LogLevel = v
		return nil
	},
}

func positiveInt(assign func(*Global, int)) func(*Global, string) error {
	return func(c *Global, v string) error {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			return fmt.Errorf("expected a positive integer, got %q", v)
		}
		assign(c, n)
		return nil
	}
}

func positiveFloat(assign func(*Global, float64)) func(*Global, string) error {
	return func(c *Global, v string) error {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil || f <= 0 {
			return fmt.Errorf("expected a positive number, got %q", v)
		}
		assign(c, f)
		return nil
	}
}
