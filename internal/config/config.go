package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// FileName is the optional config file looked up in the working directory.
const FileName = ".cite-runner.yml"

// Config captures CLI options sourced from config files or flags.
type Config struct {
	OutputFormat string `yaml:"output_format"`

	TreatSkippedAsFailures bool `yaml:"treat_skipped_tests_as_failures"`
	ExitWithErrorOnFailure bool `yaml:"exit_with_error_on_suite_failed_result"`

	NetworkTimeout time.Duration `yaml:"network_timeout"`
	ReadyTimeout   time.Duration `yaml:"ready_timeout"`
	PollInterval   time.Duration `yaml:"poll_interval"`

	Username string `yaml:"teamengine_username"`
	Password string `yaml:"-"`

	MarkdownTemplate string `yaml:"markdown_template"`
	MetricsFile      string `yaml:"metrics_file"`
	Debug            bool   `yaml:"debug"`
}

// fileConfig mirrors Config with pointers for booleans so a file can turn a
// default off.
type fileConfig struct {
	OutputFormat           string        `yaml:"output_format"`
	TreatSkippedAsFailures *bool         `yaml:"treat_skipped_tests_as_failures"`
	ExitWithErrorOnFailure *bool         `yaml:"exit_with_error_on_suite_failed_result"`
	NetworkTimeout         time.Duration `yaml:"network_timeout"`
	ReadyTimeout           time.Duration `yaml:"ready_timeout"`
	PollInterval           time.Duration `yaml:"poll_interval"`
	Username               string        `yaml:"teamengine_username"`
	MarkdownTemplate       string        `yaml:"markdown_template"`
	MetricsFile            string        `yaml:"metrics_file"`
	Debug                  bool          `yaml:"debug"`
}

const (
	// DefaultUsername and DefaultPassword match the stock TeamEngine image.
	DefaultUsername = "ogctest"
	DefaultPassword = "ogctest"
)

// Default returns the baseline configuration used when no flags or config file specify values.
func Default() Config {
	return Config{
		TreatSkippedAsFailures: true,
		NetworkTimeout:         120 * time.Second,
		ReadyTimeout:           60 * time.Second,
		PollInterval:           5 * time.Second,
		Username:               DefaultUsername,
		Password:               DefaultPassword,
	}
}

// Load reads .cite-runner.yml from dir when present. Missing files are ignored.
func Load(dir string) (Config, error) {
	cfg := Default()
	path := filepath.Join(dir, FileName)
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("read config %q: %w", path, err)
	}

	var fileCfg fileConfig
	if err := yaml.Unmarshal(data, &fileCfg); err != nil {
		return cfg, fmt.Errorf("parse config %q: %w", path, err)
	}

	cfg = merge(cfg, fileCfg)
	if cfg.MarkdownTemplate != "" && !filepath.IsAbs(cfg.MarkdownTemplate) {
		cfg.MarkdownTemplate = filepath.Join(dir, cfg.MarkdownTemplate)
	}
	return cfg, nil
}

func merge(base Config, override fileConfig) Config {
	out := base

	if override.OutputFormat != "" {
		out.OutputFormat = override.OutputFormat
	}
	if override.TreatSkippedAsFailures != nil {
		out.TreatSkippedAsFailures = *override.TreatSkippedAsFailures
	}
	if override.ExitWithErrorOnFailure != nil {
		out.ExitWithErrorOnFailure = *override.ExitWithErrorOnFailure
	}
	if override.NetworkTimeout > 0 {
		out.NetworkTimeout = override.NetworkTimeout
	}
	if override.ReadyTimeout > 0 {
		out.ReadyTimeout = override.ReadyTimeout
	}
	if override.PollInterval > 0 {
		out.PollInterval = override.PollInterval
	}
	if override.Username != "" {
		out.Username = override.Username
	}
	if override.MarkdownTemplate != "" {
		out.MarkdownTemplate = override.MarkdownTemplate
	}
	if override.MetricsFile != "" {
		out.MetricsFile = override.MetricsFile
	}
	if override.Debug {
		out.Debug = true
	}

	return out
}

// ApplyFlags mutates cfg by applying values from CLI flags when they are present.
func ApplyFlags(cfg *Config, flags FlagValues) {
	if flags.OutputFormat.Set {
		cfg.OutputFormat = flags.OutputFormat.Value
	}
	if flags.TreatSkippedAsFailures.Set {
		cfg.TreatSkippedAsFailures = flags.TreatSkippedAsFailures.Value
	}
	if flags.ExitWithErrorOnFailure.Set {
		cfg.ExitWithErrorOnFailure = flags.ExitWithErrorOnFailure.Value
	}
	if flags.NetworkTimeout.Set {
		cfg.NetworkTimeout = flags.NetworkTimeout.Value
	}
	if flags.Username.Set {
		cfg.Username = flags.Username.Value
	}
	if flags.Password.Set {
		cfg.Password = flags.Password.Value
	}
	if flags.MarkdownTemplate.Set {
		cfg.MarkdownTemplate = flags.MarkdownTemplate.Value
	}
	if flags.MetricsFile.Set {
		cfg.MetricsFile = flags.MetricsFile.Value
	}
	if flags.Debug.Set {
		cfg.Debug = flags.Debug.Value
	}
}

// FlagValues captures CLI flag state with knowledge of whether each flag was set explicitly.
type FlagValues struct {
	OutputFormat           StringFlag
	TreatSkippedAsFailures BoolFlag
	ExitWithErrorOnFailure BoolFlag
	NetworkTimeout         DurationFlag
	Username               StringFlag
	Password               StringFlag
	MarkdownTemplate       StringFlag
	MetricsFile            StringFlag
	Debug                  BoolFlag
}

// StringFlag represents a string flag and whether it was set.
type StringFlag struct {
	Value string
	Set   bool
}

// BoolFlag represents a bool flag and whether it was set.
type BoolFlag struct {
	Value bool
	Set   bool
}

// DurationFlag represents a duration flag and whether it was set.
type DurationFlag struct {
	Value time.Duration
	Set   bool
}

// ParseSuiteInputs turns key=value arguments into suite parameters. Keys may
// repeat; their values keep the order in which they were given.
func ParseSuiteInputs(raw []string) (map[string][]string, error) {
	inputs := make(map[string][]string, len(raw))
	for _, item := range raw {
		key, value, ok := strings.Cut(item, "=")
		key = strings.TrimSpace(key)
		if !ok || key == "" {
			return nil, fmt.Errorf("invalid test suite input %q: expected key=value", item)
		}
		inputs[key] = append(inputs[key], value)
	}
	return inputs, nil
}
