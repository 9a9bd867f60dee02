package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/bgricker/cite-runner/internal/config"
)

func gatherFlags(cmd *cobra.Command) (config.FlagValues, error) {
	flags := cmd.Flags()
	var values config.FlagValues

	if flags.Changed("output-format") {
		v, err := flags.GetString("output-format")
		if err != nil {
			return values, fmt.Errorf("parse --output-format: %w", err)
		}
		values.OutputFormat = config.StringFlag{Value: v, Set: true}
	}

	if flags.Changed("treat-skipped-tests-as-failures") {
		v, err := flags.GetBool("treat-skipped-tests-as-failures")
		if err != nil {
			return values, fmt.Errorf("parse --treat-skipped-tests-as-failures: %w", err)
		}
		values.TreatSkippedAsFailures = config.BoolFlag{Value: v, Set: true}
	}

	if flags.Changed("exit-with-error-on-suite-failed-result") {
		v, err := flags.GetBool("exit-with-error-on-suite-failed-result")
		if err != nil {
			return values, fmt.Errorf("parse --exit-with-error-on-suite-failed-result: %w", err)
		}
		values.ExitWithErrorOnFailure = config.BoolFlag{Value: v, Set: true}
	}

	if flags.Changed("network-timeout") {
		v, err := flags.GetInt("network-timeout")
		if err != nil {
			return values, fmt.Errorf("parse --network-timeout: %w", err)
		}
		if v <= 0 {
			return values, fmt.Errorf("--network-timeout must be positive, got %d", v)
		}
		values.NetworkTimeout = config.DurationFlag{Value: time.Duration(v) * time.Second, Set: true}
	}

	if flags.Changed("teamengine-username") {
		v, err := flags.GetString("teamengine-username")
		if err != nil {
			return values, fmt.Errorf("parse --teamengine-username: %w", err)
		}
		values.Username = config.StringFlag{Value: v, Set: true}
	}

	if flags.Changed("teamengine-password") {
		v, err := flags.GetString("teamengine-password")
		if err != nil {
			return values, fmt.Errorf("parse --teamengine-password: %w", err)
		}
		values.Password = config.StringFlag{Value: v, Set: true}
	}

	if flags.Changed("markdown-template") {
		v, err := flags.GetString("markdown-template")
		if err != nil {
			return values, fmt.Errorf("parse --markdown-template: %w", err)
		}
		values.MarkdownTemplate = config.StringFlag{Value: v, Set: true}
	}

	if flags.Changed("metrics-file") {
		v, err := flags.GetString("metrics-file")
		if err != nil {
			return values, fmt.Errorf("parse --metrics-file: %w", err)
		}
		values.MetricsFile = config.StringFlag{Value: v, Set: true}
	}

	if flags.Changed("debug") {
		v, err := flags.GetBool("debug")
		if err != nil {
			return values, fmt.Errorf("parse --debug: %w", err)
		}
		values.Debug = config.BoolFlag{Value: v, Set: true}
	}

	return values, nil
}
