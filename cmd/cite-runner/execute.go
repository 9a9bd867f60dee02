package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/bgricker/cite-runner/internal/citeerr"
	"github.com/bgricker/cite-runner/internal/config"
	"github.com/bgricker/cite-runner/internal/logging"
	"github.com/bgricker/cite-runner/internal/output"
	"github.com/bgricker/cite-runner/internal/parser"
	"github.com/bgricker/cite-runner/internal/teamengine"
)

func newExecuteCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "execute-test-suite BASE_URL SUITE [key=value...]",
		Short: "Execute a test suite with inputs given as arguments",
		Long: "Execute a test suite on TeamEngine.\n\n" +
			"Inputs are passed as key=value arguments, e.g. iut=http://localhost:5000 noofcollections=-1.",
		Args: cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			inputs, err := config.ParseSuiteInputs(args[2:])
			if err != nil {
				return err
			}
			return runSuite(cmd, args[0], args[1], inputs)
		},
	}
	addResultFlags(cmd, string(output.FormatMarkdown))
	addTeamEngineFlags(cmd)
	return cmd
}

func newExecuteStandaloneCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "execute-test-suite-standalone BASE_URL SUITE",
		Short: "Execute a test suite with inputs given as flags",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			raw, err := cmd.Flags().GetStringArray("test-suite-input")
			if err != nil {
				return fmt.Errorf("parse --test-suite-input: %w", err)
			}
			inputs, err := config.ParseSuiteInputs(raw)
			if err != nil {
				return err
			}
			return runSuite(cmd, args[0], args[1], inputs)
		},
	}
	addResultFlags(cmd, string(output.FormatMarkdown))
	addTeamEngineFlags(cmd)
	cmd.Flags().StringArray("test-suite-input", nil, "suite input as key=value (repeatable)")
	return cmd
}

func runSuite(cmd *cobra.Command, baseURL, suiteID string, inputs map[string][]string) error {
	const op = "execute suite"

	a, err := loadApp(cmd)
	if err != nil {
		return err
	}
	format, err := a.format(output.FormatMarkdown)
	if err != nil {
		return err
	}
	var serializer *output.Serializer
	if format != output.FormatRaw {
		if serializer, err = a.serializer(); err != nil {
			return err
		}
	}

	logger, runID := logging.WithRun(a.logger, "execute")
	creds := teamengine.Credentials{Username: a.cfg.Username, Password: a.cfg.Password}
	logger.Debug("starting suite execution", "base_url", baseURL, "suite", suiteID, "inputs", inputs, "credentials", creds)

	client := teamengine.New(teamengine.Options{
		RequestTimeout: a.cfg.NetworkTimeout,
		ReadyTimeout:   a.cfg.ReadyTimeout,
		PollInterval:   a.cfg.PollInterval,
		Logger:         logger,
		OnProbe:        a.metrics.RecordProbe,
	})

	ctx := cmd.Context()
	ready, err := client.EnsureReady(ctx, baseURL)
	if err != nil {
		return err
	}
	if !ready {
		if err := a.writeMetrics(); err != nil {
			logger.Warn("could not write metrics", "error", err)
		}
		return citeerr.Newf(citeerr.KindServiceUnavailable, op, "teamengine at %s did not become ready within %s (run %s)", baseURL, a.cfg.ReadyTimeout, runID)
	}

	start := time.Now()
	raw, err := client.Execute(ctx, baseURL, suiteID, inputs, creds)
	if err != nil {
		return err
	}
	a.metrics.RecordExecution(suiteID, time.Since(start))

	if format == output.FormatRaw {
		if a.cfg.ExitWithErrorOnFailure {
			logger.Warn("raw output is not parsed, ignoring --exit-with-error-on-suite-failed-result")
		}
		if _, err := cmd.OutOrStdout().Write(raw); err != nil {
			return fmt.Errorf("write output: %w", err)
		}
		return a.writeMetrics()
	}

	res, err := parser.NewParser(a.cfg.TreatSkippedAsFailures).Parse(raw)
	if err != nil {
		return err
	}
	logger.Debug("parsed suite result", "suite", res.Suite.Name, "status", res.Status(), "passed", res.Passed())
	a.metrics.RecordResult(baseURL, res)

	data, err := serializer.Serialize(res, format)
	if err != nil {
		return err
	}
	if err := writeOutput(cmd.OutOrStdout(), data); err != nil {
		return err
	}
	if err := a.writeMetrics(); err != nil {
		return err
	}
	return a.verdict(res)
}
