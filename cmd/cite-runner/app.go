package main

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/bgricker/cite-runner/internal/config"
	"github.com/bgricker/cite-runner/internal/logging"
	"github.com/bgricker/cite-runner/internal/metrics"
	"github.com/bgricker/cite-runner/internal/output"
	"github.com/bgricker/cite-runner/internal/result"
)

// ErrSuiteFailed is returned when a suite did not pass and the caller asked
// for that to be an error.
var ErrSuiteFailed = errors.New("test suite did not pass")

// app bundles the resolved configuration of one command invocation.
type app struct {
	cfg     config.Config
	root    string
	logger  *slog.Logger
	metrics *metrics.Recorder
}

func loadApp(cmd *cobra.Command) (*app, error) {
	root, err := os.Getwd()
	if err != nil {
		return nil, fmt.Errorf("determine working directory: %w", err)
	}

	cfg, err := config.Load(root)
	if err != nil {
		return nil, err
	}

	flags, err := gatherFlags(cmd)
	if err != nil {
		return nil, err
	}
	config.ApplyFlags(&cfg, flags)

	logger := logging.New(logging.LevelFor(cfg.Debug), cmd.ErrOrStderr())
	return &app{cfg: cfg, root: root, logger: logger, metrics: metrics.NewRecorder()}, nil
}

// format resolves the configured output format, falling back to fallback.
func (a *app) format(fallback output.Format) (output.Format, error) {
	if a.cfg.OutputFormat == "" {
		return fallback, nil
	}
	return output.ParseFormat(a.cfg.OutputFormat)
}

func (a *app) serializer() (*output.Serializer, error) {
	return output.NewSerializer(output.Options{MarkdownTemplate: a.cfg.MarkdownTemplate})
}

func (a *app) writeMetrics() error {
	if a.cfg.MetricsFile == "" {
		return nil
	}
	if err := a.metrics.WriteTextfile(a.cfg.MetricsFile); err != nil {
		return err
	}
	a.logger.Debug("metrics written", "path", a.cfg.MetricsFile)
	return nil
}

// verdict maps the results onto the process outcome.
func (a *app) verdict(results ...result.TestSuiteResult) error {
	for _, res := range results {
		if res.Passed() {
			continue
		}
		a.logger.Info("test suite did not pass", "suite", res.Suite.Name, "status", res.Status())
		if a.cfg.ExitWithErrorOnFailure {
			return fmt.Errorf("%w: %s is %s", ErrSuiteFailed, res.Suite.Name, res.Status())
		}
	}
	return nil
}

func writeOutput(w io.Writer, data []byte) error {
	if len(data) > 0 && data[len(data)-1] != '\n' {
		data = append(data, '\n')
	}
	if _, err := w.Write(data); err != nil {
		return fmt.Errorf("write output: %w", err)
	}
	return nil
}
