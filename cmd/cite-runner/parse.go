package main

import (
	"errors"
	"fmt"
	"path/filepath"
	"runtime"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/bgricker/cite-runner/internal/citeerr"
	"github.com/bgricker/cite-runner/internal/discovery"
	"github.com/bgricker/cite-runner/internal/output"
	"github.com/bgricker/cite-runner/internal/parser"
	"github.com/bgricker/cite-runner/internal/result"
)

func newParseCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "parse-result PATH...",
		Short: "Parse saved test suite results",
		Long: "Parse saved test suite results.\n\n" +
			"A directory stands for the *.xml files directly inside it. With several documents, " +
			"json output is a single array and yaml output a stream of documents separated by ---, " +
			"both in argument order.",
		Args: cobra.MinimumNArgs(1),
		RunE: runParse,
	}
	addResultFlags(cmd, string(output.FormatJSON))
	return cmd
}

func runParse(cmd *cobra.Command, args []string) error {
	a, err := loadApp(cmd)
	if err != nil {
		return err
	}

	format, err := a.format(output.FormatJSON)
	if err != nil {
		return err
	}
	if format == output.FormatRaw {
		return citeerr.New(citeerr.KindUnsupportedFormat, "parse result", "raw output is only available when executing a suite")
	}
	serializer, err := a.serializer()
	if err != nil {
		return err
	}

	paths, err := discovery.ResultFiles(a.root, args)
	if err != nil {
		if errors.Is(err, discovery.ErrNoResults) {
			return fmt.Errorf("no result documents found in %v", args)
		}
		return err
	}

	results, err := parseAll(cmd, a, paths)
	if err != nil {
		return err
	}

	data, err := serializer.SerializeAll(results, format)
	if err != nil {
		return err
	}
	if err := writeOutput(cmd.OutOrStdout(), data); err != nil {
		return err
	}
	for i, res := range results {
		a.metrics.RecordResult(paths[i], res)
	}

	if err := a.writeMetrics(); err != nil {
		return err
	}
	return a.verdict(results...)
}

// parseAll decodes every document concurrently and keeps argument order.
func parseAll(cmd *cobra.Command, a *app, paths []string) ([]result.TestSuiteResult, error) {
	p := parser.NewParser(a.cfg.TreatSkippedAsFailures)
	results := make([]result.TestSuiteResult, len(paths))

	g, ctx := errgroup.WithContext(cmd.Context())
	g.SetLimit(runtime.GOMAXPROCS(0))
	for i, path := range paths {
		if !filepath.IsAbs(path) {
			path = filepath.Join(a.root, path)
		}
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			res, err := p.ParseFile(path)
			if err != nil {
				return err
			}
			a.logger.Debug("parsed result", "path", path, "suite", res.Suite.Name, "status", res.Status())
			results[i] = res
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}
