package main

import (
	"github.com/spf13/cobra"
)

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "cite-runner",
		Short:         "cite-runner runs OGC CITE test suites on TeamEngine and reports their results",
		SilenceErrors: true,
		SilenceUsage:  true,
	}

	persistent := cmd.PersistentFlags()
	persistent.Bool("debug", false, "enable debug logging")
	persistent.Int("network-timeout", 120, "timeout in seconds for requests to teamengine")
	persistent.String("metrics-file", "", "write Prometheus metrics to this textfile")

	cmd.AddCommand(newParseCmd())
	cmd.AddCommand(newExecuteCmd())
	cmd.AddCommand(newExecuteStandaloneCmd())

	return cmd
}

// addResultFlags registers the flags shared by every command that produces a verdict.
func addResultFlags(cmd *cobra.Command, defaultFormat string) {
	flags := cmd.Flags()
	flags.String("output-format", defaultFormat, "output format (json|yaml|markdown|pretty|raw)")
	flags.Bool("treat-skipped-tests-as-failures", true, "count skipped tests as failed")
	flags.Bool("exit-with-error-on-suite-failed-result", false, "exit with status 1 when the suite does not pass")
	flags.String("markdown-template", "", "custom text/template file for markdown output")
}

// addTeamEngineFlags registers credentials for the engine.
func addTeamEngineFlags(cmd *cobra.Command) {
	flags := cmd.Flags()
	flags.String("teamengine-username", "ogctest", "username for authenticating with teamengine")
	flags.String("teamengine-password", "ogctest", "password for authenticating with teamengine")
}
