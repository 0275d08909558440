// Package cli implements the insightd command-line interface.
package cli

import "github.com/spf13/cobra"

// BuildInfo carries version information set at build time via ldflags.
type BuildInfo struct {
	Version   string
	Commit    string
	BuildDate string
}

var buildInfo = BuildInfo{Version: "dev", Commit: "unknown", BuildDate: "unknown"}

var rootCmd = &cobra.Command{
	Use:   "insightd",
	Short: "Metrics-ingestion gateway",
	Long: `insightd accepts pushed measurements (counters, gauges, histograms) over
HTTP, maintains a live metric registry, and exposes it in the Prometheus
text format for scraping.

Running insightd without a subcommand starts the gateway, same as
'insightd serve'.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runServeWithFlags(&serveFlagVals)
	},
	SilenceUsage: true,
}

// Execute runs the CLI with the given build information.
func Execute(info BuildInfo) error {
	buildInfo = info
	initServeCmd()
	initVersionCmd()
	return rootCmd.Execute()
}
