// insightd - metrics-ingestion gateway with a Prometheus exposition endpoint
package main

import (
	"fmt"
	"os"

	"github.com/insightd/insightd/pkg/cli"
)

// Build-time variables set via ldflags
var (
	Version   = "dev"
	Commit    = "unknown"
	BuildDate = "unknown"
)

func main() {
	if err := cli.Execute(cli.BuildInfo{Version: Version, Commit: Commit, BuildDate: BuildDate}); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
