// Command aodacheck checks web pages against WCAG 2.0 AA for AODA compliance.
//
// Usage:
//
//	aodacheck serve                          # HTTP API + /mcp
//	aodacheck analyze https://example.com    # one report to stdout
//	aodacheck simulate https://example.com --types glaucoma,protanopia
//	aodacheck vision-types
//	aodacheck narrate https://example.com
//	aodacheck mcp                            # MCP over stdio
//	aodacheck maintenance on "Upgrading"     # toggle 503 on running servers
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	_ "modernc.org/sqlite"
)

// version is set at build time via -ldflags.
var version = "1.0.0"

var rootFlags struct {
	config string
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "aodacheck",
		Short: "AODA / WCAG 2.0 AA accessibility checker",
		Long: `aodacheck loads a page in headless Chrome, runs the axe-core rule engine,
explains the violations in plain language and renders the page through
vision impairment simulations.

Configuration comes from an optional YAML file (--config), a .env file in
the working directory, then the process environment.`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		CompletionOptions: cobra.CompletionOptions{
			HiddenDefaultCmd: true,
		},
	}
	root.PersistentFlags().StringVarP(&rootFlags.config, "config", "c", "", "path to aodacheck.yaml")

	root.AddCommand(
		newServeCmd(),
		newAnalyzeCmd(),
		newSimulateCmd(),
		newVisionTypesCmd(),
		newNarrateCmd(),
		newMCPCmd(),
		newMaintenanceCmd(),
	)
	return root
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "aodacheck:", err)
		os.Exit(1)
	}
}
