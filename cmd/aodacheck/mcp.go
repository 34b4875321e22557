package main

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/spf13/cobra"

	"github.com/hazyhaar/aodacheck/a11y"
)

func newMCPCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "mcp",
		Short: "Serve the analysis tools over MCP on stdio",
		Long: `Starts an MCP server on stdin/stdout exposing aodacheck_analyze,
aodacheck_simulate_vision, aodacheck_vision_types and aodacheck_narrate.
Logs go to stderr.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			a, err := bootstrap(ctx, cmd)
			if err != nil {
				return err
			}
			defer a.close()
			an, err := a.analyzer(ctx)
			if err != nil {
				return err
			}

			a.logger.Info("aodacheck: MCP server on stdio", "version", version)
			return a11y.NewMCPServer(an, version).Run(ctx, &mcp.StdioTransport{})
		},
	}
}
