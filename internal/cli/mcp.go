package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	"github.com/shaman-narayanasamy/VirusHostInteractionPredictor/internal/mcp"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Model Context Protocol server commands",
	Long: `Commands for running vhip as an MCP server, exposing prediction and
run inspection tools to AI assistants.`,
}

var mcpServeCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the MCP server on stdio",
	Long: `Run the MCP server, communicating over stdin/stdout. The server exposes
tools for scoring a single virus-host pair, browsing the run history,
and reading metrics and alerts.

Register the binary with an MCP client as: vhip mcp serve`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if Computer == nil {
			return fmt.Errorf("feature computer not initialized")
		}

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
		defer stop()

		server := mcp.NewServer(Computer, Runs, MetricsCalc, AlertEngine, activeConfig().ModelPath, appVersion)
		if err := server.Run(ctx); err != nil {
			return fmt.Errorf("running MCP server: %w", err)
		}
		return nil
	},
}

func init() {
	mcpCmd.AddCommand(mcpServeCmd)
	rootCmd.AddCommand(mcpCmd)
}
