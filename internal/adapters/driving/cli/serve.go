package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/citedock/internal/adapters/driving/mcp"
	"github.com/custodia-labs/citedock/internal/logger"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the MCP server",
	Long: `Start the Model Context Protocol server so AI assistants can list case
documents, browse citations by exhibit and queue extraction.

By default the server communicates over stdio. Use --http to serve the
streamable HTTP transport at /mcp, together with /healthz and the
Prometheus metrics at /metrics.

Examples:
  # Stdio mode
  citedock serve

  # HTTP mode
  citedock serve --http :8080`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

// serveAddr is a flag for the serve command.
var serveAddr string

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "http", "", "HTTP listen address (empty = use stdio)")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, _ []string) error {
	if workspace == nil {
		return errors.New("workspace not configured")
	}

	server, err := mcp.NewServer(&mcp.Ports{
		Workspace:  workspace,
		Extraction: extractionTracker,
		Metrics:    metricsHandler,
	})
	if err != nil {
		return err
	}

	// The poller keeps extraction status fresh while the server runs.
	if statusPoller != nil {
		go func() {
			if err := statusPoller.Start(cmd.Context()); err != nil && !errors.Is(err, context.Canceled) {
				logger.Warn("status poller stopped: %v", err)
			}
		}()
		defer func() {
			if err := statusPoller.Stop(); err != nil {
				logger.Warn("status poller stop: %v", err)
			}
		}()
	}

	if serveAddr != "" {
		fmt.Fprintf(cmd.OutOrStdout(), "MCP server listening on http://%s\n", serveAddr)
		return server.RunHTTP(cmd.Context(), serveAddr)
	}

	return server.Run(cmd.Context())
}
