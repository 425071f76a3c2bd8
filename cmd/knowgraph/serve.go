package main

import (
	"fmt"

	"github.com/mark3labs/mcp-go/server"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	kgserver "github.com/HendryAvila/knowgraph/internal/server"
)

func serveCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the MCP server (stdio transport)",
		Long: `Start the MCP server on stdin/stdout. Add it to your AI tool's MCP config:

  {
    "mcpServers": {
      "knowgraph": {
        "command": "knowgraph",
        "args": ["serve"]
      }
    }
  }`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, deps, cleanup, err := opts.open(nil)
			defer cleanup()
			if err != nil {
				return err
			}

			s := kgserver.NewWithDeps(deps, cfg)
			deps.Logger.Info("mcp server starting", zap.String("version", kgserver.Version))

			// stdout is the protocol channel; the stdio server handles
			// SIGINT/SIGTERM itself.
			if err := server.ServeStdio(s, server.WithErrorLogger(zap.NewStdLog(deps.Logger))); err != nil {
				return fmt.Errorf("mcp server: %w", err)
			}
			return nil
		},
	}
}
