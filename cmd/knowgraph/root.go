package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/HendryAvila/knowgraph/internal/config"
	"github.com/HendryAvila/knowgraph/internal/logging"
	"github.com/HendryAvila/knowgraph/internal/metrics"
	"github.com/HendryAvila/knowgraph/internal/server"
)

type rootOptions struct {
	configPath string
	logLevel   string
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:   "knowgraph",
		Short: "knowgraph: a typed knowledge graph with force-directed layout",
		Long: "knowgraph stores typed nodes and labeled edges in SQLite and serves them\n" +
			"over MCP (stdio) and HTTP. Layouts are computed on demand and never stored.",
		Version:       server.Version,
		SilenceUsage:  true,
		SilenceErrors: false,
	}
	cmd.SetVersionTemplate("knowgraph {{ .Version }}\n")
	cmd.PersistentFlags().StringVarP(&opts.configPath, "config", "c", "", "Config file (.yaml, .yml or .toml)")
	cmd.PersistentFlags().StringVar(&opts.logLevel, "log-level", "", "Override the log level (debug, info, warn, error)")

	cmd.AddCommand(
		serveCmd(opts),
		httpCmd(opts),
		nodesCmd(opts),
		layoutCmd(opts),
		statsCmd(opts),
		versionCmd(),
	)
	return cmd
}

// setup loads configuration and builds the logger.
func (o *rootOptions) setup() (*config.Config, *zap.Logger, error) {
	cfg, err := config.Load(o.configPath)
	if err != nil {
		return nil, nil, err
	}
	if o.logLevel != "" {
		cfg.Log.Level = o.logLevel
	}
	logger, err := logging.New(cfg.Log)
	if err != nil {
		return nil, nil, fmt.Errorf("logger: %w", err)
	}
	return cfg, logger, nil
}

// open loads configuration and opens the shared components. m may be nil.
// The returned cleanup must always be called.
func (o *rootOptions) open(m *metrics.Collector) (*config.Config, *server.Deps, func(), error) {
	cfg, logger, err := o.setup()
	if err != nil {
		return nil, nil, func() {}, err
	}
	deps, closeStore, err := server.Open(cfg, logger, m)
	cleanup := func() {
		closeStore()
		_ = logger.Sync()
	}
	if err != nil {
		return nil, nil, cleanup, err
	}
	return cfg, deps, cleanup, nil
}
