package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/lightsoft-dev/light-archive/internal/config"
	"github.com/lightsoft-dev/light-archive/internal/transport/mcp"
	"github.com/lightsoft-dev/light-archive/internal/version"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Run the MCP tool server over stdio",
	Long:  "Speaks JSON-RPC on stdin/stdout. Logs go to stderr.",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		_, cfg, logger, err := loadEnv()
		if err != nil {
			return err
		}
		defer func() { _ = logger.Sync() }()
		return serveMCP(cmd.Context(), &cfg, logger)
	},
}

func serveMCP(ctx context.Context, cfg *config.Config, logger *zap.Logger) error {
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	a, err := buildApp(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer a.Close()

	logger.Info("Starting MCP server",
		zap.String("version", version.Version),
		zap.String("protocol", mcp.ProtocolVersion),
		zap.String("db_driver", cfg.Database.Driver),
	)
	err = mcp.NewServer(a.archives, logger).Serve(ctx, mcp.Stdio(os.Stdin, os.Stdout))
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}
