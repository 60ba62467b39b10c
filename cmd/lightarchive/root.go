package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/lightsoft-dev/light-archive/internal/config"
	logpkg "github.com/lightsoft-dev/light-archive/internal/logger"
)

var (
	flagEnv    string
	flagConfig string
)

var rootCmd = &cobra.Command{
	Use:          "lightarchive",
	Short:        "Light Archive content service",
	Long:         "Light Archive stores tech, project, research and news posts and serves them over HTTP and MCP.",
	SilenceUsage: true,
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagEnv, "env", "", "Environment: local, dev, docker, prod (default: $ENV or local)")
	rootCmd.PersistentFlags().StringVar(&flagConfig, "config", "", "Config file path (default: config/<env>.yaml)")

	rootCmd.AddCommand(serveCmd, mcpCmd, versionCmd, hashPasswordCmd)
}

// loadEnv resolves the environment, config and logger shared by every command.
func loadEnv() (string, config.Config, *zap.Logger, error) {
	env := flagEnv
	if env == "" {
		env = config.GetEnv()
	}

	var (
		cfg config.Config
		err error
	)
	if flagConfig != "" {
		cfg, err = config.LoadFile(flagConfig)
	} else {
		cfg, err = config.Load(env)
	}
	if err != nil {
		return "", config.Config{}, nil, fmt.Errorf("failed to load config: %w", err)
	}

	logger, err := logpkg.NewLogger(env, cfg.Logging.Level)
	if err != nil {
		return "", config.Config{}, nil, fmt.Errorf("failed to create logger: %w", err)
	}
	return env, cfg, logger, nil
}
