// Package main is the mindrecall server and debugging CLI.
package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/kailas-cloud/mindrecall/internal/config"
	logpkg "github.com/kailas-cloud/mindrecall/internal/logger"
	"github.com/kailas-cloud/mindrecall/internal/version"
)

var (
	envName    string
	configPath string
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "mindrecall",
	Short: "Hybrid context retrieval for a wellness assistant",
	Long: `mindrecall stores a user's mood entries and, for every chat turn, retrieves a small
context bundle from a BM25 ranker over recent entries and a per-user vector index.`,
	Version:       version.String(),
	SilenceUsage:  true,
	PersistentPreRunE: func(_ *cobra.Command, _ []string) error {
		// A missing .env is fine; the environment may come from the process manager.
		_ = godotenv.Load()
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&envName, "env", "", "environment name (local, docker, prod); defaults to $ENV or local")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "explicit config file path, overrides --env")
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(contextCmd)
	rootCmd.AddCommand(versionCmd)
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print build information",
	Run: func(cmd *cobra.Command, _ []string) {
		fmt.Fprintln(cmd.OutOrStdout(), version.String())
	},
}

// loadRuntime reads the configuration and builds the logger for a command.
func loadRuntime() (config.Config, *zap.Logger, string, error) {
	env := envName
	if env == "" {
		env = config.GetEnv()
	}

	var (
		cfg config.Config
		err error
	)
	if configPath != "" {
		cfg, err = config.LoadFile(configPath)
	} else {
		cfg, err = config.Load(env)
	}
	if err != nil {
		return config.Config{}, nil, "", fmt.Errorf("load config: %w", err)
	}

	logger, err := logpkg.NewLogger(env, cfg.Logging.Level)
	if err != nil {
		return config.Config{}, nil, "", fmt.Errorf("create logger: %w", err)
	}
	return cfg, logger, env, nil
}
