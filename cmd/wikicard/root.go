package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/aretw0/wikicard/internal/cli"
	"github.com/aretw0/wikicard/internal/config"
)

var rootCmd = &cobra.Command{
	Use:   "wikicard",
	Short: "Wikicard turns random Wikipedia articles into shareable image cards",
	Long: `Wikicard picks Wikipedia articles it never distributed before and renders
them as PNG cards with a headless browser. It runs as a one-shot CLI, an HTTP
server or an MCP server.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	// Persistent flags (available to all commands)
	rootCmd.PersistentFlags().String("config", "wikicard.yaml", "Config file (yaml, toml or json)")
	rootCmd.PersistentFlags().String("log-level", "", "Log level: debug, info, warn, error")
	rootCmd.PersistentFlags().String("log-format", "", "Log format: text or json")
	rootCmd.PersistentFlags().Bool("debug", false, "Shortcut for --log-level debug")
	rootCmd.PersistentFlags().String("history", "", "History backend: memory, file, sqlite, redis")
}

// loadConfig reads the config file and applies persistent flag overrides.
func loadConfig(cmd *cobra.Command) (*config.Config, *slog.Logger, error) {
	path, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(path)
	if err != nil {
		return nil, nil, err
	}

	if v, _ := cmd.Flags().GetString("log-level"); v != "" {
		cfg.Log.Level = v
	}
	if v, _ := cmd.Flags().GetString("log-format"); v != "" {
		cfg.Log.Format = v
	}
	if v, _ := cmd.Flags().GetString("history"); v != "" {
		cfg.History.Backend = v
	}
	if err := cfg.Validate(); err != nil {
		return nil, nil, err
	}

	debug, _ := cmd.Flags().GetBool("debug")
	logger, err := cli.NewLogger(cfg.Log, debug)
	if err != nil {
		return nil, nil, err
	}
	return cfg, logger, nil
}

// newApp loads configuration and wires the application for cmd.
func newApp(ctx context.Context, cmd *cobra.Command, opts cli.AppOptions) (*cli.App, error) {
	cfg, logger, err := loadConfig(cmd)
	if err != nil {
		return nil, err
	}
	return cli.NewApp(ctx, cfg, logger, opts)
}
