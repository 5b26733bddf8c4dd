package main

import (
	"fmt"
	"os"

	"logevents/internal/config"
	"logevents/internal/logging"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// cli holds what the root command prepares for its subcommands.
type cli struct {
	// Global flags
	verbose    bool
	configPath string

	cfg    *config.Config
	logger *zap.Logger
}

func newRootCmd() *cobra.Command {
	c := &cli{}

	rootCmd := &cobra.Command{
		Use:   "logevents",
		Short: "Per-type event logging for the demo ECS app",
		Long: `logevents runs a small ECS demo whose events are logged according to
per-type settings kept in a YAML file, and edits that file.

Every registered event type has a settings key, normally its bare type name.
Types whose names clash across packages are keyed by their full import path.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return c.init()
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			logging.Sync()
			if c.logger != nil {
				_ = c.logger.Sync()
			}
		},
	}

	rootCmd.PersistentFlags().BoolVarP(&c.verbose, "verbose", "v", false, "Enable verbose logging")
	rootCmd.PersistentFlags().StringVarP(&c.configPath, "config", "c", "logevents.yaml", "Config file")

	rootCmd.AddCommand(newRunCmd(c))
	rootCmd.AddCommand(newSettingsCmd(c))
	return rootCmd
}

// init loads the config and builds the logger.
func (c *cli) init() error {
	cfg, err := config.Load(c.configPath)
	if err != nil {
		return err
	}
	if c.verbose {
		cfg.Logging.Level = "debug"
		cfg.Logging.DebugMode = true
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid config %s: %w", c.configPath, err)
	}
	c.cfg = cfg
	return c.buildLogger()
}

func (c *cli) buildLogger() error {
	logger, err := logging.New(c.cfg.Logging)
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	c.logger = logger
	logging.Initialize(logger, c.cfg.Logging)
	return nil
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
