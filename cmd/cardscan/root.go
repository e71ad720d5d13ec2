package main

import (
	"fmt"
	"log/slog"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/LooWze/LooWzeIA/internal/config"
	"github.com/LooWze/LooWzeIA/internal/logging"
)

// app holds what every subcommand needs once flags are parsed.
type app struct {
	configPath string
	cfg        *config.Config
	logger     *slog.Logger
}

func newRootCommand() *cobra.Command {
	a := &app{}

	rootCmd := &cobra.Command{
		Use:   "cardscan",
		Short: "Identify Pokemon cards from photos and track a collection",
		Long: `cardscan reads the printed text on a photographed card, derives its name
and set number, and looks up matching cards in the Pokemon TCG catalog.

It runs either as an HTTP API (serve) or as a one-shot command (identify).`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			// Load .env file if present (ignore errors)
			_ = godotenv.Load()
			return a.load()
		},
	}

	rootCmd.PersistentFlags().StringVarP(&a.configPath, "config", "c", "", "Configuration file path (TOML); defaults to $CONFIG_FILE")

	rootCmd.AddCommand(newServeCommand(a))
	rootCmd.AddCommand(newIdentifyCommand(a))

	return rootCmd
}

func (a *app) load() error {
	cfg, err := config.Load(a.configPath)
	if err != nil {
		return err
	}

	logger, err := logging.New(logging.Options{Level: cfg.Logging.Level, Format: cfg.Logging.Format})
	if err != nil {
		return fmt.Errorf("logging: %w", err)
	}
	slog.SetDefault(logger)

	a.cfg = cfg
	a.logger = logger
	return nil
}
