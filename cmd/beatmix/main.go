// SPDX-License-Identifier: EPL-2.0

// Command beatmix analyzes tracks and renders beat-aware automixes.
package main

import (
	"fmt"
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/ik5/beatmix/config"
	"github.com/ik5/beatmix/internal/logging"
)

var (
	logger zerolog.Logger
	cfg    *config.Config

	configPath  string
	metricsAddr string
)

var rootCmd = &cobra.Command{
	Use:           "beatmix",
	Short:         "beatmix - beat-aware crossfade mixer",
	Long:          "beatmix decodes audio tracks, estimates their beat grids and mixes them into one stream with beat-aligned crossfades.",
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "YAML config file")
	rootCmd.PersistentFlags().StringVar(&metricsAddr, "metrics-addr", "", "serve Prometheus metrics on this address (overrides config)")

	rootCmd.AddCommand(analyzeCmd, mixCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

// loadConfig loads configuration (called by commands that need it)
func loadConfig() error {
	var err error
	cfg, err = config.Load(configPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if metricsAddr != "" {
		cfg.MetricsAddr = metricsAddr
	}

	logger = logging.Setup(cfg.Environment)
	return nil
}
