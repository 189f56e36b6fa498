// SPDX-License-Identifier: EPL-2.0

package main

import (
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/ik5/beatmix"
)

var analyzeWorkers int

var analyzeCmd = &cobra.Command{
	Use:   "analyze <files...>",
	Short: "Estimate beat grids",
	Long:  "Decode each file and print the head and tail beat grids as JSON.",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runAnalyze,
}

func init() {
	analyzeCmd.Flags().IntVarP(&analyzeWorkers, "workers", "w", 0, "concurrent analyses (0 = GOMAXPROCS)")
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	if err := loadConfig(); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	tracks, err := readTracks(args)
	if err != nil {
		return err
	}

	opts := options()
	opts.Workers = analyzeWorkers

	infos, err := beatmix.AnalyzeAll(ctx, tracks, opts)
	if err != nil {
		return fmt.Errorf("analyze: %w", err)
	}

	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	if err := enc.Encode(infos); err != nil {
		return fmt.Errorf("write analysis: %w", err)
	}

	for _, info := range infos {
		if info.Err != nil {
			return fmt.Errorf("%s: %w", info.ID, info.Err)
		}
	}
	return nil
}
