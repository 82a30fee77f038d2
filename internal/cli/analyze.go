package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/vietddude/tracer/internal/control"
	"github.com/vietddude/tracer/internal/core/domain"
	"github.com/vietddude/tracer/internal/indexing/match"
)

var (
	analyzeAddresses   []string
	analyzeContracts   []string
	analyzeNoEvents    bool
	analyzeNoTransfers bool
	analyzeTimeout     time.Duration
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze <block-id>",
	Short: "Analyze one block and print the matching events and transfers",
	Args:  cobra.ExactArgs(1),
	Run:   runAnalyze,
}

func init() {
	analyzeCmd.Flags().StringSliceVar(&analyzeAddresses, "address", nil, "keep transfers touching these addresses")
	analyzeCmd.Flags().StringSliceVar(&analyzeContracts, "contracts", nil, "keep events emitted by these contracts")
	analyzeCmd.Flags().BoolVar(&analyzeNoEvents, "no-events", false, "drop all events")
	analyzeCmd.Flags().BoolVar(&analyzeNoTransfers, "no-transfers", false, "drop all transfers")
	analyzeCmd.Flags().DurationVar(&analyzeTimeout, "timeout", time.Minute, "overall analysis timeout")
	rootCmd.AddCommand(analyzeCmd)
}

func runAnalyze(cmd *cobra.Command, args []string) {
	cfg := loadConfig()

	app, err := control.NewApp(cfg)
	if err != nil {
		slog.Error("Failed to initialize Tracer", "error", err)
		os.Exit(1)
	}
	defer func() {
		_ = app.Close()
	}()

	filter := applyFlags(cmd, cfg.Filter.ToMatchConfig())

	ctx, cancel := context.WithTimeout(context.Background(), analyzeTimeout)
	defer cancel()

	result, err := app.Analyzer().AnalyzeBlockWith(ctx, domain.BlockID(args[0]), filter)
	if err != nil {
		slog.Error("Analysis failed", "block", args[0], "error", err)
		cancel()
		_ = app.Close()
		os.Exit(1)
	}

	if err := printResult(cmd.OutOrStdout(), result); err != nil {
		slog.Error("Failed to write result", "error", err)
		os.Exit(1)
	}
}

// applyFlags overrides the configured filter with flags the user set.
func applyFlags(cmd *cobra.Command, cfg match.Config) match.Config {
	flags := cmd.Flags()
	if flags.Changed("address") {
		cfg.Address = cleanList(analyzeAddresses)
	}
	if flags.Changed("contracts") {
		cfg.Contracts = cleanList(analyzeContracts)
	}
	if analyzeNoEvents {
		cfg.Event = false
	}
	if analyzeNoTransfers {
		cfg.Transfer = false
	}
	return cfg
}

// cleanList trims flag values like "a, b" and drops empty ones.
func cleanList(values []string) []string {
	var out []string
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}

// printResult writes indented JSON, or null for a missing block.
func printResult(w io.Writer, result *domain.BlockResult) error {
	out, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(w, string(out))
	return err
}
