package main

import (
	"fmt"
	"strings"

	"github.com/example/go-chartok/internal/bench"
	"github.com/example/go-chartok/internal/tokenizer"
	"github.com/spf13/cobra"
)

func newBenchCmd() *cobra.Command {
	var (
		text       string
		runs       int
		format     string
		minRunesPS float64
	)

	cmd := &cobra.Command{
		Use:   "bench",
		Short: "Benchmark encode/decode latency and throughput",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := requireConfig()
			if err != nil {
				return err
			}

			if strings.TrimSpace(text) == "" {
				return fmt.Errorf("--text is required for bench")
			}
			if runs < 1 {
				return fmt.Errorf("--runs must be at least 1")
			}
			if format != "table" && format != "json" {
				return fmt.Errorf("--format must be 'table' or 'json'")
			}

			tok, err := loadTokenizer(cfg)
			if err != nil {
				return err
			}

			results, err := bench.Run(tok, bench.Options{
				Text:   text,
				Runs:   runs,
				Encode: tokenizer.EncodeOptions{AddBOS: true, AddEOS: true},
				Decode: tokenizer.DefaultDecodeOptions(),
			})
			if err != nil {
				return err
			}

			stats := bench.ComputeStats(bench.Durations(results))

			switch format {
			case "json":
				bench.FormatJSON(results, stats, cmd.OutOrStdout())
			default:
				bench.FormatTable(results, stats, cmd.OutOrStdout())
			}

			return bench.CheckThroughputFloor(bench.MeanThroughput(results), minRunesPS)
		},
	}

	cmd.Flags().StringVar(&text, "text", "", "Text to encode and decode for each run (required)")
	cmd.Flags().IntVar(&runs, "runs", 5, "Number of round-trip runs")
	cmd.Flags().StringVar(&format, "format", "table", "Output format: table|json")
	cmd.Flags().Float64Var(&minRunesPS, "min-throughput", 0, "Exit non-zero if mean runes/s falls below this value (0 = disabled)")

	return cmd
}
