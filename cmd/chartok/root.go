package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/example/go-chartok/internal/config"
	"github.com/example/go-chartok/internal/server"
	"github.com/example/go-chartok/internal/tokenizer"
	"github.com/example/go-chartok/internal/vocab"
	"github.com/spf13/cobra"
)

var (
	cfgFile   string
	activeCfg config.Config
)

func NewRootCmd() *cobra.Command {
	defaults := config.DefaultConfig()

	cmd := &cobra.Command{
		Use:           "chartok",
		Short:         "Character-level tokenizer command line",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			loaded, err := config.Load(config.LoadOptions{
				Cmd:        cmd,
				ConfigFile: cfgFile,
				Defaults:   defaults,
			})
			if err != nil {
				return err
			}
			activeCfg = loaded
			setupLogger(loaded.LogLevel)
			return nil
		},
	}

	cmd.PersistentFlags().StringVar(&cfgFile, "config", "", "Optional config file (yaml|toml|json)")
	config.RegisterFlags(cmd.PersistentFlags(), defaults)

	cmd.AddCommand(newServeCmd())
	cmd.AddCommand(newHealthCmd())
	cmd.AddCommand(newEncodeCmd())
	cmd.AddCommand(newDecodeCmd())
	cmd.AddCommand(newVocabCmd())
	cmd.AddCommand(newDoctorCmd())
	cmd.AddCommand(newBenchCmd())

	return cmd
}

// setupLogger configures the process-wide slog default logger.
func setupLogger(levelStr string) {
	lvl, err := server.ParseLogLevel(levelStr)
	if err != nil {
		lvl = slog.LevelInfo
	}
	h := slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: lvl})
	slog.SetDefault(slog.New(h))
}

func requireConfig() (config.Config, error) {
	if activeCfg.Paths.VocabPath == "" {
		return config.Config{}, fmt.Errorf("configuration not loaded")
	}
	return activeCfg, nil
}

// loadTokenizer reads the configured vocabulary and builds a tokenizer over it.
func loadTokenizer(cfg config.Config) (*tokenizer.CharTokenizer, error) {
	store, err := vocab.LoadFile(cfg.Paths.VocabPath)
	if err != nil {
		return nil, err
	}

	tok, err := tokenizer.New(store, tokenizer.WithStrict(cfg.Tokenizer.Strict))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", cfg.Paths.VocabPath, err)
	}

	slog.Debug("vocabulary loaded",
		slog.String("path", cfg.Paths.VocabPath),
		slog.Int("vocab_size", tok.VocabSize()),
		slog.Bool("strict", cfg.Tokenizer.Strict),
	)
	return tok, nil
}
