package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newVocabCmd() *cobra.Command {
	var sample int

	cmd := &cobra.Command{
		Use:   "vocab",
		Short: "Print vocabulary size and an ordered tokenToId sample",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := requireConfig()
			if err != nil {
				return err
			}

			tok, err := loadTokenizer(cfg)
			if err != nil {
				return err
			}

			n := sample
			if n < 0 {
				n = cfg.Server.SampleSize
			}

			w := cmd.OutOrStdout()
			_, _ = fmt.Fprintf(w, "vocab size: %d\n", tok.VocabSize())
			for _, e := range tok.Vocabulary().Sample(n) {
				_, _ = fmt.Fprintf(w, "%q\t%d\n", e.Token, e.ID)
			}
			return nil
		},
	}

	cmd.Flags().IntVar(&sample, "sample", -1, "Number of entries to print (default: server.sample_size)")

	return cmd
}
