package main

import (
	"errors"
	"fmt"

	"github.com/example/go-chartok/internal/doctor"
	"github.com/spf13/cobra"
)

func newDoctorCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "doctor",
		Short: "Run vocabulary preflight checks",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := requireConfig()
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			_, _ = fmt.Fprintf(out, "strict: %t\n", cfg.Tokenizer.Strict)

			result := doctor.Run(doctor.Config{
				VocabPath: cfg.Paths.VocabPath,
				Strict:    cfg.Tokenizer.Strict,
			}, out)

			if result.Failed() {
				for _, f := range result.Failures() {
					// #nosec G705 -- Writes plain diagnostic text to stderr for CLI output, not HTML rendering.
					fmt.Fprintf(cmd.ErrOrStderr(), "FAIL: %s\n", f)
				}

				return errors.New("doctor checks failed")
			}

			if n := len(result.Warnings()); n > 0 {
				_, _ = fmt.Fprintf(out, "doctor checks passed with %d warning(s)\n", n)
				return nil
			}

			_, _ = fmt.Fprintln(out, "doctor checks passed")

			return nil
		},
	}

	return cmd
}
