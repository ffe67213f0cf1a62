package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/example/go-chartok/internal/tokenizer"
	"github.com/spf13/cobra"
)

func newEncodeCmd() *cobra.Command {
	var opts tokenizer.EncodeOptions

	cmd := &cobra.Command{
		Use:   "encode [text...]",
		Short: "Encode text to token IDs (reads stdin when no text is given)",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := requireConfig()
			if err != nil {
				return err
			}

			input, err := readEncodeText(args, cmd.InOrStdin())
			if err != nil {
				return err
			}

			tok, err := loadTokenizer(cfg)
			if err != nil {
				return err
			}

			out, err := json.Marshal(tok.Encode(input, opts))
			if err != nil {
				return fmt.Errorf("marshal ids: %w", err)
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), string(out))
			return err
		},
	}

	cmd.Flags().BoolVar(&opts.AddBOS, "bos", false, "Prepend the <BOS> token when configured")
	cmd.Flags().BoolVar(&opts.AddEOS, "eos", false, "Append the <EOS> token when configured")

	return cmd
}

// readEncodeText joins positional arguments with spaces, or reads stdin when
// there are none. A single trailing line break from stdin is dropped.
func readEncodeText(args []string, stdin io.Reader) (string, error) {
	if len(args) > 0 {
		return strings.Join(args, " "), nil
	}

	b, err := io.ReadAll(stdin)
	if err != nil {
		return "", fmt.Errorf("read stdin: %w", err)
	}
	input := string(b)
	if s, ok := strings.CutSuffix(input, "\n"); ok {
		input = strings.TrimSuffix(s, "\r")
	}
	return input, nil
}
