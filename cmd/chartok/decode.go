package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/example/go-chartok/internal/tokenizer"
	"github.com/spf13/cobra"
)

func newDecodeCmd() *cobra.Command {
	var keepSpecial bool

	cmd := &cobra.Command{
		Use:   "decode [ids...]",
		Short: "Decode token IDs to text (reads a JSON array from stdin when no IDs are given)",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := requireConfig()
			if err != nil {
				return err
			}

			ids, err := readDecodeIDs(args, cmd.InOrStdin())
			if err != nil {
				return err
			}

			tok, err := loadTokenizer(cfg)
			if err != nil {
				return err
			}

			text := tok.Decode(ids, tokenizer.DecodeOptions{StripSpecial: !keepSpecial})
			_, err = fmt.Fprintln(cmd.OutOrStdout(), text)
			return err
		},
	}

	cmd.Flags().BoolVar(&keepSpecial, "keep-special", false, "Keep <PAD>, <UNK>, <BOS> and <EOS> markers in the output")

	return cmd
}

// readDecodeIDs parses integer arguments (commas are accepted as separators)
// or, without arguments, a JSON array on stdin such as the output of encode.
func readDecodeIDs(args []string, stdin io.Reader) ([]int, error) {
	if len(args) == 0 {
		b, err := io.ReadAll(stdin)
		if err != nil {
			return nil, fmt.Errorf("read stdin: %w", err)
		}
		var ids []int
		if err := json.Unmarshal(b, &ids); err != nil {
			return nil, fmt.Errorf("stdin: ids (array of integers) required: %w", err)
		}
		if ids == nil {
			ids = []int{}
		}
		return ids, nil
	}

	ids := make([]int, 0, len(args))
	for _, arg := range args {
		for _, field := range strings.Split(arg, ",") {
			field = strings.TrimSpace(field)
			if field == "" {
				continue
			}
			id, err := strconv.Atoi(field)
			if err != nil {
				return nil, fmt.Errorf("invalid id %q: %w", field, err)
			}
			ids = append(ids, id)
		}
	}
	return ids, nil
}
