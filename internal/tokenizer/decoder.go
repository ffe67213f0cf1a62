package tokenizer

import (
	"strings"

	"github.com/example/go-chartok/internal/vocab"
)

// DecodeOptions controls post-processing of decoded text.
type DecodeOptions struct {
	// StripSpecial removes every literal <BOS>, <EOS>, <PAD> and <UNK>
	// substring from the joined text, whether it came from a special ID or
	// from ordinary tokens that happen to spell it.
	StripSpecial bool
}

// DefaultDecodeOptions strips special markers.
func DefaultDecodeOptions() DecodeOptions {
	return DecodeOptions{StripSpecial: true}
}

var specialStripper = newSpecialStripper()

func newSpecialStripper() *strings.Replacer {
	pairs := make([]string, 0, 2*len(vocab.Roles))
	for _, r := range vocab.Roles {
		pairs = append(pairs, string(r), "")
	}
	return strings.NewReplacer(pairs...)
}

// Decoder maps token IDs back to text.
type Decoder struct {
	store *vocab.Store
}

// NewDecoder returns a Decoder over store.
func NewDecoder(store *vocab.Store) *Decoder {
	return &Decoder{store: store}
}

// Decode joins the token of each ID with no separator. IDs without an
// idToToken entry decode to "<UNK>".
func (d *Decoder) Decode(ids []int, opts DecodeOptions) string {
	var b strings.Builder
	b.Grow(len(ids))

	for _, id := range ids {
		tok, ok := d.store.Token(id)
		if !ok {
			tok = vocab.UnknownMarker
		}
		b.WriteString(tok)
	}

	out := b.String()
	if opts.StripSpecial {
		// Single left-to-right pass: "<<UNK>UNK>" leaves "<UNK>" behind.
		out = specialStripper.Replace(out)
	}
	return out
}
