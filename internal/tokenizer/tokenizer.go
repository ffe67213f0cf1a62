// Package tokenizer maps text to char-level token IDs and back using a fixed
// vocabulary. Encoding and decoding never fail: unmapped input falls back to
// the <UNK> ID (or is dropped when <UNK> is unset) and unmapped IDs decode to
// the literal "<UNK>" marker.
package tokenizer

import (
	"errors"
	"fmt"
	"strings"

	"github.com/example/go-chartok/internal/text"
	"github.com/example/go-chartok/internal/vocab"
)

// ErrStrictVocabulary is returned by New in strict mode when the vocabulary
// has structural issues.
var ErrStrictVocabulary = errors.New("vocabulary rejected in strict mode")

// Tokenizer encodes text into token IDs and decodes IDs back into text.
type Tokenizer interface {
	Encode(text string, opts EncodeOptions) []int
	Decode(ids []int, opts DecodeOptions) string
	VocabSize() int
}

// Normalizer canonicalizes text before encoding.
type Normalizer interface {
	Normalize(s string) string
}

type options struct {
	normalizer Normalizer
	strict     bool
}

// Option configures a CharTokenizer.
type Option func(*options)

// WithNormalizer replaces the default NFKC normalizer.
func WithNormalizer(n Normalizer) Option {
	return func(o *options) { o.normalizer = n }
}

// WithStrict makes New reject vocabularies for which vocab.Check reports
// issues, such as a missing <UNK> entry.
func WithStrict(strict bool) Option {
	return func(o *options) { o.strict = strict }
}

// CharTokenizer pairs an Encoder and a Decoder over one vocabulary.
type CharTokenizer struct {
	*Encoder
	*Decoder

	store *vocab.Store
}

// New returns a CharTokenizer backed by store.
func New(store *vocab.Store, optFns ...Option) (*CharTokenizer, error) {
	if store == nil {
		return nil, errors.New("tokenizer: nil vocabulary")
	}

	opts := options{normalizer: text.NFKC}
	for _, fn := range optFns {
		fn(&opts)
	}

	if opts.strict {
		if issues := vocab.Check(store); len(issues) > 0 {
			msgs := make([]string, len(issues))
			for i, is := range issues {
				msgs[i] = is.String()
			}
			return nil, fmt.Errorf("%w: %s", ErrStrictVocabulary, strings.Join(msgs, "; "))
		}
	}

	return &CharTokenizer{
		Encoder: NewEncoder(store, opts.normalizer),
		Decoder: NewDecoder(store),
		store:   store,
	}, nil
}

// VocabSize returns the number of tokenToId entries.
func (t *CharTokenizer) VocabSize() int { return t.store.Len() }

// Vocabulary returns the backing store.
func (t *CharTokenizer) Vocabulary() *vocab.Store { return t.store }
