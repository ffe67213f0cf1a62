package tokenizer

import (
	"github.com/example/go-chartok/internal/text"
	"github.com/example/go-chartok/internal/vocab"
)

// EncodeOptions controls sequence bracketing. BOS and EOS are only added
// when the vocabulary configures them.
type EncodeOptions struct {
	AddBOS bool
	AddEOS bool
}

// Encoder maps text to token IDs.
type Encoder struct {
	store      *vocab.Store
	normalizer Normalizer
}

// NewEncoder returns an Encoder over store. A nil normalizer selects NFKC.
func NewEncoder(store *vocab.Store, normalizer Normalizer) *Encoder {
	if normalizer == nil {
		normalizer = text.NFKC
	}
	return &Encoder{store: store, normalizer: normalizer}
}

// Encode normalizes s, then maps each lower-cased code point to its ID.
// Characters missing from the vocabulary become <UNK>, or are dropped when
// <UNK> is unset. The result is never nil.
func (e *Encoder) Encode(s string, opts EncodeOptions) []int {
	normalized := e.normalizer.Normalize(s)
	ids := make([]int, 0, len(normalized)+2)

	if opts.AddBOS {
		if bos, ok := e.store.Special(vocab.RoleBos); ok {
			ids = append(ids, bos)
		}
	}

	unk, hasUnk := e.store.Special(vocab.RoleUnk)
	for _, r := range normalized {
		if id, ok := e.store.ID(string(text.Fold(r))); ok {
			ids = append(ids, id)
		} else if hasUnk {
			ids = append(ids, unk)
		}
	}

	if opts.AddEOS {
		if eos, ok := e.store.Special(vocab.RoleEos); ok {
			ids = append(ids, eos)
		}
	}

	return ids
}
