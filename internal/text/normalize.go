// Package text canonicalizes input before char-level tokenization.
package text

import (
	"unicode"

	"golang.org/x/text/unicode/norm"
)

// Normalize applies Unicode NFKC to the whole input. It must run over the
// full string rather than per character, since composition can merge or
// reorder multi-code-point sequences.
func Normalize(s string) string {
	return norm.NFKC.String(s)
}

// Fold lower-cases a single code point using the simple one-to-one mapping.
// Case mappings that expand to several code points (U+0130 in full
// lower-casing, for example) are not applied.
func Fold(r rune) rune {
	return unicode.ToLower(r)
}

// NFKC is the default normalizer used by the tokenizer.
var NFKC nfkc

type nfkc struct{}

func (nfkc) Normalize(s string) string { return Normalize(s) }
