// Package testutil provides shared vocabulary fixtures for tests.
//
// Typical usage:
//
//	func TestMyHandler(t *testing.T) {
//	    path := testutil.WriteVocabFile(t, "vocab.json", testutil.ScenarioVocabJSON)
//	    store, err := vocab.LoadFile(path)
//	    ...
//	}
package testutil

import (
	"os"
	"path/filepath"
	"testing"
)

// ScenarioVocabJSON is a three-letter vocabulary with BOS, EOS and UNK
// configured and mapped back in idToToken.
const ScenarioVocabJSON = `{
  "tokenToId": {"a": 1, "b": 2, "c": 3},
  "idToToken": {"1": "a", "2": "b", "3": "c", "10": "<BOS>", "11": "<EOS>", "12": "<UNK>"},
  "specialTokens": {"<BOS>": 10, "<EOS>": 11, "<UNK>": 12}
}`

// NoUnknownVocabJSON has no special tokens at all, so unmapped characters are
// dropped during encoding.
const NoUnknownVocabJSON = `{
  "tokenToId": {"a": 1, "b": 2},
  "idToToken": {"1": "a", "2": "b"}
}`

// WriteVocabFile writes content to name inside a per-test temp directory and
// returns the file path.
func WriteVocabFile(tb testing.TB, name, content string) string {
	tb.Helper()

	path := filepath.Join(tb.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		tb.Fatalf("write vocab fixture %q: %v", path, err)
	}
	return path
}

// DefaultVocabPath returns the path to the committed data/vocab.json by
// walking up from the working directory, skipping the test if it is absent.
func DefaultVocabPath(tb testing.TB) string {
	tb.Helper()

	dir, err := filepath.Abs(".")
	if err != nil {
		tb.Fatalf("abs path: %v", err)
	}

	for {
		candidate := filepath.Join(dir, "data", "vocab.json")
		if _, err := os.Stat(candidate); err == nil {
			return candidate
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}

	tb.Skip("data/vocab.json not found; skipping")
	return ""
}
