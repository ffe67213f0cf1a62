// Package vocab holds the char-level vocabulary: the token/ID mappings and the
// special-token registry. A Store is built once by the loader and is read-only
// afterwards, so it can be shared by any number of goroutines.
package vocab

import (
	"sort"
	"strconv"
)

// Role names a reserved special token.
type Role string

const (
	RolePad Role = "<PAD>"
	RoleUnk Role = "<UNK>"
	RoleBos Role = "<BOS>"
	RoleEos Role = "<EOS>"
)

// Roles lists the recognized special-token roles.
var Roles = []Role{RolePad, RoleUnk, RoleBos, RoleEos}

// UnknownMarker is the text emitted by the decoder for IDs without a token.
const UnknownMarker = string(RoleUnk)

// Entry is a single tokenToId pair.
type Entry struct {
	Token string
	ID    int
}

// Store is an immutable char-level vocabulary.
type Store struct {
	tokenToID map[string]int
	order     []string
	idToToken map[int]string
	special   map[Role]int
}

func newStore() *Store {
	return &Store{
		tokenToID: make(map[string]int),
		idToToken: make(map[int]string),
		special:   make(map[Role]int),
	}
}

// Len returns the number of tokenToId entries.
func (s *Store) Len() int { return len(s.tokenToID) }

// ID returns the ID mapped to token.
func (s *Store) ID(token string) (int, bool) {
	id, ok := s.tokenToID[token]
	return id, ok
}

// Token returns the token mapped to id in idToToken.
func (s *Store) Token(id int) (string, bool) {
	tok, ok := s.idToToken[id]
	return tok, ok
}

// Special returns the ID configured for role. The boolean is false when the
// role is unset, which is distinct from a role configured with ID 0.
func (s *Store) Special(role Role) (int, bool) {
	id, ok := s.special[role]
	return id, ok
}

// Entries returns every tokenToId pair. Keys that look like array indices
// come first in ascending numeric order, followed by the remaining keys in
// definition order.
func (s *Store) Entries() []Entry {
	return s.Sample(len(s.order))
}

// Sample returns at most n entries in the same order as Entries.
func (s *Store) Sample(n int) []Entry {
	if n < 0 {
		n = 0
	}
	if n > len(s.order) {
		n = len(s.order)
	}
	out := make([]Entry, 0, n)
	for _, tok := range s.order[:n] {
		out = append(out, Entry{Token: tok, ID: s.tokenToID[tok]})
	}
	return out
}

// sortedIDs returns the idToToken keys in ascending order.
func (s *Store) sortedIDs() []int {
	ids := make([]int, 0, len(s.idToToken))
	for id := range s.idToToken {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	return ids
}

// maxArrayIndex is the exclusive upper bound for keys that are ordered
// numerically ahead of the other keys.
const maxArrayIndex = 1<<32 - 1

// arrayIndex reports whether key is a canonical decimal integer below
// maxArrayIndex, and its value.
func arrayIndex(key string) (uint64, bool) {
	if key == "" || (len(key) > 1 && key[0] == '0') {
		return 0, false
	}
	n, err := strconv.ParseUint(key, 10, 64)
	if err != nil || n >= maxArrayIndex {
		return 0, false
	}
	return n, true
}

// orderKeys reorders insertion-ordered keys so that array-index keys lead in
// numeric order.
func orderKeys(keys []string) []string {
	var (
		indexed []string
		rest    []string
	)
	for _, k := range keys {
		if _, ok := arrayIndex(k); ok {
			indexed = append(indexed, k)
		} else {
			rest = append(rest, k)
		}
	}
	sort.Slice(indexed, func(i, j int) bool {
		a, _ := arrayIndex(indexed[i])
		b, _ := arrayIndex(indexed[j])
		return a < b
	})
	return append(indexed, rest...)
}
