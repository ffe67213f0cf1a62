package vocab

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

// IssueKind classifies a structural weakness found by Check.
type IssueKind string

const (
	IssueMissingUnknown IssueKind = "missing-unknown"
	IssueMultiRuneToken IssueKind = "multi-rune-token"
	IssueInconsistentID IssueKind = "inconsistent-id"
	IssueMarkerInToken  IssueKind = "marker-in-token"
)

// Issue is a single Check finding.
type Issue struct {
	Kind   IssueKind
	Detail string
}

func (i Issue) String() string { return string(i.Kind) + ": " + i.Detail }

// Check reports vocabulary properties that the permissive encoder and decoder
// tolerate silently: unmapped characters dropped for want of <UNK>, tokens
// that can never match a single character, idToToken entries that do not
// round-trip, and tokens that decode-time stripping would erase.
func Check(s *Store) []Issue {
	var issues []Issue

	if _, ok := s.Special(RoleUnk); !ok {
		issues = append(issues, Issue{
			Kind:   IssueMissingUnknown,
			Detail: "no <UNK> special token; unmapped characters are dropped",
		})
	}

	for _, e := range s.Entries() {
		if utf8.RuneCountInString(e.Token) != 1 {
			issues = append(issues, Issue{
				Kind:   IssueMultiRuneToken,
				Detail: fmt.Sprintf("token %q is not a single character", e.Token),
			})
		}
		if containsMarker(e.Token) {
			issues = append(issues, Issue{
				Kind:   IssueMarkerInToken,
				Detail: fmt.Sprintf("token %q contains a special marker", e.Token),
			})
		}
		if tok, ok := s.Token(e.ID); ok && tok != e.Token {
			issues = append(issues, Issue{
				Kind:   IssueInconsistentID,
				Detail: fmt.Sprintf("tokenToId[%q] = %d but idToToken[%d] = %q", e.Token, e.ID, e.ID, tok),
			})
		}
	}

	specialIDs := make(map[int]bool, len(s.special))
	for _, id := range s.special {
		specialIDs[id] = true
	}
	for _, id := range s.sortedIDs() {
		tok := s.idToToken[id]
		if specialIDs[id] {
			continue
		}
		if containsMarker(tok) {
			issues = append(issues, Issue{
				Kind:   IssueMarkerInToken,
				Detail: fmt.Sprintf("idToToken[%d] = %q contains a special marker", id, tok),
			})
		}
	}

	return issues
}

func containsMarker(s string) bool {
	for _, r := range Roles {
		if strings.Contains(s, string(r)) {
			return true
		}
	}
	return false
}
