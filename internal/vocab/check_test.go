package vocab

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func issueKinds(issues []Issue) []IssueKind {
	kinds := make([]IssueKind, 0, len(issues))
	for _, i := range issues {
		kinds = append(kinds, i.Kind)
	}
	return kinds
}

func TestCheck_CleanVocabulary(t *testing.T) {
	s, err := Parse([]byte(scenarioJSON), FormatJSON)
	require.NoError(t, err)

	assert.Empty(t, Check(s))
}

func TestCheck_MissingUnknown(t *testing.T) {
	s, err := Parse([]byte(`{"tokenToId": {"a": 1}}`), FormatJSON)
	require.NoError(t, err)

	assert.Equal(t, []IssueKind{IssueMissingUnknown}, issueKinds(Check(s)))
}

func TestCheck_Findings(t *testing.T) {
	doc := `{
  "tokenToId": {"ab": 1, "c": 2, "<PAD>": 3},
  "idToToken": {"1": "ab", "2": "x", "3": "<PAD>", "4": "<EOS>", "5": "<UNK>"},
  "specialTokens": {"<UNK>": 5}
}`
	s, err := Parse([]byte(doc), FormatJSON)
	require.NoError(t, err)

	issues := Check(s)
	kinds := issueKinds(issues)

	assert.Contains(t, kinds, IssueMultiRuneToken)
	assert.Contains(t, kinds, IssueInconsistentID)
	assert.Contains(t, kinds, IssueMarkerInToken)
	assert.NotContains(t, kinds, IssueMissingUnknown)

	// idToToken[5] is the configured UNK entry and is not reported; 3 and 4 are.
	var markerDetails []string
	for _, i := range issues {
		if i.Kind == IssueMarkerInToken {
			markerDetails = append(markerDetails, i.Detail)
		}
	}
	assert.Len(t, markerDetails, 3)
	for _, d := range markerDetails {
		assert.NotContains(t, d, "idToToken[5]")
	}
}

func TestIssue_String(t *testing.T) {
	i := Issue{Kind: IssueMissingUnknown, Detail: "x"}
	assert.Equal(t, "missing-unknown: x", i.String())
}
