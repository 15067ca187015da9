package suggest

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cinemuse/internal/failure"
	"cinemuse/models"
)

func TestParseStructured(t *testing.T) {
	got, err := parseStructured(`[{"title":"Inception","year":2010},{"title":"Interstellar","year":2014}]`)
	require.NoError(t, err)
	assert.Equal(t, []models.TitleCandidate{
		{Title: "Inception", Year: 2010},
		{Title: "Interstellar", Year: 2014},
	}, got)
}

func TestParseStructuredStripsCodeFence(t *testing.T) {
	got, err := parseStructured("```json\n[{\"title\":\"Paprika\",\"year\":2006}]\n```")
	require.NoError(t, err)
	assert.Equal(t, []models.TitleCandidate{{Title: "Paprika", Year: 2006}}, got)
}

func TestParseStructuredCapsCandidates(t *testing.T) {
	reply := `[{"title":"A","year":1},{"title":"B","year":2},{"title":"C","year":3},
		{"title":"D","year":4},{"title":"E","year":5},{"title":"F","year":6}]`
	got, err := parseStructured(reply)
	require.NoError(t, err)
	assert.Len(t, got, maxCandidates)
	assert.Equal(t, "E", got[len(got)-1].Title)
}

func TestParseStructuredRejectsMalformed(t *testing.T) {
	cases := map[string]string{
		"prose":         "Sure! Here are some movies: Inception",
		"object":        `{"title":"Inception","year":2010}`,
		"empty array":   `[]`,
		"empty reply":   "   ",
		"missing year":  `[{"title":"Inception"}]`,
		"missing title": `[{"year":2010}]`,
		"blank title":   `[{"title":"  ","year":2010}]`,
		"string year":   `[{"title":"Inception","year":"2010"}]`,
		"negative year": `[{"title":"Inception","year":-1}]`,
	}
	for name, reply := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := parseStructured(reply)
			require.Error(t, err)
			assert.Equal(t, failure.SchemaViolation, failure.KindOf(err))
		})
	}
}

func TestParseLines(t *testing.T) {
	got, err := parseLines("1. Inception\n\n2) Interstellar\n- Tenet\n3、让子弹飞\n")
	require.NoError(t, err)
	assert.Equal(t, []models.TitleCandidate{
		{Title: "Inception"},
		{Title: "Interstellar"},
		{Title: "Tenet"},
		{Title: "让子弹飞"},
	}, got)
}

func TestParseLinesEmpty(t *testing.T) {
	_, err := parseLines("\n  \n")
	require.Error(t, err)
	assert.Equal(t, failure.SchemaViolation, failure.KindOf(err))
}
