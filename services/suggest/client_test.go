package suggest

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cinemuse/internal/failure"
	"cinemuse/models"
)

type fakeGenerator struct {
	configured bool
	reply      string
	err        error
	calls      int
	last       Request
}

func (f *fakeGenerator) Configured() bool { return f.configured }

func (f *fakeGenerator) Generate(_ context.Context, req Request) (string, error) {
	f.calls++
	f.last = req
	return f.reply, f.err
}

func TestSuggestTitlesSchemaMode(t *testing.T) {
	gen := &fakeGenerator{configured: true, reply: `[{"title":"Inception","year":2010}]`}
	client := NewClient(gen, Options{Temperature: 0.7})

	got, err := client.SuggestTitles(context.Background(), "  mind-bending sci-fi  ", models.LanguageEnglish)
	require.NoError(t, err)
	assert.Equal(t, []models.TitleCandidate{{Title: "Inception", Year: 2010}}, got)

	assert.Equal(t, 1, gen.calls)
	assert.True(t, gen.last.Structured)
	assert.Equal(t, 0.7, gen.last.Temperature)
	assert.Contains(t, gen.last.Text, `"mind-bending sci-fi"`)
	assert.Contains(t, gen.last.Text, enInstruction)
}

func TestSuggestTitlesChineseInstruction(t *testing.T) {
	gen := &fakeGenerator{configured: true, reply: `[{"title":"让子弹飞","year":2010}]`}
	client := NewClient(gen, Options{})

	_, err := client.SuggestTitles(context.Background(), "轻松的喜剧", models.LanguageChinese)
	require.NoError(t, err)
	assert.Contains(t, gen.last.Text, zhInstruction)
}

func TestSuggestTitlesEmptyPromptMakesNoCall(t *testing.T) {
	gen := &fakeGenerator{configured: true}
	client := NewClient(gen, Options{})

	for _, prompt := range []string{"", "   ", "\n\t"} {
		_, err := client.SuggestTitles(context.Background(), prompt, models.LanguageEnglish)
		require.Error(t, err)
		assert.Equal(t, failure.InputValidation, failure.KindOf(err))
	}
	assert.Zero(t, gen.calls)
}

func TestSuggestTitlesMissingCredential(t *testing.T) {
	gen := &fakeGenerator{configured: false}
	client := NewClient(gen, Options{})

	_, err := client.SuggestTitles(context.Background(), "anything", models.LanguageEnglish)
	require.Error(t, err)
	assert.Equal(t, failure.Configuration, failure.KindOf(err))
	assert.Zero(t, gen.calls)
}

func TestSuggestTitlesSchemaViolation(t *testing.T) {
	gen := &fakeGenerator{configured: true, reply: "Here are a few: Inception, Tenet"}
	client := NewClient(gen, Options{})

	got, err := client.SuggestTitles(context.Background(), "nolan", models.LanguageEnglish)
	require.Error(t, err)
	assert.Nil(t, got)
	assert.Equal(t, failure.SchemaViolation, failure.KindOf(err))
}

func TestSuggestTitlesPropagatesTransportFailure(t *testing.T) {
	gen := &fakeGenerator{configured: true, err: failure.Transport("gemini generate", errors.New("connection reset"))}
	client := NewClient(gen, Options{})

	_, err := client.SuggestTitles(context.Background(), "anything", models.LanguageEnglish)
	require.Error(t, err)
	assert.Equal(t, failure.TransportFailure, failure.KindOf(err))
}

func TestSuggestTitlesTextMode(t *testing.T) {
	gen := &fakeGenerator{configured: true, reply: "Inception\nInterstellar\n"}
	client := NewClient(gen, Options{Mode: ModeText})

	got, err := client.SuggestTitles(context.Background(), "nolan", models.LanguageEnglish)
	require.NoError(t, err)
	assert.False(t, gen.last.Structured)
	assert.True(t, strings.Contains(gen.last.Text, "one original movie title per line"))
	assert.Equal(t, []models.TitleCandidate{{Title: "Inception"}, {Title: "Interstellar"}}, got)
}

func TestParseMode(t *testing.T) {
	m, err := ParseMode("")
	require.NoError(t, err)
	assert.Equal(t, ModeSchema, m)

	m, err = ParseMode(" TEXT ")
	require.NoError(t, err)
	assert.Equal(t, ModeText, m)

	_, err = ParseMode("xml")
	assert.Error(t, err)
}
