package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cinemuse/internal/failure"
	"cinemuse/models"
)

type fakeRecommendationService struct {
	movies []models.Movie
	titles []models.TitleCandidate
	err    error

	calls      int
	lastPrompt string
	lastLang   models.Language
}

func (f *fakeRecommendationService) GetRecommendations(_ context.Context, prompt string, lang models.Language) ([]models.Movie, error) {
	f.calls++
	f.lastPrompt, f.lastLang = prompt, lang
	return f.movies, f.err
}

func (f *fakeRecommendationService) SuggestTitles(_ context.Context, prompt string, lang models.Language) ([]models.TitleCandidate, error) {
	f.calls++
	f.lastPrompt, f.lastLang = prompt, lang
	return f.titles, f.err
}

func newTestRouter(svc recommendationService) *mux.Router {
	r := mux.NewRouter()
	Register(r, NewRecommendationsHandler(svc), NewSessionsHandler(nil), nil)
	return r
}

func do(t *testing.T, h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, bytes.NewReader([]byte(body)))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) errorResponse {
	t.Helper()
	var body errorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}

func TestRecommendSuccess(t *testing.T) {
	poster := "https://image.tmdb.org/t/p/w500/x.jpg"
	svc := &fakeRecommendationService{movies: []models.Movie{{
		Title: "Inception", Year: 2010, Director: "Christopher Nolan",
		Actors: []string{"Leonardo DiCaprio"}, Rating: 8.369, PosterURL: &poster,
		Reviews: []models.Review{}, StreamingLinks: []models.StreamingPlatform{},
	}}}

	rec := do(t, newTestRouter(svc), http.MethodPost, "/api/recommendations", `{"prompt":"  a mind-bending sci-fi movie ","language":"en"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "a mind-bending sci-fi movie", svc.lastPrompt)
	assert.Equal(t, models.LanguageEnglish, svc.lastLang)

	var got []map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	require.Len(t, got, 1)
	assert.Equal(t, "Inception", got[0]["title"])
	assert.Equal(t, 8.4, got[0]["rating"])
	assert.Equal(t, poster, got[0]["posterUrl"])
	assert.Contains(t, rec.Body.String(), `"rating":8.4`)
}

func TestRecommendDefaultsToEnglish(t *testing.T) {
	svc := &fakeRecommendationService{movies: []models.Movie{}}
	rec := do(t, newTestRouter(svc), http.MethodPost, "/api/recommendations", `{"prompt":"comedy"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, models.LanguageEnglish, svc.lastLang)

	do(t, newTestRouter(svc), http.MethodPost, "/api/recommendations", `{"prompt":"喜剧","language":"zh-CN"}`)
	assert.Equal(t, models.LanguageChinese, svc.lastLang)
}

func TestRecommendRejectsNonPost(t *testing.T) {
	svc := &fakeRecommendationService{}
	for _, method := range []string{http.MethodGet, http.MethodPut, http.MethodDelete} {
		rec := do(t, newTestRouter(svc), method, "/api/recommendations", "")
		assert.Equal(t, http.StatusMethodNotAllowed, rec.Code, method)
		assert.Equal(t, "Method Not Allowed", decodeError(t, rec).Message)
		assert.Equal(t, http.MethodPost, rec.Header().Get("Allow"))
	}
	assert.Zero(t, svc.calls)
}

func TestRecommendBadRequests(t *testing.T) {
	tests := map[string]struct {
		body    string
		message string
	}{
		"missing prompt": {`{"language":"en"}`, "Missing prompt"},
		"blank prompt":   {`{"prompt":"   "}`, "Missing prompt"},
		"empty body":     {``, "Missing prompt"},
		"not json":       {`prompt=hi`, "request body must be a JSON object"},
		"bad language":   {`{"prompt":"hi","language":"fr"}`, "Language must be a supported language (zh, en)"},
	}
	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			svc := &fakeRecommendationService{}
			rec := do(t, newTestRouter(svc), http.MethodPost, "/api/recommendations", tc.body)
			assert.Equal(t, http.StatusBadRequest, rec.Code)
			assert.Equal(t, tc.message, decodeError(t, rec).Message)
			assert.Zero(t, svc.calls)
		})
	}
}

func TestRecommendFailureMapping(t *testing.T) {
	tests := []struct {
		kind    failure.Kind
		status  int
		details string
	}{
		{failure.Configuration, http.StatusInternalServerError, "configuration"},
		{failure.NoResults, http.StatusBadGateway, "no_results"},
		{failure.TransportFailure, http.StatusBadGateway, "transport_failure"},
		{failure.SchemaViolation, http.StatusBadGateway, "schema_violation"},
		{failure.UpstreamRefusal, http.StatusBadGateway, "upstream_refusal"},
	}
	for _, tc := range tests {
		t.Run(tc.details, func(t *testing.T) {
			cause := failure.Upstream(tc.kind, "op", 403, []byte("upstream secret body"), nil)
			svc := &fakeRecommendationService{err: cause}
			rec := do(t, newTestRouter(svc), http.MethodPost, "/api/recommendations", `{"prompt":"x"}`)
			assert.Equal(t, tc.status, rec.Code)
			body := decodeError(t, rec)
			assert.Equal(t, tc.details, body.Details)
			assert.NotEmpty(t, body.Message)
			assert.False(t, strings.Contains(rec.Body.String(), "secret"))
		})
	}
}

func TestTitlesEndpoint(t *testing.T) {
	svc := &fakeRecommendationService{titles: []models.TitleCandidate{{Title: "Inception", Year: 2010}}}
	rec := do(t, newTestRouter(svc), http.MethodPost, "/api/titles", `{"prompt":"nolan","language":"zh"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `[{"title":"Inception","year":2010}]`, rec.Body.String())
	assert.Equal(t, models.LanguageChinese, svc.lastLang)

	rec = do(t, newTestRouter(svc), http.MethodGet, "/api/titles", "")
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func TestVersionEndpoint(t *testing.T) {
	Version = "1.2.3"
	rec := do(t, newTestRouter(&fakeRecommendationService{}), http.MethodGet, "/api/version", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"version":"1.2.3"}`, rec.Body.String())
}
