package handlers

import (
	"context"
	"net/http"
	"strings"

	"cinemuse/models"
)

type recommendationService interface {
	GetRecommendations(ctx context.Context, prompt string, lang models.Language) ([]models.Movie, error)
	SuggestTitles(ctx context.Context, prompt string, lang models.Language) ([]models.TitleCandidate, error)
}

type RecommendationsHandler struct {
	Service recommendationService
}

func NewRecommendationsHandler(svc recommendationService) *RecommendationsHandler {
	return &RecommendationsHandler{Service: svc}
}

type recommendationRequest struct {
	Prompt   string `json:"prompt"`
	Language string `json:"language" validate:"omitempty,language"`
}

// parse validates the body and answers 400 itself when it is unusable.
func (h *RecommendationsHandler) parse(w http.ResponseWriter, r *http.Request) (string, models.Language, bool) {
	var req recommendationRequest
	if err := decodeBody(r, &req, true); err != nil {
		jsonError(w, err.Error(), http.StatusBadRequest)
		return "", "", false
	}
	prompt := strings.TrimSpace(req.Prompt)
	if prompt == "" {
		jsonError(w, "Missing prompt", http.StatusBadRequest)
		return "", "", false
	}
	lang, err := models.ParseLanguage(req.Language)
	if err != nil {
		jsonError(w, err.Error(), http.StatusBadRequest)
		return "", "", false
	}
	return prompt, lang, true
}

// Recommend handles POST /api/recommendations and returns resolved movies.
func (h *RecommendationsHandler) Recommend(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w, http.MethodPost)
		return
	}
	prompt, lang, ok := h.parse(w, r)
	if !ok {
		return
	}

	movies, err := h.Service.GetRecommendations(r.Context(), prompt, lang)
	if err != nil {
		writeFailure(w, "recommendations", err)
		return
	}
	writeJSON(w, http.StatusOK, movies)
}

// Titles handles POST /api/titles and returns unresolved {title, year} pairs.
func (h *RecommendationsHandler) Titles(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w, http.MethodPost)
		return
	}
	prompt, lang, ok := h.parse(w, r)
	if !ok {
		return
	}

	titles, err := h.Service.SuggestTitles(r.Context(), prompt, lang)
	if err != nil {
		writeFailure(w, "titles", err)
		return
	}
	writeJSON(w, http.StatusOK, titles)
}
