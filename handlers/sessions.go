package handlers

import (
	"errors"
	"net/http"

	"github.com/gorilla/mux"

	"cinemuse/internal/session"
	"cinemuse/models"
)

type SessionsHandler struct {
	Store *session.Store
}

func NewSessionsHandler(store *session.Store) *SessionsHandler {
	return &SessionsHandler{Store: store}
}

type createSessionRequest struct {
	Language string `json:"language" validate:"omitempty,language"`
}

type inputRequest struct {
	Text string `json:"text"`
}

type submitRequest struct {
	// Prompt, when present, replaces the input first (suggestion chip click).
	Prompt *string `json:"prompt"`
}

type languageRequest struct {
	// Empty toggles to the other language.
	Language string `json:"language" validate:"omitempty,language"`
}

func (h *SessionsHandler) lookup(w http.ResponseWriter, r *http.Request) (*session.Session, bool) {
	s, err := h.Store.Get(mux.Vars(r)["id"])
	if err != nil {
		jsonError(w, "session not found", http.StatusNotFound)
		return nil, false
	}
	return s, true
}

// Create handles POST /api/sessions.
func (h *SessionsHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req createSessionRequest
	if err := decodeBody(r, &req, true); err != nil {
		jsonError(w, err.Error(), http.StatusBadRequest)
		return
	}
	lang, _ := models.ParseLanguage(req.Language)
	s := h.Store.Create(lang)
	writeJSON(w, http.StatusCreated, s.View())
}

// Get handles GET /api/sessions/{id}.
func (h *SessionsHandler) Get(w http.ResponseWriter, r *http.Request) {
	s, ok := h.lookup(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, s.View())
}

// Delete handles DELETE /api/sessions/{id}.
func (h *SessionsHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.Store.Delete(mux.Vars(r)["id"]); err != nil {
		jsonError(w, "session not found", http.StatusNotFound)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// SetInput handles PUT /api/sessions/{id}/input.
func (h *SessionsHandler) SetInput(w http.ResponseWriter, r *http.Request) {
	s, ok := h.lookup(w, r)
	if !ok {
		return
	}
	var req inputRequest
	if err := decodeBody(r, &req, false); err != nil {
		jsonError(w, err.Error(), http.StatusBadRequest)
		return
	}
	writeJSON(w, http.StatusOK, s.SetInput(req.Text))
}

// Submit handles POST /api/sessions/{id}/submit. It answers once the
// submission settles; failures are reported in the view, not the status.
func (h *SessionsHandler) Submit(w http.ResponseWriter, r *http.Request) {
	s, ok := h.lookup(w, r)
	if !ok {
		return
	}
	var req submitRequest
	if err := decodeBody(r, &req, true); err != nil {
		jsonError(w, err.Error(), http.StatusBadRequest)
		return
	}
	writeJSON(w, http.StatusOK, s.Submit(r.Context(), req.Prompt))
}

// Refresh handles POST /api/sessions/{id}/refresh.
func (h *SessionsHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	s, ok := h.lookup(w, r)
	if !ok {
		return
	}
	view, err := s.Refresh(r.Context())
	if errors.Is(err, session.ErrRefreshUnavailable) {
		writeJSON(w, http.StatusConflict, errorResponse{Message: err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, view)
}

// SetLanguage handles POST /api/sessions/{id}/language.
func (h *SessionsHandler) SetLanguage(w http.ResponseWriter, r *http.Request) {
	s, ok := h.lookup(w, r)
	if !ok {
		return
	}
	var req languageRequest
	if err := decodeBody(r, &req, true); err != nil {
		jsonError(w, err.Error(), http.StatusBadRequest)
		return
	}
	if req.Language == "" {
		writeJSON(w, http.StatusOK, s.ToggleLanguage())
		return
	}
	lang, _ := models.ParseLanguage(req.Language)
	writeJSON(w, http.StatusOK, s.SetLanguage(lang))
}
