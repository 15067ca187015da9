package handlers

import (
	"net/http"

	"github.com/gorilla/mux"

	"cinemuse/api"
)

// Register mounts the API routes. Session creation and submit-style routes
// share the per-IP limiter.
func Register(r *mux.Router, recs *RecommendationsHandler, sessions *SessionsHandler, limiter *api.IPRateLimiter) {
	r.HandleFunc("/api/version", NewVersionHandler().GetVersion).Methods(http.MethodGet)

	// No method matcher: non-POST requests reach the handler and get a JSON 405.
	r.Handle("/api/recommendations", api.RateLimitHandlerFunc(limiter, recs.Recommend))
	r.Handle("/api/titles", api.RateLimitHandlerFunc(limiter, recs.Titles))

	s := r.PathPrefix("/api/sessions").Subrouter()
	s.Handle("", api.RateLimitHandlerFunc(limiter, sessions.Create)).Methods(http.MethodPost)
	s.HandleFunc("/{id}", sessions.Get).Methods(http.MethodGet)
	s.HandleFunc("/{id}", sessions.Delete).Methods(http.MethodDelete)
	s.HandleFunc("/{id}/input", sessions.SetInput).Methods(http.MethodPut)
	s.Handle("/{id}/submit", api.RateLimitHandlerFunc(limiter, sessions.Submit)).Methods(http.MethodPost)
	s.Handle("/{id}/refresh", api.RateLimitHandlerFunc(limiter, sessions.Refresh)).Methods(http.MethodPost)
	s.HandleFunc("/{id}/language", sessions.SetLanguage).Methods(http.MethodPost)
}
