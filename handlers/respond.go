package handlers

import (
	"errors"
	"io"
	"log"
	"net/http"
	"strings"

	json "github.com/goccy/go-json"

	"cinemuse/internal/failure"
	"cinemuse/internal/validation"
)

const maxBodyBytes = 64 << 10

// errorResponse is the body of every non-2xx answer. Details carries only the
// failure kind, never upstream payloads.
type errorResponse struct {
	Message string `json:"message"`
	Details string `json:"details,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("[handlers] encode response: %v", err)
	}
}

func jsonError(w http.ResponseWriter, message string, statusCode int) {
	writeJSON(w, statusCode, errorResponse{Message: message})
}

func methodNotAllowed(w http.ResponseWriter, allowed string) {
	w.Header().Set("Allow", allowed)
	jsonError(w, "Method Not Allowed", http.StatusMethodNotAllowed)
}

// writeFailure maps a classified failure onto a status and a generic message.
// The raw error is logged here and nowhere else.
func writeFailure(w http.ResponseWriter, op string, err error) {
	kind := failure.KindOf(err)
	status, message := http.StatusBadGateway, "Failed to get recommendations"
	switch kind {
	case failure.InputValidation:
		status, message = http.StatusBadRequest, "Invalid request"
	case failure.Configuration:
		status, message = http.StatusInternalServerError, "Server is not configured to serve recommendations"
	case failure.NoResults:
		message = "Could not find details for any of the recommended movies"
	case failure.Unknown:
		status, message = http.StatusInternalServerError, "Internal server error"
	}
	log.Printf("[handlers] %s failed status=%d kind=%s: %v", op, status, kind, err)
	writeJSON(w, status, errorResponse{Message: message, Details: kind.String()})
}

var errEmptyBody = errors.New("request body is empty")

// decodeBody reads a JSON body into v and validates it. An empty body leaves v
// untouched when allowEmpty is set.
func decodeBody(r *http.Request, v any, allowEmpty bool) error {
	data, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes))
	if err != nil {
		return err
	}
	if strings.TrimSpace(string(data)) == "" {
		if !allowEmpty {
			return errEmptyBody
		}
	} else if err := json.Unmarshal(data, v); err != nil {
		return errors.New("request body must be a JSON object")
	}
	return validation.Struct(v)
}
