// Package render writes JSON responses in the shape every handler shares.
package render

import (
	"encoding/json"
	"log/slog"
	"net/http"
)

type errorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

// Message is the body of responses that carry nothing but a note.
type Message struct {
	Message string `json:"message"`
}

func JSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}

// Error writes {"error": <status text>, "message": msg}.
func Error(w http.ResponseWriter, status int, msg string) {
	JSON(w, status, errorResponse{
		Error:   http.StatusText(status),
		Message: msg,
	})
}

// Decode reads a JSON request body into v, answering 400 itself on failure.
func Decode(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		Error(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return false
	}

	return true
}
