package handlers

import (
	"encoding/json"
	"net/http"
)

// ErrorResponse is the body of every failed API call.
type ErrorResponse struct {
	Error string `json:"error"`
}

// MessageResponse acknowledges a write.
type MessageResponse struct {
	Message string `json:"message"`
}

// CreatedResponse is returned by POST /api/entries.
type CreatedResponse struct {
	ID      int64  `json:"id"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, ErrorResponse{Error: message})
}
