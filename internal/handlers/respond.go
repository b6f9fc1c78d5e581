package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"veritas-backend/internal/models"
)

// Shared helpers

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

// decodeChatRequest reads {"messages": [...]} and requires the field to be present.
func decodeChatRequest(r *http.Request) ([]models.Message, error) {
	var req models.ChatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, &models.MissingFieldError{Field: "messages"}
		}
		return nil, &models.MalformedBodyError{Cause: err}
	}
	if req.Messages == nil {
		return nil, &models.MissingFieldError{Field: "messages"}
	}
	return *req.Messages, nil
}
