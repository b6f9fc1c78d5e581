package handlers

import (
	"net/http"

	"veritas-backend/internal/models"
)

const healthyMessage = "Server is healthy."

// Health is the liveness probe.
func Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, models.ChatReply{Msg: healthyMessage})
}
