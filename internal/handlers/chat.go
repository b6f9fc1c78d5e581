package handlers

import (
	"context"
	"net/http"

	"veritas-backend/internal/models"
)

type chatCompleter interface {
	Complete(ctx context.Context, messages []models.Message) (*models.ChatReply, error)
}

type trialRunner interface {
	Run(ctx context.Context, history []models.Message) (*models.TrialReport, error)
}

type ChatHandler struct {
	chat  chatCompleter
	trial trialRunner
}

func NewChatHandler(chat chatCompleter, trial trialRunner) *ChatHandler {
	return &ChatHandler{chat: chat, trial: trial}
}

// Complete relays the caller's conversation and returns the assistant reply.
func (h *ChatHandler) Complete(w http.ResponseWriter, r *http.Request) error {
	messages, err := decodeChatRequest(r)
	if err != nil {
		return err
	}

	reply, err := h.chat.Complete(r.Context(), messages)
	if err != nil {
		return err
	}

	writeJSON(w, http.StatusOK, reply)
	return nil
}

// Trial asks the fixed trial questions on top of the caller's conversation.
func (h *ChatHandler) Trial(w http.ResponseWriter, r *http.Request) error {
	history, err := decodeChatRequest(r)
	if err != nil {
		return err
	}

	report, err := h.trial.Run(r.Context(), history)
	if err != nil {
		return err
	}

	writeJSON(w, http.StatusOK, report)
	return nil
}
