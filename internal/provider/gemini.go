package provider

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"github.com/googleapis/gax-go/v2/apierror"
	"go.uber.org/zap"
	"google.golang.org/api/option"

	"veritas-backend/internal/models"
)

const geminiName = "gemini"

// geminiContinuePrompt is sent as the user turn when the conversation ends on
// a model turn, since Gemini only answers user turns.
const geminiContinuePrompt = "Continue."

// ErrEmptyConversation is returned when there is no chat turn to answer.
var ErrEmptyConversation = errors.New("gemini: conversation has no user or assistant messages")

// Gemini adapts Google's Gemini chat API to Completer.
type Gemini struct {
	client *genai.Client
	logger *zap.Logger
}

// NewGemini creates a Gemini client authenticated with apiKey.
func NewGemini(ctx context.Context, apiKey string, logger *zap.Logger) (*Gemini, error) {
	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Gemini{client: client, logger: logger}, nil
}

func (g *Gemini) Name() string { return geminiName }

func (g *Gemini) Close() error {
	return g.client.Close()
}

// Complete replays the conversation as chat history and sends the last user
// message as the new turn.
func (g *Gemini) Complete(ctx context.Context, req Request) (*Response, error) {
	system, history, last := splitConversation(req.Messages)
	if last == nil {
		return nil, ErrEmptyConversation
	}

	model := g.client.GenerativeModel(req.Model)
	model.SetCandidateCount(1)
	if system != "" {
		model.SystemInstruction = &genai.Content{Parts: []genai.Part{genai.Text(system)}}
	}

	cs := model.StartChat()
	cs.History = history

	g.logger.Debug("forwarding request to provider",
		zap.String("provider", geminiName),
		zap.String("model", req.Model),
		zap.Int("history", len(history)),
	)

	resp, err := cs.SendMessage(ctx, last.Parts...)
	if err != nil {
		return nil, classifyGeminiError(err)
	}

	for i, cand := range resp.Candidates {
		if cand.FinishReason != genai.FinishReasonStop {
			g.logger.Warn("gemini stopped early",
				zap.Int("candidate", i),
				zap.String("finish_reason", cand.FinishReason.String()),
			)
		}
	}

	return &Response{Model: req.Model, Choices: candidatesToChoices(resp.Candidates)}, nil
}

// splitConversation separates system messages, which Gemini takes as a system
// instruction, from the chat turns. The final user turn is returned
// separately; when the conversation ends on a model turn every turn stays in
// the history and the prompt is geminiContinuePrompt.
func splitConversation(messages []models.Message) (string, []*genai.Content, *genai.Content) {
	var system []string
	var turns []*genai.Content
	for _, m := range messages {
		switch m.Role {
		case models.RoleSystem:
			system = append(system, m.Content)
		case models.RoleAssistant:
			turns = append(turns, &genai.Content{Role: "model", Parts: []genai.Part{genai.Text(m.Content)}})
		default:
			turns = append(turns, &genai.Content{Role: "user", Parts: []genai.Part{genai.Text(m.Content)}})
		}
	}
	instruction := strings.Join(system, "\n\n")
	if len(turns) == 0 {
		return instruction, nil, nil
	}
	if last := turns[len(turns)-1]; last.Role == "user" {
		return instruction, turns[:len(turns)-1], last
	}
	return instruction, turns, &genai.Content{Role: "user", Parts: []genai.Part{genai.Text(geminiContinuePrompt)}}
}

func candidatesToChoices(cands []*genai.Candidate) []Choice {
	choices := make([]Choice, 0, len(cands))
	for i, cand := range cands {
		var text strings.Builder
		if cand.Content != nil {
			for _, part := range cand.Content.Parts {
				if t, ok := part.(genai.Text); ok {
					text.WriteString(string(t))
				}
			}
		}
		choices = append(choices, Choice{
			Index:        i,
			Message:      models.Message{Role: models.RoleAssistant, Content: text.String()},
			FinishReason: strings.ToLower(strings.TrimPrefix(cand.FinishReason.String(), "FinishReason")),
		})
	}
	return choices
}

func classifyGeminiError(err error) error {
	var apiErr *apierror.APIError
	if !errors.As(err, &apiErr) {
		return &NetworkError{Provider: geminiName, Cause: err}
	}

	msg := apiErr.Error()
	switch code := apiErr.HTTPCode(); code {
	case http.StatusUnauthorized, http.StatusForbidden:
		return &AuthError{Provider: geminiName, Message: msg}
	case http.StatusTooManyRequests:
		return &RateLimitError{Provider: geminiName, Message: msg}
	case -1:
		return &StatusError{Provider: geminiName, StatusCode: http.StatusBadGateway, Message: msg}
	default:
		return &StatusError{Provider: geminiName, StatusCode: code, Message: msg}
	}
}
