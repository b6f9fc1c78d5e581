// Package provider talks to the external chat completion service.
package provider

import (
	"context"

	"veritas-backend/internal/models"
)

// Request asks the provider for a single completion of Messages.
type Request struct {
	Model    string
	Messages []models.Message
}

// Choice is one candidate continuation.
type Choice struct {
	Index        int
	Message      models.Message
	FinishReason string
}

// Response is the provider's answer, in the provider's order.
type Response struct {
	Model   string
	Choices []Choice
}

// Completer is implemented by every completion provider.
type Completer interface {
	Name() string
	Complete(ctx context.Context, req Request) (*Response, error)
}

// FirstContent returns the content of the first choice.
func (r *Response) FirstContent(provider string) (string, error) {
	if r == nil || len(r.Choices) == 0 {
		return "", &MalformedResponseError{Provider: provider, Reason: "response has no choices"}
	}
	return r.Choices[0].Message.Content, nil
}
