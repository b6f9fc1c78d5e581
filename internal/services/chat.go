package services

import (
	"context"
	"time"

	"go.uber.org/zap"

	"veritas-backend/internal/models"
	"veritas-backend/internal/persona"
	"veritas-backend/internal/provider"
)

// CompletionObserver is notified after every provider call.
type CompletionObserver interface {
	ObserveCompletion(provider, model string, err error, d time.Duration)
}

// ChatService relays a conversation to the completion provider behind the
// configured persona.
type ChatService struct {
	provider provider.Completer
	persona  persona.Config
	model    string
	logger   *zap.Logger
	observer CompletionObserver
}

func NewChatService(
	completer provider.Completer,
	p persona.Config,
	model string,
	logger *zap.Logger,
	observer CompletionObserver,
) *ChatService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ChatService{
		provider: completer,
		persona:  p,
		model:    model,
		logger:   logger,
		observer: observer,
	}
}

// Model returns the model identifier sent with every request.
func (s *ChatService) Model() string { return s.model }

// Complete sends preamble ++ messages to the provider and returns the first
// choice. Provider errors are returned unwrapped so the error boundary can
// classify them.
func (s *ChatService) Complete(ctx context.Context, messages []models.Message) (*models.ChatReply, error) {
	outbound := s.persona.Apply(messages)

	s.logger.Debug("relaying conversation",
		zap.String("persona", s.persona.Name),
		zap.Int("caller_messages", len(messages)),
		zap.Int("outbound_messages", len(outbound)),
	)

	start := time.Now()
	resp, err := s.provider.Complete(ctx, provider.Request{Model: s.model, Messages: outbound})
	var content string
	if err == nil {
		content, err = resp.FirstContent(s.provider.Name())
	}
	if s.observer != nil {
		s.observer.ObserveCompletion(s.provider.Name(), s.model, err, time.Since(start))
	}
	if err != nil {
		return nil, err
	}

	return &models.ChatReply{Msg: content}, nil
}
