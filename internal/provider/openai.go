package provider

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"veritas-backend/internal/models"
)

const (
	openAIName           = "openai"
	DefaultOpenAIBaseURL = "https://api.openai.com/v1"
)

// OpenAIConfig configures the OpenAI compatible client.
type OpenAIConfig struct {
	APIKey  string
	BaseURL string
	// Timeout of zero leaves the request bounded only by its context.
	Timeout time.Duration
}

// OpenAI is a client for the /chat/completions endpoint of any
// OpenAI compatible API.
type OpenAI struct {
	config     OpenAIConfig
	httpClient *http.Client
	logger     *zap.Logger
}

type openAIRequest struct {
	Model    string           `json:"model"`
	Messages []models.Message `json:"messages"`
	N        int              `json:"n"`
}

type openAIResponse struct {
	ID      string `json:"id"`
	Model   string `json:"model"`
	Choices []struct {
		Index        int            `json:"index"`
		Message      models.Message `json:"message"`
		FinishReason string         `json:"finish_reason"`
	} `json:"choices"`
}

type openAIErrorBody struct {
	Error struct {
		Message string `json:"message"`
		Type    string `json:"type"`
	} `json:"error"`
}

// NewOpenAI creates an OpenAI client.
func NewOpenAI(config OpenAIConfig, logger *zap.Logger) *OpenAI {
	if config.BaseURL == "" {
		config.BaseURL = DefaultOpenAIBaseURL
	}
	config.BaseURL = strings.TrimRight(config.BaseURL, "/")
	if logger == nil {
		logger = zap.NewNop()
	}
	return &OpenAI{
		config:     config,
		httpClient: &http.Client{Timeout: config.Timeout},
		logger:     logger,
	}
}

func (p *OpenAI) Name() string { return openAIName }

// Complete sends one chat completion request. It is never retried.
func (p *OpenAI) Complete(ctx context.Context, req Request) (*Response, error) {
	reqBody, err := json.Marshal(openAIRequest{Model: req.Model, Messages: req.Messages, N: 1})
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	url := p.config.BaseURL + "/chat/completions"
	p.logger.Debug("forwarding request to provider",
		zap.String("url", url),
		zap.String("model", req.Model),
		zap.Int("message_count", len(req.Messages)),
	)

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(reqBody))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	if p.config.APIKey != "" {
		httpReq.Header.Set("Authorization", "Bearer "+p.config.APIKey)
	}

	start := time.Now()
	httpResp, err := p.httpClient.Do(httpReq)
	if err != nil {
		return nil, &NetworkError{Provider: openAIName, Cause: err}
	}
	defer httpResp.Body.Close()

	body, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return nil, &NetworkError{Provider: openAIName, Cause: fmt.Errorf("read response: %w", err)}
	}

	p.logger.Debug("received response from provider",
		zap.Int("status", httpResp.StatusCode),
		zap.Int("body_size", len(body)),
		zap.Duration("duration", time.Since(start)),
	)

	if httpResp.StatusCode < 200 || httpResp.StatusCode > 299 {
		return nil, statusError(httpResp, body)
	}

	var decoded openAIResponse
	if err := json.Unmarshal(body, &decoded); err != nil {
		return nil, &MalformedResponseError{Provider: openAIName, Reason: "invalid JSON", Cause: err}
	}
	if decoded.Choices == nil {
		return nil, &MalformedResponseError{Provider: openAIName, Reason: "missing choices"}
	}

	resp := &Response{Model: decoded.Model, Choices: make([]Choice, 0, len(decoded.Choices))}
	for _, c := range decoded.Choices {
		resp.Choices = append(resp.Choices, Choice{
			Index:        c.Index,
			Message:      c.Message,
			FinishReason: c.FinishReason,
		})
	}
	return resp, nil
}

func statusError(resp *http.Response, body []byte) error {
	msg := strings.TrimSpace(string(body))
	var errBody openAIErrorBody
	if json.Unmarshal(body, &errBody) == nil && errBody.Error.Message != "" {
		msg = errBody.Error.Message
	}

	switch resp.StatusCode {
	case http.StatusUnauthorized, http.StatusForbidden:
		return &AuthError{Provider: openAIName, Message: msg}
	case http.StatusTooManyRequests:
		var retryAfter time.Duration
		if secs, err := strconv.Atoi(resp.Header.Get("Retry-After")); err == nil {
			retryAfter = time.Duration(secs) * time.Second
		}
		return &RateLimitError{Provider: openAIName, RetryAfter: retryAfter, Message: msg}
	default:
		return &StatusError{Provider: openAIName, StatusCode: resp.StatusCode, Message: msg}
	}
}
