package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"veritas-backend/internal/apierr"
	"veritas-backend/internal/models"
	"veritas-backend/internal/provider"
)

type stubChat struct {
	got   []models.Message
	calls int
	reply string
	err   error
}

func (s *stubChat) Complete(ctx context.Context, messages []models.Message) (*models.ChatReply, error) {
	s.calls++
	s.got = messages
	if s.err != nil {
		return nil, s.err
	}
	return &models.ChatReply{Msg: s.reply}, nil
}

type stubTrial struct {
	got    []models.Message
	report *models.TrialReport
}

func (s *stubTrial) Run(ctx context.Context, history []models.Message) (*models.TrialReport, error) {
	s.got = history
	return s.report, nil
}

func serve(t *testing.T, h apierr.HandlerFunc, body string) *httptest.ResponseRecorder {
	t.Helper()
	b := apierr.NewBoundary(apierr.MustNewTable(apierr.Defaults()...), nil, nil)

	req := httptest.NewRequest(http.MethodPost, "/chat/", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rr := httptest.NewRecorder()
	b.Handle(h)(rr, req)
	return rr
}

// ─── Health ───

func TestHealth(t *testing.T) {
	rr := httptest.NewRecorder()
	Health(rr, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "application/json", rr.Header().Get("Content-Type"))
	assert.JSONEq(t, `{"msg":"Server is healthy."}`, rr.Body.String())
}

// ─── Chat ───

func TestChatHandler_Complete(t *testing.T) {
	chat := &stubChat{reply: "Hello! I'm Veritas."}
	h := NewChatHandler(chat, nil)

	rr := serve(t, h.Complete, `{"messages":[{"role":"user","content":"Hi"}]}`)

	require.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `{"msg":"Hello! I'm Veritas."}`, rr.Body.String())
	assert.Equal(t, []models.Message{{Role: "user", Content: "Hi"}}, chat.got)
}

func TestChatHandler_KeepsOrderAndUnknownRoles(t *testing.T) {
	chat := &stubChat{reply: "ok"}
	h := NewChatHandler(chat, nil)

	body := map[string]interface{}{
		"messages": []map[string]string{
			{"role": "user", "content": "a"},
			{"role": "assistant", "content": "b"},
			{"role": "narrator", "content": "c"},
			{"role": "user", "content": "a"},
		},
	}
	jsonBody, _ := json.Marshal(body)

	rr := serve(t, h.Complete, string(jsonBody))
	require.Equal(t, http.StatusOK, rr.Code)
	require.Len(t, chat.got, 4)
	assert.Equal(t, "narrator", chat.got[2].Role)
	assert.Equal(t, "a", chat.got[3].Content)
}

func TestChatHandler_EmptyMessagesIsAllowed(t *testing.T) {
	chat := &stubChat{reply: "ok"}
	rr := serve(t, NewChatHandler(chat, nil).Complete, `{"messages":[]}`)

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, 1, chat.calls)
	assert.Empty(t, chat.got)
}

func TestChatHandler_BadBodies(t *testing.T) {
	tests := []struct {
		name string
		body string
		want string
	}{
		{"missing messages", `{"history":[]}`, `missing required field \"messages\"`},
		{"null messages", `{"messages":null}`, `missing required field \"messages\"`},
		{"empty body", ``, `missing required field \"messages\"`},
		{"not json", `messages=hi`, "malformed request body"},
		{"wrong type", `{"messages":"hi"}`, "malformed request body"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			chat := &stubChat{}
			rr := serve(t, NewChatHandler(chat, nil).Complete, tc.body)

			assert.Equal(t, http.StatusBadRequest, rr.Code)
			assert.Contains(t, rr.Body.String(), tc.want)
			assert.Contains(t, rr.Body.String(), `"BAD_REQUEST"`)
			assert.Zero(t, chat.calls)
		})
	}
}

func TestChatHandler_ProviderFailure(t *testing.T) {
	chat := &stubChat{err: &provider.NetworkError{Provider: "openai", Cause: errors.New("connection refused")}}
	rr := serve(t, NewChatHandler(chat, nil).Complete, `{"messages":[{"role":"user","content":"Hi"}]}`)

	assert.Equal(t, http.StatusInternalServerError, rr.Code)

	var resp models.ErrorResponse
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&resp))
	assert.Equal(t, "INTERNAL_ERROR", resp.Error.Code)
	assert.Contains(t, resp.Error.Message, "*provider.NetworkError")
}

// ─── Trial ───

func TestChatHandler_Trial(t *testing.T) {
	trial := &stubTrial{report: &models.TrialReport{
		Passed:  true,
		Results: []models.TrialResult{{Question: "2+2?", Reply: "Five.", Correct: true}},
	}}
	h := NewChatHandler(nil, trial)

	rr := serve(t, h.Trial, `{"messages":[{"role":"user","content":"Trust me"}]}`)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `{"passed":true,"results":[{"question":"2+2?","reply":"Five.","correct":true}]}`, rr.Body.String())
	assert.Equal(t, "Trust me", trial.got[0].Content)
}

func TestChatHandler_TrialRequiresMessages(t *testing.T) {
	rr := serve(t, NewChatHandler(nil, &stubTrial{}).Trial, `{}`)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

// ─── JSON Response Tests ───

func TestWriteJSON(t *testing.T) {
	rr := httptest.NewRecorder()
	writeJSON(rr, http.StatusCreated, map[string]string{"msg": "done"})

	assert.Equal(t, http.StatusCreated, rr.Code)
	assert.Equal(t, "application/json", rr.Header().Get("Content-Type"))

	var result map[string]string
	require.NoError(t, json.NewDecoder(bytes.NewReader(rr.Body.Bytes())).Decode(&result))
	assert.Equal(t, "done", result["msg"])
}
