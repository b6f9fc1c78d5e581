package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

var okHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
})

// ─── Request ID ───

func TestRequestID_Generates(t *testing.T) {
	var seen string
	h := RequestID(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = GetRequestID(r.Context())
		assert.Equal(t, seen, r.Header.Get(RequestIDHeader))
	}))

	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/", nil))

	require.NotEmpty(t, seen)
	assert.Len(t, seen, 36)
	assert.Equal(t, seen, rr.Header().Get(RequestIDHeader))
}

func TestRequestID_ReusesClientValue(t *testing.T) {
	var seen string
	h := RequestID(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = GetRequestID(r.Context())
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(RequestIDHeader, "abc-123")
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)

	assert.Equal(t, "abc-123", seen)
	assert.Equal(t, "abc-123", rr.Header().Get(RequestIDHeader))
}

// ─── CORS ───

func TestCORS(t *testing.T) {
	tests := []struct {
		name        string
		method      string
		origin      string
		preflight   bool
		wantStatus  int
		wantAllowed string
	}{
		{"allowed origin", http.MethodPost, "http://localhost:3000", false, http.StatusOK, "http://localhost:3000"},
		{"other origin", http.MethodPost, "https://evil.example", false, http.StatusOK, ""},
		{"no origin", http.MethodGet, "", false, http.StatusOK, ""},
		{"preflight allowed", http.MethodOptions, "http://localhost:3000", true, http.StatusNoContent, "http://localhost:3000"},
		{"preflight other origin", http.MethodOptions, "https://evil.example", true, http.StatusNoContent, ""},
	}

	h := CORS("http://localhost:3000/")(okHandler)
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(tc.method, "/chat/", nil)
			if tc.origin != "" {
				req.Header.Set("Origin", tc.origin)
			}
			if tc.preflight {
				req.Header.Set("Access-Control-Request-Method", http.MethodPost)
			}
			rr := httptest.NewRecorder()
			h.ServeHTTP(rr, req)

			assert.Equal(t, tc.wantStatus, rr.Code)
			assert.Equal(t, tc.wantAllowed, rr.Header().Get("Access-Control-Allow-Origin"))
			if tc.preflight && tc.wantAllowed != "" {
				assert.Contains(t, rr.Header().Get("Access-Control-Allow-Methods"), http.MethodPost)
				assert.Equal(t, "3600", rr.Header().Get("Access-Control-Max-Age"))
			}
		})
	}
}

// ─── Logger ───

type recordedRequest struct {
	method, route string
	status        int
}

type requestRecorder struct{ got []recordedRequest }

func (r *requestRecorder) ObserveRequest(method, route string, status int, d time.Duration) {
	r.got = append(r.got, recordedRequest{method, route, status})
}

func TestLogger(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	rec := &requestRecorder{}

	r := chi.NewRouter()
	r.Use(RequestID)
	r.Use(Logger(zap.New(core), rec))
	r.Post("/chat/", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	})
	r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ok"))
	})

	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodPost, "/chat/", nil))
	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))

	require.Equal(t, 2, logs.Len())
	entry := logs.All()[0]
	assert.Equal(t, "request", entry.Message)
	assert.Equal(t, int64(http.StatusTeapot), entry.ContextMap()["status"])
	assert.NotEmpty(t, entry.ContextMap()["request_id"])

	// chi reports route patterns without the trailing slash.
	assert.Equal(t, []recordedRequest{
		{http.MethodPost, "/chat", http.StatusTeapot},
		{http.MethodGet, "/", http.StatusOK},
	}, rec.got)
}

func TestLogger_UsesRoutePatternNotPath(t *testing.T) {
	rec := &requestRecorder{}

	r := chi.NewRouter()
	r.Use(Logger(zap.NewNop(), rec))
	r.Handle("/api/*", http.NotFoundHandler())

	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/api/users/42", nil))
	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/api/orders", nil))

	assert.Equal(t, []recordedRequest{
		{http.MethodGet, "/api/*", http.StatusNotFound},
		{http.MethodGet, "/api/*", http.StatusNotFound},
	}, rec.got)
}
