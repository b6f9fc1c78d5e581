package metrics

import (
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCollector_Counters(t *testing.T) {
	c := New()

	c.ObserveRequest(http.MethodPost, "/chat/", http.StatusOK, 20*time.Millisecond)
	c.ObserveRequest(http.MethodPost, "/chat/", http.StatusOK, 30*time.Millisecond)
	c.ObserveCompletion("openai", "gpt-3.5-turbo", nil, time.Second)
	c.ObserveCompletion("openai", "gpt-3.5-turbo", errors.New("down"), time.Second)
	c.ObserveError("internal", "*provider.NetworkError")
	c.ObserveTrial(true)
	c.ObserveTrial(false)
	c.ObserveTrial(false)

	assert.Equal(t, 2.0, testutil.ToFloat64(c.requestsTotal.WithLabelValues("POST", "/chat/", "200")))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.completionsTotal.WithLabelValues("openai", "gpt-3.5-turbo", "success")))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.completionsTotal.WithLabelValues("openai", "gpt-3.5-turbo", "error")))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.errorsTotal.WithLabelValues("internal", "*provider.NetworkError")))
	assert.Equal(t, 2.0, testutil.ToFloat64(c.trialsTotal.WithLabelValues("failed")))
}

func TestCollector_Handler(t *testing.T) {
	c := New()
	c.ObserveError("bad_request", "*models.MissingFieldError")

	rr := httptest.NewRecorder()
	c.Handler().ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rr.Code)

	body, err := io.ReadAll(rr.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), "veritas_errors_total")
	assert.Contains(t, string(body), `kind="bad_request"`)
}
