package apierr

import (
	"encoding/json"
	"net/http"

	"go.uber.org/zap"

	"veritas-backend/internal/models"
)

// HandlerFunc is an HTTP handler that reports failure by returning an error
// instead of writing the response itself.
type HandlerFunc func(w http.ResponseWriter, r *http.Request) error

// Observer is notified of every resolved error.
type Observer interface {
	ObserveError(kind, category string)
}

// Boundary is the single place where handler errors become HTTP responses.
type Boundary struct {
	table    *Table
	logger   *zap.Logger
	observer Observer
}

// NewBoundary creates a Boundary. observer may be nil.
func NewBoundary(table *Table, logger *zap.Logger, observer Observer) *Boundary {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Boundary{table: table, logger: logger, observer: observer}
}

// Handle adapts h to an http.HandlerFunc, rendering any returned error.
func (b *Boundary) Handle(h HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := h(w, r); err != nil {
			b.Write(w, r, err)
		}
	}
}

// Write resolves err against the table and writes the JSON error body.
func (b *Boundary) Write(w http.ResponseWriter, r *http.Request, err error) {
	apiErr := b.table.Resolve(err)

	fields := []zap.Field{
		zap.Int("status", apiErr.Status),
		zap.String("category", apiErr.Category),
		zap.String("method", r.Method),
		zap.String("path", r.URL.Path),
		zap.String("request_id", r.Header.Get("X-Request-ID")),
		zap.Error(err),
	}
	switch {
	case !apiErr.Mapped:
		b.logger.Error("unmapped error", fields...)
	case apiErr.Status >= http.StatusInternalServerError:
		b.logger.Error("request failed", fields...)
	default:
		b.logger.Debug("request rejected", fields...)
	}

	if b.observer != nil {
		b.observer.ObserveError(apiErr.KindLabel(), apiErr.Category)
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(apiErr.Status)
	json.NewEncoder(w).Encode(models.ErrorResponse{
		Error: models.APIError{
			Code:      apiErr.Code,
			Message:   apiErr.Message,
			RequestID: r.Header.Get("X-Request-ID"),
		},
	})
}
