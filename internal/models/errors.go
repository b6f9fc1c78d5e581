package models

import "fmt"

type APIError struct {
	Code      string `json:"code"`
	Message   string `json:"message"`
	RequestID string `json:"request_id"`
}

type ErrorResponse struct {
	Error APIError `json:"error"`
}

// MissingFieldError is returned when a required body field is absent.
type MissingFieldError struct{ Field string }

func (e *MissingFieldError) Error() string {
	return fmt.Sprintf("missing required field %q", e.Field)
}

// MalformedBodyError is returned when a request body cannot be decoded.
type MalformedBodyError struct{ Cause error }

func (e *MalformedBodyError) Error() string {
	return fmt.Sprintf("malformed request body: %v", e.Cause)
}

func (e *MalformedBodyError) Unwrap() error { return e.Cause }
