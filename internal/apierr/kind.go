// Package apierr maps errors raised while handling a request to HTTP
// responses. The mapping is an immutable table from error category (the
// dynamic Go type of an error) to a Kind, built once at startup and shared by
// every request.
package apierr

import "net/http"

// Kind is the closed set of API error classes.
type Kind int

const (
	Internal Kind = iota
	BadRequest
	Conflict
	NotFound
	Unauthorized
	Forbidden
	TooManyRequests
)

var kindInfo = map[Kind]struct {
	status int
	code   string
	name   string
}{
	Internal:        {http.StatusInternalServerError, "INTERNAL_ERROR", "internal"},
	BadRequest:      {http.StatusBadRequest, "BAD_REQUEST", "bad_request"},
	Conflict:        {http.StatusConflict, "CONFLICT", "conflict"},
	NotFound:        {http.StatusNotFound, "NOT_FOUND", "not_found"},
	Unauthorized:    {http.StatusUnauthorized, "UNAUTHORIZED", "unauthorized"},
	Forbidden:       {http.StatusForbidden, "FORBIDDEN", "forbidden"},
	TooManyRequests: {http.StatusTooManyRequests, "RATE_LIMITED", "too_many_requests"},
}

// Status returns the HTTP status code for the kind.
func (k Kind) Status() int {
	if info, ok := kindInfo[k]; ok {
		return info.status
	}
	return http.StatusInternalServerError
}

// Code returns the machine readable error code used in response bodies.
func (k Kind) Code() string {
	if info, ok := kindInfo[k]; ok {
		return info.code
	}
	return kindInfo[Internal].code
}

func (k Kind) String() string {
	if info, ok := kindInfo[k]; ok {
		return info.name
	}
	return "unknown"
}

// kindForStatus finds the Kind whose status matches. Statuses outside the
// closed set report Internal with ok == false.
func kindForStatus(status int) (Kind, bool) {
	for k, info := range kindInfo {
		if info.status == status {
			return k, true
		}
	}
	return Internal, false
}
