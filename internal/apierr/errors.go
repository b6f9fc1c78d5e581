package apierr

import (
	"fmt"
	"net/http"
	"reflect"
	"strings"
)

// HTTPError is an error that already knows its HTTP response. It is passed
// through the table unchanged.
type HTTPError struct {
	Status  int
	Code    string
	Message string
}

// NewHTTPError builds an HTTPError whose code is derived from the status text,
// e.g. 405 becomes METHOD_NOT_ALLOWED.
func NewHTTPError(status int, message string) *HTTPError {
	code := strings.ToUpper(strings.ReplaceAll(http.StatusText(status), " ", "_"))
	if k, ok := kindForStatus(status); ok {
		code = k.Code()
	}
	return &HTTPError{Status: status, Code: code, Message: message}
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("%d %s: %s", e.Status, http.StatusText(e.Status), e.Message)
}

// Error is a resolved API error, ready to be rendered.
type Error struct {
	Kind     Kind
	Status   int
	Code     string
	Category string
	Message  string

	// Native is set when the error was an *HTTPError passed through verbatim.
	Native bool
	// Mapped is false for errors whose category is not registered.
	Mapped bool
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s (%d): %s", e.Code, e.Status, e.Message)
}

// KindLabel names the error class for metrics. Passed-through HTTP errors are
// labelled "native" since their status need not belong to any Kind.
func (e *Error) KindLabel() string {
	if e.Native {
		return "native"
	}
	return e.Kind.String()
}

// CategoryOf returns the category name of err, which is its dynamic type.
func CategoryOf(err error) string {
	if err == nil {
		return "<nil>"
	}
	return reflect.TypeOf(err).String()
}
