package apierr

import (
	"errors"
	"fmt"
	"reflect"
)

// Entry registers one error category under a Kind.
type Entry struct {
	Kind     Kind
	Category reflect.Type
}

// For returns an Entry for the error type T, e.g.
//
//	apierr.For[*models.MissingFieldError](apierr.BadRequest)
func For[T error](kind Kind) Entry {
	return Entry{Kind: kind, Category: reflect.TypeOf((*T)(nil)).Elem()}
}

// Table is the category to Kind lookup. It is read-only after NewTable.
type Table struct {
	kinds  map[reflect.Type]Kind
	redact bool
}

// NewTable builds a Table. The per-kind category sets must be disjoint.
func NewTable(entries ...Entry) (*Table, error) {
	kinds := make(map[reflect.Type]Kind, len(entries))
	for _, e := range entries {
		if e.Category == nil {
			return nil, fmt.Errorf("apierr: nil category for kind %s", e.Kind)
		}
		if _, ok := kindInfo[e.Kind]; !ok {
			return nil, fmt.Errorf("apierr: unknown kind %d for %s", e.Kind, e.Category)
		}
		if prev, ok := kinds[e.Category]; ok && prev != e.Kind {
			return nil, fmt.Errorf("apierr: %s registered as both %s and %s", e.Category, prev, e.Kind)
		}
		kinds[e.Category] = e.Kind
	}
	return &Table{kinds: kinds}, nil
}

// MustNewTable is NewTable that panics on error, for package-level defaults.
func MustNewTable(entries ...Entry) *Table {
	t, err := NewTable(entries...)
	if err != nil {
		panic(err)
	}
	return t
}

// Redacted returns a Table with the same mapping that does not echo the text
// of unmapped errors, or of errors mapped to Internal, back to the client. The
// category name is still reported.
func (t *Table) Redacted() *Table {
	return &Table{kinds: t.kinds, redact: true}
}

// Len returns the number of registered categories.
func (t *Table) Len() int { return len(t.kinds) }

// Lookup returns the Kind registered for an error's category.
func (t *Table) Lookup(err error) (Kind, bool) {
	if err == nil {
		return Internal, false
	}
	k, ok := t.kinds[reflect.TypeOf(err)]
	return k, ok
}

// Resolve converts err into the response that should be sent. An *HTTPError
// in the chain wins; otherwise the chain is walked outermost first for a
// registered category; anything else is an unmapped internal error.
func (t *Table) Resolve(err error) *Error {
	var httpErr *HTTPError
	if errors.As(err, &httpErr) {
		kind, _ := kindForStatus(httpErr.Status)
		return &Error{
			Kind:     kind,
			Status:   httpErr.Status,
			Code:     httpErr.Code,
			Category: CategoryOf(httpErr),
			Message:  httpErr.Message,
			Native:   true,
			Mapped:   true,
		}
	}

	for e := err; e != nil; e = errors.Unwrap(e) {
		if kind, ok := t.Lookup(e); ok {
			category := CategoryOf(e)
			msg := e.Error()
			if t.redact && kind == Internal {
				msg = category + " error occurred"
			}
			return &Error{
				Kind:     kind,
				Status:   kind.Status(),
				Code:     kind.Code(),
				Category: category,
				Message:  msg,
				Mapped:   true,
			}
		}
	}

	category := CategoryOf(err)
	msg := fmt.Sprintf("%s error occurred, but has not been configured on the server", category)
	if !t.redact && err != nil {
		msg = fmt.Sprintf("%s: %v", msg, err)
	}
	return &Error{
		Kind:     Internal,
		Status:   Internal.Status(),
		Code:     Internal.Code(),
		Category: category,
		Message:  msg,
	}
}
