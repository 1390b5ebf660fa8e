package store

import (
	"fmt"
	"net/http"
	"strings"
)

// Kind classifies a store failure.
type Kind uint8

// Failure kinds.
const (
	KindNotFound Kind = iota + 1
	KindConflict
	KindInvalid
)

func (k Kind) String() string {
	switch k {
	case KindNotFound:
		return "not found"
	case KindConflict:
		return "already exists"
	case KindInvalid:
		return "invalid input"
	default:
		return "store error"
	}
}

// Error is a store failure tied to the record it concerns.
type Error struct {
	Kind    Kind
	Op      string // add, get, toggle, theme, ...
	Key     string // book ID or preference name
	Message string // Optional user-facing override
	Err     error
}

func (e *Error) Error() string {
	msg := e.Message
	if msg == "" {
		parts := []string{e.Op, e.Key}
		msg = strings.TrimSpace(strings.Join(parts, " ")) + ": " + e.Kind.String()
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", msg, e.Err)
	}
	return msg
}

func (e *Error) Unwrap() error { return e.Err }

// Is matches any *Error of the same Kind.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Kind == e.Kind
}

// HTTPCode returns the HTTP status code for the failure kind.
func (e *Error) HTTPCode() int {
	switch e.Kind {
	case KindNotFound:
		return http.StatusNotFound
	case KindConflict:
		return http.StatusConflict
	case KindInvalid:
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// Sentinels for errors.Is.
var (
	ErrNotFound      = &Error{Kind: KindNotFound}
	ErrAlreadyExists = &Error{Kind: KindConflict}
	ErrInvalidInput  = &Error{Kind: KindInvalid}
)

func notFound(op, key, msg string) *Error {
	return &Error{Kind: KindNotFound, Op: op, Key: key, Message: msg}
}

func conflict(op, key, msg string) *Error {
	return &Error{Kind: KindConflict, Op: op, Key: key, Message: msg}
}

func invalid(op, key, msg string) *Error {
	return &Error{Kind: KindInvalid, Op: op, Key: key, Message: msg}
}
