package metadata

import (
	"errors"
	"fmt"
)

// Sentinel errors for metadata lookups.
var (
	ErrNotFound = errors.New("metadata: not found")
	ErrUpstream = errors.New("metadata: upstream error")
	ErrDecode   = errors.New("metadata: undecodable response")
)

// Error wraps a failed lookup with the source and URL that produced it.
type Error struct {
	Source string // "openlibrary", "googlebooks"
	Op     string // "search", "work", "edition"
	URL    string
	Err    error
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s %s [%s]: %v", e.Source, e.Op, e.URL, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// WrapError attaches source context to err. A nil err stays nil.
func WrapError(source, op, url string, err error) error {
	if err == nil {
		return nil
	}
	return &Error{Source: source, Op: op, URL: url, Err: err}
}
