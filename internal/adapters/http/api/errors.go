package api

import (
	"errors"
	"fmt"
)

var (
	// ErrOutOfRange marks a request field outside its allowed bounds.
	ErrOutOfRange = errors.New("value out of range")
	// ErrTooManyObjects marks a play exceeding the configured object cap.
	ErrTooManyObjects = errors.New("too many objects")
	// ErrMalformedBody marks a request body that failed to decode.
	ErrMalformedBody = errors.New("malformed request body")
	// ErrBackpressure marks a rejected submission due to a full queue.
	ErrBackpressure = errors.New("queue full")
)

// kindError carries the request field that caused the failure.
type kindError struct {
	kind string
	err  error
}

func (e kindError) Error() string { return fmt.Sprintf("%s: %v", e.kind, e.err) }
func (e kindError) Unwrap() error { return e.err }

// NewKind tags err with the offending field name.
func NewKind(kind string, err error) error {
	return kindError{kind: kind, err: err}
}

// WrapKind tags err with a field name and contextual message.
func WrapKind(kind, msg string, err error) error {
	return kindError{kind: kind, err: fmt.Errorf("%s: %w", msg, err)}
}
