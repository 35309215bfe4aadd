package repository

import "errors"

// Sentinel error kinds for this package. These allow errors.Is/As from callers.
var (
	// ErrNotFound is returned when a job ID has no stored result.
	ErrNotFound = errors.New("result not found")

	// ErrEmptyJobID is returned when storing a result without a job ID.
	ErrEmptyJobID = errors.New("empty job id")
)
