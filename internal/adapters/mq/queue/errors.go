package queue

import "errors"

// Sentinel error kinds for this package. These allow errors.Is/As from callers.
var (
	ErrClosed = errors.New("queue closed")
)
