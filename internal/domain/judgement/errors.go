package judgement

import "errors"

// Sentinel error kinds for this package. These allow errors.Is/As from callers.
var (
	// ErrNoObjects is returned when accuracy is evaluated over a
	// distribution with zero judged objects.
	ErrNoObjects = errors.New("accuracy undefined for zero judged objects")
)
