package synth

import "errors"

// Sentinel error kinds for this package. These allow errors.Is/As from callers.
var (
	// ErrInvalidRange is returned when total, misses, target, or an
	// explicit override falls outside its precondition range.
	ErrInvalidRange = errors.New("synth input out of range")

	// ErrNegativeCount is returned when explicit overrides leave a
	// negative number of perfects for the play.
	ErrNegativeCount = errors.New("explicit overrides exceed judged objects")
)
