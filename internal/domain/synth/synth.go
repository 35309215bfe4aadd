// Package synth reconstructs a plausible judgement-count distribution for
// a play from its total object count, a fixed miss count, and a target
// accuracy.
//
// The search is a deterministic two-resolution greedy: perfects are traded
// for goods (coarse steps) until the accuracy would fall below the target,
// then goods are traded for acceptables (fine steps) to close the remaining
// gap. The result is the tightest distribution whose accuracy is still at
// or above the target, with the miss count left untouched.
package synth

import (
	"github.com/hitsim/hitsim/internal/domain/judgement"
)

// Option applies an explicit tier override to a Synthesize call.
type Option func(*overrides)

// overrides carries the optional explicit tier counts. A nil field means
// the caller did not supply that tier.
type overrides struct {
	good       *int
	acceptable *int
}

// WithGood fixes the good count instead of searching for it.
func WithGood(n int) Option {
	return func(o *overrides) {
		o.good = &n
	}
}

// WithAcceptable fixes the acceptable count instead of searching for it.
func WithAcceptable(n int) Option {
	return func(o *overrides) {
		o.acceptable = &n
	}
}

// state is the mutable-free working tuple of the search. Misses are fixed
// for the whole search and live outside the tuple.
type state struct {
	perfect    int
	good       int
	acceptable int
}

// shiftCoarse trades one perfect for one good (weight delta 4).
func (s state) shiftCoarse() state {
	return state{perfect: s.perfect - 1, good: s.good + 1, acceptable: s.acceptable}
}

// shiftFine trades one good for one acceptable (weight delta 1).
func (s state) shiftFine() state {
	return state{perfect: s.perfect, good: s.good - 1, acceptable: s.acceptable + 1}
}

// distribution materializes the tuple with the fixed miss count.
func (s state) distribution(misses int) judgement.Distribution {
	return judgement.Distribution{
		Perfect:    s.perfect,
		Good:       s.good,
		Acceptable: s.acceptable,
		Miss:       misses,
	}
}

// accuracy evaluates the tuple. Only called with at least one judged
// object, so the evaluation cannot fail.
func (s state) accuracy(misses int) float64 {
	acc, _ := judgement.Accuracy(s.distribution(misses))
	return acc
}

// Synthesize produces a judgement distribution for a play of total judged
// objects with exactly misses misses, aiming at target accuracy.
//
// When an explicit good or acceptable override is supplied the remaining
// objects become perfects and no search runs; the resulting accuracy may
// then differ from target. Otherwise the two-resolution greedy finds the
// distribution whose accuracy is the smallest reachable value that is
// still at or above target; when even the all-perfect distribution sits
// at or below target (the miss count alone caps the accuracy), that
// distribution is returned as-is.
func Synthesize(total, misses int, target float64, opts ...Option) (judgement.Distribution, error) {
	if total < 0 || misses < 0 || misses > total {
		return judgement.Distribution{}, ErrInvalidRange
	}
	if target < 0 || target > 1 {
		return judgement.Distribution{}, ErrInvalidRange
	}

	var o overrides
	for _, opt := range opts {
		opt(&o)
	}
	if o.good != nil || o.acceptable != nil {
		return synthesizeExplicit(total, misses, o)
	}

	// Nothing to search over; the zero distribution is the only one
	// covering an empty play.
	if total == 0 {
		return judgement.Distribution{}, nil
	}
	return synthesizeSearch(total, misses, target), nil
}

// synthesizeExplicit fills the perfect count from the supplied overrides.
// An absent override counts as zero.
func synthesizeExplicit(total, misses int, o overrides) (judgement.Distribution, error) {
	var good, acceptable int
	if o.good != nil {
		good = *o.good
	}
	if o.acceptable != nil {
		acceptable = *o.acceptable
	}
	if good < 0 || acceptable < 0 {
		return judgement.Distribution{}, ErrInvalidRange
	}
	perfect := total - misses - good - acceptable
	if perfect < 0 {
		return judgement.Distribution{}, ErrNegativeCount
	}
	return judgement.Distribution{
		Perfect:    perfect,
		Good:       good,
		Acceptable: acceptable,
		Miss:       misses,
	}, nil
}

// synthesizeSearch runs the two-resolution greedy. Requires total > 0.
func synthesizeSearch(total, misses int, target float64) judgement.Distribution {
	cand := state{perfect: total - misses}
	if cand.accuracy(misses) <= target {
		// The fixed miss count already caps the accuracy at or below
		// the target; no trade can bring it closer from above.
		return cand.distribution(misses)
	}

	// Coarse phase: trade perfects for goods while the accuracy stays at
	// or above target.
	for cand.perfect > 0 {
		next := cand.shiftCoarse()
		if next.accuracy(misses) < target {
			// Coarse overshoot. Probe the finer substitution: the good
			// that overshot traded down to an acceptable instead. The
			// weight ordering (6 > 2 > 1) puts this probe strictly below
			// the overshoot, so it cannot climb back over the target;
			// the range sweep in synth_test.go keeps that checked.
			if probe := next.shiftFine(); probe.accuracy(misses) >= target {
				cand = probe
				continue
			}
			break
		}
		cand = next
	}

	// Fine phase: trade goods for acceptables to close the remaining gap,
	// stopping before the accuracy would drop below target.
	for cand.good > 0 {
		next := cand.shiftFine()
		if next.accuracy(misses) < target {
			break
		}
		cand = next
	}
	return cand.distribution(misses)
}
