// Package judgement defines the judgement tiers of a play and the
// weighted-accuracy evaluation over a tier-count distribution.
package judgement

// Tier identifies one judgement tier of a judged object.
type Tier int

// Judgement tiers, best to worst.
const (
	Perfect Tier = iota
	Good
	Acceptable
	Miss
)

// Scoring weights per tier. Accuracy is normalized against the Perfect
// weight, so an all-Perfect play evaluates to exactly 1.
const (
	perfectWeight    = 6
	goodWeight       = 2
	acceptableWeight = 1
	missWeight       = 0
)

// Weight returns the scoring weight of the tier.
func (t Tier) Weight() int {
	switch t {
	case Perfect:
		return perfectWeight
	case Good:
		return goodWeight
	case Acceptable:
		return acceptableWeight
	default:
		return missWeight
	}
}

// String returns the tier name used in reports and JSON payloads.
func (t Tier) String() string {
	switch t {
	case Perfect:
		return "perfect"
	case Good:
		return "good"
	case Acceptable:
		return "acceptable"
	default:
		return "miss"
	}
}

// Distribution holds the per-tier hit counts of a single play.
// A well-formed distribution has non-negative counts whose sum equals
// the number of judged objects in the play.
type Distribution struct {
	Perfect    int `json:"perfect"`
	Good       int `json:"good"`
	Acceptable int `json:"acceptable"`
	Miss       int `json:"miss"`
}

// Total returns the number of judged objects covered by the distribution.
func (d Distribution) Total() int {
	return d.Perfect + d.Good + d.Acceptable + d.Miss
}

// weightedSum returns the accumulated scoring weight of the distribution.
func (d Distribution) weightedSum() int {
	return d.Perfect*perfectWeight + d.Good*goodWeight + d.Acceptable*acceptableWeight
}

// Accuracy evaluates the weighted accuracy of the distribution as a
// fraction in [0, 1]. Returns ErrNoObjects when the distribution covers
// zero judged objects; callers must never evaluate an empty play.
func Accuracy(d Distribution) (float64, error) {
	total := d.Total()
	if total == 0 {
		return 0, ErrNoObjects
	}
	return float64(d.weightedSum()) / float64(total*perfectWeight), nil
}
