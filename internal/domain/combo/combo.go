// Package combo computes the maximum achievable combo of a judged-object
// sequence.
package combo

// Object is one top-level judged object. Nested counts its combo-contributing
// sub-units (e.g. the internal ticks of a holdable object); sub-units are not
// separately judged.
type Object struct {
	Nested int `json:"nested"`
}

// MaxCombo returns the maximum combo for the sequence: one unit per object,
// plus the nested sub-units of each object beyond the first, which is
// already counted as the object itself. Objects with no nested sub-units
// contribute no extra combo.
func MaxCombo(objects []Object) int {
	total := len(objects)
	for _, o := range objects {
		if o.Nested > 1 {
			total += o.Nested - 1
		}
	}
	return total
}
