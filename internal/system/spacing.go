package system

import "math"

// SpacingLaw is a Titius–Bode style geometric progression,
// distance(slot) = D0·K^slot.
type SpacingLaw struct {
	D0 float64 `json:"d0"`
	K  float64 `json:"k"`
}

// Distance returns the candidate orbital distance for slot.
func (l SpacingLaw) Distance(slot int) float64 {
	return l.D0 * math.Pow(l.K, float64(slot))
}
