package model

// UserMetrics is the single per-user mutable record tracked by the
// engine. Currently only the Elo skill rating.
type UserMetrics struct {
	SkillRating int `json:"skill_rating"`
}

// Rating returns the user's Elo rating, defaulting when unset.
func (m *UserMetrics) Rating() float64 {
	if m == nil || m.SkillRating == 0 {
		return DefaultSkillRating
	}
	return float64(m.SkillRating)
}
