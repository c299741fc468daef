package engine

import "math"

// PredictScore estimates the user's next exam score (0-100) as the Elo
// expectation of the user against the corpus's mean question rating.
// Returns nil when the snapshot has no questions or no recorded
// attempts to ground the estimate.
func PredictScore(snap *Snapshot) *float64 {
	questions := snap.Questions()
	if len(questions) == 0 || len(snap.ExamHistory) == 0 {
		return nil
	}

	sum := 0.0
	for _, q := range questions {
		sum += q.Rating()
	}
	meanQuestion := sum / float64(len(questions))

	expected := 1 / (1 + math.Pow(10, (meanQuestion-snap.UserMetrics.Rating())/400))
	score := math.Round(expected * 100)
	if score < 0 {
		score = 0
	}
	if score > 100 {
		score = 100
	}
	return &score
}
