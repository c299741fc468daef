package engine

import (
	"math"
	"sort"

	"github.com/praxia/medprep-backend/internal/model"
)

// emaAlpha weights the newest score; the rest of the smoothed value
// carries over from history.
const emaAlpha = 0.2

// TrackTrend smooths the historical session scores into an EMA series,
// oldest session first. The EMA seeds from the first score and each
// subsequent point is rounded to two decimals. Returns nil when fewer
// than two sessions exist; a single point is not a trend.
func TrackTrend(snap *Snapshot) []model.TrendPoint {
	if len(snap.ExamHistory) < 2 {
		return nil
	}

	sessions := make([]model.ExamAttempt, len(snap.ExamHistory))
	copy(sessions, snap.ExamHistory)
	sort.Slice(sessions, func(i, j int) bool {
		return sessions[i].CreatedAt.Before(sessions[j].CreatedAt)
	})

	points := make([]model.TrendPoint, len(sessions))
	ema := sessions[0].Score
	for i, s := range sessions {
		if i > 0 {
			ema = round2(emaAlpha*s.Score + (1-emaAlpha)*ema)
		}
		points[i] = model.TrendPoint{Date: s.CreatedAt, Score: s.Score, EMA: ema}
	}
	return points
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
