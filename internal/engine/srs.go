package engine

import (
	"math"
	"time"

	"github.com/google/uuid"

	"github.com/praxia/medprep-backend/internal/model"
)

// minEasiness is the SM-2 floor below which the easiness factor never
// drops, whatever the answer sequence.
const minEasiness = 1.3

// SRSState is the per-question spaced-repetition state the scheduler
// transitions on every graded answer.
type SRSState struct {
	Level        int
	Easiness     float64
	IntervalDays int
}

// NextSRSState is the SM-2 variant transition, a pure function of the
// previous state and the answer outcome. A correct answer climbs the
// level ladder (1 day, 6 days, then interval*easiness) and eases the
// card; an incorrect answer hard-resets to level 1 with the floor
// easiness, discarding whatever easiness had been earned.
func NextSRSState(prev SRSState, correct bool) SRSState {
	next := prev
	if correct {
		next.Level = prev.Level + 1
		switch next.Level {
		case 1:
			next.IntervalDays = 1
		case 2:
			next.IntervalDays = 6
		default:
			next.IntervalDays = int(math.Round(float64(prev.IntervalDays) * prev.Easiness))
		}
		next.Easiness = prev.Easiness + 0.1
	} else {
		next.Level = 1
		next.IntervalDays = 1
		next.Easiness = minEasiness
	}
	if next.Easiness < minEasiness {
		next.Easiness = minEasiness
	}
	return next
}

// ScheduleReviews walks the most recent exam attempt and produces one
// scheduling patch per answered question: new SRS state, the next
// review date relative to now, and the recorded outcome. Items whose
// question has left the snapshot are skipped.
func ScheduleReviews(snap *Snapshot, now time.Time) []model.QuestionPatch {
	attempt := snap.LatestAttempt()
	if attempt == nil {
		return nil
	}

	idx := snap.QuestionIndex()
	patches := make([]model.QuestionPatch, 0, len(attempt.Items))

	// Repeated questions within one attempt chain their transitions.
	working := make(map[uuid.UUID]SRSState)

	for _, item := range attempt.Items {
		q, ok := idx[item.QuestionID]
		if !ok {
			continue
		}

		prev, seen := working[item.QuestionID]
		if !seen {
			prev = SRSState{
				Level:        q.SRSLevel,
				Easiness:     q.Easiness(),
				IntervalDays: q.SRSIntervalDays,
			}
		}
		next := NextSRSState(prev, item.IsCorrect)
		working[item.QuestionID] = next

		due := now.AddDate(0, 0, next.IntervalDays)
		outcome := model.AttemptIncorrect
		if item.IsCorrect {
			outcome = model.AttemptCorrect
		}

		level, ease, interval := next.Level, next.Easiness, next.IntervalDays
		patches = append(patches, model.QuestionPatch{
			QuestionID:         item.QuestionID,
			SRSLevel:           &level,
			SRSEasinessFactor:  &ease,
			SRSIntervalDays:    &interval,
			NextReviewDate:     &due,
			LastAttemptCorrect: &outcome,
		})
	}

	return patches
}
