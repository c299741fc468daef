package engine

import (
	"math"

	"github.com/google/uuid"

	"github.com/praxia/medprep-backend/internal/model"
)

// KFactor is the Elo K used for both the user and question sides.
const KFactor = 32

// UpdateRatings replays the most recent exam attempt as a sequence of
// Elo exchanges between the user and each question, in attempt order.
// Each exchange uses the user rating as updated by the previous one,
// not the rating the attempt started with. Returns one rounded rating
// patch per attempted question plus the rounded final user rating.
//
// No-op when the history is empty. Items whose question is no longer in
// the snapshot are skipped silently; partial analysis beats none.
func UpdateRatings(snap *Snapshot) ([]model.QuestionPatch, *model.UserMetricsPatch) {
	attempt := snap.LatestAttempt()
	if attempt == nil {
		return nil, nil
	}

	idx := snap.QuestionIndex()
	userRating := snap.UserMetrics.Rating()

	// A question can appear more than once in one attempt; later
	// occurrences must see the rating left by earlier ones.
	working := make(map[uuid.UUID]float64)
	patches := make([]model.QuestionPatch, 0, len(attempt.Items))
	patched := make(map[uuid.UUID]int) // question ID -> index into patches

	for _, item := range attempt.Items {
		q, ok := idx[item.QuestionID]
		if !ok {
			continue
		}

		qRating, ok := working[item.QuestionID]
		if !ok {
			qRating = q.Rating()
		}

		expectedUser := 1 / (1 + math.Pow(10, (qRating-userRating)/400))
		expectedQuestion := 1 / (1 + math.Pow(10, (userRating-qRating)/400))

		actual := 0.0
		if item.IsCorrect {
			actual = 1.0
		}

		newUser := userRating + KFactor*(actual-expectedUser)
		newQuestion := qRating + KFactor*((1-actual)-expectedQuestion)

		userRating = newUser
		working[item.QuestionID] = newQuestion

		rounded := int(math.Round(newQuestion))
		if pi, seen := patched[item.QuestionID]; seen {
			patches[pi].SkillRating = &rounded
		} else {
			patched[item.QuestionID] = len(patches)
			patches = append(patches, model.QuestionPatch{
				QuestionID:  item.QuestionID,
				SkillRating: &rounded,
			})
		}
	}

	if len(patches) == 0 {
		return nil, nil
	}

	finalUser := int(math.Round(userRating))
	return patches, &model.UserMetricsPatch{SkillRating: &finalUser}
}
