package engine_test

import (
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/praxia/medprep-backend/internal/model"
)

func TestSnapshot_ApplyPatches(t *testing.T) {
	batchID := uuid.New()
	q := makeQuestion(batchID, "Surgery", 1000)
	snap := makeSnapshot(1000, []model.Question{q})

	rating := 1042
	level := 2
	outcome := model.AttemptCorrect
	snap.Apply([]model.QuestionPatch{{
		QuestionID:         q.ID,
		SkillRating:        &rating,
		SRSLevel:           &level,
		LastAttemptCorrect: &outcome,
	}}, &model.UserMetricsPatch{SkillRating: &rating})

	got := snap.Batches[0].Questions[0]
	if got.SkillRating != 1042 || got.SRSLevel != 2 || got.LastAttemptCorrect != model.AttemptCorrect {
		t.Errorf("patch not applied: %+v", got)
	}
	// Untouched fields keep their values.
	if got.SRSIntervalDays != 0 || got.SRSEasinessFactor != 0 {
		t.Errorf("unpatched fields changed: %+v", got)
	}
	if snap.UserMetrics.SkillRating != 1042 {
		t.Errorf("user metrics = %d, want 1042", snap.UserMetrics.SkillRating)
	}
}

func TestSnapshot_ApplyDropsUnknownQuestion(t *testing.T) {
	batchID := uuid.New()
	q := makeQuestion(batchID, "Surgery", 1000)
	snap := makeSnapshot(1000, []model.Question{q})

	rating := 1
	snap.Apply([]model.QuestionPatch{{QuestionID: uuid.New(), SkillRating: &rating}}, nil)
	if snap.Batches[0].Questions[0].SkillRating != 1000 {
		t.Error("patch for unknown question leaked onto another entity")
	}
}

func TestSnapshot_CloneIsIndependent(t *testing.T) {
	batchID := uuid.New()
	q := makeQuestion(batchID, "Surgery", 1000)
	attempt := makeAttempt([]model.Question{q}, []bool{true}, time.Now())
	snap := makeSnapshot(1000, []model.Question{q}, attempt)

	clone := snap.Clone()
	clone.Batches[0].Questions[0].SkillRating = 1
	clone.UserMetrics.SkillRating = 1
	clone.PrependAttempt(makeAttempt([]model.Question{q}, []bool{false}, time.Now()))

	if snap.Batches[0].Questions[0].SkillRating != 1000 {
		t.Error("clone shares question storage with original")
	}
	if snap.UserMetrics.SkillRating != 1000 {
		t.Error("clone shares user metrics with original")
	}
	if len(snap.ExamHistory) != 1 {
		t.Error("clone shares exam history with original")
	}
}

func TestSnapshot_AddQuestion(t *testing.T) {
	batchID := uuid.New()
	q := makeQuestion(batchID, "Surgery", 1000)
	snap := makeSnapshot(1000, []model.Question{q})

	added := makeQuestion(batchID, "Surgery", 1000)
	if !snap.AddQuestion(added) {
		t.Fatal("expected question to join its batch")
	}
	if len(snap.Batches[0].Questions) != 2 {
		t.Fatalf("batch has %d questions, want 2", len(snap.Batches[0].Questions))
	}

	orphan := makeQuestion(uuid.New(), "Surgery", 1000)
	if snap.AddQuestion(orphan) {
		t.Error("question with unknown batch should be rejected")
	}
}
