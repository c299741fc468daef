package engine_test

import (
	"testing"

	"github.com/google/uuid"

	"github.com/praxia/medprep-backend/internal/engine"
	"github.com/praxia/medprep-backend/internal/model"
)

func textQuestion(batchID uuid.UUID, text string, attempted bool) model.Question {
	q := makeQuestion(batchID, "Medicine", 1000)
	q.QuestionText = text
	if attempted {
		q.LastAttemptCorrect = model.AttemptCorrect
	}
	return q
}

func TestFindKnowledgeGaps_UnsampledTermFlagged(t *testing.T) {
	batchID := uuid.New()
	// Two-term corpus: "glomerulonephritis" saturates every document
	// the user never touched, "hypertension" saturates the attempted
	// ones. Only the former is a gap.
	questions := []model.Question{
		textQuestion(batchID, "glomerulonephritis", false),
		textQuestion(batchID, "glomerulonephritis", false),
		textQuestion(batchID, "hypertension", true),
		textQuestion(batchID, "hypertension", true),
	}

	gaps := engine.FindKnowledgeGaps(makeSnapshot(1000, questions))
	if len(gaps) != 1 {
		t.Fatalf("expected 1 gap, got %d: %v", len(gaps), gaps)
	}
	if gaps[0].Term != "glomerulonephritis" {
		t.Errorf("gap term = %q, want glomerulonephritis", gaps[0].Term)
	}
	if gaps[0].UserAvg != 0 {
		t.Errorf("user avg = %v, want 0", gaps[0].UserAvg)
	}
	if gaps[0].CorpusAvg <= 0.01 {
		t.Errorf("corpus avg = %v, should clear the 0.01 threshold", gaps[0].CorpusAvg)
	}
}

func TestFindKnowledgeGaps_SaturatedTermWithNoPracticeAlwaysAppears(t *testing.T) {
	batchID := uuid.New()
	// The term appears in 100% of corpus documents and 0% of attempted
	// documents (there are none), so it must be in the returned list.
	questions := []model.Question{
		textQuestion(batchID, "pheochromocytoma diagnosis", false),
		textQuestion(batchID, "pheochromocytoma management", false),
	}

	gaps := engine.FindKnowledgeGaps(makeSnapshot(1000, questions))
	found := false
	for _, g := range gaps {
		if g.Term == "pheochromocytoma" {
			found = true
		}
	}
	if !found {
		t.Errorf("pheochromocytoma missing from gaps: %v", gaps)
	}
}

func TestFindKnowledgeGaps_WellPracticedTermNotFlagged(t *testing.T) {
	batchID := uuid.New()
	// Every document attempted: user weights equal corpus weights, so
	// nothing is under-sampled.
	questions := []model.Question{
		textQuestion(batchID, "asthma bronchodilator", true),
		textQuestion(batchID, "asthma corticosteroid", true),
	}

	if gaps := engine.FindKnowledgeGaps(makeSnapshot(1000, questions)); len(gaps) != 0 {
		t.Errorf("expected no gaps, got %v", gaps)
	}
}

func TestFindKnowledgeGaps_EmptyCorpus(t *testing.T) {
	snap := &engine.Snapshot{UserMetrics: model.UserMetrics{SkillRating: 1000}}
	if gaps := engine.FindKnowledgeGaps(snap); gaps != nil {
		t.Errorf("expected nil for empty corpus, got %v", gaps)
	}
}

func TestFindKnowledgeGaps_CapsAtFive(t *testing.T) {
	batchID := uuid.New()
	texts := []string{
		"myocarditis", "endocarditis", "pericarditis",
		"cardiomyopathy", "arrhythmia", "tamponade", "aneurysm",
	}
	var questions []model.Question
	for _, text := range texts {
		questions = append(questions, textQuestion(batchID, text, false))
	}
	// One attempted question keeps the user average defined but tiny.
	questions = append(questions, textQuestion(batchID, "valvulopathy", true))

	gaps := engine.FindKnowledgeGaps(makeSnapshot(1000, questions))
	if len(gaps) > 5 {
		t.Errorf("got %d gaps, cap is 5", len(gaps))
	}
}
