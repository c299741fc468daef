package engine_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/praxia/medprep-backend/internal/engine"
	"github.com/praxia/medprep-backend/internal/model"
)

func startEngine(t *testing.T, throttle time.Duration) (*engine.Engine, context.CancelFunc) {
	t.Helper()
	eng := engine.New(engine.Options{
		Throttle: throttle,
		Seed:     1,
	}, zerolog.Nop())
	ctx, cancel := context.WithCancel(context.Background())
	go eng.Start(ctx)
	return eng, cancel
}

func recvMessage(t *testing.T, eng *engine.Engine, timeout time.Duration) engine.Message {
	t.Helper()
	select {
	case msg := <-eng.Messages():
		return msg
	case <-time.After(timeout):
		t.Fatal("timed out waiting for engine message")
		return engine.Message{}
	}
}

func expectPass(t *testing.T, eng *engine.Engine, timeout time.Duration) (engine.DataUpdate, model.AnalysisReport) {
	t.Helper()
	first := recvMessage(t, eng, timeout)
	if first.Kind != engine.MessageDataUpdated {
		t.Fatalf("first message kind = %s, want %s", first.Kind, engine.MessageDataUpdated)
	}
	second := recvMessage(t, eng, timeout)
	if second.Kind != engine.MessageAnalysisComplete {
		t.Fatalf("second message kind = %s, want %s", second.Kind, engine.MessageAnalysisComplete)
	}
	return *first.Data, *second.Report
}

func TestEngine_AnalyzeBeforeInit(t *testing.T) {
	eng, cancel := startEngine(t, 50*time.Millisecond)
	defer cancel()

	err := eng.Analyze(engine.AnalyzeEvent{Event: engine.EventAppLoad})
	if err != engine.ErrNotInitialized {
		t.Fatalf("err = %v, want ErrNotInitialized", err)
	}

	select {
	case msg := <-eng.Messages():
		t.Fatalf("unexpected message %s before init", msg.Kind)
	case <-time.After(150 * time.Millisecond):
	}
}

func TestEngine_InitRunsImmediatePass(t *testing.T) {
	eng, cancel := startEngine(t, time.Hour)
	defer cancel()

	batchID := uuid.New()
	q := makeQuestion(batchID, "Anatomy", 1000)
	snap := makeSnapshot(1000, []model.Question{q})

	eng.Init(*snap)
	update, report := expectPass(t, eng, time.Second)

	// Empty history: nothing to patch, nothing to report beyond the
	// always-present sections.
	if len(update.UpdatedQuestions) != 0 {
		t.Errorf("expected no question patches, got %d", len(update.UpdatedQuestions))
	}
	if report.PredictedScore != nil {
		t.Errorf("predicted score should need attempt history, got %v", *report.PredictedScore)
	}
}

func TestEngine_ThrottleCollapsesBurst(t *testing.T) {
	eng, cancel := startEngine(t, 80*time.Millisecond)
	defer cancel()

	batchID := uuid.New()
	q := makeQuestion(batchID, "Anatomy", 1000)
	eng.Init(*makeSnapshot(1000, []model.Question{q}))
	expectPass(t, eng, time.Second) // init pass

	for i := 0; i < 5; i++ {
		if err := eng.Analyze(engine.AnalyzeEvent{Event: engine.EventAppLoad}); err != nil {
			t.Fatalf("analyze %d: %v", i, err)
		}
	}

	// Exactly one throttled pass for the whole burst.
	expectPass(t, eng, time.Second)
	select {
	case msg := <-eng.Messages():
		t.Fatalf("burst produced a second pass: %s", msg.Kind)
	case <-time.After(250 * time.Millisecond):
	}
}

func TestEngine_ThrottledPassSeesLatestSnapshot(t *testing.T) {
	eng, cancel := startEngine(t, 100*time.Millisecond)
	defer cancel()

	batchID := uuid.New()
	q := makeQuestion(batchID, "Anatomy", 1000)
	eng.Init(*makeSnapshot(1000, []model.Question{q}))
	expectPass(t, eng, time.Second)

	// First trigger arms the timer with nothing to grade...
	if err := eng.Analyze(engine.AnalyzeEvent{Event: engine.EventAppLoad}); err != nil {
		t.Fatal(err)
	}
	// ...and an exam lands inside the window. The pass must grade it.
	attempt := makeAttempt([]model.Question{q}, []bool{true}, time.Now())
	if err := eng.Analyze(engine.AnalyzeEvent{Event: engine.EventExamCompleted, Attempt: &attempt}); err != nil {
		t.Fatal(err)
	}

	update, _ := expectPass(t, eng, time.Second)
	if len(update.UpdatedQuestions) != 1 {
		t.Fatalf("expected the late attempt to be graded, got %d patches", len(update.UpdatedQuestions))
	}
	if got := *update.UpdatedQuestions[0].SkillRating; got != 984 {
		t.Errorf("question rating = %d, want 984", got)
	}
}

func TestEngine_EndToEndSingleExam(t *testing.T) {
	eng, cancel := startEngine(t, time.Hour)
	defer cancel()

	batchID := uuid.New()
	q1 := makeQuestion(batchID, "Anatomy", 1000)
	q2 := makeQuestion(batchID, "Anatomy", 1000)
	attempt := makeAttempt([]model.Question{q1, q2}, []bool{true, false}, time.Now())

	snap := makeSnapshot(1000, []model.Question{q1, q2}, attempt)
	eng.Init(*snap)

	update, report := expectPass(t, eng, time.Second)

	if len(update.UpdatedQuestions) != 2 {
		t.Fatalf("expected 2 question patches, got %d", len(update.UpdatedQuestions))
	}
	byID := map[uuid.UUID]model.QuestionPatch{}
	for _, p := range update.UpdatedQuestions {
		byID[p.QuestionID] = p
	}
	if got := *byID[q1.ID].SkillRating; got != 984 {
		t.Errorf("q1 rating = %d, want 984", got)
	}
	if got := *byID[q2.ID].SkillRating; got != 1017 {
		t.Errorf("q2 rating = %d, want 1017", got)
	}
	if update.UpdatedUserMetrics == nil || *update.UpdatedUserMetrics.SkillRating != 999 {
		t.Errorf("user metrics patch = %+v, want rating 999", update.UpdatedUserMetrics)
	}

	// Scheduling rode along in the same patches.
	if got := *byID[q1.ID].SRSLevel; got != 1 {
		t.Errorf("q1 srs level = %d, want 1", got)
	}
	if got := *byID[q2.ID].SRSEasinessFactor; !almostEqual(got, 1.3) {
		t.Errorf("q2 easiness = %v, want 1.3", got)
	}

	// One session and one wrong answer: no trend, no clusters.
	if report.ScoreTrend != nil {
		t.Errorf("score trend should need 2 sessions, got %v", report.ScoreTrend)
	}
	if report.ErrorClusters != nil {
		t.Errorf("clusters should need 3 incorrect answers, got %v", report.ErrorClusters)
	}
	if report.PredictedScore == nil {
		t.Error("expected a predicted score")
	}
	if len(report.StudyPlan) == 0 {
		t.Error("expected a study plan entry for Anatomy")
	}
}

func TestEngine_InitCopiesSnapshot(t *testing.T) {
	eng, cancel := startEngine(t, time.Hour)
	defer cancel()

	batchID := uuid.New()
	q := makeQuestion(batchID, "Anatomy", 1000)
	attempt := makeAttempt([]model.Question{q}, []bool{false}, time.Now())
	snap := makeSnapshot(1000, []model.Question{q}, attempt)

	eng.Init(*snap)
	expectPass(t, eng, time.Second)

	// The engine patched its own copy, not the caller's snapshot.
	if snap.Batches[0].Questions[0].SkillRating != 1000 {
		t.Errorf("caller snapshot mutated: rating %d", snap.Batches[0].Questions[0].SkillRating)
	}
}
