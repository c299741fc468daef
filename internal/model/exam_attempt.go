package model

import (
	"time"

	"github.com/google/uuid"
)

// ExamConfig is the configuration an exam attempt was generated with.
type ExamConfig struct {
	Subjects        []string `json:"subjects,omitempty"`
	Platforms       []string `json:"platforms,omitempty"`
	DurationMinutes int      `json:"duration_minutes"`
	QuestionCount   int      `json:"question_count"`
}

// AttemptItem is one answered (or skipped) question within an exam
// attempt. Question is a snapshot of the question at attempt time; the
// live entity is looked up by ID when analysis needs current state.
type AttemptItem struct {
	QuestionID uuid.UUID `json:"question_id"`
	Question   Question  `json:"question"`
	UserAnswer string    `json:"user_answer"`
	IsCorrect  bool      `json:"is_correct"`
}

// ExamAttempt is one exam session's full record. Immutable once
// recorded: analysis reads it and patches the referenced questions,
// never the attempt itself.
type ExamAttempt struct {
	ID               uuid.UUID     `json:"id"`
	CreatedAt        time.Time     `json:"created_at"`
	Config           ExamConfig    `json:"config"`
	Items            []AttemptItem `json:"items"`
	Score            float64       `json:"score"`
	CorrectCount     int           `json:"correct_count"`
	TimeTakenSeconds float64       `json:"time_taken_seconds"`
}

// PerQuestionBudgetSeconds returns the time budget each question had in
// this attempt, derived from the exam duration and question count.
// Returns 0 when the config is incomplete.
func (a *ExamAttempt) PerQuestionBudgetSeconds() float64 {
	if a.Config.DurationMinutes <= 0 || a.Config.QuestionCount <= 0 {
		return 0
	}
	return float64(a.Config.DurationMinutes) * 60 / float64(a.Config.QuestionCount)
}
