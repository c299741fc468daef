package model

import (
	"time"

	"github.com/google/uuid"
)

// QuestionType enumerates supported question formats.
type QuestionType string

const (
	QuestionTypeMCQ       QuestionType = "MCQ"
	QuestionTypeImageMCQ  QuestionType = "IMAGE_MCQ"
	QuestionTypeAssertion QuestionType = "ASSERTION_REASON"
)

// AttemptResult is the tri-state outcome of the learner's last attempt
// at a question.
type AttemptResult string

const (
	AttemptUnattempted AttemptResult = "unattempted"
	AttemptCorrect     AttemptResult = "correct"
	AttemptIncorrect   AttemptResult = "incorrect"
)

// Defaults applied to learner state when a question carries none.
const (
	DefaultSkillRating = 1000
	DefaultEasiness    = 2.5
)

// QuestionTags is the boolean classification set attached to a question.
type QuestionTags struct {
	Hard       bool `json:"hard"`
	Bookmarked bool `json:"bookmarked"`
	Revise     bool `json:"revise"`
	CaseBased  bool `json:"case_based"`
}

// Question is a single question-bank entry. The learner-state fields
// (SkillRating, SRS*, LastAttemptCorrect) are the only fields the
// analytics engine ever patches; everything else is immutable once the
// question is created.
type Question struct {
	ID           uuid.UUID    `json:"id"`
	BatchID      uuid.UUID    `json:"batch_id"`
	Subject      string       `json:"subject"`
	Chapter      string       `json:"chapter"`
	Platform     string       `json:"platform"`
	QuestionText string       `json:"question_text"`
	Explanation  string       `json:"explanation"`
	QuestionType QuestionType `json:"question_type"`
	Options      []string     `json:"options"`
	AnswerKey    string       `json:"answer_key"`
	Tags         QuestionTags `json:"tags"`

	LastAttemptCorrect AttemptResult `json:"last_attempt_correct"`
	SkillRating        int           `json:"skill_rating"`
	SRSLevel           int           `json:"srs_level"`
	SRSEasinessFactor  float64       `json:"srs_easiness_factor"`
	SRSIntervalDays    int           `json:"srs_interval_days"`
	NextReviewDate     *time.Time    `json:"next_review_date,omitempty"`
}

// Rating returns the question's Elo rating, falling back to the default
// for questions that have never been rated.
func (q *Question) Rating() float64 {
	if q.SkillRating == 0 {
		return DefaultSkillRating
	}
	return float64(q.SkillRating)
}

// Easiness returns the SM-2 easiness factor, falling back to the default
// for questions that have never been scheduled.
func (q *Question) Easiness() float64 {
	if q.SRSEasinessFactor == 0 {
		return DefaultEasiness
	}
	return q.SRSEasinessFactor
}

// Attempted reports whether the learner has ever answered this question.
func (q *Question) Attempted() bool {
	return q.LastAttemptCorrect == AttemptCorrect || q.LastAttemptCorrect == AttemptIncorrect
}
