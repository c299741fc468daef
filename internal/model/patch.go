package model

import (
	"time"

	"github.com/google/uuid"
)

// QuestionPatch is a partial update to one question's learner state.
// Nil fields are left untouched when the patch is applied.
type QuestionPatch struct {
	QuestionID         uuid.UUID      `json:"question_id"`
	SkillRating        *int           `json:"skill_rating,omitempty"`
	SRSLevel           *int           `json:"srs_level,omitempty"`
	SRSEasinessFactor  *float64       `json:"srs_easiness_factor,omitempty"`
	SRSIntervalDays    *int           `json:"srs_interval_days,omitempty"`
	NextReviewDate     *time.Time     `json:"next_review_date,omitempty"`
	LastAttemptCorrect *AttemptResult `json:"last_attempt_correct,omitempty"`
}

// Merge folds other into p, field by field. Used when the rating and
// scheduling passes both touched the same question.
func (p *QuestionPatch) Merge(other QuestionPatch) {
	if other.SkillRating != nil {
		p.SkillRating = other.SkillRating
	}
	if other.SRSLevel != nil {
		p.SRSLevel = other.SRSLevel
	}
	if other.SRSEasinessFactor != nil {
		p.SRSEasinessFactor = other.SRSEasinessFactor
	}
	if other.SRSIntervalDays != nil {
		p.SRSIntervalDays = other.SRSIntervalDays
	}
	if other.NextReviewDate != nil {
		p.NextReviewDate = other.NextReviewDate
	}
	if other.LastAttemptCorrect != nil {
		p.LastAttemptCorrect = other.LastAttemptCorrect
	}
}

// ApplyTo writes the patch's non-nil fields onto the question.
func (p *QuestionPatch) ApplyTo(q *Question) {
	if p.SkillRating != nil {
		q.SkillRating = *p.SkillRating
	}
	if p.SRSLevel != nil {
		q.SRSLevel = *p.SRSLevel
	}
	if p.SRSEasinessFactor != nil {
		q.SRSEasinessFactor = *p.SRSEasinessFactor
	}
	if p.SRSIntervalDays != nil {
		q.SRSIntervalDays = *p.SRSIntervalDays
	}
	if p.NextReviewDate != nil {
		q.NextReviewDate = p.NextReviewDate
	}
	if p.LastAttemptCorrect != nil {
		q.LastAttemptCorrect = *p.LastAttemptCorrect
	}
}

// UserMetricsPatch is a partial update to the user metrics record.
type UserMetricsPatch struct {
	SkillRating *int `json:"skill_rating,omitempty"`
}

// ApplyTo writes the patch's non-nil fields onto the metrics record.
func (p *UserMetricsPatch) ApplyTo(m *UserMetrics) {
	if p.SkillRating != nil {
		m.SkillRating = *p.SkillRating
	}
}
