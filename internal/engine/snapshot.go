package engine

import (
	"github.com/google/uuid"

	"github.com/praxia/medprep-backend/internal/model"
)

// Snapshot is the engine's in-memory working set between triggers: all
// batches, the exam history (most recent attempt first) and the user
// metrics record. The orchestrator owns the snapshot exclusively; every
// analysis step receives it read-only and returns patches, which the
// orchestrator applies to produce the next version.
type Snapshot struct {
	UserMetrics model.UserMetrics   `json:"user_metrics"`
	Batches     []model.Batch       `json:"batches"`
	ExamHistory []model.ExamAttempt `json:"exam_history"`
}

// LatestAttempt returns the most recent exam attempt, or nil when the
// history is empty. The history invariant keeps index 0 most recent.
func (s *Snapshot) LatestAttempt() *model.ExamAttempt {
	if len(s.ExamHistory) == 0 {
		return nil
	}
	return &s.ExamHistory[0]
}

// QuestionIndex maps question IDs to their live entities across all
// batches. Rebuilt per pass; attempts reference question snapshots, so
// current state always comes through this index.
func (s *Snapshot) QuestionIndex() map[uuid.UUID]*model.Question {
	idx := make(map[uuid.UUID]*model.Question)
	for bi := range s.Batches {
		b := &s.Batches[bi]
		for qi := range b.Questions {
			q := &b.Questions[qi]
			idx[q.ID] = q
		}
	}
	return idx
}

// Questions returns every question across all batches, batch order.
func (s *Snapshot) Questions() []*model.Question {
	var qs []*model.Question
	for bi := range s.Batches {
		b := &s.Batches[bi]
		for qi := range b.Questions {
			qs = append(qs, &b.Questions[qi])
		}
	}
	return qs
}

// PrependAttempt inserts a new attempt at the front of the history,
// preserving the descending-recency invariant.
func (s *Snapshot) PrependAttempt(a model.ExamAttempt) {
	s.ExamHistory = append([]model.ExamAttempt{a}, s.ExamHistory...)
}

// AddQuestion appends a question to its owning batch. Unknown batches
// are skipped silently: a missing owner is an input-integrity problem,
// not a reason to block analysis.
func (s *Snapshot) AddQuestion(q model.Question) bool {
	for bi := range s.Batches {
		if s.Batches[bi].ID == q.BatchID {
			s.Batches[bi].Questions = append(s.Batches[bi].Questions, q)
			return true
		}
	}
	return false
}

// Apply folds a patch set into the snapshot, producing its next
// version. Patches for questions no longer present are dropped.
func (s *Snapshot) Apply(patches []model.QuestionPatch, metrics *model.UserMetricsPatch) {
	if len(patches) > 0 {
		idx := s.QuestionIndex()
		for i := range patches {
			if q, ok := idx[patches[i].QuestionID]; ok {
				patches[i].ApplyTo(q)
			}
		}
	}
	if metrics != nil {
		metrics.ApplyTo(&s.UserMetrics)
	}
}

// Clone deep-copies the snapshot. Data crosses the engine boundary by
// value; the engine never aliases caller-owned slices.
func (s *Snapshot) Clone() *Snapshot {
	out := &Snapshot{UserMetrics: s.UserMetrics}
	out.Batches = make([]model.Batch, len(s.Batches))
	for i, b := range s.Batches {
		cb := b
		cb.Questions = make([]model.Question, len(b.Questions))
		copy(cb.Questions, b.Questions)
		for qi := range cb.Questions {
			cb.Questions[qi].Options = append([]string(nil), cb.Questions[qi].Options...)
		}
		out.Batches[i] = cb
	}
	out.ExamHistory = make([]model.ExamAttempt, len(s.ExamHistory))
	for i, a := range s.ExamHistory {
		ca := a
		ca.Items = make([]model.AttemptItem, len(a.Items))
		copy(ca.Items, a.Items)
		for ii := range ca.Items {
			ca.Items[ii].Question.Options = append([]string(nil), ca.Items[ii].Question.Options...)
		}
		ca.Config.Subjects = append([]string(nil), a.Config.Subjects...)
		ca.Config.Platforms = append([]string(nil), a.Config.Platforms...)
		out.ExamHistory[i] = ca
	}
	return out
}
