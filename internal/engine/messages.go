package engine

import (
	"github.com/praxia/medprep-backend/internal/model"
)

// EventType enumerates the host-side triggers an ANALYZE call carries.
type EventType string

const (
	EventExamCompleted EventType = "exam_completed"
	EventMCQAdded      EventType = "mcq_added"
	EventAppLoad       EventType = "app_load"
)

// AnalyzeEvent is one ANALYZE trigger. Attempt is set for
// exam_completed, Question for mcq_added; app_load carries no payload.
type AnalyzeEvent struct {
	Event    EventType          `json:"event"`
	Attempt  *model.ExamAttempt `json:"attempt,omitempty"`
	Question *model.Question    `json:"question,omitempty"`
}

// MessageKind discriminates engine-to-host messages.
type MessageKind string

const (
	// MessageDataUpdated carries the patch set of one pass. Emitted
	// once per pass, always before the analysis report.
	MessageDataUpdated MessageKind = "data_updated"
	// MessageAnalysisComplete carries the combined read-only report.
	MessageAnalysisComplete MessageKind = "analysis_complete"
)

// DataUpdate is the incremental patch payload of one analysis pass.
// The host applies it to durable storage; the engine has already
// applied it to its own snapshot.
type DataUpdate struct {
	UpdatedQuestions   []model.QuestionPatch   `json:"updated_questions"`
	UpdatedUserMetrics *model.UserMetricsPatch `json:"updated_user_metrics,omitempty"`
}

// Message is one engine-to-host emission.
type Message struct {
	Kind   MessageKind           `json:"kind"`
	Data   *DataUpdate           `json:"data,omitempty"`
	Report *model.AnalysisReport `json:"report,omitempty"`
}
