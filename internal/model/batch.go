package model

import (
	"time"

	"github.com/google/uuid"
)

// Batch is a user-created collection of questions imported together
// (one paste, one CSV, one extraction run). Insertion order of the
// questions is irrelevant to analysis.
type Batch struct {
	ID        uuid.UUID  `json:"id"`
	Name      string     `json:"name"`
	Subject   string     `json:"subject"`
	Chapter   string     `json:"chapter"`
	Platform  string     `json:"platform"`
	CreatedAt time.Time  `json:"created_at"`
	Questions []Question `json:"questions"`
}
