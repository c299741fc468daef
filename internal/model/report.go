package model

import "time"

// ClusterCount is one named error cluster and the number of incorrect
// answers assigned to it.
type ClusterCount struct {
	Label string `json:"label"`
	Count int    `json:"count"`
}

// PriorityEntry is one subject in the ranked study plan.
type PriorityEntry struct {
	Subject        string  `json:"subject"`
	Priority       float64 `json:"priority"`
	ErrorRate      float64 `json:"error_rate"`
	AttemptedCount int     `json:"attempted_count"`
}

// GapEntry is one under-practiced term flagged by the knowledge-gap
// scorer.
type GapEntry struct {
	Term      string  `json:"term"`
	CorpusAvg float64 `json:"corpus_avg"`
	UserAvg   float64 `json:"user_avg"`
}

// TrendPoint is one session in the smoothed score trend.
type TrendPoint struct {
	Date  time.Time `json:"date"`
	Score float64   `json:"score"`
	EMA   float64   `json:"ema"`
}

// AnalysisReport is the read-only output of one analysis pass. It is
// regenerated wholesale on every run and never merged with a prior
// report. Any field may be nil when the snapshot holds too little data
// for that analysis.
type AnalysisReport struct {
	PredictedScore *float64        `json:"predicted_score,omitempty"`
	ErrorClusters  []ClusterCount  `json:"error_clusters,omitempty"`
	StudyPlan      []PriorityEntry `json:"study_plan,omitempty"`
	KnowledgeGaps  []GapEntry      `json:"knowledge_gaps,omitempty"`
	ScoreTrend     []TrendPoint    `json:"score_trend,omitempty"`
}
