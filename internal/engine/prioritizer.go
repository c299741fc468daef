package engine

import (
	"sort"

	"github.com/praxia/medprep-backend/internal/model"
)

const (
	// defaultSyllabusWeight applies to subjects absent from the
	// configured weight table.
	defaultSyllabusWeight = 0.05

	// priorityCutoff excludes only subjects with near-total practice
	// coverage and a zero error rate.
	priorityCutoff = -1.0

	maxStudyPlanEntries = 5
)

type subjectStats struct {
	errors    int
	attempted int
}

// BuildStudyPlan ranks subjects by a greedy weighted priority: error
// rate scaled by syllabus weight, discounted by how much of the user's
// practice already went to the subject. Returns the top five subjects
// above the cutoff, priority descending.
func BuildStudyPlan(snap *Snapshot, weights map[string]float64) []model.PriorityEntry {
	stats := make(map[string]*subjectStats)
	maxAttempted := 0

	for _, q := range snap.Questions() {
		st, ok := stats[q.Subject]
		if !ok {
			st = &subjectStats{}
			stats[q.Subject] = st
		}
		switch q.LastAttemptCorrect {
		case model.AttemptIncorrect:
			st.errors++
			st.attempted++
		case model.AttemptCorrect:
			st.attempted++
		}
		if st.attempted > maxAttempted {
			maxAttempted = st.attempted
		}
	}

	if maxAttempted < 1 {
		maxAttempted = 1
	}

	entries := make([]model.PriorityEntry, 0, len(stats))
	for subject, st := range stats {
		errorRate := 0.0
		if st.attempted > 0 {
			errorRate = float64(st.errors) / float64(st.attempted)
		}

		weight, ok := weights[subject]
		if !ok {
			weight = defaultSyllabusWeight
		}

		practiceNorm := float64(st.attempted) / float64(maxAttempted)
		priority := errorRate*weight - practiceNorm
		if priority <= priorityCutoff {
			continue
		}

		entries = append(entries, model.PriorityEntry{
			Subject:        subject,
			Priority:       priority,
			ErrorRate:      errorRate,
			AttemptedCount: st.attempted,
		})
	}

	sort.Slice(entries, func(i, j int) bool {
		if entries[i].Priority != entries[j].Priority {
			return entries[i].Priority > entries[j].Priority
		}
		return entries[i].Subject < entries[j].Subject
	})

	if len(entries) > maxStudyPlanEntries {
		entries = entries[:maxStudyPlanEntries]
	}
	return entries
}
