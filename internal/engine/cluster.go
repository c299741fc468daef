package engine

import (
	"math/rand"

	"github.com/praxia/medprep-backend/internal/model"
)

const (
	clusterK       = 3
	clusterMaxIter = 20
)

// Cluster labels, assigned by centroid position on the time axis after
// convergence. Fast wrong answers read as slips, slow ones as
// conceptual confusion. This is a fixed heuristic carried over as-is;
// it is not validated against the actual cluster content.
var clusterLabels = [clusterK]string{"Silly Mistake", "Knowledge Gap", "Conceptual"}

// Difficulty weights summed into the static difficulty feature.
const (
	diffWeightHard      = 0.3
	diffWeightCaseBased = 0.2
	diffWeightNonMCQ    = 0.1
)

type errorPoint struct {
	time       float64 // time spent relative to the per-question budget
	difficulty float64 // static difficulty score from tags and type
}

// ClusterErrors groups every incorrect answer across the whole exam
// history into three buckets with Lloyd's k-means over a 2-D feature
// space (normalized time spent, static difficulty). Returns nil when
// fewer than three incorrect answers exist.
//
// Centroid seeding samples input points without replacement from rng,
// so labels on borderline points can differ between runs with different
// seeds; the bucket counts are what callers should rely on.
func ClusterErrors(snap *Snapshot, rng *rand.Rand) []model.ClusterCount {
	points := collectErrorPoints(snap)
	if len(points) < clusterK {
		return nil
	}

	centroids := seedCentroids(points, rng)
	assignments := make([]int, len(points))

	for iter := 0; iter < clusterMaxIter; iter++ {
		changed := iter == 0
		for i, p := range points {
			best := nearestCentroid(p, centroids)
			if assignments[i] != best {
				assignments[i] = best
				changed = true
			}
		}
		if !changed {
			break
		}

		// Recompute centroids; an emptied cluster is re-seeded from a
		// random input point so all three buckets survive.
		var sums [clusterK]errorPoint
		var counts [clusterK]int
		for i, p := range points {
			c := assignments[i]
			sums[c].time += p.time
			sums[c].difficulty += p.difficulty
			counts[c]++
		}
		for c := 0; c < clusterK; c++ {
			if counts[c] == 0 {
				centroids[c] = points[rng.Intn(len(points))]
				continue
			}
			centroids[c] = errorPoint{
				time:       sums[c].time / float64(counts[c]),
				difficulty: sums[c].difficulty / float64(counts[c]),
			}
		}
	}

	// Final assignment against the converged centroids.
	var counts [clusterK]int
	for _, p := range points {
		counts[nearestCentroid(p, centroids)]++
	}

	// Order clusters by time coordinate ascending and label by position.
	order := [clusterK]int{0, 1, 2}
	for i := 0; i < clusterK; i++ {
		for j := i + 1; j < clusterK; j++ {
			if centroids[order[j]].time < centroids[order[i]].time {
				order[i], order[j] = order[j], order[i]
			}
		}
	}

	out := make([]model.ClusterCount, clusterK)
	for pos, c := range order {
		out[pos] = model.ClusterCount{Label: clusterLabels[pos], Count: counts[c]}
	}
	return out
}

// collectErrorPoints maps every incorrect attempt item to its feature
// vector. The time feature is the attempt's total time over the
// per-question budget; the difficulty feature is a weighted sum of the
// question's static flags.
func collectErrorPoints(snap *Snapshot) []errorPoint {
	var points []errorPoint
	for _, attempt := range snap.ExamHistory {
		budget := attempt.PerQuestionBudgetSeconds()
		for _, item := range attempt.Items {
			if item.IsCorrect {
				continue
			}
			p := errorPoint{difficulty: difficultyScore(&item.Question)}
			if budget > 0 {
				p.time = attempt.TimeTakenSeconds / budget
			}
			points = append(points, p)
		}
	}
	return points
}

func difficultyScore(q *model.Question) float64 {
	score := 0.0
	if q.Tags.Hard {
		score += diffWeightHard
	}
	if q.Tags.CaseBased {
		score += diffWeightCaseBased
	}
	if q.QuestionType != model.QuestionTypeMCQ {
		score += diffWeightNonMCQ
	}
	return score
}

// seedCentroids samples k distinct input indices without replacement.
func seedCentroids(points []errorPoint, rng *rand.Rand) [clusterK]errorPoint {
	perm := rng.Perm(len(points))
	var centroids [clusterK]errorPoint
	for i := 0; i < clusterK; i++ {
		centroids[i] = points[perm[i]]
	}
	return centroids
}

func nearestCentroid(p errorPoint, centroids [clusterK]errorPoint) int {
	best, bestDist := 0, -1.0
	for c, ctr := range centroids {
		dt := p.time - ctr.time
		dd := p.difficulty - ctr.difficulty
		dist := dt*dt + dd*dd
		if bestDist < 0 || dist < bestDist {
			best, bestDist = c, dist
		}
	}
	return best
}
