package engine

import (
	"math"
	"sort"
	"strings"
	"unicode"

	"github.com/praxia/medprep-backend/internal/model"
)

const (
	// gapCorpusThreshold is the minimum corpus-wide TF-IDF weight for a
	// term to matter at all.
	gapCorpusThreshold = 0.01

	// gapUserRatio flags a term when the user's attempted documents
	// carry less than this fraction of its corpus weight.
	gapUserRatio = 0.1

	maxKnowledgeGaps = 5
)

// FindKnowledgeGaps compares corpus-wide TF-IDF term weights against
// the weights restricted to documents the user has attempted. A term
// that is meaningfully present corpus-wide but barely sampled by the
// user's practice is an under-practiced topic. Returns the top five
// gaps by weight difference, or nil when the corpus is empty.
//
// One document = one question's text plus its explanation, lower-cased
// and split on non-word characters.
func FindKnowledgeGaps(snap *Snapshot) []model.GapEntry {
	questions := snap.Questions()
	if len(questions) == 0 {
		return nil
	}

	type docInfo struct {
		tf        map[string]float64
		attempted bool
	}

	docs := make([]docInfo, 0, len(questions))
	docFreq := make(map[string]int)
	attemptedCount := 0

	for _, q := range questions {
		terms := tokenize(q.QuestionText + " " + q.Explanation)
		if len(terms) == 0 {
			docs = append(docs, docInfo{attempted: q.Attempted()})
			if q.Attempted() {
				attemptedCount++
			}
			continue
		}

		tf := make(map[string]float64)
		for _, t := range terms {
			tf[t]++
		}
		total := float64(len(terms))
		for t := range tf {
			tf[t] /= total
			docFreq[t]++
		}

		attempted := q.Attempted()
		if attempted {
			attemptedCount++
		}
		docs = append(docs, docInfo{tf: tf, attempted: attempted})
	}

	n := float64(len(docs))

	// Smoothed idf: a term present in every document still carries
	// weight, so saturation alone never hides a gap.
	idf := make(map[string]float64, len(docFreq))
	for t, df := range docFreq {
		idf[t] = math.Log(1 + n/float64(df))
	}

	corpusSum := make(map[string]float64, len(docFreq))
	userSum := make(map[string]float64, len(docFreq))
	for _, d := range docs {
		for t, f := range d.tf {
			w := f * idf[t]
			corpusSum[t] += w
			if d.attempted {
				userSum[t] += w
			}
		}
	}

	var gaps []model.GapEntry
	for t, sum := range corpusSum {
		corpusAvg := sum / n
		if corpusAvg <= gapCorpusThreshold {
			continue
		}
		userAvg := 0.0
		if attemptedCount > 0 {
			userAvg = userSum[t] / float64(attemptedCount)
		}
		if userAvg < corpusAvg*gapUserRatio {
			gaps = append(gaps, model.GapEntry{Term: t, CorpusAvg: corpusAvg, UserAvg: userAvg})
		}
	}

	sort.Slice(gaps, func(i, j int) bool {
		di := gaps[i].CorpusAvg - gaps[i].UserAvg
		dj := gaps[j].CorpusAvg - gaps[j].UserAvg
		if di != dj {
			return di > dj
		}
		return gaps[i].Term < gaps[j].Term
	})

	if len(gaps) > maxKnowledgeGaps {
		gaps = gaps[:maxKnowledgeGaps]
	}
	return gaps
}

// tokenize lower-cases the text and splits it on any run of non-word
// characters (word = letter, digit or underscore).
func tokenize(text string) []string {
	return strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r) && r != '_'
	})
}
