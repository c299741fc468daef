package engine

import (
	"context"
	"errors"
	"math/rand"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"

	"github.com/praxia/medprep-backend/internal/model"
)

// DefaultThrottle is the minimum spacing between analysis passes
// triggered by ANALYZE calls.
const DefaultThrottle = 10 * time.Second

// ErrNotInitialized is returned when ANALYZE arrives before INIT. The
// call is dropped; no state changes and no report is emitted.
var ErrNotInitialized = errors.New("engine: analyze before init")

// Options configures an Engine. Zero values fall back to production
// defaults; Clock and Seed exist so tests can pin time and randomness.
type Options struct {
	Throttle        time.Duration
	SyllabusWeights map[string]float64
	Seed            int64
	Clock           func() time.Time
}

// Engine is the learning/analytics orchestrator. It owns the snapshot
// on a single dedicated goroutine; the host talks to it exclusively by
// message passing. One pass runs the two mutating components (ratings,
// scheduling), folds their patches into the snapshot, emits the patch
// message, then runs the four read-only analyses and emits the report.
type Engine struct {
	log      zerolog.Logger
	clock    func() time.Time
	rng      *rand.Rand
	throttle time.Duration
	weights  map[string]float64

	cmds chan any
	out  chan Message

	initialized atomic.Bool

	// Loop-owned; never touched outside Start's goroutine.
	snapshot *Snapshot
	timer    *time.Timer
	pending  bool
}

type cmdInit struct{ snap *Snapshot }
type cmdAnalyze struct{ ev AnalyzeEvent }

// New creates an Engine. Call Start to begin processing.
func New(opts Options, log zerolog.Logger) *Engine {
	if opts.Throttle <= 0 {
		opts.Throttle = DefaultThrottle
	}
	if opts.Clock == nil {
		opts.Clock = time.Now
	}
	seed := opts.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return &Engine{
		log:      log.With().Str("component", "analysis_engine").Logger(),
		clock:    opts.Clock,
		rng:      rand.New(rand.NewSource(seed)),
		throttle: opts.Throttle,
		weights:  opts.SyllabusWeights,
		cmds:     make(chan any, 16),
		out:      make(chan Message, 64),
	}
}

// Messages is the engine-to-host stream. Closed when Start returns.
func (e *Engine) Messages() <-chan Message {
	return e.out
}

// Init replaces the engine's snapshot with a deep copy of the given
// working set and schedules an immediate full analysis pass.
func (e *Engine) Init(snap Snapshot) {
	e.initialized.Store(true)
	e.cmds <- cmdInit{snap: snap.Clone()}
}

// Analyze requests an analysis pass. Passes are throttled: the first
// trigger arms a timer, further triggers within the window are
// absorbed, and the pass that eventually fires reads whatever snapshot
// is current at that moment. Event payloads update the snapshot before
// the pass runs regardless of throttling.
func (e *Engine) Analyze(ev AnalyzeEvent) error {
	if !e.initialized.Load() {
		e.log.Warn().Str("event", string(ev.Event)).Msg("ANALYZE dropped: engine not initialized")
		return ErrNotInitialized
	}
	e.cmds <- cmdAnalyze{ev: ev}
	return nil
}

// Start runs the engine loop until ctx is cancelled. Blocks; run it on
// its own goroutine. The engine holds nothing needing teardown beyond
// the snapshot reference, which dies with the loop.
func (e *Engine) Start(ctx context.Context) {
	e.log.Info().Dur("throttle", e.throttle).Msg("analysis engine started")
	defer close(e.out)

	for {
		select {
		case <-ctx.Done():
			e.stopTimer()
			e.log.Info().Msg("analysis engine stopped")
			return

		case cmd := <-e.cmds:
			switch c := cmd.(type) {
			case cmdInit:
				e.snapshot = c.snap
				e.stopTimer()
				e.log.Info().
					Int("batches", len(c.snap.Batches)).
					Int("attempts", len(c.snap.ExamHistory)).
					Msg("snapshot primed")
				e.runPass()

			case cmdAnalyze:
				// An analyze command can overtake the init command
				// when both race through the channel; the snapshot
				// arrives with the init right behind it.
				if e.snapshot == nil {
					select {
					case e.cmds <- cmd:
					default:
						e.log.Warn().Msg("analyze overtook init with full queue, dropped")
					}
					continue
				}
				e.absorbEvent(c.ev)
				if !e.pending {
					e.timer = time.NewTimer(e.throttle)
					e.pending = true
				}
			}

		case <-e.timerC():
			e.pending = false
			e.runPass()
		}
	}
}

// timerC returns the throttle timer's channel, or a nil channel (never
// ready) when no pass is scheduled.
func (e *Engine) timerC() <-chan time.Time {
	if e.timer == nil {
		return nil
	}
	return e.timer.C
}

func (e *Engine) stopTimer() {
	if e.timer != nil {
		e.timer.Stop()
		e.timer = nil
	}
	e.pending = false
}

// absorbEvent folds an ANALYZE payload into the snapshot ahead of the
// throttled pass.
func (e *Engine) absorbEvent(ev AnalyzeEvent) {
	switch ev.Event {
	case EventExamCompleted:
		if ev.Attempt != nil {
			e.snapshot.PrependAttempt(*ev.Attempt)
		}
	case EventMCQAdded:
		if ev.Question != nil && !e.snapshot.AddQuestion(*ev.Question) {
			e.log.Warn().
				Str("question_id", ev.Question.ID.String()).
				Str("batch_id", ev.Question.BatchID.String()).
				Msg("mcq_added for unknown batch, skipped")
		}
	}
}

// runPass executes one full analysis pass on the current snapshot.
func (e *Engine) runPass() {
	started := e.clock()

	ratingPatches, metricsPatch := UpdateRatings(e.snapshot)
	e.snapshot.Apply(ratingPatches, metricsPatch)

	srsPatches := ScheduleReviews(e.snapshot, started)
	e.snapshot.Apply(srsPatches, nil)

	e.emit(Message{
		Kind: MessageDataUpdated,
		Data: &DataUpdate{
			UpdatedQuestions:   mergeQuestionPatches(ratingPatches, srsPatches),
			UpdatedUserMetrics: metricsPatch,
		},
	})

	report := &model.AnalysisReport{
		PredictedScore: PredictScore(e.snapshot),
		ErrorClusters:  ClusterErrors(e.snapshot, e.rng),
		StudyPlan:      BuildStudyPlan(e.snapshot, e.weights),
		KnowledgeGaps:  FindKnowledgeGaps(e.snapshot),
		ScoreTrend:     TrackTrend(e.snapshot),
	}
	e.emit(Message{Kind: MessageAnalysisComplete, Report: report})

	e.log.Debug().
		Int("question_patches", len(ratingPatches)+len(srsPatches)).
		Dur("took", time.Since(started)).
		Msg("analysis pass complete")
}

// emit pushes a message to the host without ever blocking the loop. A
// full buffer means the host stopped consuming; dropping is preferable
// to stalling analysis.
func (e *Engine) emit(msg Message) {
	select {
	case e.out <- msg:
	default:
		e.log.Warn().Str("kind", string(msg.Kind)).Msg("message buffer full, dropped")
	}
}

// mergeQuestionPatches folds the rating and scheduling patch lists into
// one entry per question, first-seen order.
func mergeQuestionPatches(lists ...[]model.QuestionPatch) []model.QuestionPatch {
	var merged []model.QuestionPatch
	index := make(map[string]int)
	for _, list := range lists {
		for _, p := range list {
			key := p.QuestionID.String()
			if i, ok := index[key]; ok {
				merged[i].Merge(p)
				continue
			}
			index[key] = len(merged)
			merged = append(merged, p)
		}
	}
	if merged == nil {
		merged = []model.QuestionPatch{}
	}
	return merged
}
