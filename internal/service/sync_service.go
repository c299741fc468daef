package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/praxia/medprep-backend/internal/config"
	"github.com/praxia/medprep-backend/internal/engine"
	"github.com/praxia/medprep-backend/internal/model"
	"github.com/praxia/medprep-backend/internal/store"
)

// ErrNoSnapshot is returned when no snapshot has ever been persisted.
var ErrNoSnapshot = errors.New("no persisted snapshot")

// ErrNoReport is returned when no analysis report has been cached yet.
var ErrNoReport = errors.New("no analysis report available")

// SyncService is the host side of the engine boundary. It persists the
// working set in the durable store, folds emitted patches into it,
// caches the latest report in the fast lane and fans engine messages
// out over Redis pub/sub for WebSocket delivery.
//
// Persistence is best effort: a failed write is logged and dropped,
// never retried and never reported back to the engine.
//
// mu serializes every read-modify-write of the persisted snapshot. The
// HTTP request path (ApplyEvent) and the sync loop (persistPatches)
// run on different goroutines and would otherwise lose writes.
type SyncService struct {
	durable store.Store
	cache   store.Store
	rdb     *redis.Client
	log     zerolog.Logger
	mu      sync.Mutex
}

// NewSyncService creates a new SyncService.
func NewSyncService(durable store.Store, cache store.Store, rdb *redis.Client, log zerolog.Logger) *SyncService {
	return &SyncService{
		durable: durable,
		cache:   cache,
		rdb:     rdb,
		log:     log.With().Str("component", "sync_service").Logger(),
	}
}

// Run consumes the engine's message stream until it closes. Call on its
// own goroutine.
func (s *SyncService) Run(ctx context.Context, messages <-chan engine.Message) {
	s.log.Info().Msg("sync service started")
	for msg := range messages {
		switch msg.Kind {
		case engine.MessageDataUpdated:
			if msg.Data != nil {
				s.persistPatches(ctx, msg.Data)
			}
		case engine.MessageAnalysisComplete:
			if msg.Report != nil {
				s.cacheReport(ctx, msg.Report)
			}
		}
		s.publish(ctx, msg)
	}
	s.log.Info().Msg("engine stream closed, sync service stopped")
}

// LoadSnapshot reads the persisted working set from the durable store.
func (s *SyncService) LoadSnapshot(ctx context.Context) (*engine.Snapshot, error) {
	raw, err := s.durable.Get(ctx, config.StoreKey.Snapshot)
	if errors.Is(err, store.ErrKeyNotFound) {
		return nil, ErrNoSnapshot
	}
	if err != nil {
		return nil, fmt.Errorf("load snapshot: %w", err)
	}

	var snap engine.Snapshot
	if err := json.Unmarshal(raw, &snap); err != nil {
		return nil, fmt.Errorf("decode snapshot: %w", err)
	}
	return &snap, nil
}

// SaveSnapshot writes the working set to the durable store.
func (s *SyncService) SaveSnapshot(ctx context.Context, snap *engine.Snapshot) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.writeSnapshot(ctx, snap)
}

// writeSnapshot encodes and stores the snapshot. Callers hold mu.
func (s *SyncService) writeSnapshot(ctx context.Context, snap *engine.Snapshot) error {
	raw, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("encode snapshot: %w", err)
	}
	if err := s.durable.Set(ctx, config.StoreKey.Snapshot, raw); err != nil {
		return fmt.Errorf("save snapshot: %w", err)
	}
	return nil
}

// ApplyEvent folds an ANALYZE event payload into the persisted working
// set, mirroring what the engine does to its in-memory snapshot. Kept
// best effort for the same reason patch persistence is.
func (s *SyncService) ApplyEvent(ctx context.Context, ev engine.AnalyzeEvent) {
	if ev.Attempt == nil && ev.Question == nil {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	snap, err := s.LoadSnapshot(ctx)
	if err != nil {
		s.log.Warn().Err(err).Msg("event not persisted: snapshot unavailable")
		return
	}

	switch ev.Event {
	case engine.EventExamCompleted:
		snap.PrependAttempt(*ev.Attempt)
	case engine.EventMCQAdded:
		if !snap.AddQuestion(*ev.Question) {
			s.log.Warn().
				Str("batch_id", ev.Question.BatchID.String()).
				Msg("mcq_added for unknown batch, not persisted")
			return
		}
	default:
		return
	}

	if err := s.writeSnapshot(ctx, snap); err != nil {
		s.log.Warn().Err(err).Msg("event not persisted")
	}
}

// LatestReport reads the most recent analysis report from the cache.
func (s *SyncService) LatestReport(ctx context.Context) (*model.AnalysisReport, error) {
	raw, err := s.cache.Get(ctx, config.StoreKey.LatestReport)
	if errors.Is(err, store.ErrKeyNotFound) {
		return nil, ErrNoReport
	}
	if err != nil {
		return nil, fmt.Errorf("load report: %w", err)
	}

	var report model.AnalysisReport
	if err := json.Unmarshal(raw, &report); err != nil {
		return nil, fmt.Errorf("decode report: %w", err)
	}
	return &report, nil
}

func (s *SyncService) persistPatches(ctx context.Context, data *engine.DataUpdate) {
	s.mu.Lock()
	defer s.mu.Unlock()

	snap, err := s.LoadSnapshot(ctx)
	if err != nil {
		s.log.Warn().Err(err).Msg("patches dropped: snapshot unavailable")
		return
	}

	snap.Apply(data.UpdatedQuestions, data.UpdatedUserMetrics)

	if err := s.writeSnapshot(ctx, snap); err != nil {
		s.log.Warn().Err(err).Msg("patches dropped: snapshot write failed")
		return
	}
	s.log.Debug().Int("questions", len(data.UpdatedQuestions)).Msg("patches persisted")
}

func (s *SyncService) cacheReport(ctx context.Context, report *model.AnalysisReport) {
	raw, err := json.Marshal(report)
	if err != nil {
		s.log.Error().Err(err).Msg("report not cached: encode failed")
		return
	}
	if err := s.cache.Set(ctx, config.StoreKey.LatestReport, raw); err != nil {
		s.log.Warn().Err(err).Msg("report not cached")
	}
}

func (s *SyncService) publish(ctx context.Context, msg engine.Message) {
	raw, err := json.Marshal(msg)
	if err != nil {
		s.log.Error().Err(err).Msg("message not published: encode failed")
		return
	}
	if err := s.rdb.Publish(ctx, config.StoreKey.EventsChannel, raw).Err(); err != nil {
		s.log.Warn().Err(err).Msg("message not published")
	}
}
