package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/praxia/medprep-backend/internal/engine"
	"github.com/praxia/medprep-backend/internal/model"
	"github.com/praxia/medprep-backend/internal/response"
	"github.com/praxia/medprep-backend/internal/service"
	"github.com/praxia/medprep-backend/internal/validator"
)

// EngineHandler exposes the analysis engine's INIT/ANALYZE boundary
// over HTTP and serves the persisted snapshot and latest report.
type EngineHandler struct {
	eng  *engine.Engine
	sync *service.SyncService
	log  zerolog.Logger
}

// NewEngineHandler creates a new EngineHandler.
func NewEngineHandler(eng *engine.Engine, sync *service.SyncService, log zerolog.Logger) *EngineHandler {
	return &EngineHandler{
		eng:  eng,
		sync: sync,
		log:  log.With().Str("component", "engine_handler").Logger(),
	}
}

// InitRequest is the INIT payload: the full working set.
type InitRequest struct {
	Batches     []model.Batch       `json:"batches"`
	ExamHistory []model.ExamAttempt `json:"exam_history"`
	UserMetrics model.UserMetrics   `json:"user_metrics"`
}

// AnalyzeRequest is one ANALYZE trigger.
type AnalyzeRequest struct {
	Event    string             `json:"event" binding:"required,oneof=exam_completed mcq_added app_load"`
	Attempt  *model.ExamAttempt `json:"attempt,omitempty"`
	Question *model.Question    `json:"question,omitempty"`
}

// Init godoc
// POST /api/v1/engine/init
// Primes the engine with a working set and runs an immediate analysis
// pass. An empty body re-primes from the persisted snapshot.
func (h *EngineHandler) Init(c *gin.Context) {
	var snap *engine.Snapshot

	if c.Request.ContentLength == 0 {
		loaded, err := h.sync.LoadSnapshot(c.Request.Context())
		if errors.Is(err, service.ErrNoSnapshot) {
			response.Fail(c, http.StatusNotFound, response.ErrSnapshotMissing)
			return
		}
		if err != nil {
			h.log.Error().Err(err).Msg("snapshot load failed")
			response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
			return
		}
		snap = loaded
	} else {
		var req InitRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, validator.TranslateErrors(err))
			return
		}
		snap = &engine.Snapshot{
			UserMetrics: req.UserMetrics,
			Batches:     req.Batches,
			ExamHistory: req.ExamHistory,
		}
		if err := h.sync.SaveSnapshot(c.Request.Context(), snap); err != nil {
			// Best effort: the engine still runs on the in-memory copy.
			h.log.Warn().Err(err).Msg("init snapshot not persisted")
		}
	}

	h.eng.Init(*snap)
	response.Success(c, http.StatusAccepted, gin.H{
		"status":   "initializing",
		"batches":  len(snap.Batches),
		"attempts": len(snap.ExamHistory),
	})
}

// Analyze godoc
// POST /api/v1/engine/analyze
// Requests an analysis pass. Bursts within the throttle window collapse
// into one pass.
func (h *EngineHandler) Analyze(c *gin.Context) {
	var req AnalyzeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, validator.TranslateErrors(err))
		return
	}

	ev := engine.AnalyzeEvent{
		Event:    engine.EventType(req.Event),
		Attempt:  req.Attempt,
		Question: req.Question,
	}

	if err := h.eng.Analyze(ev); err != nil {
		response.Fail(c, http.StatusConflict, response.ErrEngineNotInitialized)
		return
	}

	// Mirror the event into durable storage so the persisted working
	// set stays aligned with the engine's.
	h.sync.ApplyEvent(c.Request.Context(), ev)

	response.Success(c, http.StatusAccepted, gin.H{"status": "scheduled"})
}

// GetReport godoc
// GET /api/v1/engine/report
// Serves the most recent analysis report from the cache.
func (h *EngineHandler) GetReport(c *gin.Context) {
	report, err := h.sync.LatestReport(c.Request.Context())
	if errors.Is(err, service.ErrNoReport) {
		response.Fail(c, http.StatusNotFound, response.ErrReportNotReady)
		return
	}
	if err != nil {
		h.log.Error().Err(err).Msg("report load failed")
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}
	response.Success(c, http.StatusOK, report)
}

// GetSnapshot godoc
// GET /api/v1/engine/snapshot
// Serves the persisted working set, the payload a client re-INITs with
// after a restart.
func (h *EngineHandler) GetSnapshot(c *gin.Context) {
	snap, err := h.sync.LoadSnapshot(c.Request.Context())
	if errors.Is(err, service.ErrNoSnapshot) {
		response.Fail(c, http.StatusNotFound, response.ErrSnapshotMissing)
		return
	}
	if err != nil {
		h.log.Error().Err(err).Msg("snapshot load failed")
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}
	response.Success(c, http.StatusOK, snap)
}
