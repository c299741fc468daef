package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/praxia/medprep-backend/internal/engine"
	"github.com/praxia/medprep-backend/internal/response"
	"github.com/praxia/medprep-backend/internal/service"
	"github.com/praxia/medprep-backend/internal/validator"
)

// QuestionHandler turns pasted text into structured questions via the
// external extraction service and notifies the engine about each one.
type QuestionHandler struct {
	extract *service.ExtractService
	eng     *engine.Engine
	sync    *service.SyncService
	log     zerolog.Logger
}

// NewQuestionHandler creates a new QuestionHandler.
func NewQuestionHandler(extract *service.ExtractService, eng *engine.Engine, sync *service.SyncService, log zerolog.Logger) *QuestionHandler {
	return &QuestionHandler{
		extract: extract,
		eng:     eng,
		sync:    sync,
		log:     log.With().Str("component", "question_handler").Logger(),
	}
}

// ExtractRequest is the payload for extracting questions from raw text.
type ExtractRequest struct {
	Text    string `json:"text" binding:"required,min=10"`
	BatchID string `json:"batch_id" binding:"required"`
}

// Extract godoc
// POST /api/v1/questions/extract
func (h *QuestionHandler) Extract(c *gin.Context) {
	var req ExtractRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, validator.TranslateErrors(err))
		return
	}

	batchID, err := uuid.Parse(req.BatchID)
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	questions, err := h.extract.Extract(c.Request.Context(), req.Text, batchID)
	switch {
	case errors.Is(err, service.ErrExtractorUnconfigured):
		response.Fail(c, http.StatusServiceUnavailable, response.ErrExtractorUnconfigured)
		return
	case errors.Is(err, service.ErrExtractionFailed):
		response.Fail(c, http.StatusBadGateway, response.ErrExtractionFailed)
		return
	case err != nil:
		h.log.Error().Err(err).Msg("extraction failed")
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	// Notify the engine per question. An uninitialized engine just
	// means nothing to analyze yet; extraction still succeeded.
	for i := range questions {
		ev := engine.AnalyzeEvent{
			Event:    engine.EventMCQAdded,
			Question: &questions[i],
		}
		if err := h.eng.Analyze(ev); err != nil {
			break
		}
		h.sync.ApplyEvent(c.Request.Context(), ev)
	}

	response.Success(c, http.StatusOK, gin.H{"questions": questions})
}
