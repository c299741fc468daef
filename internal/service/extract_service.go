package service

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/praxia/medprep-backend/internal/model"
)

// Extraction errors.
var (
	ErrExtractorUnconfigured = errors.New("extractor URL not configured")
	ErrExtractionFailed      = errors.New("extraction service returned an error")
)

// ExtractService calls the external AI text-extraction endpoint that
// turns pasted question text into structured questions. The endpoint
// is an external collaborator; this client only shapes requests and
// normalizes what comes back.
type ExtractService struct {
	url    string
	apiKey string
	client *http.Client
	log    zerolog.Logger
}

// NewExtractService creates a new ExtractService.
func NewExtractService(url, apiKey string, timeout time.Duration, log zerolog.Logger) *ExtractService {
	return &ExtractService{
		url:    url,
		apiKey: apiKey,
		client: &http.Client{Timeout: timeout},
		log:    log.With().Str("component", "extract_service").Logger(),
	}
}

type extractRequest struct {
	Text string `json:"text"`
}

// extractedQuestion is the wire shape the extractor returns per
// question.
type extractedQuestion struct {
	QuestionText string   `json:"question_text"`
	Explanation  string   `json:"explanation"`
	Options      []string `json:"options"`
	AnswerKey    string   `json:"answer_key"`
	Subject      string   `json:"subject"`
	Chapter      string   `json:"chapter"`
}

type extractResponse struct {
	Questions []extractedQuestion `json:"questions"`
}

// Extract sends raw pasted text to the extraction endpoint and maps the
// result into fresh Question entities owned by the given batch, with
// learner-state defaults.
func (s *ExtractService) Extract(ctx context.Context, text string, batchID uuid.UUID) ([]model.Question, error) {
	if s.url == "" {
		return nil, ErrExtractorUnconfigured
	}

	body, err := json.Marshal(extractRequest{Text: text})
	if err != nil {
		return nil, fmt.Errorf("encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if s.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+s.apiKey)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("call extractor: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		s.log.Warn().
			Int("status", resp.StatusCode).
			Str("body", string(snippet)).
			Msg("extractor rejected request")
		return nil, ErrExtractionFailed
	}

	var decoded extractResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}

	questions := make([]model.Question, 0, len(decoded.Questions))
	for _, eq := range decoded.Questions {
		questions = append(questions, model.Question{
			ID:                 uuid.New(),
			BatchID:            batchID,
			Subject:            eq.Subject,
			Chapter:            eq.Chapter,
			QuestionText:       eq.QuestionText,
			Explanation:        eq.Explanation,
			QuestionType:       model.QuestionTypeMCQ,
			Options:            eq.Options,
			AnswerKey:          eq.AnswerKey,
			LastAttemptCorrect: model.AttemptUnattempted,
			SkillRating:        model.DefaultSkillRating,
			SRSEasinessFactor:  model.DefaultEasiness,
		})
	}
	return questions, nil
}
