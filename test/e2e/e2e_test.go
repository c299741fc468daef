//go:build e2e
// +build e2e

package e2e

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"

	"github.com/praxia/medprep-backend/internal/model"
	"github.com/praxia/medprep-backend/internal/service"
)

const defaultBaseURL = "http://localhost:8080/api/v1"

var (
	baseURL  string
	apiToken string
)

func TestMain(m *testing.M) {
	// Load .env if present (ignore error)
	_ = godotenv.Load("../../.env")

	baseURL = os.Getenv("BASE_URL")
	if baseURL == "" {
		baseURL = defaultBaseURL
	}

	// Mint a token directly from the configured secret so the test does
	// not depend on a pre-provisioned token.
	apiToken = os.Getenv("API_TOKEN")
	if apiToken == "" {
		secret := os.Getenv("API_SECRET")
		if secret == "" {
			fmt.Println("API_SECRET or API_TOKEN must be set")
			os.Exit(1)
		}
		auth := service.NewAuthService(secret, time.Hour, zerolog.Nop())
		tok, err := auth.IssueToken()
		if err != nil {
			fmt.Printf("token mint failed: %v\n", err)
			os.Exit(1)
		}
		apiToken = tok
	}

	os.Exit(m.Run())
}

func TestE2EFlow(t *testing.T) {
	batchID := uuid.New()
	anatomyQ := model.Question{
		ID:           uuid.New(),
		BatchID:      batchID,
		Subject:      "Anatomy",
		Chapter:      "Upper Limb",
		QuestionText: "Which nerve innervates the deltoid muscle?",
		QuestionType: model.QuestionTypeMCQ,
		Options:      []string{"Axillary", "Radial", "Median", "Ulnar"},
		AnswerKey:    "Axillary",
	}
	medicineQ := model.Question{
		ID:           uuid.New(),
		BatchID:      batchID,
		Subject:      "Medicine",
		Chapter:      "Nephrology",
		QuestionText: "Most common cause of nephrotic syndrome in adults?",
		QuestionType: model.QuestionTypeMCQ,
		Options:      []string{"FSGS", "Membranous", "Minimal change", "IgA"},
		AnswerKey:    "Membranous",
	}

	// Step 1: Init the engine with a minimal snapshot.
	t.Run("Init", func(t *testing.T) {
		reqBody := map[string]interface{}{
			"batches": []model.Batch{{
				ID:        batchID,
				Name:      "E2E Batch",
				Questions: []model.Question{anatomyQ, medicineQ},
			}},
			"exam_history": []model.ExamAttempt{},
			"user_metrics": map[string]int{"skill_rating": 1000},
		}
		resp, err := post("/engine/init", reqBody, apiToken)
		if err != nil {
			t.Fatalf("request failed: %v", err)
		}
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusAccepted {
			t.Fatalf("status %d: %s", resp.StatusCode, readBody(resp))
		}
		t.Logf("Engine initialized")
	})

	// Step 2: Submit a completed exam attempt.
	t.Run("AnalyzeExamCompleted", func(t *testing.T) {
		attempt := model.ExamAttempt{
			ID:        uuid.New(),
			CreatedAt: time.Now(),
			Config: model.ExamConfig{
				DurationMinutes: 2,
				QuestionCount:   2,
			},
			Score:            50,
			CorrectCount:     1,
			TimeTakenSeconds: 90,
			Items: []model.AttemptItem{
				{QuestionID: anatomyQ.ID, Question: anatomyQ, UserAnswer: "Axillary", IsCorrect: true},
				{QuestionID: medicineQ.ID, Question: medicineQ, UserAnswer: "FSGS", IsCorrect: false},
			},
		}
		reqBody := map[string]interface{}{
			"event":   "exam_completed",
			"attempt": attempt,
		}
		resp, err := post("/engine/analyze", reqBody, apiToken)
		if err != nil {
			t.Fatalf("request failed: %v", err)
		}
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusAccepted {
			t.Fatalf("status %d: %s", resp.StatusCode, readBody(resp))
		}
	})

	// Step 3: Poll for the analysis report. The engine throttles passes,
	// so allow a window slightly past the configured throttle.
	t.Run("GetReport", func(t *testing.T) {
		deadline := time.Now().Add(30 * time.Second)
		var report model.AnalysisReport
		for {
			resp, err := get("/engine/report", apiToken)
			if err != nil {
				t.Fatalf("request failed: %v", err)
			}
			if resp.StatusCode == http.StatusOK {
				var body struct {
					Data model.AnalysisReport `json:"data"`
				}
				decodeJSON(t, resp, &body)
				resp.Body.Close()
				report = body.Data
				break
			}
			resp.Body.Close()
			if time.Now().After(deadline) {
				t.Fatal("report never became available")
			}
			time.Sleep(2 * time.Second)
		}

		if report.PredictedScore == nil {
			t.Error("predicted score missing from report")
		}
		if len(report.StudyPlan) == 0 {
			t.Error("study plan empty despite an incorrect answer")
		}
	})

	// Step 4: Snapshot reflects applied rating and review patches.
	t.Run("GetSnapshot", func(t *testing.T) {
		resp, err := get("/engine/snapshot", apiToken)
		if err != nil {
			t.Fatalf("request failed: %v", err)
		}
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusOK {
			t.Fatalf("status %d: %s", resp.StatusCode, readBody(resp))
		}

		var body struct {
			Data struct {
				UserMetrics model.UserMetrics `json:"user_metrics"`
				Batches     []model.Batch     `json:"batches"`
			} `json:"data"`
		}
		decodeJSON(t, resp, &body)

		if body.Data.UserMetrics.SkillRating == 1000 {
			t.Error("user rating unchanged after analysis pass")
		}
		for _, b := range body.Data.Batches {
			for _, q := range b.Questions {
				if q.ID == medicineQ.ID && q.SRSLevel != 1 {
					t.Errorf("incorrect question SRS level = %d, want 1", q.SRSLevel)
				}
			}
		}
	})

	// Step 5: Unauthenticated requests are rejected.
	t.Run("RejectsMissingToken", func(t *testing.T) {
		resp, err := get("/engine/report", "")
		if err != nil {
			t.Fatalf("request failed: %v", err)
		}
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusUnauthorized {
			t.Fatalf("status %d, want 401", resp.StatusCode)
		}
	})
}

func post(path string, body interface{}, token string) (*http.Response, error) {
	var bodyReader io.Reader
	if body != nil {
		jsonBytes, _ := json.Marshal(body)
		bodyReader = bytes.NewBuffer(jsonBytes)
	}

	req, err := http.NewRequest("POST", baseURL+path, bodyReader)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	client := &http.Client{Timeout: 10 * time.Second}
	return client.Do(req)
}

func get(path string, token string) (*http.Response, error) {
	req, err := http.NewRequest("GET", baseURL+path, nil)
	if err != nil {
		return nil, err
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	client := &http.Client{Timeout: 10 * time.Second}
	return client.Do(req)
}

func readBody(resp *http.Response) string {
	b, _ := io.ReadAll(resp.Body)
	return string(b)
}

func decodeJSON(t *testing.T, resp *http.Response, v interface{}) {
	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		t.Fatalf("json decode: %v", err)
	}
}
