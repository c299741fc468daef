package service_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/praxia/medprep-backend/internal/engine"
	"github.com/praxia/medprep-backend/internal/model"
	"github.com/praxia/medprep-backend/internal/service"
	"github.com/praxia/medprep-backend/internal/store"
)

type memStore struct {
	mu   sync.Mutex
	data map[string][]byte
}

func newMemStore() *memStore {
	return &memStore{data: make(map[string][]byte)}
}

func (m *memStore) Get(_ context.Context, key string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.data[key]
	if !ok {
		return nil, store.ErrKeyNotFound
	}
	return append([]byte(nil), v...), nil
}

func (m *memStore) Set(_ context.Context, key string, value []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = append([]byte(nil), value...)
	return nil
}

func (m *memStore) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.data, key)
	return nil
}

// unreachableRedis returns a client whose publishes fail fast; the sync
// service treats publish failures as best effort.
func unreachableRedis() *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:        "127.0.0.1:1",
		DialTimeout: 50 * time.Millisecond,
		MaxRetries:  -1,
	})
}

// ANALYZE events land on the HTTP request path while the sync loop is
// folding a pass's patches into the same persisted snapshot. Every
// concurrent event must survive into the stored history.
func TestSyncService_ConcurrentEventAndPatchPersistence(t *testing.T) {
	ctx := context.Background()
	svc := service.NewSyncService(newMemStore(), newMemStore(), unreachableRedis(), zerolog.Nop())

	batchID := uuid.New()
	q := model.Question{ID: uuid.New(), BatchID: batchID, Subject: "Medicine"}
	seed := &engine.Snapshot{
		Batches: []model.Batch{{ID: batchID, Questions: []model.Question{q}}},
	}
	if err := svc.SaveSnapshot(ctx, seed); err != nil {
		t.Fatalf("seed snapshot: %v", err)
	}

	const workers = 16
	messages := make(chan engine.Message)
	runDone := make(chan struct{})
	go func() {
		defer close(runDone)
		svc.Run(ctx, messages)
	}()

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			attempt := model.ExamAttempt{ID: uuid.New(), CreatedAt: time.Now()}
			svc.ApplyEvent(ctx, engine.AnalyzeEvent{
				Event:   engine.EventExamCompleted,
				Attempt: &attempt,
			})

			rating := 1000 + i
			messages <- engine.Message{
				Kind: engine.MessageDataUpdated,
				Data: &engine.DataUpdate{
					UpdatedQuestions: []model.QuestionPatch{{
						QuestionID:  q.ID,
						SkillRating: &rating,
					}},
				},
			}
		}(i)
	}
	wg.Wait()
	close(messages)
	<-runDone

	snap, err := svc.LoadSnapshot(ctx)
	if err != nil {
		t.Fatalf("load snapshot: %v", err)
	}
	if got := len(snap.ExamHistory); got != workers {
		t.Errorf("persisted attempts = %d, want %d (lost writes)", got, workers)
	}
	got := snap.Batches[0].Questions[0].SkillRating
	if got < 1000 || got >= 1000+workers {
		t.Errorf("question rating = %d, want a persisted patch value", got)
	}
}
