package memory

import (
	"context"
	"sort"
	"sync"

	"diagnosis-quiz-service/internal/domain"
	"github.com/google/uuid"
)

// RecordStore is an in-memory implementation of app.RecordStore (useful for tests/demos).
type RecordStore struct {
	mu      sync.RWMutex
	records map[string]domain.QuizRecord
	order   []string
}

func NewRecordStore() *RecordStore {
	return &RecordStore{records: make(map[string]domain.QuizRecord)}
}

// Insert stores rec under a new id unless rec.ID is already set.
func (s *RecordStore) Insert(_ context.Context, rec domain.QuizRecord) (string, error) {
	if rec.ID == "" {
		rec.ID = uuid.NewString()
	}
	rec.Definition = rec.Definition.Clone()

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.records[rec.ID]; !exists {
		s.order = append(s.order, rec.ID)
	}
	s.records[rec.ID] = rec
	return rec.ID, nil
}

func (s *RecordStore) Get(_ context.Context, id string) (domain.QuizRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rec, ok := s.records[id]
	if !ok {
		return domain.QuizRecord{}, domain.ErrQuizNotFound
	}
	rec.Definition = rec.Definition.Clone()
	return rec, nil
}

// ListPublic returns public records, newest first; equal timestamps keep the later insert first.
func (s *RecordStore) ListPublic(_ context.Context, limit int) ([]domain.QuizRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]domain.QuizRecord, 0, len(s.order))
	for i := len(s.order) - 1; i >= 0; i-- {
		rec := s.records[s.order[i]]
		if rec.Public {
			rec.Definition = rec.Definition.Clone()
			out = append(out, rec)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}
