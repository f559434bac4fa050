package memory

import (
	"context"
	"sync"

	"diagnosis-quiz-service/internal/domain"
)

// PlayStore is an in-memory implementation of app.PlayRepository.
type PlayStore struct {
	mu    sync.RWMutex
	plays map[string]domain.Play
}

func NewPlayStore() *PlayStore {
	return &PlayStore{plays: make(map[string]domain.Play)}
}

func (s *PlayStore) Save(_ context.Context, play domain.Play) error {
	play.Choices = append([]int{}, play.Choices...)
	s.mu.Lock()
	defer s.mu.Unlock()
	s.plays[play.ID] = play
	return nil
}

func (s *PlayStore) Get(_ context.Context, playID string) (domain.Play, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	play, ok := s.plays[playID]
	if !ok {
		return domain.Play{}, domain.ErrPlayNotFound
	}
	play.Choices = append([]int{}, play.Choices...)
	return play, nil
}

func (s *PlayStore) Delete(_ context.Context, playID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.plays, playID)
	return nil
}
