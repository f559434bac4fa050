package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"diagnosis-quiz-service/internal/domain"
	"github.com/redis/go-redis/v9"
)

// PlayStore keeps play progress in Redis so any instance can serve the next answer.
// Plays are stored as JSON: SET quiz:play:{playID} {json} EX ttl
// The TTL is refreshed on every save; idle plays expire.
type PlayStore struct {
	client *redis.Client
	ttl    time.Duration
}

func NewPlayStore(client *redis.Client, ttl time.Duration) *PlayStore {
	return &PlayStore{client: client, ttl: ttl}
}

func (s *PlayStore) Save(ctx context.Context, play domain.Play) error {
	data, err := json.Marshal(play)
	if err != nil {
		return fmt.Errorf("encode play %s: %w", play.ID, err)
	}
	return s.client.Set(ctx, s.key(play.ID), data, s.ttl).Err()
}

func (s *PlayStore) Get(ctx context.Context, playID string) (domain.Play, error) {
	data, err := s.client.Get(ctx, s.key(playID)).Bytes()
	if isMiss(err) {
		return domain.Play{}, domain.ErrPlayNotFound
	}
	if err != nil {
		return domain.Play{}, fmt.Errorf("load play %s: %w", playID, err)
	}
	var play domain.Play
	if err := json.Unmarshal(data, &play); err != nil {
		return domain.Play{}, fmt.Errorf("decode play %s: %w", playID, err)
	}
	return play, nil
}

func (s *PlayStore) Delete(ctx context.Context, playID string) error {
	return s.client.Del(ctx, s.key(playID)).Err()
}

func (s *PlayStore) key(playID string) string {
	return "quiz:play:" + playID
}
