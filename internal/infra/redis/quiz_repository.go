package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math/rand"
	"sync"
	"time"

	"diagnosis-quiz-service/internal/domain"
	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/singleflight"
)

// RecordLoader fetches quiz records from a backing store (e.g., Postgres).
type RecordLoader interface {
	Get(ctx context.Context, quizID string) (domain.QuizRecord, error)
}

// QuizRepository caches quiz records in Redis and falls back to a loader on cache miss.
// Records are stored as JSON: SET quiz:{quizID}:record {json} EX ttl
type QuizRepository struct {
	client *redis.Client
	loader RecordLoader
	ttl    time.Duration
	sf     singleflight.Group
	rnd    *rand.Rand
	rndMu  sync.Mutex
}

func NewQuizRepository(client *redis.Client, loader RecordLoader, ttl time.Duration) *QuizRepository {
	return &QuizRepository{
		client: client,
		loader: loader,
		ttl:    ttl,
		rnd:    rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

func (r *QuizRepository) GetQuiz(ctx context.Context, quizID string) (domain.QuizRecord, error) {
	key := r.recordKey(quizID)
	if rec, ok := r.cached(ctx, key); ok {
		return rec, nil
	}

	result, err, _ := r.sf.Do(quizID, func() (interface{}, error) {
		// Re-check cache in case another goroutine filled it.
		if rec, ok := r.cached(ctx, key); ok {
			return rec, nil
		}

		rec, err := r.loader.Get(ctx, quizID)
		if err != nil {
			return domain.QuizRecord{}, err
		}

		data, err := json.Marshal(rec)
		if err != nil {
			return domain.QuizRecord{}, fmt.Errorf("encode quiz %s: %w", quizID, err)
		}
		// a failed write only costs a reload next time
		_ = r.client.Set(ctx, key, data, r.ttlWithJitter()).Err()
		return rec, nil
	})
	if err != nil {
		return domain.QuizRecord{}, err
	}
	rec := result.(domain.QuizRecord)
	rec.Definition = rec.Definition.Clone()
	return rec, nil
}

func (r *QuizRepository) cached(ctx context.Context, key string) (domain.QuizRecord, bool) {
	data, err := r.client.Get(ctx, key).Bytes()
	if err != nil {
		return domain.QuizRecord{}, false
	}
	var rec domain.QuizRecord
	if err := json.Unmarshal(data, &rec); err != nil {
		// corrupt entry; drop it and reload
		_ = r.client.Del(ctx, key).Err()
		return domain.QuizRecord{}, false
	}
	return rec, true
}

func (r *QuizRepository) recordKey(quizID string) string {
	return "quiz:" + quizID + ":record"
}

func (r *QuizRepository) ttlWithJitter() time.Duration {
	if r.ttl <= 0 {
		return 0
	}
	jitterMax := int64(r.ttl) / 10
	r.rndMu.Lock()
	defer r.rndMu.Unlock()
	return r.ttl + time.Duration(r.rnd.Int63n(jitterMax+1))
}

// isMiss reports a missing key, as opposed to a connection failure.
func isMiss(err error) bool {
	return errors.Is(err, redis.Nil)
}
