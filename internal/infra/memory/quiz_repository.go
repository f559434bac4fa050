package memory

import (
	"context"
	"math/rand"
	"sync"
	"time"

	"diagnosis-quiz-service/internal/domain"
	"golang.org/x/sync/singleflight"
)

// RecordLoader fetches quiz records from a backing store (e.g., Postgres).
type RecordLoader interface {
	Get(ctx context.Context, quizID string) (domain.QuizRecord, error)
}

// QuizRepository caches quiz records with TTL to avoid repeated DB hits.
type QuizRepository struct {
	loader RecordLoader
	ttl    time.Duration
	clock  func() time.Time
	sf     singleflight.Group
	rnd    *rand.Rand
	rndMu  sync.Mutex

	mu    sync.RWMutex
	cache map[string]cachedQuiz
}

type cachedQuiz struct {
	rec       domain.QuizRecord
	expiresAt time.Time
}

func NewQuizRepository(loader RecordLoader, ttl time.Duration) *QuizRepository {
	return &QuizRepository{
		loader: loader,
		ttl:    ttl,
		clock:  time.Now,
		rnd:    rand.New(rand.NewSource(time.Now().UnixNano())),
		cache:  make(map[string]cachedQuiz),
	}
}

func (r *QuizRepository) GetQuiz(ctx context.Context, quizID string) (domain.QuizRecord, error) {
	if rec, ok := r.cached(quizID); ok {
		return rec, nil
	}

	result, err, _ := r.sf.Do(quizID, func() (interface{}, error) {
		// Re-check cache in case another goroutine filled it.
		if rec, ok := r.cached(quizID); ok {
			return rec, nil
		}

		rec, err := r.loader.Get(ctx, quizID)
		if err != nil {
			return domain.QuizRecord{}, err
		}

		r.mu.Lock()
		r.cache[quizID] = cachedQuiz{
			rec:       rec,
			expiresAt: r.clock().Add(r.ttlWithJitter()),
		}
		r.mu.Unlock()
		return rec, nil
	})
	if err != nil {
		return domain.QuizRecord{}, err
	}
	rec := result.(domain.QuizRecord)
	rec.Definition = rec.Definition.Clone()
	return rec, nil
}

func (r *QuizRepository) cached(quizID string) (domain.QuizRecord, bool) {
	now := r.clock()
	r.mu.RLock()
	defer r.mu.RUnlock()
	entry, ok := r.cache[quizID]
	if !ok || !entry.expiresAt.After(now) {
		return domain.QuizRecord{}, false
	}
	rec := entry.rec
	rec.Definition = rec.Definition.Clone()
	return rec, true
}

func (r *QuizRepository) ttlWithJitter() time.Duration {
	if r.ttl <= 0 {
		return 0
	}
	// add up to 10% jitter to spread expirations
	jitterMax := int64(r.ttl) / 10
	r.rndMu.Lock()
	defer r.rndMu.Unlock()
	return r.ttl + time.Duration(r.rnd.Int63n(jitterMax+1))
}
