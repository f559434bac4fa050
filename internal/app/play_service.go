package app

import (
	"context"
	"fmt"
	"math/rand"
	"sync"
	"time"

	"diagnosis-quiz-service/internal/domain"
	"diagnosis-quiz-service/internal/engine"
	"github.com/google/uuid"
)

// PlayRepository abstracts how play progress is stored (in-memory, Redis, etc).
type PlayRepository interface {
	Save(ctx context.Context, play domain.Play) error
	Get(ctx context.Context, playID string) (domain.Play, error)
	Delete(ctx context.Context, playID string) error
}

// OptionView is an option as presented; Index is the value to answer with.
type OptionView struct {
	Index int    `json:"index"`
	Label string `json:"label"`
}

// QuestionView is the current question with its options in presentation order.
type QuestionView struct {
	Number  int          `json:"number"`
	Text    string       `json:"text"`
	Options []OptionView `json:"options"`
}

// PlayView is everything a client needs to render the state of a play.
type PlayView struct {
	PlayID    string                   `json:"playId"`
	QuizID    string                   `json:"quizId"`
	Title     string                   `json:"title"`
	IntroText string                   `json:"introText"`
	Completed bool                     `json:"completed"`
	Progress  engine.Progress          `json:"progress"`
	Question  *QuestionView            `json:"question,omitempty"`
	Result    *domain.ResultDefinition `json:"result,omitempty"`
}

// PlayService hosts engine sessions for remote players. Progress is kept
// as the list of chosen option indices and replayed on every call, so any
// PlayRepository can hold it.
type PlayService struct {
	plays   PlayRepository
	quizzes QuizRepository
	now     func() time.Time
	newID   func() string
	newSeed func() int64
	locks   keyedMutex
}

func NewPlayService(plays PlayRepository, quizzes QuizRepository) *PlayService {
	return &PlayService{
		plays:   plays,
		quizzes: quizzes,
		now:     time.Now,
		newID:   uuid.NewString,
		newSeed: rand.Int63,
		locks:   keyedMutex{locks: make(map[string]*keyedLock)},
	}
}

// Start begins a new play of a published quiz.
func (s *PlayService) Start(ctx context.Context, quizID string) (PlayView, error) {
	rec, err := s.quizzes.GetQuiz(ctx, quizID)
	if err != nil {
		return PlayView{}, err
	}
	session, err := engine.NewSession(rec.Definition)
	if err != nil {
		return PlayView{}, err
	}
	now := s.now()
	play := domain.Play{
		ID:        s.newID(),
		QuizID:    quizID,
		Choices:   []int{},
		Seed:      s.newSeed(),
		StartedAt: now,
		UpdatedAt: now,
	}
	if err := s.plays.Save(ctx, play); err != nil {
		return PlayView{}, fmt.Errorf("save play: %w", err)
	}
	return s.view(play, session)
}

// Answer records the option at optionIndex (original, not presentation, order).
func (s *PlayService) Answer(ctx context.Context, playID string, optionIndex int) (PlayView, error) {
	unlock := s.locks.lock(playID)
	defer unlock()

	play, session, err := s.load(ctx, playID)
	if err != nil {
		return PlayView{}, err
	}
	if _, err := session.Answer(optionIndex); err != nil {
		return PlayView{}, err
	}
	play.Choices = session.Choices()
	play.UpdatedAt = s.now()
	if err := s.plays.Save(ctx, play); err != nil {
		return PlayView{}, fmt.Errorf("save play: %w", err)
	}
	return s.view(play, session)
}

// Restart discards the progress of a play and shows the first question again.
func (s *PlayService) Restart(ctx context.Context, playID string) (PlayView, error) {
	unlock := s.locks.lock(playID)
	defer unlock()

	play, session, err := s.load(ctx, playID)
	if err != nil {
		return PlayView{}, err
	}
	session = session.Restart()
	play.Choices = []int{}
	play.Seed = s.newSeed()
	play.UpdatedAt = s.now()
	if err := s.plays.Save(ctx, play); err != nil {
		return PlayView{}, fmt.Errorf("save play: %w", err)
	}
	return s.view(play, session)
}

// Result resolves the outcome of a completed play.
func (s *PlayService) Result(ctx context.Context, playID string) (domain.ResultDefinition, error) {
	unlock := s.locks.lock(playID)
	defer unlock()

	_, session, err := s.load(ctx, playID)
	if err != nil {
		return domain.ResultDefinition{}, err
	}
	return session.Result()
}

// View returns the current state of a play without changing it.
func (s *PlayService) View(ctx context.Context, playID string) (PlayView, error) {
	unlock := s.locks.lock(playID)
	defer unlock()

	play, session, err := s.load(ctx, playID)
	if err != nil {
		return PlayView{}, err
	}
	return s.view(play, session)
}

// Abandon drops a play.
func (s *PlayService) Abandon(ctx context.Context, playID string) error {
	unlock := s.locks.lock(playID)
	defer unlock()
	return s.plays.Delete(ctx, playID)
}

func (s *PlayService) load(ctx context.Context, playID string) (domain.Play, *engine.Session, error) {
	play, err := s.plays.Get(ctx, playID)
	if err != nil {
		return domain.Play{}, nil, err
	}
	rec, err := s.quizzes.GetQuiz(ctx, play.QuizID)
	if err != nil {
		return domain.Play{}, nil, err
	}
	session, err := engine.Replay(rec.Definition, play.Choices)
	if err != nil {
		return domain.Play{}, nil, fmt.Errorf("replay play %s: %w", playID, err)
	}
	return play, session, nil
}

func (s *PlayService) view(play domain.Play, session *engine.Session) (PlayView, error) {
	def := session.Definition()
	v := PlayView{
		PlayID:    play.ID,
		QuizID:    play.QuizID,
		Title:     def.Title,
		IntroText: def.IntroText,
		Completed: session.Completed(),
		Progress:  session.Progress(),
	}
	if session.Completed() {
		res, err := session.Result()
		if err != nil {
			return PlayView{}, err
		}
		v.Result = &res
		return v, nil
	}
	q, err := session.CurrentQuestion()
	if err != nil {
		return PlayView{}, err
	}
	qv := &QuestionView{Number: session.CurrentIndex() + 1, Text: q.Text}
	rnd := rand.New(rand.NewSource(play.Seed + int64(session.CurrentIndex())))
	for _, idx := range engine.Permutation(len(q.Options), rnd) {
		qv.Options = append(qv.Options, OptionView{Index: idx, Label: q.Options[idx].Label})
	}
	v.Question = qv
	return v, nil
}

// keyedMutex serializes calls per play id; entries are dropped when unused.
type keyedMutex struct {
	mu    sync.Mutex
	locks map[string]*keyedLock
}

type keyedLock struct {
	mu   sync.Mutex
	refs int
}

func (k *keyedMutex) lock(key string) func() {
	k.mu.Lock()
	l, ok := k.locks[key]
	if !ok {
		l = &keyedLock{}
		k.locks[key] = l
	}
	l.refs++
	k.mu.Unlock()

	l.mu.Lock()
	return func() {
		l.mu.Unlock()
		k.mu.Lock()
		l.refs--
		if l.refs == 0 {
			delete(k.locks, key)
		}
		k.mu.Unlock()
	}
}
