package app

import (
	"context"
	"fmt"
	"strings"
	"time"

	"diagnosis-quiz-service/internal/domain"
	"diagnosis-quiz-service/internal/engine"
	"diagnosis-quiz-service/internal/platform/logger"
	"diagnosis-quiz-service/internal/render"
)

// RecordStore persists published quizzes (in-memory, Postgres, etc).
type RecordStore interface {
	Insert(ctx context.Context, rec domain.QuizRecord) (string, error)
	Get(ctx context.Context, id string) (domain.QuizRecord, error)
	ListPublic(ctx context.Context, limit int) ([]domain.QuizRecord, error)
}

// QuizRepository loads published quizzes (from cache/backing store).
type QuizRepository interface {
	GetQuiz(ctx context.Context, quizID string) (domain.QuizRecord, error)
}

// ContentProvider drafts a quiz definition from a free-text theme.
type ContentProvider interface {
	Generate(ctx context.Context, theme string) (domain.QuizDefinition, error)
}

// PublishRequest is a definition plus the ownership metadata stored with it.
type PublishRequest struct {
	Definition domain.QuizDefinition
	OwnerEmail string
	Public     bool
}

// Publication identifies a stored quiz and the URL it is played at.
type Publication struct {
	ID  string `json:"id"`
	URL string `json:"url"`
}

// GalleryCard is the listing view of a public quiz.
type GalleryCard struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	IntroText string    `json:"introText"`
	URL       string    `json:"url"`
	CreatedAt time.Time `json:"createdAt"`
}

const defaultGalleryLimit = 20

// QuizService covers creating, publishing and browsing quizzes.
type QuizService struct {
	records RecordStore
	quizzes QuizRepository
	content ContentProvider
	baseURL string
	log     *logger.Logger
	now     func() time.Time
}

// NewQuizService wires the publishing use cases. content may be nil when
// no provider is configured; Generate then fails with ErrProviderUnavailable.
func NewQuizService(records RecordStore, quizzes QuizRepository, content ContentProvider, baseURL string, log *logger.Logger) *QuizService {
	return &QuizService{
		records: records,
		quizzes: quizzes,
		content: content,
		baseURL: strings.TrimRight(baseURL, "/"),
		log:     log,
		now:     time.Now,
	}
}

// Generate asks the content provider for a playable definition.
func (s *QuizService) Generate(ctx context.Context, theme string) (domain.QuizDefinition, error) {
	theme = strings.TrimSpace(theme)
	if theme == "" {
		return domain.QuizDefinition{}, domain.ErrEmptyTheme
	}
	if s.content == nil {
		return domain.QuizDefinition{}, domain.ErrProviderUnavailable
	}
	def, err := s.content.Generate(ctx, theme)
	if err != nil {
		return domain.QuizDefinition{}, fmt.Errorf("generate quiz: %w", err)
	}
	if err := engine.Validate(def); err != nil {
		return domain.QuizDefinition{}, fmt.Errorf("generated quiz: %w", err)
	}
	s.log.Info("quiz generated", "title", def.Title, "questions", len(def.Questions))
	return def, nil
}

// Publish validates and stores a definition.
func (s *QuizService) Publish(ctx context.Context, req PublishRequest) (Publication, error) {
	if err := engine.Validate(req.Definition); err != nil {
		return Publication{}, err
	}
	id, err := s.records.Insert(ctx, domain.QuizRecord{
		OwnerEmail: strings.TrimSpace(req.OwnerEmail),
		Public:     req.Public,
		Definition: req.Definition.Clone(),
		CreatedAt:  s.now().UTC(),
	})
	if err != nil {
		return Publication{}, fmt.Errorf("publish quiz: %w", err)
	}
	s.log.Info("quiz published", "quiz_id", id, "owner_email", req.OwnerEmail, "public", req.Public)
	return Publication{ID: id, URL: s.PlayURL(id)}, nil
}

// Get returns a published quiz.
func (s *QuizService) Get(ctx context.Context, id string) (domain.QuizRecord, error) {
	return s.quizzes.GetQuiz(ctx, id)
}

// Gallery lists public quizzes, newest first.
func (s *QuizService) Gallery(ctx context.Context, limit int) ([]GalleryCard, error) {
	if limit <= 0 {
		limit = defaultGalleryLimit
	}
	recs, err := s.records.ListPublic(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("list quizzes: %w", err)
	}
	cards := make([]GalleryCard, 0, len(recs))
	for _, rec := range recs {
		cards = append(cards, GalleryCard{
			ID:        rec.ID,
			Title:     rec.Definition.Title,
			IntroText: rec.Definition.IntroText,
			URL:       s.PlayURL(rec.ID),
			CreatedAt: rec.CreatedAt,
		})
	}
	return cards, nil
}

// RenderHTML exports a published quiz as a standalone page.
func (s *QuizService) RenderHTML(ctx context.Context, id string, opts render.Options) ([]byte, error) {
	rec, err := s.quizzes.GetQuiz(ctx, id)
	if err != nil {
		return nil, err
	}
	return render.HTML(rec.Definition, opts)
}

// PlayURL is where a published quiz is played.
func (s *QuizService) PlayURL(id string) string {
	return s.baseURL + "/quizzes/" + id + "/play"
}
