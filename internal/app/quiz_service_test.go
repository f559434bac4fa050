package app_test

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"diagnosis-quiz-service/internal/app"
	"diagnosis-quiz-service/internal/domain"
	"diagnosis-quiz-service/internal/infra/memory"
	"diagnosis-quiz-service/internal/platform/logger"
	"diagnosis-quiz-service/internal/render"
)

func TestPublishAndGet(t *testing.T) {
	ctx := context.Background()
	service, _ := newQuizService(nil)

	pub, err := service.Publish(ctx, app.PublishRequest{
		Definition: sampleDefinition(),
		OwnerEmail: " owner@example.com ",
		Public:     true,
	})
	if err != nil {
		t.Fatalf("publish failed: %v", err)
	}
	if pub.ID == "" || pub.URL != "https://quiz.example.com/quizzes/"+pub.ID+"/play" {
		t.Fatalf("unexpected publication %+v", pub)
	}

	rec, err := service.Get(ctx, pub.ID)
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if rec.OwnerEmail != "owner@example.com" || !rec.Public {
		t.Fatalf("unexpected metadata %+v", rec)
	}
	if rec.Definition.Title != "Leadership style" || len(rec.Definition.Questions) != 2 {
		t.Fatalf("unexpected definition %+v", rec.Definition)
	}
}

func TestPublishRejectsInvalidDefinition(t *testing.T) {
	service, records := newQuizService(nil)
	def := sampleDefinition()
	def.Questions[0].Options[0].Weights = domain.Weights{"Z": 1}

	if _, err := service.Publish(context.Background(), app.PublishRequest{Definition: def}); !errors.Is(err, domain.ErrInvalidDefinition) {
		t.Fatalf("expected invalid definition, got %v", err)
	}
	if recs, _ := records.ListPublic(context.Background(), 0); len(recs) != 0 {
		t.Fatalf("invalid quiz must not be stored")
	}
}

func TestGalleryListsPublicOnly(t *testing.T) {
	ctx := context.Background()
	service, _ := newQuizService(nil)

	public, _ := service.Publish(ctx, app.PublishRequest{Definition: sampleDefinition(), Public: true})
	if _, err := service.Publish(ctx, app.PublishRequest{Definition: sampleDefinition(), Public: false}); err != nil {
		t.Fatalf("publish private: %v", err)
	}

	cards, err := service.Gallery(ctx, 0)
	if err != nil {
		t.Fatalf("gallery: %v", err)
	}
	if len(cards) != 1 || cards[0].ID != public.ID || cards[0].Title != "Leadership style" || cards[0].URL != public.URL {
		t.Fatalf("unexpected gallery %+v", cards)
	}
}

func TestGenerate(t *testing.T) {
	ctx := context.Background()
	provider := &stubProvider{def: sampleDefinition()}
	service, _ := newQuizService(provider)

	def, err := service.Generate(ctx, "  leadership  ")
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if provider.theme != "leadership" || def.Title != "Leadership style" {
		t.Fatalf("unexpected generate call theme=%q def=%+v", provider.theme, def)
	}

	if _, err := service.Generate(ctx, "   "); !errors.Is(err, domain.ErrEmptyTheme) {
		t.Fatalf("expected empty theme error, got %v", err)
	}

	provider.def.Results = nil
	if _, err := service.Generate(ctx, "broken"); !errors.Is(err, domain.ErrInvalidDefinition) {
		t.Fatalf("expected invalid generated quiz, got %v", err)
	}

	provider.err = errors.New("rate limited")
	if _, err := service.Generate(ctx, "x"); err == nil || !strings.Contains(err.Error(), "rate limited") {
		t.Fatalf("expected provider error, got %v", err)
	}
}

func TestGenerateWithoutProvider(t *testing.T) {
	service, _ := newQuizService(nil)
	if _, err := service.Generate(context.Background(), "theme"); !errors.Is(err, domain.ErrProviderUnavailable) {
		t.Fatalf("expected provider unavailable, got %v", err)
	}
}

func TestRenderHTML(t *testing.T) {
	ctx := context.Background()
	service, _ := newQuizService(nil)
	pub, _ := service.Publish(ctx, app.PublishRequest{Definition: sampleDefinition()})

	page, err := service.RenderHTML(ctx, pub.ID, render.Options{MainColor: "#123456"})
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if !strings.Contains(string(page), "Leadership style") || !strings.Contains(string(page), "#123456") {
		t.Fatalf("unexpected page")
	}
	if _, err := service.RenderHTML(ctx, "missing", render.Options{}); !errors.Is(err, domain.ErrQuizNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

type stubProvider struct {
	def   domain.QuizDefinition
	err   error
	theme string
}

func (p *stubProvider) Generate(_ context.Context, theme string) (domain.QuizDefinition, error) {
	p.theme = theme
	if p.err != nil {
		return domain.QuizDefinition{}, p.err
	}
	return p.def, nil
}

func newQuizService(provider app.ContentProvider) (*app.QuizService, *memory.RecordStore) {
	records := memory.NewRecordStore()
	quizzes := memory.NewQuizRepository(records, 5*time.Minute)
	return app.NewQuizService(records, quizzes, provider, "https://quiz.example.com/", logger.NewNop()), records
}

func sampleDefinition() domain.QuizDefinition {
	return domain.QuizDefinition{
		Title:     "Leadership style",
		IntroText: "Two quick questions.",
		Questions: []domain.Question{
			{Text: "A deadline slips. You...", Options: []domain.Option{
				{Label: "Take charge", Weights: domain.Weights{"A": 1}},
				{Label: "Support the team", Weights: domain.Weights{"B": 1}},
				{Label: "Analyse why", Weights: domain.Weights{"C": 1}},
				{Label: "Set a new plan", Weights: domain.Weights{"A": 1}},
			}},
			{Text: "Your ideal meeting is...", Options: []domain.Option{
				{Label: "Short", Weights: domain.Weights{"A": 1}},
				{Label: "Friendly", Weights: domain.Weights{"B": 1}},
				{Label: "Data driven", Weights: domain.Weights{"C": 1}},
				{Label: "Cancelled", Weights: domain.Weights{"B": 1}},
			}},
		},
		Results: domain.ResultCatalog{
			{Key: "A", Title: "Driver", Description: "You set direction."},
			{Key: "B", Title: "Coach", Description: "You grow people.",
				CallToAction: &domain.CallToAction{Label: "Coaching guide", URL: "https://example.com/coach"}},
			{Key: "C", Title: "Analyst", Description: "You find the root cause."},
		},
	}
}
