package app_test

import (
	"context"
	"errors"
	"sort"
	"strconv"
	"sync"
	"testing"
	"time"

	"diagnosis-quiz-service/internal/app"
	"diagnosis-quiz-service/internal/domain"
	"diagnosis-quiz-service/internal/infra/memory"
)

func TestPlayThroughToResult(t *testing.T) {
	ctx := context.Background()
	plays, quizID := newPlayService(t)

	view, err := plays.Start(ctx, quizID)
	if err != nil {
		t.Fatalf("start failed: %v", err)
	}
	if view.PlayID == "" || view.Completed || view.Question == nil || view.Question.Number != 1 {
		t.Fatalf("unexpected start view %+v", view)
	}
	if view.Progress.Answered != 0 || view.Progress.Total != 2 {
		t.Fatalf("unexpected progress %+v", view.Progress)
	}
	indices := make([]int, 0, len(view.Question.Options))
	for _, o := range view.Question.Options {
		indices = append(indices, o.Index)
	}
	sort.Ints(indices)
	if len(indices) != 4 || indices[0] != 0 || indices[3] != 3 {
		t.Fatalf("expected every original index once, got %v", indices)
	}

	if _, err := plays.Result(ctx, view.PlayID); !errors.Is(err, domain.ErrSessionNotCompleted) {
		t.Fatalf("expected not completed, got %v", err)
	}

	view, err = plays.Answer(ctx, view.PlayID, 1) // B
	if err != nil {
		t.Fatalf("answer 1: %v", err)
	}
	if view.Question == nil || view.Question.Number != 2 || view.Progress.Answered != 1 {
		t.Fatalf("unexpected second view %+v", view)
	}

	view, err = plays.Answer(ctx, view.PlayID, 3) // B
	if err != nil {
		t.Fatalf("answer 2: %v", err)
	}
	if !view.Completed || view.Result == nil || view.Result.Key != "B" || view.Question != nil {
		t.Fatalf("expected completed with B, got %+v", view)
	}
	if view.Result.CallToAction == nil {
		t.Fatalf("expected full result with call to action")
	}

	res, err := plays.Result(ctx, view.PlayID)
	if err != nil || res.Key != "B" {
		t.Fatalf("result = %+v, err = %v", res, err)
	}
	if _, err := plays.Answer(ctx, view.PlayID, 0); !errors.Is(err, domain.ErrSessionCompleted) {
		t.Fatalf("expected completed error, got %v", err)
	}
}

func TestPlayRejectsOutOfRangeWithoutProgress(t *testing.T) {
	ctx := context.Background()
	plays, quizID := newPlayService(t)

	view, _ := plays.Start(ctx, quizID)
	if _, err := plays.Answer(ctx, view.PlayID, 99); !errors.Is(err, domain.ErrIndexOutOfRange) {
		t.Fatalf("expected out of range, got %v", err)
	}
	again, err := plays.View(ctx, view.PlayID)
	if err != nil {
		t.Fatalf("view: %v", err)
	}
	if again.Progress.Answered != 0 {
		t.Fatalf("rejected answer advanced the play: %+v", again.Progress)
	}
}

func TestPlayOptionOrderIsStableAcrossViews(t *testing.T) {
	ctx := context.Background()
	plays, quizID := newPlayService(t)

	started, err := plays.Start(ctx, quizID)
	if err != nil {
		t.Fatalf("start: %v", err)
	}
	for i := 0; i < 5; i++ {
		again, err := plays.View(ctx, started.PlayID)
		if err != nil {
			t.Fatalf("view: %v", err)
		}
		if optionOrder(again) != optionOrder(started) {
			t.Fatalf("option order changed between views: %s then %s", optionOrder(started), optionOrder(again))
		}
	}

	second, _ := plays.Answer(ctx, started.PlayID, 0)
	refreshed, _ := plays.View(ctx, started.PlayID)
	if optionOrder(refreshed) != optionOrder(second) {
		t.Fatalf("second question reshuffled on refresh: %s then %s", optionOrder(second), optionOrder(refreshed))
	}
}

func optionOrder(view app.PlayView) string {
	order := ""
	for _, o := range view.Question.Options {
		order += strconv.Itoa(o.Index)
	}
	return order
}

func TestPlayRestart(t *testing.T) {
	ctx := context.Background()
	plays, quizID := newPlayService(t)

	view, _ := plays.Start(ctx, quizID)
	_, _ = plays.Answer(ctx, view.PlayID, 0)
	done, _ := plays.Answer(ctx, view.PlayID, 0)
	if done.Result == nil || done.Result.Key != "A" {
		t.Fatalf("expected A, got %+v", done)
	}

	restarted, err := plays.Restart(ctx, view.PlayID)
	if err != nil {
		t.Fatalf("restart: %v", err)
	}
	if restarted.Completed || restarted.Progress.Answered != 0 || restarted.Question.Number != 1 {
		t.Fatalf("unexpected restarted view %+v", restarted)
	}
	_, _ = plays.Answer(ctx, view.PlayID, 2)
	final, _ := plays.Answer(ctx, view.PlayID, 2)
	if final.Result == nil || final.Result.Key != "C" {
		t.Fatalf("restart leaked previous answers, got %+v", final.Result)
	}
}

func TestPlayUnknownIDs(t *testing.T) {
	ctx := context.Background()
	plays, _ := newPlayService(t)

	if _, err := plays.Start(ctx, "missing"); !errors.Is(err, domain.ErrQuizNotFound) {
		t.Fatalf("expected quiz not found, got %v", err)
	}
	if _, err := plays.Answer(ctx, "nope", 0); !errors.Is(err, domain.ErrPlayNotFound) {
		t.Fatalf("expected play not found, got %v", err)
	}
}

func TestPlayAbandon(t *testing.T) {
	ctx := context.Background()
	plays, quizID := newPlayService(t)

	view, _ := plays.Start(ctx, quizID)
	if err := plays.Abandon(ctx, view.PlayID); err != nil {
		t.Fatalf("abandon: %v", err)
	}
	if _, err := plays.View(ctx, view.PlayID); !errors.Is(err, domain.ErrPlayNotFound) {
		t.Fatalf("expected play removed, got %v", err)
	}
}

func TestConcurrentAnswersOnOnePlayAreSerialized(t *testing.T) {
	ctx := context.Background()
	plays, quizID := newPlayService(t)
	view, _ := plays.Start(ctx, quizID)

	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		succeeded int
	)
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := plays.Answer(ctx, view.PlayID, 0); err == nil {
				mu.Lock()
				succeeded++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	if succeeded != 2 {
		t.Fatalf("expected exactly two answers accepted, got %d", succeeded)
	}
	final, _ := plays.View(ctx, view.PlayID)
	if !final.Completed || final.Progress.Answered != 2 {
		t.Fatalf("unexpected final state %+v", final)
	}
}

func newPlayService(t *testing.T) (*app.PlayService, string) {
	t.Helper()
	records := memory.NewRecordStore()
	id, err := records.Insert(context.Background(), domain.QuizRecord{Definition: sampleDefinition(), Public: true})
	if err != nil {
		t.Fatalf("seed quiz: %v", err)
	}
	quizzes := memory.NewQuizRepository(records, 5*time.Minute)
	return app.NewPlayService(memory.NewPlayStore(), quizzes), id
}
