package llm

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"diagnosis-quiz-service/internal/domain"
)

func TestGenerateMapsToolCall(t *testing.T) {
	args := `{
		"title": "Which cafe drink are you?",
		"intro_text": "Five questions.",
		"questions": [
			{"question": "Weekend plans?", "answers": [
				{"text": "Hike", "type": "a"},
				{"text": "Read", "type": "B"},
				{"text": "Party", "type": "C"},
				{"text": "Sleep", "type": "A"}
			]},
			{"question": "", "answers": []}
		],
		"results": [
			{"type": "A", "title": "Espresso", "description": "Bold.", "link": "https://example.com/a", "button": "Details"},
			{"type": "B", "title": "Latte", "description": "Smooth.", "link": "https://example.com/b"},
			{"type": "C", "title": "Frappe", "description": "Fun."}
		]
	}`
	var gotModel string
	srv := fakeCompletions(t, args, &gotModel)
	defer srv.Close()

	p := NewContentProvider(Config{APIKey: "test", BaseURL: srv.URL + "/v1"})
	def, err := p.Generate(context.Background(), "cafe drinks")
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if gotModel != DefaultModel {
		t.Fatalf("expected default model, got %q", gotModel)
	}
	if def.Title != "Which cafe drink are you?" || len(def.Questions) != 1 {
		t.Fatalf("unexpected definition %+v", def)
	}
	if w := def.Questions[0].Options[0].Weights; w["A"] != 1 || len(w) != 1 {
		t.Fatalf("expected lowercase key normalized to A, got %v", w)
	}
	if keys := def.Results.Keys(); len(keys) != 3 || keys[0] != "A" || keys[2] != "C" {
		t.Fatalf("unexpected result order %v", keys)
	}
	if def.Results[0].CallToAction == nil || def.Results[1].CallToAction != nil {
		t.Fatalf("call to action requires both link and button")
	}
}

func TestGenerateRejectsUnusableQuiz(t *testing.T) {
	args := `{"title": "x", "intro_text": "", "questions": [
		{"question": "Q", "answers": [{"text": "a", "type": "D"}]}
	], "results": [{"type": "A", "title": "t", "description": "d"}]}`
	srv := fakeCompletions(t, args, nil)
	defer srv.Close()

	p := NewContentProvider(Config{APIKey: "test", BaseURL: srv.URL + "/v1", Model: "gpt-4o"})
	if _, err := p.Generate(context.Background(), "theme"); !errors.Is(err, domain.ErrInvalidDefinition) {
		t.Fatalf("expected invalid definition, got %v", err)
	}
}

func TestGenerateWithoutToolCall(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"id":      "chatcmpl-1",
			"object":  "chat.completion",
			"model":   DefaultModel,
			"choices": []map[string]any{{"index": 0, "message": map[string]any{"role": "assistant", "content": "no"}}},
		})
	}))
	defer srv.Close()

	p := NewContentProvider(Config{APIKey: "test", BaseURL: srv.URL + "/v1"})
	if _, err := p.Generate(context.Background(), "theme"); !errors.Is(err, ErrNoQuiz) {
		t.Fatalf("expected ErrNoQuiz, got %v", err)
	}
}

func fakeCompletions(t *testing.T, arguments string, model *string) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/chat/completions" {
			http.NotFound(w, r)
			return
		}
		var req struct {
			Model string `json:"model"`
		}
		_ = json.NewDecoder(r.Body).Decode(&req)
		if model != nil {
			*model = req.Model
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"id":     "chatcmpl-1",
			"object": "chat.completion",
			"model":  req.Model,
			"choices": []map[string]any{{
				"index":         0,
				"finish_reason": "tool_calls",
				"message": map[string]any{
					"role": "assistant",
					"tool_calls": []map[string]any{{
						"id":   "call_1",
						"type": "function",
						"function": map[string]any{
							"name":      toolName,
							"arguments": arguments,
						},
					}},
				},
			}},
		})
	}))
}
