package llm

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"diagnosis-quiz-service/internal/domain"
	"diagnosis-quiz-service/internal/engine"
	openai "github.com/sashabaranov/go-openai"
)

// DefaultModel is used when no model is configured.
const DefaultModel = "gpt-4o-mini"

const (
	toolName      = "submit_quiz"
	questionCount = 5
	optionCount   = 4
)

var resultKeys = []string{"A", "B", "C"}

// ErrNoQuiz is returned when the model answers without calling the quiz tool.
var ErrNoQuiz = errors.New("model returned no quiz")

// Config selects the model and endpoint.
type Config struct {
	APIKey  string
	Model   string
	BaseURL string
}

// ContentProvider drafts diagnosis quizzes with a chat completion tool call.
type ContentProvider struct {
	client *openai.Client
	model  string
}

func NewContentProvider(cfg Config) *ContentProvider {
	clientCfg := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientCfg.BaseURL = cfg.BaseURL
	}
	model := cfg.Model
	if model == "" {
		model = DefaultModel
	}
	return &ContentProvider{
		client: openai.NewClientWithConfig(clientCfg),
		model:  model,
	}
}

type toolQuiz struct {
	Title     string         `json:"title"`
	IntroText string         `json:"intro_text"`
	Questions []toolQuestion `json:"questions"`
	Results   []toolResult   `json:"results"`
}

type toolQuestion struct {
	Question string       `json:"question"`
	Answers  []toolAnswer `json:"answers"`
}

type toolAnswer struct {
	Text string `json:"text"`
	Type string `json:"type"`
}

type toolResult struct {
	Type        string `json:"type"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Link        string `json:"link"`
	Button      string `json:"button"`
}

// Generate asks the model for a quiz on theme and maps it into a definition.
func (p *ContentProvider) Generate(ctx context.Context, theme string) (domain.QuizDefinition, error) {
	resp, err := p.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: p.model,
		Messages: []openai.ChatCompletionMessage{
			{
				Role:    openai.ChatMessageRoleSystem,
				Content: "You write personality diagnosis quizzes. Every answer awards one point to exactly one result type.",
			},
			{
				Role:    openai.ChatMessageRoleUser,
				Content: buildPrompt(theme),
			},
		},
		Tools: []openai.Tool{{
			Type: openai.ToolTypeFunction,
			Function: &openai.FunctionDefinition{
				Name:        toolName,
				Description: "Submit the generated diagnosis quiz",
				Parameters:  toolSchema(),
			},
		}},
		ToolChoice: openai.ToolChoice{
			Type:     openai.ToolTypeFunction,
			Function: openai.ToolFunction{Name: toolName},
		},
	})
	if err != nil {
		return domain.QuizDefinition{}, fmt.Errorf("chat completion: %w", err)
	}
	if len(resp.Choices) == 0 || len(resp.Choices[0].Message.ToolCalls) == 0 {
		return domain.QuizDefinition{}, ErrNoQuiz
	}
	call := resp.Choices[0].Message.ToolCalls[0]
	if call.Function.Name != toolName {
		return domain.QuizDefinition{}, fmt.Errorf("unexpected tool call: %s", call.Function.Name)
	}

	var quiz toolQuiz
	if err := json.Unmarshal([]byte(call.Function.Arguments), &quiz); err != nil {
		return domain.QuizDefinition{}, fmt.Errorf("parse tool arguments: %w", err)
	}
	return toDefinition(quiz)
}

func toDefinition(quiz toolQuiz) (domain.QuizDefinition, error) {
	b := engine.NewBuilder().
		Title(strings.TrimSpace(quiz.Title)).
		Intro(strings.TrimSpace(quiz.IntroText))

	for _, r := range quiz.Results {
		res := domain.ResultDefinition{
			Key:         domain.ResultKey(strings.ToUpper(strings.TrimSpace(r.Type))),
			Title:       r.Title,
			Description: r.Description,
		}
		if r.Link != "" && r.Button != "" {
			res.CallToAction = &domain.CallToAction{Label: r.Button, URL: r.Link}
		}
		b.Result(res)
	}
	for _, q := range quiz.Questions {
		if strings.TrimSpace(q.Question) == "" {
			continue
		}
		options := make([]domain.Option, 0, len(q.Answers))
		for _, a := range q.Answers {
			options = append(options, engine.Pick(a.Text, domain.ResultKey(strings.ToUpper(strings.TrimSpace(a.Type)))))
		}
		b.Question(q.Question, options...)
	}
	return b.Build()
}

func buildPrompt(theme string) string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Create a diagnosis quiz for this theme: %s\n\n", theme))
	sb.WriteString("Requirements:\n")
	sb.WriteString(fmt.Sprintf("- Exactly %d questions with exactly %d answers each\n", questionCount, optionCount))
	sb.WriteString(fmt.Sprintf("- Exactly %d result types keyed %s\n", len(resultKeys), strings.Join(resultKeys, ", ")))
	sb.WriteString("- Each answer's type names the result it counts towards\n")
	sb.WriteString("- Spread answers so every result type is reachable\n")
	sb.WriteString("- A catchy title, a one-sentence intro, and a short description per result\n")
	sb.WriteString(fmt.Sprintf("- Use the %s tool to return the quiz\n", toolName))
	return sb.String()
}

func toolSchema() map[string]interface{} {
	str := map[string]interface{}{"type": "string"}
	keyEnum := map[string]interface{}{"type": "string", "enum": resultKeys}
	return map[string]interface{}{
		"type": "object",
		"properties": map[string]interface{}{
			"title":      str,
			"intro_text": str,
			"questions": map[string]interface{}{
				"type": "array",
				"items": map[string]interface{}{
					"type": "object",
					"properties": map[string]interface{}{
						"question": str,
						"answers": map[string]interface{}{
							"type": "array",
							"items": map[string]interface{}{
								"type": "object",
								"properties": map[string]interface{}{
									"text": str,
									"type": keyEnum,
								},
								"required": []string{"text", "type"},
							},
						},
					},
					"required": []string{"question", "answers"},
				},
			},
			"results": map[string]interface{}{
				"type": "array",
				"items": map[string]interface{}{
					"type": "object",
					"properties": map[string]interface{}{
						"type":        keyEnum,
						"title":       str,
						"description": str,
						"link":        str,
						"button":      str,
					},
					"required": []string{"type", "title", "description"},
				},
			},
		},
		"required": []string{"title", "intro_text", "questions", "results"},
	}
}
