// Package render exports a quiz definition as a single self-contained HTML
// page that plays the quiz in the browser without a server.
package render

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"html/template"
	"regexp"

	"diagnosis-quiz-service/internal/domain"
	"diagnosis-quiz-service/internal/engine"
)

// DefaultMainColor is used when Options.MainColor is empty.
const DefaultMainColor = "#2563eb"

const defaultOfferPrompt = "Register to receive the detailed explanation for free."

//go:embed templates/quiz.html.tmpl
var pageTemplate string

var (
	page     = template.Must(template.New("quiz").Parse(pageTemplate))
	hexColor = regexp.MustCompile(`^#(?:[0-9a-fA-F]{3}|[0-9a-fA-F]{6})$`)
)

// ErrInvalidColor is returned for a main color that is not a hex triplet.
var ErrInvalidColor = errors.New("invalid main color")

// Options tune the exported page.
type Options struct {
	MainColor string
}

type pageData struct {
	Title     string
	Intro     string
	Color     template.CSS
	Questions []questionData
	Results   []resultData
}

type questionData struct {
	Number  int
	Text    string
	Options []optionData
}

type optionData struct {
	Label   string
	Weights string
}

type resultData struct {
	Key         string
	Title       string
	Description string
	CTA         *domain.CallToAction
	Offer       *domain.SecondaryOffer
	OfferPrompt string
}

// HTML renders def. The page scores answers the same way the engine does:
// summed weights, highest total wins, ties go to the result listed first.
func HTML(def domain.QuizDefinition, opts Options) ([]byte, error) {
	if err := engine.Validate(def); err != nil {
		return nil, err
	}
	color := opts.MainColor
	if color == "" {
		color = DefaultMainColor
	}
	if !hexColor.MatchString(color) {
		return nil, fmt.Errorf("render: %w %q", ErrInvalidColor, color)
	}

	data := pageData{
		Title: def.Title,
		Intro: def.IntroText,
		Color: template.CSS(color),
	}
	for qi, q := range def.Questions {
		qd := questionData{Number: qi + 1, Text: q.Text}
		for _, o := range q.Options {
			weights, err := json.Marshal(o.Weights)
			if err != nil {
				return nil, fmt.Errorf("render: %w", err)
			}
			if o.Weights == nil {
				weights = []byte("{}")
			}
			qd.Options = append(qd.Options, optionData{Label: o.Label, Weights: string(weights)})
		}
		data.Questions = append(data.Questions, qd)
	}
	for _, r := range def.Results {
		rd := resultData{
			Key:         string(r.Key),
			Title:       r.Title,
			Description: r.Description,
			Offer:       r.SecondaryOffer,
		}
		if r.CallToAction != nil && r.CallToAction.URL != "" && r.CallToAction.Label != "" {
			rd.CTA = r.CallToAction
		}
		if r.SecondaryOffer != nil {
			rd.OfferPrompt = r.SecondaryOffer.PromptText
			if rd.OfferPrompt == "" {
				rd.OfferPrompt = defaultOfferPrompt
			}
		}
		data.Results = append(data.Results, rd)
	}

	var buf bytes.Buffer
	if err := page.Execute(&buf, data); err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	return buf.Bytes(), nil
}
