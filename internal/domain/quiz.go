package domain

import "time"

// ResultKey names one outcome bucket, e.g. "A".
type ResultKey string

// Weights maps result keys to the points an option contributes.
type Weights map[ResultKey]int

// Option is one answer choice of a question.
type Option struct {
	Label   string  `json:"label"`
	Weights Weights `json:"weights"`
}

// Question is presented in definition order with its options.
type Question struct {
	Text    string   `json:"text"`
	Options []Option `json:"options"`
}

// CallToAction is the link button shown under a result.
type CallToAction struct {
	Label string `json:"label"`
	URL   string `json:"url"`
}

// SecondaryOffer is the registration incentive panel shown under a result.
type SecondaryOffer struct {
	PromptText string `json:"promptText"`
	URL        string `json:"url"`
	ImageURL   string `json:"imageUrl,omitempty"`
}

// ResultDefinition describes one possible outcome.
type ResultDefinition struct {
	Key            ResultKey       `json:"key"`
	Title          string          `json:"title"`
	Description    string          `json:"description"`
	CallToAction   *CallToAction   `json:"callToAction,omitempty"`
	SecondaryOffer *SecondaryOffer `json:"secondaryOffer,omitempty"`
}

// QuizDefinition is the complete static description of one diagnosis quiz.
type QuizDefinition struct {
	Title     string        `json:"title"`
	IntroText string        `json:"introText"`
	Questions []Question    `json:"questions"`
	Results   ResultCatalog `json:"results"`
}

// Clone returns a deep copy so a session never observes caller mutations.
func (d QuizDefinition) Clone() QuizDefinition {
	out := QuizDefinition{
		Title:     d.Title,
		IntroText: d.IntroText,
	}
	if d.Questions != nil {
		out.Questions = make([]Question, len(d.Questions))
		for i, q := range d.Questions {
			out.Questions[i] = q.Clone()
		}
	}
	if d.Results != nil {
		out.Results = make(ResultCatalog, len(d.Results))
		for i, r := range d.Results {
			out.Results[i] = r.Clone()
		}
	}
	return out
}

// Clone returns a deep copy of the question.
func (q Question) Clone() Question {
	out := Question{Text: q.Text}
	if q.Options != nil {
		out.Options = make([]Option, len(q.Options))
		for i, o := range q.Options {
			out.Options[i] = o.Clone()
		}
	}
	return out
}

// Clone returns a deep copy of the option.
func (o Option) Clone() Option {
	out := Option{Label: o.Label}
	if o.Weights != nil {
		out.Weights = make(Weights, len(o.Weights))
		for k, v := range o.Weights {
			out.Weights[k] = v
		}
	}
	return out
}

// Clone returns a deep copy of the result.
func (r ResultDefinition) Clone() ResultDefinition {
	out := r
	if r.CallToAction != nil {
		cta := *r.CallToAction
		out.CallToAction = &cta
	}
	if r.SecondaryOffer != nil {
		offer := *r.SecondaryOffer
		out.SecondaryOffer = &offer
	}
	return out
}

// QuizRecord is a published quiz definition plus its ownership metadata.
type QuizRecord struct {
	ID         string         `json:"id"`
	OwnerEmail string         `json:"ownerEmail"`
	Public     bool           `json:"public"`
	Definition QuizDefinition `json:"definition"`
	CreatedAt  time.Time      `json:"createdAt"`
}

// Play is the stored progress of one remote play-through.
// Choices holds the original option index picked for each answered question.
// Seed fixes the option order shown for each question until a restart.
type Play struct {
	ID        string    `json:"id"`
	QuizID    string    `json:"quizId"`
	Choices   []int     `json:"choices"`
	Seed      int64     `json:"seed"`
	StartedAt time.Time `json:"startedAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}
