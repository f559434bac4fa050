package engine

import "diagnosis-quiz-service/internal/domain"

// Builder assembles a quiz definition in one place and validates it on Build.
type Builder struct {
	def domain.QuizDefinition
}

func NewBuilder() *Builder {
	return &Builder{}
}

func (b *Builder) Title(title string) *Builder {
	b.def.Title = title
	return b
}

func (b *Builder) Intro(text string) *Builder {
	b.def.IntroText = text
	return b
}

// Question appends a question with the given options.
func (b *Builder) Question(text string, options ...domain.Option) *Builder {
	b.def.Questions = append(b.def.Questions, domain.Question{Text: text, Options: options})
	return b
}

// Result appends a result; catalog order follows call order.
func (b *Builder) Result(result domain.ResultDefinition) *Builder {
	b.def.Results = append(b.def.Results, result)
	return b
}

// Build returns a copy of the definition, or the first validation error.
func (b *Builder) Build() (domain.QuizDefinition, error) {
	if err := Validate(b.def); err != nil {
		return domain.QuizDefinition{}, err
	}
	return b.def.Clone(), nil
}

// Pick is shorthand for an option worth one point to a single result.
func Pick(label string, key domain.ResultKey) domain.Option {
	return domain.Option{Label: label, Weights: domain.Weights{key: 1}}
}
