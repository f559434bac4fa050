// Package engine scores diagnosis quizzes: it walks a player through the
// questions of a quiz definition, accumulates option weights per result key
// and resolves the winning result.
//
// A Session is owned by a single play-through. It is not safe for
// concurrent use; callers serialize access.
package engine

import (
	"diagnosis-quiz-service/internal/domain"
)

// Session is the mutable progress of one play-through.
type Session struct {
	def       domain.QuizDefinition
	current   int
	scores    map[domain.ResultKey]int
	answered  []domain.Option
	choices   []int
	completed bool
}

// Advance is what a successful Answer leads to: either the next question
// or, once the last question is answered, the resolved result.
type Advance struct {
	Done         bool
	NextQuestion *domain.Question
	Result       *domain.ResultDefinition
}

// Progress counts answered questions against the total.
type Progress struct {
	Answered int `json:"answered"`
	Total    int `json:"total"`
}

// NewSession validates def and starts a fresh play-through over a private copy of it.
func NewSession(def domain.QuizDefinition) (*Session, error) {
	if err := Validate(def); err != nil {
		return nil, err
	}
	return newSession(def.Clone()), nil
}

func newSession(def domain.QuizDefinition) *Session {
	scores := make(map[domain.ResultKey]int, len(def.Results))
	for _, r := range def.Results {
		scores[r.Key] = 0
	}
	return &Session{
		def:      def,
		scores:   scores,
		answered: []domain.Option{},
		choices:  []int{},
	}
}

// Replay rebuilds a session by answering choices in order.
func Replay(def domain.QuizDefinition, choices []int) (*Session, error) {
	s, err := NewSession(def)
	if err != nil {
		return nil, err
	}
	for _, idx := range choices {
		if _, err := s.Answer(idx); err != nil {
			return nil, err
		}
	}
	return s, nil
}

// CurrentQuestion returns the question awaiting an answer.
func (s *Session) CurrentQuestion() (domain.Question, error) {
	if s.completed {
		return domain.Question{}, domain.ErrSessionCompleted
	}
	return s.def.Questions[s.current], nil
}

// Answer applies the option at optionIndex of the current question.
// On error the session is left untouched.
func (s *Session) Answer(optionIndex int) (Advance, error) {
	if s.completed {
		return Advance{}, domain.ErrSessionCompleted
	}
	q := s.def.Questions[s.current]
	if optionIndex < 0 || optionIndex >= len(q.Options) {
		return Advance{}, domain.ErrIndexOutOfRange
	}

	chosen := q.Options[optionIndex]
	for key, weight := range chosen.Weights {
		// unknown keys contribute nothing
		if _, ok := s.scores[key]; ok {
			s.scores[key] += weight
		}
	}
	s.answered = append(s.answered, chosen)
	s.choices = append(s.choices, optionIndex)
	s.current++

	if s.current == len(s.def.Questions) {
		s.completed = true
		result := s.resolve()
		return Advance{Done: true, Result: &result}, nil
	}
	next := s.def.Questions[s.current]
	return Advance{NextQuestion: &next}, nil
}

// Result resolves the winning result of a completed session.
func (s *Session) Result() (domain.ResultDefinition, error) {
	if !s.completed {
		return domain.ResultDefinition{}, domain.ErrSessionNotCompleted
	}
	return s.resolve(), nil
}

// resolve picks the highest score; ties go to the result supplied first.
func (s *Session) resolve() domain.ResultDefinition {
	best := -1
	var winner domain.ResultDefinition
	for _, r := range s.def.Results {
		if score := s.scores[r.Key]; score > best {
			best = score
			winner = r
		}
	}
	return winner.Clone()
}

// Restart returns a fresh session over the same definition. The receiver is not modified.
func (s *Session) Restart() *Session {
	return newSession(s.def)
}

// Definition returns a copy of the quiz being played.
func (s *Session) Definition() domain.QuizDefinition {
	return s.def.Clone()
}

// CurrentIndex is the zero-based index of the question awaiting an answer,
// or the question count once completed.
func (s *Session) CurrentIndex() int {
	return s.current
}

// Completed reports whether every question has been answered.
func (s *Session) Completed() bool {
	return s.completed
}

// Scores returns a copy of the accumulated score per result key.
func (s *Session) Scores() map[domain.ResultKey]int {
	out := make(map[domain.ResultKey]int, len(s.scores))
	for k, v := range s.scores {
		out[k] = v
	}
	return out
}

// AnsweredOptions returns the chosen options in answer order.
func (s *Session) AnsweredOptions() []domain.Option {
	out := make([]domain.Option, len(s.answered))
	for i, o := range s.answered {
		out[i] = o.Clone()
	}
	return out
}

// Choices returns the chosen option indices in answer order.
func (s *Session) Choices() []int {
	return append([]int{}, s.choices...)
}

// Progress reports how far the session has come.
func (s *Session) Progress() Progress {
	return Progress{Answered: s.current, Total: len(s.def.Questions)}
}
