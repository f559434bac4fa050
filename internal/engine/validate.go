package engine

import (
	"fmt"

	"diagnosis-quiz-service/internal/domain"
)

// Validate reports the first reason def cannot be played. The returned
// error wraps domain.ErrInvalidDefinition.
func Validate(def domain.QuizDefinition) error {
	if len(def.Questions) == 0 {
		return invalid("quiz has no questions")
	}
	if len(def.Results) == 0 {
		return invalid("quiz has no results")
	}

	known := make(map[domain.ResultKey]struct{}, len(def.Results))
	for i, r := range def.Results {
		if r.Key == "" {
			return invalid("result %d has an empty key", i)
		}
		if _, dup := known[r.Key]; dup {
			return invalid("duplicate result key %q", r.Key)
		}
		known[r.Key] = struct{}{}
	}

	for qi, q := range def.Questions {
		if len(q.Options) == 0 {
			return invalid("question %d has no options", qi)
		}
		for oi, o := range q.Options {
			for key, weight := range o.Weights {
				if _, ok := known[key]; !ok {
					return invalid("question %d option %d weights unknown result key %q", qi, oi, key)
				}
				if weight < 0 {
					return invalid("question %d option %d has negative weight for %q", qi, oi, key)
				}
			}
		}
	}
	return nil
}

func invalid(format string, args ...any) error {
	return fmt.Errorf("%w: %s", domain.ErrInvalidDefinition, fmt.Sprintf(format, args...))
}
