package domain

import "errors"

var (
	// ErrInvalidDefinition is returned when a quiz definition cannot be played.
	ErrInvalidDefinition = errors.New("invalid quiz definition")
	// ErrIndexOutOfRange indicates an answer index outside the current question's options.
	ErrIndexOutOfRange = errors.New("option index out of range")
	// ErrSessionCompleted is returned when a finished session is asked for a question or an answer.
	ErrSessionCompleted = errors.New("quiz session already completed")
	// ErrSessionNotCompleted is returned when a result is requested before the last answer.
	ErrSessionNotCompleted = errors.New("quiz session not completed")
	// ErrQuizNotFound indicates the quiz record could not be loaded.
	ErrQuizNotFound = errors.New("quiz not found")
	// ErrPlayNotFound indicates an unknown or expired play id.
	ErrPlayNotFound = errors.New("play not found")
	// ErrEmptyTheme is returned when content generation is requested without a theme.
	ErrEmptyTheme = errors.New("quiz theme is empty")
	// ErrProviderUnavailable is returned when no content provider is configured.
	ErrProviderUnavailable = errors.New("content provider not configured")
)
