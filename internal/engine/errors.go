package engine

import (
	"errors"
	"fmt"
)

// Common engine errors.
var (
	// ErrPlayerNameRequired is returned by NewSession for a blank player name.
	ErrPlayerNameRequired = errors.New("player name is required")
	// ErrIllegalState marks a call that violates the session contract:
	// submitting or advancing outside InProgress, answering the same
	// question twice, or reading a result before completion.
	ErrIllegalState = errors.New("illegal session state")
)

// InvalidQuizError is returned by NewSession when the quiz cannot be
// played: no questions, a non-positive time limit, or a question whose
// correct option index is out of range.
type InvalidQuizError struct {
	Reason string
}

func (e *InvalidQuizError) Error() string {
	return fmt.Sprintf("invalid quiz: %s", e.Reason)
}

// IsInvalidQuiz reports whether err is an InvalidQuizError.
func IsInvalidQuiz(err error) bool {
	var iq *InvalidQuizError
	return errors.As(err, &iq)
}
