package engine

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound means the referenced mission, submission, player or
	// faction does not exist (or is not visible to the caller).
	ErrNotFound = errors.New("not found")
	// ErrDuplicateSubmission means the player already submitted this
	// mission; missions are one-shot per player.
	ErrDuplicateSubmission = errors.New("mission already submitted")
	// ErrNoCycleState means the Settings tab has no cycle configured.
	// Operator-facing: run the seed before advancing the cycle.
	ErrNoCycleState = errors.New("cycle state not configured")
	// ErrUsernameTaken means registration hit an existing username.
	ErrUsernameTaken = errors.New("username already taken")
	// ErrBadCredentials means the password hash did not match.
	ErrBadCredentials = errors.New("incorrect password")
)

// ValidationError reports missing or malformed caller input. Never
// retried; surfaced verbatim.
type ValidationError struct {
	Msg string
}

func (e ValidationError) Error() string { return e.Msg }

func invalidf(format string, args ...any) error {
	return ValidationError{Msg: fmt.Sprintf(format, args...)}
}

// IsValidation reports whether err is a ValidationError.
func IsValidation(err error) bool {
	var ve ValidationError
	return errors.As(err, &ve)
}
