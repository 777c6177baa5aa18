package resilience

import (
	"context"
	"errors"
	"strings"
)

// TransientError wraps an error that is safe to retry (e.g., a rate-limited
// or overloaded backend).
type TransientError struct {
	Err error
}

func (e *TransientError) Error() string {
	return e.Err.Error()
}

func (e *TransientError) Unwrap() error {
	return e.Err
}

// NewTransientError wraps an error as explicitly transient.
func NewTransientError(err error) *TransientError {
	return &TransientError{Err: err}
}

// IsTransient returns true if the error (or any error in its chain) is a
// TransientError, or if it matches common transient failure patterns from
// CLI backends (rate limits, overload, timeouts).
//
// Context cancellation is never transient: retrying a cancelled call
// cannot succeed.
func IsTransient(err error) bool {
	if err == nil {
		return false
	}

	if errors.Is(err, context.Canceled) {
		return false
	}

	var te *TransientError
	if errors.As(err, &te) {
		return true
	}

	return IsTransientText(err.Error())
}

var transientPatterns = []string{
	"rate limit",
	"rate-limited",
	"rate limited",
	"too many requests",
	"overloaded",
	"temporarily unavailable",
	"service unavailable",
	"timed out",
	"timeout",
	"429",
	"529",
}

// IsTransientText reports whether free-form backend output (stderr, an
// error message) matches common transient failure patterns from CLI
// backends.
func IsTransientText(text string) bool {
	msg := strings.ToLower(text)
	for _, p := range transientPatterns {
		if strings.Contains(msg, p) {
			return true
		}
	}
	return false
}
