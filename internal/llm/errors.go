package llm

import (
	"fmt"
	"strings"
)

// ErrorKind classifies a provider invocation failure. Retry and fallback
// decisions key off the kind, never off message text.
type ErrorKind int

const (
	// KindNotInstalled means the backend executable could not be located.
	KindNotInstalled ErrorKind = iota
	// KindSpawnFailed means the process could not be started.
	KindSpawnFailed
	// KindTimeout means the process exceeded its deadline and was killed.
	KindTimeout
	// KindNonZeroExit means the process ran and exited with a failure code.
	KindNonZeroExit
	// KindInvalidJSON means stdout did not parse into the expected schema.
	KindInvalidJSON
	// KindExecution means the backend reported an error inside a successful
	// exit (e.g. an is_error envelope).
	KindExecution
	// KindRetriesExhausted wraps the last error after all attempts failed.
	KindRetriesExhausted
)

func (k ErrorKind) String() string {
	switch k {
	case KindNotInstalled:
		return "not_installed"
	case KindSpawnFailed:
		return "spawn_failed"
	case KindTimeout:
		return "timeout"
	case KindNonZeroExit:
		return "non_zero_exit"
	case KindInvalidJSON:
		return "invalid_json"
	case KindExecution:
		return "execution_failed"
	case KindRetriesExhausted:
		return "retries_exhausted"
	default:
		return "unknown"
	}
}

// InvokeError is a typed provider invocation failure.
type InvokeError struct {
	Provider Provider
	Kind     ErrorKind

	// ExitCode and Stderr are set for KindNonZeroExit.
	ExitCode int
	Stderr   string

	// TimeoutSecs is set for KindTimeout.
	TimeoutSecs int

	// Reason carries parse details for KindInvalidJSON and the backend
	// message for KindExecution.
	Reason string

	// Err is the underlying cause (spawn error, or the last attempt for
	// KindRetriesExhausted).
	Err error
}

// Error returns the detailed message, including stderr and causes. Callers
// presenting to users should prefer Summary unless verbose output was
// requested.
func (e *InvokeError) Error() string {
	name := e.Provider.DisplayName()
	switch e.Kind {
	case KindNotInstalled:
		return fmt.Sprintf("%s CLI not found. %s", name, e.Provider.InstallHint())
	case KindSpawnFailed:
		return fmt.Sprintf("failed to start %s CLI: %v", name, e.Err)
	case KindTimeout:
		return fmt.Sprintf("%s process timed out after %d seconds", name, e.TimeoutSecs)
	case KindNonZeroExit:
		return fmt.Sprintf("%s CLI exited with code %d: %s", name, e.ExitCode, strings.TrimSpace(e.Stderr))
	case KindInvalidJSON:
		return fmt.Sprintf("%s returned invalid JSON: %s", name, e.Reason)
	case KindExecution:
		return fmt.Sprintf("%s CLI reported an error: %s", name, e.Reason)
	case KindRetriesExhausted:
		return fmt.Sprintf("all retry attempts failed: %v", e.Err)
	default:
		return fmt.Sprintf("%s invocation failed: %v", name, e.Err)
	}
}

// Summary returns a one-line description without stderr or nested causes.
func (e *InvokeError) Summary() string {
	name := e.Provider.DisplayName()
	switch e.Kind {
	case KindNotInstalled:
		return fmt.Sprintf("%s CLI not found", name)
	case KindSpawnFailed:
		return fmt.Sprintf("failed to start %s CLI", name)
	case KindTimeout:
		return fmt.Sprintf("%s timed out after %ds", name, e.TimeoutSecs)
	case KindNonZeroExit:
		return fmt.Sprintf("%s CLI exited with code %d", name, e.ExitCode)
	case KindInvalidJSON:
		return fmt.Sprintf("%s returned invalid JSON", name)
	case KindExecution:
		return fmt.Sprintf("%s CLI reported an error", name)
	case KindRetriesExhausted:
		if inner, ok := e.Err.(*InvokeError); ok {
			return fmt.Sprintf("%s failed after retries: %s", name, inner.Summary())
		}
		return fmt.Sprintf("%s failed after retries", name)
	default:
		return fmt.Sprintf("%s invocation failed", name)
	}
}

// Hint returns a remediation suggestion derived from the error kind, or ""
// when no actionable fix is known.
func (e *InvokeError) Hint() string {
	switch e.Kind {
	case KindNotInstalled:
		return e.Provider.InstallHint()
	case KindNonZeroExit, KindExecution:
		msg := strings.ToLower(e.Stderr + " " + e.Reason)
		if strings.Contains(msg, "auth") || strings.Contains(msg, "api key") || strings.Contains(msg, "login") {
			return fmt.Sprintf("Run `%s` interactively once to authenticate.", e.Provider.Binary())
		}
		return ""
	default:
		return ""
	}
}

func (e *InvokeError) Unwrap() error { return e.Err }

// AllFailedError is the terminal router error: both providers failed. It
// preserves each provider's identity and failure reason separately.
type AllFailedError struct {
	Primary     Provider
	PrimaryErr  error
	Fallback    Provider
	FallbackErr error
}

func (e *AllFailedError) Error() string {
	return fmt.Sprintf("both LLM providers failed. %s error: %s. %s error: %s.",
		e.Primary.DisplayName(), summarize(e.PrimaryErr),
		e.Fallback.DisplayName(), summarize(e.FallbackErr))
}

// Detailed returns the full two-provider failure report including stderr.
func (e *AllFailedError) Detailed() string {
	return fmt.Sprintf("both LLM providers failed. %s error: %v. %s error: %v.",
		e.Primary.DisplayName(), e.PrimaryErr,
		e.Fallback.DisplayName(), e.FallbackErr)
}

// Hints collects remediation suggestions from both failures.
func (e *AllFailedError) Hints() []string {
	var hints []string
	for _, err := range []error{e.PrimaryErr, e.FallbackErr} {
		if ie, ok := err.(*InvokeError); ok {
			if h := ie.Hint(); h != "" {
				hints = append(hints, h)
			}
		}
	}
	return hints
}

func summarize(err error) string {
	if ie, ok := err.(*InvokeError); ok {
		return ie.Summary()
	}
	if err == nil {
		return "unknown"
	}
	return err.Error()
}
