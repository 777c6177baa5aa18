package llm

import (
	"context"
	"errors"

	"github.com/sells-group/shipnote/internal/resilience"
)

// ShouldRetry reports whether a single-provider failure is worth another
// attempt against the same provider. Timeouts always are; non-zero exits
// and backend-reported errors only when they look like rate limiting or
// overload. Missing binaries, spawn failures, and malformed output never
// recover on retry.
func ShouldRetry(err error) bool {
	var ie *InvokeError
	if !errors.As(err, &ie) {
		return resilience.IsTransient(err)
	}

	switch ie.Kind {
	case KindTimeout:
		return true
	case KindNonZeroExit:
		return resilience.IsTransientText(ie.Stderr)
	case KindExecution:
		return resilience.IsTransientText(ie.Reason)
	default:
		return false
	}
}

// invokeWithRetry runs one provider with the configured backoff schedule.
// When all attempts fail, the last error is wrapped as KindRetriesExhausted
// so callers can tell a retried failure from a first-shot one. Errors that
// never got a retry pass through unwrapped.
func invokeWithRetry(ctx context.Context, inv invoker, cfg resilience.RetryConfig, p Provider, prompt string) (string, error) {
	cfg.ShouldRetry = ShouldRetry
	cfg.OnRetry = resilience.RetryLogger(p.String(), "invoke")

	result, err := resilience.DoVal(ctx, cfg, func(ctx context.Context) (string, error) {
		return inv.Invoke(ctx, p, prompt)
	})
	if err == nil {
		return result, nil
	}

	// A zero MaxAttempts is defaulted to a multi-attempt schedule inside
	// DoVal, so only an explicit single-attempt config skips the wrap.
	if ShouldRetry(err) && cfg.MaxAttempts != 1 {
		return "", &InvokeError{Provider: p, Kind: KindRetriesExhausted, Err: err}
	}
	return "", err
}
