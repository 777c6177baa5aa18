package llm

import (
	"context"
	"errors"
	"testing"

	"github.com/sells-group/shipnote/internal/resilience"
)

func TestShouldRetry_Classification(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"timeout", &InvokeError{Kind: KindTimeout}, true},
		{"rate limited exit", &InvokeError{Kind: KindNonZeroExit, Stderr: "429 Too Many Requests"}, true},
		{"overloaded execution", &InvokeError{Kind: KindExecution, Reason: "API overloaded, try again"}, true},
		{"plain non-zero exit", &InvokeError{Kind: KindNonZeroExit, Stderr: "invalid flag"}, false},
		{"not installed", &InvokeError{Kind: KindNotInstalled}, false},
		{"spawn failed", &InvokeError{Kind: KindSpawnFailed}, false},
		{"invalid json", &InvokeError{Kind: KindInvalidJSON}, false},
		{"execution non-transient", &InvokeError{Kind: KindExecution, Reason: "unknown model"}, false},
		{"context canceled", context.Canceled, false},
		{"plain error", errors.New("something"), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ShouldRetry(tt.err); got != tt.want {
				t.Errorf("ShouldRetry(%v) = %v, want %v", tt.err, got, tt.want)
			}
		})
	}
}

// countingInvoker fails n times then succeeds.
type countingInvoker struct {
	failures int
	err      error
	calls    int
}

func (c *countingInvoker) Invoke(context.Context, Provider, string) (string, error) {
	c.calls++
	if c.calls <= c.failures {
		return "", c.err
	}
	return "ok", nil
}

func fastRetry(attempts int) resilience.RetryConfig {
	return resilience.RetryConfig{
		MaxAttempts:    attempts,
		InitialBackoff: 1,
		MaxBackoff:     1,
	}
}

func TestInvokeWithRetry_RecoversFromTransient(t *testing.T) {
	inv := &countingInvoker{
		failures: 2,
		err:      &InvokeError{Provider: ProviderClaude, Kind: KindTimeout, TimeoutSecs: 1},
	}

	out, err := invokeWithRetry(context.Background(), inv, fastRetry(3), ProviderClaude, "p")
	if err != nil {
		t.Fatal(err)
	}
	if out != "ok" {
		t.Errorf("unexpected output: %q", out)
	}
	if inv.calls != 3 {
		t.Errorf("expected 3 attempts, got %d", inv.calls)
	}
}

func TestInvokeWithRetry_WrapsExhaustion(t *testing.T) {
	last := &InvokeError{Provider: ProviderClaude, Kind: KindTimeout, TimeoutSecs: 1}
	inv := &countingInvoker{failures: 10, err: last}

	_, err := invokeWithRetry(context.Background(), inv, fastRetry(3), ProviderClaude, "p")
	var ie *InvokeError
	if !errors.As(err, &ie) {
		t.Fatalf("expected *InvokeError, got %v", err)
	}
	if ie.Kind != KindRetriesExhausted {
		t.Errorf("expected KindRetriesExhausted, got %v", ie.Kind)
	}
	if !errors.Is(err, last) {
		t.Error("last attempt error should be preserved in the chain")
	}
	if inv.calls != 3 {
		t.Errorf("expected 3 attempts, got %d", inv.calls)
	}
}

func TestInvokeWithRetry_ZeroConfigStillWrapsExhaustion(t *testing.T) {
	// MaxAttempts 0 is defaulted to 3 inside the retry loop; exhaustion
	// must wrap the same as with an explicit multi-attempt schedule.
	last := &InvokeError{Provider: ProviderClaude, Kind: KindTimeout, TimeoutSecs: 1}
	inv := &countingInvoker{failures: 10, err: last}

	cfg := resilience.RetryConfig{InitialBackoff: 1, MaxBackoff: 1}
	_, err := invokeWithRetry(context.Background(), inv, cfg, ProviderClaude, "p")

	var ie *InvokeError
	if !errors.As(err, &ie) {
		t.Fatalf("expected *InvokeError, got %v", err)
	}
	if ie.Kind != KindRetriesExhausted {
		t.Errorf("expected KindRetriesExhausted, got %v", ie.Kind)
	}
	if inv.calls != 3 {
		t.Errorf("expected 3 attempts, got %d", inv.calls)
	}
}

func TestInvokeWithRetry_NonTransientFailsFast(t *testing.T) {
	inv := &countingInvoker{
		failures: 10,
		err:      &InvokeError{Provider: ProviderCodex, Kind: KindNotInstalled},
	}

	_, err := invokeWithRetry(context.Background(), inv, fastRetry(3), ProviderCodex, "p")
	var ie *InvokeError
	if !errors.As(err, &ie) {
		t.Fatalf("expected *InvokeError, got %v", err)
	}
	if ie.Kind != KindNotInstalled {
		t.Errorf("non-retryable error should pass through unwrapped, got %v", ie.Kind)
	}
	if inv.calls != 1 {
		t.Errorf("expected a single attempt, got %d", inv.calls)
	}
}
