package llm

import (
	"bytes"
	"context"
	"errors"
	"os/exec"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// DefaultTimeout bounds one provider subprocess when no override is
// configured.
const DefaultTimeout = 5 * time.Minute

// waitDelay is how long we give a timed-out child between context kill and
// forceful cleanup of its I/O pipes.
const waitDelay = 5 * time.Second

// Invoker spawns provider CLI processes. One invocation spawns exactly one
// process; stdout and stderr are captured into separate buffers and the
// child is killed when the deadline expires.
type Invoker struct {
	timeouts map[Provider]time.Duration
	limiter  *rate.Limiter

	// lookPath and runCommand are seams for tests.
	lookPath   func(file string) (string, error)
	runCommand func(ctx context.Context, name string, args ...string) (stdout, stderr []byte, exitCode int, err error)
}

// InvokerOption configures an Invoker.
type InvokerOption func(*Invoker)

// WithTimeout overrides the subprocess deadline for one provider.
func WithTimeout(p Provider, d time.Duration) InvokerOption {
	return func(inv *Invoker) {
		if d > 0 {
			inv.timeouts[p] = d
		}
	}
}

// WithRateLimit throttles invocations to n per minute. Zero disables
// throttling.
func WithRateLimit(perMinute int) InvokerOption {
	return func(inv *Invoker) {
		if perMinute > 0 {
			inv.limiter = rate.NewLimiter(rate.Every(time.Minute/time.Duration(perMinute)), 1)
		}
	}
}

// NewInvoker creates an Invoker with default timeouts for all providers.
func NewInvoker(opts ...InvokerOption) *Invoker {
	inv := &Invoker{
		timeouts: map[Provider]time.Duration{
			ProviderClaude: DefaultTimeout,
			ProviderCodex:  DefaultTimeout,
		},
		lookPath: exec.LookPath,
	}
	inv.runCommand = inv.execCommand
	for _, opt := range opts {
		opt(inv)
	}
	return inv
}

// CheckInstalled verifies the provider binary exists and answers
// --version. Used by the doctor command and before first invocation.
func (inv *Invoker) CheckInstalled(ctx context.Context, p Provider) error {
	if _, err := inv.lookPath(p.Binary()); err != nil {
		return &InvokeError{Provider: p, Kind: KindNotInstalled, Err: err}
	}

	_, _, exitCode, err := inv.runCommand(ctx, p.Binary(), "--version")
	if err != nil {
		return &InvokeError{Provider: p, Kind: KindSpawnFailed, Err: err}
	}
	if exitCode != 0 {
		return &InvokeError{Provider: p, Kind: KindNotInstalled}
	}
	return nil
}

// Invoke runs one generation attempt against p and returns the backend's
// response content with any CLI envelope already unwrapped. Exactly one of
// a non-empty result or a typed *InvokeError is returned. A blank prompt
// is rejected before any process is spawned.
func (inv *Invoker) Invoke(ctx context.Context, p Provider, prompt string) (string, error) {
	if strings.TrimSpace(prompt) == "" {
		return "", &InvokeError{Provider: p, Kind: KindSpawnFailed, Err: errors.New("empty prompt")}
	}

	if _, err := inv.lookPath(p.Binary()); err != nil {
		return "", &InvokeError{Provider: p, Kind: KindNotInstalled, Err: err}
	}

	if inv.limiter != nil {
		if err := inv.limiter.Wait(ctx); err != nil {
			return "", err
		}
	}

	timeout := inv.timeouts[p]
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	invokeCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	start := time.Now()
	stdout, stderr, exitCode, err := inv.runCommand(invokeCtx, p.Binary(), providerArgs(p, prompt)...)
	elapsed := time.Since(start)

	zap.L().Debug("provider invocation finished",
		zap.String("provider", p.String()),
		zap.Duration("elapsed", elapsed),
		zap.Int("exit_code", exitCode),
		zap.Error(err),
	)

	switch {
	case ctx.Err() != nil:
		// Caller-level cancellation: surface it as-is, not as a provider
		// failure.
		return "", ctx.Err()
	case errors.Is(invokeCtx.Err(), context.DeadlineExceeded):
		return "", &InvokeError{Provider: p, Kind: KindTimeout, TimeoutSecs: int(timeout.Seconds())}
	case err != nil:
		return "", &InvokeError{Provider: p, Kind: KindSpawnFailed, Err: err}
	case exitCode != 0:
		return "", &InvokeError{
			Provider: p,
			Kind:     KindNonZeroExit,
			ExitCode: exitCode,
			Stderr:   string(stderr),
		}
	}

	return unwrapOutput(p, string(stdout))
}

// providerArgs builds the argv tail for one provider. Claude is asked for
// its JSON envelope; Codex runs in non-interactive exec mode.
func providerArgs(p Provider, prompt string) []string {
	switch p {
	case ProviderClaude:
		return []string{"-p", prompt, "--output-format", "json"}
	case ProviderCodex:
		return []string{"exec", prompt}
	default:
		return []string{prompt}
	}
}

// execCommand is the real subprocess runner. Stdout and stderr stay in
// separate buffers; interleaving would corrupt the JSON envelope.
func (inv *Invoker) execCommand(ctx context.Context, name string, args ...string) ([]byte, []byte, int, error) {
	cmd := exec.CommandContext(ctx, name, args...)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	cmd.WaitDelay = waitDelay

	err := cmd.Run()
	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return stdout.Bytes(), stderr.Bytes(), exitErr.ExitCode(), nil
		}
		return stdout.Bytes(), stderr.Bytes(), -1, err
	}

	return stdout.Bytes(), stderr.Bytes(), 0, nil
}
