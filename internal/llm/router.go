package llm

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"github.com/sells-group/shipnote/internal/changelog"
	"github.com/sells-group/shipnote/internal/resilience"
)

// invoker is the single-attempt surface the router drives. Satisfied by
// *Invoker in production and by stubs in tests.
type invoker interface {
	Invoke(ctx context.Context, p Provider, prompt string) (string, error)
}

// Completion is one successful generation, annotated with which provider
// produced it and whether the router had to fall back to get it.
type Completion struct {
	// Output is set by Generate; GenerateRaw leaves it nil.
	Output *changelog.Output

	// Raw is the provider's response content before any parsing.
	Raw string

	Provider     Provider
	UsedFallback bool

	// PrimaryErr records why the original primary failed when UsedFallback
	// is true.
	PrimaryErr error
}

// Router drives generation across the two providers. The primary is tried
// first (with retries); on failure the fallback gets one full attempt
// cycle of its own. A fallback success promotes that provider to primary
// for the rest of the run, so later requests skip the known-bad provider.
type Router struct {
	mu    sync.Mutex
	inv   invoker
	retry resilience.RetryConfig
	sel   Selection
}

// NewRouter creates a Router starting from sel. Zero-value retry fields
// take the default schedule.
func NewRouter(inv *Invoker, sel Selection, retry resilience.RetryConfig) *Router {
	return &Router{inv: inv, retry: retry, sel: sel}
}

// Selection returns the current provider ordering. After a sticky
// promotion this differs from the ordering the router started with.
func (r *Router) Selection() Selection {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.sel
}

// Generate produces structured changelog entries from prompt. Output that
// does not parse into the expected schema counts as a provider failure,
// so a primary that returns garbage still triggers fallback.
func (r *Router) Generate(ctx context.Context, prompt string) (*Completion, error) {
	return r.route(ctx, prompt, true)
}

// GenerateRaw produces free-form text from prompt with the same fallback
// and stickiness behavior as Generate, skipping schema validation.
func (r *Router) GenerateRaw(ctx context.Context, prompt string) (*Completion, error) {
	return r.route(ctx, prompt, false)
}

func (r *Router) route(ctx context.Context, prompt string, parse bool) (*Completion, error) {
	r.mu.Lock()
	primary, fallback := r.sel.Primary, r.sel.Fallback
	r.mu.Unlock()

	comp, primaryErr := r.attempt(ctx, primary, prompt, parse)
	if primaryErr == nil {
		return comp, nil
	}

	// Cancellation is the caller's decision, not a provider fault.
	if ctx.Err() != nil {
		return nil, primaryErr
	}

	zap.L().Warn("primary provider failed, trying fallback",
		zap.String("primary", primary.String()),
		zap.String("fallback", fallback.String()),
		zap.Error(primaryErr),
	)

	comp, fallbackErr := r.attempt(ctx, fallback, prompt, parse)
	if fallbackErr != nil {
		return nil, &AllFailedError{
			Primary:     primary,
			PrimaryErr:  primaryErr,
			Fallback:    fallback,
			FallbackErr: fallbackErr,
		}
	}

	r.mu.Lock()
	r.sel = Selection{Primary: fallback, Fallback: primary}
	r.mu.Unlock()

	zap.L().Info("fallback provider succeeded, promoting to primary",
		zap.String("provider", fallback.String()),
	)

	comp.UsedFallback = true
	comp.PrimaryErr = primaryErr
	return comp, nil
}

// attempt runs one provider through the full retry schedule and, when
// parse is set, validates the response into changelog entries.
func (r *Router) attempt(ctx context.Context, p Provider, prompt string, parse bool) (*Completion, error) {
	raw, err := invokeWithRetry(ctx, r.inv, r.retry, p, prompt)
	if err != nil {
		return nil, err
	}

	comp := &Completion{Provider: p, Raw: raw}
	if !parse {
		return comp, nil
	}

	out, err := changelog.ParseOutput(ExtractJSON(raw))
	if err != nil {
		return nil, &InvokeError{
			Provider: p,
			Kind:     KindInvalidJSON,
			Reason:   err.Error(),
			Err:      err,
		}
	}
	comp.Output = out
	return comp, nil
}
