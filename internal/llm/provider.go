// Package llm orchestrates external CLI generation backends with retry,
// fallback, and sticky provider selection.
package llm

import "github.com/rotisserie/eris"

// Provider identifies one generation backend. The set is closed: backends
// share a contract and differ only in binary name and output envelope.
type Provider string

const (
	ProviderClaude Provider = "claude"
	ProviderCodex  Provider = "codex"
)

// Providers lists all known providers.
var Providers = []Provider{ProviderClaude, ProviderCodex}

func (p Provider) String() string { return string(p) }

// DisplayName returns the capitalized name used in user-facing messages.
func (p Provider) DisplayName() string {
	switch p {
	case ProviderClaude:
		return "Claude"
	case ProviderCodex:
		return "Codex"
	default:
		return string(p)
	}
}

// Binary returns the executable name to spawn.
func (p Provider) Binary() string { return string(p) }

// InstallHint returns the remediation shown when the binary is missing.
func (p Provider) InstallHint() string {
	switch p {
	case ProviderClaude:
		return "Install with: npm install -g @anthropic-ai/claude-code"
	case ProviderCodex:
		return "Install with: npm install -g @openai/codex"
	default:
		return ""
	}
}

// ParseProvider maps a flag/config value to a Provider.
func ParseProvider(s string) (Provider, error) {
	for _, p := range Providers {
		if s == string(p) {
			return p, nil
		}
	}
	return "", eris.Errorf("llm: unknown provider %q (valid: claude, codex)", s)
}

// Selection is the ordered primary/fallback pair for one run. The Router
// owns it for the duration of the run: the only mutation is the stickiness
// swap after a successful fallback.
type Selection struct {
	Primary  Provider
	Fallback Provider
}

// SelectionFromPrimary builds a Selection with the other provider as
// fallback.
func SelectionFromPrimary(primary Provider) Selection {
	fallback := ProviderCodex
	if primary == ProviderCodex {
		fallback = ProviderClaude
	}
	return Selection{Primary: primary, Fallback: fallback}
}

// DefaultSelection is Claude primary, Codex fallback.
func DefaultSelection() Selection {
	return SelectionFromPrimary(ProviderClaude)
}
