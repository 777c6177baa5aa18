package llm

import (
	"encoding/json"
	"strings"
)

// claudeEnvelope is the wrapper the claude CLI prints in JSON output mode.
// The interesting payload is the result string.
type claudeEnvelope struct {
	Result  string `json:"result"`
	IsError bool   `json:"is_error"`
}

// unwrapOutput extracts the response content from raw provider stdout.
// Claude wraps its response in a JSON envelope; codex prints the response
// directly.
func unwrapOutput(p Provider, stdout string) (string, error) {
	if p != ProviderClaude {
		return stdout, nil
	}
	return unwrapClaudeEnvelope(p, stdout)
}

// unwrapClaudeEnvelope decodes the claude CLI envelope. Terminal noise
// before or after the envelope (PTY control sequences, shell banners) is
// tolerated by extracting the first valid JSON object from stdout.
func unwrapClaudeEnvelope(p Provider, stdout string) (string, error) {
	raw := ExtractJSON(stdout)

	var env claudeEnvelope
	if err := json.Unmarshal([]byte(raw), &env); err != nil {
		return "", &InvokeError{
			Provider: p,
			Kind:     KindInvalidJSON,
			Reason:   "stdout is not a valid response envelope",
			Err:      err,
		}
	}

	if env.IsError {
		return "", &InvokeError{
			Provider: p,
			Kind:     KindExecution,
			Reason:   strings.TrimSpace(env.Result),
		}
	}

	if strings.TrimSpace(env.Result) == "" {
		return "", &InvokeError{
			Provider: p,
			Kind:     KindInvalidJSON,
			Reason:   "response envelope has an empty result",
		}
	}

	return env.Result, nil
}
