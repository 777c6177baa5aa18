package main

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/sells-group/shipnote/internal/llm"
	"github.com/sells-group/shipnote/internal/resilience"
)

// newRouter builds the provider router from config, with an optional
// primary override from --provider.
func newRouter(providerFlag string) (*llm.Router, error) {
	primary := cfg.Providers.Primary
	if providerFlag != "" {
		primary = providerFlag
	}
	p, err := llm.ParseProvider(primary)
	if err != nil {
		return nil, err
	}

	inv := llm.NewInvoker(
		llm.WithTimeout(llm.ProviderClaude, cfg.Providers.ClaudeTimeout()),
		llm.WithTimeout(llm.ProviderCodex, cfg.Providers.CodexTimeout()),
		llm.WithRateLimit(cfg.Providers.RequestsPerMinute),
	)

	retry := resilience.RetryConfig{
		MaxAttempts:    cfg.Retry.MaxAttempts,
		InitialBackoff: time.Duration(cfg.Retry.InitialBackoffSecs * float64(time.Second)),
		MaxBackoff:     time.Duration(cfg.Retry.MaxBackoffSecs * float64(time.Second)),
	}

	return llm.NewRouter(inv, llm.SelectionFromPrimary(p), retry), nil
}

// readChanges reads the change summary from a file argument, or stdin
// when the argument is absent or "-".
func readChanges(args []string) (string, error) {
	if len(args) > 0 && args[0] != "-" {
		data, err := os.ReadFile(args[0])
		if err != nil {
			return "", fmt.Errorf("read changes: %w", err)
		}
		return string(data), nil
	}
	data, err := io.ReadAll(os.Stdin)
	if err != nil {
		return "", fmt.Errorf("read stdin: %w", err)
	}
	return string(data), nil
}

// reportFallback prints the non-fatal fallback notice.
func reportFallback(comp *llm.Completion) {
	if !comp.UsedFallback {
		return
	}
	fmt.Fprintf(os.Stderr, "warning: primary provider failed (%s); used %s instead\n",
		summarizeErr(comp.PrimaryErr), comp.Provider.DisplayName())
}

// reportLLMError prints a terminal generation failure, with remediation
// hints when the error kind suggests one.
func reportLLMError(err error, verbose bool) {
	if all, ok := err.(*llm.AllFailedError); ok {
		if verbose {
			fmt.Fprintln(os.Stderr, all.Detailed())
		} else {
			fmt.Fprintln(os.Stderr, all.Error())
		}
		for _, hint := range all.Hints() {
			fmt.Fprintf(os.Stderr, "hint: %s\n", hint)
		}
		return
	}
	fmt.Fprintln(os.Stderr, err)
}

func summarizeErr(err error) string {
	if ie, ok := err.(*llm.InvokeError); ok {
		return ie.Summary()
	}
	if err == nil {
		return "unknown error"
	}
	return err.Error()
}
