package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/shipnote/internal/changelog"
	"github.com/sells-group/shipnote/internal/history"
	"github.com/sells-group/shipnote/internal/llm"
	"github.com/sells-group/shipnote/internal/verify"
)

var generateFlags struct {
	provider      string
	repoName      string
	repoRoot      string
	version       string
	prevVersion   string
	noVerify      bool
	verbose       bool
	minConfidence int
}

var generateCmd = &cobra.Command{
	Use:   "generate [changes-file]",
	Short: "Generate verified changelog entries from a change summary",
	Long:  "Reads a summary of changes (commit subjects, PR titles) from a file or stdin, generates Keep a Changelog entries through the configured LLM providers, and verifies each claim against the repository.",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runGenerate,
}

func init() {
	f := generateCmd.Flags()
	f.StringVar(&generateFlags.provider, "provider", "", "primary provider (claude or codex)")
	f.StringVar(&generateFlags.repoName, "name", "", "project name used in the prompt")
	f.StringVar(&generateFlags.repoRoot, "repo", ".", "repository root to verify claims against")
	f.StringVar(&generateFlags.version, "version", "Unreleased", "version heading for the rendered section")
	f.StringVar(&generateFlags.prevVersion, "previous-version", "", "previous released version (empty means initial release)")
	f.BoolVar(&generateFlags.noVerify, "no-verify", false, "skip evidence verification")
	f.BoolVar(&generateFlags.verbose, "verbose", false, "print per-entry evidence detail")
	f.IntVar(&generateFlags.minConfidence, "min-confidence", -1, "drop entries scoring below this confidence (default from config)")

	rootCmd.AddCommand(generateCmd)
}

func runGenerate(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	changes, err := readChanges(args)
	if err != nil {
		return err
	}

	router, err := newRouter(generateFlags.provider)
	if err != nil {
		return err
	}

	name := generateFlags.repoName
	if name == "" {
		name = "this project"
	}
	prompt := llm.BuildChangelogPrompt(name, generateFlags.prevVersion, changes)

	comp, err := router.Generate(ctx, prompt)
	if err != nil {
		reportLLMError(err, generateFlags.verbose)
		return fmt.Errorf("generation failed")
	}
	reportFallback(comp)

	entries := comp.Output.Entries
	var report *verify.Report
	if !generateFlags.noVerify {
		report, entries = verifyEntries(ctx, entries)
	}

	section := changelog.FormatSection(generateFlags.version, time.Now(), entries)
	fmt.Println(section)

	if report != nil && generateFlags.verbose {
		printEvidence(report)
	}

	recordRun(ctx, comp, entries, report)
	return nil
}

// verifyEntries runs evidence verification and filters out entries below
// the confidence floor. Verification problems degrade the output; they
// never abort it.
func verifyEntries(ctx context.Context, entries []changelog.Entry) (*verify.Report, []changelog.Entry) {
	if err := verify.CheckRipgrep(); err != nil {
		fmt.Fprintln(os.Stderr, "warning: skipping verification:", err)
		return nil, entries
	}

	scanner := verify.NewScanner(verify.RipgrepSearcher{},
		verify.WithPenalties(verify.Penalties{
			FailedSearch:  cfg.Verify.PenaltyFailedSearch,
			StubFinding:   cfg.Verify.PenaltyStubFinding,
			Unverifiable:  cfg.Verify.PenaltyUnverifiable,
			ClaimMismatch: cfg.Verify.PenaltyClaimMismatch,
		}),
		verify.WithConcurrency(cfg.Verify.Concurrency),
	)

	report, err := scanner.Verify(ctx, entries, generateFlags.repoRoot)
	if err != nil {
		fmt.Fprintln(os.Stderr, "warning: verification aborted:", err)
		return nil, entries
	}

	if report.AllUnverifiable {
		fmt.Fprintln(os.Stderr, "warning: no entry could be verified against the repository; consider re-running with --no-verify for a simple, unverified changelog")
	}

	minConfidence := generateFlags.minConfidence
	if minConfidence < 0 {
		minConfidence = cfg.Verify.MinConfidence
	}

	kept := make([]changelog.Entry, 0, len(entries))
	for _, e := range report.Entries {
		if e.Confidence < minConfidence {
			fmt.Fprintf(os.Stderr, "dropped low-confidence entry (%d): %s\n", e.Confidence, e.Entry.Description)
			continue
		}
		kept = append(kept, e.Entry)
	}
	return report, kept
}

func printEvidence(report *verify.Report) {
	for _, e := range report.Entries {
		fmt.Fprintf(os.Stderr, "\n[%d] %s: %s\n", e.Confidence, e.Entry.Category, e.Entry.Description)
		fmt.Fprintf(os.Stderr, "    searches: %d ok, %d failed of %d\n",
			e.Summary.SuccessfulSearches, e.Summary.FailedSearches, e.Summary.TotalKeywords)
		for _, w := range e.Warnings {
			fmt.Fprintf(os.Stderr, "    warning: %s\n", w)
		}
	}
}

// recordRun persists the run outcome; history failures only warn.
func recordRun(ctx context.Context, comp *llm.Completion, entries []changelog.Entry, report *verify.Report) {
	if !cfg.History.Enabled {
		return
	}

	if dir := filepath.Dir(cfg.History.Path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			zap.L().Warn("history dir unavailable", zap.Error(err))
			return
		}
	}

	st, err := history.NewSQLite(cfg.History.Path)
	if err != nil {
		zap.L().Warn("history store unavailable", zap.Error(err))
		return
	}
	defer st.Close()

	if err := st.Migrate(ctx); err != nil {
		zap.L().Warn("history migration failed", zap.Error(err))
		return
	}

	run := &history.Run{
		Version:      generateFlags.version,
		Provider:     comp.Provider.String(),
		UsedFallback: comp.UsedFallback,
		Entries:      entries,
	}
	if report != nil {
		run.Degraded = report.Degraded
		run.MeanConfidence = report.MeanConfidence()
	}
	if err := st.RecordRun(ctx, run); err != nil {
		zap.L().Warn("failed to record run", zap.Error(err))
	}
}
