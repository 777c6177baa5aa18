package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/sells-group/shipnote/internal/changelog"
	"github.com/sells-group/shipnote/internal/verify"
)

var verifyFlags struct {
	repoRoot string
}

var verifyCmd = &cobra.Command{
	Use:   "verify <entries.json>",
	Short: "Verify changelog entries against a repository",
	Long:  `Reads entries from a JSON file ({"entries": [{"category", "description"}, ...]}) and scores each claim against the repository's actual contents.`,
	Args:  cobra.ExactArgs(1),
	RunE:  runVerify,
}

func init() {
	verifyCmd.Flags().StringVar(&verifyFlags.repoRoot, "repo", ".", "repository root to verify claims against")
	rootCmd.AddCommand(verifyCmd)
}

func runVerify(cmd *cobra.Command, args []string) error {
	data, err := os.ReadFile(args[0])
	if err != nil {
		return err
	}
	out, err := changelog.ParseOutput(string(data))
	if err != nil {
		return err
	}

	if err := verify.CheckRipgrep(); err != nil {
		return err
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

	report, err := scanner.Verify(cmd.Context(), out.Entries, verifyFlags.repoRoot)
	if err != nil {
		return err
	}

	for _, e := range report.Entries {
		status := "ok"
		if e.Degraded() {
			status = "degraded"
		}
		fmt.Printf("[%3d] %-8s %s: %s\n", e.Confidence, status, e.Entry.Category, e.Entry.Description)
		for _, w := range e.Warnings {
			fmt.Printf("      warning: %s\n", w)
		}
	}

	if report.AllUnverifiable {
		fmt.Fprintln(os.Stderr, "no entry could be verified against the repository")
		os.Exit(1)
	}
	return nil
}
