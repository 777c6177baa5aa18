package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/sells-group/shipnote/internal/llm"
)

var bumpFlags struct {
	provider    string
	repoName    string
	prevVersion string
	verbose     bool
}

var bumpCmd = &cobra.Command{
	Use:   "bump [changes-file]",
	Short: "Suggest a semantic version bump for a change summary",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runBump,
}

func init() {
	f := bumpCmd.Flags()
	f.StringVar(&bumpFlags.provider, "provider", "", "primary provider (claude or codex)")
	f.StringVar(&bumpFlags.repoName, "name", "", "project name used in the prompt")
	f.StringVar(&bumpFlags.prevVersion, "previous-version", "", "previous released version")
	f.BoolVar(&bumpFlags.verbose, "verbose", false, "print full provider diagnostics on failure")

	rootCmd.AddCommand(bumpCmd)
}

func runBump(cmd *cobra.Command, args []string) error {
	changes, err := readChanges(args)
	if err != nil {
		return err
	}

	router, err := newRouter(bumpFlags.provider)
	if err != nil {
		return err
	}

	name := bumpFlags.repoName
	if name == "" {
		name = "this project"
	}
	prompt := llm.BuildBumpPrompt(name, bumpFlags.prevVersion, changes)

	comp, err := router.GenerateRaw(cmd.Context(), prompt)
	if err != nil {
		reportLLMError(err, bumpFlags.verbose)
		return fmt.Errorf("bump suggestion failed")
	}
	reportFallback(comp)

	bumpType, reasoning, err := llm.ParseBumpResponse(comp.Raw)
	if err != nil {
		return fmt.Errorf("unusable bump response: %w", err)
	}

	fmt.Println(bumpType)
	if reasoning != "" {
		fmt.Printf("reasoning: %s\n", reasoning)
	}
	return nil
}
