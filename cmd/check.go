package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/sells-group/shipnote/internal/llm"
	"github.com/sells-group/shipnote/internal/verify"
)

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Check that provider CLIs and ripgrep are available",
	RunE:  runCheck,
}

func init() {
	rootCmd.AddCommand(checkCmd)
}

func runCheck(cmd *cobra.Command, args []string) error {
	inv := llm.NewInvoker()
	healthy := true

	for _, p := range llm.Providers {
		if err := inv.CheckInstalled(cmd.Context(), p); err != nil {
			healthy = false
			fmt.Printf("✗ %s: %v\n", p.DisplayName(), err)
			continue
		}
		fmt.Printf("✓ %s CLI found\n", p.DisplayName())
	}

	if err := verify.CheckRipgrep(); err != nil {
		healthy = false
		fmt.Printf("✗ ripgrep: %v\n", err)
		fmt.Println("  verification will be skipped until rg is installed")
	} else {
		fmt.Println("✓ ripgrep found")
	}

	if !healthy {
		return fmt.Errorf("some tools are missing")
	}
	return nil
}
