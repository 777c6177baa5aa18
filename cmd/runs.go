package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/sells-group/shipnote/internal/history"
)

var runsFlags struct {
	limit int
}

var runsCmd = &cobra.Command{
	Use:   "runs",
	Short: "List recent generation runs",
	RunE:  runRuns,
}

func init() {
	runsCmd.Flags().IntVar(&runsFlags.limit, "limit", 20, "maximum runs to list")
	rootCmd.AddCommand(runsCmd)
}

func runRuns(cmd *cobra.Command, args []string) error {
	st, err := history.NewSQLite(cfg.History.Path)
	if err != nil {
		return err
	}
	defer st.Close()

	if err := st.Migrate(cmd.Context()); err != nil {
		return err
	}

	runs, err := st.ListRuns(cmd.Context(), runsFlags.limit)
	if err != nil {
		return err
	}
	if len(runs) == 0 {
		fmt.Println("no runs recorded")
		return nil
	}

	for _, r := range runs {
		fallback := ""
		if r.UsedFallback {
			fallback = " (fallback)"
		}
		degraded := ""
		if r.Degraded {
			degraded = " degraded"
		}
		fmt.Printf("%s  %-12s %s%s  %d entries  confidence %d%s\n",
			r.CreatedAt.Format("2006-01-02 15:04"), r.Version, r.Provider, fallback,
			len(r.Entries), r.MeanConfidence, degraded)
	}
	return nil
}
