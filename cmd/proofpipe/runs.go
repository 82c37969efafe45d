package main

import (
	"fmt"

	"github.com/charmbracelet/glamour"
	"github.com/spf13/cobra"

	"github.com/proofworks/proofpipe/internal/store"
)

func runsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "runs",
		Short: "Browse recorded proofread runs",
	}
	cmd.AddCommand(runsListCmd())
	cmd.AddCommand(runsShowCmd())
	return cmd
}

func runsListCmd() *cobra.Command {
	return &cobra.Command{
		Use:          "list",
		Short:        "List recorded runs",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			storeDB, _, closeFn, err := openDB()
			if err != nil {
				return err
			}
			defer closeFn()

			recs, err := store.NewStore(storeDB).ListRuns(cmd.Context())
			if err != nil {
				return err
			}
			if len(recs) == 0 {
				fmt.Println("no runs recorded")
				return nil
			}
			for _, rec := range recs {
				fmt.Printf("%.8s  %s  attempt %d  score %3d  passed=%-5v  %s\n",
					rec.RunID, rec.CreatedAt, rec.Attempt, rec.OverallScore, rec.Passed, rec.Recommendation)
			}
			return nil
		},
	}
}

func runsShowCmd() *cobra.Command {
	var plain bool
	cmd := &cobra.Command{
		Use:          "show <run-id>",
		Short:        "Show one run's report",
		SilenceUsage: true,
		Args:         cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			storeDB, _, closeFn, err := openDB()
			if err != nil {
				return err
			}
			defer closeFn()

			rec, err := store.NewStore(storeDB).GetRun(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if plain {
				fmt.Println(rec.ReportMD)
				return nil
			}
			rendered, err := glamour.Render(rec.ReportMD, "auto")
			if err != nil {
				fmt.Println(rec.ReportMD)
				return nil
			}
			fmt.Println(rendered)
			return nil
		},
	}
	cmd.Flags().BoolVar(&plain, "plain", false, "print the report as raw markdown")
	return cmd
}
