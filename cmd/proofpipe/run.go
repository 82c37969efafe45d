package main

import (
	"fmt"
	"html"
	"os"

	"github.com/charmbracelet/glamour"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/proofworks/proofpipe/internal/agents"
	"github.com/proofworks/proofpipe/internal/article"
	"github.com/proofworks/proofpipe/internal/llm"
	"github.com/proofworks/proofpipe/internal/proofread"
	"github.com/proofworks/proofpipe/internal/store"
)

func runCmd() *cobra.Command {
	var plain bool
	var applyPath string
	cmd := &cobra.Command{
		Use:          "run <article.html>",
		Short:        "Proofread an article and print the report",
		SilenceUsage: true,
		Args:         cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			content, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("read article: %w", err)
			}

			storeDB, workDir, closeFn, err := openDB()
			if err != nil {
				return err
			}
			defer closeFn()
			cfg, err := loadConfig(workDir)
			if err != nil {
				return err
			}

			ctx := cmd.Context()
			client, err := llm.New(ctx, cfg.LLM)
			if err != nil {
				return err
			}

			phaseOne, requirement, search, citations := agents.Roster(client, agents.RosterOptions{
				IncludeLegal: cfg.Review.IncludeLegal,
				SkipBrand:    cfg.Review.SkipBrand,
			})
			exec := proofread.NewExecutor(cfg.TimeoutOverrides())
			orch := proofread.NewOrchestrator(phaseOne, requirement, search, citations, exec)

			runs := store.NewStore(storeDB)
			articleHash := store.HashArticle(string(content))
			lastAttempt, previousScore, err := runs.LatestAttempt(ctx, articleHash)
			if err != nil {
				return err
			}

			report, err := orch.Run(ctx, string(content), proofread.RunOptions{
				Attempt:       lastAttempt + 1,
				PreviousScore: previousScore,
				Progress: func(message string, percent int) {
					log.Info().Int("percent", percent).Msg(message)
				},
			})
			if err != nil {
				return err
			}

			runID, err := runs.SaveRun(ctx, articleHash, lastAttempt+1, report)
			if err != nil {
				return err
			}
			log.Info().Str("run_id", runID).Msg("run saved")

			if applyPath != "" && len(report.SourceInsertions) > 0 {
				if err := applyInsertions(string(content), report.SourceInsertions, applyPath); err != nil {
					return err
				}
				log.Info().Str("path", applyPath).Int("sources", len(report.SourceInsertions)).Msg("sources spliced into article")
			}

			if plain {
				fmt.Println(report.DetailedReport)
				return nil
			}
			rendered, err := glamour.Render(report.DetailedReport, "auto")
			if err != nil {
				fmt.Println(report.DetailedReport)
				return nil
			}
			fmt.Println(rendered)

			if !report.Passed {
				return fmt.Errorf("article did not pass: %s", report.PassReason)
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&plain, "plain", false, "print the report as raw markdown")
	cmd.Flags().StringVar(&applyPath, "apply", "", "write the article with verified sources spliced in to this path")
	return cmd
}

func applyInsertions(content string, insertions []proofread.SourceInsertion, outPath string) error {
	spliced := make([]article.Insertion, 0, len(insertions))
	for _, ins := range insertions {
		spliced = append(spliced, article.Insertion{
			ElementIndex: ins.ElementIndex,
			SourceHTML: fmt.Sprintf(`<p class="source">Source: <a href="%s" target="_blank" rel="noopener">%s</a></p>`,
				html.EscapeString(ins.URL), html.EscapeString(ins.Title)),
		})
	}
	out, err := article.InsertSources(content, spliced)
	if err != nil {
		return fmt.Errorf("splice sources: %w", err)
	}
	if err := os.WriteFile(outPath, []byte(out), 0o644); err != nil {
		return fmt.Errorf("write article: %w", err)
	}
	return nil
}
