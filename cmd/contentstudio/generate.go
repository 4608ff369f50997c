package main

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/dusk-indust/contentstudio/internal/brand"
	"github.com/dusk-indust/contentstudio/internal/export"
	"github.com/dusk-indust/contentstudio/internal/history"
	"github.com/dusk-indust/contentstudio/internal/orchestrator"
	"github.com/dusk-indust/contentstudio/internal/stage"
)

func newGenerateCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Run the content pipeline and print the best post",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := loadConfig(cmd)
			if err != nil {
				return err
			}

			topic, _ := cmd.Flags().GetString("topic")
			text, _ := cmd.Flags().GetString("text")
			files, _ := cmd.Flags().GetStringSlice("file")
			urls, _ := cmd.Flags().GetStringSlice("url")
			tone, _ := cmd.Flags().GetString("tone")
			audience, _ := cmd.Flags().GetString("audience")
			profileName, _ := cmd.Flags().GetString("brand-profile")
			jsonOut, _ := cmd.Flags().GetBool("json")
			mdOut, _ := cmd.Flags().GetBool("markdown")
			outputDir, _ := cmd.Flags().GetString("output-dir")

			if topic == "" && text == "" && len(files) == 0 && len(urls) == 0 {
				return fmt.Errorf("provide at least one of --topic, --text, --file or --url")
			}

			initial := map[string]any{}
			if topic != "" {
				initial[stage.KeyTopic] = topic
			}
			if text != "" {
				initial[stage.KeyText] = text
			} else if topic != "" {
				initial[stage.KeyText] = topic
			}
			if len(files) > 0 {
				initial[stage.KeyFilePaths] = files
			}
			if len(urls) > 0 {
				initial[stage.KeyURLs] = urls
			}
			if tone == "" {
				tone = cfg.Tone
			}
			if tone != "" {
				initial[stage.KeyTone] = tone
			}
			if audience == "" {
				audience = cfg.Audience
			}
			if audience != "" {
				initial[stage.KeyAudience] = audience
			}
			if profileName == "" {
				profileName = cfg.BrandProfile
			}
			if profileName != "" {
				initial[stage.KeyBrandProfile] = profileName
			}

			client := newClient(cfg)
			if client == nil {
				logger.Warn("no API key configured, using heuristic fallbacks",
					"env", "GROQ_API_KEY or OPENAI_API_KEY")
			}

			profiles, err := brand.NewStore(cfg.BrandDBPath())
			if err != nil {
				return fmt.Errorf("open brand store: %w", err)
			}
			defer profiles.Close()

			runs, err := history.NewStore(cfg.HistoryDBPath())
			if err != nil {
				return fmt.Errorf("open history store: %w", err)
			}
			defer runs.Close()

			opts := []orchestrator.Option{
				orchestrator.WithLogger(logger),
				orchestrator.WithStatusFunc(func(s orchestrator.WorkflowStatus) {
					fmt.Fprintln(os.Stderr, orchestrator.FormatStatus(s))
				}),
			}
			if cfg.StageTimeout.Std() > 0 {
				opts = append(opts, orchestrator.WithStageTimeout(cfg.StageTimeout.Std()))
			}

			orch := orchestrator.New(stage.DefaultPipeline(client, profiles), opts...)
			defer orch.Close()

			result := orch.Execute(cmd.Context(), initial)

			recordTopic := topic
			if recordTopic == "" {
				recordTopic = clipLine(text, 80)
			}
			if err := runs.Record(recordTopic, result); err != nil {
				logger.Warn("record run", "error", err)
			}

			printResult(result)

			if outputDir == "" {
				outputDir = cfg.OutputDir
			}
			if outputDir == "" {
				outputDir = "output"
			}
			if jsonOut {
				path, err := export.WriteJSON(outputDir, recordTopic, result)
				if err != nil {
					return fmt.Errorf("export json: %w", err)
				}
				fmt.Printf("\nWrote %s\n", path)
			}
			if mdOut {
				path, err := export.WriteMarkdown(outputDir, recordTopic, result)
				if err != nil {
					return fmt.Errorf("export markdown: %w", err)
				}
				fmt.Printf("\nWrote %s\n", path)
			}

			if !result.Success {
				return fmt.Errorf("pipeline failed: %s", result.ErrorMessage)
			}
			return nil
		},
	}

	cmd.Flags().String("topic", "", "topic to write about")
	cmd.Flags().String("text", "", "raw text input")
	cmd.Flags().StringSlice("file", nil, "file to extract content from (repeatable)")
	cmd.Flags().StringSlice("url", nil, "URL to extract content from (repeatable)")
	cmd.Flags().String("tone", "", "desired tone (professional, inspirational, ...)")
	cmd.Flags().String("audience", "", "target audience")
	cmd.Flags().String("brand-profile", "", "stored brand profile to apply")
	cmd.Flags().Bool("json", false, "write full result as JSON to the output dir")
	cmd.Flags().Bool("markdown", false, "write a markdown report to the output dir")
	cmd.Flags().String("output-dir", "", "directory for exported files")
	return cmd
}

func printResult(result *orchestrator.OrchestratorResult) {
	if !result.Success {
		fmt.Printf("\nRun %s failed: %s\n", result.RunID, result.ErrorMessage)
		return
	}

	fmt.Printf("\nRun %s finished in %s", result.RunID, result.TotalTime.Round(10*time.Millisecond))
	if result.Degraded {
		fmt.Print(" (degraded)")
	}
	fmt.Println()

	if len(result.FailedStages) > 0 {
		for _, f := range result.FailedStages {
			fmt.Printf("  stage %s failed: %s\n", f.Stage, f.Message)
		}
	}

	if best, ok := result.Candidates[result.BestCandidate]; ok {
		fmt.Printf("\n=== Best variant: %s ===\n\n%s\n", result.BestCandidate, best)
	}

	if len(result.RankingScores) > 0 {
		rows := make([][]string, 0, len(result.RankingScores))
		for _, name := range rankingNames(result) {
			rows = append(rows, []string{name, fmt.Sprintf("%.2f", result.RankingScores[name])})
		}
		fmt.Println()
		fmt.Println(renderTable(
			[]string{"Variant", "Score"},
			rows,
			[]columnAlignment{alignLeft, alignRight},
		))
	}

	if result.Hashtags != "" {
		fmt.Printf("\nHashtags: %s\n", result.Hashtags)
	}
	if len(result.Recommendations) > 0 {
		fmt.Println("\nRecommendations:")
		for _, rec := range result.Recommendations {
			fmt.Printf("  - %s\n", rec)
		}
	}
}

// rankingNames orders scored variants best first, keeping the declared
// variant order for ties.
func rankingNames(result *orchestrator.OrchestratorResult) []string {
	names := make([]string, 0, len(result.RankingScores))
	if _, ok := result.RankingScores[result.BestCandidate]; ok {
		names = append(names, result.BestCandidate)
	}
	for _, name := range stage.VariantNames {
		if name == result.BestCandidate {
			continue
		}
		if _, ok := result.RankingScores[name]; ok {
			names = append(names, name)
		}
	}
	for name := range result.RankingScores {
		if !containsName(names, name) {
			names = append(names, name)
		}
	}
	return names
}

func containsName(names []string, name string) bool {
	for _, n := range names {
		if n == name {
			return true
		}
	}
	return false
}

func clipLine(s string, max int) string {
	s = strings.TrimSpace(strings.ReplaceAll(s, "\n", " "))
	if len(s) <= max {
		return s
	}
	return s[:max]
}
