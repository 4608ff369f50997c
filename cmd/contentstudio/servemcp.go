package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/dusk-indust/contentstudio/internal/brand"
	"github.com/dusk-indust/contentstudio/internal/history"
	"github.com/dusk-indust/contentstudio/internal/mcptools"
	"github.com/dusk-indust/contentstudio/internal/orchestrator"
	"github.com/dusk-indust/contentstudio/internal/stage"
)

func newServeMCPCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "serve-mcp",
		Short: "Expose the pipeline as MCP tools over stdio",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := loadConfig(cmd)
			if err != nil {
				return err
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

			opts := []orchestrator.Option{orchestrator.WithLogger(logger)}
			if cfg.StageTimeout.Std() > 0 {
				opts = append(opts, orchestrator.WithStageTimeout(cfg.StageTimeout.Std()))
			}

			def := stage.DefaultPipeline(newClient(cfg), profiles)
			svc := mcptools.NewService(def, runs, opts...)

			logger.Info("serving MCP over stdio")
			return mcptools.RunStdio(cmd.Context(), mcptools.NewServer(svc))
		},
	}
}
