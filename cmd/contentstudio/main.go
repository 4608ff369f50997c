package main

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/dusk-indust/contentstudio/internal/config"
	"github.com/dusk-indust/contentstudio/internal/llm"
)

// version is set by goreleaser at build time.
var version = "dev"

func main() {
	rootCmd := &cobra.Command{
		Use:   "contentstudio",
		Short: "Multi-stage content pipeline for LinkedIn posts",
		Long: "Content Studio runs a six-stage pipeline (input, research, strategy,\n" +
			"generation, brand voice, optimization) that turns a topic, documents or\n" +
			"URLs into ranked LinkedIn post variants.",
		SilenceUsage: true,
	}

	rootCmd.PersistentFlags().String("config-dir", ".", "directory holding contentstudio.yml")
	rootCmd.PersistentFlags().Bool("verbose", false, "enable debug logging")

	rootCmd.AddCommand(newGenerateCommand())
	rootCmd.AddCommand(newBrandCommand())
	rootCmd.AddCommand(newHistoryCommand())
	rootCmd.AddCommand(newServeMCPCommand())
	rootCmd.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print version and exit",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Println(version)
		},
	})

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// loadConfig resolves the project config and logger for a command.
func loadConfig(cmd *cobra.Command) (*config.ProjectConfig, *slog.Logger, error) {
	dir, _ := cmd.Flags().GetString("config-dir")
	cfg, err := config.Load(dir)
	if err != nil {
		return nil, nil, fmt.Errorf("load config: %w", err)
	}

	level := slog.LevelWarn
	if verbose, _ := cmd.Flags().GetBool("verbose"); verbose || cfg.Verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

	if err := os.MkdirAll(filepath.Dir(cfg.BrandDBPath()), 0o755); err != nil {
		return nil, nil, fmt.Errorf("create data dir: %w", err)
	}
	return cfg, logger, nil
}

// newClient builds the inference client from config and environment. It
// returns nil when no backend has credentials; the pipeline then runs on
// heuristics alone.
func newClient(cfg *config.ProjectConfig) llm.Client {
	primary := llm.Backend{
		Endpoint: cfg.Primary.Endpoint,
		Model:    cfg.Primary.Model,
		APIKey:   cfg.Primary.APIKey("GROQ_API_KEY"),
	}
	if primary.Endpoint == "" {
		primary.Endpoint = llm.DefaultPrimaryEndpoint
	}
	if primary.Model == "" {
		primary.Model = "llama-3.3-70b-versatile"
	}

	fallback := llm.Backend{
		Endpoint: cfg.Fallback.Endpoint,
		Model:    cfg.Fallback.Model,
		APIKey:   cfg.Fallback.APIKey("OPENAI_API_KEY"),
	}
	if fallback.Endpoint == "" {
		fallback.Endpoint = llm.DefaultFallbackEndpoint
	}
	if fallback.Model == "" {
		fallback.Model = "gpt-4o-mini"
	}

	if primary.APIKey == "" && fallback.APIKey == "" {
		return nil
	}

	opts := []llm.ClientOption{llm.WithFallback(fallback)}
	if cfg.Temperature > 0 {
		opts = append(opts, llm.WithTemperature(cfg.Temperature))
	}
	if cfg.MaxTokens > 0 {
		opts = append(opts, llm.WithMaxTokens(cfg.MaxTokens))
	}
	return llm.NewHTTPClient(primary, opts...)
}
