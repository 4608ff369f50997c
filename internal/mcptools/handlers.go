package mcptools

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/dusk-indust/contentstudio/internal/history"
	"github.com/dusk-indust/contentstudio/internal/orchestrator"
	"github.com/dusk-indust/contentstudio/internal/stage"
)

// RunStore is the slice of the history store the service needs. The sqlite
// store satisfies it; the store is optional.
type RunStore interface {
	Record(topic string, result *orchestrator.OrchestratorResult) error
	Get(runID string) (*orchestrator.OrchestratorResult, error)
	List(limit int) ([]*history.Entry, error)
}

// Service handles MCP tool calls for the content studio server mode.
type Service struct {
	def   *orchestrator.PipelineDefinition
	store RunStore
	opts  []orchestrator.Option
}

// NewService creates a Service running the given pipeline. The store may be
// nil, in which case get_run and list_runs report nothing.
func NewService(def *orchestrator.PipelineDefinition, store RunStore, opts ...orchestrator.Option) *Service {
	return &Service{def: def, store: store, opts: opts}
}

// GeneratePost runs the full pipeline for one topic.
func (s *Service) GeneratePost(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input GeneratePostInput,
) (*mcp.CallToolResult, GeneratePostOutput, error) {
	if input.Topic == "" && len(input.URLs) == 0 && len(input.FilePaths) == 0 {
		return nil, GeneratePostOutput{}, fmt.Errorf("topic, urls or filePaths required")
	}

	initial := map[string]any{
		stage.KeyText:         input.Topic,
		stage.KeyURLs:         input.URLs,
		stage.KeyFilePaths:    input.FilePaths,
		stage.KeyTone:         input.Tone,
		stage.KeyAudience:     input.Audience,
		stage.KeyBrandProfile: input.BrandProfile,
	}

	result := orchestrator.New(s.def, s.opts...).Execute(ctx, initial)
	if s.store != nil {
		// History is best effort: a full disk must not hide the result.
		_ = s.store.Record(input.Topic, result)
	}

	return nil, toOutput(result), nil
}

// GetRun fetches a previously recorded run by id.
func (s *Service) GetRun(
	_ context.Context,
	_ *mcp.CallToolRequest,
	input GetRunInput,
) (*mcp.CallToolResult, GetRunOutput, error) {
	if s.store == nil {
		return nil, GetRunOutput{}, nil
	}
	result, err := s.store.Get(input.RunID)
	if err != nil {
		if errors.Is(err, history.ErrNotFound) {
			return nil, GetRunOutput{}, nil
		}
		return nil, GetRunOutput{}, err
	}
	output := toOutput(result)
	return nil, GetRunOutput{Found: true, Result: &output}, nil
}

// ListRuns lists recorded runs, newest first.
func (s *Service) ListRuns(
	_ context.Context,
	_ *mcp.CallToolRequest,
	input ListRunsInput,
) (*mcp.CallToolResult, ListRunsOutput, error) {
	if s.store == nil {
		return nil, ListRunsOutput{}, nil
	}
	entries, err := s.store.List(input.Limit)
	if err != nil {
		return nil, ListRunsOutput{}, err
	}

	output := ListRunsOutput{}
	for _, entry := range entries {
		output.Runs = append(output.Runs, RunSummary{
			RunID:       entry.RunID,
			Topic:       entry.Topic,
			BestVariant: entry.BestVariant,
			Success:     entry.Success,
			CreatedAt:   entry.CreatedAt.UTC().Format(time.RFC3339),
		})
	}
	return nil, output, nil
}

func toOutput(result *orchestrator.OrchestratorResult) GeneratePostOutput {
	output := GeneratePostOutput{
		RunID:           result.RunID,
		Success:         result.Success,
		Degraded:        result.Degraded,
		BestVariant:     result.BestCandidate,
		Post:            result.Candidates[result.BestCandidate],
		Variants:        result.Candidates,
		RankingScores:   result.RankingScores,
		Hashtags:        result.Hashtags,
		Recommendations: result.Recommendations,
		ErrorMessage:    result.ErrorMessage,
	}
	for _, failure := range result.FailedStages {
		output.FailedStages = append(output.FailedStages, failure.Stage+": "+failure.Message)
	}
	return output
}
