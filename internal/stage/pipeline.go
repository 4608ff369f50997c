package stage

import (
	"github.com/dusk-indust/contentstudio/internal/brand"
	"github.com/dusk-indust/contentstudio/internal/engage"
	"github.com/dusk-indust/contentstudio/internal/extract"
	"github.com/dusk-indust/contentstudio/internal/llm"
	"github.com/dusk-indust/contentstudio/internal/orchestrator"
	"github.com/dusk-indust/contentstudio/internal/trends"
)

// DefaultCandidate is selected when no ranking scores survive the run.
const DefaultCandidate = "storyteller"

// DefaultPipeline wires the six standard stages with their declared progress
// schedule. The client may be nil; every stage degrades to heuristics.
// The profile loader may be nil when no brand store is configured.
func DefaultPipeline(client llm.Client, profiles ProfileLoader) *orchestrator.PipelineDefinition {
	brandAnalyzer := brand.NewAnalyzer(client)

	return &orchestrator.PipelineDefinition{
		Stages: []orchestrator.StageEntry{
			{Name: "input", Stage: NewInputStage(extract.New(client), client), WeightBefore: 0, WeightAfter: 0.10},
			{Name: "research", Stage: NewResearchStage(trends.NewAnalyzer(client), client), WeightBefore: 0.10, WeightAfter: 0.20},
			{Name: "strategy", Stage: NewStrategyStage(client), WeightBefore: 0.20, WeightAfter: 0.30},
			{Name: "generation", Stage: NewGenerationStage(client), WeightBefore: 0.30, WeightAfter: 0.55},
			{Name: "brand-voice", Stage: NewBrandVoiceStage(brandAnalyzer, profiles, client), WeightBefore: 0.55, WeightAfter: 0.75},
			{Name: "optimization", Stage: NewOptimizationStage(engage.NewPredictor(client), engage.NewSentimentAnalyzer(client)), WeightBefore: 0.75, WeightAfter: 1.0},
		},
		CandidateOrder:   VariantNames,
		DefaultCandidate: DefaultCandidate,
	}
}
