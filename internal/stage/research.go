package stage

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/dusk-indust/contentstudio/internal/llm"
	"github.com/dusk-indust/contentstudio/internal/orchestrator"
	"github.com/dusk-indust/contentstudio/internal/trends"
)

// ResearchStage gathers trend data, hashtags and market intelligence for
// the topic under discussion.
type ResearchStage struct {
	trends *trends.Analyzer
	client llm.Client
}

func NewResearchStage(analyzer *trends.Analyzer, client llm.Client) *ResearchStage {
	return &ResearchStage{trends: analyzer, client: client}
}

func (s *ResearchStage) Name() string { return "research" }

func (s *ResearchStage) Run(ctx context.Context, wc *orchestrator.WorkflowContext) (*orchestrator.StageResult, error) {
	start := time.Now()

	topic := wc.String(KeyTopic)
	if topic == "" {
		topic = wc.String(KeyText)
	}
	if topic == "" {
		topic = clip(wc.String(KeySynthesis), 100)
	}
	if strings.TrimSpace(topic) == "" {
		return orchestrator.Failure("no topic available for research", time.Since(start)), nil
	}

	analysis, err := s.trends.Analyze(ctx, topic)
	if err != nil {
		return orchestrator.Failure(fmt.Sprintf("trend analysis failed: %v", err), time.Since(start)), nil
	}

	marketIntel := s.probe(ctx, topic,
		"What content about this topic performs best on LinkedIn right now? Give 3 insights about what the audience currently craves.",
		"You are a LinkedIn content market researcher.")
	contentGaps := s.probe(ctx, topic,
		"What angles or perspectives are under-represented on LinkedIn for this topic? Give 3 content gap opportunities.",
		"You are a content strategy expert.")

	hashtags := analysis.TrendingHashtags
	if len(hashtags) > 8 {
		hashtags = hashtags[:8]
	}

	return &orchestrator.StageResult{
		Success: true,
		Output: map[string]any{
			KeyTopic:                              topic,
			orchestrator.KeyTrendingHashtags:      analysis.TrendingHashtags,
			orchestrator.KeyRelatedTopics:         analysis.RelatedTopics,
			orchestrator.KeyContentOpportunities:  analysis.ContentOpportunities,
			KeyTrendScore:                         analysis.TrendScore,
			KeyContentGaps:                        contentGaps,
			"audience_interests":                  analysis.AudienceInterests,
		},
		ContextUpdates: map[string]any{
			orchestrator.KeyHashtags:            strings.Join(hashtags, " "),
			KeyRecommendedTone:                  analysis.RecommendedTone,
			KeyBestContentType:                  analysis.BestContentType,
			orchestrator.KeyMarketIntelligence:  marketIntel,
		},
		Summary: fmt.Sprintf("Research complete for %q: %d hashtags, trend score %.1f",
			topic, len(analysis.TrendingHashtags), analysis.TrendScore),
		ProcessingTime: time.Since(start),
	}, nil
}

// probe runs one optional deep-research question. Best effort: empty when
// the backend is unavailable.
func (s *ResearchStage) probe(ctx context.Context, topic, question, system string) string {
	if s.client == nil {
		return ""
	}
	result, err := s.client.Generate(ctx, llm.Request{
		Prompt:       fmt.Sprintf("Topic: %s\n%s", topic, question),
		SystemPrompt: system,
	})
	if err != nil {
		return ""
	}
	return strings.TrimSpace(result.Content)
}
