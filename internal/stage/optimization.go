package stage

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/dusk-indust/contentstudio/internal/engage"
	"github.com/dusk-indust/contentstudio/internal/orchestrator"
)

// OptimizationStage predicts engagement per variant, ranks the candidates,
// optimizes hashtags and produces the final recommendations.
type OptimizationStage struct {
	predictor *engage.Predictor
	sentiment *engage.SentimentAnalyzer
}

func NewOptimizationStage(predictor *engage.Predictor, sentiment *engage.SentimentAnalyzer) *OptimizationStage {
	return &OptimizationStage{predictor: predictor, sentiment: sentiment}
}

func (s *OptimizationStage) Name() string { return "optimization" }

func (s *OptimizationStage) Run(ctx context.Context, wc *orchestrator.WorkflowContext) (*orchestrator.StageResult, error) {
	start := time.Now()

	variants := wc.StringMap(orchestrator.KeyVariants)
	if len(variants) == 0 {
		return orchestrator.Failure("no variants to optimize", time.Since(start)), nil
	}

	hashtags := wc.String(orchestrator.KeyHashtags)
	strategy := wc.Map(orchestrator.KeyStrategy)

	optimization := make(map[string]any, len(variants))
	scores := make(map[string]float64, len(variants))
	best := ""
	bestScore := -1.0
	for _, name := range rankedNames(variants) {
		post := variants[name]
		pred := s.predictor.Predict(ctx, post, hashtags)
		sent := s.sentiment.Analyze(ctx, post)

		tips := dedupeStrings(append(append([]string{}, pred.OptimizationTips...), sent.Improvements...), 5)
		scores[name] = pred.ViralityScore
		optimization[name] = map[string]any{
			"engagement": map[string]any{
				"impressions":     pred.EstimatedImpressions,
				"likes":           pred.EstimatedLikes,
				"comments":        pred.EstimatedComments,
				"engagement_rate": pred.EngagementRate,
				"virality_score":  pred.ViralityScore,
				"reach_tier":      pred.ReachTier,
				"best_times":      pred.BestPostingTimes,
				"best_days":       pred.BestPostingDays,
			},
			"sentiment": map[string]any{
				"tone":                sent.Tone,
				"sentiment":           sent.Overall,
				"audience_perception": sent.AudiencePerception,
			},
			"optimization_tips": tips,
			"virality_score":    pred.ViralityScore,
		}

		// Strict comparison: ties resolve to the earlier candidate.
		if pred.ViralityScore > bestScore {
			best = name
			bestScore = pred.ViralityScore
		}
	}

	optimized := optimizeHashtags(hashtags, strategy)
	recommendations := buildRecommendations(optimization, best, strategy)

	return &orchestrator.StageResult{
		Success: true,
		ContextUpdates: map[string]any{
			orchestrator.KeyHashtags:        optimized,
			orchestrator.KeyOptimization:    optimization,
			orchestrator.KeyRankingScores:   scores,
			orchestrator.KeyBestVariant:     best,
			KeyBestVariantScore:             round2(bestScore),
			orchestrator.KeyRecommendations: recommendations,
		},
		Summary: fmt.Sprintf("Optimization complete. Best variant: %s (score %.1f), %d hashtags",
			best, bestScore, len(strings.Fields(optimized))),
		ProcessingTime: time.Since(start),
	}, nil
}

// rankedNames iterates variants in the declared order first so best-variant
// ties stay deterministic, then any extras alphabetically.
func rankedNames(variants map[string]string) []string {
	declared := make(map[string]bool, len(VariantNames))
	var names []string
	for _, name := range VariantNames {
		declared[name] = true
		if _, ok := variants[name]; ok {
			names = append(names, name)
		}
	}
	var extras []string
	for name := range variants {
		if !declared[name] {
			extras = append(extras, name)
		}
	}
	sort.Strings(extras)
	return append(names, extras...)
}

// optimizeHashtags appends up to two pillar tags and caps the set at 8.
func optimizeHashtags(hashtags string, strategy map[string]any) string {
	tags := strings.Fields(hashtags)
	pillars, _ := strategy["content_pillars"].([]string)
	if len(pillars) > 2 {
		pillars = pillars[:2]
	}
	for _, pillar := range pillars {
		tag := "#" + capitalize(strings.ReplaceAll(pillar, " ", ""))
		if !containsString(tags, tag) {
			tags = append(tags, tag)
		}
	}
	if len(tags) > 8 {
		tags = tags[:8]
	}
	return strings.Join(tags, " ")
}

func buildRecommendations(optimization map[string]any, best string, strategy map[string]any) []string {
	recs := []string{
		fmt.Sprintf("Use the %q variant for best expected engagement", best),
		engage.OptimalTime(time.Now().Hour()),
	}
	if data, ok := optimization[best].(map[string]any); ok {
		if tips, ok := data["optimization_tips"].([]string); ok {
			if len(tips) > 3 {
				tips = tips[:3]
			}
			recs = append(recs, tips...)
		}
	}
	if cta, ok := strategy["call_to_action"].(string); ok && cta != "" {
		recs = append(recs, "CTA: "+cta)
	}
	return recs
}

func dedupeStrings(items []string, limit int) []string {
	seen := make(map[string]bool, len(items))
	var out []string
	for _, item := range items {
		if item == "" || seen[item] {
			continue
		}
		seen[item] = true
		out = append(out, item)
		if len(out) == limit {
			break
		}
	}
	return out
}

func containsString(list []string, item string) bool {
	for _, v := range list {
		if v == item {
			return true
		}
	}
	return false
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
