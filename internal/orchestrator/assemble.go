package orchestrator

import (
	"sort"
	"time"
)

// Well-known context keys read during result assembly. Stages write these;
// the assembler extracts them into the structured result.
const (
	KeyVariants             = "variants"
	KeyHashtags             = "hashtags"
	KeyStrategy             = "strategy"
	KeyTrendingHashtags     = "trending_hashtags"
	KeyRelatedTopics        = "related_topics"
	KeyContentOpportunities = "content_opportunities"
	KeyMarketIntelligence   = "market_intelligence"
	KeyBrandFeedback        = "brand_feedback"
	KeyOptimization         = "optimization"
	KeyRecommendations      = "overall_recommendations"
	KeyRankingScores        = "ranking_scores"
	KeyBestVariant          = "best_variant"
)

// ResearchSummary groups the research stage's contributions.
type ResearchSummary struct {
	TrendingHashtags     []string `json:"trendingHashtags,omitempty"`
	RelatedTopics        []string `json:"relatedTopics,omitempty"`
	ContentOpportunities []string `json:"contentOpportunities,omitempty"`
	MarketIntelligence   string   `json:"marketIntelligence,omitempty"`
}

// OrchestratorResult is the final aggregate of one workflow invocation.
type OrchestratorResult struct {
	RunID   string `json:"runId"`
	Success bool   `json:"success"`

	// Degraded is set when best-candidate selection fell back to the
	// pipeline's default because no ranking scores were available.
	Degraded bool `json:"degraded,omitempty"`

	Candidates    map[string]string  `json:"candidates,omitempty"`
	BestCandidate string             `json:"bestCandidate,omitempty"`
	RankingScores map[string]float64 `json:"rankingScores,omitempty"`

	Hashtags        string          `json:"hashtags,omitempty"`
	Strategy        map[string]any  `json:"strategy,omitempty"`
	Research        ResearchSummary `json:"research"`
	BrandFeedback   map[string]any  `json:"brandFeedback,omitempty"`
	Optimization    map[string]any  `json:"optimization,omitempty"`
	Recommendations []string        `json:"recommendations,omitempty"`

	TotalTime       time.Duration  `json:"totalTime"`
	StagesCompleted []string       `json:"stagesCompleted"`
	FailedStages    []StageFailure `json:"failedStages,omitempty"`
	ErrorMessage    string         `json:"errorMessage,omitempty"`
}

// ResultAssembler extracts well-known keys from the final context into an
// OrchestratorResult, including best-candidate selection.
type ResultAssembler struct {
	// CandidateOrder is the declared candidate ordering used for stable
	// tie-breaking.
	CandidateOrder []string

	// DefaultCandidate is used when no scores are available.
	DefaultCandidate string
}

// Assemble builds the final result from the merged context. Success reflects
// whether any candidate exists, not whether every stage succeeded.
func (a ResultAssembler) Assemble(wc *WorkflowContext, completed []string, failures []StageFailure, total time.Duration) *OrchestratorResult {
	result := &OrchestratorResult{
		TotalTime:       total,
		StagesCompleted: completed,
		FailedStages:    failures,
	}

	candidates := wc.StringMap(KeyVariants)
	if len(candidates) == 0 {
		result.Success = false
		result.ErrorMessage = "no post variants were generated"
		return result
	}

	result.Success = true
	result.Candidates = candidates
	result.RankingScores = wc.FloatMap(KeyRankingScores)
	result.BestCandidate, result.Degraded = a.selectBest(candidates, result.RankingScores)

	result.Hashtags = wc.String(KeyHashtags)
	result.Strategy = wc.Map(KeyStrategy)
	result.Research = ResearchSummary{
		TrendingHashtags:     wc.StringSlice(KeyTrendingHashtags),
		RelatedTopics:        wc.StringSlice(KeyRelatedTopics),
		ContentOpportunities: wc.StringSlice(KeyContentOpportunities),
		MarketIntelligence:   wc.String(KeyMarketIntelligence),
	}
	result.BrandFeedback = wc.Map(KeyBrandFeedback)
	result.Optimization = wc.Map(KeyOptimization)
	result.Recommendations = wc.StringSlice(KeyRecommendations)

	return result
}

// selectBest picks the candidate with the highest score. Ties resolve to the
// candidate appearing first in the declared order; candidates outside the
// declared order are considered afterwards in sorted-name order so selection
// stays deterministic. When no scored candidate exists the pipeline default
// is returned with degraded=true.
func (a ResultAssembler) selectBest(candidates map[string]string, scores map[string]float64) (string, bool) {
	best := ""
	bestScore := 0.0

	for _, name := range a.rankingOrder(candidates) {
		score, scored := scores[name]
		if _, exists := candidates[name]; !exists || !scored {
			continue
		}
		if best == "" || score > bestScore {
			best = name
			bestScore = score
		}
	}

	if best != "" {
		return best, false
	}

	// No usable scores: fall back to the configured default, or failing
	// that the first declared candidate that was actually generated.
	if _, ok := candidates[a.DefaultCandidate]; ok {
		return a.DefaultCandidate, true
	}
	for _, name := range a.rankingOrder(candidates) {
		if _, ok := candidates[name]; ok {
			return name, true
		}
	}
	return "", true
}

// rankingOrder returns the declared candidate order followed by any extra
// candidate names (sorted) that the pipeline did not declare.
func (a ResultAssembler) rankingOrder(candidates map[string]string) []string {
	declared := make(map[string]bool, len(a.CandidateOrder))
	order := make([]string, 0, len(candidates))
	for _, name := range a.CandidateOrder {
		declared[name] = true
		order = append(order, name)
	}

	var extras []string
	for name := range candidates {
		if !declared[name] {
			extras = append(extras, name)
		}
	}
	sort.Strings(extras)
	return append(order, extras...)
}
