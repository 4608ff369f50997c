// Package engage scores draft posts for expected reach and emotional tone.
// Predictions are heuristic by default; an inference backend, when
// configured, replaces the heuristics with model output and the heuristics
// remain as the failure path.
package engage

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/dusk-indust/contentstudio/internal/llm"
)

// Prediction holds the expected engagement metrics for one post.
type Prediction struct {
	EstimatedImpressions string
	EstimatedLikes       string
	EstimatedComments    string
	EstimatedShares      string
	EngagementRate       string
	ViralityScore        float64 // 0-1
	ReachTier            string  // low / moderate / high / viral
	BestPostingTimes     []string
	BestPostingDays      []string
	FormatTips           []string
	OptimizationTips     []string
}

// viralitySignals weight the content features the heuristic scorer looks for.
var viralitySignals = map[string]float64{
	"question_mark":         0.15,
	"personal_story":        0.12,
	"numbered_list":         0.10,
	"emoji":                 0.05,
	"data_mention":          0.07,
	"call_to_action":        0.10,
	"hashtag_count_optimal": 0.08,
}

var (
	bestTimes = []string{"Tuesday 8-10 AM", "Wednesday 12-1 PM", "Thursday 9-11 AM", "Friday 7-9 AM"}
	bestDays  = []string{"Tuesday", "Wednesday", "Thursday"}
)

// Predictor forecasts post engagement. The client is optional.
type Predictor struct {
	client llm.Client
}

// NewPredictor creates a Predictor backed by the given inference client,
// which may be nil.
func NewPredictor(client llm.Client) *Predictor {
	return &Predictor{client: client}
}

// Predict forecasts engagement for a post. It never fails: when the backend
// is unavailable or returns garbage, the heuristic path is used.
func (p *Predictor) Predict(ctx context.Context, post, hashtags string) *Prediction {
	if p.client != nil {
		if pred, err := p.llmPredict(ctx, post, hashtags); err == nil {
			return pred
		}
	}
	return heuristicPredict(post, hashtags)
}

func (p *Predictor) llmPredict(ctx context.Context, post, hashtags string) (*Prediction, error) {
	prompt := fmt.Sprintf(`Analyze this LinkedIn post for engagement potential.

Post:
%s

Hashtags: %s

Return analysis in EXACT format:
IMPRESSIONS: [range]
LIKES: [range]
COMMENTS: [range]
SHARES: [range]
ENGAGEMENT_RATE: [percentage range]
VIRALITY_SCORE: [0.0-1.0]
REACH_TIER: [low/moderate/high/viral]
POSTING_TIMES: [comma-separated best times]
POSTING_DAYS: [comma-separated best days]
FORMAT_TIPS: [pipe-separated tips]
OPTIMIZATION_TIPS: [pipe-separated tips]`, clip(post, 2000), hashtags)

	res, err := p.client.Generate(ctx, llm.Request{
		Prompt:       prompt,
		SystemPrompt: "You are a LinkedIn analytics expert.",
	})
	if err != nil {
		return nil, err
	}
	return parsePrediction(res.Content), nil
}

// parsePrediction reads the KEY: value line format returned by the backend,
// falling back to sane defaults for missing fields.
func parsePrediction(raw string) *Prediction {
	fields := make(map[string]string)
	for _, line := range strings.Split(strings.TrimSpace(raw), "\n") {
		key, value, ok := strings.Cut(line, ":")
		if !ok {
			continue
		}
		fields[strings.ToUpper(strings.TrimSpace(key))] = strings.TrimSpace(value)
	}

	get := func(key, fallback string) string {
		if v := fields[key]; v != "" {
			return v
		}
		return fallback
	}

	score := safeFloat(get("VIRALITY_SCORE", "0.4"))
	return &Prediction{
		EstimatedImpressions: get("IMPRESSIONS", "500-2,000"),
		EstimatedLikes:       get("LIKES", "10-50"),
		EstimatedComments:    get("COMMENTS", "2-10"),
		EstimatedShares:      get("SHARES", "1-5"),
		EngagementRate:       get("ENGAGEMENT_RATE", "2-4%"),
		ViralityScore:        score,
		ReachTier:            strings.ToLower(get("REACH_TIER", "moderate")),
		BestPostingTimes:     splitList(get("POSTING_TIMES", ""), ",", bestTimes),
		BestPostingDays:      splitList(get("POSTING_DAYS", ""), ",", bestDays),
		FormatTips:           splitList(get("FORMAT_TIPS", ""), "|", nil),
		OptimizationTips:     splitList(get("OPTIMIZATION_TIPS", ""), "|", nil),
	}
}

// heuristicPredict scores a post from content signals alone.
func heuristicPredict(post, hashtags string) *Prediction {
	score := 0.0
	textLower := strings.ToLower(post)

	if strings.Contains(post, "?") {
		score += viralitySignals["question_mark"]
	}
	if containsAny(textLower, "i ", "my ", "we ", "our ") {
		score += viralitySignals["personal_story"]
	}
	if containsAny(post, "1.", "2.", "3.", "•", "- ") {
		score += viralitySignals["numbered_list"]
	}
	if containsAny(post, "\U0001f680", "\U0001f4a1", "✅", "\U0001f3af", "\U0001f525") {
		score += viralitySignals["emoji"]
	}
	if containsAny(textLower, "%", "study", "data", "research", "increase") {
		score += viralitySignals["data_mention"]
	}
	if containsAny(textLower, "comment", "share", "thoughts", "let me know") {
		score += viralitySignals["call_to_action"]
	}

	hashtagCount := len(strings.Fields(hashtags))
	if hashtagCount >= 3 && hashtagCount <= 8 {
		score += viralitySignals["hashtag_count_optimal"]
	}
	if score > 1.0 {
		score = 1.0
	}

	var tier, impressions, likes string
	switch {
	case score >= 0.7:
		tier, impressions, likes = "high", "5,000-20,000", "200-800"
	case score >= 0.45:
		tier, impressions, likes = "moderate", "1,000-5,000", "50-200"
	default:
		tier, impressions, likes = "low", "200-1,000", "10-50"
	}

	var tips []string
	if !strings.Contains(post, "?") {
		tips = append(tips, "Add a question to spark comments")
	}
	if score < 0.5 {
		tips = append(tips, "Include a personal story or lesson")
	}
	if hashtagCount < 3 {
		tips = append(tips, "Add 3-5 relevant hashtags")
	}
	tips = append(tips, "Post on Tuesday or Thursday morning for best reach")

	return &Prediction{
		EstimatedImpressions: impressions,
		EstimatedLikes:       likes,
		EstimatedComments:    "5-30",
		EstimatedShares:      "1-10",
		EngagementRate:       fmt.Sprintf("%.1f-%.1f%%", score*6, score*10),
		ViralityScore:        round2(score),
		ReachTier:            tier,
		BestPostingTimes:     bestTimes[:3],
		BestPostingDays:      bestDays,
		FormatTips: []string{
			"Use line breaks for mobile readability",
			"Keep under 1500 chars for best reach",
		},
		OptimizationTips: tips,
	}
}

// OptimalTime returns a best-single-posting-time recommendation.
func OptimalTime(hour int) string {
	if hour >= 7 && hour <= 9 {
		return "Now is a great time! Post within the next hour."
	}
	return "Best time: Tuesday or Thursday, 8-10 AM in your local timezone."
}

func splitList(raw, sep string, fallback []string) []string {
	var out []string
	for _, item := range strings.Split(raw, sep) {
		if trimmed := strings.TrimSpace(item); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	if len(out) == 0 {
		return fallback
	}
	return out
}

func safeFloat(s string) float64 {
	f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil || f < 0 || f > 1 {
		return 0.4
	}
	return f
}

func round2(f float64) float64 {
	return float64(int(f*100+0.5)) / 100
}

func containsAny(s string, subs ...string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}

func clip(s string, n int) string {
	if len(s) > n {
		return s[:n]
	}
	return s
}
