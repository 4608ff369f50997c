// Package trends recommends hashtags, related topics, and content
// opportunities for a topic, combining a curated evergreen hashtag map with
// optional inference-backend enrichment.
package trends

import (
	"context"
	"fmt"
	"strings"

	"github.com/dusk-indust/contentstudio/internal/llm"
)

// Analysis is the outcome of analyzing one topic.
type Analysis struct {
	Topic                string
	TrendingHashtags     []string
	RelatedTopics        []string
	ContentOpportunities []string
	AudienceInterests    []string
	RecommendedTone      string
	BestContentType      string
	TrendScore           float64
}

// hashtagMap is the curated evergreen hashtag map, supplemented by the
// inference backend when it yields too few matches.
var hashtagMap = map[string][]string{
	"ai":               {"#AI", "#ArtificialIntelligence", "#MachineLearning", "#DeepLearning", "#GenAI"},
	"machine learning": {"#MachineLearning", "#ML", "#DataScience", "#AI", "#DeepLearning"},
	"startup":          {"#Startup", "#Entrepreneurship", "#Founder", "#Building", "#TechStartup"},
	"python":           {"#Python", "#Programming", "#Coding", "#SoftwareDevelopment", "#Developer"},
	"go":               {"#GoLang", "#Programming", "#Backend", "#SoftwareEngineering", "#Developer"},
	"cloud":            {"#Cloud", "#AWS", "#Azure", "#GCP", "#CloudComputing", "#DevOps"},
	"web":              {"#WebDev", "#Frontend", "#FullStack", "#JavaScript", "#React"},
	"data":             {"#DataScience", "#Analytics", "#BigData", "#DataEngineering", "#SQL"},
	"career":           {"#CareerGrowth", "#JobSearch", "#ProfessionalDevelopment", "#LinkedIn"},
	"leadership":       {"#Leadership", "#Management", "#CXO", "#ExecutiveCoach"},
	"product":          {"#ProductManagement", "#ProductDesign", "#UX", "#AgileProduct"},
	"finance":          {"#FinTech", "#Finance", "#Investing", "#Blockchain", "#Crypto"},
	"marketing":        {"#DigitalMarketing", "#ContentMarketing", "#SEO", "#GrowthHacking"},
	"ux":               {"#UX", "#UIDesign", "#UserExperience", "#Figma", "#DesignThinking"},
	"open source":      {"#OpenSource", "#GitHub", "#DevCommunity", "#Contributors"},
	"llm":              {"#LLM", "#GenAI", "#ChatGPT", "#PromptEngineering", "#AI"},
	"devops":           {"#DevOps", "#CI_CD", "#Docker", "#Kubernetes", "#SRE"},
	"security":         {"#CyberSecurity", "#InfoSec", "#ZeroTrust", "#SIEM"},
}

var genericHashtags = []string{"#Innovation", "#Tech", "#FutureOfWork", "#Learning", "#GrowthMindset"}

// hotKeywords drive the heuristic trend score.
var hotKeywords = []string{"ai", "llm", "genai", "gpt", "startup", "saas", "cloud native"}

// Analyzer recommends hashtags and trend metadata for content topics.
// The client is optional; without it the analyzer is purely heuristic.
type Analyzer struct {
	client llm.Client
}

// NewAnalyzer creates an Analyzer backed by the given inference client,
// which may be nil.
func NewAnalyzer(client llm.Client) *Analyzer {
	return &Analyzer{client: client}
}

// Analyze produces trend recommendations for a topic.
func (a *Analyzer) Analyze(ctx context.Context, topic string) (*Analysis, error) {
	if strings.TrimSpace(topic) == "" {
		return nil, fmt.Errorf("trends: empty topic")
	}

	return &Analysis{
		Topic:                topic,
		TrendingHashtags:     a.hashtags(ctx, topic),
		RelatedTopics:        a.relatedTopics(ctx, topic),
		ContentOpportunities: contentOpportunities(topic),
		AudienceInterests:    []string{"practical tips", "real-world examples", "career impact", "tools & resources"},
		RecommendedTone:      recommendTone(topic),
		BestContentType:      recommendContentType(topic),
		TrendScore:           estimateTrendScore(topic),
	}, nil
}

// Hashtags returns up to limit recommended hashtags for a topic.
func (a *Analyzer) Hashtags(ctx context.Context, topic string, limit int) []string {
	tags := a.hashtags(ctx, topic)
	if limit > 0 && len(tags) > limit {
		tags = tags[:limit]
	}
	return tags
}

func (a *Analyzer) hashtags(ctx context.Context, topic string) []string {
	var base []string
	topicLower := strings.ToLower(topic)
	for key, tags := range hashtagMap {
		if strings.Contains(topicLower, key) || strings.Contains(key, topicLower) {
			base = append(base, tags...)
		}
	}
	if len(base) == 0 {
		base = append(base, genericHashtags...)
	}

	// Ask the backend for more only when the curated map came up short.
	if a.client != nil && len(base) < 5 {
		res, err := a.client.Generate(ctx, llm.Request{
			Prompt:       fmt.Sprintf("Suggest 8 relevant LinkedIn hashtags for the topic: %s. Return one per line.", topic),
			SystemPrompt: "You are a LinkedIn hashtag expert.",
		})
		if err == nil {
			for _, line := range strings.Split(res.Content, "\n") {
				tag := strings.TrimSpace(line)
				if tag == "" {
					continue
				}
				if !strings.HasPrefix(tag, "#") {
					tag = "#" + tag
				}
				base = append(base, tag)
			}
		}
	}

	return dedupe(base, 12)
}

func (a *Analyzer) relatedTopics(ctx context.Context, topic string) []string {
	if a.client != nil {
		res, err := a.client.Generate(ctx, llm.Request{
			Prompt:       fmt.Sprintf("List 5 related topics to %q for LinkedIn content. One per line.", topic),
			SystemPrompt: "Be concise.",
		})
		if err == nil {
			var related []string
			for _, line := range strings.Split(res.Content, "\n") {
				cleaned := strings.TrimLeft(strings.TrimSpace(line), "-•0123456789. ")
				if cleaned != "" {
					related = append(related, cleaned)
				}
				if len(related) == 5 {
					break
				}
			}
			if len(related) > 0 {
				return related
			}
		}
	}
	return []string{
		topic + " best practices",
		topic + " trends",
		topic + " for beginners",
	}
}

func contentOpportunities(topic string) []string {
	return []string{
		fmt.Sprintf("Share your %s journey", topic),
		fmt.Sprintf("Debunk common %s myths", topic),
		fmt.Sprintf("Teach a %s framework", topic),
		fmt.Sprintf("Celebrate a %s win", topic),
		fmt.Sprintf("Start a %s discussion", topic),
	}
}

func recommendTone(topic string) string {
	topicLower := strings.ToLower(topic)
	switch {
	case containsAny(topicLower, "startup", "founder", "build"):
		return "enthusiastic"
	case containsAny(topicLower, "leadership", "management", "career"):
		return "thoughtful"
	case containsAny(topicLower, "hot take", "opinion", "debate"):
		return "bold"
	}
	return "professional"
}

func recommendContentType(topic string) string {
	topicLower := strings.ToLower(topic)
	switch {
	case containsAny(topicLower, "learn", "how to", "guide", "tutorial"):
		return "educational"
	case containsAny(topicLower, "built", "launched", "shipped"):
		return "build_in_public"
	case containsAny(topicLower, "opinion", "hot take", "unpopular"):
		return "hot_take"
	}
	return "educational"
}

// estimateTrendScore returns a heuristic 0-1 score from hot keyword matches.
func estimateTrendScore(topic string) float64 {
	topicLower := strings.ToLower(topic)
	matches := 0
	for _, k := range hotKeywords {
		if strings.Contains(topicLower, k) {
			matches++
		}
	}
	score := 0.4 + float64(matches)*0.15
	if score > 1.0 {
		score = 1.0
	}
	return score
}

func containsAny(s string, subs ...string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}

// dedupe removes duplicates preserving first-seen order, capped at limit.
func dedupe(tags []string, limit int) []string {
	seen := make(map[string]bool, len(tags))
	out := make([]string, 0, len(tags))
	for _, t := range tags {
		if seen[t] {
			continue
		}
		seen[t] = true
		out = append(out, t)
		if len(out) == limit {
			break
		}
	}
	return out
}
