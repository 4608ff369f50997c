package engage

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/dusk-indust/contentstudio/internal/llm"
)

// Sentiment describes the emotional tone of a post.
type Sentiment struct {
	Overall             string // positive / neutral / negative
	Tone                string // inspiring, educational, professional, ...
	Confidence          float64
	DominantEmotions    []string
	AudiencePerception  string
	SuggestedFraming    string
	EngagementPotential string // low / medium / high
	Improvements        []string
}

// Keyword sets for the heuristic sentiment path.
var (
	positiveWords = wordSet("excited", "thrilled", "amazing", "incredible", "awesome", "love", "proud",
		"achieved", "won", "launched", "built", "shipped", "success", "milestone",
		"grateful", "inspired", "growth", "opportunity", "powerful", "breakthrough",
		"innovative", "transformative", "celebrate")

	negativeWords = wordSet("failed", "mistake", "wrong", "lost", "struggle", "difficult", "hard",
		"rejected", "quit", "impossible", "depressed", "frustrated",
		"broken", "worst", "mess", "disaster")

	engagingWords = wordSet("you", "your", "we", "our", "imagine", "how", "why",
		"question", "think", "believe", "share", "comment", "story")

	wordPattern = regexp.MustCompile(`\b\w+\b`)
)

// SentimentAnalyzer detects emotional tone. The client is optional.
type SentimentAnalyzer struct {
	client llm.Client
}

// NewSentimentAnalyzer creates a SentimentAnalyzer backed by the given
// inference client, which may be nil.
func NewSentimentAnalyzer(client llm.Client) *SentimentAnalyzer {
	return &SentimentAnalyzer{client: client}
}

// Analyze detects the sentiment of text, degrading to keyword heuristics
// when the backend is unavailable.
func (sa *SentimentAnalyzer) Analyze(ctx context.Context, text string) *Sentiment {
	if sa.client != nil {
		if s, err := sa.llmAnalyze(ctx, text); err == nil {
			return s
		}
	}
	return heuristicSentiment(text)
}

func (sa *SentimentAnalyzer) llmAnalyze(ctx context.Context, text string) (*Sentiment, error) {
	prompt := fmt.Sprintf(`Analyze the sentiment and emotional tone of this LinkedIn post text.

Text:
%s

Return your analysis in this exact format:
SENTIMENT: [positive/neutral/negative]
TONE: [one of: inspiring/educational/professional/urgent/celebratory/conversational/bold]
DOMINANT_EMOTIONS: [comma-separated emotions]
AUDIENCE_PERCEPTION: [one sentence how audience will perceive this]
SUGGESTED_FRAMING: [one sentence on how to improve framing]
ENGAGEMENT_POTENTIAL: [low/medium/high]
IMPROVEMENTS: [2-3 concrete improvements, pipe-separated]`, clip(text, 2000))

	res, err := sa.client.Generate(ctx, llm.Request{
		Prompt:       prompt,
		SystemPrompt: "You are a LinkedIn content psychologist.",
	})
	if err != nil {
		return nil, err
	}
	return parseSentiment(res.Content), nil
}

func parseSentiment(raw string) *Sentiment {
	s := &Sentiment{
		Overall:             "neutral",
		Tone:                "professional",
		EngagementPotential: "medium",
		Confidence:          0.85,
	}

	for _, line := range strings.Split(strings.TrimSpace(raw), "\n") {
		key, value, ok := strings.Cut(strings.TrimSpace(line), ":")
		if !ok {
			continue
		}
		value = strings.TrimSpace(value)
		switch strings.ToUpper(strings.TrimSpace(key)) {
		case "SENTIMENT":
			s.Overall = strings.ToLower(value)
		case "TONE":
			s.Tone = strings.ToLower(value)
		case "DOMINANT_EMOTIONS":
			s.DominantEmotions = splitList(value, ",", nil)
		case "AUDIENCE_PERCEPTION":
			s.AudiencePerception = value
		case "SUGGESTED_FRAMING":
			s.SuggestedFraming = value
		case "ENGAGEMENT_POTENTIAL":
			s.EngagementPotential = strings.ToLower(value)
		case "IMPROVEMENTS":
			s.Improvements = splitList(value, "|", nil)
		}
	}
	return s
}

func heuristicSentiment(text string) *Sentiment {
	words := make(map[string]bool)
	for _, w := range wordPattern.FindAllString(strings.ToLower(text), -1) {
		words[w] = true
	}

	posCount := countIn(words, positiveWords)
	negCount := countIn(words, negativeWords)
	engCount := countIn(words, engagingWords)

	var sentiment, tone string
	switch {
	case posCount > negCount+2:
		sentiment, tone = "positive", "inspiring"
	case negCount > posCount:
		sentiment, tone = "negative", "reflective"
	default:
		sentiment, tone = "neutral", "professional"
	}

	var engagement string
	switch {
	case engCount >= 3:
		engagement = "high"
	case engCount >= 1:
		engagement = "medium"
	default:
		engagement = "low"
	}

	return &Sentiment{
		Overall:             sentiment,
		Tone:                tone,
		Confidence:          0.6,
		DominantEmotions:    []string{sentiment, "authentic"},
		AudiencePerception:  fmt.Sprintf("Audience will find this %s.", tone),
		SuggestedFraming:    "Add a personal story element to increase authenticity.",
		EngagementPotential: engagement,
		Improvements: []string{
			"Add a question to invite discussion",
			"Use more personal pronouns",
		},
	}
}

func wordSet(words ...string) map[string]bool {
	set := make(map[string]bool, len(words))
	for _, w := range words {
		set[w] = true
	}
	return set
}

func countIn(words, set map[string]bool) int {
	n := 0
	for w := range words {
		if set[w] {
			n++
		}
	}
	return n
}
