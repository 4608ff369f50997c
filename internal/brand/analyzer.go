// Package brand builds a personal brand voice profile from past posts and
// checks new drafts against it.
package brand

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/dusk-indust/contentstudio/internal/llm"
)

// Profile is the distilled brand DNA extracted from analyzed posts.
type Profile struct {
	Name             string   `json:"name"`
	DominantTone     string   `json:"dominant_tone"`
	VocabularyLevel  string   `json:"vocabulary_level"` // basic / intermediate / advanced
	AvgPostLength    int      `json:"avg_post_length"`
	UsesEmojis       bool     `json:"uses_emojis"`
	UsesStorytelling bool     `json:"uses_storytelling"`
	UsesLists        bool     `json:"uses_lists"`
	UsesQuestions    bool     `json:"uses_questions"`
	SignaturePhrases []string `json:"signature_phrases,omitempty"`
	CommonThemes     []string `json:"common_themes,omitempty"`
	HashtagStyle     string   `json:"hashtag_style"` // none / light / moderate / heavy
	AvgHashtagCount  float64  `json:"avg_hashtag_count"`
	WritingStyle     string   `json:"writing_style,omitempty"`
	VoiceSummary     string   `json:"voice_summary,omitempty"`
	ConsistencyScore float64  `json:"consistency_score"`
}

// Summary renders the profile as a one-line voice description for prompts.
func (p *Profile) Summary() string {
	if p.VoiceSummary != "" {
		return p.VoiceSummary
	}
	return fmt.Sprintf("Tone: %s, style: %s", p.DominantTone, p.WritingStyle)
}

// ConsistencyCheck reports how well a draft aligns with a brand profile.
type ConsistencyCheck struct {
	Score       float64  `json:"score"`
	Aligned     []string `json:"aligned,omitempty"`
	Deviations  []string `json:"deviations,omitempty"`
	Suggestions []string `json:"suggestions,omitempty"`
	OnBrand     bool     `json:"on_brand"`
}

var hashtagPattern = regexp.MustCompile(`#\w+`)

// Analyzer extracts brand DNA from post history. The inference client is
// optional, heuristics take over without one.
type Analyzer struct {
	client llm.Client
}

func NewAnalyzer(client llm.Client) *Analyzer {
	return &Analyzer{client: client}
}

// AnalyzePosts extracts a brand profile from past post texts.
func (a *Analyzer) AnalyzePosts(ctx context.Context, posts []string) (*Profile, error) {
	if len(posts) == 0 {
		return nil, errors.New("brand: no posts to analyze")
	}
	if a.client != nil {
		if profile, err := a.llmAnalyze(ctx, posts); err == nil {
			return profile, nil
		}
	}
	return heuristicProfile(posts), nil
}

// CheckConsistency scores how well a draft matches the profile. A nil
// profile yields a neutral result telling the caller to build one first.
func (a *Analyzer) CheckConsistency(ctx context.Context, post string, profile *Profile) *ConsistencyCheck {
	if profile == nil {
		return &ConsistencyCheck{
			Score:       0.5,
			OnBrand:     true,
			Suggestions: []string{"Build your brand profile first by analyzing past posts."},
		}
	}
	if a.client != nil {
		if check, err := a.llmCheck(ctx, post, profile); err == nil {
			return check
		}
	}
	return heuristicCheck(post, profile)
}

func (a *Analyzer) llmAnalyze(ctx context.Context, posts []string) (*Profile, error) {
	sample := strings.Join(posts[:minInt(len(posts), 10)], "\n\n---\n\n")
	if len(sample) > 5000 {
		sample = sample[:5000]
	}

	prompt := fmt.Sprintf(`Analyze these LinkedIn posts to extract a brand voice profile.

Posts:
%s

Return in EXACT format:
DOMINANT_TONE: [professional/casual/enthusiastic/thoughtful/bold]
VOCABULARY_LEVEL: [basic/intermediate/advanced]
AVG_POST_LENGTH: [number in words]
USES_EMOJIS: [yes/no]
USES_STORYTELLING: [yes/no]
USES_LISTS: [yes/no]
USES_QUESTIONS: [yes/no]
SIGNATURE_PHRASES: [pipe-separated phrases this author uses]
COMMON_THEMES: [comma-separated topics]
HASHTAG_STYLE: [none/light/moderate/heavy]
AVG_HASHTAG_COUNT: [number]
WRITING_STYLE: [one sentence description]
VOICE_SUMMARY: [2-3 sentence overall brand voice description]`, sample)

	result, err := a.client.Generate(ctx, llm.Request{
		Prompt:       prompt,
		SystemPrompt: "You are a brand voice analyst.",
	})
	if err != nil {
		return nil, err
	}
	return parseProfile(result.Content), nil
}

func (a *Analyzer) llmCheck(ctx context.Context, post string, profile *Profile) (*ConsistencyCheck, error) {
	draft := post
	if len(draft) > 1500 {
		draft = draft[:1500]
	}
	prompt := fmt.Sprintf(`Brand voice: %s
Tone: %s | Storytelling: %v | Lists: %v

New Post:
%s

Return:
SCORE: [0.0-1.0]
ALIGNED: [pipe-separated aligned elements]
DEVIATIONS: [pipe-separated deviations]
SUGGESTIONS: [pipe-separated improvement suggestions]`,
		profile.Summary(), profile.DominantTone, profile.UsesStorytelling, profile.UsesLists, draft)

	result, err := a.client.Generate(ctx, llm.Request{
		Prompt:       prompt,
		SystemPrompt: "You are a brand consistency expert.",
	})
	if err != nil {
		return nil, err
	}

	fields := keyValueLines(result.Content)
	score := parseScore(fields["SCORE"], 0.7)
	return &ConsistencyCheck{
		Score:       score,
		Aligned:     pipeList(fields["ALIGNED"]),
		Deviations:  pipeList(fields["DEVIATIONS"]),
		Suggestions: pipeList(fields["SUGGESTIONS"]),
		OnBrand:     score >= 0.6,
	}, nil
}

func parseProfile(raw string) *Profile {
	fields := keyValueLines(raw)
	get := func(key, fallback string) string {
		if v := fields[key]; v != "" {
			return v
		}
		return fallback
	}
	yes := func(key string) bool {
		return strings.EqualFold(fields[key], "yes")
	}

	return &Profile{
		DominantTone:     strings.ToLower(get("DOMINANT_TONE", "professional")),
		VocabularyLevel:  strings.ToLower(get("VOCABULARY_LEVEL", "intermediate")),
		AvgPostLength:    parseLength(get("AVG_POST_LENGTH", "250")),
		UsesEmojis:       yes("USES_EMOJIS"),
		UsesStorytelling: yes("USES_STORYTELLING"),
		UsesLists:        yes("USES_LISTS"),
		UsesQuestions:    yes("USES_QUESTIONS"),
		SignaturePhrases: pipeList(fields["SIGNATURE_PHRASES"]),
		CommonThemes:     commaList(fields["COMMON_THEMES"]),
		HashtagStyle:     strings.ToLower(get("HASHTAG_STYLE", "moderate")),
		AvgHashtagCount:  parseScoreRange(get("AVG_HASHTAG_COUNT", "3"), 3, 0, 30),
		WritingStyle:     fields["WRITING_STYLE"],
		VoiceSummary:     fields["VOICE_SUMMARY"],
		ConsistencyScore: 0.85,
	}
}

// heuristicProfile derives brand signals from the raw texts alone.
func heuristicProfile(posts []string) *Profile {
	totalWords := 0
	emojiPosts, questionPosts, listPosts, storyPosts := 0, 0, 0, 0
	totalHashtags := 0
	for _, p := range posts {
		totalWords += len(strings.Fields(p))
		if hasNonASCII(p) {
			emojiPosts++
		}
		if strings.Contains(p, "?") {
			questionPosts++
		}
		if strings.Contains(p, "•") || strings.Contains(p, "\n-") || strings.Contains(p, "\n1.") {
			listPosts++
		}
		lower := strings.ToLower(p)
		if strings.Contains(lower, "when") || strings.Contains(lower, "story") {
			storyPosts++
		}
		totalHashtags += len(hashtagPattern.FindAllString(p, -1))
	}

	n := len(posts)
	avgHashtags := float64(totalHashtags) / float64(n)
	style := "light"
	switch {
	case avgHashtags > 8:
		style = "heavy"
	case avgHashtags > 3:
		style = "moderate"
	}

	return &Profile{
		DominantTone:     "professional",
		VocabularyLevel:  "intermediate",
		AvgPostLength:    totalWords / n,
		UsesEmojis:       emojiPosts*10 > n*4,
		UsesQuestions:    questionPosts*10 > n*3,
		UsesLists:        listPosts*10 > n*3,
		UsesStorytelling: storyPosts > 0,
		AvgHashtagCount:  float64(int(avgHashtags*10+0.5)) / 10,
		HashtagStyle:     style,
		CommonThemes:     []string{"professional", "tech", "growth"},
		WritingStyle:     "Concise professional posts with practical insights.",
		VoiceSummary:     "Informed professional voice sharing actionable knowledge.",
		ConsistencyScore: 0.7,
	}
}

func heuristicCheck(post string, profile *Profile) *ConsistencyCheck {
	score := 0.5
	var aligned, deviations, suggestions []string

	if hasNonASCII(post) == profile.UsesEmojis {
		score += 0.1
		aligned = append(aligned, "Emoji usage matches brand style")
	} else {
		deviations = append(deviations, "Emoji usage differs from brand style")
		if profile.UsesEmojis {
			suggestions = append(suggestions, "Add a few emojis to match your brand style")
		} else {
			suggestions = append(suggestions, "Reduce emoji usage to match brand tone")
		}
	}

	words := len(strings.Fields(post))
	diff := words - profile.AvgPostLength
	if diff < 0 {
		diff = -diff
	}
	if float64(diff) < float64(profile.AvgPostLength)*0.4 {
		score += 0.1
		aligned = append(aligned, "Post length aligns with brand average")
	} else {
		deviations = append(deviations, "Post length differs from usual")
	}

	if len(suggestions) == 0 {
		suggestions = []string{"Great brand alignment!"}
	}
	return &ConsistencyCheck{
		Score:       score,
		Aligned:     aligned,
		Deviations:  deviations,
		Suggestions: suggestions,
		OnBrand:     score >= 0.5,
	}
}

func keyValueLines(raw string) map[string]string {
	fields := make(map[string]string)
	for _, line := range strings.Split(strings.TrimSpace(raw), "\n") {
		key, value, ok := strings.Cut(line, ":")
		if !ok {
			continue
		}
		fields[strings.ToUpper(strings.TrimSpace(key))] = strings.TrimSpace(value)
	}
	return fields
}

func pipeList(raw string) []string {
	return splitTrimmed(raw, "|")
}

func commaList(raw string) []string {
	return splitTrimmed(raw, ",")
}

func splitTrimmed(raw, sep string) []string {
	var out []string
	for _, item := range strings.Split(raw, sep) {
		if trimmed := strings.TrimSpace(item); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

func parseScore(s string, fallback float64) float64 {
	return parseScoreRange(s, fallback, 0, 1)
}

func parseScoreRange(s string, fallback, lo, hi float64) float64 {
	f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil || f < lo || f > hi {
		return fallback
	}
	return f
}

var digitPattern = regexp.MustCompile(`\d+`)

func parseLength(s string) int {
	m := digitPattern.FindString(s)
	if m == "" {
		return 250
	}
	n, err := strconv.Atoi(m)
	if err != nil {
		return 250
	}
	return n
}

func hasNonASCII(s string) bool {
	for _, r := range s {
		if r > 127 {
			return true
		}
	}
	return false
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}
