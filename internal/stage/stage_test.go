package stage

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dusk-indust/contentstudio/internal/brand"
	"github.com/dusk-indust/contentstudio/internal/engage"
	"github.com/dusk-indust/contentstudio/internal/extract"
	"github.com/dusk-indust/contentstudio/internal/llm"
	"github.com/dusk-indust/contentstudio/internal/orchestrator"
	"github.com/dusk-indust/contentstudio/internal/trends"
)

// mockClient scripts backend responses per request.
type mockClient struct {
	respond func(req llm.Request) (*llm.Result, error)
}

func (m *mockClient) Generate(_ context.Context, req llm.Request) (*llm.Result, error) {
	return m.respond(req)
}

var _ llm.Client = (*mockClient)(nil)

func contextWith(t *testing.T, initial map[string]any) *orchestrator.WorkflowContext {
	t.Helper()
	return orchestrator.NewWorkflowContext(initial)
}

func TestInputStage_NoInput(t *testing.T) {
	s := NewInputStage(extract.New(nil), nil)

	result, err := s.Run(context.Background(), contextWith(t, nil))
	require.NoError(t, err)

	assert.False(t, result.Success)
	assert.Equal(t, "no input provided", result.ErrorMessage)
}

func TestInputStage_TextOnly(t *testing.T) {
	s := NewInputStage(extract.New(nil), nil)

	result, err := s.Run(context.Background(), contextWith(t, map[string]any{
		KeyText: "Remote work is reshaping engineering culture",
	}))
	require.NoError(t, err)
	require.True(t, result.Success)

	combined, _ := result.Output[KeyCombinedContent].(string)
	assert.Contains(t, combined, "[TEXT INPUT]")
	assert.Contains(t, combined, "Remote work")
	assert.Equal(t, []string{"text"}, result.Output[KeyContentTypes])
	assert.NotEmpty(t, result.Output[KeySynthesis])
	assert.Contains(t, result.ContextUpdates[KeyExtractedContent], "Remote work")
	assert.Contains(t, result.Summary, "1 input sources")
}

func TestInputStage_FanOut(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("<html><head><title>Report</title></head><body>Industry report body.</body></html>"))
	}))
	defer srv.Close()

	path := filepath.Join(t.TempDir(), "notes.txt")
	require.NoError(t, os.WriteFile(path, []byte("Internal launch notes."), 0o644))

	s := NewInputStage(extract.New(nil), nil)
	result, err := s.Run(context.Background(), contextWith(t, map[string]any{
		KeyText:      "topic seed",
		KeyFilePaths: []string{path},
		KeyURLs:      []string{srv.URL},
	}))
	require.NoError(t, err)
	require.True(t, result.Success)

	combined, _ := result.Output[KeyCombinedContent].(string)
	// Declaration order: text, then files, then urls.
	textAt := strings.Index(combined, "[TEXT INPUT]")
	fileAt := strings.Index(combined, "[FILE: ")
	urlAt := strings.Index(combined, "[URL: ")
	require.True(t, textAt >= 0 && fileAt >= 0 && urlAt >= 0)
	assert.Less(t, textAt, fileAt)
	assert.Less(t, fileAt, urlAt)
	assert.Equal(t, []string{"file", "text", "url"}, result.Output[KeyContentTypes])
}

func TestInputStage_BadSourcesTolerated(t *testing.T) {
	s := NewInputStage(extract.New(nil), nil)

	result, err := s.Run(context.Background(), contextWith(t, map[string]any{
		KeyText:      "still have text",
		KeyFilePaths: []string{"/does/not/exist.txt"},
	}))
	require.NoError(t, err)
	require.True(t, result.Success)
	assert.Equal(t, []string{"text"}, result.Output[KeyContentTypes])
}

func TestResearchStage(t *testing.T) {
	s := NewResearchStage(trends.NewAnalyzer(nil), nil)

	result, err := s.Run(context.Background(), contextWith(t, map[string]any{
		KeyText: "artificial intelligence in production",
	}))
	require.NoError(t, err)
	require.True(t, result.Success)

	assert.Equal(t, "artificial intelligence in production", result.Output[KeyTopic])
	assert.NotEmpty(t, result.Output[orchestrator.KeyTrendingHashtags])
	hashtags, _ := result.ContextUpdates[orchestrator.KeyHashtags].(string)
	assert.True(t, strings.HasPrefix(hashtags, "#"))
	assert.NotEmpty(t, result.ContextUpdates[KeyRecommendedTone])
}

func TestResearchStage_NoTopic(t *testing.T) {
	s := NewResearchStage(trends.NewAnalyzer(nil), nil)

	result, err := s.Run(context.Background(), contextWith(t, nil))
	require.NoError(t, err)
	assert.False(t, result.Success)
}

func TestStrategyStage_Fallback(t *testing.T) {
	s := NewStrategyStage(nil)

	result, err := s.Run(context.Background(), contextWith(t, map[string]any{
		KeySynthesis: "Leadership lessons from on-call rotations.",
	}))
	require.NoError(t, err)
	require.True(t, result.Success)

	strategy, _ := result.ContextUpdates[orchestrator.KeyStrategy].(map[string]any)
	require.NotNil(t, strategy)
	assert.Equal(t, "Leadership lessons from on-call rotations.", strategy["key_message"])
	assert.NotEmpty(t, strategy["call_to_action"])

	angles, _ := result.ContextUpdates[KeyAngles].(map[string]string)
	require.Len(t, angles, 3)
	assert.Equal(t, "professional", result.ContextUpdates[KeyTone])
}

func TestStrategyStage_ParsesBackendPlan(t *testing.T) {
	client := &mockClient{respond: func(req llm.Request) (*llm.Result, error) {
		return &llm.Result{Content: `KEY_MESSAGE: Ship smaller, learn faster
TARGET_AUDIENCE: engineering managers
EMOTIONAL_HOOK: relief from release anxiety
ANGLE_1_STORYTELLER: The Friday deploy that taught us everything.
ANGLE_2_STRATEGIST: Batch size is the hidden lever of delivery speed.
ANGLE_3_PROVOCATEUR: Your release process is a comfort blanket.
CONTENT_PILLARS: delivery, leadership, culture
CALL_TO_ACTION: How often does your team ship?`}, nil
	}}
	s := NewStrategyStage(client)

	result, err := s.Run(context.Background(), contextWith(t, map[string]any{
		KeySynthesis: "Continuous delivery writeup.",
	}))
	require.NoError(t, err)
	require.True(t, result.Success)

	strategy, _ := result.ContextUpdates[orchestrator.KeyStrategy].(map[string]any)
	assert.Equal(t, "Ship smaller, learn faster", strategy["key_message"])
	assert.Equal(t, []string{"delivery", "leadership", "culture"}, strategy["content_pillars"])

	angles, _ := result.ContextUpdates[KeyAngles].(map[string]string)
	assert.Equal(t, "The Friday deploy that taught us everything.", angles["storyteller"])
	assert.Equal(t, "Your release process is a comfort blanket.", angles["provocateur"])
}

func TestStrategyStage_NoContent(t *testing.T) {
	s := NewStrategyStage(nil)

	result, err := s.Run(context.Background(), contextWith(t, nil))
	require.NoError(t, err)
	assert.False(t, result.Success)
}

func TestGenerationStage_FallbackVariants(t *testing.T) {
	s := NewGenerationStage(nil)

	result, err := s.Run(context.Background(), contextWith(t, map[string]any{
		KeyCombinedContent:       "Platform teams and the inner loop.",
		orchestrator.KeyHashtags: "#Platform #DevEx",
	}))
	require.NoError(t, err)
	require.True(t, result.Success)

	variants, _ := result.ContextUpdates[orchestrator.KeyVariants].(map[string]string)
	require.Len(t, variants, 3)
	for _, name := range VariantNames {
		assert.NotEmpty(t, variants[name])
	}
	assert.NotEqual(t, variants["storyteller"], variants["provocateur"])
	assert.Equal(t, "#Platform #DevEx", result.Output[orchestrator.KeyHashtags])
}

func TestGenerationStage_UsesBackend(t *testing.T) {
	var systems []string
	client := &mockClient{respond: func(req llm.Request) (*llm.Result, error) {
		systems = append(systems, req.SystemPrompt)
		return &llm.Result{Content: "A generated post.\n\nWhat do you think?"}, nil
	}}
	s := NewGenerationStage(client)

	result, err := s.Run(context.Background(), contextWith(t, map[string]any{
		KeySynthesis: "Some synthesis.",
	}))
	require.NoError(t, err)
	require.True(t, result.Success)
	require.Len(t, systems, 3)
	assert.Contains(t, systems[0], "storyteller")
	assert.Contains(t, systems[1], "strategist")
	assert.Contains(t, systems[2], "thought leader")
}

func TestGenerationStage_NoContent(t *testing.T) {
	s := NewGenerationStage(nil)

	result, err := s.Run(context.Background(), contextWith(t, nil))
	require.NoError(t, err)
	assert.False(t, result.Success)
}

type staticLoader struct {
	profile *brand.Profile
	err     error
}

func (l *staticLoader) Load(string) (*brand.Profile, error) { return l.profile, l.err }

func TestBrandVoiceStage_NoProfile(t *testing.T) {
	s := NewBrandVoiceStage(brand.NewAnalyzer(nil), nil, nil)

	result, err := s.Run(context.Background(), contextWith(t, map[string]any{
		orchestrator.KeyVariants: map[string]string{"storyteller": "A post."},
	}))
	require.NoError(t, err)
	require.True(t, result.Success)

	assert.Equal(t, 0.7, result.ContextUpdates[KeyBrandConsistencyAvg])
	feedback, _ := result.ContextUpdates[orchestrator.KeyBrandFeedback].(map[string]any)
	require.Contains(t, feedback, "storyteller")
}

func TestBrandVoiceStage_WithStoredProfile(t *testing.T) {
	loader := &staticLoader{profile: &brand.Profile{AvgPostLength: 8, UsesEmojis: false}}
	s := NewBrandVoiceStage(brand.NewAnalyzer(nil), loader, nil)

	result, err := s.Run(context.Background(), contextWith(t, map[string]any{
		orchestrator.KeyVariants: map[string]string{
			"storyteller": "A short post about shipping software products today.",
		},
	}))
	require.NoError(t, err)
	require.True(t, result.Success)

	feedback, _ := result.ContextUpdates[orchestrator.KeyBrandFeedback].(map[string]any)
	entry, _ := feedback["storyteller"].(map[string]any)
	require.NotNil(t, entry)
	assert.InDelta(t, 0.7, entry["consistency_score"], 0.001)
}

func TestBrandVoiceStage_NoVariants(t *testing.T) {
	s := NewBrandVoiceStage(brand.NewAnalyzer(nil), nil, nil)

	result, err := s.Run(context.Background(), contextWith(t, nil))
	require.NoError(t, err)
	assert.False(t, result.Success)
}

func TestOptimizationStage(t *testing.T) {
	s := NewOptimizationStage(engage.NewPredictor(nil), engage.NewSentimentAnalyzer(nil))

	variants := map[string]string{
		"storyteller": "I shipped a thing last week. What would you have done? Let me know in the comments.",
		"strategist":  "A framework:\n1. One\n2. Two\n3. Three",
		"provocateur": "Plain statement without hooks",
	}
	result, err := s.Run(context.Background(), contextWith(t, map[string]any{
		orchestrator.KeyVariants: variants,
		orchestrator.KeyHashtags: "#One #Two",
		orchestrator.KeyStrategy: map[string]any{
			"content_pillars": []string{"platform engineering", "culture"},
			"call_to_action":  "Share your view.",
		},
	}))
	require.NoError(t, err)
	require.True(t, result.Success)

	scores, _ := result.ContextUpdates[orchestrator.KeyRankingScores].(map[string]float64)
	require.Len(t, scores, 3)

	best, _ := result.ContextUpdates[orchestrator.KeyBestVariant].(string)
	require.NotEmpty(t, best)
	for _, score := range scores {
		assert.LessOrEqual(t, score, scores[best])
	}

	hashtags, _ := result.ContextUpdates[orchestrator.KeyHashtags].(string)
	assert.Contains(t, hashtags, "#Platformengineering")
	assert.Contains(t, hashtags, "#Culture")
	assert.LessOrEqual(t, len(strings.Fields(hashtags)), 8)

	recs, _ := result.ContextUpdates[orchestrator.KeyRecommendations].([]string)
	require.NotEmpty(t, recs)
	assert.Contains(t, recs[0], best)
	assert.Contains(t, recs, "CTA: Share your view.")
}

func TestOptimizationStage_NoVariants(t *testing.T) {
	s := NewOptimizationStage(engage.NewPredictor(nil), engage.NewSentimentAnalyzer(nil))

	result, err := s.Run(context.Background(), contextWith(t, nil))
	require.NoError(t, err)
	assert.False(t, result.Success)
}

func TestDefaultPipeline_Valid(t *testing.T) {
	def := DefaultPipeline(nil, nil)

	require.NoError(t, def.Validate())
	assert.Equal(t, 1.0, def.TotalWeight())
	assert.Equal(t, VariantNames, def.CandidateOrder)
	assert.Equal(t, DefaultCandidate, def.DefaultCandidate)
	require.Len(t, def.Stages, 6)
	assert.Equal(t, "input", def.Stages[0].Name)
	assert.Equal(t, "optimization", def.Stages[5].Name)
}

func TestDefaultPipeline_EndToEnd(t *testing.T) {
	orch := orchestrator.New(DefaultPipeline(nil, nil))

	result := orch.Execute(context.Background(), map[string]any{
		KeyText: "How small teams ship big features with continuous delivery",
	})

	require.True(t, result.Success)
	assert.Len(t, result.Candidates, 3)
	assert.NotEmpty(t, result.BestCandidate)
	assert.Len(t, result.StagesCompleted, 6)
	assert.Empty(t, result.FailedStages)
	assert.NotEmpty(t, result.Hashtags)
	assert.NotEmpty(t, result.Recommendations)
	assert.NotEmpty(t, result.RunID)
}
