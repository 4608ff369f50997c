package trends

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAnalyze_CuratedHashtags(t *testing.T) {
	a := NewAnalyzer(nil)

	analysis, err := a.Analyze(context.Background(), "AI startup lessons")
	require.NoError(t, err)

	assert.Contains(t, analysis.TrendingHashtags, "#AI")
	assert.Contains(t, analysis.TrendingHashtags, "#Startup")
	assert.LessOrEqual(t, len(analysis.TrendingHashtags), 12)

	// Dedup check: no hashtag appears twice.
	seen := map[string]bool{}
	for _, tag := range analysis.TrendingHashtags {
		assert.False(t, seen[tag], "duplicate hashtag %s", tag)
		seen[tag] = true
	}
}

func TestAnalyze_UnknownTopic_GenericFallback(t *testing.T) {
	a := NewAnalyzer(nil)

	analysis, err := a.Analyze(context.Background(), "competitive cheese rolling")
	require.NoError(t, err)
	assert.Equal(t, []string{"#Innovation", "#Tech", "#FutureOfWork", "#Learning", "#GrowthMindset"},
		analysis.TrendingHashtags)
}

func TestAnalyze_EmptyTopic_Error(t *testing.T) {
	a := NewAnalyzer(nil)

	_, err := a.Analyze(context.Background(), "   ")
	require.Error(t, err)
}

func TestAnalyze_ToneAndContentType(t *testing.T) {
	a := NewAnalyzer(nil)

	cases := []struct {
		topic       string
		wantTone    string
		wantContent string
	}{
		{"how to learn kubernetes", "professional", "educational"},
		{"we launched our startup", "enthusiastic", "build_in_public"},
		{"unpopular opinion about leadership", "thoughtful", "hot_take"},
	}

	for _, tc := range cases {
		analysis, err := a.Analyze(context.Background(), tc.topic)
		require.NoError(t, err)
		assert.Equal(t, tc.wantTone, analysis.RecommendedTone, "topic %q", tc.topic)
		assert.Equal(t, tc.wantContent, analysis.BestContentType, "topic %q", tc.topic)
	}
}

func TestAnalyze_TrendScore(t *testing.T) {
	a := NewAnalyzer(nil)

	cold, err := a.Analyze(context.Background(), "quarterly accounting review")
	require.NoError(t, err)
	hot, err := a.Analyze(context.Background(), "genai llm startup")
	require.NoError(t, err)

	assert.Equal(t, 0.4, cold.TrendScore)
	assert.Greater(t, hot.TrendScore, cold.TrendScore)
	assert.LessOrEqual(t, hot.TrendScore, 1.0)
}

func TestHashtags_Limit(t *testing.T) {
	a := NewAnalyzer(nil)

	tags := a.Hashtags(context.Background(), "cloud data devops", 4)
	assert.Len(t, tags, 4)
}
