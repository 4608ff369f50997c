package stage

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/dusk-indust/contentstudio/internal/brand"
	"github.com/dusk-indust/contentstudio/internal/llm"
	"github.com/dusk-indust/contentstudio/internal/orchestrator"
)

// ProfileLoader fetches a persisted brand profile. The sqlite store
// satisfies this; the stage works without one.
type ProfileLoader interface {
	Load(name string) (*brand.Profile, error)
}

// BrandVoiceStage checks every variant against the brand profile and
// rewrites the ones that drift from the established voice. This is the stage
// whose feedback must overwrite earlier contributions rather than gap-fill.
type BrandVoiceStage struct {
	analyzer *brand.Analyzer
	loader   ProfileLoader
	client   llm.Client
}

func NewBrandVoiceStage(analyzer *brand.Analyzer, loader ProfileLoader, client llm.Client) *BrandVoiceStage {
	return &BrandVoiceStage{analyzer: analyzer, loader: loader, client: client}
}

func (s *BrandVoiceStage) Name() string { return "brand-voice" }

func (s *BrandVoiceStage) Run(ctx context.Context, wc *orchestrator.WorkflowContext) (*orchestrator.StageResult, error) {
	start := time.Now()

	variants := wc.StringMap(orchestrator.KeyVariants)
	if len(variants) == 0 {
		return orchestrator.Failure("no variants to brand-check", time.Since(start)), nil
	}

	profile := s.resolveProfile(ctx, wc)

	adjusted := make(map[string]string, len(variants))
	feedback := make(map[string]any, len(variants))
	total := 0.0
	for name, post := range variants {
		adjusted[name] = post
		if profile == nil {
			feedback[name] = map[string]any{
				"consistency_score": 0.7,
				"aligned":           []string{"No brand profile available, post is ready to use"},
				"suggestions":       []string{"Add past posts to build your brand profile for better personalization"},
				"brand_aligned":     true,
			}
			total += 0.7
			continue
		}

		check := s.analyzer.CheckConsistency(ctx, post, profile)
		feedback[name] = map[string]any{
			"consistency_score": check.Score,
			"aligned":           check.Aligned,
			"deviations":        check.Deviations,
			"suggestions":       check.Suggestions,
			"brand_aligned":     check.OnBrand,
		}
		total += check.Score

		if s.client != nil && check.Score < 0.7 {
			if rewritten := s.personalize(ctx, post, profile); rewritten != "" {
				adjusted[name] = rewritten
			}
		}
	}
	avg := total / float64(len(variants))

	return &orchestrator.StageResult{
		Success: true,
		ContextUpdates: map[string]any{
			orchestrator.KeyVariants:      adjusted,
			orchestrator.KeyBrandFeedback: feedback,
			KeyBrandConsistencyAvg:        round2(avg),
		},
		Summary:        fmt.Sprintf("Brand check complete, avg consistency %.0f%%", avg*100),
		ProcessingTime: time.Since(start),
	}, nil
}

// resolveProfile prefers a profile built from past posts in the request,
// then the persisted store, then none.
func (s *BrandVoiceStage) resolveProfile(ctx context.Context, wc *orchestrator.WorkflowContext) *brand.Profile {
	if posts := wc.StringSlice(KeyPastPosts); len(posts) > 0 {
		if profile, err := s.analyzer.AnalyzePosts(ctx, posts); err == nil {
			return profile
		}
	}
	if s.loader != nil {
		if profile, err := s.loader.Load(wc.String(KeyBrandProfile)); err == nil {
			return profile
		}
	}
	return nil
}

func (s *BrandVoiceStage) personalize(ctx context.Context, post string, profile *brand.Profile) string {
	prompt := fmt.Sprintf(`Rewrite this LinkedIn post to better match this brand voice:
BRAND VOICE: %s

ORIGINAL POST:
%s

Rules:
- Keep the core message identical
- Only adjust tone/style to match brand
- No fake statistics
- Return ONLY the rewritten post`, profile.Summary(), post)

	result, err := s.client.Generate(ctx, llm.Request{
		Prompt:       prompt,
		SystemPrompt: "You are a brand voice specialist.",
	})
	if err != nil {
		return ""
	}
	return strings.TrimSpace(result.Content)
}

func round2(f float64) float64 {
	return float64(int(f*100+0.5)) / 100
}
