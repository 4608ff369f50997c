package stage

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/dusk-indust/contentstudio/internal/llm"
	"github.com/dusk-indust/contentstudio/internal/orchestrator"
)

// StrategyStage builds the content strategy: key message, audience,
// emotional hook, three post angles, content pillars and a call to action.
type StrategyStage struct {
	client llm.Client
}

func NewStrategyStage(client llm.Client) *StrategyStage {
	return &StrategyStage{client: client}
}

func (s *StrategyStage) Name() string { return "strategy" }

func (s *StrategyStage) Run(ctx context.Context, wc *orchestrator.WorkflowContext) (*orchestrator.StageResult, error) {
	start := time.Now()

	synthesis := wc.String(KeySynthesis)
	combined := wc.String(KeyCombinedContent)
	if synthesis == "" && combined == "" {
		return orchestrator.Failure("no content to strategize", time.Since(start)), nil
	}

	tone := wc.String(KeyTone)
	if tone == "" {
		tone = wc.String(KeyRecommendedTone)
	}
	if tone == "" {
		tone = "professional"
	}
	audience := wc.String(KeyAudience)
	if audience == "" {
		audience = "professionals"
	}

	strategy, angles := s.build(ctx, synthesis, combined, tone, audience,
		wc.String(orchestrator.KeyMarketIntelligence), wc.String(KeyContentGaps))

	keyMessage, _ := strategy["key_message"].(string)
	return &orchestrator.StageResult{
		Success: true,
		ContextUpdates: map[string]any{
			orchestrator.KeyStrategy: strategy,
			KeyAngles:                angles,
			KeyTone:                  tone,
			KeyAudience:              audience,
		},
		Summary:        fmt.Sprintf("Strategy built: 3 angles identified, key message: %s", clip(keyMessage, 80)),
		ProcessingTime: time.Since(start),
	}, nil
}

func (s *StrategyStage) build(ctx context.Context, synthesis, combined, tone, audience, marketIntel, contentGaps string) (map[string]any, map[string]string) {
	angles := defaultAngles()
	if s.client == nil {
		return fallbackStrategy(synthesis, combined, audience), angles
	}

	content := synthesis
	if content == "" {
		content = combined
	}
	prompt := fmt.Sprintf(`Build a LinkedIn content strategy for this topic.

CONTENT:
%s

MARKET INTELLIGENCE:
%s

CONTENT GAPS:
%s

Tone preference: %s | Audience: %s

Return:
KEY_MESSAGE: [the single most important thing to communicate]
TARGET_AUDIENCE: [specific audience description]
EMOTIONAL_HOOK: [the emotional angle to lead with]
ANGLE_1_STORYTELLER: [narrative-driven post angle in 2 sentences]
ANGLE_2_STRATEGIST: [data/insight-driven angle in 2 sentences]
ANGLE_3_PROVOCATEUR: [contrarian/bold angle in 2 sentences]
CONTENT_PILLARS: [3 content pillars, comma-separated]
CALL_TO_ACTION: [best CTA for this content]`,
		clip(content, 2000), marketIntel, contentGaps, tone, audience)

	result, err := s.client.Generate(ctx, llm.Request{
		Prompt:       prompt,
		SystemPrompt: "You are a senior LinkedIn content strategist.",
	})
	if err != nil {
		return fallbackStrategy(synthesis, combined, audience), angles
	}

	strategy := map[string]any{}
	for _, line := range strings.Split(strings.TrimSpace(result.Content), "\n") {
		key, value, ok := strings.Cut(line, ":")
		if !ok {
			continue
		}
		value = strings.TrimSpace(value)
		switch strings.ToUpper(strings.TrimSpace(key)) {
		case "KEY_MESSAGE":
			strategy["key_message"] = value
		case "TARGET_AUDIENCE":
			strategy["target_audience"] = value
		case "EMOTIONAL_HOOK":
			strategy["emotional_hook"] = value
		case "ANGLE_1_STORYTELLER":
			angles["storyteller"] = value
		case "ANGLE_2_STRATEGIST":
			angles["strategist"] = value
		case "ANGLE_3_PROVOCATEUR":
			angles["provocateur"] = value
		case "CONTENT_PILLARS":
			var pillars []string
			for _, p := range strings.Split(value, ",") {
				if p = strings.TrimSpace(p); p != "" {
					pillars = append(pillars, p)
				}
			}
			strategy["content_pillars"] = pillars
		case "CALL_TO_ACTION":
			strategy["call_to_action"] = value
		}
	}
	if len(strategy) == 0 {
		return fallbackStrategy(synthesis, combined, audience), angles
	}
	return strategy, angles
}

func fallbackStrategy(synthesis, combined, audience string) map[string]any {
	keyMessage := synthesis
	if keyMessage == "" {
		keyMessage = combined
	}
	return map[string]any{
		"key_message":     clip(keyMessage, 150),
		"target_audience": audience,
		"emotional_hook":  "Share your authentic experience",
		"content_pillars": []string{"leadership", "innovation", "growth"},
		"call_to_action":  "What's your experience? Share in the comments.",
	}
}

func defaultAngles() map[string]string {
	return map[string]string{
		"storyteller": "Share a personal narrative around the topic.",
		"strategist":  "Present data-driven insights and frameworks.",
		"provocateur": "Challenge conventional wisdom with a bold take.",
	}
}
