package stage

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/dusk-indust/contentstudio/internal/llm"
	"github.com/dusk-indust/contentstudio/internal/orchestrator"
)

// VariantNames is the declared candidate order. Selection tie-breaks follow
// this order, so it must match the pipeline definition.
var VariantNames = []string{"storyteller", "strategist", "provocateur"}

var variantSystemPrompts = map[string]string{
	"storyteller": "You are a master LinkedIn storyteller. Write narrative-driven posts that " +
		"open with a personal hook, build tension, deliver insight, and end with a " +
		"genuine question. Sound like a real human, not a content machine.",
	"strategist": "You are a sharp LinkedIn strategist. Write data-driven, insight-led posts " +
		"that open with a bold fact or framework, deliver structured value (lists/steps), " +
		"and close with a discussion-provoking question.",
	"provocateur": "You are a bold LinkedIn thought leader. Write contrarian posts that challenge " +
		"conventional wisdom, open with an opinion that makes people stop scrolling, " +
		"argue your position with evidence, and invite debate.",
}

// GenerationStage produces one post draft per declared variant.
type GenerationStage struct {
	client llm.Client
}

func NewGenerationStage(client llm.Client) *GenerationStage {
	return &GenerationStage{client: client}
}

func (s *GenerationStage) Name() string { return "generation" }

func (s *GenerationStage) Run(ctx context.Context, wc *orchestrator.WorkflowContext) (*orchestrator.StageResult, error) {
	start := time.Now()

	synthesis := wc.String(KeySynthesis)
	combined := wc.String(KeyCombinedContent)
	if combined == "" {
		combined = synthesis
	}
	if combined == "" {
		return orchestrator.Failure("no content available for generation", time.Since(start)), nil
	}

	strategy := wc.Map(orchestrator.KeyStrategy)
	angles := wc.StringMap(KeyAngles)
	tone := wc.String(KeyTone)
	if tone == "" {
		tone = "professional"
	}
	audience := wc.String(KeyAudience)
	if audience == "" {
		audience = "professionals"
	}
	hashtags := wc.String(orchestrator.KeyHashtags)

	variants := make(map[string]string, len(VariantNames))
	var sizes []string
	for _, name := range VariantNames {
		post := s.generateVariant(ctx, name, angles[name], clip(combined, 2500), strategy, tone, audience)
		variants[name] = post
		sizes = append(sizes, fmt.Sprintf("%s (%d chars)", name, len(post)))
	}

	return &orchestrator.StageResult{
		Success: true,
		Output: map[string]any{
			orchestrator.KeyHashtags: hashtags,
		},
		ContextUpdates: map[string]any{
			orchestrator.KeyVariants: variants,
		},
		Summary:        "Generated 3 variants: " + strings.Join(sizes, ", "),
		ProcessingTime: time.Since(start),
	}, nil
}

func (s *GenerationStage) generateVariant(ctx context.Context, name, angle, content string, strategy map[string]any, tone, audience string) string {
	if s.client == nil {
		return fallbackVariant(name, content)
	}

	keyMessage, _ := strategy["key_message"].(string)
	cta, _ := strategy["call_to_action"].(string)
	if cta == "" {
		cta = "What do you think? Share in the comments."
	}
	system, ok := variantSystemPrompts[name]
	if !ok {
		system = variantSystemPrompts["storyteller"]
	}

	prompt := fmt.Sprintf(`Write a LinkedIn post using the '%s' style.

CONTENT TO USE:
%s

POST ANGLE: %s
KEY MESSAGE: %s
TONE: %s
TARGET AUDIENCE: %s
CALL TO ACTION: %s

RULES:
- Max 1500 characters (ideal LinkedIn length)
- No fake statistics unless from the source content
- End with a genuine question
- Use line breaks for mobile readability
- DO NOT include hashtags (handled separately)
- Return ONLY the post text, no labels or explanations`,
		name, content, angle, keyMessage, tone, audience, cta)

	result, err := s.client.Generate(ctx, llm.Request{Prompt: prompt, SystemPrompt: system})
	if err != nil || strings.TrimSpace(result.Content) == "" {
		return fallbackVariant(name, content)
	}
	return strings.TrimSpace(result.Content)
}

// fallbackVariant produces a deterministic draft when the backend is
// unavailable so the pipeline still yields all three candidates.
func fallbackVariant(name, content string) string {
	topic := strings.ReplaceAll(clip(content, 80), "\n", " ")
	switch name {
	case "strategist":
		return fmt.Sprintf("Most people overlook this about %s.\n\n"+
			"Here's a framework that actually works:\n\n"+
			"• Start with the outcome\n"+
			"• Remove friction at every step\n"+
			"• Measure what matters\n\n"+
			"Which step matters most to you?", topic)
	case "provocateur":
		return fmt.Sprintf("Unpopular opinion: %s is misunderstood.\n\n"+
			"Everyone talks about the 'right way'.\n"+
			"No one talks about the cost.\n\n"+
			"Maybe it's time to challenge the default.\n\n"+
			"Do you agree, or am I wrong?", topic)
	default:
		return fmt.Sprintf("Here's what changed my perspective on %s...\n\n"+
			"Three years ago I wouldn't have believed it.\n"+
			"Now it's how I approach everything.\n\n"+
			"The journey matters more than the destination.\n\n"+
			"What has shifted your perspective recently?", topic)
	}
}
