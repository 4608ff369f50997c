package stage

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/dusk-indust/contentstudio/internal/extract"
	"github.com/dusk-indust/contentstudio/internal/llm"
	"github.com/dusk-indust/contentstudio/internal/orchestrator"
)

// InputStage gathers every input source (raw text, local files, URLs),
// extracts them in parallel and synthesizes the combined content for the
// stages downstream.
type InputStage struct {
	extractor *extract.Extractor
	client    llm.Client
}

func NewInputStage(extractor *extract.Extractor, client llm.Client) *InputStage {
	return &InputStage{extractor: extractor, client: client}
}

func (s *InputStage) Name() string { return "input" }

func (s *InputStage) Run(ctx context.Context, wc *orchestrator.WorkflowContext) (*orchestrator.StageResult, error) {
	start := time.Now()

	text := wc.String(KeyText)
	files := wc.StringSlice(KeyFilePaths)
	urls := wc.StringSlice(KeyURLs)

	if text == "" && len(files) == 0 && len(urls) == 0 {
		return orchestrator.Failure("no input provided", time.Since(start)), nil
	}

	// One slot per source keeps the combined output in declaration order
	// regardless of which fetch finishes first.
	pieces := make([]*extract.Piece, 1+len(files)+len(urls))
	if text != "" {
		pieces[0] = s.extractor.FromText(text)
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(4)
	for i, path := range files {
		slot := 1 + i
		g.Go(func() error {
			piece, err := s.extractor.FromFile(gctx, path)
			if err == nil {
				pieces[slot] = piece
			}
			// A single unreadable source does not fail the stage.
			return nil
		})
	}
	for i, rawURL := range urls {
		slot := 1 + len(files) + i
		g.Go(func() error {
			piece, err := s.extractor.FromURL(gctx, rawURL)
			if err == nil {
				pieces[slot] = piece
			}
			return nil
		})
	}
	g.Wait()

	var blocks []string
	contentTypes := map[string]bool{}
	for _, piece := range pieces {
		if piece == nil {
			continue
		}
		blocks = append(blocks, piece.Block())
		contentTypes[piece.Kind] = true
	}
	if len(blocks) == 0 {
		return orchestrator.Failure("all input sources failed to extract", time.Since(start)), nil
	}

	combined := strings.Join(blocks, "\n\n")
	synthesis := s.synthesize(ctx, combined)

	return &orchestrator.StageResult{
		Success: true,
		Output: map[string]any{
			KeyCombinedContent: combined,
			KeySynthesis:       synthesis,
			KeyContentTypes:    sortedKeys(contentTypes),
			KeyThemes:          themeGuess(text, synthesis),
		},
		ContextUpdates: map[string]any{
			KeyExtractedContent: clip(combined, 2000),
		},
		Summary:        fmt.Sprintf("Processed %d input sources (%s)", len(blocks), strings.Join(sortedKeys(contentTypes), ", ")),
		ProcessingTime: time.Since(start),
	}, nil
}

// synthesize distills the combined content, using the backend when present.
func (s *InputStage) synthesize(ctx context.Context, combined string) string {
	if s.client == nil {
		return clip(combined, 500)
	}
	result, err := s.client.Generate(ctx, llm.Request{
		Prompt: "From the following multi-modal content, extract:\n" +
			"1. Core topic / main theme\n" +
			"2. Key messages (up to 5)\n" +
			"3. Target audience\n" +
			"4. Best LinkedIn post angle\n\n" +
			"Content:\n" + clip(combined, 3000),
		SystemPrompt: "You are an expert content strategist.",
	})
	if err != nil {
		return clip(combined, 500)
	}
	return strings.TrimSpace(result.Content)
}

// themeGuess collects coarse themes from the raw text of the request.
func themeGuess(text, synthesis string) []string {
	source := text
	if source == "" {
		source = synthesis
	}
	var themes []string
	for _, word := range strings.Fields(source) {
		word = strings.Trim(strings.ToLower(word), ".,!?:;\"'()")
		if len(word) >= 6 && !containsString(themes, word) {
			themes = append(themes, word)
		}
		if len(themes) == 5 {
			break
		}
	}
	return themes
}

func sortedKeys(set map[string]bool) []string {
	keys := make([]string, 0, len(set))
	for k := range set {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func clip(s string, n int) string {
	if len(s) > n {
		return s[:n]
	}
	return s
}
