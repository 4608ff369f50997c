// Package export writes pipeline results to disk as JSON and markdown.
package export

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/dusk-indust/contentstudio/internal/orchestrator"
)

// RunExport is the top-level JSON export structure.
type RunExport struct {
	ExportedAt string                           `json:"exportedAt"`
	Topic      string                           `json:"topic,omitempty"`
	Result     *orchestrator.OrchestratorResult `json:"result"`
}

// WriteJSON exports a run to <dir>/<runID>.json and returns the path.
func WriteJSON(dir, topic string, result *orchestrator.OrchestratorResult) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("export: create dir: %w", err)
	}

	payload := RunExport{
		ExportedAt: time.Now().UTC().Format(time.RFC3339),
		Topic:      topic,
		Result:     result,
	}
	data, err := json.MarshalIndent(payload, "", "  ")
	if err != nil {
		return "", fmt.Errorf("export: encode: %w", err)
	}

	path := filepath.Join(dir, result.RunID+".json")
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("export: write %s: %w", path, err)
	}
	return path, nil
}

// WriteMarkdown exports a run report to <dir>/<runID>.md and returns the
// path.
func WriteMarkdown(dir, topic string, result *orchestrator.OrchestratorResult) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("export: create dir: %w", err)
	}

	path := filepath.Join(dir, result.RunID+".md")
	if err := os.WriteFile(path, []byte(Markdown(topic, result)), 0o644); err != nil {
		return "", fmt.Errorf("export: write %s: %w", path, err)
	}
	return path, nil
}

// Markdown renders a run as a readable report.
func Markdown(topic string, result *orchestrator.OrchestratorResult) string {
	var b strings.Builder

	fmt.Fprintf(&b, "# Content Studio Run %s\n\n", result.RunID)
	if topic != "" {
		fmt.Fprintf(&b, "**Topic:** %s\n\n", topic)
	}
	fmt.Fprintf(&b, "**Success:** %v", result.Success)
	if result.Degraded {
		b.WriteString(" (degraded: best candidate fell back to the default)")
	}
	fmt.Fprintf(&b, "  \n**Duration:** %s\n\n", result.TotalTime.Round(time.Millisecond))

	if result.ErrorMessage != "" {
		fmt.Fprintf(&b, "> %s\n\n", result.ErrorMessage)
	}

	if len(result.Candidates) > 0 {
		b.WriteString("## Variants\n\n")
		for _, name := range candidateNames(result) {
			marker := ""
			if name == result.BestCandidate {
				marker = " (best)"
			}
			fmt.Fprintf(&b, "### %s%s\n\n", name, marker)
			if score, ok := result.RankingScores[name]; ok {
				fmt.Fprintf(&b, "Virality score: %.2f\n\n", score)
			}
			fmt.Fprintf(&b, "%s\n\n", result.Candidates[name])
		}
	}

	if result.Hashtags != "" {
		fmt.Fprintf(&b, "## Hashtags\n\n%s\n\n", result.Hashtags)
	}

	if len(result.Recommendations) > 0 {
		b.WriteString("## Recommendations\n\n")
		for _, rec := range result.Recommendations {
			fmt.Fprintf(&b, "- %s\n", rec)
		}
		b.WriteString("\n")
	}

	if len(result.Research.TrendingHashtags) > 0 || len(result.Research.RelatedTopics) > 0 {
		b.WriteString("## Research\n\n")
		if len(result.Research.TrendingHashtags) > 0 {
			fmt.Fprintf(&b, "- Trending hashtags: %s\n", strings.Join(result.Research.TrendingHashtags, " "))
		}
		if len(result.Research.RelatedTopics) > 0 {
			fmt.Fprintf(&b, "- Related topics: %s\n", strings.Join(result.Research.RelatedTopics, ", "))
		}
		b.WriteString("\n")
	}

	if len(result.FailedStages) > 0 {
		b.WriteString("## Failed stages\n\n")
		for _, failure := range result.FailedStages {
			fmt.Fprintf(&b, "- **%s**: %s\n", failure.Stage, failure.Message)
		}
		b.WriteString("\n")
	}

	return b.String()
}

// candidateNames orders: best first, rest sorted.
func candidateNames(result *orchestrator.OrchestratorResult) []string {
	var rest []string
	for name := range result.Candidates {
		if name != result.BestCandidate {
			rest = append(rest, name)
		}
	}
	sort.Strings(rest)
	if result.BestCandidate == "" {
		return rest
	}
	return append([]string{result.BestCandidate}, rest...)
}
