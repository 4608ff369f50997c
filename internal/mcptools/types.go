// Package mcptools exposes the content pipeline over MCP so agent hosts can
// generate posts and inspect past runs.
package mcptools

// GeneratePostInput is the input for the generate_post MCP tool.
type GeneratePostInput struct {
	Topic        string   `json:"topic" jsonschema:"topic or raw text to build the post from"`
	URLs         []string `json:"urls,omitempty" jsonschema:"web pages to pull supporting content from"`
	FilePaths    []string `json:"filePaths,omitempty" jsonschema:"local text documents to pull supporting content from"`
	Tone         string   `json:"tone,omitempty" jsonschema:"preferred tone (default: recommended by research)"`
	Audience     string   `json:"audience,omitempty" jsonschema:"target audience description"`
	BrandProfile string   `json:"brandProfile,omitempty" jsonschema:"name of a stored brand profile to apply"`
}

// GeneratePostOutput is the result of one pipeline invocation.
type GeneratePostOutput struct {
	RunID           string             `json:"runId"`
	Success         bool               `json:"success"`
	Degraded        bool               `json:"degraded,omitempty"`
	BestVariant     string             `json:"bestVariant,omitempty"`
	Post            string             `json:"post,omitempty"`
	Variants        map[string]string  `json:"variants,omitempty"`
	RankingScores   map[string]float64 `json:"rankingScores,omitempty"`
	Hashtags        string             `json:"hashtags,omitempty"`
	Recommendations []string           `json:"recommendations,omitempty"`
	FailedStages    []string           `json:"failedStages,omitempty"`
	ErrorMessage    string             `json:"errorMessage,omitempty"`
}

// GetRunInput is the input for the get_run MCP tool.
type GetRunInput struct {
	RunID string `json:"runId" jsonschema:"id of a previously recorded run"`
}

// GetRunOutput carries the stored result of one run.
type GetRunOutput struct {
	Found  bool                `json:"found"`
	Result *GeneratePostOutput `json:"result,omitempty"`
}

// ListRunsInput is the input for the list_runs MCP tool.
type ListRunsInput struct {
	Limit int `json:"limit,omitempty" jsonschema:"maximum number of runs to return (default: 20)"`
}

// RunSummary describes one recorded run.
type RunSummary struct {
	RunID       string `json:"runId"`
	Topic       string `json:"topic"`
	BestVariant string `json:"bestVariant,omitempty"`
	Success     bool   `json:"success"`
	CreatedAt   string `json:"createdAt"`
}

// ListRunsOutput lists recorded runs, newest first.
type ListRunsOutput struct {
	Runs []RunSummary `json:"runs"`
}
