package orchestrator

import (
	"context"
	"time"
)

// Stage is one unit of the ordered pipeline. Implementations read whatever
// context keys they need defensively (every key may be absent when an
// upstream stage failed) and return their contribution instead of mutating
// the context in place.
//
// Expected failure modes (unavailable backend, malformed upstream data) are
// reported as (&StageResult{Success: false, ErrorMessage: ...}, nil). A
// returned error or a panic is treated identically by the driver: it is
// collapsed into a failed result and the workflow continues.
type Stage interface {
	// Name identifies the stage in status events and results.
	Name() string

	// Run executes the stage against the accumulated context.
	Run(ctx context.Context, wc *WorkflowContext) (*StageResult, error)
}

// StageResult is the uniform outcome of one stage invocation.
type StageResult struct {
	// Success reports whether the stage produced usable output.
	Success bool

	// Output holds gap-filling contributions: each key is applied only
	// where the context lacks a truthy value.
	Output map[string]any

	// ContextUpdates holds authoritative contributions: each key
	// unconditionally overwrites the context.
	ContextUpdates map[string]any

	// Summary is a one-line description of what the stage did.
	Summary string

	// ProcessingTime is how long the stage ran.
	ProcessingTime time.Duration

	// ErrorMessage is set when Success is false.
	ErrorMessage string
}

// Failure builds a failed StageResult with the given message.
func Failure(message string, elapsed time.Duration) *StageResult {
	return &StageResult{
		Success:        false,
		ErrorMessage:   message,
		ProcessingTime: elapsed,
	}
}

// Phase is the lifecycle state of a stage within one invocation.
type Phase string

const (
	PhasePending   Phase = "pending"
	PhaseRunning   Phase = "running"
	PhaseSucceeded Phase = "succeeded"
	PhaseFailed    Phase = "failed"
)

// WorkflowStatus is emitted before and after each stage invocation. Progress
// is the cumulative weight declared by the pipeline definition, a schedule
// rather than a measured completion percentage.
type WorkflowStatus struct {
	StageName string
	Phase     Phase
	Message   string
	Progress  float64
	Elapsed   time.Duration
}

// StatusFunc receives status events synchronously. It is optional and
// fire-and-forget: the orchestrator never depends on it for correctness.
type StatusFunc func(WorkflowStatus)

// StageFailure records one stage that did not contribute to the result.
type StageFailure struct {
	Stage   string `json:"stage"`
	Message string `json:"message"`
}
