package orchestrator

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
)

// DefaultStageTimeout bounds one stage invocation. The backing inference
// calls can hang indefinitely; a timed-out stage is recorded as failed and
// the workflow moves on.
const DefaultStageTimeout = 2 * time.Minute

// Orchestrator drives a pipeline definition over one WorkflowContext per
// invocation: stages run strictly in declared order, failures are contained
// at the stage boundary, and the final result is assembled from whatever the
// surviving stages contributed. A single Orchestrator may serve concurrent
// Execute calls; each call owns its own context.
type Orchestrator struct {
	def          *PipelineDefinition
	progress     *ProgressReporter
	onStatus     StatusFunc
	stageTimeout time.Duration
	logger       *slog.Logger
}

// Option configures an Orchestrator.
type Option func(*Orchestrator)

// WithStatusFunc registers a synchronous status callback. Panics inside the
// callback are swallowed; status delivery is never required for correctness.
func WithStatusFunc(fn StatusFunc) Option {
	return func(o *Orchestrator) {
		o.onStatus = fn
	}
}

// WithStageTimeout overrides the per-stage timeout. Zero disables it.
func WithStageTimeout(d time.Duration) Option {
	return func(o *Orchestrator) {
		o.stageTimeout = d
	}
}

// WithLogger sets the structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(o *Orchestrator) {
		o.logger = logger
	}
}

// New creates an Orchestrator for the given pipeline definition.
func New(def *PipelineDefinition, opts ...Option) *Orchestrator {
	o := &Orchestrator{
		def:          def,
		progress:     NewProgressReporter(),
		stageTimeout: DefaultStageTimeout,
		logger:       slog.Default(),
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// Progress returns a channel that emits status events across invocations.
func (o *Orchestrator) Progress() <-chan WorkflowStatus {
	return o.progress.Subscribe()
}

// Close shuts down the progress reporter. Callers should invoke this when
// the orchestrator is no longer needed.
func (o *Orchestrator) Close() {
	o.progress.Close()
}

// Execute runs the full pipeline against a fresh context built from initial.
// It never returns an error and never panics: every stage fault is contained
// and reflected in the returned result instead. Cancellation is cooperative
// and checked between stages; remaining stages are marked failed and the
// result is assembled from what completed.
func (o *Orchestrator) Execute(ctx context.Context, initial map[string]any) *OrchestratorResult {
	start := time.Now()
	runID := uuid.NewString()
	wc := NewWorkflowContext(initial)

	var completed []string
	var failures []StageFailure

	o.logger.Info("workflow started", "run_id", runID, "stages", len(o.def.Stages))

	for _, entry := range o.def.Stages {
		if err := ctx.Err(); err != nil {
			msg := fmt.Sprintf("workflow cancelled: %v", err)
			failures = append(failures, StageFailure{Stage: entry.Name, Message: msg})
			o.emit(WorkflowStatus{
				StageName: entry.Name,
				Phase:     PhaseFailed,
				Message:   msg,
				Progress:  entry.WeightAfter,
			})
			continue
		}

		o.emit(WorkflowStatus{
			StageName: entry.Name,
			Phase:     PhaseRunning,
			Message:   fmt.Sprintf("running %s", entry.Name),
			Progress:  entry.WeightBefore,
		})

		result := o.runStage(ctx, entry, wc)

		if result.Success {
			wc.Merge(result)
			completed = append(completed, entry.Name)
			o.logger.Info("stage succeeded", "run_id", runID, "stage", entry.Name,
				"elapsed", result.ProcessingTime, "summary", result.Summary)
			o.emit(WorkflowStatus{
				StageName: entry.Name,
				Phase:     PhaseSucceeded,
				Message:   result.Summary,
				Progress:  entry.WeightAfter,
				Elapsed:   result.ProcessingTime,
			})
		} else {
			failures = append(failures, StageFailure{Stage: entry.Name, Message: result.ErrorMessage})
			o.logger.Warn("stage failed, continuing", "run_id", runID, "stage", entry.Name,
				"error", result.ErrorMessage)
			o.emit(WorkflowStatus{
				StageName: entry.Name,
				Phase:     PhaseFailed,
				Message:   result.ErrorMessage,
				Progress:  entry.WeightAfter,
				Elapsed:   result.ProcessingTime,
			})
		}
	}

	assembler := ResultAssembler{
		CandidateOrder:   o.def.CandidateOrder,
		DefaultCandidate: o.def.DefaultCandidate,
	}
	result := assembler.Assemble(wc, completed, failures, time.Since(start))
	result.RunID = runID

	o.emit(WorkflowStatus{
		StageName: "orchestrator",
		Phase:     PhaseSucceeded,
		Message:   fmt.Sprintf("workflow complete in %.1fs", result.TotalTime.Seconds()),
		Progress:  o.def.TotalWeight(),
		Elapsed:   result.TotalTime,
	})
	o.logger.Info("workflow complete", "run_id", runID, "success", result.Success,
		"best", result.BestCandidate, "elapsed", result.TotalTime)

	return result
}

// runStage invokes one stage with the per-stage timeout applied. The stage
// runs in its own goroutine so a hung inference call cannot stall the loop;
// on timeout the goroutine is abandoned and a failed result is synthesized.
func (o *Orchestrator) runStage(ctx context.Context, entry StageEntry, wc *WorkflowContext) *StageResult {
	sctx := ctx
	if o.stageTimeout > 0 {
		var cancel context.CancelFunc
		sctx, cancel = context.WithTimeout(ctx, o.stageTimeout)
		defer cancel()
	}

	start := time.Now()
	done := make(chan *StageResult, 1)
	go func() {
		done <- collapseFault(entry.Name, func() (*StageResult, error) {
			return entry.Stage.Run(sctx, wc)
		})
	}()

	select {
	case result := <-done:
		if result.ProcessingTime == 0 {
			result.ProcessingTime = time.Since(start)
		}
		return result
	case <-sctx.Done():
		return Failure(fmt.Sprintf("stage %q: %v", entry.Name, sctx.Err()), time.Since(start))
	}
}

// collapseFault converts every possible stage outcome into a StageResult:
// a returned error, a nil result, and a panic all become a failed result.
// This is the single point where unexpected faults are contained.
func collapseFault(name string, fn func() (*StageResult, error)) (result *StageResult) {
	defer func() {
		if r := recover(); r != nil {
			result = Failure(fmt.Sprintf("stage %q panicked: %v", name, r), 0)
		}
	}()

	res, err := fn()
	if err != nil {
		return Failure(fmt.Sprintf("stage %q: %v", name, err), 0)
	}
	if res == nil {
		return Failure(fmt.Sprintf("stage %q returned no result", name), 0)
	}
	return res
}

// emit delivers a status event to the channel subscriber and the optional
// callback. Callback panics are swallowed.
func (o *Orchestrator) emit(status WorkflowStatus) {
	o.progress.Emit(status)
	if o.onStatus != nil {
		func() {
			defer func() { _ = recover() }()
			o.onStatus(status)
		}()
	}
}
