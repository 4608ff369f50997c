package orchestrator

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// collect registers a status callback that appends every event to a slice.
// Execute runs on the caller's goroutine, so no locking is needed.
func collect(events *[]WorkflowStatus) Option {
	return WithStatusFunc(func(s WorkflowStatus) {
		*events = append(*events, s)
	})
}

func TestExecute_HappyPath(t *testing.T) {
	def := threeStageDefinition(
		okStage("stage1", map[string]any{"topic": "X"}),
		okStage("stage2", map[string]any{KeyVariants: map[string]any{"x": "post x"}}),
		okStage("stage3", map[string]any{KeyRankingScores: map[string]any{"x": 0.9}}),
	)
	require.NoError(t, def.Validate())

	o := New(def)
	defer o.Close()

	result := o.Execute(context.Background(), map[string]any{"text": "raw input"})

	assert.True(t, result.Success)
	assert.Equal(t, []string{"stage1", "stage2", "stage3"}, result.StagesCompleted)
	assert.Empty(t, result.FailedStages)
	assert.Equal(t, "x", result.BestCandidate)
	assert.False(t, result.Degraded)
	assert.NotEmpty(t, result.RunID)
}

// A single failing stage degrades the result but never halts the workflow:
// stage 2 fails, stage 3 still sees stage 1's contribution.
func TestExecute_MidStageFailure_ContinuesWithIntactContext(t *testing.T) {
	var seenTopic string

	def := threeStageDefinition(
		okStage("stage1", map[string]any{"topic": "X"}),
		&fakeStage{name: "stage2", run: func(context.Context, *WorkflowContext) (*StageResult, error) {
			return Failure("backend unavailable", 0), nil
		}},
		&fakeStage{name: "stage3", run: func(_ context.Context, wc *WorkflowContext) (*StageResult, error) {
			seenTopic = wc.String("topic")
			return &StageResult{
				Success: true,
				Output: map[string]any{
					"result":     "Y",
					KeyVariants: map[string]any{"x": "post x"},
				},
				Summary: "stage3 done",
			}, nil
		}},
	)

	o := New(def)
	defer o.Close()

	result := o.Execute(context.Background(), nil)

	assert.True(t, result.Success)
	assert.Equal(t, []string{"stage1", "stage3"}, result.StagesCompleted)
	require.Len(t, result.FailedStages, 1)
	assert.Equal(t, "stage2", result.FailedStages[0].Stage)
	assert.Equal(t, "backend unavailable", result.FailedStages[0].Message)
	assert.Equal(t, "X", seenTopic, "stage 3 should see stage 1's contribution untouched")
}

func TestExecute_StagePanics_Contained(t *testing.T) {
	var events []WorkflowStatus

	def := threeStageDefinition(
		okStage("stage1", map[string]any{KeyVariants: map[string]any{"x": "post x"}}),
		&fakeStage{name: "stage2", run: func(context.Context, *WorkflowContext) (*StageResult, error) {
			panic("unexpected fault")
		}},
		okStage("stage3", nil),
	)

	o := New(def, collect(&events))
	defer o.Close()

	var result *OrchestratorResult
	require.NotPanics(t, func() {
		result = o.Execute(context.Background(), nil)
	})

	assert.True(t, result.Success, "remaining stages still produced a candidate")
	assert.Equal(t, []string{"stage1", "stage3"}, result.StagesCompleted)

	var failedEvent *WorkflowStatus
	for i := range events {
		if events[i].StageName == "stage2" && events[i].Phase == PhaseFailed {
			failedEvent = &events[i]
		}
	}
	require.NotNil(t, failedEvent, "a failed status event must be emitted for the panicking stage")
	assert.Contains(t, failedEvent.Message, "panicked")
}

func TestExecute_StageReturnsError_Collapsed(t *testing.T) {
	def := threeStageDefinition(
		&fakeStage{name: "stage1", run: func(context.Context, *WorkflowContext) (*StageResult, error) {
			return nil, errors.New("boom")
		}},
		okStage("stage2", map[string]any{KeyVariants: map[string]any{"x": "post x"}}),
		okStage("stage3", nil),
	)

	o := New(def)
	defer o.Close()

	result := o.Execute(context.Background(), nil)

	assert.True(t, result.Success)
	require.Len(t, result.FailedStages, 1)
	assert.Contains(t, result.FailedStages[0].Message, "boom")
}

func TestExecute_TotalFailure_ReturnsNormally(t *testing.T) {
	fail := func(name string) Stage {
		return &fakeStage{name: name, run: func(context.Context, *WorkflowContext) (*StageResult, error) {
			return Failure("down", 0), nil
		}}
	}
	def := threeStageDefinition(fail("stage1"), fail("stage2"), fail("stage3"))

	o := New(def)
	defer o.Close()

	result := o.Execute(context.Background(), nil)

	assert.False(t, result.Success)
	assert.Empty(t, result.Candidates)
	assert.Empty(t, result.StagesCompleted)
	assert.Len(t, result.FailedStages, 3)
	assert.Equal(t, "no post variants were generated", result.ErrorMessage)
}

func TestExecute_ProgressMonotonic_FinalEqualsTotal(t *testing.T) {
	var events []WorkflowStatus

	def := threeStageDefinition(
		okStage("stage1", nil),
		&fakeStage{name: "stage2", run: func(context.Context, *WorkflowContext) (*StageResult, error) {
			return Failure("down", 0), nil
		}},
		okStage("stage3", nil),
	)

	o := New(def, collect(&events))
	defer o.Close()

	o.Execute(context.Background(), nil)

	require.NotEmpty(t, events)
	prev := 0.0
	for _, ev := range events {
		assert.GreaterOrEqual(t, ev.Progress, prev,
			"progress must be non-decreasing (stage %s, phase %s)", ev.StageName, ev.Phase)
		prev = ev.Progress
	}
	assert.Equal(t, def.TotalWeight(), events[len(events)-1].Progress)
}

func TestExecute_StatusEvents_StrictPerStageOrder(t *testing.T) {
	var events []WorkflowStatus

	def := threeStageDefinition(
		okStage("stage1", nil), okStage("stage2", nil), okStage("stage3", nil))

	o := New(def, collect(&events))
	defer o.Close()

	o.Execute(context.Background(), nil)

	// One running event immediately followed by a terminal event, per stage,
	// then the final orchestrator event.
	require.Len(t, events, 7)
	for i, name := range []string{"stage1", "stage2", "stage3"} {
		assert.Equal(t, name, events[2*i].StageName)
		assert.Equal(t, PhaseRunning, events[2*i].Phase)
		assert.Equal(t, name, events[2*i+1].StageName)
		assert.Equal(t, PhaseSucceeded, events[2*i+1].Phase)
	}
	assert.Equal(t, "orchestrator", events[6].StageName)
}

func TestExecute_StageTimeout_ConvertsToFailure(t *testing.T) {
	def := threeStageDefinition(
		&fakeStage{name: "stage1", run: func(ctx context.Context, _ *WorkflowContext) (*StageResult, error) {
			<-ctx.Done() // simulate a hung backend call that honors cancellation
			return nil, ctx.Err()
		}},
		okStage("stage2", map[string]any{KeyVariants: map[string]any{"x": "post x"}}),
		okStage("stage3", nil),
	)

	o := New(def, WithStageTimeout(20*time.Millisecond))
	defer o.Close()

	start := time.Now()
	result := o.Execute(context.Background(), nil)

	assert.Less(t, time.Since(start), 5*time.Second)
	assert.True(t, result.Success, "timeout of one stage must not abort the workflow")
	require.Len(t, result.FailedStages, 1)
	assert.Equal(t, "stage1", result.FailedStages[0].Stage)
	assert.Contains(t, result.FailedStages[0].Message, "deadline")
}

func TestExecute_Cancelled_RemainingStagesSkippedAsFailed(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())

	def := threeStageDefinition(
		&fakeStage{name: "stage1", run: func(context.Context, *WorkflowContext) (*StageResult, error) {
			cancel() // cancel mid-workflow; later stages must not run
			return &StageResult{
				Success: true,
				Output:  map[string]any{KeyVariants: map[string]any{"x": "post x"}},
			}, nil
		}},
		&fakeStage{name: "stage2", run: func(context.Context, *WorkflowContext) (*StageResult, error) {
			t.Error("stage2 must not run after cancellation")
			return nil, nil
		}},
		&fakeStage{name: "stage3", run: func(context.Context, *WorkflowContext) (*StageResult, error) {
			t.Error("stage3 must not run after cancellation")
			return nil, nil
		}},
	)

	o := New(def)
	defer o.Close()

	result := o.Execute(ctx, nil)

	assert.True(t, result.Success, "completed stages still yield a result")
	assert.Equal(t, []string{"stage1"}, result.StagesCompleted)
	assert.Len(t, result.FailedStages, 2)
	assert.Contains(t, result.FailedStages[0].Message, "cancelled")
}

func TestExecute_CallbackPanic_Swallowed(t *testing.T) {
	def := threeStageDefinition(
		okStage("stage1", nil), okStage("stage2", nil), okStage("stage3", nil))

	o := New(def, WithStatusFunc(func(WorkflowStatus) {
		panic("presentation layer bug")
	}))
	defer o.Close()

	require.NotPanics(t, func() {
		o.Execute(context.Background(), nil)
	})
}

func TestCollapseFault(t *testing.T) {
	t.Run("error becomes failed result", func(t *testing.T) {
		res := collapseFault("s", func() (*StageResult, error) {
			return nil, errors.New("wire error")
		})
		assert.False(t, res.Success)
		assert.Contains(t, res.ErrorMessage, "wire error")
	})

	t.Run("panic becomes failed result", func(t *testing.T) {
		res := collapseFault("s", func() (*StageResult, error) {
			panic("nil map write")
		})
		assert.False(t, res.Success)
		assert.Contains(t, res.ErrorMessage, "panicked")
	})

	t.Run("nil result becomes failed result", func(t *testing.T) {
		res := collapseFault("s", func() (*StageResult, error) {
			return nil, nil
		})
		assert.False(t, res.Success)
	})

	t.Run("successful result passes through", func(t *testing.T) {
		want := &StageResult{Success: true, Summary: "ok"}
		res := collapseFault("s", func() (*StageResult, error) {
			return want, nil
		})
		assert.Same(t, want, res)
	})
}
