package orchestrator

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeStage is a scriptable Stage for driver and pipeline tests.
type fakeStage struct {
	name string
	run  func(ctx context.Context, wc *WorkflowContext) (*StageResult, error)
}

func (f *fakeStage) Name() string { return f.name }

func (f *fakeStage) Run(ctx context.Context, wc *WorkflowContext) (*StageResult, error) {
	return f.run(ctx, wc)
}

// okStage returns a stage that succeeds and contributes output via the
// gap-filling channel.
func okStage(name string, output map[string]any) *fakeStage {
	return &fakeStage{
		name: name,
		run: func(_ context.Context, _ *WorkflowContext) (*StageResult, error) {
			return &StageResult{Success: true, Output: output, Summary: name + " done"}, nil
		},
	}
}

func threeStageDefinition(stages ...Stage) *PipelineDefinition {
	weights := [][2]float64{{0, 0.3}, {0.3, 0.7}, {0.7, 1.0}}
	def := &PipelineDefinition{
		CandidateOrder:   []string{"x", "y"},
		DefaultCandidate: "x",
	}
	for i, s := range stages {
		def.Stages = append(def.Stages, StageEntry{
			Name:         s.Name(),
			Stage:        s,
			WeightBefore: weights[i][0],
			WeightAfter:  weights[i][1],
		})
	}
	return def
}

func TestPipelineDefinition_Validate_WellFormed(t *testing.T) {
	def := threeStageDefinition(
		okStage("stage1", nil), okStage("stage2", nil), okStage("stage3", nil))

	require.NoError(t, def.Validate())
	assert.Equal(t, 1.0, def.TotalWeight())
}

func TestPipelineDefinition_Validate_Errors(t *testing.T) {
	cases := []struct {
		name    string
		def     *PipelineDefinition
		wantMsg string
	}{
		{
			name:    "empty",
			def:     &PipelineDefinition{},
			wantMsg: "no stages",
		},
		{
			name: "duplicate names",
			def: &PipelineDefinition{Stages: []StageEntry{
				{Name: "a", Stage: okStage("a", nil), WeightBefore: 0, WeightAfter: 0.5},
				{Name: "a", Stage: okStage("a", nil), WeightBefore: 0.5, WeightAfter: 1.0},
			}},
			wantMsg: "duplicate stage name",
		},
		{
			name: "decreasing weights",
			def: &PipelineDefinition{Stages: []StageEntry{
				{Name: "a", Stage: okStage("a", nil), WeightBefore: 0, WeightAfter: 0.8},
				{Name: "b", Stage: okStage("b", nil), WeightBefore: 0.5, WeightAfter: 1.0},
			}},
			wantMsg: "decreases",
		},
		{
			name: "schedule does not end at 1",
			def: &PipelineDefinition{Stages: []StageEntry{
				{Name: "a", Stage: okStage("a", nil), WeightBefore: 0, WeightAfter: 0.9},
			}},
			wantMsg: "want 1.0",
		},
		{
			name: "default candidate not declared",
			def: &PipelineDefinition{
				Stages: []StageEntry{
					{Name: "a", Stage: okStage("a", nil), WeightBefore: 0, WeightAfter: 1.0},
				},
				CandidateOrder:   []string{"x"},
				DefaultCandidate: "z",
			},
			wantMsg: "default candidate",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.def.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tc.wantMsg)
		})
	}
}
