package orchestrator

import "fmt"

// StageEntry binds a named stage to its slot in the progress schedule.
// WeightBefore is the cumulative progress reported when the stage starts,
// WeightAfter when it finishes (successfully or not).
type StageEntry struct {
	Name         string
	Stage        Stage
	WeightBefore float64
	WeightAfter  float64
}

// PipelineDefinition is the ordered list of stages plus the candidate
// configuration used by result assembly. It is configuration, not state:
// read-only and safe to share across concurrent invocations.
type PipelineDefinition struct {
	Stages []StageEntry

	// CandidateOrder is the declared ordering of generated candidates,
	// used as the stable tie-break during best-candidate selection.
	CandidateOrder []string

	// DefaultCandidate is selected when no ranking scores are available.
	DefaultCandidate string
}

// TotalWeight returns the final entry's WeightAfter, or 0 for an empty
// pipeline. A well-formed schedule ends at 1.0.
func (d *PipelineDefinition) TotalWeight() float64 {
	if len(d.Stages) == 0 {
		return 0
	}
	return d.Stages[len(d.Stages)-1].WeightAfter
}

// Validate checks the structural correctness properties of the definition:
// non-empty unique stage names, weights in [0,1] and monotonically
// non-decreasing across the list, a final weight of 1.0, and a default
// candidate that appears in the declared candidate order.
func (d *PipelineDefinition) Validate() error {
	if len(d.Stages) == 0 {
		return fmt.Errorf("pipeline: no stages defined")
	}

	seen := make(map[string]bool, len(d.Stages))
	prev := 0.0
	for i, entry := range d.Stages {
		if entry.Name == "" {
			return fmt.Errorf("pipeline: stage %d has no name", i)
		}
		if entry.Stage == nil {
			return fmt.Errorf("pipeline: stage %q has no implementation", entry.Name)
		}
		if seen[entry.Name] {
			return fmt.Errorf("pipeline: duplicate stage name %q", entry.Name)
		}
		seen[entry.Name] = true

		if entry.WeightBefore < 0 || entry.WeightAfter > 1 {
			return fmt.Errorf("pipeline: stage %q weights out of [0,1]: %.2f-%.2f",
				entry.Name, entry.WeightBefore, entry.WeightAfter)
		}
		if entry.WeightBefore < prev {
			return fmt.Errorf("pipeline: stage %q WeightBefore %.2f decreases below %.2f",
				entry.Name, entry.WeightBefore, prev)
		}
		if entry.WeightAfter < entry.WeightBefore {
			return fmt.Errorf("pipeline: stage %q WeightAfter %.2f below WeightBefore %.2f",
				entry.Name, entry.WeightAfter, entry.WeightBefore)
		}
		prev = entry.WeightAfter
	}

	if d.TotalWeight() != 1.0 {
		return fmt.Errorf("pipeline: progress schedule ends at %.2f, want 1.0", d.TotalWeight())
	}

	if d.DefaultCandidate != "" {
		found := false
		for _, name := range d.CandidateOrder {
			if name == d.DefaultCandidate {
				found = true
				break
			}
		}
		if !found {
			return fmt.Errorf("pipeline: default candidate %q not in declared candidate order", d.DefaultCandidate)
		}
	}

	return nil
}
