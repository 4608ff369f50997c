package orchestrator

import "fmt"

// ProgressReporter emits workflow status events through a buffered channel.
type ProgressReporter struct {
	ch chan WorkflowStatus
}

// NewProgressReporter creates a ProgressReporter with a buffered channel of size 64.
func NewProgressReporter() *ProgressReporter {
	return &ProgressReporter{
		ch: make(chan WorkflowStatus, 64),
	}
}

// Emit sends a status event in a non-blocking fashion.
// If the channel is full, the event is silently dropped.
func (pr *ProgressReporter) Emit(status WorkflowStatus) {
	select {
	case pr.ch <- status:
	default:
		// Drop the event if the channel is full.
	}
}

// Subscribe returns a read-only channel for consuming status events.
func (pr *ProgressReporter) Subscribe() <-chan WorkflowStatus {
	return pr.ch
}

// Close closes the status event channel.
func (pr *ProgressReporter) Close() {
	close(pr.ch)
}

// FormatStatus formats a WorkflowStatus as a human-readable status line.
func FormatStatus(status WorkflowStatus) string {
	switch status.Phase {
	case PhasePending:
		return fmt.Sprintf("  ○ %s (pending)", status.StageName)
	case PhaseRunning:
		return fmt.Sprintf("  ● %s... [%3.0f%%]", status.StageName, status.Progress*100)
	case PhaseSucceeded:
		return fmt.Sprintf("  ✓ %s: %s [%3.0f%%]", status.StageName, status.Message, status.Progress*100)
	case PhaseFailed:
		return fmt.Sprintf("  ✗ %s failed: %s [%3.0f%%]", status.StageName, status.Message, status.Progress*100)
	default:
		return fmt.Sprintf("  ? %s (unknown phase)", status.StageName)
	}
}
