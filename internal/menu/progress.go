package menu

import "fmt"

// ProgressReporter emits progress events through a buffered channel.
type ProgressReporter struct {
	ch chan ProgressEvent
}

// NewProgressReporter creates a ProgressReporter with a buffered channel of size 64.
func NewProgressReporter() *ProgressReporter {
	return &ProgressReporter{
		ch: make(chan ProgressEvent, 64),
	}
}

// Emit sends a progress event. Pending and working events never block and
// are dropped when the channel is full; terminal events wait for room, so
// the subscriber must keep draining until Close.
func (pr *ProgressReporter) Emit(event ProgressEvent) {
	if event.Status.Terminal() {
		pr.ch <- event
		return
	}
	select {
	case pr.ch <- event:
	default:
	}
}

// Subscribe returns a read-only channel for consuming progress events.
func (pr *ProgressReporter) Subscribe() <-chan ProgressEvent {
	return pr.ch
}

// Close closes the progress event channel.
func (pr *ProgressReporter) Close() {
	close(pr.ch)
}

// FormatProgress formats a ProgressEvent as a human-readable status line.
func FormatProgress(event ProgressEvent) string {
	switch event.Status {
	case ProgressPending:
		return fmt.Sprintf("  ○ %s (pending)", event.Chain)
	case ProgressWorking:
		return fmt.Sprintf("  ● %s...", event.Chain)
	case ProgressComplete:
		if event.Message != "" {
			return fmt.Sprintf("  ✓ %s merged (%s)", event.Chain, event.Message)
		}
		return fmt.Sprintf("  ✓ %s merged", event.Chain)
	case ProgressFailed:
		return fmt.Sprintf("  ✗ %s failed: %s", event.Chain, event.Message)
	default:
		return fmt.Sprintf("  ? %s (unknown status)", event.Chain)
	}
}

// FormatHeader formats the header printed before an assembly.
// Returns: "[{source}] {n} chains"
func FormatHeader(source string, chains int) string {
	noun := "chains"
	if chains == 1 {
		noun = "chain"
	}
	return fmt.Sprintf("[%s] %d %s", source, chains, noun)
}
