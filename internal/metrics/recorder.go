// Package metrics defines the observability hooks of the menu assembler and
// a Prometheus implementation of them.
package metrics

import "time"

// Outcome labels the result of one chain merge.
type Outcome string

const (
	OutcomeSuccess       Outcome = "success"
	OutcomeConfiguration Outcome = "configuration_error"
	OutcomeStructural    Outcome = "structural_error"
	OutcomeCanceled      Outcome = "canceled"
)

// Recorder receives merge metrics. Implementations must be safe for
// concurrent use; the assembler calls them from several goroutines.
type Recorder interface {
	IncMerge(strategy string, outcome Outcome)
	ObserveMergeDuration(strategy string, d time.Duration)
	IncPlaceholderCache(hit bool)
	ObserveAssembly(chains int, d time.Duration)
}

// NoopRecorder discards everything. It is the default when metrics are not
// configured.
type NoopRecorder struct{}

func (NoopRecorder) IncMerge(string, Outcome)                   {}
func (NoopRecorder) ObserveMergeDuration(string, time.Duration) {}
func (NoopRecorder) IncPlaceholderCache(bool)                   {}
func (NoopRecorder) ObserveAssembly(int, time.Duration)         {}

var _ Recorder = NoopRecorder{}
