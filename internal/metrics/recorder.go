package metrics

import "time"

// TickOutcome enumerates the ways a rotation tick can end.
type TickOutcome string

const (
	OutcomeApplied     TickOutcome = "applied"
	OutcomeApplyFailed TickOutcome = "apply_failed"
	OutcomeEmpty       TickOutcome = "empty"
	OutcomeSkipped     TickOutcome = "skipped"
)

// Recorder defines observability hooks for the rotation loop.
type Recorder interface {
	IncTick(outcome TickOutcome)
	ObserveApplyDuration(d time.Duration, success bool)
	SetCandidates(source string, n int)
	SetDaypart(name string)
	IncConfigReload(success bool)
}

// NoopRecorder is a Recorder that does nothing (default when metrics not configured).
type NoopRecorder struct{}

func (NoopRecorder) IncTick(TickOutcome)                      {}
func (NoopRecorder) ObserveApplyDuration(time.Duration, bool) {}
func (NoopRecorder) SetCandidates(string, int)                {}
func (NoopRecorder) SetDaypart(string)                        {}
func (NoopRecorder) IncConfigReload(bool)                     {}
