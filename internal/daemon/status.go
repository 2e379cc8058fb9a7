package daemon

import (
	"log/slog"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"

	"git.home.luguber.info/inful/wallhelper/internal/daypart"
	"git.home.luguber.info/inful/wallhelper/internal/logfields"
	"git.home.luguber.info/inful/wallhelper/internal/metrics"
	"git.home.luguber.info/inful/wallhelper/internal/rotation"
)

// Status represents the current lifecycle state of the daemon
type Status string

const (
	StatusStopped  Status = "stopped"
	StatusStarting Status = "starting"
	StatusRunning  Status = "running"
	StatusStopping Status = "stopping"
	StatusError    Status = "error"
)

// StatusSnapshot is a point-in-time copy of what the rotation loop has done.
type StatusSnapshot struct {
	Status        Status                      `json:"status"`
	StartTime     time.Time                   `json:"start_time"`
	Uptime        string                      `json:"uptime"`
	Images        int                         `json:"images"`
	Daypart       string                      `json:"daypart,omitempty"`
	LastApplied   string                      `json:"last_applied,omitempty"`
	LastAppliedAt *time.Time                  `json:"last_applied_at,omitempty"`
	LastOutcome   metrics.TickOutcome         `json:"last_outcome,omitempty"`
	LastError     string                      `json:"last_error,omitempty"`
	Ticks         map[metrics.TickOutcome]int `json:"ticks"`
	Reloads       int                         `json:"config_reloads"`
	FailedReloads int                         `json:"failed_config_reloads"`
}

// StatusTracker accumulates tick results for status reporting. It is written by the
// rotation loop observer and read by the scheduler and HTTP handlers.
type StatusTracker struct {
	mu    sync.RWMutex
	clock clockwork.Clock
	snap  StatusSnapshot
}

// NewStatusTracker creates a tracker for a registry holding images entries.
func NewStatusTracker(clock clockwork.Clock, images int) *StatusTracker {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &StatusTracker{
		clock: clock,
		snap: StatusSnapshot{
			Status:    StatusStopped,
			StartTime: clock.Now(),
			Images:    images,
			Ticks:     map[metrics.TickOutcome]int{},
		},
	}
}

// SetStatus records a lifecycle transition.
func (t *StatusTracker) SetStatus(s Status) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if s == StatusStarting {
		t.snap.StartTime = t.clock.Now()
	}
	t.snap.Status = s
}

// Observe is a rotation.Observer.
func (t *StatusTracker) Observe(st rotation.State, res rotation.Result) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.snap.Ticks[res.Outcome]++
	t.snap.LastOutcome = res.Outcome
	if res.Daypart != "" {
		t.snap.Daypart = string(res.Daypart)
	}
	if res.Err != nil {
		t.snap.LastError = res.Err.Error()
	}
	if res.Outcome == metrics.OutcomeApplied {
		now := t.clock.Now()
		t.snap.LastAppliedAt = &now
		t.snap.LastError = ""
	}
	t.snap.LastApplied = st.LastApplied
}

// ObserveReload records a config reload attempt.
func (t *StatusTracker) ObserveReload(ok bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if ok {
		t.snap.Reloads++
	} else {
		t.snap.FailedReloads++
	}
}

// Snapshot returns a copy safe for use after the lock is released.
func (t *StatusTracker) Snapshot() StatusSnapshot {
	t.mu.RLock()
	defer t.mu.RUnlock()

	snap := t.snap
	snap.Uptime = t.clock.Since(snap.StartTime).Round(time.Second).String()
	snap.Ticks = make(map[metrics.TickOutcome]int, len(t.snap.Ticks))
	for k, v := range t.snap.Ticks {
		snap.Ticks[k] = v
	}
	if t.snap.LastAppliedAt != nil {
		at := *t.snap.LastAppliedAt
		snap.LastAppliedAt = &at
	}
	return snap
}

// Report logs the current snapshot at info level.
func (t *StatusTracker) Report(logger *slog.Logger) {
	if logger == nil {
		logger = slog.Default()
	}
	snap := t.Snapshot()

	attrs := []any{
		slog.String("status", string(snap.Status)),
		slog.String("uptime", snap.Uptime),
		slog.Int("images", snap.Images),
		slog.Int("applied", snap.Ticks[metrics.OutcomeApplied]),
		slog.Int("failed", snap.Ticks[metrics.OutcomeApplyFailed]),
		slog.Int("empty", snap.Ticks[metrics.OutcomeEmpty]),
	}
	if snap.Daypart != "" {
		attrs = append(attrs, logfields.Daypart(daypart.Name(snap.Daypart).Title()))
	}
	if snap.LastApplied != "" {
		attrs = append(attrs, logfields.Image(snap.LastApplied))
	}
	if snap.LastError != "" {
		attrs = append(attrs, slog.String("last_error", snap.LastError))
	}
	logger.Info("Rotation status", attrs...)
}
