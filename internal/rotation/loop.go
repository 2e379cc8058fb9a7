package rotation

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"

	"git.home.luguber.info/inful/wallhelper/internal/applier"
	"git.home.luguber.info/inful/wallhelper/internal/config"
	"git.home.luguber.info/inful/wallhelper/internal/daypart"
	"git.home.luguber.info/inful/wallhelper/internal/logfields"
	"git.home.luguber.info/inful/wallhelper/internal/metrics"
	"git.home.luguber.info/inful/wallhelper/internal/registry"
	"git.home.luguber.info/inful/wallhelper/internal/retry"
	"git.home.luguber.info/inful/wallhelper/internal/selector"
)

// SettingsSource yields the active settings. The loop reads it on every tick.
type SettingsSource interface {
	Current() config.Settings
}

// Applier runs a rendered wallpaper command for image.
type Applier interface {
	Apply(ctx context.Context, command, image string) error
}

// State is carried from one tick to the next.
type State struct {
	// LastApplied is the path of the last image whose command succeeded.
	LastApplied string
	// Denials counts consecutive ticks the repeat gate rejected.
	Denials int
}

// Result describes what a single tick did and how long to wait before the next one.
type Result struct {
	TickID    string
	Outcome   metrics.TickOutcome
	Daypart   daypart.Name
	Hour      int
	Selection selector.Selection
	Command   string
	Err       error
	Wait      time.Duration
}

// Observer is notified after every completed tick.
type Observer func(State, Result)

// Loop is the rotation loop. It is not safe for concurrent use; run one Loop per process.
type Loop struct {
	reg      *registry.Registry
	settings SettingsSource
	applier  Applier

	clock    clockwork.Clock
	rnd      selector.Random
	recorder metrics.Recorder
	logger   *slog.Logger
	observer Observer
}

// Option configures a Loop.
type Option func(*Loop)

// WithClock sets the clock used for the hour lookup and for waiting between ticks.
func WithClock(c clockwork.Clock) Option {
	return func(l *Loop) { l.clock = c }
}

// WithRandom sets the source for image picks.
func WithRandom(r selector.Random) Option {
	return func(l *Loop) { l.rnd = r }
}

// WithRecorder sets the metrics recorder.
func WithRecorder(r metrics.Recorder) Option {
	return func(l *Loop) { l.recorder = r }
}

// WithLogger sets the logger. Defaults to slog.Default().
func WithLogger(lg *slog.Logger) Option {
	return func(l *Loop) { l.logger = lg }
}

// WithObserver registers fn to be called after each tick.
func WithObserver(fn Observer) Option {
	return func(l *Loop) { l.observer = fn }
}

// New creates a Loop over a scanned registry.
func New(reg *registry.Registry, settings SettingsSource, a Applier, opts ...Option) *Loop {
	l := &Loop{
		reg:      reg,
		settings: settings,
		applier:  a,
		clock:    clockwork.NewRealClock(),
		rnd:      selector.NewRandom(),
		recorder: metrics.NoopRecorder{},
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Tick performs one rotation step and returns the next state. The only error it returns
// is a daypart resolution failure; apply failures are reported in the Result.
func (l *Loop) Tick(ctx context.Context, st State) (State, Result, error) {
	settings := l.settings.Current()
	hour := l.clock.Now().Hour()
	res := Result{TickID: uuid.NewString(), Hour: hour}

	part, err := daypart.Resolve(hour, settings.Boundaries)
	if err != nil {
		return st, res, err
	}
	res.Daypart = part
	l.recorder.SetDaypart(string(part))

	sel := selector.Select(part, hour, l.reg, l.rnd)
	res.Selection = sel
	l.recorder.SetCandidates(string(sel.Source), sel.Candidates)

	log := l.logger.With(
		logfields.TickID(res.TickID),
		logfields.Daypart(string(part)),
		logfields.Hour(hour),
	)

	if !ShouldApply(settings.AlwaysChange, sel.Path, st.LastApplied, sel.Candidates) {
		st.Denials++
		res.Outcome = metrics.OutcomeSkipped
		res.Wait = retry.FromSettings(settings).Delay(st.Denials)
		l.recorder.IncTick(res.Outcome)
		log.Debug("Candidate repeats last image, reselecting",
			logfields.Image(sel.Path),
			logfields.Candidates(sel.Candidates),
			logfields.Wait(res.Wait))
		return st, res, nil
	}
	st.Denials = 0
	res.Wait = settings.UpdateInterval

	if !sel.Found {
		res.Outcome = metrics.OutcomeEmpty
		l.recorder.IncTick(res.Outcome)
		log.Info("No image found", logfields.Interval(res.Wait))
		return st, res, nil
	}

	res.Command = applier.Render(settings.WallpaperCommand, sel.Path)
	start := l.clock.Now()
	err = l.applier.Apply(ctx, res.Command, sel.Path)
	elapsed := l.clock.Since(start)
	l.recorder.ObserveApplyDuration(elapsed, err == nil)

	if err != nil {
		res.Outcome = metrics.OutcomeApplyFailed
		res.Err = err
		l.recorder.IncTick(res.Outcome)
		log.Error("Failed to apply wallpaper",
			logfields.Image(sel.Path),
			logfields.Command(res.Command),
			logfields.Error(err))
		return st, res, nil
	}

	st.LastApplied = sel.Path
	res.Outcome = metrics.OutcomeApplied
	l.recorder.IncTick(res.Outcome)
	log.Info("Applied wallpaper",
		logfields.Image(sel.Path),
		logfields.Source(string(sel.Source)),
		logfields.Candidates(sel.Candidates),
		logfields.DurationMS(float64(elapsed.Microseconds())/1000),
		logfields.Interval(res.Wait))
	return st, res, nil
}

// Run ticks until ctx is cancelled, waiting Result.Wait between ticks. Cancellation is a
// normal shutdown and returns nil; a resolution failure is returned as is.
func (l *Loop) Run(ctx context.Context) error {
	var st State
	for {
		if ctx.Err() != nil {
			return nil
		}

		next, res, err := l.Tick(ctx, st)
		if err != nil {
			l.logger.Error("Rotation stopped", logfields.Hour(res.Hour), logfields.Error(err))
			return err
		}
		st = next
		if l.observer != nil {
			l.observer(st, res)
		}

		if !l.wait(ctx, res.Wait) {
			return nil
		}
	}
}

// wait blocks for d on the loop clock. It returns false if ctx ended first.
func (l *Loop) wait(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return ctx.Err() == nil
	}
	timer := l.clock.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return false
	case <-timer.Chan():
		return true
	}
}
