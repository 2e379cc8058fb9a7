package daemon

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/jonboulle/clockwork"
	prom "github.com/prometheus/client_golang/prometheus"
	promcollect "github.com/prometheus/client_golang/prometheus/collectors"

	"git.home.luguber.info/inful/wallhelper/internal/applier"
	"git.home.luguber.info/inful/wallhelper/internal/config"
	ferrors "git.home.luguber.info/inful/wallhelper/internal/foundation/errors"
	"git.home.luguber.info/inful/wallhelper/internal/logfields"
	"git.home.luguber.info/inful/wallhelper/internal/metrics"
	"git.home.luguber.info/inful/wallhelper/internal/registry"
	"git.home.luguber.info/inful/wallhelper/internal/rotation"
	"git.home.luguber.info/inful/wallhelper/internal/selector"
	"git.home.luguber.info/inful/wallhelper/internal/version"
)

// DefaultStatusInterval is how often the status job logs a report.
const DefaultStatusInterval = time.Hour

const shutdownTimeout = 5 * time.Second

// Options configures a Daemon. The zero value runs the rotation loop only.
type Options struct {
	// ConfigPath enables hot reload of the given file when set.
	ConfigPath string
	// MetricsAddr enables the metrics listener when set.
	MetricsAddr string
	// StatusInterval schedules the status report; zero disables it.
	StatusInterval time.Duration
	// StatusCron schedules the status report with a cron expression instead.
	StatusCron string

	Applier rotation.Applier
	Clock   clockwork.Clock
	Random  selector.Random
	Logger  *slog.Logger
}

// Daemon represents the main wallpaper service
type Daemon struct {
	opts     Options
	reg      *registry.Registry
	store    *config.Store
	status   atomic.Value // Status
	stopChan chan struct{}
	stopOnce sync.Once
	mu       sync.Mutex

	loop       *rotation.Loop
	tracker    *StatusTracker
	recorder   metrics.Recorder
	promReg    *prom.Registry
	scheduler  *Scheduler
	watcher    *ConfigWatcher
	httpServer *HTTPServer
}

// New wires a daemon over validated settings and a scanned registry.
func New(settings *config.Settings, reg *registry.Registry, opts Options) (*Daemon, error) {
	if settings == nil {
		return nil, ferrors.DaemonError("settings are required").Build()
	}
	if reg == nil {
		return nil, ferrors.DaemonError("image registry is required").Build()
	}
	if opts.Clock == nil {
		opts.Clock = clockwork.NewRealClock()
	}
	if opts.Applier == nil {
		opts.Applier = applier.NewShell()
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}

	d := &Daemon{
		opts:     opts,
		reg:      reg,
		store:    config.NewStore(settings),
		stopChan: make(chan struct{}),
		tracker:  NewStatusTracker(opts.Clock, reg.Count()),
		recorder: metrics.NoopRecorder{},
	}
	d.status.Store(StatusStopped)

	if opts.MetricsAddr != "" {
		d.promReg = prom.NewRegistry()
		d.promReg.MustRegister(promcollect.NewGoCollector(), promcollect.NewProcessCollector(promcollect.ProcessCollectorOpts{}))
		d.recorder = metrics.NewPrometheusRecorder(d.promReg)
		d.httpServer = NewHTTPServer(opts.MetricsAddr, d.promReg, d.tracker)
	}

	loopOpts := []rotation.Option{
		rotation.WithClock(opts.Clock),
		rotation.WithRecorder(d.recorder),
		rotation.WithLogger(opts.Logger),
		rotation.WithObserver(d.tracker.Observe),
	}
	if opts.Random != nil {
		loopOpts = append(loopOpts, rotation.WithRandom(opts.Random))
	}
	d.loop = rotation.New(reg, d.store, opts.Applier, loopOpts...)

	if opts.StatusInterval > 0 || opts.StatusCron != "" {
		s, err := NewScheduler(opts.Clock)
		if err != nil {
			return nil, ferrors.WrapError(err, ferrors.CategoryDaemon, "failed to create scheduler").Fatal().Build()
		}
		if opts.StatusCron != "" {
			_, err = s.ScheduleCron("status-report", opts.StatusCron, d.reportStatus)
		} else {
			_, err = s.ScheduleEvery("status-report", opts.StatusInterval, d.reportStatus)
		}
		if err != nil {
			_ = s.Stop(context.Background())
			return nil, ferrors.WrapError(err, ferrors.CategoryValidation, "invalid status schedule").
				Fatal().UserAction().
				WithContext("cron", opts.StatusCron).
				WithContext("interval", opts.StatusInterval.String()).
				Build()
		}
		d.scheduler = s
	}

	if opts.ConfigPath != "" {
		w, err := NewConfigWatcher(opts.ConfigPath, d.store, d.observeReload)
		if err != nil {
			return nil, ferrors.WrapError(err, ferrors.CategoryDaemon, "failed to create config watcher").Fatal().Build()
		}
		w.SetLogger(opts.Logger)
		d.watcher = w
	}

	return d, nil
}

// Run starts all components and blocks until ctx is canceled, Stop is called, or the
// rotation loop fails. Components are shut down before it returns. A Daemon runs once.
func (d *Daemon) Run(ctx context.Context) error {
	d.mu.Lock()
	if d.GetStatus() != StatusStopped {
		d.mu.Unlock()
		return ferrors.DaemonError("daemon is not in stopped state").
			WithContext("status", string(d.GetStatus())).
			Build()
	}
	d.setStatus(StatusStarting)
	log := d.opts.Logger

	if d.httpServer != nil {
		if err := d.httpServer.Start(ctx); err != nil {
			d.setStatus(StatusError)
			d.mu.Unlock()
			return ferrors.WrapError(err, ferrors.CategoryDaemon, "failed to start metrics server").
				Fatal().UserAction().
				WithContext("addr", d.opts.MetricsAddr).
				Build()
		}
	}
	if d.scheduler != nil {
		d.scheduler.Start(ctx)
	}
	if d.watcher != nil {
		if err := d.watcher.Start(ctx); err != nil {
			log.Error("Failed to start config watcher; hot reload disabled", logfields.Error(err))
		}
	}

	d.setStatus(StatusRunning)
	settings := d.store.Current()
	log.Info("wallhelper daemon started",
		slog.String("version", version.Version),
		logfields.Path(d.reg.Root()),
		slog.Int("images", d.reg.Count()),
		logfields.Interval(settings.UpdateInterval),
		slog.String("dayparts", settings.Boundaries.String()),
		slog.Bool("always_change", settings.AlwaysChange))

	d.mu.Unlock()

	loopCtx, cancel := d.stopAwareContext(ctx)
	err := d.loop.Run(loopCtx)
	cancel()

	d.shutdown()
	if err != nil {
		d.setStatus(StatusError)
		return err
	}
	d.setStatus(StatusStopped)
	log.Info("wallhelper daemon stopped", slog.String("uptime", d.tracker.Snapshot().Uptime))
	return nil
}

// Stop asks a running daemon to shut down. Run returns once components are stopped.
func (d *Daemon) Stop(_ context.Context) error {
	d.stopOnce.Do(func() {
		if s := d.GetStatus(); s == StatusRunning || s == StatusStarting {
			d.setStatus(StatusStopping)
		}
		close(d.stopChan)
	})
	return nil
}

func (d *Daemon) shutdown() {
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	log := d.opts.Logger

	if d.watcher != nil {
		if err := d.watcher.Stop(ctx); err != nil {
			log.Error("Failed to stop config watcher", logfields.Error(err))
		}
	}
	if d.scheduler != nil {
		if err := d.scheduler.Stop(ctx); err != nil {
			log.Error("Failed to stop scheduler", logfields.Error(err))
		}
	}
	if d.httpServer != nil {
		if err := d.httpServer.Stop(ctx); err != nil {
			log.Error("Failed to stop metrics server", logfields.Error(err))
		}
	}
}

func (d *Daemon) setStatus(s Status) {
	d.status.Store(s)
	d.tracker.SetStatus(s)
}

func (d *Daemon) observeReload(_ *config.Settings, err error) {
	d.recorder.IncConfigReload(err == nil)
	d.tracker.ObserveReload(err == nil)
}

func (d *Daemon) reportStatus() {
	d.tracker.Report(d.opts.Logger)
}

// GetStatus returns the current daemon status
func (d *Daemon) GetStatus() Status {
	status, ok := d.status.Load().(Status)
	if !ok {
		return StatusError
	}
	return status
}

// Settings returns the active settings.
func (d *Daemon) Settings() config.Settings {
	return d.store.Current()
}

// Snapshot returns the current status snapshot.
func (d *Daemon) Snapshot() StatusSnapshot {
	return d.tracker.Snapshot()
}

// MetricsAddr returns the bound metrics address, or "" when metrics are disabled.
func (d *Daemon) MetricsAddr() string {
	if d.httpServer == nil {
		return ""
	}
	return d.httpServer.Addr()
}
