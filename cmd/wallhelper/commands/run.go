package commands

import (
	"log/slog"
	"time"

	"git.home.luguber.info/inful/wallhelper/internal/bootstrap"
	"git.home.luguber.info/inful/wallhelper/internal/config"
	"git.home.luguber.info/inful/wallhelper/internal/daemon"
	"git.home.luguber.info/inful/wallhelper/internal/logfields"
)

// RunCmd implements the 'run' command.
type RunCmd struct {
	MetricsAddr    string        `name:"metrics-addr" help:"Serve /metrics, /status and /healthz on this address (disabled when empty)" env:"WALLHELPER_METRICS_ADDR"`
	StatusInterval time.Duration `name:"status-interval" help:"How often to log a status report (0 disables)" default:"1h"`
	StatusCron     string        `name:"status-cron" help:"Cron expression for status reports; overrides --status-interval"`
	NoWatch        bool          `name:"no-watch" help:"Do not reload the configuration file when it changes"`
}

func (r *RunCmd) Run(g *Global, root *CLI) error {
	log := g.logger()

	dir, err := config.ResolveDir(root.ConfigDir)
	if err != nil {
		return err
	}
	if bootstrap.NeedsInit(dir) {
		res, err := bootstrap.Ensure(dir, false)
		if err != nil {
			return err
		}
		log.Info("Initialized configuration directory",
			logfields.Path(dir),
			slog.Int("dirs_created", len(res.CreatedDirs)))
	}

	settings, path, reg, err := loadAll(root)
	if err != nil {
		return err
	}
	if reg.Count() == 0 {
		log.Warn("No images found; add files under the dayparts and hours directories", logfields.Path(reg.Root()))
	}

	opts := daemon.Options{
		MetricsAddr:    r.MetricsAddr,
		StatusInterval: r.StatusInterval,
		StatusCron:     r.StatusCron,
		Logger:         log,
	}
	if !r.NoWatch {
		opts.ConfigPath = path
	}

	d, err := daemon.New(settings, reg, opts)
	if err != nil {
		return err
	}
	return d.Run(g.ctx())
}
