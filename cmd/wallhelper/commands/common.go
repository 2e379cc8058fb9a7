package commands

import (
	"context"
	"io"
	"log/slog"
	"os"

	"github.com/alecthomas/kong"

	"git.home.luguber.info/inful/wallhelper/internal/config"
	"git.home.luguber.info/inful/wallhelper/internal/logfields"
	"git.home.luguber.info/inful/wallhelper/internal/registry"
)

// Global carries process-wide state into command Run methods.
type Global struct {
	Context context.Context
	Out     io.Writer
	Logger  *slog.Logger
}

func (g *Global) ctx() context.Context {
	if g == nil || g.Context == nil {
		return context.Background()
	}
	return g.Context
}

func (g *Global) out() io.Writer {
	if g == nil || g.Out == nil {
		return os.Stdout
	}
	return g.Out
}

func (g *Global) logger() *slog.Logger {
	if g == nil || g.Logger == nil {
		return slog.Default()
	}
	return g.Logger
}

// CLI definition & global flags.
type CLI struct {
	ConfigDir string           `name:"config-dir" short:"c" help:"Configuration directory (default: $WALLHELPER_CONFIG_DIR, $XDG_CONFIG_HOME/wallhelper or ~/.config/wallhelper)" type:"path"`
	Verbose   bool             `short:"v" help:"Enable verbose logging"`
	LogLevel  string           `name:"log-level" help:"Log level (debug, info, warn, error)" default:"info" env:"WALLHELPER_LOG_LEVEL"`
	LogFormat string           `name:"log-format" help:"Log format" enum:"text,json" default:"text" env:"WALLHELPER_LOG_FORMAT"`
	Version   kong.VersionFlag `name:"version" help:"Show version and exit"`

	Run  RunCmd  `cmd:"" default:"1" help:"Rotate wallpapers until interrupted (default)"`
	Init InitCmd `cmd:"" help:"Create the image directories and a default configuration"`
	Pick PickCmd `cmd:"" help:"Show the image that would be chosen now, optionally applying it"`
	List ListCmd `cmd:"" help:"Show image counts per bucket"`

	logger *slog.Logger
}

// AfterApply runs after flag parsing; setup logging once.
// nolint:unparam // AfterApply currently never returns an error.
func (c *CLI) AfterApply() error {
	level := config.NormalizeLogLevel(c.LogLevel)
	if c.Verbose {
		level = config.LogLevelDebug
	}
	c.logger = config.NewLogger(os.Stderr, level, config.NormalizeLogFormat(c.LogFormat))
	slog.SetDefault(c.logger)
	return nil
}

// Logger returns the logger configured by AfterApply, or the default logger.
func (c *CLI) Logger() *slog.Logger {
	if c.logger == nil {
		return slog.Default()
	}
	return c.logger
}

// loadAll resolves the config directory, then loads settings and scans the images.
func loadAll(root *CLI) (*config.Settings, string, *registry.Registry, error) {
	dir, err := config.ResolveDir(root.ConfigDir)
	if err != nil {
		return nil, "", nil, err
	}
	settings, path, err := config.Load(dir)
	if err != nil {
		return nil, "", nil, err
	}
	reg, err := registry.Scan(dir)
	if err != nil {
		return nil, "", nil, err
	}
	slog.Debug("Loaded configuration", logfields.Path(path), slog.Int("images", reg.Count()))
	return settings, path, reg, nil
}
