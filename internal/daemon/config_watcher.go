package daemon

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/jonboulle/clockwork"

	"git.home.luguber.info/inful/wallhelper/internal/config"
	"git.home.luguber.info/inful/wallhelper/internal/logfields"
)

// DefaultReloadDebounce absorbs editors that write a file in several steps.
const DefaultReloadDebounce = 2 * time.Second

// ReloadFunc receives the outcome of every reload attempt.
type ReloadFunc func(settings *config.Settings, err error)

// ConfigWatcher monitors the configuration file and swaps validated settings into the
// store. An invalid file leaves the previous settings active.
type ConfigWatcher struct {
	configPath   string
	store        *config.Store
	onReload     ReloadFunc
	clock        clockwork.Clock
	logger       *slog.Logger
	watcher      *fsnotify.Watcher
	mu           sync.Mutex
	stopChan     chan struct{}
	stopped      bool
	reloadChan   chan struct{}
	debounceTime time.Duration
}

// NewConfigWatcher creates a new configuration file watcher
func NewConfigWatcher(configPath string, store *config.Store, onReload ReloadFunc) (*ConfigWatcher, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create file watcher: %w", err)
	}

	absPath, err := filepath.Abs(configPath)
	if err != nil {
		_ = watcher.Close()
		return nil, fmt.Errorf("failed to resolve config path: %w", err)
	}

	return &ConfigWatcher{
		configPath:   absPath,
		store:        store,
		onReload:     onReload,
		clock:        clockwork.NewRealClock(),
		logger:       slog.Default(),
		watcher:      watcher,
		stopChan:     make(chan struct{}),
		reloadChan:   make(chan struct{}, 1),
		debounceTime: DefaultReloadDebounce,
	}, nil
}

// SetDebounce overrides the quiet period before a reload. Call before Start.
func (cw *ConfigWatcher) SetDebounce(d time.Duration) {
	cw.debounceTime = d
}

// SetLogger routes the watcher's log output to logger. Call before Start.
func (cw *ConfigWatcher) SetLogger(logger *slog.Logger) {
	if logger != nil {
		cw.logger = logger
	}
}

// Start begins monitoring the configuration file
func (cw *ConfigWatcher) Start(ctx context.Context) error {
	cw.mu.Lock()
	defer cw.mu.Unlock()

	// Watch the directory: editors often replace the file instead of writing it.
	configDir := filepath.Dir(cw.configPath)
	if err := cw.watcher.Add(configDir); err != nil {
		return fmt.Errorf("failed to watch config directory %s: %w", configDir, err)
	}

	cw.logger.Info("Starting configuration watcher", logfields.Path(cw.configPath))

	go cw.watchLoop(ctx)
	go cw.reloadLoop(ctx)

	return nil
}

// Stop stops the configuration watcher. It is safe to call more than once.
func (cw *ConfigWatcher) Stop(_ context.Context) error {
	cw.mu.Lock()
	defer cw.mu.Unlock()

	if cw.stopped {
		return nil
	}
	cw.stopped = true
	cw.logger.Debug("Stopping configuration watcher")

	close(cw.stopChan)
	if err := cw.watcher.Close(); err != nil {
		return fmt.Errorf("closing file watcher: %w", err)
	}
	return nil
}

func (cw *ConfigWatcher) watchLoop(ctx context.Context) {
	configFile := filepath.Base(cw.configPath)

	for {
		select {
		case <-ctx.Done():
			return
		case <-cw.stopChan:
			return
		case event, ok := <-cw.watcher.Events:
			if !ok {
				return
			}
			if filepath.Base(event.Name) != configFile {
				continue
			}

			switch {
			case event.Has(fsnotify.Write), event.Has(fsnotify.Create), event.Has(fsnotify.Rename):
				cw.logger.Debug("Config file change detected", logfields.Path(event.Name), slog.String("op", event.Op.String()))
				cw.triggerReload()
			case event.Has(fsnotify.Remove):
				cw.logger.Warn("Config file removed; keeping current settings", logfields.Path(event.Name))
			}

		case err, ok := <-cw.watcher.Errors:
			if !ok {
				return
			}
			cw.logger.Error("Config watcher error", logfields.Error(err))
		}
	}
}

// reloadLoop handles debounced configuration reloads
func (cw *ConfigWatcher) reloadLoop(ctx context.Context) {
	var reloadTimer clockwork.Timer
	stop := func() {
		if reloadTimer != nil {
			reloadTimer.Stop()
		}
	}

	for {
		select {
		case <-ctx.Done():
			stop()
			return
		case <-cw.stopChan:
			stop()
			return
		case <-cw.reloadChan:
			stop()
			reloadTimer = cw.clock.AfterFunc(cw.debounceTime, cw.Reload)
		}
	}
}

func (cw *ConfigWatcher) triggerReload() {
	select {
	case cw.reloadChan <- struct{}{}:
	default:
		// reload already pending
	}
}

// Reload loads and validates the configuration file and, if it is valid, installs it.
func (cw *ConfigWatcher) Reload() {
	cw.logger.Info("Reloading configuration", logfields.Path(cw.configPath))

	next, err := config.LoadFile(cw.configPath)
	if err != nil {
		cw.logger.Error("Configuration reload rejected; keeping previous settings",
			logfields.Path(cw.configPath),
			logfields.Error(err))
		if cw.onReload != nil {
			cw.onReload(nil, err)
		}
		return
	}

	prev := cw.store.Swap(next)
	if changes := describeChanges(prev, next); len(changes) > 0 {
		cw.logger.Info("Configuration reloaded", slog.Any("changed", changes))
	} else {
		cw.logger.Info("Configuration reloaded without changes")
	}
	if cw.onReload != nil {
		cw.onReload(next, nil)
	}
}

// describeChanges lists the configuration keys whose values differ.
func describeChanges(prev, next *config.Settings) []string {
	if prev == nil || next == nil {
		return nil
	}
	var changed []string
	if prev.Boundaries != next.Boundaries {
		changed = append(changed, "dayparts")
	}
	if prev.WallpaperCommand != next.WallpaperCommand {
		changed = append(changed, config.KeyWallpaperCommand)
	}
	if prev.AlwaysChange != next.AlwaysChange {
		changed = append(changed, config.KeyAlwaysChange)
	}
	if prev.UpdateInterval != next.UpdateInterval {
		changed = append(changed, config.KeyUpdateInterval)
	}
	if prev.ReselectDelay != next.ReselectDelay {
		changed = append(changed, config.KeyReselectDelay)
	}
	if prev.ReselectBackoff != next.ReselectBackoff {
		changed = append(changed, config.KeyReselectBackoff)
	}
	return changed
}
