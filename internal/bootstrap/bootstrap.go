// Package bootstrap creates the configuration directory skeleton on first run.
package bootstrap

import (
	"errors"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"

	"git.home.luguber.info/inful/wallhelper/internal/config"
	"git.home.luguber.info/inful/wallhelper/internal/daypart"
	ferrors "git.home.luguber.info/inful/wallhelper/internal/foundation/errors"
	"git.home.luguber.info/inful/wallhelper/internal/logfields"
	"git.home.luguber.info/inful/wallhelper/internal/registry"
)

const (
	dirPerm  fs.FileMode = 0o755
	filePerm fs.FileMode = 0o644
)

// Result reports what Ensure changed.
type Result struct {
	Root          string
	CreatedDirs   []string
	ConfigPath    string
	ConfigWritten bool
}

// Ensure creates every bucket directory under root and writes the default config.toml
// when no configuration file exists. With force the default file replaces config.toml.
// Existing images and directories are never touched.
func Ensure(root string, force bool) (*Result, error) {
	res := &Result{Root: root}

	for _, dir := range Dirs(root) {
		created, err := mkdir(dir)
		if err != nil {
			return nil, err
		}
		if created {
			res.CreatedDirs = append(res.CreatedDirs, dir)
		}
	}

	existing, findErr := config.FindFile(root)
	if findErr == nil && !force {
		res.ConfigPath = existing
		return res, nil
	}

	path := filepath.Join(root, config.FileNameTOML)
	data, err := config.Render(path, config.DefaultDocument())
	if err != nil {
		return nil, ferrors.InternalError("failed to render default configuration").WithCause(err).Build()
	}
	if err := os.WriteFile(path, data, filePerm); err != nil {
		return nil, ferrors.WrapError(err, ferrors.CategoryFileSystem, "failed to write default configuration").
			Fatal().UserAction().
			WithContext("path", path).
			Build()
	}
	slog.Info("Wrote default configuration", logfields.Path(path))

	res.ConfigPath = path
	res.ConfigWritten = true
	return res, nil
}

// Dirs lists every directory Ensure creates: root, the daypart buckets and the hour buckets.
func Dirs(root string) []string {
	dirs := []string{root, filepath.Join(root, registry.DaypartsDir), filepath.Join(root, registry.HoursDir)}
	for _, n := range daypart.All {
		dirs = append(dirs, registry.DaypartDir(root, n))
	}
	for h := range daypart.HoursPerDay {
		dirs = append(dirs, registry.HourDir(root, h))
	}
	return dirs
}

// NeedsInit reports whether root lacks a configuration file or any bucket directory.
func NeedsInit(root string) bool {
	if _, err := config.FindFile(root); err != nil {
		return true
	}
	for _, dir := range Dirs(root) {
		if info, err := os.Stat(dir); err != nil || !info.IsDir() {
			return true
		}
	}
	return false
}

func mkdir(dir string) (bool, error) {
	info, err := os.Stat(dir)
	switch {
	case err == nil && info.IsDir():
		return false, nil
	case err == nil:
		return false, ferrors.FileSystemError("path exists and is not a directory").
			WithContext("path", dir).
			Build()
	case !errors.Is(err, fs.ErrNotExist):
		return false, ferrors.WrapError(err, ferrors.CategoryFileSystem, "failed to inspect directory").
			Fatal().UserAction().
			WithContext("path", dir).
			Build()
	}

	if err := os.MkdirAll(dir, dirPerm); err != nil {
		return false, ferrors.WrapError(err, ferrors.CategoryFileSystem, "failed to create directory").
			Fatal().UserAction().
			WithContext("path", dir).
			Build()
	}
	slog.Debug("Created directory", logfields.Path(dir))
	return true, nil
}
