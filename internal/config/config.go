package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"

	"git.home.luguber.info/inful/wallhelper/internal/daypart"
	ferrors "git.home.luguber.info/inful/wallhelper/internal/foundation/errors"
)

// Placeholder is replaced by the chosen image path in the wallpaper command.
const Placeholder = "{{image}}"

// Recognized configuration file names, in lookup order.
const (
	FileNameTOML = "config.toml"
	FileNameYAML = "config.yaml"
	FileNameYML  = "config.yml"
)

// Settings is a fully validated configuration. Only Load and Validate produce one.
type Settings struct {
	Boundaries       daypart.Boundaries
	WallpaperCommand string
	AlwaysChange     bool
	UpdateInterval   time.Duration
	ReselectDelay    time.Duration
	ReselectBackoff  RetryBackoffMode
}

// Document is the on-disk shape of the configuration, used to render the default file.
type Document struct {
	Morning          int    `toml:"morning" yaml:"morning" comment:"Hour (0-24) each daypart starts. Night runs until morning."`
	Day              int    `toml:"day" yaml:"day"`
	Evening          int    `toml:"evening" yaml:"evening"`
	Night            int    `toml:"night" yaml:"night"`
	WallpaperCommand string `toml:"wallpaper_command" yaml:"wallpaper_command" comment:"Command that sets the wallpaper. {{image}} is replaced by the image path."`
	AlwaysChange     bool   `toml:"always_change" yaml:"always_change" comment:"Avoid showing the same image twice in a row."`
	UpdateInterval   int    `toml:"update_interval" yaml:"update_interval" comment:"Minutes between wallpaper changes."`
}

// DefaultDocument returns the configuration written on first run.
func DefaultDocument() Document {
	b := daypart.DefaultBoundaries()
	return Document{
		Morning:          b.Morning,
		Day:              b.Day,
		Evening:          b.Evening,
		Night:            b.Night,
		WallpaperCommand: "feh --bg-fill '" + Placeholder + "'",
		AlwaysChange:     true,
		UpdateInterval:   30,
	}
}

// FindFile returns the first recognized configuration file in dir.
func FindFile(dir string) (string, error) {
	for _, name := range []string{FileNameTOML, FileNameYAML, FileNameYML} {
		path := filepath.Join(dir, name)
		if _, err := os.Stat(path); err == nil {
			return path, nil
		}
	}
	return "", ferrors.NewError(ferrors.CategoryNotFound, "configuration file not found").
		Fatal().UserAction().
		WithContext("path", filepath.Join(dir, FileNameTOML)).
		Build()
}

// Load reads the configuration file in dir and validates it.
func Load(dir string) (*Settings, string, error) {
	path, err := FindFile(dir)
	if err != nil {
		return nil, "", err
	}
	settings, err := LoadFile(path)
	return settings, path, err
}

// LoadFile parses path as TOML or YAML depending on its extension and validates it.
func LoadFile(path string) (*Settings, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, ferrors.ConfigError("failed to read config file").
			WithCause(err).
			WithContext("path", path).
			Build()
	}

	raw, err := Decode(path, data)
	if err != nil {
		return nil, err
	}

	for _, key := range UnknownKeys(raw) {
		slog.Warn("Ignoring unknown configuration key", slog.String("key", key), slog.String("path", path))
	}

	settings, err := Validate(raw)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	if !strings.Contains(settings.WallpaperCommand, Placeholder) {
		slog.Warn("wallpaper_command has no image placeholder; the path is only passed via the environment",
			slog.String("placeholder", Placeholder),
			slog.String("env", EnvImage))
	}
	return settings, nil
}

// Decode parses a configuration document into a flat key/value map.
func Decode(path string, data []byte) (map[string]any, error) {
	raw := map[string]any{}
	var err error
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, &raw)
	default:
		err = toml.Unmarshal(data, &raw)
	}
	if err != nil {
		return nil, ferrors.ConfigError("failed to parse config file").
			WithCause(err).
			WithContext("path", path).
			Build()
	}
	return raw, nil
}

// Render encodes doc in the format implied by path's extension.
func Render(path string, doc Document) ([]byte, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return yaml.Marshal(doc)
	default:
		return toml.Marshal(doc)
	}
}
