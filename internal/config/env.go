package config

import (
	"os"
	"path/filepath"

	"github.com/joho/godotenv"

	ferrors "git.home.luguber.info/inful/wallhelper/internal/foundation/errors"
)

const (
	// AppDirName is the directory created under the user's config home.
	AppDirName = "wallhelper"
	// EnvConfigDir overrides the config directory location.
	EnvConfigDir = "WALLHELPER_CONFIG_DIR"
	// EnvImage carries the chosen image path into the wallpaper command.
	EnvImage = "WALLHELPER_IMAGE"
)

// LoadEnvFile loads the first of .env and .env.local found in the working directory.
// Existing process environment variables are not overwritten. It returns the name of the
// loaded file, or "" when none exists.
func LoadEnvFile() (string, error) {
	for _, name := range []string{".env", ".env.local"} {
		if _, err := os.Stat(name); err != nil {
			continue
		}
		if err := godotenv.Load(name); err != nil {
			return "", ferrors.ConfigError("failed to load environment file").
				WithCause(err).
				WithContext("path", name).
				Build()
		}
		return name, nil
	}
	return "", nil
}

// ResolveDir returns the config directory: the explicit value if set, else
// $WALLHELPER_CONFIG_DIR, else $XDG_CONFIG_HOME/wallhelper, else ~/.config/wallhelper.
func ResolveDir(explicit string) (string, error) {
	if explicit != "" {
		return filepath.Abs(explicit)
	}
	if dir := os.Getenv(EnvConfigDir); dir != "" {
		return filepath.Abs(dir)
	}
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, AppDirName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", ferrors.ConfigError("user home directory not set").
			WithCause(err).
			Build()
	}
	return filepath.Join(home, ".config", AppDirName), nil
}
