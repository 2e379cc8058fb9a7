package bootstrap

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/wallhelper/internal/config"
	ferrors "git.home.luguber.info/inful/wallhelper/internal/foundation/errors"
	"git.home.luguber.info/inful/wallhelper/internal/registry"
)

func TestEnsure_CreatesSkeletonAndConfig(t *testing.T) {
	root := filepath.Join(t.TempDir(), "wallhelper")
	require.True(t, NeedsInit(root))

	res, err := Ensure(root, false)
	require.NoError(t, err)

	assert.True(t, res.ConfigWritten)
	assert.Equal(t, filepath.Join(root, config.FileNameTOML), res.ConfigPath)
	assert.Len(t, res.CreatedDirs, 3+4+24)
	assert.DirExists(t, filepath.Join(root, "dayparts", "night"))
	assert.DirExists(t, filepath.Join(root, "hours", "0"))
	assert.DirExists(t, filepath.Join(root, "hours", "23"))
	assert.False(t, NeedsInit(root))

	settings, err := config.LoadFile(res.ConfigPath)
	require.NoError(t, err)
	assert.True(t, settings.AlwaysChange)
	assert.Contains(t, settings.WallpaperCommand, config.Placeholder)

	reg, err := registry.Scan(root)
	require.NoError(t, err)
	assert.Zero(t, reg.Count())
}

func TestEnsure_KeepsExistingConfig(t *testing.T) {
	root := t.TempDir()
	custom := "wallpaper_command = \"x {{image}}\"\nalways_change = false\nupdate_interval = 3\n"
	path := filepath.Join(root, config.FileNameTOML)
	require.NoError(t, os.WriteFile(path, []byte(custom), 0o600))

	res, err := Ensure(root, false)
	require.NoError(t, err)
	assert.False(t, res.ConfigWritten)
	assert.Equal(t, path, res.ConfigPath)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, custom, string(data))
}

func TestEnsure_KeepsExistingYAMLConfig(t *testing.T) {
	root := t.TempDir()
	path := filepath.Join(root, config.FileNameYAML)
	require.NoError(t, os.WriteFile(path, []byte("always_change: true\n"), 0o600))

	res, err := Ensure(root, false)
	require.NoError(t, err)
	assert.False(t, res.ConfigWritten)
	assert.Equal(t, path, res.ConfigPath)
	assert.NoFileExists(t, filepath.Join(root, config.FileNameTOML))
}

func TestEnsure_ForceRewritesConfig(t *testing.T) {
	root := t.TempDir()
	path := filepath.Join(root, config.FileNameTOML)
	require.NoError(t, os.WriteFile(path, []byte("broken = "), 0o600))

	res, err := Ensure(root, true)
	require.NoError(t, err)
	assert.True(t, res.ConfigWritten)

	_, err = config.LoadFile(path)
	require.NoError(t, err)
}

func TestEnsure_KeepsImages(t *testing.T) {
	root := t.TempDir()
	_, err := Ensure(root, false)
	require.NoError(t, err)

	img := filepath.Join(root, "dayparts", "morning", "sun.jpg")
	require.NoError(t, os.WriteFile(img, []byte("jpg"), 0o600))

	res, err := Ensure(root, true)
	require.NoError(t, err)
	assert.Empty(t, res.CreatedDirs)
	assert.FileExists(t, img)
}

func TestEnsure_FileInPlaceOfBucket(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, "dayparts"), []byte{}, 0o600))

	_, err := Ensure(root, false)
	require.Error(t, err)
	assert.True(t, ferrors.HasCategory(err, ferrors.CategoryFileSystem))
}
