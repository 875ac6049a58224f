package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadFromMissingFileUsesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	cfg, err := LoadFrom(path)
	require.NoError(t, err)

	assert.Equal(t, "webm", cfg.Format)
	assert.True(t, cfg.Video)
	assert.Equal(t, "default", cfg.Audio)
	assert.Equal(t, 30, cfg.FrameRate)
	assert.Equal(t, "vp8", cfg.VideoCodec)
	assert.Equal(t, DefaultFilenameTemplate, cfg.FilenameTemplate)
	assert.Equal(t, path, cfg.Path())
}

func TestLoadFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte(`
folder = "/srv/videos"
format = "mkv"
video = false
audio = "none"
record_mouse = false
frame_rate = 15
delay = 1.5
command = "notify-send done"
area = "0,0,640x480"
`), 0o644))

	cfg, err := LoadFrom(path)
	require.NoError(t, err)

	assert.Equal(t, "/srv/videos", cfg.Folder)
	assert.Equal(t, "mkv", cfg.Format)
	assert.False(t, cfg.Video)
	assert.Equal(t, "none", cfg.Audio)
	assert.False(t, cfg.RecordMouse)
	assert.Equal(t, 15, cfg.FrameRate)
	assert.Equal(t, 1500*time.Millisecond, cfg.StartDelay())
	assert.Equal(t, "notify-send done", cfg.Command)
	assert.Equal(t, "0,0,640x480", cfg.Area)
	assert.Equal(t, "vp8", cfg.VideoCodec, "unset keys keep defaults")
}

func TestLoadFromMalformedFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte("format = [broken"), 0o644))

	_, err := LoadFrom(path)
	assert.Error(t, err)
}

func TestSetPersists(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.toml")
	cfg, err := LoadFrom(path)
	require.NoError(t, err)

	require.NoError(t, cfg.Set("frame_rate", "60"))
	require.NoError(t, cfg.Set("video", "false"))
	require.NoError(t, cfg.Set("format", "mkv"))
	require.NoError(t, cfg.Set("filename", "demo"))

	reloaded, err := LoadFrom(path)
	require.NoError(t, err)
	assert.Equal(t, 60, reloaded.FrameRate)
	assert.False(t, reloaded.Video)
	assert.Equal(t, "mkv", reloaded.Format)
	assert.Equal(t, "demo", reloaded.Filename)
}

func TestSetValidates(t *testing.T) {
	cfg, err := LoadFrom(filepath.Join(t.TempDir(), "config.toml"))
	require.NoError(t, err)

	assert.Error(t, cfg.Set("frame_rate", "0"))
	assert.Error(t, cfg.Set("frame_rate", "fast"))
	assert.Error(t, cfg.Set("video", "maybe"))
	assert.Error(t, cfg.Set("format", "flv"))
	assert.Error(t, cfg.Set("area", "1,2"))
	assert.Error(t, cfg.Set("delay", "-1"))
	assert.Error(t, cfg.Set("log_format", "xml"))
	assert.Error(t, cfg.Set("folder", "http://example.com/videos"))
	assert.Error(t, cfg.Set("nope", "1"))

	assert.Equal(t, 30, cfg.FrameRate)
	assert.NoFileExists(t, cfg.Path())
}

func TestGet(t *testing.T) {
	cfg := Default()
	v, err := cfg.Get("record_mouse")
	require.NoError(t, err)
	assert.Equal(t, "true", v)

	for _, key := range Keys() {
		_, err := cfg.Get(key)
		assert.NoError(t, err, key)
	}

	_, err = cfg.Get("nope")
	assert.Error(t, err)
}

func TestResolveFolder(t *testing.T) {
	home, err := os.UserHomeDir()
	require.NoError(t, err)

	got, err := ResolveFolder("file:///home/me/Videos%20Raw")
	require.NoError(t, err)
	assert.Equal(t, "/home/me/Videos Raw", got)

	got, err = ResolveFolder("~/clips")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(home, "clips"), got)

	got, err = ResolveFolder("/tmp/out")
	require.NoError(t, err)
	assert.Equal(t, "/tmp/out", got)

	_, err = ResolveFolder("smb://server/share")
	assert.Error(t, err)
}

func TestLoadEnvOverrides(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("GREENREC_CONFIG", filepath.Join(dir, "config.toml"))
	t.Setenv("XDG_STATE_HOME", filepath.Join(dir, "state"))
	t.Setenv("GREENREC_FOLDER", "/override")
	t.Setenv("GREENREC_LOG_LEVEL", "debug")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "/override", cfg.Folder)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.DirExists(t, cfg.StateDir)
	assert.Equal(t, filepath.Join(dir, "state", "greenrec"), cfg.StateDir)
}

func TestSetKeepsEnvOverridesOutOfFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	require.NoError(t, os.WriteFile(path, []byte("folder = \"/from-file\"\n"), 0o644))
	t.Setenv("GREENREC_CONFIG", path)
	t.Setenv("XDG_STATE_HOME", filepath.Join(dir, "state"))
	t.Setenv("GREENREC_FOLDER", "/override")
	t.Setenv("GREENREC_LOG_LEVEL", "debug")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "/override", cfg.Folder)
	require.NoError(t, cfg.Set("frame_rate", "24"))
	assert.Equal(t, "/override", cfg.Folder, "the running config keeps the override")

	saved, err := LoadFrom(path)
	require.NoError(t, err)
	assert.Equal(t, "/from-file", saved.Folder)
	assert.Equal(t, "info", saved.LogLevel)
	assert.Equal(t, 24, saved.FrameRate)

	require.NoError(t, cfg.Set("folder", "/chosen"))
	saved, err = LoadFrom(path)
	require.NoError(t, err)
	assert.Equal(t, "/chosen", saved.Folder)
}
