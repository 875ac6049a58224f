package config

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/devbydaniel/greenrec/internal/domain/recording"
	"github.com/devbydaniel/greenrec/internal/media"
)

// DefaultFilenameTemplate names recordings when no filename is configured.
// Available placeholders: {{.Year}}, {{.Month}}, {{.Day}}, {{.Hour}}, {{.Minute}}, {{.Second}}
const DefaultFilenameTemplate = "{{.Year}}-{{.Month}}-{{.Day}}_{{.Hour}}-{{.Minute}}-{{.Second}}"

type Config struct {
	Folder           string  // output folder, plain path or file:// URI
	Filename         string  // file stem; empty means FilenameTemplate
	FilenameTemplate string  // Go template for generated names
	Format           string  // container format
	Video            bool    // record the screen
	Audio            string  // PulseAudio source, or "none"
	RecordMouse      bool    // draw the cursor
	FollowMouse      bool    // x11grab follows the pointer
	FrameRate        int     // frames per second
	Delay            float64 // seconds to wait before recording starts
	Command          string  // shell command run after each recording
	VideoCodec       string
	AudioCodec       string
	Area             string // saved region, X,Y,WxH
	SettleDelayMs    int    // extra pause around stop
	StopTimeoutMs    int    // grace before a capture process is killed
	LogLevel         string
	LogFormat        string

	StateDir string
	path     string
	// file values of keys replaced by environment overrides
	shadowed map[string]string
}

type fileConfig struct {
	Folder           string   `toml:"folder,omitempty"`
	Filename         *string  `toml:"filename,omitempty"`
	FilenameTemplate string   `toml:"filename_template,omitempty"`
	Format           string   `toml:"format,omitempty"`
	Video            *bool    `toml:"video,omitempty"`
	Audio            string   `toml:"audio,omitempty"`
	RecordMouse      *bool    `toml:"record_mouse,omitempty"`
	FollowMouse      *bool    `toml:"follow_mouse,omitempty"`
	FrameRate        int      `toml:"frame_rate,omitempty"`
	Delay            *float64 `toml:"delay,omitempty"`
	Command          *string  `toml:"command,omitempty"`
	VideoCodec       string   `toml:"codec_video,omitempty"`
	AudioCodec       string   `toml:"codec_audio,omitempty"`
	Area             *string  `toml:"area,omitempty"`
	SettleDelayMs    *int     `toml:"settle_delay_ms,omitempty"`
	StopTimeoutMs    int      `toml:"stop_timeout_ms,omitempty"`
	LogLevel         string   `toml:"log_level,omitempty"`
	LogFormat        string   `toml:"log_format,omitempty"`
}

// Default returns the built-in settings.
func Default() *Config {
	return &Config{
		Folder:           defaultVideosDir(),
		FilenameTemplate: DefaultFilenameTemplate,
		Format:           "webm",
		Video:            true,
		Audio:            "default",
		RecordMouse:      true,
		FrameRate:        30,
		VideoCodec:       "vp8",
		AudioCodec:       "vorbis",
		StopTimeoutMs:    10000,
		LogLevel:         "info",
		LogFormat:        "text",
		StateDir:         defaultStateDir(),
	}
}

// Load reads the user's config file, applying environment overrides.
func Load() (*Config, error) {
	path := os.Getenv("GREENREC_CONFIG")
	if path == "" {
		path = configFilePath()
	}
	cfg, err := LoadFrom(path)
	if err != nil {
		return nil, err
	}

	applyEnvOverrides(cfg)

	// Ensure directories exist
	if err := os.MkdirAll(cfg.StateDir, 0o755); err != nil {
		return nil, err
	}

	return cfg, nil
}

// LoadFrom reads path on top of the defaults. A missing file is not an error.
func LoadFrom(path string) (*Config, error) {
	cfg := Default()
	cfg.path = path

	if path == "" {
		return cfg, nil
	}
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return cfg, nil
	}

	var fc fileConfig
	if _, err := toml.DecodeFile(path, &fc); err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	cfg.merge(fc)
	return cfg, nil
}

func (c *Config) merge(fc fileConfig) {
	if fc.Folder != "" {
		c.Folder = fc.Folder
	}
	if fc.Filename != nil {
		c.Filename = *fc.Filename
	}
	if fc.FilenameTemplate != "" {
		c.FilenameTemplate = fc.FilenameTemplate
	}
	if fc.Format != "" {
		c.Format = fc.Format
	}
	if fc.Video != nil {
		c.Video = *fc.Video
	}
	if fc.Audio != "" {
		c.Audio = fc.Audio
	}
	if fc.RecordMouse != nil {
		c.RecordMouse = *fc.RecordMouse
	}
	if fc.FollowMouse != nil {
		c.FollowMouse = *fc.FollowMouse
	}
	if fc.FrameRate > 0 {
		c.FrameRate = fc.FrameRate
	}
	if fc.Delay != nil {
		c.Delay = *fc.Delay
	}
	if fc.Command != nil {
		c.Command = *fc.Command
	}
	if fc.VideoCodec != "" {
		c.VideoCodec = fc.VideoCodec
	}
	if fc.AudioCodec != "" {
		c.AudioCodec = fc.AudioCodec
	}
	if fc.Area != nil {
		c.Area = *fc.Area
	}
	if fc.SettleDelayMs != nil {
		c.SettleDelayMs = *fc.SettleDelayMs
	}
	if fc.StopTimeoutMs > 0 {
		c.StopTimeoutMs = fc.StopTimeoutMs
	}
	if fc.LogLevel != "" {
		c.LogLevel = fc.LogLevel
	}
	if fc.LogFormat != "" {
		c.LogFormat = fc.LogFormat
	}
}

func (c *Config) toFile() fileConfig {
	if len(c.shadowed) > 0 {
		saved := *c
		saved.shadowed = nil
		for key, v := range c.shadowed {
			*envKeys[key](&saved) = v
		}
		return saved.toFile()
	}
	return fileConfig{
		Folder:           c.Folder,
		Filename:         &c.Filename,
		FilenameTemplate: c.FilenameTemplate,
		Format:           c.Format,
		Video:            &c.Video,
		Audio:            c.Audio,
		RecordMouse:      &c.RecordMouse,
		FollowMouse:      &c.FollowMouse,
		FrameRate:        c.FrameRate,
		Delay:            &c.Delay,
		Command:          &c.Command,
		VideoCodec:       c.VideoCodec,
		AudioCodec:       c.AudioCodec,
		Area:             &c.Area,
		SettleDelayMs:    &c.SettleDelayMs,
		StopTimeoutMs:    c.StopTimeoutMs,
		LogLevel:         c.LogLevel,
		LogFormat:        c.LogFormat,
	}
}

// Path returns the file the config is read from and saved to.
func (c *Config) Path() string { return c.path }

// Save writes the config back to its file atomically.
func (c *Config) Save() error {
	if c.path == "" {
		return fmt.Errorf("config has no file path")
	}
	if err := os.MkdirAll(filepath.Dir(c.path), 0o755); err != nil {
		return err
	}

	tmp, err := os.CreateTemp(filepath.Dir(c.path), ".config-*.toml")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())

	if err := toml.NewEncoder(tmp).Encode(c.toFile()); err != nil {
		tmp.Close()
		return fmt.Errorf("encoding config: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), c.path)
}

// Keys lists the settable keys in display order.
func Keys() []string {
	return append([]string(nil), keyOrder...)
}

// Get returns the string form of key.
func (c *Config) Get(key string) (string, error) {
	f, ok := fields[key]
	if !ok {
		return "", fmt.Errorf("unknown config key %q", key)
	}
	return f.get(c), nil
}

// Set parses and validates value, stores it under key and saves the file.
func (c *Config) Set(key, value string) error {
	f, ok := fields[key]
	if !ok {
		return fmt.Errorf("unknown config key %q", key)
	}
	if err := f.set(c, strings.TrimSpace(value)); err != nil {
		return fmt.Errorf("%s: %w", key, err)
	}
	delete(c.shadowed, key)
	return c.Save()
}

// SettleDelay is the optional pause around stop.
func (c *Config) SettleDelay() time.Duration {
	return time.Duration(c.SettleDelayMs) * time.Millisecond
}

// StopTimeout is the grace period given to capture processes.
func (c *Config) StopTimeout() time.Duration {
	return time.Duration(c.StopTimeoutMs) * time.Millisecond
}

// StartDelay is Delay as a duration.
func (c *Config) StartDelay() time.Duration {
	return time.Duration(c.Delay * float64(time.Second))
}

// ResolveFolder turns a folder setting (path, ~/path or file:// URI) into
// a filesystem path.
func ResolveFolder(folder string) (string, error) {
	u, err := url.Parse(folder)
	if err != nil || u.Scheme == "" {
		return expandTilde(folder), nil
	}
	if u.Scheme != "file" {
		return "", fmt.Errorf("unsupported folder scheme %q", u.Scheme)
	}
	return u.Path, nil
}

var envKeys = map[string]func(c *Config) *string{
	"folder":     func(c *Config) *string { return &c.Folder },
	"log_level":  func(c *Config) *string { return &c.LogLevel },
	"log_format": func(c *Config) *string { return &c.LogFormat },
}

var envNames = map[string]string{
	"folder":     "GREENREC_FOLDER",
	"log_level":  "GREENREC_LOG_LEVEL",
	"log_format": "GREENREC_LOG_FORMAT",
}

// applyEnvOverrides replaces settings for this run only; Save keeps writing
// the values read from the file.
func applyEnvOverrides(cfg *Config) {
	for key, env := range envNames {
		v := os.Getenv(env)
		if v == "" {
			continue
		}
		p := envKeys[key](cfg)
		if cfg.shadowed == nil {
			cfg.shadowed = map[string]string{}
		}
		cfg.shadowed[key] = *p
		*p = v
	}
}

func configFilePath() string {
	var configDir string
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		configDir = filepath.Join(xdg, "greenrec")
	} else if home, err := os.UserHomeDir(); err == nil {
		configDir = filepath.Join(home, ".config", "greenrec")
	} else {
		return ""
	}
	return filepath.Join(configDir, "config.toml")
}

func defaultStateDir() string {
	if xdg := os.Getenv("XDG_STATE_HOME"); xdg != "" {
		return filepath.Join(xdg, "greenrec")
	}
	if home, err := os.UserHomeDir(); err == nil {
		return filepath.Join(home, ".local", "state", "greenrec")
	}
	return filepath.Join(os.TempDir(), "greenrec")
}

func defaultVideosDir() string {
	if xdg := os.Getenv("XDG_VIDEOS_DIR"); xdg != "" {
		return xdg
	}
	if home, err := os.UserHomeDir(); err == nil {
		return filepath.Join(home, "Videos")
	}
	return filepath.Join(".", "Videos")
}

func expandTilde(path string) string {
	if strings.HasPrefix(path, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, path[2:])
		}
	}
	return path
}

type field struct {
	get func(c *Config) string
	set func(c *Config, v string) error
}

var keyOrder = []string{
	"folder", "filename", "filename_template", "format", "video", "audio",
	"record_mouse", "follow_mouse", "frame_rate", "delay", "command",
	"codec_video", "codec_audio", "area", "settle_delay_ms", "stop_timeout_ms",
	"log_level", "log_format",
}

func stringField(p func(c *Config) *string, validate func(string) error) field {
	return field{
		get: func(c *Config) string { return *p(c) },
		set: func(c *Config, v string) error {
			if validate != nil {
				if err := validate(v); err != nil {
					return err
				}
			}
			*p(c) = v
			return nil
		},
	}
}

func boolField(p func(c *Config) *bool) field {
	return field{
		get: func(c *Config) string { return strconv.FormatBool(*p(c)) },
		set: func(c *Config, v string) error {
			b, err := strconv.ParseBool(v)
			if err != nil {
				return fmt.Errorf("expected true or false, got %q", v)
			}
			*p(c) = b
			return nil
		},
	}
}

func intField(p func(c *Config) *int, min int) field {
	return field{
		get: func(c *Config) string { return strconv.Itoa(*p(c)) },
		set: func(c *Config, v string) error {
			n, err := strconv.Atoi(v)
			if err != nil {
				return fmt.Errorf("expected an integer, got %q", v)
			}
			if n < min {
				return fmt.Errorf("must be at least %d", min)
			}
			*p(c) = n
			return nil
		},
	}
}

func notEmpty(v string) error {
	if v == "" {
		return fmt.Errorf("must not be empty")
	}
	return nil
}

func oneOf(options ...string) func(string) error {
	return func(v string) error {
		for _, o := range options {
			if v == o {
				return nil
			}
		}
		return fmt.Errorf("must be one of %s", strings.Join(options, ", "))
	}
}

var fields = map[string]field{
	"folder": stringField(func(c *Config) *string { return &c.Folder }, func(v string) error {
		if err := notEmpty(v); err != nil {
			return err
		}
		_, err := ResolveFolder(v)
		return err
	}),
	"filename":          stringField(func(c *Config) *string { return &c.Filename }, nil),
	"filename_template": stringField(func(c *Config) *string { return &c.FilenameTemplate }, notEmpty),
	"format": stringField(func(c *Config) *string { return &c.Format }, func(v string) error {
		_, err := media.Lookup(v)
		return err
	}),
	"video":        boolField(func(c *Config) *bool { return &c.Video }),
	"audio":        stringField(func(c *Config) *string { return &c.Audio }, notEmpty),
	"record_mouse": boolField(func(c *Config) *bool { return &c.RecordMouse }),
	"follow_mouse": boolField(func(c *Config) *bool { return &c.FollowMouse }),
	"frame_rate":   intField(func(c *Config) *int { return &c.FrameRate }, 1),
	"delay": {
		get: func(c *Config) string { return strconv.FormatFloat(c.Delay, 'f', -1, 64) },
		set: func(c *Config, v string) error {
			d, err := strconv.ParseFloat(v, 64)
			if err != nil || d < 0 {
				return fmt.Errorf("expected a non-negative number of seconds, got %q", v)
			}
			c.Delay = d
			return nil
		},
	},
	"command":     stringField(func(c *Config) *string { return &c.Command }, nil),
	"codec_video": stringField(func(c *Config) *string { return &c.VideoCodec }, nil),
	"codec_audio": stringField(func(c *Config) *string { return &c.AudioCodec }, nil),
	"area": stringField(func(c *Config) *string { return &c.Area }, func(v string) error {
		_, err := recording.ParseRegion(v)
		return err
	}),
	"settle_delay_ms": intField(func(c *Config) *int { return &c.SettleDelayMs }, 0),
	"stop_timeout_ms": intField(func(c *Config) *int { return &c.StopTimeoutMs }, 1),
	"log_level":       stringField(func(c *Config) *string { return &c.LogLevel }, oneOf("trace", "debug", "info", "warn", "error")),
	"log_format":      stringField(func(c *Config) *string { return &c.LogFormat }, oneOf("text", "json")),
}
