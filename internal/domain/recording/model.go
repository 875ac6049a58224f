package recording

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// NoAudio is the audio source value that disables audio capture.
const NoAudio = "none"

// Region is a capture rectangle in screen coordinates.
type Region struct {
	X      int `json:"x"`
	Y      int `json:"y"`
	Width  int `json:"width"`
	Height int `json:"height"`
}

// String formats the region as X,Y,WxH, the form accepted by ParseRegion.
func (r Region) String() string {
	return fmt.Sprintf("%d,%d,%dx%d", r.X, r.Y, r.Width, r.Height)
}

// Size returns the WxH part used by ffmpeg's -video_size.
func (r Region) Size() string {
	return fmt.Sprintf("%dx%d", r.Width, r.Height)
}

// ParseRegion parses "X,Y,WxH". An empty string yields a nil region.
func ParseRegion(s string) (*Region, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}

	parts := strings.Split(s, ",")
	if len(parts) != 3 {
		return nil, fmt.Errorf("invalid region %q: expected X,Y,WxH", s)
	}
	size := strings.Split(parts[2], "x")
	if len(size) != 2 {
		return nil, fmt.Errorf("invalid region %q: expected X,Y,WxH", s)
	}

	var vals [4]int
	for i, raw := range []string{parts[0], parts[1], size[0], size[1]} {
		v, err := strconv.Atoi(strings.TrimSpace(raw))
		if err != nil {
			return nil, fmt.Errorf("invalid region %q: %w", s, err)
		}
		vals[i] = v
	}

	r := &Region{X: vals[0], Y: vals[1], Width: vals[2], Height: vals[3]}
	if r.Width <= 0 || r.Height <= 0 {
		return nil, fmt.Errorf("invalid region %q: width and height must be positive", s)
	}
	return r, nil
}

// Options is the capture configuration of one session. It is built once
// before the session starts and never mutated afterwards.
type Options struct {
	Folder      string
	Filename    string
	Format      string
	Video       bool
	AudioSource string
	ShowMouse   bool
	FollowMouse bool
	FrameRate   int
	Area        *Region
	Command     string
	VideoCodec  string
	AudioCodec  string
	Delay       time.Duration
}

// AudioEnabled reports whether an audio source is configured.
func (o Options) AudioEnabled() bool {
	return o.AudioSource != "" && o.AudioSource != NoAudio
}

// Status is the lifecycle state of a session.
type Status string

const (
	StatusIdle     Status = "idle"
	StatusStarting Status = "starting"
	StatusActive   Status = "active"
	StatusStopping Status = "stopping"
	StatusFailed   Status = "failed"
)

// State is persisted while a recorder process owns a session, so that other
// invocations can find and stop it.
type State struct {
	ID         string    `json:"id"`
	PID        int       `json:"pid"`
	Status     Status    `json:"status"`
	Backend    string    `json:"backend,omitempty"`
	StartedAt  time.Time `json:"started_at"`
	OutputPath string    `json:"output_path"`
	VideoPath  string    `json:"video_path,omitempty"`
	AudioPath  string    `json:"audio_path,omitempty"`
	Error      string    `json:"error,omitempty"`

	// PIDCreatedAt is the creation time of PID, so a reused PID is not
	// mistaken for the recorder.
	PIDCreatedAt time.Time `json:"pid_created_at,omitempty"`
}

// Result describes a finished session.
type Result struct {
	ID         string        `json:"id"`
	PID        int           `json:"pid"`
	OutputPath string        `json:"output_path,omitempty"`
	StartedAt  time.Time     `json:"started_at"`
	StoppedAt  time.Time     `json:"stopped_at"`
	Duration   time.Duration `json:"duration"`
	Warnings   []string      `json:"warnings,omitempty"`
	Error      string        `json:"error,omitempty"`
}
