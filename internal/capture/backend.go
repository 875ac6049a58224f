// Package capture holds the video capture backends and the area selectors.
package capture

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/devbydaniel/greenrec/internal/domain/recording"
)

var (
	ErrUnsupportedDisplay = errors.New("display server not supported")
	ErrUnsupportedCodec   = errors.New("video codec not supported by backend")
	ErrNotStarted         = errors.New("capture not started")
	ErrAlreadyStarted     = errors.New("capture already started")
)

// Backend captures the screen into a file.
type Backend interface {
	Name() string
	// Start begins writing video to output. It returns once capture runs.
	Start(ctx context.Context, output string, opts recording.Options) error
	// Stop ends capture and returns the finalized file path.
	Stop(ctx context.Context) (string, error)
}

// DisplayServer is the kind of graphical session we run in.
type DisplayServer string

const (
	X11     DisplayServer = "x11"
	Wayland DisplayServer = "wayland"
)

// DetectDisplayServer maps XDG_SESSION_TYPE to a display server. An unset
// variable is treated as X11; any other unknown type is an error.
func DetectDisplayServer(getenv func(string) string) (DisplayServer, error) {
	kind := strings.ToLower(strings.TrimSpace(getenv("XDG_SESSION_TYPE")))
	switch {
	case kind == "" || kind == "x11" || kind == "xorg":
		return X11, nil
	case strings.Contains(kind, "wayland"):
		return Wayland, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnsupportedDisplay, kind)
	}
}
