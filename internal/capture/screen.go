package capture

import (
	"fmt"

	"github.com/jezek/xgb"
	"github.com/jezek/xgb/xproto"
)

// ScreenSizer reports the size of the whole output.
type ScreenSizer interface {
	ScreenSize(display string) (width, height int, err error)
}

// X11Screen reads the default screen geometry from the X server.
type X11Screen struct{}

func (X11Screen) ScreenSize(display string) (int, int, error) {
	conn, err := xgb.NewConnDisplay(display)
	if err != nil {
		return 0, 0, fmt.Errorf("connecting to X display %q: %w", display, err)
	}
	defer conn.Close()

	screen := xproto.Setup(conn).DefaultScreen(conn)
	return int(screen.WidthInPixels), int(screen.HeightInPixels), nil
}

// FixedScreen is a ScreenSizer with a known size.
type FixedScreen struct {
	Width, Height int
}

func (s FixedScreen) ScreenSize(string) (int, int, error) {
	return s.Width, s.Height, nil
}
