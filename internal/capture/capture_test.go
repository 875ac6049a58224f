package capture

import (
	"context"
	"errors"
	"os"
	"testing"
	"time"

	"github.com/godbus/dbus/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/devbydaniel/greenrec/internal/domain/recording"
	"github.com/devbydaniel/greenrec/internal/logging"
	"github.com/devbydaniel/greenrec/internal/proc"
	"github.com/devbydaniel/greenrec/internal/proc/proctest"
)

type busCall struct {
	method string
	args   []interface{}
}

type fakeBus struct {
	calls   []busCall
	replies map[string][]interface{}
	errs    map[string]error
}

func (f *fakeBus) CallWithContext(_ context.Context, method string, _ dbus.Flags, args ...interface{}) *dbus.Call {
	f.calls = append(f.calls, busCall{method: method, args: args})
	return &dbus.Call{Method: method, Args: args, Body: f.replies[method], Err: f.errs[method]}
}

func newGnomeBus() *fakeBus {
	return &fakeBus{
		replies: map[string][]interface{}{
			screencastIface + ".Screencast":     {true, ""},
			screencastIface + ".ScreencastArea": {true, ""},
			screencastIface + ".StopScreencast": {true},
			screenshotIface + ".SelectArea":     {int32(5), int32(6), int32(700), int32(500)},
		},
		errs: map[string]error{},
	}
}

func TestDetectDisplayServer(t *testing.T) {
	env := func(v string) func(string) string {
		return func(string) string { return v }
	}

	for in, want := range map[string]DisplayServer{
		"":        X11,
		"x11":     X11,
		"Xorg":    X11,
		"wayland": Wayland,
	} {
		got, err := DetectDisplayServer(env(in))
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}

	_, err := DetectDisplayServer(env("tty"))
	assert.ErrorIs(t, err, ErrUnsupportedDisplay)
}

func TestX11CommandFullScreen(t *testing.T) {
	b := NewX11Backend(&proctest.Runner{}, FixedScreen{Width: 1920, Height: 1080}, ":0", time.Second, logging.Discard())

	cmd, err := b.Command("/v/out.video.webm", recording.Options{
		FrameRate:  30,
		ShowMouse:  true,
		VideoCodec: "vp8",
	})
	require.NoError(t, err)
	assert.Equal(t, "ffmpeg", cmd.Name)
	assert.Equal(t, []string{
		"-video_size", "1920x1080",
		"-draw_mouse", "1",
		"-framerate", "30",
		"-f", "x11grab",
		"-i", ":0+0,0",
		"-q:v", "1",
		"-c:v", "libvpx",
		"/v/out.video.webm", "-y",
	}, cmd.Args)
}

func TestX11CommandRegionFollowMouse(t *testing.T) {
	b := NewX11Backend(&proctest.Runner{}, FixedScreen{Width: 1920, Height: 1080}, ":1", time.Second, logging.Discard())

	cmd, err := b.Command("out.mkv", recording.Options{
		FrameRate:   15,
		FollowMouse: true,
		Area:        &recording.Region{X: 10, Y: 20, Width: 300, Height: 200},
	})
	require.NoError(t, err)
	assert.Equal(t, []string{
		"-video_size", "300x200",
		"-draw_mouse", "0",
		"-follow_mouse", "centered",
		"-framerate", "15",
		"-f", "x11grab",
		"-i", ":1+10,20",
		"-q:v", "1",
		"out.mkv", "-y",
	}, cmd.Args)
}

type brokenScreen struct{}

func (brokenScreen) ScreenSize(string) (int, int, error) { return 0, 0, errors.New("no X") }

func TestX11StartFailsWithoutScreen(t *testing.T) {
	r := &proctest.Runner{}
	b := NewX11Backend(r, brokenScreen{}, ":0", time.Second, logging.Discard())
	require.Error(t, b.Start(context.Background(), "out.webm", recording.Options{FrameRate: 30}))
	assert.Empty(t, r.Started)
}

func TestX11StartStop(t *testing.T) {
	r := &proctest.Runner{}
	b := NewX11Backend(r, FixedScreen{Width: 800, Height: 600}, ":0", time.Second, logging.Discard())

	_, err := b.Stop(context.Background())
	assert.ErrorIs(t, err, ErrNotStarted)

	require.NoError(t, b.Start(context.Background(), "out.webm", recording.Options{FrameRate: 30}))
	assert.ErrorIs(t, b.Start(context.Background(), "out.webm", recording.Options{}), ErrAlreadyStarted)
	require.Len(t, r.Procs, 1)

	path, err := b.Stop(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "out.webm", path)

	stopped, sig := r.Procs[0].Stopped()
	assert.True(t, stopped)
	assert.Equal(t, os.Interrupt, sig)
	assert.Equal(t, "out.webm.ffmpeg.log", r.Procs[0].Cmd.StderrPath)
}

func TestGnomeStartFullOutput(t *testing.T) {
	bus := newGnomeBus()
	b := NewGnomeBackend(bus, logging.Discard())

	err := b.Start(context.Background(), "/v/out.video.webm", recording.Options{FrameRate: 24, ShowMouse: true, VideoCodec: "vp8"})
	require.NoError(t, err)

	require.Len(t, bus.calls, 1)
	call := bus.calls[0]
	assert.Equal(t, screencastIface+".Screencast", call.method)
	require.Len(t, call.args, 2)
	assert.Equal(t, "/v/out.video.webm", call.args[0])

	opts := call.args[1].(map[string]dbus.Variant)
	assert.Equal(t, int32(24), opts["framerate"].Value())
	assert.Equal(t, true, opts["draw-cursor"].Value())
	assert.Contains(t, opts["pipeline"].Value(), "vp8enc")

	path, err := b.Stop(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "/v/out.video.webm", path)
	assert.Equal(t, screencastIface+".StopScreencast", bus.calls[1].method)
}

func TestGnomeStartRegion(t *testing.T) {
	bus := newGnomeBus()
	b := NewGnomeBackend(bus, logging.Discard())

	area := &recording.Region{X: 1, Y: 2, Width: 300, Height: 400}
	require.NoError(t, b.Start(context.Background(), "out.webm", recording.Options{FrameRate: 30, Area: area}))

	call := bus.calls[0]
	assert.Equal(t, screencastIface+".ScreencastArea", call.method)
	assert.Equal(t, []interface{}{int32(1), int32(2), int32(300), int32(400), "out.webm"}, call.args[:5])
}

func TestGnomeUsesServiceFilename(t *testing.T) {
	bus := newGnomeBus()
	bus.replies[screencastIface+".Screencast"] = []interface{}{true, "/real/path.webm"}
	b := NewGnomeBackend(bus, logging.Discard())

	require.NoError(t, b.Start(context.Background(), "out.webm", recording.Options{FrameRate: 30}))
	path, err := b.Stop(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "/real/path.webm", path)
}

func TestGnomeRejectsOtherCodecs(t *testing.T) {
	bus := newGnomeBus()
	b := NewGnomeBackend(bus, logging.Discard())

	err := b.Start(context.Background(), "out.webm", recording.Options{FrameRate: 30, VideoCodec: "vp9"})
	assert.ErrorIs(t, err, ErrUnsupportedCodec)
	assert.Empty(t, bus.calls)
}

func TestGnomeRefusedStart(t *testing.T) {
	bus := newGnomeBus()
	bus.replies[screencastIface+".Screencast"] = []interface{}{false, ""}
	b := NewGnomeBackend(bus, logging.Discard())

	assert.Error(t, b.Start(context.Background(), "out.webm", recording.Options{FrameRate: 30}))
	_, err := b.Stop(context.Background())
	assert.ErrorIs(t, err, ErrNotStarted)
}

func TestGnomeStopRequiresAcknowledgement(t *testing.T) {
	bus := newGnomeBus()
	bus.replies[screencastIface+".StopScreencast"] = []interface{}{false}
	b := NewGnomeBackend(bus, logging.Discard())

	require.NoError(t, b.Start(context.Background(), "out.webm", recording.Options{FrameRate: 30}))
	_, err := b.Stop(context.Background())
	assert.Error(t, err)
}

const xwininfoOut = `
xwininfo: Window id: 0x3a00007 "Area Chooser"

  Absolute upper-left X:  120
  Absolute upper-left Y:  64
  Relative upper-left X:  0
  Relative upper-left Y:  0
  Width: 800
  Height: 600
  Depth: 24
  Border width: 0
  Corners:  +120+64  -1000+64  -1000-416  +120-416
  -geometry 800x600+120+64
`

func TestParseXwininfo(t *testing.T) {
	r, err := ParseXwininfo([]byte(xwininfoOut))
	require.NoError(t, err)
	assert.Equal(t, recording.Region{X: 120, Y: 64, Width: 800, Height: 600}, r)
}

func TestParseXwininfoMissingField(t *testing.T) {
	_, err := ParseXwininfo([]byte("  Width: 800\n  Height: 600\n"))
	assert.ErrorIs(t, err, ErrAreaParse)
}

func TestXwininfoSelectorModes(t *testing.T) {
	r := &proctest.Runner{RunFunc: func(proc.Command) ([]byte, error) {
		return []byte(xwininfoOut), nil
	}}

	byName := &XwininfoSelector{Runner: r, WindowName: "Area Chooser"}
	first, err := byName.SelectArea(context.Background())
	require.NoError(t, err)
	second, err := byName.SelectArea(context.Background())
	require.NoError(t, err)
	assert.Equal(t, first, second)

	click := &XwininfoSelector{Runner: r}
	_, err = click.SelectArea(context.Background())
	require.NoError(t, err)

	byID := &XwininfoSelector{Runner: r, WindowID: "0x3a00007"}
	_, err = byID.SelectArea(context.Background())
	require.NoError(t, err)

	require.Len(t, r.Ran, 4)
	assert.Equal(t, []string{"-name", "Area Chooser"}, r.Ran[0].Args)
	assert.Empty(t, r.Ran[2].Args)
	assert.Equal(t, []string{"-id", "0x3a00007"}, r.Ran[3].Args)
}

func TestGnomeAreaSelector(t *testing.T) {
	bus := newGnomeBus()
	r, err := NewGnomeAreaSelector(bus).SelectArea(context.Background())
	require.NoError(t, err)
	assert.Equal(t, recording.Region{X: 5, Y: 6, Width: 700, Height: 500}, r)
	assert.Equal(t, screenshotIface+".SelectArea", bus.calls[0].method)
}

func TestGnomeAreaSelectorError(t *testing.T) {
	bus := newGnomeBus()
	bus.errs[screenshotIface+".SelectArea"] = errors.New("cancelled")
	_, err := NewGnomeAreaSelector(bus).SelectArea(context.Background())
	assert.Error(t, err)
}
