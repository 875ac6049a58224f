package capture

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/godbus/dbus/v5"
	"github.com/rs/zerolog"

	"github.com/devbydaniel/greenrec/internal/domain/recording"
	"github.com/devbydaniel/greenrec/internal/logging"
)

// vp8Pipeline is the only encoder pipeline handed to GNOME Shell.
const vp8Pipeline = "vp8enc min_quantizer=10 max_quantizer=50 cq_level=13 cpu-used=5 deadline=1000000 threads=%T ! queue ! webmmux"

var errScreencastRefused = errors.New("screencast service refused the request")

// GnomeBackend records through GNOME Shell's Screencast D-Bus service. The
// service stops recording when our bus connection goes away, so the
// connection must stay open for the whole session.
type GnomeBackend struct {
	obj busCaller
	log zerolog.Logger

	mu      sync.Mutex
	started bool
	output  string
}

func NewGnomeBackend(obj busCaller, log zerolog.Logger) *GnomeBackend {
	return &GnomeBackend{obj: obj, log: logging.Component(log, "gnome")}
}

func (b *GnomeBackend) Name() string { return "gnome-screencast" }

// Pipeline returns the encoder pipeline for codec.
func Pipeline(codec string) (string, error) {
	if codec == "" || codec == "vp8" {
		return vp8Pipeline, nil
	}
	return "", fmt.Errorf("%w: %q (only vp8)", ErrUnsupportedCodec, codec)
}

func (b *GnomeBackend) Start(ctx context.Context, output string, opts recording.Options) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.started {
		return ErrAlreadyStarted
	}
	pipeline, err := Pipeline(opts.VideoCodec)
	if err != nil {
		return err
	}

	options := map[string]dbus.Variant{
		"framerate":   dbus.MakeVariant(int32(opts.FrameRate)),
		"draw-cursor": dbus.MakeVariant(opts.ShowMouse),
		"pipeline":    dbus.MakeVariant(pipeline),
	}

	var call *dbus.Call
	if opts.Area == nil {
		call = b.obj.CallWithContext(ctx, screencastIface+".Screencast", 0, output, options)
	} else {
		a := opts.Area
		call = b.obj.CallWithContext(ctx, screencastIface+".ScreencastArea", 0,
			int32(a.X), int32(a.Y), int32(a.Width), int32(a.Height), output, options)
	}

	var success bool
	var used string
	if err := call.Store(&success, &used); err != nil {
		return fmt.Errorf("calling screencast: %w", err)
	}
	if !success {
		return errScreencastRefused
	}

	b.started = true
	b.output = output
	if used != "" {
		b.output = used
	}
	b.log.Debug().Str(logging.KeyPath, b.output).Msg("screencast started")
	return nil
}

// Stop asks the service to finish and waits for its acknowledgement.
func (b *GnomeBackend) Stop(ctx context.Context) (string, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if !b.started {
		return "", ErrNotStarted
	}
	b.started = false

	var success bool
	if err := b.obj.CallWithContext(ctx, screencastIface+".StopScreencast", 0).Store(&success); err != nil {
		return b.output, fmt.Errorf("stopping screencast: %w", err)
	}
	if !success {
		return b.output, fmt.Errorf("stopping screencast: %w", errScreencastRefused)
	}
	return b.output, nil
}
