package app

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/godbus/dbus/v5"
	"github.com/rs/zerolog"

	"github.com/devbydaniel/greenrec/config"
	"github.com/devbydaniel/greenrec/internal/audio"
	"github.com/devbydaniel/greenrec/internal/capture"
	"github.com/devbydaniel/greenrec/internal/domain/recording/usecases"
	"github.com/devbydaniel/greenrec/internal/logging"
	"github.com/devbydaniel/greenrec/internal/media"
	"github.com/devbydaniel/greenrec/internal/notify"
	"github.com/devbydaniel/greenrec/internal/proc"
)

type App struct {
	Runner     proc.Runner
	Display    capture.DisplayServer
	DisplayErr error

	Orchestrator   *usecases.Orchestrator
	StartRecording *usecases.StartRecording
	StopRecording  *usecases.StopRecording
	Status         *usecases.Status
	SelectArea     *usecases.SelectArea

	Recorder      *audio.Recorder
	DeviceManager *audio.DeviceManager

	cfg    *config.Config
	bus    *dbus.Conn
	busErr error
	log    zerolog.Logger
}

// New wires the application for the detected display server. A missing
// session bus or an unsupported display does not fail construction; the
// error surfaces when a session is started.
func New(cfg *config.Config, log zerolog.Logger) (*App, error) {
	a := &App{
		Runner: proc.NewRunner(),
		cfg:    cfg,
		log:    log,
	}
	a.Display, a.DisplayErr = capture.DetectDisplayServer(os.Getenv)
	a.bus, a.busErr = dbus.ConnectSessionBus()
	if a.busErr != nil {
		log.Debug().Err(a.busErr).Msg("session bus unavailable")
	}

	backend, backendErr := a.videoBackend()
	if backendErr != nil {
		log.Debug().Err(backendErr).Msg("no video backend")
	} else {
		log.Debug().Str(logging.KeyBackend, backend.Name()).Msg("video backend selected")
	}

	var notifier usecases.Notifier = notify.Nop{}
	if a.bus != nil {
		notifier = notify.New(a.bus)
	}

	a.Recorder = audio.NewRecorder(a.Runner, cfg.StopTimeout(), log)
	a.DeviceManager = audio.NewDeviceManager(a.Runner)

	a.Orchestrator = &usecases.Orchestrator{
		Backend:          backend,
		BackendErr:       backendErr,
		Audio:            a.Recorder,
		Merger:           media.NewMuxer(a.Runner),
		Optimizer:        media.NewOptimizer(a.Runner),
		Notifier:         notifier,
		Launch:           proc.Spawn,
		FilenameTemplate: cfg.FilenameTemplate,
		SettleDelay:      cfg.SettleDelay(),
		Log:              logging.Component(log, "session"),
	}

	a.StartRecording = &usecases.StartRecording{
		Orchestrator: a.Orchestrator,
		StateDir:     cfg.StateDir,
		Log:          logging.Component(log, "recorder"),
	}
	a.StopRecording = &usecases.StopRecording{StateDir: cfg.StateDir}
	a.Status = &usecases.Status{StateDir: cfg.StateDir}
	a.SelectArea = &usecases.SelectArea{Settings: cfg}

	return a, nil
}

func (a *App) videoBackend() (capture.Backend, error) {
	if a.DisplayErr != nil {
		return nil, a.DisplayErr
	}
	if a.Display == capture.Wayland {
		if a.busErr != nil {
			return nil, fmt.Errorf("connecting to the session bus: %w", a.busErr)
		}
		return capture.NewGnomeBackend(capture.ScreencastObject(a.bus), a.log), nil
	}
	return capture.NewX11Backend(a.Runner, capture.X11Screen{}, XDisplay(), a.cfg.StopTimeout(), a.log), nil
}

// XDisplay returns $DISPLAY, defaulting to the first local server.
func XDisplay() string {
	if d := os.Getenv("DISPLAY"); d != "" {
		return d
	}
	return ":0"
}

// AreaSelector returns the region picker for the display server. Window
// name and id lookups only exist on X11.
func (a *App) AreaSelector(windowName, windowID string) (capture.AreaSelector, error) {
	if a.DisplayErr != nil {
		return nil, a.DisplayErr
	}
	if a.Display == capture.Wayland {
		if windowName != "" || windowID != "" {
			return nil, errors.New("selecting a window by name or id is only supported on X11")
		}
		if a.busErr != nil {
			return nil, fmt.Errorf("connecting to the session bus: %w", a.busErr)
		}
		return capture.NewGnomeAreaSelector(capture.ScreenshotObject(a.bus)), nil
	}
	return &capture.XwininfoSelector{Runner: a.Runner, WindowName: windowName, WindowID: windowID}, nil
}

// ScreencastAvailable reports whether GNOME Shell's screencast service can
// be reached.
func (a *App) ScreencastAvailable(ctx context.Context) (bool, error) {
	if a.busErr != nil {
		return false, a.busErr
	}
	return capture.ScreencastAvailable(ctx, a.bus)
}

// Close releases the session bus connection.
func (a *App) Close() error {
	if a.bus == nil {
		return nil
	}
	return a.bus.Close()
}
