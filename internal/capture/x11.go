package capture

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/devbydaniel/greenrec/internal/domain/recording"
	"github.com/devbydaniel/greenrec/internal/logging"
	"github.com/devbydaniel/greenrec/internal/media"
	"github.com/devbydaniel/greenrec/internal/proc"
)

// X11Backend grabs the X display with ffmpeg's x11grab.
type X11Backend struct {
	runner      proc.Runner
	screen      ScreenSizer
	display     string
	stopTimeout time.Duration
	log         zerolog.Logger

	mu      sync.Mutex
	process proc.Process
	output  string
}

func NewX11Backend(runner proc.Runner, screen ScreenSizer, display string, stopTimeout time.Duration, log zerolog.Logger) *X11Backend {
	return &X11Backend{
		runner:      runner,
		screen:      screen,
		display:     display,
		stopTimeout: stopTimeout,
		log:         logging.Component(log, "x11"),
	}
}

func (b *X11Backend) Name() string { return string(X11) }

// Command builds the ffmpeg invocation for one capture.
func (b *X11Backend) Command(output string, opts recording.Options) (proc.Command, error) {
	x, y := 0, 0
	var size string
	if opts.Area != nil {
		x, y = opts.Area.X, opts.Area.Y
		size = opts.Area.Size()
	} else {
		w, h, err := b.screen.ScreenSize(b.display)
		if err != nil {
			return proc.Command{}, err
		}
		size = fmt.Sprintf("%dx%d", w, h)
	}

	drawMouse := "0"
	if opts.ShowMouse {
		drawMouse = "1"
	}

	args := []string{"-video_size", size, "-draw_mouse", drawMouse}
	if opts.FollowMouse {
		args = append(args, "-follow_mouse", "centered")
	}
	args = append(args,
		"-framerate", strconv.Itoa(opts.FrameRate),
		"-f", "x11grab",
		"-i", fmt.Sprintf("%s+%d,%d", b.display, x, y),
		"-q:v", "1",
	)
	if enc := media.VideoEncoder(opts.VideoCodec); enc != "" {
		args = append(args, "-c:v", enc)
	}
	args = append(args, output, "-y")

	return proc.Command{Name: "ffmpeg", Args: args, StderrPath: proc.LogPath(output)}, nil
}

func (b *X11Backend) Start(ctx context.Context, output string, opts recording.Options) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.process != nil {
		return ErrAlreadyStarted
	}
	cmd, err := b.Command(output, opts)
	if err != nil {
		return err
	}
	p, err := b.runner.Start(ctx, cmd)
	if err != nil {
		return err
	}

	b.process = p
	b.output = output
	b.log.Debug().Int(logging.KeyChildPid, p.Pid()).Str(logging.KeyPath, output).Msg("x11grab started")
	return nil
}

// Stop interrupts ffmpeg, which finalizes the container on SIGINT, and waits
// for it to exit.
func (b *X11Backend) Stop(ctx context.Context) (string, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.process == nil {
		return "", ErrNotStarted
	}
	p, output := b.process, b.output
	b.process = nil

	if err := p.Stop(ctx, os.Interrupt, b.stopTimeout); err != nil {
		return output, fmt.Errorf("stopping x11grab: %w", err)
	}
	b.log.Debug().Str(logging.KeyPath, output).Msg("x11grab stopped")
	return output, nil
}
