package audio

import (
	"context"
	"fmt"
	"sync"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"github.com/devbydaniel/greenrec/internal/logging"
	"github.com/devbydaniel/greenrec/internal/media"
	"github.com/devbydaniel/greenrec/internal/proc"
)

// Recorder manages ffmpeg-based PulseAudio recording.
type Recorder struct {
	runner      proc.Runner
	stopTimeout time.Duration
	log         zerolog.Logger
}

func NewRecorder(runner proc.Runner, stopTimeout time.Duration, log zerolog.Logger) *Recorder {
	return &Recorder{runner: runner, stopTimeout: stopTimeout, log: logging.Component(log, "audio")}
}

func (r *Recorder) CheckFFmpeg() error {
	if _, err := r.runner.LookPath("ffmpeg"); err != nil {
		return fmt.Errorf("ffmpeg not found. Install it with your package manager (e.g. apt install ffmpeg)")
	}
	return nil
}

// Command builds the capture invocation for one source.
func Command(source, outputPath, codec string) proc.Command {
	args := []string{"-f", "pulse", "-i", source, "-strict", "-2"}
	if enc := media.AudioEncoder(codec); enc != "" {
		args = append(args, "-c:a", enc)
	}
	args = append(args, outputPath, "-y")
	return proc.Command{Name: "ffmpeg", Args: args, StderrPath: proc.LogPath(outputPath)}
}

// Start records source into outputPath until the returned capture is stopped.
func (r *Recorder) Start(ctx context.Context, source, outputPath, codec string) (*Capture, error) {
	p, err := r.runner.Start(ctx, Command(source, outputPath, codec))
	if err != nil {
		return nil, fmt.Errorf("starting audio capture: %w", err)
	}
	r.log.Debug().Int(logging.KeyChildPid, p.Pid()).Str("source", source).Str(logging.KeyPath, outputPath).Msg("audio capture started")
	return &Capture{process: p, path: outputPath, grace: r.stopTimeout}, nil
}

// Capture is one running audio recording.
type Capture struct {
	mu      sync.Mutex
	process proc.Process
	path    string
	grace   time.Duration
	stopped bool
}

// Path returns the file the capture writes to.
func (c *Capture) Path() string { return c.path }

// Stop terminates ffmpeg and waits until it has exited. The exit status is
// not inspected: ffmpeg reports a non-zero code when it is terminated.
func (c *Capture) Stop(ctx context.Context) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.stopped {
		return c.path, nil
	}
	c.stopped = true

	if err := c.process.Stop(ctx, syscall.SIGTERM, c.grace); err != nil {
		return c.path, fmt.Errorf("stopping audio capture: %w", err)
	}
	return c.path, nil
}
