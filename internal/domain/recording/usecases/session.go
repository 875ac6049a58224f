package usecases

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/gofrs/uuid"
	"github.com/rs/zerolog"

	"github.com/devbydaniel/greenrec/internal/audio"
	"github.com/devbydaniel/greenrec/internal/capture"
	"github.com/devbydaniel/greenrec/internal/domain/recording"
	"github.com/devbydaniel/greenrec/internal/logging"
	"github.com/devbydaniel/greenrec/internal/media"
	"github.com/devbydaniel/greenrec/internal/proc"
)

var (
	ErrSessionActive   = errors.New("a recording session is already active")
	ErrSessionInactive = errors.New("session is not active")
	ErrNothingToRecord = errors.New("neither video nor audio is enabled")
	ErrNoVideoBackend  = errors.New("no video backend available")
)

// Merger joins the temporary streams into the final file.
type Merger interface {
	Merge(ctx context.Context, inputs []string, output string) error
}

// Optimizer post-processes animated images in place.
type Optimizer interface {
	Optimize(ctx context.Context, path string) error
}

// Notifier shows desktop notifications.
type Notifier interface {
	Notify(ctx context.Context, body string) error
}

// Orchestrator runs recording sessions: it starts the video backend and
// the audio capture, and on stop joins their files into one output.
// At most one session is active at a time.
type Orchestrator struct {
	// Backend is chosen once at startup for the detected display server.
	// When selection failed it is nil and BackendErr says why.
	Backend    capture.Backend
	BackendErr error

	Audio     *audio.Recorder
	Merger    Merger
	Optimizer Optimizer
	Notifier  Notifier
	// Launch runs the post-recording command detached.
	Launch func(c proc.Command) (int, error)

	FilenameTemplate string
	// SettleDelay is an extra pause before and after the streams are
	// stopped. Process exits are always awaited regardless.
	SettleDelay time.Duration

	Log   zerolog.Logger
	Now   func() time.Time
	Sleep func(ctx context.Context, d time.Duration) error

	mu     sync.Mutex
	active *Session
}

// Session is one record-to-stop cycle.
type Session struct {
	ID         string
	Options    recording.Options
	StartedAt  time.Time
	OutputPath string
	VideoPath  string
	AudioPath  string

	orch    *Orchestrator
	backend capture.Backend
	audio   *audio.Capture
	log     zerolog.Logger

	mu     sync.Mutex
	status recording.Status
}

func (o *Orchestrator) now() time.Time {
	if o.Now != nil {
		return o.Now()
	}
	return time.Now()
}

func (o *Orchestrator) sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	if o.Sleep != nil {
		return o.Sleep(ctx, d)
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Active returns the running session, if any.
func (o *Orchestrator) Active() *Session {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.active
}

func (o *Orchestrator) release(s *Session) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.active == s {
		o.active = nil
	}
}

// Start launches the capture processes for opts. An empty id gets a fresh
// UUID. The start delay is applied before anything is launched.
func (o *Orchestrator) Start(ctx context.Context, id string, opts recording.Options) (*Session, error) {
	if id == "" {
		id = uuid.Must(uuid.NewV4()).String()
	}

	s := &Session{
		ID:      id,
		Options: opts,
		orch:    o,
		status:  recording.StatusStarting,
		log:     o.Log.With().Str(logging.KeySession, id).Logger(),
	}

	o.mu.Lock()
	if o.active != nil {
		o.mu.Unlock()
		return nil, ErrSessionActive
	}
	o.active = s
	o.mu.Unlock()

	if err := o.start(ctx, s); err != nil {
		s.setStatus(recording.StatusFailed)
		o.release(s)
		s.log.Error().Err(err).Msg("session failed to start")
		return nil, err
	}

	s.setStatus(recording.StatusActive)
	s.log.Info().Str(logging.KeyPath, s.OutputPath).Str(logging.KeyBackend, s.Backend()).Bool("audio", s.audio != nil).Msg("recording")
	return s, nil
}

func (o *Orchestrator) start(ctx context.Context, s *Session) error {
	opts := s.Options
	if !opts.Video && !opts.AudioEnabled() {
		return ErrNothingToRecord
	}
	if err := media.Validate(opts.Format, opts.VideoCodec, opts.AudioCodec, opts.Video, opts.AudioEnabled()); err != nil {
		return err
	}
	if opts.Video && o.Backend == nil {
		if o.BackendErr != nil {
			return o.BackendErr
		}
		return ErrNoVideoBackend
	}
	if opts.AudioEnabled() && o.Audio == nil {
		return errors.New("no audio recorder configured")
	}

	base, err := OutputBase(opts.Folder, opts.Filename, o.FilenameTemplate, o.now())
	if err != nil {
		return err
	}
	if opts.Folder != "" {
		if err := os.MkdirAll(opts.Folder, 0o755); err != nil {
			return fmt.Errorf("creating output folder: %w", err)
		}
	}
	s.OutputPath = base + "." + opts.Format

	if err := o.sleep(ctx, opts.Delay); err != nil {
		return err
	}
	s.StartedAt = o.now()

	if opts.Video {
		s.VideoPath = StreamPath(base, "video", opts.Format)
		if err := o.Backend.Start(ctx, s.VideoPath, opts); err != nil {
			return fmt.Errorf("starting %s capture: %w", o.Backend.Name(), err)
		}
		s.backend = o.Backend
	}

	if opts.AudioEnabled() {
		s.AudioPath = StreamPath(base, "audio", opts.Format)
		c, err := o.Audio.Start(ctx, opts.AudioSource, s.AudioPath, opts.AudioCodec)
		if err != nil {
			if s.backend != nil {
				if _, serr := s.backend.Stop(context.WithoutCancel(ctx)); serr != nil {
					s.log.Warn().Err(serr).Msg("stopping video after audio failure")
				}
			}
			return err
		}
		s.audio = c
	}

	return nil
}

// Status returns the lifecycle state of the session.
func (s *Session) Status() recording.Status {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.status
}

func (s *Session) setStatus(st recording.Status) {
	s.mu.Lock()
	s.status = st
	s.mu.Unlock()
}

// Backend names the video backend in use, or "" for audio-only sessions.
func (s *Session) Backend() string {
	if s.backend == nil {
		return ""
	}
	return s.backend.Name()
}

// Stop ends capture, waits for every stream to be finalized and produces
// the output file. A single stream is renamed into place; two streams are
// merged without re-encoding and their temporaries removed. If the merge
// fails the temporaries stay on disk.
func (s *Session) Stop(ctx context.Context) (*recording.Result, error) {
	s.mu.Lock()
	if s.status != recording.StatusActive {
		s.mu.Unlock()
		return nil, ErrSessionInactive
	}
	s.status = recording.StatusStopping
	s.mu.Unlock()

	o := s.orch
	defer o.release(s)

	res := &recording.Result{ID: s.ID, StartedAt: s.StartedAt}
	finish := func(err error) (*recording.Result, error) {
		res.StoppedAt = o.now()
		res.Duration = res.StoppedAt.Sub(res.StartedAt)
		if err != nil {
			res.Error = err.Error()
			s.setStatus(recording.StatusFailed)
			s.log.Error().Err(err).Msg("session failed to stop cleanly")
			return res, err
		}
		res.OutputPath = s.OutputPath
		s.setStatus(recording.StatusIdle)
		return res, nil
	}

	if err := o.sleep(ctx, o.SettleDelay); err != nil {
		return finish(err)
	}

	streams, err := s.stopStreams(ctx, res)
	if err != nil {
		return finish(err)
	}

	if err := o.sleep(ctx, o.SettleDelay); err != nil {
		return finish(err)
	}

	switch len(streams) {
	case 1:
		if err := os.Rename(streams[0], s.OutputPath); err != nil {
			return finish(fmt.Errorf("moving %s into place: %w", streams[0], err))
		}
	default:
		if err := o.Merger.Merge(ctx, streams, s.OutputPath); err != nil {
			return finish(err)
		}
		for _, f := range streams {
			if err := os.Remove(f); err != nil {
				s.advise(res, fmt.Errorf("removing %s: %w", f, err))
			}
		}
	}
	s.removeLogs(res)

	if media.IsAnimated(s.Options.Format) {
		s.notify(ctx, res, "Your GIF is being processed, this may take a while.")
		if o.Optimizer != nil {
			if err := o.Optimizer.Optimize(ctx, s.OutputPath); err != nil {
				s.advise(res, err)
			}
		}
	}

	if s.Options.Command != "" && o.Launch != nil {
		if _, err := o.Launch(proc.Shell(s.Options.Command)); err != nil {
			s.advise(res, fmt.Errorf("post-recording command: %w", err))
		}
	}

	s.notify(ctx, res, "Recording saved to "+s.OutputPath)
	s.log.Info().Str(logging.KeyPath, s.OutputPath).Msg("recording saved")
	return finish(nil)
}

// stopStreams stops every running capture and returns the finalized files.
// A process that had to be killed still yields its file, with a warning.
func (s *Session) stopStreams(ctx context.Context, res *recording.Result) ([]string, error) {
	var streams []string
	var errs []error

	collect := func(path string, err error) {
		switch {
		case err == nil:
			streams = append(streams, path)
		case errors.Is(err, proc.ErrKilled):
			s.advise(res, err)
			streams = append(streams, path)
		default:
			errs = append(errs, err)
		}
	}

	if s.backend != nil {
		collect(s.backend.Stop(ctx))
	}
	if s.audio != nil {
		collect(s.audio.Stop(ctx))
	}

	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}
	if len(streams) == 0 {
		return nil, ErrNothingToRecord
	}
	return streams, nil
}

// removeLogs deletes the capture logs once the output is in place. They are
// left behind whenever the session fails.
func (s *Session) removeLogs(res *recording.Result) {
	for _, stream := range []string{s.VideoPath, s.AudioPath} {
		if stream == "" {
			continue
		}
		if err := os.Remove(proc.LogPath(stream)); err != nil && !errors.Is(err, os.ErrNotExist) {
			s.advise(res, fmt.Errorf("removing capture log: %w", err))
		}
	}
}

// advise records a failure of a best-effort step without failing the session.
func (s *Session) advise(res *recording.Result, err error) {
	s.log.Warn().Err(err).Msg("advisory step failed")
	res.Warnings = append(res.Warnings, err.Error())
}

func (s *Session) notify(ctx context.Context, res *recording.Result, body string) {
	if s.orch.Notifier == nil {
		return
	}
	if err := s.orch.Notifier.Notify(ctx, body); err != nil {
		s.log.Debug().Err(err).Msg("notification not delivered")
	}
}
