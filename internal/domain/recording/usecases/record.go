package usecases

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"syscall"
	"time"

	"github.com/gofrs/flock"
	"github.com/gofrs/uuid"
	"github.com/rs/zerolog"

	"github.com/devbydaniel/greenrec/internal/domain/recording"
	"github.com/devbydaniel/greenrec/internal/logging"
	"github.com/devbydaniel/greenrec/internal/proc"
)

// ErrRecordingInProgress is returned when another recorder holds the session lock.
var ErrRecordingInProgress = errors.New("a recording is already in progress. Run 'greenrec stop' first")

const defaultPoll = 100 * time.Millisecond

// StartRecording runs a session owned by the current process and publishes
// its state for other greenrec invocations.
type StartRecording struct {
	Orchestrator *Orchestrator
	StateDir     string
	Log          zerolog.Logger
}

// Recording is a session started by StartRecording.
type Recording struct {
	session  *Session
	lock     *flock.Flock
	stateDir string
	state    recording.State
	log      zerolog.Logger
}

// IsRecording reports whether a live recorder has published its state.
func (s *StartRecording) IsRecording(ctx context.Context) bool {
	state, err := readState(s.StateDir)
	return err == nil && recorderAlive(ctx, state)
}

// recorderAlive reports whether state's PID still names the process that
// published it.
func recorderAlive(ctx context.Context, state *recording.State) bool {
	if !proc.Alive(ctx, state.PID) {
		return false
	}
	if state.PIDCreatedAt.IsZero() {
		return true
	}
	created, err := proc.StartedAt(ctx, state.PID)
	if err != nil {
		return true
	}
	diff := created.Sub(state.PIDCreatedAt)
	return diff > -time.Second && diff < time.Second
}

// Execute starts capture and returns once every stream is running.
func (s *StartRecording) Execute(ctx context.Context, opts recording.Options) (*Recording, error) {
	lock := flock.New(filepath.Join(s.StateDir, lockFile))
	locked, err := lock.TryLock()
	if err != nil {
		return nil, fmt.Errorf("acquiring session lock: %w", err)
	}
	if !locked {
		return nil, ErrRecordingInProgress
	}

	id := uuid.Must(uuid.NewV4()).String()
	state := recording.State{
		ID:        id,
		PID:       os.Getpid(),
		Status:    recording.StatusStarting,
		StartedAt: time.Now(),
	}
	if created, err := proc.StartedAt(ctx, state.PID); err == nil {
		state.PIDCreatedAt = created
	}
	if err := writeJSON(statePath(s.StateDir), state); err != nil {
		_ = lock.Unlock()
		return nil, err
	}

	sess, err := s.Orchestrator.Start(ctx, id, opts)
	if err != nil {
		_ = writeJSON(resultPath(s.StateDir), recording.Result{
			ID:        id,
			PID:       state.PID,
			StartedAt: state.StartedAt,
			StoppedAt: time.Now(),
			Error:     err.Error(),
		})
		removeState(s.StateDir)
		_ = lock.Unlock()
		return nil, err
	}

	state.Status = recording.StatusActive
	state.Backend = sess.Backend()
	state.StartedAt = sess.StartedAt
	state.OutputPath = sess.OutputPath
	state.VideoPath = sess.VideoPath
	state.AudioPath = sess.AudioPath
	if err := writeJSON(statePath(s.StateDir), state); err != nil {
		s.Log.Warn().Err(err).Msg("publishing recorder state")
	}

	return &Recording{
		session:  sess,
		lock:     lock,
		stateDir: s.StateDir,
		state:    state,
		log:      s.Log.With().Str(logging.KeySession, id).Logger(),
	}, nil
}

// Background spawns `exe args...` as a detached recorder and waits until it
// publishes an active state or exits.
func (s *StartRecording) Background(ctx context.Context, exe string, args []string) (*recording.State, error) {
	if s.IsRecording(ctx) {
		return nil, ErrRecordingInProgress
	}

	logPath := filepath.Join(s.StateDir, "recorder.log")
	pid, err := proc.Spawn(proc.Command{Name: exe, Args: args, StderrPath: logPath})
	if err != nil {
		return nil, fmt.Errorf("starting recorder: %w", err)
	}
	s.Log.Debug().Int(logging.KeyChildPid, pid).Msg("recorder spawned")

	ticker := time.NewTicker(defaultPoll)
	defer ticker.Stop()

	for {
		if state, err := readState(s.StateDir); err == nil && state.PID == pid && state.Status == recording.StatusActive {
			return state, nil
		}
		if !proc.Alive(ctx, pid) {
			if res, err := readResult(s.StateDir); err == nil && res.PID == pid && res.Error != "" {
				return nil, errors.New(res.Error)
			}
			return nil, fmt.Errorf("recorder exited before recording started, see %s", logPath)
		}

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-ticker.C:
		}
	}
}

// State returns the published state of the recording.
func (r *Recording) State() recording.State { return r.state }

// Stop finalizes the recording, publishes the result and releases the
// session lock.
func (r *Recording) Stop(ctx context.Context) (*recording.Result, error) {
	defer func() { _ = r.lock.Unlock() }()
	defer removeState(r.stateDir)

	r.state.Status = recording.StatusStopping
	if err := writeJSON(statePath(r.stateDir), r.state); err != nil {
		r.log.Warn().Err(err).Msg("publishing recorder state")
	}

	res, err := r.session.Stop(ctx)
	if res == nil {
		res = &recording.Result{ID: r.state.ID, StartedAt: r.state.StartedAt, StoppedAt: time.Now()}
		if err != nil {
			res.Error = err.Error()
		}
	}
	res.PID = r.state.PID

	if werr := writeJSON(resultPath(r.stateDir), res); werr != nil {
		r.log.Warn().Err(werr).Msg("publishing recording result")
	}
	return res, err
}

// StopRecording stops the recorder that published the current state.
type StopRecording struct {
	StateDir string
	Poll     time.Duration
}

// Execute signals the recorder, waits for it to finish writing the output
// and returns its result. State left behind by a dead recorder is removed.
func (s *StopRecording) Execute(ctx context.Context) (*recording.Result, error) {
	state, err := readState(s.StateDir)
	if err != nil {
		return nil, err
	}

	if !recorderAlive(ctx, state) {
		removeState(s.StateDir)
		return nil, fmt.Errorf("%w (removed stale state of pid %d)", ErrNoActiveRecording, state.PID)
	}

	if err := proc.Signal(ctx, state.PID, syscall.SIGINT); err != nil && !errors.Is(err, proc.ErrNoProcess) {
		return nil, fmt.Errorf("stopping recorder: %w", err)
	}

	poll := s.Poll
	if poll <= 0 {
		poll = defaultPoll
	}
	if err := proc.WaitExit(ctx, state.PID, poll); err != nil {
		return nil, fmt.Errorf("waiting for recorder: %w", err)
	}

	res, err := readResult(s.StateDir)
	if err != nil || res.PID != state.PID {
		removeState(s.StateDir)
		return nil, fmt.Errorf("recorder %d exited without reporting a result", state.PID)
	}
	if res.Error != "" {
		return res, errors.New(res.Error)
	}
	return res, nil
}

// Status reports on the current and the last finished recording.
type Status struct {
	StateDir string
}

// StatusReport is the outcome of Status.Execute.
type StatusReport struct {
	Current *recording.State
	Alive   bool
	Last    *recording.Result
}

func (s *Status) Execute(ctx context.Context) (*StatusReport, error) {
	report := &StatusReport{}

	state, err := readState(s.StateDir)
	switch {
	case err == nil:
		report.Current = state
		report.Alive = recorderAlive(ctx, state)
	case !errors.Is(err, ErrNoActiveRecording):
		return nil, err
	}

	if res, err := readResult(s.StateDir); err == nil {
		report.Last = res
	}
	return report, nil
}
