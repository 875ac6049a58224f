package usecases

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/devbydaniel/greenrec/internal/domain/recording"
	"github.com/devbydaniel/greenrec/internal/logging"
	"github.com/devbydaniel/greenrec/internal/proc"
)

// deadPID is above the kernel's pid_max, so it never names a process.
const deadPID = 1 << 23

func newStartRecording(t *testing.T) (*StartRecording, *harness) {
	t.Helper()
	h := newHarness(t)
	return &StartRecording{
		Orchestrator: h.orch,
		StateDir:     t.TempDir(),
		Log:          logging.Discard(),
	}, h
}

func TestStartRecordingPublishesState(t *testing.T) {
	s, h := newStartRecording(t)
	ctx := context.Background()

	rec, err := s.Execute(ctx, h.options())
	require.NoError(t, err)

	state, err := readState(s.StateDir)
	require.NoError(t, err)
	assert.Equal(t, os.Getpid(), state.PID)
	assert.False(t, state.PIDCreatedAt.IsZero())
	assert.Equal(t, recording.StatusActive, state.Status)
	assert.Equal(t, "x11", state.Backend)
	assert.Equal(t, h.path("demo.webm"), state.OutputPath)
	assert.Equal(t, rec.State().ID, state.ID)
	assert.True(t, s.IsRecording(ctx))

	_, err = s.Execute(ctx, h.options())
	assert.ErrorIs(t, err, ErrRecordingInProgress)

	res, err := rec.Stop(ctx)
	require.NoError(t, err)
	assert.Equal(t, h.path("demo.webm"), res.OutputPath)
	assert.Equal(t, os.Getpid(), res.PID)

	assert.NoFileExists(t, statePath(s.StateDir))
	last, err := readResult(s.StateDir)
	require.NoError(t, err)
	assert.Equal(t, state.ID, last.ID)

	report, err := (&Status{StateDir: s.StateDir}).Execute(ctx)
	require.NoError(t, err)
	assert.Nil(t, report.Current)
	require.NotNil(t, report.Last)
	assert.Equal(t, res.OutputPath, report.Last.OutputPath)
}

func TestStartRecordingFailurePublishesResult(t *testing.T) {
	s, h := newStartRecording(t)
	opts := h.options()
	opts.Video = false

	_, err := s.Execute(context.Background(), opts)
	assert.ErrorIs(t, err, ErrNothingToRecord)

	assert.NoFileExists(t, statePath(s.StateDir))
	last, err := readResult(s.StateDir)
	require.NoError(t, err)
	assert.Equal(t, ErrNothingToRecord.Error(), last.Error)

	// the lock was released
	opts.Video = true
	rec, err := s.Execute(context.Background(), opts)
	require.NoError(t, err)
	_, err = rec.Stop(context.Background())
	require.NoError(t, err)
}

func TestStopWithoutRecording(t *testing.T) {
	stop := &StopRecording{StateDir: t.TempDir()}
	_, err := stop.Execute(context.Background())
	assert.ErrorIs(t, err, ErrNoActiveRecording)
}

func TestStopRemovesStaleState(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, writeJSON(statePath(dir), recording.State{ID: "old", PID: deadPID, Status: recording.StatusActive}))

	report, err := (&Status{StateDir: dir}).Execute(context.Background())
	require.NoError(t, err)
	require.NotNil(t, report.Current)
	assert.False(t, report.Alive)

	_, err = (&StopRecording{StateDir: dir}).Execute(context.Background())
	assert.ErrorIs(t, err, ErrNoActiveRecording)
	assert.NoFileExists(t, statePath(dir))
}

func TestReusedPIDIsStale(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()
	created, err := proc.StartedAt(ctx, os.Getpid())
	require.NoError(t, err)

	require.NoError(t, writeJSON(statePath(dir), recording.State{ID: "live", PID: os.Getpid(), PIDCreatedAt: created}))
	report, err := (&Status{StateDir: dir}).Execute(ctx)
	require.NoError(t, err)
	assert.True(t, report.Alive)

	// same PID, but created long after the state was written
	require.NoError(t, writeJSON(statePath(dir), recording.State{ID: "old", PID: os.Getpid(), PIDCreatedAt: created.Add(-time.Hour)}))
	report, err = (&Status{StateDir: dir}).Execute(ctx)
	require.NoError(t, err)
	assert.False(t, report.Alive)

	_, err = (&StopRecording{StateDir: dir}).Execute(ctx)
	assert.ErrorIs(t, err, ErrNoActiveRecording)
	assert.NoFileExists(t, statePath(dir))
}

func TestReadStateMalformed(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, currentStateFile), []byte("{"), 0o644))

	_, err := readState(dir)
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrNoActiveRecording)
}

func TestRenderFilename(t *testing.T) {
	name, err := RenderFilename(testTemplate, testNow)
	require.NoError(t, err)
	assert.Equal(t, "2024-03-05_14-07-09", name)

	_, err = RenderFilename("{{.Nope", testNow)
	assert.Error(t, err)

	_, err = RenderFilename("", testNow)
	assert.Error(t, err)
}

func TestOutputBase(t *testing.T) {
	base, err := OutputBase("/v", "demo", testTemplate, testNow)
	require.NoError(t, err)
	assert.Equal(t, "/v/demo", base)
	assert.Equal(t, "/v/demo.video.webm", StreamPath(base, "video", "webm"))
	assert.Equal(t, "/v/demo.audio.webm", StreamPath(base, "audio", "webm"))
}

type memSettings map[string]string

func (m memSettings) Set(key, value string) error {
	m[key] = value
	return nil
}

type fixedSelector struct{ region recording.Region }

func (f fixedSelector) SelectArea(context.Context) (recording.Region, error) {
	return f.region, nil
}

func TestSelectArea(t *testing.T) {
	settings := memSettings{}
	uc := &SelectArea{Settings: settings}
	sel := fixedSelector{region: recording.Region{X: 10, Y: 20, Width: 300, Height: 200}}

	r, err := uc.Execute(context.Background(), sel, false)
	require.NoError(t, err)
	assert.Equal(t, sel.region, r)
	assert.Empty(t, settings)

	_, err = uc.Execute(context.Background(), sel, true)
	require.NoError(t, err)
	assert.Equal(t, "10,20,300x200", settings["area"])
}
