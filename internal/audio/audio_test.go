package audio

import (
	"context"
	"syscall"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/devbydaniel/greenrec/internal/logging"
	"github.com/devbydaniel/greenrec/internal/proc"
	"github.com/devbydaniel/greenrec/internal/proc/proctest"
)

func TestCommand(t *testing.T) {
	c := Command("default", "/v/a.audio.webm", "vorbis")
	assert.Equal(t, "ffmpeg", c.Name)
	assert.Equal(t, []string{"-f", "pulse", "-i", "default", "-strict", "-2", "-c:a", "libvorbis", "/v/a.audio.webm", "-y"}, c.Args)

	c = Command("mic", "a.mkv", "")
	assert.Equal(t, []string{"-f", "pulse", "-i", "mic", "-strict", "-2", "a.mkv", "-y"}, c.Args)
}

func TestStartStop(t *testing.T) {
	r := &proctest.Runner{}
	rec := NewRecorder(r, time.Second, logging.Discard())

	c, err := rec.Start(context.Background(), "default", "a.audio.webm", "opus")
	require.NoError(t, err)
	assert.Equal(t, "a.audio.webm", c.Path())

	path, err := c.Stop(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "a.audio.webm", path)

	stopped, sig := r.Procs[0].Stopped()
	assert.True(t, stopped)
	assert.Equal(t, syscall.SIGTERM, sig)

	// Stopping twice is harmless.
	_, err = c.Stop(context.Background())
	assert.NoError(t, err)
}

func TestCheckFFmpeg(t *testing.T) {
	assert.NoError(t, NewRecorder(&proctest.Runner{}, time.Second, logging.Discard()).CheckFFmpeg())

	missing := &proctest.Runner{Missing: map[string]bool{"ffmpeg": true}}
	assert.Error(t, NewRecorder(missing, time.Second, logging.Discard()).CheckFFmpeg())
}

const pactlOut = `Source #0
	State: SUSPENDED
	Name: alsa_output.pci-0000_00_1f.3.analog-stereo.monitor
	Description: Monitor of Built-in Audio Analog Stereo
	Driver: module-alsa-card.c
Source #1
	State: RUNNING
	Name: alsa_input.pci-0000_00_1f.3.analog-stereo
	Description: Built-in Audio Analog Stereo
`

func TestParseSources(t *testing.T) {
	got := ParseSources([]byte(pactlOut))
	assert.Equal(t, []Source{
		{Name: "alsa_output.pci-0000_00_1f.3.analog-stereo.monitor", Description: "Monitor of Built-in Audio Analog Stereo"},
		{Name: "alsa_input.pci-0000_00_1f.3.analog-stereo", Description: "Built-in Audio Analog Stereo"},
	}, got)
}

func TestListSourcesPrependsDefault(t *testing.T) {
	r := &proctest.Runner{RunFunc: func(proc.Command) ([]byte, error) {
		return []byte(pactlOut), nil
	}}
	got, err := NewDeviceManager(r).ListSources(context.Background())
	require.NoError(t, err)
	require.Len(t, got, 3)
	assert.Equal(t, DefaultSource, got[0].Name)
	assert.Equal(t, []string{"list", "sources"}, r.Ran[0].Args)
}
