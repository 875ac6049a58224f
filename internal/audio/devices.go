package audio

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/devbydaniel/greenrec/internal/proc"
)

// DefaultSource is the PulseAudio alias for the default input.
const DefaultSource = "default"

// Source is one PulseAudio input source.
type Source struct {
	Name        string
	Description string
}

// DeviceManager enumerates audio sources.
type DeviceManager struct {
	runner proc.Runner
}

func NewDeviceManager(runner proc.Runner) *DeviceManager {
	return &DeviceManager{runner: runner}
}

// ListSources returns the default alias followed by every source pactl
// reports.
func (d *DeviceManager) ListSources(ctx context.Context) ([]Source, error) {
	out, err := d.runner.Run(ctx, proc.Command{Name: "pactl", Args: []string{"list", "sources"}})
	if err != nil {
		return nil, fmt.Errorf("listing audio sources: %w", err)
	}
	sources := []Source{{Name: DefaultSource, Description: "Default PulseAudio input source"}}
	return append(sources, ParseSources(out)...), nil
}

// ParseSources reads the Name/Description pairs of `pactl list sources`.
func ParseSources(out []byte) []Source {
	var sources []Source
	var cur *Source

	sc := bufio.NewScanner(bytes.NewReader(out))
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		switch {
		case strings.HasPrefix(line, "Source #"):
			sources = append(sources, Source{})
			cur = &sources[len(sources)-1]
		case cur == nil:
		case strings.HasPrefix(line, "Name:"):
			cur.Name = strings.TrimSpace(strings.TrimPrefix(line, "Name:"))
		case strings.HasPrefix(line, "Description:"):
			cur.Description = strings.TrimSpace(strings.TrimPrefix(line, "Description:"))
		}
	}

	valid := sources[:0]
	for _, s := range sources {
		if s.Name != "" {
			valid = append(valid, s)
		}
	}
	return valid
}
