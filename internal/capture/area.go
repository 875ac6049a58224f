package capture

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/devbydaniel/greenrec/internal/domain/recording"
	"github.com/devbydaniel/greenrec/internal/proc"
)

// ErrAreaParse means the selection tool did not report a full geometry.
var ErrAreaParse = errors.New("could not read area geometry")

// AreaSelector asks the user for a capture region.
type AreaSelector interface {
	SelectArea(ctx context.Context) (recording.Region, error)
}

// XwininfoSelector queries window geometry with xwininfo. With neither
// WindowName nor WindowID set, xwininfo waits for the user to click a window.
type XwininfoSelector struct {
	Runner     proc.Runner
	WindowName string
	WindowID   string
}

func (s *XwininfoSelector) command() proc.Command {
	var args []string
	switch {
	case s.WindowID != "":
		args = []string{"-id", s.WindowID}
	case s.WindowName != "":
		args = []string{"-name", s.WindowName}
	}
	return proc.Command{Name: "xwininfo", Args: args}
}

func (s *XwininfoSelector) SelectArea(ctx context.Context) (recording.Region, error) {
	out, err := s.Runner.Run(ctx, s.command())
	if err != nil {
		return recording.Region{}, err
	}
	return ParseXwininfo(out)
}

// ParseXwininfo extracts the absolute position and size of a window.
func ParseXwininfo(out []byte) (recording.Region, error) {
	fields := map[string]*int{}
	var r recording.Region
	fields["Absolute upper-left X"] = &r.X
	fields["Absolute upper-left Y"] = &r.Y
	fields["Width"] = &r.Width
	fields["Height"] = &r.Height

	seen := map[string]bool{}
	sc := bufio.NewScanner(bytes.NewReader(out))
	for sc.Scan() {
		key, value, ok := strings.Cut(strings.TrimSpace(sc.Text()), ":")
		if !ok {
			continue
		}
		dst, wanted := fields[strings.TrimSpace(key)]
		if !wanted {
			continue
		}
		n, err := strconv.Atoi(strings.TrimSpace(value))
		if err != nil {
			return recording.Region{}, fmt.Errorf("%w: %s: %v", ErrAreaParse, key, err)
		}
		*dst = n
		seen[strings.TrimSpace(key)] = true
	}

	for key := range fields {
		if !seen[key] {
			return recording.Region{}, fmt.Errorf("%w: missing %q", ErrAreaParse, key)
		}
	}
	return r, nil
}

// GnomeAreaSelector lets GNOME Shell draw the interactive selection.
type GnomeAreaSelector struct {
	obj busCaller
}

func NewGnomeAreaSelector(obj busCaller) *GnomeAreaSelector {
	return &GnomeAreaSelector{obj: obj}
}

func (s *GnomeAreaSelector) SelectArea(ctx context.Context) (recording.Region, error) {
	var x, y, w, h int32
	call := s.obj.CallWithContext(ctx, screenshotIface+".SelectArea", 0)
	if err := call.Store(&x, &y, &w, &h); err != nil {
		return recording.Region{}, fmt.Errorf("selecting area: %w", err)
	}
	return recording.Region{X: int(x), Y: int(y), Width: int(w), Height: int(h)}, nil
}
