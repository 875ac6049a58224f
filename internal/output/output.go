package output

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/devbydaniel/greenrec/internal/domain/recording"
)

type Formatter struct {
	w io.Writer
}

func NewFormatter(w io.Writer) *Formatter {
	return &Formatter{w: w}
}

func (f *Formatter) RecordingStarted(state recording.State, foreground bool) {
	fmt.Fprintf(f.w, "🔴 Recording to %s\n", state.OutputPath)
	if state.Backend != "" {
		fmt.Fprintf(f.w, "   backend: %s\n", state.Backend)
	}
	if foreground {
		fmt.Fprintf(f.w, "   Press Ctrl+C to stop.\n")
	} else {
		fmt.Fprintf(f.w, "   Run 'greenrec stop' to finish (pid %d).\n", state.PID)
	}
}

func (f *Formatter) Stopping() {
	fmt.Fprintf(f.w, "⏳ Finishing recording...\n")
}

func (f *Formatter) RecordingStopped(res *recording.Result) {
	fmt.Fprintf(f.w, "⏹️  Recording stopped (%s)\n", formatDuration(res.Duration))
	for _, w := range res.Warnings {
		f.Warning(w)
	}
	if res.OutputPath != "" {
		fmt.Fprintf(f.w, "\n📁 Saved: %s\n", res.OutputPath)
	}
}

func (f *Formatter) Status(current *recording.State, alive bool, last *recording.Result) {
	switch {
	case current == nil:
		fmt.Fprintf(f.w, "⚪ Not recording\n")
	case !alive:
		fmt.Fprintf(f.w, "⚠️  Stale recording state (pid %d is gone)\n", current.PID)
	default:
		fmt.Fprintf(f.w, "🔴 %s since %s (%s)\n", current.Status, current.StartedAt.Format(time.TimeOnly), formatDuration(time.Since(current.StartedAt)))
		fmt.Fprintf(f.w, "   output: %s\n", current.OutputPath)
		fmt.Fprintf(f.w, "   pid:    %d\n", current.PID)
	}

	if last == nil {
		return
	}
	if last.Error != "" {
		fmt.Fprintf(f.w, "\nLast recording failed: %s\n", last.Error)
		return
	}
	fmt.Fprintf(f.w, "\nLast recording: %s (%s)\n", last.OutputPath, formatDuration(last.Duration))
}

func (f *Formatter) Region(r recording.Region, saved bool) {
	fmt.Fprintf(f.w, "%s\n", r)
	if saved {
		f.Success("Saved as the default capture area")
	}
}

func (f *Formatter) Error(msg string) {
	fmt.Fprintf(f.w, "❌ %s\n", msg)
}

func (f *Formatter) Info(msg string) {
	fmt.Fprintf(f.w, "ℹ️  %s\n", msg)
}

func (f *Formatter) Success(msg string) {
	fmt.Fprintf(f.w, "✅ %s\n", msg)
}

func (f *Formatter) Warning(msg string) {
	fmt.Fprintf(f.w, "⚠️  %s\n", msg)
}

func (f *Formatter) SourceListHeader() {
	fmt.Fprintf(f.w, "🎙️  Audio sources:\n\n")
}

func (f *Formatter) SourceListItem(name, description string, selected bool) {
	mark := " "
	if selected {
		mark = "*"
	}
	if description != "" && description != name {
		fmt.Fprintf(f.w, "  %s %s (%s)\n", mark, name, description)
		return
	}
	fmt.Fprintf(f.w, "  %s %s\n", mark, name)
}

func (f *Formatter) FormatListHeader() {
	fmt.Fprintf(f.w, "🎞️  Formats:\n\n")
}

func (f *Formatter) FormatListItem(name, description string, video, audio []string, selected bool) {
	mark := " "
	if selected {
		mark = "*"
	}
	audioList := "no audio"
	if len(audio) > 0 {
		audioList = "audio: " + strings.Join(audio, ", ")
	}
	fmt.Fprintf(f.w, "  %s %-5s %s (video: %s; %s)\n", mark, name, description, strings.Join(video, ", "), audioList)
}

func (f *Formatter) Setting(key, value string) {
	fmt.Fprintf(f.w, "%s = %q\n", key, value)
}

func (f *Formatter) SetupCheck(name string, ok bool, detail string) {
	if ok {
		fmt.Fprintf(f.w, "  ✅ %s: %s\n", name, detail)
	} else {
		fmt.Fprintf(f.w, "  ❌ %s: %s\n", name, detail)
	}
}

func formatDuration(d time.Duration) string {
	d = d.Round(time.Second)
	h := d / time.Hour
	d -= h * time.Hour
	m := d / time.Minute
	d -= m * time.Minute
	s := d / time.Second

	if h > 0 {
		return fmt.Sprintf("%dh%02dm%02ds", h, m, s)
	}
	if m > 0 {
		return fmt.Sprintf("%dm%02ds", m, s)
	}
	return fmt.Sprintf("%ds", s)
}
