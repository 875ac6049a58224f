package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/devbydaniel/greenrec/config"
	"github.com/devbydaniel/greenrec/internal/domain/recording"
	"github.com/devbydaniel/greenrec/internal/media"
)

// sessionFlags override the stored settings for one session.
type sessionFlags struct {
	folder      string
	filename    string
	format      string
	video       bool
	audio       string
	mouse       bool
	followMouse bool
	frameRate   int
	delay       float64
	area        string
	command     string
	videoCodec  string
	audioCodec  string

	fs *pflag.FlagSet
}

func addSessionFlags(cmd *cobra.Command, cfg *config.Config) *sessionFlags {
	fs := cmd.Flags()
	f := &sessionFlags{fs: fs}
	fs.StringVar(&f.folder, "folder", cfg.Folder, "Output folder")
	fs.StringVarP(&f.filename, "filename", "n", cfg.Filename, "File name without extension (default: timestamp)")
	fs.StringVarP(&f.format, "format", "f", cfg.Format, "Container format (webm, mkv, mp4, gif)")
	fs.BoolVar(&f.video, "video", cfg.Video, "Record video")
	fs.StringVarP(&f.audio, "audio", "a", cfg.Audio, "PulseAudio source, or 'none'")
	fs.BoolVar(&f.mouse, "mouse", cfg.RecordMouse, "Draw the mouse cursor")
	fs.BoolVar(&f.followMouse, "follow-mouse", cfg.FollowMouse, "Follow the mouse (X11 only)")
	fs.IntVar(&f.frameRate, "fps", cfg.FrameRate, "Frames per second")
	fs.Float64VarP(&f.delay, "delay", "d", cfg.Delay, "Seconds to wait before recording")
	fs.StringVar(&f.area, "area", cfg.Area, "Region X,Y,WxH (default: full screen)")
	fs.StringVar(&f.command, "command", cfg.Command, "Shell command to run after recording")
	fs.StringVar(&f.videoCodec, "video-codec", cfg.VideoCodec, "Video codec")
	fs.StringVar(&f.audioCodec, "audio-codec", cfg.AudioCodec, "Audio codec")
	return f
}

func (f *sessionFlags) options() (recording.Options, error) {
	folder, err := config.ResolveFolder(f.folder)
	if err != nil {
		return recording.Options{}, err
	}
	area, err := recording.ParseRegion(f.area)
	if err != nil {
		return recording.Options{}, err
	}
	if f.delay < 0 {
		return recording.Options{}, fmt.Errorf("delay must not be negative")
	}
	if f.frameRate < 1 {
		return recording.Options{}, fmt.Errorf("fps must be at least 1")
	}

	// Codecs and audio not given on the command line are adapted to the
	// format, so `-f gif` works with the stored webm codecs.
	videoCodec, audioCodec, audio := f.videoCodec, f.audioCodec, f.audio
	if format, err := media.Lookup(f.format); err == nil {
		if !f.changed("video-codec") {
			videoCodec = format.FitVideoCodec(videoCodec)
		}
		if !f.changed("audio-codec") {
			audioCodec = format.FitAudioCodec(audioCodec)
		}
		if format.Animated && !f.changed("audio") {
			audio = recording.NoAudio
		}
	}

	return recording.Options{
		Folder:      folder,
		Filename:    f.filename,
		Format:      f.format,
		Video:       f.video,
		AudioSource: audio,
		ShowMouse:   f.mouse,
		FollowMouse: f.followMouse,
		FrameRate:   f.frameRate,
		Area:        area,
		Command:     f.command,
		VideoCodec:  videoCodec,
		AudioCodec:  audioCodec,
		Delay:       time.Duration(f.delay * float64(time.Second)),
	}, nil
}

func (f *sessionFlags) changed(name string) bool {
	return f.fs != nil && f.fs.Changed(name)
}

// changedFlags renders the flags given on the command line so they can be
// passed on to a child process.
func changedFlags(cmd *cobra.Command) []string {
	var args []string
	cmd.Flags().Visit(func(fl *pflag.Flag) {
		args = append(args, fmt.Sprintf("--%s=%s", fl.Name, fl.Value.String()))
	})
	return args
}
