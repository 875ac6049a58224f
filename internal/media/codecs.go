// Package media knows the container formats and codecs the recorder can
// produce, and drives ffmpeg and ImageMagick for merge and post-processing.
package media

import (
	"errors"
	"fmt"
	"sort"
)

var (
	ErrUnknownFormat = errors.New("unknown container format")
	ErrCodecMismatch = errors.New("codec not supported by container")
)

// Format describes one container format.
type Format struct {
	Name        string
	Description string
	// Animated formats are image animations: they carry no audio and are
	// optimised after recording.
	Animated    bool
	VideoCodecs []string
	AudioCodecs []string
}

var formats = map[string]Format{
	"webm": {
		Name:        "webm",
		Description: "WebM",
		VideoCodecs: []string{"vp8", "vp9"},
		AudioCodecs: []string{"opus", "vorbis"},
	},
	"mkv": {
		Name:        "mkv",
		Description: "MKV (Matroska)",
		VideoCodecs: []string{"vp8", "vp9", "theora", "h264"},
		AudioCodecs: []string{"opus", "vorbis", "mp3"},
	},
	"mp4": {
		Name:        "mp4",
		Description: "MP4 (MPEG-4 Part 14)",
		VideoCodecs: []string{"h264"},
		AudioCodecs: []string{"aac", "mp3"},
	},
	"gif": {
		Name:        "gif",
		Description: "GIF (Graphics Interchange Format)",
		Animated:    true,
		VideoCodecs: []string{"gif"},
	},
}

var videoEncoders = map[string]string{
	"vp8":    "libvpx",
	"vp9":    "libvpx-vp9",
	"theora": "libtheora",
	"h264":   "libx264",
	"gif":    "gif",
}

var audioEncoders = map[string]string{
	"opus":   "libopus",
	"vorbis": "libvorbis",
	"mp3":    "libmp3lame",
	"aac":    "aac",
}

// FitVideoCodec returns codec if f carries it, otherwise f's first video codec.
func (f Format) FitVideoCodec(codec string) string {
	return fit(f.VideoCodecs, codec)
}

// FitAudioCodec returns codec if f carries it, otherwise f's first audio
// codec, or "" for formats without audio.
func (f Format) FitAudioCodec(codec string) string {
	return fit(f.AudioCodecs, codec)
}

func fit(list []string, codec string) string {
	if len(list) == 0 {
		return ""
	}
	if contains(list, codec) {
		return codec
	}
	return list[0]
}

// Lookup returns the format named name.
func Lookup(name string) (Format, error) {
	f, ok := formats[name]
	if !ok {
		return Format{}, fmt.Errorf("%w: %q", ErrUnknownFormat, name)
	}
	return f, nil
}

// Formats lists all known formats sorted by name.
func Formats() []Format {
	out := make([]Format, 0, len(formats))
	for _, f := range formats {
		out = append(out, f)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// IsAnimated reports whether name is an animated-image format.
func IsAnimated(name string) bool {
	return formats[name].Animated
}

// VideoEncoder returns the ffmpeg encoder for a video codec, or "" when
// ffmpeg should pick its default.
func VideoEncoder(codec string) string {
	return videoEncoders[codec]
}

// AudioEncoder returns the ffmpeg encoder for an audio codec, or "".
func AudioEncoder(codec string) string {
	return audioEncoders[codec]
}

// Validate checks that the codecs fit the container. Empty codecs are
// accepted and leave the choice to ffmpeg.
func Validate(format, videoCodec, audioCodec string, video, audio bool) error {
	f, err := Lookup(format)
	if err != nil {
		return err
	}
	if video && videoCodec != "" && !contains(f.VideoCodecs, videoCodec) {
		return fmt.Errorf("%w: video codec %q in %s", ErrCodecMismatch, videoCodec, format)
	}
	if audio {
		if f.Animated {
			return fmt.Errorf("%w: %s cannot carry audio", ErrCodecMismatch, format)
		}
		if audioCodec != "" && !contains(f.AudioCodecs, audioCodec) {
			return fmt.Errorf("%w: audio codec %q in %s", ErrCodecMismatch, audioCodec, format)
		}
	}
	return nil
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
