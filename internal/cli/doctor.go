package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/devbydaniel/greenrec/internal/app"
	"github.com/devbydaniel/greenrec/internal/capture"
	"github.com/devbydaniel/greenrec/internal/output"
)

func NewDoctorCmd(deps *Dependencies) *cobra.Command {
	return &cobra.Command{
		Use:   "doctor",
		Short: "Check prerequisites",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			f := output.NewFormatter(os.Stdout)
			a := deps.App
			ok := true

			if err := a.Recorder.CheckFFmpeg(); err != nil {
				f.SetupCheck("ffmpeg", false, err.Error())
				ok = false
			} else {
				f.SetupCheck("ffmpeg", true, "installed")
			}

			switch {
			case a.DisplayErr != nil:
				f.SetupCheck("Display server", false, a.DisplayErr.Error())
				ok = false
			case a.Display == capture.Wayland:
				f.SetupCheck("Display server", true, "Wayland (GNOME Shell screencast)")
				if available, err := a.ScreencastAvailable(cmd.Context()); err != nil || !available {
					detail := "org.gnome.Shell.Screencast is not running"
					if err != nil {
						detail = err.Error()
					}
					f.SetupCheck("Screencast service", false, detail)
					ok = false
				} else {
					f.SetupCheck("Screencast service", true, "available")
				}
			default:
				display := app.XDisplay()
				if w, h, err := (capture.X11Screen{}).ScreenSize(display); err != nil {
					f.SetupCheck("Display server", false, err.Error())
					ok = false
				} else {
					f.SetupCheck("Display server", true, fmt.Sprintf("X11 %s (%dx%d)", display, w, h))
				}
				if _, err := a.Runner.LookPath("xwininfo"); err != nil {
					f.SetupCheck("xwininfo", false, "not found, needed for 'greenrec area'. Install x11-utils")
				} else {
					f.SetupCheck("xwininfo", true, "installed")
				}
			}

			if _, err := a.Runner.LookPath("pactl"); err != nil {
				f.SetupCheck("pactl", false, "not found, needed for 'greenrec sources'")
			} else {
				f.SetupCheck("pactl", true, "installed")
			}

			if _, err := a.Runner.LookPath("convert"); err != nil {
				f.SetupCheck("ImageMagick", false, "not found, GIFs will not be optimized")
			} else {
				f.SetupCheck("ImageMagick", true, "installed")
			}

			f.SetupCheck("Config file", true, deps.Config.Path())
			f.SetupCheck("Output folder", true, deps.Config.Folder)

			if ok {
				f.Success("\nAll prerequisites met. Ready to record!")
			} else {
				f.Warning("\nSome prerequisites are missing.")
			}
			return nil
		},
	}
}
