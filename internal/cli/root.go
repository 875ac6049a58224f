package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/devbydaniel/greenrec/config"
	"github.com/devbydaniel/greenrec/internal/app"
	"github.com/devbydaniel/greenrec/internal/version"
)

type Dependencies struct {
	App    *app.App
	Config *config.Config
}

func NewRootCmd(deps *Dependencies) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "greenrec",
		Short:         "Record the screen and audio on Linux",
		Long:          "A screen recorder for X11 and GNOME Wayland sessions. Video is captured with ffmpeg's x11grab or GNOME Shell's screencast service, audio from PulseAudio, and both are merged into one file.",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.Version = version.Version
	rootCmd.SetVersionTemplate(version.Full() + "\n")

	rootCmd.AddCommand(NewRecordCmd(deps))
	rootCmd.AddCommand(NewStartCmd(deps))
	rootCmd.AddCommand(NewStopCmd(deps))
	rootCmd.AddCommand(NewStatusCmd(deps))
	rootCmd.AddCommand(NewAreaCmd(deps))
	rootCmd.AddCommand(NewSourcesCmd(deps))
	rootCmd.AddCommand(NewFormatsCmd(deps))
	rootCmd.AddCommand(NewConfigCmd(deps))
	rootCmd.AddCommand(NewDoctorCmd(deps))
	rootCmd.AddCommand(newVersionCmd())

	return rootCmd
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintln(cmd.OutOrStdout(), version.Full())
		},
	}
}
