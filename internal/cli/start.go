package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/devbydaniel/greenrec/internal/output"
)

func NewStartCmd(deps *Dependencies) *cobra.Command {
	var flags *sessionFlags

	cmd := &cobra.Command{
		Use:   "start",
		Short: "Start recording in the background",
		Long:  "Start a background recorder and return once it is capturing. Use 'greenrec stop' to finish.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			formatter := output.NewFormatter(os.Stdout)

			if _, err := flags.options(); err != nil {
				return err
			}

			exe, err := os.Executable()
			if err != nil {
				return fmt.Errorf("locating greenrec executable: %w", err)
			}

			state, err := deps.App.StartRecording.Background(cmd.Context(), exe, append([]string{"record"}, changedFlags(cmd)...))
			if err != nil {
				return err
			}

			formatter.RecordingStarted(*state, false)
			return nil
		},
	}

	flags = addSessionFlags(cmd, deps.Config)
	return cmd
}
