package cli

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/devbydaniel/greenrec/internal/output"
)

func NewStopCmd(deps *Dependencies) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "stop",
		Short: "Stop the background recording",
		Long:  "Stop the running recorder and wait until the output file has been written.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			formatter := output.NewFormatter(os.Stdout)
			formatter.Stopping()

			res, err := deps.App.StopRecording.Execute(cmd.Context())
			if err != nil {
				return err
			}

			formatter.RecordingStopped(res)
			return nil
		},
	}

	return cmd
}
