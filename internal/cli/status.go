package cli

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/devbydaniel/greenrec/internal/output"
)

func NewStatusCmd(deps *Dependencies) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show whether a recording is running",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			report, err := deps.App.Status.Execute(cmd.Context())
			if err != nil {
				return err
			}

			output.NewFormatter(os.Stdout).Status(report.Current, report.Alive, report.Last)
			return nil
		},
	}
}
