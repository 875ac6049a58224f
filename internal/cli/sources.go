package cli

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/devbydaniel/greenrec/internal/output"
)

func NewSourcesCmd(deps *Dependencies) *cobra.Command {
	return &cobra.Command{
		Use:   "sources",
		Short: "List audio sources",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			formatter := output.NewFormatter(os.Stdout)

			sources, err := deps.App.DeviceManager.ListSources(cmd.Context())
			if err != nil {
				return err
			}

			formatter.SourceListHeader()
			for _, s := range sources {
				formatter.SourceListItem(s.Name, s.Description, s.Name == deps.Config.Audio)
			}
			return nil
		},
	}
}
