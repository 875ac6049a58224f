package cli

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/devbydaniel/greenrec/internal/output"
)

func NewAreaCmd(deps *Dependencies) *cobra.Command {
	var window, id string
	var save bool

	cmd := &cobra.Command{
		Use:   "area",
		Short: "Select a screen region",
		Long:  "Pick a region or window and print it as X,Y,WxH. With --save the region becomes the default capture area.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			selector, err := deps.App.AreaSelector(window, id)
			if err != nil {
				return err
			}

			region, err := deps.App.SelectArea.Execute(cmd.Context(), selector, save)
			if err != nil {
				return err
			}

			output.NewFormatter(os.Stdout).Region(region, save)
			return nil
		},
	}

	cmd.Flags().StringVar(&window, "window", "", "Select the window with this name (X11)")
	cmd.Flags().StringVar(&id, "id", "", "Select the window with this id (X11)")
	cmd.Flags().BoolVar(&save, "save", false, "Store the region in the config")
	cmd.MarkFlagsMutuallyExclusive("window", "id")

	return cmd
}
