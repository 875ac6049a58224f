package cli

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/devbydaniel/greenrec/internal/media"
	"github.com/devbydaniel/greenrec/internal/output"
)

func NewFormatsCmd(deps *Dependencies) *cobra.Command {
	return &cobra.Command{
		Use:   "formats",
		Short: "List container formats and their codecs",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			formatter := output.NewFormatter(os.Stdout)
			formatter.FormatListHeader()
			for _, f := range media.Formats() {
				formatter.FormatListItem(f.Name, f.Description, f.VideoCodecs, f.AudioCodecs, f.Name == deps.Config.Format)
			}
		},
	}
}
