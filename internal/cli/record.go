package cli

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/devbydaniel/greenrec/internal/output"
)

func NewRecordCmd(deps *Dependencies) *cobra.Command {
	var flags *sessionFlags

	cmd := &cobra.Command{
		Use:   "record",
		Short: "Record in the foreground until interrupted",
		Long:  "Start recording and keep running until Ctrl+C (or 'greenrec stop' from another terminal), then write the output file.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			formatter := output.NewFormatter(os.Stdout)

			opts, err := flags.options()
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			rec, err := deps.App.StartRecording.Execute(ctx, opts)
			if err != nil {
				return err
			}
			formatter.RecordingStarted(rec.State(), true)

			<-ctx.Done()
			stop()

			formatter.Stopping()
			res, err := rec.Stop(context.WithoutCancel(ctx))
			if res != nil && err == nil {
				formatter.RecordingStopped(res)
			}
			return err
		},
	}

	flags = addSessionFlags(cmd, deps.Config)
	return cmd
}
