package media

import (
	"context"
	"errors"
	"fmt"

	"github.com/devbydaniel/greenrec/internal/proc"
)

// Muxer joins separately captured streams into one container.
type Muxer struct {
	runner proc.Runner
}

func NewMuxer(runner proc.Runner) *Muxer {
	return &Muxer{runner: runner}
}

// MergeCommand builds the ffmpeg invocation that copies every input stream
// into output without re-encoding.
func MergeCommand(inputs []string, output string) proc.Command {
	args := make([]string, 0, 2*len(inputs)+5)
	for _, in := range inputs {
		args = append(args, "-i", in)
	}
	args = append(args, "-c", "copy", output, "-y")
	return proc.Command{Name: "ffmpeg", Args: args}
}

// Merge runs ffmpeg over inputs. The inputs are left in place; a non-zero
// exit is returned with ffmpeg's output.
func (m *Muxer) Merge(ctx context.Context, inputs []string, output string) error {
	if len(inputs) < 2 {
		return errors.New("merge needs at least two inputs")
	}
	if _, err := m.runner.Run(ctx, MergeCommand(inputs, output)); err != nil {
		return fmt.Errorf("merging streams: %w", err)
	}
	return nil
}
