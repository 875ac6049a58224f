package media

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/devbydaniel/greenrec/internal/proc"
)

// ErrOptimizerUnavailable means ImageMagick's convert is not installed.
var ErrOptimizerUnavailable = errors.New("image optimizer not installed")

const convertBin = "convert"

// Optimizer shrinks animated images with ImageMagick.
type Optimizer struct {
	runner proc.Runner
}

func NewOptimizer(runner proc.Runner) *Optimizer {
	return &Optimizer{runner: runner}
}

// Optimize rewrites path in place through path.tmp. On any failure the
// original file is put back.
func (o *Optimizer) Optimize(ctx context.Context, path string) error {
	if _, err := o.runner.LookPath(convertBin); err != nil {
		return fmt.Errorf("%w: %v", ErrOptimizerUnavailable, err)
	}

	tmp := path + ".tmp"
	if err := os.Rename(path, tmp); err != nil {
		return fmt.Errorf("moving %s aside: %w", path, err)
	}

	_, err := o.runner.Run(ctx, proc.Command{
		Name: convertBin,
		Args: []string{"-layers", "Optimize", tmp, path},
	})
	if err != nil {
		_ = os.Remove(path)
		if rerr := os.Rename(tmp, path); rerr != nil {
			return fmt.Errorf("optimizing %s: %w (restore failed: %v)", path, err, rerr)
		}
		return fmt.Errorf("optimizing %s: %w", path, err)
	}

	_ = os.Remove(tmp)
	return nil
}
