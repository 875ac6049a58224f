package proc

import (
	"context"
	"errors"
	"fmt"
	"syscall"
	"time"

	"github.com/shirou/gopsutil/v3/process"
)

// ErrNoProcess is returned when a PID does not refer to a live process.
var ErrNoProcess = errors.New("no such process")

// Alive reports whether pid refers to a running, non-zombie process.
func Alive(ctx context.Context, pid int) bool {
	if pid <= 0 {
		return false
	}
	p, err := process.NewProcessWithContext(ctx, int32(pid))
	if err != nil {
		return false
	}
	running, err := p.IsRunningWithContext(ctx)
	if err != nil || !running {
		return false
	}
	if status, err := p.StatusWithContext(ctx); err == nil {
		for _, s := range status {
			if s == process.Zombie {
				return false
			}
		}
	}
	return true
}

// Signal delivers sig to a process this program did not start.
func Signal(ctx context.Context, pid int, sig syscall.Signal) error {
	if !Alive(ctx, pid) {
		return fmt.Errorf("pid %d: %w", pid, ErrNoProcess)
	}
	p, err := process.NewProcessWithContext(ctx, int32(pid))
	if err != nil {
		return fmt.Errorf("pid %d: %w", pid, ErrNoProcess)
	}
	if err := p.SendSignalWithContext(ctx, sig); err != nil {
		return fmt.Errorf("signalling pid %d: %w", pid, err)
	}
	return nil
}

// WaitExit polls until pid is gone or ctx is done.
func WaitExit(ctx context.Context, pid int, poll time.Duration) error {
	ticker := time.NewTicker(poll)
	defer ticker.Stop()

	for Alive(ctx, pid) {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
	return nil
}

// StartedAt returns the creation time of pid.
func StartedAt(ctx context.Context, pid int) (time.Time, error) {
	p, err := process.NewProcessWithContext(ctx, int32(pid))
	if err != nil {
		return time.Time{}, fmt.Errorf("pid %d: %w", pid, ErrNoProcess)
	}
	ms, err := p.CreateTimeWithContext(ctx)
	if err != nil {
		return time.Time{}, err
	}
	return time.UnixMilli(ms), nil
}
