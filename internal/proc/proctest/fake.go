// Package proctest provides an in-memory proc.Runner for tests.
package proctest

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"sync"
	"time"

	"github.com/devbydaniel/greenrec/internal/proc"
)

// Runner records every command instead of executing it.
type Runner struct {
	mu sync.Mutex

	Started []proc.Command
	Ran     []proc.Command
	Procs   []*Process

	// OnStart runs for every Start; a non-nil error fails the start.
	OnStart func(c proc.Command) error
	// OnStop runs when a started process is stopped.
	OnStop func(c proc.Command)
	// RunFunc answers Run; nil means success with empty output.
	RunFunc func(c proc.Command) ([]byte, error)
	// Missing lists binaries LookPath should not find.
	Missing map[string]bool
	// CreateLogs makes Start create the command's StderrPath, as the real
	// runner does.
	CreateLogs bool

	nextPid int
}

func (r *Runner) Start(_ context.Context, c proc.Command) (proc.Process, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.OnStart != nil {
		if err := r.OnStart(c); err != nil {
			return nil, err
		}
	}
	if r.CreateLogs && c.StderrPath != "" {
		if f, err := os.Create(c.StderrPath); err == nil {
			f.Close()
		}
	}
	r.nextPid++
	p := &Process{Cmd: c, pid: 1000 + r.nextPid, onStop: r.OnStop}
	r.Started = append(r.Started, c)
	r.Procs = append(r.Procs, p)
	return p, nil
}

func (r *Runner) Run(_ context.Context, c proc.Command) ([]byte, error) {
	r.mu.Lock()
	r.Ran = append(r.Ran, c)
	fn := r.RunFunc
	r.mu.Unlock()

	if fn == nil {
		return nil, nil
	}
	return fn(c)
}

func (r *Runner) LookPath(name string) (string, error) {
	if r.Missing[name] {
		return "", &exec.Error{Name: name, Err: exec.ErrNotFound}
	}
	return "/usr/bin/" + name, nil
}

// StartedNamed returns the started commands whose binary is name.
func (r *Runner) StartedNamed(name string) []proc.Command {
	r.mu.Lock()
	defer r.mu.Unlock()

	var out []proc.Command
	for _, c := range r.Started {
		if c.Name == name {
			out = append(out, c)
		}
	}
	return out
}

// Process is a fake proc.Process.
type Process struct {
	Cmd proc.Command

	mu      sync.Mutex
	pid     int
	stopped bool
	signal  os.Signal
	onStop  func(c proc.Command)
}

func (p *Process) Pid() int { return p.pid }

func (p *Process) Stop(_ context.Context, sig os.Signal, _ time.Duration) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.stopped {
		return nil
	}
	p.stopped = true
	p.signal = sig
	if p.onStop != nil {
		p.onStop(p.Cmd)
	}
	return nil
}

func (p *Process) Wait() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.stopped {
		return fmt.Errorf("fake process %d was never stopped", p.pid)
	}
	return nil
}

// Stopped reports whether Stop was called and with which signal.
func (p *Process) Stopped() (bool, os.Signal) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.stopped, p.signal
}
