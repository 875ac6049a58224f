// Package proc starts and stops the external tools the recorder drives.
package proc

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strings"
	"time"
)

// ErrKilled is returned by Process.Stop when the process ignored the stop
// signal for the whole grace period and had to be killed.
var ErrKilled = errors.New("process killed after grace period")

// Command describes one external invocation.
type Command struct {
	Name string
	Args []string
	// StderrPath, when set, receives the process' stderr.
	StderrPath string
}

// LogPath is where the stderr of a tool writing output is kept.
func LogPath(output string) string {
	return output + ".ffmpeg.log"
}

func (c Command) String() string {
	return strings.TrimSpace(c.Name + " " + strings.Join(c.Args, " "))
}

// Process is a running child process.
type Process interface {
	Pid() int
	// Stop sends sig and waits for the process to exit. If it is still alive
	// after grace, it is killed and ErrKilled is returned.
	Stop(ctx context.Context, sig os.Signal, grace time.Duration) error
	Wait() error
}

// Runner launches external commands.
type Runner interface {
	Start(ctx context.Context, c Command) (Process, error)
	// Run executes c to completion and returns its combined output. A
	// non-zero exit is an error that carries the output.
	Run(ctx context.Context, c Command) ([]byte, error)
	LookPath(name string) (string, error)
}

// ExecRunner is the os/exec backed Runner.
type ExecRunner struct{}

func NewRunner() *ExecRunner {
	return &ExecRunner{}
}

func (r *ExecRunner) LookPath(name string) (string, error) {
	return exec.LookPath(name)
}

func (r *ExecRunner) Start(_ context.Context, c Command) (Process, error) {
	// Not CommandContext: the process must outlive the call that started it.
	cmd := exec.Command(c.Name, c.Args...)

	var logFile *os.File
	if c.StderrPath != "" {
		if f, err := os.Create(c.StderrPath); err == nil {
			logFile = f
			cmd.Stderr = f
		}
	}

	if err := cmd.Start(); err != nil {
		if logFile != nil {
			logFile.Close()
		}
		return nil, fmt.Errorf("starting %s: %w", c.Name, err)
	}

	p := &execProcess{cmd: cmd, done: make(chan struct{}), logFile: logFile}
	go p.wait()
	return p, nil
}

func (r *ExecRunner) Run(ctx context.Context, c Command) ([]byte, error) {
	out, err := exec.CommandContext(ctx, c.Name, c.Args...).CombinedOutput()
	if err != nil {
		return out, fmt.Errorf("%s: %w\n%s", c.Name, err, strings.TrimSpace(string(out)))
	}
	return out, nil
}

type execProcess struct {
	cmd     *exec.Cmd
	done    chan struct{}
	err     error
	logFile *os.File
}

func (p *execProcess) wait() {
	p.err = p.cmd.Wait()
	if p.logFile != nil {
		p.logFile.Close()
	}
	close(p.done)
}

func (p *execProcess) Pid() int {
	return p.cmd.Process.Pid
}

func (p *execProcess) Wait() error {
	<-p.done
	return p.err
}

func (p *execProcess) Stop(ctx context.Context, sig os.Signal, grace time.Duration) error {
	select {
	case <-p.done:
		return nil
	default:
	}

	if err := p.cmd.Process.Signal(sig); err != nil && !errors.Is(err, os.ErrProcessDone) {
		return fmt.Errorf("signalling pid %d: %w", p.Pid(), err)
	}

	timer := time.NewTimer(grace)
	defer timer.Stop()

	select {
	case <-p.done:
		return nil
	case <-timer.C:
		_ = p.cmd.Process.Kill()
		<-p.done
		return fmt.Errorf("pid %d: %w", p.Pid(), ErrKilled)
	case <-ctx.Done():
		_ = p.cmd.Process.Kill()
		<-p.done
		return ctx.Err()
	}
}
