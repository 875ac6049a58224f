package proc

import (
	"fmt"
	"os"
	"os/exec"
)

// Spawn launches c detached from the current process and releases it. The
// exit status is never observed.
func Spawn(c Command) (int, error) {
	cmd := exec.Command(c.Name, c.Args...)
	cmd.SysProcAttr = detachedAttr()

	if c.StderrPath != "" {
		f, err := os.OpenFile(c.StderrPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err == nil {
			defer f.Close()
			cmd.Stdout = f
			cmd.Stderr = f
		}
	}

	if err := cmd.Start(); err != nil {
		return 0, fmt.Errorf("spawning %s: %w", c.Name, err)
	}
	pid := cmd.Process.Pid
	_ = cmd.Process.Release()
	return pid, nil
}

// Shell wraps a shell command line for Spawn or Runner.
func Shell(line string) Command {
	return Command{Name: "/bin/sh", Args: []string{"-c", line}}
}
