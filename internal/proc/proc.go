// Package proc runs a single child process with a wall-clock limit.
package proc

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os/exec"
	"syscall"
	"time"
)

type Spec struct {
	Args   []string
	Dir    string
	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer
	// Timeout of zero means no limit.
	Timeout time.Duration
}

type Result struct {
	// ExitCode is -1 when the process was terminated by a signal.
	ExitCode  int
	TimedOut  bool
	Wall      time.Duration
	MaxRssKiB int64
}

func (r *Result) Success() bool {
	return !r.TimedOut && r.ExitCode == 0
}

// Run starts the process in its own process group and waits for it. When
// the timeout elapses or ctx is done the whole group is killed. An error is
// returned only if the process could not be started or waited for, or ctx
// ended first.
func Run(ctx context.Context, spec Spec) (*Result, error) {
	if len(spec.Args) == 0 {
		return nil, errors.New("empty command")
	}
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("%s not started: %w", spec.Args[0], err)
	}

	cmd := exec.Command(spec.Args[0], spec.Args[1:]...)
	cmd.Dir = spec.Dir
	cmd.Stdin = spec.Stdin
	cmd.Stdout = spec.Stdout
	cmd.Stderr = spec.Stderr
	cmd.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}

	start := time.Now()
	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("failed to start %s: %w", spec.Args[0], err)
	}

	done := make(chan error, 1)
	go func() {
		done <- cmd.Wait()
	}()

	var deadline <-chan time.Time
	if spec.Timeout > 0 {
		timer := time.NewTimer(spec.Timeout)
		defer timer.Stop()
		deadline = timer.C
	}

	res := &Result{}
	var err error
	select {
	case err = <-done:
	case <-deadline:
		killGroup(cmd)
		err = <-done
		res.TimedOut = true
	case <-ctx.Done():
		killGroup(cmd)
		<-done
		return nil, fmt.Errorf("%s interrupted: %w", spec.Args[0], ctx.Err())
	}
	res.Wall = time.Since(start)

	if err != nil {
		var exitErr *exec.ExitError
		if !errors.As(err, &exitErr) {
			return nil, fmt.Errorf("failed to wait for %s: %w", spec.Args[0], err)
		}
	}

	res.ExitCode = cmd.ProcessState.ExitCode()
	if ru, ok := cmd.ProcessState.SysUsage().(*syscall.Rusage); ok {
		res.MaxRssKiB = int64(ru.Maxrss)
	}
	return res, nil
}

func killGroup(cmd *exec.Cmd) {
	if cmd.Process != nil {
		_ = syscall.Kill(-cmd.Process.Pid, syscall.SIGKILL)
	}
}
