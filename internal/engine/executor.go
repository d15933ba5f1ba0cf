package engine

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
	"sync"
	"time"
)

// Spec describes one engine process launch.
type Spec struct {
	Binary     string
	Args       []string
	Dir        string
	ShowWindow bool
	// OnOutput receives engine console lines. Nil discards them.
	OnOutput func(string)
}

// RunningProcess is a started engine process.
type RunningProcess interface {
	PID() int
	// Wait blocks until exit. A non-zero exit code is not an error.
	Wait() (exitCode int, err error)
	// Kill terminates the process and its children.
	Kill() error
}

// Executor abstracts process spawning for testability.
type Executor interface {
	Start(ctx context.Context, spec Spec) (RunningProcess, error)
}

type commandExecutor struct{}

func (commandExecutor) Start(_ context.Context, spec Spec) (RunningProcess, error) {
	cmd := exec.Command(spec.Binary, spec.Args...) //nolint:gosec
	cmd.Dir = spec.Dir
	configureProcess(cmd, spec.ShowWindow)
	if spec.OnOutput != nil {
		out := &lineWriter{forward: spec.OnOutput}
		cmd.Stdout = out
		cmd.Stderr = out
		// Children that inherit the pipes must not hold Wait hostage.
		cmd.WaitDelay = time.Second
	}
	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("start command: %w", err)
	}
	return &commandProcess{cmd: cmd}, nil
}

type commandProcess struct {
	cmd *exec.Cmd
}

func (p *commandProcess) PID() int {
	return p.cmd.Process.Pid
}

func (p *commandProcess) Wait() (int, error) {
	err := p.cmd.Wait()
	var exitErr *exec.ExitError
	switch {
	case err == nil:
		return 0, nil
	case errors.As(err, &exitErr):
		return exitErr.ExitCode(), nil
	case errors.Is(err, exec.ErrWaitDelay):
		return p.cmd.ProcessState.ExitCode(), nil
	default:
		return -1, fmt.Errorf("wait command: %w", err)
	}
}

func (p *commandProcess) Kill() error {
	return killProcessTree(p.cmd)
}

// lineWriter splits engine console output into lines. The engine emits
// UTF-16 on Windows, so NUL bytes are dropped.
type lineWriter struct {
	mu      sync.Mutex
	buf     bytes.Buffer
	forward func(string)
}

func (w *lineWriter) Write(p []byte) (int, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.buf.Write(bytes.ReplaceAll(p, []byte{0}, nil))
	for {
		idx := bytes.IndexByte(w.buf.Bytes(), '\n')
		if idx < 0 {
			break
		}
		line := strings.TrimRight(string(w.buf.Next(idx+1)), "\r\n")
		if strings.TrimSpace(line) != "" {
			w.forward(line)
		}
	}
	return len(p), nil
}
