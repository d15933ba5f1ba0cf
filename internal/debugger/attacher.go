package debugger

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os/exec"
	"strconv"
	"strings"
	"time"

	"acadrun/internal/logging"
)

const defaultConfirmWindow = 500 * time.Millisecond

// Attacher connects a debugger to a running process.
type Attacher interface {
	Attach(ctx context.Context, pid int, name string) error
}

// CommandAttacher runs an external attach command. "{pid}" and "{name}" in
// the template are replaced with the target's pid and executable name.
//
// The attach succeeds when the command exits zero or is still running once
// the confirm window elapses; headless debuggers keep running while attached.
type CommandAttacher struct {
	Command []string
	Confirm time.Duration
}

// Expand returns the command line for the given target.
func (a CommandAttacher) Expand(pid int, name string) []string {
	replacer := strings.NewReplacer("{pid}", strconv.Itoa(pid), "{name}", name)
	args := make([]string, len(a.Command))
	for i, arg := range a.Command {
		args[i] = replacer.Replace(arg)
	}
	return args
}

func (a CommandAttacher) Attach(ctx context.Context, pid int, name string) error {
	if len(a.Command) == 0 || strings.TrimSpace(a.Command[0]) == "" {
		return errors.New("attach command not configured")
	}
	args := a.Expand(pid, name)
	cmd := exec.Command(args[0], args[1:]...) //nolint:gosec
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("start %s: %w", args[0], err)
	}

	done := make(chan error, 1)
	go func() {
		done <- cmd.Wait()
	}()

	confirm := a.Confirm
	if confirm <= 0 {
		confirm = defaultConfirmWindow
	}
	timer := time.NewTimer(confirm)
	defer timer.Stop()

	select {
	case err := <-done:
		if err != nil {
			return fmt.Errorf("%s exited: %w", args[0], err)
		}
		return nil
	case <-timer.C:
		return nil
	case <-ctx.Done():
		// The engine is about to be killed; a half-attached debugger must not outlive it.
		_ = cmd.Process.Kill()
		<-done
		return ctx.Err()
	}
}

// Retrying retries an Attacher a bounded number of times.
type Retrying struct {
	Attacher Attacher
	Attempts int
	Delay    time.Duration
	// Backoff multiplies Delay after each failed attempt. Values <= 1 keep it constant.
	Backoff float64
	Logger  *slog.Logger
}

func (r Retrying) Attach(ctx context.Context, pid int, name string) error {
	if r.Attacher == nil {
		return errors.New("no attacher configured")
	}
	attempts := r.Attempts
	if attempts < 1 {
		attempts = 1
	}
	logger := r.Logger
	if logger == nil {
		logger = logging.NewNop()
	}

	delay := r.Delay
	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		lastErr = r.Attacher.Attach(ctx, pid, name)
		if lastErr == nil {
			return nil
		}
		logger.Debug("debugger attach attempt failed",
			logging.Int("attempt", attempt),
			logging.Int("attempts", attempts),
			logging.Error(lastErr),
		)
		if attempt == attempts {
			break
		}
		if err := sleep(ctx, delay); err != nil {
			return err
		}
		if r.Backoff > 1 {
			delay = time.Duration(float64(delay) * r.Backoff)
		}
	}
	return fmt.Errorf("attach to pid %d failed after %d attempts: %w", pid, attempts, lastErr)
}

func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		// The engine is about to be killed; a half-attached debugger must not outlive it.
		_ = cmd.Process.Kill()
		<-done
		return ctx.Err()
	}
}
