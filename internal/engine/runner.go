package engine

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"golang.org/x/text/encoding"

	"acadrun/internal/logging"
	"acadrun/internal/services"
)

const (
	component            = "engine"
	defaultTimeout       = 30 * time.Second
	defaultSettleDelay   = 10 * time.Millisecond
	scriptPattern        = "acadrun-*.scr"
	stagedDrawingPattern = "acadrun-*.dwg"
)

// Invocation is one engine call against one drawing.
type Invocation struct {
	Drawing    string
	Plugin     string
	Command    string
	ShowWindow bool
}

// RunReport summarises how the engine process ended.
type RunReport struct {
	PID      int
	Started  time.Time
	Duration time.Duration
	ExitCode int
	Exited   bool
	// TimedOut is set when the wait bound elapsed before exit. The engine is
	// not killed in that case; StillRunning reports whether it was alive.
	TimedOut     bool
	StillRunning bool
	ScriptPath   string
}

// AttachHook runs right after the engine starts. debugger.Hook implements it.
type AttachHook interface {
	Active() bool
	AfterStart(ctx context.Context, pid int, name string)
}

// Option configures the runner.
type Option func(*Runner)

// WithTimeout bounds the wait for engine exit. Zero or less waits indefinitely.
func WithTimeout(timeout time.Duration) Option {
	return func(r *Runner) {
		r.timeout = timeout
	}
}

// WithExecutor injects a custom executor (primarily for tests).
func WithExecutor(exec Executor) Option {
	return func(r *Runner) {
		if exec != nil {
			r.exec = exec
		}
	}
}

// WithLogger sets the base logger.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Runner) {
		if logger != nil {
			r.logger = logging.NewComponentLogger(logger, component)
		}
	}
}

// WithEncoding sets the script text encoding.
func WithEncoding(enc encoding.Encoding) Option {
	return func(r *Runner) {
		r.encoding = enc
	}
}

// WithAttacher installs a debugger hook invoked after the engine starts.
func WithAttacher(hook AttachHook) Option {
	return func(r *Runner) {
		r.hook = hook
	}
}

// WithDebugPlugin sets the assembly loaded ahead of the plugin while a
// debugger hook is active.
func WithDebugPlugin(path string) Option {
	return func(r *Runner) {
		r.debugPlugin = strings.TrimSpace(path)
	}
}

// WithSettleDelay sets the pause between engine exit and script removal.
func WithSettleDelay(delay time.Duration) Option {
	return func(r *Runner) {
		if delay >= 0 {
			r.settle = delay
		}
	}
}

// WithTempDir sets where scripts and staged drawings are written.
func WithTempDir(dir string) Option {
	return func(r *Runner) {
		r.tempDir = strings.TrimSpace(dir)
	}
}

// Runner launches the engine for individual invocations.
type Runner struct {
	binary      string
	timeout     time.Duration
	exec        Executor
	logger      *slog.Logger
	encoding    encoding.Encoding
	hook        AttachHook
	debugPlugin string
	settle      time.Duration
	tempDir     string
}

// New constructs a Runner for the engine executable at binary.
func New(binary string, opts ...Option) (*Runner, error) {
	binary = strings.TrimSpace(binary)
	if binary == "" {
		return nil, errors.New("engine binary required")
	}
	r := &Runner{
		binary:   binary,
		timeout:  defaultTimeout,
		exec:     commandExecutor{},
		logger:   logging.NewComponentLogger(nil, component),
		encoding: DefaultEncoding,
		settle:   defaultSettleDelay,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r, nil
}

// Binary returns the engine executable path.
func (r *Runner) Binary() string {
	return r.binary
}

// Timeout returns the configured wait bound.
func (r *Runner) Timeout() time.Duration {
	return r.timeout
}

func (r *Runner) debugging() bool {
	return r.hook != nil && r.hook.Active()
}

// Script builds the script an invocation would run.
func (r *Runner) Script(inv Invocation) (Script, error) {
	debugPlugin := ""
	if r.debugging() && r.debugPlugin != "" {
		if _, err := os.Stat(r.debugPlugin); err != nil {
			return Script{}, services.Wrap(services.ErrConfiguration, component, "debug plugin", r.debugPlugin, err)
		}
		debugPlugin = r.debugPlugin
	}
	script, err := BuildScript(inv.Plugin, inv.Command, debugPlugin)
	if err != nil {
		return Script{}, services.Wrap(services.ErrValidation, component, "build script", "", err)
	}
	return script, nil
}

// WriteScript writes the invocation script to a new temp file and returns its path.
func (r *Runner) WriteScript(inv Invocation) (string, error) {
	script, err := r.Script(inv)
	if err != nil {
		return "", err
	}
	data, err := script.Bytes(r.encoding)
	if err != nil {
		return "", services.Wrap(services.ErrValidation, component, "encode script", "", err)
	}
	file, err := os.CreateTemp(r.tempDir, scriptPattern)
	if err != nil {
		return "", services.Wrap(services.ErrConfiguration, component, "create script", r.tempDir, err)
	}
	if _, err := file.Write(data); err != nil {
		_ = file.Close()
		_ = os.Remove(file.Name())
		return "", services.Wrap(services.ErrExternalTool, component, "write script", file.Name(), err)
	}
	if err := file.Close(); err != nil {
		_ = os.Remove(file.Name())
		return "", services.Wrap(services.ErrExternalTool, component, "close script", file.Name(), err)
	}
	return file.Name(), nil
}

// RunCommand executes one invocation and waits for the engine to finish.
//
// A timeout is reported, not returned as an error, and leaves the engine
// running. Cancelling ctx kills the engine and returns ctx.Err().
func (r *Runner) RunCommand(ctx context.Context, inv Invocation) (RunReport, error) {
	var report RunReport

	drawing, err := resolveDrawing(inv.Drawing)
	if err != nil {
		return report, err
	}
	inv.Drawing = drawing

	ctx = services.WithDrawing(ctx, drawing)
	ctx = services.WithCommand(ctx, inv.Command)
	logger := logging.WithContext(ctx, r.logger)

	scriptPath, err := r.WriteScript(inv)
	if err != nil {
		return report, err
	}
	report.ScriptPath = scriptPath
	defer r.cleanupScript(logger, scriptPath)

	proc, err := r.exec.Start(ctx, Spec{
		Binary:     r.binary,
		Args:       []string{"/i", drawing, "/s", scriptPath},
		Dir:        filepath.Dir(drawing),
		ShowWindow: inv.ShowWindow,
		OnOutput: func(line string) {
			logger.Debug("engine output", logging.String("line", line))
		},
	})
	if err != nil {
		return report, services.Wrap(services.ErrExternalTool, component, "start", r.binary, err)
	}
	report.PID = proc.PID()
	report.Started = time.Now()
	logger.Info("engine started",
		logging.Int(logging.FieldPID, report.PID),
		logging.String("plugin", inv.Plugin),
		logging.Duration("timeout", r.timeout),
	)

	type waitResult struct {
		code int
		err  error
	}
	done := make(chan waitResult, 1)
	go func() {
		code, err := proc.Wait()
		done <- waitResult{code: code, err: err}
	}()

	if r.debugging() {
		r.hook.AfterStart(ctx, report.PID, filepath.Base(r.binary))
	}

	var timeout <-chan time.Time
	if r.timeout > 0 {
		timer := time.NewTimer(r.timeout)
		defer timer.Stop()
		timeout = timer.C
	}

	select {
	case res := <-done:
		report.Duration = time.Since(report.Started)
		if res.err != nil {
			return report, services.Wrap(services.ErrExternalTool, component, "wait", r.binary, res.err)
		}
		report.Exited = true
		report.ExitCode = res.code
		if res.code != 0 {
			logger.Warn("engine exited with non-zero status",
				logging.Int("exit_code", res.code),
				logging.Duration("duration", report.Duration),
			)
		} else {
			logger.Info("engine finished", logging.Duration("duration", report.Duration))
		}
	case <-timeout:
		report.Duration = time.Since(report.Started)
		report.TimedOut = true
		report.StillRunning = processAlive(ctx, report.PID)
		logger.Warn("engine did not exit before timeout; leaving it running",
			logging.Int(logging.FieldPID, report.PID),
			logging.Duration("timeout", r.timeout),
			logging.Bool("still_running", report.StillRunning),
		)
	case <-ctx.Done():
		report.Duration = time.Since(report.Started)
		if err := proc.Kill(); err != nil {
			logger.Warn("kill engine failed", logging.Int(logging.FieldPID, report.PID), logging.Error(err))
		}
		<-done
		logger.Info("engine canceled", logging.Int(logging.FieldPID, report.PID))
		return report, ctx.Err()
	}
	return report, nil
}

// RunCommandStream stages src as a temporary drawing and runs inv against it.
func (r *Runner) RunCommandStream(ctx context.Context, src io.Reader, inv Invocation) (RunReport, error) {
	var report RunReport
	err := r.withStagedDrawing(src, func(drawing string) error {
		inv.Drawing = drawing
		var runErr error
		report, runErr = r.RunCommand(ctx, inv)
		return runErr
	})
	return report, err
}

func (r *Runner) withStagedDrawing(src io.Reader, fn func(drawing string) error) error {
	if src == nil {
		return services.Wrap(services.ErrValidation, component, "stage drawing", "source stream is nil", nil)
	}
	file, err := os.CreateTemp(r.tempDir, stagedDrawingPattern)
	if err != nil {
		return services.Wrap(services.ErrConfiguration, component, "stage drawing", r.tempDir, err)
	}
	path := file.Name()
	defer func() {
		if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
			r.logger.Warn("remove staged drawing failed", logging.String("path", path), logging.Error(err))
		}
	}()
	if _, err := io.Copy(file, src); err != nil {
		_ = file.Close()
		return services.Wrap(services.ErrExternalTool, component, "stage drawing", path, err)
	}
	if err := file.Close(); err != nil {
		return services.Wrap(services.ErrExternalTool, component, "stage drawing", path, err)
	}
	return fn(path)
}

func (r *Runner) cleanupScript(logger *slog.Logger, path string) {
	if r.settle > 0 {
		time.Sleep(r.settle)
	}
	if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		logger.Warn("remove script failed", logging.String("path", path), logging.Error(err))
	}
}

func resolveDrawing(path string) (string, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return "", services.Wrap(services.ErrValidation, component, "drawing", "drawing path required", nil)
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", services.Wrap(services.ErrValidation, component, "drawing", path, err)
	}
	info, err := os.Stat(abs)
	if err != nil {
		return "", services.Wrap(services.ErrValidation, component, "drawing", fmt.Sprintf("%s not accessible", abs), err)
	}
	if info.IsDir() {
		return "", services.Wrap(services.ErrValidation, component, "drawing", fmt.Sprintf("%s is a directory", abs), nil)
	}
	return abs, nil
}
