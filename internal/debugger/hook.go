package debugger

import (
	"context"
	"log/slog"
	"time"

	"acadrun/internal/config"
	"acadrun/internal/logging"
)

// Hook attaches a debugger after the engine starts. It satisfies
// engine.AttachHook.
type Hook struct {
	Mode     Mode
	Attacher Attacher
	// Delay lets the engine finish loading before the first attach attempt.
	Delay  time.Duration
	Logger *slog.Logger
}

// NewHookFromConfig builds a hook from the debugger configuration section.
func NewHookFromConfig(cfg *config.Config, logger *slog.Logger) (*Hook, error) {
	mode, err := ParseMode(cfg.Debugger.Mode)
	if err != nil {
		return nil, err
	}
	logger = logging.NewComponentLogger(logger, "debugger")
	delay, retry, confirm := cfg.DebuggerTimings()
	return &Hook{
		Mode: mode,
		Attacher: Retrying{
			Attacher: CommandAttacher{Command: cfg.Debugger.Command, Confirm: confirm},
			Attempts: cfg.Debugger.Attempts,
			Delay:    retry,
			Logger:   logger,
		},
		Delay:  delay,
		Logger: logger,
	}, nil
}

// Active reports whether the hook will attach, and therefore whether the
// debug plugin must be loaded.
func (h *Hook) Active() bool {
	if h == nil || h.Attacher == nil {
		return false
	}
	switch h.Mode {
	case ModeAlways:
		return true
	case ModeAuto:
		return beingTraced()
	default:
		return false
	}
}

// AfterStart attaches to pid. Failures are logged, never returned.
func (h *Hook) AfterStart(ctx context.Context, pid int, name string) {
	if !h.Active() {
		return
	}
	logger := h.Logger
	if logger == nil {
		logger = logging.NewNop()
	}
	logger = logging.WithContext(ctx, logger)

	if err := sleep(ctx, h.Delay); err != nil {
		logger.Debug("debugger attach skipped", logging.Error(err))
		return
	}
	if err := h.Attacher.Attach(ctx, pid, name); err != nil {
		logger.Warn("debugger attach failed", logging.Int(logging.FieldPID, pid), logging.Error(err))
		return
	}
	logger.Info("debugger attached", logging.Int(logging.FieldPID, pid), logging.String("process", name))
}
