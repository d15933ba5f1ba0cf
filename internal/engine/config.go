package engine

import (
	"errors"
	"log/slog"
	"os"

	"acadrun/internal/config"
	"acadrun/internal/services"
)

// NewFromConfig builds a Runner from application configuration. Extra
// options are applied after the configured ones.
func NewFromConfig(cfg *config.Config, logger *slog.Logger, opts ...Option) (*Runner, error) {
	if cfg == nil {
		return nil, services.Wrap(services.ErrConfiguration, component, "configure", "config is nil", nil)
	}
	binary, err := ResolveBinary(cfg.Engine.Path)
	if err != nil {
		return nil, services.Wrap(services.ErrConfiguration, component, "resolve binary", "", err)
	}
	enc, err := LookupEncoding(cfg.Engine.ScriptEncoding)
	if err != nil {
		return nil, services.Wrap(services.ErrConfiguration, component, "script encoding", "", err)
	}
	if dir := cfg.Engine.TempDir; dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil && !errors.Is(err, os.ErrExist) {
			return nil, services.Wrap(services.ErrConfiguration, component, "temp dir", dir, err)
		}
	}
	base := []Option{
		WithLogger(logger),
		WithTimeout(cfg.EngineTimeout()),
		WithEncoding(enc),
		WithSettleDelay(cfg.SettleDelay()),
		WithTempDir(cfg.Engine.TempDir),
		WithDebugPlugin(cfg.Debugger.Plugin),
	}
	return New(binary, append(base, opts...)...)
}
