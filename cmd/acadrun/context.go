package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/spf13/cobra"

	"acadrun/internal/config"
	"acadrun/internal/debugger"
	"acadrun/internal/engine"
	"acadrun/internal/history"
	"acadrun/internal/logging"
)

type commandContext struct {
	configFlag *string
	verbose    *bool

	configOnce sync.Once
	config     *config.Config
	configErr  error
}

func newCommandContext(configFlag *string, verbose *bool) *commandContext {
	return &commandContext{
		configFlag: configFlag,
		verbose:    verbose,
	}
}

func (c *commandContext) ensureConfig() (*config.Config, error) {
	c.configOnce.Do(func() {
		var path string
		if c.configFlag != nil {
			path = strings.TrimSpace(*c.configFlag)
		}
		cfg, _, _, err := config.Load(path)
		if err != nil {
			c.configErr = err
			return
		}
		if err := cfg.EnsureDirectories(); err != nil {
			c.configErr = err
			return
		}
		if c.verbose != nil && *c.verbose {
			cfg.Logging.Level = "debug"
		}
		c.config = cfg
	})
	return c.config, c.configErr
}

func (c *commandContext) logger(console io.Writer) (*slog.Logger, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, err
	}
	logger, err := logging.NewFromConfig(cfg, console)
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}
	return logger, nil
}

// newRunner wires the engine runner and debugger hook from config.
func (c *commandContext) newRunner(cmd *cobra.Command, opts ...engine.Option) (*engine.Runner, *slog.Logger, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, nil, err
	}
	logger, err := c.logger(cmd.ErrOrStderr())
	if err != nil {
		return nil, nil, err
	}
	hook, err := debugger.NewHookFromConfig(cfg, logger)
	if err != nil {
		return nil, nil, err
	}
	runner, err := engine.NewFromConfig(cfg, logger, append([]engine.Option{engine.WithAttacher(hook)}, opts...)...)
	if err != nil {
		return nil, nil, err
	}
	return runner, logger, nil
}

// withHistory opens the history store for the duration of fn. fn receives
// nil when history is disabled.
func (c *commandContext) withHistory(fn func(*history.Store) error) error {
	cfg, err := c.ensureConfig()
	if err != nil {
		return err
	}
	if !cfg.History.Enabled {
		return fn(nil)
	}
	store, err := history.Open(cfg)
	if err != nil {
		return fmt.Errorf("open history: %w", err)
	}
	defer store.Close()
	return fn(store)
}

// pruneExpired applies the configured retention window.
func pruneExpired(cmd *cobra.Command, cfg *config.Config, store *history.Store, logger *slog.Logger) {
	if store == nil || cfg.History.RetentionDays <= 0 {
		return
	}
	cutoff := time.Now().AddDate(0, 0, -cfg.History.RetentionDays)
	// Prune on the way out even when the command was interrupted.
	removed, err := store.Prune(context.WithoutCancel(cmd.Context()), cutoff)
	if err != nil {
		logger.Warn("history retention prune failed", logging.Error(err))
		return
	}
	if removed > 0 {
		logger.Debug("pruned expired history", logging.Int64("removed", removed))
	}
}

func shouldSkipConfig(cmd *cobra.Command) bool {
	for c := cmd; c != nil; c = c.Parent() {
		if c.Annotations != nil && c.Annotations["skipConfigLoad"] == "true" {
			return true
		}
	}
	return false
}

func yesNo(value bool) string {
	if value {
		return "yes"
	}
	return "no"
}

func formatDuration(d time.Duration) string {
	if d <= 0 {
		return "-"
	}
	if d < time.Second {
		return d.Round(time.Millisecond).String()
	}
	return d.Round(100 * time.Millisecond).String()
}
