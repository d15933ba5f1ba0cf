package config

import (
	"errors"
	"fmt"
	"strings"

	"golang.org/x/text/encoding/htmlindex"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateEngine(); err != nil {
		return err
	}
	if err := c.validateDebugger(); err != nil {
		return err
	}
	if err := c.validateHistory(); err != nil {
		return err
	}
	return nil
}

func (c *Config) validateEngine() error {
	if strings.TrimSpace(c.Engine.Path) == "" {
		defaultPath, err := DefaultConfigPath()
		if err != nil {
			defaultPath = defaultConfigPath
		}
		return fmt.Errorf("engine.path is required. Set ACADRUN_ENGINE env var or edit %s (create with 'acadrun config init')", defaultPath)
	}
	if c.Engine.TimeoutSeconds < 0 {
		return errors.New("engine.timeout_seconds must be >= 0 (0 waits indefinitely)")
	}
	if _, err := htmlindex.Get(c.Engine.ScriptEncoding); err != nil {
		return fmt.Errorf("engine.script_encoding %q is not a known encoding", c.Engine.ScriptEncoding)
	}
	return nil
}

func (c *Config) validateDebugger() error {
	switch c.Debugger.Mode {
	case "off":
		return nil
	case "auto", "always":
	default:
		return fmt.Errorf("debugger.mode must be one of off, auto, always (got %q)", c.Debugger.Mode)
	}
	if len(c.Debugger.Command) == 0 {
		return errors.New("debugger.command must be set when debugger.mode is not off")
	}
	if err := ensureNonNegativeMap(map[string]int{
		"debugger.delay_ms":       c.Debugger.DelayMS,
		"debugger.retry_delay_ms": c.Debugger.RetryDelayMS,
		"debugger.confirm_ms":     c.Debugger.ConfirmMS,
	}); err != nil {
		return err
	}
	return nil
}

func (c *Config) validateHistory() error {
	if c.History.RetentionDays < 0 {
		return errors.New("history.retention_days must be >= 0")
	}
	return nil
}

func ensureNonNegativeMap(values map[string]int) error {
	for key, value := range values {
		if value < 0 {
			return fmt.Errorf("%s must be >= 0", key)
		}
	}
	return nil
}
