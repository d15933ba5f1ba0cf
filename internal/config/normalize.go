package config

import (
	"fmt"
	"os"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizeEngine(); err != nil {
		return err
	}
	if err := c.normalizeDebugger(); err != nil {
		return err
	}
	if err := c.normalizePaths(); err != nil {
		return err
	}
	c.normalizeBatch()
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizeEngine() error {
	c.Engine.Path = strings.TrimSpace(c.Engine.Path)
	if value, ok := os.LookupEnv("ACADRUN_ENGINE"); ok && strings.TrimSpace(value) != "" {
		c.Engine.Path = strings.TrimSpace(value)
	}
	if c.Engine.Path == "" {
		c.Engine.Path = defaultEnginePath
	}
	// Bare executable names are resolved through PATH at run time, and
	// drive-letter paths are kept verbatim.
	if c.Engine.Path != "auto" && strings.ContainsAny(c.Engine.Path, `/\`) && !hasDriveLetter(c.Engine.Path) {
		expanded, err := expandPath(c.Engine.Path)
		if err != nil {
			return fmt.Errorf("engine.path: %w", err)
		}
		c.Engine.Path = expanded
	}
	c.Engine.ScriptEncoding = strings.ToLower(strings.TrimSpace(c.Engine.ScriptEncoding))
	if c.Engine.ScriptEncoding == "" {
		c.Engine.ScriptEncoding = defaultScriptEncoding
	}
	if c.Engine.SettleDelayMS < 0 {
		c.Engine.SettleDelayMS = 0
	}
	if strings.TrimSpace(c.Engine.TempDir) != "" {
		var err error
		if c.Engine.TempDir, err = expandPath(strings.TrimSpace(c.Engine.TempDir)); err != nil {
			return fmt.Errorf("engine.temp_dir: %w", err)
		}
	}
	return nil
}

func (c *Config) normalizeDebugger() error {
	c.Debugger.Mode = strings.ToLower(strings.TrimSpace(c.Debugger.Mode))
	if c.Debugger.Mode == "" {
		c.Debugger.Mode = defaultDebuggerMode
	}
	command := make([]string, 0, len(c.Debugger.Command))
	for _, part := range c.Debugger.Command {
		if part = strings.TrimSpace(part); part != "" {
			command = append(command, part)
		}
	}
	c.Debugger.Command = command
	if strings.TrimSpace(c.Debugger.Plugin) != "" {
		var err error
		if c.Debugger.Plugin, err = expandPath(strings.TrimSpace(c.Debugger.Plugin)); err != nil {
			return fmt.Errorf("debugger.plugin: %w", err)
		}
	}
	if c.Debugger.Attempts <= 0 {
		c.Debugger.Attempts = defaultDebuggerAttempts
	}
	return nil
}

func (c *Config) normalizePaths() error {
	var err error
	if strings.TrimSpace(c.Paths.StateDir) == "" {
		c.Paths.StateDir = defaultStateDir()
	}
	if c.Paths.StateDir, err = expandPath(c.Paths.StateDir); err != nil {
		return fmt.Errorf("paths.state_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.LogDir) == "" {
		c.Paths.LogDir = defaultLogDir
	}
	if c.Paths.LogDir, err = expandPath(c.Paths.LogDir); err != nil {
		return fmt.Errorf("paths.log_dir: %w", err)
	}
	return nil
}

func (c *Config) normalizeBatch() {
	exts := make([]string, 0, len(c.Batch.Extensions))
	seen := make(map[string]struct{}, len(c.Batch.Extensions))
	for _, ext := range c.Batch.Extensions {
		normalized := strings.ToLower(strings.TrimSpace(ext))
		if normalized == "" {
			continue
		}
		if !strings.HasPrefix(normalized, ".") {
			normalized = "." + normalized
		}
		if _, exists := seen[normalized]; exists {
			continue
		}
		seen[normalized] = struct{}{}
		exts = append(exts, normalized)
	}
	if len(exts) == 0 {
		exts = []string{defaultDrawingExtension}
	}
	c.Batch.Extensions = exts
	c.Batch.MetricsFile = strings.TrimSpace(c.Batch.MetricsFile)
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	switch c.Logging.Format {
	case "", "console":
		c.Logging.Format = "console"
	case "json":
	default:
		c.Logging.Format = "console"
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
	if c.History.RetentionDays < 0 {
		c.History.RetentionDays = 0
	}
}

func hasDriveLetter(path string) bool {
	if len(path) < 2 || path[1] != ':' {
		return false
	}
	c := path[0]
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}
