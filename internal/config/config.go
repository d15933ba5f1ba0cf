package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// Engine contains settings for the console CAD engine invocation.
type Engine struct {
	// Path is the console engine executable. "auto" selects the first
	// installed release from the known install locations.
	Path           string `toml:"path"`
	TimeoutSeconds int    `toml:"timeout_seconds"`
	ScriptEncoding string `toml:"script_encoding"`
	ShowWindow     bool   `toml:"show_window"`
	SettleDelayMS  int    `toml:"settle_delay_ms"`
	TempDir        string `toml:"temp_dir"`
}

// Debugger contains settings for attaching a debugger to the spawned engine.
type Debugger struct {
	Mode         string   `toml:"mode"`
	Command      []string `toml:"command"`
	Plugin       string   `toml:"plugin"`
	DelayMS      int      `toml:"delay_ms"`
	Attempts     int      `toml:"attempts"`
	RetryDelayMS int      `toml:"retry_delay_ms"`
	ConfirmMS    int      `toml:"confirm_ms"`
}

// Paths contains directory configuration.
type Paths struct {
	StateDir string `toml:"state_dir"`
	LogDir   string `toml:"log_dir"`
}

// History contains configuration for the run history database.
type History struct {
	Enabled       bool `toml:"enabled"`
	RetentionDays int  `toml:"retention_days"`
}

// Batch contains configuration for multi-drawing runs.
type Batch struct {
	Extensions  []string `toml:"extensions"`
	StageCopies bool     `toml:"stage_copies"`
	MetricsFile string   `toml:"metrics_file"`
}

// Logging contains configuration for log output.
type Logging struct {
	Format string `toml:"format"`
	Level  string `toml:"level"`
}

// Config encapsulates all configuration values for acadrun.
//
// Configuration sections by subsystem:
//   - Engine: console engine executable, timeout, and script encoding
//   - Debugger: optional debugger attach for plugin development
//   - Paths: state and log directories
//   - History: run history database
//   - Batch: multi-drawing processing
//   - Logging: log format and level
type Config struct {
	Engine   Engine   `toml:"engine"`
	Debugger Debugger `toml:"debugger"`
	Paths    Paths    `toml:"paths"`
	History  History  `toml:"history"`
	Batch    Batch    `toml:"batch"`
	Logging  Logging  `toml:"logging"`
}

// DefaultConfigPath returns the absolute path to the default configuration file location.
func DefaultConfigPath() (string, error) {
	return expandPath(defaultConfigPath)
}

// Load locates, parses, and validates a configuration file. The returned config has all
// path fields expanded and normalized.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		decoder := toml.NewDecoder(file)
		if err := decoder.Decode(&cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}

	return &cfg, resolvedPath, exists, nil
}

func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		_, err = os.Stat(expanded)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return expanded, false, nil
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		return expanded, true, nil
	}

	defaultPath, err := expandPath(defaultConfigPath)
	if err != nil {
		return "", false, err
	}

	projectPath, err := filepath.Abs("acadrun.toml")
	if err != nil {
		return "", false, err
	}

	if info, err := os.Stat(defaultPath); err == nil && !info.IsDir() {
		return defaultPath, true, nil
	}
	if info, err := os.Stat(projectPath); err == nil && !info.IsDir() {
		return projectPath, true, nil
	}

	return defaultPath, false, nil
}

// EnsureDirectories creates the state and log directories.
func (c *Config) EnsureDirectories() error {
	for _, dir := range []string{c.Paths.StateDir, c.Paths.LogDir} {
		if strings.TrimSpace(dir) == "" {
			continue
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %q: %w", dir, err)
		}
	}
	if c.Engine.TempDir != "" {
		if err := os.MkdirAll(c.Engine.TempDir, 0o755); err != nil {
			return fmt.Errorf("create engine temp directory %q: %w", c.Engine.TempDir, err)
		}
	}
	return nil
}

// HistoryPath returns the run history database location.
func (c *Config) HistoryPath() string {
	return filepath.Join(c.Paths.StateDir, "history.db")
}

// LogPath returns the log file location.
func (c *Config) LogPath() string {
	return filepath.Join(c.Paths.LogDir, "acadrun.log")
}

// EngineTimeout returns the engine wait bound. Zero means wait indefinitely.
func (c *Config) EngineTimeout() time.Duration {
	return time.Duration(c.Engine.TimeoutSeconds) * time.Second
}

// SettleDelay returns the pause between engine exit and artifact harvesting.
func (c *Config) SettleDelay() time.Duration {
	return time.Duration(c.Engine.SettleDelayMS) * time.Millisecond
}

// DebuggerTimings returns the attach delay, retry delay, and confirm window.
func (c *Config) DebuggerTimings() (delay, retry, confirm time.Duration) {
	return time.Duration(c.Debugger.DelayMS) * time.Millisecond,
		time.Duration(c.Debugger.RetryDelayMS) * time.Millisecond,
		time.Duration(c.Debugger.ConfirmMS) * time.Millisecond
}

func expandPath(pathValue string) (string, error) {
	if pathValue == "" {
		return pathValue, nil
	}
	if strings.HasPrefix(pathValue, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if pathValue == "~" {
			pathValue = home
		} else if len(pathValue) > 1 && (pathValue[1] == '/' || pathValue[1] == '\\') {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	cleaned := filepath.Clean(pathValue)
	absolute, err := filepath.Abs(cleaned)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", cleaned, err)
	}
	return absolute, nil
}

// ExpandPath exposes the repository path expansion rules for other packages.
func ExpandPath(pathValue string) (string, error) {
	return expandPath(pathValue)
}

func defaultStateDir() string {
	if base, ok := os.LookupEnv("XDG_STATE_HOME"); ok && strings.TrimSpace(base) != "" {
		return filepath.Join(base, "acadrun")
	}
	return "~/.local/state/acadrun"
}

// CreateSample writes a sample configuration file to the specified location.
func CreateSample(path string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config directory: %w", err)
		}
	}

	if err := os.WriteFile(path, []byte(sampleConfig), 0o644); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}
