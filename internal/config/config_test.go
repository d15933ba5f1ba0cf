package config_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/pelletier/go-toml/v2"

	"acadrun/internal/config"
)

func TestLoadDefaultConfigExpandsPaths(t *testing.T) {
	tempHome := t.TempDir()
	t.Setenv("HOME", tempHome)
	t.Setenv("XDG_STATE_HOME", "")
	t.Setenv("ACADRUN_ENGINE", "")

	cfg, resolved, exists, err := config.Load("")
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if resolved == "" {
		t.Fatal("expected resolved path")
	}
	if exists {
		t.Fatal("expected config file to be absent in temp HOME")
	}

	wantState := filepath.Join(tempHome, ".local", "state", "acadrun")
	if cfg.Paths.StateDir != wantState {
		t.Fatalf("unexpected state dir: got %q want %q", cfg.Paths.StateDir, wantState)
	}
	if cfg.HistoryPath() != filepath.Join(wantState, "history.db") {
		t.Fatalf("unexpected history path: %q", cfg.HistoryPath())
	}
	if cfg.Engine.Path != "accoreconsole.exe" {
		t.Fatalf("expected bare engine name to stay unexpanded, got %q", cfg.Engine.Path)
	}
	if cfg.EngineTimeout() != 30*time.Second {
		t.Fatalf("unexpected engine timeout: %v", cfg.EngineTimeout())
	}
	if cfg.SettleDelay() != 10*time.Millisecond {
		t.Fatalf("unexpected settle delay: %v", cfg.SettleDelay())
	}
	if cfg.Engine.ScriptEncoding != "windows-1251" {
		t.Fatalf("unexpected script encoding: %q", cfg.Engine.ScriptEncoding)
	}
	if cfg.Debugger.Mode != "off" {
		t.Fatalf("expected debugger off by default, got %q", cfg.Debugger.Mode)
	}
	if !cfg.History.Enabled {
		t.Fatal("expected history enabled by default")
	}
	if len(cfg.Batch.Extensions) != 1 || cfg.Batch.Extensions[0] != ".dwg" {
		t.Fatalf("unexpected batch extensions: %v", cfg.Batch.Extensions)
	}
	if err := cfg.EnsureDirectories(); err != nil {
		t.Fatalf("EnsureDirectories failed: %v", err)
	}
	for _, dir := range []string{cfg.Paths.StateDir, cfg.Paths.LogDir} {
		info, err := os.Stat(dir)
		if err != nil {
			t.Fatalf("expected directory %q to exist: %v", dir, err)
		}
		if !info.IsDir() {
			t.Fatalf("expected %q to be directory", dir)
		}
	}
}

func TestLoadCustomPath(t *testing.T) {
	t.Setenv("ACADRUN_ENGINE", "")
	tempDir := t.TempDir()
	configPath := filepath.Join(tempDir, "acadrun.toml")

	type payload struct {
		Engine struct {
			Path           string `toml:"path"`
			TimeoutSeconds int    `toml:"timeout_seconds"`
			ScriptEncoding string `toml:"script_encoding"`
		} `toml:"engine"`
		Batch struct {
			Extensions []string `toml:"extensions"`
		} `toml:"batch"`
		Logging struct {
			Format string `toml:"format"`
		} `toml:"logging"`
	}
	custom := payload{}
	custom.Engine.Path = filepath.Join(tempDir, "bin", "accoreconsole")
	custom.Engine.TimeoutSeconds = 0
	custom.Engine.ScriptEncoding = " UTF-8 "
	custom.Batch.Extensions = []string{"DWG", ".dxf", ".dwg", " "}
	custom.Logging.Format = "yaml"
	data, err := toml.Marshal(custom)
	if err != nil {
		t.Fatalf("marshal custom config: %v", err)
	}
	if err := os.WriteFile(configPath, data, 0o644); err != nil {
		t.Fatalf("write custom config: %v", err)
	}

	cfg, resolved, exists, err := config.Load(configPath)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if !exists {
		t.Fatal("expected exists to be true")
	}
	if resolved != configPath {
		t.Fatalf("unexpected resolved path: got %q want %q", resolved, configPath)
	}
	if cfg.Engine.Path != custom.Engine.Path {
		t.Fatalf("expected engine path from file, got %q", cfg.Engine.Path)
	}
	if cfg.EngineTimeout() != 0 {
		t.Fatalf("expected unbounded timeout, got %v", cfg.EngineTimeout())
	}
	if cfg.Engine.ScriptEncoding != "utf-8" {
		t.Fatalf("expected normalized encoding, got %q", cfg.Engine.ScriptEncoding)
	}
	want := []string{".dwg", ".dxf"}
	if strings.Join(cfg.Batch.Extensions, ",") != strings.Join(want, ",") {
		t.Fatalf("unexpected extensions: %v", cfg.Batch.Extensions)
	}
	if cfg.Logging.Format != "console" {
		t.Fatalf("expected unknown log format to fall back to console, got %q", cfg.Logging.Format)
	}
}

func TestEnvVarOverridesEnginePath(t *testing.T) {
	t.Setenv("ACADRUN_ENGINE", "custom-engine")
	cfg, _, _, err := config.Load(filepath.Join(t.TempDir(), "missing.toml"))
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.Engine.Path != "custom-engine" {
		t.Fatalf("expected engine from env, got %q", cfg.Engine.Path)
	}
}

func TestDriveLetterEnginePathKeptVerbatim(t *testing.T) {
	t.Setenv("ACADRUN_ENGINE", `C:\Program Files\Autodesk\AutoCAD 2016\accoreconsole.exe`)
	cfg, _, _, err := config.Load(filepath.Join(t.TempDir(), "missing.toml"))
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.Engine.Path != `C:\Program Files\Autodesk\AutoCAD 2016\accoreconsole.exe` {
		t.Fatalf("expected drive-letter path untouched, got %q", cfg.Engine.Path)
	}
}

func TestCreateSample(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sample.toml")
	if err := config.CreateSample(path); err != nil {
		t.Fatalf("CreateSample failed: %v", err)
	}

	contents, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read sample: %v", err)
	}
	if !strings.Contains(string(contents), "accoreconsole.exe") {
		t.Fatalf("sample config missing engine path: %s", contents)
	}

	cfg := config.Default()
	if err := toml.Unmarshal(contents, &cfg); err != nil {
		t.Fatalf("unmarshal sample: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("sample config should validate: %v", err)
	}
	if len(cfg.Debugger.Command) == 0 || cfg.Debugger.Command[0] != "dlv" {
		t.Fatalf("expected sample debugger command, got %v", cfg.Debugger.Command)
	}
}

func TestValidateDetectsInvalidValues(t *testing.T) {
	cfg := config.Default()
	cfg.Engine.TimeoutSeconds = -1
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for negative timeout")
	}

	cfg = config.Default()
	cfg.Engine.Path = ""
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for empty engine path")
	}

	cfg = config.Default()
	cfg.Engine.ScriptEncoding = "klingon-42"
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for unknown encoding")
	}

	cfg = config.Default()
	cfg.Debugger.Mode = "sometimes"
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for unknown debugger mode")
	}

	cfg = config.Default()
	cfg.Debugger.Mode = "always"
	cfg.Debugger.Command = nil
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error when debugger enabled without command")
	}

	cfg = config.Default()
	cfg.Debugger.Mode = "auto"
	cfg.Debugger.Command = []string{"dlv", "attach", "{pid}"}
	cfg.Debugger.RetryDelayMS = -5
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for negative retry delay")
	}
}
