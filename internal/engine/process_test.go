package engine_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"acadrun/internal/config"
	"acadrun/internal/engine"
	"acadrun/internal/logging"
	"acadrun/internal/services"
	"acadrun/internal/testsupport"
)

type layerCount struct {
	Layers int    `json:"layers"`
	Name   string `json:"name"`
}

func newStubRunner(t *testing.T, stub testsupport.StubEngine) (*engine.Runner, *config.Config) {
	t.Helper()
	cfg := testsupport.NewConfig(t, testsupport.WithStubEngine(stub))
	runner, err := engine.NewFromConfig(cfg, logging.NewNop())
	if err != nil {
		t.Fatalf("NewFromConfig returned error: %v", err)
	}
	return runner, cfg
}

func TestProcessDecodesAndRemovesResult(t *testing.T) {
	runner, _ := newStubRunner(t, testsupport.StubEngine{Result: `{"layers":4,"name":"plan"}`})
	drawing := writeDrawing(t)

	result, report, err := engine.Process[layerCount](context.Background(), runner, engine.Invocation{
		Drawing: drawing,
		Plugin:  "Export.dll",
		Command: "COUNTLAYERS",
	})
	if err != nil {
		t.Fatalf("Process returned error: %v", err)
	}
	if result == nil || result.Layers != 4 || result.Name != "plan" {
		t.Fatalf("unexpected result %#v", result)
	}
	if !report.Exited || report.ExitCode != 0 {
		t.Fatalf("unexpected report %#v", report)
	}
	if _, err := os.Stat(engine.ResultPath(drawing)); !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("expected result file to be removed, stat err=%v", err)
	}
	if _, err := os.Stat(report.ScriptPath); !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("expected script file to be removed, stat err=%v", err)
	}
}

func TestProcessMissingResultReturnsNil(t *testing.T) {
	runner, _ := newStubRunner(t, testsupport.StubEngine{})
	drawing := writeDrawing(t)

	result, report, err := engine.Process[layerCount](context.Background(), runner, engine.Invocation{
		Drawing: drawing,
		Plugin:  "Export.dll",
		Command: "COUNTLAYERS",
	})
	if err != nil {
		t.Fatalf("missing result should not be an error: %v", err)
	}
	if result != nil {
		t.Fatalf("expected nil result, got %#v", result)
	}
	if !report.Exited {
		t.Fatalf("expected engine to have exited, got %#v", report)
	}
}

func TestProcessInvalidResultIsValidationError(t *testing.T) {
	runner, _ := newStubRunner(t, testsupport.StubEngine{Result: `{"layers":"many"}`})
	drawing := writeDrawing(t)

	_, _, err := engine.Process[layerCount](context.Background(), runner, engine.Invocation{
		Drawing: drawing,
		Plugin:  "Export.dll",
		Command: "COUNTLAYERS",
	})
	if !errors.Is(err, services.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if _, err := os.Stat(engine.ResultPath(drawing)); !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("expected result file to be removed even when decoding fails, stat err=%v", err)
	}
}

func TestProcessRawRejectsNonJSON(t *testing.T) {
	runner, _ := newStubRunner(t, testsupport.StubEngine{Result: "not json"})
	drawing := writeDrawing(t)

	_, _, err := engine.ProcessRaw(context.Background(), runner, engine.Invocation{Drawing: drawing, Plugin: "p.dll", Command: "C"})
	if !errors.Is(err, services.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestRunCommandStubEngineReceivesEncodedScript(t *testing.T) {
	capture := filepath.Join(t.TempDir(), "captured.scr")
	workdir := filepath.Join(t.TempDir(), "pwd.txt")
	runner, _ := newStubRunner(t, testsupport.StubEngine{CaptureScript: capture, CaptureDir: workdir, ExitCode: 2})
	drawing := writeDrawing(t)

	report, err := runner.RunCommand(context.Background(), engine.Invocation{Drawing: drawing, Plugin: "p.dll", Command: "ЭКСПОРТ"})
	if err != nil {
		t.Fatalf("RunCommand returned error: %v", err)
	}
	if report.ExitCode != 2 {
		t.Fatalf("expected exit code 2, got %d", report.ExitCode)
	}

	got, err := os.ReadFile(capture)
	if err != nil {
		t.Fatalf("read captured script: %v", err)
	}
	script, _ := engine.BuildScript("p.dll", "ЭКСПОРТ", "")
	want, _ := script.Bytes(engine.DefaultEncoding)
	if string(got) != string(want) {
		t.Fatalf("engine received %q, want %q", got, want)
	}

	dir, err := os.ReadFile(workdir)
	if err != nil {
		t.Fatalf("read captured workdir: %v", err)
	}
	wantDir, _ := filepath.EvalSymlinks(filepath.Dir(drawing))
	gotDir, _ := filepath.EvalSymlinks(strings.TrimSpace(string(dir)))
	if gotDir != wantDir {
		t.Fatalf("engine ran in %s, want %s", gotDir, wantDir)
	}
}

func TestProcessStreamStagesDrawing(t *testing.T) {
	runner, cfg := newStubRunner(t, testsupport.StubEngine{Result: `{"layers":1}`})

	result, _, err := engine.ProcessStream[layerCount](context.Background(), runner, strings.NewReader("AC1027 drawing bytes"), engine.Invocation{
		Plugin:  "Export.dll",
		Command: "COUNTLAYERS",
	})
	if err != nil {
		t.Fatalf("ProcessStream returned error: %v", err)
	}
	if result == nil || result.Layers != 1 {
		t.Fatalf("unexpected result %#v", result)
	}
	entries, err := os.ReadDir(cfg.Engine.TempDir)
	if err != nil {
		t.Fatalf("read temp dir: %v", err)
	}
	if len(entries) != 0 {
		t.Fatalf("expected staged drawing and script to be removed, found %d entries", len(entries))
	}
}

func TestNewFromConfigRejectsMissingEngine(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	if _, err := engine.NewFromConfig(cfg, nil); !errors.Is(err, services.ErrConfiguration) {
		t.Fatalf("expected configuration error, got %v", err)
	}
}
