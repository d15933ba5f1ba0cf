package main

import (
	"fmt"
	"io"
	"strings"
	"testing"

	"acadrun/internal/preflight"
)

func TestRenderStatusLineNoColor(t *testing.T) {
	got := renderStatusLine("Engine", statusError, "not found", false)
	want := fmt.Sprintf("%s%-*s %s", statusIndent, statusLabelWidth, "Engine:", "[ERROR] not found")
	if got != want {
		t.Fatalf("renderStatusLine mismatch\n got: %q\nwant: %q", got, want)
	}
}

func TestRenderStatusLineWithColor(t *testing.T) {
	got := renderStatusLine("Engine", statusOK, "ready", true)
	if !strings.HasPrefix(got, ansiGreen) {
		t.Fatalf("expected green prefix, got %q", got)
	}
	if !strings.HasSuffix(got, ansiReset) {
		t.Fatalf("expected reset suffix, got %q", got)
	}
}

func TestRenderPreflight(t *testing.T) {
	lines := renderPreflight("Preflight", []preflight.Result{
		{Name: "Engine", Passed: true, Detail: "/opt/accoreconsole"},
		{Name: "Plugin", Detail: "missing"},
	}, false)
	if len(lines) != 4 {
		t.Fatalf("expected header, rule, and two results, got %d lines", len(lines))
	}
	if lines[0] != "== Preflight ==" {
		t.Fatalf("unexpected header %q", lines[0])
	}
	if !strings.Contains(lines[2], "[OK] /opt/accoreconsole") {
		t.Fatalf("expected ok line, got %q", lines[2])
	}
	if !strings.Contains(lines[3], "[ERROR] missing") {
		t.Fatalf("expected error line, got %q", lines[3])
	}
}

func TestShouldColorizeNonFile(t *testing.T) {
	if shouldColorize(io.Discard) {
		t.Fatalf("expected non-file writer to disable color")
	}
}

func TestRenderTablePlainWhenNotTerminal(t *testing.T) {
	out := renderTable(io.Discard, []string{"Release", "Installed"}, [][]string{{"2016", "no"}}, nil)
	if strings.ContainsRune(out, '╭') {
		t.Fatalf("expected ASCII borders off a terminal, got %q", out)
	}
	if !strings.Contains(out, "2016") {
		t.Fatalf("expected row content, got %q", out)
	}
}
