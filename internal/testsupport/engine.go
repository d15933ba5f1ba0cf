package testsupport

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// StubEngine describes the behavior of a fake console engine. The stub
// understands the "/i <drawing> /s <script>" argument form.
type StubEngine struct {
	// Result is written to "<drawing>output.json". Empty writes nothing.
	Result string
	// ExitCode is returned after the result is written.
	ExitCode int
	// Sleep delays the exit, expressed as a sleep(1) argument.
	Sleep string
	// Linger keeps the engine alive after the result is written, expressed as
	// a sleep(1) argument.
	Linger string
	// CaptureScript copies the received script to this path.
	CaptureScript string
	// CaptureDir records the working directory to this path.
	CaptureDir string
}

// WriteStubEngine writes an executable shell script emulating the engine and
// returns its path.
func WriteStubEngine(t testing.TB, dir string, stub StubEngine) string {
	t.Helper()

	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatalf("mkdir stub dir: %v", err)
	}

	var b strings.Builder
	b.WriteString("#!/bin/sh\n")
	b.WriteString("drawing=\"\"\nscript=\"\"\n")
	b.WriteString("while [ $# -gt 0 ]; do\n")
	b.WriteString("  case \"$1\" in\n")
	b.WriteString("    /i) drawing=\"$2\"; shift 2 ;;\n")
	b.WriteString("    /s) script=\"$2\"; shift 2 ;;\n")
	b.WriteString("    *) shift ;;\n")
	b.WriteString("  esac\n")
	b.WriteString("done\n")
	if stub.CaptureScript != "" {
		fmt.Fprintf(&b, "cp \"$script\" %s\n", shellQuote(stub.CaptureScript))
	}
	if stub.CaptureDir != "" {
		fmt.Fprintf(&b, "pwd > %s\n", shellQuote(stub.CaptureDir))
	}
	if stub.Sleep != "" {
		fmt.Fprintf(&b, "sleep %s\n", stub.Sleep)
	}
	if stub.Result != "" {
		fmt.Fprintf(&b, "printf '%%s' %s > \"${drawing}output.json\"\n", shellQuote(stub.Result))
	}
	if stub.Linger != "" {
		fmt.Fprintf(&b, "sleep %s\n", stub.Linger)
	}
	fmt.Fprintf(&b, "exit %d\n", stub.ExitCode)

	path := filepath.Join(dir, "accoreconsole")
	if err := os.WriteFile(path, []byte(b.String()), 0o755); err != nil {
		t.Fatalf("write stub engine: %v", err)
	}
	return path
}

func shellQuote(value string) string {
	return "'" + strings.ReplaceAll(value, "'", `'\''`) + "'"
}
