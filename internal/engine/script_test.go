package engine_test

import (
	"bytes"
	"reflect"
	"testing"

	"golang.org/x/text/encoding/charmap"

	"acadrun/internal/engine"
)

func TestBuildScriptLines(t *testing.T) {
	tests := []struct {
		name        string
		debugPlugin string
		want        []string
	}{
		{
			name: "plain",
			want: []string{
				"SECURELOAD 0",
				`netload "C:\plugins\Export.dll"`,
				"EXPORTLAYERS",
			},
		},
		{
			name:        "debug plugin precedes plugin",
			debugPlugin: `C:\tools\Attach.dll`,
			want: []string{
				"SECURELOAD 0",
				`netload "C:\tools\Attach.dll"`,
				`netload "C:\plugins\Export.dll"`,
				"EXPORTLAYERS",
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			script, err := engine.BuildScript(`C:\plugins\Export.dll`, "EXPORTLAYERS", tt.debugPlugin)
			if err != nil {
				t.Fatalf("BuildScript returned error: %v", err)
			}
			if !reflect.DeepEqual(script.Lines, tt.want) {
				t.Fatalf("unexpected lines:\n got %q\nwant %q", script.Lines, tt.want)
			}
		})
	}
}

func TestBuildScriptRejectsMissingParts(t *testing.T) {
	if _, err := engine.BuildScript("", "CMD", ""); err == nil {
		t.Fatal("expected error for empty plugin")
	}
	if _, err := engine.BuildScript("plugin.dll", "  ", ""); err == nil {
		t.Fatal("expected error for empty command")
	}
	if _, err := engine.BuildScript("plugin.dll", "A\nB", ""); err == nil {
		t.Fatal("expected error for multi-line command")
	}
}

func TestScriptBytesUsesCRLFAndEncoding(t *testing.T) {
	script, err := engine.BuildScript("p.dll", "ЭКСПОРТ", "")
	if err != nil {
		t.Fatalf("BuildScript returned error: %v", err)
	}
	data, err := script.Bytes(charmap.Windows1251)
	if err != nil {
		t.Fatalf("Bytes returned error: %v", err)
	}
	want, err := charmap.Windows1251.NewEncoder().String("SECURELOAD 0\r\nnetload \"p.dll\"\r\nЭКСПОРТ\r\n")
	if err != nil {
		t.Fatalf("encode expectation: %v", err)
	}
	if !bytes.Equal(data, []byte(want)) {
		t.Fatalf("unexpected bytes %q", data)
	}
	if !bytes.HasSuffix(data, []byte("\r\n")) {
		t.Fatalf("expected trailing CRLF, got %q", data)
	}
}

func TestLookupEncoding(t *testing.T) {
	enc, err := engine.LookupEncoding("")
	if err != nil || enc != engine.DefaultEncoding {
		t.Fatalf("expected default encoding, got %v %v", enc, err)
	}
	if _, err := engine.LookupEncoding("cp1251"); err != nil {
		t.Fatalf("cp1251 should resolve: %v", err)
	}
	if _, err := engine.LookupEncoding("no-such-charset"); err == nil {
		t.Fatal("expected error for unknown encoding")
	}
}

func TestResultPathIsDeterministic(t *testing.T) {
	got := engine.ResultPath("/work/plan.dwg")
	if got != "/work/plan.dwgoutput.json" {
		t.Fatalf("unexpected result path %q", got)
	}
	if engine.ResultPath("/work/plan.dwg") != got {
		t.Fatal("result path must be stable")
	}
}
