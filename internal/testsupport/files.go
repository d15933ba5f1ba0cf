package testsupport

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
)

// drawingHeader is the version magic at the start of a DWG 2013+ file.
var drawingHeader = []byte("AC1027")

// WriteFile creates path (and its parent directories) holding size bytes
// that start with a drawing header. A size <= 0 writes the header alone.
func WriteFile(t testing.TB, path string, size int64) {
	t.Helper()

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir for %s: %v", path, err)
	}
	data := append([]byte(nil), drawingHeader...)
	if pad := size - int64(len(data)); pad > 0 {
		data = append(data, bytes.Repeat([]byte{0x42}, int(pad))...)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}
