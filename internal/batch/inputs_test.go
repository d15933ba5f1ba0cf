package batch

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"
)

func touch(t *testing.T, path string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestExpandInputs(t *testing.T) {
	dir := t.TempDir()
	a := filepath.Join(dir, "a.dwg")
	b := filepath.Join(dir, "b.DWG")
	notes := filepath.Join(dir, "notes.txt")
	nested := filepath.Join(dir, "nested", "c.dwg")
	for _, p := range []string{a, b, notes, nested} {
		touch(t, p)
	}

	got, err := ExpandInputs([]string{dir, a, notes}, []string{"dwg"})
	if err != nil {
		t.Fatalf("ExpandInputs returned error: %v", err)
	}
	want := []string{a, b, notes}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("ExpandInputs = %v, want %v", got, want)
	}
}

func TestExpandInputsGlob(t *testing.T) {
	dir := t.TempDir()
	a := filepath.Join(dir, "a.dwg")
	touch(t, a)
	touch(t, filepath.Join(dir, "a.bak"))

	got, err := ExpandInputs([]string{filepath.Join(dir, "a.*")}, []string{".dwg"})
	if err != nil {
		t.Fatalf("ExpandInputs returned error: %v", err)
	}
	if !reflect.DeepEqual(got, []string{a}) {
		t.Fatalf("unexpected glob expansion %v", got)
	}

	if _, err := ExpandInputs([]string{filepath.Join(dir, "*.dxf")}, nil); err == nil {
		t.Fatal("expected error for pattern without matches")
	}
}

func TestExpandInputsMissingPath(t *testing.T) {
	if _, err := ExpandInputs([]string{filepath.Join(t.TempDir(), "missing.dwg")}, nil); err == nil {
		t.Fatal("expected error for missing input")
	}
}

func TestOutputNameDisambiguates(t *testing.T) {
	used := map[string]int{}
	names := []string{
		outputName("/a/plan.dwg", used),
		outputName("/b/Plan.dwg", used),
		outputName("/c/site.dwg", used),
	}
	want := []string{"plan", "Plan-2", "site"}
	if !reflect.DeepEqual(names, want) {
		t.Fatalf("outputName = %v, want %v", names, want)
	}
}
