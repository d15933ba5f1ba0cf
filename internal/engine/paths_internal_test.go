package engine

import "testing"

func TestDetectEnginePrefersNewestRelease(t *testing.T) {
	installed := map[string]bool{
		KnownPaths["2014"]: true,
		KnownPaths["2015"]: true,
	}
	release, path, ok := detectEngine(func(p string) bool { return installed[p] })
	if !ok {
		t.Fatal("expected an engine to be detected")
	}
	if release != "2015" || path != KnownPaths["2015"] {
		t.Fatalf("expected 2015 release, got %s %s", release, path)
	}

	if _, _, ok := detectEngine(func(string) bool { return false }); ok {
		t.Fatal("expected no engine when nothing is installed")
	}
}

func TestReleasesNewestFirst(t *testing.T) {
	releases := Releases()
	if len(releases) != 3 || releases[0] != "2016" || releases[2] != "2014" {
		t.Fatalf("unexpected releases %v", releases)
	}
}

func TestLineWriterSplitsAndStripsNUL(t *testing.T) {
	var lines []string
	w := &lineWriter{forward: func(line string) { lines = append(lines, line) }}
	_, _ = w.Write([]byte("C\x00o\x00m\x00mand\r\n\r\npar"))
	_, _ = w.Write([]byte("tial\n"))
	if len(lines) != 2 || lines[0] != "Command" || lines[1] != "partial" {
		t.Fatalf("unexpected lines %q", lines)
	}
}
