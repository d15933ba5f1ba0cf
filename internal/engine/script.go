package engine

import (
	"errors"
	"fmt"
	"strings"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/htmlindex"
)

// OutputFileSuffix is appended to the drawing path to locate the result file.
const OutputFileSuffix = "output.json"

const (
	secureLoadOff = "SECURELOAD 0"
	lineEnding    = "\r\n"
)

// DefaultEncoding is the code page the engine reads scripts in.
var DefaultEncoding encoding.Encoding = charmap.Windows1251

// Script is an ordered list of engine command lines.
type Script struct {
	Lines []string
}

// BuildScript assembles the command lines for one run. The debug plugin line
// is emitted before the main plugin when debugPlugin is set.
func BuildScript(plugin, command, debugPlugin string) (Script, error) {
	plugin = strings.TrimSpace(plugin)
	command = strings.TrimSpace(command)
	if plugin == "" {
		return Script{}, errors.New("plugin path required")
	}
	if command == "" {
		return Script{}, errors.New("command name required")
	}
	if strings.ContainsAny(command, "\r\n") {
		return Script{}, fmt.Errorf("command %q must be a single line", command)
	}

	lines := make([]string, 0, 4)
	lines = append(lines, secureLoadOff)
	if debugPlugin = strings.TrimSpace(debugPlugin); debugPlugin != "" {
		lines = append(lines, netload(debugPlugin))
	}
	lines = append(lines, netload(plugin), command)
	return Script{Lines: lines}, nil
}

func netload(path string) string {
	return `netload "` + path + `"`
}

// String renders the script with CRLF terminated lines.
func (s Script) String() string {
	var b strings.Builder
	for _, line := range s.Lines {
		b.WriteString(line)
		b.WriteString(lineEnding)
	}
	return b.String()
}

// Bytes renders the script in the given encoding. A nil encoding keeps UTF-8.
func (s Script) Bytes(enc encoding.Encoding) ([]byte, error) {
	text := s.String()
	if enc == nil {
		return []byte(text), nil
	}
	out, err := enc.NewEncoder().Bytes([]byte(text))
	if err != nil {
		return nil, fmt.Errorf("encode script: %w", err)
	}
	return out, nil
}

// LookupEncoding resolves an encoding label such as "windows-1251".
// An empty label yields DefaultEncoding.
func LookupEncoding(name string) (encoding.Encoding, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return DefaultEncoding, nil
	}
	enc, err := htmlindex.Get(name)
	if err != nil {
		return nil, fmt.Errorf("unknown script encoding %q: %w", name, err)
	}
	return enc, nil
}
