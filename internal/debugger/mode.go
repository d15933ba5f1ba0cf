package debugger

import (
	"fmt"
	"strings"
)

// Mode selects when the debugger hook runs.
type Mode string

const (
	ModeOff Mode = "off"
	// ModeAuto attaches only when acadrun itself runs under a debugger.
	ModeAuto   Mode = "auto"
	ModeAlways Mode = "always"
)

// ParseMode converts a configuration value to a Mode. Empty means off.
func ParseMode(value string) (Mode, error) {
	switch Mode(strings.ToLower(strings.TrimSpace(value))) {
	case "", ModeOff:
		return ModeOff, nil
	case ModeAuto:
		return ModeAuto, nil
	case ModeAlways:
		return ModeAlways, nil
	}
	return "", fmt.Errorf("unknown debugger mode %q (want off, auto, or always)", value)
}

// beingTraced reports whether the current process has a tracer attached.
var beingTraced = tracerAttached
