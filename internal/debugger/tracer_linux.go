//go:build linux

package debugger

import (
	"bufio"
	"os"
	"strings"
)

func tracerAttached() bool {
	file, err := os.Open("/proc/self/status")
	if err != nil {
		return false
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := scanner.Text()
		if value, ok := strings.CutPrefix(line, "TracerPid:"); ok {
			value = strings.TrimSpace(value)
			return value != "" && value != "0"
		}
	}
	return false
}
