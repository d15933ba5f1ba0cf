package engine

import (
	"context"

	"github.com/shirou/gopsutil/v3/process"
)

// processAlive reports whether pid still exists. Lookup failures count as gone.
func processAlive(ctx context.Context, pid int) bool {
	if pid <= 0 {
		return false
	}
	exists, err := process.PidExistsWithContext(ctx, int32(pid))
	return err == nil && exists
}
