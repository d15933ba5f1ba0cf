//go:build !unix && !windows

package engine

import "os/exec"

func configureProcess(*exec.Cmd, bool) {}

func killProcessTree(cmd *exec.Cmd) error {
	if cmd.Process == nil {
		return nil
	}
	return cmd.Process.Kill()
}
