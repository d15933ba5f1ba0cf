//go:build !unix

package preflight

import "os"

func checkAccess(path string) error {
	probe, err := os.CreateTemp(path, ".acadrun-access-*")
	if err != nil {
		return err
	}
	name := probe.Name()
	_ = probe.Close()
	return os.Remove(name)
}
