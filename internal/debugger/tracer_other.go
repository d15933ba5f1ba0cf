//go:build !linux

package debugger

func tracerAttached() bool {
	return false
}
