//go:build unix

package debugger

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"syscall"
	"testing"
	"time"
)

func TestCommandAttacherCancelKillsCommand(t *testing.T) {
	pidFile := filepath.Join(t.TempDir(), "attach.pid")
	a := CommandAttacher{
		Command: []string{"sh", "-c", "echo $$ > " + pidFile + "; exec sleep 30"},
		Confirm: 10 * time.Second,
	}

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		for i := 0; i < 200; i++ {
			if data, err := os.ReadFile(pidFile); err == nil && strings.TrimSpace(string(data)) != "" {
				break
			}
			time.Sleep(10 * time.Millisecond)
		}
		cancel()
	}()

	if err := a.Attach(ctx, 1, "engine"); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}

	data, err := os.ReadFile(pidFile)
	if err != nil {
		t.Fatalf("read pid file: %v", err)
	}
	pid, err := strconv.Atoi(strings.TrimSpace(string(data)))
	if err != nil {
		t.Fatalf("parse pid %q: %v", data, err)
	}
	if err := syscall.Kill(pid, 0); !errors.Is(err, syscall.ESRCH) {
		t.Fatalf("attach command %d still running after cancel (kill 0: %v)", pid, err)
	}
}
