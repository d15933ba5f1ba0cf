package debugger

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
	"time"

	"acadrun/internal/config"
)

type countingAttacher struct {
	failures int
	calls    int
	pids     []int
}

func (c *countingAttacher) Attach(_ context.Context, pid int, _ string) error {
	c.calls++
	c.pids = append(c.pids, pid)
	if c.calls <= c.failures {
		return errors.New("not ready")
	}
	return nil
}

func TestParseMode(t *testing.T) {
	tests := map[string]Mode{"": ModeOff, "OFF": ModeOff, " auto ": ModeAuto, "always": ModeAlways}
	for input, want := range tests {
		got, err := ParseMode(input)
		if err != nil || got != want {
			t.Fatalf("ParseMode(%q) = %q, %v; want %q", input, got, err, want)
		}
	}
	if _, err := ParseMode("sometimes"); err == nil {
		t.Fatal("expected error for unknown mode")
	}
}

func TestCommandAttacherExpandsTemplate(t *testing.T) {
	a := CommandAttacher{Command: []string{"dlv", "attach", "{pid}", "--headless", "--log-dest={name}.log"}}
	got := a.Expand(4321, "accoreconsole.exe")
	want := []string{"dlv", "attach", "4321", "--headless", "--log-dest=accoreconsole.exe.log"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("Expand = %q, want %q", got, want)
	}
}

func TestCommandAttacherOutcomes(t *testing.T) {
	ctx := context.Background()
	if err := (CommandAttacher{Command: []string{"sh", "-c", "exit 0"}}).Attach(ctx, 1, "x"); err != nil {
		t.Fatalf("zero exit should succeed: %v", err)
	}
	if err := (CommandAttacher{Command: []string{"sh", "-c", "exit 4"}, Confirm: time.Second}).Attach(ctx, 1, "x"); err == nil {
		t.Fatal("non-zero exit within confirm window should fail")
	}
	if err := (CommandAttacher{Command: []string{"sh", "-c", "sleep 2"}, Confirm: 20 * time.Millisecond}).Attach(ctx, 1, "x"); err != nil {
		t.Fatalf("command still running after confirm window should succeed: %v", err)
	}
	if err := (CommandAttacher{Command: []string{filepath.Join(t.TempDir(), "missing-dlv")}}).Attach(ctx, 1, "x"); err == nil {
		t.Fatal("missing tool should fail")
	}
	if err := (CommandAttacher{}).Attach(ctx, 1, "x"); err == nil {
		t.Fatal("empty command should fail")
	}
}

func TestCommandAttacherSubstitutesPid(t *testing.T) {
	out := filepath.Join(t.TempDir(), "pid.txt")
	a := CommandAttacher{Command: []string{"sh", "-c", "echo {pid} > " + out}}
	if err := a.Attach(context.Background(), 777, "engine"); err != nil {
		t.Fatalf("Attach returned error: %v", err)
	}
	data, err := os.ReadFile(out)
	if err != nil {
		t.Fatalf("read output: %v", err)
	}
	if strings.TrimSpace(string(data)) != "777" {
		t.Fatalf("expected pid 777, got %q", data)
	}
}

func TestRetryingStopsOnSuccess(t *testing.T) {
	inner := &countingAttacher{failures: 2}
	r := Retrying{Attacher: inner, Attempts: 5, Delay: time.Millisecond}
	if err := r.Attach(context.Background(), 10, "engine"); err != nil {
		t.Fatalf("expected success on third attempt: %v", err)
	}
	if inner.calls != 3 {
		t.Fatalf("expected 3 calls, got %d", inner.calls)
	}
}

func TestRetryingGivesUpAfterAttempts(t *testing.T) {
	inner := &countingAttacher{failures: 100}
	r := Retrying{Attacher: inner, Attempts: 5, Delay: time.Millisecond, Backoff: 2}
	err := r.Attach(context.Background(), 10, "engine")
	if err == nil {
		t.Fatal("expected failure after all attempts")
	}
	if inner.calls != 5 {
		t.Fatalf("expected 5 calls, got %d", inner.calls)
	}
}

func TestRetryingHonoursCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	inner := &countingAttacher{failures: 100}
	r := Retrying{Attacher: inner, Attempts: 5, Delay: time.Second}
	if err := r.Attach(ctx, 10, "engine"); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if inner.calls != 1 {
		t.Fatalf("expected a single attempt before cancellation, got %d", inner.calls)
	}
}

func TestHookActiveByMode(t *testing.T) {
	original := beingTraced
	t.Cleanup(func() { beingTraced = original })

	attacher := &countingAttacher{}
	beingTraced = func() bool { return false }
	if (&Hook{Mode: ModeOff, Attacher: attacher}).Active() {
		t.Fatal("off hook must be inactive")
	}
	if !(&Hook{Mode: ModeAlways, Attacher: attacher}).Active() {
		t.Fatal("always hook must be active")
	}
	if (&Hook{Mode: ModeAuto, Attacher: attacher}).Active() {
		t.Fatal("auto hook must be inactive without a tracer")
	}
	beingTraced = func() bool { return true }
	if !(&Hook{Mode: ModeAuto, Attacher: attacher}).Active() {
		t.Fatal("auto hook must be active under a tracer")
	}
	var nilHook *Hook
	if nilHook.Active() {
		t.Fatal("nil hook must be inactive")
	}
}

func TestHookAfterStartSwallowsFailures(t *testing.T) {
	inner := &countingAttacher{failures: 100}
	hook := &Hook{Mode: ModeAlways, Attacher: inner}
	hook.AfterStart(context.Background(), 99, "engine")
	if inner.calls != 1 || inner.pids[0] != 99 {
		t.Fatalf("unexpected attach calls %v", inner.pids)
	}
}

func TestHookAfterStartSkipsWhenInactive(t *testing.T) {
	inner := &countingAttacher{}
	(&Hook{Mode: ModeOff, Attacher: inner}).AfterStart(context.Background(), 1, "engine")
	if inner.calls != 0 {
		t.Fatal("inactive hook must not attach")
	}
}

func TestNewHookFromConfig(t *testing.T) {
	cfg := config.Default()
	cfg.Debugger.Mode = "always"
	cfg.Debugger.Command = []string{"dlv", "attach", "{pid}"}
	cfg.Debugger.DelayMS = 5
	hook, err := NewHookFromConfig(&cfg, nil)
	if err != nil {
		t.Fatalf("NewHookFromConfig returned error: %v", err)
	}
	if hook.Mode != ModeAlways || hook.Delay != 5*time.Millisecond {
		t.Fatalf("unexpected hook %#v", hook)
	}
	retrying, ok := hook.Attacher.(Retrying)
	if !ok || retrying.Attempts != 5 {
		t.Fatalf("expected retrying attacher with 5 attempts, got %#v", hook.Attacher)
	}

	cfg.Debugger.Mode = "bogus"
	if _, err := NewHookFromConfig(&cfg, nil); err == nil {
		t.Fatal("expected error for invalid mode")
	}
}
