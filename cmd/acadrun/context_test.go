package main

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/spf13/cobra"

	"acadrun/internal/engine"
	"acadrun/internal/history"
	"acadrun/internal/logging"
	"acadrun/internal/testsupport"
)

func TestPruneExpiredIgnoresCanceledCommand(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	cfg.History.RetentionDays = 30
	store := testsupport.MustOpenHistory(t, cfg)
	ctx := context.Background()

	old := &history.Run{Drawing: "/drawings/old.dwg", StartedAt: time.Now().AddDate(0, 0, -60)}
	fresh := &history.Run{Drawing: "/drawings/new.dwg"}
	for _, run := range []*history.Run{old, fresh} {
		if err := store.Record(ctx, run); err != nil {
			t.Fatalf("Record failed: %v", err)
		}
	}

	canceled, cancel := context.WithCancel(ctx)
	cancel()
	cmd := &cobra.Command{}
	cmd.SetContext(canceled)

	pruneExpired(cmd, cfg, store, logging.NewNop())

	runs, err := store.List(ctx, 0)
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(runs) != 1 || runs[0].ID != fresh.ID {
		t.Fatalf("expected only the recent run to remain, got %d runs", len(runs))
	}
}

func TestRunRecordKeepsLateResult(t *testing.T) {
	inv := engine.Invocation{Drawing: "/drawings/plan.dwg", Plugin: "Export.dll", Command: "EXPORT"}
	started := time.Now().Add(-2 * time.Second)

	late := runRecord("late", inv, engine.RunReport{TimedOut: true}, json.RawMessage(`{"ok":true}`), nil, started, "")
	if late.Status != history.StatusCompleted {
		t.Fatalf("expected completed for a late result, got %s", late.Status)
	}

	missing := runRecord("missing", inv, engine.RunReport{TimedOut: true}, nil, nil, started, "")
	if missing.Status != history.StatusTimedOut {
		t.Fatalf("expected timed_out without a result, got %s", missing.Status)
	}
}
