package services_test

import (
	"context"
	"testing"

	"acadrun/internal/services"
)

func TestContextHelpers(t *testing.T) {
	ctx := context.Background()
	ctx = services.WithRunID(ctx, "run-1")
	ctx = services.WithDrawing(ctx, "/tmp/a.dwg")
	ctx = services.WithCommand(ctx, "LinesCount")

	if id, ok := services.RunIDFromContext(ctx); !ok || id != "run-1" {
		t.Fatalf("unexpected run id: %v %v", id, ok)
	}
	if drawing, ok := services.DrawingFromContext(ctx); !ok || drawing != "/tmp/a.dwg" {
		t.Fatalf("unexpected drawing: %v %v", drawing, ok)
	}
	if command, ok := services.CommandFromContext(ctx); !ok || command != "LinesCount" {
		t.Fatalf("unexpected command: %v %v", command, ok)
	}
}

func TestBlankValuesPreserveContext(t *testing.T) {
	ctx := context.Background()
	ctx = services.WithRunID(ctx, "")
	ctx = services.WithCommand(ctx, "")
	if _, ok := services.RunIDFromContext(ctx); ok {
		t.Fatal("expected no run id value")
	}
	if _, ok := services.CommandFromContext(ctx); ok {
		t.Fatal("expected no command value")
	}
}
