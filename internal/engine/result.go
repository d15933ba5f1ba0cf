package engine

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"acadrun/internal/logging"
	"acadrun/internal/services"
)

// ResultPath returns where the plugin writes its result for drawing.
func ResultPath(drawing string) string {
	return drawing + OutputFileSuffix
}

// Process runs inv and decodes the plugin's JSON result into T.
//
// A missing result file is logged and yields a nil result with no error.
// The result file is removed once read, including when decoding fails.
func Process[T any](ctx context.Context, r *Runner, inv Invocation) (*T, RunReport, error) {
	raw, report, err := ProcessRaw(ctx, r, inv)
	if err != nil || raw == nil {
		return nil, report, err
	}
	return decodeResult[T](raw, report)
}

// ProcessRaw runs inv and returns the plugin's result as raw JSON.
func ProcessRaw(ctx context.Context, r *Runner, inv Invocation) (json.RawMessage, RunReport, error) {
	drawing, err := resolveDrawing(inv.Drawing)
	if err != nil {
		return nil, RunReport{}, err
	}
	inv.Drawing = drawing
	report, err := r.RunCommand(ctx, inv)
	if err != nil {
		return nil, report, err
	}
	ctx = services.WithDrawing(ctx, drawing)
	ctx = services.WithCommand(ctx, inv.Command)
	raw, err := harvestResult(logging.WithContext(ctx, r.logger), ResultPath(drawing))
	return raw, report, err
}

// ProcessStream stages src as a temporary drawing and runs Process against it.
func ProcessStream[T any](ctx context.Context, r *Runner, src io.Reader, inv Invocation) (*T, RunReport, error) {
	var (
		raw    json.RawMessage
		report RunReport
	)
	err := r.withStagedDrawing(src, func(drawing string) error {
		inv.Drawing = drawing
		var runErr error
		raw, report, runErr = ProcessRaw(ctx, r, inv)
		return runErr
	})
	if err != nil || raw == nil {
		return nil, report, err
	}
	return decodeResult[T](raw, report)
}

func decodeResult[T any](raw json.RawMessage, report RunReport) (*T, RunReport, error) {
	var out T
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, report, services.Wrap(services.ErrValidation, component, "decode result", "", err)
	}
	return &out, report, nil
}

// harvestResult reads and removes the result file. A nil slice with a nil
// error means the plugin wrote nothing.
func harvestResult(logger *slog.Logger, path string) (json.RawMessage, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		logger.Error("result file not found", logging.String("path", path))
		return nil, nil
	}
	if err != nil {
		return nil, services.Wrap(services.ErrExternalTool, component, "read result", path, err)
	}
	if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		logger.Warn("remove result file failed", logging.String("path", path), logging.Error(err))
	}
	if !json.Valid(data) {
		return nil, services.Wrap(services.ErrValidation, component, "decode result", fmt.Sprintf("%s is not valid JSON", path), nil)
	}
	logger.Debug("result harvested", logging.String("path", path), logging.Int("bytes", len(data)))
	return json.RawMessage(data), nil
}
