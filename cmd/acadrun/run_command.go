package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"acadrun/internal/engine"
	"acadrun/internal/fileutil"
	"acadrun/internal/history"
	"acadrun/internal/logging"
	"acadrun/internal/preflight"
	"acadrun/internal/services"
)

// errNoResult reports a run whose plugin wrote no result file.
var errNoResult = errors.New("engine produced no result")

type runOptions struct {
	plugin     string
	command    string
	stdin      bool
	output     string
	timeout    time.Duration
	showWindow bool
	skipChecks bool
}

func newRunCommand(ctx *commandContext) *cobra.Command {
	var opts runOptions

	cmd := &cobra.Command{
		Use:   "run [drawing]",
		Short: "Run a plugin command against one drawing and print its JSON result",
		Args: func(cmd *cobra.Command, args []string) error {
			if opts.stdin {
				return cobra.NoArgs(cmd, args)
			}
			return cobra.ExactArgs(1)(cmd, args)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			drawing := ""
			if len(args) > 0 {
				drawing = args[0]
			}
			return runSingle(cmd, ctx, opts, drawing)
		},
	}

	cmd.Flags().StringVarP(&opts.plugin, "plugin", "p", "", "Plugin assembly to load")
	cmd.Flags().StringVarP(&opts.command, "command", "C", "", "Plugin command to invoke")
	cmd.Flags().BoolVar(&opts.stdin, "stdin", false, "Read the drawing from standard input")
	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "Write the result to a file instead of stdout")
	cmd.Flags().DurationVar(&opts.timeout, "timeout", 0, "Override the configured engine timeout (0 keeps config)")
	cmd.Flags().BoolVar(&opts.showWindow, "show-window", false, "Show the engine console window")
	cmd.Flags().BoolVar(&opts.skipChecks, "skip-checks", false, "Skip preflight checks")
	_ = cmd.MarkFlagRequired("plugin")
	_ = cmd.MarkFlagRequired("command")
	return cmd
}

func runSingle(cmd *cobra.Command, ctx *commandContext, opts runOptions, drawing string) error {
	cfg, err := ctx.ensureConfig()
	if err != nil {
		return err
	}
	if !opts.skipChecks {
		if err := preflight.Err(preflight.RunAll(cmd.Context(), cfg, opts.plugin)); err != nil {
			return err
		}
	}

	var extra []engine.Option
	if opts.timeout > 0 {
		extra = append(extra, engine.WithTimeout(opts.timeout))
	}
	runner, logger, err := ctx.newRunner(cmd, extra...)
	if err != nil {
		return err
	}

	runID := uuid.NewString()
	runCtx := services.WithRunID(cmd.Context(), runID)
	inv := engine.Invocation{
		Drawing:    drawing,
		Plugin:     opts.plugin,
		Command:    opts.command,
		ShowWindow: opts.showWindow || cfg.Engine.ShowWindow,
	}

	started := time.Now()
	var (
		raw    json.RawMessage
		report engine.RunReport
	)
	if opts.stdin {
		var result *json.RawMessage
		result, report, err = engine.ProcessStream[json.RawMessage](runCtx, runner, cmd.InOrStdin(), inv)
		if result != nil {
			raw = *result
		}
		inv.Drawing = "(stdin)"
	} else {
		raw, report, err = engine.ProcessRaw(runCtx, runner, inv)
		if abs, absErr := filepath.Abs(drawing); absErr == nil {
			inv.Drawing = abs
		}
	}

	recordErr := ctx.withHistory(func(store *history.Store) error {
		if store == nil {
			return nil
		}
		pruneExpired(cmd, cfg, store, logger)
		return store.Record(context.WithoutCancel(runCtx), runRecord(runID, inv, report, raw, err, started, opts.output))
	})
	if recordErr != nil {
		logger.Warn("record history failed", logging.Error(recordErr))
	}

	if err != nil {
		return err
	}
	if report.TimedOut {
		fmt.Fprintf(cmd.ErrOrStderr(), "Engine did not finish within %s (pid %d, still running: %s)\n",
			runner.Timeout(), report.PID, yesNo(report.StillRunning))
	}
	if raw == nil {
		return fmt.Errorf("%w for %s", errNoResult, inv.Drawing)
	}
	return emitResult(cmd, logger, raw, opts.output)
}

func emitResult(cmd *cobra.Command, logger *slog.Logger, raw json.RawMessage, output string) error {
	var pretty bytes.Buffer
	if err := json.Indent(&pretty, raw, "", "  "); err != nil {
		return fmt.Errorf("format result: %w", err)
	}
	pretty.WriteByte('\n')

	if output = strings.TrimSpace(output); output == "" {
		_, err := cmd.OutOrStdout().Write(pretty.Bytes())
		return err
	}
	if dir := filepath.Dir(output); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create output directory: %w", err)
		}
	}
	if err := fileutil.WriteFileAtomic(output, pretty.Bytes(), 0o644); err != nil {
		return fmt.Errorf("write result: %w", err)
	}
	logger.Info("result written", logging.String("path", output))
	return nil
}

func runRecord(id string, inv engine.Invocation, report engine.RunReport, raw json.RawMessage, err error, started time.Time, output string) *history.Run {
	run := &history.Run{
		ID:         id,
		Drawing:    inv.Drawing,
		Plugin:     inv.Plugin,
		Command:    inv.Command,
		PID:        report.PID,
		Duration:   time.Since(started),
		ResultJSON: string(raw),
		OutputPath: output,
		StartedAt:  started.UTC(),
		FinishedAt: time.Now().UTC(),
	}
	if report.Exited {
		code := report.ExitCode
		run.ExitCode = &code
	}
	run.Status = services.RunStatus(err, report.TimedOut, raw != nil)
	if err != nil {
		run.ErrorMessage = err.Error()
	}
	return run
}
