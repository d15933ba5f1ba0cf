package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"acadrun/internal/batch"
	"acadrun/internal/history"
	"acadrun/internal/preflight"
)

type batchOptions struct {
	plugin     string
	command    string
	outputDir  string
	noStage    bool
	showWindow bool
	skipChecks bool
	jsonOutput bool
}

type batchItemJSON struct {
	RunID      string `json:"run_id"`
	Drawing    string `json:"drawing"`
	Status     string `json:"status"`
	OutputPath string `json:"output_path,omitempty"`
	ExitCode   int    `json:"exit_code"`
	DurationMS int64  `json:"duration_ms"`
	Error      string `json:"error,omitempty"`
}

type batchSummaryJSON struct {
	Items      []batchItemJSON `json:"items"`
	Counts     map[string]int  `json:"counts"`
	DurationMS int64           `json:"duration_ms"`
}

func newBatchCommand(ctx *commandContext) *cobra.Command {
	var opts batchOptions

	cmd := &cobra.Command{
		Use:   "batch <drawing|dir|glob>...",
		Short: "Run a plugin command against many drawings, one engine per drawing",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBatch(cmd, ctx, opts, args)
		},
	}

	cmd.Flags().StringVarP(&opts.plugin, "plugin", "p", "", "Plugin assembly to load")
	cmd.Flags().StringVarP(&opts.command, "command", "C", "", "Plugin command to invoke")
	cmd.Flags().StringVarP(&opts.outputDir, "output-dir", "o", ".", "Directory for per-drawing result files")
	cmd.Flags().BoolVar(&opts.noStage, "no-stage", false, "Run against source drawings instead of private copies")
	cmd.Flags().BoolVar(&opts.showWindow, "show-window", false, "Show the engine console window")
	cmd.Flags().BoolVar(&opts.skipChecks, "skip-checks", false, "Skip preflight checks")
	cmd.Flags().BoolVar(&opts.jsonOutput, "json", false, "Print the summary as JSON")
	_ = cmd.MarkFlagRequired("plugin")
	_ = cmd.MarkFlagRequired("command")
	return cmd
}

func runBatch(cmd *cobra.Command, ctx *commandContext, opts batchOptions, patterns []string) error {
	cfg, err := ctx.ensureConfig()
	if err != nil {
		return err
	}
	inputs, err := batch.ExpandInputs(patterns, cfg.Batch.Extensions)
	if err != nil {
		return err
	}
	if len(inputs) == 0 {
		return fmt.Errorf("no drawings matched %s", strings.Join(patterns, " "))
	}
	if !opts.skipChecks {
		if err := preflight.Err(preflight.RunAll(cmd.Context(), cfg, opts.plugin)); err != nil {
			return err
		}
	}

	runner, logger, err := ctx.newRunner(cmd)
	if err != nil {
		return err
	}

	var summary *batch.Summary
	runErr := ctx.withHistory(func(store *history.Store) error {
		procOpts := []batch.Option{
			batch.WithLogger(logger),
			batch.WithWorkDir(stageDir(cfg.Engine.TempDir)),
		}
		if store != nil {
			pruneExpired(cmd, cfg, store, logger)
			procOpts = append(procOpts, batch.WithRecorder(store))
		}
		if cfg.Batch.MetricsFile != "" {
			procOpts = append(procOpts, batch.WithMetrics(batch.NewMetrics(), cfg.Batch.MetricsFile))
		}
		processor, err := batch.NewProcessor(runner, procOpts...)
		if err != nil {
			return err
		}
		summary, err = processor.Run(cmd.Context(), batch.Request{
			Inputs:     inputs,
			Plugin:     opts.plugin,
			Command:    opts.command,
			OutputDir:  opts.outputDir,
			Stage:      cfg.Batch.StageCopies && !opts.noStage,
			ShowWindow: opts.showWindow || cfg.Engine.ShowWindow,
		})
		return err
	})
	if summary == nil {
		return runErr
	}

	if opts.jsonOutput {
		if err := writeJSON(cmd.OutOrStdout(), summaryJSON(summary)); err != nil {
			return err
		}
	} else {
		printBatchSummary(cmd, summary)
	}

	if runErr != nil {
		return runErr
	}
	if failed := len(summary.Items) - summary.Succeeded(); failed > 0 {
		return fmt.Errorf("%d of %d drawings did not produce a result", failed, len(summary.Items))
	}
	return nil
}

func printBatchSummary(cmd *cobra.Command, summary *batch.Summary) {
	out := cmd.OutOrStdout()
	rows := make([][]string, 0, len(summary.Items))
	for _, item := range summary.Items {
		detail := item.OutputPath
		if item.Error != "" {
			detail = item.Error
		}
		rows = append(rows, []string{
			filepath.Base(item.Drawing),
			string(item.Status),
			formatDuration(item.Duration),
			detail,
		})
	}
	fmt.Fprintln(out, renderTable(out, []string{"Drawing", "Status", "Duration", "Result"}, rows,
		[]columnAlignment{alignLeft, alignLeft, alignRight, alignLeft}))
	fmt.Fprintf(out, "%d of %d drawings processed in %s\n",
		summary.Succeeded(), len(summary.Items), formatDuration(summary.Duration))
}

func summaryJSON(summary *batch.Summary) batchSummaryJSON {
	out := batchSummaryJSON{
		Items:      make([]batchItemJSON, 0, len(summary.Items)),
		Counts:     make(map[string]int, len(summary.Counts)),
		DurationMS: summary.Duration.Milliseconds(),
	}
	for status, n := range summary.Counts {
		out.Counts[string(status)] = n
	}
	for _, item := range summary.Items {
		out.Items = append(out.Items, batchItemJSON{
			RunID:      item.RunID,
			Drawing:    item.Drawing,
			Status:     string(item.Status),
			OutputPath: item.OutputPath,
			ExitCode:   item.ExitCode,
			DurationMS: item.Duration.Milliseconds(),
			Error:      item.Error,
		})
	}
	return out
}

func stageDir(tempDir string) string {
	if tempDir == "" {
		tempDir = os.TempDir()
	}
	return filepath.Join(tempDir, "acadrun-stage")
}
