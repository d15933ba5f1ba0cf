package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"acadrun/internal/history"
)

var errHistoryDisabled = errors.New("run history is disabled (history.enabled = false)")

type runJSON struct {
	ID           string          `json:"id"`
	Drawing      string          `json:"drawing"`
	Plugin       string          `json:"plugin"`
	Command      string          `json:"command"`
	Status       string          `json:"status"`
	ExitCode     *int            `json:"exit_code,omitempty"`
	PID          int             `json:"pid,omitempty"`
	DurationMS   int64           `json:"duration_ms"`
	Result       json.RawMessage `json:"result,omitempty"`
	OutputPath   string          `json:"output_path,omitempty"`
	ErrorMessage string          `json:"error,omitempty"`
	StartedAt    time.Time       `json:"started_at"`
	FinishedAt   time.Time       `json:"finished_at,omitzero"`
}

func newHistoryCommand(ctx *commandContext) *cobra.Command {
	historyCmd := &cobra.Command{
		Use:   "history",
		Short: "Inspect recorded engine runs",
	}

	historyCmd.AddCommand(newHistoryListCommand(ctx))
	historyCmd.AddCommand(newHistoryShowCommand(ctx))
	historyCmd.AddCommand(newHistoryPruneCommand(ctx))
	historyCmd.AddCommand(newHistoryClearCommand(ctx))
	historyCmd.AddCommand(newHistoryStatsCommand(ctx))
	return historyCmd
}

// withStore is withHistory for commands that need the store to exist.
func (c *commandContext) withStore(fn func(*history.Store) error) error {
	return c.withHistory(func(store *history.Store) error {
		if store == nil {
			return errHistoryDisabled
		}
		return fn(store)
	})
}

func newHistoryListCommand(ctx *commandContext) *cobra.Command {
	var limit int
	var statusFlags []string
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List recent runs",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			statuses, err := parseStatuses(statusFlags)
			if err != nil {
				return err
			}
			return ctx.withStore(func(store *history.Store) error {
				runs, err := store.List(cmd.Context(), limit, statuses...)
				if err != nil {
					return err
				}
				if jsonOutput {
					out := make([]runJSON, 0, len(runs))
					for _, run := range runs {
						out = append(out, toRunJSON(run))
					}
					return writeJSON(cmd.OutOrStdout(), out)
				}
				w := cmd.OutOrStdout()
				if len(runs) == 0 {
					fmt.Fprintln(w, "No runs recorded")
					return nil
				}
				rows := make([][]string, 0, len(runs))
				for _, run := range runs {
					rows = append(rows, []string{
						shortID(run.ID),
						run.StartedAt.Local().Format("2006-01-02 15:04:05"),
						filepath.Base(run.Drawing),
						run.Command,
						string(run.Status),
						formatExitCode(run.ExitCode),
						formatDuration(run.Duration),
					})
				}
				fmt.Fprintln(w, renderTable(w,
					[]string{"ID", "Started", "Drawing", "Command", "Status", "Exit", "Duration"},
					rows,
					[]columnAlignment{alignLeft, alignLeft, alignLeft, alignLeft, alignLeft, alignRight, alignRight},
				))
				return nil
			})
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "Maximum runs to show (0 for all)")
	cmd.Flags().StringSliceVarP(&statusFlags, "status", "s", nil, "Filter by status (repeatable)")
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Print runs as JSON")
	return cmd
}

func newHistoryShowCommand(ctx *commandContext) *cobra.Command {
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "show <id>",
		Short: "Show one run, including its result",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withStore(func(store *history.Store) error {
				run, err := store.Get(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				if run == nil {
					return fmt.Errorf("run %s not found", args[0])
				}
				if jsonOutput {
					return writeJSON(cmd.OutOrStdout(), toRunJSON(run))
				}
				printRun(cmd, run)
				return nil
			})
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Print the run as JSON")
	return cmd
}

func newHistoryPruneCommand(ctx *commandContext) *cobra.Command {
	var olderThan time.Duration

	cmd := &cobra.Command{
		Use:   "prune",
		Short: "Delete runs older than the retention window",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			age := olderThan
			if age <= 0 {
				if cfg.History.RetentionDays <= 0 {
					return errors.New("no retention configured; pass --older-than")
				}
				age = time.Duration(cfg.History.RetentionDays) * 24 * time.Hour
			}
			return ctx.withStore(func(store *history.Store) error {
				removed, err := store.Prune(cmd.Context(), time.Now().Add(-age))
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Removed %d runs older than %s\n", removed, age)
				return nil
			})
		},
	}

	cmd.Flags().DurationVar(&olderThan, "older-than", 0, "Age cutoff (defaults to history.retention_days)")
	return cmd
}

func newHistoryClearCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Delete every recorded run",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withStore(func(store *history.Store) error {
				removed, err := store.Clear(cmd.Context())
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Removed %d runs\n", removed)
				return nil
			})
		},
	}
}

func newHistoryStatsCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Count runs by status",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withStore(func(store *history.Store) error {
				stats, err := store.Stats(cmd.Context())
				if err != nil {
					return err
				}
				w := cmd.OutOrStdout()
				rows := make([][]string, 0, len(stats))
				total := 0
				for _, status := range history.AllStatuses() {
					rows = append(rows, []string{string(status), strconv.Itoa(stats[status])})
					total += stats[status]
				}
				rows = append(rows, []string{"total", strconv.Itoa(total)})
				fmt.Fprintln(w, renderTable(w, []string{"Status", "Runs"}, rows, []columnAlignment{alignLeft, alignRight}))
				return nil
			})
		},
	}
}

func parseStatuses(values []string) ([]history.Status, error) {
	statuses := make([]history.Status, 0, len(values))
	for _, value := range values {
		status, ok := history.ParseStatus(value)
		if !ok {
			valid := make([]string, 0, len(history.AllStatuses()))
			for _, s := range history.AllStatuses() {
				valid = append(valid, string(s))
			}
			return nil, fmt.Errorf("unknown status %q (valid: %s)", value, strings.Join(valid, ", "))
		}
		statuses = append(statuses, status)
	}
	return statuses, nil
}

func printRun(cmd *cobra.Command, run *history.Run) {
	w := cmd.OutOrStdout()
	fmt.Fprintf(w, "ID:       %s\n", run.ID)
	fmt.Fprintf(w, "Drawing:  %s\n", run.Drawing)
	fmt.Fprintf(w, "Plugin:   %s\n", run.Plugin)
	fmt.Fprintf(w, "Command:  %s\n", run.Command)
	fmt.Fprintf(w, "Status:   %s\n", run.Status)
	fmt.Fprintf(w, "Exit:     %s\n", formatExitCode(run.ExitCode))
	if run.PID > 0 {
		fmt.Fprintf(w, "PID:      %d\n", run.PID)
	}
	fmt.Fprintf(w, "Started:  %s\n", run.StartedAt.Local().Format(time.RFC3339))
	fmt.Fprintf(w, "Duration: %s\n", formatDuration(run.Duration))
	if run.OutputPath != "" {
		fmt.Fprintf(w, "Output:   %s\n", run.OutputPath)
	}
	if run.ErrorMessage != "" {
		fmt.Fprintf(w, "Error:    %s\n", run.ErrorMessage)
	}
	if run.ResultJSON != "" {
		fmt.Fprintln(w, "Result:")
		fmt.Fprintln(w, run.ResultJSON)
	}
}

func toRunJSON(run *history.Run) runJSON {
	out := runJSON{
		ID:           run.ID,
		Drawing:      run.Drawing,
		Plugin:       run.Plugin,
		Command:      run.Command,
		Status:       string(run.Status),
		ExitCode:     run.ExitCode,
		PID:          run.PID,
		DurationMS:   run.Duration.Milliseconds(),
		OutputPath:   run.OutputPath,
		ErrorMessage: run.ErrorMessage,
		StartedAt:    run.StartedAt,
		FinishedAt:   run.FinishedAt,
	}
	if run.ResultJSON != "" && json.Valid([]byte(run.ResultJSON)) {
		out.Result = json.RawMessage(run.ResultJSON)
	}
	return out
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

func formatExitCode(code *int) string {
	if code == nil {
		return "-"
	}
	return strconv.Itoa(*code)
}
