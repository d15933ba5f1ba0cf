package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"acadrun/internal/preflight"
)

func newCheckCommand(ctx *commandContext) *cobra.Command {
	var plugin string

	cmd := &cobra.Command{
		Use:   "check",
		Short: "Verify the engine, plugin, and directories are usable",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			results := preflight.RunAll(cmd.Context(), cfg, plugin)
			fmt.Fprintln(out, strings.Join(renderPreflight("Preflight", results, shouldColorize(out)), "\n"))

			if failed := preflight.Failed(results); len(failed) > 0 {
				return fmt.Errorf("%d of %d checks failed", len(failed), len(results))
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&plugin, "plugin", "p", "", "Plugin assembly to verify")
	return cmd
}
