package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"acadrun/internal/engine"
)

func newEnginesCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "engines",
		Short: "List known engine install locations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()

			rows := make([][]string, 0, len(engine.KnownPaths))
			for _, release := range engine.Releases() {
				path := engine.KnownPaths[release]
				_, statErr := os.Stat(path)
				rows = append(rows, []string{release, path, yesNo(statErr == nil)})
			}
			fmt.Fprintln(out, renderTable(out, []string{"Release", "Path", "Installed"}, rows, nil))

			fmt.Fprintf(out, "Configured: %s\n", cfg.Engine.Path)
			resolved, err := engine.ResolveBinary(cfg.Engine.Path)
			if err != nil {
				fmt.Fprintf(out, "Resolved:   unavailable (%s)\n", strings.TrimSpace(err.Error()))
				return nil
			}
			fmt.Fprintf(out, "Resolved:   %s\n", resolved)
			return nil
		},
	}
}
