package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"acadrun/internal/engine"
)

func newScriptCommand() *cobra.Command {
	var plugin, command, debugPlugin string

	cmd := &cobra.Command{
		Use:         "script",
		Short:       "Print the engine script generated for a plugin command",
		Annotations: map[string]string{"skipConfigLoad": "true"},
		Args:        cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			script, err := engine.BuildScript(plugin, command, strings.TrimSpace(debugPlugin))
			if err != nil {
				return err
			}
			for _, line := range script.Lines {
				fmt.Fprintln(cmd.OutOrStdout(), line)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&plugin, "plugin", "p", "", "Plugin assembly to load")
	cmd.Flags().StringVarP(&command, "command", "C", "", "Plugin command to invoke")
	cmd.Flags().StringVar(&debugPlugin, "debug-plugin", "", "Debug helper assembly loaded before the plugin")
	return cmd
}
