package cmd

import (
	"fmt"
	"strings"

	"github.com/josephlewis42/simshell/commands"
	"github.com/josephlewis42/simshell/core/shell"
	"github.com/spf13/cobra"
)

// commandsCmd lists the commands available in the console
var commandsCmd = &cobra.Command{
	Use:   "commands",
	Short: "Show the commands installed in the console.",
	RunE: func(cmd *cobra.Command, args []string) error {
		handler := shell.NewHandler()
		env, err := commands.Install(handler)
		if err != nil {
			return err
		}
		defer env.Close()

		registry := handler.Registry()
		for _, name := range registry.Names() {
			argumentHelp, help, _ := registry.Help(name)
			kind, _ := registry.Kind(name)
			summary, _, _ := strings.Cut(help, "\n")
			fmt.Fprintf(cmd.OutOrStdout(), "%-10s %-12s %-32s %s\n", name, kind, argumentHelp, summary)
		}

		return nil
	},
}

func init() {
	rootCmd.AddCommand(commandsCmd)
}
