package cmd

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/abiosoft/readline"
	"github.com/josephlewis42/simshell/core"
	"github.com/josephlewis42/simshell/core/config"
	"github.com/josephlewis42/simshell/core/shell"
	"github.com/spf13/cobra"
)

var (
	consoleLines      []string
	consolePlayground bool
)

// consoleCmd runs the console on the local terminal
var consoleCmd = &cobra.Command{
	Use:   "console",
	Short: "Run the command console on this terminal.",
	Long: `Run the command console on this terminal.

Lines given with -c are executed in order and the console exits at the first
failure. Without -c, lines are read from stdin until exit, quit or end of
input.`,
	Args: cobra.ExactArgs(0),
	RunE: func(cmd *cobra.Command, args []string) error {
		cmd.SilenceUsage = true

		var configuration *config.Configuration
		var err error
		if consolePlayground {
			var dir string
			dir, err = os.MkdirTemp("", "playground")
			if err != nil {
				return err
			}
			defer os.RemoveAll(dir)

			configuration, err = playgroundConfig(cmd, dir)
		} else {
			configuration, err = loadConfig()
		}
		if err != nil {
			return err
		}

		events, appLogger, closeEvents, err := openEvents(configuration, cmd.ErrOrStderr())
		if err != nil {
			return err
		}
		defer closeEvents()

		table, err := core.LoadSymbols(configuration)
		if err != nil {
			return err
		}

		isTerminal := readline.IsTerminal(int(os.Stdout.Fd()))
		console, err := core.NewConsole(configuration, core.ConsoleOptions{
			Events:       events.NewSession(),
			Logger:       appLogger,
			Symbols:      table,
			WindowOutput: cmd.OutOrStdout(),
			IsTerminal:   isTerminal,
		})
		if err != nil {
			return err
		}
		defer console.Close()

		if len(consoleLines) > 0 {
			for _, line := range consoleLines {
				if status := console.ExecuteLine(line, cmd.OutOrStdout(), cmd.ErrOrStderr()); status != shell.StatusOK {
					return fmt.Errorf("%q exited with status %d", line, status)
				}
			}
			return nil
		}

		return console.Loop(shell.LoopConfig{
			Prompt:      console.Prompt(),
			HistoryFile: configuration.HistoryPath(),
			Stdout:      cmd.OutOrStdout(),
			Stderr:      cmd.ErrOrStderr(),
		})
	},
}

// playgroundConfig initializes a throwaway configuration in dir.
func playgroundConfig(cmd *cobra.Command, dir string) (*config.Configuration, error) {
	playgroundLogger := log.New(cmd.ErrOrStderr(), "[playground] ", 0)
	cfg, err := config.Initialize(dir, playgroundLogger)
	if err != nil {
		return nil, err
	}

	playgroundLogger.Printf("Output is written to: file://%s\n", filepath.Join(dir, cfg.OutputDir))
	playgroundLogger.Printf("See events with: tail -f %s\n", filepath.Join(dir, cfg.EventLog))
	playgroundLogger.Println(strings.Repeat("=", 80))
	return cfg, nil
}

func init() {
	rootCmd.AddCommand(consoleCmd)

	consoleCmd.Flags().StringArrayVarP(&consoleLines, "command", "c", nil, "Command line to run, may be repeated.")
	consoleCmd.Flags().BoolVar(&consolePlayground, "playground", false, "Use a temporary configuration that's removed on exit.")
}
