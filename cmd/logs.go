package cmd

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	"github.com/josephlewis42/simshell/core/config"
	"github.com/josephlewis42/simshell/core/ttylog"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"
)

var idleTimeLimit time.Duration

var logsCmd = &cobra.Command{
	Use:     "logs",
	Aliases: []string{"log"},
	Short:   "Explore the recorded remote sessions.",
}

var listCommand = &cobra.Command{
	Use:   "list",
	Short: "List recorded sessions.",
	Args:  cobra.ExactArgs(0),
	RunE: func(cmd *cobra.Command, args []string) error {
		cmd.SilenceUsage = true
		configuration, err := loadConfig()
		if err != nil {
			return err
		}

		entries, err := afero.ReadDir(configuration.Fs(), configuration.SSH.SessionDir)
		if err != nil {
			return err
		}
		for _, entry := range entries {
			ext := filepath.Ext(entry.Name())
			if ext != "."+ttylog.AsciicastFileExt {
				continue
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s  %s\n",
				entry.ModTime().Format(time.RFC3339),
				strings.TrimSuffix(entry.Name(), ext))
		}
		return nil
	},
}

// playCommand replays a session in real time
var playCommand = &cobra.Command{
	Use:   "play SESSION_ID",
	Short: "Replay a recorded session in the terminal.",
	Long:  `Plays a recorded session back to the current terminal.`,
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cmd.SilenceUsage = true
		return replaySession(args[0], func(source ttylog.LogSource) error {
			sink := ttylog.NewClientOutput(cmd.OutOrStdout())
			sink = ttylog.NewRealTimePlayback(idleTimeLimit, sink)
			return ttylog.Replay(source, sink)
		})
	},
}

// catCommand prints a session's output without pauses
var catCommand = &cobra.Command{
	Use:   "cat SESSION_ID",
	Short: "Print full output of a recorded session.",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cmd.SilenceUsage = true
		return replaySession(args[0], func(source ttylog.LogSource) error {
			return ttylog.Replay(source, ttylog.NewClientOutput(cmd.OutOrStdout()))
		})
	},
}

func replaySession(sessionID string, replay func(source ttylog.LogSource) error) error {
	configuration, err := loadConfig()
	if err != nil {
		return err
	}

	fd, err := openSession(configuration, sessionID)
	if err != nil {
		return err
	}
	defer fd.Close()

	return replay(ttylog.NewAsciicastLogSource(fd))
}

func openSession(configuration *config.Configuration, sessionID string) (io.ReadCloser, error) {
	return configuration.OpenSessionLog(strings.TrimSuffix(sessionID, "."+ttylog.AsciicastFileExt))
}

func init() {
	rootCmd.AddCommand(logsCmd)
	logsCmd.AddCommand(listCommand)
	logsCmd.AddCommand(playCommand)
	logsCmd.AddCommand(catCommand)

	// cat doesn't allow idle time
	playCommand.Flags().DurationVarP(&idleTimeLimit, "idle-time-limit", "i", 3*time.Second, "Maximum time output can be idle. (e.g. 3s, 2m, 100ms)")
}
