package cmd

import (
	"errors"
	"io"
	"io/fs"
	"log"
	"path/filepath"

	"github.com/josephlewis42/simshell/core/config"
	"github.com/josephlewis42/simshell/core/logger"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var cfgPath string

func loadConfig() (*config.Configuration, error) {
	configuration, err := config.Load(filepath.Join(cfgPath, config.ConfigurationName))

	if errors.Is(err, fs.ErrNotExist) {
		log.Println("Couldn't load config: did you run init?")
	}

	return configuration, err
}

// openEvents opens the configured event log and the diagnostics logger. The
// returned closer flushes both.
func openEvents(configuration *config.Configuration, stderr io.Writer) (*logger.Recorder, *zap.Logger, func(), error) {
	appLogger, err := logger.NewAppLogger(stderr, configuration.LogLevel)
	if err != nil {
		return nil, nil, nil, err
	}

	eventLog, err := configuration.OpenEventLog()
	if err != nil {
		return nil, nil, nil, err
	}

	closer := func() {
		_ = appLogger.Sync()
		eventLog.Close()
	}
	return logger.NewJSONLinesRecorder(eventLog), appLogger, closer, nil
}

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "simshell",
	Short: "Simulator control shell",
	Long:  `An interactive command console for controlling a running simulation.`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	cobra.CheckErr(rootCmd.Execute())
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgPath, "config", ".", "config directory")
}
