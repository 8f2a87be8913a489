package cmd

import (
	"fmt"

	"github.com/josephlewis42/simshell/core/logger"
	"github.com/spf13/cobra"
	"sigs.k8s.io/yaml"
)

var eventsCmd = &cobra.Command{
	Use:   "events",
	Short: "Explore the console event log.",
}

type eventReport interface {
	Update(le *logger.LogEntry)
}

func printEventReport(cmd *cobra.Command, report eventReport) error {
	cmd.SilenceUsage = true

	config, err := loadConfig()
	if err != nil {
		return err
	}

	fd, err := config.ReadEventLog()
	if err != nil {
		return err
	}
	defer fd.Close()

	if err := logger.ReadJSONLinesLog(fd, report.Update); err != nil {
		return err
	}

	out, err := yaml.Marshal(report)
	if err != nil {
		return err
	}

	fmt.Fprintln(cmd.OutOrStdout(), string(out))
	return nil
}

var reportCommand = &cobra.Command{
	Use:   "report",
	Short: "Show a report of events.",
	RunE: func(cmd *cobra.Command, args []string) error {
		return printEventReport(cmd, &logger.Report{})
	},
}

var bugsCommand = &cobra.Command{
	Use:   "bugs",
	Short: "Show failures and panics that may be command bugs.",
	RunE: func(cmd *cobra.Command, args []string) error {
		return printEventReport(cmd, logger.NewBugReport())
	},
}

func init() {
	rootCmd.AddCommand(eventsCmd)
	eventsCmd.AddCommand(reportCommand)
	eventsCmd.AddCommand(bugsCommand)
}
