package cmd

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gliderlabs/ssh"
	"github.com/josephlewis42/simshell/core"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// serveCmd represents the serve command
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the console to remote operators over SSH.",
	RunE: func(cmd *cobra.Command, args []string) error {
		os.Stdin.Close()
		cmd.SilenceUsage = true

		configuration, err := loadConfig()
		if err != nil {
			return err
		}

		events, appLogger, closeEvents, err := openEvents(configuration, cmd.ErrOrStderr())
		if err != nil {
			return err
		}
		defer closeEvents()

		server, err := core.NewServer(configuration, events, appLogger)
		if err != nil {
			return err
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		group, ctx := errgroup.WithContext(ctx)
		group.Go(func() error {
			if err := server.ListenAndServe(); !errors.Is(err, ssh.ErrServerClosed) {
				return err
			}
			return nil
		})
		group.Go(func() error {
			<-ctx.Done()
			appLogger.Info("terminating")

			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()

			if err := server.Shutdown(shutdownCtx); err != nil {
				appLogger.Warn("server shutdown failed", zap.Error(err))
				return err
			}
			appLogger.Info("server exited")
			return nil
		})

		return group.Wait()
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
}
