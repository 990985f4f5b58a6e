package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/jonathan/voice-fingerprint/internal/jobs"
	"github.com/jonathan/voice-fingerprint/internal/logging"
	"github.com/jonathan/voice-fingerprint/internal/server"
	"github.com/jonathan/voice-fingerprint/internal/voice"
)

func newServeCmd(root *rootOptions) *cobra.Command {
	var port int
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP API server",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			a, err := openApp(ctx, root, cmd.ErrOrStderr(), true)
			if err != nil {
				return err
			}
			defer func() { _ = a.Close() }()

			if port != 0 {
				a.cfg.Port = port
			}

			queue := jobs.NewQueue(jobs.Options{
				Workers:     a.cfg.QueueWorkers,
				Size:        a.cfg.QueueSize,
				MaxAttempts: a.cfg.RetryAttempts,
				Backoff:     a.cfg.RetryBaseDelay.Std(),
				Retryable:   voice.IsRetryable,
			}, logging.Component(a.logger, "jobs"), a.metrics)
			queue.Start(ctx)

			srv := server.New(server.Config{
				Port:              a.cfg.Port,
				RequestsPerMinute: a.cfg.RequestsPerMinute,
			}, a.voice, queue, a.metrics, logging.Component(a.logger, "server"))

			runErr := srv.Run(ctx)

			stopCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			defer cancel()
			if err := queue.Stop(stopCtx); err != nil {
				a.logger.WithError(err).Warn("Job queue did not drain before shutdown")
			}
			return runErr
		},
	}
	cmd.Flags().IntVarP(&port, "port", "p", 0, "Port to listen on (overrides config and PORT)")
	return cmd
}
