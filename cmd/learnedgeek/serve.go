package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/learnedgeek/learnedgeek"
	"github.com/learnedgeek/learnedgeek/views"
)

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the web server",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := learnedgeek.LoadConfig()
			if err != nil {
				return err
			}
			logger := learnedgeek.NewLogger(os.Stderr, cfg.LogLevel, cfg.LogFormat)

			app := learnedgeek.New(cfg, views.New(cfg), logger)
			defer app.Close()
			if err := app.Init(); err != nil {
				logger.Error().Err(err).Msg("startup failed")
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			errCh := make(chan error, 1)
			go func() { errCh <- app.Start() }()

			select {
			case err := <-errCh:
				return err
			case <-ctx.Done():
			}

			logger.Info().Msg("shutting down")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), app.Config.ShutdownTimeout)
			defer cancel()
			if err := app.Shutdown(shutdownCtx); err != nil {
				logger.Error().Err(err).Msg("shutdown")
				return err
			}
			return <-errCh
		},
	}
}
