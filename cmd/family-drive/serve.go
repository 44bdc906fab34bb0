package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"family-drive-go/internal/app"
	"family-drive-go/pkg/logger"

	"github.com/spf13/cobra"
)

func newServeCmd(base logger.Logger) *cobra.Command {
	var migrate bool
	var shutdownTimeout time.Duration

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, log, err := loadConfig(base)
			if err != nil {
				return err
			}
			log.Info("app: starting", "env", cfg.Env)

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			application, err := app.New(ctx, cfg, log)
			if err != nil {
				return err
			}

			if migrate {
				applied, err := application.Migrate()
				if err != nil {
					_ = application.Close()
					return err
				}
				log.Info("db: migrations applied", "count", len(applied), "names", applied)
			}

			return serve(ctx, application, shutdownTimeout, log)
		},
	}

	cmd.Flags().BoolVar(&migrate, "migrate", false, "apply pending migrations before serving")
	cmd.Flags().DurationVar(&shutdownTimeout, "shutdown-timeout", 5*time.Second, "graceful shutdown deadline")
	return cmd
}

func serve(ctx context.Context, application *app.App, shutdownTimeout time.Duration, log logger.Logger) error {
	srv := application.HTTPServer()
	log.Info("http: listening", "addr", srv.Addr)

	serverErrCh := make(chan error, 1)

	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErrCh <- err
		}
		close(serverErrCh)
	}()

	var errs []error
	select {
	case <-ctx.Done():
		log.Info("app: shutdown signal received")
	case err := <-serverErrCh:
		if err != nil {
			log.Critical("http: server failed", "addr", srv.Addr, "err", err)
			errs = append(errs, err)
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Error("http: graceful shutdown failed", "err", err)
		errs = append(errs, err)
	}

	if err := application.Close(); err != nil {
		log.Error("app: close failed", "err", err)
		errs = append(errs, err)
	}

	if len(errs) == 0 {
		log.Info("app: stopped")
	}
	return errors.Join(errs...)
}
