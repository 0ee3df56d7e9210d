package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/satonic/satonic-admin/internal/handlers"
	"github.com/satonic/satonic-admin/internal/logging"
	"github.com/satonic/satonic-admin/internal/notify"
	"github.com/satonic/satonic-admin/internal/store"
)

func init() {
	rootCmd.AddCommand(serveCmd)
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the admin console",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		defer a.Close()

		logger := logging.ModuleLogger(a.provider, "console")
		notifier := notify.New(
			notify.WithClearAfter(a.cfg.Notifications.ClearAfter),
			notify.WithLogger(logging.ModuleLogger(a.provider, "notify")),
		)

		console, err := handlers.NewConsole(handlers.ConsoleOptions{
			Client:    a.client,
			Sessions:  a.sessions,
			Drafts:    store.NewDraftRepository(a.db),
			Notifier:  notifier,
			Formatter: a.format,
			PageSize:  a.cfg.Listing.PageSize,
			Cookie:    a.cfg.Server.SessionCookie,
			Logger:    logger,
		})
		if err != nil {
			return err
		}

		hub := handlers.NewHub(logging.ModuleLogger(a.provider, "ws"))
		go hub.Run(notifier)
		defer hub.Stop()

		srv := &http.Server{
			Addr:              fmt.Sprintf(":%d", a.cfg.Server.Port),
			Handler:           handlers.NewRouter(console, hub, a.cfg.Server.AllowedOrigins),
			ReadHeaderTimeout: 10 * time.Second,
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		errCh := make(chan error, 1)
		go func() {
			logger.Info("console listening", "addr", srv.Addr, "api", a.cfg.API.BaseURL)
			errCh <- srv.ListenAndServe()
		}()

		select {
		case err := <-errCh:
			if !errors.Is(err, http.ErrServerClosed) {
				return err
			}
			return nil
		case <-ctx.Done():
		}

		logger.Info("shutting down console")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	},
}
