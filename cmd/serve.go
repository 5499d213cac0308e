package cmd

import (
	"context"
	"log/slog"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"casebot/internal/bootstrap/logging"
	"casebot/internal/errs"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API with background case revalidation",
	RunE: withApp(func(cmd *cobra.Command, h *handles) error {
		ctx := logging.WithAttrs(cmd.Context(), slog.String("command", cmd.CommandPath()))

		ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		go h.Store.Run(ctx)

		serveErr := make(chan error, 1)
		go func() {
			serveErr <- h.Server.ListenAndServe(ctx)
		}()

		select {
		case <-ctx.Done():
			logging.Info(ctx, "shutdown signal received")
		case err := <-serveErr:
			if err != nil {
				return errs.Wrap(err, "serve http api")
			}
			return nil
		}

		if err := h.Server.Shutdown(context.Background()); err != nil {
			return errs.Wrap(err, "shutdown http api")
		}
		if err := <-serveErr; err != nil {
			return errs.Wrap(err, "serve http api")
		}

		logging.Info(ctx, "server stopped")
		return nil
	}),
}

func init() {
	rootCmd.AddCommand(serveCmd)
}
