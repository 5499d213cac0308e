package cmd

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"casebot/internal/bootstrap/logging"
	"casebot/internal/errs"
)

var refreshCmd = &cobra.Command{
	Use:   "refresh",
	Short: "Re-scrape case sources and update the cache",
	RunE: withApp(func(cmd *cobra.Command, h *handles) error {
		ctx := logging.WithAttrs(cmd.Context(), slog.String("command", cmd.CommandPath()))
		logging.Info(ctx, "start manual refresh")

		count, err := h.Store.Refresh(ctx)
		if err != nil {
			logging.Error(ctx, "refresh failed", slog.Any("err", errs.Loggable(err)))
			return errs.Wrap(err, "refresh cases")
		}

		if _, err := fmt.Fprintf(cmd.OutOrStdout(), "refreshed %d cases\n", count); err != nil {
			return errs.Wrap(err, "write refresh output")
		}
		return nil
	}),
}

func init() {
	rootCmd.AddCommand(refreshCmd)
}
