package cmd

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/spf13/cobra"

	"casebot/internal/bootstrap/logging"
	"casebot/internal/errs"
)

var askCmd = &cobra.Command{
	Use:   "ask [question]",
	Short: "Answer a single question and exit",
	Args:  cobra.MinimumNArgs(1),
	RunE: withApp(func(cmd *cobra.Command, h *handles) error {
		ctx := logging.WithAttrs(cmd.Context(), slog.String("command", cmd.CommandPath()))

		question := strings.Join(cmd.Flags().Args(), " ")
		answer := h.Service.Answer(ctx, question)

		if _, err := fmt.Fprintln(cmd.OutOrStdout(), answer); err != nil {
			return errs.Wrap(err, "write answer output")
		}
		return nil
	}),
}

func init() {
	rootCmd.AddCommand(askCmd)
}
