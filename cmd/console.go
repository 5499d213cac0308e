package cmd

import (
	"log/slog"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"casebot/internal/bootstrap/logging"
	"casebot/internal/errs"
	"casebot/internal/usecase/askconsole"
)

var consoleCmd = &cobra.Command{
	Use:   "console",
	Short: "Start the interactive Q&A console",
	RunE: withApp(func(cmd *cobra.Command, h *handles) error {
		ctx := logging.WithAttrs(cmd.Context(), slog.String("command", cmd.CommandPath()))

		model := askconsole.New(ctx, h.Service)
		program := tea.NewProgram(model, tea.WithAltScreen())
		if _, err := program.Run(); err != nil {
			return errs.Wrap(err, "run ask console")
		}
		return nil
	}),
}

func init() {
	rootCmd.AddCommand(consoleCmd)
}
