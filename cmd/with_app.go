package cmd

import (
	"context"
	"log/slog"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/fx"

	"casebot/internal/bootstrap"
	"casebot/internal/bootstrap/logging"
	"casebot/internal/errs"
	"casebot/internal/transport/httpapi"
	"casebot/internal/usecase/qa"
)

// handles bundles the constructed application pieces a command may need.
type handles struct {
	App     *bootstrap.App
	Store   *qa.Store
	Service *qa.Service
	Server  *httpapi.Server
}

func withApp(run func(cmd *cobra.Command, h *handles) error) func(cmd *cobra.Command, args []string) error {
	return func(cmd *cobra.Command, args []string) error {
		ctx := logging.WithAttrs(
			cmd.Context(),
			slog.String("command", cmd.CommandPath()),
			slog.String("config_file", cfgFile),
		)

		h := &handles{}
		fxApp := fx.New(
			bootstrap.Module,
			fx.Provide(func() context.Context { return ctx }),
			fx.Provide(
				fx.Annotate(
					func() string { return cfgFile },
					fx.ResultTags(`name:"configFile"`),
				),
			),
			fx.Populate(&h.App, &h.Store, &h.Service, &h.Server),
		)

		startCtx, cancelStart := context.WithTimeout(ctx, 10*time.Second)
		defer cancelStart()
		if err := fxApp.Start(startCtx); err != nil {
			logging.Error(ctx, "bootstrap application failed", slog.Any("err", errs.Loggable(err)))
			return errs.Wrap(err, "start fx application")
		}

		defer func() {
			stopCtx, cancelStop := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancelStop()
			if err := fxApp.Stop(stopCtx); err != nil {
				logging.Error(ctx, "fx application stop failed", slog.Any("err", errs.Loggable(err)))
			}
		}()

		if err := run(cmd, h); err != nil {
			return errs.Wrap(err, "run command")
		}
		return nil
	}
}
