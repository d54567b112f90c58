package main

import (
	"context"

	"github.com/urfave/cli/v3"

	"github.com/allisson/exitflow/cmd/app/commands"
	"github.com/allisson/exitflow/internal/app"
	"github.com/allisson/exitflow/internal/config"
)

func getOffboardingCommands() []*cli.Command {
	return []*cli.Command{
		{
			Name:  "process-intents",
			Usage: "Replay pending stage intents once for every configured tenant",
			Flags: []cli.Flag{
				formatFlag(),
			},
			Action: func(ctx context.Context, cmd *cli.Command) error {
				return withContainer(ctx, func(cfg *config.Config, container *app.Container) error {
					worker, err := container.IntentWorker()
					if err != nil {
						return err
					}

					return commands.RunProcessIntents(
						ctx,
						worker,
						container.Logger(),
						commands.Stdout(),
						cfg.Tenants(),
						cmd.String("format"),
					)
				})
			},
		},
		{
			Name:  "retry-closure",
			Usage: "Re-run the identity migration of a closed request that left the employee active",
			Flags: []cli.Flag{
				tenantFlag(),
				&cli.StringFlag{
					Name:     "id",
					Aliases:  []string{"i"},
					Required: true,
					Usage:    "Offboarding request ID (UUID)",
				},
				formatFlag(),
			},
			Action: func(ctx context.Context, cmd *cli.Command) error {
				return withContainer(ctx, func(_ *config.Config, container *app.Container) error {
					useCase, err := container.OffboardingUseCase()
					if err != nil {
						return err
					}

					return commands.RunRetryClosure(
						ctx,
						useCase,
						container.Logger(),
						commands.Stdout(),
						cmd.String("tenant"),
						cmd.String("id"),
						cmd.String("format"),
					)
				})
			},
		},
	}
}
