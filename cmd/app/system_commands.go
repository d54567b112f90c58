package main

import (
	"context"

	"github.com/urfave/cli/v3"

	"github.com/allisson/exitflow/cmd/app/commands"
	"github.com/allisson/exitflow/internal/app"
	"github.com/allisson/exitflow/internal/config"
)

func getSystemCommands(version string) []*cli.Command {
	return []*cli.Command{
		{
			Name:  "server",
			Usage: "Start the HTTP server, the metrics server and the stage intent worker",
			Action: func(ctx context.Context, cmd *cli.Command) error {
				return commands.RunServer(ctx, version)
			},
		},
		{
			Name:  "migrate",
			Usage: "Run database migrations for every configured tenant, or for DB_CONNECTION_STRING",
			Flags: []cli.Flag{
				&cli.StringSliceFlag{
					Name:    "tenant",
					Aliases: []string{"t"},
					Usage:   "Tenant to migrate (repeatable); defaults to TENANT_IDS",
				},
				&cli.BoolFlag{
					Name:  "direct",
					Value: false,
					Usage: "Migrate the database at DB_CONNECTION_STRING instead of the tenant databases",
				},
			},
			Action: func(ctx context.Context, cmd *cli.Command) error {
				return withContainer(ctx, func(cfg *config.Config, container *app.Container) error {
					if cmd.Bool("direct") {
						return commands.RunMigrations(container.Logger(), cfg.DBDriver, cfg.DBConnectionString)
					}

					tenants := cmd.StringSlice("tenant")
					if len(tenants) == 0 {
						tenants = cfg.Tenants()
					}
					return commands.RunTenantMigrations(
						container.Logger(),
						cfg.DBDriver,
						cfg.TenantDSNTemplate,
						tenants,
					)
				})
			},
		},
	}
}
