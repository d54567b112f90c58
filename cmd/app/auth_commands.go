package main

import (
	"context"

	"github.com/urfave/cli/v3"

	"github.com/allisson/exitflow/cmd/app/commands"
	"github.com/allisson/exitflow/internal/app"
	"github.com/allisson/exitflow/internal/config"
)

func getAuthCommands() []*cli.Command {
	return []*cli.Command{
		{
			Name:  "issue-token",
			Usage: "Issue a signed actor token for operators and tests",
			Flags: []cli.Flag{
				tenantFlag(),
				&cli.StringFlag{
					Name:     "user-id",
					Aliases:  []string{"u"},
					Required: true,
					Usage:    "User ID (UUID)",
				},
				&cli.StringFlag{
					Name:     "role",
					Aliases:  []string{"r"},
					Required: true,
					Usage:    "Role, e.g. employee, manager, hr_manager, finance_manager",
				},
				&cli.StringFlag{
					Name:  "employee-id",
					Usage: "Employee record of the user (UUID)",
				},
				&cli.StringFlag{
					Name:  "name",
					Usage: "Display name recorded in approvals and history",
				},
				&cli.StringFlag{
					Name:  "department",
					Usage: "Department of the user",
				},
				&cli.StringSliceFlag{
					Name:  "grant",
					Usage: "Extra permission on top of the role (repeatable)",
				},
				&cli.DurationFlag{
					Name:  "ttl",
					Usage: "Token lifetime; defaults to JWT_TOKEN_EXPIRATION_SECONDS",
				},
				formatFlag(),
			},
			Action: func(ctx context.Context, cmd *cli.Command) error {
				return withContainer(ctx, func(cfg *config.Config, container *app.Container) error {
					tokenService, err := container.TokenService()
					if err != nil {
						return err
					}

					ttl := cmd.Duration("ttl")
					if ttl == 0 {
						ttl = cfg.JWTTokenExpiration
					}

					return commands.RunIssueToken(
						tokenService,
						commands.Stdout(),
						commands.IssueTokenInput{
							TenantID:   cmd.String("tenant"),
							UserID:     cmd.String("user-id"),
							Role:       cmd.String("role"),
							EmployeeID: cmd.String("employee-id"),
							Name:       cmd.String("name"),
							Department: cmd.String("department"),
							Grants:     cmd.StringSlice("grant"),
							TTL:        ttl,
						},
						cmd.String("format"),
					)
				})
			},
		},
	}
}
