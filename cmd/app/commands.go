package main

import (
	"context"

	"github.com/urfave/cli/v3"

	"github.com/allisson/exitflow/internal/app"
	"github.com/allisson/exitflow/internal/config"
)

func getCommands(version string) []*cli.Command {
	cmds := []*cli.Command{}
	cmds = append(cmds, getSystemCommands(version)...)
	cmds = append(cmds, getOffboardingCommands()...)
	cmds = append(cmds, getAuthCommands()...)
	return cmds
}

// withContainer loads configuration, builds the container and releases it once fn returns.
func withContainer(ctx context.Context, fn func(cfg *config.Config, container *app.Container) error) error {
	cfg := config.Load()
	container := app.NewContainer(cfg)
	defer func() { _ = container.Shutdown(ctx) }()

	return fn(cfg, container)
}

func formatFlag() cli.Flag {
	return &cli.StringFlag{
		Name:    "format",
		Aliases: []string{"f"},
		Value:   "text",
		Usage:   "Output format: 'text' or 'json'",
	}
}

func tenantFlag() cli.Flag {
	return &cli.StringFlag{
		Name:     "tenant",
		Aliases:  []string{"t"},
		Required: true,
		Usage:    "Tenant id",
	}
}
