package main

import (
	"context"
	"fmt"

	"github.com/urfave/cli/v3"

	"github.com/denis-papin/doka.one/cmd/doka/commands"
	"github.com/denis-papin/doka.one/internal/app"
	"github.com/denis-papin/doka.one/internal/config"
	customerUsecase "github.com/denis-papin/doka.one/internal/customer/usecase"
)

func getCustomerCommands() []*cli.Command {
	return []*cli.Command{
		{
			Name:  "create-customer",
			Usage: "Provision a new customer with its encryption key and admin user",
			Flags: []cli.Flag{
				&cli.StringFlag{
					Name:     "code",
					Required: true,
					Usage:    "Customer code (lowercase letters, digits, hyphens)",
				},
				&cli.StringFlag{
					Name:     "name",
					Required: true,
					Usage:    "Customer display name",
				},
				&cli.StringFlag{
					Name:     "contact-email",
					Required: true,
					Usage:    "Customer contact email",
				},
				&cli.StringFlag{
					Name:     "admin-name",
					Required: true,
					Usage:    "Name of the first admin user",
				},
				&cli.StringFlag{
					Name:     "admin-email",
					Required: true,
					Usage:    "Email of the first admin user",
				},
				&cli.StringFlag{
					Name:     "admin-password",
					Required: true,
					Usage:    "Password of the first admin user",
				},
				&cli.StringFlag{
					Name:    "format",
					Aliases: []string{"f"},
					Value:   "text",
					Usage:   "Output format: 'text' or 'json'",
				},
			},
			Action: func(ctx context.Context, cmd *cli.Command) error {
				cfg := config.Load()
				container := app.NewContainer(cfg)
				defer func() { _ = container.Shutdown(ctx) }()

				useCase, err := container.CustomerUseCase()
				if err != nil {
					return fmt.Errorf("failed to initialize customer use case: %w", err)
				}

				return commands.RunCreateCustomer(
					ctx,
					useCase,
					commands.DefaultIO().Writer,
					customerUsecase.CreateCustomerInput{
						Code:          cmd.String("code"),
						Name:          cmd.String("name"),
						ContactEmail:  cmd.String("contact-email"),
						AdminName:     cmd.String("admin-name"),
						AdminEmail:    cmd.String("admin-email"),
						AdminPassword: cmd.String("admin-password"),
					},
					cmd.String("format"),
				)
			},
		},
		{
			Name:  "delete-customer",
			Usage: "Delete a customer: revoke its key and purge every tenant-scoped table",
			Flags: []cli.Flag{
				&cli.StringFlag{
					Name:     "code",
					Required: true,
					Usage:    "Customer code",
				},
			},
			Action: func(ctx context.Context, cmd *cli.Command) error {
				cfg := config.Load()
				container := app.NewContainer(cfg)
				defer func() { _ = container.Shutdown(ctx) }()

				useCase, err := container.CustomerUseCase()
				if err != nil {
					return fmt.Errorf("failed to initialize customer use case: %w", err)
				}

				return commands.RunDeleteCustomer(
					ctx,
					useCase,
					commands.DefaultIO().Writer,
					cmd.String("code"),
				)
			},
		},
		{
			Name:  "admin-token",
			Usage: "Issue an admin-generated session token for a customer",
			Flags: []cli.Flag{
				&cli.StringFlag{
					Name:     "customer-code",
					Required: true,
					Usage:    "Customer code the token is scoped to",
				},
				&cli.StringFlag{
					Name:  "actor",
					Value: "cli",
					Usage: "Actor recorded in the audit trail",
				},
				&cli.IntFlag{
					Name:  "ttl-seconds",
					Value: 0,
					Usage: "Token lifetime in seconds (0 uses the configured default)",
				},
				&cli.StringFlag{
					Name:    "format",
					Aliases: []string{"f"},
					Value:   "text",
					Usage:   "Output format: 'text' or 'json'",
				},
			},
			Action: func(ctx context.Context, cmd *cli.Command) error {
				cfg := config.Load()
				container := app.NewContainer(cfg)
				defer func() { _ = container.Shutdown(ctx) }()

				issuer, err := container.TokenIssuer()
				if err != nil {
					return fmt.Errorf("failed to initialize token issuer: %w", err)
				}

				return commands.RunIssueAdminToken(
					ctx,
					issuer,
					commands.DefaultIO().Writer,
					cmd.String("customer-code"),
					cmd.String("actor"),
					int(cmd.Int("ttl-seconds")),
					cmd.String("format"),
				)
			},
		},
	}
}
