package main

import (
	"context"

	"github.com/urfave/cli/v3"

	"github.com/denis-papin/doka.one/cmd/doka/commands"
	cryptoService "github.com/denis-papin/doka.one/internal/crypto/service"
)

func getKeyCommands() []*cli.Command {
	return []*cli.Command{
		{
			Name:  "create-master-key",
			Usage: "Generate a new master key file for envelope encryption",
			Flags: []cli.Flag{
				&cli.StringFlag{
					Name:    "output",
					Aliases: []string{"o"},
					Value:   "keys/master.key",
					Usage:   "Path of the key file to write",
				},
				&cli.StringFlag{
					Name:  "kms-provider",
					Value: "",
					Usage: "KMS provider for wrapping the key (localsecrets, gcpkms, awskms, azurekeyvault, hashivault)",
				},
				&cli.StringFlag{
					Name:  "kms-key-uri",
					Value: "",
					Usage: "KMS key URI (e.g., base64key://, gcpkms://projects/.../cryptoKeys/...)",
				},
				&cli.BoolFlag{
					Name:  "force",
					Value: false,
					Usage: "Overwrite an existing key file",
				},
			},
			Action: func(ctx context.Context, cmd *cli.Command) error {
				return commands.RunCreateMasterKey(
					ctx,
					cryptoService.NewKMSService(),
					commands.DefaultIO().Writer,
					cmd.String("output"),
					cmd.String("kms-provider"),
					cmd.String("kms-key-uri"),
					cmd.Bool("force"),
				)
			},
		},
	}
}
