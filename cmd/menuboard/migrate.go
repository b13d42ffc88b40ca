package main

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/urfave/cli/v3"

	"github.com/dukerupert/menuboard/internal/config"
	"github.com/dukerupert/menuboard/internal/database"
)

type migrateCmd struct {
	cfg    *config.Config
	status bool
}

func newMigrateCmd(cfg *config.Config) *migrateCmd {
	return &migrateCmd{cfg: cfg}
}

func (cmd *migrateCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:  "migrate",
		Usage: "Apply pending database migrations",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:        "status",
				Usage:       "print the schema version without migrating",
				Destination: &cmd.status,
			},
		},
		Action: cmd.run,
	})
	return app
}

func (cmd *migrateCmd) run(_ context.Context, _ *cli.Command) error {
	if err := setup(cmd.cfg); err != nil {
		return err
	}

	db, err := database.OpenRaw(cmd.cfg.DBPath)
	if err != nil {
		return err
	}
	defer db.Close()

	if !cmd.status {
		if err := database.Migrate(db); err != nil {
			return err
		}
	}
	v, err := database.Version(db)
	if err != nil {
		return err
	}
	slog.Info("schema version", "db", cmd.cfg.DBPath, "version", v)
	fmt.Println(v)
	return nil
}
