package main

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/urfave/cli/v3"

	"github.com/dukerupert/menuboard/internal/config"
	"github.com/dukerupert/menuboard/internal/database"
	"github.com/dukerupert/menuboard/internal/seed"
)

type seedCmd struct {
	cfg  *config.Config
	file string
}

func newSeedCmd(cfg *config.Config) *seedCmd {
	return &seedCmd{cfg: cfg}
}

func (cmd *seedCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:      "seed",
		Usage:     "Load a menu from a YAML file (the bundled demo cafe by default)",
		UsageText: "menuboard seed [--file menu.yaml]",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "file",
				Aliases:     []string{"f"},
				Usage:       "seed file; omit to load the demo cafe",
				Destination: &cmd.file,
			},
		},
		Action: cmd.run,
	})
	return app
}

func (cmd *seedCmd) run(_ context.Context, _ *cli.Command) error {
	if err := setup(cmd.cfg); err != nil {
		return err
	}

	var (
		f   *seed.File
		err error
	)
	if cmd.file != "" {
		f, err = seed.Load(cmd.file)
	} else {
		f, err = seed.Parse(seed.Demo)
	}
	if err != nil {
		return err
	}

	db, err := database.Open(cmd.cfg.DBPath)
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer db.Close()

	res, err := seed.Apply(db, f)
	if err != nil {
		return fmt.Errorf("apply seed: %w", err)
	}
	slog.Info("seeded menu", "business", res.BusinessSlug, "categories", res.Categories, "items", res.Items)
	fmt.Printf("Seeded /api/menus/%s (owner %s)\n", res.BusinessSlug, f.Owner.Email)
	return nil
}
