package main

import (
	"context"
	"fmt"
	"os"
	"time"
	_ "time/tzdata"

	"github.com/urfave/cli/v3"

	"github.com/dukerupert/menuboard/internal/config"
	"github.com/dukerupert/menuboard/internal/logging"
)

var version = "dev"

func main() {
	cfg := config.Default()

	app := &cli.Command{
		Name:    "menuboard",
		Usage:   "Publish cafe menus that follow each item's schedule",
		Version: version,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "db-path",
				Usage:       "path to the SQLite database",
				Sources:     cli.EnvVars("MENUBOARD_DB_PATH"),
				Value:       cfg.DBPath,
				Destination: &cfg.DBPath,
			},
			&cli.StringFlag{
				Name:        "log-level",
				Usage:       "log level (debug, info, warn, error)",
				Sources:     cli.EnvVars("MENUBOARD_LOG_LEVEL"),
				Value:       cfg.LogLevel,
				Destination: &cfg.LogLevel,
			},
			&cli.StringFlag{
				Name:        "log-format",
				Usage:       "log format (text, json)",
				Sources:     cli.EnvVars("MENUBOARD_LOG_FORMAT"),
				Value:       cfg.LogFormat,
				Destination: &cfg.LogFormat,
			},
		},
	}

	app = newServeCmd(&cfg).Register(app)
	app = newMigrateCmd(&cfg).Register(app)
	app = newSeedCmd(&cfg).Register(app)
	app = newBackupCmd(&cfg).Register(app)

	if err := app.Run(context.Background(), os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// setup validates cfg and installs the logger every command uses.
func setup(cfg *config.Config) error {
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	logging.Setup(cfg.LogLevel, cfg.LogFormat)
	return nil
}

// every runs fn each interval until ctx is cancelled.
func every(ctx context.Context, interval time.Duration, fn func(context.Context)) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			fn(ctx)
		}
	}
}
