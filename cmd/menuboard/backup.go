package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/urfave/cli/v3"

	"github.com/dukerupert/menuboard/internal/backup"
	"github.com/dukerupert/menuboard/internal/config"
	"github.com/dukerupert/menuboard/internal/database"
	"github.com/dukerupert/menuboard/internal/media"
)

type backupCmd struct {
	cfg        *config.Config
	passphrase string
	key        string
	dst        string
}

func newBackupCmd(cfg *config.Config) *backupCmd {
	return &backupCmd{cfg: cfg}
}

func (cmd *backupCmd) Register(app *cli.Command) *cli.Command {
	cfg := cmd.cfg
	storageFlags := func() []cli.Flag {
		return []cli.Flag{
			&cli.StringFlag{Name: "s3-endpoint", Sources: cli.EnvVars("MENUBOARD_S3_ENDPOINT"), Destination: &cfg.Media.Endpoint},
			&cli.StringFlag{Name: "s3-bucket", Sources: cli.EnvVars("MENUBOARD_S3_BUCKET"), Destination: &cfg.Media.Bucket},
			&cli.StringFlag{Name: "s3-region", Sources: cli.EnvVars("MENUBOARD_S3_REGION"), Value: cfg.Media.Region, Destination: &cfg.Media.Region},
			&cli.StringFlag{Name: "s3-access-key", Sources: cli.EnvVars("MENUBOARD_S3_ACCESS_KEY"), Destination: &cfg.Media.AccessKey},
			&cli.StringFlag{Name: "s3-secret-key", Sources: cli.EnvVars("MENUBOARD_S3_SECRET_KEY"), Destination: &cfg.Media.SecretKey},
			&cli.StringFlag{
				Name:        "passphrase",
				Usage:       "archive encryption passphrase",
				Sources:     cli.EnvVars("MENUBOARD_BACKUP_PASSPHRASE"),
				Required:    true,
				Destination: &cmd.passphrase,
			},
		}
	}

	app.Commands = append(app.Commands,
		&cli.Command{
			Name:   "backup",
			Usage:  "Upload an encrypted snapshot of the database to S3",
			Flags:  storageFlags(),
			Action: cmd.runBackup,
		},
		&cli.Command{
			Name:      "restore",
			Usage:     "Download and decrypt a snapshot into a new database file",
			UsageText: "menuboard restore --key backups/menuboard-....db.enc --out menu.db",
			Flags: append(storageFlags(),
				&cli.StringFlag{Name: "key", Usage: "object key printed by backup", Required: true, Destination: &cmd.key},
				&cli.StringFlag{Name: "out", Usage: "path of the restored database", Required: true, Destination: &cmd.dst},
			),
			Action: cmd.runRestore,
		},
	)
	return app
}

func (cmd *backupCmd) objects() (*media.Store, error) {
	if err := setup(cmd.cfg); err != nil {
		return nil, err
	}
	store := media.New(cmd.cfg.Media)
	if !store.Enabled() {
		return nil, errors.New("s3 bucket and credentials are required")
	}
	return store, nil
}

func (cmd *backupCmd) runBackup(ctx context.Context, _ *cli.Command) error {
	objects, err := cmd.objects()
	if err != nil {
		return err
	}

	db, err := database.Open(cmd.cfg.DBPath)
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer db.Close()

	key, err := backup.Run(ctx, db, objects, cmd.passphrase, time.Now())
	if err != nil {
		return fmt.Errorf("backup: %w", err)
	}
	slog.Info("backup uploaded", "key", key)
	fmt.Println(key)
	return nil
}

func (cmd *backupCmd) runRestore(ctx context.Context, _ *cli.Command) error {
	objects, err := cmd.objects()
	if err != nil {
		return err
	}
	if err := backup.Restore(ctx, objects, cmd.key, cmd.passphrase, cmd.dst); err != nil {
		return fmt.Errorf("restore: %w", err)
	}
	slog.Info("backup restored", "key", cmd.key, "path", cmd.dst)
	return nil
}
