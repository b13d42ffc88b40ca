package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/urfave/cli/v3"

	"github.com/dukerupert/menuboard/internal/config"
	"github.com/dukerupert/menuboard/internal/database"
	"github.com/dukerupert/menuboard/internal/media"
	"github.com/dukerupert/menuboard/internal/server"
	"github.com/dukerupert/menuboard/internal/visibility"
)

type serveCmd struct {
	cfg *config.Config
}

func newServeCmd(cfg *config.Config) *serveCmd {
	return &serveCmd{cfg: cfg}
}

func (cmd *serveCmd) Register(app *cli.Command) *cli.Command {
	cfg := cmd.cfg
	app.Commands = append(app.Commands, &cli.Command{
		Name:  "serve",
		Usage: "Run the HTTP server",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "port",
				Sources:     cli.EnvVars("MENUBOARD_PORT"),
				Value:       cfg.Port,
				Destination: &cfg.Port,
			},
			&cli.StringFlag{
				Name:        "timezone",
				Usage:       "IANA timezone menus are evaluated in",
				Sources:     cli.EnvVars("MENUBOARD_TIMEZONE"),
				Value:       cfg.Timezone,
				Destination: &cfg.Timezone,
			},
			&cli.BoolFlag{
				Name:        "cookie-secure",
				Usage:       "mark cookies Secure (serve behind HTTPS)",
				Sources:     cli.EnvVars("MENUBOARD_COOKIE_SECURE"),
				Destination: &cfg.SecureCookies,
			},
			&cli.DurationFlag{
				Name:        "notes-ttl",
				Usage:       "how long visitor notes live after their last edit (0 keeps them)",
				Sources:     cli.EnvVars("MENUBOARD_NOTES_TTL"),
				Value:       cfg.NotesTTL,
				Destination: &cfg.NotesTTL,
			},
			&cli.IntFlag{
				Name:        "login-rate-limit",
				Usage:       "login and register attempts per IP per minute",
				Sources:     cli.EnvVars("MENUBOARD_LOGIN_RATE_LIMIT"),
				Value:       cfg.LoginRateLimit,
				Destination: &cfg.LoginRateLimit,
			},
			&cli.DurationFlag{
				Name:        "cleanup-interval",
				Sources:     cli.EnvVars("MENUBOARD_CLEANUP_INTERVAL"),
				Value:       cfg.CleanupInterval,
				Destination: &cfg.CleanupInterval,
			},
			&cli.StringFlag{
				Name:        "s3-endpoint",
				Sources:     cli.EnvVars("MENUBOARD_S3_ENDPOINT"),
				Destination: &cfg.Media.Endpoint,
			},
			&cli.StringFlag{
				Name:        "s3-bucket",
				Sources:     cli.EnvVars("MENUBOARD_S3_BUCKET"),
				Destination: &cfg.Media.Bucket,
			},
			&cli.StringFlag{
				Name:        "s3-region",
				Sources:     cli.EnvVars("MENUBOARD_S3_REGION"),
				Value:       cfg.Media.Region,
				Destination: &cfg.Media.Region,
			},
			&cli.StringFlag{
				Name:        "s3-access-key",
				Sources:     cli.EnvVars("MENUBOARD_S3_ACCESS_KEY"),
				Destination: &cfg.Media.AccessKey,
			},
			&cli.StringFlag{
				Name:        "s3-secret-key",
				Sources:     cli.EnvVars("MENUBOARD_S3_SECRET_KEY"),
				Destination: &cfg.Media.SecretKey,
			},
			&cli.StringFlag{
				Name:        "s3-public-url",
				Usage:       "base URL photos are served from; proxied through /media/ when empty",
				Sources:     cli.EnvVars("MENUBOARD_S3_PUBLIC_URL"),
				Destination: &cfg.Media.PublicURL,
			},
		},
		Action: cmd.run,
	})
	return app
}

func (cmd *serveCmd) run(ctx context.Context, _ *cli.Command) error {
	cfg := cmd.cfg
	if err := setup(cfg); err != nil {
		return err
	}
	logger := slog.Default()

	loc, err := cfg.Location()
	if err != nil {
		return err
	}

	db, err := database.Open(cfg.DBPath)
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer db.Close()

	store := media.New(cfg.Media)
	if !store.Enabled() {
		logger.Info("s3 not configured, photo uploads disabled")
	}

	srv := server.New(db, server.Options{
		Clock:          visibility.SystemClock{Location: loc},
		Media:          store,
		SecureCookies:  cfg.SecureCookies,
		NotesTTL:       cfg.NotesTTL,
		LoginRateLimit: cfg.LoginRateLimit,
	}, logger)

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go srv.RateLimiter().RunCleanup(5*time.Minute, ctx.Done())
	go every(ctx, cfg.CleanupInterval, func(ctx context.Context) {
		cleanupLogger := logger.With("component", "cleanup")
		if n, err := srv.SessionStore().DeleteExpired(); err != nil {
			cleanupLogger.Error("delete expired sessions", "error", err)
		} else if n > 0 {
			cleanupLogger.Info("deleted expired sessions", "count", n)
		}
		if n, err := srv.KVStore().SweepExpired(ctx); err != nil {
			cleanupLogger.Error("sweep expired notes", "error", err)
		} else if n > 0 {
			cleanupLogger.Info("swept expired notes", "count", n)
		}
	})

	httpServer := &http.Server{
		Addr:         cfg.Addr(),
		Handler:      srv.Router(),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("menuboard running", "addr", httpServer.Addr, "timezone", loc.String())
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}
