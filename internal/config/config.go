// Package config holds the runtime settings of the menuboard server.
package config

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/dukerupert/menuboard/internal/media"
)

type Config struct {
	Port      string
	DBPath    string
	LogLevel  string
	LogFormat string

	// Timezone is the IANA zone menus are evaluated in.
	Timezone      string
	SecureCookies bool

	// NotesTTL expires visitor notes after their last edit; zero keeps them.
	NotesTTL time.Duration
	// LoginRateLimit is the number of login and register attempts allowed
	// per IP per minute.
	LoginRateLimit int

	CleanupInterval time.Duration

	Media media.Config
}

// Default returns the settings used when no flag or environment overrides them.
func Default() Config {
	return Config{
		Port:            "8080",
		DBPath:          "menuboard.db",
		LogLevel:        "info",
		LogFormat:       "text",
		Timezone:        "Local",
		NotesTTL:        30 * 24 * time.Hour,
		LoginRateLimit:  10,
		CleanupInterval: time.Hour,
		Media:           media.Config{Region: "auto"},
	}
}

// Validate checks that the configuration is usable.
func (c *Config) Validate() error {
	if _, err := strconv.ParseUint(c.Port, 10, 16); err != nil {
		return fmt.Errorf("invalid port %q", c.Port)
	}
	if strings.TrimSpace(c.DBPath) == "" {
		return fmt.Errorf("db path cannot be empty")
	}
	if _, err := c.Location(); err != nil {
		return err
	}
	switch strings.ToLower(c.LogFormat) {
	case "text", "json":
	default:
		return fmt.Errorf("log format must be text or json, got %q", c.LogFormat)
	}
	if c.NotesTTL < 0 {
		return fmt.Errorf("notes ttl cannot be negative")
	}
	if c.LoginRateLimit < 1 {
		return fmt.Errorf("login rate limit must be at least 1")
	}
	if c.CleanupInterval <= 0 {
		return fmt.Errorf("cleanup interval must be positive")
	}

	m := c.Media
	partial := m.Bucket != "" || m.AccessKey != "" || m.SecretKey != ""
	if partial && (m.Bucket == "" || m.AccessKey == "" || m.SecretKey == "") {
		return fmt.Errorf("s3 storage needs bucket, access key and secret key together")
	}
	return nil
}

// Location loads the configured timezone.
func (c *Config) Location() (*time.Location, error) {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return nil, fmt.Errorf("invalid timezone %q: %w", c.Timezone, err)
	}
	return loc, nil
}

func (c *Config) Addr() string {
	return ":" + c.Port
}
