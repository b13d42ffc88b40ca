// Package backup writes encrypted snapshots of the menu database to
// object storage and restores them.
package backup

import (
	"bytes"
	"context"
	"database/sql"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/dukerupert/menuboard/internal/media"
)

// ContentType is stored on uploaded archives.
const ContentType = "application/octet-stream"

// ObjectStore is the subset of media.Store backups need.
type ObjectStore interface {
	Put(ctx context.Context, key, contentType string, body io.Reader, size int64) error
	Get(ctx context.Context, key string) (*media.Object, error)
}

// Key returns the object key for a backup taken at t.
func Key(t time.Time) string {
	return fmt.Sprintf("backups/menuboard-%s.db.enc", t.UTC().Format("2006-01-02T150405Z"))
}

// Snapshot writes a consistent copy of db to a new file under dir and
// returns its path.
func Snapshot(ctx context.Context, db *sql.DB, dir string) (string, error) {
	f, err := os.CreateTemp(dir, "menuboard-snapshot-*.db")
	if err != nil {
		return "", fmt.Errorf("create snapshot file: %w", err)
	}
	path := f.Name()
	f.Close()
	// VACUUM INTO refuses to overwrite an existing file.
	os.Remove(path)

	if _, err := db.ExecContext(ctx, "VACUUM INTO ?", path); err != nil {
		os.Remove(path)
		return "", fmt.Errorf("vacuum into: %w", err)
	}
	return path, nil
}

// Run snapshots db, seals it with passphrase and uploads it under Key(now).
func Run(ctx context.Context, db *sql.DB, objects ObjectStore, passphrase string, now time.Time) (string, error) {
	path, err := Snapshot(ctx, db, os.TempDir())
	if err != nil {
		return "", err
	}
	defer os.Remove(path)

	plain, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("read snapshot: %w", err)
	}
	sealed, err := Seal(plain, passphrase)
	if err != nil {
		return "", err
	}

	key := Key(now)
	if err := objects.Put(ctx, key, ContentType, bytes.NewReader(sealed), int64(len(sealed))); err != nil {
		return "", err
	}
	return key, nil
}

// Restore downloads the archive at key, decrypts it and writes the database
// to dst. dst must not exist.
func Restore(ctx context.Context, objects ObjectStore, key, passphrase, dst string) error {
	if _, err := os.Stat(dst); err == nil {
		return fmt.Errorf("restore target %s already exists", dst)
	}

	obj, err := objects.Get(ctx, key)
	if err != nil {
		return err
	}
	defer obj.Body.Close()

	sealed, err := io.ReadAll(obj.Body)
	if err != nil {
		return fmt.Errorf("read archive: %w", err)
	}
	plain, err := Open(sealed, passphrase)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return fmt.Errorf("create restore dir: %w", err)
	}
	if err := os.WriteFile(dst, plain, 0o600); err != nil {
		return fmt.Errorf("write restored database: %w", err)
	}
	return nil
}
