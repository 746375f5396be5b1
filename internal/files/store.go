// Package files manages file entity records (file_managed) and the bytes they
// point at through stream-wrapper URIs such as public://.
package files

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/mattjoyce/sitescrub/internal/storage"
)

const (
	// Table holds file entity records.
	Table = "file_managed"
	// UsageTable records which entities reference a file.
	UsageTable = "file_usage"

	// StatusPermanent marks a file that must survive cron and scrubs. Any other
	// status is temporary.
	StatusPermanent = 1
)

// File is one file entity record.
type File struct {
	FID      int64  `db:"fid"`
	URI      string `db:"uri"`
	Filename string `db:"filename"`
	Status   int    `db:"status"`
}

// Wrappers maps a URI scheme (without "://") to the directory it resolves to.
type Wrappers map[string]string

// Resolve maps uri to a path on disk. The path must stay under the scheme's
// directory.
func (w Wrappers) Resolve(uri string) (string, error) {
	scheme, target, ok := strings.Cut(uri, "://")
	if !ok {
		return "", fmt.Errorf("file uri %q has no scheme", uri)
	}
	dir, ok := w[scheme]
	if !ok || dir == "" {
		return "", fmt.Errorf("no directory configured for scheme %q", scheme)
	}

	root := filepath.Clean(dir)
	path := filepath.Join(root, filepath.FromSlash(target))
	if path != root && !strings.HasPrefix(path, root+string(os.PathSeparator)) {
		return "", fmt.Errorf("file uri %q escapes %s", uri, root)
	}
	return path, nil
}

// Store reads and deletes file entities.
type Store struct {
	conn     *storage.Conn
	wrappers Wrappers
}

func NewStore(conn *storage.Conn, wrappers Wrappers) *Store {
	return &Store{conn: conn, wrappers: wrappers}
}

// Temporary returns up to limit files whose status is not permanent, lowest
// fid first.
func (s *Store) Temporary(ctx context.Context, limit int) ([]File, error) {
	if limit <= 0 {
		return nil, fmt.Errorf("limit must be positive")
	}
	table, err := s.conn.Quote(Table)
	if err != nil {
		return nil, err
	}

	var out []File
	query := "SELECT fid, uri, filename, status FROM " + table + " WHERE status <> ? ORDER BY fid LIMIT ?"
	if err := s.conn.SelectContext(ctx, &out, s.conn.Rebind(query), StatusPermanent, limit); err != nil {
		return nil, fmt.Errorf("select temporary files: %w", err)
	}
	return out, nil
}

// Delete removes the file's bytes, its usage rows and its record. Bytes that are
// already gone are not an error.
func (s *Store) Delete(ctx context.Context, f File) error {
	path, err := s.wrappers.Resolve(f.URI)
	if err != nil {
		return fmt.Errorf("file %d: %w", f.FID, err)
	}
	if err := os.Remove(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("remove file %d bytes at %s: %w", f.FID, path, err)
	}

	// Checked before the transaction: the connection is not shared with it.
	hasUsage, err := s.conn.TableExists(ctx, UsageTable)
	if err != nil {
		return err
	}
	table, err := s.conn.Quote(Table)
	if err != nil {
		return err
	}

	tx, err := s.conn.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if hasUsage {
		usage, err := s.conn.Quote(UsageTable)
		if err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx, tx.Rebind("DELETE FROM "+usage+" WHERE fid = ?"), f.FID); err != nil {
			return fmt.Errorf("delete usage of file %d: %w", f.FID, err)
		}
	}
	if _, err := tx.ExecContext(ctx, tx.Rebind("DELETE FROM "+table+" WHERE fid = ?"), f.FID); err != nil {
		return fmt.Errorf("delete file %d: %w", f.FID, err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}
