package storage

import (
	"context"
	"fmt"
	"strings"
)

// BootstrapSQLite creates the tables the acsf module installs, if missing.
// Production sites already carry them; this serves local and test databases.
func BootstrapSQLite(ctx context.Context, c *Conn) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS {acsf_variables} (
  name       TEXT PRIMARY KEY,
  group_name TEXT,
  value      BLOB NOT NULL
);`,
		`CREATE INDEX IF NOT EXISTS {acsf_variables}_group_name_idx ON {acsf_variables}(group_name);`,
		`CREATE TABLE IF NOT EXISTS {acsf_theme_notifications} (
  id         INTEGER PRIMARY KEY AUTOINCREMENT,
  timestamp  INTEGER NOT NULL DEFAULT 0,
  event_type TEXT NOT NULL DEFAULT '',
  theme      TEXT,
  attempts   INTEGER NOT NULL DEFAULT 0
);`,
	}

	for _, stmt := range stmts {
		if _, err := c.ExecContext(ctx, c.expandTables(stmt)); err != nil {
			return fmt.Errorf("bootstrap sqlite: %w", err)
		}
	}
	return nil
}

// expandTables replaces {table} markers with prefixed table names.
func (c *Conn) expandTables(stmt string) string {
	for _, t := range []string{"acsf_variables", "acsf_theme_notifications"} {
		stmt = strings.ReplaceAll(stmt, "{"+t+"}", c.prefix+t)
	}
	return stmt
}
