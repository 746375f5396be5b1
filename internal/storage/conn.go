package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"time"

	_ "github.com/go-sql-driver/mysql"
	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"
)

// Supported database drivers.
const (
	DriverMySQL    = "mysql"
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

var identPattern = regexp.MustCompile(`^[A-Za-z0-9_]+$`)

func init() {
	// modernc registers as "sqlite", which sqlx does not know about.
	sqlx.BindDriver(DriverSQLite, sqlx.QUESTION)
}

// Conn is a database connection owned by a single scrub run. Table names are
// given unprefixed; Conn applies the site's table prefix.
type Conn struct {
	*sqlx.DB
	driver string
	prefix string
}

// Open connects to dsn with driver and verifies the connection.
func Open(ctx context.Context, driver, dsn, prefix string) (*Conn, error) {
	switch driver {
	case DriverMySQL, DriverPostgres, DriverSQLite:
	default:
		return nil, fmt.Errorf("unsupported database driver %q", driver)
	}
	if dsn == "" {
		return nil, fmt.Errorf("database dsn is empty")
	}
	if prefix != "" && !identPattern.MatchString(prefix) {
		return nil, fmt.Errorf("invalid table prefix %q", prefix)
	}

	db, err := sqlx.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", driver, err)
	}
	// One run, one connection. Callers must not query through Conn while
	// holding a transaction.
	db.SetMaxOpenConns(1)

	pctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := db.PingContext(pctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("connect %s: %w", driver, err)
	}

	if driver == DriverSQLite {
		if _, err := db.ExecContext(pctx, "PRAGMA busy_timeout = 5000;"); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("set busy_timeout: %w", err)
		}
	}

	return &Conn{DB: db, driver: driver, prefix: prefix}, nil
}

// OpenSQLite opens (and creates if needed) a SQLite database at path and
// ensures the acsf-owned tables exist.
func OpenSQLite(ctx context.Context, path, prefix string) (*Conn, error) {
	if path == "" {
		return nil, fmt.Errorf("sqlite path is empty")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create sqlite directory: %w", err)
	}
	c, err := Open(ctx, DriverSQLite, path, prefix)
	if err != nil {
		return nil, err
	}
	if err := BootstrapSQLite(ctx, c); err != nil {
		_ = c.Close()
		return nil, err
	}
	return c, nil
}

// Driver returns the driver name the connection was opened with.
func (c *Conn) Driver() string { return c.driver }

// Table returns the prefixed name of table, rejecting anything that is not a
// plain identifier.
func (c *Conn) Table(table string) (string, error) {
	if !identPattern.MatchString(table) {
		return "", fmt.Errorf("invalid table name %q", table)
	}
	return c.prefix + table, nil
}

// Quote returns the prefixed, dialect-quoted identifier for table.
func (c *Conn) Quote(table string) (string, error) {
	name, err := c.Table(table)
	if err != nil {
		return "", err
	}
	if c.driver == DriverMySQL {
		return "`" + name + "`", nil
	}
	return `"` + name + `"`, nil
}

// TableExists reports whether table exists in the connected schema.
func (c *Conn) TableExists(ctx context.Context, table string) (bool, error) {
	name, err := c.Table(table)
	if err != nil {
		return false, err
	}

	var query string
	switch c.driver {
	case DriverSQLite:
		query = `SELECT name FROM sqlite_master WHERE type = 'table' AND name = ?`
	case DriverMySQL:
		query = `SELECT table_name FROM information_schema.tables WHERE table_schema = DATABASE() AND table_name = ?`
	default:
		query = `SELECT table_name FROM information_schema.tables WHERE table_schema = current_schema() AND table_name = ?`
	}

	var found string
	err = c.QueryRowxContext(ctx, c.Rebind(query), name).Scan(&found)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("check table %s: %w", name, err)
	}
	return true, nil
}

// Truncate removes every row of table. SQLite has no TRUNCATE, so it gets an
// unqualified DELETE.
func (c *Conn) Truncate(ctx context.Context, table string) error {
	q, err := c.Quote(table)
	if err != nil {
		return err
	}
	stmt := "TRUNCATE TABLE " + q
	if c.driver == DriverSQLite {
		stmt = "DELETE FROM " + q
	}
	if _, err := c.ExecContext(ctx, stmt); err != nil {
		return fmt.Errorf("truncate %s: %w", q, err)
	}
	return nil
}
