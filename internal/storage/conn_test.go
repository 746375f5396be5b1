package storage

import (
	"context"
	"path/filepath"
	"testing"
)

func openTestDB(t *testing.T, prefix string) *Conn {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "site.db")
	c, err := OpenSQLite(context.Background(), dbPath, prefix)
	if err != nil {
		t.Fatalf("OpenSQLite: %v", err)
	}
	t.Cleanup(func() { _ = c.Close() })
	return c
}

func TestOpenSQLiteBootstrapsTables(t *testing.T) {
	t.Parallel()

	c := openTestDB(t, "")
	for _, table := range []string{"acsf_variables", "acsf_theme_notifications"} {
		ok, err := c.TableExists(context.Background(), table)
		if err != nil {
			t.Fatalf("TableExists(%q): %v", table, err)
		}
		if !ok {
			t.Fatalf("table %q missing", table)
		}
	}
}

func TestPrefixAppliesToTables(t *testing.T) {
	t.Parallel()

	c := openTestDB(t, "dr_")
	var name string
	if err := c.QueryRow("SELECT name FROM sqlite_master WHERE type='table' AND name='dr_acsf_variables';").Scan(&name); err != nil {
		t.Fatalf("prefixed table missing: %v", err)
	}
	ok, err := c.TableExists(context.Background(), "acsf_variables")
	if err != nil || !ok {
		t.Fatalf("TableExists(acsf_variables) = %v, %v; want true", ok, err)
	}
}

func TestTableExistsMissing(t *testing.T) {
	t.Parallel()

	c := openTestDB(t, "")
	ok, err := c.TableExists(context.Background(), "no_such_table")
	if err != nil {
		t.Fatalf("TableExists: %v", err)
	}
	if ok {
		t.Fatal("expected missing table")
	}
}

func TestTruncateEmptiesTable(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	c := openTestDB(t, "")
	if _, err := c.Exec(`INSERT INTO acsf_theme_notifications(event_type, theme) VALUES ('modify', 'a'), ('modify', 'b');`); err != nil {
		t.Fatalf("seed: %v", err)
	}
	if err := c.Truncate(ctx, "acsf_theme_notifications"); err != nil {
		t.Fatalf("Truncate: %v", err)
	}

	var n int
	if err := c.QueryRow(`SELECT COUNT(*) FROM acsf_theme_notifications;`).Scan(&n); err != nil {
		t.Fatalf("count: %v", err)
	}
	if n != 0 {
		t.Fatalf("expected 0 rows, got %d", n)
	}
}

func TestTableRejectsInjection(t *testing.T) {
	t.Parallel()

	c := &Conn{driver: DriverMySQL}
	for _, bad := range []string{"", "a;b", "sessions`", "a b", `x"`} {
		if _, err := c.Table(bad); err == nil {
			t.Fatalf("Table(%q) should fail", bad)
		}
	}
	q, err := c.Quote("sessions")
	if err != nil || q != "`sessions`" {
		t.Fatalf("Quote(sessions) = %q, %v", q, err)
	}
}

func TestOpenRejectsUnknownDriver(t *testing.T) {
	t.Parallel()

	if _, err := Open(context.Background(), "oracle", "x", ""); err == nil {
		t.Fatal("expected error for unknown driver")
	}
	if _, err := Open(context.Background(), DriverSQLite, "x.db", "bad-prefix"); err == nil {
		t.Fatal("expected error for invalid prefix")
	}
}
