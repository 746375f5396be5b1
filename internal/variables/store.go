// Package variables is the named key/value store behind the acsf_variables
// table. Values are JSON documents; the store does not care about their shape.
// Integral numbers decode as int64, or as json.Number when they do not fit;
// other numbers decode as float64.
package variables

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/mattjoyce/sitescrub/internal/storage"
)

// Table is the unprefixed name of the backing table.
const Table = "acsf_variables"

// Outcome reports which branch of an upsert ran.
type Outcome int

const (
	Inserted Outcome = 1
	Updated  Outcome = 2
)

func (o Outcome) String() string {
	switch o {
	case Inserted:
		return "inserted"
	case Updated:
		return "updated"
	default:
		return fmt.Sprintf("outcome(%d)", int(o))
	}
}

type Store struct {
	conn *storage.Conn
}

func NewStore(conn *storage.Conn) *Store {
	return &Store{conn: conn}
}

type row struct {
	Name  string `db:"name"`
	Value []byte `db:"value"`
}

// Set stores value under name, overwriting group and value when the name
// already exists. An empty group is stored as NULL.
func (s *Store) Set(ctx context.Context, name string, value any, group string) (Outcome, error) {
	if name == "" {
		return 0, fmt.Errorf("variable name is empty")
	}
	table, err := s.conn.Quote(Table)
	if err != nil {
		return 0, err
	}

	encoded, err := json.Marshal(value)
	if err != nil {
		return 0, fmt.Errorf("encode variable %q: %w", name, err)
	}
	var groupName sql.NullString
	if group != "" {
		groupName = sql.NullString{String: group, Valid: true}
	}

	tx, err := s.conn.BeginTxx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	var exists int
	err = tx.QueryRowxContext(ctx, tx.Rebind("SELECT 1 FROM "+table+" WHERE name = ?"), name).Scan(&exists)
	outcome := Updated
	switch {
	case errors.Is(err, sql.ErrNoRows):
		outcome = Inserted
		_, err = tx.ExecContext(ctx, tx.Rebind("INSERT INTO "+table+" (name, group_name, value) VALUES (?, ?, ?)"), name, groupName, encoded)
		if err != nil {
			return 0, fmt.Errorf("insert variable %q: %w", name, err)
		}
	case err != nil:
		return 0, fmt.Errorf("read variable %q: %w", name, err)
	default:
		_, err = tx.ExecContext(ctx, tx.Rebind("UPDATE "+table+" SET group_name = ?, value = ? WHERE name = ?"), groupName, encoded, name)
		if err != nil {
			return 0, fmt.Errorf("update variable %q: %w", name, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit tx: %w", err)
	}
	return outcome, nil
}

// Get returns the decoded value of name, or def if no row matches.
func (s *Store) Get(ctx context.Context, name string, def any) (any, error) {
	var v any
	found, err := s.Lookup(ctx, name, &v)
	if err != nil {
		return nil, err
	}
	if !found {
		return def, nil
	}
	return normalizeNumbers(v), nil
}

// Lookup decodes the value of name into dst and reports whether the row exists.
func (s *Store) Lookup(ctx context.Context, name string, dst any) (bool, error) {
	table, err := s.conn.Quote(Table)
	if err != nil {
		return false, err
	}

	var raw []byte
	err = s.conn.QueryRowxContext(ctx, s.conn.Rebind("SELECT value FROM "+table+" WHERE name = ?"), name).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("read variable %q: %w", name, err)
	}
	if err := decode(raw, dst); err != nil {
		return false, fmt.Errorf("decode variable %q: %w", name, err)
	}
	return true, nil
}

// GetMatch returns every variable whose name contains match. The map is empty
// when nothing matches.
func (s *Store) GetMatch(ctx context.Context, match string) (map[string]any, error) {
	table, err := s.conn.Quote(Table)
	if err != nil {
		return nil, err
	}
	pattern := "%" + escapeLike(match) + "%"
	return s.selectMap(ctx, "SELECT name, value FROM "+table+" WHERE name LIKE ? ESCAPE '!'", pattern)
}

// GetGroup returns every variable in group, or def when the group is empty.
func (s *Store) GetGroup(ctx context.Context, group string, def map[string]any) (map[string]any, error) {
	table, err := s.conn.Quote(Table)
	if err != nil {
		return nil, err
	}
	out, err := s.selectMap(ctx, "SELECT name, value FROM "+table+" WHERE group_name = ?", group)
	if err != nil {
		return nil, err
	}
	if len(out) == 0 {
		return def, nil
	}
	return out, nil
}

// Delete removes name and returns the number of rows removed. Deleting an
// absent name is not an error.
func (s *Store) Delete(ctx context.Context, name string) (int64, error) {
	table, err := s.conn.Quote(Table)
	if err != nil {
		return 0, err
	}
	res, err := s.conn.ExecContext(ctx, s.conn.Rebind("DELETE FROM "+table+" WHERE name = ?"), name)
	if err != nil {
		return 0, fmt.Errorf("delete variable %q: %w", name, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("delete variable %q: %w", name, err)
	}
	return n, nil
}

func (s *Store) selectMap(ctx context.Context, query string, arg any) (map[string]any, error) {
	var rows []row
	if err := s.conn.SelectContext(ctx, &rows, s.conn.Rebind(query), arg); err != nil {
		return nil, fmt.Errorf("select variables: %w", err)
	}

	out := make(map[string]any, len(rows))
	for _, r := range rows {
		var v any
		if err := decode(r.Value, &v); err != nil {
			return nil, fmt.Errorf("decode variable %q: %w", r.Name, err)
		}
		out[r.Name] = normalizeNumbers(v)
	}
	return out, nil
}

func decode(raw []byte, dst any) error {
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	return dec.Decode(dst)
}

// normalizeNumbers replaces the json.Number values left by decode, walking
// into maps and slices.
func normalizeNumbers(v any) any {
	switch t := v.(type) {
	case json.Number:
		s := t.String()
		if !strings.ContainsAny(s, ".eE") {
			if n, err := t.Int64(); err == nil {
				return n
			}
			return t
		}
		if f, err := t.Float64(); err == nil {
			return f
		}
		return t
	case map[string]any:
		for k, e := range t {
			t[k] = normalizeNumbers(e)
		}
		return t
	case []any:
		for i, e := range t {
			t[i] = normalizeNumbers(e)
		}
		return t
	default:
		return v
	}
}

// escapeLike escapes LIKE wildcards using '!' as the escape character.
func escapeLike(s string) string {
	return strings.NewReplacer("!", "!!", "%", "!%", "_", "!_").Replace(s)
}
