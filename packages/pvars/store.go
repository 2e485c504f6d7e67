// Package pvars persists captured variables between runs. Values live in a
// SQLite database inside the workspace directory, JSON-encoded so numbers
// and structured captures keep their types across invocations.
package pvars

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	// SQLite driver
	_ "github.com/mattn/go-sqlite3"
)

const schema = `
CREATE TABLE IF NOT EXISTS pvars (
	name       TEXT PRIMARY KEY,
	value      TEXT NOT NULL,
	updated_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
)`

// Store is the persistent variable database.
type Store struct {
	db      *sql.DB
	timeout time.Duration
}

// Open opens (creating if needed) the database at path.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open pvars database: %w", err)
	}

	store := &Store{db: db, timeout: 5 * time.Second}

	ctx, cancel := store.context()
	defer cancel()
	if _, err := db.ExecContext(ctx, schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to initialize pvars database: %w", err)
	}
	return store, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// Load returns every persisted variable.
func (s *Store) Load() (map[string]any, error) {
	ctx, cancel := s.context()
	defer cancel()

	rows, err := s.db.QueryContext(ctx, `SELECT name, value FROM pvars`)
	if err != nil {
		return nil, fmt.Errorf("failed to load pvars: %w", err)
	}
	defer rows.Close()

	vars := make(map[string]any)
	for rows.Next() {
		var name, encoded string
		if err := rows.Scan(&name, &encoded); err != nil {
			return nil, fmt.Errorf("failed to scan pvar: %w", err)
		}
		vars[name] = decode(encoded)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("pvar iteration error: %w", err)
	}
	return vars, nil
}

// Get returns one persisted variable and whether it exists.
func (s *Store) Get(name string) (any, bool, error) {
	ctx, cancel := s.context()
	defer cancel()

	var encoded string
	err := s.db.QueryRowContext(ctx, `SELECT value FROM pvars WHERE name = ?`, name).Scan(&encoded)
	if err == sql.ErrNoRows {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("failed to read pvar %q: %w", name, err)
	}
	return decode(encoded), true, nil
}

// Put stores a variable, replacing any previous value.
func (s *Store) Put(name string, value any) error {
	encoded, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to encode pvar %q: %w", name, err)
	}

	ctx, cancel := s.context()
	defer cancel()

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO pvars (name, value, updated_at) VALUES (?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(name) DO UPDATE SET value = excluded.value, updated_at = CURRENT_TIMESTAMP`,
		name, string(encoded))
	if err != nil {
		return fmt.Errorf("failed to store pvar %q: %w", name, err)
	}
	return nil
}

// PutAll stores every entry of vars in one transaction.
func (s *Store) PutAll(vars map[string]any) error {
	ctx, cancel := s.context()
	defer cancel()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin pvars transaction: %w", err)
	}
	for name, value := range vars {
		encoded, err := json.Marshal(value)
		if err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("failed to encode pvar %q: %w", name, err)
		}
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO pvars (name, value, updated_at) VALUES (?, ?, CURRENT_TIMESTAMP)
			ON CONFLICT(name) DO UPDATE SET value = excluded.value, updated_at = CURRENT_TIMESTAMP`,
			name, string(encoded)); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("failed to store pvar %q: %w", name, err)
		}
	}
	return tx.Commit()
}

// Delete removes a variable. Deleting a missing name is not an error.
func (s *Store) Delete(name string) error {
	ctx, cancel := s.context()
	defer cancel()

	if _, err := s.db.ExecContext(ctx, `DELETE FROM pvars WHERE name = ?`, name); err != nil {
		return fmt.Errorf("failed to delete pvar %q: %w", name, err)
	}
	return nil
}

// Clear removes every persisted variable.
func (s *Store) Clear() error {
	ctx, cancel := s.context()
	defer cancel()

	if _, err := s.db.ExecContext(ctx, `DELETE FROM pvars`); err != nil {
		return fmt.Errorf("failed to clear pvars: %w", err)
	}
	return nil
}

func (s *Store) context() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), s.timeout)
}

// decode reverses the JSON encoding done by Put. Legacy plain-text values
// written by older versions come back as strings.
func decode(encoded string) any {
	var value any
	if err := json.Unmarshal([]byte(encoded), &value); err != nil {
		return encoded
	}
	return value
}
