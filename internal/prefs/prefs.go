// Package prefs persists the small client preferences blob: theme,
// add-note button visibility, navigation flag. Everything lives under
// a single "root" key, so the schema never migrates with the app.
package prefs

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	_ "github.com/mattn/go-sqlite3"
)

type Prefs struct {
	Theme         string `json:"theme"`
	ShowAddButton bool   `json:"showAddButton"`
	NavOpen       bool   `json:"navOpen"`
}

func Default() Prefs {
	return Prefs{Theme: "dark", ShowAddButton: true}
}

type Store struct {
	conn *sql.DB
}

func Open(path string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return nil, fmt.Errorf("failed to create prefs directory: %w", err)
	}

	conn, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open prefs store: %w", err)
	}

	s := &Store{conn: conn}
	if err := s.migrate(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to migrate prefs store: %w", err)
	}
	return s, nil
}

func (s *Store) migrate() error {
	_, err := s.conn.Exec(`
	CREATE TABLE IF NOT EXISTS blobs (
		key TEXT PRIMARY KEY,
		value TEXT NOT NULL
	);`)
	return err
}

func (s *Store) Close() error { return s.conn.Close() }

// Load returns the saved preferences, or defaults when nothing has
// been saved yet or the blob does not parse.
func (s *Store) Load() (Prefs, error) {
	var raw string
	err := s.conn.QueryRow(`SELECT value FROM blobs WHERE key = 'root'`).Scan(&raw)
	if err == sql.ErrNoRows {
		return Default(), nil
	}
	if err != nil {
		return Default(), fmt.Errorf("failed to load prefs: %w", err)
	}

	p := Default()
	if err := json.Unmarshal([]byte(raw), &p); err != nil {
		return Default(), nil
	}
	return p, nil
}

func (s *Store) Save(p Prefs) error {
	raw, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("failed to marshal prefs: %w", err)
	}
	_, err = s.conn.Exec(`
		INSERT INTO blobs (key, value) VALUES ('root', ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value
	`, string(raw))
	if err != nil {
		return fmt.Errorf("failed to save prefs: %w", err)
	}
	return nil
}
