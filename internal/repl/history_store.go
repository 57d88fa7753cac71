package repl

import (
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite"
)

// HistoryStore persists successful submissions across sessions. The core
// keeps no state of its own beyond process lifetime; this is the optional
// external layer that does.
type HistoryStore struct {
	db *sql.DB
}

// StoredEntry is one persisted submission. Values are stored rendered, not
// as live runtime values.
type StoredEntry struct {
	ID    int64
	Form  string
	Value string
}

func OpenHistoryStore(path string) (*HistoryStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	if _, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS history (
			id    INTEGER PRIMARY KEY AUTOINCREMENT,
			form  TEXT NOT NULL,
			value TEXT NOT NULL
		)`); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating history table: %w", err)
	}
	return &HistoryStore{db: db}, nil
}

func (hs *HistoryStore) Append(form, value string) error {
	_, err := hs.db.Exec(`INSERT INTO history (form, value) VALUES (?, ?)`, form, value)
	return err
}

// Recent returns up to n persisted entries, most recent first.
func (hs *HistoryStore) Recent(n int) ([]StoredEntry, error) {
	rows, err := hs.db.Query(`SELECT id, form, value FROM history ORDER BY id DESC LIMIT ?`, n)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []StoredEntry
	for rows.Next() {
		var e StoredEntry
		if err := rows.Scan(&e.ID, &e.Form, &e.Value); err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

func (hs *HistoryStore) Close() error { return hs.db.Close() }
