package translation

import (
	"database/sql"
	"fmt"

	_ "github.com/mattn/go-sqlite3"
)

// SQLiteStore keeps entries in a single table of a SQLite database.
type SQLiteStore struct {
	db   *sql.DB
	path string
}

// NewSQLiteStore opens (and if needed creates) the database at path.
func NewSQLiteStore(path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open cache database: %w", err)
	}

	query := `CREATE TABLE IF NOT EXISTS translations (
		phrase      TEXT PRIMARY KEY,
		translation TEXT NOT NULL
	)`
	if _, err := db.Exec(query); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create translations table: %w", err)
	}

	return &SQLiteStore{db: db, path: path}, nil
}

// Location implements Store.
func (s *SQLiteStore) Location() string { return s.path }

// Load implements Store.
func (s *SQLiteStore) Load() (map[string]string, error) {
	rows, err := s.db.Query(`SELECT phrase, translation FROM translations`)
	if err != nil {
		return nil, fmt.Errorf("failed to query translations: %w", err)
	}
	defer rows.Close()

	entries := make(map[string]string)
	for rows.Next() {
		var phrase, translation string
		if err := rows.Scan(&phrase, &translation); err != nil {
			return nil, fmt.Errorf("failed to scan translation: %w", err)
		}
		entries[phrase] = translation
	}
	return entries, rows.Err()
}

// Save implements Store. Existing rows are replaced in one transaction.
func (s *SQLiteStore) Save(entries map[string]string) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`DELETE FROM translations`); err != nil {
		return fmt.Errorf("failed to clear translations: %w", err)
	}

	stmt, err := tx.Prepare(`INSERT INTO translations (phrase, translation) VALUES (?, ?)`)
	if err != nil {
		return fmt.Errorf("failed to prepare insert: %w", err)
	}
	defer stmt.Close()

	for phrase, translation := range entries {
		if _, err := stmt.Exec(phrase, translation); err != nil {
			return fmt.Errorf("failed to insert %q: %w", phrase, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit translations: %w", err)
	}
	return nil
}

// Close closes the database.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
