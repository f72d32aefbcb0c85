package db

import "fmt"

// migrate runs database migrations.
func (s *SQLite) migrate() error {
	query := `
		CREATE TABLE IF NOT EXISTS documents (
			path       TEXT PRIMARY KEY,
			parent     TEXT NOT NULL,
			data       TEXT NOT NULL CHECK(json_valid(data)),
			updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
		);

		CREATE INDEX IF NOT EXISTS idx_documents_parent ON documents(parent);
	`

	if _, err := s.db.Exec(query); err != nil {
		return fmt.Errorf("creating documents table: %w", err)
	}

	return nil
}
