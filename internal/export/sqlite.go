// Package export writes snapshots of the memo file to other formats.
package export

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/mattn/go-sqlite3"

	"github.com/starford/memo/internal/models"
)

const schemaSQL = `
DROP TABLE IF EXISTS notes;

CREATE TABLE notes (
	id       INTEGER NOT NULL,
	position INTEGER NOT NULL PRIMARY KEY,
	status   TEXT    NOT NULL,
	date     TEXT    NOT NULL,
	content  TEXT    NOT NULL
);

CREATE INDEX idx_notes_date ON notes(date);
CREATE INDEX idx_notes_status ON notes(status);
`

// ToSQLite replaces the notes table of the database at dsn with notes.
// position keeps file order; status is stored as its one-letter code.
// The whole export runs in one transaction.
func ToSQLite(ctx context.Context, notes []models.Note, dsn string) error {
	conn, err := sql.Open("sqlite3", dsn+"?_busy_timeout=5000")
	if err != nil {
		return fmt.Errorf("export: open db: %w", err)
	}
	defer conn.Close()

	if err := conn.PingContext(ctx); err != nil {
		return fmt.Errorf("export: ping: %w", err)
	}

	tx, err := conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("export: begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // no-op after commit

	if _, err := tx.ExecContext(ctx, schemaSQL); err != nil {
		return fmt.Errorf("export: apply schema: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `INSERT INTO notes (id, position, status, date, content) VALUES (?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("export: prepare insert: %w", err)
	}
	defer stmt.Close()

	for i, n := range notes {
		if _, err := stmt.ExecContext(ctx, n.ID, i+1, n.Status.Code(), n.Date, n.Content); err != nil {
			return fmt.Errorf("export: insert note %d: %w", n.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("export: commit: %w", err)
	}
	return nil
}
