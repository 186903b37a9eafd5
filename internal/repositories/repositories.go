package repositories

import (
	"database/sql"
	"fmt"
	"strings"

	"github.com/desertthunder/guitartube/internal/shared"
)

// scanner is satisfied by [sql.Row] and [sql.Rows].
type scanner interface {
	Scan(dest ...any) error
}

// NextSequence atomically increments and returns the next sequence number for the given table.
//
// Sequence numbers give records a stable, human-readable order (diagram #42) independent
// of UUIDs and timestamps.
func NextSequence(db *sql.DB, table string) (int, error) {
	tx, err := db.Begin()
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	sequenceTable := table + "_sequence"

	if _, err := tx.Exec(fmt.Sprintf("UPDATE %s SET value = value + 1 WHERE id = 1", sequenceTable)); err != nil {
		return 0, fmt.Errorf("failed to increment sequence: %w", err)
	}

	var sequence int
	if err := tx.QueryRow(fmt.Sprintf("SELECT value FROM %s WHERE id = 1", sequenceTable)).Scan(&sequence); err != nil {
		return 0, fmt.Errorf("failed to get sequence value: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit sequence transaction: %w", err)
	}
	return sequence, nil
}

// insertError maps UNIQUE constraint failures to [shared.ErrDuplicate].
func insertError(entity, ident string, err error) error {
	if strings.Contains(err.Error(), "UNIQUE constraint") {
		return fmt.Errorf("%w: %s %s", shared.ErrDuplicate, entity, ident)
	}
	return fmt.Errorf("failed to insert %s: %w", entity, err)
}

// requireRow reports [shared.ErrRecordNotFound] when an update or delete matched nothing.
func requireRow(result sql.Result, entity, id string) error {
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("%w: %s not found or already deleted: %s", shared.ErrRecordNotFound, entity, id)
	}
	return nil
}
