package repositories

import (
	"database/sql"
	"errors"
	"fmt"
	"regexp"
)

var tableName = regexp.MustCompile(`^[a-z_]+$`)

// NextSequence increments and returns the counter of table.
//
// Sequence numbers give plays a stable, human readable order (play #42) that
// survives restarts; the history listing sorts on them.
func NextSequence(db *sql.DB, table string) (int, error) {
	if !tableName.MatchString(table) {
		return 0, fmt.Errorf("invalid sequence table %q", table)
	}

	var sequence int
	query := fmt.Sprintf("UPDATE %s_sequence SET value = value + 1 WHERE id = 1 RETURNING value", table)
	err := db.QueryRow(query).Scan(&sequence)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		return 0, fmt.Errorf("sequence for %s is not initialized", table)
	case err != nil:
		return 0, fmt.Errorf("failed to increment sequence: %w", err)
	}

	return sequence, nil
}
