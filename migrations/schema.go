package migrations

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
)

// ErrMissingTable is returned when the target database lacks a table the seed script writes.
var ErrMissingTable = errors.New("required table does not exist")

func existsQuery(dialect string) string {
	if dialect == "postgres" {
		return `
			SELECT EXISTS (
				SELECT FROM information_schema.tables
				WHERE table_schema = current_schema()
				AND table_name = $1
			)`
	}
	return `
		SELECT EXISTS (
			SELECT 1 FROM information_schema.tables
			WHERE table_schema = DATABASE()
			AND table_name = ?
		)`
}

// InitSchema verifies that all required tables exist. The seed script only
// deletes and inserts rows, so the schema has to be created beforehand.
func InitSchema(ctx context.Context, db *sql.DB, dialect string, tables []string) error {
	query := existsQuery(dialect)

	var missing []string
	for _, table := range tables {
		var exists bool
		if err := db.QueryRowContext(ctx, query, table).Scan(&exists); err != nil {
			return fmt.Errorf("error checking table %s: %w", table, err)
		}
		if !exists {
			missing = append(missing, table)
		}
	}

	if len(missing) > 0 {
		return fmt.Errorf("%w: %s", ErrMissingTable, strings.Join(missing, ", "))
	}
	return nil
}
