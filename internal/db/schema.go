package db

import (
	"context"
	"fmt"
)

// EnsureSchema creates the items table if it doesn't already exist.
func EnsureSchema(ctx context.Context, db *DB) error {
	if _, err := db.ExecContext(ctx, db.Dialect.Schema); err != nil {
		return fmt.Errorf("creating %s schema: %w", db.Dialect.Name, err)
	}
	return nil
}
