package database

import (
	"context"
	"fmt"

	"github.com/uptrace/bun"

	"github.com/userhub/userhub/internal/users"
)

// CreateTables creates all necessary tables
func CreateTables(ctx context.Context, db bun.IDB) error {
	models := []interface{}{
		(*users.UserSchema)(nil),
	}

	for _, model := range models {
		_, err := db.NewCreateTable().
			Model(model).
			IfNotExists().
			Exec(ctx)
		if err != nil {
			return fmt.Errorf("failed to create table for model %T: %w", model, err)
		}
	}

	return nil
}

// CreateIndexes creates all necessary indexes
func CreateIndexes(ctx context.Context, db bun.IDB) error {
	for _, indexSQL := range users.UserIndexes {
		_, err := db.ExecContext(ctx, indexSQL)
		if err != nil {
			return fmt.Errorf("failed to create index with SQL %q: %w", indexSQL, err)
		}
	}

	return nil
}

// Migrate creates tables and indexes idempotently
func Migrate(ctx context.Context, db bun.IDB) error {
	if err := CreateTables(ctx, db); err != nil {
		return err
	}
	return CreateIndexes(ctx, db)
}
