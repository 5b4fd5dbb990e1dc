// ABOUTME: Ordered schema migrations for the catalog database, tracked in a schema_migrations table.
// ABOUTME: Each migration runs in its own transaction and is applied at most once.
package catalog

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

// migration is a single versioned schema change.
type migration struct {
	version int
	name    string
	sql     string
}

var migrations = []migration{
	{1, "create_tag", `
		CREATE TABLE tag (
			id TEXT PRIMARY KEY,
			name TEXT NOT NULL UNIQUE
		);`},
	{2, "create_recipe", `
		CREATE TABLE ingredient (
			id TEXT PRIMARY KEY,
			name TEXT NOT NULL
		);
		CREATE TABLE recipe (
			id TEXT PRIMARY KEY,
			name TEXT NOT NULL,
			link TEXT,
			description TEXT
		);
		CREATE TABLE recipe_ingredient (
			ingredient_id TEXT NOT NULL REFERENCES ingredient(id),
			recipe_id TEXT NOT NULL REFERENCES recipe(id),
			PRIMARY KEY (ingredient_id, recipe_id)
		);`},
	{3, "ingredient_tag", `
		CREATE TABLE ingredient_tag (
			ingredient_id TEXT NOT NULL REFERENCES ingredient(id),
			tag_id TEXT NOT NULL REFERENCES tag(id),
			PRIMARY KEY (ingredient_id, tag_id)
		);`},
	{4, "user", `
		CREATE TABLE user (
			id TEXT PRIMARY KEY,
			email TEXT NOT NULL UNIQUE,
			password TEXT
		);
		ALTER TABLE tag ADD COLUMN creator_id TEXT REFERENCES user(id);
		ALTER TABLE recipe ADD COLUMN user_id TEXT REFERENCES user(id);`},
	{5, "recipe_ingredient_quantity", `
		ALTER TABLE recipe_ingredient ADD COLUMN quantity REAL NOT NULL DEFAULT 0;
		ALTER TABLE recipe_ingredient ADD COLUMN unit TEXT NOT NULL DEFAULT '';`},
}

// migrate applies every migration newer than the recorded schema version and
// returns the resulting version.
func migrate(ctx context.Context, db *sql.DB) (int, error) {
	if _, err := db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version INTEGER PRIMARY KEY,
			name TEXT NOT NULL,
			applied_at TEXT NOT NULL
		)`); err != nil {
		return 0, fmt.Errorf("create schema_migrations: %w", err)
	}

	current, err := schemaVersion(ctx, db)
	if err != nil {
		return 0, err
	}

	for _, m := range migrations {
		if m.version <= current {
			continue
		}
		if err := apply(ctx, db, m); err != nil {
			return current, err
		}
		current = m.version
	}
	return current, nil
}

func apply(ctx context.Context, db *sql.DB, m migration) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin migration %d: %w", m.version, err)
	}
	if _, err := tx.ExecContext(ctx, m.sql); err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("migration %d (%s): %w", m.version, m.name, err)
	}
	if _, err := tx.ExecContext(ctx,
		`INSERT INTO schema_migrations (version, name, applied_at) VALUES (?, ?, ?)`,
		m.version, m.name, time.Now().UTC().Format(time.RFC3339),
	); err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("record migration %d: %w", m.version, err)
	}
	return tx.Commit()
}

func schemaVersion(ctx context.Context, db *sql.DB) (int, error) {
	var v sql.NullInt64
	if err := db.QueryRowContext(ctx, `SELECT MAX(version) FROM schema_migrations`).Scan(&v); err != nil {
		return 0, fmt.Errorf("read schema version: %w", err)
	}
	return int(v.Int64), nil
}
