package storage

import (
	"context"
	"database/sql"
	"fmt"
)

// Migrate creates the garden tables. Safe to run on every open.
func Migrate(ctx context.Context, db *sql.DB) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS garden_counters (
			key TEXT PRIMARY KEY,
			lifetime_completions INTEGER NOT NULL DEFAULT 0,
			currency INTEGER NOT NULL DEFAULT 0,
			updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
		);`,
		`CREATE TABLE IF NOT EXISTS garden_inventory (
			key TEXT NOT NULL,
			item_id TEXT NOT NULL,
			quantity INTEGER NOT NULL,
			updated_at DATETIME DEFAULT CURRENT_TIMESTAMP,
			PRIMARY KEY (key, item_id)
		);`,
		`CREATE TABLE IF NOT EXISTS garden_placements (
			key TEXT NOT NULL,
			id TEXT NOT NULL,
			item_id TEXT NOT NULL,
			x REAL NOT NULL DEFAULT 0,
			y REAL NOT NULL DEFAULT 0,
			scale REAL NOT NULL DEFAULT 1,
			color TEXT,
			stack_order INTEGER NOT NULL DEFAULT 0,
			PRIMARY KEY (key, id)
		);`,
		// Idempotency guard: one row per credited external task id.
		`CREATE TABLE IF NOT EXISTS garden_rewarded_tasks (
			key TEXT NOT NULL,
			task_id TEXT NOT NULL,
			rewarded_at DATETIME DEFAULT CURRENT_TIMESTAMP,
			PRIMARY KEY (key, task_id)
		);`,
		`CREATE INDEX IF NOT EXISTS idx_garden_placements_key_stack ON garden_placements(key, stack_order);`,
	}

	for _, stmt := range stmts {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
	}

	return nil
}
