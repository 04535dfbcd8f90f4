package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

// GardenRepo persists gardens in SQLite, one row set per player key.
type GardenRepo struct {
	db *sql.DB
}

func NewGardenRepo(db *sql.DB) *GardenRepo {
	return &GardenRepo{db: db}
}

// LoadState returns the stored garden for key, or nil when nothing was saved yet.
func (r *GardenRepo) LoadState(ctx context.Context, key string) (*GardenState, error) {
	st := &GardenState{Key: key, Inventory: map[string]int{}}
	found := false

	row := r.db.QueryRowContext(ctx, `SELECT lifetime_completions, currency FROM garden_counters WHERE key = ?`, key)
	if err := row.Scan(&st.LifetimeCompletions, &st.Currency); err != nil {
		if !errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("garden counters get: %w", err)
		}
	} else {
		found = true
	}

	inv, err := r.inventory(ctx, key)
	if err != nil {
		return nil, err
	}
	placed, err := r.placements(ctx, key)
	if err != nil {
		return nil, err
	}
	rewarded, err := r.rewardedTasks(ctx, key)
	if err != nil {
		return nil, err
	}
	if len(inv) > 0 || len(placed) > 0 || len(rewarded) > 0 {
		found = true
	}
	if !found {
		return nil, nil
	}

	st.Inventory = inv
	st.PlacedItems = placed
	st.RewardedTaskIDs = rewarded
	return st, nil
}

// SaveField replaces one field of the garden stored under key.
func (r *GardenRepo) SaveField(ctx context.Context, key string, field Field, value any) error {
	switch field {
	case FieldLifetimeCompletions, FieldCurrency:
		n, err := intValue(field, value)
		if err != nil {
			return err
		}
		return r.saveCounter(ctx, key, field, n)
	case FieldInventory:
		inv, err := inventoryValue(field, value)
		if err != nil {
			return err
		}
		return r.saveInventory(ctx, key, inv)
	case FieldPlacedItems:
		placed, err := placementsValue(field, value)
		if err != nil {
			return err
		}
		return r.savePlacements(ctx, key, placed)
	case FieldRewardedTaskIDs:
		ids, err := stringsValue(field, value)
		if err != nil {
			return err
		}
		return r.saveRewardedTasks(ctx, key, ids)
	default:
		return fmt.Errorf("save: unknown field %q", field)
	}
}

func (r *GardenRepo) saveCounter(ctx context.Context, key string, field Field, n int) error {
	// field is one of two known column names, never user input.
	q := fmt.Sprintf(`
		INSERT INTO garden_counters (key, %[1]s) VALUES (?, ?)
		ON CONFLICT(key) DO UPDATE SET %[1]s = excluded.%[1]s, updated_at = CURRENT_TIMESTAMP
	`, string(field))
	if _, err := r.db.ExecContext(ctx, q, key, n); err != nil {
		return fmt.Errorf("garden %s upsert: %w", field, err)
	}
	return nil
}

// replaceRows deletes every row of table under key and lets fill insert the new
// set, all in one transaction. Tables are fixed names, never user input.
func (r *GardenRepo) replaceRows(ctx context.Context, table, key, insertSQL string, fill func(insert func(args ...any) error) error) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("%s: begin tx: %w", table, err)
	}
	// No-op once committed.
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, `DELETE FROM `+table+` WHERE key = ?`, key); err != nil {
		return fmt.Errorf("%s clear: %w", table, err)
	}
	stmt, err := tx.PrepareContext(ctx, insertSQL)
	if err != nil {
		return fmt.Errorf("%s prepare: %w", table, err)
	}
	defer stmt.Close()

	insert := func(args ...any) error {
		_, err := stmt.ExecContext(ctx, append([]any{key}, args...)...)
		return err
	}
	if err := fill(insert); err != nil {
		return fmt.Errorf("%s insert: %w", table, err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("%s commit: %w", table, err)
	}
	return nil
}

func (r *GardenRepo) saveInventory(ctx context.Context, key string, inv map[string]int) error {
	return r.replaceRows(ctx, "garden_inventory", key,
		`INSERT INTO garden_inventory (key, item_id, quantity, updated_at) VALUES (?, ?, ?, CURRENT_TIMESTAMP)`,
		func(insert func(args ...any) error) error {
			for itemID, qty := range inv {
				if qty <= 0 {
					continue
				}
				if err := insert(itemID, qty); err != nil {
					return err
				}
			}
			return nil
		})
}

func (r *GardenRepo) savePlacements(ctx context.Context, key string, placed []Placement) error {
	return r.replaceRows(ctx, "garden_placements", key,
		`INSERT INTO garden_placements (key, id, item_id, x, y, scale, color, stack_order) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		func(insert func(args ...any) error) error {
			for _, p := range placed {
				color := sql.NullString{String: p.Color, Valid: p.Color != ""}
				if err := insert(p.ID, p.ItemID, p.X, p.Y, p.Scale, color, p.StackOrder); err != nil {
					return err
				}
			}
			return nil
		})
}

func (r *GardenRepo) saveRewardedTasks(ctx context.Context, key string, ids []string) error {
	return r.replaceRows(ctx, "garden_rewarded_tasks", key,
		`INSERT INTO garden_rewarded_tasks (key, task_id) VALUES (?, ?) ON CONFLICT(key, task_id) DO NOTHING`,
		func(insert func(args ...any) error) error {
			for _, id := range ids {
				if err := insert(id); err != nil {
					return err
				}
			}
			return nil
		})
}

func (r *GardenRepo) inventory(ctx context.Context, key string) (map[string]int, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT item_id, quantity FROM garden_inventory WHERE key = ? ORDER BY item_id ASC`, key)
	if err != nil {
		return nil, fmt.Errorf("inventory list: %w", err)
	}
	defer rows.Close()

	out := map[string]int{}
	for rows.Next() {
		var (
			itemID string
			qty    int
		)
		if err := rows.Scan(&itemID, &qty); err != nil {
			return nil, fmt.Errorf("inventory scan: %w", err)
		}
		out[itemID] = qty
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("inventory rows: %w", err)
	}
	return out, nil
}

func (r *GardenRepo) placements(ctx context.Context, key string) ([]Placement, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, item_id, x, y, scale, color, stack_order
		FROM garden_placements
		WHERE key = ?
		ORDER BY stack_order ASC, id ASC
	`, key)
	if err != nil {
		return nil, fmt.Errorf("placements list: %w", err)
	}
	defer rows.Close()

	var out []Placement
	for rows.Next() {
		var (
			p     Placement
			color sql.NullString
		)
		if err := rows.Scan(&p.ID, &p.ItemID, &p.X, &p.Y, &p.Scale, &color, &p.StackOrder); err != nil {
			return nil, fmt.Errorf("placement scan: %w", err)
		}
		if color.Valid {
			p.Color = color.String
		}
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("placements rows: %w", err)
	}
	return out, nil
}

func (r *GardenRepo) rewardedTasks(ctx context.Context, key string) ([]string, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT task_id FROM garden_rewarded_tasks WHERE key = ? ORDER BY task_id ASC`, key)
	if err != nil {
		return nil, fmt.Errorf("rewarded tasks list: %w", err)
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("rewarded task scan: %w", err)
		}
		out = append(out, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rewarded tasks rows: %w", err)
	}
	return out, nil
}
