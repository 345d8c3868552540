package seed

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/Simplici0/laffle/internal/ingredient"
)

// Stats contains seed operation counters.
type Stats struct {
	Inserts int
}

// Run inserts the starter ingredients that are missing from the catalog.
// Existing rows, including ones the operator re-priced, are left alone, so
// running it on every startup is safe.
func Run(ctx context.Context, db *sql.DB, records []ingredient.Record) (Stats, error) {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return Stats{}, fmt.Errorf("begin seed transaction: %w", err)
	}

	stats := Stats{}

	var next int
	if err := tx.QueryRowContext(ctx, `SELECT COALESCE(MAX(position) + 1, 0) FROM ingredient_catalog`).Scan(&next); err != nil {
		_ = tx.Rollback()
		return Stats{}, fmt.Errorf("read next catalog position: %w", err)
	}

	for _, rec := range records {
		inserted, err := ensureIngredient(ctx, tx, rec, next)
		if err != nil {
			_ = tx.Rollback()
			return Stats{}, err
		}
		if inserted {
			next++
			stats.Inserts++
		}
	}

	if err := tx.Commit(); err != nil {
		return Stats{}, fmt.Errorf("commit seed transaction: %w", err)
	}

	return stats, nil
}

func ensureIngredient(ctx context.Context, tx *sql.Tx, rec ingredient.Record, position int) (bool, error) {
	var exists bool
	if err := tx.QueryRowContext(ctx, `SELECT EXISTS(SELECT 1 FROM ingredient_catalog WHERE name = ? LIMIT 1)`, rec.Name).Scan(&exists); err != nil {
		return false, fmt.Errorf("check ingredient %q existence: %w", rec.Name, err)
	}
	if exists {
		return false, nil
	}

	if _, err := tx.ExecContext(ctx, `
		INSERT INTO ingredient_catalog (position, name, purchase_price, package_size)
		VALUES (?, ?, ?, ?)
	`, position, rec.Name, rec.PurchasePrice, rec.PackageSize); err != nil {
		return false, fmt.Errorf("insert ingredient %q: %w", rec.Name, err)
	}
	return true, nil
}
