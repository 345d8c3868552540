// Package catalog stores the shop's default ingredient price list, the
// starting point of every new operator session.
package catalog

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/Simplici0/laffle/internal/ingredient"
)

// Repository reads and writes the ingredient_catalog table.
type Repository struct {
	db *sql.DB
}

// NewRepository returns a repository backed by db.
func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

// List returns the catalog in display order.
func (r *Repository) List(ctx context.Context) ([]ingredient.Record, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT name, purchase_price, package_size
		FROM ingredient_catalog
		ORDER BY position ASC, id ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("query ingredient catalog: %w", err)
	}
	defer rows.Close()

	records := make([]ingredient.Record, 0)
	for rows.Next() {
		var rec ingredient.Record
		if err := rows.Scan(&rec.Name, &rec.PurchasePrice, &rec.PackageSize); err != nil {
			return nil, fmt.Errorf("scan ingredient: %w", err)
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate ingredient catalog: %w", err)
	}

	return records, nil
}

// Master loads the catalog into a fresh master.
func (r *Repository) Master(ctx context.Context) (*ingredient.Master, error) {
	records, err := r.List(ctx)
	if err != nil {
		return nil, err
	}
	m, err := ingredient.NewMaster(records...)
	if err != nil {
		return nil, fmt.Errorf("build master from catalog: %w", err)
	}
	return m, nil
}

// MasterOrDefaults is Master, except that an empty catalog yields the
// built-in starter ingredients instead of an empty master.
func (r *Repository) MasterOrDefaults(ctx context.Context) (*ingredient.Master, error) {
	m, err := r.Master(ctx)
	if err != nil {
		return nil, err
	}
	if m.Len() > 0 {
		return m, nil
	}
	return ingredient.NewMaster(ingredient.DefaultRecords()...)
}

// Replace overwrites the whole catalog with records in one transaction.
func (r *Repository) Replace(ctx context.Context, records []ingredient.Record) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin catalog transaction: %w", err)
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM ingredient_catalog`); err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("clear ingredient catalog: %w", err)
	}

	for i, rec := range records {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO ingredient_catalog (position, name, purchase_price, package_size)
			VALUES (?, ?, ?, ?)
		`, i, rec.Name, rec.PurchasePrice, rec.PackageSize); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("insert ingredient %q: %w", rec.Name, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit catalog transaction: %w", err)
	}
	return nil
}
