package seed

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"

	"github.com/Simplici0/laffle/internal/db"
	"github.com/Simplici0/laffle/internal/ingredient"
	"github.com/Simplici0/laffle/internal/migrations"
)

func TestRunIsIdempotent(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	database, err := db.Open(ctx, filepath.Join(t.TempDir(), "seed-test.db"))
	if err != nil {
		t.Fatalf("open sqlite database: %v", err)
	}
	defer database.Close()

	if err := migrations.Up(database); err != nil {
		t.Fatalf("run migrations: %v", err)
	}

	defaults := ingredient.DefaultRecords()
	for i := 0; i < 10; i++ {
		stats, err := Run(ctx, database, defaults)
		if err != nil {
			t.Fatalf("run seed (iteration=%d): %v", i, err)
		}
		if i == 0 {
			if stats.Inserts != len(defaults) {
				t.Fatalf("expected %d inserts in first run, got %d", len(defaults), stats.Inserts)
			}
			continue
		}
		if stats.Inserts != 0 {
			t.Fatalf("expected 0 inserts in iteration %d, got %d", i, stats.Inserts)
		}
	}

	assertCount(t, database, `SELECT COUNT(*) FROM ingredient_catalog`, nil, len(defaults))
	assertCount(t, database, `SELECT COUNT(*) FROM ingredient_catalog WHERE name = ?`, "米粉", 1)
}

func TestRunKeepsOperatorPricesAndAppendsMissing(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	database, err := db.Open(ctx, filepath.Join(t.TempDir(), "seed-test.db"))
	if err != nil {
		t.Fatalf("open sqlite database: %v", err)
	}
	defer database.Close()

	if err := migrations.Up(database); err != nil {
		t.Fatalf("run migrations: %v", err)
	}

	if _, err := database.Exec(`
		INSERT INTO ingredient_catalog (position, name, purchase_price, package_size)
		VALUES (0, '米粉', 600, 1000)
	`); err != nil {
		t.Fatalf("insert operator row: %v", err)
	}

	stats, err := Run(ctx, database, ingredient.DefaultRecords())
	if err != nil {
		t.Fatalf("run seed: %v", err)
	}
	if stats.Inserts != len(ingredient.DefaultRecords())-1 {
		t.Fatalf("inserts = %d", stats.Inserts)
	}

	var price float64
	if err := database.QueryRow(`SELECT purchase_price FROM ingredient_catalog WHERE name = '米粉'`).Scan(&price); err != nil {
		t.Fatalf("query price: %v", err)
	}
	if price != 600 {
		t.Fatalf("seed overwrote operator price: %v", price)
	}

	assertCount(t, database, `SELECT COUNT(DISTINCT position) FROM ingredient_catalog`, nil, len(ingredient.DefaultRecords()))
}

func assertCount(t *testing.T, database *sql.DB, query string, args any, expected int) {
	t.Helper()

	var count int
	var err error
	switch v := args.(type) {
	case nil:
		err = database.QueryRow(query).Scan(&count)
	case []any:
		err = database.QueryRow(query, v...).Scan(&count)
	default:
		err = database.QueryRow(query, v).Scan(&count)
	}
	if err != nil {
		t.Fatalf("count query failed: %v", err)
	}
	if count != expected {
		t.Fatalf("expected count %d, got %d", expected, count)
	}
}
