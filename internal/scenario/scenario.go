// Package scenario keeps named break-even assumptions so the operator can
// compare them later.
package scenario

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/Simplici0/laffle/internal/breakeven"
)

// likeEscaper makes LIKE match % and _ in the search text literally.
var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// ErrTitleRequired is returned when saving without a title.
var ErrTitleRequired = errors.New("title is required")

// Scenario is a saved set of simulator inputs.
type Scenario struct {
	ID         int64
	CreatedAt  string
	Title      string
	SalesPrice float64
	UnitCost   float64
	FixedCost  float64
	SweepMax   int
}

// Inputs returns the simulator inputs for the scenario with the given step.
func (s Scenario) Inputs(step int) breakeven.Inputs {
	return breakeven.Inputs{
		SalesPrice: s.SalesPrice,
		UnitCost:   s.UnitCost,
		FixedCost:  s.FixedCost,
		SweepMax:   s.SweepMax,
		SweepStep:  step,
	}
}

// Repository reads and writes the breakeven_scenarios table.
type Repository struct {
	db *sql.DB
}

// NewRepository returns a repository backed by db.
func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

// Save stores in under title and returns the new id.
func (r *Repository) Save(ctx context.Context, title string, in breakeven.Inputs) (int64, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return 0, ErrTitleRequired
	}

	res, err := r.db.ExecContext(ctx, `
		INSERT INTO breakeven_scenarios (title, sales_price, unit_cost, fixed_cost, sweep_max)
		VALUES (?, ?, ?, ?, ?)
	`, title, in.SalesPrice, in.UnitCost, in.FixedCost, in.SweepMax)
	if err != nil {
		return 0, fmt.Errorf("insert scenario: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("read scenario id: %w", err)
	}
	return id, nil
}

// List returns scenarios newest first, optionally filtered by a title match.
func (r *Repository) List(ctx context.Context, query string) ([]Scenario, error) {
	query = strings.TrimSpace(query)
	search := "%" + likeEscaper.Replace(query) + "%"

	rows, err := r.db.QueryContext(ctx, `
		SELECT id, created_at, title, sales_price, unit_cost, fixed_cost, sweep_max
		FROM breakeven_scenarios
		WHERE (? = '' OR title LIKE ? ESCAPE '\')
		ORDER BY datetime(created_at) DESC, id DESC
	`, query, search)
	if err != nil {
		return nil, fmt.Errorf("query scenarios: %w", err)
	}
	defer rows.Close()

	scenarios := make([]Scenario, 0)
	for rows.Next() {
		var s Scenario
		if err := rows.Scan(&s.ID, &s.CreatedAt, &s.Title, &s.SalesPrice, &s.UnitCost, &s.FixedCost, &s.SweepMax); err != nil {
			return nil, fmt.Errorf("scan scenario: %w", err)
		}
		scenarios = append(scenarios, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate scenarios: %w", err)
	}

	return scenarios, nil
}

// Get returns one scenario by id; sql.ErrNoRows is wrapped when absent.
func (r *Repository) Get(ctx context.Context, id int64) (Scenario, error) {
	var s Scenario
	err := r.db.QueryRowContext(ctx, `
		SELECT id, created_at, title, sales_price, unit_cost, fixed_cost, sweep_max
		FROM breakeven_scenarios
		WHERE id = ?
	`, id).Scan(&s.ID, &s.CreatedAt, &s.Title, &s.SalesPrice, &s.UnitCost, &s.FixedCost, &s.SweepMax)
	if err != nil {
		return Scenario{}, fmt.Errorf("query scenario %d: %w", id, err)
	}
	return s, nil
}
