package costing

import (
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/Simplici0/laffle/internal/ingredient"
)

// DefaultBatchSize is how many waffles one recipe batch yields.
const DefaultBatchSize = 30

// ErrInvalidBatchSize is returned when the batch size is not positive.
var ErrInvalidBatchSize = errors.New("batch size must be greater than 0")

// UnknownIngredientError reports a recipe line whose ingredient is missing
// from the master.
type UnknownIngredientError struct {
	Name string
}

func (e *UnknownIngredientError) Error() string {
	return fmt.Sprintf("unknown ingredient %q", e.Name)
}

// Catalog resolves ingredient names to price records.
type Catalog interface {
	Lookup(name string) (ingredient.Record, error)
}

// Line is one ingredient of a recipe and the amount used, in the same unit
// as the ingredient's package size.
type Line struct {
	Ingredient string
	Quantity   float64
}

// LineCost is the priced form of a Line.
type LineCost struct {
	Ingredient    string
	Quantity      float64
	PurchasePrice float64
	PackageSize   float64
	UnitPrice     float64
	Cost          float64
}

// Result groups the per-line breakdown and the recipe totals.
type Result struct {
	Lines       []LineCost
	Total       float64
	BatchSize   int
	PerUnitCost float64
}

// Compute prices every line against the catalog and sums the costs.
// Values are accumulated unrounded; rounding is a display concern.
func Compute(catalog Catalog, lines []Line, batchSize int) (Result, error) {
	if batchSize <= 0 {
		return Result{}, fmt.Errorf("%w: got %d", ErrInvalidBatchSize, batchSize)
	}

	result := Result{
		Lines:     make([]LineCost, 0, len(lines)),
		BatchSize: batchSize,
	}

	for _, line := range lines {
		name := strings.TrimSpace(line.Ingredient)
		if math.IsNaN(line.Quantity) || math.IsInf(line.Quantity, 0) || line.Quantity < 0 {
			return Result{}, &ingredient.ValidationError{Name: name, Field: "quantity", Reason: "must be a non-negative number"}
		}

		rec, err := catalog.Lookup(name)
		if err != nil {
			if errors.Is(err, ingredient.ErrNotFound) {
				return Result{}, &UnknownIngredientError{Name: name}
			}
			return Result{}, fmt.Errorf("lookup ingredient %q: %w", name, err)
		}

		unitPrice := rec.UnitPrice()
		cost := unitPrice * line.Quantity

		result.Lines = append(result.Lines, LineCost{
			Ingredient:    rec.Name,
			Quantity:      line.Quantity,
			PurchasePrice: rec.PurchasePrice,
			PackageSize:   rec.PackageSize,
			UnitPrice:     unitPrice,
			Cost:          cost,
		})
		result.Total += cost
	}

	result.PerUnitCost = result.Total / float64(batchSize)
	return result, nil
}
