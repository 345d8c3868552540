package main

import (
	"errors"
	"fmt"
	"math"
	"net/http"
	"strconv"
	"strings"

	"github.com/Simplici0/laffle/internal/breakeven"
	"github.com/Simplici0/laffle/internal/config"
	"github.com/Simplici0/laffle/internal/costing"
)

type ingredientForm struct {
	Name          string
	PurchasePrice float64
	PackageSize   float64
}

func parseIngredientForm(r *http.Request) (ingredientForm, error) {
	form := ingredientForm{Name: strings.TrimSpace(r.FormValue("name"))}
	if form.Name == "" {
		return form, errors.New("材料名は必須です")
	}

	var err error
	if form.PurchasePrice, err = parseNonNegativeFloat(r.FormValue("purchase_price"), "仕入れ値"); err != nil {
		return form, err
	}
	if form.PackageSize, err = parsePositiveFloat(r.FormValue("package_size"), "単位量"); err != nil {
		return form, err
	}
	return form, nil
}

// parseRecipeForm reads the parallel "ingredient" and "quantity" fields.
// A blank quantity counts as 0.
func parseRecipeForm(r *http.Request) ([]costing.Line, error) {
	names := r.Form["ingredient"]
	quantities := r.Form["quantity"]
	if len(names) != len(quantities) {
		return nil, errors.New("材料と分量の数が一致しません")
	}

	lines := make([]costing.Line, 0, len(names))
	seen := make(map[string]bool, len(names))
	for i, name := range names {
		name = strings.TrimSpace(name)
		if name == "" || seen[name] {
			continue
		}
		seen[name] = true

		qty := 0.0
		if raw := strings.TrimSpace(quantities[i]); raw != "" {
			var err error
			if qty, err = parseNonNegativeFloat(raw, name+"の分量"); err != nil {
				return nil, err
			}
		}
		lines = append(lines, costing.Line{Ingredient: name, Quantity: qty})
	}

	if add := strings.TrimSpace(r.FormValue("add")); add != "" && !seen[add] {
		lines = append(lines, costing.Line{Ingredient: add})
	}
	return lines, nil
}

// parseBreakEvenQuery reads simulator inputs from the query string, falling
// back to the configured defaults for absent fields.
func parseBreakEvenQuery(r *http.Request, calc config.Calculation) (breakeven.Inputs, error) {
	in := breakeven.Inputs{
		SalesPrice: calc.SalesPrice,
		UnitCost:   calc.UnitCost,
		FixedCost:  calc.FixedCost,
		SweepMax:   calc.SweepMax,
		SweepStep:  calc.SweepStep,
	}
	q := r.URL.Query()

	var err error
	if raw := q.Get("sales_price"); raw != "" {
		if in.SalesPrice, err = parseNonNegativeFloat(raw, "販売価格"); err != nil {
			return in, err
		}
	}
	if raw := q.Get("unit_cost"); raw != "" {
		if in.UnitCost, err = parseNonNegativeFloat(raw, "原価"); err != nil {
			return in, err
		}
	}
	if raw := q.Get("fixed_cost"); raw != "" {
		if in.FixedCost, err = parseNonNegativeFloat(raw, "固定費"); err != nil {
			return in, err
		}
	}
	if raw := q.Get("sweep_max"); raw != "" {
		if in.SweepMax, err = parseBoundedInt(raw, "販売数", 0, calc.SweepLimit); err != nil {
			return in, err
		}
	}
	return in, nil
}

func parseNonNegativeFloat(raw, field string) (float64, error) {
	value, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil || math.IsNaN(value) || math.IsInf(value, 0) {
		return 0, fmt.Errorf("%sは数値で入力してください", field)
	}
	if value < 0 {
		return 0, fmt.Errorf("%sは0以上で入力してください", field)
	}
	return value, nil
}

func parsePositiveFloat(raw, field string) (float64, error) {
	value, err := parseNonNegativeFloat(raw, field)
	if err != nil {
		return 0, err
	}
	if value == 0 {
		return 0, fmt.Errorf("%sは0より大きい値で入力してください", field)
	}
	return value, nil
}

func parseBoundedInt(raw, field string, lo, hi int) (int, error) {
	value, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		return 0, fmt.Errorf("%sは整数で入力してください", field)
	}
	if value < lo || value > hi {
		return 0, fmt.Errorf("%sは%dから%dの範囲で入力してください", field, lo, hi)
	}
	return value, nil
}
