package main

import (
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/Simplici0/laffle/internal/config"
)

func TestParseRecipeForm_Success(t *testing.T) {
	form := url.Values{}
	form.Add("ingredient", "米粉")
	form.Add("quantity", "200")
	form.Add("ingredient", "卵")
	form.Add("quantity", "")
	form.Add("ingredient", "米粉")
	form.Add("quantity", "999")
	form.Set("add", "牛乳")

	req := httptest.NewRequest("POST", "/costing/calc", nil)
	req.Form = form

	lines, err := parseRecipeForm(req)
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if len(lines) != 3 {
		t.Fatalf("lines = %+v, want 3", lines)
	}
	if lines[0].Ingredient != "米粉" || lines[0].Quantity != 200 {
		t.Fatalf("first line = %+v", lines[0])
	}
	if lines[1].Quantity != 0 {
		t.Fatalf("blank quantity must be 0, got %v", lines[1].Quantity)
	}
	if lines[2].Ingredient != "牛乳" || lines[2].Quantity != 0 {
		t.Fatalf("added line = %+v", lines[2])
	}
}

func TestParseRecipeForm_InvalidNumbers(t *testing.T) {
	for _, qty := range []string{"abc", "-10", "NaN"} {
		form := url.Values{}
		form.Add("ingredient", "米粉")
		form.Add("quantity", qty)

		req := httptest.NewRequest("POST", "/costing/calc", nil)
		req.Form = form

		if _, err := parseRecipeForm(req); err == nil {
			t.Fatalf("expected validation error for quantity %q", qty)
		}
	}
}

func TestParseRecipeForm_MismatchedFields(t *testing.T) {
	form := url.Values{}
	form.Add("ingredient", "米粉")

	req := httptest.NewRequest("POST", "/costing/calc", nil)
	req.Form = form

	if _, err := parseRecipeForm(req); err == nil {
		t.Fatalf("expected mismatch error")
	}
}

func TestParseIngredientForm(t *testing.T) {
	cases := []struct {
		name, price, size string
		ok                bool
	}{
		{"米粉", "540", "1000", true},
		{"", "540", "1000", false},
		{"米粉", "-1", "1000", false},
		{"米粉", "540", "0", false},
		{"米粉", "abc", "1000", false},
	}
	for _, tc := range cases {
		form := url.Values{}
		form.Set("name", tc.name)
		form.Set("purchase_price", tc.price)
		form.Set("package_size", tc.size)

		req := httptest.NewRequest("POST", "/costing/ingredients", nil)
		req.Form = form

		_, err := parseIngredientForm(req)
		if (err == nil) != tc.ok {
			t.Fatalf("parseIngredientForm(%+v) err = %v", tc, err)
		}
	}
}

func TestParseBreakEvenQuery_DefaultsAndOverrides(t *testing.T) {
	calc := config.DefaultCalculation()

	req := httptest.NewRequest("GET", "/analysis", nil)
	in, err := parseBreakEvenQuery(req, calc)
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if in.SalesPrice != 300 || in.UnitCost != 80 || in.FixedCost != 150000 || in.SweepMax != 1000 || in.SweepStep != 50 {
		t.Fatalf("defaults = %+v", in)
	}

	req = httptest.NewRequest("GET", "/analysis?sales_price=350&sweep_max=2000", nil)
	in, err = parseBreakEvenQuery(req, calc)
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if in.SalesPrice != 350 || in.SweepMax != 2000 {
		t.Fatalf("overrides = %+v", in)
	}
}

func TestParseBreakEvenQuery_SweepOutOfRange(t *testing.T) {
	calc := config.DefaultCalculation()
	for _, q := range []string{"sweep_max=-1", "sweep_max=3001", "sweep_max=1.5", "fixed_cost=abc"} {
		req := httptest.NewRequest("GET", "/analysis?"+q, nil)
		if _, err := parseBreakEvenQuery(req, calc); err == nil {
			t.Fatalf("expected error for %q", q)
		}
	}
}
