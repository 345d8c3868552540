package costing

import (
	"errors"
	"math"
	"reflect"
	"testing"

	"github.com/Simplici0/laffle/internal/ingredient"
)

func nearlyEqual(t *testing.T, name string, got, want float64) {
	t.Helper()
	if math.Abs(got-want) > 1e-9 {
		t.Fatalf("%s = %v, want %v", name, got, want)
	}
}

func newMaster(t *testing.T) *ingredient.Master {
	t.Helper()
	m, err := ingredient.NewMaster(ingredient.DefaultRecords()...)
	if err != nil {
		t.Fatalf("NewMaster: %v", err)
	}
	return m
}

func TestCompute_RiceFlourLine(t *testing.T) {
	result, err := Compute(newMaster(t), []Line{{Ingredient: "米粉", Quantity: 200}}, DefaultBatchSize)
	if err != nil {
		t.Fatalf("Compute: %v", err)
	}

	if len(result.Lines) != 1 {
		t.Fatalf("lines = %d, want 1", len(result.Lines))
	}
	nearlyEqual(t, "unitPrice", result.Lines[0].UnitPrice, 0.54)
	nearlyEqual(t, "cost", result.Lines[0].Cost, 108)
	nearlyEqual(t, "total", result.Total, 108)
	nearlyEqual(t, "perUnitCost", result.PerUnitCost, 3.6)
}

func TestCompute_PlainWaffleBatch(t *testing.T) {
	lines := []Line{
		{Ingredient: "米粉", Quantity: 200},
		{Ingredient: "コーンスターチ", Quantity: 50},
		{Ingredient: "卵", Quantity: 2},
		{Ingredient: "牛乳", Quantity: 0},
	}

	result, err := Compute(newMaster(t), lines, 30)
	if err != nil {
		t.Fatalf("Compute: %v", err)
	}

	// 108 + 20 + 60 + 0
	nearlyEqual(t, "total", result.Total, 188)
	nearlyEqual(t, "perUnitCost", result.PerUnitCost, 188.0/30)
	nearlyEqual(t, "zero quantity cost", result.Lines[3].Cost, 0)

	order := make([]string, 0, len(result.Lines))
	for _, l := range result.Lines {
		order = append(order, l.Ingredient)
	}
	if !reflect.DeepEqual(order, []string{"米粉", "コーンスターチ", "卵", "牛乳"}) {
		t.Fatalf("lines not in supplied order: %v", order)
	}
}

func TestCompute_IsAdditive(t *testing.T) {
	m := newMaster(t)
	a := []Line{{Ingredient: "米粉", Quantity: 123.4}, {Ingredient: "三温糖", Quantity: 45}}
	b := []Line{{Ingredient: "米油", Quantity: 17}, {Ingredient: "バニラエッセンス", Quantity: 1.5}}

	ra, err := Compute(m, a, 30)
	if err != nil {
		t.Fatalf("Compute(a): %v", err)
	}
	rb, err := Compute(m, b, 30)
	if err != nil {
		t.Fatalf("Compute(b): %v", err)
	}
	rab, err := Compute(m, append(append([]Line{}, a...), b...), 30)
	if err != nil {
		t.Fatalf("Compute(a+b): %v", err)
	}

	nearlyEqual(t, "total", rab.Total, ra.Total+rb.Total)
	nearlyEqual(t, "perUnitCost", rab.PerUnitCost, ra.PerUnitCost+rb.PerUnitCost)
}

func TestCompute_UnknownIngredient(t *testing.T) {
	_, err := Compute(newMaster(t), []Line{{Ingredient: "米粉", Quantity: 1}, {Ingredient: "はちみつ", Quantity: 10}}, 30)

	var unknown *UnknownIngredientError
	if !errors.As(err, &unknown) {
		t.Fatalf("err = %v, want *UnknownIngredientError", err)
	}
	if unknown.Name != "はちみつ" {
		t.Fatalf("name = %q, want はちみつ", unknown.Name)
	}
}

func TestCompute_InvalidBatchSize(t *testing.T) {
	for _, size := range []int{0, -30} {
		if _, err := Compute(newMaster(t), nil, size); !errors.Is(err, ErrInvalidBatchSize) {
			t.Fatalf("Compute(batch=%d) err = %v, want ErrInvalidBatchSize", size, err)
		}
	}
}

func TestCompute_NegativeQuantityRejected(t *testing.T) {
	_, err := Compute(newMaster(t), []Line{{Ingredient: "米粉", Quantity: -1}}, 30)

	var verr *ingredient.ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("err = %v, want *ingredient.ValidationError", err)
	}
}

func TestCompute_EmptyRecipe(t *testing.T) {
	result, err := Compute(newMaster(t), nil, 30)
	if err != nil {
		t.Fatalf("Compute: %v", err)
	}
	nearlyEqual(t, "total", result.Total, 0)
	nearlyEqual(t, "perUnitCost", result.PerUnitCost, 0)
}

func TestTemplateAvailableFiltersMissingIngredients(t *testing.T) {
	m := newMaster(t)
	m.Remove("ココアパウダー")

	tmpl, ok := TemplateByName("チョコワッフル")
	if !ok {
		t.Fatalf("template not found")
	}

	got := tmpl.Available(m)
	for _, name := range got {
		if name == "ココアパウダー" {
			t.Fatalf("removed ingredient still offered: %v", got)
		}
	}
	if len(got) != len(tmpl.Ingredients)-1 {
		t.Fatalf("available = %v", got)
	}

	blank, _ := TemplateByName("カスタム（白紙）")
	if len(blank.Available(m)) != 0 {
		t.Fatalf("custom template must start empty")
	}
}
