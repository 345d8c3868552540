package ingredient

import (
	"errors"
	"fmt"
	"math"
	"strings"
)

// ErrNotFound is returned by Lookup when no record exists for a name.
var ErrNotFound = errors.New("ingredient not found")

// Record is a single price-list entry: what the shop pays for one package
// of an ingredient and how many grams (or pieces) the package holds.
type Record struct {
	Name          string
	PurchasePrice float64
	PackageSize   float64
}

// NewRecord validates its inputs and returns a Record.
func NewRecord(name string, purchasePrice, packageSize float64) (Record, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return Record{}, &ValidationError{Field: "name", Reason: "is required"}
	}
	if math.IsNaN(purchasePrice) || math.IsInf(purchasePrice, 0) {
		return Record{}, &ValidationError{Name: name, Field: "purchase_price", Reason: "must be a finite number"}
	}
	if purchasePrice < 0 {
		return Record{}, &ValidationError{Name: name, Field: "purchase_price", Reason: "must be greater than or equal to 0"}
	}
	if math.IsNaN(packageSize) || math.IsInf(packageSize, 0) {
		return Record{}, &ValidationError{Name: name, Field: "package_size", Reason: "must be a finite number"}
	}
	if packageSize <= 0 {
		return Record{}, &ValidationError{Name: name, Field: "package_size", Reason: "must be greater than 0"}
	}
	return Record{Name: name, PurchasePrice: purchasePrice, PackageSize: packageSize}, nil
}

// UnitPrice is the cost of a single gram or piece.
func (r Record) UnitPrice() float64 {
	return r.PurchasePrice / r.PackageSize
}

// ValidationError describes a rejected ingredient field.
type ValidationError struct {
	Name   string
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	if e.Name == "" {
		return fmt.Sprintf("%s %s", e.Field, e.Reason)
	}
	return fmt.Sprintf("ingredient %q: %s %s", e.Name, e.Field, e.Reason)
}

// RowError ties a validation failure to the 1-based row it came from.
type RowError struct {
	Row int
	Err error
}

func (e RowError) Error() string {
	return fmt.Sprintf("row %d: %v", e.Row, e.Err)
}

// AggregateValidationError lists every bad row of a rejected bulk import.
type AggregateValidationError struct {
	Rows []RowError
}

func (e *AggregateValidationError) Error() string {
	parts := make([]string, 0, len(e.Rows))
	for _, row := range e.Rows {
		parts = append(parts, row.Error())
	}
	return fmt.Sprintf("%d invalid rows: %s", len(e.Rows), strings.Join(parts, "; "))
}

// Unwrap exposes the per-row causes to errors.As.
func (e *AggregateValidationError) Unwrap() []error {
	errs := make([]error, 0, len(e.Rows))
	for _, row := range e.Rows {
		errs = append(errs, row.Err)
	}
	return errs
}

// DefaultRecords returns the shop's starter price list.
func DefaultRecords() []Record {
	return []Record{
		{Name: "米粉", PurchasePrice: 540, PackageSize: 1000},
		{Name: "コーンスターチ", PurchasePrice: 400, PackageSize: 1000},
		{Name: "片栗粉", PurchasePrice: 200, PackageSize: 250},
		{Name: "三温糖", PurchasePrice: 300, PackageSize: 1000},
		{Name: "ベーキングパウダー", PurchasePrice: 380, PackageSize: 100},
		{Name: "牛乳", PurchasePrice: 240, PackageSize: 1000},
		{Name: "無糖ヨーグルト", PurchasePrice: 350, PackageSize: 400},
		{Name: "卵", PurchasePrice: 300, PackageSize: 10},
		{Name: "米油", PurchasePrice: 750, PackageSize: 1300},
		{Name: "ココアパウダー", PurchasePrice: 800, PackageSize: 200},
		{Name: "バニラエッセンス", PurchasePrice: 500, PackageSize: 30},
		{Name: "抹茶パウダー", PurchasePrice: 1200, PackageSize: 100},
	}
}
