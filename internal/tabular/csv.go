// Package tabular reads and writes the ingredient master as CSV.
package tabular

import (
	"bufio"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/Simplici0/laffle/internal/ingredient"
)

// FileName is the download name operators already have on disk.
const FileName = "my_ingredients_master.csv"

// Header is written on export. It matches the shop's existing files.
var Header = []string{"材料名", "仕入れ値", "単位量"}

var columnAliases = map[string]string{
	"材料名":            "name",
	"name":           "name",
	"仕入れ値":           "purchase_price",
	"purchase_price": "purchase_price",
	"単位量":            "package_size",
	"package_size":   "package_size",
}

// ErrMissingColumn is returned when the header lacks a required column.
var ErrMissingColumn = errors.New("missing required column")

const utf8BOM = "\ufeff"

// Read parses CSV with a header row. Columns may appear in any order and use
// either the Japanese or English names; unknown columns are ignored.
func Read(r io.Reader) ([]ingredient.Row, error) {
	br := bufio.NewReader(r)
	if b, err := br.Peek(len(utf8BOM)); err == nil && string(b) == utf8BOM {
		_, _ = br.Discard(len(utf8BOM))
	}

	cr := csv.NewReader(br)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("%w: empty file", ErrMissingColumn)
	}
	if err != nil {
		return nil, fmt.Errorf("read csv header: %w", err)
	}

	index := map[string]int{}
	for i, col := range header {
		if key, ok := columnAliases[strings.ToLower(strings.TrimSpace(col))]; ok {
			if _, seen := index[key]; !seen {
				index[key] = i
			}
		}
	}
	for _, key := range []string{"name", "purchase_price", "package_size"} {
		if _, ok := index[key]; !ok {
			return nil, fmt.Errorf("%w: %s", ErrMissingColumn, key)
		}
	}

	rows := make([]ingredient.Row, 0)
	for {
		record, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read csv row: %w", err)
		}
		rows = append(rows, ingredient.Row{
			Name:          field(record, index["name"]),
			PurchasePrice: field(record, index["purchase_price"]),
			PackageSize:   field(record, index["package_size"]),
		})
	}
	return rows, nil
}

func field(record []string, i int) string {
	if i < len(record) {
		return record[i]
	}
	return ""
}

// Write emits rows under the Japanese header.
func Write(w io.Writer, rows []ingredient.Row) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(Header); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}
	for _, row := range rows {
		if err := cw.Write([]string{row.Name, row.PurchasePrice, row.PackageSize}); err != nil {
			return fmt.Errorf("write csv row: %w", err)
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("flush csv: %w", err)
	}
	return nil
}
