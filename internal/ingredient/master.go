package ingredient

import (
	"fmt"
	"strconv"
	"strings"
)

// Master is the ordered ingredient price list owned by one operator session.
// It is not safe for concurrent use; callers serialize access.
type Master struct {
	order  []string
	byName map[string]Record
}

// NewMaster builds a master from records. Duplicate names keep the first
// position and the last values.
func NewMaster(records ...Record) (*Master, error) {
	m := &Master{byName: make(map[string]Record, len(records))}
	for _, r := range records {
		if _, err := m.Upsert(r.Name, r.PurchasePrice, r.PackageSize); err != nil {
			return nil, err
		}
	}
	return m, nil
}

// Upsert inserts or replaces the record for name.
func (m *Master) Upsert(name string, purchasePrice, packageSize float64) (Record, error) {
	rec, err := NewRecord(name, purchasePrice, packageSize)
	if err != nil {
		return Record{}, err
	}
	m.put(rec)
	return rec, nil
}

func (m *Master) put(rec Record) {
	if m.byName == nil {
		m.byName = make(map[string]Record)
	}
	if _, ok := m.byName[rec.Name]; !ok {
		m.order = append(m.order, rec.Name)
	}
	m.byName[rec.Name] = rec
}

// Remove deletes the record for name. Removing an absent name is a no-op.
func (m *Master) Remove(name string) {
	name = strings.TrimSpace(name)
	if _, ok := m.byName[name]; !ok {
		return
	}
	delete(m.byName, name)
	for i, n := range m.order {
		if n == name {
			m.order = append(m.order[:i], m.order[i+1:]...)
			break
		}
	}
}

// Lookup returns the record for name or ErrNotFound.
func (m *Master) Lookup(name string) (Record, error) {
	rec, ok := m.byName[strings.TrimSpace(name)]
	if !ok {
		return Record{}, fmt.Errorf("%w: %s", ErrNotFound, name)
	}
	return rec, nil
}

// Len reports the number of records.
func (m *Master) Len() int {
	return len(m.order)
}

// Names returns ingredient names in insertion order.
func (m *Master) Names() []string {
	return append([]string(nil), m.order...)
}

// Records returns a copy of all records in insertion order.
func (m *Master) Records() []Record {
	records := make([]Record, 0, len(m.order))
	for _, name := range m.order {
		records = append(records, m.byName[name])
	}
	return records
}

// Clone returns an independent copy.
func (m *Master) Clone() *Master {
	c := &Master{byName: make(map[string]Record, len(m.byName))}
	for _, rec := range m.Records() {
		c.put(rec)
	}
	return c
}

// Row is one line of the tabular representation. Values are kept as text so
// that an import can report every unparsable cell, not only the first one.
type Row struct {
	Name          string
	PurchasePrice string
	PackageSize   string
}

// ExportTable dumps the master in insertion order. Numbers are formatted with
// the shortest representation that parses back to the same float64.
func (m *Master) ExportTable() []Row {
	rows := make([]Row, 0, len(m.order))
	for _, rec := range m.Records() {
		rows = append(rows, Row{
			Name:          rec.Name,
			PurchasePrice: strconv.FormatFloat(rec.PurchasePrice, 'f', -1, 64),
			PackageSize:   strconv.FormatFloat(rec.PackageSize, 'f', -1, 64),
		})
	}
	return rows
}

// ImportTable replaces the master contents with rows. Rows with a blank name
// are skipped. If any other row is invalid the master is left untouched and
// an *AggregateValidationError listing every bad row is returned.
func (m *Master) ImportTable(rows []Row) (skipped int, err error) {
	next := &Master{byName: make(map[string]Record, len(rows))}
	var bad []RowError

	for i, row := range rows {
		rowNum := i + 1
		name := strings.TrimSpace(row.Name)
		if name == "" {
			skipped++
			continue
		}

		price, perr := parseNumber(name, "purchase_price", row.PurchasePrice)
		if perr != nil {
			bad = append(bad, RowError{Row: rowNum, Err: perr})
			continue
		}
		size, serr := parseNumber(name, "package_size", row.PackageSize)
		if serr != nil {
			bad = append(bad, RowError{Row: rowNum, Err: serr})
			continue
		}

		rec, verr := NewRecord(name, price, size)
		if verr != nil {
			bad = append(bad, RowError{Row: rowNum, Err: verr})
			continue
		}
		next.put(rec)
	}

	if len(bad) > 0 {
		return 0, &AggregateValidationError{Rows: bad}
	}

	m.order = next.order
	m.byName = next.byName
	return skipped, nil
}

func parseNumber(name, field, raw string) (float64, error) {
	value, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil {
		return 0, &ValidationError{Name: name, Field: field, Reason: fmt.Sprintf("must be numeric, got %q", raw)}
	}
	return value, nil
}
