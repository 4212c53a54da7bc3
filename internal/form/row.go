package form

import (
	"fmt"
	"sync"
)

// Row is one editable key/value line of the params or headers table.
type Row struct {
	Included bool
	Key      string
	Value    string
}

// Pair is a row that survived the inclusion and non-empty key filter.
type Pair struct {
	Key   string
	Value string
}

// NewRow returns the blank row the form adds on every "add" action.
func NewRow() Row {
	return Row{Included: true}
}

// Rows is an append-only ordered collection of rows. Rows are edited in place
// and never removed for the lifetime of the form.
type Rows struct {
	mu   sync.RWMutex
	rows []Row
}

// NewRows returns a collection seeded with a single blank row.
func NewRows() *Rows {
	return &Rows{rows: []Row{NewRow()}}
}

// RowsFrom returns a collection holding a copy of rows. An empty input still
// yields one blank row so the table always has something to edit.
func RowsFrom(rows []Row) *Rows {
	if len(rows) == 0 {
		return NewRows()
	}
	cp := make([]Row, len(rows))
	copy(cp, rows)
	return &Rows{rows: cp}
}

// Append adds row at the end and returns its index.
func (r *Rows) Append(row Row) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rows = append(r.rows, row)
	return len(r.rows) - 1
}

func (r *Rows) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.rows)
}

// At returns the row at idx.
func (r *Rows) At(idx int) (Row, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if idx < 0 || idx >= len(r.rows) {
		return Row{}, false
	}
	return r.rows[idx], true
}

// Snapshot returns a copy of the rows in insertion order.
func (r *Rows) Snapshot() []Row {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Row, len(r.rows))
	copy(out, r.rows)
	return out
}

func (r *Rows) SetKey(idx int, key string) error {
	return r.update(idx, func(row *Row) { row.Key = key })
}

func (r *Rows) SetValue(idx int, value string) error {
	return r.update(idx, func(row *Row) { row.Value = value })
}

// Toggle flips the inclusion flag and returns the new state.
func (r *Rows) Toggle(idx int) (bool, error) {
	var state bool
	err := r.update(idx, func(row *Row) {
		row.Included = !row.Included
		state = row.Included
	})
	return state, err
}

func (r *Rows) update(idx int, fn func(*Row)) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if idx < 0 || idx >= len(r.rows) {
		return fmt.Errorf("row %d out of range (have %d)", idx, len(r.rows))
	}
	fn(&r.rows[idx])
	return nil
}

// Effective keeps rows that are included and carry a non-empty key. Values may
// be empty. Order and duplicates are preserved.
func Effective(rows []Row) []Pair {
	var out []Pair
	for _, row := range rows {
		if !row.Included || row.Key == "" {
			continue
		}
		out = append(out, Pair{Key: row.Key, Value: row.Value})
	}
	return out
}
