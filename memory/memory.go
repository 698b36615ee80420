// Package memory is an in-memory repogen.Source, used to exercise generated
// repositories without a database.
//
// Filters compare values strictly: numbers of different Go types are equal
// when their values are, pointers are never dereferenced. A repogen.Some
// filter matches a record whose field holds a list of linked records with
// at least one element matching the inner filter. A repogen.Connect value
// in a created or updated record appends a link to that list.
package memory

import (
	"context"
	"errors"
	"maps"
	"reflect"
	"slices"
	"sync"

	"github.com/syssam/repogen"
)

// ErrNoRecord is returned by Update and Delete when no record matches.
var ErrNoRecord = errors.New("memory: no matching record")

// Source hands out one Table per model, created on first use.
type Source struct {
	mu     sync.Mutex
	tables map[string]*Table
}

// NewSource returns an empty source.
func NewSource() *Source {
	return &Source{tables: make(map[string]*Table)}
}

// Table returns the table of the model.
func (s *Source) Table(model string) *Table {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.tables[model]
	if !ok {
		t = &Table{}
		s.tables[model] = t
	}
	return t
}

// Delegate implements repogen.Source.
func (s *Source) Delegate(model string) repogen.Delegate { return s.Table(model) }

// Table is a Delegate keeping records in insertion order.
type Table struct {
	mu   sync.Mutex
	recs []repogen.Record
	fail error
}

// Insert appends records as they are, bypassing Create.
func (t *Table) Insert(recs ...repogen.Record) {
	t.mu.Lock()
	defer t.mu.Unlock()
	for _, rec := range recs {
		t.recs = append(t.recs, maps.Clone(rec))
	}
}

// Records returns a copy of the stored records.
func (t *Table) Records() []repogen.Record {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make([]repogen.Record, len(t.recs))
	for i, rec := range t.recs {
		out[i] = maps.Clone(rec)
	}
	return out
}

// FailWith makes every following mutation return err. A nil err resets it.
func (t *Table) FailWith(err error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.fail = err
}

// FindFirst implements repogen.Delegate.
func (t *Table) FindFirst(_ context.Context, args repogen.FindArgs) (repogen.Record, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	recs := t.filter(args.Where, args.OrderBy)
	if len(recs) == 0 {
		return nil, nil
	}
	return maps.Clone(recs[0]), nil
}

// FindMany implements repogen.Delegate. A negative Take reads backwards
// from the cursor.
func (t *Table) FindMany(_ context.Context, args repogen.FindArgs) ([]repogen.Record, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	recs := t.filter(args.Where, args.OrderBy)
	take := len(recs)
	if args.Take != nil {
		take = *args.Take
	}
	var start, end int
	if take >= 0 {
		if args.Cursor != nil {
			start = index(recs, args.Cursor) + args.Skip
		}
		end = min(start+take, len(recs))
	} else {
		end = len(recs)
		if args.Cursor != nil {
			end = index(recs, args.Cursor) - args.Skip + 1
		}
		start = max(end+take, 0)
	}
	if start >= end {
		return nil, nil
	}
	out := make([]repogen.Record, 0, end-start)
	for _, rec := range recs[start:end] {
		out = append(out, maps.Clone(rec))
	}
	return out, nil
}

// Count implements repogen.Delegate.
func (t *Table) Count(_ context.Context, where repogen.Where) (int, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.filter(where, nil)), nil
}

// Create implements repogen.Delegate.
func (t *Table) Create(_ context.Context, data repogen.Record) (repogen.Record, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.fail != nil {
		return nil, t.fail
	}
	rec := make(repogen.Record, len(data))
	apply(rec, data)
	t.recs = append(t.recs, rec)
	return maps.Clone(rec), nil
}

// Update implements repogen.Delegate. Only the first matching record is
// updated.
func (t *Table) Update(_ context.Context, where repogen.Where, data repogen.Record) (repogen.Record, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.fail != nil {
		return nil, t.fail
	}
	for _, rec := range t.recs {
		if Match(rec, where) {
			apply(rec, data)
			return maps.Clone(rec), nil
		}
	}
	return nil, ErrNoRecord
}

// Upsert implements repogen.Delegate.
func (t *Table) Upsert(ctx context.Context, where repogen.Where, create, update repogen.Record) (repogen.Record, error) {
	t.mu.Lock()
	found := len(t.filter(where, nil)) > 0
	t.mu.Unlock()
	if found {
		return t.Update(ctx, where, update)
	}
	return t.Create(ctx, create)
}

// Delete implements repogen.Delegate.
func (t *Table) Delete(_ context.Context, where repogen.Where) (repogen.Record, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.fail != nil {
		return nil, t.fail
	}
	for i, rec := range t.recs {
		if Match(rec, where) {
			t.recs = slices.Delete(t.recs, i, i+1)
			return rec, nil
		}
	}
	return nil, ErrNoRecord
}

func (t *Table) filter(where repogen.Where, orderBy []repogen.Order) []repogen.Record {
	var out []repogen.Record
	for _, rec := range t.recs {
		if Match(rec, where) {
			out = append(out, rec)
		}
	}
	if len(orderBy) > 0 {
		slices.SortStableFunc(out, func(a, b repogen.Record) int {
			for _, o := range orderBy {
				c := compare(a[o.Field], b[o.Field])
				if o.Desc {
					c = -c
				}
				if c != 0 {
					return c
				}
			}
			return 0
		})
	}
	return out
}

func index(recs []repogen.Record, cursor repogen.Where) int {
	for i, rec := range recs {
		if Match(rec, cursor) {
			return i
		}
	}
	return len(recs)
}

// apply copies data into rec, turning Connect values into links.
func apply(rec, data repogen.Record) {
	for k, v := range data {
		if c, ok := v.(repogen.Connect); ok {
			links, _ := rec[k].([]repogen.Record)
			rec[k] = append(slices.Clone(links), repogen.Record(maps.Clone(c)))
			continue
		}
		rec[k] = v
	}
}

// Match reports whether rec satisfies every entry of where.
func Match(rec repogen.Record, where repogen.Where) bool {
	for k, want := range where {
		if some, ok := want.(repogen.Some); ok {
			if !contains(rec[k], repogen.Where(some)) {
				return false
			}
			continue
		}
		if !Equal(rec[k], want) {
			return false
		}
	}
	return true
}

func contains(list any, where repogen.Where) bool {
	switch links := list.(type) {
	case []repogen.Record:
		return slices.ContainsFunc(links, func(r repogen.Record) bool { return Match(r, where) })
	case []any:
		return slices.ContainsFunc(links, func(v any) bool {
			r, ok := v.(map[string]any)
			return ok && Match(r, where)
		})
	}
	return false
}

// Equal compares two stored values. Numbers compare by value across Go
// types; everything else, pointers included, must be deeply equal.
func Equal(a, b any) bool {
	if x, ok := number(a); ok {
		if y, ok := number(b); ok {
			return x == y
		}
		return false
	}
	return reflect.DeepEqual(a, b)
}

func number(v any) (float64, bool) {
	if v == nil {
		return 0, false
	}
	rv := reflect.ValueOf(v)
	switch {
	case rv.CanInt():
		return float64(rv.Int()), true
	case rv.CanUint():
		return float64(rv.Uint()), true
	case rv.CanFloat():
		return rv.Float(), true
	}
	return 0, false
}

func compare(a, b any) int {
	if x, ok := number(a); ok {
		if y, ok := number(b); ok {
			switch {
			case x < y:
				return -1
			case x > y:
				return 1
			}
			return 0
		}
	}
	if x, ok := a.(string); ok {
		if y, ok := b.(string); ok {
			switch {
			case x < y:
				return -1
			case x > y:
				return 1
			}
		}
	}
	return 0
}
