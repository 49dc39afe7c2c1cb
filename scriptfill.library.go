package scriptfill

import (
	"strings"
)

// ValueLibrary maps field names to ordered pools of candidate values.
// A library is immutable once built; reloading replaces it wholesale.
// Pools are never empty: fields without usable values are dropped on construction.
type ValueLibrary struct {
	fields []string
	pools  map[string][]string
}

// NewValueLibrary builds a library from a field -> values mapping.
// Values are trimmed and empty strings dropped; duplicates and order are kept.
// Field order follows the order slice; fields missing from it are appended
// in sorted order so the result is deterministic.
func NewValueLibrary(order []string, values map[string][]string) *ValueLibrary {
	lib := &ValueLibrary{
		pools: make(map[string][]string, len(values)),
	}

	add := func(field string) {
		if _, done := lib.pools[field]; done {
			return
		}
		pool := cleanValues(values[field])
		if len(pool) == 0 {
			return
		}
		lib.fields = append(lib.fields, field)
		lib.pools[field] = pool
	}

	for _, field := range order {
		if _, ok := values[field]; ok {
			add(field)
		}
	}
	for _, field := range sortedKeys(values) {
		add(field)
	}

	return lib
}

// EmptyValueLibrary returns a library with no fields
func EmptyValueLibrary() *ValueLibrary {
	return &ValueLibrary{pools: make(map[string][]string)}
}

// Pool returns the values for a field, or nil if the field has no pool.
// The returned slice must not be modified.
func (l *ValueLibrary) Pool(field string) []string {
	if l == nil {
		return nil
	}
	return l.pools[field]
}

// Has reports whether the field has a non-empty pool
func (l *ValueLibrary) Has(field string) bool {
	return len(l.Pool(field)) > 0
}

// Fields returns field names in library order
func (l *ValueLibrary) Fields() []string {
	if l == nil {
		return nil
	}
	return copyStringSlice(l.fields)
}

// Len returns the number of fields
func (l *ValueLibrary) Len() int {
	if l == nil {
		return 0
	}
	return len(l.fields)
}

// Map returns a copy of the library as a plain mapping
func (l *ValueLibrary) Map() map[string][]string {
	out := make(map[string][]string, l.Len())
	if l == nil {
		return out
	}
	for field, pool := range l.pools {
		out[field] = copyStringSlice(pool)
	}
	return out
}

func cleanValues(values []string) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		v = strings.TrimSpace(v)
		if v == "" {
			continue
		}
		out = append(out, v)
	}
	return out
}
