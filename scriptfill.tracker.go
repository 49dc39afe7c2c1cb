package scriptfill

import (
	"github.com/itsatony/go-scriptfill/internal"
)

// FieldState is the consumption state of one field.
// Used is an insertion-ordered set of values already committed; Cursor is the
// next index tried in sequential mode. Cursor is normalized against the pool
// length whenever it is read, so it stays valid across library reloads.
type FieldState struct {
	Used   []string `json:"used"`
	Cursor int      `json:"cursor"`

	index map[string]struct{}
}

// FieldStatus is a read-only view of a field for front ends.
type FieldStatus struct {
	Field       string   `json:"field"`
	PoolSize    int      `json:"pool_size"`
	Used        []string `json:"used"`
	Eligible    int      `json:"eligible"`
	Cursor      int      `json:"cursor"`
	DeleteOnUse bool     `json:"delete_on_use"`
}

func (s *FieldState) contains(value string) bool {
	if s == nil {
		return false
	}
	if s.index == nil {
		s.index = make(map[string]struct{}, len(s.Used))
		for _, v := range s.Used {
			s.index[v] = struct{}{}
		}
	}
	_, ok := s.index[value]
	return ok
}

func (s *FieldState) add(value string) bool {
	if s.contains(value) {
		return false
	}
	s.Used = append(s.Used, value)
	s.index[value] = struct{}{}
	return true
}

func (s *FieldState) clear() bool {
	had := len(s.Used) > 0
	s.Used = nil
	s.index = nil
	return had
}

func (s *FieldState) clone() FieldState {
	return FieldState{Used: copyStringSlice(s.Used), Cursor: s.Cursor}
}

// Tracker holds per-field consumption state.
// States are created lazily on first write.
type Tracker struct {
	fields map[string]*FieldState
}

// NewTracker creates an empty tracker
func NewTracker() *Tracker {
	return &Tracker{fields: make(map[string]*FieldState)}
}

func (t *Tracker) lookup(field string) *FieldState {
	return t.fields[field]
}

func (t *Tracker) state(field string) *FieldState {
	st, ok := t.fields[field]
	if !ok {
		st = &FieldState{}
		t.fields[field] = st
	}
	return st
}

// IsUsed reports whether value is in the field's used set
func (t *Tracker) IsUsed(field, value string) bool {
	return t.lookup(field).contains(value)
}

// Used returns a copy of the field's used set in insertion order
func (t *Tracker) Used(field string) []string {
	st := t.lookup(field)
	if st == nil || len(st.Used) == 0 {
		return []string{}
	}
	return copyStringSlice(st.Used)
}

// Cursor returns the field's sequential cursor normalized to a pool of size n
func (t *Tracker) Cursor(field string, n int) int {
	st := t.lookup(field)
	if st == nil {
		return 0
	}
	return internal.NormalizeCursor(st.Cursor, n)
}

// MarkUsed adds value to the field's used set; returns false if it was already present
func (t *Tracker) MarkUsed(field, value string) bool {
	return t.state(field).add(value)
}

// SetCursor stores the field's sequential cursor
func (t *Tracker) SetCursor(field string, cursor int) bool {
	st := t.state(field)
	if st.Cursor == cursor {
		return false
	}
	st.Cursor = cursor
	return true
}

// Clear empties the field's used set and leaves its cursor alone
func (t *Tracker) Clear(field string) bool {
	st := t.lookup(field)
	if st == nil {
		return false
	}
	return st.clear()
}

// ClearAll empties every used set
func (t *Tracker) ClearAll() bool {
	changed := false
	for _, st := range t.fields {
		if st.clear() {
			changed = true
		}
	}
	return changed
}

// Fields returns the names of all tracked fields in sorted order
func (t *Tracker) Fields() []string {
	return sortedKeys(t.fields)
}

// Snapshot returns a deep copy of all field states
func (t *Tracker) Snapshot() map[string]FieldState {
	out := make(map[string]FieldState, len(t.fields))
	for field, st := range t.fields {
		out[field] = st.clone()
	}
	return out
}

// Restore replaces all field states with a deep copy of snapshot
func (t *Tracker) Restore(snapshot map[string]FieldState) {
	t.fields = make(map[string]*FieldState, len(snapshot))
	for field, st := range snapshot {
		c := st.clone()
		t.fields[field] = &c
	}
}
