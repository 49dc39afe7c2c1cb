package internal

import (
	"go.uber.org/zap"
)

// Rand is the source of randomness for pool draws.
// *math/rand/v2.Rand satisfies it.
type Rand interface {
	IntN(n int) int
}

// Selection is the outcome of drawing one value from a pool.
// It describes the state transition the draw implies without applying it.
type Selection struct {
	// Index is the pool index of the accepted value.
	Index int
	// Value is the accepted value.
	Value string
	// Exhausted reports that no eligible value was left and the used set
	// must be cleared before the value is accepted.
	Exhausted bool
	// NextCursor is the cursor after a sequential draw; -1 for random draws.
	NextCursor int
}

// Selector draws values from pools under a selection mode
type Selector struct {
	mode   SelectionMode
	rng    Rand
	logger *zap.Logger
}

// NewSelector creates a selector
func NewSelector(mode SelectionMode, rng Rand, logger *zap.Logger) *Selector {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Selector{
		mode:   mode,
		rng:    rng,
		logger: logger,
	}
}

// Select draws one value from a non-empty pool.
// isUsed reports values excluded from the draw; nil means nothing is excluded.
// cursor is only consulted in sequential mode.
func (s *Selector) Select(pool []string, isUsed func(string) bool, cursor int) Selection {
	if isUsed == nil {
		isUsed = func(string) bool { return false }
	}

	var sel Selection
	if s.mode == SelectionSequential {
		sel = SelectSequential(pool, isUsed, cursor)
	} else {
		sel = SelectRandom(pool, isUsed, s.rng)
	}

	if sel.Exhausted {
		s.logger.Debug(LogMsgPoolExhausted,
			zap.String(LogFieldMode, s.mode.String()),
			zap.Int(LogFieldPool, len(pool)))
	}
	return sel
}

// SelectRandom draws uniformly among the values not reported as used.
// When every value is used the draw is exhausted and is made over the full pool.
func SelectRandom(pool []string, isUsed func(string) bool, rng Rand) Selection {
	eligible := make([]int, 0, len(pool))
	for i, v := range pool {
		if !isUsed(v) {
			eligible = append(eligible, i)
		}
	}

	if len(eligible) == 0 {
		idx := rng.IntN(len(pool))
		return Selection{Index: idx, Value: pool[idx], Exhausted: true, NextCursor: -1}
	}

	idx := eligible[rng.IntN(len(eligible))]
	return Selection{Index: idx, Value: pool[idx], NextCursor: -1}
}

// SelectSequential scans forward from cursor, wrapping, for the first value
// not reported as used. When the scan comes back to its start the draw is
// exhausted and the value at the start index is accepted.
func SelectSequential(pool []string, isUsed func(string) bool, cursor int) Selection {
	n := len(pool)
	start := NormalizeCursor(cursor, n)

	for k := 0; k < n; k++ {
		idx := (start + k) % n
		if !isUsed(pool[idx]) {
			return Selection{Index: idx, Value: pool[idx], NextCursor: (idx + 1) % n}
		}
	}

	return Selection{Index: start, Value: pool[start], Exhausted: true, NextCursor: (start + 1) % n}
}

// NormalizeCursor maps cursor into [0, n). Returns 0 for empty pools.
func NormalizeCursor(cursor, n int) int {
	if n <= 0 {
		return 0
	}
	cursor %= n
	if cursor < 0 {
		cursor += n
	}
	return cursor
}
