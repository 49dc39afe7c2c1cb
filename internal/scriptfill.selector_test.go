package internal

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// seqRand returns scripted values, clamped to n
type seqRand struct {
	values []int
	calls  int
}

func (r *seqRand) IntN(n int) int {
	v := 0
	if r.calls < len(r.values) {
		v = r.values[r.calls]
	}
	r.calls++
	if v >= n {
		v = n - 1
	}
	return v
}

func usedSet(values ...string) func(string) bool {
	set := make(map[string]struct{}, len(values))
	for _, v := range values {
		set[v] = struct{}{}
	}
	return func(v string) bool {
		_, ok := set[v]
		return ok
	}
}

func TestSelectRandom(t *testing.T) {
	pool := []string{"a", "b", "c"}

	t.Run("draws among all when nothing is used", func(t *testing.T) {
		sel := SelectRandom(pool, usedSet(), &seqRand{values: []int{2}})
		assert.Equal(t, Selection{Index: 2, Value: "c", NextCursor: -1}, sel)
	})

	t.Run("draws only eligible values", func(t *testing.T) {
		rng := &seqRand{values: []int{0}}
		sel := SelectRandom(pool, usedSet("a"), rng)
		assert.Equal(t, "b", sel.Value)
		assert.Equal(t, 1, sel.Index)
		assert.False(t, sel.Exhausted)
	})

	t.Run("eligible subset is exact", func(t *testing.T) {
		for i := 0; i < 10; i++ {
			sel := SelectRandom(pool, usedSet("a", "c"), &seqRand{values: []int{i}})
			assert.Equal(t, "b", sel.Value)
		}
	})

	t.Run("exhausted draws from full pool", func(t *testing.T) {
		sel := SelectRandom(pool, usedSet("a", "b", "c"), &seqRand{values: []int{1}})
		assert.True(t, sel.Exhausted)
		assert.Equal(t, "b", sel.Value)
	})

	t.Run("duplicate values are excluded together", func(t *testing.T) {
		dup := []string{"x", "y", "x"}
		sel := SelectRandom(dup, usedSet("x"), &seqRand{values: []int{0}})
		assert.Equal(t, "y", sel.Value)
		assert.Equal(t, 1, sel.Index)
	})
}

func TestSelectSequential(t *testing.T) {
	pool := []string{"v0", "v1", "v2"}

	t.Run("takes value at cursor", func(t *testing.T) {
		sel := SelectSequential(pool, usedSet(), 1)
		assert.Equal(t, Selection{Index: 1, Value: "v1", NextCursor: 2}, sel)
	})

	t.Run("wraps cursor at pool end", func(t *testing.T) {
		sel := SelectSequential(pool, usedSet(), 2)
		assert.Equal(t, 0, sel.NextCursor)
	})

	t.Run("skips used values", func(t *testing.T) {
		sel := SelectSequential(pool, usedSet("v0", "v1"), 0)
		assert.Equal(t, "v2", sel.Value)
		assert.Equal(t, 0, sel.NextCursor)
	})

	t.Run("scan wraps to find unused value", func(t *testing.T) {
		sel := SelectSequential(pool, usedSet("v1", "v2"), 1)
		assert.Equal(t, "v0", sel.Value)
		assert.Equal(t, 1, sel.NextCursor)
		assert.False(t, sel.Exhausted)
	})

	t.Run("exhausted accepts start index", func(t *testing.T) {
		sel := SelectSequential(pool, usedSet("v0", "v1", "v2"), 2)
		assert.True(t, sel.Exhausted)
		assert.Equal(t, "v2", sel.Value)
		assert.Equal(t, 0, sel.NextCursor)
	})

	t.Run("out of range cursor is normalized", func(t *testing.T) {
		sel := SelectSequential(pool, usedSet(), 7)
		assert.Equal(t, "v1", sel.Value)

		sel = SelectSequential(pool, usedSet(), -1)
		assert.Equal(t, "v2", sel.Value)
	})
}

func TestNormalizeCursor(t *testing.T) {
	assert.Equal(t, 0, NormalizeCursor(5, 0))
	assert.Equal(t, 2, NormalizeCursor(2, 3))
	assert.Equal(t, 0, NormalizeCursor(3, 3))
	assert.Equal(t, 1, NormalizeCursor(-2, 3))
}

func TestSelector_Select(t *testing.T) {
	pool := []string{"a", "b"}

	t.Run("sequential mode uses cursor", func(t *testing.T) {
		s := NewSelector(SelectionSequential, &seqRand{}, zap.NewNop())
		sel := s.Select(pool, nil, 1)
		assert.Equal(t, "b", sel.Value)
		assert.Equal(t, 0, sel.NextCursor)
	})

	t.Run("random mode ignores cursor", func(t *testing.T) {
		s := NewSelector(SelectionRandom, &seqRand{values: []int{0}}, nil)
		sel := s.Select(pool, nil, 1)
		assert.Equal(t, "a", sel.Value)
		assert.Equal(t, -1, sel.NextCursor)
	})

	t.Run("exhaustion is reported", func(t *testing.T) {
		s := NewSelector(SelectionRandom, &seqRand{}, nil)
		sel := s.Select(pool, usedSet("a", "b"), 0)
		require.True(t, sel.Exhausted)
	})
}

func TestSelectionMode_String(t *testing.T) {
	assert.Equal(t, SelectionNameRandom, SelectionRandom.String())
	assert.Equal(t, SelectionNameSequential, SelectionSequential.String())
	assert.Equal(t, SelectionNameUnknown, SelectionMode(9).String())
}
