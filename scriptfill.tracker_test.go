package scriptfill

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTracker(t *testing.T) {
	t.Run("used set keeps insertion order without duplicates", func(t *testing.T) {
		tr := NewTracker()
		assert.True(t, tr.MarkUsed("f", "b"))
		assert.True(t, tr.MarkUsed("f", "a"))
		assert.False(t, tr.MarkUsed("f", "b"))

		assert.Equal(t, []string{"b", "a"}, tr.Used("f"))
		assert.True(t, tr.IsUsed("f", "a"))
		assert.False(t, tr.IsUsed("f", "c"))
		assert.False(t, tr.IsUsed("other", "a"))
	})

	t.Run("cursor normalized on read", func(t *testing.T) {
		tr := NewTracker()
		assert.Equal(t, 0, tr.Cursor("f", 3))

		assert.True(t, tr.SetCursor("f", 5))
		assert.False(t, tr.SetCursor("f", 5))
		assert.Equal(t, 2, tr.Cursor("f", 3))
		assert.Equal(t, 1, tr.Cursor("f", 2))
		assert.Equal(t, 0, tr.Cursor("f", 0))
	})

	t.Run("clear keeps cursor", func(t *testing.T) {
		tr := NewTracker()
		tr.MarkUsed("f", "a")
		tr.SetCursor("f", 1)

		assert.True(t, tr.Clear("f"))
		assert.False(t, tr.Clear("f"))
		assert.False(t, tr.Clear("missing"))
		assert.Empty(t, tr.Used("f"))
		assert.Equal(t, 1, tr.Cursor("f", 3))

		assert.True(t, tr.MarkUsed("f", "a"), "cleared values can be used again")
	})

	t.Run("clear all", func(t *testing.T) {
		tr := NewTracker()
		tr.MarkUsed("f", "a")
		tr.MarkUsed("g", "b")
		tr.SetCursor("h", 2)

		assert.True(t, tr.ClearAll())
		assert.False(t, tr.ClearAll())
		assert.Equal(t, []string{"f", "g", "h"}, tr.Fields())
	})

	t.Run("used returns a copy", func(t *testing.T) {
		tr := NewTracker()
		tr.MarkUsed("f", "a")
		used := tr.Used("f")
		used[0] = "changed"
		assert.Equal(t, []string{"a"}, tr.Used("f"))
	})
}

func TestTracker_SnapshotRestore(t *testing.T) {
	tr := NewTracker()
	tr.MarkUsed("材质", "棉")
	tr.MarkUsed("材质", "麻")
	tr.SetCursor("材质", 1)

	snap := tr.Snapshot()
	tr.MarkUsed("材质", "丝")
	assert.Equal(t, []string{"棉", "麻"}, snap["材质"].Used, "snapshot is detached")

	data, err := json.Marshal(snap)
	require.NoError(t, err)
	assert.JSONEq(t, `{"材质":{"used":["棉","麻"],"cursor":1}}`, string(data))

	var decoded map[string]FieldState
	require.NoError(t, json.Unmarshal(data, &decoded))

	restored := NewTracker()
	restored.Restore(decoded)
	assert.Equal(t, []string{"棉", "麻"}, restored.Used("材质"))
	assert.True(t, restored.IsUsed("材质", "麻"), "index rebuilt after restore")
	assert.Equal(t, 1, restored.Cursor("材质", 3))
}
