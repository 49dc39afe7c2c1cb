package scriptfill

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewValueLibrary(t *testing.T) {
	t.Run("cleans values and keeps duplicates", func(t *testing.T) {
		lib := NewValueLibrary(nil, map[string][]string{
			"材质": {" 棉 ", "", "麻", "棉", "   "},
		})
		assert.Equal(t, []string{"棉", "麻", "棉"}, lib.Pool("材质"))
	})

	t.Run("drops fields without values", func(t *testing.T) {
		lib := NewValueLibrary(nil, map[string][]string{
			"空":  {"", " "},
			"材质": {"棉"},
		})
		assert.Equal(t, []string{"材质"}, lib.Fields())
		assert.False(t, lib.Has("空"))
		assert.Nil(t, lib.Pool("空"))
	})

	t.Run("order slice first then sorted remainder", func(t *testing.T) {
		lib := NewValueLibrary([]string{"c", "missing", "a", "c"}, map[string][]string{
			"a": {"1"},
			"b": {"2"},
			"c": {"3"},
			"d": {"4"},
		})
		assert.Equal(t, []string{"c", "a", "b", "d"}, lib.Fields())
		assert.Equal(t, 4, lib.Len())
	})

	t.Run("map is a copy", func(t *testing.T) {
		lib := NewValueLibrary(nil, map[string][]string{"a": {"1"}})
		m := lib.Map()
		m["a"][0] = "changed"
		assert.Equal(t, []string{"1"}, lib.Pool("a"))
	})

	t.Run("nil library is empty", func(t *testing.T) {
		var lib *ValueLibrary
		assert.Nil(t, lib.Pool("a"))
		assert.False(t, lib.Has("a"))
		assert.Equal(t, 0, lib.Len())
		assert.Empty(t, lib.Map())
	})
}

func TestActionLibrary(t *testing.T) {
	t.Run("defaults", func(t *testing.T) {
		lib := DefaultActionLibrary()
		assert.Equal(t, []string{"裤子", "上衣", "连衣裙", "外套"}, lib.ProductTypes())
		assert.Len(t, lib.Actions("外套"), 10)
		assert.Len(t, lib.Atmospheres(), 8)
	})

	t.Run("custom product types", func(t *testing.T) {
		lib := NewActionLibrary([]string{"卫衣", "空", "卫衣"}, map[string][]string{
			"卫衣": {"拉链", " "},
			"空":  {""},
		})
		assert.Equal(t, []string{"卫衣"}, lib.ProductTypes())
		assert.Equal(t, []string{"拉链"}, lib.Actions("卫衣"))
	})

	t.Run("unknown type falls back to built-in actions", func(t *testing.T) {
		lib := NewActionLibrary([]string{"卫衣"}, map[string][]string{"卫衣": {"拉链"}})
		assert.Equal(t, defaultActions["裤子"], lib.Actions("裤子"))
		assert.Empty(t, lib.Actions("帽子"))
	})

	t.Run("empty library falls back to built-in product types", func(t *testing.T) {
		lib := NewActionLibrary(nil, nil)
		assert.Equal(t, defaultProductTypes, lib.ProductTypes())
	})
}
