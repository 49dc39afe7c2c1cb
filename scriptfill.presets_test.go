package scriptfill

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/itsatony/go-cuserr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stepClock returns a time that advances one minute per call
func stepClock() func() time.Time {
	base := time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC)
	calls := 0
	return func() time.Time {
		calls++
		return base.Add(time.Duration(calls) * time.Minute)
	}
}

func TestPresetStore_Uniqueness(t *testing.T) {
	ctx := context.Background()
	presets := NewPresetStore(NewMemoryStore(), stepClock(), nil)

	_, err := presets.Save(ctx, "A", "t1")
	require.NoError(t, err)

	_, err = presets.Save(ctx, "A", "t2")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrPresetExists)

	var customErr *cuserr.CustomError
	require.True(t, errors.As(err, &customErr))
	name, ok := customErr.GetMetadata(MetaKeyPresetName)
	assert.True(t, ok)
	assert.Equal(t, "A", name)

	_, err = presets.Update(ctx, "A", "t2")
	require.NoError(t, err)

	p, err := presets.Get("A")
	require.NoError(t, err)
	assert.Equal(t, "t2", p.Template)
}

func TestPresetStore_NamesAreTrimmed(t *testing.T) {
	ctx := context.Background()
	presets := NewPresetStore(NewMemoryStore(), stepClock(), nil)

	_, err := presets.Save(ctx, " A ", "t1")
	require.NoError(t, err)

	p, err := presets.Get(" A ")
	require.NoError(t, err)
	assert.Equal(t, "A", p.Name)
	assert.True(t, presets.Has("A\t"))

	_, err = presets.Save(ctx, "A", "t2")
	assert.ErrorIs(t, err, ErrPresetExists)

	p, err = presets.Update(ctx, "  A", "t2")
	require.NoError(t, err)
	assert.Equal(t, "t2", p.Template)

	require.NoError(t, presets.Delete(ctx, "A  "))
	assert.Equal(t, 0, presets.Len())
}

func TestEngine_DeleteTrimmedActivePreset(t *testing.T) {
	ctx := context.Background()
	engine := newTestEngine(t)

	_, err := engine.SavePreset(ctx, "A", "{材质}")
	require.NoError(t, err)
	require.NoError(t, engine.UsePreset(ctx, " A"))
	assert.Equal(t, "A", engine.ActivePreset())

	require.NoError(t, engine.DeletePreset(ctx, "A "))
	assert.Empty(t, engine.ActivePreset())
}

func TestPresetStore_CRUD(t *testing.T) {
	ctx := context.Background()
	presets := NewPresetStore(NewMemoryStore(), stepClock(), nil)

	t.Run("save assigns id and timestamps", func(t *testing.T) {
		p, err := presets.Save(ctx, " 夏季 ", "{材质}")
		require.NoError(t, err)
		assert.Equal(t, "夏季", p.Name)
		_, err = uuid.Parse(p.ID)
		assert.NoError(t, err)
		assert.Equal(t, p.CreatedAt, p.UpdatedAt)
	})

	t.Run("empty name rejected", func(t *testing.T) {
		_, err := presets.Save(ctx, "  ", "x")
		require.Error(t, err)
		assert.Contains(t, err.Error(), ErrMsgEmptyPresetName)
		assert.ErrorIs(t, err, ErrEmptyPresetName)
	})

	t.Run("update bumps updated_at only", func(t *testing.T) {
		before, err := presets.Get("夏季")
		require.NoError(t, err)

		after, err := presets.Update(ctx, "夏季", "{颜色}")
		require.NoError(t, err)
		assert.Equal(t, before.ID, after.ID)
		assert.Equal(t, before.CreatedAt, after.CreatedAt)
		assert.True(t, after.UpdatedAt.After(before.UpdatedAt))
	})

	t.Run("list keeps insertion order", func(t *testing.T) {
		_, err := presets.Save(ctx, "B", "b")
		require.NoError(t, err)
		_, err = presets.Save(ctx, "A", "a")
		require.NoError(t, err)
		assert.Equal(t, []string{"夏季", "B", "A"}, presets.Names())
		assert.Equal(t, 3, presets.Len())
	})

	t.Run("returned presets are copies", func(t *testing.T) {
		list := presets.List()
		list[0].Template = "mutated"
		p, err := presets.Get("夏季")
		require.NoError(t, err)
		assert.Equal(t, "{颜色}", p.Template)
	})

	t.Run("not found errors", func(t *testing.T) {
		_, err := presets.Get("missing")
		assert.ErrorIs(t, err, ErrPresetNotFound)
		_, err = presets.Update(ctx, "missing", "x")
		assert.ErrorIs(t, err, ErrPresetNotFound)
		err = presets.Delete(ctx, "missing")
		assert.ErrorIs(t, err, ErrPresetNotFound)
	})

	t.Run("delete", func(t *testing.T) {
		require.NoError(t, presets.Delete(ctx, "B"))
		assert.False(t, presets.Has("B"))
		assert.Equal(t, []string{"夏季", "A"}, presets.Names())
	})
}

func TestPresetStore_Persistence(t *testing.T) {
	ctx := context.Background()
	store := newFlakyStore()

	presets := NewPresetStore(store, stepClock(), nil)
	_, err := presets.Save(ctx, "A", "a")
	require.NoError(t, err)
	_, err = presets.Save(ctx, "B", "b")
	require.NoError(t, err)

	t.Run("reload keeps order", func(t *testing.T) {
		reloaded := NewPresetStore(store, nil, nil)
		require.NoError(t, reloaded.Load(ctx))
		assert.Equal(t, []string{"A", "B"}, reloaded.Names())
	})

	t.Run("write failure keeps in-memory change", func(t *testing.T) {
		store.setFailSaves(true)
		defer store.setFailSaves(false)

		p, err := presets.Save(ctx, "C", "c")
		require.Error(t, err)
		assert.True(t, IsPersistenceError(err))
		require.NotNil(t, p)
		assert.True(t, presets.Has("C"))

		reloaded := NewPresetStore(store, nil, nil)
		require.NoError(t, reloaded.Load(ctx))
		assert.Equal(t, []string{"A", "B"}, reloaded.Names())
	})

	t.Run("missing document is empty", func(t *testing.T) {
		empty := NewPresetStore(NewMemoryStore(), nil, nil)
		require.NoError(t, empty.Load(ctx))
		assert.Equal(t, 0, empty.Len())
	})

	t.Run("corrupt document", func(t *testing.T) {
		bad := NewMemoryStore()
		require.NoError(t, bad.Save(ctx, DocKeyPresets, []byte("[")))
		s := NewPresetStore(bad, nil, nil)
		err := s.Load(ctx)
		assert.True(t, IsPersistenceError(err))
	})

	t.Run("duplicate names in document are dropped", func(t *testing.T) {
		dup := NewMemoryStore()
		require.NoError(t, dup.Save(ctx, DocKeyPresets,
			[]byte(`{"presets":[{"name":"A","template":"1"},{"name":"A","template":"2"},{"name":"","template":"3"}]}`)))
		s := NewPresetStore(dup, nil, nil)
		require.NoError(t, s.Load(ctx))
		p, err := s.Get("A")
		require.NoError(t, err)
		assert.Equal(t, "1", p.Template)
		assert.Equal(t, 1, s.Len())
	})
}
