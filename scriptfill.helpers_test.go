package scriptfill

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
)

// scriptedRand returns queued values (clamped to n-1), then zeros
type scriptedRand struct {
	values []int
}

func (r *scriptedRand) IntN(n int) int {
	if len(r.values) == 0 {
		return 0
	}
	v := r.values[0]
	r.values = r.values[1:]
	if v >= n {
		return n - 1
	}
	return v
}

var errDiskFull = errors.New("disk full")

// flakyStore wraps a MemoryStore and fails writes while failSaves is set
type flakyStore struct {
	*MemoryStore

	mu        sync.Mutex
	failSaves bool
	failLoads bool
	saves     int
}

func newFlakyStore() *flakyStore {
	return &flakyStore{MemoryStore: NewMemoryStore()}
}

func (s *flakyStore) setFailSaves(fail bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failSaves = fail
}

func (s *flakyStore) saveCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.saves
}

func (s *flakyStore) Save(ctx context.Context, key string, data []byte) error {
	s.mu.Lock()
	fail := s.failSaves
	if !fail {
		s.saves++
	}
	s.mu.Unlock()

	if fail {
		return &StorageError{Message: ErrMsgWriteDocument, Name: key, Cause: errDiskFull}
	}
	return s.MemoryStore.Save(ctx, key, data)
}

func (s *flakyStore) Load(ctx context.Context, key string) ([]byte, error) {
	s.mu.Lock()
	fail := s.failLoads
	s.mu.Unlock()

	if fail {
		return nil, &StorageError{Message: ErrMsgReadDocument, Name: key, Cause: errDiskFull}
	}
	return s.MemoryStore.Load(ctx, key)
}

func materialLibrary() *ValueLibrary {
	return NewValueLibrary([]string{"材质", "颜色"}, map[string][]string{
		"材质": {"棉", "麻"},
		"颜色": {"红", "蓝", "白"},
	})
}

func newTestEngine(t *testing.T, opts ...Option) *Engine {
	t.Helper()
	base := []Option{
		WithRand(&scriptedRand{}),
		WithLibrary(materialLibrary()),
	}
	engine, err := New(append(base, opts...)...)
	require.NoError(t, err)
	return engine
}
