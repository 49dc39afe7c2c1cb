package scriptfill

import (
	"errors"
	"testing"

	"github.com/itsatony/go-cuserr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestErrorConstructors(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		sentinel error
		msg      string
		metaKey  string
		metaVal  string
	}{
		{"preset exists", NewPresetExistsError("A"), ErrPresetExists, ErrMsgPresetExists, MetaKeyPresetName, "A"},
		{"preset not found", NewPresetNotFoundError("B"), ErrPresetNotFound, ErrMsgPresetNotFound, MetaKeyPresetName, "B"},
		{"invalid mode", NewInvalidMatchingModeError("shuffle"), ErrInvalidMatchingMode, ErrMsgInvalidMatchingMode, MetaKeyMode, "shuffle"},
		{"invalid span", NewInvalidSpanError(Span{Start: 2, End: 9, Marker: "材质"}, 4), ErrInvalidSpan, ErrMsgInvalidSpan, MetaKeyStart, "2"},
		{"unsupported format", NewUnsupportedFormatError("a.ods", ".ods"), ErrUnsupportedFormat, ErrMsgUnsupportedFormat, MetaKeyExtension, ".ods"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Error(t, tt.err)
			assert.Contains(t, tt.err.Error(), tt.msg)
			assert.ErrorIs(t, tt.err, tt.sentinel)

			var customErr *cuserr.CustomError
			require.True(t, errors.As(tt.err, &customErr))
			val, ok := customErr.GetMetadata(tt.metaKey)
			assert.True(t, ok)
			assert.Equal(t, tt.metaVal, val)
		})
	}
}

func TestPersistenceError(t *testing.T) {
	cause := errors.New("connection refused")
	err := NewPersistenceError(DocKeyPresets, cause)

	assert.True(t, IsPersistenceError(err))
	assert.ErrorIs(t, err, ErrPersistence)
	assert.ErrorIs(t, err, cause)
	assert.Contains(t, err.Error(), ErrMsgPersistenceFailed)

	assert.False(t, IsPersistenceError(cause))
	assert.False(t, IsPersistenceError(NewPresetNotFoundError("A")))
}
