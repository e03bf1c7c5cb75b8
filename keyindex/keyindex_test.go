package keyindex

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/shbhmexe/questdb/cursor"
)

type stringKeyRow struct{ key string }

func (r stringKeyRow) Timestamp(int) int64 { return 0 }
func (r stringKeyRow) RowID() int64        { return 0 }
func (r stringKeyRow) IsNull(int) bool     { return false }
func (r stringKeyRow) Int64(int) int64     { return 0 }
func (r stringKeyRow) Float64(int) float64 { return 0 }
func (r stringKeyRow) String(int) string   { return r.key }
func (r stringKeyRow) Bool(int) bool       { return false }

type stringKeySerializer struct{}

func (stringKeySerializer) Write(row cursor.Row, dst *cursor.KeyBuilder) {
	dst.WriteString(row.String(0))
}

func TestStoreCreateValueOverwritesPriorInsertion(t *testing.T) {
	s := New()
	ser := stringKeySerializer{}

	h := s.WithKey(stringKeyRow{"k"}, ser)
	h.CreateValue().Set(0, 1)

	h = s.WithKey(stringKeyRow{"k"}, ser)
	h.CreateValue().Set(0, 2)

	h = s.WithKey(stringKeyRow{"k"}, ser)
	v, ok := h.FindValue()
	require.True(t, ok)
	require.Equal(t, int64(2), v.Get(0))
}

func TestStoreFindValueAbsentForUnknownKey(t *testing.T) {
	s := New()
	h := s.WithKey(stringKeyRow{"missing"}, stringKeySerializer{})
	_, ok := h.FindValue()
	require.False(t, ok)
}

func TestStoreClearRemovesAllEntries(t *testing.T) {
	s := New()
	ser := stringKeySerializer{}
	h := s.WithKey(stringKeyRow{"a"}, ser)
	h.CreateValue().Set(0, 1)

	s.Clear()

	h = s.WithKey(stringKeyRow{"a"}, ser)
	_, ok := h.FindValue()
	require.False(t, ok)
}

func TestStoreCloseThenReopen(t *testing.T) {
	s := New()
	ser := stringKeySerializer{}
	h := s.WithKey(stringKeyRow{"a"}, ser)
	h.CreateValue().Set(0, 1)

	require.NoError(t, s.Close())
	require.NoError(t, s.Reopen())

	h = s.WithKey(stringKeyRow{"a"}, ser)
	_, ok := h.FindValue()
	require.False(t, ok, "reopen should start from an empty index")
}

func TestShardedMatchesStoreSemantics(t *testing.T) {
	s := NewSharded(4)
	ser := stringKeySerializer{}

	for i, key := range []string{"a", "b", "c", "d", "e"} {
		h := s.WithKey(stringKeyRow{key}, ser)
		h.CreateValue().Set(0, int64(i))
	}

	for i, key := range []string{"a", "b", "c", "d", "e"} {
		h := s.WithKey(stringKeyRow{key}, ser)
		v, ok := h.FindValue()
		require.True(t, ok)
		require.Equal(t, int64(i), v.Get(0))
	}

	s.Clear()
	h := s.WithKey(stringKeyRow{"a"}, ser)
	_, ok := h.FindValue()
	require.False(t, ok)
}
