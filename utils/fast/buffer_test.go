package fast

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestBuffer(t *testing.T) {
	require := require.New(t)

	w := NewWriter(make([]byte, 0, 4))
	w.WriteByte(1)
	w.Write([]byte{2, 3, 4, 5})
	require.Equal([]byte{1, 2, 3, 4, 5}, w.Bytes())
	require.Equal(5, w.Len())

	r := NewReader(w.Bytes())
	require.Equal(byte(1), r.ReadByte())
	require.Equal([]byte{2, 3}, r.Read(2))
	require.Equal(3, r.Position())
	require.Equal(2, r.Remaining())
	require.False(r.Empty())
	require.Equal([]byte{4, 5}, r.Read(2))
	require.True(r.Empty())
	require.Equal(w.Bytes(), r.Bytes())

	require.Panics(func() { r.ReadByte() })
	require.Panics(func() { r.Read(1) })
}

func TestReaderStopsAtLength(t *testing.T) {
	require := require.New(t)

	backing := []byte{1, 2, 3, 4, 5}
	r := NewReader(backing[:2])
	require.PanicsWithValue(ErrOverrun, func() { r.Read(3) })
	require.Equal(0, r.Position())
	require.Equal([]byte{1, 2}, r.Read(2))
	require.PanicsWithValue(ErrOverrun, func() { r.Read(1) })
	require.Panics(func() { r.ReadByte() })
	require.PanicsWithValue(ErrOverrun, func() { NewReader(backing).Read(-1) })
}
