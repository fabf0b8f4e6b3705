package bits

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestWriteRead(t *testing.T) {
	require := require.New(t)

	type field struct {
		size int
		v    uint
	}
	fields := []field{{1, 1}, {3, 5}, {8, 0xab}, {2, 0}, {13, 0x1abc}, {1, 0}, {7, 0x7f}}

	arr := &Array{}
	w := NewWriter(arr)
	total := 0
	for _, f := range fields {
		w.Write(f.size, f.v)
		total += f.size
	}
	require.Equal((total+7)/8, len(arr.Bytes))

	r := NewReader(arr)
	for _, f := range fields {
		require.Equal(f.v, r.View(f.size))
		require.Equal(f.v, r.Read(f.size))
	}
	require.Equal(len(arr.Bytes)*8-total, r.NonReadBits())
	require.Equal(0, int(r.Read(r.NonReadBits())))
}

func TestRandomRoundTrip(t *testing.T) {
	rnd := rand.New(rand.NewSource(1))
	sizes := make([]int, 500)
	vals := make([]uint, 500)

	arr := &Array{}
	w := NewWriter(arr)
	for i := range sizes {
		sizes[i] = 1 + rnd.Intn(16)
		vals[i] = uint(rnd.Intn(1 << uint(sizes[i])))
		w.Write(sizes[i], vals[i])
	}

	r := NewReader(arr)
	for i := range sizes {
		require.Equal(t, vals[i], r.Read(sizes[i]), "field %d", i)
	}
	require.LessOrEqual(t, r.NonReadBytes(), 1)
}

func TestFirstBitIsLowest(t *testing.T) {
	arr := &Array{}
	w := NewWriter(arr)
	w.Write(1, 1)
	w.Write(2, 2)
	require.Equal(t, []byte{0b101}, arr.Bytes)
}
