package cser

import (
	"errors"
	"math"
	"math/big"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/rony4d/go-platform-drive/utils/fast"
)

func TestValues(t *testing.T) {
	require := require.New(t)

	var (
		u8    = []uint8{0, 1, 0xff}
		u16   = []uint16{0, 1, 0x100, math.MaxUint16}
		u32   = []uint32{0, 1, 0x10000, math.MaxUint32}
		u64   = []uint64{0, 1, 1 << 40, math.MaxUint64}
		u56   = []uint64{0, 1, maxU56}
		i64   = []int64{0, 1, -1, math.MinInt64, math.MaxInt64}
		flags = []bool{true, false, true}
		blobs = [][]byte{{}, {1, 2, 3}, make([]byte, 300)}
		texts = []string{"", "domain", "normalizedLabel"}
		ints  = []*big.Int{big.NewInt(0), big.NewInt(0xfffff)}
	)

	raw, err := MarshalBinaryAdapter(func(w *Writer) error {
		for _, v := range u8 {
			w.U8(v)
		}
		for _, v := range u16 {
			w.U16(v)
		}
		for _, v := range u32 {
			w.U32(v)
		}
		for _, v := range u64 {
			w.U64(v)
		}
		for _, v := range u56 {
			w.U56(v)
		}
		for _, v := range i64 {
			w.I64(v)
		}
		for _, v := range flags {
			w.Bool(v)
		}
		w.Len(len(blobs))
		for _, v := range blobs {
			w.SliceBytes(v)
		}
		for _, v := range texts {
			w.String(v)
		}
		for _, v := range ints {
			w.BigInt(v)
		}
		w.FixedBytes([]byte{9, 9})
		return nil
	})
	require.NoError(err)

	err = UnmarshalBinaryAdapter(raw, func(r *Reader) error {
		for _, v := range u8 {
			require.Equal(v, r.U8())
		}
		for _, v := range u16 {
			require.Equal(v, r.U16())
		}
		for _, v := range u32 {
			require.Equal(v, r.U32())
		}
		for _, v := range u64 {
			require.Equal(v, r.U64())
		}
		for _, v := range u56 {
			require.Equal(v, r.U56())
		}
		for _, v := range i64 {
			require.Equal(v, r.I64())
		}
		for _, v := range flags {
			require.Equal(v, r.Bool())
		}
		require.Equal(len(blobs), r.Len(10))
		for _, v := range blobs {
			require.Equal(v, r.SliceBytes(MaxAlloc))
		}
		for _, v := range texts {
			require.Equal(v, r.String(100))
		}
		for _, v := range ints {
			require.Equal(0, v.Cmp(r.BigInt()))
		}
		fixed := make([]byte, 2)
		r.FixedBytes(fixed)
		require.Equal([]byte{9, 9}, fixed)
		return nil
	})
	require.NoError(err)
}

func TestErrors(t *testing.T) {
	raw, err := MarshalBinaryAdapter(func(w *Writer) error {
		w.U64(math.MaxUint64)
		w.SliceBytes(make([]byte, 10))
		return nil
	})
	require.NoError(t, err)

	t.Run("marshal error", func(t *testing.T) {
		custom := errors.New("custom")
		_, err := MarshalBinaryAdapter(func(w *Writer) error { return custom })
		require.Equal(t, custom, err)
	})

	t.Run("nil input", func(t *testing.T) {
		err := UnmarshalBinaryAdapter(nil, func(r *Reader) error { return nil })
		require.Equal(t, ErrMalformedEncoding, err)
	})

	t.Run("unmarshal error", func(t *testing.T) {
		custom := errors.New("custom")
		err := UnmarshalBinaryAdapter(raw, func(r *Reader) error { return custom })
		require.Equal(t, custom, err)
	})

	t.Run("unread input", func(t *testing.T) {
		err := UnmarshalBinaryAdapter(raw, func(r *Reader) error {
			r.U64()
			return nil
		})
		require.Equal(t, ErrNonCanonicalEncoding, err)
	})

	t.Run("too large", func(t *testing.T) {
		err := UnmarshalBinaryAdapter(raw, func(r *Reader) error {
			r.U64()
			r.SliceBytes(5)
			return nil
		})
		require.Equal(t, ErrTooLargeAlloc, err)
	})

	t.Run("truncated slice", func(t *testing.T) {
		short, err := MarshalBinaryAdapter(func(w *Writer) error {
			w.U56(50)
			w.FixedBytes([]byte{1, 2, 3})
			return nil
		})
		require.NoError(t, err)
		err = UnmarshalBinaryAdapter(short, func(r *Reader) error {
			r.SliceBytes(100)
			return nil
		})
		require.Equal(t, ErrMalformedEncoding, err)
	})

	t.Run("read into the bit stream", func(t *testing.T) {
		tight, err := MarshalBinaryAdapter(func(w *Writer) error {
			w.Bool(true)
			w.Bool(true)
			w.FixedBytes([]byte{7})
			return nil
		})
		require.NoError(t, err)
		err = UnmarshalBinaryAdapter(tight, func(r *Reader) error {
			// the byte stream holds one byte, the bit stream follows it
			r.FixedBytes(make([]byte, 2))
			return nil
		})
		require.Equal(t, ErrMalformedEncoding, err)
	})

	t.Run("corrupted size", func(t *testing.T) {
		bbits, bbytes, err := split(raw)
		require.NoError(t, err)
		require.NotEmpty(t, bbits.Bytes)

		corrupted := fast.NewWriter(append([]byte(nil), bbytes...))
		size := fast.NewWriter(nil)
		writeUint64Compact(size, uint64(len(bbytes)+1))
		corrupted.Write(reversed(size.Bytes()))
		_, _, err = split(corrupted.Bytes())
		require.Equal(t, ErrMalformedEncoding, err)
	})
}

func TestNonCanonical(t *testing.T) {
	t.Run("padded integer", func(t *testing.T) {
		w := NewWriter()
		// two bytes for a value that fits in one
		w.BitsW.Write(3, 1)
		w.BytesW.Write([]byte{5, 0})
		raw := join(w.BitsW.Array, w.BytesW.Bytes())

		err := UnmarshalBinaryAdapter(raw, func(r *Reader) error {
			r.U64()
			return nil
		})
		require.Equal(t, ErrNonCanonicalEncoding, err)
	})

	t.Run("negative zero", func(t *testing.T) {
		w := NewWriter()
		w.Bool(true)
		w.U64(0)
		raw := join(w.BitsW.Array, w.BytesW.Bytes())

		err := UnmarshalBinaryAdapter(raw, func(r *Reader) error {
			r.I64()
			return nil
		})
		require.Equal(t, ErrNonCanonicalEncoding, err)
	})
}

func TestPaddedBytes(t *testing.T) {
	require.Equal(t, []byte{0, 0, 1}, PaddedBytes([]byte{1}, 3))
	require.Equal(t, []byte{1, 2}, PaddedBytes([]byte{1, 2}, 1))
}
