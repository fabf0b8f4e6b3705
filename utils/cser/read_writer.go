// Package cser is a compact canonical serialization.
//
// A message is two streams: a bit stream holding booleans and integer size
// prefixes, and a byte stream holding the integer bytes and raw data. Every
// value has exactly one valid encoding; a reader that meets a non-minimal
// form fails with ErrNonCanonicalEncoding. Readers panic on malformed input,
// UnmarshalBinaryAdapter turns the panic into an error.
package cser

import (
	"errors"
	"math/big"

	"github.com/rony4d/go-platform-drive/utils/bits"
	"github.com/rony4d/go-platform-drive/utils/fast"
)

var (
	ErrNonCanonicalEncoding = errors.New("non canonical encoding")
	ErrMalformedEncoding    = errors.New("malformed encoding")
	ErrTooLargeAlloc        = errors.New("too large allocation")
)

// MaxAlloc bounds a single decoded allocation.
const MaxAlloc = 100 * 1024

const maxU56 = 1<<(8*7) - 1

type Writer struct {
	BitsW  *bits.Writer
	BytesW *fast.Writer
}

type Reader struct {
	BitsR  *bits.Reader
	BytesR *fast.Reader
}

func NewWriter() *Writer {
	return &Writer{
		BitsW:  bits.NewWriter(&bits.Array{Bytes: make([]byte, 0, 32)}),
		BytesW: fast.NewWriter(make([]byte, 0, 200)),
	}
}

// writeUint64Compact writes 7 bits per byte, least significant first. The
// high bit marks the last byte.
func writeUint64Compact(w *fast.Writer, v uint64) {
	for {
		chunk := byte(v & 0x7f)
		v >>= 7
		if v == 0 {
			w.WriteByte(chunk | 0x80)
			return
		}
		w.WriteByte(chunk)
	}
}

func readUint64Compact(r *fast.Reader) uint64 {
	var v uint64
	for i := 0; ; i++ {
		chunk := uint64(r.ReadByte())
		word := chunk & 0x7f
		v |= word << (i * 7)
		if chunk&0x80 != 0 {
			if i > 0 && word == 0 {
				panic(ErrNonCanonicalEncoding)
			}
			return v
		}
	}
}

// writeLittleEndian writes the minimal little-endian form of v, padded to at
// least minSize bytes, and returns the number of bytes written.
func writeLittleEndian(w *fast.Writer, v uint64, minSize int) (size int) {
	for size < minSize || v != 0 {
		w.WriteByte(byte(v))
		size++
		v >>= 8
	}
	return size
}

func readLittleEndian(r *fast.Reader, size int) uint64 {
	buf := r.Read(size)
	var v uint64
	for i, b := range buf {
		v |= uint64(b) << uint(8*i)
	}
	if size > 1 && buf[size-1] == 0 {
		panic(ErrNonCanonicalEncoding)
	}
	return v
}

// The byte count of an integer, minus minSize, goes to the bit stream in
// sizeBits bits; the bytes themselves go to the byte stream.
func (w *Writer) sizedUint(minSize, sizeBits int, v uint64) {
	size := writeLittleEndian(w.BytesW, v, minSize)
	w.BitsW.Write(sizeBits, uint(size-minSize))
}

func (r *Reader) sizedUint(minSize, sizeBits int) uint64 {
	size := int(r.BitsR.Read(sizeBits)) + minSize
	return readLittleEndian(r.BytesR, size)
}

func (w *Writer) U8(v uint8) { w.BytesW.WriteByte(v) }
func (r *Reader) U8() uint8  { return r.BytesR.ReadByte() }

func (w *Writer) U16(v uint16) { w.sizedUint(1, 1, uint64(v)) }
func (r *Reader) U16() uint16  { return uint16(r.sizedUint(1, 1)) }

func (w *Writer) U32(v uint32) { w.sizedUint(1, 2, uint64(v)) }
func (r *Reader) U32() uint32  { return uint32(r.sizedUint(1, 2)) }

func (w *Writer) U64(v uint64) { w.sizedUint(1, 3, v) }
func (r *Reader) U64() uint64  { return r.sizedUint(1, 3) }

// U56 encodes values below 2^56, zero takes no bytes.
func (w *Writer) U56(v uint64) {
	if v > maxU56 {
		panic("cser: U56 value too big")
	}
	w.sizedUint(0, 3, v)
}
func (r *Reader) U56() uint64 { return r.sizedUint(0, 3) }

// I64 is a sign bit followed by the magnitude. Negative zero is rejected.
func (w *Writer) I64(v int64) {
	w.Bool(v < 0)
	if v < 0 {
		w.U64(uint64(-v))
		return
	}
	w.U64(uint64(v))
}

func (r *Reader) I64() int64 {
	neg := r.Bool()
	abs := r.U64()
	if !neg {
		return int64(abs)
	}
	if abs == 0 {
		panic(ErrNonCanonicalEncoding)
	}
	return -int64(abs)
}

func (w *Writer) Bool(v bool) {
	var bit uint
	if v {
		bit = 1
	}
	w.BitsW.Write(1, bit)
}

func (r *Reader) Bool() bool { return r.BitsR.Read(1) != 0 }

// FixedBytes copies len(v) raw bytes.
func (w *Writer) FixedBytes(v []byte) { w.BytesW.Write(v) }
func (r *Reader) FixedBytes(v []byte) { copy(v, r.BytesR.Read(len(v))) }

// SliceBytes is a U56 length followed by the raw bytes.
func (w *Writer) SliceBytes(v []byte) {
	w.U56(uint64(len(v)))
	w.FixedBytes(v)
}

func (r *Reader) SliceBytes(maxLen int) []byte {
	size := r.U56()
	if size > uint64(maxLen) {
		panic(ErrTooLargeAlloc)
	}
	// a declared length longer than the input is truncated data
	if size > uint64(r.BytesR.Remaining()) {
		panic(ErrMalformedEncoding)
	}
	buf := make([]byte, size)
	r.FixedBytes(buf)
	return buf
}

// String is SliceBytes over UTF-8 text.
func (w *Writer) String(s string)          { w.SliceBytes([]byte(s)) }
func (r *Reader) String(maxLen int) string { return string(r.SliceBytes(maxLen)) }

// Len writes a collection length.
func (w *Writer) Len(n int) { w.U56(uint64(n)) }

// Len reads a collection length bounded by max.
func (r *Reader) Len(max int) int {
	n := r.U56()
	if n > uint64(max) {
		panic(ErrTooLargeAlloc)
	}
	return int(n)
}

// PaddedBytes left-pads b with zeros to at least n bytes.
func PaddedBytes(b []byte, n int) []byte {
	if len(b) >= n {
		return b
	}
	return append(make([]byte, n-len(b)), b...)
}

// BigInt encodes the magnitude of a non-negative integer.
func (w *Writer) BigInt(v *big.Int) {
	var raw []byte
	if v.Sign() != 0 {
		raw = v.Bytes()
	}
	w.SliceBytes(raw)
}

func (r *Reader) BigInt() *big.Int {
	raw := r.SliceBytes(512)
	if len(raw) != 0 && raw[0] == 0 {
		panic(ErrNonCanonicalEncoding)
	}
	return new(big.Int).SetBytes(raw)
}
