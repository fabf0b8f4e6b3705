package cser

import (
	"github.com/rony4d/go-platform-drive/utils/bits"
	"github.com/rony4d/go-platform-drive/utils/fast"
)

// Binary layout: [byte stream][bit stream][reversed compact size of the bit
// stream]. The size sits at the very end so a reader can locate the bit
// stream without a header.

// MarshalBinaryAdapter runs marshalCser against a fresh Writer and frames the
// two streams into one buffer.
func MarshalBinaryAdapter(marshalCser func(*Writer) error) ([]byte, error) {
	w := NewWriter()
	if err := marshalCser(w); err != nil {
		return nil, err
	}
	return join(w.BitsW.Array, w.BytesW.Bytes()), nil
}

// UnmarshalBinaryAdapter splits raw into the two streams and runs
// unmarshalCser. Panics raised by readers become ErrMalformedEncoding, or the
// panicking error when it is one of this package's errors. Unconsumed input
// is ErrNonCanonicalEncoding.
func UnmarshalBinaryAdapter(raw []byte, unmarshalCser func(reader *Reader) error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			switch r {
			case ErrNonCanonicalEncoding, ErrTooLargeAlloc:
				err = r.(error)
			default:
				err = ErrMalformedEncoding
			}
		}
	}()

	bbits, bbytes, err := split(raw)
	if err != nil {
		return err
	}
	r := &Reader{
		BitsR:  bits.NewReader(bbits),
		BytesR: fast.NewReader(bbytes),
	}
	if err := unmarshalCser(r); err != nil {
		return err
	}

	// at most the partially filled last byte of the bit stream may remain,
	// and its padding must be zero
	if r.BitsR.NonReadBytes() > 1 {
		return ErrNonCanonicalEncoding
	}
	if r.BitsR.Read(r.BitsR.NonReadBits()) != 0 {
		return ErrNonCanonicalEncoding
	}
	if !r.BytesR.Empty() {
		return ErrNonCanonicalEncoding
	}
	return nil
}

func join(bbits *bits.Array, bbytes []byte) []byte {
	body := fast.NewWriter(bbytes)
	body.Write(bbits.Bytes)

	size := fast.NewWriter(make([]byte, 0, 4))
	writeUint64Compact(size, uint64(len(bbits.Bytes)))
	body.Write(reversed(size.Bytes()))
	return body.Bytes()
}

func split(raw []byte) (*bits.Array, []byte, error) {
	sizeReader := fast.NewReader(reversed(tail(raw, 9)))
	bitsSize := readUint64Compact(sizeReader)

	raw = raw[:len(raw)-sizeReader.Position()]
	if uint64(len(raw)) < bitsSize {
		return nil, nil, ErrMalformedEncoding
	}
	cut := uint64(len(raw)) - bitsSize
	return &bits.Array{Bytes: raw[cut:]}, raw[:cut], nil
}

func tail(b []byte, n int) []byte {
	if len(b) > n {
		return b[len(b)-n:]
	}
	return b
}

func reversed(b []byte) []byte {
	out := make([]byte, len(b))
	for i, v := range b {
		out[len(b)-1-i] = v
	}
	return out
}
