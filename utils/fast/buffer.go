// Package fast provides unchecked append-only and read-forward byte buffers
// for the transition codec. Reading past the end panics; the codec recovers
// at its decoding boundary and reports malformed input.
package fast

import "errors"

// Writer accumulates bytes.
type Writer struct {
	buf []byte
}

// NewWriter appends to bb.
func NewWriter(bb []byte) *Writer {
	return &Writer{buf: bb}
}

func (w *Writer) WriteByte(v byte) {
	w.buf = append(w.buf, v)
}

func (w *Writer) Write(v []byte) {
	w.buf = append(w.buf, v...)
}

func (w *Writer) Bytes() []byte { return w.buf }

// Len is the number of bytes written, including the initial content.
func (w *Writer) Len() int { return len(w.buf) }

// Reader consumes a byte slice front to back.
type Reader struct {
	buf []byte
	pos int
}

func NewReader(bb []byte) *Reader {
	return &Reader{buf: bb}
}

// ErrOverrun is the panic value of reads past the end.
var ErrOverrun = errors.New("fast: read past the end of the buffer")

// Read returns the next n bytes. The result aliases the buffer.
func (r *Reader) Read(n int) []byte {
	// slicing alone would reach into the capacity behind the end
	if n < 0 || n > r.Remaining() {
		panic(ErrOverrun)
	}
	res := r.buf[r.pos : r.pos+n]
	r.pos += n
	return res
}

func (r *Reader) ReadByte() byte {
	res := r.buf[r.pos]
	r.pos++
	return res
}

// Position is the number of consumed bytes.
func (r *Reader) Position() int { return r.pos }

// Remaining is the number of bytes not consumed yet.
func (r *Reader) Remaining() int { return len(r.buf) - r.pos }

func (r *Reader) Empty() bool { return r.Remaining() == 0 }

func (r *Reader) Bytes() []byte { return r.buf }
