// Package bits packs small unsigned values into a byte array, least
// significant bit first.
package bits

type (
	// Array is the shared backing buffer of a Writer or Reader.
	Array struct {
		Bytes []byte
	}

	Writer struct {
		*Array
		bitOffset int
	}

	Reader struct {
		*Array
		byteOffset int
		bitOffset  int
	}
)

func NewWriter(arr *Array) *Writer {
	return &Writer{Array: arr}
}

func NewReader(arr *Array) *Reader {
	return &Reader{Array: arr}
}

// Write appends the lowest n bits of v.
func (a *Writer) Write(n int, v uint) {
	for n > 0 {
		if a.bitOffset == 0 {
			a.Bytes = append(a.Bytes, 0)
		}
		free := 8 - a.bitOffset
		chunk := n
		if chunk > free {
			chunk = free
		}
		part := v & (1<<uint(chunk) - 1)
		a.Bytes[len(a.Bytes)-1] |= byte(part << uint(a.bitOffset))

		a.bitOffset = (a.bitOffset + chunk) % 8
		v >>= uint(chunk)
		n -= chunk
	}
}

// Read consumes n bits.
func (a *Reader) Read(n int) uint {
	var (
		v     uint
		shift uint
	)
	for n > 0 {
		free := 8 - a.bitOffset
		chunk := n
		if chunk > free {
			chunk = free
		}
		cur := uint(a.Bytes[a.byteOffset]) >> uint(a.bitOffset)
		v |= (cur & (1<<uint(chunk) - 1)) << shift

		shift += uint(chunk)
		n -= chunk
		a.bitOffset += chunk
		if a.bitOffset == 8 {
			a.bitOffset = 0
			a.byteOffset++
		}
	}
	return v
}

// View reads n bits without consuming them.
func (a *Reader) View(n int) uint {
	cp := *a
	return cp.Read(n)
}

// NonReadBytes counts bytes not fully consumed yet.
func (a *Reader) NonReadBytes() int {
	return len(a.Bytes) - a.byteOffset
}

// NonReadBits counts bits not consumed yet.
func (a *Reader) NonReadBits() int {
	return a.NonReadBytes()*8 - a.bitOffset
}
