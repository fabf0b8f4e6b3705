package storage

import (
	"bytes"

	"github.com/Fantom-foundation/lachesis-base/common/bigendian"
)

// Path addresses a tree. Every segment is the key of a tree element inside
// the previous one. The empty path is the root.
type Path [][]byte

// MaxKeyLength bounds a single path segment or key.
const MaxKeyLength = 1<<16 - 1

// Child returns the path of a subtree.
func (p Path) Child(key []byte) Path {
	out := make(Path, len(p)+1)
	copy(out, p)
	out[len(p)] = key
	return out
}

// Parent splits the path into its parent and the last key. The root has no
// parent.
func (p Path) Parent() (Path, []byte, bool) {
	if len(p) == 0 {
		return nil, nil, false
	}
	return p[:len(p)-1], p[len(p)-1], true
}

// Equal compares paths.
func (p Path) Equal(o Path) bool {
	if len(p) != len(o) {
		return false
	}
	for i := range p {
		if !bytes.Equal(p[i], o[i]) {
			return false
		}
	}
	return true
}

// encodePath flattens a path into a store key prefix. Segments are length
// prefixed so different paths never share an encoding.
func encodePath(p Path) []byte {
	size := 0
	for _, seg := range p {
		size += 2 + len(seg)
	}
	out := make([]byte, 0, size)
	for _, seg := range p {
		out = appendSegment(out, seg)
	}
	return out
}

func appendSegment(dst, seg []byte) []byte {
	dst = append(dst, bigendian.Uint16ToBytes(uint16(len(seg)))...)
	return append(dst, seg...)
}

// storeKey is the flat key of an element.
func storeKey(p Path, key []byte) []byte {
	return appendSegment(encodePath(p), key)
}

// childKey returns the last segment of an encoded key if it is a direct
// child of the prefix.
func childKey(prefix, full []byte) ([]byte, bool) {
	rest := full[len(prefix):]
	if len(rest) < 2 {
		return nil, false
	}
	n := int(bigendian.BytesToUint16(rest[:2]))
	if len(rest) != 2+n {
		return nil, false
	}
	return rest[2:], true
}

func validKey(key []byte) bool {
	return len(key) <= MaxKeyLength
}
