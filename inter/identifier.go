// Package inter defines the core value types shared by every layer of the
// platform: identifiers, credits, block metadata, epochs and fee results.
//
// The types here are deliberately small and copyable. Anything that is
// persisted is encoded with RLP, so fields use unsigned integers and fixed
// size byte arrays only.
package inter

import (
	"bytes"
	"crypto/sha256"
	"errors"

	"github.com/Fantom-foundation/lachesis-base/hash"
	"github.com/mr-tron/base58"
)

// IdentifierLength is the byte length of every platform identifier.
const IdentifierLength = 32

// ErrInvalidIdentifier is returned when a byte slice or string cannot be
// interpreted as an Identifier.
var ErrInvalidIdentifier = errors.New("invalid identifier")

// Identifier addresses identities, data contracts, documents, tokens and
// masternodes. Its canonical text form is base58.
type Identifier [IdentifierLength]byte

// ZeroIdentifier is the empty identifier.
var ZeroIdentifier Identifier

// BytesToIdentifier converts an exactly 32-byte slice.
func BytesToIdentifier(b []byte) (Identifier, error) {
	var id Identifier
	if len(b) != IdentifierLength {
		return id, ErrInvalidIdentifier
	}
	copy(id[:], b)
	return id, nil
}

// IdentifierFromString parses the base58 text form.
func IdentifierFromString(s string) (Identifier, error) {
	raw, err := base58.Decode(s)
	if err != nil {
		return Identifier{}, ErrInvalidIdentifier
	}
	return BytesToIdentifier(raw)
}

// MustIdentifierFromString is IdentifierFromString for constants and tests.
func MustIdentifierFromString(s string) Identifier {
	id, err := IdentifierFromString(s)
	if err != nil {
		panic(err)
	}
	return id
}

// DeriveIdentifier hashes the given parts with double SHA-256, the same way
// contract, document and identity ids are derived on the platform.
func DeriveIdentifier(parts ...[]byte) Identifier {
	h := sha256.New()
	for _, p := range parts {
		h.Write(p)
	}
	first := h.Sum(nil)
	return Identifier(sha256.Sum256(first))
}

// Bytes returns a copy of the raw bytes.
func (id Identifier) Bytes() []byte {
	return append([]byte(nil), id[:]...)
}

// Hash converts the identifier into a lachesis hash value.
func (id Identifier) Hash() hash.Hash {
	return hash.Hash(id)
}

// IsZero reports whether the identifier is unset.
func (id Identifier) IsZero() bool {
	return id == ZeroIdentifier
}

// Compare orders identifiers by their raw bytes.
func (id Identifier) Compare(other Identifier) int {
	return bytes.Compare(id[:], other[:])
}

// String returns the base58 form.
func (id Identifier) String() string {
	return base58.Encode(id[:])
}

// MarshalText implements encoding.TextMarshaler.
func (id Identifier) MarshalText() ([]byte, error) {
	return []byte(id.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (id *Identifier) UnmarshalText(input []byte) error {
	parsed, err := IdentifierFromString(string(input))
	if err != nil {
		return err
	}
	*id = parsed
	return nil
}
