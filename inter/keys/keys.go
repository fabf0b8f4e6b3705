// Package keys describes identity public keys: their cryptographic type, the
// purpose they may be used for and the security level they grant.
package keys

import (
	"crypto/sha256"
	"errors"
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"golang.org/x/crypto/ripemd160"
)

// KeyID identifies a key within one identity.
type KeyID uint32

// KeyType is the cryptographic scheme of a key.
type KeyType uint8

const (
	ECDSASecp256k1 KeyType = 0
	BLS12381       KeyType = 1
	ECDSAHash160   KeyType = 2
)

// Purpose restricts which transitions a key may sign.
type Purpose uint8

const (
	Authentication Purpose = 0
	Encryption     Purpose = 1
	Decryption     Purpose = 2
	Transfer       Purpose = 3
	System         Purpose = 4
	Voting         Purpose = 5
	Owner          Purpose = 6
)

// SecurityLevel orders keys by trust. A lower value is more trusted.
type SecurityLevel uint8

const (
	Master   SecurityLevel = 0
	Critical SecurityLevel = 1
	High     SecurityLevel = 2
	Medium   SecurityLevel = 3
)

// Hash160Length is the size of a hash160 key digest.
const Hash160Length = 20

var (
	ErrEmptyKey           = errors.New("empty public key")
	ErrUnsupportedKeyType = errors.New("unsupported key type")
	ErrInvalidKeyData     = errors.New("invalid public key data")
)

// DataLength is the exact key data size expected for the type, or zero for
// unknown types.
func (t KeyType) DataLength() int {
	switch t {
	case ECDSASecp256k1:
		return 33
	case BLS12381:
		return 48
	case ECDSAHash160:
		return Hash160Length
	}
	return 0
}

func (t KeyType) String() string {
	switch t {
	case ECDSASecp256k1:
		return "ECDSA_SECP256K1"
	case BLS12381:
		return "BLS12_381"
	case ECDSAHash160:
		return "ECDSA_HASH160"
	}
	return fmt.Sprintf("KeyType(%d)", uint8(t))
}

func (p Purpose) String() string {
	switch p {
	case Authentication:
		return "AUTHENTICATION"
	case Encryption:
		return "ENCRYPTION"
	case Decryption:
		return "DECRYPTION"
	case Transfer:
		return "TRANSFER"
	case System:
		return "SYSTEM"
	case Voting:
		return "VOTING"
	case Owner:
		return "OWNER"
	}
	return fmt.Sprintf("Purpose(%d)", uint8(p))
}

func (l SecurityLevel) String() string {
	switch l {
	case Master:
		return "MASTER"
	case Critical:
		return "CRITICAL"
	case High:
		return "HIGH"
	case Medium:
		return "MEDIUM"
	}
	return fmt.Sprintf("SecurityLevel(%d)", uint8(l))
}

// PublicKey is a key registered on an identity.
type PublicKey struct {
	ID            KeyID
	Type          KeyType
	Purpose       Purpose
	SecurityLevel SecurityLevel
	ReadOnly      bool
	Data          []byte
	// DisabledAtMs is the block time the key was disabled at, zero while the
	// key is enabled.
	DisabledAtMs uint64
}

// IsDisabled reports whether the key was disabled.
func (k PublicKey) IsDisabled() bool {
	return k.DisabledAtMs != 0
}

// Empty reports whether the key carries no data.
func (k PublicKey) Empty() bool {
	return len(k.Data) == 0
}

// Bytes returns the type-prefixed key data.
func (k PublicKey) Bytes() []byte {
	return append([]byte{byte(k.Type)}, k.Data...)
}

// String returns the type-prefixed key data in hex.
func (k PublicKey) String() string {
	return "0x" + common.Bytes2Hex(k.Bytes())
}

// Copy returns a deep copy.
func (k PublicKey) Copy() PublicKey {
	cp := k
	cp.Data = common.CopyBytes(k.Data)
	return cp
}

// ValidateData checks that the key data has the size its type requires.
func (k PublicKey) ValidateData() error {
	expected := k.Type.DataLength()
	if expected == 0 {
		return ErrUnsupportedKeyType
	}
	if len(k.Data) != expected {
		return ErrInvalidKeyData
	}
	return nil
}

// Hash160 returns the ripemd160(sha256(data)) digest used by the unique key
// hash index. ECDSA_HASH160 keys already store it.
func (k PublicKey) Hash160() ([Hash160Length]byte, error) {
	var out [Hash160Length]byte
	switch k.Type {
	case ECDSAHash160:
		if len(k.Data) != Hash160Length {
			return out, ErrInvalidKeyData
		}
		copy(out[:], k.Data)
		return out, nil
	case ECDSASecp256k1, BLS12381:
		if len(k.Data) == 0 {
			return out, ErrEmptyKey
		}
		return Hash160(k.Data), nil
	}
	return out, ErrUnsupportedKeyType
}

// Hash160 computes ripemd160(sha256(data)).
func Hash160(data []byte) [Hash160Length]byte {
	sha := sha256.Sum256(data)
	h := ripemd160.New()
	h.Write(sha[:])
	var out [Hash160Length]byte
	copy(out[:], h.Sum(nil))
	return out
}

// FromBytes parses the type-prefixed form produced by Bytes.
func FromBytes(b []byte) (PublicKey, error) {
	if len(b) == 0 {
		return PublicKey{}, ErrEmptyKey
	}
	return PublicKey{Type: KeyType(b[0]), Data: common.CopyBytes(b[1:])}, nil
}

// FromString parses the hex form produced by String.
func FromString(str string) (PublicKey, error) {
	return FromBytes(common.FromHex(str))
}
