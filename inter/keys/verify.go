package keys

import (
	"bytes"
	"crypto/ecdsa"
	"errors"

	"github.com/ethereum/go-ethereum/crypto"
)

// SignatureLength is the size of a recoverable secp256k1 signature.
const SignatureLength = crypto.SignatureLength

// ErrSignatureMismatch is returned when a signature does not belong to the
// key it is checked against.
var ErrSignatureMismatch = errors.New("signature does not match public key")

// Sign produces a recoverable signature over a 32-byte digest.
func Sign(digest []byte, prv *ecdsa.PrivateKey) ([]byte, error) {
	return crypto.Sign(digest, prv)
}

// FromPrivateKey builds the key data of the given type for a private key.
func FromPrivateKey(prv *ecdsa.PrivateKey, keyType KeyType) ([]byte, error) {
	compressed := crypto.CompressPubkey(&prv.PublicKey)
	switch keyType {
	case ECDSASecp256k1:
		return compressed, nil
	case ECDSAHash160:
		h := Hash160(compressed)
		return h[:], nil
	}
	return nil, ErrUnsupportedKeyType
}

// VerifySignature checks a recoverable signature over digest against the
// key data of the given type.
func VerifySignature(keyType KeyType, data, digest, sig []byte) error {
	if len(sig) != SignatureLength {
		return ErrSignatureMismatch
	}
	pub, err := crypto.SigToPub(digest, sig)
	if err != nil {
		return ErrSignatureMismatch
	}
	compressed := crypto.CompressPubkey(pub)
	switch keyType {
	case ECDSASecp256k1:
		if !bytes.Equal(compressed, data) {
			return ErrSignatureMismatch
		}
	case ECDSAHash160:
		h := Hash160(compressed)
		if !bytes.Equal(h[:], data) {
			return ErrSignatureMismatch
		}
	default:
		return ErrUnsupportedKeyType
	}
	return nil
}

// VerifySignature checks sig against this key.
func (k PublicKey) VerifySignature(digest, sig []byte) error {
	return VerifySignature(k.Type, k.Data, digest, sig)
}
