package fees

import (
	"github.com/rony4d/go-platform-drive/inter/keys"
)

// OperationKind is an abstract unit of validation work.
type OperationKind uint8

const (
	SignatureVerification OperationKind = iota
	FetchIdentityBalance
	FetchIdentityKey
	FetchIdentityNonce
	FetchContract
	FetchDocument
	FetchTokenState
	ValidateKeyStructure
	VerifyAssetLockProof
	ValidateDocumentSchema
	// HashBytes counts bytes hashed outside the store.
	HashBytes
	// PayloadBytes counts bytes of the submitted transition.
	PayloadBytes
)

// ValidationOperation is one entry of a validation log.
type ValidationOperation struct {
	Kind OperationKind
	// KeyType selects the signature cost.
	KeyType keys.KeyType
	// Count multiplies the cost of the operation, or is a byte count for
	// HashBytes and PayloadBytes.
	Count uint64
}

// Log is the ordered validation work done for one transition. It is used
// to price the work and is never persisted.
type Log struct {
	ops []ValidationOperation
}

// Add appends count operations of a kind.
func (l *Log) Add(kind OperationKind, count uint64) {
	if count == 0 {
		return
	}
	l.ops = append(l.ops, ValidationOperation{Kind: kind, Count: count})
}

// AddSignature records a signature verification.
func (l *Log) AddSignature(keyType keys.KeyType) {
	l.ops = append(l.ops, ValidationOperation{Kind: SignatureVerification, KeyType: keyType, Count: 1})
}

// Operations returns the recorded work.
func (l *Log) Operations() []ValidationOperation {
	return l.ops
}

// Len is the number of entries.
func (l *Log) Len() int {
	return len(l.ops)
}
