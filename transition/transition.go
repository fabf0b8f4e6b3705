// Package transition defines the closed set of state transitions clients
// submit, their version-prefixed wire format and their signing rules.
//
// Wire format: a 4-byte big-endian protocol version followed by a cser
// payload that starts with the transition type and the variant version.
// Transitions are immutable once decoded.
package transition

import (
	"fmt"

	"github.com/rony4d/go-platform-drive/inter"
	"github.com/rony4d/go-platform-drive/inter/keys"
	"github.com/rony4d/go-platform-drive/utils/cser"
)

// Type discriminates transition variants.
type Type uint8

const (
	DataContractCreateType       Type = 0
	BatchType                    Type = 1
	IdentityCreateType           Type = 2
	IdentityTopUpType            Type = 3
	DataContractUpdateType       Type = 4
	IdentityUpdateType           Type = 5
	IdentityCreditWithdrawalType Type = 6
	IdentityCreditTransferType   Type = 7
	MasternodeVoteType           Type = 8
)

func (t Type) String() string {
	switch t {
	case DataContractCreateType:
		return "DataContractCreate"
	case BatchType:
		return "Batch"
	case IdentityCreateType:
		return "IdentityCreate"
	case IdentityTopUpType:
		return "IdentityTopUp"
	case DataContractUpdateType:
		return "DataContractUpdate"
	case IdentityUpdateType:
		return "IdentityUpdate"
	case IdentityCreditWithdrawalType:
		return "IdentityCreditWithdrawal"
	case IdentityCreditTransferType:
		return "IdentityCreditTransfer"
	case MasternodeVoteType:
		return "MasternodeVote"
	}
	return fmt.Sprintf("Type(%d)", uint8(t))
}

// StateTransition is implemented by every variant of this package only.
type StateTransition interface {
	Type() Type
	// Owner is the identity the transition acts for and that pays its fees.
	Owner() inter.Identifier
	// SignerKeyID is the identity key that signed the transition. It
	// returns false for transitions signed by an asset lock key.
	SignerKeyID() (keys.KeyID, bool)
	Signature() []byte

	setSignature(sig []byte)
	encode(w *cser.Writer, withSignatures bool)
	decode(r *cser.Reader)
}

// Decoding limits.
const (
	maxSignatureLength = 96
	maxKeyDataLength   = 64
	maxNameLength      = 256
	maxScriptLength    = 64
	maxKeys            = 32
	maxItems           = 256
)

// Signed is embedded by identity-key signed variants.
type Signed struct {
	SignaturePublicKeyID keys.KeyID
	Sig                  []byte
}

func (s *Signed) SignerKeyID() (keys.KeyID, bool) { return s.SignaturePublicKeyID, true }
func (s *Signed) Signature() []byte               { return s.Sig }
func (s *Signed) setSignature(sig []byte)         { s.Sig = sig }

func (s *Signed) encodeSigned(w *cser.Writer, withSignatures bool) {
	w.U32(uint32(s.SignaturePublicKeyID))
	if withSignatures {
		w.SliceBytes(s.Sig)
	}
}

func (s *Signed) decodeSigned(r *cser.Reader) {
	s.SignaturePublicKeyID = keys.KeyID(r.U32())
	s.Sig = r.SliceBytes(maxSignatureLength)
}

// AssetLockProof proves credits were locked on the core chain. The core
// chain verification itself happens outside the execution core; here the
// proof is the locked outpoint, its credited amount and the hash160 of the
// one-time key that must sign the transition.
type AssetLockProof struct {
	Outpoint      [36]byte
	Amount        inter.Credits
	PublicKeyHash [keys.Hash160Length]byte
}

// IdentityID derives the identity created from this asset lock.
func (p AssetLockProof) IdentityID() inter.Identifier {
	return inter.DeriveIdentifier(p.Outpoint[:])
}

func (p *AssetLockProof) encode(w *cser.Writer) {
	w.FixedBytes(p.Outpoint[:])
	w.U64(uint64(p.Amount))
	w.FixedBytes(p.PublicKeyHash[:])
}

func (p *AssetLockProof) decode(r *cser.Reader) {
	r.FixedBytes(p.Outpoint[:])
	p.Amount = inter.Credits(r.U64())
	r.FixedBytes(p.PublicKeyHash[:])
}

// KeyInCreation is a key being added to an identity. Its signature proves
// possession of the private key.
type KeyInCreation struct {
	ID            keys.KeyID
	Type          keys.KeyType
	Purpose       keys.Purpose
	SecurityLevel keys.SecurityLevel
	ReadOnly      bool
	Data          []byte
	Sig           []byte
}

// PublicKey converts to the stored key form.
func (k KeyInCreation) PublicKey() keys.PublicKey {
	return keys.PublicKey{
		ID:            k.ID,
		Type:          k.Type,
		Purpose:       k.Purpose,
		SecurityLevel: k.SecurityLevel,
		ReadOnly:      k.ReadOnly,
		Data:          append([]byte(nil), k.Data...),
	}
}

func (k *KeyInCreation) encode(w *cser.Writer, withSignatures bool) {
	w.U32(uint32(k.ID))
	w.U8(uint8(k.Type))
	w.U8(uint8(k.Purpose))
	w.U8(uint8(k.SecurityLevel))
	w.Bool(k.ReadOnly)
	w.SliceBytes(k.Data)
	if withSignatures {
		w.SliceBytes(k.Sig)
	}
}

func (k *KeyInCreation) decode(r *cser.Reader) {
	k.ID = keys.KeyID(r.U32())
	k.Type = keys.KeyType(r.U8())
	k.Purpose = keys.Purpose(r.U8())
	k.SecurityLevel = keys.SecurityLevel(r.U8())
	k.ReadOnly = r.Bool()
	k.Data = r.SliceBytes(maxKeyDataLength)
	k.Sig = r.SliceBytes(maxSignatureLength)
}

func encodeKeys(w *cser.Writer, kk []KeyInCreation, withSignatures bool) {
	w.Len(len(kk))
	for i := range kk {
		kk[i].encode(w, withSignatures)
	}
}

func decodeKeys(r *cser.Reader) []KeyInCreation {
	kk := make([]KeyInCreation, r.Len(maxKeys))
	for i := range kk {
		kk[i].decode(r)
	}
	return kk
}

func writeID(w *cser.Writer, id inter.Identifier) {
	w.FixedBytes(id[:])
}

func readID(r *cser.Reader) (id inter.Identifier) {
	r.FixedBytes(id[:])
	return id
}
