package transition

import (
	"github.com/rony4d/go-platform-drive/inter"
	"github.com/rony4d/go-platform-drive/inter/keys"
	"github.com/rony4d/go-platform-drive/utils/cser"
)

// IdentityCreate funds a new identity from an asset lock.
type IdentityCreate struct {
	AssetLockProof AssetLockProof
	PublicKeys     []KeyInCreation
	Sig            []byte
}

func (t *IdentityCreate) Type() Type                      { return IdentityCreateType }
func (t *IdentityCreate) Owner() inter.Identifier         { return t.AssetLockProof.IdentityID() }
func (t *IdentityCreate) SignerKeyID() (keys.KeyID, bool) { return 0, false }
func (t *IdentityCreate) Signature() []byte               { return t.Sig }
func (t *IdentityCreate) setSignature(sig []byte)         { t.Sig = sig }

func (t *IdentityCreate) encode(w *cser.Writer, withSignatures bool) {
	t.AssetLockProof.encode(w)
	encodeKeys(w, t.PublicKeys, withSignatures)
	if withSignatures {
		w.SliceBytes(t.Sig)
	}
}

func (t *IdentityCreate) decode(r *cser.Reader) {
	t.AssetLockProof.decode(r)
	t.PublicKeys = decodeKeys(r)
	t.Sig = r.SliceBytes(maxSignatureLength)
}

// IdentityTopUp adds asset lock credits to an existing identity.
type IdentityTopUp struct {
	AssetLockProof AssetLockProof
	IdentityID     inter.Identifier
	Sig            []byte
}

func (t *IdentityTopUp) Type() Type                      { return IdentityTopUpType }
func (t *IdentityTopUp) Owner() inter.Identifier         { return t.IdentityID }
func (t *IdentityTopUp) SignerKeyID() (keys.KeyID, bool) { return 0, false }
func (t *IdentityTopUp) Signature() []byte               { return t.Sig }
func (t *IdentityTopUp) setSignature(sig []byte)         { t.Sig = sig }

func (t *IdentityTopUp) encode(w *cser.Writer, withSignatures bool) {
	t.AssetLockProof.encode(w)
	writeID(w, t.IdentityID)
	if withSignatures {
		w.SliceBytes(t.Sig)
	}
}

func (t *IdentityTopUp) decode(r *cser.Reader) {
	t.AssetLockProof.decode(r)
	t.IdentityID = readID(r)
	t.Sig = r.SliceBytes(maxSignatureLength)
}

// IdentityUpdate adds and disables keys. It bumps the identity revision.
type IdentityUpdate struct {
	IdentityID        inter.Identifier
	Revision          uint64
	Nonce             uint64
	AddPublicKeys     []KeyInCreation
	DisablePublicKeys []keys.KeyID
	Signed
}

func (t *IdentityUpdate) Type() Type              { return IdentityUpdateType }
func (t *IdentityUpdate) Owner() inter.Identifier { return t.IdentityID }

func (t *IdentityUpdate) encode(w *cser.Writer, withSignatures bool) {
	writeID(w, t.IdentityID)
	w.U64(t.Revision)
	w.U64(t.Nonce)
	encodeKeys(w, t.AddPublicKeys, withSignatures)
	w.Len(len(t.DisablePublicKeys))
	for _, id := range t.DisablePublicKeys {
		w.U32(uint32(id))
	}
	t.encodeSigned(w, withSignatures)
}

func (t *IdentityUpdate) decode(r *cser.Reader) {
	t.IdentityID = readID(r)
	t.Revision = r.U64()
	t.Nonce = r.U64()
	t.AddPublicKeys = decodeKeys(r)
	t.DisablePublicKeys = make([]keys.KeyID, r.Len(maxKeys))
	for i := range t.DisablePublicKeys {
		t.DisablePublicKeys[i] = keys.KeyID(r.U32())
	}
	t.decodeSigned(r)
}

// IdentityCreditTransfer moves credits between identities.
type IdentityCreditTransfer struct {
	IdentityID  inter.Identifier
	RecipientID inter.Identifier
	Amount      inter.Credits
	Nonce       uint64
	Signed
}

func (t *IdentityCreditTransfer) Type() Type              { return IdentityCreditTransferType }
func (t *IdentityCreditTransfer) Owner() inter.Identifier { return t.IdentityID }

func (t *IdentityCreditTransfer) encode(w *cser.Writer, withSignatures bool) {
	writeID(w, t.IdentityID)
	writeID(w, t.RecipientID)
	w.U64(uint64(t.Amount))
	w.U64(t.Nonce)
	t.encodeSigned(w, withSignatures)
}

func (t *IdentityCreditTransfer) decode(r *cser.Reader) {
	t.IdentityID = readID(r)
	t.RecipientID = readID(r)
	t.Amount = inter.Credits(r.U64())
	t.Nonce = r.U64()
	t.decodeSigned(r)
}

// Pooling is the withdrawal pooling preference.
type Pooling uint8

const (
	PoolingNever Pooling = iota
	PoolingIfAvailable
	PoolingStandard
)

// IdentityCreditWithdrawal removes credits from the platform towards a core
// chain output script.
type IdentityCreditWithdrawal struct {
	IdentityID     inter.Identifier
	Amount         inter.Credits
	CoreFeePerByte uint32
	Pooling        Pooling
	OutputScript   []byte
	Nonce          uint64
	Signed
}

func (t *IdentityCreditWithdrawal) Type() Type              { return IdentityCreditWithdrawalType }
func (t *IdentityCreditWithdrawal) Owner() inter.Identifier { return t.IdentityID }

func (t *IdentityCreditWithdrawal) encode(w *cser.Writer, withSignatures bool) {
	writeID(w, t.IdentityID)
	w.U64(uint64(t.Amount))
	w.U32(t.CoreFeePerByte)
	w.U8(uint8(t.Pooling))
	w.SliceBytes(t.OutputScript)
	w.U64(t.Nonce)
	t.encodeSigned(w, withSignatures)
}

func (t *IdentityCreditWithdrawal) decode(r *cser.Reader) {
	t.IdentityID = readID(r)
	t.Amount = inter.Credits(r.U64())
	t.CoreFeePerByte = r.U32()
	t.Pooling = Pooling(r.U8())
	t.OutputScript = r.SliceBytes(maxScriptLength)
	t.Nonce = r.U64()
	t.decodeSigned(r)
}
