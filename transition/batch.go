package transition

import (
	"fmt"

	"github.com/rony4d/go-platform-drive/inter"
	"github.com/rony4d/go-platform-drive/transition/contract"
	"github.com/rony4d/go-platform-drive/transition/document"
	"github.com/rony4d/go-platform-drive/utils/cser"
)

// Batch is an ordered group of document and token transitions of one
// owner. It is applied atomically.
type Batch struct {
	OwnerID     inter.Identifier
	Transitions []BatchedTransition
	Signed
}

func (t *Batch) Type() Type              { return BatchType }
func (t *Batch) Owner() inter.Identifier { return t.OwnerID }

// HasTokenTransitions reports whether any sub-transition targets a token.
func (t *Batch) HasTokenTransitions() bool {
	for _, sub := range t.Transitions {
		if _, ok := sub.(TokenTransition); ok {
			return true
		}
	}
	return false
}

func (t *Batch) encode(w *cser.Writer, withSignatures bool) {
	writeID(w, t.OwnerID)
	w.Len(len(t.Transitions))
	for _, sub := range t.Transitions {
		w.U8(uint8(sub.Action()))
		sub.encode(w)
	}
	t.encodeSigned(w, withSignatures)
}

func (t *Batch) decode(r *cser.Reader) {
	t.OwnerID = readID(r)
	t.Transitions = make([]BatchedTransition, r.Len(maxItems))
	for i := range t.Transitions {
		sub := newBatched(BatchAction(r.U8()))
		sub.decode(r)
		t.Transitions[i] = sub
	}
	t.decodeSigned(r)
}

// BatchAction discriminates batched transitions. Document actions come
// first, token actions start at TokenMintAction.
type BatchAction uint8

const (
	DocumentCreateAction BatchAction = iota
	DocumentReplaceAction
	DocumentDeleteAction
	DocumentTransferAction
	DocumentUpdatePriceAction
	DocumentPurchaseAction
)

const (
	TokenMintAction BatchAction = 16 + iota
	TokenBurnAction
	TokenFreezeAction
	TokenUnfreezeAction
	TokenTransferAction
	TokenEmergencyAction
	TokenConfigUpdateAction
)

func (a BatchAction) String() string {
	switch a {
	case DocumentCreateAction:
		return "create"
	case DocumentReplaceAction:
		return "replace"
	case DocumentDeleteAction:
		return "delete"
	case DocumentTransferAction:
		return "transfer"
	case DocumentUpdatePriceAction:
		return "updatePrice"
	case DocumentPurchaseAction:
		return "purchase"
	case TokenMintAction:
		return "mint"
	case TokenBurnAction:
		return "burn"
	case TokenFreezeAction:
		return "freeze"
	case TokenUnfreezeAction:
		return "unfreeze"
	case TokenTransferAction:
		return "tokenTransfer"
	case TokenEmergencyAction:
		return "emergencyAction"
	case TokenConfigUpdateAction:
		return "configUpdate"
	}
	return fmt.Sprintf("BatchAction(%d)", uint8(a))
}

// BatchedTransition is one step of a Batch.
type BatchedTransition interface {
	Action() BatchAction
	Contract() inter.Identifier
	Nonce() uint64

	encode(w *cser.Writer)
	decode(r *cser.Reader)
}

// DocumentTransition is a batched transition on a document.
type DocumentTransition interface {
	BatchedTransition
	Document() *DocumentBase
}

// TokenTransition is a batched transition on a token.
type TokenTransition interface {
	BatchedTransition
	Token() *TokenBase
}

type unknownAction struct{ action BatchAction }

func (u *unknownAction) Action() BatchAction        { return u.action }
func (u *unknownAction) Contract() inter.Identifier { return inter.Identifier{} }
func (u *unknownAction) Nonce() uint64              { return 0 }
func (u *unknownAction) encode(*cser.Writer)        {}
func (u *unknownAction) decode(*cser.Reader) {
	panic(fmt.Errorf("unknown batch action %d", u.action))
}

func newBatched(a BatchAction) BatchedTransition {
	switch a {
	case DocumentCreateAction:
		return new(DocumentCreate)
	case DocumentReplaceAction:
		return new(DocumentReplace)
	case DocumentDeleteAction:
		return new(DocumentDelete)
	case DocumentTransferAction:
		return new(DocumentTransfer)
	case DocumentUpdatePriceAction:
		return new(DocumentUpdatePrice)
	case DocumentPurchaseAction:
		return new(DocumentPurchase)
	case TokenMintAction:
		return new(TokenMint)
	case TokenBurnAction:
		return new(TokenBurn)
	case TokenFreezeAction:
		return new(TokenFreeze)
	case TokenUnfreezeAction:
		return new(TokenUnfreeze)
	case TokenTransferAction:
		return new(TokenTransfer)
	case TokenEmergencyAction:
		return new(TokenEmergency)
	case TokenConfigUpdateAction:
		return new(TokenConfigUpdate)
	}
	return &unknownAction{a}
}

// DocumentBase is shared by every document transition.
type DocumentBase struct {
	ID                    inter.Identifier
	ContractID            inter.Identifier
	DocumentType          string
	IdentityContractNonce uint64
}

func (b *DocumentBase) Contract() inter.Identifier { return b.ContractID }
func (b *DocumentBase) Nonce() uint64              { return b.IdentityContractNonce }
func (b *DocumentBase) Document() *DocumentBase    { return b }

func (b *DocumentBase) encodeBase(w *cser.Writer) {
	writeID(w, b.ID)
	writeID(w, b.ContractID)
	w.String(b.DocumentType)
	w.U64(b.IdentityContractNonce)
}

func (b *DocumentBase) decodeBase(r *cser.Reader) {
	b.ID = readID(r)
	b.ContractID = readID(r)
	b.DocumentType = r.String(maxNameLength)
	b.IdentityContractNonce = r.U64()
}

func encodeProperties(w *cser.Writer, props []document.Property) {
	w.Len(len(props))
	for _, p := range props {
		w.String(p.Name)
		w.SliceBytes(p.Value)
	}
}

func decodeProperties(r *cser.Reader) []document.Property {
	props := make([]document.Property, r.Len(maxItems))
	for i := range props {
		props[i].Name = r.String(maxNameLength)
		props[i].Value = r.SliceBytes(contract.DefaultMaxLength * 16)
	}
	return props
}

// DocumentCreate creates a document. ID must equal
// document.GenerateID(contract, owner, type, entropy).
type DocumentCreate struct {
	DocumentBase
	Entropy    [32]byte
	Properties []document.Property
	// Price is non-zero to list the document for sale on creation.
	Price inter.Credits
}

func (d *DocumentCreate) Action() BatchAction { return DocumentCreateAction }

func (d *DocumentCreate) encode(w *cser.Writer) {
	d.encodeBase(w)
	w.FixedBytes(d.Entropy[:])
	encodeProperties(w, d.Properties)
	w.U64(uint64(d.Price))
}

func (d *DocumentCreate) decode(r *cser.Reader) {
	d.decodeBase(r)
	r.FixedBytes(d.Entropy[:])
	d.Properties = decodeProperties(r)
	d.Price = inter.Credits(r.U64())
}

// DocumentReplace replaces document properties. Revision is the new
// revision.
type DocumentReplace struct {
	DocumentBase
	Revision   uint64
	Properties []document.Property
}

func (d *DocumentReplace) Action() BatchAction { return DocumentReplaceAction }

func (d *DocumentReplace) encode(w *cser.Writer) {
	d.encodeBase(w)
	w.U64(d.Revision)
	encodeProperties(w, d.Properties)
}

func (d *DocumentReplace) decode(r *cser.Reader) {
	d.decodeBase(r)
	d.Revision = r.U64()
	d.Properties = decodeProperties(r)
}

type DocumentDelete struct {
	DocumentBase
}

func (d *DocumentDelete) Action() BatchAction   { return DocumentDeleteAction }
func (d *DocumentDelete) encode(w *cser.Writer) { d.encodeBase(w) }
func (d *DocumentDelete) decode(r *cser.Reader) { d.decodeBase(r) }

// DocumentTransfer gives a document to another identity.
type DocumentTransfer struct {
	DocumentBase
	Revision  uint64
	Recipient inter.Identifier
}

func (d *DocumentTransfer) Action() BatchAction { return DocumentTransferAction }

func (d *DocumentTransfer) encode(w *cser.Writer) {
	d.encodeBase(w)
	w.U64(d.Revision)
	writeID(w, d.Recipient)
}

func (d *DocumentTransfer) decode(r *cser.Reader) {
	d.decodeBase(r)
	d.Revision = r.U64()
	d.Recipient = readID(r)
}

// DocumentUpdatePrice lists a document for sale, or delists it with a zero
// price.
type DocumentUpdatePrice struct {
	DocumentBase
	Revision uint64
	Price    inter.Credits
}

func (d *DocumentUpdatePrice) Action() BatchAction { return DocumentUpdatePriceAction }

func (d *DocumentUpdatePrice) encode(w *cser.Writer) {
	d.encodeBase(w)
	w.U64(d.Revision)
	w.U64(uint64(d.Price))
}

func (d *DocumentUpdatePrice) decode(r *cser.Reader) {
	d.decodeBase(r)
	d.Revision = r.U64()
	d.Price = inter.Credits(r.U64())
}

// DocumentPurchase buys a listed document at its price.
type DocumentPurchase struct {
	DocumentBase
	Revision uint64
	Price    inter.Credits
}

func (d *DocumentPurchase) Action() BatchAction { return DocumentPurchaseAction }

func (d *DocumentPurchase) encode(w *cser.Writer) {
	d.encodeBase(w)
	w.U64(d.Revision)
	w.U64(uint64(d.Price))
}

func (d *DocumentPurchase) decode(r *cser.Reader) {
	d.decodeBase(r)
	d.Revision = r.U64()
	d.Price = inter.Credits(r.U64())
}

// TokenBase is shared by every token transition.
type TokenBase struct {
	ContractID            inter.Identifier
	TokenPosition         uint16
	IdentityContractNonce uint64
}

func (b *TokenBase) Contract() inter.Identifier { return b.ContractID }
func (b *TokenBase) Nonce() uint64              { return b.IdentityContractNonce }
func (b *TokenBase) Token() *TokenBase          { return b }

// TokenID derives the token addressed by the transition.
func (b *TokenBase) TokenID() inter.Identifier {
	return contract.TokenID(b.ContractID, b.TokenPosition)
}

func (b *TokenBase) encodeBase(w *cser.Writer) {
	writeID(w, b.ContractID)
	w.U16(b.TokenPosition)
	w.U64(b.IdentityContractNonce)
}

func (b *TokenBase) decodeBase(r *cser.Reader) {
	b.ContractID = readID(r)
	b.TokenPosition = r.U16()
	b.IdentityContractNonce = r.U64()
}

// TokenMint issues tokens to Recipient. A zero recipient mints to the
// signer.
type TokenMint struct {
	TokenBase
	Amount    uint64
	Recipient inter.Identifier
}

func (t *TokenMint) Action() BatchAction { return TokenMintAction }

func (t *TokenMint) encode(w *cser.Writer) {
	t.encodeBase(w)
	w.U64(t.Amount)
	writeID(w, t.Recipient)
}

func (t *TokenMint) decode(r *cser.Reader) {
	t.decodeBase(r)
	t.Amount = r.U64()
	t.Recipient = readID(r)
}

type TokenBurn struct {
	TokenBase
	Amount uint64
}

func (t *TokenBurn) Action() BatchAction { return TokenBurnAction }

func (t *TokenBurn) encode(w *cser.Writer) {
	t.encodeBase(w)
	w.U64(t.Amount)
}

func (t *TokenBurn) decode(r *cser.Reader) {
	t.decodeBase(r)
	t.Amount = r.U64()
}

type TokenFreeze struct {
	TokenBase
	Identity inter.Identifier
}

func (t *TokenFreeze) Action() BatchAction { return TokenFreezeAction }

func (t *TokenFreeze) encode(w *cser.Writer) {
	t.encodeBase(w)
	writeID(w, t.Identity)
}

func (t *TokenFreeze) decode(r *cser.Reader) {
	t.decodeBase(r)
	t.Identity = readID(r)
}

type TokenUnfreeze struct {
	TokenBase
	Identity inter.Identifier
}

func (t *TokenUnfreeze) Action() BatchAction { return TokenUnfreezeAction }

func (t *TokenUnfreeze) encode(w *cser.Writer) {
	t.encodeBase(w)
	writeID(w, t.Identity)
}

func (t *TokenUnfreeze) decode(r *cser.Reader) {
	t.decodeBase(r)
	t.Identity = readID(r)
}

type TokenTransfer struct {
	TokenBase
	Amount    uint64
	Recipient inter.Identifier
}

func (t *TokenTransfer) Action() BatchAction { return TokenTransferAction }

func (t *TokenTransfer) encode(w *cser.Writer) {
	t.encodeBase(w)
	w.U64(t.Amount)
	writeID(w, t.Recipient)
}

func (t *TokenTransfer) decode(r *cser.Reader) {
	t.decodeBase(r)
	t.Amount = r.U64()
	t.Recipient = readID(r)
}

// TokenEmergency pauses or resumes all transfers of a token.
type TokenEmergency struct {
	TokenBase
	Pause bool
}

func (t *TokenEmergency) Action() BatchAction { return TokenEmergencyAction }

func (t *TokenEmergency) encode(w *cser.Writer) {
	t.encodeBase(w)
	w.Bool(t.Pause)
}

func (t *TokenEmergency) decode(r *cser.Reader) {
	t.decodeBase(r)
	t.Pause = r.Bool()
}

// TokenConfigUpdate changes the max supply. Zero removes the cap.
type TokenConfigUpdate struct {
	TokenBase
	MaxSupply uint64
}

func (t *TokenConfigUpdate) Action() BatchAction { return TokenConfigUpdateAction }

func (t *TokenConfigUpdate) encode(w *cser.Writer) {
	t.encodeBase(w)
	w.U64(t.MaxSupply)
}

func (t *TokenConfigUpdate) decode(r *cser.Reader) {
	t.decodeBase(r)
	t.MaxSupply = r.U64()
}
