// Package action holds the execution-ready form of validated transitions.
//
// An action carries only the semantic payload of a transition: what to
// create, change or remove. Signatures, wire versions and structural
// concerns are gone by the time an action exists.
package action

import (
	"github.com/rony4d/go-platform-drive/inter"
	"github.com/rony4d/go-platform-drive/inter/keys"
	"github.com/rony4d/go-platform-drive/transition"
	"github.com/rony4d/go-platform-drive/transition/contract"
	"github.com/rony4d/go-platform-drive/transition/document"
)

// Action is implemented by the types of this package.
type Action interface {
	// Payer is the identity whose balance pays the fees.
	Payer() inter.Identifier
	isAction()
}

// IdentityCreate registers an identity funded by an asset lock.
type IdentityCreate struct {
	ID                inter.Identifier
	PublicKeys        []keys.PublicKey
	Credits           inter.Credits
	AssetLockOutpoint [36]byte
}

// IdentityTopUp credits an identity from an asset lock.
type IdentityTopUp struct {
	ID                inter.Identifier
	Credits           inter.Credits
	AssetLockOutpoint [36]byte
}

// IdentityUpdate changes identity keys.
type IdentityUpdate struct {
	ID           inter.Identifier
	Revision     uint64
	Nonce        uint64
	AddKeys      []keys.PublicKey
	DisableKeys  []keys.KeyID
	DisabledAtMs uint64
}

// CreditTransfer moves credits between identities. CreateRecipient is set
// when the recipient does not exist yet.
type CreditTransfer struct {
	From            inter.Identifier
	To              inter.Identifier
	Amount          inter.Credits
	Nonce           uint64
	CreateRecipient bool
}

// CreditWithdrawal queues credits for withdrawal to the core chain.
type CreditWithdrawal struct {
	ID             inter.Identifier
	Amount         inter.Credits
	Nonce          uint64
	CoreFeePerByte uint32
	Pooling        transition.Pooling
	OutputScript   []byte
	CreatedAtMs    uint64
}

// MasternodeVote records or replaces a masternode's vote on a poll.
type MasternodeVote struct {
	Voter     inter.Identifier
	ProTxHash [32]byte
	PollID    inter.Identifier
	Choice    transition.VoteChoice
	Nonce     uint64
}

// ContractCreate stores a new contract and its document type trees.
type ContractCreate struct {
	Contract      *contract.DataContract
	IdentityNonce uint64
}

// ContractUpdate replaces a contract with its next version.
type ContractUpdate struct {
	Contract              *contract.DataContract
	Previous              *contract.DataContract
	IdentityContractNonce uint64
}

// Batch applies document and token steps of one owner atomically.
type Batch struct {
	Owner inter.Identifier
	Steps []Step
}

// Step is a DocumentStep or a TokenStep.
type Step interface {
	Contract() inter.Identifier
	Nonce() uint64
	isStep()
}

// DocumentStep moves a document from Previous to Next. Previous is nil on
// create and Next is nil on delete.
type DocumentStep struct {
	Kind                  transition.BatchAction
	ContractID            inter.Identifier
	DocumentType          *contract.DocumentType
	Previous              *document.Document
	Next                  *document.Document
	IdentityContractNonce uint64
	// Payment is set for purchases.
	Payment *Payment
}

// Payment moves credits from the buyer to the seller of a document.
type Payment struct {
	From   inter.Identifier
	To     inter.Identifier
	Amount inter.Credits
}

// TokenStep changes token state.
type TokenStep struct {
	Kind                  transition.BatchAction
	ContractID            inter.Identifier
	TokenID               inter.Identifier
	Config                contract.TokenConfiguration
	IdentityContractNonce uint64
	Amount                uint64
	// Account is the debited, frozen or unfrozen identity.
	Account inter.Identifier
	// Recipient is the credited identity.
	Recipient inter.Identifier
	Pause     bool
	MaxSupply uint64
}

func (a *IdentityCreate) Payer() inter.Identifier   { return a.ID }
func (a *IdentityTopUp) Payer() inter.Identifier    { return a.ID }
func (a *IdentityUpdate) Payer() inter.Identifier   { return a.ID }
func (a *CreditTransfer) Payer() inter.Identifier   { return a.From }
func (a *CreditWithdrawal) Payer() inter.Identifier { return a.ID }
func (a *MasternodeVote) Payer() inter.Identifier   { return a.Voter }
func (a *ContractCreate) Payer() inter.Identifier   { return a.Contract.OwnerID }
func (a *ContractUpdate) Payer() inter.Identifier   { return a.Contract.OwnerID }
func (a *Batch) Payer() inter.Identifier            { return a.Owner }

func (*IdentityCreate) isAction()   {}
func (*IdentityTopUp) isAction()    {}
func (*IdentityUpdate) isAction()   {}
func (*CreditTransfer) isAction()   {}
func (*CreditWithdrawal) isAction() {}
func (*MasternodeVote) isAction()   {}
func (*ContractCreate) isAction()   {}
func (*ContractUpdate) isAction()   {}
func (*Batch) isAction()            {}

func (s *DocumentStep) Contract() inter.Identifier { return s.ContractID }
func (s *DocumentStep) Nonce() uint64              { return s.IdentityContractNonce }
func (*DocumentStep) isStep()                      {}

func (s *TokenStep) Contract() inter.Identifier { return s.ContractID }
func (s *TokenStep) Nonce() uint64              { return s.IdentityContractNonce }
func (*TokenStep) isStep()                      {}

// AddedCredits is the amount an action brings onto the platform.
func AddedCredits(a Action) inter.Credits {
	switch a := a.(type) {
	case *IdentityCreate:
		return a.Credits
	case *IdentityTopUp:
		return a.Credits
	}
	return 0
}
