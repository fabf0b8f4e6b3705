package validation

import (
	"github.com/rony4d/go-platform-drive/drive"
	"github.com/rony4d/go-platform-drive/drive/storage"
	"github.com/rony4d/go-platform-drive/transition"
	"github.com/rony4d/go-platform-drive/transition/consensuserr"
	"github.com/rony4d/go-platform-drive/transition/contract"
)

func contractCreateStateV0(v *Validator, tx *storage.Transaction, ctx *Context, st transition.StateTransition) ([]consensuserr.ConsensusError, error) {
	t := st.(*transition.DataContractCreate)
	if e, err := checkIdentityNonce(tx, ctx, t.Contract.OwnerID, t.IdentityNonce); e != nil || err != nil {
		return one(e), err
	}
	_, exists, err := v.fetchContract(tx, ctx, t.Contract.ID)
	if err != nil {
		return nil, err
	}
	if exists {
		return one(consensuserr.DataContractAlreadyPresentError{Contract: t.Contract.ID}), nil
	}
	return nil, nil
}

func contractUpdateStateV0(v *Validator, tx *storage.Transaction, ctx *Context, st transition.StateTransition) ([]consensuserr.ConsensusError, error) {
	t := st.(*transition.DataContractUpdate)
	next := t.Contract

	prev, exists, err := v.fetchContract(tx, ctx, next.ID)
	if err != nil {
		return nil, err
	}
	if !exists {
		return one(consensuserr.DataContractNotFoundError{Contract: next.ID}), nil
	}

	stored, err := fetchContractNonce(tx, ctx, next.OwnerID, next.ID)
	if err != nil {
		return nil, err
	}
	if t.IdentityContractNonce != stored+1 {
		return one(consensuserr.NonceOutOfBoundsError{
			Identity: next.OwnerID,
			Contract: next.ID,
			Expected: stored + 1,
			Provided: t.IdentityContractNonce,
		}), nil
	}

	switch {
	case prev.OwnerID != next.OwnerID:
		return one(consensuserr.IncompatibleDataContractError{Field: "owner"}), nil
	case prev.Config.Readonly:
		return one(consensuserr.DataContractIsReadonlyError{Contract: next.ID}), nil
	case next.Version != prev.Version+1:
		return one(consensuserr.InvalidDataContractVersionError{Expected: prev.Version + 1, Provided: next.Version}), nil
	}
	if docType, field, ok := contract.CompatibleUpdate(prev, next); !ok {
		return one(consensuserr.IncompatibleDataContractError{DocumentType: docType, Field: field}), nil
	}
	return nil, nil
}

func voteStateV0(v *Validator, tx *storage.Transaction, ctx *Context, st transition.StateTransition) ([]consensuserr.ConsensusError, error) {
	t := st.(*transition.MasternodeVote)
	if e, err := checkIdentityNonce(tx, ctx, t.VoterIdentityID, t.Nonce); e != nil || err != nil {
		return one(e), err
	}

	poll := t.Poll
	c, exists, err := v.fetchContract(tx, ctx, poll.ContractID)
	if err != nil {
		return nil, err
	}
	if !exists {
		return one(consensuserr.DataContractNotFoundError{Contract: poll.ContractID}), nil
	}
	dt, ok := c.DocumentType(poll.DocumentType)
	if !ok {
		return one(consensuserr.DocumentTypeNotFoundError{Contract: poll.ContractID, DocumentType: poll.DocumentType}), nil
	}
	idx, ok := dt.Index(poll.IndexName)
	if !ok || !idx.Unique || !idx.Contested || len(idx.Properties) != len(poll.IndexValues) {
		return one(consensuserr.VotePollNotAvailableError{
			Contract:     poll.ContractID,
			DocumentType: poll.DocumentType,
			Index:        poll.IndexName,
		}), nil
	}

	if t.Choice.Kind == transition.TowardsIdentity {
		exists, err := drive.IdentityExists(tx, t.Choice.Identity, &ctx.Cost)
		if err != nil {
			return nil, err
		}
		if !exists {
			return one(consensuserr.IdentityDoesNotExistError{Identity: t.Choice.Identity}), nil
		}
	}
	return nil, nil
}
