package validation

import (
	"github.com/rony4d/go-platform-drive/drive"
	"github.com/rony4d/go-platform-drive/drive/fees"
	"github.com/rony4d/go-platform-drive/drive/storage"
	"github.com/rony4d/go-platform-drive/inter/keys"
	"github.com/rony4d/go-platform-drive/transition"
	"github.com/rony4d/go-platform-drive/transition/consensuserr"
)

func identityCreateStateV0(v *Validator, tx *storage.Transaction, ctx *Context, st transition.StateTransition) ([]consensuserr.ConsensusError, error) {
	t := st.(*transition.IdentityCreate)
	if e, err := assetLockUnspent(tx, ctx, &t.AssetLockProof); e != nil || err != nil {
		return one(e), err
	}
	id := t.AssetLockProof.IdentityID()
	exists, err := drive.IdentityExists(tx, id, &ctx.Cost)
	if err != nil {
		return nil, err
	}
	if exists {
		return one(consensuserr.IdentityAlreadyExistsError{Identity: id}), nil
	}
	return registeredKeys(tx, ctx, t.PublicKeys)
}

func identityTopUpStateV0(v *Validator, tx *storage.Transaction, ctx *Context, st transition.StateTransition) ([]consensuserr.ConsensusError, error) {
	t := st.(*transition.IdentityTopUp)
	if e, err := assetLockUnspent(tx, ctx, &t.AssetLockProof); e != nil || err != nil {
		return one(e), err
	}
	exists, err := drive.IdentityExists(tx, t.IdentityID, &ctx.Cost)
	if err != nil {
		return nil, err
	}
	if !exists {
		return one(consensuserr.IdentityDoesNotExistError{Identity: t.IdentityID}), nil
	}
	return nil, nil
}

func assetLockUnspent(tx *storage.Transaction, ctx *Context, proof *transition.AssetLockProof) (consensuserr.ConsensusError, error) {
	spent, err := drive.IsAssetLockSpent(tx, proof.Outpoint[:], &ctx.Cost)
	if err != nil {
		return nil, err
	}
	if spent {
		return consensuserr.AssetLockAlreadySpentError{Outpoint: proof.Outpoint[:]}, nil
	}
	return nil, nil
}

// registeredKeys rejects keys whose hash is already registered to any
// identity.
func registeredKeys(tx *storage.Transaction, ctx *Context, created []transition.KeyInCreation) ([]consensuserr.ConsensusError, error) {
	var taken []keys.KeyID
	for _, k := range created {
		h, err := k.PublicKey().Hash160()
		if err != nil {
			// malformed data is rejected by structure validation
			continue
		}
		_, found, err := drive.FetchIdentityByKeyHash(tx, h, &ctx.Cost)
		if err != nil {
			return nil, err
		}
		if found {
			taken = append(taken, k.ID)
		}
	}
	if len(taken) > 0 {
		return one(consensuserr.DuplicatedIdentityPublicKeyStateError{IDs: taken}), nil
	}
	return nil, nil
}

func identityUpdateStateV0(v *Validator, tx *storage.Transaction, ctx *Context, st transition.StateTransition) ([]consensuserr.ConsensusError, error) {
	t := st.(*transition.IdentityUpdate)
	if e, err := checkIdentityNonce(tx, ctx, t.IdentityID, t.Nonce); e != nil || err != nil {
		return one(e), err
	}

	revision, _, err := drive.FetchIdentityRevision(tx, t.IdentityID, &ctx.Cost)
	if err != nil {
		return nil, err
	}
	if t.Revision != revision+1 {
		return one(consensuserr.InvalidIdentityRevisionError{Identity: t.IdentityID, Current: revision, Provided: t.Revision}), nil
	}

	var errs []consensuserr.ConsensusError
	var missing []keys.KeyID
	for _, id := range t.DisablePublicKeys {
		ctx.Log.Add(fees.FetchIdentityKey, 1)
		k, found, err := drive.FetchIdentityKey(tx, t.IdentityID, id, &ctx.Cost)
		if err != nil {
			return nil, err
		}
		switch {
		case !found:
			missing = append(missing, id)
		case k.SecurityLevel == keys.Master || k.IsDisabled():
			errs = append(errs, consensuserr.KeyCannotBeDisabledError{ID: id})
		}
	}
	if len(missing) > 0 {
		errs = append(errs, consensuserr.MissingIdentityPublicKeyIDsError{IDs: missing})
	}

	var reused []keys.KeyID
	for _, k := range t.AddPublicKeys {
		_, found, err := drive.FetchIdentityKey(tx, t.IdentityID, k.ID, &ctx.Cost)
		if err != nil {
			return nil, err
		}
		if found {
			reused = append(reused, k.ID)
		}
	}
	if len(reused) > 0 {
		errs = append(errs, consensuserr.DuplicatedIdentityPublicKeyIDError{IDs: reused})
	}

	taken, err := registeredKeys(tx, ctx, t.AddPublicKeys)
	if err != nil {
		return nil, err
	}
	return append(errs, taken...), nil
}

// creditTransferState validates transfers. With recipientMustExist unset,
// a transfer to an unknown identity creates it.
func creditTransferState(recipientMustExist bool) stateFunc {
	return func(v *Validator, tx *storage.Transaction, ctx *Context, st transition.StateTransition) ([]consensuserr.ConsensusError, error) {
		t := st.(*transition.IdentityCreditTransfer)
		if e, err := checkIdentityNonce(tx, ctx, t.IdentityID, t.Nonce); e != nil || err != nil {
			return one(e), err
		}
		ctx.Log.Add(fees.FetchIdentityBalance, 1)
		exists, err := drive.IdentityExists(tx, t.RecipientID, &ctx.Cost)
		if err != nil {
			return nil, err
		}
		if !exists && recipientMustExist {
			return one(consensuserr.IdentityDoesNotExistError{Identity: t.RecipientID}), nil
		}
		ctx.RecipientExists = exists
		ctx.Required = t.Amount
		return nil, nil
	}
}

func withdrawalStateV0(v *Validator, tx *storage.Transaction, ctx *Context, st transition.StateTransition) ([]consensuserr.ConsensusError, error) {
	t := st.(*transition.IdentityCreditWithdrawal)
	if e, err := checkIdentityNonce(tx, ctx, t.IdentityID, t.Nonce); e != nil || err != nil {
		return one(e), err
	}
	ctx.Required = t.Amount
	return nil, nil
}
