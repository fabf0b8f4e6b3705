package validation

import (
	"github.com/pkg/errors"

	"github.com/rony4d/go-platform-drive/drive"
	"github.com/rony4d/go-platform-drive/drive/fees"
	"github.com/rony4d/go-platform-drive/drive/storage"
	"github.com/rony4d/go-platform-drive/inter"
	"github.com/rony4d/go-platform-drive/platform/version"
	"github.com/rony4d/go-platform-drive/transition"
	"github.com/rony4d/go-platform-drive/transition/consensuserr"
	"github.com/rony4d/go-platform-drive/transition/contract"
)

type stateFunc func(v *Validator, tx *storage.Transaction, ctx *Context, st transition.StateTransition) ([]consensuserr.ConsensusError, error)

var stateChecks = map[transition.Type]*version.Registry[stateFunc]{
	transition.IdentityCreateType: version.NewRegistry[stateFunc](version.IdentityCreateState).
		Register(0, identityCreateStateV0),
	transition.IdentityTopUpType: version.NewRegistry[stateFunc](version.IdentityTopUpState).
		Register(0, identityTopUpStateV0),
	transition.IdentityUpdateType: version.NewRegistry[stateFunc](version.IdentityUpdateState).
		Register(0, identityUpdateStateV0),
	transition.IdentityCreditTransferType: version.NewRegistry[stateFunc](version.CreditTransferState).
		Register(0, creditTransferState(false)).
		Register(1, creditTransferState(true)),
	transition.IdentityCreditWithdrawalType: version.NewRegistry[stateFunc](version.CreditWithdrawalState).
		Register(0, withdrawalStateV0),
	transition.MasternodeVoteType: version.NewRegistry[stateFunc](version.MasternodeVoteState).
		Register(0, voteStateV0),
	transition.DataContractCreateType: version.NewRegistry[stateFunc](version.ContractCreateState).
		Register(0, contractCreateStateV0),
	transition.DataContractUpdateType: version.NewRegistry[stateFunc](version.ContractUpdateState).
		Register(0, contractUpdateStateV0),
	transition.BatchType: version.NewRegistry[stateFunc](version.BatchState).
		Register(0, batchStateV0),
}

// State checks the transition against the state of the open block
// transaction. Authenticated transitions must also leave the signer able
// to pay the validation work and every amount they move.
func (v *Validator) State(tx *storage.Transaction, ctx *Context, res *Result) error {
	st := ctx.Transition()
	reg, ok := stateChecks[st.Type()]
	if !ok {
		return errors.Errorf("no state validation for %s", st.Type())
	}
	check, err := reg.Resolve(ctx.Version)
	if err != nil {
		return err
	}
	errs, err := check(v, tx, ctx, st)
	if err != nil {
		return err
	}
	res.add(errs...)
	if !res.IsValid() || !ctx.Authenticated {
		return nil
	}

	fv, err := ctx.Version.Fees()
	if err != nil {
		return err
	}
	required := ctx.Required.Add(fees.ValidationFee(fv, &ctx.Log))
	if ctx.Balance < required {
		res.add(consensuserr.BalanceIsNotEnoughError{Identity: st.Owner(), Balance: ctx.Balance, Required: required})
	}
	return nil
}

func checkIdentityNonce(tx *storage.Transaction, ctx *Context, id inter.Identifier, provided uint64) (consensuserr.ConsensusError, error) {
	ctx.Log.Add(fees.FetchIdentityNonce, 1)
	stored, _, err := drive.FetchIdentityNonce(tx, id, &ctx.Cost)
	if err != nil {
		return nil, err
	}
	if provided != stored+1 {
		return consensuserr.NonceOutOfBoundsError{Identity: id, Expected: stored + 1, Provided: provided}, nil
	}
	return nil, nil
}

func fetchContractNonce(tx *storage.Transaction, ctx *Context, id, contractID inter.Identifier) (uint64, error) {
	ctx.Log.Add(fees.FetchIdentityNonce, 1)
	stored, _, err := drive.FetchIdentityContractNonce(tx, id, contractID, &ctx.Cost)
	return stored, err
}

// fetchContract reads a contract once per validation.
func (v *Validator) fetchContract(tx *storage.Transaction, ctx *Context, id inter.Identifier) (*contract.DataContract, bool, error) {
	if c, ok := ctx.Contracts[id]; ok {
		return c, true, nil
	}
	ctx.Log.Add(fees.FetchContract, 1)
	c, ok, err := v.drive.FetchContract(tx, id, &ctx.Cost)
	if err != nil || !ok {
		return nil, false, err
	}
	ctx.Contracts[id] = c
	return c, true, nil
}

func one(e consensuserr.ConsensusError) []consensuserr.ConsensusError {
	if e == nil {
		return nil
	}
	return []consensuserr.ConsensusError{e}
}
