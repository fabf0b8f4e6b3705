// Package transformer turns validated state transitions into actions.
package transformer

import (
	"github.com/pkg/errors"

	"github.com/rony4d/go-platform-drive/drive"
	"github.com/rony4d/go-platform-drive/execution/action"
	"github.com/rony4d/go-platform-drive/execution/validation"
	"github.com/rony4d/go-platform-drive/inter/keys"
	"github.com/rony4d/go-platform-drive/platform/version"
	"github.com/rony4d/go-platform-drive/transition"
	"github.com/rony4d/go-platform-drive/transition/contract"
)

type transformFunc func(ctx *validation.Context) (action.Action, error)

var transforms = map[transition.Type]*version.Registry[transformFunc]{
	transition.IdentityCreateType: version.NewRegistry[transformFunc](version.IdentityCreateTransform).
		Register(0, identityCreateV0),
	transition.IdentityTopUpType: version.NewRegistry[transformFunc](version.IdentityTopUpTransform).
		Register(0, identityTopUpV0),
	transition.IdentityUpdateType: version.NewRegistry[transformFunc](version.IdentityUpdateTransform).
		Register(0, identityUpdateV0),
	transition.IdentityCreditTransferType: version.NewRegistry[transformFunc](version.CreditTransferTransform).
		Register(0, creditTransferV0),
	transition.IdentityCreditWithdrawalType: version.NewRegistry[transformFunc](version.CreditWithdrawalTransform).
		Register(0, withdrawalV0),
	transition.MasternodeVoteType: version.NewRegistry[transformFunc](version.MasternodeVoteTransform).
		Register(0, voteV0),
	transition.DataContractCreateType: version.NewRegistry[transformFunc](version.ContractCreateTransform).
		Register(0, contractCreateV0),
	transition.DataContractUpdateType: version.NewRegistry[transformFunc](version.ContractUpdateTransform).
		Register(0, contractUpdateV0),
	transition.BatchType: version.NewRegistry[transformFunc](version.BatchTransform).
		Register(0, batchV0),
}

// Transform builds the action of a transition that passed validation. ctx
// must come from a successful validation.
func Transform(ctx *validation.Context) (action.Action, error) {
	st := ctx.Transition()
	reg, ok := transforms[st.Type()]
	if !ok {
		return nil, errors.Errorf("no transformation for %s", st.Type())
	}
	transform, err := reg.Resolve(ctx.Version)
	if err != nil {
		return nil, err
	}
	return transform(ctx)
}

func createdKeys(created []transition.KeyInCreation) []keys.PublicKey {
	out := make([]keys.PublicKey, len(created))
	for i, k := range created {
		out[i] = k.PublicKey()
	}
	return out
}

func identityCreateV0(ctx *validation.Context) (action.Action, error) {
	t := ctx.Transition().(*transition.IdentityCreate)
	return &action.IdentityCreate{
		ID:                t.AssetLockProof.IdentityID(),
		PublicKeys:        createdKeys(t.PublicKeys),
		Credits:           t.AssetLockProof.Amount,
		AssetLockOutpoint: t.AssetLockProof.Outpoint,
	}, nil
}

func identityTopUpV0(ctx *validation.Context) (action.Action, error) {
	t := ctx.Transition().(*transition.IdentityTopUp)
	return &action.IdentityTopUp{
		ID:                t.IdentityID,
		Credits:           t.AssetLockProof.Amount,
		AssetLockOutpoint: t.AssetLockProof.Outpoint,
	}, nil
}

func identityUpdateV0(ctx *validation.Context) (action.Action, error) {
	t := ctx.Transition().(*transition.IdentityUpdate)
	return &action.IdentityUpdate{
		ID:           t.IdentityID,
		Revision:     t.Revision,
		Nonce:        t.Nonce,
		AddKeys:      createdKeys(t.AddPublicKeys),
		DisableKeys:  t.DisablePublicKeys,
		DisabledAtMs: ctx.Block.TimeMs,
	}, nil
}

func creditTransferV0(ctx *validation.Context) (action.Action, error) {
	t := ctx.Transition().(*transition.IdentityCreditTransfer)
	return &action.CreditTransfer{
		From:            t.IdentityID,
		To:              t.RecipientID,
		Amount:          t.Amount,
		Nonce:           t.Nonce,
		CreateRecipient: !ctx.RecipientExists,
	}, nil
}

func withdrawalV0(ctx *validation.Context) (action.Action, error) {
	t := ctx.Transition().(*transition.IdentityCreditWithdrawal)
	return &action.CreditWithdrawal{
		ID:             t.IdentityID,
		Amount:         t.Amount,
		Nonce:          t.Nonce,
		CoreFeePerByte: t.CoreFeePerByte,
		Pooling:        t.Pooling,
		OutputScript:   t.OutputScript,
		CreatedAtMs:    ctx.Block.TimeMs,
	}, nil
}

func voteV0(ctx *validation.Context) (action.Action, error) {
	t := ctx.Transition().(*transition.MasternodeVote)
	p := t.Poll
	return &action.MasternodeVote{
		Voter:     t.VoterIdentityID,
		ProTxHash: t.ProTxHash,
		PollID:    drive.PollID(p.ContractID, p.DocumentType, p.IndexName, p.IndexValues),
		Choice:    t.Choice,
		Nonce:     t.Nonce,
	}, nil
}

func contractCreateV0(ctx *validation.Context) (action.Action, error) {
	t := ctx.Transition().(*transition.DataContractCreate)
	return &action.ContractCreate{
		Contract:      t.Contract,
		IdentityNonce: t.IdentityNonce,
	}, nil
}

func contractUpdateV0(ctx *validation.Context) (action.Action, error) {
	t := ctx.Transition().(*transition.DataContractUpdate)
	prev, ok := ctx.Contracts[t.Contract.ID]
	if !ok {
		return nil, errors.Errorf("contract %s was not fetched by validation", t.Contract.ID)
	}
	return &action.ContractUpdate{
		Contract:              t.Contract,
		Previous:              prev,
		IdentityContractNonce: t.IdentityContractNonce,
	}, nil
}

func batchV0(ctx *validation.Context) (action.Action, error) {
	t := ctx.Transition().(*transition.Batch)
	out := &action.Batch{Owner: t.OwnerID, Steps: make([]action.Step, 0, len(t.Transitions))}
	for i, sub := range t.Transitions {
		c, ok := ctx.Contracts[sub.Contract()]
		if !ok {
			return nil, errors.Errorf("batch step %d: contract %s was not fetched by validation", i, sub.Contract())
		}
		var (
			step action.Step
			err  error
		)
		switch s := sub.(type) {
		case transition.DocumentTransition:
			step, err = documentStep(ctx, t, c, s)
		case transition.TokenTransition:
			step, err = tokenStep(t, c, s)
		default:
			err = errors.Errorf("unexpected batched transition %T", sub)
		}
		if err != nil {
			return nil, errors.Wrapf(err, "batch step %d", i)
		}
		out.Steps = append(out.Steps, step)
	}
	return out, nil
}

func documentStep(ctx *validation.Context, t *transition.Batch, c *contract.DataContract, s transition.DocumentTransition) (*action.DocumentStep, error) {
	base := s.Document()
	dt, ok := c.DocumentType(base.DocumentType)
	if !ok {
		return nil, errors.Errorf("document type %s not found", base.DocumentType)
	}
	step := &action.DocumentStep{
		Kind:                  s.Action(),
		ContractID:            c.ID,
		DocumentType:          dt,
		Previous:              ctx.Documents[base.ID],
		IdentityContractNonce: base.IdentityContractNonce,
	}
	if s.Action() != transition.DocumentDeleteAction {
		step.Next = ctx.Next[base.ID]
		if step.Next == nil {
			return nil, errors.Errorf("document %s has no validated next state", base.ID)
		}
	}
	if s.Action() != transition.DocumentCreateAction && step.Previous == nil {
		return nil, errors.Errorf("document %s was not fetched by validation", base.ID)
	}
	if p, ok := s.(*transition.DocumentPurchase); ok {
		step.Payment = &action.Payment{
			From:   t.OwnerID,
			To:     step.Previous.OwnerID,
			Amount: p.Price,
		}
	}
	return step, nil
}

func tokenStep(t *transition.Batch, c *contract.DataContract, s transition.TokenTransition) (*action.TokenStep, error) {
	base := s.Token()
	cfg, ok := c.Token(base.TokenPosition)
	if !ok {
		return nil, errors.Errorf("token %d not found", base.TokenPosition)
	}
	step := &action.TokenStep{
		Kind:                  s.Action(),
		ContractID:            c.ID,
		TokenID:               base.TokenID(),
		Config:                *cfg,
		IdentityContractNonce: base.IdentityContractNonce,
		Account:               t.OwnerID,
	}
	switch s := s.(type) {
	case *transition.TokenMint:
		step.Amount = s.Amount
		step.Recipient = validation.MintRecipient(t.OwnerID, s)
	case *transition.TokenBurn:
		step.Amount = s.Amount
	case *transition.TokenTransfer:
		step.Amount = s.Amount
		step.Recipient = s.Recipient
	case *transition.TokenFreeze:
		step.Account = s.Identity
	case *transition.TokenUnfreeze:
		step.Account = s.Identity
	case *transition.TokenEmergency:
		step.Pause = s.Pause
	case *transition.TokenConfigUpdate:
		step.MaxSupply = s.MaxSupply
	}
	return step, nil
}
