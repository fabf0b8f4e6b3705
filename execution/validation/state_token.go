package validation

import (
	"math"

	"github.com/rony4d/go-platform-drive/drive"
	"github.com/rony4d/go-platform-drive/drive/fees"
	"github.com/rony4d/go-platform-drive/drive/storage"
	"github.com/rony4d/go-platform-drive/inter"
	"github.com/rony4d/go-platform-drive/transition"
	"github.com/rony4d/go-platform-drive/transition/consensuserr"
	"github.com/rony4d/go-platform-drive/transition/contract"
)

type tokenAccount struct {
	token    inter.Identifier
	identity inter.Identifier
}

// tokenView tracks token state across the steps of one batch, so that each
// step is checked against the effects of the previous ones.
type tokenView struct {
	tx       *storage.Transaction
	ctx      *Context
	states   map[inter.Identifier]*drive.TokenState
	balances map[tokenAccount]uint64
	frozen   map[tokenAccount]bool
}

func newTokenView(tx *storage.Transaction, ctx *Context) *tokenView {
	return &tokenView{
		tx:       tx,
		ctx:      ctx,
		states:   make(map[inter.Identifier]*drive.TokenState),
		balances: make(map[tokenAccount]uint64),
		frozen:   make(map[tokenAccount]bool),
	}
}

func (tv *tokenView) state(tokenID inter.Identifier) (*drive.TokenState, bool, error) {
	if st, ok := tv.states[tokenID]; ok {
		return st, true, nil
	}
	tv.ctx.Log.Add(fees.FetchTokenState, 1)
	st, ok, err := drive.FetchTokenState(tv.tx, tokenID, &tv.ctx.Cost)
	if err != nil || !ok {
		return nil, false, err
	}
	tv.states[tokenID] = &st
	return &st, true, nil
}

func (tv *tokenView) balance(acc tokenAccount) (uint64, error) {
	if b, ok := tv.balances[acc]; ok {
		return b, nil
	}
	b, _, err := drive.FetchTokenBalance(tv.tx, acc.token, acc.identity, &tv.ctx.Cost)
	if err != nil {
		return 0, err
	}
	tv.balances[acc] = b
	return b, nil
}

func (tv *tokenView) isFrozen(acc tokenAccount) (bool, error) {
	if f, ok := tv.frozen[acc]; ok {
		return f, nil
	}
	f, err := drive.IsTokenAccountFrozen(tv.tx, acc.token, acc.identity, &tv.ctx.Cost)
	if err != nil {
		return false, err
	}
	tv.frozen[acc] = f
	return f, nil
}

// notFrozen returns an error for the first frozen account.
func (tv *tokenView) notFrozen(accounts ...tokenAccount) (consensuserr.ConsensusError, error) {
	for _, acc := range accounts {
		f, err := tv.isFrozen(acc)
		if err != nil {
			return nil, err
		}
		if f {
			return consensuserr.IdentityTokenAccountFrozenError{Token: acc.token, Identity: acc.identity}, nil
		}
	}
	return nil, nil
}

// MintRecipient is the identity credited by a mint.
func MintRecipient(owner inter.Identifier, t *transition.TokenMint) inter.Identifier {
	if t.Recipient.IsZero() {
		return owner
	}
	return t.Recipient
}

func (tv *tokenView) check(owner inter.Identifier, c *contract.DataContract, s transition.TokenTransition) (consensuserr.ConsensusError, error) {
	base := s.Token()
	tokenID := base.TokenID()
	st, exists, err := tv.state(tokenID)
	if err != nil {
		return nil, err
	}
	if !exists {
		return consensuserr.TokenNotFoundError{Contract: c.ID, Position: base.TokenPosition}, nil
	}

	switch s.Action() {
	case transition.TokenEmergencyAction, transition.TokenConfigUpdateAction:
	default:
		if st.Paused {
			return consensuserr.TokenIsPausedError{Token: tokenID}, nil
		}
	}
	switch s.Action() {
	case transition.TokenMintAction, transition.TokenFreezeAction, transition.TokenUnfreezeAction,
		transition.TokenEmergencyAction, transition.TokenConfigUpdateAction:
		if owner != c.OwnerID {
			return consensuserr.UnauthorizedTokenActionError{Token: tokenID, Identity: owner, Action: uint8(s.Action())}, nil
		}
	}

	self := tokenAccount{tokenID, owner}
	switch t := s.(type) {
	case *transition.TokenMint:
		to := tokenAccount{tokenID, MintRecipient(owner, t)}
		if e, err := tv.notFrozen(to); e != nil || err != nil {
			return e, err
		}
		if st.TotalSupply > math.MaxUint64-t.Amount || (st.MaxSupply > 0 && st.TotalSupply+t.Amount > st.MaxSupply) {
			return consensuserr.TokenMintPastMaxSupplyError{Token: tokenID, Supply: st.TotalSupply, Amount: t.Amount, MaxSupply: st.MaxSupply}, nil
		}
		b, err := tv.balance(to)
		if err != nil {
			return nil, err
		}
		st.TotalSupply += t.Amount
		tv.balances[to] = b + t.Amount

	case *transition.TokenBurn:
		if e, err := tv.notFrozen(self); e != nil || err != nil {
			return e, err
		}
		b, err := tv.balance(self)
		if err != nil {
			return nil, err
		}
		if b < t.Amount {
			return consensuserr.InsufficientTokenBalanceError{Token: tokenID, Identity: owner, Balance: b, Required: t.Amount}, nil
		}
		st.TotalSupply -= t.Amount
		tv.balances[self] = b - t.Amount

	case *transition.TokenTransfer:
		to := tokenAccount{tokenID, t.Recipient}
		if e, err := tv.notFrozen(self, to); e != nil || err != nil {
			return e, err
		}
		b, err := tv.balance(self)
		if err != nil {
			return nil, err
		}
		if b < t.Amount {
			return consensuserr.InsufficientTokenBalanceError{Token: tokenID, Identity: owner, Balance: b, Required: t.Amount}, nil
		}
		rb, err := tv.balance(to)
		if err != nil {
			return nil, err
		}
		tv.balances[self] = b - t.Amount
		tv.balances[to] = rb + t.Amount

	case *transition.TokenFreeze:
		acc := tokenAccount{tokenID, t.Identity}
		if e, err := tv.notFrozen(acc); e != nil || err != nil {
			return e, err
		}
		tv.frozen[acc] = true

	case *transition.TokenUnfreeze:
		acc := tokenAccount{tokenID, t.Identity}
		f, err := tv.isFrozen(acc)
		if err != nil {
			return nil, err
		}
		if !f {
			return consensuserr.TokenAccountNotFrozenError{Token: tokenID, Identity: t.Identity}, nil
		}
		tv.frozen[acc] = false

	case *transition.TokenEmergency:
		st.Paused = t.Pause

	case *transition.TokenConfigUpdate:
		if t.MaxSupply > 0 && t.MaxSupply < st.TotalSupply {
			return consensuserr.TokenMintPastMaxSupplyError{Token: tokenID, Supply: st.TotalSupply, MaxSupply: t.MaxSupply}, nil
		}
		st.MaxSupply = t.MaxSupply
	}
	return nil, nil
}
