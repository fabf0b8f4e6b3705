package batch

import (
	"github.com/pkg/errors"

	"github.com/rony4d/go-platform-drive/drive"
	"github.com/rony4d/go-platform-drive/drive/paths"
	"github.com/rony4d/go-platform-drive/drive/storage"
	"github.com/rony4d/go-platform-drive/execution/action"
	"github.com/rony4d/go-platform-drive/inter"
	"github.com/rony4d/go-platform-drive/transition"
)

// ErrInsufficientTokenBalance is returned when a step debits more tokens
// than an account holds.
var ErrInsufficientTokenBalance = errors.New("insufficient token balance")

func buildTokenStepV0(b *builder, owner inter.Identifier, s *action.TokenStep) error {
	if err := b.apply(b.identityContractNonceOp(owner, s.ContractID, s.IdentityContractNonce)); err != nil {
		return err
	}
	path := paths.TokenPath(s.TokenID)

	switch s.Kind {
	case transition.TokenMintAction:
		if err := b.changeTokenSupply(s.TokenID, s.Amount, true); err != nil {
			return err
		}
		return b.changeTokenBalance(s.TokenID, s.Recipient, s.Amount, true)

	case transition.TokenBurnAction:
		if err := b.changeTokenBalance(s.TokenID, s.Account, s.Amount, false); err != nil {
			return err
		}
		return b.changeTokenSupply(s.TokenID, s.Amount, false)

	case transition.TokenTransferAction:
		if err := b.changeTokenBalance(s.TokenID, s.Account, s.Amount, false); err != nil {
			return err
		}
		return b.changeTokenBalance(s.TokenID, s.Recipient, s.Amount, true)

	case transition.TokenFreezeAction:
		return b.apply(storage.InsertItemOp(paths.TokenFrozenPath(s.TokenID), s.Account.Bytes(), nil))

	case transition.TokenUnfreezeAction:
		return b.apply(storage.DeleteOp(paths.TokenFrozenPath(s.TokenID), s.Account.Bytes()))

	case transition.TokenEmergencyAction:
		paused := uint64(0)
		if s.Pause {
			paused = 1
		}
		return b.apply(storage.ReplaceItemOp(path, paths.TokenPausedKey, drive.EncodeUint64(paused)))

	case transition.TokenConfigUpdateAction:
		return b.apply(storage.ReplaceItemOp(path, paths.TokenMaxKey, drive.EncodeUint64(s.MaxSupply)))
	}
	return errors.Errorf("unexpected token step %s", s.Kind)
}

func (b *builder) changeTokenBalance(tokenID, account inter.Identifier, amount uint64, add bool) error {
	balance, _, err := drive.FetchTokenBalance(b.tx, tokenID, account, &b.cost)
	if err != nil {
		return err
	}
	if add {
		balance += amount
	} else {
		if balance < amount {
			return errors.Wrapf(ErrInsufficientTokenBalance, "%s holds %d, needs %d", account, balance, amount)
		}
		balance -= amount
	}
	return b.apply(storage.PutItemOp(paths.TokenBalancesPath(tokenID), account.Bytes(), drive.EncodeUint64(balance)))
}

func (b *builder) changeTokenSupply(tokenID inter.Identifier, amount uint64, add bool) error {
	st, ok, err := drive.FetchTokenState(b.tx, tokenID, &b.cost)
	if err != nil {
		return err
	}
	if !ok {
		return errors.Errorf("token %s not found", tokenID)
	}
	supply := st.TotalSupply
	if add {
		supply += amount
	} else {
		supply -= amount
	}
	return b.apply(storage.ReplaceItemOp(paths.TokenPath(tokenID), paths.TokenSupplyKey, drive.EncodeUint64(supply)))
}
