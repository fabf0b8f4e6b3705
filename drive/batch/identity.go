package batch

import (
	"github.com/pkg/errors"

	"github.com/rony4d/go-platform-drive/drive"
	"github.com/rony4d/go-platform-drive/drive/paths"
	"github.com/rony4d/go-platform-drive/drive/storage"
	"github.com/rony4d/go-platform-drive/execution/action"
	"github.com/rony4d/go-platform-drive/inter"
	"github.com/rony4d/go-platform-drive/inter/keys"
)

// NewIdentityOps creates an identity with keys and an initial balance.
func NewIdentityOps(id inter.Identifier, pubKeys []keys.PublicKey, balance inter.Credits) ([]storage.Op, error) {
	path := paths.IdentityPath(id)
	ops := []storage.Op{
		storage.InsertTreeOp(paths.Identities.Path(), id.Bytes()),
		storage.InsertItemOp(path, paths.IdentityRevisionKey, drive.EncodeUint64(0)),
		storage.InsertItemOp(path, paths.IdentityNonceKey, drive.EncodeUint64(0)),
		storage.InsertTreeOp(path, paths.IdentityContractInfoKey),
		storage.InsertTreeOp(path, paths.IdentityKeysKey),
		storage.InsertSumItemOp(paths.Balances.Path(), id.Bytes(), uint64(balance)),
	}
	keyOps, err := addKeyOps(id, pubKeys)
	if err != nil {
		return nil, err
	}
	return append(ops, keyOps...), nil
}

func addKeyOps(id inter.Identifier, pubKeys []keys.PublicKey) ([]storage.Op, error) {
	ops := make([]storage.Op, 0, 2*len(pubKeys))
	for _, k := range pubKeys {
		h, err := k.Hash160()
		if err != nil {
			return nil, errors.Wrapf(err, "key %d", k.ID)
		}
		ops = append(ops,
			storage.InsertItemOp(paths.IdentityKeysPath(id), paths.KeyIDKey(k.ID), drive.EncodePublicKey(k)),
			storage.InsertItemOp(paths.UniquePublicKeyHashes.Path(), h[:], id.Bytes()),
		)
	}
	return ops, nil
}

func buildIdentityV0(b *builder, a action.Action) error {
	switch a := a.(type) {
	case *action.IdentityCreate:
		ops, err := NewIdentityOps(a.ID, a.PublicKeys, a.Credits)
		if err != nil {
			return err
		}
		ops = append(ops, storage.InsertItemOp(paths.SpentAssetLocks.Path(), a.AssetLockOutpoint[:], nil))
		if err := b.apply(ops...); err != nil {
			return err
		}
		return b.changeTotalCredits(a.Credits, true)

	case *action.IdentityTopUp:
		if err := b.apply(storage.InsertItemOp(paths.SpentAssetLocks.Path(), a.AssetLockOutpoint[:], nil)); err != nil {
			return err
		}
		if err := b.addBalance(a.ID, a.Credits); err != nil {
			return err
		}
		return b.changeTotalCredits(a.Credits, true)

	case *action.IdentityUpdate:
		ops, err := addKeyOps(a.ID, a.AddKeys)
		if err != nil {
			return err
		}
		for _, keyID := range a.DisableKeys {
			k, ok, err := drive.FetchIdentityKey(b.tx, a.ID, keyID, &b.cost)
			if err != nil {
				return err
			}
			if !ok {
				return errors.Errorf("key %d of %s not found", keyID, a.ID)
			}
			k.DisabledAtMs = a.DisabledAtMs
			ops = append(ops, storage.ReplaceItemOp(paths.IdentityKeysPath(a.ID), paths.KeyIDKey(keyID), drive.EncodePublicKey(k)))
		}
		ops = append(ops,
			storage.ReplaceItemOp(paths.IdentityPath(a.ID), paths.IdentityRevisionKey, drive.EncodeUint64(a.Revision)),
			b.identityNonceOp(a.ID, a.Nonce),
		)
		return b.apply(ops...)

	case *action.CreditTransfer:
		if err := b.removeBalance(a.From, a.Amount); err != nil {
			return err
		}
		if a.CreateRecipient {
			ops, err := NewIdentityOps(a.To, nil, a.Amount)
			if err != nil {
				return err
			}
			if err := b.apply(ops...); err != nil {
				return err
			}
		} else if err := b.addBalance(a.To, a.Amount); err != nil {
			return err
		}
		return b.apply(b.identityNonceOp(a.From, a.Nonce))
	}
	return errors.Errorf("unexpected identity action %T", a)
}

func (b *builder) identityNonceOp(id inter.Identifier, nonce uint64) storage.Op {
	return storage.ReplaceItemOp(paths.IdentityPath(id), paths.IdentityNonceKey, drive.EncodeUint64(nonce))
}

func (b *builder) identityContractNonceOp(id, contractID inter.Identifier, nonce uint64) storage.Op {
	return storage.PutItemOp(paths.IdentityContractInfoPath(id), contractID.Bytes(), drive.EncodeUint64(nonce))
}

// addBalance credits an identity, settling its negative credit first.
func (b *builder) addBalance(id inter.Identifier, amount inter.Credits) error {
	return AddBalance(b.tx, b.block.Epoch.Index, id, amount, &b.cost)
}

func (b *builder) removeBalance(id inter.Identifier, amount inter.Credits) error {
	return RemoveBalance(b.tx, b.block.Epoch.Index, id, amount, &b.cost)
}

// AddBalance credits an existing identity. Debt recorded as negative credit
// is settled first.
func AddBalance(tx *storage.Transaction, epoch inter.EpochIndex, id inter.Identifier, amount inter.Credits, cost *storage.OperationCost) error {
	balance, ok, err := drive.FetchIdentityBalance(tx, id, cost)
	if err != nil {
		return err
	}
	if !ok {
		return errors.Errorf("identity %s not found", id)
	}
	debt, err := drive.FetchIdentityNegativeCredit(tx, id, cost)
	if err != nil {
		return err
	}
	var ops []storage.Op
	if debt > 0 {
		settled := debt.Min(amount)
		amount -= settled
		ops = append(ops, negativeCreditOp(id, debt-settled))
	}
	ops = append(ops, balanceOp(id, balance.Add(amount)))
	c, err := tx.Apply(ops, epoch)
	if cost != nil {
		cost.Add(c)
	}
	return err
}

// RemoveBalance debits an identity. It fails with ErrInsufficientBalance
// when the balance is short.
func RemoveBalance(tx *storage.Transaction, epoch inter.EpochIndex, id inter.Identifier, amount inter.Credits, cost *storage.OperationCost) error {
	balance, ok, err := drive.FetchIdentityBalance(tx, id, cost)
	if err != nil {
		return err
	}
	if !ok {
		return errors.Errorf("identity %s not found", id)
	}
	left, ok := balance.CheckedSub(amount)
	if !ok {
		return errors.Wrapf(ErrInsufficientBalance, "%s holds %d, needs %d", id, balance, amount)
	}
	c, err := tx.Apply([]storage.Op{balanceOp(id, left)}, epoch)
	if cost != nil {
		cost.Add(c)
	}
	return err
}

// RecordNegativeCredit adds to the debt of an identity that could not pay
// in full. The debt is settled by the next credit.
func RecordNegativeCredit(tx *storage.Transaction, epoch inter.EpochIndex, id inter.Identifier, amount inter.Credits) error {
	debt, err := drive.FetchIdentityNegativeCredit(tx, id, nil)
	if err != nil {
		return err
	}
	_, err = tx.Apply([]storage.Op{negativeCreditOp(id, debt.Add(amount))}, epoch)
	return err
}

// balanceOp rewrites a balance in place. Credits moved by payouts are not
// billed, so balance writes never make storage refundable.
func balanceOp(id inter.Identifier, balance inter.Credits) storage.Op {
	return storage.ReplaceSumItemOp(paths.Balances.Path(), id.Bytes(), uint64(balance)).System()
}

func negativeCreditOp(id inter.Identifier, debt inter.Credits) storage.Op {
	return storage.PutItemOp(paths.IdentityPath(id), paths.IdentityNegativeCreditKey, drive.EncodeUint64(uint64(debt))).System()
}

// changeTotalCredits tracks credits entering or leaving the platform.
func (b *builder) changeTotalCredits(amount inter.Credits, add bool) error {
	total, err := drive.FetchTotalCredits(b.tx, nil)
	if err != nil {
		return err
	}
	if add {
		total = total.Add(amount)
	} else {
		total = total.Sub(amount)
	}
	return b.applySystem(storage.PutItemOp(paths.Misc.Path(), paths.TotalCreditsKey, drive.EncodeUint64(uint64(total))).System())
}
