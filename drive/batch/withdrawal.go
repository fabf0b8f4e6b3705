package batch

import (
	"github.com/pkg/errors"

	"github.com/rony4d/go-platform-drive/drive"
	"github.com/rony4d/go-platform-drive/drive/paths"
	"github.com/rony4d/go-platform-drive/drive/storage"
	"github.com/rony4d/go-platform-drive/execution/action"
)

func buildWithdrawalV0(b *builder, a action.Action) error {
	w, ok := a.(*action.CreditWithdrawal)
	if !ok {
		return errors.Errorf("unexpected withdrawal action %T", a)
	}
	if err := b.removeBalance(w.ID, w.Amount); err != nil {
		return err
	}
	index, err := drive.FetchWithdrawalIndex(b.tx, &b.cost)
	if err != nil {
		return err
	}
	record := &drive.Withdrawal{
		Index:          index,
		IdentityID:     w.ID,
		Amount:         w.Amount,
		CoreFeePerByte: w.CoreFeePerByte,
		Pooling:        uint8(w.Pooling),
		OutputScript:   w.OutputScript,
		CreatedAtMs:    w.CreatedAtMs,
		Status:         drive.WithdrawalQueued,
	}
	err = b.apply(
		storage.InsertItemOp(paths.WithdrawalTransactions.Path(), paths.Uint64Key(index), record.Encode()),
		b.identityNonceOp(w.ID, w.Nonce),
	)
	if err != nil {
		return err
	}
	err = b.applySystem(storage.PutItemOp(paths.Misc.Path(), paths.WithdrawalIndexKey, drive.EncodeUint64(index+1)).System())
	if err != nil {
		return err
	}
	return b.changeTotalCredits(w.Amount, false)
}
