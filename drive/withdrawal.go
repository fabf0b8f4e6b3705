package drive

import (
	"github.com/ethereum/go-ethereum/rlp"
	"github.com/pkg/errors"

	"github.com/rony4d/go-platform-drive/drive/paths"
	"github.com/rony4d/go-platform-drive/drive/storage"
	"github.com/rony4d/go-platform-drive/inter"
)

// WithdrawalStatus tracks a queued withdrawal.
type WithdrawalStatus uint8

const (
	WithdrawalQueued WithdrawalStatus = iota
	WithdrawalPooled
	WithdrawalBroadcasted
	WithdrawalComplete
	WithdrawalExpired
)

// Withdrawal is a queued credit withdrawal towards the core chain.
type Withdrawal struct {
	Index          uint64
	IdentityID     inter.Identifier
	Amount         inter.Credits
	CoreFeePerByte uint32
	Pooling        uint8
	OutputScript   []byte
	CreatedAtMs    uint64
	Status         WithdrawalStatus
}

// Encode returns the stored form.
func (w *Withdrawal) Encode() []byte {
	raw, err := rlp.EncodeToBytes(w)
	if err != nil {
		panic(err)
	}
	return raw
}

// FetchWithdrawals lists queued withdrawals in index order.
func FetchWithdrawals(tx *storage.Transaction) ([]*Withdrawal, error) {
	children, err := tx.Children(paths.WithdrawalTransactions.Path(), nil)
	if err != nil {
		return nil, err
	}
	out := make([]*Withdrawal, 0, len(children))
	for _, c := range children {
		w := new(Withdrawal)
		if err := rlp.DecodeBytes(c.Element.Value, w); err != nil {
			return nil, errors.Wrap(ErrCorruptedState, err.Error())
		}
		out = append(out, w)
	}
	return out, nil
}
