package drive

import (
	"github.com/Fantom-foundation/lachesis-base/common/bigendian"
	"github.com/ethereum/go-ethereum/rlp"
	"github.com/pkg/errors"

	"github.com/rony4d/go-platform-drive/drive/paths"
	"github.com/rony4d/go-platform-drive/drive/storage"
	"github.com/rony4d/go-platform-drive/inter"
)

// FetchGenesisTime reads the genesis time. ok is false before the first
// block.
func FetchGenesisTime(tx *storage.Transaction) (uint64, bool, error) {
	return getUint64(tx, paths.Misc.Path(), paths.GenesisTimeKey, nil)
}

// FetchLastBlockInfo reads the metadata of the last executed block.
func FetchLastBlockInfo(tx *storage.Transaction) (*inter.BlockInfo, bool, error) {
	e, ok, err := tx.Get(paths.Misc.Path(), paths.LastBlockKey, nil)
	if err != nil || !ok {
		return nil, false, err
	}
	info := new(inter.BlockInfo)
	if err := rlp.DecodeBytes(e.Value, info); err != nil {
		return nil, false, errors.Wrap(ErrCorruptedState, err.Error())
	}
	return info, true, nil
}

// EncodeBlockInfo is the stored form of the last block info.
func EncodeBlockInfo(info *inter.BlockInfo) []byte {
	raw, err := rlp.EncodeToBytes(info)
	if err != nil {
		panic(err)
	}
	return raw
}

// FetchProtocolVersion reads the active protocol version.
func FetchProtocolVersion(tx *storage.Transaction) (uint32, bool, error) {
	v, ok, err := getUint64(tx, paths.Misc.Path(), paths.ProtocolVersionKey, nil)
	return uint32(v), ok, err
}

// FetchEpochFeeVersion reads the fee version an epoch was charged with.
func FetchEpochFeeVersion(tx *storage.Transaction, epoch inter.Epoch) (uint64, bool, error) {
	return getUint64(tx, paths.VersionsEpochPath(epoch), paths.EpochFeeVersionKey, nil)
}

// FetchProtocolVersionVotes counts, per protocol version, the blocks of an
// epoch whose proposer supported it.
func FetchProtocolVersionVotes(tx *storage.Transaction, epoch inter.Epoch) (map[uint32]uint64, error) {
	children, err := tx.Children(paths.VersionsEpochPath(epoch), nil)
	if err != nil {
		return nil, err
	}
	votes := make(map[uint32]uint64, len(children))
	for _, c := range children {
		if len(c.Key) != 4 {
			continue
		}
		n, err := DecodeUint64(c.Element.Value)
		if err != nil {
			return nil, err
		}
		votes[bigendian.BytesToUint32(c.Key)] = n
	}
	return votes, nil
}

// FetchTotalCredits reads the credits in existence on the platform.
func FetchTotalCredits(tx *storage.Transaction, cost *storage.OperationCost) (inter.Credits, error) {
	v, _, err := getUint64(tx, paths.Misc.Path(), paths.TotalCreditsKey, cost)
	return inter.Credits(v), err
}

// FetchSystemCredits reads the credits held by the platform itself.
func FetchSystemCredits(tx *storage.Transaction, cost *storage.OperationCost) (inter.Credits, error) {
	v, _, err := getUint64(tx, paths.Misc.Path(), paths.SystemCreditsKey, cost)
	return inter.Credits(v), err
}

// FetchWithdrawalIndex reads the index the next withdrawal gets.
func FetchWithdrawalIndex(tx *storage.Transaction, cost *storage.OperationCost) (uint64, error) {
	v, _, err := getUint64(tx, paths.Misc.Path(), paths.WithdrawalIndexKey, cost)
	return v, err
}

// FetchTotalBalances sums every identity balance.
func FetchTotalBalances(tx *storage.Transaction) (inter.Credits, error) {
	e, ok, err := tx.Get(nil, paths.Balances.Key(), nil)
	if err != nil || !ok {
		return 0, err
	}
	return inter.Credits(e.Sum), nil
}
