package pools

import (
	"github.com/ethereum/go-ethereum/rlp"
	"github.com/pkg/errors"

	"github.com/rony4d/go-platform-drive/drive"
	"github.com/rony4d/go-platform-drive/drive/paths"
	"github.com/rony4d/go-platform-drive/drive/storage"
	"github.com/rony4d/go-platform-drive/inter"
)

// EpochStart is the metadata of the first block of an epoch.
type EpochStart struct {
	Height             uint64
	TimeMs             uint64
	CoreHeight         uint32
	MultiplierPermille uint64
}

// Pool is the fee pool of the epoch being accumulated.
type Pool struct {
	Epoch         inter.Epoch
	Start         EpochStart
	ProcessingFee inter.Credits
	StorageFee    inter.Credits
}

// Total is the amount the pool pays out.
func (p *Pool) Total() inter.Credits {
	return p.ProcessingFee.Add(p.StorageFee)
}

// ProposerBlocks is the number of blocks one proposer produced in an epoch.
type ProposerBlocks struct {
	Proposer inter.Identifier
	Blocks   uint64
}

// Payee is a proposer still owed credits by the epoch being distributed.
type Payee struct {
	Proposer inter.Identifier
	Owed     inter.Credits
}

// Distribution is the payout progress of an ended epoch. Payees are paid
// front to back.
type Distribution struct {
	Epoch  inter.EpochIndex
	Total  inter.Credits
	Blocks uint64
	Payees []Payee
}

// Remaining is what the epoch still owes.
func (d *Distribution) Remaining() inter.Credits {
	var total inter.Credits
	for _, p := range d.Payees {
		total = total.Add(p.Owed)
	}
	return total
}

// FetchCurrentEpoch reads the index of the epoch being accumulated. ok is
// false before the first block.
func FetchCurrentEpoch(tx *storage.Transaction) (inter.Epoch, bool, error) {
	e, ok, err := tx.Get(paths.Pools.Path(), paths.CurrentEpochKey, nil)
	if err != nil || !ok {
		return inter.Epoch{}, false, err
	}
	epoch, err := inter.EpochFromKey(e.Value)
	if err != nil {
		return inter.Epoch{}, false, errors.Wrap(drive.ErrCorruptedState, err.Error())
	}
	return epoch, true, nil
}

// FetchPool reads the pool of an epoch. Pools of ended epochs are removed
// once their distribution starts.
func FetchPool(tx *storage.Transaction, epoch inter.Epoch) (*Pool, bool, error) {
	path := paths.EpochPoolPath(epoch)
	e, ok, err := tx.Get(path, paths.PoolInfoKey, nil)
	if err != nil || !ok {
		return nil, false, err
	}
	p := &Pool{Epoch: epoch}
	if err := rlp.DecodeBytes(e.Value, &p.Start); err != nil {
		return nil, false, errors.Wrap(drive.ErrCorruptedState, err.Error())
	}
	processing, err := fetchCredits(tx, path, paths.PoolProcessingFeeKey)
	if err != nil {
		return nil, false, err
	}
	storageFee, err := fetchCredits(tx, path, paths.PoolStorageFeeKey)
	if err != nil {
		return nil, false, err
	}
	p.ProcessingFee, p.StorageFee = processing, storageFee
	return p, true, nil
}

// FetchProposers lists the proposers of an epoch in key order.
func FetchProposers(tx *storage.Transaction, epoch inter.Epoch) ([]ProposerBlocks, error) {
	children, err := tx.Children(paths.EpochProposersPath(epoch), nil)
	if err != nil {
		return nil, err
	}
	out := make([]ProposerBlocks, 0, len(children))
	for _, c := range children {
		id, err := inter.BytesToIdentifier(c.Key)
		if err != nil {
			return nil, errors.Wrap(drive.ErrCorruptedState, err.Error())
		}
		blocks, err := drive.DecodeUint64(c.Element.Value)
		if err != nil {
			return nil, err
		}
		out = append(out, ProposerBlocks{Proposer: id, Blocks: blocks})
	}
	return out, nil
}

// FetchDistribution reads the payout progress. ok is false while no ended
// epoch is being paid out.
func FetchDistribution(tx *storage.Transaction) (*Distribution, bool, error) {
	e, ok, err := tx.Get(paths.Pools.Path(), paths.DistributionKey, nil)
	if err != nil || !ok {
		return nil, false, err
	}
	d := new(Distribution)
	if err := rlp.DecodeBytes(e.Value, d); err != nil {
		return nil, false, errors.Wrap(drive.ErrCorruptedState, err.Error())
	}
	return d, true, nil
}

func fetchCredits(tx *storage.Transaction, path storage.Path, key []byte) (inter.Credits, error) {
	e, ok, err := tx.Get(path, key, nil)
	if err != nil || !ok {
		return 0, err
	}
	v, err := drive.DecodeUint64(e.Value)
	return inter.Credits(v), err
}

func creditsOp(path storage.Path, key []byte, c inter.Credits) storage.Op {
	return storage.PutItemOp(path, key, drive.EncodeUint64(uint64(c))).System()
}

func encode(v interface{}) []byte {
	raw, err := rlp.EncodeToBytes(v)
	if err != nil {
		panic(err)
	}
	return raw
}

// newPoolOps opens the pool of a new epoch.
func newPoolOps(epoch inter.Epoch, start EpochStart) []storage.Op {
	path := paths.EpochPoolPath(epoch)
	return []storage.Op{
		storage.InsertTreeOp(paths.EpochsPath(), epoch.Bytes()).System(),
		storage.InsertItemOp(path, paths.PoolInfoKey, encode(&start)).System(),
		creditsOp(path, paths.PoolProcessingFeeKey, 0),
		creditsOp(path, paths.PoolStorageFeeKey, 0),
		storage.InsertTreeOp(path, paths.PoolProposersKey).System(),
		storage.PutItemOp(paths.Pools.Path(), paths.CurrentEpochKey, epoch.Bytes()).System(),
	}
}

// deletePoolOps removes the pool of an ended epoch, children first.
func deletePoolOps(epoch inter.Epoch, proposers []ProposerBlocks) []storage.Op {
	path := paths.EpochPoolPath(epoch)
	ops := make([]storage.Op, 0, len(proposers)+5)
	for _, p := range proposers {
		ops = append(ops, storage.DeleteOp(paths.EpochProposersPath(epoch), p.Proposer.Bytes()).System())
	}
	return append(ops,
		storage.DeleteOp(path, paths.PoolProposersKey).System(),
		storage.DeleteOp(path, paths.PoolInfoKey).System(),
		storage.DeleteOp(path, paths.PoolProcessingFeeKey).System(),
		storage.DeleteOp(path, paths.PoolStorageFeeKey).System(),
		storage.DeleteOp(paths.EpochsPath(), epoch.Bytes()).System(),
	)
}

// distributionOps stores the payout progress, removing it once nothing is
// owed. stored tells whether progress is already in the tree.
func distributionOps(d *Distribution, stored bool) []storage.Op {
	if d == nil || d.Remaining() == 0 {
		if !stored {
			return nil
		}
		return []storage.Op{storage.DeleteOp(paths.Pools.Path(), paths.DistributionKey).System()}
	}
	return []storage.Op{storage.PutItemOp(paths.Pools.Path(), paths.DistributionKey, encode(d)).System()}
}

func systemCreditsOp(c inter.Credits) storage.Op {
	return creditsOp(paths.Misc.Path(), paths.SystemCreditsKey, c)
}

func totalCreditsOp(c inter.Credits) storage.Op {
	return creditsOp(paths.Misc.Path(), paths.TotalCreditsKey, c)
}
