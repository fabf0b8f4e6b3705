// Package pools accumulates the fees of each epoch and pays them out to the
// proposers of the epoch's blocks once it has ended.
//
// The pool of the current epoch lives under the Pools tree until the epoch
// ends. Its totals are then split into per-proposer shares which are paid in
// installments, one per block, capped by DailyPayoutLimit. If another epoch
// ends before the installments are done, what is still owed goes to system
// credits.
package pools

import (
	"github.com/pkg/errors"

	"github.com/rony4d/go-platform-drive/drive"
	"github.com/rony4d/go-platform-drive/drive/batch"
	"github.com/rony4d/go-platform-drive/drive/paths"
	"github.com/rony4d/go-platform-drive/drive/storage"
	"github.com/rony4d/go-platform-drive/inter"
	"github.com/rony4d/go-platform-drive/platform/version"
)

// Input is what a block contributes to the pools.
type Input struct {
	Block     *inter.BlockContext
	EpochInfo inter.EpochInfo
	// Fees is the sum of the fees charged by the block's transitions.
	Fees               inter.FeeResult
	MultiplierPermille uint64
}

// EndedEpoch is the pool of an epoch that ended with the block.
type EndedEpoch struct {
	Pool      Pool
	Blocks    uint64
	Proposers int
}

// Outcome reports what the pools did in one block.
type Outcome struct {
	// Ended is set on the first block of an epoch that follows another.
	Ended *EndedEpoch
	// Distributing is set while an ended epoch is being paid out; PaidEpoch
	// is then that epoch.
	Distributing bool
	PaidEpoch    inter.EpochIndex
	Payouts      []Payout
	// RolledForward is what an unfinished distribution still owed when the
	// next epoch ended. It went to system credits.
	RolledForward inter.Credits
	// RefundedFromSystem is the part of the block refunds not covered by
	// the pool of the refunded epoch.
	RefundedFromSystem inter.Credits
	// Minted is the part of RefundedFromSystem the system credits could not
	// cover.
	Minted inter.Credits
}

// Paid sums the payouts.
func (o *Outcome) Paid() inter.Credits {
	var total inter.Credits
	for _, p := range o.Payouts {
		total = total.Add(p.Amount)
	}
	return total
}

type processFunc func(tx *storage.Transaction, pv *version.PlatformVersion, in Input) (*Outcome, error)

type payFunc func(tx *storage.Transaction, epoch inter.EpochIndex, d *Distribution) ([]Payout, error)

var (
	processors = version.NewRegistry[processFunc](version.PoolsProcessBlockFees).
			Register(0, processBlockFeesV0)
	payers = version.NewRegistry[payFunc](version.PoolsPayProposers).
		Register(0, payProposersV0)
)

// ProcessBlock folds the fees of a block into the pools and pays the next
// installment of an ended epoch. It runs once per block, after every
// transition of the block was executed.
func ProcessBlock(tx *storage.Transaction, pv *version.PlatformVersion, in Input) (*Outcome, error) {
	process, err := processors.Resolve(pv)
	if err != nil {
		return nil, err
	}
	return process(tx, pv, in)
}

func processBlockFeesV0(tx *storage.Transaction, pv *version.PlatformVersion, in Input) (*Outcome, error) {
	out := new(Outcome)
	epoch := in.EpochInfo.Current
	dist, stored, err := FetchDistribution(tx)
	if err != nil {
		return nil, err
	}

	if in.EpochInfo.IsChange {
		if in.EpochInfo.Previous != nil {
			if dist, err = endEpoch(tx, inter.NewEpoch(*in.EpochInfo.Previous), dist, out); err != nil {
				return nil, errors.Wrapf(err, "end epoch %d", *in.EpochInfo.Previous)
			}
		}
		start := EpochStart{
			Height:             uint64(in.Block.Height),
			TimeMs:             in.Block.TimeMs,
			CoreHeight:         in.Block.CoreHeight,
			MultiplierPermille: in.MultiplierPermille,
		}
		if err := batch.ApplySystem(tx, epoch.Index, newPoolOps(epoch, start)...); err != nil {
			return nil, errors.Wrapf(err, "open pool of epoch %d", epoch.Index)
		}
	}

	if err := addFees(tx, epoch, in, out); err != nil {
		return nil, err
	}

	if dist != nil && dist.Remaining() > 0 {
		pay, err := payers.Resolve(pv)
		if err != nil {
			return nil, err
		}
		out.Distributing = true
		out.PaidEpoch = dist.Epoch
		if out.Payouts, err = pay(tx, epoch.Index, dist); err != nil {
			return nil, errors.Wrapf(err, "pay proposers of epoch %d", dist.Epoch)
		}
	}
	if ops := distributionOps(dist, stored); len(ops) > 0 {
		if err := batch.ApplySystem(tx, epoch.Index, ops...); err != nil {
			return nil, err
		}
	}
	return out, nil
}

// endEpoch rolls an unfinished distribution forward and starts paying out
// the pool of the ended epoch.
func endEpoch(tx *storage.Transaction, ended inter.Epoch, dist *Distribution, out *Outcome) (*Distribution, error) {
	if dist != nil {
		out.RolledForward = dist.Remaining()
		if out.RolledForward > 0 {
			if err := addSystemCredits(tx, ended.Index, out.RolledForward); err != nil {
				return nil, err
			}
		}
	}
	pool, ok, err := FetchPool(tx, ended)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, errors.Wrap(drive.ErrCorruptedState, "pool of the ended epoch is missing")
	}
	proposers, err := FetchProposers(tx, ended)
	if err != nil {
		return nil, err
	}
	if err := batch.ApplySystem(tx, ended.Index, deletePoolOps(ended, proposers)...); err != nil {
		return nil, err
	}

	next := &Distribution{Epoch: ended.Index, Total: pool.Total()}
	for _, p := range proposers {
		next.Blocks += p.Blocks
	}
	out.Ended = &EndedEpoch{Pool: *pool, Blocks: next.Blocks, Proposers: len(proposers)}
	if len(proposers) == 0 {
		// nobody to pay
		if pool.Total() > 0 {
			if err := addSystemCredits(tx, ended.Index, pool.Total()); err != nil {
				return nil, err
			}
		}
		return nil, nil
	}
	next.Payees = Shares(pool.Total(), proposers)
	return next, nil
}

// addFees credits the block fees to the current pool, takes refunds from
// the pools that were paid for the removed storage and counts the block for
// its proposer.
func addFees(tx *storage.Transaction, epoch inter.Epoch, in Input, out *Outcome) error {
	pool, ok, err := FetchPool(tx, epoch)
	if err != nil {
		return err
	}
	if !ok {
		return errors.Wrapf(drive.ErrCorruptedState, "pool of epoch %d is missing", epoch.Index)
	}
	path := paths.EpochPoolPath(epoch)
	ops := []storage.Op{
		creditsOp(path, paths.PoolProcessingFeeKey, pool.ProcessingFee.Add(in.Fees.ProcessingFee)),
		creditsOp(path, paths.PoolStorageFeeKey, pool.StorageFee.Add(in.Fees.StorageFee)),
	}
	blocks, _, err := tx.Get(paths.EpochProposersPath(epoch), in.Block.Proposer.Bytes(), nil)
	if err != nil {
		return err
	}
	var count uint64
	if blocks.Value != nil {
		if count, err = drive.DecodeUint64(blocks.Value); err != nil {
			return err
		}
	}
	ops = append(ops, storage.PutItemOp(paths.EpochProposersPath(epoch), in.Block.Proposer.Bytes(), drive.EncodeUint64(count+1)).System())
	if err := batch.ApplySystem(tx, epoch.Index, ops...); err != nil {
		return errors.Wrapf(err, "add fees to epoch %d", epoch.Index)
	}

	for _, birth := range in.Fees.Refunds.Epochs() {
		uncovered, err := takeRefund(tx, epoch.Index, inter.NewEpoch(birth), in.Fees.Refunds[birth])
		if err != nil {
			return errors.Wrapf(err, "refund storage of epoch %d", birth)
		}
		out.RefundedFromSystem = out.RefundedFromSystem.Add(uncovered)
	}
	if out.RefundedFromSystem == 0 {
		return nil
	}
	system, err := drive.FetchSystemCredits(tx, nil)
	if err != nil {
		return err
	}
	left, ok := system.CheckedSub(out.RefundedFromSystem)
	ops = []storage.Op{systemCreditsOp(left)}
	if !ok {
		out.Minted = out.RefundedFromSystem - system
		total, err := drive.FetchTotalCredits(tx, nil)
		if err != nil {
			return err
		}
		ops = append(ops, totalCreditsOp(total.Add(out.Minted)))
	}
	return batch.ApplySystem(tx, epoch.Index, ops...)
}

// takeRefund subtracts a refund from the storage fees of the epoch that was
// paid for the storage, while its pool is still open. It returns what the
// pool could not cover.
func takeRefund(tx *storage.Transaction, current inter.EpochIndex, birth inter.Epoch, amount inter.Credits) (inter.Credits, error) {
	pool, ok, err := FetchPool(tx, birth)
	if err != nil || !ok {
		return amount, err
	}
	covered := amount.Min(pool.StorageFee)
	if covered == 0 {
		return amount, nil
	}
	op := creditsOp(paths.EpochPoolPath(birth), paths.PoolStorageFeeKey, pool.StorageFee-covered)
	return amount - covered, batch.ApplySystem(tx, current, op)
}
