package pools

import (
	"math/big"

	"github.com/shopspring/decimal"

	"github.com/rony4d/go-platform-drive/drive"
	"github.com/rony4d/go-platform-drive/drive/batch"
	"github.com/rony4d/go-platform-drive/drive/storage"
	"github.com/rony4d/go-platform-drive/inter"
)

// DailyPayoutLimit caps what one block may pay out of an ended epoch:
// 10% of base from 1000 credits up, a flat 100 from 100 to 999, and all of
// it below 100.
func DailyPayoutLimit(base inter.Credits) inter.Credits {
	switch {
	case base >= 1000:
		return base / 10
	case base >= 100:
		return 100
	}
	return base
}

// Payout is one transfer from an epoch pool.
type Payout struct {
	Proposer inter.Identifier
	Amount   inter.Credits
	// ToSystem is set when the proposer has no identity and the amount
	// went to system credits.
	ToSystem bool
}

func toDecimal(v uint64) decimal.Decimal {
	return decimal.NewFromBigInt(new(big.Int).SetUint64(v), 0)
}

// Shares splits total between proposers by their block count. Every share is
// rounded down except the last one, which takes the rounding leftover.
func Shares(total inter.Credits, proposers []ProposerBlocks) []Payee {
	if len(proposers) == 0 {
		return nil
	}
	var blocks uint64
	for _, p := range proposers {
		blocks += p.Blocks
	}
	payees := make([]Payee, len(proposers))
	left := total
	for i, p := range proposers {
		payees[i].Proposer = p.Proposer
		if i == len(proposers)-1 {
			payees[i].Owed = left
			break
		}
		share := toDecimal(uint64(total)).
			Mul(toDecimal(p.Blocks)).
			Div(toDecimal(blocks)).
			Floor().
			BigInt()
		owed := inter.Credits(share.Uint64()).Min(left)
		payees[i].Owed = owed
		left -= owed
	}
	return payees
}

// payProposersV0 pays the next installment of the distribution, front to
// back, within the block limit.
func payProposersV0(tx *storage.Transaction, epoch inter.EpochIndex, d *Distribution) ([]Payout, error) {
	total, err := drive.FetchTotalCredits(tx, nil)
	if err != nil {
		return nil, err
	}
	budget := DailyPayoutLimit(d.Remaining().Min(total))

	var (
		payouts  []Payout
		toSystem inter.Credits
	)
	for budget > 0 && len(d.Payees) > 0 {
		p := &d.Payees[0]
		if p.Owed == 0 {
			d.Payees = d.Payees[1:]
			continue
		}
		amount := p.Owed.Min(budget)
		exists, err := drive.IdentityExists(tx, p.Proposer, nil)
		if err != nil {
			return nil, err
		}
		if exists {
			if err := batch.AddBalance(tx, epoch, p.Proposer, amount, nil); err != nil {
				return nil, err
			}
		} else {
			toSystem = toSystem.Add(amount)
		}
		payouts = append(payouts, Payout{Proposer: p.Proposer, Amount: amount, ToSystem: !exists})
		budget -= amount
		p.Owed -= amount
		if p.Owed == 0 {
			d.Payees = d.Payees[1:]
		}
	}
	if toSystem > 0 {
		if err := addSystemCredits(tx, epoch, toSystem); err != nil {
			return nil, err
		}
	}
	return payouts, nil
}

func addSystemCredits(tx *storage.Transaction, epoch inter.EpochIndex, amount inter.Credits) error {
	system, err := drive.FetchSystemCredits(tx, nil)
	if err != nil {
		return err
	}
	return batch.ApplySystem(tx, epoch, systemCreditsOp(system.Add(amount)))
}
