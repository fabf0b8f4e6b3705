package engine

import (
	"github.com/Fantom-foundation/lachesis-base/hash"
	"github.com/pkg/errors"

	"github.com/rony4d/go-platform-drive/drive"
	"github.com/rony4d/go-platform-drive/drive/batch"
	"github.com/rony4d/go-platform-drive/drive/fees"
	"github.com/rony4d/go-platform-drive/drive/storage"
	"github.com/rony4d/go-platform-drive/execution/action"
	"github.com/rony4d/go-platform-drive/execution/transformer"
	"github.com/rony4d/go-platform-drive/execution/validation"
	"github.com/rony4d/go-platform-drive/inter"
	"github.com/rony4d/go-platform-drive/platform/version"
	"github.com/rony4d/go-platform-drive/transition"
	"github.com/rony4d/go-platform-drive/transition/consensuserr"
)

// TransitionResult is the outcome of one transition of a block.
type TransitionResult struct {
	Index int
	Hash  hash.Hash
	// Payer is the zero identifier when the transition could not be
	// decoded.
	Payer inter.Identifier
	// Err is nil for applied transitions.
	Err consensuserr.ConsensusError
	// Stage is the validation stage reached.
	Stage validation.Stage
	// Fee is what the payer was charged. Rejected transitions are charged
	// for the validation work only.
	Fee inter.FeeResult
}

// Applied reports whether the transition changed the state.
func (r *TransitionResult) Applied() bool {
	return r.Err == nil
}

func (r *TransitionResult) receipt() (TransitionReceipt, error) {
	tr := TransitionReceipt{
		Index:         uint32(r.Index),
		Hash:          r.Hash.Bytes(),
		ProcessingFee: uint64(r.Fee.ProcessingFee),
		StorageFee:    uint64(r.Fee.StorageFee),
		Refunded:      uint64(r.Fee.Refunds.Total()),
	}
	if r.Err != nil {
		data, err := consensuserr.Encode(r.Err)
		if err != nil {
			return tr, errors.Wrapf(err, "encode error of transition %d", r.Index)
		}
		tr.Code = uint32(r.Err.Code())
		tr.Info = r.Err.Error()
		tr.Data = data
	}
	return tr, nil
}

// blockRun is what every transition of a block is executed with.
type blockRun struct {
	tx         *storage.Transaction
	block      *inter.BlockContext
	pv         *version.PlatformVersion
	fees       *version.FeeVersion
	multiplier uint64
	rates      fees.RateLookup
}

func (run *blockRun) calculate(cost storage.OperationCost, log *fees.Log) (inter.FeeResult, error) {
	return fees.Calculate(run.pv, fees.Input{
		Fees:               run.fees,
		Cost:               cost,
		Log:                log,
		MultiplierPermille: run.multiplier,
		Rates:              run.rates,
	})
}

type processFunc func(e *Engine, run *blockRun, index int, raw []byte) (*TransitionResult, error)

var processors = version.NewRegistry[processFunc](version.EngineProcessTransition).
	Register(0, processTransitionV0)

// processTransitionV0 validates, applies and bills one transition. The
// action and the fee debit share a nested transaction: a payer who cannot
// afford the fee leaves no trace.
func processTransitionV0(e *Engine, run *blockRun, index int, raw []byte) (*TransitionResult, error) {
	res := &TransitionResult{Index: index, Hash: hash.Of(raw)}
	if max := e.rules.Limits.MaxTransitionSize(); len(raw) > max {
		res.Err = consensuserr.MaxSizeExceededError{Size: uint64(len(raw)), Max: uint64(max)}
		return res, nil
	}
	env, err := transition.Decode(raw)
	if err != nil {
		var ce consensuserr.ConsensusError
		if errors.As(err, &ce) {
			res.Err = ce
			return res, nil
		}
		return nil, err
	}
	res.Hash = env.Hash
	res.Payer = env.Transition.Owner()

	ctx, vres, err := e.validator.Validate(run.tx, run.block, run.pv, env)
	if err != nil {
		return nil, errors.Wrapf(err, "validate transition %d", index)
	}
	res.Stage = vres.Stage
	if !vres.IsValid() {
		res.Err = vres.First()
		return res, e.chargeValidation(run, ctx, res)
	}

	a, err := transformer.Transform(ctx)
	if err != nil {
		return nil, errors.Wrapf(err, "transform transition %d", index)
	}
	rejected, err := run.affordable(e.drive, ctx, a)
	if err != nil {
		return nil, errors.Wrapf(err, "estimate transition %d", index)
	}
	if rejected != nil {
		res.Err = rejected
		return res, nil
	}
	sub, err := run.tx.Begin()
	if err != nil {
		return nil, err
	}
	cost, err := batch.Apply(e.drive, sub, run.block, run.pv, a)
	if err != nil {
		sub.Discard()
		if errors.Is(err, batch.ErrInsufficientBalance) {
			res.Err = consensuserr.BalanceIsNotEnoughError{Identity: res.Payer, Balance: ctx.Balance, Required: ctx.Required}
			return res, nil
		}
		return nil, errors.Wrapf(err, "apply transition %d", index)
	}
	cost.Add(ctx.Cost)

	fee, err := run.calculate(cost, &ctx.Log)
	if err == nil {
		err = settle(sub, run.block.Epoch.Index, res.Payer, fee)
	}
	if err != nil {
		sub.Discard()
		evictContracts(e.drive, a)
		if !errors.Is(err, batch.ErrInsufficientBalance) {
			return nil, errors.Wrapf(err, "bill transition %d", index)
		}
		balance, _, err := drive.FetchIdentityBalance(run.tx, res.Payer, nil)
		if err != nil {
			return nil, err
		}
		payable, _ := fee.Payable()
		res.Err = consensuserr.BalanceIsNotEnoughError{Identity: res.Payer, Balance: balance, Required: ctx.Required.Add(payable)}
		return res, nil
	}
	if _, err := sub.Commit(); err != nil {
		evictContracts(e.drive, a)
		return nil, err
	}
	res.Fee = fee
	return res, nil
}

// affordable dry-runs the action of an authenticated transition and checks
// that the signer can pay the amounts it moves plus the estimated fee.
func (run *blockRun) affordable(d *drive.Drive, ctx *validation.Context, a action.Action) (consensuserr.ConsensusError, error) {
	if !ctx.Authenticated {
		return nil, nil
	}
	cost, err := batch.Estimate(d, run.tx, run.block, run.pv, a)
	if errors.Is(err, batch.ErrInsufficientBalance) {
		return consensuserr.BalanceIsNotEnoughError{Identity: ctx.Transition().Owner(), Balance: ctx.Balance, Required: ctx.Required}, nil
	}
	if err != nil {
		return nil, err
	}
	cost.Add(ctx.Cost)
	fee, err := run.calculate(cost, &ctx.Log)
	if err != nil {
		return nil, err
	}
	payable, debit := fee.Payable()
	if !debit {
		return nil, nil
	}
	if required := ctx.Required.Add(payable); ctx.Balance < required {
		return consensuserr.BalanceIsNotEnoughError{Identity: ctx.Transition().Owner(), Balance: ctx.Balance, Required: required}, nil
	}
	return nil, nil
}

// settle debits the fee from the payer, or credits the refunds exceeding
// it.
func settle(tx *storage.Transaction, epoch inter.EpochIndex, payer inter.Identifier, fee inter.FeeResult) error {
	amount, debit := fee.Payable()
	if amount == 0 {
		return nil
	}
	if debit {
		return batch.RemoveBalance(tx, epoch, payer, amount, nil)
	}
	return batch.AddBalance(tx, epoch, payer, amount, nil)
}

// chargeValidation bills an authenticated signer for the validation of a
// rejected transition, up to its balance. Signers rejected for their
// balance are not billed.
func (e *Engine) chargeValidation(run *blockRun, ctx *validation.Context, res *TransitionResult) error {
	if ctx == nil || !ctx.Authenticated || res.Err.Code() == consensuserr.CodeBalanceIsNotEnough {
		return nil
	}
	fee, err := run.calculate(ctx.Cost, &ctx.Log)
	if err != nil {
		return err
	}
	balance, ok, err := drive.FetchIdentityBalance(run.tx, res.Payer, nil)
	if err != nil || !ok {
		return err
	}
	charged := fee.ProcessingFee.Min(balance)
	if charged == 0 {
		return nil
	}
	if err := batch.RemoveBalance(run.tx, run.block.Epoch.Index, res.Payer, charged, nil); err != nil {
		return err
	}
	res.Fee = inter.FeeResult{ProcessingFee: charged}
	return nil
}

// evictContracts drops contracts an abandoned action put into the cache.
func evictContracts(d *drive.Drive, a action.Action) {
	switch a := a.(type) {
	case *action.ContractCreate:
		d.Contracts.Evict(a.Contract.ID)
	case *action.ContractUpdate:
		d.Contracts.Evict(a.Contract.ID)
	}
}
