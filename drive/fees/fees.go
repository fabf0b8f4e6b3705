// Package fees prices store operations and validation work in credits.
package fees

import (
	"math/big"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"

	"github.com/rony4d/go-platform-drive/drive/storage"
	"github.com/rony4d/go-platform-drive/inter"
	"github.com/rony4d/go-platform-drive/inter/keys"
	"github.com/rony4d/go-platform-drive/platform/version"
)

// PermilleBase is the neutral fee multiplier.
const PermilleBase = 1000

// RateLookup returns the cost table that was in force during an epoch. It
// prices refunds of storage paid in that epoch.
type RateLookup func(epoch inter.EpochIndex) (*version.FeeVersion, error)

// Input is everything a transition's fee is computed from.
type Input struct {
	Fees *version.FeeVersion
	Cost storage.OperationCost
	Log  *Log
	// MultiplierPermille scales the processing fee.
	MultiplierPermille uint64
	Rates              RateLookup
}

type calculateFunc func(in Input) (inter.FeeResult, error)

var calculators = version.NewRegistry[calculateFunc](version.FeesCalculate).
	Register(0, calculateV0)

// Calculate computes the fee of a transition under the active rules.
func Calculate(pv *version.PlatformVersion, in Input) (inter.FeeResult, error) {
	calc, err := calculators.Resolve(pv)
	if err != nil {
		return inter.FeeResult{}, err
	}
	return calc(in)
}

func calculateV0(in Input) (inter.FeeResult, error) {
	processing := StorageProcessingFee(in.Fees, in.Cost).Add(ValidationFee(in.Fees, in.Log))
	res := inter.FeeResult{
		StorageFee:    inter.Credits(in.Cost.AddedBytes).Mul(in.Fees.Storage.DiskUsageCreditPerByte),
		ProcessingFee: ApplyMultiplier(processing, in.MultiplierPermille),
	}
	if len(in.Cost.RemovedBytes) > 0 {
		refunds, err := RefundCredits(in.Cost.RemovedBytes, in.Rates)
		if err != nil {
			return inter.FeeResult{}, err
		}
		res.Refunds = refunds
	}
	return res, nil
}

// StorageProcessingFee prices the store work of operations, excluding the
// disk usage itself.
func StorageProcessingFee(fv *version.FeeVersion, c storage.OperationCost) inter.Credits {
	written := c.AddedBytes + c.ReplacedBytes
	return inter.SumCredits(
		inter.Credits(c.SeekCount).Mul(fv.Storage.SeekCost),
		inter.Credits(c.LoadedBytes).Mul(fv.Storage.LoadCreditPerByte),
		inter.Credits(written).Mul(fv.Storage.ProcessingCreditPerByte),
		inter.Credits(c.TotalRemovedBytes()).Mul(fv.Storage.ProcessingCreditPerByte),
		inter.Credits(c.HashBlocks).Mul(fv.Hashing.PerBlock),
	)
}

// ValidationFee prices a validation log.
func ValidationFee(fv *version.FeeVersion, log *Log) inter.Credits {
	if log == nil {
		return 0
	}
	var total inter.Credits
	for _, op := range log.Operations() {
		total = total.Add(inter.Credits(op.Count).Mul(unitCost(fv, op)))
		if op.Kind == HashBytes {
			total = total.Add(inter.Credits(fv.Hashing.Base))
		}
	}
	return total
}

func unitCost(fv *version.FeeVersion, op ValidationOperation) uint64 {
	p := fv.Processing
	switch op.Kind {
	case SignatureVerification:
		switch op.KeyType {
		case keys.ECDSASecp256k1:
			return fv.Signature.EcdsaSecp256k1
		case keys.ECDSAHash160:
			return fv.Signature.EcdsaHash160
		case keys.BLS12381:
			return fv.Signature.Bls12381
		}
		return fv.Signature.Bls12381
	case FetchIdentityBalance:
		return p.FetchIdentityBalance
	case FetchIdentityKey:
		return p.FetchIdentityKey
	case FetchIdentityNonce:
		return p.FetchIdentityNonce
	case FetchContract:
		return p.FetchContract
	case FetchDocument:
		return p.FetchDocument
	case FetchTokenState:
		return p.FetchTokenState
	case ValidateKeyStructure:
		return p.ValidateKeyStructure
	case VerifyAssetLockProof:
		return p.VerifyAssetLockProof
	case ValidateDocumentSchema:
		return p.ValidateDocumentSchema
	case HashBytes:
		// per started 64-byte block, approximated per byte
		return (fv.Hashing.PerBlock + 63) / 64
	case PayloadBytes:
		return fv.Storage.NonStorageLoadCreditPerByte
	}
	return 0
}

// ApplyMultiplier scales credits by a permille multiplier, rounding down
// and saturating at the maximum.
func ApplyMultiplier(c inter.Credits, permille uint64) inter.Credits {
	if permille == PermilleBase {
		return c
	}
	scaled := decimal.NewFromBigInt(new(big.Int).SetUint64(uint64(c)), 0).
		Mul(decimal.NewFromBigInt(new(big.Int).SetUint64(permille), 0)).
		Div(decimal.New(PermilleBase, 0)).
		Floor().
		BigInt()
	if !scaled.IsUint64() {
		return inter.MaxCredits
	}
	return inter.Credits(scaled.Uint64())
}

// RefundCredits prices removed bytes at the rate of their birth epoch.
func RefundCredits(removed map[inter.EpochIndex]uint64, rates RateLookup) (inter.FeeRefunds, error) {
	refunds := make(inter.FeeRefunds, len(removed))
	for epoch, n := range removed {
		fv, err := rates(epoch)
		if err != nil {
			return nil, errors.Wrapf(err, "fee rates of epoch %d", epoch)
		}
		refunds.Add(epoch, inter.Credits(n).Mul(fv.Storage.DiskUsageCreditPerByte))
	}
	return refunds, nil
}
