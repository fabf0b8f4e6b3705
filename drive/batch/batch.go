// Package batch translates actions into store operations and applies them.
//
// Every action runs inside its own nested transaction: the operations of
// each step are built against the state left by the previous step and
// applied as one batch, and the nested transaction is committed only when
// every step succeeded.
package batch

import (
	"github.com/pkg/errors"

	"github.com/rony4d/go-platform-drive/drive"
	"github.com/rony4d/go-platform-drive/drive/storage"
	"github.com/rony4d/go-platform-drive/execution/action"
	"github.com/rony4d/go-platform-drive/inter"
	"github.com/rony4d/go-platform-drive/platform/version"
)

// ErrInsufficientBalance is returned when an action debits more than an
// identity holds.
var ErrInsufficientBalance = errors.New("insufficient identity balance")

type buildFunc func(b *builder, a action.Action) error

var (
	identityOps = version.NewRegistry[buildFunc](version.DriveIdentityOperations).
			Register(0, buildIdentityV0)
	contractOps = version.NewRegistry[buildFunc](version.DriveContractOperations).
			Register(0, buildContractV0)
	documentOps = version.NewRegistry[buildFunc](version.DriveDocumentOperations).
			Register(0, buildBatchV0)
	voteOps = version.NewRegistry[buildFunc](version.DriveVoteOperations).
		Register(0, buildVoteV0)
	withdrawalOps = version.NewRegistry[buildFunc](version.DriveWithdrawalOperations).
			Register(0, buildWithdrawalV0)
	tokenOps = version.NewRegistry[func(b *builder, owner inter.Identifier, s *action.TokenStep) error](version.DriveTokenOperations).
			Register(0, buildTokenStepV0)
)

// builder applies the operations of one action to a nested transaction and
// accumulates their cost.
type builder struct {
	drive *drive.Drive
	tx    *storage.Transaction
	block *inter.BlockContext
	pv    *version.PlatformVersion
	cost  storage.OperationCost
}

// apply runs one batch of billed operations.
func (b *builder) apply(ops ...storage.Op) error {
	cost, err := b.tx.Apply(ops, b.block.Epoch.Index)
	b.cost.Add(cost)
	return err
}

// applySystem runs platform bookkeeping that is not billed to the payer.
func (b *builder) applySystem(ops ...storage.Op) error {
	_, err := b.tx.Apply(ops, b.block.Epoch.Index)
	return err
}

// Apply executes an action against tx. Either every operation of the
// action is applied or none is.
func Apply(d *drive.Drive, tx *storage.Transaction, block *inter.BlockContext, pv *version.PlatformVersion, a action.Action) (storage.OperationCost, error) {
	return run(d, tx, block, pv, a, false)
}

// Estimate reports the cost Apply would have without changing tx.
func Estimate(d *drive.Drive, tx *storage.Transaction, block *inter.BlockContext, pv *version.PlatformVersion, a action.Action) (storage.OperationCost, error) {
	return run(d, tx, block, pv, a, true)
}

func run(d *drive.Drive, tx *storage.Transaction, block *inter.BlockContext, pv *version.PlatformVersion, a action.Action, dryRun bool) (storage.OperationCost, error) {
	build, err := resolve(pv, a)
	if err != nil {
		return storage.OperationCost{}, err
	}
	sub, err := tx.Begin()
	if err != nil {
		return storage.OperationCost{}, err
	}
	b := &builder{drive: d, tx: sub, block: block, pv: pv}
	if err := build(b, a); err != nil || dryRun {
		sub.Discard()
		return b.cost, err
	}
	if _, err := sub.Commit(); err != nil {
		return b.cost, err
	}
	switch a := a.(type) {
	case *action.ContractCreate:
		d.Contracts.PutBlock(a.Contract)
	case *action.ContractUpdate:
		d.Contracts.PutBlock(a.Contract)
	}
	return b.cost, nil
}

func resolve(pv *version.PlatformVersion, a action.Action) (buildFunc, error) {
	switch a.(type) {
	case *action.IdentityCreate, *action.IdentityTopUp, *action.IdentityUpdate, *action.CreditTransfer:
		return identityOps.Resolve(pv)
	case *action.CreditWithdrawal:
		return withdrawalOps.Resolve(pv)
	case *action.MasternodeVote:
		return voteOps.Resolve(pv)
	case *action.ContractCreate, *action.ContractUpdate:
		return contractOps.Resolve(pv)
	case *action.Batch:
		return documentOps.Resolve(pv)
	}
	return nil, errors.Errorf("no operations for action %T", a)
}

// ApplySystem runs unbilled platform bookkeeping operations against tx.
func ApplySystem(tx *storage.Transaction, epoch inter.EpochIndex, ops ...storage.Op) error {
	_, err := tx.Apply(ops, epoch)
	return err
}
