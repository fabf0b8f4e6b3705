// Package engine executes blocks of state transitions against the platform
// state.
//
// A block runs in one store transaction. Transitions are processed in
// order: a rejected transition is reported in the receipt and never stops
// the block. After the transitions the fee pools are updated and the block
// metadata is written. Any error that is not a consensus error discards the
// whole transaction, so the committed state only ever moves by whole
// blocks.
package engine

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/Fantom-foundation/lachesis-base/hash"
	"github.com/Fantom-foundation/lachesis-base/inter/idx"
	"github.com/pkg/errors"
	"github.com/rcrowley/go-metrics"
	"github.com/sirupsen/logrus"

	"github.com/rony4d/go-platform-drive/drive"
	"github.com/rony4d/go-platform-drive/drive/batch"
	"github.com/rony4d/go-platform-drive/drive/fees"
	"github.com/rony4d/go-platform-drive/drive/paths"
	"github.com/rony4d/go-platform-drive/drive/storage"
	"github.com/rony4d/go-platform-drive/execution/pools"
	"github.com/rony4d/go-platform-drive/execution/validation"
	"github.com/rony4d/go-platform-drive/inter"
	"github.com/rony4d/go-platform-drive/inter/iblockproc"
	"github.com/rony4d/go-platform-drive/inter/ibr"
	"github.com/rony4d/go-platform-drive/inter/ier"
	"github.com/rony4d/go-platform-drive/platform"
	"github.com/rony4d/go-platform-drive/platform/version"
)

var (
	// ErrWrongState is returned for calls out of the block lifecycle order.
	ErrWrongState = errors.New("call out of block lifecycle order")
	// ErrUnexpectedHeight is returned for a block that does not follow the
	// last committed one.
	ErrUnexpectedHeight = errors.New("unexpected block height")
	// ErrBlockTime is returned for a block older than its predecessor.
	ErrBlockTime = errors.New("block time is before the previous block")
	// ErrNotInitialized is returned when blocks arrive before genesis.
	ErrNotInitialized = errors.New("platform state is not initialized")
	// ErrAlreadyInitialized is returned by InitChain on a non-empty store.
	ErrAlreadyInitialized = errors.New("platform state is already initialized")
)

// State is the lifecycle state of the engine.
type State uint32

const (
	Idle State = iota
	TransactionOpen
	Committed
	Discarded
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case TransactionOpen:
		return "transaction open"
	case Committed:
		return "committed"
	case Discarded:
		return "discarded"
	}
	return fmt.Sprintf("unknown(%d)", uint32(s))
}

// Block is a block as delivered by consensus.
type Block struct {
	Info inter.BlockInfo
	// Transitions are encoded state transitions in consensus order.
	Transitions [][]byte
}

// BlockOutcome is the result of executing a block.
type BlockOutcome struct {
	Info            inter.BlockInfo
	EpochInfo       inter.EpochInfo
	ProtocolVersion uint32
	Results         []*TransitionResult
	// Fees is the sum of what the transitions were charged.
	Fees  inter.FeeResult
	Pools *pools.Outcome
	// Record summarizes the block; EpochRecord the epoch that ended
	// before it, if any.
	Record      ibr.BlockRecord
	EpochRecord *ier.EpochRecord
	Receipt     *Receipt
}

// Genesis writes the initial platform state.
type Genesis interface {
	Apply(tx *storage.Transaction) error
}

var upgrades = version.NewRegistry[upgradeFunc](version.EngineProtocolUpgrade).
	Register(0, protocolUpgradeV0)

type pendingBlock struct {
	outcome *BlockOutcome
	epoch   iblockproc.EpochState
	started time.Time
}

// Engine is the block execution coordinator. It owns the store
// transaction for the duration of a block; calls are serialized.
type Engine struct {
	mu sync.Mutex

	drive     *drive.Drive
	rules     platform.Rules
	validator *validation.Validator
	log       logrus.FieldLogger
	registry  metrics.Registry
	metrics   *engineMetrics

	state   State
	tx      *storage.Transaction
	pending *pendingBlock
	decided iblockproc.BlockState
}

// New creates an engine over d. A nil log uses the standard logger, a nil
// registry a private one.
func New(d *drive.Drive, rules platform.Rules, log logrus.FieldLogger, registry metrics.Registry) (*Engine, error) {
	if log == nil {
		log = logrus.StandardLogger()
	}
	if registry == nil {
		registry = metrics.NewRegistry()
	}
	e := &Engine{
		drive:     d,
		rules:     rules.Copy(),
		validator: validation.New(d, rules),
		log:       log,
		registry:  registry,
		metrics:   newMetrics(registry),
	}
	if err := e.loadDecided(); err != nil {
		return nil, err
	}
	return e, nil
}

// loadDecided restores the decided state from committed storage.
func (e *Engine) loadDecided() error {
	return e.view(func(tx *storage.Transaction) error {
		bs := iblockproc.BlockState{Root: e.drive.Store.RootHash()}
		last, ok, err := drive.FetchLastBlockInfo(tx)
		if err != nil {
			return err
		}
		if ok {
			bs.LastBlock = *last
		}
		epoch, ok, err := pools.FetchCurrentEpoch(tx)
		if err != nil || !ok {
			e.decided = bs
			return err
		}
		if bs.Epoch, err = fetchEpochState(tx, epoch); err != nil {
			return err
		}
		e.decided = bs
		return nil
	})
}

// fetchEpochState rebuilds the state of an epoch whose pool is open.
func fetchEpochState(tx *storage.Transaction, epoch inter.Epoch) (iblockproc.EpochState, error) {
	pool, ok, err := pools.FetchPool(tx, epoch)
	if err != nil {
		return iblockproc.EpochState{}, err
	}
	if !ok {
		return iblockproc.EpochState{}, errors.Wrapf(drive.ErrCorruptedState, "pool of epoch %d is missing", epoch.Index)
	}
	protocol, _, err := drive.FetchProtocolVersion(tx)
	if err != nil {
		return iblockproc.EpochState{}, err
	}
	feeVersion, _, err := drive.FetchEpochFeeVersion(tx, epoch)
	if err != nil {
		return iblockproc.EpochState{}, err
	}
	return iblockproc.EpochState{
		Epoch:           epoch.Index,
		StartHeight:     pool.Start.Height,
		StartTimeMs:     pool.Start.TimeMs,
		ProtocolVersion: protocol,
		FeeVersion:      feeVersion,
	}, nil
}

// State returns the lifecycle state.
func (e *Engine) State() State {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state
}

// Decided returns the state after the last committed block.
func (e *Engine) Decided() iblockproc.BlockState {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.decided.Copy()
}

// Metrics returns the registry the engine reports to.
func (e *Engine) Metrics() metrics.Registry {
	return e.registry
}

// View runs fn against a throwaway transaction over committed state. It
// fails while a block is open.
func (e *Engine) View(fn func(tx *storage.Transaction) error) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.state == TransactionOpen {
		return errors.Wrap(ErrWrongState, "view while a block is open")
	}
	return e.view(fn)
}

func (e *Engine) view(fn func(tx *storage.Transaction) error) error {
	tx, err := e.drive.Store.Begin()
	if err != nil {
		return err
	}
	defer tx.Discard()
	return fn(tx)
}

// InitChain writes the genesis state into an empty store and commits it.
func (e *Engine) InitChain(g Genesis) (hash.Hash, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.state == TransactionOpen {
		return hash.Hash{}, errors.Wrap(ErrWrongState, "init chain while a block is open")
	}
	initialized, err := e.drive.IsInitialized()
	if err != nil {
		return hash.Hash{}, err
	}
	if initialized {
		return hash.Hash{}, ErrAlreadyInitialized
	}
	tx, err := e.drive.Store.Begin()
	if err != nil {
		return hash.Hash{}, err
	}
	if err := g.Apply(tx); err != nil {
		tx.Discard()
		return hash.Hash{}, err
	}
	root, err := tx.Commit()
	if err != nil {
		return hash.Hash{}, errors.Wrap(err, "commit genesis")
	}
	if err := e.loadDecided(); err != nil {
		return hash.Hash{}, err
	}
	e.log.WithField("root", root.String()).Info("Genesis state committed")
	return root, nil
}

// ExecuteBlock runs a block and leaves its transaction open. Commit or
// Discard must follow. On error the transaction is already discarded.
func (e *Engine) ExecuteBlock(ctx context.Context, b Block) (*BlockOutcome, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.state == TransactionOpen {
		return nil, errors.Wrap(ErrWrongState, "execute while a block is open")
	}
	started := time.Now()
	tx, err := e.drive.Store.Begin()
	if err != nil {
		return nil, err
	}
	out, epoch, err := e.execute(ctx, tx, b)
	if err != nil {
		e.discard(tx, b.Info.Height, err)
		return nil, errors.Wrapf(err, "execute block %d", b.Info.Height)
	}
	e.tx = tx
	e.state = TransactionOpen
	e.pending = &pendingBlock{outcome: out, epoch: epoch, started: started}
	return out, nil
}

// Commit persists the open block and returns the new state root.
func (e *Engine) Commit() (hash.Hash, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.state != TransactionOpen {
		return hash.Hash{}, errors.Wrapf(ErrWrongState, "commit in state %s", e.state)
	}
	p := e.pending
	root, err := e.tx.Commit()
	if err != nil {
		e.discard(e.tx, p.outcome.Info.Height, err)
		return hash.Hash{}, errors.Wrapf(err, "commit block %d", p.outcome.Info.Height)
	}
	e.drive.Contracts.MergeBlock()
	e.decided = iblockproc.BlockState{
		LastBlock:  p.outcome.Info,
		Root:       root,
		RecordHash: p.outcome.Record.Hash(),
		Epoch:      p.epoch,
	}
	e.tx, e.pending = nil, nil
	e.state = Committed

	out := p.outcome
	e.metrics.executed.Inc(1)
	e.metrics.execute.UpdateSince(p.started)
	e.metrics.processingFees.Mark(int64(out.Fees.ProcessingFee))
	e.metrics.storageFees.Mark(int64(out.Fees.StorageFee))
	valid := out.Receipt.Valid()
	e.metrics.validTransitions.Inc(int64(valid))
	e.metrics.invalidTransition.Inc(int64(len(out.Results) - valid))

	e.log.WithFields(logrus.Fields{
		"height":  out.Info.Height,
		"epoch":   out.EpochInfo.Current.Index,
		"txs":     len(out.Results),
		"valid":   valid,
		"invalid": len(out.Results) - valid,
		"root":    root.String(),
	}).Info("Block committed")
	return root, nil
}

// Discard drops the open block.
func (e *Engine) Discard() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.state != TransactionOpen {
		return errors.Wrapf(ErrWrongState, "discard in state %s", e.state)
	}
	e.discard(e.tx, e.pending.outcome.Info.Height, nil)
	return nil
}

func (e *Engine) discard(tx *storage.Transaction, height idx.Block, cause error) {
	tx.Discard()
	e.drive.Contracts.ClearBlock()
	e.tx, e.pending = nil, nil
	e.state = Discarded
	e.metrics.discarded.Inc(1)
	log := e.log.WithField("height", height)
	if cause != nil {
		log = log.WithError(cause)
	}
	log.Warn("Block discarded")
}

// RunBlock executes a block and commits it.
func (e *Engine) RunBlock(ctx context.Context, b Block) (*BlockOutcome, hash.Hash, error) {
	out, err := e.ExecuteBlock(ctx, b)
	if err != nil {
		return nil, hash.Hash{}, err
	}
	root, err := e.Commit()
	if err != nil {
		return nil, hash.Hash{}, err
	}
	return out, root, nil
}

// execute runs the block against tx. It returns the epoch state the block
// leaves.
func (e *Engine) execute(ctx context.Context, tx *storage.Transaction, b Block) (*BlockOutcome, iblockproc.EpochState, error) {
	var none iblockproc.EpochState
	if err := ctx.Err(); err != nil {
		return nil, none, err
	}
	info := b.Info
	last, hasLast, err := drive.FetchLastBlockInfo(tx)
	if err != nil {
		return nil, none, err
	}
	if hasLast {
		if info.Height != last.Height+1 {
			return nil, none, errors.Wrapf(ErrUnexpectedHeight, "got %d after %d", info.Height, last.Height)
		}
		if info.TimeMs < last.TimeMs {
			return nil, none, errors.Wrapf(ErrBlockTime, "%d < %d", info.TimeMs, last.TimeMs)
		}
		info.PreviousTimeMs = last.TimeMs
	} else {
		if info.Height != 1 {
			return nil, none, errors.Wrapf(ErrUnexpectedHeight, "first block has height %d", info.Height)
		}
		info.PreviousTimeMs = 0
	}

	protocol, ok, err := drive.FetchProtocolVersion(tx)
	if err != nil {
		return nil, none, err
	}
	if !ok {
		return nil, none, ErrNotInitialized
	}
	genesisMs, ok, err := drive.FetchGenesisTime(tx)
	if err != nil {
		return nil, none, err
	}
	if !ok {
		genesisMs = info.TimeMs
		op := storage.PutItemOp(paths.Misc.Path(), paths.GenesisTimeKey, drive.EncodeUint64(genesisMs)).System()
		if err := batch.ApplySystem(tx, 0, op); err != nil {
			return nil, none, err
		}
	}
	epochInfo, err := inter.NewEpochInfo(genesisMs, info.TimeMs, info.PreviousTimeMs, hasLast, e.rules.Epochs.EpochLengthMs())
	if err != nil {
		return nil, none, err
	}
	epoch := epochInfo.Current

	pv, err := version.Get(protocol)
	if err != nil {
		return nil, none, err
	}
	endedProtocol := protocol
	epochState := e.decided.Epoch
	multiplier := e.rules.Economy.FeeMultiplierPermille
	if epochInfo.IsChange {
		if epochInfo.Previous != nil {
			if protocol, err = e.upgradeProtocol(tx, pv, inter.NewEpoch(*epochInfo.Previous), protocol); err != nil {
				return nil, none, err
			}
			if pv, err = version.Get(protocol); err != nil {
				return nil, none, err
			}
		}
		ops := []storage.Op{
			storage.InsertTreeOp(paths.Versions.Path(), epoch.Bytes()).System(),
			storage.PutItemOp(paths.VersionsEpochPath(epoch), paths.EpochFeeVersionKey, drive.EncodeUint64(uint64(pv.FeeVersion))).System(),
		}
		if err := batch.ApplySystem(tx, epoch.Index, ops...); err != nil {
			return nil, none, errors.Wrapf(err, "open versions of epoch %d", epoch.Index)
		}
		epochState = iblockproc.EpochState{
			Epoch:           epoch.Index,
			StartHeight:     uint64(info.Height),
			StartTimeMs:     info.TimeMs,
			ProtocolVersion: protocol,
			FeeVersion:      uint64(pv.FeeVersion),
		}
	} else {
		pool, ok, err := pools.FetchPool(tx, epoch)
		if err != nil {
			return nil, none, err
		}
		if !ok {
			return nil, none, errors.Wrapf(drive.ErrCorruptedState, "pool of epoch %d is missing", epoch.Index)
		}
		multiplier = pool.Start.MultiplierPermille
	}
	if err := countVote(tx, epoch, info.ProposedProtocolVersion); err != nil {
		return nil, none, err
	}

	fv, err := pv.Fees()
	if err != nil {
		return nil, none, err
	}
	run := &blockRun{
		tx: tx,
		block: &inter.BlockContext{
			BlockInfo:       info,
			Epoch:           epoch,
			ProtocolVersion: protocol,
		},
		pv:         pv,
		fees:       fv,
		multiplier: multiplier,
		rates:      rates(tx, fv),
	}
	process, err := processors.Resolve(pv)
	if err != nil {
		return nil, none, err
	}
	out := &BlockOutcome{
		Info:            info,
		EpochInfo:       epochInfo,
		ProtocolVersion: protocol,
		Results:         make([]*TransitionResult, 0, len(b.Transitions)),
	}
	for i, raw := range b.Transitions {
		if err := ctx.Err(); err != nil {
			return nil, none, err
		}
		res, err := process(e, run, i, raw)
		if err != nil {
			return nil, none, err
		}
		out.Results = append(out.Results, res)
		out.Fees.Merge(res.Fee)
		if res.Err != nil {
			e.log.WithFields(logrus.Fields{
				"height": info.Height,
				"index":  i,
				"code":   res.Err.Code(),
				"reason": res.Err.Error(),
			}).Debug("Transition rejected")
		}
	}

	if out.Pools, err = pools.ProcessBlock(tx, pv, pools.Input{
		Block:              run.block,
		EpochInfo:          epochInfo,
		Fees:               out.Fees,
		MultiplierPermille: multiplier,
	}); err != nil {
		return nil, none, errors.Wrap(err, "process fee pools")
	}
	op := storage.PutItemOp(paths.Misc.Path(), paths.LastBlockKey, drive.EncodeBlockInfo(&info)).System()
	if err := batch.ApplySystem(tx, epoch.Index, op); err != nil {
		return nil, none, err
	}

	if ended := out.Pools.Ended; ended != nil {
		feeVersion, _, err := drive.FetchEpochFeeVersion(tx, ended.Pool.Epoch)
		if err != nil {
			return nil, none, err
		}
		out.EpochRecord = &ier.EpochRecord{
			Epoch: iblockproc.EpochState{
				Epoch:           ended.Pool.Epoch.Index,
				StartHeight:     ended.Pool.Start.Height,
				StartTimeMs:     ended.Pool.Start.TimeMs,
				ProtocolVersion: endedProtocol,
				FeeVersion:      feeVersion,
			},
			EndHeight:     uint64(last.Height),
			Blocks:        ended.Blocks,
			Proposers:     uint32(ended.Proposers),
			ProcessingFee: ended.Pool.ProcessingFee,
			StorageFee:    ended.Pool.StorageFee,
		}
	}
	if err := e.seal(out, b.Transitions); err != nil {
		return nil, none, err
	}
	return out, epochState, nil
}

// seal builds the block record and the receipt.
func (e *Engine) seal(out *BlockOutcome, raw [][]byte) error {
	receipts := make([]TransitionReceipt, len(out.Results))
	for i, r := range out.Results {
		tr, err := r.receipt()
		if err != nil {
			return err
		}
		receipts[i] = tr
	}
	out.Record = ibr.BlockRecord{
		Height:          out.Info.Height,
		TimeMs:          out.Info.TimeMs,
		Epoch:           out.EpochInfo.Current.Index,
		ProtocolVersion: out.ProtocolVersion,
		TransitionsHash: ibr.TransitionsHash(raw),
		ResultsHash:     resultsHash(receipts),
		ProcessingFee:   out.Fees.ProcessingFee,
		StorageFee:      out.Fees.StorageFee,
		Refunds:         out.Fees.Refunds.Total(),
	}
	out.Receipt = &Receipt{
		Height:          uint64(out.Info.Height),
		Epoch:           uint32(out.EpochInfo.Current.Index),
		EpochChanged:    out.EpochInfo.IsChange,
		ProtocolVersion: out.ProtocolVersion,
		Transitions:     receipts,
		ProcessingFee:   uint64(out.Fees.ProcessingFee),
		StorageFee:      uint64(out.Fees.StorageFee),
		Refunds:         uint64(out.Fees.Refunds.Total()),
		Paid:            uint64(out.Pools.Paid()),
		RecordHash:      out.Record.Hash().Bytes(),
	}
	if out.EpochRecord != nil {
		out.Receipt.EpochRecordHash = out.EpochRecord.Hash().Bytes()
	}
	return nil
}

// upgradeProtocol activates the protocol version the ended epoch voted for.
func (e *Engine) upgradeProtocol(tx *storage.Transaction, pv *version.PlatformVersion, ended inter.Epoch, current uint32) (uint32, error) {
	upgrade, err := upgrades.Resolve(pv)
	if err != nil {
		return 0, err
	}
	next, err := upgrade(tx, e.rules, ended, current)
	if err != nil || next == current {
		return current, err
	}
	op := storage.PutItemOp(paths.Misc.Path(), paths.ProtocolVersionKey, drive.EncodeUint64(uint64(next))).System()
	if err := batch.ApplySystem(tx, ended.Index, op); err != nil {
		return 0, err
	}
	e.log.WithFields(logrus.Fields{
		"epoch": ended.Index,
		"from":  current,
		"to":    next,
	}).Info("Protocol version upgraded")
	return next, nil
}

// countVote counts the block for the protocol version its proposer
// supports.
func countVote(tx *storage.Transaction, epoch inter.Epoch, proposed uint32) error {
	if proposed == 0 {
		return nil
	}
	path, key := paths.VersionsEpochPath(epoch), paths.ProtocolVersionKeyOf(proposed)
	e, ok, err := tx.Get(path, key, nil)
	if err != nil {
		return err
	}
	var count uint64
	if ok {
		if count, err = drive.DecodeUint64(e.Value); err != nil {
			return err
		}
	}
	return batch.ApplySystem(tx, epoch.Index, storage.PutItemOp(path, key, drive.EncodeUint64(count+1)).System())
}

// rates prices refunds at the fee version of the epoch that paid for the
// storage. Epochs without a recorded version use current.
func rates(tx *storage.Transaction, current *version.FeeVersion) fees.RateLookup {
	return func(epoch inter.EpochIndex) (*version.FeeVersion, error) {
		v, ok, err := drive.FetchEpochFeeVersion(tx, inter.NewEpoch(epoch))
		if err != nil {
			return nil, err
		}
		if !ok {
			return current, nil
		}
		return version.FeeVersionByNumber(version.FeatureVersion(v))
	}
}
