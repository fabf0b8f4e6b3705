package engine

import (
	"context"
	"io/ioutil"
	"testing"

	"github.com/Fantom-foundation/lachesis-base/hash"
	"github.com/Fantom-foundation/lachesis-base/inter/idx"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"

	"github.com/rony4d/go-platform-drive/drive"
	"github.com/rony4d/go-platform-drive/drive/storage"
	"github.com/rony4d/go-platform-drive/execution/pools"
	"github.com/rony4d/go-platform-drive/genesis"
	"github.com/rony4d/go-platform-drive/inter"
	"github.com/rony4d/go-platform-drive/platform"
	"github.com/rony4d/go-platform-drive/transition"
	"github.com/rony4d/go-platform-drive/transition/consensuserr"
)

const testBalance inter.Credits = 1_000_000_000

var testProposer = inter.DeriveIdentifier([]byte("proposer"))

type testChain struct {
	t       *testing.T
	rules   platform.Rules
	gen     *genesis.Genesis
	drive   *drive.Drive
	engine  *Engine
	height  idx.Block
	timeMs  uint64
	propose uint32
}

func quietLogger() *logrus.Logger {
	log := logrus.New()
	log.Out = ioutil.Discard
	return log
}

func newTestChain(t *testing.T, rules platform.Rules) *testChain {
	gen := genesis.Fake(rules, 3, testBalance)
	d, err := drive.New(storage.NewMemory(), 16)
	require.NoError(t, err)
	e, err := New(d, rules, quietLogger(), nil)
	require.NoError(t, err)
	_, err = e.InitChain(gen)
	require.NoError(t, err)
	return &testChain{
		t:      t,
		rules:  rules,
		gen:    gen,
		drive:  d,
		engine: e,
		timeMs: genesis.FakeGenesisTimeMs,
	}
}

func (c *testChain) account(n int) *genesis.Account {
	return c.gen.Accounts[n]
}

// nextBlock returns the block following the last one, stepMs later.
func (c *testChain) nextBlock(stepMs uint64, txs ...[]byte) Block {
	return Block{
		Info: inter.BlockInfo{
			Height:                  c.height + 1,
			TimeMs:                  c.timeMs + stepMs,
			Proposer:                testProposer,
			ProposedProtocolVersion: c.propose,
		},
		Transitions: txs,
	}
}

// run executes and commits a block.
func (c *testChain) run(stepMs uint64, txs ...[]byte) (*BlockOutcome, hash.Hash) {
	b := c.nextBlock(stepMs, txs...)
	out, root, err := c.engine.RunBlock(context.Background(), b)
	require.NoError(c.t, err)
	require.Zero(c.t, out.Pools.Minted, "block %d minted credits", b.Info.Height)
	c.height, c.timeMs = b.Info.Height, b.Info.TimeMs
	return out, root
}

func (c *testChain) sign(acc *genesis.Account, st transition.StateTransition) []byte {
	keyID, _ := st.SignerKeyID()
	raw, err := acc.Encode(c.gen.ProtocolVersion, st, keyID)
	require.NoError(c.t, err)
	return raw
}

func (c *testChain) transfer(from, to int, amount inter.Credits, nonce uint64) []byte {
	return c.sign(c.account(from), &transition.IdentityCreditTransfer{
		IdentityID:  c.account(from).ID,
		RecipientID: c.account(to).ID,
		Amount:      amount,
		Nonce:       nonce,
		Signed:      transition.Signed{SignaturePublicKeyID: genesis.TransferKey},
	})
}

func (c *testChain) registerName(owner int, label string, entropy byte, nonce uint64) []byte {
	acc := c.account(owner)
	return c.sign(acc, &transition.Batch{
		OwnerID:     acc.ID,
		Transitions: []transition.BatchedTransition{genesis.DomainCreate(acc.ID, label, entropy, nonce)},
		Signed:      transition.Signed{SignaturePublicKeyID: genesis.HighKey},
	})
}

func (c *testChain) balance(n int) inter.Credits {
	var balance inter.Credits
	require.NoError(c.t, c.engine.View(func(tx *storage.Transaction) error {
		b, ok, err := drive.FetchIdentityBalance(tx, c.account(n).ID, nil)
		require.True(c.t, ok)
		balance = b
		return err
	}))
	return balance
}

// requireCreditsConserved checks that the credits recorded as issued are
// all held by identities, the system, the open pool or the distribution.
func (c *testChain) requireCreditsConserved() {
	require.NoError(c.t, c.engine.View(func(tx *storage.Transaction) error {
		total, err := drive.FetchTotalCredits(tx, nil)
		require.NoError(c.t, err)
		held, err := drive.FetchTotalBalances(tx)
		require.NoError(c.t, err)
		system, err := drive.FetchSystemCredits(tx, nil)
		require.NoError(c.t, err)
		held = held.Add(system)

		epoch, ok, err := pools.FetchCurrentEpoch(tx)
		require.NoError(c.t, err)
		if ok {
			pool, ok, err := pools.FetchPool(tx, epoch)
			require.NoError(c.t, err)
			require.True(c.t, ok)
			held = held.Add(pool.Total())
		}
		dist, ok, err := pools.FetchDistribution(tx)
		require.NoError(c.t, err)
		if ok {
			held = held.Add(dist.Remaining())
		}
		require.Equal(c.t, total, held)
		return nil
	}))
}

func requireCode(t *testing.T, expected consensuserr.Code, r *TransitionResult) {
	require.NotNil(t, r.Err, "transition %d was applied", r.Index)
	require.Equal(t, expected, r.Err.Code(), r.Err.Error())
}

func TestState(t *testing.T) {
	for s, expected := range map[State]string{
		Idle:            "idle",
		TransactionOpen: "transaction open",
		Committed:       "committed",
		Discarded:       "discarded",
		State(9):        "unknown(9)",
	} {
		require.Equal(t, expected, s.String())
	}
}

func TestInitChain(t *testing.T) {
	c := newTestChain(t, platform.FakeNetRules())
	require.Equal(t, Idle, c.engine.State())
	require.Equal(t, c.drive.Store.RootHash(), c.engine.Decided().Root)

	_, err := c.engine.InitChain(c.gen)
	require.True(t, errors.Is(err, ErrAlreadyInitialized))

	t.Run("blocks before genesis", func(t *testing.T) {
		d, err := drive.New(storage.NewMemory(), 16)
		require.NoError(t, err)
		e, err := New(d, platform.FakeNetRules(), quietLogger(), nil)
		require.NoError(t, err)
		_, err = e.ExecuteBlock(context.Background(), c.nextBlock(1000))
		require.True(t, errors.Is(err, ErrNotInitialized))
		require.Equal(t, Discarded, e.State())
	})
}

func TestLifecycle(t *testing.T) {
	c := newTestChain(t, platform.FakeNetRules())
	ctx := context.Background()

	_, err := c.engine.Commit()
	require.True(t, errors.Is(err, ErrWrongState))
	require.True(t, errors.Is(c.engine.Discard(), ErrWrongState))

	b := c.nextBlock(1000)
	_, err = c.engine.ExecuteBlock(ctx, b)
	require.NoError(t, err)
	require.Equal(t, TransactionOpen, c.engine.State())

	_, err = c.engine.ExecuteBlock(ctx, b)
	require.True(t, errors.Is(err, ErrWrongState))
	require.True(t, errors.Is(c.engine.View(func(*storage.Transaction) error { return nil }), ErrWrongState))

	root, err := c.engine.Commit()
	require.NoError(t, err)
	require.Equal(t, Committed, c.engine.State())
	require.Equal(t, root, c.drive.Store.RootHash())
	c.height, c.timeMs = b.Info.Height, b.Info.TimeMs

	decided := c.engine.Decided()
	require.Equal(t, b.Info.Height, decided.LastBlock.Height)
	require.Equal(t, root, decided.Root)
	require.EqualValues(t, 1, decided.Epoch.StartHeight)

	t.Run("height must follow", func(t *testing.T) {
		skip := c.nextBlock(1000)
		skip.Info.Height++
		_, err := c.engine.ExecuteBlock(ctx, skip)
		require.True(t, errors.Is(err, ErrUnexpectedHeight))
		require.Equal(t, Discarded, c.engine.State())
		require.Equal(t, root, c.drive.Store.RootHash())
	})

	t.Run("time must not go back", func(t *testing.T) {
		back := c.nextBlock(0)
		back.Info.TimeMs--
		_, err := c.engine.ExecuteBlock(ctx, back)
		require.True(t, errors.Is(err, ErrBlockTime))
	})

	t.Run("discard leaves the state", func(t *testing.T) {
		_, err := c.engine.ExecuteBlock(ctx, c.nextBlock(1000, c.transfer(0, 1, 5000, 1)))
		require.NoError(t, err)
		require.NoError(t, c.engine.Discard())
		require.Equal(t, Discarded, c.engine.State())
		require.Equal(t, root, c.drive.Store.RootHash())
		require.Equal(t, testBalance, c.balance(1))
	})

	t.Run("cancelled block leaves the state", func(t *testing.T) {
		cancelled, cancel := context.WithCancel(ctx)
		cancel()
		_, err := c.engine.ExecuteBlock(cancelled, c.nextBlock(1000, c.transfer(0, 1, 5000, 1)))
		require.True(t, errors.Is(err, context.Canceled))
		require.Equal(t, root, c.drive.Store.RootHash())
	})

	t.Run("engine restarts from storage", func(t *testing.T) {
		e, err := New(c.drive, c.rules, quietLogger(), nil)
		require.NoError(t, err)
		restored := e.Decided()
		require.Equal(t, decided.LastBlock, restored.LastBlock)
		require.Equal(t, decided.Root, restored.Root)
		require.Equal(t, decided.Epoch, restored.Epoch)
	})

	// the discarded transfer can still be executed
	out, _ := c.run(1000, c.transfer(0, 1, 5000, 1))
	require.True(t, out.Results[0].Applied())
	require.EqualValues(t, 2, c.engine.Metrics().Get("drive/block/executed").(interface{ Count() int64 }).Count())
}

func TestTransfer(t *testing.T) {
	c := newTestChain(t, platform.FakeNetRules())
	out, _ := c.run(1000, c.transfer(0, 1, 5000, 1))

	require.Len(t, out.Results, 1)
	res := out.Results[0]
	require.True(t, res.Applied())
	require.Equal(t, c.account(0).ID, res.Payer)
	require.NotZero(t, res.Fee.ProcessingFee)
	require.Equal(t, res.Fee, out.Fees)

	paid, debit := res.Fee.Payable()
	require.True(t, debit)
	require.Equal(t, testBalance-5000-paid, c.balance(0))
	require.Equal(t, testBalance+5000, c.balance(1))

	require.Equal(t, 1, out.Receipt.Valid())
	require.Zero(t, out.Receipt.Transitions[0].Code)
	require.Equal(t, uint64(res.Fee.ProcessingFee), out.Receipt.ProcessingFee)
	c.requireCreditsConserved()
}

func TestNonces(t *testing.T) {
	c := newTestChain(t, platform.FakeNetRules())
	out, _ := c.run(1000,
		c.transfer(0, 1, 1000, 1),
		c.transfer(0, 1, 1000, 1),
		c.transfer(0, 1, 1000, 3),
		c.transfer(0, 1, 1000, 2),
	)
	require.True(t, out.Results[0].Applied())
	requireCode(t, consensuserr.CodeNonceOutOfBounds, out.Results[1])
	requireCode(t, consensuserr.CodeNonceOutOfBounds, out.Results[2])
	require.True(t, out.Results[3].Applied())

	// authenticated signers pay for the validation of what they sent
	require.NotZero(t, out.Results[1].Fee.ProcessingFee)
	require.Zero(t, out.Results[1].Fee.StorageFee)
	require.Equal(t, testBalance+2000, c.balance(1))

	var spent inter.Credits
	for _, r := range out.Results {
		paid, _ := r.Fee.Payable()
		spent += paid
	}
	require.Equal(t, testBalance-2000-spent, c.balance(0))
	require.Equal(t, 2, out.Receipt.Valid())
	c.requireCreditsConserved()
}

func TestBalanceIsNotEnough(t *testing.T) {
	reference := newTestChain(t, platform.FakeNetRules())
	out, _ := reference.run(1000, reference.transfer(0, 1, 5000, 1))
	fee, _ := out.Results[0].Fee.Payable()

	// the amount is affordable, the amount and the fee are not
	c := newTestChain(t, platform.FakeNetRules())
	amount := testBalance - fee/2
	raw := c.transfer(0, 1, amount, 1)
	out, root := c.run(1000, raw)

	res := out.Results[0]
	requireCode(t, consensuserr.CodeBalanceIsNotEnough, res)
	require.Zero(t, res.Fee)
	require.Equal(t, testBalance, c.balance(0))
	require.Equal(t, testBalance, c.balance(1))
	require.Equal(t, root, c.engine.Decided().Root)
	require.Equal(t, uint32(consensuserr.CodeBalanceIsNotEnough), out.Receipt.Transitions[0].Code)

	balanceErr := res.Err.(consensuserr.BalanceIsNotEnoughError)
	require.Equal(t, testBalance, balanceErr.Balance)
	require.True(t, balanceErr.Required > testBalance)

	t.Run("rejection is repeatable", func(t *testing.T) {
		again, _ := c.run(1000, raw)
		require.Equal(t, res.Err, again.Results[0].Err)
		require.Equal(t, testBalance, c.balance(0))
	})
	c.requireCreditsConserved()
}

func TestBalanceCoversEstimatedFee(t *testing.T) {
	// same encoded size as the transfers below, so the same fee
	reference := newTestChain(t, platform.FakeNetRules())
	out, _ := reference.run(1000, reference.transfer(0, 1, testBalance/2, 1))
	require.True(t, out.Results[0].Applied())
	fee, _ := out.Results[0].Fee.Payable()

	t.Run("one credit short", func(t *testing.T) {
		c := newTestChain(t, platform.FakeNetRules())
		out, _ := c.run(1000, c.transfer(0, 1, testBalance-fee+1, 1))
		res := out.Results[0]
		requireCode(t, consensuserr.CodeBalanceIsNotEnough, res)
		balanceErr := res.Err.(consensuserr.BalanceIsNotEnoughError)
		require.Equal(t, testBalance+1, balanceErr.Required)
		require.Equal(t, testBalance, c.balance(0))
		c.requireCreditsConserved()
	})

	t.Run("exact fit", func(t *testing.T) {
		c := newTestChain(t, platform.FakeNetRules())
		out, _ := c.run(1000, c.transfer(0, 1, testBalance-fee, 1))
		require.True(t, out.Results[0].Applied(), "%v", out.Results[0].Err)
		require.Zero(t, c.balance(0))
		c.requireCreditsConserved()
	})
}

func TestTransfersBackAndForth(t *testing.T) {
	c := newTestChain(t, platform.FakeNetRules())
	var issued inter.Credits
	require.NoError(t, c.engine.View(func(tx *storage.Transaction) error {
		var err error
		issued, err = drive.FetchTotalCredits(tx, nil)
		return err
	}))

	for round := uint64(1); round <= 4; round++ {
		step := uint64(1000)
		if round == 3 {
			step = c.rules.Epochs.EpochLengthMs()
		}
		out, _ := c.run(step,
			c.transfer(0, 1, 250_000, round),
			c.transfer(1, 0, 100_000, round),
		)
		for _, res := range out.Results {
			require.True(t, res.Applied(), "round %d transition %d", round, res.Index)
		}
		// balances only change in place: nothing is freed, nothing refunded
		require.Zero(t, out.Fees.Refunds.Total(), "round %d", round)
		require.Zero(t, out.Pools.RefundedFromSystem)
		c.requireCreditsConserved()
	}

	require.NoError(t, c.engine.View(func(tx *storage.Transaction) error {
		total, err := drive.FetchTotalCredits(tx, nil)
		require.Equal(t, issued, total)
		return err
	}))
}

func TestUniqueNames(t *testing.T) {
	c := newTestChain(t, platform.FakeNetRules())
	out, _ := c.run(1000,
		c.registerName(0, "alice", 1, 1),
		c.registerName(1, "alice", 1, 1),
		c.registerName(1, "bob", 2, 1),
	)
	require.True(t, out.Results[0].Applied())
	requireCode(t, consensuserr.CodeDuplicateUniqueIndex, out.Results[1])
	require.True(t, out.Results[2].Applied(), "%v", out.Results[2].Err)

	require.NotZero(t, out.Results[0].Fee.StorageFee)
	require.NotZero(t, out.Fees.StorageFee)
	c.requireCreditsConserved()

	data := out.Receipt.Transitions[1].Data
	decoded, err := consensuserr.Decode(consensuserr.CodeDuplicateUniqueIndex, data)
	require.NoError(t, err)
	require.Equal(t, out.Results[1].Err, decoded)
}

func TestUndecodableTransition(t *testing.T) {
	c := newTestChain(t, platform.FakeNetRules())
	out, _ := c.run(1000, []byte{0xff, 0x01, 0x02}, c.transfer(0, 1, 1000, 1))
	require.NotNil(t, out.Results[0].Err)
	require.Equal(t, inter.ZeroIdentifier, out.Results[0].Payer)
	require.Zero(t, out.Results[0].Fee)
	require.True(t, out.Results[1].Applied())
}

func TestOversizedTransition(t *testing.T) {
	c := newTestChain(t, platform.FakeNetRules())
	max := c.rules.Limits.MaxTransitionSize()
	out, _ := c.run(1000, make([]byte, max+1), c.transfer(0, 1, 1000, 1))

	res := out.Results[0]
	requireCode(t, consensuserr.CodeMaxSizeExceeded, res)
	require.Equal(t, consensuserr.MaxSizeExceededError{Size: uint64(max + 1), Max: uint64(max)}, res.Err)
	require.Equal(t, inter.ZeroIdentifier, res.Payer)
	require.Zero(t, res.Fee)
	require.True(t, out.Results[1].Applied())
}

func TestDeterminism(t *testing.T) {
	a := newTestChain(t, platform.FakeNetRules())
	b := newTestChain(t, platform.FakeNetRules())
	require.Equal(t, a.drive.Store.RootHash(), b.drive.Store.RootHash())

	blocks := [][][]byte{
		{a.transfer(0, 1, 1000, 1), a.registerName(2, "carol", 3, 1)},
		{a.transfer(1, 2, 7000, 1), a.transfer(0, 1, 1000, 1), a.registerName(0, "carol", 4, 1)},
		{},
		{a.transfer(0, 2, 5000, 2)},
	}
	for i, txs := range blocks {
		// the last block opens a new epoch
		step := uint64(1000)
		if i == len(blocks)-1 {
			step = a.rules.Epochs.EpochLengthMs()
		}
		outA, rootA := a.run(step, txs...)
		outB, rootB := b.run(step, txs...)
		require.Equal(t, rootA, rootB, "block %d", i)

		rawA, err := outA.Receipt.Encode()
		require.NoError(t, err)
		rawB, err := outB.Receipt.Encode()
		require.NoError(t, err)
		require.Equal(t, rawA, rawB, "block %d", i)
	}
	require.Equal(t, a.engine.Decided(), b.engine.Decided())
}

func TestEpochChange(t *testing.T) {
	c := newTestChain(t, platform.FakeNetRules())
	first, _ := c.run(1000, c.transfer(0, 1, 1000, 1))
	require.True(t, first.EpochInfo.IsChange)
	require.Nil(t, first.EpochRecord)

	second, _ := c.run(1000, c.transfer(0, 1, 1000, 2))
	require.False(t, second.EpochInfo.IsChange)
	out, _ := c.run(c.rules.Epochs.EpochLengthMs())
	require.True(t, out.EpochInfo.IsChange)
	require.True(t, out.Receipt.EpochChanged)
	require.EqualValues(t, 1, out.EpochInfo.Current.Index)

	require.NotNil(t, out.EpochRecord)
	require.EqualValues(t, 0, out.EpochRecord.Epoch.Epoch)
	require.EqualValues(t, 1, out.EpochRecord.Epoch.StartHeight)
	require.EqualValues(t, 2, out.EpochRecord.EndHeight)
	require.EqualValues(t, 2, out.EpochRecord.Blocks)
	require.EqualValues(t, 1, out.EpochRecord.Proposers)
	require.Equal(t, out.EpochRecord.Hash().Bytes(), out.Receipt.EpochRecordHash)
	require.Equal(t, first.Fees.ProcessingFee.Add(second.Fees.ProcessingFee), out.EpochRecord.ProcessingFee)

	require.EqualValues(t, 1, c.engine.Decided().Epoch.Epoch)
	require.EqualValues(t, 3, c.engine.Decided().Epoch.StartHeight)

	// the proposer has no identity: its payouts go to the system
	require.True(t, out.Pools.Distributing)
	for _, p := range out.Pools.Payouts {
		require.True(t, p.ToSystem)
	}
	c.requireCreditsConserved()
}

func TestProtocolUpgrade(t *testing.T) {
	rules := platform.FakeNetRules()
	rules.Protocol.GenesisVersion = 1
	c := newTestChain(t, rules)
	c.propose = 2

	c.run(1000)
	c.run(1000)
	out, _ := c.run(1000, c.transfer(0, 1, 1000, 1))
	require.EqualValues(t, 1, out.ProtocolVersion)

	out, _ = c.run(rules.Epochs.EpochLengthMs())
	require.EqualValues(t, 2, out.ProtocolVersion)
	require.EqualValues(t, 1, out.EpochRecord.Epoch.ProtocolVersion)
	require.EqualValues(t, 1, out.EpochRecord.Epoch.FeeVersion)
	require.EqualValues(t, 2, c.engine.Decided().Epoch.ProtocolVersion)
	require.EqualValues(t, 2, c.engine.Decided().Epoch.FeeVersion)

	require.NoError(t, c.engine.View(func(tx *storage.Transaction) error {
		protocol, _, err := drive.FetchProtocolVersion(tx)
		require.NoError(t, err)
		require.EqualValues(t, 2, protocol)
		feeVersion, ok, err := drive.FetchEpochFeeVersion(tx, inter.NewEpoch(1))
		require.NoError(t, err)
		require.True(t, ok)
		require.EqualValues(t, 2, feeVersion)
		return nil
	}))

	t.Run("not enough votes", func(t *testing.T) {
		c := newTestChain(t, rules)
		c.run(1000)
		c.run(1000)
		c.propose = 2
		c.run(1000)
		out, _ := c.run(rules.Epochs.EpochLengthMs())
		require.EqualValues(t, 1, out.ProtocolVersion)
	})

	t.Run("unsupported version", func(t *testing.T) {
		c := newTestChain(t, rules)
		c.propose = 99
		c.run(1000)
		out, _ := c.run(rules.Epochs.EpochLengthMs())
		require.EqualValues(t, 1, out.ProtocolVersion)
	})
}

func TestReceiptEncoding(t *testing.T) {
	c := newTestChain(t, platform.FakeNetRules())
	out, _ := c.run(1000, c.transfer(0, 1, 1000, 1), c.transfer(0, 1, 1000, 1))

	raw, err := out.Receipt.Encode()
	require.NoError(t, err)
	decoded, err := DecodeReceipt(raw)
	require.NoError(t, err)
	require.Equal(t, out.Receipt.Height, decoded.Height)
	require.Equal(t, out.Receipt.ProcessingFee, decoded.ProcessingFee)
	require.Len(t, decoded.Transitions, 2)
	for i, tr := range decoded.Transitions {
		require.Equal(t, out.Receipt.Transitions[i].Code, tr.Code)
		require.Equal(t, out.Receipt.Transitions[i].Hash, tr.Hash)
		require.Equal(t, out.Receipt.Transitions[i].ProcessingFee, tr.ProcessingFee)
	}
	require.Equal(t, 1, decoded.Valid())
	require.Equal(t, out.Record.Hash().Bytes(), decoded.RecordHash)

	_, err = DecodeReceipt([]byte{0xff, 0xff, 0xff})
	require.Error(t, err)
}
