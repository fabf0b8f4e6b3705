package validation

import (
	"crypto/ecdsa"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/rony4d/go-platform-drive/drive"
	"github.com/rony4d/go-platform-drive/drive/storage"
	"github.com/rony4d/go-platform-drive/genesis"
	"github.com/rony4d/go-platform-drive/inter"
	"github.com/rony4d/go-platform-drive/platform"
	"github.com/rony4d/go-platform-drive/platform/version"
	"github.com/rony4d/go-platform-drive/transition"
	"github.com/rony4d/go-platform-drive/transition/consensuserr"
)

const fixtureBalance inter.Credits = 10_000_000_000

type fixture struct {
	t     *testing.T
	rules platform.Rules
	gen   *genesis.Genesis
	drive *drive.Drive
	tx    *storage.Transaction
	block *inter.BlockContext
	pv    *version.PlatformVersion
	v     *Validator
}

// newFixture opens a block transaction on top of a fake genesis with three
// funded accounts.
func newFixture(t *testing.T, protocolVersion uint32) *fixture {
	rules := platform.FakeNetRules()
	rules.Protocol.GenesisVersion = protocolVersion
	gen := genesis.Fake(rules, 3, fixtureBalance)

	store := storage.NewMemory()
	d, err := drive.New(store, 16)
	require.NoError(t, err)
	tx, err := store.Begin()
	require.NoError(t, err)
	require.NoError(t, gen.Apply(tx))
	_, err = tx.Commit()
	require.NoError(t, err)

	tx, err = store.Begin()
	require.NoError(t, err)
	t.Cleanup(tx.Discard)

	pv, err := version.Get(protocolVersion)
	require.NoError(t, err)

	return &fixture{
		t:     t,
		rules: rules,
		gen:   gen,
		drive: d,
		tx:    tx,
		block: &inter.BlockContext{
			BlockInfo: inter.BlockInfo{
				Height:         2,
				TimeMs:         genesis.FakeGenesisTimeMs + 1000,
				PreviousTimeMs: genesis.FakeGenesisTimeMs,
			},
			Epoch:           inter.NewEpoch(0),
			ProtocolVersion: protocolVersion,
		},
		pv: pv,
		v:  New(d, rules),
	}
}

func (f *fixture) account(n int) *genesis.Account {
	return f.gen.Accounts[n]
}

// sign signs st with the account key named by the transition signer key id.
func (f *fixture) sign(acc *genesis.Account, st transition.StateTransition) []byte {
	keyID, _ := st.SignerKeyID()
	raw, err := acc.Encode(f.pv.ProtocolVersion, st, keyID)
	require.NoError(f.t, err)
	return raw
}

// signWith signs st with any private key.
func (f *fixture) signWith(prv *ecdsa.PrivateKey, st transition.StateTransition) []byte {
	require.NoError(f.t, transition.Sign(f.pv.ProtocolVersion, st, prv))
	raw, err := transition.Encode(f.pv.ProtocolVersion, st)
	require.NoError(f.t, err)
	return raw
}

func (f *fixture) encode(st transition.StateTransition) []byte {
	raw, err := transition.Encode(f.pv.ProtocolVersion, st)
	require.NoError(f.t, err)
	return raw
}

func (f *fixture) validate(raw []byte) (*Context, *Result) {
	env, err := transition.Decode(raw)
	require.NoError(f.t, err)
	ctx, res, err := f.v.Validate(f.tx, f.block, f.pv, env)
	require.NoError(f.t, err)
	return ctx, res
}

func (f *fixture) requireValid(raw []byte) *Context {
	ctx, res := f.validate(raw)
	require.True(f.t, res.IsValid(), "%v", res.Errors)
	require.Equal(f.t, StageValid, res.Stage)
	return ctx
}

// requireError checks the stage and the type of the first error, and
// returns that error.
func (f *fixture) requireError(raw []byte, stage Stage, expected consensuserr.ConsensusError) consensuserr.ConsensusError {
	_, res := f.validate(raw)
	require.False(f.t, res.IsValid())
	require.Equal(f.t, stage, res.Stage, "%v", res.Errors)
	require.IsType(f.t, expected, res.First())
	return res.First()
}

func (f *fixture) transfer(from, to *genesis.Account, amount inter.Credits, nonce uint64) *transition.IdentityCreditTransfer {
	return &transition.IdentityCreditTransfer{
		IdentityID:  from.ID,
		RecipientID: to.ID,
		Amount:      amount,
		Nonce:       nonce,
		Signed:      transition.Signed{SignaturePublicKeyID: genesis.TransferKey},
	}
}

func (f *fixture) domainBatch(owner *genesis.Account, subs ...transition.BatchedTransition) *transition.Batch {
	return &transition.Batch{
		OwnerID:     owner.ID,
		Transitions: subs,
		Signed:      transition.Signed{SignaturePublicKeyID: genesis.HighKey},
	}
}
