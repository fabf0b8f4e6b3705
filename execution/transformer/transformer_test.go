package transformer

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/rony4d/go-platform-drive/drive"
	"github.com/rony4d/go-platform-drive/drive/batch"
	"github.com/rony4d/go-platform-drive/drive/storage"
	"github.com/rony4d/go-platform-drive/execution/action"
	"github.com/rony4d/go-platform-drive/execution/validation"
	"github.com/rony4d/go-platform-drive/genesis"
	"github.com/rony4d/go-platform-drive/inter"
	"github.com/rony4d/go-platform-drive/platform"
	"github.com/rony4d/go-platform-drive/platform/version"
	"github.com/rony4d/go-platform-drive/transition"
	"github.com/rony4d/go-platform-drive/transition/contract"
)

type env struct {
	t     *testing.T
	gen   *genesis.Genesis
	drive *drive.Drive
	tx    *storage.Transaction
	block *inter.BlockContext
	pv    *version.PlatformVersion
	v     *validation.Validator
}

func newEnv(t *testing.T) *env {
	rules := platform.FakeNetRules()
	gen := genesis.Fake(rules, 2, 1_000_000_000)
	store := storage.NewMemory()
	d, err := drive.New(store, 16)
	require.NoError(t, err)
	tx, err := store.Begin()
	require.NoError(t, err)
	require.NoError(t, gen.Apply(tx))
	t.Cleanup(tx.Discard)

	pv := version.Latest()
	return &env{
		t:     t,
		gen:   gen,
		drive: d,
		tx:    tx,
		block: &inter.BlockContext{
			BlockInfo:       inter.BlockInfo{Height: 1, TimeMs: genesis.FakeGenesisTimeMs},
			Epoch:           inter.NewEpoch(0),
			ProtocolVersion: pv.ProtocolVersion,
		},
		pv: pv,
		v:  validation.New(d, rules),
	}
}

// execute validates, transforms and applies a signed transition.
func (e *env) execute(raw []byte) action.Action {
	envelope, err := transition.Decode(raw)
	require.NoError(e.t, err)
	ctx, res, err := e.v.Validate(e.tx, e.block, e.pv, envelope)
	require.NoError(e.t, err)
	require.True(e.t, res.IsValid(), "%v", res.Errors)

	a, err := Transform(ctx)
	require.NoError(e.t, err)
	_, err = batch.Apply(e.drive, e.tx, e.block, e.pv, a)
	require.NoError(e.t, err)
	return a
}

func (e *env) signed(acc *genesis.Account, st transition.StateTransition) []byte {
	keyID, _ := st.SignerKeyID()
	raw, err := acc.Encode(e.pv.ProtocolVersion, st, keyID)
	require.NoError(e.t, err)
	return raw
}

func TestIdentityActions(t *testing.T) {
	e := newEnv(t)
	alice := e.gen.Accounts[0]

	lock := genesis.FakeAssetLock(1, 300000)
	st, acc, err := genesis.NewIdentity(e.pv.ProtocolVersion, lock, 100)
	require.NoError(t, err)
	raw, err := transition.Encode(e.pv.ProtocolVersion, st)
	require.NoError(t, err)

	created := e.execute(raw).(*action.IdentityCreate)
	require.Equal(t, acc.ID, created.ID)
	require.EqualValues(t, 300000, created.Credits)
	require.Len(t, created.PublicKeys, 2)

	transfer := e.execute(e.signed(alice, &transition.IdentityCreditTransfer{
		IdentityID:  alice.ID,
		RecipientID: acc.ID,
		Amount:      5000,
		Nonce:       1,
		Signed:      transition.Signed{SignaturePublicKeyID: genesis.TransferKey},
	})).(*action.CreditTransfer)
	require.False(t, transfer.CreateRecipient)

	balance, _, err := drive.FetchIdentityBalance(e.tx, acc.ID, nil)
	require.NoError(t, err)
	require.EqualValues(t, 305000, balance)
}

func TestDocumentActions(t *testing.T) {
	e := newEnv(t)
	alice, bob := e.gen.Accounts[0], e.gen.Accounts[1]
	batchOf := func(owner *genesis.Account, subs ...transition.BatchedTransition) *transition.Batch {
		return &transition.Batch{OwnerID: owner.ID, Transitions: subs, Signed: transition.Signed{SignaturePublicKeyID: genesis.HighKey}}
	}

	create := genesis.DomainCreate(alice.ID, "alice", 1, 1)
	created := e.execute(e.signed(alice, batchOf(alice, create))).(*action.Batch)
	require.Len(t, created.Steps, 1)
	step := created.Steps[0].(*action.DocumentStep)
	require.Nil(t, step.Previous)
	require.Equal(t, create.ID, step.Next.ID)

	holder, ok, err := drive.FetchUniqueIndexEntry(e.tx, genesis.DomainContractID, "domain", "normalizedLabel", step.Next.IndexKey([]string{"normalizedLabel"}), nil)
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, create.ID, holder)

	base := func(nonce uint64) transition.DocumentBase {
		return transition.DocumentBase{ID: create.ID, ContractID: genesis.DomainContractID, DocumentType: "domain", IdentityContractNonce: nonce}
	}
	e.execute(e.signed(alice, batchOf(alice, &transition.DocumentUpdatePrice{DocumentBase: base(2), Revision: 2, Price: 7000})))

	purchased := e.execute(e.signed(bob, batchOf(bob, &transition.DocumentPurchase{DocumentBase: base(1), Revision: 3, Price: 7000}))).(*action.Batch)
	payment := purchased.Steps[0].(*action.DocumentStep).Payment
	require.Equal(t, &action.Payment{From: bob.ID, To: alice.ID, Amount: 7000}, payment)

	doc, ok, err := drive.FetchDocument(e.tx, genesis.DomainContractID, "domain", create.ID, nil)
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, bob.ID, doc.OwnerID)
	require.EqualValues(t, 3, doc.Revision)
	require.Zero(t, doc.Price)

	e.execute(e.signed(bob, batchOf(bob, &transition.DocumentDelete{DocumentBase: base(2)})))
	_, ok, err = drive.FetchDocument(e.tx, genesis.DomainContractID, "domain", create.ID, nil)
	require.NoError(t, err)
	require.False(t, ok)
}

func TestTokenActions(t *testing.T) {
	e := newEnv(t)
	alice, bob := e.gen.Accounts[0], e.gen.Accounts[1]
	tokenID := contract.TokenID(genesis.TokenContractID, 0)

	a := e.execute(e.signed(alice, &transition.Batch{
		OwnerID: alice.ID,
		Transitions: []transition.BatchedTransition{
			&transition.TokenMint{TokenBase: transition.TokenBase{ContractID: genesis.TokenContractID, IdentityContractNonce: 1}, Amount: 500, Recipient: bob.ID},
			&transition.TokenTransfer{TokenBase: transition.TokenBase{ContractID: genesis.TokenContractID, IdentityContractNonce: 2}, Amount: 300, Recipient: bob.ID},
		},
		Signed: transition.Signed{SignaturePublicKeyID: genesis.HighKey},
	})).(*action.Batch)
	mint := a.Steps[0].(*action.TokenStep)
	require.Equal(t, bob.ID, mint.Recipient)
	require.EqualValues(t, 10000, mint.Config.MaxSupply)

	st, _, err := drive.FetchTokenState(e.tx, tokenID, nil)
	require.NoError(t, err)
	require.EqualValues(t, 1500, st.TotalSupply)
	for id, expected := range map[inter.Identifier]uint64{alice.ID: 700, bob.ID: 800} {
		b, _, err := drive.FetchTokenBalance(e.tx, tokenID, id, nil)
		require.NoError(t, err)
		require.Equal(t, expected, b)
	}
}
