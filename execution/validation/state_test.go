package validation

import (
	"crypto/ecdsa"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/rony4d/go-platform-drive/drive/batch"
	"github.com/rony4d/go-platform-drive/execution/action"
	"github.com/rony4d/go-platform-drive/genesis"
	"github.com/rony4d/go-platform-drive/inter"
	"github.com/rony4d/go-platform-drive/inter/keys"
	"github.com/rony4d/go-platform-drive/transition"
	"github.com/rony4d/go-platform-drive/transition/consensuserr"
	"github.com/rony4d/go-platform-drive/transition/document"
)

// storeCreate applies a validated document creation to the block
// transaction.
func (f *fixture) storeCreate(owner inter.Identifier, create *transition.DocumentCreate, ctx *Context) {
	c := ctx.Contracts[create.ContractID]
	dt, ok := c.DocumentType(create.DocumentType)
	require.True(f.t, ok)
	_, err := batch.Apply(f.drive, f.tx, f.block, f.pv, &action.Batch{
		Owner: owner,
		Steps: []action.Step{&action.DocumentStep{
			Kind:                  transition.DocumentCreateAction,
			ContractID:            c.ID,
			DocumentType:          dt,
			Next:                  ctx.Next[create.ID],
			IdentityContractNonce: create.IdentityContractNonce,
		}},
	})
	require.NoError(f.t, err)
}

func TestCreditTransferState(t *testing.T) {
	f := newFixture(t, 2)
	alice, bob := f.account(0), f.account(1)

	t.Run("nonce gap", func(t *testing.T) {
		e := f.requireError(f.sign(alice, f.transfer(alice, bob, 5000, 2)), StageState, consensuserr.NonceOutOfBoundsError{})
		require.Equal(t, consensuserr.NonceOutOfBoundsError{Identity: alice.ID, Expected: 1, Provided: 2}, e)
	})

	t.Run("whole balance leaves nothing for fees", func(t *testing.T) {
		e := f.requireError(f.sign(alice, f.transfer(alice, bob, fixtureBalance, 1)), StageState, consensuserr.BalanceIsNotEnoughError{})
		balanceErr := e.(consensuserr.BalanceIsNotEnoughError)
		require.Equal(t, fixtureBalance, balanceErr.Balance)
		require.Greater(t, uint64(balanceErr.Required), uint64(fixtureBalance))
	})

	t.Run("unknown recipient", func(t *testing.T) {
		ghost := genesis.FakeAccount(50, 0)
		f.requireError(f.sign(alice, f.transfer(alice, ghost, 5000, 1)), StageState, consensuserr.IdentityDoesNotExistError{})
	})
}

func TestCreditTransferCreatesRecipientBeforeV2(t *testing.T) {
	f := newFixture(t, 1)
	alice := f.account(0)
	ghost := genesis.FakeAccount(50, 0)

	ctx := f.requireValid(f.sign(alice, f.transfer(alice, ghost, 5000, 1)))
	require.False(t, ctx.RecipientExists)
}

func TestWithdrawalState(t *testing.T) {
	f := newFixture(t, 2)
	alice := f.account(0)
	st := &transition.IdentityCreditWithdrawal{
		IdentityID:     alice.ID,
		Amount:         200000,
		CoreFeePerByte: 1,
		OutputScript:   make([]byte, 25),
		Nonce:          1,
		Signed:         transition.Signed{SignaturePublicKeyID: genesis.TransferKey},
	}
	ctx := f.requireValid(f.sign(alice, st))
	require.EqualValues(t, 200000, ctx.Required)
}

func TestIdentityUpdateState(t *testing.T) {
	f := newFixture(t, 2)
	alice := f.account(0)

	update := func(revision uint64, disable ...keys.KeyID) *transition.IdentityUpdate {
		return &transition.IdentityUpdate{
			IdentityID:        alice.ID,
			Revision:          revision,
			Nonce:             1,
			DisablePublicKeys: disable,
			Signed:            transition.Signed{SignaturePublicKeyID: genesis.MasterKey},
		}
	}

	t.Run("revision", func(t *testing.T) {
		e := f.requireError(f.sign(alice, update(2)), StageState, consensuserr.InvalidIdentityRevisionError{})
		require.Equal(t, consensuserr.InvalidIdentityRevisionError{Identity: alice.ID, Current: 0, Provided: 2}, e)
	})

	t.Run("master key cannot be disabled", func(t *testing.T) {
		e := f.requireError(f.sign(alice, update(1, genesis.MasterKey)), StageState, consensuserr.KeyCannotBeDisabledError{})
		require.Equal(t, consensuserr.KeyCannotBeDisabledError{ID: genesis.MasterKey}, e)
	})

	t.Run("unknown key", func(t *testing.T) {
		e := f.requireError(f.sign(alice, update(1, 9)), StageState, consensuserr.MissingIdentityPublicKeyIDsError{})
		require.Equal(t, consensuserr.MissingIdentityPublicKeyIDsError{IDs: []keys.KeyID{9}}, e)
	})

	t.Run("add and disable", func(t *testing.T) {
		st := update(1, genesis.HighKey)
		prv := genesis.FakeKey(7777)
		data, err := keys.FromPrivateKey(prv, keys.ECDSASecp256k1)
		require.NoError(t, err)
		st.AddPublicKeys = []transition.KeyInCreation{{
			ID:            8,
			Type:          keys.ECDSASecp256k1,
			Purpose:       keys.Authentication,
			SecurityLevel: keys.High,
			Data:          data,
		}}
		require.NoError(t, transition.SignIdentityUpdate(f.pv.ProtocolVersion, st, alice.PrivateKey(genesis.MasterKey), map[keys.KeyID]*ecdsa.PrivateKey{8: prv}))
		f.requireValid(f.encode(st))
	})

	t.Run("reused key id", func(t *testing.T) {
		st := update(1)
		prv := genesis.FakeKey(7778)
		data, err := keys.FromPrivateKey(prv, keys.ECDSASecp256k1)
		require.NoError(t, err)
		st.AddPublicKeys = []transition.KeyInCreation{{
			ID:            genesis.VotingKey,
			Type:          keys.ECDSASecp256k1,
			Purpose:       keys.Authentication,
			SecurityLevel: keys.High,
			Data:          data,
		}}
		require.NoError(t, transition.SignIdentityUpdate(f.pv.ProtocolVersion, st, alice.PrivateKey(genesis.MasterKey), map[keys.KeyID]*ecdsa.PrivateKey{genesis.VotingKey: prv}))
		f.requireError(f.encode(st), StageState, consensuserr.DuplicatedIdentityPublicKeyIDError{})
	})
}

func TestIdentityCreateState(t *testing.T) {
	f := newFixture(t, 2)

	lock := genesis.FakeAssetLock(1, 200000)
	st, _, err := genesis.NewIdentity(f.pv.ProtocolVersion, lock, 100)
	require.NoError(t, err)
	f.requireValid(f.encode(st))

	// keys already registered to a genesis identity
	alice := f.account(0)
	st.PublicKeys[1].Data = alice.Keys[genesis.HighKey].Data
	privates := map[keys.KeyID]*ecdsa.PrivateKey{
		0: genesis.FakeKey(100*16 + 1),
		1: alice.PrivateKey(genesis.HighKey),
	}
	require.NoError(t, transition.SignIdentityCreate(f.pv.ProtocolVersion, st, lock.Key, privates))
	e := f.requireError(f.encode(st), StageState, consensuserr.DuplicatedIdentityPublicKeyStateError{})
	require.Equal(t, consensuserr.DuplicatedIdentityPublicKeyStateError{IDs: []keys.KeyID{1}}, e)
}

func TestDocumentState(t *testing.T) {
	f := newFixture(t, 2)
	alice, bob := f.account(0), f.account(1)

	t.Run("unique label twice in one batch", func(t *testing.T) {
		st := f.domainBatch(alice,
			genesis.DomainCreate(alice.ID, "alice", 1, 1),
			genesis.DomainCreate(alice.ID, "alice", 2, 2),
		)
		f.requireError(f.sign(alice, st), StageState, consensuserr.DuplicateUniqueIndexInBatchError{})
	})

	t.Run("same document twice in one batch", func(t *testing.T) {
		create := genesis.DomainCreate(alice.ID, "alice", 1, 1)
		st := f.domainBatch(alice, create, &transition.DocumentDelete{DocumentBase: transition.DocumentBase{
			ID:                    create.ID,
			ContractID:            genesis.DomainContractID,
			DocumentType:          "domain",
			IdentityContractNonce: 2,
		}})
		f.requireError(f.sign(alice, st), StageState, consensuserr.DuplicateDocumentTransitionsWithIDsError{})
	})

	t.Run("unknown contract", func(t *testing.T) {
		create := genesis.DomainCreate(alice.ID, "alice", 1, 1)
		create.ContractID = inter.DeriveIdentifier([]byte("missing"))
		create.ID = document.GenerateID(create.ContractID, alice.ID, "domain", create.Entropy[:])
		f.requireError(f.sign(alice, f.domainBatch(alice, create)), StageState, consensuserr.DataContractNotFoundError{})
	})

	t.Run("unknown document type", func(t *testing.T) {
		create := genesis.DomainCreate(alice.ID, "alice", 1, 1)
		create.DocumentType = "nickname"
		create.ID = document.GenerateID(create.ContractID, alice.ID, "nickname", create.Entropy[:])
		f.requireError(f.sign(alice, f.domainBatch(alice, create)), StageState, consensuserr.DocumentTypeNotFoundError{})
	})

	t.Run("missing required property", func(t *testing.T) {
		create := genesis.DomainCreate(alice.ID, "alice", 1, 1)
		create.Properties = create.Properties[:1]
		e := f.requireError(f.sign(alice, f.domainBatch(alice, create)), StageState, consensuserr.InvalidDocumentPropertiesError{})
		require.Equal(t, "normalizedLabel", e.(consensuserr.InvalidDocumentPropertiesError).Property)
	})

	// alice registers her name
	create := genesis.DomainCreate(alice.ID, "alice", 1, 1)
	ctx := f.requireValid(f.sign(alice, f.domainBatch(alice, create)))
	next := ctx.Next[create.ID]
	require.NotNil(t, next)
	require.Equal(t, alice.ID, next.OwnerID)
	require.EqualValues(t, 1, next.Revision)
	require.Equal(t, f.block.TimeMs, next.CreatedAtMs)
	f.storeCreate(alice.ID, create, ctx)

	base := func(nonce uint64) transition.DocumentBase {
		return transition.DocumentBase{
			ID:                    create.ID,
			ContractID:            genesis.DomainContractID,
			DocumentType:          "domain",
			IdentityContractNonce: nonce,
		}
	}

	t.Run("name taken", func(t *testing.T) {
		e := f.requireError(f.sign(bob, f.domainBatch(bob, genesis.DomainCreate(bob.ID, "alice", 1, 1))), StageState, consensuserr.DuplicateUniqueIndexError{})
		require.Equal(t, create.ID, e.(consensuserr.DuplicateUniqueIndexError).Conflicting)
	})

	t.Run("contract nonce is consumed", func(t *testing.T) {
		e := f.requireError(f.sign(alice, f.domainBatch(alice, genesis.DomainCreate(alice.ID, "alice2", 2, 1))), StageState, consensuserr.NonceOutOfBoundsError{})
		require.EqualValues(t, 2, e.(consensuserr.NonceOutOfBoundsError).Expected)
	})

	t.Run("replace by another owner", func(t *testing.T) {
		replace := &transition.DocumentReplace{DocumentBase: base(1), Revision: 2, Properties: create.Properties}
		f.requireError(f.sign(bob, f.domainBatch(bob, replace)), StageState, consensuserr.DocumentOwnerIDMismatchError{})
	})

	t.Run("replace with a stale revision", func(t *testing.T) {
		replace := &transition.DocumentReplace{DocumentBase: base(2), Revision: 3, Properties: create.Properties}
		e := f.requireError(f.sign(alice, f.domainBatch(alice, replace)), StageState, consensuserr.InvalidDocumentRevisionError{})
		require.Equal(t, consensuserr.InvalidDocumentRevisionError{Document: create.ID, Current: 1, Provided: 3}, e)
	})

	t.Run("replace", func(t *testing.T) {
		replace := &transition.DocumentReplace{DocumentBase: base(2), Revision: 2, Properties: create.Properties}
		ctx := f.requireValid(f.sign(alice, f.domainBatch(alice, replace)))
		require.EqualValues(t, 1, ctx.Documents[create.ID].Revision)
		require.EqualValues(t, 2, ctx.Next[create.ID].Revision)
	})

	t.Run("purchase when not for sale", func(t *testing.T) {
		purchase := &transition.DocumentPurchase{DocumentBase: base(1), Revision: 2, Price: 10}
		f.requireError(f.sign(bob, f.domainBatch(bob, purchase)), StageState, consensuserr.DocumentNotForSaleError{})
	})

	t.Run("transfer to an unknown identity", func(t *testing.T) {
		transfer := &transition.DocumentTransfer{DocumentBase: base(2), Revision: 2, Recipient: inter.DeriveIdentifier([]byte("nobody"))}
		f.requireError(f.sign(alice, f.domainBatch(alice, transfer)), StageState, consensuserr.IdentityDoesNotExistError{})
	})

	t.Run("delete a missing document", func(t *testing.T) {
		missing := base(2)
		missing.ID = inter.DeriveIdentifier([]byte("missing"))
		f.requireError(f.sign(alice, f.domainBatch(alice, &transition.DocumentDelete{DocumentBase: missing})), StageState, consensuserr.DocumentNotFoundError{})
	})

	t.Run("delete", func(t *testing.T) {
		ctx := f.requireValid(f.sign(alice, f.domainBatch(alice, &transition.DocumentDelete{DocumentBase: base(2)})))
		require.NotNil(t, ctx.Documents[create.ID])
	})
}

func TestContractUpdateState(t *testing.T) {
	f := newFixture(t, 2)
	alice, bob := f.account(0), f.account(1)

	update := func(owner *genesis.Account, version uint32, nonce uint64) *transition.DataContractUpdate {
		c := genesis.DomainContract(owner.ID)
		c.Version = version
		return &transition.DataContractUpdate{
			Contract:              c,
			IdentityContractNonce: nonce,
			Signed:                transition.Signed{SignaturePublicKeyID: genesis.CriticalKey},
		}
	}

	t.Run("nonce", func(t *testing.T) {
		e := f.requireError(f.sign(alice, update(alice, 2, 2)), StageState, consensuserr.NonceOutOfBoundsError{})
		require.EqualValues(t, 1, e.(consensuserr.NonceOutOfBoundsError).Expected)
	})

	t.Run("version", func(t *testing.T) {
		e := f.requireError(f.sign(alice, update(alice, 1, 1)), StageState, consensuserr.InvalidDataContractVersionError{})
		require.Equal(t, consensuserr.InvalidDataContractVersionError{Expected: 2, Provided: 1}, e)
	})

	t.Run("owner", func(t *testing.T) {
		e := f.requireError(f.sign(bob, update(bob, 2, 1)), StageState, consensuserr.IncompatibleDataContractError{})
		require.Equal(t, "owner", e.(consensuserr.IncompatibleDataContractError).Field)
	})

	t.Run("dropped document type", func(t *testing.T) {
		st := update(alice, 2, 1)
		st.Contract.DocumentTypes = st.Contract.DocumentTypes[:1]
		f.requireError(f.sign(alice, st), StageState, consensuserr.IncompatibleDataContractError{})
	})

	t.Run("valid", func(t *testing.T) {
		f.requireValid(f.sign(alice, update(alice, 2, 1)))
	})
}

func TestVoteState(t *testing.T) {
	f := newFixture(t, 2)
	alice := f.account(0)

	vote := func(index string) *transition.MasternodeVote {
		return &transition.MasternodeVote{
			ProTxHash:       [32]byte{1},
			VoterIdentityID: alice.ID,
			Poll: transition.VotePoll{
				ContractID:   genesis.DomainContractID,
				DocumentType: "domain",
				IndexName:    index,
				IndexValues:  [][]byte{[]byte("alice")},
			},
			Choice: transition.VoteChoice{Kind: transition.Abstain},
			Nonce:  1,
			Signed: transition.Signed{SignaturePublicKeyID: genesis.VotingKey},
		}
	}

	f.requireValid(f.sign(alice, vote("normalizedLabel")))
	f.requireError(f.sign(alice, vote("identity")), StageState, consensuserr.VotePollNotAvailableError{})

	towards := vote("normalizedLabel")
	towards.Choice = transition.VoteChoice{Kind: transition.TowardsIdentity, Identity: inter.DeriveIdentifier([]byte("nobody"))}
	f.requireError(f.sign(alice, towards), StageState, consensuserr.IdentityDoesNotExistError{})
}

func TestTokenState(t *testing.T) {
	f := newFixture(t, 2)
	alice, bob := f.account(0), f.account(1)

	tokenBase := func(nonce uint64) transition.TokenBase {
		return transition.TokenBase{ContractID: genesis.TokenContractID, IdentityContractNonce: nonce}
	}

	t.Run("mint by a stranger", func(t *testing.T) {
		mint := &transition.TokenMint{TokenBase: tokenBase(1), Amount: 5}
		f.requireError(f.sign(bob, f.domainBatch(bob, mint)), StageState, consensuserr.UnauthorizedTokenActionError{})
	})

	t.Run("mint past max supply", func(t *testing.T) {
		mint := &transition.TokenMint{TokenBase: tokenBase(1), Amount: 9001}
		e := f.requireError(f.sign(alice, f.domainBatch(alice, mint)), StageState, consensuserr.TokenMintPastMaxSupplyError{})
		require.EqualValues(t, 1000, e.(consensuserr.TokenMintPastMaxSupplyError).Supply)
	})

	t.Run("transfers see earlier steps", func(t *testing.T) {
		st := f.domainBatch(alice,
			&transition.TokenTransfer{TokenBase: tokenBase(1), Amount: 600, Recipient: bob.ID},
			&transition.TokenTransfer{TokenBase: tokenBase(2), Amount: 600, Recipient: bob.ID},
		)
		e := f.requireError(f.sign(alice, st), StageState, consensuserr.InsufficientTokenBalanceError{})
		require.EqualValues(t, 400, e.(consensuserr.InsufficientTokenBalanceError).Balance)
	})

	t.Run("mint then transfer", func(t *testing.T) {
		st := f.domainBatch(alice,
			&transition.TokenMint{TokenBase: tokenBase(1), Amount: 100},
			&transition.TokenTransfer{TokenBase: tokenBase(2), Amount: 1100, Recipient: bob.ID},
		)
		f.requireValid(f.sign(alice, st))
	})

	t.Run("frozen sender", func(t *testing.T) {
		st := f.domainBatch(alice,
			&transition.TokenFreeze{TokenBase: tokenBase(1), Identity: alice.ID},
			&transition.TokenBurn{TokenBase: tokenBase(2), Amount: 1},
		)
		f.requireError(f.sign(alice, st), StageState, consensuserr.IdentityTokenAccountFrozenError{})
	})

	t.Run("paused", func(t *testing.T) {
		st := f.domainBatch(alice,
			&transition.TokenEmergency{TokenBase: tokenBase(1), Pause: true},
			&transition.TokenBurn{TokenBase: tokenBase(2), Amount: 1},
		)
		f.requireError(f.sign(alice, st), StageState, consensuserr.TokenIsPausedError{})
	})
}
