package transition

import (
	"crypto/ecdsa"
	"testing"

	"github.com/ethereum/go-ethereum/crypto"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/require"

	"github.com/rony4d/go-platform-drive/inter"
	"github.com/rony4d/go-platform-drive/inter/keys"
	"github.com/rony4d/go-platform-drive/transition/consensuserr"
	"github.com/rony4d/go-platform-drive/transition/contract"
	"github.com/rony4d/go-platform-drive/transition/document"
)

func id(b byte) inter.Identifier {
	var i inter.Identifier
	i[0] = b
	return i
}

func sampleTransitions() map[string]StateTransition {
	c := &contract.DataContract{
		ID:      id(9),
		OwnerID: id(1),
		Version: 1,
		DocumentTypes: []contract.DocumentType{{
			Name:       "domain",
			Properties: []contract.PropertySchema{{Name: "label", Type: contract.String, Required: true}},
			Indices:    []contract.Index{{Name: "byLabel", Properties: []string{"label"}, Unique: true}},
		}},
	}
	return map[string]StateTransition{
		"identity create": &IdentityCreate{
			AssetLockProof: AssetLockProof{Outpoint: [36]byte{1}, Amount: 100000},
			PublicKeys: []KeyInCreation{{
				ID: 0, Type: keys.ECDSASecp256k1, Purpose: keys.Authentication, SecurityLevel: keys.Master,
				Data: make([]byte, 33), Sig: []byte{1, 2},
			}},
			Sig: []byte{3},
		},
		"top up": &IdentityTopUp{
			AssetLockProof: AssetLockProof{Outpoint: [36]byte{2}, Amount: 5},
			IdentityID:     id(1),
		},
		"identity update": &IdentityUpdate{
			IdentityID:        id(1),
			Revision:          2,
			Nonce:             7,
			DisablePublicKeys: []keys.KeyID{1, 2},
			Signed:            Signed{SignaturePublicKeyID: 0, Sig: []byte{4}},
		},
		"credit transfer": &IdentityCreditTransfer{
			IdentityID: id(1), RecipientID: id(2), Amount: 1000, Nonce: 1,
			Signed: Signed{SignaturePublicKeyID: 3, Sig: []byte{5}},
		},
		"withdrawal": &IdentityCreditWithdrawal{
			IdentityID: id(1), Amount: 200000, CoreFeePerByte: 1, Pooling: PoolingNever,
			OutputScript: make([]byte, 25), Nonce: 2,
			Signed: Signed{SignaturePublicKeyID: 3, Sig: []byte{6}},
		},
		"contract create": &DataContractCreate{Contract: c, IdentityNonce: 1},
		"contract update": &DataContractUpdate{Contract: c, IdentityContractNonce: 3},
		"vote": &MasternodeVote{
			ProTxHash:       [32]byte{7},
			VoterIdentityID: id(3),
			Poll:            VotePoll{ContractID: id(9), DocumentType: "domain", IndexName: "byLabel", IndexValues: [][]byte{[]byte("alice")}},
			Choice:          VoteChoice{Kind: TowardsIdentity, Identity: id(1)},
			Nonce:           1,
		},
		"batch": &Batch{
			OwnerID: id(1),
			Transitions: []BatchedTransition{
				&DocumentCreate{
					DocumentBase: DocumentBase{ID: id(5), ContractID: id(9), DocumentType: "domain", IdentityContractNonce: 1},
					Entropy:      [32]byte{1},
					Properties:   []document.Property{{Name: "label", Value: []byte("alice")}},
				},
				&DocumentDelete{DocumentBase: DocumentBase{ID: id(6), ContractID: id(9), DocumentType: "domain", IdentityContractNonce: 2}},
				&TokenMint{TokenBase: TokenBase{ContractID: id(9), IdentityContractNonce: 3}, Amount: 10, Recipient: id(2)},
				&TokenEmergency{TokenBase: TokenBase{ContractID: id(9), IdentityContractNonce: 4}, Pause: true},
			},
			Signed: Signed{SignaturePublicKeyID: 1, Sig: []byte{8}},
		},
	}
}

func TestEncodeDecode(t *testing.T) {
	for name, st := range sampleTransitions() {
		t.Run(name, func(t *testing.T) {
			require := require.New(t)

			raw, err := Encode(2, st)
			require.NoError(err)

			env, err := Decode(raw)
			require.NoError(err)
			require.Equal(uint32(2), env.ProtocolVersion)
			require.Equal(len(raw), env.Size)
			require.Equal(st.Type(), env.Transition.Type())
			require.Equal(st.Owner(), env.Transition.Owner())

			again, err := Encode(2, env.Transition)
			require.NoError(err)
			require.Equal(raw, again)
		})
	}
}

func TestDecodeFailures(t *testing.T) {
	valid, err := Encode(1, sampleTransitions()["credit transfer"])
	require.NoError(t, err)

	for name, raw := range map[string][]byte{
		"empty":          nil,
		"only version":   {0, 0, 0, 1},
		"unknown type":   append([]byte{0, 0, 0, 1}, 0xff, 0, 0),
		"truncated":      valid[:len(valid)-3],
		"trailing bytes": append(append([]byte{}, valid...), 0, 0),
	} {
		t.Run(name, func(t *testing.T) {
			_, err := Decode(raw)
			require.Error(t, err)
			var parsing consensuserr.SerializedObjectParsingError
			require.True(t, errors.As(err, &parsing), err)
		})
	}
}

func TestSignableBytesOmitSignatures(t *testing.T) {
	require := require.New(t)
	st := sampleTransitions()["credit transfer"].(*IdentityCreditTransfer)

	before, err := SignableBytes(1, st)
	require.NoError(err)
	st.Sig = []byte("another signature")
	after, err := SignableBytes(1, st)
	require.NoError(err)
	require.Equal(before, after)

	other, err := SignableBytes(2, st)
	require.NoError(err)
	require.NotEqual(before, other)
}

func TestSign(t *testing.T) {
	require := require.New(t)
	prv, err := crypto.GenerateKey()
	require.NoError(err)
	data, err := keys.FromPrivateKey(prv, keys.ECDSASecp256k1)
	require.NoError(err)
	pub := keys.PublicKey{Type: keys.ECDSASecp256k1, Data: data}

	st := &IdentityCreditTransfer{IdentityID: id(1), RecipientID: id(2), Amount: 10}
	require.NoError(Sign(1, st, prv))

	digest, err := SigningDigest(1, st)
	require.NoError(err)
	require.NoError(pub.VerifySignature(digest, st.Signature()))

	st.Amount++
	digest, err = SigningDigest(1, st)
	require.NoError(err)
	require.Error(pub.VerifySignature(digest, st.Signature()))
}

func TestSignIdentityCreate(t *testing.T) {
	require := require.New(t)
	lockKey, _ := crypto.GenerateKey()
	master, _ := crypto.GenerateKey()
	masterData, err := keys.FromPrivateKey(master, keys.ECDSASecp256k1)
	require.NoError(err)
	lockData, err := keys.FromPrivateKey(lockKey, keys.ECDSAHash160)
	require.NoError(err)

	st := &IdentityCreate{
		PublicKeys: []KeyInCreation{{ID: 0, Type: keys.ECDSASecp256k1, Data: masterData}},
	}
	copy(st.AssetLockProof.PublicKeyHash[:], lockData)

	require.Error(SignIdentityCreate(1, st, lockKey, nil))
	require.NoError(SignIdentityCreate(1, st, lockKey, map[keys.KeyID]*ecdsa.PrivateKey{0: master}))

	digest, err := SigningDigest(1, st)
	require.NoError(err)
	require.NoError(keys.VerifySignature(keys.ECDSAHash160, lockData, digest, st.Sig))
	require.NoError(st.PublicKeys[0].PublicKey().VerifySignature(digest, st.PublicKeys[0].Sig))
}

func TestBatchHasTokenTransitions(t *testing.T) {
	b := sampleTransitions()["batch"].(*Batch)
	require.True(t, b.HasTokenTransitions())
	b.Transitions = b.Transitions[:2]
	require.False(t, b.HasTokenTransitions())
}
