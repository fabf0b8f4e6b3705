package genesis

import (
	"crypto/ecdsa"

	"github.com/ethereum/go-ethereum/crypto"

	"github.com/rony4d/go-platform-drive/inter"
	"github.com/rony4d/go-platform-drive/inter/keys"
	"github.com/rony4d/go-platform-drive/transition"
	"github.com/rony4d/go-platform-drive/transition/document"
)

// DomainCreate builds the creation of a domain document with a label, as a
// name service client would.
func DomainCreate(owner inter.Identifier, label string, entropy byte, nonce uint64) *transition.DocumentCreate {
	e := [32]byte{entropy, 0xd0}
	return &transition.DocumentCreate{
		DocumentBase: transition.DocumentBase{
			ID:                    document.GenerateID(DomainContractID, owner, "domain", e[:]),
			ContractID:            DomainContractID,
			DocumentType:          "domain",
			IdentityContractNonce: nonce,
		},
		Entropy: e,
		Properties: []document.Property{
			{Name: "label", Value: []byte(label)},
			{Name: "normalizedLabel", Value: []byte(label)},
		},
	}
}

// AssetLock is a funded core chain output and the one-time key that
// controls it.
type AssetLock struct {
	Proof transition.AssetLockProof
	Key   *ecdsa.PrivateKey
}

// FakeAssetLock returns the n-th deterministic asset lock.
func FakeAssetLock(n int, amount inter.Credits) AssetLock {
	prv := FakeKey(1<<20 + n)
	proof := transition.AssetLockProof{
		Amount:        amount,
		PublicKeyHash: keys.Hash160(crypto.CompressPubkey(&prv.PublicKey)),
	}
	copy(proof.Outpoint[:], crypto.Keccak256([]byte("outpoint"), []byte{byte(n >> 8), byte(n)}))
	proof.Outpoint[35] = byte(n)
	return AssetLock{Proof: proof, Key: prv}
}

// NewIdentity builds a signed identity creation funded by the asset lock,
// with a master and a high authentication key derived from seed. It returns
// the account the identity will hold.
func NewIdentity(protocolVersion uint32, lock AssetLock, seed int) (*transition.IdentityCreate, *Account, error) {
	acc := &Account{
		ID:       lock.Proof.IdentityID(),
		Balance:  lock.Proof.Amount,
		privates: make(map[keys.KeyID]*ecdsa.PrivateKey),
	}
	st := &transition.IdentityCreate{AssetLockProof: lock.Proof}
	for i, level := range []keys.SecurityLevel{keys.Master, keys.High} {
		prv := FakeKey(seed*keysPerAccount + i + 1)
		data, err := keys.FromPrivateKey(prv, keys.ECDSASecp256k1)
		if err != nil {
			return nil, nil, err
		}
		k := transition.KeyInCreation{
			ID:            keys.KeyID(i),
			Type:          keys.ECDSASecp256k1,
			Purpose:       keys.Authentication,
			SecurityLevel: level,
			Data:          data,
		}
		st.PublicKeys = append(st.PublicKeys, k)
		acc.AddKey(k.PublicKey(), prv)
	}
	if err := transition.SignIdentityCreate(protocolVersion, st, lock.Key, acc.privates); err != nil {
		return nil, nil, err
	}
	return st, acc, nil
}
