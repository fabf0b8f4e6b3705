// Package genesis builds the initial platform state: funded identities with
// deterministic keys and the system contracts, for local networks and tests.
package genesis

import (
	"crypto/ecdsa"

	"github.com/Fantom-foundation/lachesis-base/common/bigendian"
	"github.com/ethereum/go-ethereum/crypto"

	"github.com/rony4d/go-platform-drive/inter"
	"github.com/rony4d/go-platform-drive/inter/keys"
	"github.com/rony4d/go-platform-drive/transition"
)

// FakeGenesisTimeMs is the genesis time of fake networks (2020-12-22).
const FakeGenesisTimeMs uint64 = 1608600000 * 1000

// Key ids of fake accounts.
const (
	MasterKey   keys.KeyID = 0
	CriticalKey keys.KeyID = 1
	HighKey     keys.KeyID = 2
	TransferKey keys.KeyID = 3
	VotingKey   keys.KeyID = 4
)

// keysPerAccount spaces the fake key seeds of consecutive accounts.
const keysPerAccount = 16

// FakeKey derives a deterministic secp256k1 private key. The same n
// always gives the same key.
func FakeKey(n int) *ecdsa.PrivateKey {
	seed := crypto.Keccak256([]byte("fake key"), bigendian.Uint64ToBytes(uint64(n)))
	for {
		// a digest outside the curve order is rehashed
		key, err := crypto.ToECDSA(seed)
		if err == nil {
			return key
		}
		seed = crypto.Keccak256(seed)
	}
}

// Account is an identity together with the private keys of its public keys.
type Account struct {
	ID      inter.Identifier
	Balance inter.Credits
	Keys    []keys.PublicKey

	privates map[keys.KeyID]*ecdsa.PrivateKey
}

// FakeAccount returns the n-th fake identity: a master, a critical and a
// high authentication key, a critical transfer key and a voting key.
func FakeAccount(n int, balance inter.Credits) *Account {
	a := &Account{
		ID:       FakeIdentityID(n),
		Balance:  balance,
		privates: make(map[keys.KeyID]*ecdsa.PrivateKey),
	}
	layout := []struct {
		id      keys.KeyID
		purpose keys.Purpose
		level   keys.SecurityLevel
	}{
		{MasterKey, keys.Authentication, keys.Master},
		{CriticalKey, keys.Authentication, keys.Critical},
		{HighKey, keys.Authentication, keys.High},
		{TransferKey, keys.Transfer, keys.Critical},
		{VotingKey, keys.Voting, keys.High},
	}
	for _, l := range layout {
		prv := FakeKey(n*keysPerAccount + int(l.id) + 1)
		data, err := keys.FromPrivateKey(prv, keys.ECDSASecp256k1)
		if err != nil {
			panic(err)
		}
		a.privates[l.id] = prv
		a.Keys = append(a.Keys, keys.PublicKey{
			ID:            l.id,
			Type:          keys.ECDSASecp256k1,
			Purpose:       l.purpose,
			SecurityLevel: l.level,
			Data:          data,
		})
	}
	return a
}

// FakeIdentityID is the id of the n-th fake identity.
func FakeIdentityID(n int) inter.Identifier {
	return inter.DeriveIdentifier([]byte("fake_identity"), bigendian.Uint32ToBytes(uint32(n)))
}

// PrivateKey returns the private key of a key id, nil if unknown.
func (a *Account) PrivateKey(id keys.KeyID) *ecdsa.PrivateKey {
	return a.privates[id]
}

// Key returns a public key by id.
func (a *Account) Key(id keys.KeyID) (keys.PublicKey, bool) {
	for _, k := range a.Keys {
		if k.ID == id {
			return k, true
		}
	}
	return keys.PublicKey{}, false
}

// AddKey registers a private key under a new key id, for tests adding keys
// through identity updates.
func (a *Account) AddKey(k keys.PublicKey, prv *ecdsa.PrivateKey) {
	a.Keys = append(a.Keys, k)
	a.privates[k.ID] = prv
}

// Sign signs st with one of the account keys.
func (a *Account) Sign(protocolVersion uint32, st transition.StateTransition, keyID keys.KeyID) error {
	return transition.Sign(protocolVersion, st, a.privates[keyID])
}

// Encode signs st with keyID and encodes it.
func (a *Account) Encode(protocolVersion uint32, st transition.StateTransition, keyID keys.KeyID) ([]byte, error) {
	if err := a.Sign(protocolVersion, st, keyID); err != nil {
		return nil, err
	}
	return transition.Encode(protocolVersion, st)
}
